package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/askboard/internal/chat"
	"github.com/suPer8Hu/askboard/internal/common"
	"github.com/suPer8Hu/askboard/internal/config"
	"github.com/suPer8Hu/askboard/internal/httpapi/middleware"
	"github.com/suPer8Hu/askboard/internal/store"
)

type Handler struct {
	Cfg     config.Config
	KV      store.KV
	ChatSvc *chat.Service
}

// NewHandler takes already built clients. A nil kv or svc makes every
// storage-backed route answer 503.
func NewHandler(cfg config.Config, kv store.KV, svc *chat.Service) *Handler {
	return &Handler{Cfg: cfg, KV: kv, ChatSvc: svc}
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.KV == nil || h.ChatSvc == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50300, "storage not configured")
		return false
	}
	return true
}

// failErr maps a domain error to its status and writes the envelope.
func failErr(c *gin.Context, op string, err error) {
	kind := chat.KindOf(err)
	status, code := http.StatusInternalServerError, 50000
	switch kind {
	case chat.KindBadRequest:
		status, code = http.StatusBadRequest, 40000
	case chat.KindNotFound:
		status, code = http.StatusNotFound, 40400
	}

	msg := err.Error()
	var de *chat.Error
	if errors.As(err, &de) {
		msg = de.Detail
		if kind == chat.KindServer && de.Err != nil {
			msg += ": " + de.Err.Error()
		}
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] failed rid=%s err=%v", op, middleware.RequestIDFrom(c), err)
	}
	common.Fail(c, status, code, msg)
}
