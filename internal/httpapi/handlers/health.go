package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/askboard/internal/common"
)

func (h *Handler) Healthz(c *gin.Context) {
	kvReady := false
	if h.KV != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		kvReady = h.KV.Ping(ctx) == nil
	}
	aiReady := h.ChatSvc != nil && h.ChatSvc.AIReady()

	common.OK(c, gin.H{
		"ok":       true,
		"kv_ready": kvReady,
		"ai_ready": aiReady,
	})
}
