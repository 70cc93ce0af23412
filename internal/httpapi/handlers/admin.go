package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/askboard/internal/chat"
	"github.com/suPer8Hu/askboard/internal/common"
)

// updateReq fields left out of the body keep their stored value; an explicit
// empty string replaces it.
type updateReq struct {
	ID       string  `json:"id"`
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

func (h *Handler) AdminUpdate(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid json")
		return
	}

	p, err := h.ChatSvc.Update(c.Request.Context(), strings.TrimSpace(req.ID), chat.PostUpdate{
		Title:    req.Title,
		Body:     req.Content,
		Category: req.Category,
	})
	if err != nil {
		failErr(c, "AdminUpdate", err)
		return
	}
	log.Printf("[Admin] updated post=%s", p.ID)
	common.OK(c, p)
}

type deleteReq struct {
	ID string `json:"id"`
}

// AdminDelete takes the id from the JSON body or the id query parameter.
func (h *Handler) AdminDelete(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req deleteReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.Fail(c, http.StatusBadRequest, 40001, "invalid json")
			return
		}
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = strings.TrimSpace(c.Query("id"))
	}

	if err := h.ChatSvc.Delete(c.Request.Context(), id); err != nil {
		failErr(c, "AdminDelete", err)
		return
	}
	log.Printf("[Admin] deleted post=%s", id)
	common.OK(c, gin.H{"id": id})
}
