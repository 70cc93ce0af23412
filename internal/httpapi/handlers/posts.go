package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/askboard/internal/chat"
	"github.com/suPer8Hu/askboard/internal/common"
)

func (h *Handler) ListPosts(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))

	res, err := h.ChatSvc.List(c.Request.Context(), chat.ListQuery{
		Query:    c.Query("q"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		failErr(c, "ListPosts", err)
		return
	}
	common.OK(c, res)
}

func (h *Handler) SearchPosts(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	items, err := h.ChatSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		failErr(c, "SearchPosts", err)
		return
	}
	common.OK(c, gin.H{"items": items})
}

func (h *Handler) GetPost(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	c.Header("Cache-Control", "no-store")

	d, err := h.ChatSvc.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, "GetPost", err)
		return
	}
	common.OK(c, d)
}

type askReq struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func (h *Handler) Ask(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid json")
		return
	}

	res, err := h.ChatSvc.Ask(c.Request.Context(), chat.AskInput{
		Category: req.Category,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		failErr(c, "Ask", err)
		return
	}
	common.OK(c, res)
}

type replyReq struct {
	Content string `json:"content"`
}

func (h *Handler) Reply(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	c.Header("Cache-Control", "no-store")

	// an empty body is blank content; the service checks the post first
	var req replyReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid json")
		return
	}
	id := strings.TrimSpace(c.Param("id"))

	res, err := h.ChatSvc.Reply(c.Request.Context(), id, req.Content)
	if err != nil {
		failErr(c, "Reply", err)
		return
	}
	common.OK(c, res)
}
