package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suPer8Hu/askboard/internal/common"
	"github.com/suPer8Hu/askboard/internal/httpapi/handlers"
	"github.com/suPer8Hu/askboard/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/healthz", h.Healthz)

	// board
	api.GET("/posts", h.ListPosts)
	api.GET("/search", h.SearchPosts)
	api.GET("/posts/:id", h.GetPost)
	api.POST("/ask", h.Ask)
	api.POST("/posts/:id/reply", h.Reply)

	// admin (shared token)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(h.Cfg.AdminToken))
	admin.POST("/update", h.AdminUpdate)
	admin.POST("/delete", h.AdminDelete)
	admin.DELETE("/delete", h.AdminDelete)
	return r
}
