package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/askboard/internal/common"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminRequired accepts the shared admin token from the X-Admin-Token header
// or the token query parameter. With no token configured every call is refused.
func AdminRequired(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		got := strings.TrimSpace(c.GetHeader(AdminTokenHeader))
		if got == "" {
			got = strings.TrimSpace(c.Query("token"))
		}
		if len(want) == 0 || got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			log.Printf("[Admin] rejected method=%s path=%s rid=%s", c.Request.Method, c.Request.URL.Path, RequestIDFrom(c))
			common.AbortFail(c, http.StatusUnauthorized, 40100, "admin token required")
			return
		}
		c.Next()
	}
}
