package middleware

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/askboard/internal/common"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID keeps a caller supplied X-Request-ID or mints a ULID, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" || len(rid) > 128 {
			id, err := common.NewULID()
			if err != nil {
				log.Printf("[RequestID] generate failed err=%v", err)
			}
			rid = id
		}
		c.Set(RequestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
