package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds carried in the "error" field of failure responses.
const (
	ErrBadRequest       = "bad_request"
	ErrUnauthorized     = "unauthorized"
	ErrNotFound         = "not_found"
	ErrMethodNotAllowed = "method_not_allowed"
	ErrUnavailable      = "service_unavailable"
	ErrServer           = "server_error"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"error":   KindForStatus(httpStatus),
		"message": msg,
		"data":    nil,
	})
}

// AbortFail is Fail for middleware: later handlers do not run.
func AbortFail(c *gin.Context, httpStatus int, code int, msg string) {
	Fail(c, httpStatus, code, msg)
	c.Abort()
}

func KindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusMethodNotAllowed:
		return ErrMethodNotAllowed
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	default:
		return ErrServer
	}
}
