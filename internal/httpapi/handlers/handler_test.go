package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/askboard/internal/chat"
)

func TestFailErrMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   int
		kind   string
		msg    string
	}{
		{"bad request", &chat.Error{Kind: chat.KindBadRequest, Detail: "title is required"}, http.StatusBadRequest, 40000, "bad_request", "title is required"},
		{"wrapped not found", fmt.Errorf("reply: %w", &chat.Error{Kind: chat.KindNotFound, Detail: "post not found", Err: chat.ErrPostNotFound}), http.StatusNotFound, 40400, "not_found", "post not found"},
		{"server error keeps cause", &chat.Error{Kind: chat.KindServer, Detail: "append user turn", Err: errors.New("conn refused")}, http.StatusInternalServerError, 50000, "server_error", "append user turn: conn refused"},
		{"untyped error", errors.New("boom"), http.StatusInternalServerError, 50000, "server_error", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			failErr(c, "Test", tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body struct {
				Code    int    `json:"code"`
				Error   string `json:"error"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.kind, body.Error)
			assert.Equal(t, tt.msg, body.Message)
		})
	}
}
