package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/askboard/internal/ai"
	"github.com/suPer8Hu/askboard/internal/chat"
	"github.com/suPer8Hu/askboard/internal/config"
	"github.com/suPer8Hu/askboard/internal/httpapi/handlers"
	"github.com/suPer8Hu/askboard/internal/store/redisstore"
)

const testAdminToken = "s3cret"

type echoProvider struct{}

func (echoProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	return "answer: " + messages[len(messages)-1].Content, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	kv := redisstore.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = kv.Close() })

	svc := chat.NewService(chat.NewRepo(kv), echoProvider{}, time.Second, 30)
	cfg := config.Config{AdminToken: testAdminToken}
	return NewRouter(handlers.NewHandler(cfg, kv, svc))
}

func do(t *testing.T, r http.Handler, method, target string, body any, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestBoardFlow(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/healthz", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"kv_ready":true,"ai_ready":true}`, string(env.Data))

	w, env = do(t, r, http.MethodPost, "/api/ask", gin.H{"category": "수출신고", "title": "수출신고", "content": "방법 알려줘"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var asked chat.AskResult
	require.NoError(t, json.Unmarshal(env.Data, &asked))
	assert.Equal(t, "1", asked.ID)
	assert.Equal(t, "answer: 방법 알려줘", asked.Assistant)

	w, env = do(t, r, http.MethodPost, "/api/posts/1/reply", gin.H{"content": "비용은?"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var replied chat.ReplyResult
	require.NoError(t, json.Unmarshal(env.Data, &replied))
	assert.Equal(t, "answer: 비용은?", replied.Assistant)

	w, env = do(t, r, http.MethodGet, "/api/posts/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var detail chat.PostDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "방법 알려줘", detail.Body)
	require.Len(t, detail.Messages, 4)
	assert.Equal(t, chat.RoleUser, detail.Messages[2].Role)

	w, env = do(t, r, http.MethodGet, "/api/posts?pageSize=500&q="+url.QueryEscape("수출"), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page chat.Page
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 50, page.PageSize)
	assert.True(t, page.Items[0].Answered)

	w, env = do(t, r, http.MethodGet, "/api/search?q=nothing-matches", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, string(env.Data))
}

func TestErrorEnvelopes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		url    string
		body   any
		status int
		kind   string
	}{
		{"ask without title", http.MethodPost, "/api/ask", gin.H{"content": "x"}, http.StatusBadRequest, "bad_request"},
		{"ask bad json", http.MethodPost, "/api/ask", "not an object", http.StatusBadRequest, "bad_request"},
		{"reply unknown post", http.MethodPost, "/api/posts/42/reply", gin.H{"content": "x"}, http.StatusNotFound, "not_found"},
		{"reply unknown post empty body", http.MethodPost, "/api/posts/42/reply", nil, http.StatusNotFound, "not_found"},
		{"reply bad json", http.MethodPost, "/api/posts/42/reply", "not an object", http.StatusBadRequest, "bad_request"},
		{"detail unknown post", http.MethodGet, "/api/posts/42", nil, http.StatusNotFound, "not_found"},
		{"unknown route", http.MethodGet, "/api/nope", nil, http.StatusNotFound, "not_found"},
		{"wrong method", http.MethodPut, "/api/ask", nil, http.StatusMethodNotAllowed, "method_not_allowed"},
		{"admin without token", http.MethodPost, "/api/admin/update", gin.H{"id": "1"}, http.StatusUnauthorized, "unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, tt.method, tt.url, tt.body, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.kind, env.Error)
			assert.NotZero(t, env.Code)
			assert.Equal(t, "null", string(env.Data))
		})
	}
}

func TestReplyBlankContentAfterPostCheck(t *testing.T) {
	r := newTestRouter(t)
	_, _ = do(t, r, http.MethodPost, "/api/ask", gin.H{"title": "t", "content": "c"}, nil)

	w, env := do(t, r, http.MethodPost, "/api/posts/1/reply", gin.H{"content": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", env.Error)

	// no body at all reads as blank content, not malformed json
	w, env = do(t, r, http.MethodPost, "/api/posts/1/reply", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40000, env.Code)
	assert.Equal(t, "content is required", env.Message)
}

func TestAdminUpdateAndDelete(t *testing.T) {
	r := newTestRouter(t)
	admin := map[string]string{"X-Admin-Token": testAdminToken}

	_, _ = do(t, r, http.MethodPost, "/api/ask", gin.H{"category": "세무회계", "title": "old", "content": "body"}, nil)

	w, env := do(t, r, http.MethodPost, "/api/admin/update", gin.H{"id": "1", "title": "new"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p chat.Post
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "new", p.Title)
	assert.Equal(t, "body", p.Body)
	assert.Equal(t, "세무회계", p.Category)

	w, env = do(t, r, http.MethodPost, "/api/admin/update", gin.H{"id": "9", "title": "x"}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Error)

	w, env = do(t, r, http.MethodPost, "/api/admin/delete", gin.H{}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", env.Error)

	w, _ = do(t, r, http.MethodDelete, "/api/admin/delete?id=1&token="+testAdminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = do(t, r, http.MethodGet, "/api/posts/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page chat.Page
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Zero(t, page.Total)
}

func TestStorageNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(handlers.NewHandler(config.Config{}, nil, nil))

	w, env := do(t, r, http.MethodGet, "/api/posts", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service_unavailable", env.Error)

	w, env = do(t, r, http.MethodGet, "/api/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"kv_ready":false,"ai_ready":false}`, string(env.Data))
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "askboard_completion_latency_seconds")
}
