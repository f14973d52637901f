package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vecserve/artifact"
	"github.com/viant/vecserve/config"
	"github.com/viant/vecserve/embed"
	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/service"
	"github.com/viant/vecserve/store"
	"github.com/viant/vecserve/vector"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func readyService(t *testing.T) *service.Service {
	t.Helper()
	ctx := context.Background()
	docs := []vector.Document{
		{Text: "cats are mammals"},
		{Text: "dogs are mammals"},
		{Text: "cars have wheels"},
	}
	provider, err := embed.New(embed.Config{})
	require.NoError(t, err)
	vectors := make([][]float32, len(docs))
	for i, d := range docs {
		vectors[i], err = provider.EmbedDocument(ctx, d.Text)
		require.NoError(t, err)
	}
	dir := t.TempDir()
	_, err = store.Write(ctx, dir, store.Artifact{Kind: index.KindBrute, Metric: vector.Cosine, Documents: docs, Vectors: vectors})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Artifact.Path = dir
	svc := service.New(service.NewLoader(cfg, artifact.NewResolver(nil, ""), quiet), quiet)
	require.NoError(t, svc.Start(ctx))
	return svc
}

func do(router http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestInvocations(t *testing.T) {
	router := NewRouter(readyService(t), Options{Logger: quiet})

	for _, path := range []string{"/invocations", "/v1/search"} {
		w := do(router, http.MethodPost, path, "application/json; charset=utf-8", `{"text":"what animal is a mammal","k":2}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var matches []struct {
			Text  string  `json:"text"`
			Score float64 `json:"score"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
		require.Len(t, matches, 2)
		assert.Equal(t, "cats are mammals", matches[0].Text)
		assert.Equal(t, "dogs are mammals", matches[1].Text)
	}
}

func TestInvocationsErrors(t *testing.T) {
	router := NewRouter(readyService(t), Options{MaxBodyBytes: 64, Logger: quiet})

	testCases := []struct {
		description string
		contentType string
		body        string
		status      int
	}{
		{description: "missing content type", body: `{"text":"x","k":1}`, status: http.StatusUnsupportedMediaType},
		{description: "text content type", contentType: "text/plain", body: `{"text":"x","k":1}`, status: http.StatusUnsupportedMediaType},
		{description: "too large", contentType: "application/json", body: `{"text":"` + strings.Repeat("a", 100) + `","k":1}`, status: http.StatusRequestEntityTooLarge},
		{description: "invalid k", contentType: "application/json", body: `{"text":"x","k":0}`, status: http.StatusBadRequest},
		{description: "malformed", contentType: "application/json", body: `{`, status: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		w := do(router, http.MethodPost, "/invocations", tc.contentType, tc.body)
		assert.Equal(t, tc.status, w.Code, tc.description)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), tc.description)
		assert.NotEmpty(t, body["error"], tc.description)
	}
}

func TestHealth(t *testing.T) {
	ready := NewRouter(readyService(t), Options{Logger: quiet})
	for _, path := range []string{"/ping", "/healthz"} {
		w := do(ready, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
	}

	idle := NewRouter(service.New(nil, quiet), Options{Logger: quiet})
	w := do(idle, http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"uninitialized"}`, w.Body.String())

	failedSvc := service.New(func(context.Context) (*service.Runtime, error) {
		return nil, errors.New("boom")
	}, quiet)
	require.Error(t, failedSvc.Start(context.Background()))
	failed := NewRouter(failedSvc, Options{Logger: quiet})
	w = do(failed, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"failed"}`, w.Body.String())

	w = do(failed, http.MethodPost, "/invocations", "application/json", `{"text":"x","k":1}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRequestID(t *testing.T) {
	router := NewRouter(readyService(t), Options{Logger: quiet})

	w := do(router, http.MethodGet, "/ping", "", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	router := NewRouter(readyService(t), Options{Logger: quiet})
	router.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	w := do(router, http.MethodGet, "/panic", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	router := NewRouter(readyService(t), Options{Logger: quiet})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, router, ServerOptions{ShutdownTimeout: time.Second}, quiet)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
