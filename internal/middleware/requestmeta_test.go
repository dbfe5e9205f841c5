package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/shortify/internal/auth"
	"github.com/serroba/shortify/internal/handlers"
	"github.com/serroba/shortify/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOutput struct {
	Body string `json:"body"`
}

func fixedID() string { return "generated-id" }

func setupTestAPI(t *testing.T) (*chi.Mux, huma.API) {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(fixedID))

	return router, api
}

// captureMeta registers a public GET /test that reports the request metadata it saw.
func captureMeta(api huma.API) <-chan handlers.RequestMeta {
	metaChan := make(chan handlers.RequestMeta, 1)

	huma.Register(api, huma.Operation{
		Method:   http.MethodGet,
		Path:     "/test",
		Metadata: auth.Public(),
	}, func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		metaChan <- handlers.RequestMetaFromContext(ctx)

		return &testOutput{Body: "ok"}, nil
	})

	return metaChan
}

func TestRequestMeta(t *testing.T) {
	t.Run("extracts user-agent and referrer", func(t *testing.T) {
		router, api := setupTestAPI(t)
		metaChan := captureMeta(api)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("User-Agent", "TestAgent/1.0")
		req.Header.Set("Referer", "https://example.com")

		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		meta := <-metaChan
		assert.Equal(t, "TestAgent/1.0", meta.UserAgent)
		assert.Equal(t, "https://example.com", meta.Referrer)
	})

	t.Run("mints a request id and echoes it", func(t *testing.T) {
		router, api := setupTestAPI(t)
		metaChan := captureMeta(api)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		meta := <-metaChan
		assert.Equal(t, "generated-id", meta.RequestID)
		assert.Equal(t, "generated-id", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("reuses an incoming request id", func(t *testing.T) {
		router, api := setupTestAPI(t)
		metaChan := captureMeta(api)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(middleware.RequestIDHeader, "upstream-id")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "upstream-id", (<-metaChan).RequestID)
		assert.Equal(t, "upstream-id", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("replaces an oversized incoming request id", func(t *testing.T) {
		router, api := setupTestAPI(t)
		metaChan := captureMeta(api)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 200))

		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "generated-id", (<-metaChan).RequestID)
	})

	t.Run("extracts IP from X-Forwarded-For with single IP", func(t *testing.T) {
		router, api := setupTestAPI(t)
		metaChan := captureMeta(api)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1")

		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "192.168.1.1", (<-metaChan).ClientIP)
	})

	t.Run("extracts first IP from X-Forwarded-For with multiple IPs", func(t *testing.T) {
		router, api := setupTestAPI(t)
		metaChan := captureMeta(api)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1, 172.16.0.1")

		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "192.168.1.1", (<-metaChan).ClientIP)
	})

	t.Run("extracts IP from X-Real-IP when X-Forwarded-For is absent", func(t *testing.T) {
		router, api := setupTestAPI(t)
		metaChan := captureMeta(api)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")

		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "10.0.0.1", (<-metaChan).ClientIP)
	})

	t.Run("falls back to remote addr when no IP headers present", func(t *testing.T) {
		router, api := setupTestAPI(t)
		metaChan := captureMeta(api)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "203.0.113.7:5555"

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "203.0.113.7", (<-metaChan).ClientIP)
	})
}
