package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/shortify/internal/account"
	"github.com/serroba/shortify/internal/events"
	"github.com/serroba/shortify/internal/handlers"
	"github.com/serroba/shortify/internal/messaging"
	"github.com/serroba/shortify/internal/middleware"
	"github.com/serroba/shortify/internal/seed"
	"github.com/serroba/shortify/internal/shortener"
	"github.com/serroba/shortify/internal/store"
	"github.com/serroba/shortify/internal/token"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testBaseURL   = "http://localhost:8888"
	testURL       = "https://example.com"
	publicAccount = "public"
)

// recorder collects published events.
type recorder[T any] struct {
	mu     sync.Mutex
	events []*T
	err    error
}

func (r *recorder[T]) publish(_ context.Context, event *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return r.err
}

func (r *recorder[T]) all() []*T {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*T(nil), r.events...)
}

type testApp struct {
	router     *chi.Mux
	api        huma.API
	directory  *account.Directory
	links      *shortener.Service
	linkEvents *recorder[events.LinkCreatedEvent]
	accEvents  *recorder[events.AccountRegisteredEvent]
}

func newTestApp(t *testing.T, seedPublic bool) *testApp {
	t.Helper()

	logger := zap.NewNop()
	mem := store.NewMemoryStore()

	directory := account.NewDirectory(mem.AccountStore(), account.NewBcryptVerifier(bcrypt.MinCost), logger)
	links := shortener.NewService(mem.LinkStore(), store.NewMemoryLinkCache(), logger)

	tokens, err := token.NewService([]byte("0123456789abcdef0123456789abcdef"), token.WithTTL(30*time.Minute))
	require.NoError(t, err)

	if seedPublic {
		_, err := seed.EnsurePublicAccount(context.Background(), directory, seed.PublicAccount{
			Username:    publicAccount,
			DisplayName: "Public",
			Password:    "public-password",
		}, logger)
		require.NoError(t, err)
	}

	app := &testApp{
		directory:  directory,
		links:      links,
		linkEvents: &recorder[events.LinkCreatedEvent]{},
		accEvents:  &recorder[events.AccountRegisteredEvent]{},
	}

	app.router = chi.NewMux()
	app.api = humachi.New(app.router, handlers.NewAPIConfig("Test", "1.0.0"))
	app.api.UseMiddleware(middleware.RequestMeta(func() string { return "req-test" }))
	app.api.UseMiddleware(middleware.Authenticator(app.api, tokens, directory, logger))

	handlers.RegisterRoutes(app.api,
		handlers.NewLinkHandler(links, directory, handlers.LinkConfig{
			BaseURL:        testBaseURL,
			FallbackURL:    "/",
			PublicUsername: publicAccount,
		}, messaging.Publish[events.LinkCreatedEvent](app.linkEvents.publish), logger),
		handlers.NewAccountHandler(directory, tokens,
			messaging.Publish[events.AccountRegisteredEvent](app.accEvents.publish), logger),
		handlers.NewDiagHandler(app.api, "Test", "1.0.0", links),
	)

	return app
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))

	return v
}

// login registers username and returns a bearer token for it.
func (a *testApp) login(t *testing.T, username string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": username, "password": "pw-" + username, "displayName": "Name " + username,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": username, "password": "pw-" + username,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return decode[struct {
		Token string `json:"token"`
	}](t, w).Token
}
