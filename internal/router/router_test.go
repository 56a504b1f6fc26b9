package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-contact-go/pkg/database"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	sqlDB, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: ":memory:", MaxConns: 1})
	require.NoError(t, err)
	db := sqlx.NewDb(sqlDB, database.DriverSQLite)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, contact.NewContactService(db, nil).EnsureSchema(context.Background()))
	return router.RegisterRoutes(zap.NewNop().Sugar(), db, time.Second)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes_PreflightAndCORS(t *testing.T) {
	h := newRouter(t)

	w := serve(h, httptest.NewRequest(http.MethodOptions, "/usuarios", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	w = serve(h, httptest.NewRequest(http.MethodGet, "/usuarios", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRoutes_UnknownVerb(t *testing.T) {
	h := newRouter(t)

	w := serve(h, httptest.NewRequest(http.MethodPatch, "/usuarios", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"erro":"Método não permitido."}`, w.Body.String())
}

func TestRoutes_Health(t *testing.T) {
	h := newRouter(t)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	h := router.RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assigned := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, assigned)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = serve(h, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := router.RecoveryMiddleware(zap.NewNop().Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"erro":"Erro interno."}`, w.Body.String())
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := router.RequestIDMiddleware()(
		router.LoggingMiddleware(zap.New(core).Sugar())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = w.Write([]byte("hi"))
			})))

	serve(h, httptest.NewRequest(http.MethodGet, "/x?y=1", nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "/x", fields["path"])
	assert.Equal(t, "y=1", fields["query"])
	assert.Equal(t, int64(2), fields["size"])
	assert.NotEmpty(t, fields["request_id"])
}
