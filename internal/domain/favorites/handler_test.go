package favorites

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordLogger guarda las entradas de error para inspeccionarlas.
type recordLogger struct {
	mu     sync.Mutex
	errors []map[string]any
}

func (l *recordLogger) With(map[string]any) logger.Logger { return l }
func (l *recordLogger) Debug(string, map[string]any)      {}
func (l *recordLogger) Info(string, map[string]any)       {}
func (l *recordLogger) Warn(string, map[string]any)       {}
func (l *recordLogger) Error(_ string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fields)
}

type brokenRepo struct{ *testRepo }

func (brokenRepo) Get(context.Context, string) (Record, error) {
	return Record{}, errors.New("connection reset by peer")
}

func TestHandler_InternalErrorIsLogged(t *testing.T) {
	log := &recordLogger{}
	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, NewService(brokenRepo{newTestRepo()}, testPosts{}), log)

	req := httptest.NewRequest(http.MethodGet, "/me/favorites", nil)
	req.Header.Set(middleware.HeaderDebugEmail, "ana@x.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")

	require.Len(t, log.errors, 1)
	assert.Equal(t, "connection reset by peer", log.errors[0]["error"])
	assert.Equal(t, http.MethodGet, log.errors[0]["method"])
}

func TestHandler_ClientErrorsAreNotLogged(t *testing.T) {
	log := &recordLogger{}
	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, NewService(newTestRepo(), testPosts{}), log)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me/favorites", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, log.errors)
}
