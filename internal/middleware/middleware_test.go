package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token != "good" {
		return auth.Claims{}, errors.New("bad token")
	}
	return auth.Claims{UserID: "u1", Email: "Ana@X.com", Name: "Ana"}, nil
}

func whoami(w http.ResponseWriter, r *http.Request) {
	c, ok := RequireEmail(w, r)
	if !ok {
		return
	}
	_, _ = w.Write([]byte(c.Email + "|" + c.Name + "|" + c.AvatarURL))
}

func TestAuthContext_DevHeaders(t *testing.T) {
	h := AuthContext(nil)(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderDebugEmail, " Bob@Y.com ")
	req.Header.Set(HeaderDebugName, "Bob")
	req.Header.Set(HeaderDebugAvatar, "https://img/b.png")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob@y.com|Bob|https://img/b.png", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthContext_Verifier(t *testing.T) {
	h := AuthContext(stubVerifier{})(http.HandlerFunc(whoami))

	cases := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"bearer ok", "Bearer good", "", http.StatusOK},
		{"bearer lowercase", "bearer good", "", http.StatusOK},
		{"query token", "", "?access_token=good", http.StatusOK},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized},
		{"no scheme", "good", "", http.StatusUnauthorized},
		{"debug header ignored", "", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			req.Header.Set(HeaderDebugEmail, "intruder@x.com")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, "ana@x.com|Ana|", rec.Body.String())
			}
		})
	}
}

func TestRecover_Returns500(t *testing.T) {
	h := Recover(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	h := RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pets", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

type errLogger struct {
	fields map[string]any
}

func (l *errLogger) With(map[string]any) logger.Logger     { return l }
func (l *errLogger) Debug(string, map[string]any)          {}
func (l *errLogger) Info(string, map[string]any)           {}
func (l *errLogger) Warn(string, map[string]any)           {}
func (l *errLogger) Error(_ string, fields map[string]any) { l.fields = fields }

func TestLogRequestError(t *testing.T) {
	log := &errLogger{}
	LogRequestError(log, httptest.NewRequest(http.MethodPost, "/pets", nil), errors.New("db down"))

	require.NotNil(t, log.fields)
	assert.Equal(t, "db down", log.fields["error"])
	assert.Equal(t, "/pets", log.fields["route"])
	assert.Equal(t, http.MethodPost, log.fields["method"])

	// nil logger o nil error no hacen nada
	LogRequestError(nil, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("x"))
	other := &errLogger{}
	LogRequestError(other, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Nil(t, other.fields)
}
