package clerk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"pet-adoption/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens struct {
	claims auth.Claims
	err    error
}

func (s stubTokens) Verify(context.Context, string) (auth.Claims, error) {
	return s.claims, s.err
}

func newUsersServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/v1/users/user_1":
			_, _ = w.Write([]byte(`{
				"id": "user_1",
				"first_name": "Ana",
				"last_name": "Pérez",
				"image_url": "https://img.test/ana.png",
				"primary_email_address_id": "idn_2",
				"email_addresses": [
					{"id": "idn_1", "email_address": "old@x.com"},
					{"id": "idn_2", "email_address": "Ana@X.com"}
				]
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient_GetUser(t *testing.T) {
	var calls int32
	ts := newUsersServer(t, &calls)
	defer ts.Close()

	c, err := NewClient(Config{BaseURL: ts.URL, SecretKey: "sk_test"})
	require.NoError(t, err)

	p, err := c.GetUser(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", p.Email)
	assert.Equal(t, "Ana Pérez", p.Name)
	assert.Equal(t, "https://img.test/ana.png", p.AvatarURL)

	_, err = c.GetUser(context.Background(), "user_404")
	assert.ErrorIs(t, err, ErrUserNotFound)

	bad, _ := NewClient(Config{BaseURL: ts.URL, SecretKey: "nope"})
	_, err = bad.GetUser(context.Background(), "user_1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	var empty *Client
	_, err = empty.GetUser(context.Background(), "user_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifier_FillsProfileAndCaches(t *testing.T) {
	var calls int32
	ts := newUsersServer(t, &calls)
	defer ts.Close()

	c, _ := NewClient(Config{BaseURL: ts.URL, SecretKey: "sk_test"})
	v := NewVerifier(stubTokens{claims: auth.Claims{UserID: "user_1"}}, c, 0)

	for i := 0; i < 3; i++ {
		claims, err := v.Verify(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "ana@x.com", claims.Email)
		assert.Equal(t, "Ana Pérez", claims.Name)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestVerifier_TokenErrorAndMissingProfile(t *testing.T) {
	var calls int32
	ts := newUsersServer(t, &calls)
	defer ts.Close()
	c, _ := NewClient(Config{BaseURL: ts.URL, SecretKey: "sk_test"})

	v := NewVerifier(stubTokens{err: errors.New("bad sig")}, c, 0)
	_, err := v.Verify(context.Background(), "tok")
	require.Error(t, err)

	// perfil inexistente y sin email en el token => error
	v = NewVerifier(stubTokens{claims: auth.Claims{UserID: "user_404"}}, c, 0)
	_, err = v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// con email en el token, el fallo del API no bloquea
	v = NewVerifier(stubTokens{claims: auth.Claims{UserID: "user_404", Email: "b@y.com"}}, c, 0)
	claims, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "b@y.com", claims.Email)
}
