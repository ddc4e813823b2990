package clerk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pet-adoption/internal/ports/auth"
)

// Verifier valida la firma del token de sesión localmente (delegado) y
// completa email/nombre/avatar desde el Backend API cuando el token no los trae.
// Los perfiles se cachean un rato para no pegarle al API en cada request.
type Verifier struct {
	tokens auth.AuthVerifier
	client *Client
	ttl    time.Duration
	now    func() time.Time
	mu     sync.Mutex
	byID   map[string]cachedProfile
}

type cachedProfile struct {
	p       Profile
	expires time.Time
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func NewVerifier(tokens auth.AuthVerifier, client *Client, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Verifier{
		tokens: tokens,
		client: client,
		ttl:    ttl,
		now:    time.Now,
		byID:   make(map[string]cachedProfile),
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.tokens == nil {
		return auth.Claims{}, ErrNotConfigured
	}

	claims, err := v.tokens.Verify(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("clerk verify failed: %w", err)
	}
	claims.UserID = strings.TrimSpace(claims.UserID)

	if claims.Email != "" && claims.Name != "" && claims.AvatarURL != "" {
		return claims, nil
	}
	if claims.UserID == "" {
		if claims.Email == "" {
			return auth.Claims{}, errors.New("clerk claims missing user id")
		}
		return claims, nil
	}

	p, err := v.profile(ctx, claims.UserID)
	if err != nil {
		// Sin email no hay identidad de dominio; con email seguimos con lo que hay.
		if claims.Email == "" {
			return auth.Claims{}, err
		}
		return claims, nil
	}

	if claims.Email == "" {
		claims.Email = p.Email
	}
	if claims.Name == "" {
		claims.Name = p.Name
	}
	if claims.AvatarURL == "" {
		claims.AvatarURL = p.AvatarURL
	}
	if claims.Email == "" {
		return auth.Claims{}, errors.New("clerk user has no email address")
	}
	return claims, nil
}

func (v *Verifier) profile(ctx context.Context, userID string) (Profile, error) {
	now := v.now()

	v.mu.Lock()
	if c, ok := v.byID[userID]; ok && now.Before(c.expires) {
		v.mu.Unlock()
		return c.p, nil
	}
	v.mu.Unlock()

	p, err := v.client.GetUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	v.mu.Lock()
	v.byID[userID] = cachedProfile{p: p, expires: now.Add(v.ttl)}
	v.mu.Unlock()
	return p, nil
}
