// Package jwtauth verifica y emite tokens de sesión (JWT).
package jwtauth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty     = errors.New("token is empty")
	ErrInvalidToken   = errors.New("invalid token")
	ErrNotConfigured  = errors.New("jwtauth: no secret or public key configured")
	ErrSigningMissing = errors.New("jwtauth: issuer requires a secret")
)

type Config struct {
	// HS256: secreto compartido.
	Secret string
	// RS256: llave pública PEM (la que publica el identity provider).
	PublicKeyPEM []byte
	// Opcional: si viene, se exige claim "iss".
	Issuer string
	Leeway time.Duration
}

// Verifier implementa auth.AuthVerifier validando la firma localmente.
type Verifier struct {
	secret []byte
	pub    *rsa.PublicKey
	parser *jwt.Parser
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func NewVerifier(cfg Config) (*Verifier, error) {
	v := &Verifier{}
	methods := make([]string, 0, 2)

	if s := strings.TrimSpace(cfg.Secret); s != "" {
		v.secret = []byte(s)
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if len(cfg.PublicKeyPEM) > 0 {
		pub, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("jwtauth: parse public key: %w", err)
		}
		v.pub = pub
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}
	if len(methods) == 0 {
		return nil, ErrNotConfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if iss := strings.TrimSpace(cfg.Issuer); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims := jwt.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, v.keyFunc)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	sub, _ := claims.GetSubject()
	out := auth.Claims{
		UserID:    strings.TrimSpace(sub),
		Email:     strings.ToLower(stringClaim(claims, "email")),
		Name:      stringClaim(claims, "name"),
		AvatarURL: stringClaim(claims, "image_url"),
	}
	if out.UserID == "" && out.Email == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub and email", ErrInvalidToken)
	}
	return out, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret == nil {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.pub == nil {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.pub, nil
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
}

func stringClaim(c jwt.MapClaims, key string) string {
	s, _ := c[key].(string)
	return strings.TrimSpace(s)
}

// Issuer emite tokens HS256. Se usa para desarrollo (cmd token) y tests;
// en producción los tokens los emite el identity provider.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSigningMissing
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (i *Issuer) NewToken(c auth.Claims) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}
	sub := strings.TrimSpace(c.UserID)
	if sub == "" {
		sub = c.NormalizedEmail()
	}
	claims["sub"] = sub
	if e := c.NormalizedEmail(); e != "" {
		claims["email"] = e
	}
	if n := strings.TrimSpace(c.Name); n != "" {
		claims["name"] = n
	}
	if a := strings.TrimSpace(c.AvatarURL); a != "" {
		claims["image_url"] = a
	}
	if i.issuer != "" {
		claims["iss"] = i.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("jwtauth: sign: %w", err)
	}
	return s, nil
}
