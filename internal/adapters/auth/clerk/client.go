package clerk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pet-adoption/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("clerk client not configured")
	ErrUnauthorized  = errors.New("clerk unauthorized")
	ErrUserNotFound  = errors.New("clerk user not found")
	ErrUpstream      = errors.New("clerk upstream error")
)

// Config del cliente del Backend API del identity provider.
type Config struct {
	BaseURL   string // https://api.clerk.com
	SecretKey string
	Timeout   time.Duration
}

type Client struct {
	http      *httpclient.Client
	secretKey string
}

func NewClient(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:      hc,
		secretKey: strings.TrimSpace(cfg.SecretKey),
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.secretKey != ""
}

// Profile es la identidad pública de un usuario.
type Profile struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

type userResponse struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Username              string `json:"username"`
	ImageURL              string `json:"image_url"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// GetUser trae el perfil de un usuario por id.
func (c *Client) GetUser(ctx context.Context, userID string) (Profile, error) {
	if !c.IsConfigured() {
		return Profile{}, ErrNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Profile{}, ErrUserNotFound
	}

	var out userResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID), map[string]string{
		"Authorization": "Bearer " + c.secretKey,
	}, nil, &out)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return Profile{}, ErrUnauthorized
		case http.StatusNotFound:
			return Profile{}, ErrUserNotFound
		default:
			return Profile{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	return toProfile(out), nil
}

func toProfile(u userResponse) Profile {
	p := Profile{
		ID:        strings.TrimSpace(u.ID),
		AvatarURL: strings.TrimSpace(u.ImageURL),
	}

	// email primario; si no está marcado, el primero
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			p.Email = e.EmailAddress
			break
		}
	}
	if p.Email == "" && len(u.EmailAddresses) > 0 {
		p.Email = u.EmailAddresses[0].EmailAddress
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	p.Name = strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if p.Name == "" {
		p.Name = strings.TrimSpace(u.Username)
	}
	return p
}
