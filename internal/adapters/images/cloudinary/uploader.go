// Package cloudinary sube imágenes con un upload preset sin firma
// (el mismo flujo que usaba la app móvil).
package cloudinary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"pet-adoption/internal/platform/httpclient"
	"pet-adoption/internal/ports/images"
)

var ErrNotConfigured = errors.New("cloudinary uploader not configured")

type Config struct {
	BaseURL      string // default https://api.cloudinary.com
	CloudName    string
	UploadPreset string
	Timeout      time.Duration
}

type Uploader struct {
	http         *httpclient.Client
	cloudName    string
	uploadPreset string
}

var _ images.Uploader = (*Uploader)(nil)

func New(cfg Config) (*Uploader, error) {
	if strings.TrimSpace(cfg.CloudName) == "" || strings.TrimSpace(cfg.UploadPreset) == "" {
		return nil, ErrNotConfigured
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = "https://api.cloudinary.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc, err := httpclient.NewWithBaseURL(base, timeout)
	if err != nil {
		return nil, err
	}
	return &Uploader{
		http:         hc,
		cloudName:    strings.TrimSpace(cfg.CloudName),
		uploadPreset: strings.TrimSpace(cfg.UploadPreset),
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (u *Uploader) Upload(ctx context.Context, in images.Upload) (images.Result, error) {
	fields := map[string]string{
		"upload_preset": u.uploadPreset,
	}
	if f := strings.TrimSpace(in.Folder); f != "" {
		fields["folder"] = f
	}

	var out uploadResponse
	err := u.http.DoMultipart(ctx, "/v1_1/"+url.PathEscape(u.cloudName)+"/image/upload", nil, fields,
		httpclient.FilePart{
			FieldName:   "file",
			FileName:    in.Filename,
			ContentType: in.ContentType,
			Body:        in.Body,
		}, &out)
	if err != nil {
		return images.Result{}, toUploadError(err)
	}
	if strings.TrimSpace(out.SecureURL) == "" {
		return images.Result{}, &images.UploadError{Message: "cloudinary response missing secure_url"}
	}

	return images.Result{
		URL:      out.SecureURL,
		PublicID: out.PublicID,
		Format:   out.Format,
		Bytes:    out.Bytes,
		Width:    out.Width,
		Height:   out.Height,
	}, nil
}

// toUploadError traduce {"error":{"message":...}} del proveedor.
func toUploadError(err error) error {
	var he *httpclient.HTTPError
	if !errors.As(err, &he) {
		return &images.UploadError{Message: err.Error(), Err: err}
	}
	msg := fmt.Sprintf("status %d", he.StatusCode)
	var body errorResponse
	if json.Unmarshal([]byte(he.Body), &body) == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}
	return &images.UploadError{Message: msg, Code: he.StatusCode, Err: err}
}
