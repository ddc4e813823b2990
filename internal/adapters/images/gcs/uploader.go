// Package gcs sube imágenes a Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"pet-adoption/internal/ports/images"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("gcs uploader not configured")

type Config struct {
	Bucket          string
	CredentialsFile string // opcional; sin él se usan credenciales default
	PublicBaseURL   string // opcional
}

// writerFunc abre un writer para un objeto. En prod es obj.NewWriter.
type writerFunc func(ctx context.Context, key, contentType string) io.WriteCloser

type Uploader struct {
	client  *storage.Client
	open    writerFunc
	baseURL string
}

var _ images.Uploader = (*Uploader)(nil)

func New(ctx context.Context, cfg Config) (*Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrNotConfigured
	}

	var opts []option.ClientOption
	if f := strings.TrimSpace(cfg.CredentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}

	bucket := client.Bucket(cfg.Bucket)
	open := func(ctx context.Context, key, contentType string) io.WriteCloser {
		w := bucket.Object(key).NewWriter(ctx)
		w.ContentType = contentType
		w.CacheControl = "public, max-age=31536000"
		return w
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}

	u := newWithWriter(open, baseURL)
	u.client = client
	return u, nil
}

func newWithWriter(open writerFunc, baseURL string) *Uploader {
	return &Uploader{open: open, baseURL: baseURL}
}

func (u *Uploader) Upload(ctx context.Context, in images.Upload) (images.Result, error) {
	key := path.Join(strings.Trim(in.Folder, "/"), path.Base(in.Filename))

	// Cancelar el ctx aborta el upload si falla la copia.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := u.open(ctx, key, in.ContentType)
	n, err := io.Copy(w, in.Body)
	if err != nil {
		cancel()
		_ = w.Close()
		return images.Result{}, &images.UploadError{Message: "gcs write: " + err.Error(), Err: err}
	}
	// El upload se confirma recién en Close.
	if err := w.Close(); err != nil {
		return images.Result{}, &images.UploadError{Message: "gcs close: " + err.Error(), Err: err}
	}

	return images.Result{
		URL:      u.baseURL + "/" + key,
		PublicID: key,
		Bytes:    n,
	}, nil
}

func (u *Uploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}
