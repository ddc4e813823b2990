// Package s3store sube imágenes a un bucket S3 (o compatible: MinIO, R2).
package s3store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"pet-adoption/internal/ports/images"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNotConfigured = errors.New("s3 uploader not configured")

type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // opcional, fuerza path-style
	AccessKeyID     string // opcional; si falta, cadena default de AWS
	SecretAccessKey string
	PublicBaseURL   string // opcional (CDN)
}

// putter es la parte de manager.Uploader que usamos.
type putter interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type Uploader struct {
	up      putter
	bucket  string
	baseURL string
}

var _ images.Uploader = (*Uploader)(nil)

func New(ctx context.Context, cfg Config) (*Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" || strings.TrimSpace(cfg.Region) == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3store: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if ep := strings.TrimSpace(cfg.Endpoint); ep != "" {
			o.BaseEndpoint = aws.String(ep)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL(cfg)
	}
	return newWithPutter(manager.NewUploader(client), cfg.Bucket, baseURL), nil
}

func newWithPutter(p putter, bucket, baseURL string) *Uploader {
	return &Uploader{up: p, bucket: bucket, baseURL: baseURL}
}

func defaultBaseURL(cfg Config) string {
	if ep := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"); ep != "" {
		return ep + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

func (u *Uploader) Upload(ctx context.Context, in images.Upload) (images.Result, error) {
	key := path.Join(strings.Trim(in.Folder, "/"), path.Base(in.Filename))

	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        in.Body,
		ContentType: aws.String(in.ContentType),
	}
	if in.Size > 0 {
		input.ContentLength = aws.Int64(in.Size)
	}

	if _, err := u.up.Upload(ctx, input); err != nil {
		return images.Result{}, &images.UploadError{Message: "s3 put object: " + err.Error(), Err: err}
	}

	return images.Result{
		URL:      u.baseURL + "/" + key,
		PublicID: key,
		Bytes:    in.Size,
	}, nil
}
