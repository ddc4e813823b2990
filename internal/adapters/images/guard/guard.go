// Package guard envuelve cualquier backend de imágenes: limita tamaño,
// valida que los bytes sean imagen y normaliza nombre y content type
// antes de cualquier llamada de red.
package guard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pet-adoption/internal/platform/imaging"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/ports/images"

	"github.com/google/uuid"
)

var ErrTooLarge = errors.New("image exceeds size limit")

type Uploader struct {
	next     images.Uploader
	backend  string
	maxBytes int64
	folder   string
	newName  func() string
}

var _ images.Uploader = (*Uploader)(nil)

// New: backend es solo la etiqueta para métricas/logs.
func New(next images.Uploader, backend string, maxBytes int64, folder string) *Uploader {
	return &Uploader{
		next:     next,
		backend:  backend,
		maxBytes: maxBytes,
		folder:   strings.Trim(strings.TrimSpace(folder), "/"),
		newName:  uuid.NewString,
	}
}

func (u *Uploader) Upload(ctx context.Context, in images.Upload) (res images.Result, err error) {
	defer func() { metrics.ImageUpload(u.backend, err) }()

	if in.Body == nil {
		return images.Result{}, &images.UploadError{Message: "no image data", Err: imaging.ErrEmptyUpload}
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, u.maxBytes+1))
	if err != nil {
		return images.Result{}, &images.UploadError{Message: "read image: " + err.Error(), Err: err}
	}
	if int64(len(data)) > u.maxBytes {
		return images.Result{}, &images.UploadError{
			Message: fmt.Sprintf("image larger than %d bytes", u.maxBytes),
			Err:     ErrTooLarge,
		}
	}

	info, err := imaging.Inspect(data)
	if err != nil {
		return images.Result{}, &images.UploadError{Message: err.Error(), Err: err}
	}

	folder := u.folder
	if f := strings.Trim(strings.TrimSpace(in.Folder), "/"); f != "" {
		folder = f
	}

	res, err = u.next.Upload(ctx, images.Upload{
		Filename:    u.newName() + imaging.Ext(info.Format),
		ContentType: info.ContentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
		Folder:      folder,
	})
	if err != nil {
		var ue *images.UploadError
		if !errors.As(err, &ue) {
			err = &images.UploadError{Message: err.Error(), Err: err}
		}
		return images.Result{}, err
	}

	if res.Format == "" {
		res.Format = info.Format
	}
	if res.Bytes == 0 {
		res.Bytes = int64(len(data))
	}
	if res.Width == 0 && res.Height == 0 {
		res.Width, res.Height = info.Width, info.Height
	}
	return res, nil
}
