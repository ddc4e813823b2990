// Package local guarda imágenes en disco; el router las sirve como estáticos.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"pet-adoption/internal/ports/images"
)

type Uploader struct {
	dir     string
	baseURL string
}

var _ images.Uploader = (*Uploader)(nil)

func New(dir, publicBaseURL string) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local images: create dir: %w", err)
	}
	return &Uploader{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (u *Uploader) Dir() string { return u.dir }

func (u *Uploader) Upload(_ context.Context, in images.Upload) (images.Result, error) {
	name := filepath.Base(strings.TrimSpace(in.Filename))
	if name == "" || name == "." || name == "/" {
		return images.Result{}, &images.UploadError{Message: "missing file name"}
	}
	folder := strings.Trim(path.Clean("/"+in.Folder), "/")
	key := path.Join(folder, name)

	full := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return images.Result{}, &images.UploadError{Message: "create folder", Err: err}
	}

	dst, err := os.Create(full)
	if err != nil {
		return images.Result{}, &images.UploadError{Message: "create file", Err: err}
	}
	n, err := io.Copy(dst, in.Body)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return images.Result{}, &images.UploadError{Message: "write file", Err: err}
	}

	return images.Result{
		URL:      u.baseURL + "/" + key,
		PublicID: key,
		Bytes:    n,
	}, nil
}
