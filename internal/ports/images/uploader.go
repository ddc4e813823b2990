package images

import (
	"context"
	"fmt"
	"io"
)

// Upload es lo que se manda al backend de hosting.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Folder      string
}

// Result describe la imagen ya alojada. URL es durable y pública.
type Result struct {
	URL      string
	PublicID string
	Format   string
	Bytes    int64
	Width    int
	Height   int
}

// Uploader sube una imagen y devuelve su URL durable.
type Uploader interface {
	Upload(ctx context.Context, in Upload) (Result, error)
}

// UploadError es el error estructurado de cualquier backend.
type UploadError struct {
	Message string
	Code    int // status HTTP del proveedor, 0 si no aplica
	Err     error
}

func (e *UploadError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("image upload failed (%d): %s", e.Code, e.Message)
	}
	return "image upload failed: " + e.Message
}

func (e *UploadError) Unwrap() error { return e.Err }
