// Package imaging valida que unos bytes sean una imagen soportada
// antes de mandarlos a un backend de hosting.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var (
	ErrNotImage    = errors.New("imaging: unsupported or corrupt image")
	ErrTooLarge    = errors.New("imaging: image dimensions too large")
	ErrEmptyUpload = errors.New("imaging: empty upload")
)

// Límite de píxeles (evita bombas de descompresión en backends que procesan).
const maxPixels = 50_000_000

type Info struct {
	Format      string // jpeg | png | gif | webp
	ContentType string
	Width       int
	Height      int
}

// Inspect lee solo el header (DecodeConfig), no decodifica la imagen.
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrEmptyUpload
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, ErrNotImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return Info{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	return Info{
		Format:      format,
		ContentType: "image/" + format,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// Ext devuelve la extensión canónica para un formato.
func Ext(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "png", "gif", "webp":
		return "." + format
	default:
		return ""
	}
}
