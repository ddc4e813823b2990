package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes arma un PNG chico para tests.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspect_PNG(t *testing.T) {
	info, err := Inspect(pngBytes(t, 3, 2))
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, 3, info.Width)
	assert.Equal(t, 2, info.Height)
	assert.Equal(t, ".png", Ext(info.Format))
}

func TestInspect_Rejects(t *testing.T) {
	_, err := Inspect(nil)
	assert.ErrorIs(t, err, ErrEmptyUpload)

	_, err = Inspect([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrNotImage)
}
