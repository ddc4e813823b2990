package gcs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"pet-adoption/internal/ports/images"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (w *memWriter) Close() error {
	w.closed = true
	return w.closeErr
}

func TestUpload_WritesObject(t *testing.T) {
	var gotKey, gotCT string
	mw := &memWriter{}
	u := newWithWriter(func(_ context.Context, key, ct string) io.WriteCloser {
		gotKey, gotCT = key, ct
		return mw
	}, "https://storage.googleapis.com/pets-bucket")

	res, err := u.Upload(context.Background(), images.Upload{
		Filename: "x.webp", ContentType: "image/webp", Folder: "pets/", Body: strings.NewReader("WEBP"),
	})
	require.NoError(t, err)
	assert.Equal(t, "pets/x.webp", gotKey)
	assert.Equal(t, "image/webp", gotCT)
	assert.True(t, mw.closed)
	assert.Equal(t, "WEBP", mw.String())
	assert.Equal(t, "https://storage.googleapis.com/pets-bucket/pets/x.webp", res.URL)
	assert.Equal(t, int64(4), res.Bytes)
}

func TestUpload_CloseError(t *testing.T) {
	mw := &memWriter{closeErr: errors.New("googleapi: 403")}
	u := newWithWriter(func(context.Context, string, string) io.WriteCloser { return mw }, "https://x")

	_, err := u.Upload(context.Background(), images.Upload{Filename: "a.png", Body: strings.NewReader("x")})
	var ue *images.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Message, "403")
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
