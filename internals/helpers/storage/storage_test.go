package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDriver struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemDriver() *memDriver {
	return &memDriver{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memDriver) Put(_ context.Context, key string, r io.Reader, ct string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = b
	m.types[key] = ct
	return nil
}

func (m *memDriver) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memDriver) PublicURL(key string) string { return "https://cdn.test/" + key }

func formWithFiles(t *testing.T, files map[string]string) *multipart.Form {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for field, name := range files {
		fw, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, _ = fw.Write([]byte("contenido de " + name))
	}
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form
}

func TestBuildObjectKey(t *testing.T) {
	s := NewService(newMemDriver(), "/colegio/")
	s.now = func() time.Time { return time.Date(2025, 3, 4, 10, 11, 12, 0, time.UTC) }

	key := s.BuildObjectKey("enrollments/t1", "Certificado Nacimiento.PDF")
	assert.True(t, strings.HasPrefix(key, "colegio/enrollments/t1/certificado-nacimiento_20250304_101112_"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"), key)
}

func TestUploadFilesReturnsPublicURLs(t *testing.T) {
	drv := newMemDriver()
	s := NewService(drv, "")
	form := formWithFiles(t, map[string]string{"documents[]": "rut.pdf", "otro": "nota.txt"})

	files := CollectUploadFiles(form, DocumentFields)
	require.Len(t, files, 2)
	assert.Equal(t, "rut.pdf", files[0].Filename)

	urls, err := s.UploadFiles(context.Background(), "docs", files)
	require.NoError(t, err)
	require.Len(t, urls, 2)
	for _, u := range urls {
		assert.True(t, strings.HasPrefix(u, "https://cdn.test/docs/"))
	}
	assert.Len(t, drv.objects, 2)

	require.NoError(t, s.DeleteByURL(context.Background(), urls[0]))
	assert.Len(t, drv.objects, 1)
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectContentType(nil, "a.PDF"))
	assert.Equal(t, "image/webp", DetectContentType(nil, "x.webp"))
	assert.Equal(t, "text/plain; charset=utf-8", DetectContentType([]byte("hola"), "sin-extension"))
}

func TestSquareThumbAndDownscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		img.Set(x, 10, color.RGBA{R: 200, A: 255})
	}
	sq := SquareThumb(img, 64)
	assert.Equal(t, 64, sq.Bounds().Dx())
	assert.Equal(t, 64, sq.Bounds().Dy())

	small := Downscale(img, 100)
	assert.Equal(t, 100, small.Bounds().Dx())
	assert.Equal(t, 50, small.Bounds().Dy())

	assert.Same(t, img, Downscale(img, 1000))
}
