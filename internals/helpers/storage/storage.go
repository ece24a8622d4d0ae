// Package storage uploads enrollment documents and student photos to object storage.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	helper "colegio_backend/internals/helpers"
)

const maxUploadSize = int64(10 * 1024 * 1024)

// Driver is the minimal bucket surface the upload service needs.
type Driver interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Service turns multipart files into public URLs.
type Service struct {
	driver Driver
	prefix string
	now    func() time.Time
}

func NewService(d Driver, prefix string) *Service {
	return &Service{driver: d, prefix: strings.Trim(prefix, "/"), now: time.Now}
}

// NewServiceFromEnv picks the driver from STORAGE_DRIVER (oss|s3).
func NewServiceFromEnv(driver, prefix string) (*Service, error) {
	var (
		d   Driver
		err error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "s3":
		d, err = NewS3DriverFromEnv()
	case "", "oss":
		d, err = NewOSSDriverFromEnv()
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] storage driver=%s prefix=%s", driver, prefix)
	return NewService(d, prefix), nil
}

// UploadFile stores fh as-is under dir (oversized images are downscaled first).
func (s *Service) UploadFile(ctx context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("nil file header")
	}
	if fh.Size > maxUploadSize {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("archivo %s supera %d MB", fh.Filename, maxUploadSize/1024/1024))
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	all, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	ct := DetectContentType(all, fh.Filename)
	filename := fh.Filename
	if shrunk, ok := ShrinkDocumentImage(all, ct); ok {
		all, ct = shrunk, "image/jpeg"
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
	}

	key := s.BuildObjectKey(dir, filename)
	if err := s.driver.Put(ctx, key, bytes.NewReader(all), ct); err != nil {
		return "", err
	}
	return s.driver.PublicURL(key), nil
}

// UploadFiles uploads every file; the first failure aborts the batch.
func (s *Service) UploadFiles(ctx context.Context, dir string, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		u, err := s.UploadFile(ctx, dir, fh)
		if err != nil {
			return urls, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// UploadPhotoWebP: square-cropped WebP (profile photos).
func (s *Service) UploadPhotoWebP(ctx context.Context, dir string, fh *multipart.FileHeader, size int) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("nil file header")
	}
	if fh.Size > maxUploadSize {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "imagen demasiado grande")
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	all, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	img, err := DecodeImage(all)
	if err != nil {
		return "", fiber.NewError(fiber.StatusUnsupportedMediaType, "formato de imagen no soportado (jpg/png/webp)")
	}
	data, err := EncodeWebP(SquareThumb(img, size), 80)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	key := s.BuildObjectKey(dir, base+".webp")
	if err := s.driver.Put(ctx, key, bytes.NewReader(data), "image/webp"); err != nil {
		return "", err
	}
	return s.driver.PublicURL(key), nil
}

// DeleteByURL removes an object previously returned by Upload*.
func (s *Service) DeleteByURL(ctx context.Context, publicURL string) error {
	base := s.driver.PublicURL("")
	key := strings.TrimPrefix(publicURL, strings.TrimRight(base, "/")+"/")
	if key == publicURL || key == "" {
		return fmt.Errorf("url fuera del bucket: %s", publicURL)
	}
	return s.driver.Delete(ctx, key)
}

// BuildObjectKey: <prefix>/<dir>/<slug>_<yyyymmdd_hhmmss>_<rand><ext>
func (s *Service) BuildObjectKey(dir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := helper.Slugify(strings.TrimSuffix(filename, filepath.Ext(filename)), 60)
	if base == "" || base == "colegio" {
		base = "archivo"
	}
	parts := make([]string, 0, 3)
	if s.prefix != "" {
		parts = append(parts, s.prefix)
	}
	if d := strings.Trim(dir, "/"); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, fmt.Sprintf("%s_%s_%s%s", base, s.now().Format("20060102_150405"), randHex(3), ext))
	return strings.Join(parts, "/")
}

// DetectContentType: extension first, sniffing as fallback.
func DetectContentType(head []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	}
	ct := mime.TypeByExtension(ext)
	if ct == "" || ct == "application/octet-stream" {
		if len(head) > 512 {
			head = head[:512]
		}
		if len(head) > 0 {
			ct = http.DetectContentType(head)
		}
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
