package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// scanned documents above this edge get downscaled before upload
const maxDocumentEdge = 2000

func DecodeImage(all []byte) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "png"):
		return png.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(all))
	}
	return nil, fmt.Errorf("unsupported image type %s", ct)
}

// SquareThumb center-crops to size×size.
func SquareThumb(img image.Image, size int) image.Image {
	if size <= 0 {
		size = 512
	}
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}

// Downscale keeps aspect ratio so that neither edge exceeds maxEdge.
func Downscale(src image.Image, maxEdge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return src
	}
	scale := math.Min(float64(maxEdge)/float64(w), float64(maxEdge)/float64(h))
	nw := int(math.Max(1, math.Round(float64(w)*scale)))
	nh := int(math.Max(1, math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func EncodeWebP(img image.Image, quality float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ShrinkDocumentImage re-encodes oversized jpeg/png scans as jpeg.
// ok=false leaves the original bytes untouched.
func ShrinkDocumentImage(all []byte, contentType string) ([]byte, bool) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, false
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(all))
	if err != nil || (cfg.Width <= maxDocumentEdge && cfg.Height <= maxDocumentEdge) {
		return nil, false
	}
	img, err := DecodeImage(all)
	if err != nil {
		return nil, false
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, Downscale(img, maxDocumentEdge), &jpeg.Options{Quality: 85}); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
