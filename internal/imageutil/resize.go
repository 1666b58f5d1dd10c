// Package imageutil shrinks meal photos before upload. Smaller files upload
// faster and the vision model needs nothing beyond ~1024px.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	DefaultMaxWidth = 1024
	DefaultQuality  = 75

	// Files at or under this size are sent as-is.
	compressionThresholdBytes = 300 * 1024
)

// Prepared is an image ready for upload.
type Prepared struct {
	Name         string
	Data         []byte
	OriginalSize int
	Compressed   bool
}

// Reduction returns the size reduction in percent, 0 when not compressed.
func (p Prepared) Reduction() int {
	if !p.Compressed || p.OriginalSize == 0 {
		return 0
	}
	return int(float64(p.OriginalSize-len(p.Data)) / float64(p.OriginalSize) * 100)
}

// NeedsCompression reports whether a file of the given size is worth
// re-encoding.
func NeedsCompression(size int) bool {
	return size > compressionThresholdBytes
}

// PrepareFile reads, and when large enough downscales and re-encodes, the
// image at path.
func PrepareFile(path string, maxWidth, quality int) (Prepared, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Prepared{}, fmt.Errorf("read image: %w", err)
	}
	return Prepare(filepath.Base(path), raw, maxWidth, quality)
}

// Prepare compresses raw image bytes. Small files pass through untouched.
func Prepare(name string, raw []byte, maxWidth, quality int) (Prepared, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if !NeedsCompression(len(raw)) {
		return Prepared{Name: name, Data: raw, OriginalSize: len(raw)}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Prepared{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width > maxWidth {
		height = int(float64(height) * float64(maxWidth) / float64(width))
		width = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: quality}); err != nil {
		return Prepared{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Prepared{
		Name:         jpegName(name),
		Data:         out.Bytes(),
		OriginalSize: len(raw),
		Compressed:   true,
	}, nil
}

func jpegName(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return name + ".jpg"
	}
	return strings.TrimSuffix(name, ext) + ".jpg"
}
