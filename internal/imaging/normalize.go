// Package imaging turns an arbitrary raster image into a JPEG that fits a byte ceiling.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/desertthunder/rollplay/internal/shared"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxBytes is the provider's cover image limit.
	DefaultMaxBytes = 256 * 1024

	startQuality = 90
	minQuality   = 40
	qualityStep  = 10

	// shrinkFactor is applied to both dimensions on each resize step.
	shrinkFactor = 0.9
	// minDimension stops resizing once either side is at or below it.
	minDimension = 300

	// maxPixels rejects inputs too large to decode safely.
	maxPixels = 50_000_000
)

// Result is a normalized JPEG and the parameters that produced it.
type Result struct {
	Data    []byte
	Quality int
	Width   int
	Height  int
}

// Normalize re-encodes data as a JPEG of at most maxBytes.
//
// Quality drops from 90 to 40 in steps of 10 at the source size. If that is not enough, the
// image is shrunk by 0.9 per side while both sides exceed 300px, encoding at quality 40 each
// time. Transparent pixels are flattened onto white and a JPEG's EXIF orientation is applied
// to the pixels. The output depends only on the input.
func Normalize(data []byte, maxBytes int) (*Result, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%w: unsupported dimensions %dx%d", shared.ErrInvalidImage, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidImage, err)
	}

	base := orient(flatten(src), exifOrientation(data))
	width, height := base.Bounds().Dx(), base.Bounds().Dy()

	quality := startQuality
	for {
		out, err := encode(base, quality)
		if err != nil {
			return nil, err
		}
		if len(out) <= maxBytes {
			return &Result{Data: out, Quality: quality, Width: width, Height: height}, nil
		}
		if quality-qualityStep < minQuality {
			break
		}
		quality -= qualityStep
	}

	boxW, boxH := width, height
	for boxW > minDimension && boxH > minDimension {
		boxW = int(float64(boxW) * shrinkFactor)
		boxH = int(float64(boxH) * shrinkFactor)

		w, h := fitInside(width, height, boxW, boxH)
		out, err := encode(resize(base, w, h), quality)
		if err != nil {
			return nil, err
		}
		if len(out) <= maxBytes {
			return &Result{Data: out, Quality: quality, Width: w, Height: h}, nil
		}
	}

	return nil, fmt.Errorf("%w: %d bytes allowed", shared.ErrImageTooLarge, maxBytes)
}

// fitInside scales w×h to fit a box without enlarging, keeping the aspect ratio.
func fitInside(w, h, boxW, boxH int) (int, int) {
	if w <= boxW && h <= boxH {
		return w, h
	}
	scale := min(float64(boxW)/float64(w), float64(boxH)/float64(h))
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}

func flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func resize(src *image.RGBA, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
