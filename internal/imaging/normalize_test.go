package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand/v2"
	"testing"

	"github.com/desertthunder/rollplay/internal/shared"
)

func noise(w, h int) *image.RGBA {
	rng := rand.New(rand.NewPCG(1, 2))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.UintN(256))
		img.Pix[i+1] = uint8(rng.UintN(256))
		img.Pix[i+2] = uint8(rng.UintN(256))
		img.Pix[i+3] = 0xFF
	}
	return img
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegSize(t *testing.T, img image.Image, quality int) int {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Len()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid jpeg: %v", err)
	}
	return img
}

func TestNormalize(t *testing.T) {
	t.Run("small image keeps top quality", func(t *testing.T) {
		res, err := Normalize(pngBytes(t, gradient(64, 64)), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Quality != 90 {
			t.Errorf("expected quality 90, got %d", res.Quality)
		}
		if res.Width != 64 || res.Height != 64 {
			t.Errorf("expected source dimensions, got %dx%d", res.Width, res.Height)
		}
		decodeJPEG(t, res.Data)
	})

	t.Run("reduces quality before size", func(t *testing.T) {
		img := noise(400, 300)
		ceiling := (jpegSize(t, img, 90) + jpegSize(t, img, 40)) / 2

		res, err := Normalize(pngBytes(t, img), ceiling)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Data) > ceiling {
			t.Errorf("output %d bytes exceeds ceiling %d", len(res.Data), ceiling)
		}
		if res.Quality >= 90 || res.Quality < 40 {
			t.Errorf("expected a reduced quality, got %d", res.Quality)
		}
		if res.Width != 400 || res.Height != 300 {
			t.Errorf("expected no resize, got %dx%d", res.Width, res.Height)
		}
	})

	t.Run("shrinks dimensions at lowest quality", func(t *testing.T) {
		img := noise(800, 800)
		ceiling := jpegSize(t, img, 40) / 2

		res, err := Normalize(pngBytes(t, img), ceiling)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Data) > ceiling {
			t.Errorf("output %d bytes exceeds ceiling %d", len(res.Data), ceiling)
		}
		if res.Quality != 40 {
			t.Errorf("expected quality 40, got %d", res.Quality)
		}

		out := decodeJPEG(t, res.Data)
		if b := out.Bounds(); b.Dx() >= 800 || b.Dx() != b.Dy() {
			t.Errorf("expected a smaller square image, got %dx%d", b.Dx(), b.Dy())
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		img := noise(600, 600)
		ceiling := jpegSize(t, img, 40) / 2
		input := pngBytes(t, img)

		a, err := Normalize(input, ceiling)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := Normalize(input, ceiling)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(a.Data, b.Data) {
			t.Error("expected byte-identical output for identical input")
		}
	})

	t.Run("too large", func(t *testing.T) {
		_, err := Normalize(pngBytes(t, noise(400, 400)), 100)
		if !errors.Is(err, shared.ErrImageTooLarge) {
			t.Errorf("expected ErrImageTooLarge, got %v", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := Normalize([]byte("definitely not an image"), 0)
		if !errors.Is(err, shared.ErrInvalidImage) {
			t.Errorf("expected ErrInvalidImage, got %v", err)
		}
	})

	t.Run("transparent pixels flatten to white", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
		res, err := Normalize(pngBytes(t, img), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		r, g, b, _ := decodeJPEG(t, res.Data).At(8, 8).RGBA()
		if r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
			t.Errorf("expected white, got %d %d %d", r>>8, g>>8, b>>8)
		}
	})
}

func TestFitInside(t *testing.T) {
	tc := []struct {
		w, h, boxW, boxH int
		wantW, wantH     int
	}{
		{w: 100, h: 50, boxW: 200, boxH: 200, wantW: 100, wantH: 50},
		{w: 1000, h: 500, boxW: 900, boxH: 450, wantW: 900, wantH: 450},
		{w: 1000, h: 500, boxW: 500, boxH: 500, wantW: 500, wantH: 250},
		{w: 10, h: 1000, boxW: 9, boxH: 5, wantW: 1, wantH: 5},
	}

	for _, tt := range tc {
		gotW, gotH := fitInside(tt.w, tt.h, tt.boxW, tt.boxH)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("fitInside(%d, %d, %d, %d) = %dx%d, want %dx%d",
				tt.w, tt.h, tt.boxW, tt.boxH, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}
