package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode err: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytesScalesDown(t *testing.T) {
	gen := NewGenerator()

	thumb, err := gen.FromBytes(encodePNG(t, 640, 480))
	if err != nil {
		t.Fatalf("FromBytes err: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail err: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 160 || bounds.Dy() != 120 {
		t.Fatalf("expected 160x120 thumbnail, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestFromBytesKeepsSmallImages(t *testing.T) {
	gen := NewGenerator()

	thumb, err := gen.FromBytes(encodePNG(t, 32, 20))
	if err != nil {
		t.Fatalf("FromBytes err: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail err: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 32 || bounds.Dy() != 20 {
		t.Fatalf("small images must not be upscaled, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	gen := NewGenerator()

	if _, err := gen.FromBytes([]byte("not an image")); err == nil {
		t.Fatal("expected error for undecodable bytes")
	}
}

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, maxW, maxH, wantW, wantH int
	}{
		{640, 480, 160, 160, 160, 120},
		{480, 640, 160, 160, 120, 160},
		{100, 100, 160, 160, 100, 100},
		{1600, 4, 160, 160, 160, 1},
	}
	for _, tc := range cases {
		gotW, gotH := fit(tc.w, tc.h, tc.maxW, tc.maxH)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Fatalf("fit(%d,%d) = %dx%d, want %dx%d", tc.w, tc.h, gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}
