package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
)

const defaultMaxSize = 160

// Generator produces bounded-size PNG previews from raw image bytes.
type Generator struct {
	maxWidth  int
	maxHeight int
}

// NewGenerator creates a generator bounded to 160x160 pixels.
func NewGenerator() *Generator {
	return &Generator{maxWidth: defaultMaxSize, maxHeight: defaultMaxSize}
}

// FromBytes decodes raw image bytes, scales the image to fit the bounds
// while preserving aspect ratio, flattens any alpha onto white, and
// returns the PNG-encoded thumbnail.
func (g *Generator) FromBytes(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	width, height := fit(src.Bounds().Dx(), src.Bounds().Dy(), g.maxWidth, g.maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Bytes(), nil
}

// fit shrinks (w, h) to the bounding box, never upscaling.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}
