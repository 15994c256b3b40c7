package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"

	"github.com/bbrks/go-blurhash"
)

type ImageMeta struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
	Blurhash      string `json:"blurhash"`
	DominantColor string `json:"dominant_color"`
}

// ProcessImage decodes a photo and derives the index-entry presentation
// fields: dimensions, a blurhash placeholder, and a dominant color. The
// blurhash is computed from a small downscale; full-resolution input makes no
// visible difference and costs seconds.
func ProcessImage(data []byte) (ImageMeta, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ImageMeta{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	meta := ImageMeta{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}

	small := ResizeIfNeeded(img, 64)
	if hash, err := blurhash.Encode(4, 3, small); err == nil {
		meta.Blurhash = hash
	}

	meta.DominantColor = extractDominantColor(small)

	return meta, nil
}

func extractDominantColor(img image.Image) string {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return "#1a1a2e"
	}

	stepX := width / 10
	if stepX < 1 {
		stepX = 1
	}
	stepY := height / 10
	if stepY < 1 {
		stepY = 1
	}

	var r, g, b uint32
	sampleCount := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			pixel := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			r += uint32(pixel.R)
			g += uint32(pixel.G)
			b += uint32(pixel.B)
			sampleCount++
		}
	}
	if sampleCount == 0 {
		return "#1a1a2e"
	}

	return fmt.Sprintf("#%02x%02x%02x", r/uint32(sampleCount), g/uint32(sampleCount), b/uint32(sampleCount))
}
