package services

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ResizeIfNeeded scales the image down to max dimension while preserving
// aspect ratio. If max <= 0 or the image already fits, returns the original.
func ResizeIfNeeded(src image.Image, max int) image.Image {
	if max <= 0 {
		return src
	}
	b := src.Bounds()
	w := b.Dx()
	h := b.Dy()
	if w <= max && h <= max {
		return src
	}
	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	tw := int(float64(w) * scale)
	th := int(float64(h) * scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
