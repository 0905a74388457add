// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// compose.go holds the pixel-level building blocks of the preview renderer:
// cover-scaling, gaussian blur, brightness adjustment, and rounded-rectangle
// drawing. Everything is pure Go on NRGBA buffers so output is reproducible
// across platforms.
package preview

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// coverScale scales src to exactly fill a w×h canvas, preserving aspect
// ratio and center-cropping the overflow. Equivalent to scaling by
// max(w/srcW, h/srcH) and cropping to the center.
func coverScale(src image.Image, w, h int) *image.NRGBA {
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()

	// Pick the source crop whose aspect ratio matches the canvas.
	cropW, cropH := srcW, srcH
	if srcW*h > w*srcH {
		// Source is wider than the canvas: crop width.
		cropW = srcH * w / h
	} else {
		// Source is taller: crop height.
		cropH = srcW * h / w
	}
	x0 := sb.Min.X + (srcW-cropW)/2
	y0 := sb.Min.Y + (srcH-cropH)/2
	crop := image.Rect(x0, y0, x0+cropW, y0+cropH)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	return dst
}

// gaussianBlur applies a separable gaussian blur in place-compatible
// fashion and returns a new image. A radius <= 0 returns the input.
func gaussianBlur(img *image.NRGBA, radius float64) *image.NRGBA {
	if radius <= 0 {
		return img
	}

	sigma := radius / 2
	if sigma < 0.5 {
		sigma = 0.5
	}
	half := int(math.Ceil(sigma * 3))
	kernel := make([]float64, 2*half+1)
	var sum float64
	for i := -half; i <= half; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+half] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	horizontal := convolve1D(img, kernel, half, true)
	return convolve1D(horizontal, kernel, half, false)
}

// convolve1D convolves one axis with the given normalized kernel, clamping
// samples at the edges.
func convolve1D(src *image.NRGBA, kernel []float64, half int, horizontal bool) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(b)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, bl, a float64
			for k := -half; k <= half; k++ {
				sx, sy := x, y
				if horizontal {
					sx = clampInt(x+k, 0, w-1)
				} else {
					sy = clampInt(y+k, 0, h-1)
				}
				i := src.PixOffset(b.Min.X+sx, b.Min.Y+sy)
				kv := kernel[k+half]
				r += kv * float64(src.Pix[i])
				g += kv * float64(src.Pix[i+1])
				bl += kv * float64(src.Pix[i+2])
				a += kv * float64(src.Pix[i+3])
			}
			o := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			dst.Pix[o] = uint8(r + 0.5)
			dst.Pix[o+1] = uint8(g + 0.5)
			dst.Pix[o+2] = uint8(bl + 0.5)
			dst.Pix[o+3] = uint8(a + 0.5)
		}
	}
	return dst
}

// adjustBrightness multiplies each color channel by factor, clamping to
// [0,255]. Alpha is untouched. factor 1.0 is a no-op.
func adjustBrightness(img *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return img
	}
	if factor < 0 {
		factor = 0
	}

	b := img.Bounds()
	dst := image.NewNRGBA(b)
	copy(dst.Pix, img.Pix)
	for i := 0; i < len(dst.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(dst.Pix[i+c]) * factor
			if v > 255 {
				v = 255
			}
			dst.Pix[i+c] = uint8(v + 0.5)
		}
	}
	return dst
}

// fillRoundedRect composites a rounded rectangle of the given fill color
// over dst. radius is clamped to half the shorter side.
func fillRoundedRect(dst *image.NRGBA, rect image.Rectangle, radius float64, fill color.NRGBA) {
	maxR := float64(minInt(rect.Dx(), rect.Dy())) / 2
	if radius > maxR {
		radius = maxR
	}
	if radius < 0 {
		radius = 0
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if !insideRounded(x, y, rect, radius) {
				continue
			}
			blendPixel(dst, x, y, fill)
		}
	}
}

// insideRounded reports whether the pixel center lies inside the rounded
// rectangle.
func insideRounded(x, y int, rect image.Rectangle, radius float64) bool {
	if radius == 0 {
		return true
	}
	fx, fy := float64(x)+0.5, float64(y)+0.5

	left := float64(rect.Min.X) + radius
	right := float64(rect.Max.X) - radius
	top := float64(rect.Min.Y) + radius
	bottom := float64(rect.Max.Y) - radius

	cx, cy := fx, fy
	if fx < left {
		cx = left
	} else if fx > right {
		cx = right
	}
	if fy < top {
		cy = top
	} else if fy > bottom {
		cy = bottom
	}
	dx, dy := fx-cx, fy-cy
	return dx*dx+dy*dy <= radius*radius
}

// fillRect composites a solid rectangle over dst.
func fillRect(dst *image.NRGBA, rect image.Rectangle, fill color.NRGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			blendPixel(dst, x, y, fill)
		}
	}
}

// strokeRect draws a 1px rectangle outline.
func strokeRect(dst *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		blendPixel(dst, x, rect.Min.Y, c)
		blendPixel(dst, x, rect.Max.Y-1, c)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		blendPixel(dst, rect.Min.X, y, c)
		blendPixel(dst, rect.Max.X-1, y, c)
	}
}

// blendPixel alpha-composites c over the pixel at (x,y).
func blendPixel(dst *image.NRGBA, x, y int, c color.NRGBA) {
	if !image.Pt(x, y).In(dst.Bounds()) {
		return
	}
	if c.A == 255 {
		dst.SetNRGBA(x, y, c)
		return
	}
	if c.A == 0 {
		return
	}

	i := dst.PixOffset(x, y)
	a := int(c.A)
	inv := 255 - a
	dst.Pix[i] = uint8((int(c.R)*a + int(dst.Pix[i])*inv) / 255)
	dst.Pix[i+1] = uint8((int(c.G)*a + int(dst.Pix[i+1])*inv) / 255)
	dst.Pix[i+2] = uint8((int(c.B)*a + int(dst.Pix[i+2])*inv) / 255)
	// Keep the canvas opaque.
	dst.Pix[i+3] = 255
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
