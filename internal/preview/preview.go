// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package preview renders a fixed-size JPEG preview from a theme
// configuration by programmatic image composition: background fill,
// optional background image with blur and brightness, a rounded control
// bar, and a strip of the theme's key colors.
//
// The render is deterministic: the same configuration and RenderConfig
// always produce byte-identical output. Malformed colors and unreachable
// background images degrade to defaults instead of failing the render;
// only encoding failures abort.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"net/http"
	"time"

	_ "image/gif"  // register GIF decoder
	_ "image/png"  // register PNG decoder
	"image/draw"

	_ "golang.org/x/image/webp" // register WebP decoder

	"themehub/internal/themecfg"
)

// RenderConfig fixes the output geometry and encoding of the renderer.
// Two renders with equal configs and equal theme configurations are
// byte-identical.
type RenderConfig struct {
	Width   int // canvas width in pixels
	Height  int // canvas height in pixels
	Quality int // JPEG quality 1-100

	// BarOpacity in [0,1] sets the alpha of the control bar fill.
	BarOpacity float64

	// FetchTimeout bounds remote background image downloads.
	FetchTimeout time.Duration

	// MaxImageBytes caps downloaded background image size.
	MaxImageBytes int64
}

// DefaultRenderConfig returns the standard 1280×720 preview configuration.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:         1280,
		Height:        720,
		Quality:       85,
		BarOpacity:    0.55,
		FetchTimeout:  10 * time.Second,
		MaxImageBytes: 20 << 20,
	}
}

// Control bar geometry, relative to the canvas.
const (
	barMarginX      = 64 // left/right inset
	barHeight       = 96
	barMarginBottom = 48
	swatchPad       = 16 // inset of swatches inside the bar
	swatchGap       = 12
)

// defaultBgColor is the fallback for a malformed primary background color.
var defaultBgColor = color.NRGBA{A: 255}

// maxDecodedPixels caps decoded background image dimensions to prevent
// memory bombs (100 megapixels, ~400 MB as RGBA).
const maxDecodedPixels = 100_000_000

// Renderer composes theme previews. It is safe for concurrent use.
type Renderer struct {
	cfg    RenderConfig
	client *http.Client
}

// New creates a Renderer with the given configuration.
func New(cfg RenderConfig) *Renderer {
	return &Renderer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// Render produces the JPEG preview for a theme configuration.
func (r *Renderer) Render(ctx context.Context, cfg *themecfg.Config) ([]byte, error) {
	canvas := image.NewNRGBA(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))

	// 1. Primary background fill.
	bg := parseColor(cfg.BgColor1, defaultBgColor)
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	// 2. Background image, if any. Every failure in this step is
	// non-fatal: the preview simply renders without the image.
	if cfg.BgImage != "" {
		if err := r.drawBackgroundImage(ctx, canvas, cfg); err != nil {
			slog.Warn("preview background image skipped", "error", err)
		}
	}

	// 3. Rounded translucent control bar near the bottom.
	barRect := image.Rect(
		barMarginX,
		r.cfg.Height-barMarginBottom-barHeight,
		r.cfg.Width-barMarginX,
		r.cfg.Height-barMarginBottom,
	)
	barColor := parseColor(cfg.ContainerBgColor, color.NRGBA{A: 255})
	barColor.A = uint8(clampFloat(r.cfg.BarOpacity, 0, 1)*255 + 0.5)
	fillRoundedRect(canvas, barRect, cfg.BorderRadius, barColor)

	// 4. Swatch strip: one equal-width rectangle per theme color.
	swatches := []color.NRGBA{
		bg,
		parseColor(cfg.BgColor2, defaultBgColor),
		parseColor(cfg.ContainerBgColor, color.NRGBA{A: 255}),
		parseColor(cfg.TextColor, color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
		parseColor(cfg.LinkColor, color.NRGBA{G: 153, B: 255, A: 255}),
	}
	drawSwatches(canvas, barRect.Inset(swatchPad), swatches)

	// 5. Encode. This is the only fatal failure mode.
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: r.cfg.Quality}); err != nil {
		return nil, fmt.Errorf("preview encode: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBackgroundImage resolves, decodes, cover-scales, blurs, brightens,
// and composites the configured background image onto the canvas.
func (r *Renderer) drawBackgroundImage(ctx context.Context, canvas *image.NRGBA, cfg *themecfg.Config) error {
	data, err := r.resolveImage(ctx, cfg.BgImage)
	if err != nil {
		return err
	}

	imgCfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxDecodedPixels {
		return fmt.Errorf("image too large: %dx%d", imgCfg.Width, imgCfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	scaled := coverScale(img, r.cfg.Width, r.cfg.Height)
	scaled = gaussianBlur(scaled, cfg.BgBlur)
	scaled = adjustBrightness(scaled, cfg.BgBrightness/100)

	draw.Draw(canvas, canvas.Bounds(), scaled, scaled.Bounds().Min, draw.Over)
	return nil
}

// drawSwatches fills area with equal-width color rectangles separated by
// swatchGap, each with a thin contrasting outline.
func drawSwatches(canvas *image.NRGBA, area image.Rectangle, colors []color.NRGBA) {
	n := len(colors)
	if n == 0 || area.Empty() {
		return
	}

	totalGap := swatchGap * (n - 1)
	swatchW := (area.Dx() - totalGap) / n
	if swatchW < 2 {
		return
	}

	for i, c := range colors {
		x0 := area.Min.X + i*(swatchW+swatchGap)
		rect := image.Rect(x0, area.Min.Y, x0+swatchW, area.Max.Y)

		// Swatches are opaque so the strip reads as the palette itself.
		c.A = 255
		fillRect(canvas, rect, c)
		strokeRect(canvas, rect, contrastColor(c))
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
