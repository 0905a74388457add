// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"image/color"
	"strconv"
	"strings"
)

// parseColor decodes a CSS-style color string: #rgb, #rrggbb, #rrggbbaa,
// rgb(r,g,b) or rgba(r,g,b,a). A malformed value returns the fallback —
// bad colors degrade, they never abort a render.
func parseColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}

	if strings.HasPrefix(s, "#") {
		if c, ok := parseHex(s[1:]); ok {
			return c
		}
		return fallback
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "rgba(") || strings.HasPrefix(lower, "rgb(") {
		if c, ok := parseRGBFunc(lower); ok {
			return c
		}
	}
	return fallback
}

// parseHex decodes the hex digits of a #-prefixed color.
func parseHex(hex string) (color.NRGBA, bool) {
	switch len(hex) {
	case 3: // #rgb
		r, okR := hexNibble(hex[0])
		g, okG := hexNibble(hex[1])
		b, okB := hexNibble(hex[2])
		if !okR || !okG || !okB {
			return color.NRGBA{}, false
		}
		return color.NRGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}, true
	case 6, 8: // #rrggbb / #rrggbbaa
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, false
		}
		if len(hex) == 6 {
			return color.NRGBA{
				R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255,
			}, true
		}
		return color.NRGBA{
			R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v),
		}, true
	}
	return color.NRGBA{}, false
}

// hexNibble decodes a single hex digit to its value.
func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// parseRGBFunc decodes rgb(r,g,b) and rgba(r,g,b,a) with a in [0,1].
func parseRGBFunc(s string) (color.NRGBA, bool) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open == -1 || end == -1 || end < open {
		return color.NRGBA{}, false
	}

	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, false
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, false
		}
		ch[i] = uint8(v)
	}

	alpha := uint8(255)
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.NRGBA{}, false
		}
		alpha = uint8(a*255 + 0.5)
	}

	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

// contrastColor returns black or white, whichever stands out against c.
// Used for the thin outline around color swatches.
func contrastColor(c color.NRGBA) color.NRGBA {
	// Perceived luminance, integer approximation.
	lum := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
	if lum > 127 {
		return color.NRGBA{A: 255} // black
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}
