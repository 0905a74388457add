// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	fallback := color.NRGBA{R: 1, G: 2, B: 3, A: 255}

	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#000000", color.NRGBA{A: 255}},
		{"#ffffff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#1a2b3c", color.NRGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 255}},
		{"#fff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#123", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 255}},
		{"#11223344", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
		{"rgb(10,20,30)", color.NRGBA{R: 10, G: 20, B: 30, A: 255}},
		{"rgba(0,0,0,0.5)", color.NRGBA{A: 128}},
		{"rgba(255, 128, 0, 1)", color.NRGBA{R: 255, G: 128, A: 255}},
		{" #ffffff ", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		// Malformed inputs fall back.
		{"", fallback},
		{"red", fallback},
		{"#zzzzzz", fallback},
		{"#12345", fallback},
		{"rgb(300,0,0)", fallback},
		{"rgba(0,0,0,2)", fallback},
		{"rgba(0,0,0)", color.NRGBA{A: 255}},
		{"rgb(1,2)", fallback},
	}

	for _, tc := range cases {
		got := parseColor(tc.in, fallback)
		if got != tc.want {
			t.Errorf("parseColor(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestContrastColor(t *testing.T) {
	black := color.NRGBA{A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	if got := contrastColor(white); got != black {
		t.Errorf("contrast of white: got %v, want black", got)
	}
	if got := contrastColor(black); got != white {
		t.Errorf("contrast of black: got %v, want white", got)
	}
	if got := contrastColor(color.NRGBA{R: 255, G: 255, A: 255}); got != black {
		t.Errorf("contrast of yellow: got %v, want black", got)
	}
	if got := contrastColor(color.NRGBA{B: 180, A: 255}); got != white {
		t.Errorf("contrast of dark blue: got %v, want white", got)
	}
}
