// Package gfx provides colors and blend modes for the rendering pipeline.
//
// Colors are 8-bit RGBA values. Blending is a pure function of
// (destination, source) selected per draw call via [BlendMode]; see blend.go
// for the per-mode formulas.
package gfx

import (
	"fmt"
	"strings"

	"github.com/matzehuels/termrender/pkg/errors"
)

// Color is an 8-bit RGBA color. Alpha is straight (not premultiplied).
type Color struct {
	R, G, B, A uint8
}

// Common colors.
var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Hex formats the color as "#rrggbb" or "#rrggbbaa" when alpha is not 255.
func (c Color) Hex() string {
	if c.A != 255 {
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" color strings.
// The leading '#' is optional.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")

	nib := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}

	byteAt := func(i int) (uint8, bool) {
		hi, ok1 := nib(h[i])
		lo, ok2 := nib(h[i+1])
		return hi<<4 | lo, ok1 && ok2
	}

	switch len(h) {
	case 3:
		var out [3]uint8
		for i := 0; i < 3; i++ {
			v, ok := nib(h[i])
			if !ok {
				return Color{}, errors.New(errors.ErrCodeInvalidArgument, "invalid hex color %q", s)
			}
			out[i] = v<<4 | v
		}
		return Color{R: out[0], G: out[1], B: out[2], A: 255}, nil
	case 6, 8:
		var out [4]uint8
		out[3] = 255
		for i := 0; i*2 < len(h); i++ {
			v, ok := byteAt(i * 2)
			if !ok {
				return Color{}, errors.New(errors.ErrCodeInvalidArgument, "invalid hex color %q", s)
			}
			out[i] = v
		}
		return Color{R: out[0], G: out[1], B: out[2], A: out[3]}, nil
	}
	return Color{}, errors.New(errors.ErrCodeInvalidArgument, "invalid hex color %q", s)
}

// Luminance returns the perceptual luminance of c in [0,1], ignoring alpha.
func (c Color) Luminance() float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}
