package gfx

import "github.com/matzehuels/termrender/pkg/errors"

// BlendMode selects how a source color is combined with the destination
// pixel it lands on. Blending is a pure function of (dst, src).
type BlendMode uint8

const (
	// BlendNone replaces the destination with the source.
	BlendNone BlendMode = iota
	// BlendAlpha is standard source-over blending using the source alpha.
	BlendAlpha
	// BlendAdditive adds per channel, saturating at 255.
	BlendAdditive
	// BlendSubtractive subtracts per channel, saturating at 0.
	BlendSubtractive
	// BlendMultiplicative multiplies per channel and divides by 255.
	BlendMultiplicative
	// BlendScreen is inverted multiply: 255 - (255-d)(255-s)/255.
	BlendScreen
	// BlendOverlay multiplies below 50% destination per channel and
	// screens above.
	BlendOverlay
)

var blendNames = map[BlendMode]string{
	BlendNone:           "none",
	BlendAlpha:          "alpha",
	BlendAdditive:       "additive",
	BlendSubtractive:    "subtractive",
	BlendMultiplicative: "multiplicative",
	BlendScreen:         "screen",
	BlendOverlay:        "overlay",
}

// String returns the config name of the blend mode.
func (m BlendMode) String() string {
	if s, ok := blendNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseBlendMode parses a blend mode name as used in scene files.
func ParseBlendMode(s string) (BlendMode, error) {
	for m, name := range blendNames {
		if name == s {
			return m, nil
		}
	}
	return BlendNone, errors.New(errors.ErrCodeInvalidArgument,
		"invalid blend mode: %q (must be one of: none, alpha, additive, subtractive, multiplicative, screen, overlay)", s)
}

// Blend combines src into dst according to the mode.
func (m BlendMode) Blend(dst, src Color) Color {
	switch m {
	case BlendNone:
		return src
	case BlendAlpha:
		return blendAlpha(dst, src)
	case BlendAdditive:
		return perChannel(dst, src, func(d, s uint16) uint16 {
			return min(d+s, 255)
		})
	case BlendSubtractive:
		return perChannel(dst, src, func(d, s uint16) uint16 {
			if s > d {
				return 0
			}
			return d - s
		})
	case BlendMultiplicative:
		return perChannel(dst, src, func(d, s uint16) uint16 {
			return d * s / 255
		})
	case BlendScreen:
		return perChannel(dst, src, screen)
	case BlendOverlay:
		return perChannel(dst, src, func(d, s uint16) uint16 {
			if d < 128 {
				return 2 * d * s / 255
			}
			return 255 - 2*(255-d)*(255-s)/255
		})
	}
	return src
}

func screen(d, s uint16) uint16 {
	return 255 - (255-d)*(255-s)/255
}

// perChannel applies op to the RGB channels, keeping the destination alpha.
func perChannel(dst, src Color, op func(d, s uint16) uint16) Color {
	return Color{
		R: uint8(op(uint16(dst.R), uint16(src.R))),
		G: uint8(op(uint16(dst.G), uint16(src.G))),
		B: uint8(op(uint16(dst.B), uint16(src.B))),
		A: dst.A,
	}
}

func blendAlpha(dst, src Color) Color {
	sa := uint32(src.A)
	da := uint32(dst.A)

	// Source-over: out = src*sa + dst*(1-sa), alpha composited likewise.
	outA := sa + da*(255-sa)/255
	mix := func(s, d uint8) uint8 {
		v := (uint32(s)*sa + uint32(d)*(255-sa)) / 255
		return uint8(min(v, 255))
	}
	return Color{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: uint8(min(outA, 255)),
	}
}
