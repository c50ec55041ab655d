package render

import (
	"image"
	"math/rand/v2"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/gfx"
)

// =============================================================================
// Fragment Filters
// =============================================================================

// SolidColor replaces every fragment's color, keeping its alpha.
func SolidColor(c gfx.Color) filter.Filter {
	return filter.Map(filter.ModeConcurrent, func(f Fragment, _ filter.Frame) Fragment {
		f.Color = gfx.Color{R: c.R, G: c.G, B: c.B, A: f.Color.A}
		return f
	})
}

// Tint multiplies every fragment's color channel-wise with c.
func Tint(c gfx.Color) filter.Filter {
	return filter.Map(filter.ModeConcurrent, func(f Fragment, _ filter.Frame) Fragment {
		f.Color = gfx.Color{
			R: mulChannel(f.Color.R, c.R),
			G: mulChannel(f.Color.G, c.G),
			B: mulChannel(f.Color.B, c.B),
			A: mulChannel(f.Color.A, c.A),
		}
		return f
	})
}

func mulChannel(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}

// Grayscale collapses every fragment's color to its luminance.
func Grayscale() filter.Filter {
	return filter.Map(filter.ModeConcurrent, func(f Fragment, _ filter.Frame) Fragment {
		l := uint8(f.Color.Luminance()*255 + 0.5)
		f.Color = gfx.Color{R: l, G: l, B: l, A: f.Color.A}
		return f
	})
}

// HueRotate shifts every fragment's hue by the given number of degrees.
func HueRotate(degrees float64) filter.Filter {
	return filter.Map(filter.ModeConcurrent, func(f Fragment, _ filter.Frame) Fragment {
		c := colorful.Color{
			R: float64(f.Color.R) / 255,
			G: float64(f.Color.G) / 255,
			B: float64(f.Color.B) / 255,
		}
		h, s, l := c.Hsl()
		h += degrees
		for h < 0 {
			h += 360
		}
		for h >= 360 {
			h -= 360
		}
		out := colorful.Hsl(h, s, l).Clamped()
		f.Color = gfx.Color{
			R: uint8(out.R*255 + 0.5),
			G: uint8(out.G*255 + 0.5),
			B: uint8(out.B*255 + 0.5),
			A: f.Color.A,
		}
		return f
	})
}

// Flicker scales fragment brightness by a random factor in [lo, hi] that is
// re-rolled at most once per interval. The factor is decided before each run
// so all fragments of a frame flicker together.
func Flicker(interval time.Duration, lo, hi float64, seed uint64) filter.Filter {
	rng := rand.New(rand.NewPCG(seed, seed))
	factor := hi
	last := time.Duration(-1)
	return filter.Map(filter.ModeConcurrent,
		func(f Fragment, _ filter.Frame) Fragment {
			f.Color = gfx.Color{
				R: scaleChannel(f.Color.R, factor),
				G: scaleChannel(f.Color.G, factor),
				B: scaleChannel(f.Color.B, factor),
				A: f.Color.A,
			}
			return f
		},
		filter.WithBefore(func(frame filter.Frame) {
			if last >= 0 && frame.Time-last < interval {
				return
			}
			last = frame.Time
			factor = lo + rng.Float64()*(hi-lo)
		}),
	)
}

func scaleChannel(c uint8, f float64) uint8 {
	v := float64(c) * f
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}

// =============================================================================
// Texture Sampling
// =============================================================================

// TextureSampler samples an image through fragment UVs. The source image is
// rescaled once at construction so per-fragment lookups stay cheap.
type TextureSampler struct {
	img *image.RGBA
}

// NewTextureSampler rescales src to width x height with Catmull-Rom
// interpolation.
func NewTextureSampler(src image.Image, width, height int) *TextureSampler {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return &TextureSampler{img: dst}
}

// At samples the texture at normalized coordinates, clamped to [0,1].
func (s *TextureSampler) At(u, v float64) gfx.Color {
	b := s.img.Bounds()
	x := b.Min.X + int(clamp01(u)*float64(b.Dx()-1)+0.5)
	y := b.Min.Y + int(clamp01(v)*float64(b.Dy()-1)+0.5)
	c := s.img.RGBAAt(x, y)
	return gfx.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Texture colors every fragment by sampling the texture at its UV.
func Texture(s *TextureSampler) filter.Filter {
	return filter.Map(filter.ModeConcurrent, func(f Fragment, _ filter.Frame) Fragment {
		f.Color = s.At(f.UV.X, f.UV.Y)
		return f
	})
}
