// Package term converts rendered pixel buffers into terminal output.
//
// Two converters are provided. HalfBlocks packs two pixel rows into one
// terminal row using the upper-half-block glyph, giving square-ish pixels
// at full color. ASCII maps each pixel to a glyph from a luminance ramp,
// running the conversion through a filter pipeline so custom stages can be
// inserted before the glyph mapping.
//
// A Writer emits a Grid as ANSI escape sequences, degrading colors to the
// terminal's supported profile.
package term

import (
	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/gfx"
)

// Cell is one terminal character cell.
type Cell struct {
	Ch rune
	Fg gfx.Color
	Bg gfx.Color
}

// Grid is a rectangular block of terminal cells in row-major order.
type Grid struct {
	Cells  []Cell
	Width  int
	Height int
}

// At returns the cell at (x, y).
func (g Grid) At(x, y int) Cell {
	return g.Cells[y*g.Width+x]
}

func validateSize(pixels, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "grid size %dx%d must be positive", width, height)
	}
	if pixels != width*height {
		return errors.New(errors.ErrCodeInvalidBuffer,
			"pixel buffer has %d elements, want %d for %dx%d", pixels, width*height, width, height)
	}
	return nil
}
