package term

import (
	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/gfx"
)

// upperHalf renders the cell foreground in the top half and the background
// in the bottom half, doubling vertical resolution.
const upperHalf = '▀'

// HalfBlocks converts a pixel buffer into a grid of half-block cells. Each
// terminal row covers two pixel rows; with an odd pixel height the final
// bottom half is black.
func HalfBlocks(pixels *filter.Buffer[gfx.Color], width, height int) (Grid, error) {
	if err := validateSize(pixels.Len(), width, height); err != nil {
		return Grid{}, err
	}

	rows := (height + 1) / 2
	cells := make([]Cell, rows*width)
	for y := 0; y < rows; y++ {
		for x := 0; x < width; x++ {
			top := pixels.At(2*y*width + x)
			bottom := gfx.Black
			if 2*y+1 < height {
				bottom = pixels.At((2*y+1)*width + x)
			}
			cells[y*width+x] = Cell{Ch: upperHalf, Fg: top, Bg: bottom}
		}
	}
	return Grid{Cells: cells, Width: width, Height: rows}, nil
}

// DefaultRamp orders glyphs from dark to bright for ASCII conversion.
const DefaultRamp = " .:-=+*#%@"

// ASCIIPipeline returns a built pipeline mapping pixels to ramp glyphs by
// luminance. Additional stages can be added before rebuilding.
func ASCIIPipeline(ramp string) (*filter.Pipeline[gfx.Color, Cell], error) {
	glyphs := []rune(ramp)
	if len(glyphs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "luminance ramp is empty")
	}

	p := filter.NewPipeline[gfx.Color, Cell]()
	p.AddFilter(filter.Map(filter.ModeConcurrent, func(c gfx.Color, _ filter.Frame) Cell {
		i := int(c.Luminance() * float64(len(glyphs)-1))
		return Cell{Ch: glyphs[i], Fg: c, Bg: gfx.Black}
	}))
	if err := p.Build(); err != nil {
		return nil, err
	}
	return p, nil
}

// ASCII converts a pixel buffer into a grid of ramp glyphs.
func ASCII(pixels *filter.Buffer[gfx.Color], width, height int, ramp string) (Grid, error) {
	if err := validateSize(pixels.Len(), width, height); err != nil {
		return Grid{}, err
	}
	p, err := ASCIIPipeline(ramp)
	if err != nil {
		return Grid{}, err
	}

	out := filter.NewBuffer[Cell](pixels.Len())
	if err := p.Run(pixels, out, filter.Frame{}); err != nil {
		return Grid{}, err
	}
	return Grid{Cells: out.Items(), Width: width, Height: height}, nil
}
