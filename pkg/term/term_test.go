package term

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/gfx"
)

func pixelBuffer(colors ...gfx.Color) *filter.Buffer[gfx.Color] {
	b := filter.NewBuffer[gfx.Color](len(colors))
	b.Append(colors...)
	return b
}

func TestHalfBlocks(t *testing.T) {
	red := gfx.Color{R: 255, A: 255}
	blue := gfx.Color{B: 255, A: 255}

	// 2x2: top row red, bottom row blue.
	g, err := HalfBlocks(pixelBuffer(red, red, blue, blue), 2, 2)
	if err != nil {
		t.Fatalf("HalfBlocks failed: %v", err)
	}
	if g.Width != 2 || g.Height != 1 {
		t.Fatalf("grid is %dx%d, want 2x1", g.Width, g.Height)
	}
	c := g.At(0, 0)
	if c.Ch != '▀' || c.Fg != red || c.Bg != blue {
		t.Errorf("cell = %+v, want half block with red fg and blue bg", c)
	}
}

func TestHalfBlocksOddHeight(t *testing.T) {
	white := gfx.White
	g, err := HalfBlocks(pixelBuffer(white, white, white), 1, 3)
	if err != nil {
		t.Fatalf("HalfBlocks failed: %v", err)
	}
	if g.Height != 2 {
		t.Fatalf("grid height = %d, want 2", g.Height)
	}
	if c := g.At(0, 1); c.Bg != gfx.Black {
		t.Errorf("dangling bottom half = %v, want black", c.Bg)
	}
}

func TestHalfBlocksSizeMismatch(t *testing.T) {
	_, err := HalfBlocks(pixelBuffer(gfx.Black), 2, 2)
	if errors.GetCode(err) != errors.ErrCodeInvalidBuffer {
		t.Errorf("got %v, want code %s", err, errors.ErrCodeInvalidBuffer)
	}
}

func TestASCIIRamp(t *testing.T) {
	g, err := ASCII(pixelBuffer(gfx.Black, gfx.White), 2, 1, DefaultRamp)
	if err != nil {
		t.Fatalf("ASCII failed: %v", err)
	}
	if got := g.At(0, 0).Ch; got != ' ' {
		t.Errorf("black maps to %q, want space", got)
	}
	if got := g.At(1, 0).Ch; got != '@' {
		t.Errorf("white maps to %q, want '@'", got)
	}
}

func TestASCIIEmptyRamp(t *testing.T) {
	_, err := ASCII(pixelBuffer(gfx.Black), 1, 1, "")
	if errors.GetCode(err) != errors.ErrCodeInvalidArgument {
		t.Errorf("got %v, want code %s", err, errors.ErrCodeInvalidArgument)
	}
}

func TestWriterOutputShape(t *testing.T) {
	g, err := HalfBlocks(pixelBuffer(
		gfx.Color{R: 255, A: 255}, gfx.Color{G: 255, A: 255},
		gfx.Color{B: 255, A: 255}, gfx.White,
	), 2, 2)
	if err != nil {
		t.Fatalf("HalfBlocks failed: %v", err)
	}

	var sb strings.Builder
	w := NewWriterProfile(&sb, termenv.TrueColor)
	if err := w.WriteGrid(g); err != nil {
		t.Fatalf("WriteGrid failed: %v", err)
	}

	out := sb.String()
	if lines := strings.Count(out, "\n"); lines != 1 {
		t.Errorf("output has %d lines, want 1", lines)
	}
	if strings.Count(out, "▀") != 2 {
		t.Errorf("output should contain one half block per cell")
	}
	if !strings.Contains(out, "38;2;255;0;0") {
		t.Error("output should carry a truecolor foreground sequence for red")
	}
}
