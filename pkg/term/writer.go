package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// Writer emits cell grids as ANSI escape sequences. Colors are converted
// through the output's color profile, so truecolor grids degrade gracefully
// on 256-color and 16-color terminals.
type Writer struct {
	out *termenv.Output
}

// NewWriter wraps w with the color profile detected for it.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: termenv.NewOutput(w)}
}

// NewWriterProfile wraps w with an explicit color profile.
func NewWriterProfile(w io.Writer, profile termenv.Profile) *Writer {
	return &Writer{out: termenv.NewOutput(w, termenv.WithProfile(profile))}
}

// WriteGrid writes g row by row, ending each row with a style reset and a
// newline.
func (wr *Writer) WriteGrid(g Grid) error {
	p := wr.out.Profile
	var sb strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			s := wr.out.String(string(c.Ch)).
				Foreground(p.Color(rgbHex(c.Fg.R, c.Fg.G, c.Fg.B))).
				Background(p.Color(rgbHex(c.Bg.R, c.Bg.G, c.Bg.B)))
			sb.WriteString(s.String())
		}
		sb.WriteString("\n")
	}
	_, err := wr.out.WriteString(sb.String())
	return err
}

// rgbHex formats an opaque hex color string for termenv.
func rgbHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
