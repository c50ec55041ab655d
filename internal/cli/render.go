package cli

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/render"
	"github.com/matzehuels/termrender/pkg/scene"
	"github.com/matzehuels/termrender/pkg/term"
)

// Output modes for the render command.
const (
	modeHalfBlock = "halfblock"
	modeASCII     = "ascii"
)

func newRenderCmd() *cobra.Command {
	var (
		mode    string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "render <scene.toml>",
		Short: "Render a scene to the terminal or a PNG file",
		Long: `Render loads a TOML scene file, rasterizes one frame and prints it to
stdout as colored terminal cells. With --out the frame is saved as a PNG
image instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], mode, outPath)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", modeHalfBlock, "terminal output mode (halfblock, ascii)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the frame to a PNG file instead of stdout")
	return cmd
}

func runRender(cmd *cobra.Command, scenePath, mode, outPath string) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	s, err := scene.Load(scenePath)
	if err != nil {
		printError("Failed to load scene: %s", errors.UserMessage(err))
		return err
	}
	logger.Debug("loaded scene", "path", scenePath, "size", s.Width, "shapes", len(s.Shapes))

	target, _, err := renderScene(s)
	if err != nil {
		printError("Failed to render scene: %s", errors.UserMessage(err))
		return err
	}

	if outPath != "" {
		if err := writePNG(target, outPath); err != nil {
			printError("Failed to write %s: %s", outPath, errors.UserMessage(err))
			return err
		}
		prog.done("Rendered " + filepath.Base(scenePath) + " to " + outPath)
		printSuccess("Saved %s", StyleValue.Render(outPath))
		return nil
	}

	if err := writeTerminal(cmd, target, mode); err != nil {
		return err
	}
	prog.done("Rendered " + filepath.Base(scenePath))
	return nil
}

// renderScene builds and renders a single frame of s.
func renderScene(s *scene.Scene) (*render.Target, *render.Renderer, error) {
	target, err := render.NewTarget(s.Width, s.Height)
	if err != nil {
		return nil, nil, err
	}
	r := render.NewRenderer()
	target.SetRenderer(r)

	if err := s.Build(r, target); err != nil {
		return nil, nil, err
	}
	if err := target.Render(filter.Frame{}); err != nil {
		return nil, nil, err
	}
	return target, r, nil
}

// writeTerminal prints the target's pixels to stdout in the chosen mode.
func writeTerminal(cmd *cobra.Command, target *render.Target, mode string) error {
	w, h := target.Size()

	var (
		grid term.Grid
		err  error
	)
	switch strings.ToLower(mode) {
	case modeHalfBlock:
		grid, err = term.HalfBlocks(target.Pixels(), w, h)
	case modeASCII:
		grid, err = term.ASCII(target.Pixels(), w, h, term.DefaultRamp)
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "unknown output mode %q", mode)
	}
	if err != nil {
		return err
	}
	return term.NewWriter(cmd.OutOrStdout()).WriteGrid(grid)
}

// writePNG encodes the target's pixel buffer as a PNG file.
func writePNG(target *render.Target, path string) error {
	w, h := target.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := target.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
