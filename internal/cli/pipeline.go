package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/scene"
)

func newPipelineCmd() *cobra.Command {
	var (
		shapeIdx int
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "pipeline <scene.toml>",
		Short: "Export a shape's filter pipeline graph",
		Long: `Pipeline builds the filter pipeline of one scene shape and exports its
filter/buffer graph. The output format follows the --out extension: .svg
renders through Graphviz, anything else writes raw DOT. Without --out the
DOT source is printed to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args[0], shapeIdx, outPath)
		},
	}

	cmd.Flags().IntVarP(&shapeIdx, "shape", "s", 0, "index of the shape whose pipeline to export")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (.svg or .dot)")
	return cmd
}

func runPipeline(cmd *cobra.Command, scenePath string, shapeIdx int, outPath string) error {
	logger := loggerFromContext(cmd.Context())

	s, err := scene.Load(scenePath)
	if err != nil {
		printError("Failed to load scene: %s", errors.UserMessage(err))
		return err
	}
	if shapeIdx < 0 || shapeIdx >= len(s.Shapes) {
		return errors.New(errors.ErrCodeInvalidArgument,
			"shape index %d out of range, scene has %d shapes", shapeIdx, len(s.Shapes))
	}

	p, err := s.Shapes[shapeIdx].Pipeline()
	if err != nil {
		printError("Failed to build pipeline: %s", errors.UserMessage(err))
		return err
	}
	dot := p.ToDOT()
	logger.Debug("built pipeline", "shape", shapeIdx, "filters", p.Len())

	if outPath == "" {
		cmd.Println(dot)
		return nil
	}

	data := []byte(dot)
	if strings.HasSuffix(strings.ToLower(outPath), ".svg") {
		data, err = filter.RenderSVG(dot)
		if err != nil {
			printError("Failed to render SVG: %s", errors.UserMessage(err))
			return err
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	printSuccess("Saved %s", StyleValue.Render(outPath))
	return nil
}
