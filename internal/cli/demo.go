package cli

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/render"
	"github.com/matzehuels/termrender/pkg/scene"
	"github.com/matzehuels/termrender/pkg/term"
)

const demoTickInterval = 50 * time.Millisecond

func newDemoCmd() *cobra.Command {
	var spin float64

	cmd := &cobra.Command{
		Use:   "demo <scene.toml>",
		Short: "Animate a scene in the terminal",
		Long: `Demo runs a scene in an interactive loop, re-rendering it on every tick
with the shape transforms rotating over time. Press q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scene.Load(args[0])
			if err != nil {
				printError("Failed to load scene: %s", errors.UserMessage(err))
				return err
			}
			m, err := newDemoModel(s, spin)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().Float64Var(&spin, "spin", 45, "rotation speed in degrees per second")
	return cmd
}

// =============================================================================
// demoModel - Animated scene loop
// =============================================================================

type demoTickMsg time.Time

type demoModel struct {
	scene    *scene.Scene
	renderer *render.Renderer
	target   *render.Target
	spin     float64
	started  time.Time
	elapsed  time.Duration
	frames   int
	err      error
}

func newDemoModel(s *scene.Scene, spin float64) (*demoModel, error) {
	target, err := render.NewTarget(s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	r := render.NewRenderer()
	target.SetRenderer(r)
	return &demoModel{
		scene:    s,
		renderer: r,
		target:   target,
		spin:     spin,
		started:  time.Now(),
	}, nil
}

func demoTick() tea.Cmd {
	return tea.Tick(demoTickInterval, func(t time.Time) tea.Msg {
		return demoTickMsg(t)
	})
}

func (m *demoModel) Init() tea.Cmd {
	return demoTick()
}

func (m *demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case demoTickMsg:
		m.elapsed = time.Time(msg).Sub(m.started)
		if err := m.renderFrame(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.frames++
		return m, demoTick()
	}
	return m, nil
}

// renderFrame rebuilds the scene's draw calls with rotated transforms and
// renders one frame.
func (m *demoModel) renderFrame() error {
	angle := m.spin * m.elapsed.Seconds()
	for i := range m.scene.Shapes {
		m.scene.Shapes[i].Xform.Rotation = angle
	}

	// The arena is rebuilt every frame, so stale handles never survive.
	m.renderer.ClearMeshes()
	if err := m.scene.Build(m.renderer, m.target); err != nil {
		return err
	}
	return m.target.Render(filter.Frame{Time: m.elapsed})
}

func (m *demoModel) View() string {
	if m.err != nil {
		return "render failed: " + m.err.Error() + "\n"
	}
	if m.frames == 0 {
		return StyleDim.Render("warming up...") + "\n"
	}

	w, h := m.target.Size()
	grid, err := term.HalfBlocks(m.target.Pixels(), w, h)
	if err != nil {
		return "render failed: " + err.Error() + "\n"
	}

	var sb strings.Builder
	if err := term.NewWriterProfile(&sb, termenv.TrueColor).WriteGrid(grid); err != nil {
		return "render failed: " + err.Error() + "\n"
	}
	sb.WriteString(StyleDim.Render("q quit"))
	sb.WriteString("\n")
	return sb.String()
}
