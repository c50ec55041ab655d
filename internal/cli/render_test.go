package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/termrender/pkg/scene"
)

const testScene = `
width = 16
height = 16
background = "#000000"

[[shape]]
kind = "ellipse"
color = "#ff0000"

[shape.ellipse]
center = [8.0, 8.0]
radii = [5.0, 4.0]
`

func writeTestScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte(testScene), 0o644); err != nil {
		t.Fatalf("failed to write scene: %v", err)
	}
	return path
}

func TestRenderScene(t *testing.T) {
	s, err := scene.Parse([]byte(testScene))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	target, _, err := renderScene(s)
	if err != nil {
		t.Fatalf("renderScene failed: %v", err)
	}
	if c := target.At(8, 8); c.R != 255 || c.G != 0 {
		t.Errorf("ellipse center = %v, want red", c)
	}
}

func TestWritePNG(t *testing.T) {
	s, err := scene.Parse([]byte(testScene))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	target, _, err := renderScene(s)
	if err != nil {
		t.Fatalf("renderScene failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := writePNG(target, path); err != nil {
		t.Fatalf("writePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("image is %dx%d, want 16x16", b.Dx(), b.Dy())
	}
}

func TestWriteTerminalModes(t *testing.T) {
	s, err := scene.Parse([]byte(testScene))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	target, _, err := renderScene(s)
	if err != nil {
		t.Fatalf("renderScene failed: %v", err)
	}

	tests := []struct {
		mode    string
		wantErr bool
	}{
		{mode: "halfblock", wantErr: false},
		{mode: "ascii", wantErr: false},
		{mode: "ASCII", wantErr: false},
		{mode: "sixel", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&buf)

			err := writeTerminal(cmd, target, tt.mode)
			if (err != nil) != tt.wantErr {
				t.Fatalf("writeTerminal(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
			if !tt.wantErr && buf.Len() == 0 {
				t.Error("terminal output is empty")
			}
		})
	}
}

func TestRenderCommandToPNG(t *testing.T) {
	scenePath := writeTestScene(t)
	outPath := filepath.Join(t.TempDir(), "out.png")

	cmd := newRenderCmd()
	cmd.SetArgs([]string{scenePath, "--out", outPath})
	cmd.SetOut(&bytes.Buffer{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("render command failed: %v", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func TestPipelineCommandDOT(t *testing.T) {
	scenePath := writeTestScene(t)

	var buf bytes.Buffer
	cmd := newPipelineCmd()
	cmd.SetArgs([]string{scenePath})
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("pipeline command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "digraph") {
		t.Errorf("output should contain DOT source, got %q", buf.String())
	}
}
