package filter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts the pipeline's filter/buffer graph to Graphviz DOT format
// for debugging. Filters appear as boxes in chain order with their element
// kinds on the edges; resolved intermediate slots appear as dashed notes.
// Slot information is only present after a successful Build.
func (p *Pipeline[In, Out]) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph pipeline {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  in [label=%q, shape=ellipse];\n", "in: "+p.InputKind().String())
	fmt.Fprintf(&buf, "  out [label=%q, shape=ellipse];\n", "out: "+p.OutputKind().String())

	for i, f := range p.filters {
		fmt.Fprintf(&buf, "  f%d [label=%q];\n", i, filterLabel(i, f))
	}

	buf.WriteString("\n")
	prev := "in"
	for i, f := range p.filters {
		cur := fmt.Sprintf("f%d", i)
		fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", prev, cur, f.InputKind().String())
		prev = cur
	}
	if len(p.filters) > 0 {
		last := p.filters[len(p.filters)-1]
		fmt.Fprintf(&buf, "  %s -> out [label=%q];\n", prev, last.OutputKind().String())
	} else {
		buf.WriteString("  in -> out;\n")
	}

	if p.built && len(p.slots) > 0 {
		buf.WriteString("\n")
		for i, s := range p.slots {
			fmt.Fprintf(&buf, "  s%d [label=%q, shape=note, style=\"filled,dashed\", fillcolor=lightgrey];\n",
				i, slotLabel(s))
			fmt.Fprintf(&buf, "  f%d -> s%d [style=dotted, arrowhead=none];\n", i, i)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func filterLabel(i int, f Filter) string {
	label := fmt.Sprintf("filter %d", i)
	if mr, ok := f.(ModeReporter); ok {
		label += "\n" + mr.Mode().String()
	}
	return label
}

func slotLabel(s slot) string {
	switch {
	case s.fromInput:
		return "slot: caller input\n" + s.kind.String()
	case s.fromOutput:
		return "slot: caller output\n" + s.kind.String()
	default:
		return "slot: registered\n" + s.kind.String()
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
