package render

import (
	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/geom"
	"github.com/matzehuels/termrender/pkg/gfx"
)

// Fragment is a candidate pixel produced by rasterizing a primitive. It
// carries the interpolated attributes fragment filters operate on before
// the color is blended into the pixel buffer.
type Fragment struct {
	// Color is the fragment's current color. Rasterization initializes it
	// to opaque white; filters are expected to replace or modulate it.
	Color gfx.Color

	// Pos is the fragment's screen position.
	Pos geom.Vec2

	// UV is the interpolated texture/procedural coordinate.
	UV geom.Vec2

	// Size is the screen-space size of the primitive the fragment
	// belongs to, and InvSize its per-axis reciprocal (zero where the
	// size is zero).
	Size    geom.Vec2
	InvSize geom.Vec2

	// Attachment is an open extension slot for filter-specific data.
	Attachment any
}

// Pipeline is a fragment post-processing pipeline. The renderer drives every
// multi-fragment primitive through one before blending.
type Pipeline = filter.Pipeline[Fragment, Fragment]

// NewPipeline creates an empty fragment pipeline.
func NewPipeline() *Pipeline {
	return filter.NewPipeline[Fragment, Fragment]()
}

// invSize returns the per-axis reciprocal of size, with zero components for
// zero-sized axes.
func invSize(size geom.Vec2) geom.Vec2 {
	var inv geom.Vec2
	if size.X != 0 {
		inv.X = 1 / size.X
	}
	if size.Y != 0 {
		inv.Y = 1 / size.Y
	}
	return inv
}
