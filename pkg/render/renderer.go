package render

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/geom"
	"github.com/matzehuels/termrender/pkg/gfx"
	"github.com/matzehuels/termrender/pkg/observability"
)

// Renderer rasterizes primitives into fragments and blends them into a
// [Target]. It owns the vertex arena meshes reference and two scratch
// fragment buffers reused across calls. A Renderer serves one caller at a
// time.
type Renderer struct {
	arena []geom.Vertex

	// Scratch buffers reused across draw calls: raw rasterized fragments
	// and the pipeline's filtered result.
	frags    *filter.Buffer[Fragment]
	filtered *filter.Buffer[Fragment]

	// xformed holds transformed mesh vertices for the current draw call.
	xformed []geom.Vertex

	workers int
	logger  *log.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer's logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithWorkers bounds the number of worker goroutines used for data-parallel
// rasterization. Defaults to the number of CPUs.
func WithWorkers(n int) Option {
	return func(r *Renderer) { r.workers = n }
}

// NewRenderer creates a renderer with an empty vertex arena.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		frags:    filter.NewBuffer[Fragment](0),
		filtered: filter.NewBuffer[Fragment](0),
		workers:  runtime.NumCPU(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// =============================================================================
// Vertex Arena
// =============================================================================

// AddMesh copies vertices into the arena and returns a mesh handle
// referencing them. The vertex count must be a positive multiple of 3.
func (r *Renderer) AddMesh(vertices []geom.Vertex) (geom.Mesh, error) {
	if err := validateMeshCount(len(vertices)); err != nil {
		return geom.Mesh{}, err
	}
	first := len(r.arena)
	r.arena = append(r.arena, vertices...)
	return geom.Mesh{First: first, Count: len(vertices)}, nil
}

// AllocateMesh grows the arena by count vertices and returns a writable view
// of the new range together with its mesh handle. The view is valid until
// the arena grows again or is cleared.
func (r *Renderer) AllocateMesh(count int) ([]geom.Vertex, geom.Mesh, error) {
	if err := validateMeshCount(count); err != nil {
		return nil, geom.Mesh{}, err
	}
	first := len(r.arena)
	r.arena = append(r.arena, make([]geom.Vertex, count)...)
	return r.arena[first : first+count], geom.Mesh{First: first, Count: count}, nil
}

// ClearMeshes empties the vertex arena. All outstanding mesh handles become
// dangling; using one afterwards is an error surfaced at draw time.
func (r *Renderer) ClearMeshes() {
	r.arena = r.arena[:0]
}

// ArenaSize returns the number of vertices currently in the arena.
func (r *Renderer) ArenaSize() int {
	return len(r.arena)
}

func validateMeshCount(count int) error {
	if count <= 0 {
		return errors.New(errors.ErrCodeInvalidMesh, "mesh vertex count %d must be positive", count)
	}
	if count%3 != 0 {
		return errors.New(errors.ErrCodeInvalidMesh, "mesh vertex count %d is not a multiple of 3", count)
	}
	return nil
}

// validateMesh checks a mesh handle against the current arena.
func (r *Renderer) validateMesh(m geom.Mesh) error {
	if err := validateMeshCount(m.Count); err != nil {
		return err
	}
	if m.First < 0 || m.First+m.Count > len(r.arena) {
		return errors.New(errors.ErrCodeInvalidMesh,
			"mesh range [%d,%d) exceeds arena size %d", m.First, m.First+m.Count, len(r.arena))
	}
	return nil
}

// =============================================================================
// Deferred Draws
// =============================================================================

// DrawVertex records a single-point draw call for the next Target.Render.
func (r *Renderer) DrawVertex(t *Target, v geom.Vertex, tr geom.Transform, p *Pipeline, depth float64, blend gfx.BlendMode) {
	t.enqueue(DrawCallData{kind: primVertex, vertex: v, transform: tr, blend: blend, pipeline: p}, depth)
}

// DrawLine records a line draw call for the next Target.Render.
func (r *Renderer) DrawLine(t *Target, l geom.Line, tr geom.Transform, p *Pipeline, depth float64, blend gfx.BlendMode) {
	t.enqueue(DrawCallData{kind: primLine, line: l, transform: tr, blend: blend, pipeline: p}, depth)
}

// DrawEllipse records an ellipse draw call for the next Target.Render.
// Both radii must be positive.
func (r *Renderer) DrawEllipse(t *Target, e geom.Ellipse, tr geom.Transform, p *Pipeline, depth float64, blend gfx.BlendMode) error {
	if err := validateEllipse(e); err != nil {
		return err
	}
	t.enqueue(DrawCallData{kind: primEllipse, ellipse: e, transform: tr, blend: blend, pipeline: p}, depth)
	return nil
}

// DrawMesh records a triangle-mesh draw call for the next Target.Render.
// The mesh handle is validated against the arena immediately.
func (r *Renderer) DrawMesh(t *Target, m geom.Mesh, tr geom.Transform, p *Pipeline, depth float64, blend gfx.BlendMode) error {
	if err := r.validateMesh(m); err != nil {
		return err
	}
	t.enqueue(DrawCallData{kind: primMesh, mesh: m, transform: tr, blend: blend, pipeline: p}, depth)
	return nil
}

func validateEllipse(e geom.Ellipse) error {
	if e.Radii.X <= 0 || e.Radii.Y <= 0 {
		return errors.New(errors.ErrCodeInvalidArgument,
			"ellipse radii (%g, %g) must be positive", e.Radii.X, e.Radii.Y)
	}
	return nil
}

// =============================================================================
// Immediate Draws
// =============================================================================

// DrawImmediateVertex rasterizes, filters and blends a single point
// synchronously.
func (r *Renderer) DrawImmediateVertex(t *Target, v geom.Vertex, tr geom.Transform, p *Pipeline, blend gfx.BlendMode, frame filter.Frame) error {
	d := DrawCallData{kind: primVertex, vertex: v, transform: tr, blend: blend, pipeline: p}
	return r.process(t, &d, frame)
}

// DrawImmediateLine rasterizes, filters and blends a line synchronously.
func (r *Renderer) DrawImmediateLine(t *Target, l geom.Line, tr geom.Transform, p *Pipeline, blend gfx.BlendMode, frame filter.Frame) error {
	d := DrawCallData{kind: primLine, line: l, transform: tr, blend: blend, pipeline: p}
	return r.process(t, &d, frame)
}

// DrawImmediateEllipse rasterizes, filters and blends an ellipse
// synchronously.
func (r *Renderer) DrawImmediateEllipse(t *Target, e geom.Ellipse, tr geom.Transform, p *Pipeline, blend gfx.BlendMode, frame filter.Frame) error {
	if err := validateEllipse(e); err != nil {
		return err
	}
	d := DrawCallData{kind: primEllipse, ellipse: e, transform: tr, blend: blend, pipeline: p}
	return r.process(t, &d, frame)
}

// DrawImmediateMesh rasterizes, filters and blends a triangle mesh
// synchronously.
func (r *Renderer) DrawImmediateMesh(t *Target, m geom.Mesh, tr geom.Transform, p *Pipeline, blend gfx.BlendMode, frame filter.Frame) error {
	if err := r.validateMesh(m); err != nil {
		return err
	}
	d := DrawCallData{kind: primMesh, mesh: m, transform: tr, blend: blend, pipeline: p}
	return r.process(t, &d, frame)
}

// PutPixel writes a single color directly into the target, bypassing the
// fragment pipeline.
func (r *Renderer) PutPixel(t *Target, pos geom.Vec2, c gfx.Color, blend gfx.BlendMode) {
	t.blendPixel(int(pos.X), int(pos.Y), c, blend)
}

// PutLine writes a clipped line of a single color directly into the target,
// bypassing the fragment pipeline.
func (r *Renderer) PutLine(t *Target, start, end geom.Vec2, c gfx.Color, blend gfx.BlendMode) {
	a, b, ok := clipLine(start, end, float64(t.width-1), float64(t.height-1))
	if !ok {
		return
	}
	walkLine(a, b, func(pos, _ geom.Vec2) {
		t.blendPixel(int(pos.X+0.5), int(pos.Y+0.5), c, blend)
	})
}

// =============================================================================
// Dispatch
// =============================================================================

// process runs one draw call through rasterize, filter and blend. It is the
// shared backend of the deferred and immediate paths.
func (r *Renderer) process(t *Target, d *DrawCallData, frame filter.Frame) error {
	r.frags.Reset()
	started := time.Now()

	switch d.kind {
	case primVertex:
		r.rasterVertex(t, d)
	case primLine:
		r.rasterLine(t, d)
	case primEllipse:
		if err := r.rasterEllipse(t, d); err != nil {
			return err
		}
	case primMesh:
		if err := r.validateMesh(d.mesh); err != nil {
			return err
		}
		r.rasterMesh(t, d)
	default:
		return errors.New(errors.ErrCodeInternal, "unknown primitive kind %d", d.kind)
	}

	observability.Frame().OnDrawCall(d.kind.String(), r.frags.Len(), time.Since(started))

	if r.frags.Len() == 0 {
		return nil
	}

	out := r.frags
	if d.pipeline != nil && d.pipeline.Len() > 0 {
		r.filtered.Reset()
		pipeStart := time.Now()
		err := d.pipeline.Run(r.frags, r.filtered, frame)
		observability.Pipeline().OnPipelineRun(d.pipeline.Len(), r.frags.Len(), r.filtered.Len(), time.Since(pipeStart), err)
		if err != nil {
			return err
		}
		out = r.filtered
	}

	for _, f := range out.Items() {
		t.blendPixel(int(f.Pos.X+0.5), int(f.Pos.Y+0.5), f.Color, d.blend)
	}
	return nil
}
