package render

import (
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/geom"
	"github.com/matzehuels/termrender/pkg/gfx"
	"github.com/matzehuels/termrender/pkg/observability"
)

// primKind tags the payload variant of a draw call.
type primKind uint8

const (
	primVertex primKind = iota
	primLine
	primEllipse
	primMesh
)

func (k primKind) String() string {
	switch k {
	case primVertex:
		return "vertex"
	case primLine:
		return "line"
	case primEllipse:
		return "ellipse"
	case primMesh:
		return "mesh"
	}
	return "unknown"
}

// DrawCallData is the full payload of one recorded draw call: the primitive
// variant, its transform, the blend mode and a reference to the externally
// owned fragment pipeline. Payloads are valid for a single frame and are
// cleared after [Target.Render].
type DrawCallData struct {
	kind      primKind
	vertex    geom.Vertex
	line      geom.Line
	ellipse   geom.Ellipse
	mesh      geom.Mesh
	transform geom.Transform
	blend     gfx.BlendMode
	pipeline  *Pipeline
}

// drawCall is the sortable handle into the data pool. Sorting moves these
// pairs instead of the full payloads.
type drawCall struct {
	depth float64
	index int
}

// Target owns a pixel buffer and the per-frame draw-call queue. Draw calls
// are dispatched to the attached [Renderer] by Render in depth order.
type Target struct {
	pixels        *filter.Buffer[gfx.Color]
	width, height int

	renderer *Renderer
	data     []DrawCallData
	queue    []drawCall
	resized  bool

	logger *log.Logger
}

// TargetOption configures a Target.
type TargetOption func(*Target)

// WithTargetLogger sets the logger used for per-frame debug output.
func WithTargetLogger(l *log.Logger) TargetOption {
	return func(t *Target) { t.logger = l }
}

// NewTarget creates a render target with a width x height pixel buffer.
func NewTarget(width, height int, opts ...TargetOption) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidBuffer,
			"target size %dx%d must be positive", width, height)
	}

	t := &Target{
		pixels: filter.NewBuffer[gfx.Color](width * height),
		width:  width,
		height: height,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	t.pixels.Grow(width * height)

	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Size returns the pixel buffer dimensions.
func (t *Target) Size() (width, height int) {
	return t.width, t.height
}

// Pixels exposes the pixel buffer for readers such as the terminal
// character conversion stage. The buffer is row-major, y*width+x.
func (t *Target) Pixels() *filter.Buffer[gfx.Color] {
	return t.pixels
}

// At returns the pixel color at (x, y). Out-of-bounds reads return the
// zero color.
func (t *Target) At(x, y int) gfx.Color {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return gfx.Color{}
	}
	return t.pixels.At(y*t.width + x)
}

// SetRenderer attaches the renderer that Render dispatches draw calls to.
func (t *Target) SetRenderer(r *Renderer) {
	t.renderer = r
}

// Fill sets every pixel to c.
func (t *Target) Fill(c gfx.Color) {
	items := t.pixels.Items()
	for i := range items {
		items[i] = c
	}
}

// Resize replaces the pixel buffer with a new one of the given size. The
// next rendered frame sees Frame.Resized set.
func (t *Target) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeInvalidBuffer,
			"target size %dx%d must be positive", width, height)
	}
	t.width, t.height = width, height
	t.pixels = filter.NewBuffer[gfx.Color](width * height)
	t.pixels.Grow(width * height)
	t.resized = true
	return nil
}

// enqueue records a draw call for the next Render.
func (t *Target) enqueue(data DrawCallData, depth float64) {
	t.data = append(t.data, data)
	t.queue = append(t.queue, drawCall{depth: depth, index: len(t.data) - 1})
}

// Render dispatches the queued draw calls in depth order and clears the
// queue. Calls are processed by descending depth: higher depths render
// first and lower depths blend over them. The order of equal depths is
// unspecified.
//
// The frame context is forwarded to every fragment pipeline run, with
// Resized set if the target was resized since the previous frame.
func (t *Target) Render(frame filter.Frame) error {
	if t.renderer == nil {
		return errors.New(errors.ErrCodeLogic, "render target has no renderer attached")
	}

	frame.Resized = frame.Resized || t.resized
	t.resized = false

	sort.Slice(t.queue, func(i, j int) bool {
		return t.queue[i].depth > t.queue[j].depth
	})

	t.logger.Debug("rendering frame", "calls", len(t.queue))
	calls := len(t.queue)
	observability.Frame().OnFrameStart(calls)
	started := time.Now()

	var err error
	defer func() {
		// Draw calls are single-frame; drop them even on error.
		t.queue = t.queue[:0]
		t.data = t.data[:0]
		observability.Frame().OnFrameComplete(calls, time.Since(started), err)
	}()

	for _, c := range t.queue {
		if err = t.renderer.process(t, &t.data[c.index], frame); err != nil {
			return err
		}
	}
	return nil
}

// blendPixel combines c into the pixel at (x, y) with the given mode.
// Out-of-bounds writes are dropped.
func (t *Target) blendPixel(x, y int, c gfx.Color, mode gfx.BlendMode) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return
	}
	i := y*t.width + x
	t.pixels.Set(i, mode.Blend(t.pixels.At(i), c))
}

// bounds returns the clip rectangle covering valid pixel coordinates.
func (t *Target) bounds() geom.Rect {
	return geom.Rect{Max: geom.Vec2{X: float64(t.width), Y: float64(t.height)}}
}
