package render

import (
	"math"
	"sync"

	"github.com/matzehuels/termrender/pkg/geom"
	"github.com/matzehuels/termrender/pkg/gfx"
)

// =============================================================================
// Vertex
// =============================================================================

func (r *Renderer) rasterVertex(t *Target, d *DrawCallData) {
	pos := d.transform.Matrix().Apply(d.vertex.Pos)
	if !t.bounds().Contains(pos) {
		return
	}
	r.frags.Append(Fragment{
		Color:   gfx.White,
		Pos:     pos,
		UV:      d.vertex.UV,
		Size:    geom.Vec2{X: 1, Y: 1},
		InvSize: geom.Vec2{X: 1, Y: 1},
	})
}

// =============================================================================
// Line
// =============================================================================

// Cohen-Sutherland region codes.
const (
	codeInside = 0
	codeLeft   = 1 << iota
	codeRight
	codeBottom
	codeTop
)

func outCode(p geom.Vec2, xmax, ymax float64) int {
	code := codeInside
	if p.X < 0 {
		code |= codeLeft
	} else if p.X > xmax {
		code |= codeRight
	}
	if p.Y < 0 {
		code |= codeTop
	} else if p.Y > ymax {
		code |= codeBottom
	}
	return code
}

// clipLine clips the segment a-b to [0,xmax] x [0,ymax] with the
// Cohen-Sutherland algorithm. ok is false when the segment lies fully
// outside.
func clipLine(a, b geom.Vec2, xmax, ymax float64) (geom.Vec2, geom.Vec2, bool) {
	ca, cb := outCode(a, xmax, ymax), outCode(b, xmax, ymax)

	for {
		switch {
		case ca|cb == 0:
			// Both endpoints inside.
			return a, b, true
		case ca&cb != 0:
			// Both endpoints share an outside half-plane.
			return a, b, false
		}

		// Pick the endpoint that is outside and move it to the boundary
		// it violates.
		out := ca
		if out == 0 {
			out = cb
		}

		var p geom.Vec2
		switch {
		case out&codeTop != 0:
			p = geom.Vec2{X: a.X + (b.X-a.X)*(0-a.Y)/(b.Y-a.Y), Y: 0}
		case out&codeBottom != 0:
			p = geom.Vec2{X: a.X + (b.X-a.X)*(ymax-a.Y)/(b.Y-a.Y), Y: ymax}
		case out&codeLeft != 0:
			p = geom.Vec2{X: 0, Y: a.Y + (b.Y-a.Y)*(0-a.X)/(b.X-a.X)}
		case out&codeRight != 0:
			p = geom.Vec2{X: xmax, Y: a.Y + (b.Y-a.Y)*(xmax-a.X)/(b.X-a.X)}
		}

		if out == ca {
			a = p
			ca = outCode(a, xmax, ymax)
		} else {
			b = p
			cb = outCode(b, xmax, ymax)
		}
	}
}

// walkLine steps from a to b in ceil(length) integer steps, reporting each
// position with its interpolation parameter mapped through emit.
func walkLine(a, b geom.Vec2, emit func(pos geom.Vec2, t geom.Vec2)) {
	length := b.Sub(a).Length()
	steps := int(math.Ceil(length))
	if steps == 0 {
		emit(a, geom.Vec2{})
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		emit(a.Lerp(b, t), geom.Vec2{X: t, Y: t})
	}
}

func (r *Renderer) rasterLine(t *Target, d *DrawCallData) {
	m := d.transform.Matrix()
	pa := m.Apply(d.line.A.Pos)
	pb := m.Apply(d.line.B.Pos)

	a, b, ok := clipLine(pa, pb, float64(t.width-1), float64(t.height-1))
	if !ok {
		return
	}

	// UVs interpolate over the clipped span: recover the parameter range
	// of the clip on the original segment to keep UVs anchored.
	ta := segmentParam(pa, pb, a)
	tb := segmentParam(pa, pb, b)
	uvA := d.line.A.UV.Lerp(d.line.B.UV, ta)
	uvB := d.line.A.UV.Lerp(d.line.B.UV, tb)

	size := geom.Vec2{X: math.Abs(b.X - a.X), Y: math.Abs(b.Y - a.Y)}
	inv := invSize(size)

	walkLine(a, b, func(pos, tt geom.Vec2) {
		r.frags.Append(Fragment{
			Color:   gfx.White,
			Pos:     pos,
			UV:      uvA.Lerp(uvB, tt.X),
			Size:    size,
			InvSize: inv,
		})
	})
}

// segmentParam returns the parameter of point p along the segment a-b.
func segmentParam(a, b, p geom.Vec2) float64 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return 0
	}
	return p.Sub(a).Dot(d) / l2
}

// =============================================================================
// Ellipse
// =============================================================================

func (r *Renderer) rasterEllipse(t *Target, d *DrawCallData) error {
	e := d.ellipse
	m := d.transform.Matrix()
	inv, err := m.Invert()
	if err != nil {
		return err
	}

	// Screen bounding box from the four transformed corners of the local
	// bounding box.
	local := e.Bounds()
	corners := [4]geom.Vec2{
		m.Apply(local.Min),
		m.Apply(geom.Vec2{X: local.Max.X, Y: local.Min.Y}),
		m.Apply(geom.Vec2{X: local.Min.X, Y: local.Max.Y}),
		m.Apply(local.Max),
	}
	box := geom.Rect{Min: corners[0], Max: corners[0]}
	for _, c := range corners[1:] {
		box.Min.X = math.Min(box.Min.X, c.X)
		box.Min.Y = math.Min(box.Min.Y, c.Y)
		box.Max.X = math.Max(box.Max.X, c.X)
		box.Max.Y = math.Max(box.Max.Y, c.Y)
	}

	x0, x1, y0, y1 := clipBox(box, t.width, t.height)
	if x0 > x1 || y0 > y1 {
		return nil
	}

	r.rasterRows(y0, y1, func(y int, emit func(Fragment)) {
		for x := x0; x <= x1; x++ {
			// Inverse-transform the pixel back into local space and
			// test the implicit ellipse equation. Boundary pixels
			// satisfying equality are included.
			lp := inv.Apply(geom.Vec2{X: float64(x), Y: float64(y)})
			dx := (lp.X - e.Center.X) / e.Radii.X
			dy := (lp.Y - e.Center.Y) / e.Radii.Y
			if dx*dx+dy*dy > 1 {
				continue
			}

			size := geom.Vec2{X: box.Dx(), Y: box.Dy()}
			emit(Fragment{
				Color:   gfx.White,
				Pos:     geom.Vec2{X: float64(x), Y: float64(y)},
				UV:      ellipseUV(e, lp),
				Size:    size,
				InvSize: invSize(size),
			})
		}
	})
	return nil
}

// ellipseUV maps a local-space point across the ellipse's bounding box into
// its UV rectangle.
func ellipseUV(e geom.Ellipse, lp geom.Vec2) geom.Vec2 {
	b := e.Bounds()
	var u, v float64
	if b.Dx() != 0 {
		u = (lp.X - b.Min.X) / b.Dx()
	}
	if b.Dy() != 0 {
		v = (lp.Y - b.Min.Y) / b.Dy()
	}
	return geom.Vec2{
		X: e.UV.Min.X + u*e.UV.Dx(),
		Y: e.UV.Min.Y + v*e.UV.Dy(),
	}
}

// =============================================================================
// Triangle Mesh
// =============================================================================

// edge holds the coefficients of one edge function a·x + b·y + c together
// with its top-left fill-rule flag.
type edge struct {
	a, b, c float64
	topLeft bool
}

func (e edge) eval(x, y float64) float64 {
	return e.a*x + e.b*y + e.c
}

// makeEdge builds the edge function for the directed edge p0 -> p1, positive
// on the interior side of a positively wound triangle. The top-left flag
// implements the shared-edge tie break: horizontal edges pointing right and
// rising edges own their boundary pixels; the opposite directions leave
// them to the adjacent triangle.
func makeEdge(p0, p1 geom.Vec2) edge {
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	return edge{
		a:       -dy,
		b:       dx,
		c:       dy*p0.X - dx*p0.Y,
		topLeft: (dy == 0 && dx > 0) || dy < 0,
	}
}

// inside applies the fill rule: strictly positive everywhere, with exact
// zeros admitted only on top-left edges.
func (e edge) inside(v float64) bool {
	return v > 0 || (v == 0 && e.topLeft)
}

const degenerateArea = 1e-6

func (r *Renderer) rasterMesh(t *Target, d *DrawCallData) {
	m := d.mesh

	// First pass: transform the mesh's vertices in parallel.
	if cap(r.xformed) < m.Count {
		r.xformed = make([]geom.Vertex, m.Count)
	}
	r.xformed = r.xformed[:m.Count]
	mat := d.transform.Matrix()
	parallel(m.Count, r.workers, func(start, end int) {
		for i := start; i < end; i++ {
			src := r.arena[m.First+i]
			r.xformed[i] = geom.Vertex{Pos: mat.Apply(src.Pos), UV: src.UV}
		}
	})

	for tri := 0; tri < m.Count; tri += 3 {
		r.rasterTriangle(t, r.xformed[tri], r.xformed[tri+1], r.xformed[tri+2])
	}
}

func (r *Renderer) rasterTriangle(t *Target, v0, v1, v2 geom.Vertex) {
	// Normalize winding so edge functions are positive inside.
	area := (v1.Pos.X-v0.Pos.X)*(v2.Pos.Y-v0.Pos.Y) - (v1.Pos.Y-v0.Pos.Y)*(v2.Pos.X-v0.Pos.X)
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	// Degenerate triangles keep a zero inverse area instead of dividing;
	// the fill rule then admits no pixels.
	invArea := 0.0
	if area > degenerateArea {
		invArea = 1 / area
	}

	e01 := makeEdge(v0.Pos, v1.Pos)
	e12 := makeEdge(v1.Pos, v2.Pos)
	e20 := makeEdge(v2.Pos, v0.Pos)

	box := geom.Rect{Min: v0.Pos, Max: v0.Pos}
	for _, p := range []geom.Vec2{v1.Pos, v2.Pos} {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
	}
	x0, x1, y0, y1 := clipBox(box, t.width, t.height)
	if x0 > x1 || y0 > y1 {
		return
	}

	size := geom.Vec2{X: box.Dx(), Y: box.Dy()}
	inv := invSize(size)

	r.rasterRows(y0, y1, func(y int, emit func(Fragment)) {
		fy := float64(y)
		for x := x0; x <= x1; x++ {
			fx := float64(x)
			s01 := e01.eval(fx, fy)
			s12 := e12.eval(fx, fy)
			s20 := e20.eval(fx, fy)
			if !e01.inside(s01) || !e12.inside(s12) || !e20.inside(s20) {
				continue
			}

			// Barycentric weights: each vertex is weighted by the
			// edge function of its opposite edge.
			w0 := s12 * invArea
			w1 := s20 * invArea
			w2 := s01 * invArea

			emit(Fragment{
				Color: gfx.White,
				Pos:   geom.Vec2{X: fx, Y: fy},
				UV: geom.Vec2{
					X: w0*v0.UV.X + w1*v1.UV.X + w2*v2.UV.X,
					Y: w0*v0.UV.Y + w1*v1.UV.Y + w2*v2.UV.Y,
				},
				Size:    size,
				InvSize: inv,
			})
		}
	})
}

// =============================================================================
// Shared helpers
// =============================================================================

// clipBox clips a float bounding box to integer pixel coordinates within a
// width x height buffer, inclusive on both ends.
func clipBox(box geom.Rect, width, height int) (x0, x1, y0, y1 int) {
	x0 = int(math.Ceil(math.Max(box.Min.X, 0)))
	y0 = int(math.Ceil(math.Max(box.Min.Y, 0)))
	x1 = int(math.Floor(math.Min(box.Max.X, float64(width-1))))
	y1 = int(math.Floor(math.Min(box.Max.Y, float64(height-1))))
	return x0, x1, y0, y1
}

// rasterRows distributes the pixel rows [y0,y1] over bounded workers. Each
// worker collects fragments into its own chunk; chunks are appended to the
// shared fragment buffer in row order after the join, keeping output
// deterministic.
func (r *Renderer) rasterRows(y0, y1 int, fn func(y int, emit func(Fragment))) {
	rows := y1 - y0 + 1
	if rows <= 0 {
		return
	}

	workers := r.workers
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	chunkSize := (rows + workers - 1) / workers
	nchunks := (rows + chunkSize - 1) / chunkSize

	chunks := make([][]Fragment, nchunks)
	var wg sync.WaitGroup
	for c := 0; c < nchunks; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			start := y0 + c*chunkSize
			end := min(start+chunkSize-1, y1)
			for y := start; y <= end; y++ {
				fn(y, func(f Fragment) {
					chunks[c] = append(chunks[c], f)
				})
			}
		}(c)
	}
	wg.Wait()

	for _, chunk := range chunks {
		r.frags.Append(chunk...)
	}
}

// parallel splits [0,n) into contiguous chunks processed on worker
// goroutines, joining before return. Workers are created per call.
func parallel(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
