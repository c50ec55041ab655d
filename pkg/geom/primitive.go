package geom

// Vertex is a single point with a texture/procedural coordinate.
type Vertex struct {
	Pos Vec2 // position in local space
	UV  Vec2 // texture or procedural coordinate
}

// Line is a segment between two vertices with independently interpolated UVs.
type Line struct {
	A, B Vertex
}

// Ellipse is an axis-aligned ellipse in local space. The UV rectangle is
// mapped across the ellipse's bounding box.
type Ellipse struct {
	Center Vec2
	Radii  Vec2 // x and y radius, independently scalable
	UV     Rect
}

// Bounds returns the local-space bounding box of the ellipse.
func (e Ellipse) Bounds() Rect {
	return Rect{
		Min: Vec2{X: e.Center.X - e.Radii.X, Y: e.Center.Y - e.Radii.Y},
		Max: Vec2{X: e.Center.X + e.Radii.X, Y: e.Center.Y + e.Radii.Y},
	}
}

// Mesh references a run of triangles in a renderer's vertex arena.
// Count is always a multiple of 3. Handles are invalidated when the owning
// arena is cleared; there is no generation check.
type Mesh struct {
	First int // index of the first vertex in the arena
	Count int // number of vertices, a multiple of 3
}

// Triangles returns the number of triangles the mesh references.
func (m Mesh) Triangles() int {
	return m.Count / 3
}
