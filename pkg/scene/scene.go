// Package scene loads renderable scenes from TOML files.
//
// A scene file declares the target size, a background color and a list of
// shapes. Each shape carries a primitive, a transform, a blend mode and an
// optional filter chain:
//
//	width = 80
//	height = 48
//	background = "#101018"
//
//	[[shape]]
//	kind = "ellipse"
//	color = "#ff5f87"
//	depth = 1.0
//	blend = "alpha"
//	filters = ["grayscale"]
//
//	[shape.ellipse]
//	center = [40.0, 24.0]
//	radii = [12.0, 8.0]
//
//	[shape.transform]
//	rotation = 30.0
package scene

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/geom"
	"github.com/matzehuels/termrender/pkg/gfx"
	"github.com/matzehuels/termrender/pkg/render"
)

// Shape kinds accepted in scene files.
const (
	KindVertex  = "vertex"
	KindLine    = "line"
	KindEllipse = "ellipse"
	KindMesh    = "mesh"
)

// Scene is a parsed scene file.
type Scene struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Background string  `toml:"background"`
	Shapes     []Shape `toml:"shape"`

	validated bool
}

// Shape is one drawable entry. Exactly one of the primitive sections must
// be present, matching Kind.
type Shape struct {
	Kind    string        `toml:"kind"`
	Color   string        `toml:"color"`
	Depth   float64       `toml:"depth"`
	Blend   string        `toml:"blend"`
	Filters []string      `toml:"filters"`
	Vertex  *VertexSpec   `toml:"vertex"`
	Line    *LineSpec     `toml:"line"`
	Ellipse *EllipseSpec  `toml:"ellipse"`
	Mesh    *MeshSpec     `toml:"mesh"`
	Xform   TransformSpec `toml:"transform"`

	pipeline *render.Pipeline
}

// VertexSpec declares a single point.
type VertexSpec struct {
	Pos [2]float64 `toml:"pos"`
	UV  [2]float64 `toml:"uv"`
}

// LineSpec declares a segment between two points.
type LineSpec struct {
	From [2]float64 `toml:"from"`
	To   [2]float64 `toml:"to"`
}

// EllipseSpec declares an axis-aligned ellipse in local space.
type EllipseSpec struct {
	Center [2]float64 `toml:"center"`
	Radii  [2]float64 `toml:"radii"`
}

// MeshSpec declares triangles as a flat vertex list, three per triangle.
type MeshSpec struct {
	Vertices [][2]float64 `toml:"vertices"`
	UVs      [][2]float64 `toml:"uvs"`
}

// TransformSpec mirrors geom.Transform with degrees for rotation.
type TransformSpec struct {
	Position [2]float64 `toml:"position"`
	Scale    [2]float64 `toml:"scale"`
	Origin   [2]float64 `toml:"origin"`
	Rotation float64    `toml:"rotation"`
}

// Transform builds the geom transform, defaulting a zero scale to unit.
func (s TransformSpec) Transform() geom.Transform {
	tr := geom.NewTransform()
	tr.Position = vec(s.Position)
	tr.Origin = vec(s.Origin)
	if s.Scale != [2]float64{} {
		tr.Scale = vec(s.Scale)
	}
	tr.SetRotation(s.Rotation)
	return tr
}

func vec(v [2]float64) geom.Vec2 {
	return geom.Vec2{X: v[0], Y: v[1]}
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "failed to read scene %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates scene TOML.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "failed to parse scene")
	}
	if err := s.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ValidateAndSetDefaults checks required fields and fills defaults. It is
// idempotent.
func (s *Scene) ValidateAndSetDefaults() error {
	if s.validated {
		return nil
	}
	if s.Width <= 0 || s.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidScene, "scene size %dx%d must be positive", s.Width, s.Height)
	}
	if s.Background == "" {
		s.Background = "#000000"
	}
	if _, err := gfx.ParseHex(s.Background); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "invalid background color %q", s.Background)
	}

	for i := range s.Shapes {
		if err := s.Shapes[i].validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "shape %d", i)
		}
	}
	s.validated = true
	return nil
}

func (sh *Shape) validate() error {
	if sh.Color == "" {
		sh.Color = "#ffffff"
	}
	if _, err := gfx.ParseHex(sh.Color); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "invalid color %q", sh.Color)
	}

	if sh.Blend == "" {
		sh.Blend = "alpha"
	}
	if _, err := gfx.ParseBlendMode(sh.Blend); err != nil {
		return err
	}

	switch sh.Kind {
	case KindVertex:
		if sh.Vertex == nil {
			return errors.New(errors.ErrCodeInvalidScene, "vertex shape is missing its [shape.vertex] section")
		}
	case KindLine:
		if sh.Line == nil {
			return errors.New(errors.ErrCodeInvalidScene, "line shape is missing its [shape.line] section")
		}
	case KindEllipse:
		if sh.Ellipse == nil {
			return errors.New(errors.ErrCodeInvalidScene, "ellipse shape is missing its [shape.ellipse] section")
		}
		if sh.Ellipse.Radii[0] <= 0 || sh.Ellipse.Radii[1] <= 0 {
			return errors.New(errors.ErrCodeInvalidScene, "ellipse radii %v must be positive", sh.Ellipse.Radii)
		}
	case KindMesh:
		if sh.Mesh == nil {
			return errors.New(errors.ErrCodeInvalidScene, "mesh shape is missing its [shape.mesh] section")
		}
		n := len(sh.Mesh.Vertices)
		if n == 0 || n%3 != 0 {
			return errors.New(errors.ErrCodeInvalidScene, "mesh needs a positive multiple of 3 vertices, got %d", n)
		}
		if len(sh.Mesh.UVs) != 0 && len(sh.Mesh.UVs) != n {
			return errors.New(errors.ErrCodeInvalidScene, "mesh has %d uvs for %d vertices", len(sh.Mesh.UVs), n)
		}
	default:
		return errors.New(errors.ErrCodeInvalidScene, "unknown shape kind %q", sh.Kind)
	}
	return nil
}
