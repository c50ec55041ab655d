package scene

import (
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/termrender/pkg/errors"
	"github.com/matzehuels/termrender/pkg/filter"
	"github.com/matzehuels/termrender/pkg/geom"
	"github.com/matzehuels/termrender/pkg/gfx"
	"github.com/matzehuels/termrender/pkg/render"
)

// Build enqueues every shape of the scene onto the target as deferred draw
// calls. The target is filled with the background color first. Mesh shapes
// allocate from the renderer's arena, so callers reusing a renderer across
// scenes should ClearMeshes between builds.
func (s *Scene) Build(r *render.Renderer, t *render.Target) error {
	if err := s.ValidateAndSetDefaults(); err != nil {
		return err
	}

	bg, _ := gfx.ParseHex(s.Background)
	t.Fill(bg)

	for i := range s.Shapes {
		if err := s.Shapes[i].build(r, t); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "shape %d", i)
		}
	}
	return nil
}

func (sh *Shape) build(r *render.Renderer, t *render.Target) error {
	p, err := sh.Pipeline()
	if err != nil {
		return err
	}
	blend, err := gfx.ParseBlendMode(sh.Blend)
	if err != nil {
		return err
	}
	tr := sh.Xform.Transform()

	switch sh.Kind {
	case KindVertex:
		r.DrawVertex(t, geom.Vertex{Pos: vec(sh.Vertex.Pos), UV: vec(sh.Vertex.UV)}, tr, p, sh.Depth, blend)
		return nil
	case KindLine:
		r.DrawLine(t, geom.Line{
			A: geom.Vertex{Pos: vec(sh.Line.From)},
			B: geom.Vertex{Pos: vec(sh.Line.To), UV: geom.Vec2{X: 1, Y: 1}},
		}, tr, p, sh.Depth, blend)
		return nil
	case KindEllipse:
		return r.DrawEllipse(t, geom.Ellipse{
			Center: vec(sh.Ellipse.Center),
			Radii:  vec(sh.Ellipse.Radii),
			UV:     geom.Rect{Max: geom.Vec2{X: 1, Y: 1}},
		}, tr, p, sh.Depth, blend)
	case KindMesh:
		verts := make([]geom.Vertex, len(sh.Mesh.Vertices))
		for i, v := range sh.Mesh.Vertices {
			verts[i].Pos = vec(v)
			if len(sh.Mesh.UVs) > 0 {
				verts[i].UV = vec(sh.Mesh.UVs[i])
			}
		}
		m, err := r.AddMesh(verts)
		if err != nil {
			return err
		}
		return r.DrawMesh(t, m, tr, p, sh.Depth, blend)
	}
	return errors.New(errors.ErrCodeInvalidScene, "unknown shape kind %q", sh.Kind)
}

// Pipeline builds the shape's fragment pipeline: a color stage followed by
// the named filters, already built and ready to run. The pipeline is
// constructed once and reused on later calls, so stateful filters such as
// flicker keep their state when the scene is rebuilt every frame.
func (sh *Shape) Pipeline() (*render.Pipeline, error) {
	if sh.pipeline != nil {
		return sh.pipeline, nil
	}

	c, err := gfx.ParseHex(sh.Color)
	if err != nil {
		return nil, err
	}

	p := render.NewPipeline()
	p.AddFilter(render.SolidColor(c))
	for _, name := range sh.Filters {
		f, err := buildFilter(name)
		if err != nil {
			return nil, err
		}
		p.AddFilter(f)
	}
	if err := p.Build(); err != nil {
		return nil, err
	}
	sh.pipeline = p
	return p, nil
}

// buildFilter resolves a "name" or "name:arg" filter reference.
func buildFilter(ref string) (filter.Filter, error) {
	name, arg, _ := strings.Cut(ref, ":")
	switch name {
	case "grayscale":
		return render.Grayscale(), nil
	case "solid":
		c, err := gfx.ParseHex(arg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "filter %q", ref)
		}
		return render.SolidColor(c), nil
	case "tint":
		c, err := gfx.ParseHex(arg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "filter %q", ref)
		}
		return render.Tint(c), nil
	case "huerotate":
		deg, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "filter %q needs a degree argument", ref)
		}
		return render.HueRotate(deg), nil
	case "flicker":
		interval := 100 * time.Millisecond
		if arg != "" {
			ms, err := strconv.Atoi(arg)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "filter %q needs a millisecond argument", ref)
			}
			interval = time.Duration(ms) * time.Millisecond
		}
		return render.Flicker(interval, 0.4, 1.0, 1), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidScene, "unknown filter %q", ref)
}
