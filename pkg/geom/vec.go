// Package geom provides the primitive and transform model for the renderer.
//
// The coordinate space has the origin in the top left corner with the axes
// extending right and down. Primitives are plain value types; a [Mesh] is an
// index range into the renderer's vertex arena rather than an owned slice.
//
// Transforms compose position, non-uniform scale, rotation and an origin point
// into a 3x3 affine matrix. Inversion is required for rendering ellipses under
// arbitrary transforms and fails on a zero determinant.
package geom

import "math"

// Vec2 is a two dimensional point or vector.
type Vec2 struct {
	X, Y float64
}

// Add returns the vector v+u.
func (v Vec2) Add(u Vec2) Vec2 {
	return Vec2{X: v.X + u.X, Y: v.Y + u.Y}
}

// Sub returns the vector v-u.
func (v Vec2) Sub(u Vec2) Vec2 {
	return Vec2{X: v.X - u.X, Y: v.Y - u.Y}
}

// Mul returns v scaled by s.
func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of v and u.
func (v Vec2) Dot(u Vec2) float64 {
	return v.X*u.X + v.Y*u.Y
}

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Lerp returns the linear interpolation between v and u at parameter t.
func (v Vec2) Lerp(u Vec2, t float64) Vec2 {
	return Vec2{
		X: v.X + (u.X-v.X)*t,
		Y: v.Y + (u.Y-v.Y)*t,
	}
}

// Rect contains the points (X, Y) where Min.X <= X < Max.X, Min.Y <= Y < Max.Y.
type Rect struct {
	Min, Max Vec2
}

// Dx returns r's width.
func (r Rect) Dx() float64 {
	return r.Max.X - r.Min.X
}

// Dy returns r's height.
func (r Rect) Dy() float64 {
	return r.Max.Y - r.Min.Y
}

// Intersect returns the intersection of r and s.
func (r Rect) Intersect(s Rect) Rect {
	if r.Min.X < s.Min.X {
		r.Min.X = s.Min.X
	}
	if r.Min.Y < s.Min.Y {
		r.Min.Y = s.Min.Y
	}
	if r.Max.X > s.Max.X {
		r.Max.X = s.Max.X
	}
	if r.Max.Y > s.Max.Y {
		r.Max.Y = s.Max.Y
	}
	return r
}

// Canon returns the canonical version of r, where Min is to
// the upper left of Max.
func (r Rect) Canon() Rect {
	if r.Max.X < r.Min.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Max.Y < r.Min.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Empty reports whether r represents the empty area.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Contains reports whether p is inside r.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}
