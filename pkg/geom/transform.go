package geom

import (
	"math"

	"github.com/matzehuels/termrender/pkg/errors"
)

// Mat3 is a row-major 3x3 matrix for 2D affine transforms.
// The last row is (0, 0, 1) for any matrix produced by [Transform.Matrix],
// but Mat3 itself does not assume it.
type Mat3 [9]float64

// Identity returns the identity matrix.
func Identity() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Mul returns the matrix product m·n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r[row*3+col] = m[row*3]*n[col] + m[row*3+1]*n[3+col] + m[row*3+2]*n[6+col]
		}
	}
	return r
}

// Apply transforms the point p by m.
func (m Mat3) Apply(p Vec2) Vec2 {
	return Vec2{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Det returns the determinant of m.
func (m Mat3) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Invert returns the inverse of m computed via the cofactor/adjugate method.
// It fails with ErrCodeSingularMatrix when the determinant is zero, which
// happens for degenerate transforms such as a zero scale on an axis.
func (m Mat3) Invert() (Mat3, error) {
	det := m.Det()
	if det == 0 {
		return Mat3{}, errors.New(errors.ErrCodeSingularMatrix, "matrix is singular and cannot be inverted")
	}

	inv := 1 / det
	return Mat3{
		(m[4]*m[8] - m[5]*m[7]) * inv,
		(m[2]*m[7] - m[1]*m[8]) * inv,
		(m[1]*m[5] - m[2]*m[4]) * inv,
		(m[5]*m[6] - m[3]*m[8]) * inv,
		(m[0]*m[8] - m[2]*m[6]) * inv,
		(m[2]*m[3] - m[0]*m[5]) * inv,
		(m[3]*m[7] - m[4]*m[6]) * inv,
		(m[1]*m[6] - m[0]*m[7]) * inv,
		(m[0]*m[4] - m[1]*m[3]) * inv,
	}, nil
}

// Transform describes position, non-uniform scale, rotation and an origin
// point. The matrix is composed as
// Translate(position) · Rotate(rotation) · Scale(scale) · Translate(-origin),
// so the origin is the fixed point of scaling and rotation.
type Transform struct {
	Position Vec2
	Scale    Vec2
	Origin   Vec2

	rotation float64 // radians
}

// NewTransform returns an identity transform (unit scale, no rotation).
func NewTransform() Transform {
	return Transform{Scale: Vec2{X: 1, Y: 1}}
}

// SetRotation sets the rotation in degrees. Internally the angle is stored
// in radians.
func (t *Transform) SetRotation(degrees float64) {
	t.rotation = degrees * math.Pi / 180
}

// Rotation returns the rotation in degrees.
func (t Transform) Rotation() float64 {
	return t.rotation * 180 / math.Pi
}

// Matrix composes the transform into an affine matrix.
func (t Transform) Matrix() Mat3 {
	sin, cos := math.Sincos(t.rotation)

	translate := Identity()
	translate[2] = t.Position.X
	translate[5] = t.Position.Y

	rotate := Mat3{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	}

	scale := Mat3{
		t.Scale.X, 0, 0,
		0, t.Scale.Y, 0,
		0, 0, 1,
	}

	origin := Identity()
	origin[2] = -t.Origin.X
	origin[5] = -t.Origin.Y

	return translate.Mul(rotate).Mul(scale).Mul(origin)
}
