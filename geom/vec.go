/*package geom contains the geometric primitives used to place decay vertices:
three-vectors, rotations and uniform sampling inside simple solids.

All lengths are in the internal unit system of package units (cm).
*/
package geom

import (
	"math"
)

// Vec is a three dimensional vector. (Duh!)
type Vec [3]float64

// X returns the first component.
func (v Vec) X() float64 { return v[0] }

// Y returns the second component.
func (v Vec) Y() float64 { return v[1] }

// Z returns the third component.
func (v Vec) Z() float64 { return v[2] }

// Add returns v + u.
func (v Vec) Add(u Vec) Vec {
	return Vec{v[0] + u[0], v[1] + u[1], v[2] + u[2]}
}

// Sub returns v - u.
func (v Vec) Sub(u Vec) Vec {
	return Vec{v[0] - u[0], v[1] - u[1], v[2] - u[2]}
}

// Scale returns k * v.
func (v Vec) Scale(k float64) Vec {
	return Vec{k * v[0], k * v[1], k * v[2]}
}

// Dot computes the inner product of v and u.
func (v Vec) Dot(u Vec) float64 {
	return v[0]*u[0] + v[1]*u[1] + v[2]*u[2]
}

// Cross computes v x u.
func (v Vec) Cross(u Vec) Vec {
	return Vec{
		v[1]*u[2] - v[2]*u[1],
		v[2]*u[0] - v[0]*u[2],
		v[0]*u[1] - v[1]*u[0],
	}
}

// Norm returns the length of v.
func (v Vec) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Unit returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec) Unit() Vec {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Orthogonal returns a vector orthogonal to v, built by zeroing the
// component of v with the smallest magnitude and swapping the other two.
func (v Vec) Orthogonal() Vec {
	x, y, z := math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])
	if x < y {
		if x < z {
			return Vec{0, v[2], -v[1]}
		}
		return Vec{v[1], -v[0], 0}
	}
	if y < z {
		return Vec{-v[2], 0, v[0]}
	}
	return Vec{v[1], -v[0], 0}
}

// EpsEq returns true if every component of v and u differs by at most eps.
func (v Vec) EpsEq(u Vec, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(v[i]-u[i]) > eps {
			return false
		}
	}
	return true
}
