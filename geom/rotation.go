package geom

import (
	. "math"
)

// Matrix is a row-major 3x3 matrix.
type Matrix [9]float64

// EulerMatrix creates a 3D rotation matrix based off the Euler angles phi,
// theta, and psi. These represent three consecutive rotations around the x,
// y, and z axes, respectively.
func EulerMatrix(phi, theta, psi float64) *Matrix {
	return &Matrix{
		Cos(theta) * Cos(psi),
		Cos(phi)*Sin(psi) + Sin(phi)*Sin(theta)*Cos(psi),
		Sin(phi)*Sin(psi) - Cos(phi)*Sin(theta)*Cos(psi),
		-Cos(theta) * Sin(psi),
		Cos(phi)*Cos(psi) - Sin(phi)*Sin(theta)*Sin(psi),
		Sin(phi)*Cos(psi) + Cos(phi)*Sin(theta)*Sin(psi),
		Sin(theta),
		-Sin(phi) * Cos(theta),
		Cos(phi) * Cos(theta),
	}
}

// OrientationMatrix returns the rotation which takes the z axis of a source's
// local frame to the direction with polar angle theta and azimuth phi (both
// in radians): a rotation by theta about y followed by phi about z.
func OrientationMatrix(theta, phi float64) *Matrix {
	ry := &Matrix{
		Cos(theta), 0, Sin(theta),
		0, 1, 0,
		-Sin(theta), 0, Cos(theta),
	}
	rz := &Matrix{
		Cos(phi), -Sin(phi), 0,
		Sin(phi), Cos(phi), 0,
		0, 0, 1,
	}
	return rz.Mult(ry)
}

// Mult returns m1 * m2.
func (m1 *Matrix) Mult(m2 *Matrix) *Matrix {
	out := &Matrix{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[3*i+j] += m1[3*i+k] * m2[3*k+j]
			}
		}
	}
	return out
}

// Rotate rotates a vector by the given rotation matrix.
func (v Vec) Rotate(m *Matrix) Vec {
	return Vec{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// RotateAbout rotates v by angle (radians, right-handed) about axis. The
// axis does not need to be normalized, but must not be zero.
func (v Vec) RotateAbout(angle float64, axis Vec) Vec {
	k := axis.Unit()
	c, s := Cos(angle), Sin(angle)
	// Rodrigues: v c + (k x v) s + k (k.v)(1 - c)
	return v.Scale(c).Add(k.Cross(v).Scale(s)).Add(k.Scale(k.Dot(v) * (1 - c)))
}
