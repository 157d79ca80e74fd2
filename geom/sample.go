package geom

import (
	"math"

	"github.com/jpet-mc/jpetgen/rand"
)

// UniformInCylinder returns a point distributed uniformly inside a cylinder of
// the given radius, aligned with the z axis and spanning [-halfHeight,
// +halfHeight]. The radius is drawn as radius*sqrt(U) so that the areal
// density is flat. Non-positive dimensions collapse to zero extent.
func UniformInCylinder(src rand.Source, radius, halfHeight float64) Vec {
	radius, halfHeight = math.Max(radius, 0), math.Max(halfHeight, 0)

	r := math.Sqrt(radius * radius * src.Uniform(0, 1))
	alpha := src.Uniform(0, 2*math.Pi)
	z := halfHeight * (2*src.Uniform(0, 1) - 1)

	return Vec{r * math.Cos(alpha), r * math.Sin(alpha), z}
}

// UniformInBall returns a point distributed uniformly inside a ball of the
// given radius centered on the origin.
func UniformInBall(src rand.Source, radius float64) Vec {
	radius = math.Max(radius, 0)
	r := radius * math.Cbrt(src.Uniform(0, 1))
	return Isotropic(src).Scale(r)
}

// UniformInBox returns a point distributed uniformly inside the axis-aligned
// box [-h[i], +h[i]] in each dimension.
func UniformInBox(src rand.Source, h Vec) Vec {
	var v Vec
	for i := 0; i < 3; i++ {
		v[i] = math.Max(h[i], 0) * (2*src.Uniform(0, 1) - 1)
	}
	return v
}

// Isotropic returns a unit vector with a direction uniform over the sphere.
func Isotropic(src rand.Source) Vec {
	theta := 2 * math.Pi * src.Uniform(0, 1)
	phi := math.Acos(1 - 2*src.Uniform(0, 1))
	return Vec{
		math.Sin(phi) * math.Cos(theta),
		math.Sin(phi) * math.Sin(theta),
		math.Cos(phi),
	}
}
