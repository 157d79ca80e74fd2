/*package material answers the one question the generators ask of the detector
geometry: which material sits at a given point.

Positrons only annihilate inside target materials, and the target decides the
three-photon fraction and the ortho-positronium lifetime of each annihilation.
*/
package material

import (
	"fmt"

	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/rand"
)

// Material carries the annihilation properties of a volume.
type Material struct {
	Name   string
	Target bool
	// ThreeGammaFraction is the probability that an annihilation inside the
	// material proceeds through ortho-positronium decay into three photons.
	ThreeGammaFraction float64
	// OPsLifetime is the mean ortho-positronium lifetime in ns.
	OPsLifetime float64
	// Density in g/cm3.
	Density float64
	// ElementID tags the phantom element the volume belongs to. Zero means
	// no element.
	ElementID int
}

// Vacuum is returned by classifiers for points outside every volume.
var Vacuum = &Material{Name: "vacuum"}

// Classifier locates points in the detector geometry.
type Classifier interface {
	MaterialAt(p geom.Vec) *Material
}

// SampleTarget draws points uniformly in the box centered on center with the
// given half extents until one falls inside a target material. It returns
// the point and its material.
func SampleTarget(
	src rand.Source, cls Classifier, center, halfExtents geom.Vec, maxAttempts int,
) (geom.Vec, *Material, error) {
	return SampleTargetIn(cls, func() geom.Vec {
		return geom.UniformInBox(src, halfExtents).Add(center)
	}, maxAttempts)
}

// SampleTargetIn is SampleTarget for an arbitrary proposal distribution.
// A non-positive maxAttempts means rand.DefaultMaxAttempts.
func SampleTargetIn(
	cls Classifier, propose func() geom.Vec, maxAttempts int,
) (geom.Vec, *Material, error) {
	return SampleWhere(cls, propose, func(m *Material) bool {
		return m.Target
	}, maxAttempts)
}

// SampleWhere draws proposals until the material at the proposed point
// satisfies accept.
func SampleWhere(
	cls Classifier, propose func() geom.Vec,
	accept func(*Material) bool, maxAttempts int,
) (geom.Vec, *Material, error) {
	if maxAttempts <= 0 {
		maxAttempts = rand.DefaultMaxAttempts
	}

	for i := 0; i < maxAttempts; i++ {
		p := propose()
		m := cls.MaterialAt(p)
		if m == nil {
			m = Vacuum
		}
		if accept(m) {
			return p, m, nil
		}
	}

	return geom.Vec{}, nil, fmt.Errorf(
		"no accepted volume found in %d attempts: %w",
		maxAttempts, rand.ErrRejectionLimit,
	)
}
