package nema

import (
	"errors"
	"math"

	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/material"
	"github.com/jpet-mc/jpetgen/rand"
	"github.com/jpet-mc/jpetgen/units"
)

// Fit of the mean positron range against material density (g/cm3):
// A * density^B, in units of 0.1 mm.
const (
	RangeDensityA = 19.378
	RangeDensityB = -1.53977

	rangeUnit = 0.1 * units.Mm
)

// ErrNoClassifier is returned when a phantom point is sampled without a
// material classifier to locate its element.
var ErrNoClassifier = errors.New("phantom points need a material classifier")

// MeanRange returns the fitted mean positron range in a material of the given
// density. Non-positive densities give zero.
func MeanRange(density float64) float64 {
	if density <= 0 {
		return 0
	}
	return RangeDensityA * math.Pow(density, RangeDensityB) * rangeUnit
}

func (p *Point) orientation() *geom.Matrix {
	return geom.OrientationMatrix(p.Theta*units.Deg, p.Phi*units.Deg)
}

// SampleEmission returns a positron emission point inside the volume of p and
// the material found there. cls may be nil for cylinder and ball points, in
// which case the returned material is nil.
func SampleEmission(
	src rand.Source, p *Point, cls material.Classifier, maxAttempts int,
) (geom.Vec, *material.Material, error) {
	var pos geom.Vec

	switch p.Shape {
	case Ball:
		pos = geom.UniformInBall(src, p.Size[0]).Add(p.Position)
	case Phantom:
		if cls == nil {
			return geom.Vec{}, nil, &PointError{p.ID, ErrNoClassifier}
		}
		pos, m, err := material.SampleWhere(cls, func() geom.Vec {
			return geom.UniformInBox(src, p.Size).Add(p.Position)
		}, func(m *material.Material) bool {
			return m.ElementID == p.PhantomElementID
		}, maxAttempts)
		if err != nil {
			return geom.Vec{}, nil, &PointError{p.ID, err}
		}
		return pos, m, nil
	default:
		pos = geom.UniformInCylinder(src, p.Size[0], p.Size[2])
		pos = pos.Rotate(p.orientation()).Add(p.Position)
	}

	if cls == nil {
		return pos, nil, nil
	}
	return pos, cls.MaterialAt(pos), nil
}

// SampleAnnihilation displaces an emission point by the distance the positron
// travels according to the reach policy of p. m is the material at the
// emission point and is only needed by DensityReach.
func SampleAnnihilation(
	src rand.Source, p *Point, emission geom.Vec, m *material.Material,
) geom.Vec {
	var dist float64
	switch p.Reach {
	case FixedUniformReach:
		dist = src.Uniform(0, p.ReachLength)
	case FixedExponentialReach:
		dist = src.Exponential(p.ReachLength)
	case DensityReach:
		if m == nil {
			return emission
		}
		dist = src.Exponential(MeanRange(m.Density))
	default:
		return emission
	}
	return emission.Add(geom.Isotropic(src).Scale(dist))
}

// SamplePrompt returns the emission point of the de-excitation photon.
func SamplePrompt(src rand.Source, p *Point, emission geom.Vec) geom.Vec {
	if p.PromptSize == (geom.Vec{}) {
		return emission
	}
	pos := geom.UniformInCylinder(src, p.PromptSize[0], p.PromptSize[2])
	return pos.Rotate(p.orientation()).Add(p.Position)
}
