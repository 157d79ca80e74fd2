package source

import (
	"fmt"
	"math"
	"strings"

	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/units"
)

const (
	// MuonChargeRatio is the sea-level ratio of positive to negative muons.
	MuonChargeRatio = 1.2766
	MuonMeanEnergy  = 4 * units.GeV
	MuonMass        = 105.6583755 * units.MeV
)

// CosmicGenerator produces the primary vertices of a cosmic-ray event.
type CosmicGenerator interface {
	Generate(ctx *Context, sink event.Sink) error
}

// Cosmic delegates event population to a CosmicGenerator.
type Cosmic struct {
	Generator CosmicGenerator
}

func (c *Cosmic) Populate(ctx *Context, sink event.Sink) (event.DecayChannel, error) {
	if c.Generator == nil {
		return event.ChannelUnknown, &ConfigError{"cosmics", "no cosmic-ray generator"}
	}
	if err := c.Generator.Generate(ctx, sink); err != nil {
		return event.ChannelUnknown, err
	}
	return event.ChannelCosmic, nil
}

// MuonVolume is the solid whose top face muons start from.
type MuonVolume int

const (
	MuonCylinder MuonVolume = iota
	MuonCuboid
)

// ParseMuonVolume converts a configuration string to a MuonVolume.
func ParseMuonVolume(s string) (MuonVolume, error) {
	switch strings.ToLower(s) {
	case "cylinder":
		return MuonCylinder, nil
	case "cuboid":
		return MuonCuboid, nil
	}
	return 0, fmt.Errorf(
		"Unrecognized cosmic volume '%s'. Choose from cylinder, cuboid.", s,
	)
}

// MuonGenerator starts one muon per event on the top face (+y) of a volume
// around Center, moving downwards with a cos^2 zenith angle distribution.
// Cylinders have their axis along z.
type MuonGenerator struct {
	Volume MuonVolume
	Center geom.Vec
	// Radius and HalfLength of the cylinder.
	Radius, HalfLength float64
	// HalfExtents of the cuboid.
	HalfExtents geom.Vec

	ChargeRatio float64
	MeanEnergy  float64
}

// NewMuonGenerator returns a generator for a cylinder of the given size.
func NewMuonGenerator(radius, halfLength float64) *MuonGenerator {
	return &MuonGenerator{
		Volume:      MuonCylinder,
		Radius:      radius,
		HalfLength:  halfLength,
		ChargeRatio: MuonChargeRatio,
		MeanEnergy:  MuonMeanEnergy,
	}
}

func (mg *MuonGenerator) Generate(ctx *Context, sink event.Sink) error {
	src := ctx.Rand

	var pos geom.Vec
	switch mg.Volume {
	case MuonCuboid:
		h := mg.HalfExtents
		pos = geom.Vec{src.Uniform(-h[0], h[0]), h[1], src.Uniform(-h[2], h[2])}
	default:
		pos = geom.Vec{
			src.Uniform(-mg.Radius, mg.Radius), mg.Radius,
			src.Uniform(-mg.HalfLength, mg.HalfLength),
		}
	}
	pos = pos.Add(mg.Center)

	// p(cos theta) ~ cos^2 theta
	cosTheta := math.Cbrt(src.Uniform(0, 1))
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	phi := src.Uniform(0, 2*math.Pi)
	dir := geom.Vec{sinTheta * math.Cos(phi), -cosTheta, sinTheta * math.Sin(phi)}

	pdg := event.PDGMuMinus
	if src.Uniform(0, 1) < mg.ChargeRatio/(1+mg.ChargeRatio) {
		pdg = event.PDGMuPlus
	}

	e := src.Exponential(mg.MeanEnergy) + MuonMass
	p := dir.Scale(math.Sqrt(e*e - MuonMass*MuonMass))

	v := event.NewVertex(pos, 0)
	v.AddParticle(event.NewParticle(pdg, p[0], p[1], p[2], e))
	v.Info = event.VertexInfo{Mode: event.Cosmic, Position: pos.Scale(1 / units.Cm)}
	return sink.AddVertex(v)
}
