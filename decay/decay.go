/*package decay populates vertices with annihilation and de-excitation photons.

A Sampler owns the phase-space generators for the two- and three-photon decays
of positronium at rest and draws every variate from a single rand.Source, so
that a worker which owns one Sampler produces a reproducible stream.

Decay functions only attach particles. Tagging the vertex with a generation mode
and lifetime is left to the caller, except for Mixed and Annihilate, which decide
the channel themselves.
*/
package decay

import (
	"fmt"
	"math"

	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/phasespace"
	"github.com/jpet-mc/jpetgen/rand"
	"github.com/jpet-mc/jpetgen/units"
)

const (
	// PositroniumMass is the mass of the decaying system at rest.
	PositroniumMass = 2 * units.ElectronMass

	// QEDMaxWeight bounds the three-photon matrix element over phase space.
	QEDMaxWeight = 7.65928e-6
	// WeightScale multiplies the phase-space WtMax in the acceptance bound.
	WeightScale = 1e5

	// Prompt de-excitation photon energies.
	Na22PromptEnergy = 1.2770 * units.MeV
	Sc44PromptEnergy = 1.157 * units.MeV
)

// Stats counts three-photon proposals.
type Stats struct {
	Attempts, Accepted int
}

// Efficiency returns the fraction of accepted proposals.
func (s Stats) Efficiency() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Attempts)
}

// Add returns the sum of two sets of counters.
func (s Stats) Add(o Stats) Stats {
	return Stats{s.Attempts + o.Attempts, s.Accepted + o.Accepted}
}

// Sampler generates decay photons.
type Sampler struct {
	src        rand.Source
	two, three *phasespace.Decay

	// MaxAttempts caps the three-photon rejection loop.
	MaxAttempts int

	stats Stats

	// weight and threshold of the last accepted proposal.
	lastWeight, lastThreshold float64
}

// NewSampler creates a Sampler which draws from src.
func NewSampler(src rand.Source) *Sampler {
	two, err := phasespace.New(PositroniumMass, []float64{0, 0})
	if err != nil {
		panic(err.Error())
	}
	three, err := phasespace.New(PositroniumMass, []float64{0, 0, 0})
	if err != nil {
		panic(err.Error())
	}
	return &Sampler{
		src: src, two: two, three: three,
		MaxAttempts: rand.DefaultMaxAttempts,
	}
}

// Source returns the random source of the sampler.
func (s *Sampler) Source() rand.Source { return s.src }

// Stats returns the three-photon acceptance counters.
func (s *Sampler) Stats() Stats { return s.stats }

// ResetStats zeroes the acceptance counters.
func (s *Sampler) ResetStats() { s.stats = Stats{} }

// MatrixElement is the lowest order QED matrix element squared of
// ortho-positronium decay for photon energies w1, w2, w3.
func MatrixElement(m, w1, w2, w3 float64) float64 {
	a := (m - w1) / (w2 * w3)
	b := (m - w2) / (w1 * w3)
	c := (m - w3) / (w1 * w2)
	return a*a + b*b + c*c
}

// AcceptanceBound returns the value a proposal's weighted matrix element is
// compared against: QEDMaxWeight * WtMax * WeightScale.
func (s *Sampler) AcceptanceBound() float64 {
	return QEDMaxWeight * s.three.WtMax() * WeightScale
}

// TwoGamma adds two back-to-back 511 keV photons with perpendicular
// polarizations to v.
func (s *Sampler) TwoGamma(v *event.Vertex) {
	s.two.Generate(s.src)

	ps := make([]*event.Particle, 2)
	for i := range ps {
		p4 := s.two.Product(i)
		ps[i] = event.NewGamma(p4.Px(), p4.Py(), p4.Pz(), p4.E(), 2, i+1)
	}

	axis := ps[0].Momentum3()
	e := axis.Orthogonal().Unit()
	e = e.RotateAbout(2*math.Pi*s.src.Uniform(0, 1), axis)
	ps[1].Polarization = e
	ps[0].Polarization = e.RotateAbout(math.Pi/2, axis)

	for _, p := range ps {
		v.AddParticle(p)
	}
}

// ThreeGamma adds three photons distributed according to phase space
// weighted by MatrixElement. An error wrapping rand.ErrRejectionLimit is
// returned if MaxAttempts proposals are all rejected, in which case v is left
// unchanged.
func (s *Sampler) ThreeGamma(v *event.Vertex) error {
	bound := s.AcceptanceBound()
	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = rand.DefaultMaxAttempts
	}

	for i := 0; i < maxAttempts; i++ {
		s.stats.Attempts++

		wt := s.three.Generate(s.src)
		p0, p1, p2 := s.three.Product(0), s.three.Product(1), s.three.Product(2)
		wt *= MatrixElement(units.ElectronMass, p0.E(), p1.E(), p2.E())
		threshold := bound * s.src.Uniform(0, 1)
		if threshold > wt {
			continue
		}

		s.stats.Accepted++
		s.lastWeight, s.lastThreshold = wt, threshold
		for k := 0; k < 3; k++ {
			p4 := s.three.Product(k)
			v.AddParticle(event.NewGamma(p4.Px(), p4.Py(), p4.Pz(), p4.E(), 3, k+1))
		}
		return nil
	}

	return fmt.Errorf(
		"three-gamma decay rejected %d proposals: %w",
		maxAttempts, rand.ErrRejectionLimit,
	)
}

// Prompt adds one isotropic photon of the given energy to v.
func (s *Sampler) Prompt(v *event.Vertex, energy float64) {
	p := geom.Isotropic(s.src).Scale(energy)
	v.AddParticle(event.NewGamma(p[0], p[1], p[2], energy, 1, 1))
}

// Mixed decides between the two- and three-photon channels and populates v.
// The three-photon channel is chosen with probability ratio3g and gets a
// lifetime drawn with mean lifetime3g; otherwise the bulk lifetime is used.
// v is tagged with the chosen mode and lifetime.
func (s *Sampler) Mixed(
	v *event.Vertex, ratio3g, lifetime3g, bulkLifetime float64,
) (event.DecayChannel, error) {
	if ratio3g > s.src.Uniform(0, 1) {
		lifetime := s.src.Exponential(lifetime3g)
		if err := s.ThreeGamma(v); err != nil {
			return event.ChannelUnknown, err
		}
		tag(v, event.ThreeGamma, lifetime)
		return event.ChannelOrtho3G, nil
	}

	lifetime := s.src.Exponential(bulkLifetime)
	s.TwoGamma(v)
	tag(v, event.TwoGamma, lifetime)
	return event.ChannelBulk2G, nil
}

func tag(v *event.Vertex, mode event.Mode, lifetime float64) {
	v.Info.Mode = mode
	v.Info.Lifetime = lifetime / units.Ps
	v.Info.Position = v.Position.Scale(1 / units.Cm)
}
