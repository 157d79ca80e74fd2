package decay

import (
	"math"

	"github.com/jpet-mc/jpetgen/event"
)

// Primary fractions of positron annihilation modes. Ortho-positronium takes
// whatever is left.
const (
	DirectFraction  = 0.6
	ParaPsFraction  = 0.25
	OrthoPsFraction = 1 - DirectFraction - ParaPsFraction

	// Fit of the direct annihilation lifetime (ns) against material density
	// (g/cm3): A * exp(-B * density).
	DirectLifetimeA = 0.819151
	DirectLifetimeB = 0.517436
)

// ChannelOptions are the per-source switches which decide the available
// annihilation channels. Lifetimes are means in ns.
type ChannelOptions struct {
	Allow3G, AllowPPs, AllowDirect bool

	OPsLifetime, PPsLifetime, DirectLifetime float64

	// DirectDensityDependent replaces DirectLifetime by the density fit.
	DirectDensityDependent bool
}

// DirectLifetimeAt returns the fitted direct annihilation lifetime for a
// material density.
func DirectLifetimeAt(density float64) float64 {
	return DirectLifetimeA * math.Exp(-DirectLifetimeB*density)
}

// ChooseChannel picks an annihilation channel among the enabled ones with
// probabilities proportional to their primary fractions and returns it with
// its mean lifetime. With no channel enabled, bulk two-photon annihilation is
// returned.
func (s *Sampler) ChooseChannel(
	opt ChannelOptions, density, bulkLifetime float64,
) (event.DecayChannel, float64) {
	type entry struct {
		ch       event.DecayChannel
		frac, lf float64
	}
	var entries [3]entry
	n := 0

	if opt.AllowDirect {
		lf := opt.DirectLifetime
		if opt.DirectDensityDependent {
			lf = DirectLifetimeAt(density)
		}
		entries[n] = entry{event.ChannelDirect2G, DirectFraction, lf}
		n++
	}
	if opt.AllowPPs {
		entries[n] = entry{event.ChannelPara2G, ParaPsFraction, opt.PPsLifetime}
		n++
	}
	if opt.Allow3G {
		entries[n] = entry{event.ChannelOrtho3G, OrthoPsFraction, opt.OPsLifetime}
		n++
	}

	if n == 0 {
		return event.ChannelBulk2G, bulkLifetime
	}

	total := 0.0
	for _, e := range entries[:n] {
		total += e.frac
	}
	u := s.src.Uniform(0, total)
	for _, e := range entries[:n-1] {
		if u < e.frac {
			return e.ch, e.lf
		}
		u -= e.frac
	}
	return entries[n-1].ch, entries[n-1].lf
}

// Annihilate chooses a channel with ChooseChannel, populates v with the
// corresponding photons and tags it.
func (s *Sampler) Annihilate(
	v *event.Vertex, opt ChannelOptions, density, bulkLifetime float64,
) (event.DecayChannel, error) {
	ch, mean := s.ChooseChannel(opt, density, bulkLifetime)
	lifetime := s.src.Exponential(mean)

	if ch == event.ChannelOrtho3G {
		if err := s.ThreeGamma(v); err != nil {
			return event.ChannelUnknown, err
		}
		tag(v, event.ThreeGamma, lifetime)
		return ch, nil
	}

	s.TwoGamma(v)
	tag(v, event.TwoGamma, lifetime)
	return ch, nil
}
