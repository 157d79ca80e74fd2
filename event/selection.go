package event

// Hit is the part of a detector hit that event selection looks at.
type Hit struct {
	// GenMultiplicity and GenIndex copy the ParticleInfo of the photon which
	// produced the hit.
	GenMultiplicity int
	GenIndex        int
	// Edep is the deposited energy in keV.
	Edep float64
}

// Registered returns true if the event generated a vertex emitting mult
// photons and every one of those photons left at least one hit. Only
// multiplicities 2 and 3 are meaningful.
func Registered(ev *Event, hits []Hit, mult int) bool {
	generated := false
	for _, v := range ev.Vertices {
		if v.Info.Mode.Multiplicity() == mult && mult > 1 {
			generated = true
			break
		}
	}
	if !generated || len(hits) < mult {
		return false
	}

	seen := make([]bool, mult+1)
	for _, h := range hits {
		if h.GenMultiplicity == mult && h.GenIndex >= 1 && h.GenIndex <= mult {
			seen[h.GenIndex] = true
		}
	}
	for i := 1; i <= mult; i++ {
		if !seen[i] {
			return false
		}
	}
	return true
}

// EnoughHits returns true if exactly desired hits have an energy deposit in
// (minE, maxE). A negative bound is ignored. If exact is set, the total
// number of hits must also equal desired.
func EnoughHits(hits []Hit, desired int, minE, maxE float64, exact bool) bool {
	if len(hits) < desired {
		return false
	}
	if exact && len(hits) != desired {
		return false
	}

	n := 0
	for _, h := range hits {
		if (h.Edep > minE || minE < 0) && (h.Edep < maxE || maxE < 0) {
			n++
		}
	}
	return n == desired
}

// Selection decides whether a simulated event is kept.
type Selection struct {
	Require2G, Require3G bool

	// Multiplicity enables the EnoughHits filter when positive.
	Multiplicity      int
	MinEnergy         float64
	MaxEnergy         float64
	ExactMultiplicity bool
}

// Accept applies every enabled filter.
func (s *Selection) Accept(ev *Event, hits []Hit) bool {
	if s.Require2G && !Registered(ev, hits, 2) {
		return false
	}
	if s.Require3G && !Registered(ev, hits, 3) {
		return false
	}
	if s.Multiplicity > 0 && !EnoughHits(
		hits, s.Multiplicity, s.MinEnergy, s.MaxEnergy, s.ExactMultiplicity,
	) {
		return false
	}
	return true
}
