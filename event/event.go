/*package event contains the records produced by the generators: events, their
primary vertices and the particles leaving each vertex, together with the
bookkeeping which lets later selection stages classify vertices.

Units follow package units, except for the provenance recorded in VertexInfo,
which stores lifetimes in ps and positions in cm.
*/
package event

import (
	"errors"
	"fmt"

	"go-hep.org/x/hep/fmom"

	"github.com/jpet-mc/jpetgen/geom"
)

// PDG particle codes of the primaries we generate.
const (
	PDGGamma   = 22
	PDGMuMinus = 13
	PDGMuPlus  = -13
)

// Mode is the generation mode a vertex is tagged with.
type Mode int

const (
	ModeUnset Mode = iota
	TwoGamma
	ThreeGamma
	PromptGamma
	// Cosmic tags vertices produced by the cosmic-ray generator.
	Cosmic
)

func (m Mode) String() string {
	switch m {
	case TwoGamma:
		return "TwoGamma"
	case ThreeGamma:
		return "ThreeGamma"
	case PromptGamma:
		return "PromptGamma"
	case Cosmic:
		return "Cosmic"
	}
	return "Unset"
}

// Multiplicity returns the number of photons a vertex of this mode emits, or
// 0 for modes which do not emit a fixed number of photons.
func (m Mode) Multiplicity() int {
	switch m {
	case TwoGamma:
		return 2
	case ThreeGamma:
		return 3
	case PromptGamma:
		return 1
	}
	return 0
}

// DecayChannel is the annihilation channel chosen for an event.
type DecayChannel int

const (
	ChannelUnknown DecayChannel = iota
	// ChannelBulk2G is two-photon annihilation with the bulk lifetime.
	ChannelBulk2G
	ChannelPara2G
	ChannelDirect2G
	ChannelOrtho3G
	// ChannelPrompt is for events which only carry de-excitation photons.
	ChannelPrompt
	ChannelCosmic
)

func (c DecayChannel) String() string {
	switch c {
	case ChannelBulk2G:
		return "Bulk2G"
	case ChannelPara2G:
		return "Para2G"
	case ChannelDirect2G:
		return "Direct2G"
	case ChannelOrtho3G:
		return "Ortho3G"
	case ChannelPrompt:
		return "Prompt"
	case ChannelCosmic:
		return "Cosmic"
	}
	return "Unknown"
}

// VertexInfo is the provenance attached to each primary vertex.
type VertexInfo struct {
	Mode Mode
	// Lifetime in ps.
	Lifetime float64
	// Position in cm.
	Position geom.Vec
}

// ParticleInfo identifies a photon within the channel that generated it.
type ParticleInfo struct {
	// Multiplicity is the number of photons of the generating channel.
	Multiplicity int
	// Index is 1-based within that channel.
	Index int
}

// Particle is a primary particle.
type Particle struct {
	PDG          int
	Momentum     fmom.PxPyPzE
	Polarization geom.Vec
	Info         ParticleInfo
}

// NewParticle returns a particle with the given four-momentum (keV).
func NewParticle(pdg int, px, py, pz, e float64) *Particle {
	return &Particle{PDG: pdg, Momentum: fmom.NewPxPyPzE(px, py, pz, e)}
}

// NewGamma returns a photon tagged as photon idx of a channel emitting mult
// photons.
func NewGamma(px, py, pz, e float64, mult, idx int) *Particle {
	p := NewParticle(PDGGamma, px, py, pz, e)
	p.Info = ParticleInfo{Multiplicity: mult, Index: idx}
	return p
}

// Momentum3 returns the momentum three-vector.
func (p *Particle) Momentum3() geom.Vec {
	return geom.Vec{p.Momentum.Px(), p.Momentum.Py(), p.Momentum.Pz()}
}

// Energy returns the total energy.
func (p *Particle) Energy() float64 { return p.Momentum.E() }

// Vertex is a primary vertex. It owns its particles.
type Vertex struct {
	Position  geom.Vec
	Time      float64
	Particles []*Particle
	Info      VertexInfo
}

// NewVertex creates an empty vertex.
func NewVertex(pos geom.Vec, time float64) *Vertex {
	return &Vertex{Position: pos, Time: time}
}

// AddParticle attaches a particle to the vertex.
func (v *Vertex) AddParticle(p *Particle) {
	v.Particles = append(v.Particles, p)
}

var (
	ErrModeUnset = errors.New("vertex has no generation mode")
	ErrBadIndex  = errors.New("particle index out of range")
	ErrDupIndex  = errors.New("particle index repeated")
	ErrNilVertex = errors.New("nil vertex")
)

// Validate checks the bookkeeping invariants: the vertex has a mode, and the
// photon indices of each channel are unique and within [1, multiplicity].
func (v *Vertex) Validate() error {
	if v == nil {
		return ErrNilVertex
	}
	if v.Info.Mode == ModeUnset {
		return ErrModeUnset
	}

	type key struct{ mult, idx int }
	seen := map[key]bool{}
	for _, p := range v.Particles {
		if p.Info.Multiplicity == 0 {
			continue
		}
		if p.Info.Index < 1 || p.Info.Index > p.Info.Multiplicity {
			return fmt.Errorf(
				"%w: index %d with multiplicity %d",
				ErrBadIndex, p.Info.Index, p.Info.Multiplicity,
			)
		}
		k := key{p.Info.Multiplicity, p.Info.Index}
		if seen[k] {
			return fmt.Errorf(
				"%w: index %d with multiplicity %d",
				ErrDupIndex, p.Info.Index, p.Info.Multiplicity,
			)
		}
		seen[k] = true
	}
	return nil
}

// Sink receives populated vertices. Generators only ever add to a sink.
type Sink interface {
	AddVertex(v *Vertex) error
}

// Event is the set of primary vertices of one simulated event.
type Event struct {
	ID       int
	Vertices []*Vertex
	Channel  DecayChannel
}

// New creates an empty event.
func New(id int) *Event { return &Event{ID: id} }

// AddVertex validates v and appends it to the event.
func (ev *Event) AddVertex(v *Vertex) error {
	if err := v.Validate(); err != nil {
		return err
	}
	ev.Vertices = append(ev.Vertices, v)
	return nil
}

// Reset clears the event so that its storage can be reused.
func (ev *Event) Reset(id int) {
	ev.ID = id
	for i := range ev.Vertices {
		ev.Vertices[i] = nil
	}
	ev.Vertices = ev.Vertices[:0]
	ev.Channel = ChannelUnknown
}

// Generated returns true if any vertex of the event has the given mode.
func (ev *Event) Generated(m Mode) bool {
	for _, v := range ev.Vertices {
		if v.Info.Mode == m {
			return true
		}
	}
	return false
}

// Particles returns the number of primary particles in the event.
func (ev *Event) Particles() int {
	n := 0
	for _, v := range ev.Vertices {
		n += len(v.Particles)
	}
	return n
}
