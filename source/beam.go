package source

import (
	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/units"
)

// BeamParams configure a pencil beam of photons.
type BeamParams struct {
	Position geom.Vec
	Energy   float64
	// Direction need not be normalized.
	Direction geom.Vec
}

// DefaultBeamParams is a 511 keV beam along x from the origin.
func DefaultBeamParams() BeamParams {
	return BeamParams{Energy: 511 * units.KeV, Direction: geom.Vec{1, 0, 0}}
}

// Beam emits a single photon per event from a fixed point.
type Beam struct {
	Params BeamParams
}

func (b *Beam) Populate(ctx *Context, sink event.Sink) (event.DecayChannel, error) {
	if b.Params.Energy <= 0 || b.Params.Direction == (geom.Vec{}) {
		return event.ChannelUnknown, &ConfigError{
			"beam", "needs a positive energy and a non-zero direction",
		}
	}

	e := b.Params.Energy
	p := b.Params.Direction.Unit().Scale(e)

	v := event.NewVertex(b.Params.Position, 0)
	v.AddParticle(event.NewGamma(p[0], p[1], p[2], e, 1, 1))
	v.Info = event.VertexInfo{
		Mode:     event.PromptGamma,
		Position: b.Params.Position.Scale(1 / units.Cm),
	}
	if err := sink.AddVertex(v); err != nil {
		return event.ChannelUnknown, err
	}
	return event.ChannelPrompt, nil
}
