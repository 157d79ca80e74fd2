package source

import (
	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/nema"
)

// Nema emits from calibration points picked from a registry. A registry with
// a single enabled point gives the single-point source.
type Nema struct {
	Points *nema.Registry
}

func (n *Nema) Populate(ctx *Context, sink event.Sink) (event.DecayChannel, error) {
	if n.Points == nil {
		return event.ChannelUnknown, &ConfigError{"nema", "no point registry"}
	}
	pt, err := n.Points.RandomPoint(ctx.Rand)
	if err != nil {
		return event.ChannelUnknown, err
	}

	emission, mat, err := nema.SampleEmission(ctx.Rand, &pt, ctx.Materials, ctx.MaxAttempts)
	if err != nil {
		return event.ChannelUnknown, err
	}
	pos := nema.SampleAnnihilation(ctx.Rand, &pt, emission, mat)
	density := 0.0
	if mat != nil {
		density = mat.Density
	}

	v := event.NewVertex(pos, 0)
	ch, err := ctx.Decay.Annihilate(v, pt.ChannelOptions(), density, ctx.BulkLifetime)
	if err != nil {
		return event.ChannelUnknown, err
	}
	if err := sink.AddVertex(v); err != nil {
		return event.ChannelUnknown, err
	}

	if !pt.AllowPrompt {
		return ch, nil
	}
	lifetime := ctx.Rand.Exponential(pt.Isotope.PromptLifetime())
	promptPos := nema.SamplePrompt(ctx.Rand, &pt, emission)
	err = addPrompt(ctx, sink, promptPos, pt.Isotope.PromptEnergy(), lifetime)
	if err != nil {
		return event.ChannelUnknown, err
	}
	return ch, nil
}
