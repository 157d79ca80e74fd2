package source

import (
	"fmt"
	"strings"

	"github.com/jpet-mc/jpetgen/decay"
	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/units"
)

// IsotopeParams configure an extended isotope source. Only the "cylinder"
// shape is understood; Radius and HalfHeight are its dimensions.
type IsotopeParams struct {
	Shape              string
	Radius, HalfHeight float64
	Center             geom.Vec
	// Gammas is the number of photons per decay: 1 for the prompt photon
	// alone, 2 or 3 for annihilation.
	Gammas int
}

// DefaultIsotopeParams is a 1 mm cylinder emitting photon pairs.
func DefaultIsotopeParams() IsotopeParams {
	return IsotopeParams{
		Shape: "cylinder", Radius: 1 * units.Mm, HalfHeight: 1 * units.Mm,
		Gammas: 2,
	}
}

// Isotope emits from a volume around Center.
type Isotope struct {
	Params IsotopeParams

	warned bool
}

func (iso *Isotope) Populate(ctx *Context, sink event.Sink) (event.DecayChannel, error) {
	par := &iso.Params
	if par.Gammas < 1 || par.Gammas > 3 {
		return event.ChannelUnknown, &ConfigError{
			"isotope",
			fmt.Sprintf("cannot simulate %d photons per decay", par.Gammas),
		}
	}

	var pos geom.Vec
	if strings.EqualFold(par.Shape, "cylinder") {
		pos = geom.UniformInCylinder(ctx.Rand, par.Radius, par.HalfHeight)
		pos = pos.Add(par.Center)
	} else if !iso.warned {
		ctx.Log.Warn().Str("shape", par.Shape).
			Msg("Unknown isotope shape, emitting from the origin.")
		iso.warned = true
	}

	lifetime := ctx.Rand.Exponential(ctx.BulkLifetime)
	v := event.NewVertex(pos, 0)

	var ch event.DecayChannel
	var mode event.Mode
	switch par.Gammas {
	case 1:
		ctx.Decay.Prompt(v, decay.Na22PromptEnergy)
		ch, mode = event.ChannelPrompt, event.PromptGamma
	case 2:
		ctx.Decay.TwoGamma(v)
		ch, mode = event.ChannelBulk2G, event.TwoGamma
	case 3:
		if err := ctx.Decay.ThreeGamma(v); err != nil {
			return event.ChannelUnknown, err
		}
		ch, mode = event.ChannelOrtho3G, event.ThreeGamma
	}

	v.Info = event.VertexInfo{
		Mode:     mode,
		Lifetime: lifetime / units.Ps,
		Position: pos.Scale(1 / units.Cm),
	}
	if err := sink.AddVertex(v); err != nil {
		return event.ChannelUnknown, err
	}
	return ch, nil
}
