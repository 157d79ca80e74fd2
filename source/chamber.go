package source

import (
	"fmt"

	"github.com/jpet-mc/jpetgen/decay"
	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/material"
	"github.com/jpet-mc/jpetgen/units"
)

// SmallChamberRun is the run whose chamber is sampled within the effective
// positron radius instead of the large search box.
const SmallChamberRun = 5

// ValidRun returns true for run numbers with a chamber geometry.
func ValidRun(run int) bool {
	switch run {
	case 3, 5, 6, 7, 12:
		return true
	}
	return false
}

// ChamberParams configure the annihilation chambers of dedicated runs.
type ChamberParams struct {
	Run    int
	Center geom.Vec
	// HalfExtents of the box searched for target material.
	HalfExtents geom.Vec
	// EffectivePositronRadius bounds the search in the small chamber.
	EffectivePositronRadius float64
	// The sodium source is a thin cylinder at the chamber center.
	PromptRadius, PromptHalfHeight float64
}

// DefaultChamberParams returns the chamber settings for a run.
func DefaultChamberParams(run int) ChamberParams {
	h := 15 * units.Cm
	if run == SmallChamberRun {
		h = 5 * units.Cm
	}
	return ChamberParams{
		Run:                     run,
		HalfExtents:             geom.Vec{h, h, h},
		EffectivePositronRadius: 0.5 * units.Cm,
		PromptRadius:            1.5 * units.Cm,
		PromptHalfHeight:        0.2 * units.Cm,
	}
}

// Chamber emits from the target material of an annihilation chamber with a
// sodium source at its center.
type Chamber struct {
	Params ChamberParams
}

func (c *Chamber) Populate(ctx *Context, sink event.Sink) (event.DecayChannel, error) {
	par := &c.Params
	if !ValidRun(par.Run) {
		return event.ChannelUnknown, &ConfigError{
			"run", fmt.Sprintf("run %d has no chamber geometry", par.Run),
		}
	}
	if ctx.Materials == nil {
		return event.ChannelUnknown, &ConfigError{
			"run", "chamber runs need a material classifier",
		}
	}

	promptPos := geom.UniformInCylinder(ctx.Rand, par.PromptRadius, par.PromptHalfHeight)
	promptPos = promptPos.Add(par.Center)

	var (
		pos geom.Vec
		mat *material.Material
		err error
	)
	if par.Run == SmallChamberRun {
		pos, mat, err = material.SampleTargetIn(ctx.Materials, func() geom.Vec {
			p := geom.UniformInBall(ctx.Rand, par.EffectivePositronRadius)
			return p.Add(par.Center)
		}, ctx.MaxAttempts)
	} else {
		pos, mat, err = material.SampleTarget(
			ctx.Rand, ctx.Materials, par.Center, par.HalfExtents, ctx.MaxAttempts,
		)
	}
	if err != nil {
		return event.ChannelUnknown, err
	}

	v := event.NewVertex(pos, 0)
	promptLifetime := ctx.Rand.Exponential(3.7 * units.Ps)
	ch, err := ctx.Decay.Mixed(
		v, mat.ThreeGammaFraction, mat.OPsLifetime, ctx.BulkLifetime,
	)
	if err != nil {
		return event.ChannelUnknown, err
	}
	if err := sink.AddVertex(v); err != nil {
		return event.ChannelUnknown, err
	}

	err = addPrompt(ctx, sink, promptPos, decay.Na22PromptEnergy, promptLifetime)
	if err != nil {
		return event.ChannelUnknown, err
	}
	return ch, nil
}
