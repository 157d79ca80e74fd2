/*package jpetgen generates the primary vertices of positron annihilation
events for a J-PET style detector simulation.

A Generator holds the configuration of every source model together with the
state of one worker: its random source, decay sampler and NEMA point
registry. Configuration setters never fail. Values which cannot be used are
logged as warnings and ignored, and anything that makes generation
impossible is reported by Populate as a *FatalConfigError. A Manager runs
many Generators in parallel.
*/
package jpetgen

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/material"
	"github.com/jpet-mc/jpetgen/nema"
	"github.com/jpet-mc/jpetgen/rand"
	"github.com/jpet-mc/jpetgen/source"
	"github.com/jpet-mc/jpetgen/units"
)

// DefaultEffectivePositronRadius is the radius of the region sampled in the
// small annihilation chamber.
const DefaultEffectivePositronRadius = 0.5 * units.Cm

// Generator drives event population for a single worker.
type Generator struct {
	ctx *source.Context
	log zerolog.Logger

	typ                     SourceType
	runNumber               int
	effectivePositronRadius float64
	chamberCenter           geom.Vec
	scintillatorLength      float64

	beam    source.BeamParams
	isotope source.IsotopeParams
	points  *nema.Registry
	cosmic  source.CosmicGenerator

	nemaPoint int
	model     source.Model
	dirty     bool
}

// NewGenerator creates a Generator around a random source and a material
// classifier. cls may be nil if no chamber or phantom points are used.
func NewGenerator(src rand.Source, cls material.Classifier) *Generator {
	return &Generator{
		ctx:                     source.NewContext(src, cls),
		log:                     zerolog.Nop(),
		effectivePositronRadius: DefaultEffectivePositronRadius,
		scintillatorLength:      nema.DefaultScintillatorLength,
		beam:                    source.DefaultBeamParams(),
		isotope:                 source.DefaultIsotopeParams(),
		points:                  nema.NewRegistry(),
		cosmic:                  source.NewMuonGenerator(50*units.Cm, 50*units.Cm),
		dirty:                   true,
	}
}

// SetLogger sets the logger used for configuration warnings and by the
// source models.
func (g *Generator) SetLogger(log zerolog.Logger) {
	g.log = log
	g.ctx.Log = log
}

// Context returns the per-worker state shared by every source model.
func (g *Generator) Context() *source.Context { return g.ctx }

// SourceType returns the active source type.
func (g *Generator) SourceType() SourceType { return g.typ }

// RunNumber returns the dedicated run number, or 0 if none is set.
func (g *Generator) RunNumber() int { return g.runNumber }

// Points returns the NEMA point registry. Points may be edited through it
// directly before generation starts.
func (g *Generator) Points() *nema.Registry { return g.points }

// SetSourceType selects the source model by its tag. Once a run number is set
// the source type is locked to "run". Selecting "nema" adds the six default
// NEMA points.
func (g *Generator) SetSourceType(tag string) {
	t, err := ParseSourceType(tag)
	if err != nil {
		g.log.Warn().Str("tag", tag).Msg(err.Error())
		return
	}

	switch {
	case g.runNumber != 0:
		if t != RunSource {
			g.log.Warn().Str("tag", tag).Int("run", g.runNumber).
				Msg("The source type of a dedicated run cannot be changed.")
		}
		t = RunSource
	case t == RunSource:
		g.log.Warn().
			Msg("Source type 'run' needs a run number. Value is not changed.")
		return
	case t == NemaSource:
		if err := nema.DefaultPositions(g.points, g.scintillatorLength); err != nil {
			g.log.Warn().Err(err).Msg("Could not add the default NEMA points.")
		}
	}

	g.typ = t
	g.dirty = true
}

// SetRunNumber selects the chamber geometry of a dedicated run. A non-zero
// run number forces the "run" source type.
func (g *Generator) SetRunNumber(run int) {
	g.runNumber = run
	if run != 0 {
		g.typ = RunSource
	}
	g.dirty = true
}

// SetEffectivePositronRadius sets the sampled radius of the small chamber.
func (g *Generator) SetEffectivePositronRadius(r float64) {
	if r <= 0 {
		g.log.Warn().Float64("radius", r).
			Msg("EffectivePositronRadius must be positive. Value is not changed.")
		return
	}
	g.effectivePositronRadius = r
	g.dirty = true
}

// SetChamberCenter moves the annihilation chamber of dedicated runs.
func (g *Generator) SetChamberCenter(c geom.Vec) {
	g.chamberCenter = c
	g.dirty = true
}

// SetScintillatorLength sets the length used to place the default NEMA
// points.
func (g *Generator) SetScintillatorLength(l float64) {
	if l <= 0 {
		g.log.Warn().Float64("length", l).
			Msg("Scintillator length must be positive. Value is not changed.")
		return
	}
	g.scintillatorLength = l
}

// SetBeam sets the parameters of the beam source.
func (g *Generator) SetBeam(p source.BeamParams) {
	g.beam = p
	g.dirty = true
}

// SetIsotope sets the parameters of the isotope source.
func (g *Generator) SetIsotope(p source.IsotopeParams) {
	g.isotope = p
	g.dirty = true
}

// SetCosmicGenerator replaces the generator used by the cosmics source.
func (g *Generator) SetCosmicGenerator(cg source.CosmicGenerator) {
	g.cosmic = cg
	g.dirty = true
}

// SetBulkLifetime sets the mean lifetime of two-photon annihilations outside
// of positronium.
func (g *Generator) SetBulkLifetime(lifetime float64) {
	if lifetime <= 0 {
		g.log.Warn().Float64("lifetime", lifetime).
			Msg("Bulk lifetime must be positive. Value is not changed.")
		return
	}
	g.ctx.BulkLifetime = lifetime
}

// SetMaxAttempts caps every rejection loop. Non-positive values restore
// the default.
func (g *Generator) SetMaxAttempts(n int) {
	if n <= 0 {
		n = rand.DefaultMaxAttempts
	}
	g.ctx.SetMaxAttempts(n)
}

// SetNemaPoint makes id the only point selected by the NEMA sources.
func (g *Generator) SetNemaPoint(id int) {
	if err := g.points.SetOnePointOnly(id); err != nil {
		g.log.Warn().Err(err).Msg("Cannot select NEMA point.")
		return
	}
	g.nemaPoint = id
}

// NemaPoint returns the point chosen by SetNemaPoint, or 0.
func (g *Generator) NemaPoint() int { return g.nemaPoint }

// SetPointWeight sets the selection weight of a NEMA point, creating the
// point if needed.
func (g *Generator) SetPointWeight(id, weight int) {
	if err := g.points.SetWeight(id, weight); err != nil {
		g.log.Warn().Err(err).Msg("Cannot set NEMA point weight.")
	}
}

// ConfigurePoint applies fn to a NEMA point, creating the point if needed.
// Invalid IDs are logged and ignored.
func (g *Generator) ConfigurePoint(id int, fn func(p *nema.Point)) {
	if err := g.points.Configure(id, fn); err != nil {
		g.log.Warn().Err(err).Msg("Cannot configure NEMA point.")
	}
}

// LoadPointTable reads NEMA point positions and weights from a table file.
func (g *Generator) LoadPointTable(file string) error {
	return nema.LoadTable(g.points, file)
}

// resolve builds the source model for the current configuration.
func (g *Generator) resolve() error {
	switch g.typ {
	case RunSource:
		if !source.ValidRun(g.runNumber) {
			return &FatalConfigError{
				Op:     "run",
				Reason: fmt.Sprintf("run %d has no chamber geometry", g.runNumber),
			}
		}
		par := source.DefaultChamberParams(g.runNumber)
		par.Center = g.chamberCenter
		par.EffectivePositronRadius = g.effectivePositronRadius
		g.model = &source.Chamber{Params: par}
	case BeamSource:
		g.model = &source.Beam{Params: g.beam}
	case IsotopeSource:
		if n := g.isotope.Gammas; n < 1 || n > 3 {
			return &FatalConfigError{
				Op:     "isotope",
				Reason: fmt.Sprintf("cannot simulate %d photons per decay", n),
			}
		}
		g.model = &source.Isotope{Params: g.isotope}
	case NemaSource, NemaMixedSource:
		g.model = &source.Nema{Points: g.points}
	case CosmicsSource:
		g.model = &source.Cosmic{Generator: g.cosmic}
	default:
		return &FatalConfigError{Op: "populate", Reason: "no source type selected"}
	}
	g.dirty = false
	return nil
}

// Populate adds the primary vertices of one event to sink and returns the
// generated decay channel. If sink is an *event.Event its Channel is set.
func (g *Generator) Populate(sink event.Sink) (event.DecayChannel, error) {
	if g.dirty {
		if err := g.resolve(); err != nil {
			return event.ChannelUnknown, err
		}
	}

	ch, err := g.model.Populate(g.ctx, sink)
	if err != nil {
		if errors.Is(err, source.ErrConfig) {
			return event.ChannelUnknown, &FatalConfigError{
				Op: g.typ.String(), Reason: err.Error(), Err: err,
			}
		}
		return event.ChannelUnknown, err
	}

	if ev, ok := sink.(*event.Event); ok {
		ev.Channel = ch
	}
	return ch, nil
}

// Clone returns a Generator with the same configuration which draws from src.
// The point registry is copied and the material classifier is shared, so
// clones can run concurrently as long as the classifier is read-only.
func (g *Generator) Clone(src rand.Source) *Generator {
	c := *g
	c.ctx = source.NewContext(src, g.ctx.Materials)
	c.ctx.BulkLifetime = g.ctx.BulkLifetime
	c.ctx.SetMaxAttempts(g.ctx.MaxAttempts)
	c.ctx.Log = g.ctx.Log
	c.points = g.points.Clone()
	c.model = nil
	c.dirty = true
	return &c
}
