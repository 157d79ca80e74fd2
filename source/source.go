/*package source contains the source models which populate one event each.

A Model draws everything it needs from a Context. Contexts are owned by a single
worker: they hold the worker's random source, decay sampler and material
classifier, so that models themselves are plain configuration and can be
shared read-only between workers as long as nobody mutates them during
generation.
*/
package source

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jpet-mc/jpetgen/decay"
	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/material"
	"github.com/jpet-mc/jpetgen/rand"
	"github.com/jpet-mc/jpetgen/units"
)

// DefaultBulkLifetime is the mean lifetime of positrons annihilating outside
// of positronium.
const DefaultBulkLifetime = 0.2 * units.Ns

// ErrConfig is wrapped by every error caused by an unusable source
// configuration.
var ErrConfig = errors.New("invalid source configuration")

// ConfigError is returned by Populate when the configuration of a model
// cannot produce events.
type ConfigError struct {
	Source string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s source: %s", e.Source, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// Context is the per-worker state used by models.
type Context struct {
	Rand      rand.Source
	Decay     *decay.Sampler
	Materials material.Classifier

	// BulkLifetime is the mean two-photon lifetime in ns.
	BulkLifetime float64
	// MaxAttempts caps every rejection loop.
	MaxAttempts int

	Log zerolog.Logger
}

// NewContext creates a Context with default settings around a random source.
func NewContext(src rand.Source, cls material.Classifier) *Context {
	s := decay.NewSampler(src)
	return &Context{
		Rand:         src,
		Decay:        s,
		Materials:    cls,
		BulkLifetime: DefaultBulkLifetime,
		MaxAttempts:  rand.DefaultMaxAttempts,
		Log:          zerolog.Nop(),
	}
}

// SetMaxAttempts sets the rejection budget of the context and its sampler.
func (ctx *Context) SetMaxAttempts(n int) {
	ctx.MaxAttempts = n
	ctx.Decay.MaxAttempts = n
}

// Model populates events.
type Model interface {
	// Populate adds the primary vertices of one event to sink and reports
	// the annihilation channel which was generated.
	Populate(ctx *Context, sink event.Sink) (event.DecayChannel, error)
}

// addPrompt adds a vertex with one de-excitation photon.
func addPrompt(
	ctx *Context, sink event.Sink, pos geom.Vec, energy, lifetime float64,
) error {
	v := event.NewVertex(pos, lifetime)
	ctx.Decay.Prompt(v, energy)
	v.Info = event.VertexInfo{
		Mode:     event.PromptGamma,
		Lifetime: lifetime / units.Ps,
		Position: pos.Scale(1 / units.Cm),
	}
	return sink.AddVertex(v)
}
