package source

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/material"
	"github.com/jpet-mc/jpetgen/nema"
	"github.com/jpet-mc/jpetgen/rand"
)

const eps = 1e-9

func newContext(seed uint64, cls material.Classifier) *Context {
	return NewContext(rand.NewGenerator(seed, rand.PCG), cls)
}

func momentumSum(v *event.Vertex) geom.Vec {
	var sum geom.Vec
	for _, p := range v.Particles {
		sum = sum.Add(p.Momentum3())
	}
	return sum
}

func TestBeam(t *testing.T) {
	ctx := newContext(1, nil)
	b := &Beam{DefaultBeamParams()}

	for i := 0; i < 100; i++ {
		ev := event.New(i)
		ch, err := b.Populate(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, event.ChannelPrompt, ch)
		require.Len(t, ev.Vertices, 1)

		v := ev.Vertices[0]
		require.Len(t, v.Particles, 1)
		p := v.Particles[0]
		assert.Equal(t, geom.Vec{511, 0, 0}, p.Momentum3())
		assert.Equal(t, 511.0, p.Energy())
		assert.Equal(t, event.PromptGamma, v.Info.Mode)
		assert.Zero(t, v.Info.Lifetime)
	}

	b.Params.Energy = 0
	_, err := b.Populate(ctx, event.New(0))
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestIsotopeCylinder(t *testing.T) {
	ctx := newContext(2, nil)
	iso := &Isotope{Params: IsotopeParams{
		Shape: "cylinder", Radius: 10, HalfHeight: 10, Gammas: 2,
	}}

	for i := 0; i < 2000; i++ {
		ev := event.New(i)
		ch, err := iso.Populate(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, event.ChannelBulk2G, ch)
		require.Len(t, ev.Vertices, 1)

		v := ev.Vertices[0]
		pos := v.Position
		assert.LessOrEqual(t, pos[0]*pos[0]+pos[1]*pos[1], 100.0)
		assert.LessOrEqual(t, math.Abs(pos[2]), 10.0)
		require.Len(t, v.Particles, 2)
		assert.True(t, momentumSum(v).EpsEq(geom.Vec{}, 1e-6))
		assert.Equal(t, event.TwoGamma, v.Info.Mode)
		assert.Equal(t, pos, v.Info.Position)
		assert.GreaterOrEqual(t, v.Info.Lifetime, 0.0)
	}
}

func TestIsotopeGammas(t *testing.T) {
	ctx := newContext(3, nil)
	table := []struct {
		gammas int
		ch     event.DecayChannel
		mode   event.Mode
	}{
		{1, event.ChannelPrompt, event.PromptGamma},
		{2, event.ChannelBulk2G, event.TwoGamma},
		{3, event.ChannelOrtho3G, event.ThreeGamma},
	}

	for _, test := range table {
		iso := &Isotope{Params: DefaultIsotopeParams()}
		iso.Params.Gammas = test.gammas
		ev := event.New(0)
		ch, err := iso.Populate(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, test.ch, ch)
		assert.Equal(t, test.mode, ev.Vertices[0].Info.Mode)
		assert.Len(t, ev.Vertices[0].Particles, test.gammas)
	}

	for _, n := range []int{0, 4} {
		iso := &Isotope{Params: DefaultIsotopeParams()}
		iso.Params.Gammas = n
		ev := event.New(0)
		_, err := iso.Populate(ctx, ev)
		assert.True(t, errors.Is(err, ErrConfig), "%d gammas", n)
		var ce *ConfigError
		assert.True(t, errors.As(err, &ce))
		assert.Empty(t, ev.Vertices)
	}
}

func TestIsotopeUnknownShape(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := newContext(4, nil)
	ctx.Log = zerolog.New(buf)

	iso := &Isotope{Params: DefaultIsotopeParams()}
	iso.Params.Shape = "sphere"
	iso.Params.Center = geom.Vec{5, 5, 5}
	for i := 0; i < 10; i++ {
		ev := event.New(i)
		_, err := iso.Populate(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, geom.Vec{}, ev.Vertices[0].Position)
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "sphere")
}

func twoPointRegistry(t *testing.T) *nema.Registry {
	r := nema.NewRegistry()
	require.NoError(t, r.Configure(1, func(p *nema.Point) {
		p.Size = geom.Vec{0.01, 0.01, 0.01}
	}))
	require.NoError(t, r.Configure(2, func(p *nema.Point) {
		p.Position = geom.Vec{100, 0, 0}
	}))
	require.NoError(t, r.SetWeight(1, 1))
	require.NoError(t, r.SetWeight(2, 0))
	return r
}

func TestNemaMixed(t *testing.T) {
	ctx := newContext(5, nil)
	n := &Nema{Points: twoPointRegistry(t)}

	for i := 0; i < 1000; i++ {
		ev := event.New(i)
		ch, err := n.Populate(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, event.ChannelBulk2G, ch)
		require.Len(t, ev.Vertices, 2)

		ann, prompt := ev.Vertices[0], ev.Vertices[1]
		assert.Less(t, ann.Position.Norm(), 0.1)
		assert.Equal(t, event.TwoGamma, ann.Info.Mode)
		assert.Len(t, ann.Particles, 2)

		assert.Equal(t, event.PromptGamma, prompt.Info.Mode)
		assert.Equal(t, ann.Position, prompt.Position)
		require.Len(t, prompt.Particles, 1)
		assert.InDelta(t, 1277, prompt.Particles[0].Energy(), eps)
	}
}

func TestNemaOptions(t *testing.T) {
	ctx := newContext(6, nil)
	r := twoPointRegistry(t)
	require.NoError(t, r.Update(1, func(p *nema.Point) {
		p.AllowPrompt = false
		p.Allow3G = true
		p.Isotope = nema.Sc44
	}))
	n := &Nema{Points: r}

	for i := 0; i < 100; i++ {
		ev := event.New(i)
		ch, err := n.Populate(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, event.ChannelOrtho3G, ch)
		require.Len(t, ev.Vertices, 1)
		assert.Equal(t, event.ThreeGamma, ev.Vertices[0].Info.Mode)
	}

	_, err := (&Nema{Points: nema.NewRegistry()}).Populate(ctx, event.New(0))
	assert.True(t, errors.Is(err, nema.ErrNoEnabledPoints))
	_, err = (&Nema{}).Populate(ctx, event.New(0))
	assert.True(t, errors.Is(err, ErrConfig))
}

var (
	air    = &material.Material{Name: "air"}
	porous = &material.Material{
		Name: "xad4", Target: true, ThreeGammaFraction: 0.4, OPsLifetime: 2,
	}
)

func chamberRegions() *material.Regions {
	rs := material.NewRegions(air)
	rs.Add(&material.Shell{RMin: 2, RMax: 3}, porous)
	rs.Add(&material.Shell{RMax: 0.4}, porous)
	return rs
}

func TestChamberLarge(t *testing.T) {
	ctx := newContext(7, chamberRegions())
	c := &Chamber{DefaultChamberParams(3)}

	n3 := 0
	n := 3000
	for i := 0; i < n; i++ {
		ev := event.New(i)
		ch, err := c.Populate(ctx, ev)
		require.NoError(t, err)
		require.Len(t, ev.Vertices, 2)

		v, prompt := ev.Vertices[0], ev.Vertices[1]
		assert.True(t, ctx.Materials.MaterialAt(v.Position).Target)
		switch ch {
		case event.ChannelOrtho3G:
			n3++
			assert.Equal(t, event.ThreeGamma, v.Info.Mode)
		case event.ChannelBulk2G:
			assert.Equal(t, event.TwoGamma, v.Info.Mode)
		default:
			t.Fatalf("unexpected channel %v", ch)
		}

		p := prompt.Position
		assert.LessOrEqual(t, p[0]*p[0]+p[1]*p[1], 1.5*1.5+eps)
		assert.LessOrEqual(t, math.Abs(p[2]), 0.2+eps)
		assert.Equal(t, event.PromptGamma, prompt.Info.Mode)
	}
	assert.InDelta(t, 0.4, float64(n3)/float64(n), 5*math.Sqrt(0.24/float64(n)))
}

func TestChamberSmall(t *testing.T) {
	ctx := newContext(8, chamberRegions())
	c := &Chamber{DefaultChamberParams(SmallChamberRun)}
	c.Params.EffectivePositronRadius = 1

	for i := 0; i < 500; i++ {
		ev := event.New(i)
		_, err := c.Populate(ctx, ev)
		require.NoError(t, err)
		assert.LessOrEqual(t, ev.Vertices[0].Position.Norm(), 0.4+eps)
	}
}

func TestChamberErrors(t *testing.T) {
	ctx := newContext(9, chamberRegions())
	_, err := (&Chamber{DefaultChamberParams(4)}).Populate(ctx, event.New(0))
	assert.True(t, errors.Is(err, ErrConfig))

	ctx = newContext(9, nil)
	_, err = (&Chamber{DefaultChamberParams(3)}).Populate(ctx, event.New(0))
	assert.True(t, errors.Is(err, ErrConfig))

	ctx = newContext(9, material.NewRegions(air))
	ctx.SetMaxAttempts(10)
	ev := event.New(0)
	_, err = (&Chamber{DefaultChamberParams(6)}).Populate(ctx, ev)
	assert.True(t, errors.Is(err, rand.ErrRejectionLimit))
	assert.Empty(t, ev.Vertices)

	assert.True(t, ValidRun(12))
	assert.False(t, ValidRun(0))
}

func TestCosmic(t *testing.T) {
	ctx := newContext(10, nil)
	mg := NewMuonGenerator(40, 30)
	c := &Cosmic{mg}

	nPlus, n := 0, 5000
	for i := 0; i < n; i++ {
		ev := event.New(i)
		ch, err := c.Populate(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, event.ChannelCosmic, ch)
		require.Len(t, ev.Vertices, 1)

		v := ev.Vertices[0]
		assert.Equal(t, event.Cosmic, v.Info.Mode)
		assert.Equal(t, 40.0, v.Position[1])
		assert.LessOrEqual(t, math.Abs(v.Position[0]), 40.0)
		assert.LessOrEqual(t, math.Abs(v.Position[2]), 30.0)

		mu := v.Particles[0]
		if mu.PDG == event.PDGMuPlus {
			nPlus++
		} else {
			assert.Equal(t, event.PDGMuMinus, mu.PDG)
		}
		p := mu.Momentum3()
		assert.Less(t, p[1], 0.0)
		assert.GreaterOrEqual(t, mu.Energy(), MuonMass)
		m2 := mu.Energy()*mu.Energy() - p.Dot(p)
		assert.InDelta(t, MuonMass*MuonMass, m2, 1e-6*mu.Energy()*mu.Energy())
	}

	f := MuonChargeRatio / (1 + MuonChargeRatio)
	assert.InDelta(t, f, float64(nPlus)/float64(n), 5*math.Sqrt(f*(1-f)/float64(n)))

	mg.Volume = MuonCuboid
	mg.HalfExtents = geom.Vec{1, 2, 3}
	ev := event.New(0)
	_, err := c.Populate(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, 2.0, ev.Vertices[0].Position[1])

	_, err = (&Cosmic{}).Populate(ctx, event.New(0))
	assert.True(t, errors.Is(err, ErrConfig))

	vol, err := ParseMuonVolume("Cuboid")
	require.NoError(t, err)
	assert.Equal(t, MuonCuboid, vol)
	_, err = ParseMuonVolume("cone")
	assert.Error(t, err)
}
