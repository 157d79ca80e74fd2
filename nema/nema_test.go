package nema

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/material"
	"github.com/jpet-mc/jpetgen/rand"
)

const eps = 1e-9

func TestWeightedSelection(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.SetWeight(1, 1))
	require.NoError(t, r.SetWeight(3, 3))
	require.NoError(t, r.SetWeight(7, 0))

	gen := rand.NewGenerator(1, rand.PCG)
	counts := map[int]int{}
	n := 40000
	for i := 0; i < n; i++ {
		p, err := r.RandomPoint(gen)
		require.NoError(t, err)
		counts[p.ID]++
	}

	assert.Zero(t, counts[7])
	frac := float64(counts[3]) / float64(n)
	assert.InDelta(t, 0.75, frac, 5*math.Sqrt(0.75*0.25/float64(n)))
}

func TestReweighting(t *testing.T) {
	r := NewRegistry()
	gen := rand.NewGenerator(2, rand.PCG)
	require.NoError(t, r.SetWeight(1, 1))
	require.NoError(t, r.SetWeight(2, 0))
	for i := 0; i < 1000; i++ {
		p, err := r.RandomPoint(gen)
		require.NoError(t, err)
		assert.Equal(t, 1, p.ID)
	}

	require.NoError(t, r.SetWeight(1, 0))
	require.NoError(t, r.SetWeight(2, 2))
	for i := 0; i < 100; i++ {
		p, err := r.RandomPoint(gen)
		require.NoError(t, err)
		assert.Equal(t, 2, p.ID)
	}
	assert.Equal(t, 2, r.Weight(2))
	assert.Equal(t, 0, r.Weight(99))
}

func TestNoEnabledPoints(t *testing.T) {
	r := NewRegistry()
	gen := rand.NewGenerator(3, rand.PCG)
	_, err := r.RandomPoint(gen)
	assert.True(t, errors.Is(err, ErrNoEnabledPoints))

	require.NoError(t, r.Add(4))
	_, err = r.RandomPoint(gen)
	assert.True(t, errors.Is(err, ErrNoEnabledPoints))
}

func TestConfigure(t *testing.T) {
	r := NewRegistry()
	set := func(p *Point) {
		p.Position = geom.Vec{1, 2, 3}
		p.Allow3G = true
	}

	// Configuring a missing point creates it with defaults.
	require.NoError(t, r.Configure(5, set))
	assert.True(t, r.Exists(5))
	p1, err := r.Point(5)
	require.NoError(t, err)
	want := NewPoint(5)
	set(&want)
	assert.Equal(t, want, p1)

	require.NoError(t, r.Configure(5, set))
	p2, err := r.Point(5)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, 1, r.Len())

	// Add never overwrites.
	require.NoError(t, r.Add(5))
	p3, _ := r.Point(5)
	assert.Equal(t, p1, p3)

	// IDs cannot be changed from inside fn.
	require.NoError(t, r.Configure(5, func(p *Point) { p.ID = 9 }))
	assert.False(t, r.Exists(9))
	p4, _ := r.Point(5)
	assert.Equal(t, 5, p4.ID)
}

func TestPreconditions(t *testing.T) {
	r := NewRegistry()

	err := r.Update(2, func(p *Point) { p.Allow3G = true })
	assert.True(t, errors.Is(err, ErrUnknownPoint))
	var pe *PointError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.ID)
	assert.False(t, r.Exists(2))

	_, err = r.Point(2)
	assert.True(t, errors.Is(err, ErrUnknownPoint))

	assert.True(t, errors.Is(r.Configure(0, func(*Point) {}), ErrInvalidPointID))
	assert.True(t, errors.Is(r.Add(-3), ErrInvalidPointID))
	assert.True(t, errors.Is(r.SetWeight(0, 1), ErrInvalidPointID))
	assert.True(t, errors.Is(r.SetWeight(1, -1), ErrNegativeWeight))
	assert.Equal(t, 0, r.Len())

	require.NoError(t, r.Add(2))
	require.NoError(t, r.Update(2, func(p *Point) { p.Allow3G = true }))
	p, _ := r.Point(2)
	assert.True(t, p.Allow3G)
}

func TestCopySemantics(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.SetWeight(1, 1))
	gen := rand.NewGenerator(4, rand.PCG)

	p, err := r.RandomPoint(gen)
	require.NoError(t, err)
	p.Position = geom.Vec{100, 100, 100}

	stored, _ := r.Point(1)
	assert.Equal(t, geom.Vec{}, stored.Position)
}

func TestSetOnePointOnly(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, DefaultPositions(r, DefaultScintillatorLength))
	require.NoError(t, r.SetOnePointOnly(4))
	gen := rand.NewGenerator(5, rand.PCG)

	for i := 0; i < 200; i++ {
		p, err := r.RandomPoint(gen)
		require.NoError(t, err)
		assert.Equal(t, 4, p.ID)
	}
	assert.True(t, errors.Is(r.SetOnePointOnly(0), ErrInvalidPointID))
}

func TestClearAndClone(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, DefaultPositions(r, DefaultScintillatorLength))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, r.IDs())

	c := r.Clone()
	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Exists(1))
	_, err := r.RandomPoint(rand.NewGenerator(6, rand.PCG))
	assert.True(t, errors.Is(err, ErrNoEnabledPoints))

	assert.Equal(t, 6, c.Len())
	_, err = c.RandomPoint(rand.NewGenerator(6, rand.PCG))
	assert.NoError(t, err)
}

func TestDefaultPositions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, DefaultPositions(r, 50))

	table := []struct {
		id  int
		pos geom.Vec
	}{
		{1, geom.Vec{0, 1, 0}}, {2, geom.Vec{0, 10, 0}}, {3, geom.Vec{0, 20, 0}},
		{4, geom.Vec{0, 1, -18.75}}, {5, geom.Vec{0, 10, -18.75}},
		{6, geom.Vec{0, 20, -18.75}},
	}
	for _, test := range table {
		p, err := r.Point(test.id)
		require.NoError(t, err)
		assert.True(t, p.Position.EpsEq(test.pos, eps), "%d: %v", test.id, p.Position)
		assert.InDelta(t, 0.01, p.Size[0], eps)
		assert.Equal(t, 1, r.Weight(test.id))
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "points.txt")
	require.NoError(t, os.WriteFile(file, []byte("1 0 1 0 1\n8 2 3 4 3\n"), 0644))

	r := NewRegistry()
	require.NoError(t, r.Configure(8, func(p *Point) { p.Allow3G = true }))
	require.NoError(t, LoadTable(r, file))

	assert.Equal(t, []int{1, 8}, r.IDs())
	p, _ := r.Point(8)
	assert.Equal(t, geom.Vec{2, 3, 4}, p.Position)
	assert.True(t, p.Allow3G)
	assert.Equal(t, 3, r.Weight(8))

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("1 0 1 0 1.5\n"), 0644))
	assert.Error(t, LoadTable(NewRegistry(), bad))

	assert.Error(t, LoadTable(NewRegistry(), filepath.Join(dir, "missing.txt")))
}

func TestParse(t *testing.T) {
	s, err := ParseShape("Ball")
	require.NoError(t, err)
	assert.Equal(t, Ball, s)
	_, err = ParseShape("cube")
	assert.Error(t, err)

	re, err := ParseReach("fixed-exponential")
	require.NoError(t, err)
	assert.Equal(t, FixedExponentialReach, re)
	_, err = ParseReach("far")
	assert.Error(t, err)

	iso, err := ParseIsotope("44Sc")
	require.NoError(t, err)
	assert.Equal(t, Sc44, iso)
	iso, err = ParseIsotope("na22")
	require.NoError(t, err)
	assert.Equal(t, Na22, iso)
	_, err = ParseIsotope("18F")
	assert.Error(t, err)

	assert.Equal(t, "phantom", Phantom.String())
	assert.Equal(t, "density", DensityReach.String())
	assert.Equal(t, "22Na", Na22.String())
	assert.InDelta(t, 1157, Sc44.PromptEnergy(), eps)
	assert.InDelta(t, 0.0037, Na22.PromptLifetime(), eps)
}

func TestSampleEmissionCylinder(t *testing.T) {
	gen := rand.NewGenerator(7, rand.PCG)
	p := NewPoint(1)
	p.Position = geom.Vec{0, 10, 0}
	p.Size = geom.Vec{0.5, 0.5, 2}
	p.Theta = 90 // axis along x

	for i := 0; i < 2000; i++ {
		pos, m, err := SampleEmission(gen, &p, nil, 0)
		require.NoError(t, err)
		assert.Nil(t, m)
		d := pos.Sub(p.Position)
		assert.LessOrEqual(t, math.Abs(d[0]), 2+eps)
		assert.LessOrEqual(t, d[1]*d[1]+d[2]*d[2], 0.25+eps)
	}
}

func TestSampleEmissionBall(t *testing.T) {
	gen := rand.NewGenerator(8, rand.PCG)
	p := NewPoint(1)
	p.Shape = Ball
	p.Position = geom.Vec{1, 1, 1}
	p.Size = geom.Vec{0.3, 0, 0}

	air := &material.Material{Name: "air"}
	rs := material.NewRegions(air)
	for i := 0; i < 1000; i++ {
		pos, m, err := SampleEmission(gen, &p, rs, 0)
		require.NoError(t, err)
		assert.Equal(t, air, m)
		assert.LessOrEqual(t, pos.Sub(p.Position).Norm(), 0.3+eps)
	}
}

func TestSampleEmissionPhantom(t *testing.T) {
	gen := rand.NewGenerator(9, rand.PCG)
	elem := &material.Material{Name: "insert", ElementID: 3, Density: 1}
	rs := material.NewRegions(nil)
	rs.Add(&material.Cylinder{Center: geom.Vec{2, 0, 0}, Radius: 1, HalfHeight: 1}, elem)

	p := NewPoint(2)
	p.Shape = Phantom
	p.PhantomElementID = 3
	p.Size = geom.Vec{5, 5, 5}

	for i := 0; i < 500; i++ {
		pos, m, err := SampleEmission(gen, &p, rs, 0)
		require.NoError(t, err)
		assert.Equal(t, elem, m)
		assert.True(t, rs.MaterialAt(pos) == elem)
	}

	_, _, err := SampleEmission(gen, &p, nil, 0)
	assert.True(t, errors.Is(err, ErrNoClassifier))

	p.PhantomElementID = 4
	_, _, err = SampleEmission(gen, &p, rs, 100)
	assert.True(t, errors.Is(err, rand.ErrRejectionLimit))
}

func TestSampleAnnihilation(t *testing.T) {
	gen := rand.NewGenerator(10, rand.PCG)
	p := NewPoint(1)
	e := geom.Vec{1, 2, 3}

	assert.Equal(t, e, SampleAnnihilation(gen, &p, e, nil))

	p.Reach = FixedUniformReach
	for i := 0; i < 1000; i++ {
		d := SampleAnnihilation(gen, &p, e, nil).Sub(e).Norm()
		assert.LessOrEqual(t, d, p.ReachLength+eps)
	}

	p.Reach = FixedExponentialReach
	n, sum := 20000, 0.0
	for i := 0; i < n; i++ {
		sum += SampleAnnihilation(gen, &p, e, nil).Sub(e).Norm()
	}
	assert.InDelta(t, p.ReachLength, sum/float64(n), 5*p.ReachLength/math.Sqrt(float64(n)))

	p.Reach = DensityReach
	assert.Equal(t, e, SampleAnnihilation(gen, &p, e, nil))
	assert.Equal(t, e, SampleAnnihilation(gen, &p, e, &material.Material{}))
	assert.NotEqual(t, e, SampleAnnihilation(gen, &p, e, &material.Material{Density: 1}))

	assert.InDelta(t, 0.19378, MeanRange(1), eps)
	assert.Zero(t, MeanRange(0))
}

func TestSamplePrompt(t *testing.T) {
	gen := rand.NewGenerator(11, rand.PCG)
	p := NewPoint(1)
	p.Position = geom.Vec{0, 0, 5}
	e := geom.Vec{0.01, 0, 5}

	assert.Equal(t, e, SamplePrompt(gen, &p, e))

	p.PromptSize = geom.Vec{1.5, 1.5, 0.2}
	for i := 0; i < 1000; i++ {
		d := SamplePrompt(gen, &p, e).Sub(p.Position)
		assert.LessOrEqual(t, d[0]*d[0]+d[1]*d[1], 2.25+eps)
		assert.LessOrEqual(t, math.Abs(d[2]), 0.2+eps)
	}
}

func BenchmarkRandomPoint(b *testing.B) {
	r := NewRegistry()
	DefaultPositions(r, DefaultScintillatorLength)
	gen := rand.NewGenerator(1, rand.PCG)
	for i := 0; i < b.N; i++ {
		r.RandomPoint(gen)
	}
}
