package phasespace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpet-mc/jpetgen/rand"
)

const eps = 1e-9

func TestNewErrors(t *testing.T) {
	_, err := New(1022, []float64{0})
	assert.Error(t, err)
	_, err = New(1022, make([]float64, MaxProducts+1))
	assert.Error(t, err)
	_, err = New(1022, []float64{600, 600})
	assert.Error(t, err)
	_, err = New(1022, []float64{-1, 0})
	assert.Error(t, err)
}

func TestTwoBody(t *testing.T) {
	d, err := New(1022, []float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/511, d.WtMax(), eps)

	gen := rand.NewGenerator(21, rand.PCG)
	for i := 0; i < 1000; i++ {
		wt := d.Generate(gen)
		assert.InDelta(t, 1, wt, eps)

		p1, p2 := d.Product(0), d.Product(1)
		assert.InDelta(t, 511, p1.E(), eps)
		assert.InDelta(t, 511, p2.E(), eps)
		assert.InDelta(t, 0, p1.Px()+p2.Px(), eps)
		assert.InDelta(t, 0, p1.Py()+p2.Py(), eps)
		assert.InDelta(t, 0, p1.Pz()+p2.Pz(), eps)
		assert.InDelta(t, 511, math.Sqrt(p1.Px()*p1.Px()+p1.Py()*p1.Py()+p1.Pz()*p1.Pz()), eps)
	}
}

func TestThreeBodyConservation(t *testing.T) {
	d, err := New(1022, []float64{0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1/(511.0*511.0), d.WtMax(), eps)

	gen := rand.NewGenerator(8, rand.PCG)
	for i := 0; i < 5000; i++ {
		wt := d.Generate(gen)
		assert.True(t, wt > 0 && wt <= 1+eps, "weight %g", wt)

		var e, px, py, pz float64
		for k := 0; k < d.Len(); k++ {
			p := d.Product(k)
			e += p.E()
			px += p.Px()
			py += p.Py()
			pz += p.Pz()
			mom := math.Sqrt(p.Px()*p.Px() + p.Py()*p.Py() + p.Pz()*p.Pz())
			assert.InDelta(t, p.E(), mom, 1e-6, "product is not massless")
		}
		assert.InDelta(t, 1022, e, 1e-6)
		assert.InDelta(t, 0, px, 1e-6)
		assert.InDelta(t, 0, py, 1e-6)
		assert.InDelta(t, 0, pz, 1e-6)
	}
}

func TestMassiveProducts(t *testing.T) {
	masses := []float64{105.7, 105.7, 0}
	d, err := New(1000, masses)
	require.NoError(t, err)

	gen := rand.NewGenerator(99, rand.PCG)
	for i := 0; i < 1000; i++ {
		d.Generate(gen)
		e := 0.0
		for k := 0; k < d.Len(); k++ {
			p := d.Product(k)
			e += p.E()
			m2 := p.E()*p.E() - p.Px()*p.Px() - p.Py()*p.Py() - p.Pz()*p.Pz()
			assert.InDelta(t, masses[k]*masses[k], m2, 1e-3)
		}
		assert.InDelta(t, 1000, e, 1e-6)
	}
}

func BenchmarkThreeBody(b *testing.B) {
	d, _ := New(1022, []float64{0, 0, 0})
	gen := rand.NewGenerator(1, rand.PCG)
	for i := 0; i < b.N; i++ {
		d.Generate(gen)
	}
}
