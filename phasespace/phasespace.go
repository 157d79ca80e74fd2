/*package phasespace generates N-body decays of a system at rest distributed
according to Lorentz-invariant phase space.

The implementation is the Raubold-Lynch (GENBOD) method: the intermediate
invariant masses are built from sorted uniform numbers, two-body momenta are
chained with random rotations and boosts, and every event carries a weight
proportional to its phase-space density. Weights are normalized so that they
never exceed 1; WtMax is the normalization used.
*/
package phasespace

import (
	"fmt"
	"math"
	"sort"

	"go-hep.org/x/hep/fmom"

	"github.com/jpet-mc/jpetgen/rand"
)

// MaxProducts is the largest number of decay products supported.
const MaxProducts = 18

// Decay holds the setup of one decay and the products of the most recently
// generated event.
type Decay struct {
	mass   float64
	masses []float64
	teCmTm float64
	wtMax  float64

	rno, invMas, pd []float64
	p4              [][4]float64
	products        []fmom.PxPyPzE
}

// New sets up the decay of a system of the given mass at rest into products
// with the given masses. All quantities share one energy unit.
func New(mass float64, masses []float64) (*Decay, error) {
	n := len(masses)
	if n < 2 || n > MaxProducts {
		return nil, fmt.Errorf(
			"A decay needs between 2 and %d products, but %d were given.",
			MaxProducts, n,
		)
	}

	sum := 0.0
	for _, m := range masses {
		if m < 0 {
			return nil, fmt.Errorf("Decay product mass %g is negative.", m)
		}
		sum += m
	}
	if sum >= mass {
		return nil, fmt.Errorf(
			"Decay of mass %g into products of total mass %g is forbidden.",
			mass, sum,
		)
	}

	d := &Decay{
		mass:     mass,
		masses:   append([]float64{}, masses...),
		teCmTm:   mass - sum,
		rno:      make([]float64, n),
		invMas:   make([]float64, n),
		pd:       make([]float64, n),
		p4:       make([][4]float64, n),
		products: make([]fmom.PxPyPzE, n),
	}

	emmax := d.teCmTm + masses[0]
	emmin := 0.0
	wtmax := 1.0
	for i := 1; i < n; i++ {
		emmin += masses[i-1]
		emmax += masses[i]
		wtmax *= pdk(emmax, emmin, masses[i])
	}
	d.wtMax = 1 / wtmax

	return d, nil
}

// pdk is the momentum of the two-body decay a -> b + c.
func pdk(a, b, c float64) float64 {
	x := (a - b - c) * (a + b + c) * (a - b + c) * (a + b - c)
	if x <= 0 {
		return 0
	}
	return math.Sqrt(x) / (2 * a)
}

// Len returns the number of decay products.
func (d *Decay) Len() int { return len(d.masses) }

// Mass returns the mass of the decaying system.
func (d *Decay) Mass() float64 { return d.mass }

// WtMax returns the normalization applied to event weights.
func (d *Decay) WtMax() float64 { return d.wtMax }

// Product returns the four-momentum of the i-th product of the last event.
func (d *Decay) Product(i int) fmom.PxPyPzE { return d.products[i] }

// Generate creates a new event and returns its weight, which lies in (0, 1].
func (d *Decay) Generate(src rand.Source) float64 {
	n := len(d.masses)

	d.rno[0] = 0
	for i := 1; i < n-1; i++ {
		d.rno[i] = src.Uniform(0, 1)
	}
	sort.Float64s(d.rno[1 : n-1])
	d.rno[n-1] = 1

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += d.masses[i]
		d.invMas[i] = d.rno[i]*d.teCmTm + sum
	}

	wt := d.wtMax
	for i := 0; i < n-1; i++ {
		d.pd[i] = pdk(d.invMas[i+1], d.invMas[i], d.masses[i+1])
		wt *= d.pd[i]
	}

	d.p4[0] = [4]float64{0, d.pd[0], 0, math.Hypot(d.pd[0], d.masses[0])}

	for i := 1; ; i++ {
		d.p4[i] = [4]float64{0, -d.pd[i-1], 0, math.Hypot(d.pd[i-1], d.masses[i])}

		cZ := 2*src.Uniform(0, 1) - 1
		sZ := math.Sqrt(1 - cZ*cZ)
		angY := 2 * math.Pi * src.Uniform(0, 1)
		cY, sY := math.Cos(angY), math.Sin(angY)
		for j := 0; j <= i; j++ {
			v := &d.p4[j]
			x, y := v[0], v[1]
			v[0], v[1] = cZ*x-sZ*y, sZ*x+cZ*y // around z
			x, z := v[0], v[2]
			v[0], v[2] = cY*x-sY*z, sY*x+cY*z // around y
		}

		if i == n-1 {
			break
		}

		beta := d.pd[i] / math.Hypot(d.pd[i], d.invMas[i])
		for j := 0; j <= i; j++ {
			boostY(&d.p4[j], beta)
		}
	}

	for i := range d.products {
		v := d.p4[i]
		d.products[i] = fmom.NewPxPyPzE(v[0], v[1], v[2], v[3])
	}

	return wt
}

// boostY boosts a four-vector along the y axis with velocity beta.
func boostY(v *[4]float64, beta float64) {
	if beta == 0 {
		return
	}
	gamma := 1 / math.Sqrt(1-beta*beta)
	py, e := v[1], v[3]
	v[1] = gamma * (py + beta*e)
	v[3] = gamma * (e + beta*py)
}
