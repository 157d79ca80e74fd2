package nema

import (
	"fmt"

	"github.com/phil-mansfield/table"

	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/units"
)

// DefaultScintillatorLength is the length of the detector strips the default
// positions are laid out against.
const DefaultScintillatorLength = 50 * units.Cm

// DefaultPositions configures the six standard NEMA points. Points 1-3 sit in
// the central plane at heights of 1, 10 and 20 cm; points 4-6 repeat them
// 3/8 of the scintillator length away. Every point gets weight 1.
func DefaultPositions(r *Registry, scintillatorLength float64) error {
	heights := []float64{1 * units.Cm, 10 * units.Cm, 20 * units.Cm}
	size := 0.1 * units.Mm

	for id := 1; id <= 6; id++ {
		z := 0.0
		if id > 3 {
			z = -scintillatorLength * 3 / 8
		}
		y := heights[(id-1)%3]

		err := r.Configure(id, func(p *Point) {
			p.Position = geom.Vec{0, y, z}
			p.Size = geom.Vec{size, size, size}
		})
		if err != nil {
			return err
		}
		if err := r.SetWeight(id, 1); err != nil {
			return err
		}
	}
	return nil
}

// LoadTable configures points from a whitespace separated text file with the
// columns
//
//	id x y z weight
//
// with positions in cm. Lines starting with '#' are comments. Points which
// already exist keep all other settings.
func LoadTable(r *Registry, file string) error {
	cols, err := table.ReadTable(file, []int{0, 1, 2, 3, 4}, nil)
	if err != nil {
		return err
	}

	ids, xs, ys, zs, ws := cols[0], cols[1], cols[2], cols[3], cols[4]
	for i := range ids {
		id, w := int(ids[i]), int(ws[i])
		if float64(id) != ids[i] || float64(w) != ws[i] {
			return fmt.Errorf(
				"Row %d of %s has a non-integer ID or weight.", i+1, file,
			)
		}

		pos := geom.Vec{xs[i], ys[i], zs[i]}.Scale(units.Cm)
		err := r.Configure(id, func(p *Point) { p.Position = pos })
		if err != nil {
			return fmt.Errorf("Row %d of %s: %w", i+1, file, err)
		}
		if err := r.SetWeight(id, w); err != nil {
			return fmt.Errorf("Row %d of %s: %w", i+1, file, err)
		}
	}
	return nil
}
