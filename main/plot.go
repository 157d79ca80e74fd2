package main

import (
	"fmt"
	"math"
	"os"
	"path"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/jpet-mc/jpetgen/event"
)

const (
	maxScatterPoints = 1 << 14
	energyBins       = 60
	lifetimeBins     = 50
)

// diagnostics collects the distributions plotted with -PlotDir. Each worker
// owns one.
type diagnostics struct {
	energies  [event.Cosmic + 1][]float64
	lifetimes [event.Cosmic + 1][]float64
	xs, ys    []float64
}

func newDiagnostics() *diagnostics { return &diagnostics{} }

func (d *diagnostics) Observe(ev *event.Event) {
	for _, v := range ev.Vertices {
		mode := v.Info.Mode
		if mode < 0 || mode > event.Cosmic {
			continue
		}
		d.lifetimes[mode] = append(d.lifetimes[mode], v.Info.Lifetime)
		for _, p := range v.Particles {
			d.energies[mode] = append(d.energies[mode], p.Energy())
		}
		if len(d.xs) < maxScatterPoints {
			d.xs = append(d.xs, v.Info.Position[0])
			d.ys = append(d.ys, v.Info.Position[1])
		}
	}
}

func (d *diagnostics) Merge(o *diagnostics) {
	for m := range d.energies {
		d.energies[m] = append(d.energies[m], o.energies[m]...)
		d.lifetimes[m] = append(d.lifetimes[m], o.lifetimes[m]...)
	}
	d.xs = append(d.xs, o.xs...)
	d.ys = append(d.ys, o.ys...)
}

// histogram bins xs into n bins over [lo, hi) and returns the bin centers and
// the fraction of values in each bin.
func histogram(xs []float64, lo, hi float64, n int) (centers, fracs []float64) {
	centers, fracs = make([]float64, n), make([]float64, n)
	dx := (hi - lo) / float64(n)
	for i := range centers {
		centers[i] = lo + dx*(float64(i)+0.5)
	}
	if len(xs) == 0 {
		return centers, fracs
	}
	for _, x := range xs {
		i := int((x - lo) / dx)
		if i < 0 || i >= n {
			continue
		}
		fracs[i]++
	}
	for i := range fracs {
		fracs[i] /= float64(len(xs))
	}
	return centers, fracs
}

func maxOf(xs []float64) float64 {
	max := 0.0
	for _, x := range xs {
		max = math.Max(max, x)
	}
	return max
}

var modeColors = map[event.Mode]string{
	event.TwoGamma:    "b",
	event.ThreeGamma:  "r",
	event.PromptGamma: "g",
}

func (d *diagnostics) Plot(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	plt.Reset()

	plt.Figure()
	for _, m := range []event.Mode{event.TwoGamma, event.ThreeGamma, event.PromptGamma} {
		if len(d.energies[m]) == 0 {
			continue
		}
		hi := math.Max(600, 1.05*maxOf(d.energies[m]))
		es, fs := histogram(d.energies[m], 0, hi, energyBins)
		plt.Plot(es, fs, plt.LW(2), plt.C(modeColors[m]))
	}
	plt.Title("Photon energies: 2g (blue), 3g (red), prompt (green)")
	plt.XLabel(`$E$ [keV]`, plt.FontSize(16))
	plt.YLabel(`Fraction`, plt.FontSize(16))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(path.Join(dir, "energies.png"))

	plt.Figure()
	for _, m := range []event.Mode{event.TwoGamma, event.ThreeGamma} {
		if len(d.lifetimes[m]) == 0 {
			continue
		}
		ts, fs := histogram(d.lifetimes[m], 0, maxOf(d.lifetimes[m]), lifetimeBins)
		plt.Plot(ts, fs, plt.LW(2), plt.C(modeColors[m]))
	}
	plt.Title("Annihilation lifetimes: 2g (blue), 3g (red)")
	plt.XLabel(`$\tau$ [ps]`, plt.FontSize(16))
	plt.YLabel(`Fraction`, plt.FontSize(16))
	plt.YScale("log")
	plt.SaveFig(path.Join(dir, "lifetimes.png"))

	plt.Figure(plt.FigSize(8, 8))
	plt.Plot(d.xs, d.ys, ".k")
	plt.Title(fmt.Sprintf("Vertex positions (%d shown)", len(d.xs)))
	plt.XLabel(`$X$ [cm]`, plt.FontSize(16))
	plt.YLabel(`$Y$ [cm]`, plt.FontSize(16))
	plt.SaveFig(path.Join(dir, "vertices.png"))

	plt.Execute()
	return nil
}
