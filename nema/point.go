/*package nema manages the calibration source points used by NEMA-style
measurements.

Points are identified by positive, not necessarily contiguous, integer IDs.
They are created the first time they are referenced, configured one attribute
at a time in any order, and only ever removed all at once. Points with a
positive weight take part in the weighted random selection which picks the
source of each event.
*/
package nema

import (
	"fmt"
	"strings"

	"github.com/jpet-mc/jpetgen/decay"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/units"
)

// Shape is the geometry of the emission volume of a point.
type Shape int

const (
	Cylinder Shape = iota
	Ball
	// Phantom emits from the phantom element with the point's element ID.
	Phantom
)

var shapeNames = []string{"cylinder", "ball", "phantom"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape converts a configuration string to a Shape.
func ParseShape(s string) (Shape, error) {
	for i, name := range shapeNames {
		if strings.EqualFold(s, name) {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf(
		"Unrecognized point shape '%s'. Choose from %s.",
		s, strings.Join(shapeNames, ", "),
	)
}

// Reach is the policy deciding how far a positron travels from its emission
// point before annihilating.
type Reach int

const (
	NoReach Reach = iota
	// FixedUniformReach draws the distance uniformly up to ReachLength.
	FixedUniformReach
	// FixedExponentialReach draws the distance with mean ReachLength.
	FixedExponentialReach
	// DensityReach draws the distance with a mean fitted to the density of
	// the material around the emission point.
	DensityReach
)

var reachNames = []string{"no", "fixed-uniform", "fixed-exponential", "density"}

func (r Reach) String() string {
	if r < 0 || int(r) >= len(reachNames) {
		return fmt.Sprintf("Reach(%d)", int(r))
	}
	return reachNames[r]
}

// ParseReach converts a configuration string to a Reach.
func ParseReach(s string) (Reach, error) {
	for i, name := range reachNames {
		if strings.EqualFold(s, name) {
			return Reach(i), nil
		}
	}
	return 0, fmt.Errorf(
		"Unrecognized positron reach '%s'. Choose from %s.",
		s, strings.Join(reachNames, ", "),
	)
}

// Isotope is the positron emitter of a point.
type Isotope int

const (
	Na22 Isotope = iota
	Sc44
)

func (iso Isotope) String() string {
	switch iso {
	case Na22:
		return "22Na"
	case Sc44:
		return "44Sc"
	}
	return fmt.Sprintf("Isotope(%d)", int(iso))
}

// ParseIsotope converts a configuration string to an Isotope. Both "22Na"
// and "Na22" spellings are understood.
func ParseIsotope(s string) (Isotope, error) {
	switch strings.ToLower(s) {
	case "22na", "na22":
		return Na22, nil
	case "44sc", "sc44":
		return Sc44, nil
	}
	return 0, fmt.Errorf("Unrecognized isotope '%s'. Choose from 22Na, 44Sc.", s)
}

// PromptEnergy is the energy of the de-excitation photon.
func (iso Isotope) PromptEnergy() float64 {
	if iso == Sc44 {
		return decay.Sc44PromptEnergy
	}
	return decay.Na22PromptEnergy
}

// PromptLifetime is the mean lifetime of the excited daughter state.
func (iso Isotope) PromptLifetime() float64 {
	if iso == Sc44 {
		return 2.61 * units.Ps
	}
	return 3.7 * units.Ps
}

// Point is the configuration of one calibration point. Lengths are in cm and
// lifetimes in ns.
type Point struct {
	ID    int
	Shape Shape

	Position geom.Vec
	// Size is (radius, radius, half length) for cylinders, (radius, _, _)
	// for balls and the half extents of the search box for phantoms.
	Size geom.Vec
	// PromptSize is the cylinder the de-excitation photon is emitted from.
	// A zero size emits it from the annihilation emission point.
	PromptSize geom.Vec
	// Theta and Phi orient the cylinder axis, in degrees.
	Theta, Phi float64

	OPsLifetime, PPsLifetime, DirectLifetime float64

	Allow3G, AllowPPs, AllowDirect, AllowPrompt bool
	DirectLifetimeDensityDependent             bool

	Reach       Reach
	ReachLength float64

	Isotope          Isotope
	PhantomElementID int
}

// NewPoint returns a point with default settings.
func NewPoint(id int) Point {
	return Point{
		ID:             id,
		Shape:          Cylinder,
		OPsLifetime:    2 * units.Ns,
		PPsLifetime:    0.125 * units.Ns,
		DirectLifetime: 0.4 * units.Ns,
		AllowPrompt:    true,
		Reach:          NoReach,
		ReachLength:    0.5 * units.Cm,
		Isotope:        Na22,
	}
}

// ChannelOptions returns the annihilation channel switches of the point.
func (p *Point) ChannelOptions() decay.ChannelOptions {
	return decay.ChannelOptions{
		Allow3G:                p.Allow3G,
		AllowPPs:               p.AllowPPs,
		AllowDirect:            p.AllowDirect,
		OPsLifetime:            p.OPsLifetime,
		PPsLifetime:            p.PPsLifetime,
		DirectLifetime:         p.DirectLifetime,
		DirectDensityDependent: p.DirectLifetimeDensityDependent,
	}
}
