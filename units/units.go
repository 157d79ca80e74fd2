/*package units defines the unit system used throughout jpetgen.

Energies are stored in keV, lengths in cm and times in ns. Multiplying a number by
one of the constants below converts it into internal units and dividing converts
it back out, e.g. 1.277*MeV is 1277 and lifetime/Ps is a lifetime in picoseconds.
*/
package units

import "math"

const (
	KeV = 1.0
	MeV = 1e3 * KeV
	GeV = 1e6 * KeV

	Cm = 1.0
	Mm = 0.1 * Cm

	Ns = 1.0
	Ps = 1e-3 * Ns

	Deg = math.Pi / 180

	// ElectronMass is the electron rest mass.
	ElectronMass = 511 * KeV
)
