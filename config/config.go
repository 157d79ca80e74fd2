/*package config reads jpetgen configuration files and applies them to a
Generator.

Files use gcfg's INI syntax. A [Generator] section selects the source and
the run parameters, [Beam], [Isotope], [Chamber] and [Cosmics] configure the
individual sources and any number of [Material "name"] and [NemaPoint "id"]
sections describe the target materials and calibration points. Lengths are
in cm, energies in keV and lifetimes in ns unless stated otherwise.
*/
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/jpet-mc/jpetgen"
	"github.com/jpet-mc/jpetgen/geom"
	"github.com/jpet-mc/jpetgen/material"
	"github.com/jpet-mc/jpetgen/nema"
	"github.com/jpet-mc/jpetgen/source"
	"github.com/jpet-mc/jpetgen/units"
)

const ExampleConfigFile = `[Generator]

#######################
# Required Parameters #
#######################

# SourceType is one of run, beam, isotope, nema, nema-mixed or cosmics. If
# RunNumber is set, the source type is always run.
SourceType = nema-mixed

# Number of events to generate.
Events = 100000

#######################
# Optional Parameters #
#######################

# Chamber geometry of a dedicated run: 3, 5, 6, 7 or 12.
# RunNumber = 5
# Radius sampled around the chamber center in run 5.
# EffectivePositronRadius = 0.5

# Workers defaults to the number of CPUs and Seed to the current time.
# Workers = 4
# Seed = 1234

# With SourceType = nema, NemaPoint selects the only point that is used.
# NemaPoint = 2
# Whitespace separated table of "id x y z weight" rows describing points.
# NemaTable = path/to/points.txt
# Scintillator length used to place the default NEMA points.
# ScintillatorLength = 50

# Mean lifetime of two-photon annihilations outside of positronium.
# BulkLifetime = 0.2
# Maximum number of attempts of every rejection sampling loop.
# MaxAttempts = 1000000

[Beam]
# X = 0
# Y = 0
# Z = 0
# DirX = 1
# DirY = 0
# DirZ = 0
# Energy = 511

[Isotope]
# Shape = cylinder
# Radius = 0.1
# HalfHeight = 0.1
# X = 0
# Y = 0
# Z = 0
# Gammas is 1 (prompt photon only), 2 or 3.
# Gammas = 2

[Chamber]
# X = 0
# Y = 0
# Z = 0

[Cosmics]
# Volume is cylinder or cuboid. The cylinder axis is along z.
# Volume = cylinder
# Radius = 50
# HalfLength = 50
# HalfX = 50
# HalfY = 50
# HalfZ = 50
# ChargeRatio = 1.2766
# MeanEnergy in GeV.
# MeanEnergy = 4

# Materials are placed in order of increasing Priority; where shapes overlap
# the material placed last wins. Shape is box, cylinder or shell. One material
# may set Default = true to fill all space outside of every shape.
[Material "air"]
Default = true

[Material "xad4"]
Target = true
Shape = shell
RMin = 0
RMax = 1
ThreeGammaFraction = 0.3
OPsLifetime = 2.5
Density = 1.02
# Priority = 0
# ElementID = 0

# One section per calibration point. A section replaces every setting of its
# point. Weight is only changed when it is positive or Disable is set.
[NemaPoint "1"]
Y = 1
Weight = 1
# Shape is cylinder, ball or phantom.
# Shape = cylinder
# Radius = 0.01
# HalfLength = 0.01
# Orientation of the cylinder axis in degrees.
# Theta = 0
# Phi = 0
# PromptRadius = 0
# PromptHalfLength = 0
# OPsLifetime = 2
# PPsLifetime = 0.125
# DirectLifetime = 0.4
# Allow3G = false
# AllowPPs = false
# AllowDirect = false
# DirectLifetimeDensityDependent = false
# DisablePrompt = false
# Reach is no, fixed-uniform, fixed-exponential or density.
# Reach = no
# ReachLength = 0.5
# Isotope is na22 or sc44.
# Isotope = na22
# PhantomElementID = 0
# Disable = false

[NemaPoint "2"]
Y = 10
Weight = 3`

// Wrapper is the top level structure a configuration file is read into.
type Wrapper struct {
	Generator GeneratorConfig
	Beam      BeamConfig
	Isotope   IsotopeConfig
	Chamber   ChamberConfig
	Cosmics   CosmicsConfig
	Material  map[string]*MaterialConfig
	NemaPoint map[string]*NemaPointConfig
}

type GeneratorConfig struct {
	// Required
	SourceType string
	Events     int

	// Optional
	RunNumber               int
	EffectivePositronRadius float64
	Workers                 int
	Seed                    uint64
	NemaPoint               int
	NemaTable               string
	ScintillatorLength      float64
	BulkLifetime            float64
	MaxAttempts             int
}

func (con *GeneratorConfig) ValidSourceType() bool {
	_, err := jpetgen.ParseSourceType(con.SourceType)
	return err == nil || con.RunNumber != 0
}
func (con *GeneratorConfig) ValidEvents() bool {
	return con.Events > 0
}
func (con *GeneratorConfig) ValidRunNumber() bool {
	return con.RunNumber == 0 || source.ValidRun(con.RunNumber)
}
func (con *GeneratorConfig) ValidWorkers() bool {
	return con.Workers >= 0
}

type BeamConfig struct {
	X, Y, Z          float64
	DirX, DirY, DirZ float64
	Energy           float64
}

func (con *BeamConfig) Params() source.BeamParams {
	return source.BeamParams{
		Position:  geom.Vec{con.X, con.Y, con.Z},
		Energy:    con.Energy * units.KeV,
		Direction: geom.Vec{con.DirX, con.DirY, con.DirZ},
	}
}

func (con *BeamConfig) ValidEnergy() bool {
	return con.Energy > 0
}
func (con *BeamConfig) ValidDirection() bool {
	return con.DirX != 0 || con.DirY != 0 || con.DirZ != 0
}

type IsotopeConfig struct {
	Shape              string
	Radius, HalfHeight float64
	X, Y, Z            float64
	Gammas             int
}

func (con *IsotopeConfig) Params() source.IsotopeParams {
	return source.IsotopeParams{
		Shape:      con.Shape,
		Radius:     con.Radius * units.Cm,
		HalfHeight: con.HalfHeight * units.Cm,
		Center:     geom.Vec{con.X, con.Y, con.Z},
		Gammas:     con.Gammas,
	}
}

func (con *IsotopeConfig) ValidGammas() bool {
	return con.Gammas >= 1 && con.Gammas <= 3
}

type ChamberConfig struct {
	X, Y, Z float64
}

type CosmicsConfig struct {
	Volume              string
	X, Y, Z             float64
	Radius, HalfLength  float64
	HalfX, HalfY, HalfZ float64
	ChargeRatio         float64
	MeanEnergy          float64
}

// Generator returns the muon generator described by the section.
func (con *CosmicsConfig) Generator() (*source.MuonGenerator, error) {
	vol, err := source.ParseMuonVolume(con.Volume)
	if err != nil {
		return nil, err
	}
	mg := source.NewMuonGenerator(con.Radius, con.HalfLength)
	mg.Volume = vol
	mg.Center = geom.Vec{con.X, con.Y, con.Z}
	mg.HalfExtents = geom.Vec{con.HalfX, con.HalfY, con.HalfZ}
	mg.ChargeRatio = con.ChargeRatio
	mg.MeanEnergy = con.MeanEnergy * units.GeV
	return mg, nil
}

type MaterialConfig struct {
	Target             bool
	Default            bool
	Priority           int
	ThreeGammaFraction float64
	OPsLifetime        float64
	Density            float64
	ElementID          int

	Shape               string
	X, Y, Z             float64
	HalfX, HalfY, HalfZ float64
	Radius, HalfHeight  float64
	RMin, RMax          float64
}

func (con *MaterialConfig) shape() (material.Shape, error) {
	c := geom.Vec{con.X, con.Y, con.Z}
	switch strings.ToLower(con.Shape) {
	case "box":
		return &material.Box{
			Center: c, HalfExtents: geom.Vec{con.HalfX, con.HalfY, con.HalfZ},
		}, nil
	case "cylinder":
		return &material.Cylinder{
			Center: c, Radius: con.Radius, HalfHeight: con.HalfHeight,
		}, nil
	case "shell":
		return &material.Shell{Center: c, RMin: con.RMin, RMax: con.RMax}, nil
	}
	return nil, fmt.Errorf(
		"Unrecognized material shape '%s'. Choose from box, cylinder, shell.",
		con.Shape,
	)
}

type NemaPointConfig struct {
	X, Y, Z float64
	Weight  int
	Disable bool

	Shape                    string
	Radius, HalfLength       float64
	Theta, Phi               float64
	PromptRadius             float64
	PromptHalfLength         float64
	OPsLifetime, PPsLifetime float64
	DirectLifetime           float64

	Allow3G, AllowPPs, AllowDirect bool
	DirectLifetimeDensityDependent bool
	DisablePrompt                  bool

	Reach            string
	ReachLength      float64
	Isotope          string
	PhantomElementID int
}

// DefaultWrapper returns a Wrapper holding the default value of every
// optional parameter.
func DefaultWrapper() *Wrapper {
	beam := source.DefaultBeamParams()
	iso := source.DefaultIsotopeParams()
	mg := source.NewMuonGenerator(50*units.Cm, 50*units.Cm)
	return &Wrapper{
		Generator: GeneratorConfig{
			EffectivePositronRadius: jpetgen.DefaultEffectivePositronRadius,
			ScintillatorLength:      nema.DefaultScintillatorLength,
			BulkLifetime:            source.DefaultBulkLifetime,
		},
		Beam: BeamConfig{
			DirX: beam.Direction[0], DirY: beam.Direction[1],
			DirZ: beam.Direction[2], Energy: beam.Energy / units.KeV,
		},
		Isotope: IsotopeConfig{
			Shape: iso.Shape, Radius: iso.Radius, HalfHeight: iso.HalfHeight,
			Gammas: iso.Gammas,
		},
		Cosmics: CosmicsConfig{
			Volume: "cylinder", Radius: mg.Radius, HalfLength: mg.HalfLength,
			HalfX: 50, HalfY: 50, HalfZ: 50,
			ChargeRatio: mg.ChargeRatio, MeanEnergy: mg.MeanEnergy / units.GeV,
		},
	}
}

// ParseFile reads a configuration file into wrap without checking it. Callers
// which override parameters afterwards should call Check themselves.
func ParseFile(wrap *Wrapper, fname string) error {
	return gcfg.ReadFileInto(wrap, fname)
}

// ReadFile reads a configuration file into wrap and checks its required
// parameters.
func ReadFile(wrap *Wrapper, fname string) error {
	if err := ParseFile(wrap, fname); err != nil {
		return err
	}
	return wrap.Check()
}

// ReadString is ReadFile for configuration text.
func ReadString(wrap *Wrapper, str string) error {
	if err := gcfg.ReadStringInto(wrap, str); err != nil {
		return err
	}
	return wrap.Check()
}

// Check returns an error describing the first invalid parameter.
func (wrap *Wrapper) Check() error {
	con := &wrap.Generator
	if !con.ValidSourceType() {
		return fmt.Errorf("Invalid/non-existent 'SourceType' value, '%s'.", con.SourceType)
	} else if !con.ValidEvents() {
		return fmt.Errorf("Invalid/non-existent 'Events' value.")
	} else if !con.ValidRunNumber() {
		return fmt.Errorf("Run %d has no chamber geometry.", con.RunNumber)
	} else if !con.ValidWorkers() {
		return fmt.Errorf("Invalid 'Workers' value, %d.", con.Workers)
	}

	if !wrap.Isotope.ValidGammas() {
		return fmt.Errorf(
			"Isotope 'Gammas' must be 1, 2 or 3, but is %d.", wrap.Isotope.Gammas,
		)
	} else if !wrap.Beam.ValidEnergy() {
		return fmt.Errorf("Beam 'Energy' must be positive.")
	} else if !wrap.Beam.ValidDirection() {
		return fmt.Errorf("Beam direction must be non-zero.")
	}

	defaults := 0
	for name, m := range wrap.Material {
		if m.Default {
			defaults++
			continue
		}
		if _, err := m.shape(); err != nil {
			return fmt.Errorf("Material '%s': %w", name, err)
		}
	}
	if defaults > 1 {
		return fmt.Errorf("Only one material may set 'Default'.")
	}

	for id, p := range wrap.NemaPoint {
		if n, err := strconv.Atoi(id); err != nil || n < 1 {
			return fmt.Errorf("NemaPoint '%s' must be a positive integer.", id)
		}
		if p.Weight < 0 {
			return fmt.Errorf("NemaPoint '%s' given a negative weight, %d.", id, p.Weight)
		}
	}
	return nil
}

// Materials returns the region classifier described by the [Material]
// sections, or nil if there are none.
func (wrap *Wrapper) Materials() (*material.Regions, error) {
	if len(wrap.Material) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(wrap.Material))
	for name := range wrap.Material {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := wrap.Material[names[i]].Priority, wrap.Material[names[j]].Priority
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})

	rs := material.NewRegions(nil)
	for _, name := range names {
		con := wrap.Material[name]
		m := &material.Material{
			Name:               name,
			Target:             con.Target,
			ThreeGammaFraction: con.ThreeGammaFraction,
			OPsLifetime:        con.OPsLifetime * units.Ns,
			Density:            con.Density,
			ElementID:          con.ElementID,
		}
		if con.Default {
			rs.Default = m
			continue
		}
		shape, err := con.shape()
		if err != nil {
			return nil, fmt.Errorf("Material '%s': %w", name, err)
		}
		rs.Add(shape, m)
	}
	return rs, nil
}

// Apply configures g. Parameters of sources which are not selected are
// applied as well.
func (wrap *Wrapper) Apply(g *jpetgen.Generator) error {
	con := &wrap.Generator

	g.SetBulkLifetime(con.BulkLifetime * units.Ns)
	g.SetMaxAttempts(con.MaxAttempts)
	g.SetScintillatorLength(con.ScintillatorLength * units.Cm)
	g.SetEffectivePositronRadius(con.EffectivePositronRadius * units.Cm)
	g.SetChamberCenter(geom.Vec{wrap.Chamber.X, wrap.Chamber.Y, wrap.Chamber.Z})
	g.SetBeam(wrap.Beam.Params())
	g.SetIsotope(wrap.Isotope.Params())

	mg, err := wrap.Cosmics.Generator()
	if err != nil {
		return err
	}
	g.SetCosmicGenerator(mg)

	if con.RunNumber != 0 {
		g.SetRunNumber(con.RunNumber)
	}
	if con.SourceType != "" {
		g.SetSourceType(con.SourceType)
	}

	if con.NemaTable != "" {
		if err := g.LoadPointTable(con.NemaTable); err != nil {
			return err
		}
	}
	if err := wrap.applyPoints(g); err != nil {
		return err
	}
	if con.NemaPoint != 0 {
		g.SetNemaPoint(con.NemaPoint)
	}
	return nil
}

func (wrap *Wrapper) applyPoints(g *jpetgen.Generator) error {
	ids := make([]int, 0, len(wrap.NemaPoint))
	byID := map[int]*NemaPointConfig{}
	for key, p := range wrap.NemaPoint {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("NemaPoint '%s' must be a positive integer.", key)
		}
		ids = append(ids, id)
		byID[id] = p
	}
	sort.Ints(ids)

	for _, id := range ids {
		con := byID[id]
		shape, err := nema.ParseShape(orDefault(con.Shape, "cylinder"))
		if err != nil {
			return fmt.Errorf("NemaPoint '%d': %w", id, err)
		}
		reach, err := nema.ParseReach(orDefault(con.Reach, "no"))
		if err != nil {
			return fmt.Errorf("NemaPoint '%d': %w", id, err)
		}
		iso, err := nema.ParseIsotope(orDefault(con.Isotope, "na22"))
		if err != nil {
			return fmt.Errorf("NemaPoint '%d': %w", id, err)
		}

		g.ConfigurePoint(id, func(p *nema.Point) {
			p.Shape = shape
			p.Position = geom.Vec{con.X, con.Y, con.Z}
			p.Size = geom.Vec{con.Radius, con.Radius, con.HalfLength}
			p.PromptSize = geom.Vec{
				con.PromptRadius, con.PromptRadius, con.PromptHalfLength,
			}
			p.Theta, p.Phi = con.Theta, con.Phi
			if con.OPsLifetime > 0 {
				p.OPsLifetime = con.OPsLifetime * units.Ns
			}
			if con.PPsLifetime > 0 {
				p.PPsLifetime = con.PPsLifetime * units.Ns
			}
			if con.DirectLifetime > 0 {
				p.DirectLifetime = con.DirectLifetime * units.Ns
			}
			p.Allow3G = con.Allow3G
			p.AllowPPs = con.AllowPPs
			p.AllowDirect = con.AllowDirect
			p.DirectLifetimeDensityDependent = con.DirectLifetimeDensityDependent
			p.AllowPrompt = !con.DisablePrompt
			p.Reach = reach
			if con.ReachLength > 0 {
				p.ReachLength = con.ReachLength * units.Cm
			}
			p.Isotope = iso
			p.PhantomElementID = con.PhantomElementID
		})
		if con.Disable {
			g.SetPointWeight(id, 0)
		} else if con.Weight > 0 {
			g.SetPointWeight(id, con.Weight)
		}
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
