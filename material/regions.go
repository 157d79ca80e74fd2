package material

import (
	"github.com/jpet-mc/jpetgen/geom"
)

// Shape is a solid which can tell whether it contains a point.
type Shape interface {
	Contains(p geom.Vec) bool
}

// Box is an axis-aligned box.
type Box struct {
	Center, HalfExtents geom.Vec
}

func (b *Box) Contains(p geom.Vec) bool {
	d := p.Sub(b.Center)
	return -b.HalfExtents[0] <= d[0] && d[0] <= b.HalfExtents[0] &&
		-b.HalfExtents[1] <= d[1] && d[1] <= b.HalfExtents[1] &&
		-b.HalfExtents[2] <= d[2] && d[2] <= b.HalfExtents[2]
}

// Cylinder is a cylinder aligned with the z axis.
type Cylinder struct {
	Center             geom.Vec
	Radius, HalfHeight float64
}

func (c *Cylinder) Contains(p geom.Vec) bool {
	d := p.Sub(c.Center)
	return d[0]*d[0]+d[1]*d[1] <= c.Radius*c.Radius &&
		-c.HalfHeight <= d[2] && d[2] <= c.HalfHeight
}

// Shell is a spherical shell. A zero RMin gives a ball.
type Shell struct {
	Center     geom.Vec
	RMin, RMax float64
}

func (s *Shell) Contains(p geom.Vec) bool {
	r2 := p.Sub(s.Center).Dot(p.Sub(s.Center))
	return s.RMin*s.RMin <= r2 && r2 <= s.RMax*s.RMax
}

// Region fills a shape with a material.
type Region struct {
	Shape    Shape
	Material *Material
}

// Regions is a Classifier built from a list of regions. Regions added later
// are placed inside earlier ones, so the last region containing a point wins.
type Regions struct {
	list []Region
	// Default is returned outside every region. Nil means Vacuum.
	Default *Material
}

// NewRegions creates an empty Regions filled with the default material.
func NewRegions(def *Material) *Regions {
	return &Regions{Default: def}
}

// Add places a material inside shape.
func (rs *Regions) Add(shape Shape, m *Material) {
	rs.list = append(rs.list, Region{shape, m})
}

// Len returns the number of regions.
func (rs *Regions) Len() int { return len(rs.list) }

// MaterialAt implements Classifier.
func (rs *Regions) MaterialAt(p geom.Vec) *Material {
	for i := len(rs.list) - 1; i >= 0; i-- {
		if rs.list[i].Shape.Contains(p) {
			return rs.list[i].Material
		}
	}
	if rs.Default == nil {
		return Vacuum
	}
	return rs.Default
}
