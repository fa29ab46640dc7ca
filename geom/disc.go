// Package geom holds the small set of geometry queries the physics core is built on:
// discs, line segments and convex counter-clockwise polygons over cp.Vector.
package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Disc is a solid circle.
type Disc struct {
	Center cp.Vector `yaml:"center"`
	Radius float64   `yaml:"radius"`
}

// Contains reports whether p lies inside or on the disc.
func (d Disc) Contains(p cp.Vector) bool {
	return p.DistanceSq(d.Center) <= d.Radius*d.Radius
}

// Intersects reports strict overlap: discs that only touch do not intersect.
func (d Disc) Intersects(o Disc) bool {
	return d.Center.Distance(o.Center) < d.Radius+o.Radius
}

// Overlaps is the inclusive form of Intersects, used where a conservative answer is wanted.
func (d Disc) Overlaps(o Disc) bool {
	r := d.Radius + o.Radius
	return d.Center.DistanceSq(o.Center) <= r*r
}

// ClosestPoint returns p when it is inside the disc, otherwise the nearest boundary point.
func (d Disc) ClosestPoint(p cp.Vector) cp.Vector {
	if d.Contains(p) {
		return p
	}
	return d.ClosestBoundaryPoint(p)
}

// ClosestBoundaryPoint projects p onto the circle. A p at the centre maps to the +X point.
func (d Disc) ClosestBoundaryPoint(p cp.Vector) cp.Vector {
	delta := p.Sub(d.Center)
	l := delta.Length()
	if l == 0 {
		return d.Center.Add(cp.Vector{X: d.Radius})
	}
	return d.Center.Add(delta.Mult(d.Radius / l))
}

// Support returns the farthest point of the disc along dir.
func (d Disc) Support(dir cp.Vector) cp.Vector {
	l := dir.Length()
	if l == 0 {
		return d.Center
	}
	return d.Center.Add(dir.Mult(d.Radius / l))
}

// Area of the disc.
func (d Disc) Area() float64 {
	return math.Pi * d.Radius * d.Radius
}

// BB returns the axis-aligned box around the disc.
func (d Disc) BB() cp.BB {
	return cp.NewBBForCircle(d.Center, d.Radius)
}
