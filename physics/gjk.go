package physics

import (
	"math"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/geom"
)

const (
	gjkMaxIterations = 64
	epaMaxIterations = 64
)

// minkowski is the Minkowski difference me − other.
type minkowski struct {
	me, other *Collider
}

func (m minkowski) support(dir cp.Vector) cp.Vector {
	return m.me.Support(dir).Sub(m.other.Support(dir.Neg()))
}

func (m minkowski) axis() cp.Vector {
	return m.me.WorldBounds().Center.Sub(m.other.WorldBounds().Center)
}

// tripleProduct is (a × b) × c expanded for 2D vectors.
func tripleProduct(a, b, c cp.Vector) cp.Vector {
	return b.Mult(a.Dot(c)).Sub(a.Mult(b.Dot(c)))
}

// gjk searches for a triangle of Minkowski-difference points enclosing the origin. The
// triangle is returned counter-clockwise when found.
func gjk(m minkowski, tol float64) ([]cp.Vector, bool) {
	axis := m.axis()
	if axis.LengthSq() <= tol*tol {
		axis = cp.Vector{X: 1}
	}
	axis = axis.Normalize()

	a := m.support(axis)
	b := m.support(axis.Neg())
	ab := b.Sub(a)
	if ab.LengthSq() <= tol*tol {
		return nil, false
	}
	// perpendicular of ab on the origin's side
	perp := ab.Perp().Normalize()
	if perp.Dot(a) > 0 {
		perp = perp.Neg()
	}
	c := m.support(perp)
	if c.Dot(perp) <= tol {
		return nil, false
	}

	s := [3]cp.Vector{a, b, c}
	for i := 0; i < gjkMaxIterations; i++ {
		if geom.SignedArea(s[:]) < 0 {
			s[0], s[1] = s[1], s[0]
		}
		// among the edges the origin lies outside of, take the one nearest the origin
		edge := -1
		var closest cp.Vector
		nearest := math.Inf(1)
		for e := 0; e < 3; e++ {
			seg := geom.LineSegment{Start: s[e], End: s[(e+1)%3]}
			if seg.Delta().ReversePerp().Dot(seg.Start) >= 0 {
				continue
			}
			q := seg.ClosestPoint(cp.Vector{})
			if d := q.LengthSq(); d < nearest {
				edge, closest, nearest = e, q, d
			}
		}
		if edge < 0 {
			return s[:], true
		}
		dir := closest.Neg()
		if nearest <= tol*tol {
			dir = s[(edge+1)%3].Sub(s[edge]).ReversePerp()
		}
		dir = dir.Normalize()
		p := m.support(dir)
		if p.Dot(dir) <= tol {
			return nil, false
		}
		for _, v := range s {
			if v.DistanceSq(p) <= tol*tol {
				return nil, false
			}
		}
		s[(edge+2)%3] = p
	}
	return nil, false
}

// epa expands the enclosing simplex toward the Minkowski boundary and returns the unit
// direction of the closest boundary edge and its distance from the origin.
func epa(m minkowski, simplex []cp.Vector, tol float64) (cp.Vector, float64) {
	poly := append(make([]cp.Vector, 0, len(simplex)+8), simplex...)
	if geom.SignedArea(poly) < 0 {
		slices.Reverse(poly)
	}
	var n cp.Vector
	var dist float64
	for i := 0; i < epaMaxIterations; i++ {
		var idx int
		idx, n, dist = closestEdge(poly)
		p := m.support(n)
		if p.Dot(n)-dist < tol || hasVertex(poly, p, tol) {
			return n, dist
		}
		poly = slices.Insert(poly, idx+1, p)
	}
	return n, dist
}

func closestEdge(poly []cp.Vector) (int, cp.Vector, float64) {
	best := 0
	var bestN cp.Vector
	bestD := math.Inf(1)
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		e := b.Sub(a)
		out := e.ReversePerp()
		n := tripleProduct(e, a, e)
		// origin on the edge line leaves no perpendicular component
		if n.Dot(out) <= 0 {
			n = out
		}
		n = n.Normalize()
		if d := n.Dot(a); d < bestD {
			best, bestN, bestD = i, n, d
		}
	}
	return best, bestN, bestD
}

func hasVertex(poly []cp.Vector, p cp.Vector, tol float64) bool {
	for _, v := range poly {
		if v.DistanceSq(p) <= tol*tol {
			return true
		}
	}
	return false
}
