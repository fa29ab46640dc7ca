package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/geom"
)

// Tolerances are multiplied by the smaller bounding radius of the pair.
const (
	degenerateTolerance  = 1e-9
	gjkTolerance         = 1e-9
	epaTolerance         = 1e-7
	touchTolerance       = 1e-7
	contactEdgeTolerance = 0.02
)

func pairScale(a, b *Collider) float64 {
	s := a.bounds.Radius
	if b.bounds.Radius < s {
		s = b.bounds.Radius
	}
	if s <= 0 {
		return 1
	}
	return s
}

// Intersects reports whether two colliders overlap. Touching shapes do not overlap.
func Intersects(a, b *Collider) bool {
	switch {
	case a.kind == ShapeDisc && b.kind == ShapeDisc:
		return a.WorldDisc().Intersects(b.WorldDisc())
	case a.kind == ShapeDisc && b.kind == ShapePolygon:
		return discPolygonIntersects(a.WorldDisc(), b)
	case a.kind == ShapePolygon && b.kind == ShapeDisc:
		return discPolygonIntersects(b.WorldDisc(), a)
	default:
		_, _, ok := polygonOverlap(a, b)
		return ok
	}
}

// GenerateManifold builds the contact between me and other. It reports false when the
// shapes do not overlap.
func GenerateManifold(me, other *Collider) (Manifold, bool) {
	switch {
	case me.kind == ShapeDisc && other.kind == ShapeDisc:
		return discDiscManifold(me.WorldDisc(), other.WorldDisc())
	case me.kind == ShapeDisc && other.kind == ShapePolygon:
		return discPolygonManifold(me.WorldDisc(), other)
	case me.kind == ShapePolygon && other.kind == ShapeDisc:
		m, ok := discPolygonManifold(other.WorldDisc(), me)
		if !ok {
			return Manifold{}, false
		}
		return m.Inverse(), true
	default:
		return polygonPolygonManifold(me, other)
	}
}

func discDiscManifold(me, other geom.Disc) (Manifold, bool) {
	if !me.Intersects(other) {
		return Manifold{}, false
	}
	delta := me.Center.Sub(other.Center)
	dist := delta.Length()
	normal := cp.Vector{X: 1}
	if dist > 0 {
		normal = delta.Mult(1 / dist)
	}
	deepMe := me.Center.Sub(normal.Mult(me.Radius))
	deepOther := other.Center.Add(normal.Mult(other.Radius))
	return Manifold{
		Contact:     geom.PointSegment(deepMe.Lerp(deepOther, 0.5)),
		Normal:      normal,
		Penetration: me.Radius + other.Radius - dist,
	}, true
}

func discPolygonIntersects(d geom.Disc, poly *Collider) bool {
	if poly.Contains(d.Center) {
		return true
	}
	q, _ := poly.closestBoundary(d.Center)
	return q.DistanceSq(d.Center) < d.Radius*d.Radius
}

// discPolygonManifold treats the disc as me.
func discPolygonManifold(d geom.Disc, poly *Collider) (Manifold, bool) {
	q, edgeNormal := poly.closestBoundary(d.Center)
	delta := d.Center.Sub(q)
	dist := delta.Length()

	var m Manifold
	switch {
	case dist <= degenerateTolerance*d.Radius:
		m.Normal = edgeNormal
		m.Penetration = d.Radius
	case poly.Contains(d.Center):
		// points at the nearest boundary point: the way out, not back toward the centre
		m.Normal = delta.Mult(-1 / dist)
		m.Penetration = d.Radius + dist
	default:
		if dist >= d.Radius {
			return Manifold{}, false
		}
		m.Normal = delta.Mult(1 / dist)
		m.Penetration = d.Radius - dist
	}
	m.Contact = geom.PointSegment(q)
	return m, true
}

// polygonOverlap returns the Minkowski-difference normal pointing from me into other and
// the penetration depth. A pair whose depth is within tolerance of zero only touches.
func polygonOverlap(me, other *Collider) (cp.Vector, float64, bool) {
	scale := pairScale(me, other)
	md := minkowski{me: me, other: other}
	simplex, ok := gjk(md, gjkTolerance*scale)
	if !ok {
		return cp.Vector{}, 0, false
	}
	n, depth := epa(md, simplex, epaTolerance*scale)
	if depth <= touchTolerance*scale {
		return cp.Vector{}, 0, false
	}
	return n, depth, true
}

func polygonPolygonManifold(me, other *Collider) (Manifold, bool) {
	n, depth, ok := polygonOverlap(me, other)
	if !ok {
		return Manifold{}, false
	}

	tol := contactEdgeTolerance * pairScale(me, other)
	meEdge := me.contactEdge(n, tol)
	otherEdge := other.contactEdge(n.Neg(), tol)

	var contact geom.LineSegment
	switch {
	case meEdge.Start.Equal(meEdge.End):
		contact = meEdge
	case otherEdge.Start.Equal(otherEdge.End):
		contact = otherEdge
	default:
		contact = geom.ClipLineSegmentToLineSegment(meEdge, otherEdge)
	}
	return Manifold{Contact: contact, Normal: n.Neg(), Penetration: depth}, true
}
