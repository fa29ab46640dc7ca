package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

var (
	ErrTooFewVertices = errors.New("geom: polygon needs at least 3 vertices")
	ErrNotConvex      = errors.New("geom: polygon is not convex")
	ErrClockwise      = errors.New("geom: polygon is wound clockwise")
)

// SignedArea is positive for counter-clockwise winding.
func SignedArea(points []cp.Vector) float64 {
	var sum float64
	for i := range points {
		a := points[i]
		b := points[(i+1)%len(points)]
		sum += a.Cross(b)
	}
	return sum / 2
}

// ValidateConvex checks that points form a simple, strictly convex, counter-clockwise polygon.
func ValidateConvex(points []cp.Vector) error {
	n := len(points)
	if n < 3 {
		return ErrTooFewVertices
	}
	var positive, negative int
	var turning float64
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		c := points[(i+2)%n]
		e0 := b.Sub(a)
		e1 := c.Sub(b)
		if e0.LengthSq() == 0 {
			return fmt.Errorf("%w: duplicate vertex at index %d", ErrNotConvex, (i+1)%n)
		}
		cross := e0.Cross(e1)
		switch {
		case cross > 0:
			positive++
		case cross < 0:
			negative++
		default:
			return fmt.Errorf("%w: collinear vertices around index %d", ErrNotConvex, (i+1)%n)
		}
		turning += math.Atan2(cross, e0.Dot(e1))
	}
	if positive > 0 && negative > 0 {
		return ErrNotConvex
	}
	// a star polygon turns the same way at every vertex but winds more than once
	if math.Abs(math.Abs(turning)-2*math.Pi) > 1e-6 {
		return fmt.Errorf("%w: self-intersecting outline", ErrNotConvex)
	}
	if negative > 0 {
		return ErrClockwise
	}
	return nil
}

// IsConvex is ValidateConvex as a predicate.
func IsConvex(points []cp.Vector) bool {
	return ValidateConvex(points) == nil
}

// ConvexHull returns the counter-clockwise hull of a point cloud. The input is not modified.
func ConvexHull(points []cp.Vector, tol float64) []cp.Vector {
	if len(points) == 0 {
		return nil
	}
	verts := append([]cp.Vector(nil), points...)
	n := cp.ConvexHull(len(verts), verts, nil, tol)
	hull := verts[:n]
	if SignedArea(hull) < 0 {
		for i, j := 0, len(hull)-1; i < j; i, j = i+1, j-1 {
			hull[i], hull[j] = hull[j], hull[i]
		}
	}
	return hull
}

// Centroid of a counter-clockwise polygon.
func Centroid(points []cp.Vector) cp.Vector {
	return cp.CentroidForPoly(len(points), points)
}

// Area of a counter-clockwise polygon.
func Area(points []cp.Vector) float64 {
	return cp.AreaForPoly(len(points), points, 0)
}

// SupportIndex returns the index of the vertex farthest along dir.
func SupportIndex(points []cp.Vector, dir cp.Vector) int {
	best := 0
	bestDot := math.Inf(-1)
	for i, p := range points {
		if d := p.Dot(dir); d > bestDot {
			best, bestDot = i, d
		}
	}
	return best
}

// Support returns the vertex farthest along dir.
func Support(points []cp.Vector, dir cp.Vector) cp.Vector {
	return points[SupportIndex(points, dir)]
}

// Edge returns the i-th edge, from vertex i to vertex i+1.
func Edge(points []cp.Vector, i int) LineSegment {
	return LineSegment{Start: points[i], End: points[(i+1)%len(points)]}
}

// EdgeNormal returns the outward unit normal of the i-th edge of a counter-clockwise polygon.
func EdgeNormal(points []cp.Vector, i int) cp.Vector {
	return Edge(points, i).Delta().ReversePerp().Normalize()
}

// Contains reports whether p is inside or on a convex counter-clockwise polygon.
func Contains(points []cp.Vector, p cp.Vector) bool {
	for i := range points {
		e := Edge(points, i)
		if e.Delta().Cross(p.Sub(e.Start)) < 0 {
			return false
		}
	}
	return true
}

// ClosestBoundaryPoint returns the nearest point on the outline and the index of its edge.
func ClosestBoundaryPoint(points []cp.Vector, p cp.Vector) (cp.Vector, int) {
	var best cp.Vector
	bestEdge := -1
	bestDist := math.Inf(1)
	for i := range points {
		q := Edge(points, i).ClosestPoint(p)
		if d := q.DistanceSq(p); d < bestDist {
			best, bestEdge, bestDist = q, i, d
		}
	}
	return best, bestEdge
}

// ClosestPoint returns p when it lies in the polygon, otherwise the nearest boundary point.
func ClosestPoint(points []cp.Vector, p cp.Vector) cp.Vector {
	if Contains(points, p) {
		return p
	}
	q, _ := ClosestBoundaryPoint(points, p)
	return q
}
