package geom

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/common"
)

// LineSegment is a closed segment. Start == End describes a single point.
type LineSegment struct {
	Start cp.Vector
	End   cp.Vector
}

// PointSegment returns the degenerate segment at p.
func PointSegment(p cp.Vector) LineSegment {
	return LineSegment{Start: p, End: p}
}

func (s LineSegment) Delta() cp.Vector {
	return s.End.Sub(s.Start)
}

func (s LineSegment) Length() float64 {
	return s.End.Distance(s.Start)
}

func (s LineSegment) Midpoint() cp.Vector {
	return s.Start.Lerp(s.End, 0.5)
}

// IsPoint reports whether the segment collapses to a point within tol.
func (s LineSegment) IsPoint(tol float64) bool {
	return s.Start.DistanceSq(s.End) <= tol*tol
}

// Points returns one point for a degenerate segment and both endpoints otherwise.
func (s LineSegment) Points() []cp.Vector {
	if s.Start.Equal(s.End) {
		return []cp.Vector{s.Start}
	}
	return []cp.Vector{s.Start, s.End}
}

// ClosestPoint returns the point on the segment nearest to p.
func (s LineSegment) ClosestPoint(p cp.Vector) cp.Vector {
	d := s.Delta()
	lsq := d.LengthSq()
	if lsq == 0 {
		return s.Start
	}
	t := common.Clamp(p.Sub(s.Start).Dot(d)/lsq, 0, 1)
	return s.Start.Add(d.Mult(t))
}

// ClipLineSegmentToLineSegment returns the part of seg covered by the projection of clip onto it.
// Each endpoint of clip is replaced by its nearest point on seg, so the result always lies on seg.
func ClipLineSegmentToLineSegment(seg, clip LineSegment) LineSegment {
	a := seg.ClosestPoint(clip.Start)
	b := seg.ClosestPoint(clip.End)
	d := seg.Delta()
	if a.Sub(seg.Start).Dot(d) > b.Sub(seg.Start).Dot(d) {
		a, b = b, a
	}
	return LineSegment{Start: a, End: b}
}
