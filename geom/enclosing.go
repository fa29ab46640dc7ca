package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

const enclosingTolerance = 1e-9

// SmallestEnclosingDisc returns the minimum disc containing every point (incremental Welzl).
func SmallestEnclosingDisc(points []cp.Vector) Disc {
	if len(points) == 0 {
		return Disc{}
	}
	d := Disc{Center: points[0]}
	for i := 1; i < len(points); i++ {
		if encloses(d, points[i]) {
			continue
		}
		d = Disc{Center: points[i]}
		for j := 0; j < i; j++ {
			if encloses(d, points[j]) {
				continue
			}
			d = discFrom2(points[i], points[j])
			for k := 0; k < j; k++ {
				if encloses(d, points[k]) {
					continue
				}
				d = discFrom3(points[i], points[j], points[k])
			}
		}
	}
	return d
}

func encloses(d Disc, p cp.Vector) bool {
	return p.Distance(d.Center) <= d.Radius+enclosingTolerance*math.Max(1, d.Radius)
}

func discFrom2(a, b cp.Vector) Disc {
	c := a.Lerp(b, 0.5)
	return Disc{Center: c, Radius: a.Distance(c)}
}

func discFrom3(a, b, c cp.Vector) Disc {
	ab := b.Sub(a)
	ac := c.Sub(a)
	det := 2 * ab.Cross(ac)
	if math.Abs(det) < 1e-12 {
		// collinear: the widest pair spans the disc
		best := discFrom2(a, b)
		if d := discFrom2(a, c); d.Radius > best.Radius {
			best = d
		}
		if d := discFrom2(b, c); d.Radius > best.Radius {
			best = d
		}
		return best
	}
	abl := ab.LengthSq()
	acl := ac.LengthSq()
	off := cp.Vector{
		X: (ac.Y*abl - ab.Y*acl) / det,
		Y: (ab.X*acl - ac.X*abl) / det,
	}
	return Disc{Center: a.Add(off), Radius: off.Length()}
}
