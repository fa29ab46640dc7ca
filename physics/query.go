package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/geom"
)

// QueryFilter restricts spatial queries. A zero filter matches every layer and includes triggers.
type QueryFilter struct {
	// Layers is a bitmask of body layers to match; zero means all.
	Layers          uint32
	ExcludeTriggers bool
}

func (f QueryFilter) match(c *Collider) bool {
	if f.ExcludeTriggers && c.trigger {
		return false
	}
	if f.Layers == 0 {
		return true
	}
	b := c.Body()
	return b != nil && f.Layers&(1<<b.layer) != 0
}

// OverlapPoint returns the simulated colliders containing p, in slot order.
func (w *World) OverlapPoint(p cp.Vector, f QueryFilter) []*Collider {
	var out []*Collider
	w.colliders.each(func(_ handle, c *Collider) {
		if !w.simulated(c) || !f.match(c) {
			return
		}
		if c.WorldBounds().Contains(p) && c.Contains(p) {
			out = append(out, c)
		}
	})
	return out
}

// OverlapDisc returns the simulated colliders overlapping d, in slot order.
func (w *World) OverlapDisc(d geom.Disc, f QueryFilter) []*Collider {
	var out []*Collider
	w.colliders.each(func(_ handle, c *Collider) {
		if !w.simulated(c) || !f.match(c) || !c.WorldBounds().Overlaps(d) {
			return
		}
		var hit bool
		if c.kind == ShapeDisc {
			hit = c.WorldDisc().Intersects(d)
		} else {
			hit = discPolygonIntersects(d, c)
		}
		if hit {
			out = append(out, c)
		}
	})
	return out
}
