package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/geom"
)

// ShapeKind tags the shape stored in a Collider.
type ShapeKind uint8

const (
	ShapeDisc ShapeKind = iota
	ShapePolygon
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeDisc:
		return "disc"
	case ShapePolygon:
		return "polygon"
	default:
		return fmt.Sprintf("ShapeKind(%d)", uint8(k))
	}
}

// Collider is a disc or convex polygon in body space, placed in the world by its Rigidbody.
type Collider struct {
	world  *World
	handle ColliderHandle
	body   BodyHandle

	kind ShapeKind
	disc geom.Disc
	// counter-clockwise, convex
	vertices []cp.Vector
	// local bounding disc, rebuilt with the shape
	bounds geom.Disc

	material  Material
	trigger   bool
	destroyed bool

	onTriggerEnter Delegate[*Collision]
	onTriggerStay  Delegate[*Collision]
	onTriggerLeave Delegate[*Collision]
}

func (c *Collider) Handle() ColliderHandle {
	return c.handle
}

func (c *Collider) Kind() ShapeKind {
	return c.kind
}

// Body returns the owning Rigidbody, or nil once it has been reaped.
func (c *Collider) Body() *Rigidbody {
	if c.world == nil {
		return nil
	}
	return c.world.bodies.get(handle(c.body))
}

func (c *Collider) BodyHandle() BodyHandle {
	return c.body
}

func (c *Collider) IsTrigger() bool {
	return c.trigger
}

func (c *Collider) SetTrigger(trigger bool) {
	c.trigger = trigger
}

func (c *Collider) Material() Material {
	return c.material
}

func (c *Collider) SetMaterial(m Material) {
	c.material = m
}

func (c *Collider) IsDestroyed() bool {
	return c.destroyed
}

// LocalDisc returns the disc shape in body space. Only meaningful for ShapeDisc.
func (c *Collider) LocalDisc() geom.Disc {
	return c.disc
}

// LocalVertices returns a copy of the polygon outline in body space.
func (c *Collider) LocalVertices() []cp.Vector {
	return append([]cp.Vector(nil), c.vertices...)
}

// LocalBounds is the bounding disc in body space.
func (c *Collider) LocalBounds() geom.Disc {
	return c.bounds
}

func (c *Collider) transform() (cp.Vector, cp.Vector) {
	b := c.Body()
	if b == nil {
		return cp.Vector{}, cp.Vector{X: 1}
	}
	return b.position, cp.ForAngle(b.rotation)
}

// WorldDisc returns the disc shape placed in the world.
func (c *Collider) WorldDisc() geom.Disc {
	pos, rot := c.transform()
	return geom.Disc{Center: pos.Add(c.disc.Center.Rotate(rot)), Radius: c.disc.Radius}
}

// WorldVertices returns the polygon outline placed in the world.
func (c *Collider) WorldVertices() []cp.Vector {
	pos, rot := c.transform()
	out := make([]cp.Vector, len(c.vertices))
	for i, v := range c.vertices {
		out[i] = pos.Add(v.Rotate(rot))
	}
	return out
}

// WorldBounds is a conservative bounding disc in world space.
func (c *Collider) WorldBounds() geom.Disc {
	pos, rot := c.transform()
	return geom.Disc{Center: pos.Add(c.bounds.Center.Rotate(rot)), Radius: c.bounds.Radius}
}

// Support returns the world point of the shape farthest along dir.
func (c *Collider) Support(dir cp.Vector) cp.Vector {
	if c.kind == ShapeDisc {
		return c.WorldDisc().Support(dir)
	}
	pos, rot := c.transform()
	return pos.Add(geom.Support(c.vertices, dir.Unrotate(rot)).Rotate(rot))
}

// ClosestPoint returns p when it is inside the shape, otherwise the nearest boundary point.
func (c *Collider) ClosestPoint(p cp.Vector) cp.Vector {
	if c.kind == ShapeDisc {
		return c.WorldDisc().ClosestPoint(p)
	}
	pos, rot := c.transform()
	local := p.Sub(pos).Unrotate(rot)
	return pos.Add(geom.ClosestPoint(c.vertices, local).Rotate(rot))
}

// Contains reports whether p lies inside or on the shape.
func (c *Collider) Contains(p cp.Vector) bool {
	if c.kind == ShapeDisc {
		return c.WorldDisc().Contains(p)
	}
	pos, rot := c.transform()
	return geom.Contains(c.vertices, p.Sub(pos).Unrotate(rot))
}

// closestBoundary returns the nearest outline point to p in world space and the outward
// normal of the edge it lies on.
func (c *Collider) closestBoundary(p cp.Vector) (cp.Vector, cp.Vector) {
	pos, rot := c.transform()
	local := p.Sub(pos).Unrotate(rot)
	q, edge := geom.ClosestBoundaryPoint(c.vertices, local)
	return pos.Add(q.Rotate(rot)), geom.EdgeNormal(c.vertices, edge).Rotate(rot)
}

// CalculateMomentInertia returns the moment of inertia about the body origin for mass.
func (c *Collider) CalculateMomentInertia(mass float64) float64 {
	switch c.kind {
	case ShapeDisc:
		return cp.MomentForCircle(mass, 0, c.disc.Radius, c.disc.Center)
	case ShapePolygon:
		return cp.MomentForPoly(mass, len(c.vertices), c.vertices, cp.Vector{}, 0)
	}
	return 0
}

// contactEdge returns the vertex or flush edge farthest along dir in world space.
func (c *Collider) contactEdge(dir cp.Vector, tol float64) geom.LineSegment {
	pos, rot := c.transform()
	local := dir.Unrotate(rot)
	best := geom.SupportIndex(c.vertices, local)
	max := c.vertices[best].Dot(local)
	n := len(c.vertices)
	// on a convex outline the near-flush partner is a neighbour of the support vertex
	second := -1
	secondDot := max - tol
	for _, i := range [2]int{(best + n - 1) % n, (best + 1) % n} {
		if d := c.vertices[i].Dot(local); d >= secondDot {
			second, secondDot = i, d
		}
	}
	start := pos.Add(c.vertices[best].Rotate(rot))
	if second < 0 {
		return geom.PointSegment(start)
	}
	return geom.LineSegment{Start: start, End: pos.Add(c.vertices[second].Rotate(rot))}
}
