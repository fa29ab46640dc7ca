package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/geom"
)

// Manifold describes one contact between two colliders. Normal is a unit vector pointing
// from the other collider toward me; moving me along it separates the pair.
type Manifold struct {
	Contact     geom.LineSegment
	Normal      cp.Vector
	Penetration float64

	// per contact point, carried across iterations and warm-started next step
	NormalImpulse  [2]float64
	BounceImpulse  [2]float64
	TangentImpulse [2]float64
}

// Points returns the one or two contact points.
func (m Manifold) Points() []cp.Vector {
	return m.Contact.Points()
}

// Inverse describes the same contact from the other collider's side.
func (m Manifold) Inverse() Manifold {
	inv := m
	inv.Normal = m.Normal.Neg()
	return inv
}

type pairKey struct {
	me    ColliderHandle
	other ColliderHandle
}

// Collision is a contact record between two colliders, seen from Me.
type Collision struct {
	Me       *Collider
	Other    *Collider
	Manifold Manifold
}

func (c *Collision) key() pairKey {
	return pairKey{me: c.Me.handle, other: c.Other.handle}
}

// Inverse returns a copy with Me and Other swapped and the normal negated.
func (c *Collision) Inverse() *Collision {
	return &Collision{Me: c.Other, Other: c.Me, Manifold: c.Manifold.Inverse()}
}

// IsTrigger reports whether either side is a trigger, which routes the pair to trigger
// events only.
func (c *Collision) IsTrigger() bool {
	return c.Me.trigger || c.Other.trigger
}

func (c *Collision) Bounciness() float64 {
	return CombineBounciness(c.Me.material, c.Other.material)
}

func (c *Collision) Friction() float64 {
	return CombineFriction(c.Me.material, c.Other.material)
}

// TotalImpulse is the normal impulse summed over the contact points.
func (c *Collision) TotalImpulse() float64 {
	n := len(c.Manifold.Points())
	var sum float64
	for i := 0; i < n; i++ {
		sum += c.Manifold.NormalImpulse[i]
	}
	return sum
}
