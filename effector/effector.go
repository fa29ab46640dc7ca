// Package effector provides force fields that the physics world applies to every
// enabled dynamic body once per fixed step, before integration.
package effector

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/physics"
)

// LayerFilter selects bodies by layer bit. The zero value matches every layer.
type LayerFilter uint32

func (f LayerFilter) matches(b *physics.Rigidbody) bool {
	return f == 0 || uint32(f)&(1<<b.Layer()) != 0
}

// ConstantForce pushes every matching body with the same force, like a wind zone.
// When Acceleration is set the force is scaled by each body's mass.
type ConstantForce struct {
	Force        cp.Vector
	Acceleration bool
	Layers       LayerFilter
}

func (e *ConstantForce) Apply(b *physics.Rigidbody, dt float64) {
	if !e.Layers.matches(b) {
		return
	}
	f := e.Force
	if e.Acceleration {
		f = f.Mult(b.Mass())
	}
	b.AddForce(f)
}

// PointAttractor pulls bodies toward Center with an inverse-square falloff.
// Negative strength repels. Bodies farther than Radius are ignored unless Radius is 0.
type PointAttractor struct {
	Center   cp.Vector
	Strength float64
	Radius   float64
	// MinDistance clamps the falloff near the centre.
	MinDistance float64
	Layers      LayerFilter
}

func (e *PointAttractor) Apply(b *physics.Rigidbody, dt float64) {
	if !e.Layers.matches(b) {
		return
	}
	delta := e.Center.Sub(b.Position())
	d := delta.Length()
	if e.Radius > 0 && d > e.Radius {
		return
	}
	if d == 0 {
		return
	}
	clamped := math.Max(d, e.MinDistance)
	if clamped == 0 {
		return
	}
	magnitude := e.Strength * b.Mass() / (clamped * clamped)
	b.AddForce(delta.Mult(magnitude / d))
}

// Vortex spins bodies around Center by pushing them along the tangent of the circle
// through their position.
type Vortex struct {
	Center   cp.Vector
	Strength float64
	Radius   float64
	Layers   LayerFilter
}

func (e *Vortex) Apply(b *physics.Rigidbody, dt float64) {
	if !e.Layers.matches(b) {
		return
	}
	delta := b.Position().Sub(e.Center)
	d := delta.Length()
	if d == 0 || (e.Radius > 0 && d > e.Radius) {
		return
	}
	b.AddForce(delta.Perp().Mult(e.Strength * b.Mass() / d))
}

var (
	_ physics.Effector = (*ConstantForce)(nil)
	_ physics.Effector = (*PointAttractor)(nil)
	_ physics.Effector = (*Vortex)(nil)
	_ physics.Effector = (*Script)(nil)
)
