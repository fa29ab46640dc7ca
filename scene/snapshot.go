package scene

import (
	"fmt"

	"github.com/milk9111/physics2d/physics"
)

// Snapshot captures the live World as a Spec. Bodies come out in slot order, named as
// declared; bodies created after Build are named by their handle. Effectors and layer
// pairs are copied from the spec the scene was built with.
func (s *Scene) Snapshot() Spec {
	out := Spec{
		Name:               s.Name,
		Settings:           s.World.Settings(),
		DisabledLayerPairs: s.spec.DisabledLayerPairs,
		Effectors:          s.spec.Effectors,
	}
	for _, b := range s.World.Bodies() {
		name := s.names[b.Handle()]
		if name == "" {
			name = fmt.Sprintf("body_%v", b.Handle())
		}
		out.Bodies = append(out.Bodies, snapshotBody(name, b))
	}
	return out
}

// Encode renders the current state as YAML.
func (s *Scene) Encode() ([]byte, error) {
	return Encode(s.Snapshot())
}

func snapshotBody(name string, b *physics.Rigidbody) BodySpec {
	mass := b.Mass()
	gravity := b.GravityScale()
	bs := BodySpec{
		Name:            name,
		Mode:            b.Mode().String(),
		Position:        b.Position(),
		Rotation:        b.Rotation(),
		Velocity:        b.Velocity(),
		AngularVelocity: b.AngularVelocity(),
		Mass:            &mass,
		Drag:            b.Drag(),
		AngularDrag:     b.AngularDrag(),
		GravityScale:    &gravity,
		Layer:           b.Layer(),
		Freeze:          freezeNames(b.Constraints()),
		Disabled:        !b.Enabled(),
	}
	if c := b.Collider(); c != nil && !c.IsDestroyed() {
		cs := snapshotCollider(c)
		bs.Collider = &cs
	}
	return bs
}

func snapshotCollider(c *physics.Collider) ColliderSpec {
	m := c.Material()
	cs := ColliderSpec{
		Trigger: c.IsTrigger(),
		Material: &MaterialSpec{
			Bounciness:      m.Bounciness,
			Friction:        m.Friction,
			BounceCombine:   m.BounceCombine.String(),
			FrictionCombine: m.FrictionCombine.String(),
		},
	}
	switch c.Kind() {
	case physics.ShapeDisc:
		d := c.LocalDisc()
		cs.Shape = "disc"
		cs.Offset = d.Center
		cs.Radius = d.Radius
	case physics.ShapePolygon:
		cs.Shape = "polygon"
		cs.Points = c.LocalVertices()
	}
	return cs
}
