package physics

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/common"
)

func newTestWorld(gravity cp.Vector) *World {
	s := DefaultSettings()
	s.Gravity = gravity
	return NewWorld(s)
}

func boxPoints(hw, hh float64) []cp.Vector {
	return []cp.Vector{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
}

func addDisc(t *testing.T, w *World, pos cp.Vector, radius float64, mode SimulationMode) (*Rigidbody, *Collider) {
	t.Helper()
	b := w.CreateRigidbody()
	b.SetMode(mode)
	b.SetPosition(pos)
	c, err := w.CreateDiscCollider(b.Handle(), cp.Vector{}, radius)
	if err != nil {
		t.Fatalf("CreateDiscCollider: %v", err)
	}
	return b, c
}

func addBox(t *testing.T, w *World, pos cp.Vector, hw, hh float64, mode SimulationMode) (*Rigidbody, *Collider) {
	t.Helper()
	b := w.CreateRigidbody()
	b.SetMode(mode)
	b.SetPosition(pos)
	c, err := w.CreatePolygonCollider(b.Handle(), boxPoints(hw, hh), false)
	if err != nil {
		t.Fatalf("CreatePolygonCollider: %v", err)
	}
	return b, c
}

func near(a, b, tol float64) bool {
	return common.ApproxEqual(a, b, tol)
}

func nearVec(a, b cp.Vector, tol float64) bool {
	return near(a.X, b.X, tol) && near(a.Y, b.Y, tol)
}
