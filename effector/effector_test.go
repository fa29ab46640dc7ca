package effector

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/common"
	"github.com/milk9111/physics2d/physics"
)

func newWorld() *physics.World {
	s := physics.DefaultSettings()
	s.Gravity = cp.Vector{}
	return physics.NewWorld(s)
}

func addBody(w *physics.World, pos cp.Vector, mass float64) *physics.Rigidbody {
	b := w.CreateRigidbody()
	b.SetPosition(pos)
	_ = b.SetMass(mass)
	return b
}

func near(a, b, tol float64) bool {
	return common.ApproxEqual(a, b, tol)
}

func TestConstantForce(t *testing.T) {
	cases := []struct {
		name   string
		e      *ConstantForce
		mass   float64
		layer  uint
		wantVX float64
	}{
		{"force", &ConstantForce{Force: cp.Vector{X: 4}}, 2, 0, 2},
		{"acceleration", &ConstantForce{Force: cp.Vector{X: 4}, Acceleration: true}, 2, 0, 4},
		{"layer_match", &ConstantForce{Force: cp.Vector{X: 1}, Layers: 1 << 3}, 1, 3, 1},
		{"layer_miss", &ConstantForce{Force: cp.Vector{X: 1}, Layers: 1 << 3}, 1, 2, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newWorld()
			dt := w.FixedTimestep()
			b := addBody(w, cp.Vector{}, c.mass)
			if err := b.SetLayer(c.layer); err != nil {
				t.Fatalf("SetLayer: %v", err)
			}
			w.AddEffector(c.e)
			w.Step()
			if !near(b.Velocity().X, c.wantVX*dt, 1e-12) {
				t.Fatalf("vx = %v, want %v", b.Velocity().X, c.wantVX*dt)
			}
		})
	}
}

func TestPointAttractor(t *testing.T) {
	w := newWorld()
	dt := w.FixedTimestep()
	near1 := addBody(w, cp.Vector{X: 2}, 1)
	far := addBody(w, cp.Vector{Y: 10}, 1)
	centre := addBody(w, cp.Vector{}, 1)
	w.AddEffector(&PointAttractor{Strength: 4, Radius: 5})
	w.Step()

	if !near(near1.Velocity().X, -dt, 1e-12) || near1.Velocity().Y != 0 {
		t.Fatalf("attracted velocity = %v, want (%v,0)", near1.Velocity(), -dt)
	}
	if far.Velocity() != (cp.Vector{}) {
		t.Fatalf("body outside the radius moved: %v", far.Velocity())
	}
	if centre.Velocity() != (cp.Vector{}) {
		t.Fatalf("body at the centre moved: %v", centre.Velocity())
	}
}

func TestPointAttractorMinDistance(t *testing.T) {
	w := newWorld()
	dt := w.FixedTimestep()
	b := addBody(w, cp.Vector{X: -0.5}, 1)
	w.AddEffector(&PointAttractor{Strength: -1, MinDistance: 1})
	w.Step()
	if !near(b.Velocity().X, -dt, 1e-12) {
		t.Fatalf("clamped repulsion vx = %v, want %v", b.Velocity().X, -dt)
	}
}

func TestVortexPushesAlongTangent(t *testing.T) {
	w := newWorld()
	dt := w.FixedTimestep()
	b := addBody(w, cp.Vector{X: 3}, 1)
	w.AddEffector(&Vortex{Strength: 2})
	w.Step()
	if !near(b.Velocity().X, 0, 1e-12) || !near(b.Velocity().Y, 2*dt, 1e-12) {
		t.Fatalf("vortex velocity = %v", b.Velocity())
	}
}

func TestEffectorsSkipNonDynamicBodies(t *testing.T) {
	w := newWorld()
	static := addBody(w, cp.Vector{}, 1)
	static.SetMode(physics.Static)
	kinematic := addBody(w, cp.Vector{}, 1)
	kinematic.SetMode(physics.Kinematic)
	e := &ConstantForce{Force: cp.Vector{Y: 5}}
	w.AddEffector(e)
	w.Step()
	if static.Velocity() != (cp.Vector{}) || kinematic.Velocity() != (cp.Vector{}) {
		t.Fatalf("non-dynamic bodies were pushed")
	}
	if !w.RemoveEffector(e) {
		t.Fatalf("RemoveEffector did not find the effector")
	}
	if w.RemoveEffector(e) {
		t.Fatalf("RemoveEffector twice should report false")
	}
}
