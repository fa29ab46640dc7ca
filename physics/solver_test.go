package physics

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestElasticEqualMassDiscsSwapVelocities(t *testing.T) {
	w := newTestWorld(cp.Vector{})
	bounce := Material{Bounciness: 1, Friction: 0}
	a, ca := addDisc(t, w, cp.Vector{}, 1, Dynamic)
	b, cb := addDisc(t, w, cp.Vector{X: 1.5}, 1, Dynamic)
	ca.SetMaterial(bounce)
	cb.SetMaterial(bounce)
	a.SetVelocity(cp.Vector{X: 1})
	b.SetVelocity(cp.Vector{X: -1})

	collisions := w.DetectCollisions()
	if len(collisions) != 1 {
		t.Fatalf("expected one collision, got %d", len(collisions))
	}
	w.ResolveCollision(collisions[0])

	if !nearVec(a.Velocity(), cp.Vector{X: -1}, 1e-9) {
		t.Fatalf("a velocity = %v, want (-1,0)", a.Velocity())
	}
	if !nearVec(b.Velocity(), cp.Vector{X: 1}, 1e-9) {
		t.Fatalf("b velocity = %v, want (1,0)", b.Velocity())
	}
	if a.AngularVelocity() != 0 || b.AngularVelocity() != 0 {
		t.Fatalf("head-on contact produced spin")
	}
}

func TestInelasticDiscStopsOnStatic(t *testing.T) {
	w := newTestWorld(cp.Vector{})
	d, _ := addDisc(t, w, cp.Vector{Y: 1.9}, 1, Dynamic)
	addBox(t, w, cp.Vector{}, 3, 1, Static)
	d.SetVelocity(cp.Vector{Y: -2})

	collisions := w.DetectCollisions()
	if len(collisions) != 1 {
		t.Fatalf("expected one collision, got %d", len(collisions))
	}
	w.ResolveCollision(collisions[0])
	if !nearVec(d.Velocity(), cp.Vector{}, 1e-9) {
		t.Fatalf("velocity after inelastic contact = %v", d.Velocity())
	}
	if got := collisions[0].TotalImpulse(); !near(got, 2, 1e-9) {
		t.Fatalf("normal impulse = %v, want 2", got)
	}
}

func TestFrictionStaysInsideCone(t *testing.T) {
	cases := []struct {
		name     string
		material Material
		velocity cp.Vector
		spin     float64
		disc     bool
	}{
		{"box_sliding", DefaultMaterial(), cp.Vector{X: 5, Y: -1}, 0, false},
		{"box_grippy_multiply", Material{Friction: 1, FrictionCombine: CombineMultiply}, cp.Vector{X: -3, Y: -2}, 1, false},
		{"disc_rolling", DefaultMaterial(), cp.Vector{X: 4}, -3, true},
		{"disc_bouncy", Material{Bounciness: 0.8, Friction: 0.6}, cp.Vector{X: 2, Y: -6}, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld(cp.Vector{Y: -9.8})
			addBox(t, w, cp.Vector{}, 20, 1, Static)
			var body *Rigidbody
			var col *Collider
			if c.disc {
				body, col = addDisc(t, w, cp.Vector{Y: 1.9}, 1, Dynamic)
			} else {
				body, col = addBox(t, w, cp.Vector{Y: 1.4}, 0.5, 0.5, Dynamic)
			}
			col.SetMaterial(c.material)
			body.SetVelocity(c.velocity)
			body.SetAngularVelocity(c.spin)

			contacts := 0
			for step := 0; step < 60; step++ {
				w.Step()
				for _, col := range w.Collisions() {
					mu := col.Friction()
					for i := range col.Manifold.Points() {
						contacts++
						jt := col.Manifold.TangentImpulse[i]
						jn := col.Manifold.NormalImpulse[i]
						if jn < 0 {
							t.Fatalf("step %d: negative normal impulse %v", step, jn)
						}
						if math.Abs(jt) > mu*jn+1e-9 {
							t.Fatalf("step %d: |jt|=%v exceeds mu*jn=%v", step, math.Abs(jt), mu*jn)
						}
					}
				}
			}
			if contacts == 0 {
				t.Fatalf("no contacts were solved")
			}
		})
	}
}

func TestDepenetrationIsMonotonic(t *testing.T) {
	w := newTestWorld(cp.Vector{})
	slop := w.Settings().Slop
	disc, dc := addDisc(t, w, cp.Vector{Y: 1.7}, 1, Dynamic)
	_, floor := addBox(t, w, cp.Vector{}, 5, 1, Static)

	pen := func() float64 {
		m, ok := GenerateManifold(dc, floor)
		if !ok {
			return 0
		}
		return m.Penetration
	}
	prev := pen()
	if !near(prev, 0.3, 1e-9) {
		t.Fatalf("initial penetration = %v", prev)
	}
	for step := 0; step < 120; step++ {
		w.Step()
		p := pen()
		if p > prev+1e-12 {
			t.Fatalf("step %d: penetration grew from %v to %v", step, prev, p)
		}
		if step < 10 && !(p < prev) {
			t.Fatalf("step %d: penetration stalled at %v", step, p)
		}
		prev = p
	}
	if prev > slop+1e-3 {
		t.Fatalf("penetration settled at %v, want <= %v", prev, slop+1e-3)
	}
	if v := disc.Velocity(); v.Length() > 1e-9 {
		t.Fatalf("position correction leaked into velocity: %v", v)
	}
}

func TestBoxDepenetratesWithoutSpinning(t *testing.T) {
	w := newTestWorld(cp.Vector{})
	box, _ := addBox(t, w, cp.Vector{Y: 1.25}, 0.5, 0.5, Dynamic)
	_, floor := addBox(t, w, cp.Vector{}, 5, 1, Static)

	for step := 0; step < 120; step++ {
		w.Step()
	}
	m, ok := GenerateManifold(box.Collider(), floor)
	if ok && m.Penetration > w.Settings().Slop+0.01 {
		t.Fatalf("penetration = %v", m.Penetration)
	}
	if math.Abs(box.Rotation()) > 1e-3 {
		t.Fatalf("flush contact rotated the box to %v", box.Rotation())
	}
}

func TestKinematicPairCorrectsPositionOnly(t *testing.T) {
	w := newTestWorld(cp.Vector{})
	a, _ := addDisc(t, w, cp.Vector{}, 1, Kinematic)
	b, _ := addDisc(t, w, cp.Vector{X: 1}, 1, Kinematic)
	a.SetVelocity(cp.Vector{X: 1})

	collisions := w.DetectCollisions()
	if len(collisions) != 1 {
		t.Fatalf("kinematic pair should still be detected")
	}
	w.ResolveCollision(collisions[0])
	if a.Velocity() != (cp.Vector{X: 1}) || b.Velocity() != (cp.Vector{}) {
		t.Fatalf("kinematic bodies took impulses: %v %v", a.Velocity(), b.Velocity())
	}
	if a.biasVelocity.X >= 0 || b.biasVelocity.X <= 0 {
		t.Fatalf("expected opposing corrections, got %v %v", a.biasVelocity, b.biasVelocity)
	}
	if !near(a.biasVelocity.X, -b.biasVelocity.X, 1e-9) {
		t.Fatalf("equal masses should split evenly: %v %v", a.biasVelocity, b.biasVelocity)
	}
}

func TestKinematicPairSeparatesByInverseMass(t *testing.T) {
	cases := []struct {
		name         string
		massA, massB float64
		ratio        float64
	}{
		{"equal", 1, 1, 1},
		{"heavy_a", 3, 1, 3},
		{"massless", 0, 0, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld(cp.Vector{})
			a, ca := addDisc(t, w, cp.Vector{}, 1, Kinematic)
			b, cb := addDisc(t, w, cp.Vector{X: 1}, 1, Kinematic)
			if err := a.SetMass(c.massA); err != nil {
				t.Fatalf("SetMass: %v", err)
			}
			if err := b.SetMass(c.massB); err != nil {
				t.Fatalf("SetMass: %v", err)
			}
			for step := 0; step < 120; step++ {
				w.Step()
			}
			if m, ok := GenerateManifold(ca, cb); ok && m.Penetration > w.Settings().Slop+1e-3 {
				t.Fatalf("penetration = %v", m.Penetration)
			}
			if a.Velocity() != (cp.Vector{}) || b.Velocity() != (cp.Vector{}) {
				t.Fatalf("correction leaked into velocity: %v %v", a.Velocity(), b.Velocity())
			}
			movedA, movedB := -a.Position().X, b.Position().X-1
			if movedA <= 0 || !near(movedB, c.ratio*movedA, 1e-9) {
				t.Fatalf("moved a=%v b=%v, want ratio %v", movedA, movedB, c.ratio)
			}
		})
	}
}

func TestZeroMassDynamicPairSplitsEvenly(t *testing.T) {
	w := newTestWorld(cp.Vector{})
	a, _ := addDisc(t, w, cp.Vector{}, 1, Dynamic)
	b, _ := addDisc(t, w, cp.Vector{X: 1.5}, 1, Dynamic)
	if err := a.SetMass(0); err != nil {
		t.Fatalf("SetMass: %v", err)
	}
	if err := b.SetMass(0); err != nil {
		t.Fatalf("SetMass: %v", err)
	}
	if err := a.SetMass(-1); err != ErrInvalidMass {
		t.Fatalf("negative mass: %v", err)
	}
	a.SetVelocity(cp.Vector{X: 2})

	collisions := w.DetectCollisions()
	w.ResolveCollision(collisions[0])
	if !nearVec(a.Velocity(), cp.Vector{X: 1}, 1e-9) || !nearVec(b.Velocity(), cp.Vector{X: 1}, 1e-9) {
		t.Fatalf("expected an even split, got %v %v", a.Velocity(), b.Velocity())
	}
}
