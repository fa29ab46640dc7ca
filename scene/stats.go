package scene

import (
	"fmt"
	"math"

	"github.com/milk9111/physics2d/physics"
)

// Stats summarises one moment of a World for hosts that print or plot it.
type Stats struct {
	Step           uint64
	Bodies         int
	Dynamic        int
	Contacts       int
	Triggers       int
	KineticEnergy  float64
	MaxPenetration float64
	MaxSpeed       float64
}

func Measure(w *physics.World) Stats {
	st := Stats{Step: w.StepCount()}
	for _, b := range w.Bodies() {
		st.Bodies++
		if b.Mode() != physics.Dynamic {
			continue
		}
		st.Dynamic++
		v := b.Velocity()
		st.KineticEnergy += 0.5*b.Mass()*v.LengthSq() + 0.5*b.MomentInertia()*b.AngularVelocity()*b.AngularVelocity()
		st.MaxSpeed = math.Max(st.MaxSpeed, v.Length())
	}
	for _, c := range w.Collisions() {
		if c.IsTrigger() {
			st.Triggers++
			continue
		}
		st.Contacts++
		st.MaxPenetration = math.Max(st.MaxPenetration, c.Manifold.Penetration)
	}
	return st
}

func (s Stats) String() string {
	return fmt.Sprintf("step=%d bodies=%d dynamic=%d contacts=%d triggers=%d ke=%.4f maxpen=%.4f maxv=%.3f",
		s.Step, s.Bodies, s.Dynamic, s.Contacts, s.Triggers, s.KineticEnergy, s.MaxPenetration, s.MaxSpeed)
}
