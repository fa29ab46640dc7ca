package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/common"
)

// flushTolerance is the relative slope below which a two-point contact counts as flush.
const flushTolerance = 1e-3

type contactPoint struct {
	rMe, rOther cp.Vector
	normalMass  float64
	tangentMass float64
	biasMass    float64

	bias        float64
	biasImpulse float64

	// relative normal speed before solving, negative when approaching
	approach float64
}

// contactConstraint is the solver view of one Collision for one step.
type contactConstraint struct {
	c         *Collision
	me, other *Rigidbody

	imMe, iiMe       float64
	imOther, iiOther float64

	// position correction masses; they differ from the impulse masses only for a
	// Kinematic pair, which is pushed apart without touching its velocities
	biasImMe, biasIiMe       float64
	biasImOther, biasIiOther float64
	kinematic                bool

	friction   float64
	bounciness float64
	normal     cp.Vector
	tangent    cp.Vector

	count  int
	points [2]contactPoint
}

func relativeVelocity(me, other *Rigidbody, rMe, rOther cp.Vector) cp.Vector {
	vMe := me.velocity.Add(rMe.Perp().Mult(me.angularVelocity))
	vOther := other.velocity.Add(rOther.Perp().Mult(other.angularVelocity))
	return vMe.Sub(vOther)
}

func relativeBiasVelocity(me, other *Rigidbody, rMe, rOther cp.Vector) cp.Vector {
	vMe := me.biasVelocity.Add(rMe.Perp().Mult(me.biasAngular))
	vOther := other.biasVelocity.Add(rOther.Perp().Mult(other.biasAngular))
	return vMe.Sub(vOther)
}

// prepareContact builds the constraint for c. Triggers, pairs whose bodies are gone and
// pairs with neither a Dynamic body nor two Kinematic bodies are skipped.
func prepareContact(c *Collision, s *Settings, dt float64) (contactConstraint, bool) {
	if c.IsTrigger() {
		return contactConstraint{}, false
	}
	me, other := c.Me.Body(), c.Other.Body()
	if me == nil || other == nil {
		return contactConstraint{}, false
	}
	kinematic := me.mode == Kinematic && other.mode == Kinematic
	if me.mode != Dynamic && other.mode != Dynamic && !kinematic {
		return contactConstraint{}, false
	}
	cc := contactConstraint{
		c:          c,
		me:         me,
		other:      other,
		friction:   c.Friction(),
		bounciness: c.Bounciness(),
		normal:     c.Manifold.Normal,
		tangent:    c.Manifold.Normal.Perp(),
		kinematic:  kinematic,
	}
	cc.imMe, cc.iiMe = me.solverMass()
	cc.imOther, cc.iiOther = other.solverMass()
	if me.mode == Dynamic && other.mode == Dynamic && cc.imMe+cc.imOther == 0 {
		cc.imMe, cc.imOther = 1, 1
	}
	cc.biasImMe, cc.biasIiMe = cc.imMe, cc.iiMe
	cc.biasImOther, cc.biasIiOther = cc.imOther, cc.iiOther
	if kinematic {
		cc.biasImMe, cc.biasIiMe = me.lockedMass()
		cc.biasImOther, cc.biasIiOther = other.lockedMass()
		if cc.biasImMe+cc.biasImOther == 0 {
			cc.biasImMe, cc.biasImOther = 1, 1
		}
	}

	pts := c.Manifold.Points()
	cc.count = len(pts)
	biased := outwardPoints(c.Manifold)
	bias := 0.0
	if dt > 0 {
		bias = s.Baumgarte * math.Max(c.Manifold.Penetration-s.Slop, 0) / dt
		bias = math.Min(bias, s.MaxCorrectionVelocity)
		if bias < s.BiasDeadband {
			bias = 0
		}
	}
	for i, p := range pts {
		pt := &cc.points[i]
		pt.rMe = p.Sub(me.position)
		pt.rOther = p.Sub(other.position)
		pt.normalMass = effectiveMass(cc.imMe, cc.iiMe, cc.imOther, cc.iiOther, pt.rMe, pt.rOther, cc.normal)
		pt.tangentMass = effectiveMass(cc.imMe, cc.iiMe, cc.imOther, cc.iiOther, pt.rMe, pt.rOther, cc.tangent)
		pt.biasMass = effectiveMass(cc.biasImMe, cc.biasIiMe, cc.biasImOther, cc.biasIiOther, pt.rMe, pt.rOther, cc.normal)
		pt.approach = relativeVelocity(me, other, pt.rMe, pt.rOther).Dot(cc.normal)
		if biased[i] {
			pt.bias = bias
		}
	}
	return cc, true
}

func effectiveMass(imMe, iiMe, imOther, iiOther float64, rMe, rOther, dir cp.Vector) float64 {
	rnMe := rMe.Cross(dir)
	rnOther := rOther.Cross(dir)
	k := imMe + imOther + iiMe*rnMe*rnMe + iiOther*rnOther*rnOther
	if k <= 0 {
		return 0
	}
	return 1 / k
}

// outwardPoints selects the contact points that receive the position bias: the start
// point when the segment rises along the normal, the end point when it falls, both when
// it is flush.
func outwardPoints(m Manifold) [2]bool {
	d := m.Contact.Delta()
	if d.LengthSq() == 0 {
		return [2]bool{true, false}
	}
	slope := d.Dot(m.Normal) / d.Length()
	switch {
	case math.Abs(slope) <= flushTolerance:
		return [2]bool{true, true}
	case slope > 0:
		return [2]bool{true, false}
	default:
		return [2]bool{false, true}
	}
}

func (cc *contactConstraint) apply(i int, j cp.Vector) {
	p := &cc.points[i]
	cc.me.applyImpulse(j, p.rMe, cc.imMe, cc.iiMe)
	cc.other.applyImpulse(j.Neg(), p.rOther, cc.imOther, cc.iiOther)
}

func (cc *contactConstraint) applyBias(i int, j cp.Vector) {
	p := &cc.points[i]
	cc.me.applyBiasImpulse(j, p.rMe, cc.biasImMe, cc.biasIiMe)
	cc.other.applyBiasImpulse(j.Neg(), p.rOther, cc.biasImOther, cc.biasIiOther)
}

func (cc *contactConstraint) warmStart() {
	if cc.kinematic {
		return
	}
	m := &cc.c.Manifold
	for i := 0; i < cc.count; i++ {
		j := cc.normal.Mult(m.BounceImpulse[i]).Add(cc.tangent.Mult(m.TangentImpulse[i]))
		if j.LengthSq() > 0 {
			cc.apply(i, j)
		}
	}
}

// solveVelocity runs one iteration: normal, then bias, then friction for each point.
func (cc *contactConstraint) solveVelocity() {
	m := &cc.c.Manifold
	for i := 0; i < cc.count; i++ {
		p := &cc.points[i]
		if cc.kinematic {
			cc.solveBias(i)
			continue
		}

		vn := relativeVelocity(cc.me, cc.other, p.rMe, p.rOther).Dot(cc.normal)
		jn := -vn * p.normalMass
		old := m.BounceImpulse[i]
		m.BounceImpulse[i] = math.Max(old+jn, 0)
		m.NormalImpulse[i] = m.BounceImpulse[i]
		cc.apply(i, cc.normal.Mult(m.BounceImpulse[i]-old))

		cc.solveBias(i)

		vt := relativeVelocity(cc.me, cc.other, p.rMe, p.rOther).Dot(cc.tangent)
		jt := -vt * p.tangentMass
		maxFriction := cc.friction * m.NormalImpulse[i]
		oldT := m.TangentImpulse[i]
		m.TangentImpulse[i] = common.Clamp(oldT+jt, -maxFriction, maxFriction)
		cc.apply(i, cc.tangent.Mult(m.TangentImpulse[i]-oldT))
	}
}

func (cc *contactConstraint) solveBias(i int) {
	p := &cc.points[i]
	if p.bias <= 0 {
		return
	}
	vb := relativeBiasVelocity(cc.me, cc.other, p.rMe, p.rOther).Dot(cc.normal)
	jb := (p.bias - vb) * p.biasMass
	old := p.biasImpulse
	p.biasImpulse = math.Max(old+jb, 0)
	cc.applyBias(i, cc.normal.Mult(p.biasImpulse-old))
}

// applyRestitution adds the rebound of approaching contacts once the iterations are done.
func (cc *contactConstraint) applyRestitution(threshold float64) {
	if cc.kinematic {
		return
	}
	m := &cc.c.Manifold
	for i := 0; i < cc.count; i++ {
		m.NormalImpulse[i] = m.BounceImpulse[i]
		if cc.bounciness <= 0 || -cc.points[i].approach <= threshold {
			continue
		}
		j := cc.bounciness * m.BounceImpulse[i]
		cc.apply(i, cc.normal.Mult(j))
		m.NormalImpulse[i] += j
	}
}

// solveContacts runs the sequential impulse solver over every physical collision.
func (w *World) solveContacts(collisions []*Collision, dt float64) {
	constraints := w.constraints[:0]
	for _, c := range collisions {
		if cc, ok := prepareContact(c, &w.settings, dt); ok {
			constraints = append(constraints, cc)
		}
	}
	for i := range constraints {
		constraints[i].warmStart()
	}
	for it := 0; it < w.settings.SolverIterations; it++ {
		for i := range constraints {
			constraints[i].solveVelocity()
		}
	}
	for i := range constraints {
		constraints[i].applyRestitution(w.settings.RestitutionThreshold)
	}
	clear(constraints)
	w.constraints = constraints[:0]
}

// ResolveCollision runs the full solver on a single collision with the World settings.
func (w *World) ResolveCollision(c *Collision) {
	w.solveContacts([]*Collision{c}, w.settings.FixedTimestep)
}
