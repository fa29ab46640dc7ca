package physics

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/common"
)

// SimulationMode selects how a Rigidbody takes part in the simulation.
type SimulationMode uint8

const (
	// Static bodies never move.
	Static SimulationMode = iota
	// Kinematic bodies move with their velocity but ignore forces and contacts.
	Kinematic
	// Dynamic bodies respond to gravity, forces and contacts.
	Dynamic
)

func (m SimulationMode) String() string {
	switch m {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("SimulationMode(%d)", uint8(m))
	}
}

func ParseSimulationMode(s string) (SimulationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return Static, nil
	case "kinematic":
		return Kinematic, nil
	case "", "dynamic":
		return Dynamic, nil
	default:
		return Dynamic, fmt.Errorf("unknown simulation mode %q", s)
	}
}

// Constraints lock parts of a body's motion.
type Constraints uint8

const (
	FreezePositionX Constraints = 1 << iota
	FreezePositionY
	FreezeRotation

	FreezePosition = FreezePositionX | FreezePositionY
	FreezeAll      = FreezePosition | FreezeRotation
)

// Rigidbody carries the simulation state of one body. Bodies are created and owned by a World.
type Rigidbody struct {
	world    *World
	handle   BodyHandle
	collider ColliderHandle

	position        cp.Vector
	rotation        float64
	velocity        cp.Vector
	angularVelocity float64

	prevPosition cp.Vector
	prevRotation float64

	// split-impulse pseudo velocities, consumed by the next integration
	biasVelocity cp.Vector
	biasAngular  float64

	force  cp.Vector
	torque float64

	mass           float64
	massInverse    float64
	momentInertia  float64
	inertiaInverse float64

	drag         float64
	angularDrag  float64
	gravityScale float64

	mode        SimulationMode
	layer       uint
	constraints Constraints
	enabled     bool
	destroyed   bool

	onOverlapStart Delegate[*Collision]
	onOverlapStay  Delegate[*Collision]
	onOverlapStop  Delegate[*Collision]
	onCollision    Delegate[*Collision]
}

func newRigidbody(w *World) *Rigidbody {
	return &Rigidbody{
		world:        w,
		mass:         1,
		massInverse:  1,
		gravityScale: 1,
		mode:         Dynamic,
		enabled:      true,
	}
}

func (b *Rigidbody) Handle() BodyHandle {
	return b.handle
}

func (b *Rigidbody) World() *World {
	return b.world
}

// Collider returns the owned collider, or nil.
func (b *Rigidbody) Collider() *Collider {
	if b.world == nil {
		return nil
	}
	return b.world.colliders.get(handle(b.collider))
}

func (b *Rigidbody) Position() cp.Vector {
	return b.position
}

// SetPosition teleports the body. Interpolation restarts from the new position.
func (b *Rigidbody) SetPosition(p cp.Vector) {
	b.position = p
	b.prevPosition = p
}

func (b *Rigidbody) Rotation() float64 {
	return b.rotation
}

func (b *Rigidbody) SetRotation(radians float64) {
	b.rotation = radians
	b.prevRotation = radians
}

func (b *Rigidbody) Velocity() cp.Vector {
	return b.velocity
}

func (b *Rigidbody) SetVelocity(v cp.Vector) {
	if b.mode == Static {
		return
	}
	b.velocity = b.constrainLinear(v)
}

func (b *Rigidbody) AngularVelocity() float64 {
	return b.angularVelocity
}

func (b *Rigidbody) SetAngularVelocity(w float64) {
	if b.mode == Static || b.constraints&FreezeRotation != 0 {
		return
	}
	b.angularVelocity = w
}

func (b *Rigidbody) Mass() float64 {
	return b.mass
}

// SetMass sets the mass and refreshes the inertia from the collider. Zero mass makes a
// Dynamic body immovable by contacts.
func (b *Rigidbody) SetMass(m float64) error {
	if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return ErrInvalidMass
	}
	b.mass = m
	if m > 0 {
		b.massInverse = 1 / m
	} else {
		b.massInverse = 0
	}
	b.refreshInertia()
	return nil
}

func (b *Rigidbody) MassInverse() float64 {
	return b.massInverse
}

func (b *Rigidbody) MomentInertia() float64 {
	return b.momentInertia
}

func (b *Rigidbody) refreshInertia() {
	b.momentInertia = 0
	if c := b.Collider(); c != nil && b.mass > 0 {
		b.momentInertia = c.CalculateMomentInertia(b.mass)
	}
	if b.momentInertia > 0 {
		b.inertiaInverse = 1 / b.momentInertia
	} else {
		b.inertiaInverse = 0
	}
}

func (b *Rigidbody) Drag() float64 {
	return b.drag
}

func (b *Rigidbody) SetDrag(d float64) {
	b.drag = math.Max(d, 0)
}

func (b *Rigidbody) AngularDrag() float64 {
	return b.angularDrag
}

func (b *Rigidbody) SetAngularDrag(d float64) {
	b.angularDrag = math.Max(d, 0)
}

func (b *Rigidbody) GravityScale() float64 {
	return b.gravityScale
}

func (b *Rigidbody) SetGravityScale(s float64) {
	b.gravityScale = s
}

func (b *Rigidbody) Mode() SimulationMode {
	return b.mode
}

// SetMode switches the simulation mode. A body turning Static stops immediately.
func (b *Rigidbody) SetMode(m SimulationMode) {
	b.mode = m
	if m == Static {
		b.velocity = cp.Vector{}
		b.angularVelocity = 0
		b.biasVelocity = cp.Vector{}
		b.biasAngular = 0
	}
}

func (b *Rigidbody) Layer() uint {
	return b.layer
}

func (b *Rigidbody) SetLayer(layer uint) error {
	if layer >= MaxLayers {
		return ErrInvalidLayer
	}
	b.layer = layer
	return nil
}

func (b *Rigidbody) Constraints() Constraints {
	return b.constraints
}

func (b *Rigidbody) SetConstraints(c Constraints) {
	b.constraints = c
	b.velocity = b.constrainLinear(b.velocity)
	if c&FreezeRotation != 0 {
		b.angularVelocity = 0
	}
}

func (b *Rigidbody) Enabled() bool {
	return b.enabled
}

// SetEnabled removes the body from collision detection and integration while false.
func (b *Rigidbody) SetEnabled(enabled bool) {
	b.enabled = enabled
}

func (b *Rigidbody) IsDestroyed() bool {
	return b.destroyed
}

// Material returns the collider's material, or the default when there is no collider.
func (b *Rigidbody) Material() Material {
	if c := b.Collider(); c != nil {
		return c.material
	}
	return DefaultMaterial()
}

// SetMaterial forwards to the owned collider.
func (b *Rigidbody) SetMaterial(m Material) {
	c := b.Collider()
	if c == nil {
		log.Printf("physics: set material on %v: no collider", b.handle)
		return
	}
	c.SetMaterial(m)
}

// AddForce accumulates a force through the centre of mass until the next integration.
func (b *Rigidbody) AddForce(f cp.Vector) {
	if b.mode != Dynamic {
		return
	}
	b.force = b.force.Add(f)
}

// AddForceAtPosition accumulates a force applied at a world point, adding its torque.
func (b *Rigidbody) AddForceAtPosition(f, point cp.Vector) {
	if b.mode != Dynamic {
		return
	}
	b.force = b.force.Add(f)
	b.torque += point.Sub(b.position).Cross(f)
}

func (b *Rigidbody) AddTorque(t float64) {
	if b.mode != Dynamic {
		return
	}
	b.torque += t
}

// ApplyImpulse changes the velocity immediately by an impulse at a world point.
func (b *Rigidbody) ApplyImpulse(j, point cp.Vector) {
	if b.mode != Dynamic {
		return
	}
	b.applyImpulse(j, point.Sub(b.position), b.massInverse, b.inertiaInverse)
}

// InterpolatedPosition blends the previous and current step for rendering.
func (b *Rigidbody) InterpolatedPosition(alpha float64) cp.Vector {
	return b.prevPosition.Lerp(b.position, alpha)
}

func (b *Rigidbody) InterpolatedRotation(alpha float64) float64 {
	return common.Lerp(b.prevRotation, b.rotation, alpha)
}

// LocalToWorld maps a point in body space to world space.
func (b *Rigidbody) LocalToWorld(p cp.Vector) cp.Vector {
	return b.position.Add(p.Rotate(cp.ForAngle(b.rotation)))
}

// WorldToLocal maps a world point into body space.
func (b *Rigidbody) WorldToLocal(p cp.Vector) cp.Vector {
	return p.Sub(b.position).Unrotate(cp.ForAngle(b.rotation))
}

// PointVelocity is the velocity of the body material at a world point.
func (b *Rigidbody) PointVelocity(p cp.Vector) cp.Vector {
	r := p.Sub(b.position)
	return b.velocity.Add(r.Perp().Mult(b.angularVelocity))
}

func (b *Rigidbody) OnOverlapStart() *Delegate[*Collision] {
	return &b.onOverlapStart
}

func (b *Rigidbody) OnOverlapStay() *Delegate[*Collision] {
	return &b.onOverlapStay
}

func (b *Rigidbody) OnOverlapStop() *Delegate[*Collision] {
	return &b.onOverlapStop
}

// OnCollision fires after the solver for every physical contact of this body.
func (b *Rigidbody) OnCollision() *Delegate[*Collision] {
	return &b.onCollision
}

// solverMass returns the inverse mass and inertia seen by the contact solver. Only
// Dynamic bodies take impulses.
func (b *Rigidbody) solverMass() (float64, float64) {
	if b.mode != Dynamic {
		return 0, 0
	}
	return b.lockedMass()
}

// lockedMass is the inverse mass and inertia with the lock flags applied.
func (b *Rigidbody) lockedMass() (float64, float64) {
	im, ii := b.massInverse, b.inertiaInverse
	if b.constraints&FreezePosition == FreezePosition {
		im = 0
	}
	if b.constraints&FreezeRotation != 0 {
		ii = 0
	}
	return im, ii
}

func (b *Rigidbody) applyImpulse(j, r cp.Vector, im, ii float64) {
	b.velocity = b.velocity.Add(b.constrainLinear(j.Mult(im)))
	b.angularVelocity += r.Cross(j) * ii
}

func (b *Rigidbody) applyBiasImpulse(j, r cp.Vector, im, ii float64) {
	b.biasVelocity = b.biasVelocity.Add(b.constrainLinear(j.Mult(im)))
	b.biasAngular += r.Cross(j) * ii
}

func (b *Rigidbody) constrainLinear(v cp.Vector) cp.Vector {
	if b.constraints&FreezePositionX != 0 {
		v.X = 0
	}
	if b.constraints&FreezePositionY != 0 {
		v.Y = 0
	}
	return v
}

// integrate advances the body by dt with semi-implicit Euler.
func (b *Rigidbody) integrate(dt float64, gravity cp.Vector) {
	defer b.clearForces()
	if b.mode == Static {
		return
	}
	if b.mode == Dynamic {
		acc := gravity.Mult(b.gravityScale).Add(b.force.Mult(b.massInverse))
		b.velocity = b.velocity.Add(acc.Mult(dt))
		b.angularVelocity += b.torque * b.inertiaInverse * dt
		if b.drag > 0 {
			b.velocity = b.velocity.Mult(1 / (1 + b.drag*dt))
		}
		if b.angularDrag > 0 {
			b.angularVelocity /= 1 + b.angularDrag*dt
		}
	}
	b.velocity = b.constrainLinear(b.velocity)
	if b.constraints&FreezeRotation != 0 {
		b.angularVelocity = 0
		b.biasAngular = 0
	}
	b.position = b.position.Add(b.velocity.Add(b.biasVelocity).Mult(dt))
	b.rotation += (b.angularVelocity + b.biasAngular) * dt
}

func (b *Rigidbody) clearForces() {
	b.force = cp.Vector{}
	b.torque = 0
	b.biasVelocity = cp.Vector{}
	b.biasAngular = 0
}
