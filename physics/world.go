// Package physics is a 2D rigid-body simulation: convex disc and polygon colliders, a
// sequential impulse contact solver and a fixed-step world with enter/stay/leave events.
package physics

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/clock"
	"github.com/milk9111/physics2d/geom"
)

// pointCloudTolerance drops near-collinear hull points when building polygons from clouds.
const pointCloudTolerance = 1e-9

// Effector applies forces to Dynamic bodies once per step, before integration.
type Effector interface {
	Apply(b *Rigidbody, dt float64)
}

// World owns every Rigidbody and Collider it creates and advances them in fixed steps.
type World struct {
	settings Settings
	layers   LayerMask

	bodies    arena[Rigidbody]
	colliders arena[Collider]

	// pairs that fired Enter and have not fired Leave, in Enter order
	active      []pairKey
	activeByKey map[pairKey]*Collision
	current     []*Collision
	constraints []contactConstraint

	effectors []Effector

	clock *clock.Clock
	timer *clock.FixedTimer
	steps uint64

	onFixedUpdate Delegate[float64]

	stepping bool
	closed   bool
}

// NewWorld creates an empty world. Invalid settings are logged and replaced by DefaultSettings.
func NewWorld(settings Settings) *World {
	if err := settings.Validate(); err != nil {
		log.Printf("World: invalid settings (%v); using defaults", err)
		settings = DefaultSettings()
	}
	w := &World{
		settings:    settings,
		layers:      NewLayerMask(),
		activeByKey: make(map[pairKey]*Collision),
		clock:       clock.New(nil),
		timer:       clock.NewFixedTimer(settings.FixedTimestep),
	}
	w.clock.SetScale(settings.TimeScale)
	w.timer.SetMaxSteps(settings.MaxStepsPerUpdate)
	return w
}

func (w *World) Settings() Settings {
	return w.settings
}

// SetSettings replaces every tunable at once.
func (w *World) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w.settings = s
	w.clock.SetScale(s.TimeScale)
	w.timer.SetInterval(s.FixedTimestep)
	w.timer.SetMaxSteps(s.MaxStepsPerUpdate)
	return nil
}

func (w *World) Gravity() cp.Vector {
	return w.settings.Gravity
}

func (w *World) SetGravity(g cp.Vector) {
	w.settings.Gravity = g
}

func (w *World) FixedTimestep() float64 {
	return w.settings.FixedTimestep
}

func (w *World) SetFixedTimestep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return ErrInvalidTimestep
	}
	w.settings.FixedTimestep = dt
	w.timer.SetInterval(dt)
	return nil
}

// SetLayerCollision enables or disables contacts between two layers, symmetrically.
func (w *World) SetLayerCollision(a, b uint, enabled bool) error {
	return w.layers.Set(a, b, enabled)
}

func (w *World) LayerMask() LayerMask {
	return w.layers
}

func (w *World) SetLayerMask(m LayerMask) {
	w.layers = m
}

// Clock is the time source Update reads.
func (w *World) Clock() *clock.Clock {
	return w.clock
}

// SetClock replaces the clock, e.g. with one driven by a clock.ManualSource.
func (w *World) SetClock(c *clock.Clock) {
	if c == nil {
		c = clock.New(nil)
	}
	w.clock = c
}

// OnFixedUpdate fires at the start of every step with the fixed timestep.
func (w *World) OnFixedUpdate() *Delegate[float64] {
	return &w.onFixedUpdate
}

// StepCount is the number of completed steps.
func (w *World) StepCount() uint64 {
	return w.steps
}

// DroppedSteps counts intervals discarded because an update exceeded MaxStepsPerUpdate.
func (w *World) DroppedSteps() int {
	return w.timer.Dropped()
}

// CreateRigidbody adds a Dynamic body with unit mass at the origin.
func (w *World) CreateRigidbody() *Rigidbody {
	b := newRigidbody(w)
	b.handle = BodyHandle(w.bodies.insert(b))
	return b
}

// CreateDiscCollider attaches a disc centred at localPos in body space.
func (w *World) CreateDiscCollider(body BodyHandle, localPos cp.Vector, radius float64) (*Collider, error) {
	owner, err := w.colliderOwner(body)
	if err != nil {
		return nil, err
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, ErrInvalidRadius
	}
	c := &Collider{kind: ShapeDisc, disc: geom.Disc{Center: localPos, Radius: radius}}
	c.bounds = c.disc
	return w.attach(owner, c), nil
}

// CreatePolygonCollider attaches a convex polygon given in body space. A point cloud is
// replaced by its convex hull; otherwise the points must already be convex and
// counter-clockwise, and anything else panics.
func (w *World) CreatePolygonCollider(body BodyHandle, points []cp.Vector, isPointCloud bool) (*Collider, error) {
	owner, err := w.colliderOwner(body)
	if err != nil {
		return nil, err
	}
	var verts []cp.Vector
	if isPointCloud {
		verts = geom.ConvexHull(points, pointCloudTolerance)
	} else {
		verts = append([]cp.Vector(nil), points...)
	}
	if err := geom.ValidateConvex(verts); err != nil {
		log.Panicf("World: create polygon collider for %v: %v", body, err)
	}
	c := &Collider{kind: ShapePolygon, vertices: verts, bounds: geom.SmallestEnclosingDisc(verts)}
	return w.attach(owner, c), nil
}

func (w *World) colliderOwner(h BodyHandle) (*Rigidbody, error) {
	b := w.bodies.get(handle(h))
	if b == nil || b.destroyed {
		return nil, ErrBodyNotFound
	}
	if c := b.Collider(); c != nil && !c.destroyed {
		log.Printf("World: %v already owns %v", h, c.handle)
		return nil, ErrBodyHasCollider
	}
	return b, nil
}

func (w *World) attach(b *Rigidbody, c *Collider) *Collider {
	c.world = w
	c.body = b.handle
	c.material = DefaultMaterial()
	c.handle = ColliderHandle(w.colliders.insert(c))
	b.collider = c.handle
	b.refreshInertia()
	return c
}

// DestroyRigidbody marks a body and its collider for removal at the end of the step.
func (w *World) DestroyRigidbody(h BodyHandle) bool {
	b := w.bodies.get(handle(h))
	if b == nil || b.destroyed {
		log.Printf("World: destroy %v: not found", h)
		return false
	}
	b.destroyed = true
	if c := b.Collider(); c != nil {
		c.destroyed = true
	}
	return true
}

// DestroyCollider marks a collider for removal at the end of the step.
func (w *World) DestroyCollider(h ColliderHandle) bool {
	c := w.colliders.get(handle(h))
	if c == nil || c.destroyed {
		log.Printf("World: destroy %v: not found", h)
		return false
	}
	c.destroyed = true
	return true
}

// Body resolves a handle. Reaped bodies resolve to nil.
func (w *World) Body(h BodyHandle) *Rigidbody {
	return w.bodies.get(handle(h))
}

// Collider resolves a handle. Reaped colliders resolve to nil.
func (w *World) Collider(h ColliderHandle) *Collider {
	return w.colliders.get(handle(h))
}

// Bodies returns the bodies not marked destroyed, in slot order.
func (w *World) Bodies() []*Rigidbody {
	out := make([]*Rigidbody, 0, w.bodies.len())
	w.bodies.each(func(_ handle, b *Rigidbody) {
		if !b.destroyed {
			out = append(out, b)
		}
	})
	return out
}

// Colliders returns the colliders not marked destroyed, in slot order.
func (w *World) Colliders() []*Collider {
	out := make([]*Collider, 0, w.colliders.len())
	w.colliders.each(func(_ handle, c *Collider) {
		if !c.destroyed {
			out = append(out, c)
		}
	})
	return out
}

// Collisions returns the records produced by the latest step.
func (w *World) Collisions() []*Collision {
	return w.current
}

func (w *World) AddEffector(e Effector) {
	if e == nil {
		return
	}
	w.effectors = append(w.effectors, e)
}

func (w *World) RemoveEffector(e Effector) bool {
	for i, x := range w.effectors {
		if x == e {
			w.effectors = append(w.effectors[:i:i], w.effectors[i+1:]...)
			return true
		}
	}
	log.Printf("World: remove effector %T: not registered", e)
	return false
}

func (w *World) Effectors() []Effector {
	return append([]Effector(nil), w.effectors...)
}

// Update advances by the clock time since the previous Update and returns the steps run.
func (w *World) Update() int {
	return w.Advance(w.clock.Tick())
}

// Advance feeds seconds into the fixed-step accumulator and runs every whole step that
// fired, in order.
func (w *World) Advance(seconds float64) int {
	w.timer.Advance(seconds)
	n := w.timer.Fire()
	for i := 0; i < n; i++ {
		w.Step()
	}
	return n
}

// Alpha is the fraction of a step left in the accumulator, for render interpolation.
func (w *World) Alpha() float64 {
	return w.timer.Alpha()
}

// Step runs exactly one fixed step.
func (w *World) Step() {
	if w.closed {
		log.Printf("World: step after close ignored")
		return
	}
	if w.stepping {
		log.Printf("World: nested step ignored")
		return
	}
	w.stepping = true
	defer func() { w.stepping = false }()

	dt := w.settings.FixedTimestep
	w.onFixedUpdate.Fire(dt)

	w.current = w.DetectCollisions()
	w.carryWarmStart()
	w.dispatchContactEvents()
	w.pruneInvalidated()
	w.solveContacts(w.current, dt)
	w.dispatchCollisionEvents()
	w.beginSimulationReset()
	w.applyEffectors(dt)
	w.integrate(dt)
	w.pruneStale()
	w.reap()
	w.steps++
}

// Close fires Leave for every active pair and releases all bodies and colliders.
func (w *World) Close() {
	if w.closed {
		return
	}
	for _, k := range w.active {
		w.fireContact(w.activeByKey[k], phaseLeave)
	}
	w.active = nil
	clear(w.activeByKey)
	w.current = nil
	w.colliders.each(func(_ handle, c *Collider) { c.destroyed = true })
	w.bodies.each(func(_ handle, b *Rigidbody) { b.destroyed = true })
	w.reap()
	w.closed = true
}

func (w *World) IsClosed() bool {
	return w.closed
}

func (w *World) simulated(c *Collider) bool {
	if c == nil || c.destroyed {
		return false
	}
	b := c.Body()
	return b != nil && !b.destroyed && b.enabled
}

func (w *World) canCollide(a, b *Collider) bool {
	ba, bb := a.Body(), b.Body()
	if ba == bb {
		return false
	}
	// static geometry never pushes static geometry, but a static trigger still reports it
	if ba.mode == Static && bb.mode == Static && !a.trigger && !b.trigger {
		return false
	}
	return w.layers.Interacts(ba.layer, bb.layer)
}

// DetectCollisions runs the broad and narrow phase over every simulated collider pair.
// The collider in the lower slot is Me.
func (w *World) DetectCollisions() []*Collision {
	live := make([]*Collider, 0, w.colliders.len())
	w.colliders.each(func(_ handle, c *Collider) {
		if w.simulated(c) {
			live = append(live, c)
		}
	})
	var out []*Collision
	for i := 0; i < len(live); i++ {
		a := live[i]
		boundsA := a.WorldBounds()
		for j := i + 1; j < len(live); j++ {
			b := live[j]
			if !w.canCollide(a, b) || !boundsA.Overlaps(b.WorldBounds()) {
				continue
			}
			if m, ok := GenerateManifold(a, b); ok {
				out = append(out, &Collision{Me: a, Other: b, Manifold: m})
			}
		}
	}
	return out
}

// carryWarmStart seeds persisting pairs with last step's accumulated impulses.
func (w *World) carryWarmStart() {
	f := w.settings.WarmStartFactor
	if f <= 0 {
		return
	}
	for _, c := range w.current {
		prev, ok := w.activeByKey[c.key()]
		if !ok || len(prev.Manifold.Points()) != len(c.Manifold.Points()) {
			continue
		}
		for i := range c.Manifold.BounceImpulse {
			c.Manifold.BounceImpulse[i] = prev.Manifold.BounceImpulse[i] * f
			c.Manifold.NormalImpulse[i] = c.Manifold.BounceImpulse[i]
			c.Manifold.TangentImpulse[i] = prev.Manifold.TangentImpulse[i] * f
		}
	}
}

func (w *World) pruneInvalidated() {
	kept := w.current[:0]
	for _, c := range w.current {
		if w.simulated(c.Me) && w.simulated(c.Other) {
			kept = append(kept, c)
		}
	}
	clear(w.current[len(kept):])
	w.current = kept
}

func (w *World) beginSimulationReset() {
	w.bodies.each(func(_ handle, b *Rigidbody) {
		b.prevPosition = b.position
		b.prevRotation = b.rotation
	})
}

func (w *World) applyEffectors(dt float64) {
	if len(w.effectors) == 0 {
		return
	}
	w.bodies.each(func(_ handle, b *Rigidbody) {
		if b.destroyed || !b.enabled || b.mode != Dynamic {
			return
		}
		for _, e := range w.effectors {
			e.Apply(b, dt)
		}
	})
}

func (w *World) integrate(dt float64) {
	w.bodies.each(func(_ handle, b *Rigidbody) {
		if b.destroyed || !b.enabled {
			b.clearForces()
			return
		}
		b.integrate(dt, w.settings.Gravity)
	})
}

// reap frees destroyed colliders and bodies. Their slots are reused by later creations.
func (w *World) reap() {
	var deadColliders []handle
	w.colliders.each(func(h handle, c *Collider) {
		if c.destroyed {
			deadColliders = append(deadColliders, h)
		}
	})
	for _, h := range deadColliders {
		c := w.colliders.get(h)
		if b := c.Body(); b != nil && b.collider == c.handle {
			b.collider = 0
			b.refreshInertia()
		}
		c.world = nil
		w.colliders.remove(h)
	}

	var deadBodies []handle
	w.bodies.each(func(h handle, b *Rigidbody) {
		if b.destroyed {
			deadBodies = append(deadBodies, h)
		}
	})
	for _, h := range deadBodies {
		w.bodies.remove(h)
	}
}
