package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/effector"
	"github.com/milk9111/physics2d/geom"
	"github.com/milk9111/physics2d/physics"
)

var (
	ErrDuplicateBody = errors.New("scene: duplicate body name")
	ErrUnknownShape  = errors.New("scene: unknown collider shape")
	ErrUnknownFreeze = errors.New("scene: unknown freeze axis")
	ErrUnknownEffect = errors.New("scene: unknown effector type")
	ErrLayerPair     = errors.New("scene: layer pair needs two layers")
)

// Scene is a built World plus the names its bodies were declared with.
type Scene struct {
	Name    string
	World   *physics.World
	spec    Spec
	handles map[string]physics.BodyHandle
	names   map[physics.BodyHandle]string
}

// Open loads the named scene and builds it.
func Open(name string) (*Scene, error) {
	spec, err := LoadSpec(name)
	if err != nil {
		return nil, err
	}
	s, err := Build(spec)
	if err != nil {
		return nil, fmt.Errorf("scene: build %s: %w", name, err)
	}
	return s, nil
}

// Build creates a World from spec. Every shape is validated before the World sees it,
// so a bad file comes back as an error rather than a panic.
func Build(spec Spec) (*Scene, error) {
	if err := spec.Settings.Validate(); err != nil {
		return nil, err
	}
	w := physics.NewWorld(spec.Settings)

	for _, pair := range spec.DisabledLayerPairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: %v", ErrLayerPair, pair)
		}
		if err := w.SetLayerCollision(pair[0], pair[1], false); err != nil {
			return nil, fmt.Errorf("layer pair %v: %w", pair, err)
		}
	}

	s := &Scene{
		Name:    spec.Name,
		World:   w,
		spec:    spec,
		handles: make(map[string]physics.BodyHandle, len(spec.Bodies)),
		names:   make(map[physics.BodyHandle]string, len(spec.Bodies)),
	}
	for i, bs := range spec.Bodies {
		name := bs.Name
		if name == "" {
			name = fmt.Sprintf("body_%d", i)
		}
		if _, ok := s.handles[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBody, name)
		}
		b, err := buildBody(w, bs)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", name, err)
		}
		s.handles[name] = b.Handle()
		s.names[b.Handle()] = name
	}

	for i, es := range spec.Effectors {
		e, err := buildEffector(es)
		if err != nil {
			return nil, fmt.Errorf("effector %d (%s): %w", i, es.Type, err)
		}
		w.AddEffector(e)
	}
	return s, nil
}

func buildBody(w *physics.World, bs BodySpec) (*physics.Rigidbody, error) {
	mode, err := physics.ParseSimulationMode(bs.Mode)
	if err != nil {
		return nil, err
	}
	freeze, err := parseFreeze(bs.Freeze)
	if err != nil {
		return nil, err
	}
	if bs.Collider != nil {
		if err := validateCollider(*bs.Collider); err != nil {
			return nil, err
		}
	}

	b := w.CreateRigidbody()
	b.SetPosition(bs.Position)
	b.SetRotation(bs.Rotation)
	b.SetMode(mode)
	if err := b.SetLayer(bs.Layer); err != nil {
		return nil, err
	}
	b.SetConstraints(freeze)
	b.SetDrag(bs.Drag)
	b.SetAngularDrag(bs.AngularDrag)
	if bs.GravityScale != nil {
		b.SetGravityScale(*bs.GravityScale)
	}

	if bs.Collider != nil {
		if err := buildCollider(w, b, *bs.Collider); err != nil {
			return nil, err
		}
	}
	// mass after the collider so the inertia comes from the shape
	if bs.Mass != nil {
		if err := b.SetMass(*bs.Mass); err != nil {
			return nil, err
		}
	}
	b.SetVelocity(bs.Velocity)
	b.SetAngularVelocity(bs.AngularVelocity)
	b.SetEnabled(!bs.Disabled)
	return b, nil
}

func validateCollider(cs ColliderSpec) error {
	switch strings.ToLower(cs.Shape) {
	case "disc", "circle":
		if cs.Radius <= 0 {
			return physics.ErrInvalidRadius
		}
	case "box":
		if cs.Width <= 0 || cs.Height <= 0 {
			return fmt.Errorf("scene: box needs a positive width and height, got %vx%v", cs.Width, cs.Height)
		}
	case "polygon":
		pts := cs.Points
		if cs.PointCloud {
			pts = geom.ConvexHull(pts, 1e-9)
		}
		if err := geom.ValidateConvex(pts); err != nil {
			return fmt.Errorf("polygon %v: %w", cs.Points, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownShape, cs.Shape)
	}
	if cs.Material != nil {
		if _, err := buildMaterial(*cs.Material); err != nil {
			return err
		}
	}
	return nil
}

func buildCollider(w *physics.World, b *physics.Rigidbody, cs ColliderSpec) error {
	var c *physics.Collider
	var err error
	switch strings.ToLower(cs.Shape) {
	case "disc", "circle":
		c, err = w.CreateDiscCollider(b.Handle(), cs.Offset, cs.Radius)
	case "box":
		c, err = w.CreatePolygonCollider(b.Handle(), boxPoints(cs.Offset, cs.Width/2, cs.Height/2), false)
	case "polygon":
		pts := make([]cp.Vector, len(cs.Points))
		for i, p := range cs.Points {
			pts[i] = p.Add(cs.Offset)
		}
		c, err = w.CreatePolygonCollider(b.Handle(), pts, cs.PointCloud)
	}
	if err != nil {
		return err
	}
	c.SetTrigger(cs.Trigger)
	if cs.Material != nil {
		m, _ := buildMaterial(*cs.Material)
		c.SetMaterial(m)
	}
	return nil
}

func boxPoints(offset cp.Vector, hw, hh float64) []cp.Vector {
	return []cp.Vector{
		offset.Add(cp.Vector{X: -hw, Y: -hh}),
		offset.Add(cp.Vector{X: hw, Y: -hh}),
		offset.Add(cp.Vector{X: hw, Y: hh}),
		offset.Add(cp.Vector{X: -hw, Y: hh}),
	}
}

func buildMaterial(ms MaterialSpec) (physics.Material, error) {
	bounce, err := physics.ParseCombineRule(ms.BounceCombine)
	if err != nil {
		return physics.Material{}, err
	}
	friction, err := physics.ParseCombineRule(ms.FrictionCombine)
	if err != nil {
		return physics.Material{}, err
	}
	return physics.Material{
		Bounciness:      ms.Bounciness,
		Friction:        ms.Friction,
		BounceCombine:   bounce,
		FrictionCombine: friction,
	}, nil
}

func parseFreeze(axes []string) (physics.Constraints, error) {
	var c physics.Constraints
	for _, a := range axes {
		switch strings.ToLower(strings.TrimSpace(a)) {
		case "x":
			c |= physics.FreezePositionX
		case "y":
			c |= physics.FreezePositionY
		case "rotation":
			c |= physics.FreezeRotation
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownFreeze, a)
		}
	}
	return c, nil
}

func freezeNames(c physics.Constraints) []string {
	var out []string
	if c&physics.FreezePositionX != 0 {
		out = append(out, "x")
	}
	if c&physics.FreezePositionY != 0 {
		out = append(out, "y")
	}
	if c&physics.FreezeRotation != 0 {
		out = append(out, "rotation")
	}
	return out
}

func layerFilter(layers []uint) (effector.LayerFilter, error) {
	var f effector.LayerFilter
	for _, l := range layers {
		if l >= physics.MaxLayers {
			return 0, physics.ErrInvalidLayer
		}
		f |= 1 << l
	}
	return f, nil
}

func buildEffector(es EffectorSpec) (physics.Effector, error) {
	switch strings.ToLower(es.Type) {
	case "constant_force":
		p, err := DecodeParams[ConstantForceParams](es.Params)
		if err != nil {
			return nil, err
		}
		layers, err := layerFilter(p.Layers)
		if err != nil {
			return nil, err
		}
		return &effector.ConstantForce{Force: p.Force, Acceleration: p.Acceleration, Layers: layers}, nil
	case "attractor":
		p, err := DecodeParams[AttractorParams](es.Params)
		if err != nil {
			return nil, err
		}
		layers, err := layerFilter(p.Layers)
		if err != nil {
			return nil, err
		}
		return &effector.PointAttractor{
			Center:      p.Center,
			Strength:    p.Strength,
			Radius:      p.Radius,
			MinDistance: p.MinDistance,
			Layers:      layers,
		}, nil
	case "vortex":
		p, err := DecodeParams[VortexParams](es.Params)
		if err != nil {
			return nil, err
		}
		layers, err := layerFilter(p.Layers)
		if err != nil {
			return nil, err
		}
		return &effector.Vortex{Center: p.Center, Strength: p.Strength, Radius: p.Radius, Layers: layers}, nil
	case "script":
		p, err := DecodeParams[ScriptParams](es.Params)
		if err != nil {
			return nil, err
		}
		layers, err := layerFilter(p.Layers)
		if err != nil {
			return nil, err
		}
		name, src := "inline", []byte(p.Source)
		if p.Script != "" {
			name = p.Script
			src, err = LoadScript(p.Script)
			if err != nil {
				return nil, fmt.Errorf("load script %s: %w", p.Script, err)
			}
		}
		s, err := effector.NewScript(name, src)
		if err != nil {
			return nil, err
		}
		s.Layers = layers
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, es.Type)
}

// Spec returns the spec the scene was built from.
func (s *Scene) Spec() Spec {
	return s.spec
}

// Body looks a body up by its scene name.
func (s *Scene) Body(name string) *physics.Rigidbody {
	h, ok := s.handles[name]
	if !ok {
		return nil
	}
	return s.World.Body(h)
}

// NameOf returns the scene name of a body, or "" if the scene did not declare it.
func (s *Scene) NameOf(h physics.BodyHandle) string {
	return s.names[h]
}

func (s *Scene) Names() []string {
	out := make([]string, 0, len(s.handles))
	for name := range s.handles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Bounds is the box around every collider's bounding disc, for camera framing.
func (s *Scene) Bounds() cp.BB {
	var bb cp.BB
	first := true
	for _, c := range s.World.Colliders() {
		d := c.WorldBounds()
		cb := cp.NewBBForCircle(d.Center, d.Radius)
		if first {
			bb, first = cb, false
			continue
		}
		bb = bb.Merge(cb)
	}
	return bb
}

func (s *Scene) Close() {
	s.World.Close()
}
