package effector

import (
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/physics"
)

// scriptModules are the tengo stdlib modules a force script may import.
var scriptModules = []string{"math", "text", "times", "rand", "fmt"}

const scriptDispatch = `
apply(__body, __state)
`

// Script runs a tengo program once per body per step. The program must define
//
//	apply := func(body, state) { ... }
//
// where body exposes position(), velocity(), rotation(), angular_velocity(), mass(),
// layer(), dt, add_force(x, y), add_force_at(x, y, px, py) and add_torque(t), and state
// is a map that persists across calls.
type Script struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	failed   bool
	Layers   LayerFilter
}

// NewScript compiles src once. Syntax errors and a missing apply are both compile
// errors, so they surface here rather than on the first step.
func NewScript(name string, src []byte) (*Script, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__body", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(scriptModules...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("effector: compile %s: %w", name, err)
	}

	return &Script{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (s *Script) Name() string {
	return s.name
}

// Failed reports whether a runtime error disabled the script.
func (s *Script) Failed() bool {
	return s.failed
}

// State returns a copy of the persistent script state as plain Go values.
func (s *Script) State() map[string]any {
	out := make(map[string]any, len(s.state.Value))
	for k, v := range s.state.Value {
		out[k] = objectToAny(v)
	}
	return out
}

// Apply runs the script against b. The first runtime error is logged and disables
// the script for the rest of its life.
func (s *Script) Apply(b *physics.Rigidbody, dt float64) {
	if s == nil || s.compiled == nil || s.failed || !s.Layers.matches(b) {
		return
	}
	if err := s.run(buildBody(b, dt)); err != nil {
		log.Printf("effector: script %s body=%v: %v; disabling", s.name, b.Handle(), err)
		s.failed = true
	}
}

func (s *Script) run(body *tengo.ImmutableMap) error {
	if err := s.compiled.Set("__body", body); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	return s.compiled.Run()
}

func buildBody(b *physics.Rigidbody, dt float64) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}
	values["dt"] = &tengo.Float{Value: dt}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vectorObject(b.Position()), nil
	}}
	values["velocity"] = &tengo.UserFunction{Name: "velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vectorObject(b.Velocity()), nil
	}}
	values["rotation"] = &tengo.UserFunction{Name: "rotation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: b.Rotation()}, nil
	}}
	values["angular_velocity"] = &tengo.UserFunction{Name: "angular_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: b.AngularVelocity()}, nil
	}}
	values["mass"] = &tengo.UserFunction{Name: "mass", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: b.Mass()}, nil
	}}
	values["layer"] = &tengo.UserFunction{Name: "layer", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(b.Layer())}, nil
	}}

	values["add_force"] = &tengo.UserFunction{Name: "add_force", Value: func(args ...tengo.Object) (tengo.Object, error) {
		f, ok := argVector(args, 0)
		if !ok {
			return tengo.FalseValue, nil
		}
		b.AddForce(f)
		return tengo.TrueValue, nil
	}}
	values["add_force_at"] = &tengo.UserFunction{Name: "add_force_at", Value: func(args ...tengo.Object) (tengo.Object, error) {
		f, ok := argVector(args, 0)
		if !ok {
			return tengo.FalseValue, nil
		}
		p, ok := argVector(args, 2)
		if !ok {
			return tengo.FalseValue, nil
		}
		b.AddForceAtPosition(f, p)
		return tengo.TrueValue, nil
	}}
	values["add_torque"] = &tengo.UserFunction{Name: "add_torque", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		t, ok := tengo.ToFloat64(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		b.AddTorque(t)
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vectorObject(v cp.Vector) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}

// argVector reads two numeric arguments starting at i.
func argVector(args []tengo.Object, i int) (cp.Vector, bool) {
	if len(args) < i+2 {
		return cp.Vector{}, false
	}
	x, ok := tengo.ToFloat64(args[i])
	if !ok {
		return cp.Vector{}, false
	}
	y, ok := tengo.ToFloat64(args[i+1])
	if !ok {
		return cp.Vector{}, false
	}
	return cp.Vector{X: x, Y: y}, true
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
