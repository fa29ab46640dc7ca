package scene

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/physics"
	"gopkg.in/yaml.v3"
)

// Spec is the YAML form of a scene. Settings omitted from the file keep their defaults.
type Spec struct {
	Name               string           `yaml:"name"`
	Settings           physics.Settings `yaml:"settings"`
	DisabledLayerPairs [][]uint         `yaml:"disabled_layer_pairs,omitempty"`
	Effectors          []EffectorSpec   `yaml:"effectors,omitempty"`
	Bodies             []BodySpec       `yaml:"bodies"`
}

type BodySpec struct {
	Name            string        `yaml:"name"`
	Mode            string        `yaml:"mode,omitempty"`
	Position        cp.Vector     `yaml:"position"`
	Rotation        float64       `yaml:"rotation,omitempty"`
	Velocity        cp.Vector     `yaml:"velocity,omitempty"`
	AngularVelocity float64       `yaml:"angular_velocity,omitempty"`
	Mass            *float64      `yaml:"mass,omitempty"`
	Drag            float64       `yaml:"drag,omitempty"`
	AngularDrag     float64       `yaml:"angular_drag,omitempty"`
	GravityScale    *float64      `yaml:"gravity_scale,omitempty"`
	Layer           uint          `yaml:"layer,omitempty"`
	Freeze          []string      `yaml:"freeze,omitempty"`
	Disabled        bool          `yaml:"disabled,omitempty"`
	Collider        *ColliderSpec `yaml:"collider,omitempty"`
}

type ColliderSpec struct {
	// Shape is disc, box or polygon.
	Shape      string        `yaml:"shape"`
	Offset     cp.Vector     `yaml:"offset,omitempty"`
	Radius     float64       `yaml:"radius,omitempty"`
	Width      float64       `yaml:"width,omitempty"`
	Height     float64       `yaml:"height,omitempty"`
	Points     []cp.Vector   `yaml:"points,omitempty"`
	PointCloud bool          `yaml:"point_cloud,omitempty"`
	Trigger    bool          `yaml:"trigger,omitempty"`
	Material   *MaterialSpec `yaml:"material,omitempty"`
}

type MaterialSpec struct {
	Bounciness      float64 `yaml:"bounciness"`
	Friction        float64 `yaml:"friction"`
	BounceCombine   string  `yaml:"bounce_combine,omitempty"`
	FrictionCombine string  `yaml:"friction_combine,omitempty"`
}

// EffectorSpec names an effector type and carries its parameters, decoded with
// DecodeParams into the matching *Params struct.
type EffectorSpec struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params,omitempty"`
}

type ConstantForceParams struct {
	Force        cp.Vector `yaml:"force"`
	Acceleration bool      `yaml:"acceleration"`
	Layers       []uint    `yaml:"layers"`
}

type AttractorParams struct {
	Center      cp.Vector `yaml:"center"`
	Strength    float64   `yaml:"strength"`
	Radius      float64   `yaml:"radius"`
	MinDistance float64   `yaml:"min_distance"`
	Layers      []uint    `yaml:"layers"`
}

type VortexParams struct {
	Center   cp.Vector `yaml:"center"`
	Strength float64   `yaml:"strength"`
	Radius   float64   `yaml:"radius"`
	Layers   []uint    `yaml:"layers"`
}

type ScriptParams struct {
	// Script is a file under scripts/. Source holds an inline program instead.
	Script string `yaml:"script"`
	Source string `yaml:"source"`
	Layers []uint `yaml:"layers"`
}

// LoadSpec reads and parses a scene by name.
func LoadSpec(name string) (Spec, error) {
	data, err := Load(name)
	if err != nil {
		return Spec{}, fmt.Errorf("scene: load %s: %w", name, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return Spec{}, fmt.Errorf("scene: unmarshal %s: %w", name, err)
	}
	return spec, nil
}

func Parse(data []byte) (Spec, error) {
	spec := Spec{Settings: physics.DefaultSettings()}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Encode renders spec as YAML.
func Encode(spec Spec) ([]byte, error) {
	return yaml.Marshal(spec)
}

func DecodeParams[T any](raw map[string]any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
