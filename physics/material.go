package physics

import (
	"fmt"
	"strings"
)

// CombineRule decides how the values of two materials merge for a contact pair.
type CombineRule uint8

const (
	CombineAverage CombineRule = iota
	CombineMultiply
)

func (r CombineRule) String() string {
	switch r {
	case CombineAverage:
		return "average"
	case CombineMultiply:
		return "multiply"
	default:
		return fmt.Sprintf("CombineRule(%d)", uint8(r))
	}
}

// ParseCombineRule accepts "average" or "multiply" (case-insensitive). Empty means average.
func ParseCombineRule(s string) (CombineRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "average":
		return CombineAverage, nil
	case "multiply":
		return CombineMultiply, nil
	default:
		return CombineAverage, fmt.Errorf("unknown combine rule %q", s)
	}
}

// Material describes the surface response of a collider.
type Material struct {
	Bounciness      float64
	Friction        float64
	BounceCombine   CombineRule
	FrictionCombine CombineRule
}

// DefaultMaterial is inelastic with moderate friction.
func DefaultMaterial() Material {
	return Material{Friction: 0.4}
}

// Multiply wins when either side asks for it.
func combine(a, b float64, ra, rb CombineRule) float64 {
	if ra == CombineMultiply || rb == CombineMultiply {
		return a * b
	}
	return (a + b) * 0.5
}

// CombineBounciness returns the restitution coefficient for a pair.
func CombineBounciness(a, b Material) float64 {
	return combine(a.Bounciness, b.Bounciness, a.BounceCombine, b.BounceCombine)
}

// CombineFriction returns the Coulomb friction coefficient for a pair.
func CombineFriction(a, b Material) float64 {
	return combine(a.Friction, b.Friction, a.FrictionCombine, b.FrictionCombine)
}
