package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

var (
	ErrBodyNotFound     = errors.New("physics: rigidbody not found")
	ErrBodyHasCollider  = errors.New("physics: rigidbody already owns a collider")
	ErrInvalidLayer     = errors.New("physics: layer out of range")
	ErrInvalidTimestep  = errors.New("physics: fixed timestep must be positive")
	ErrInvalidMass      = errors.New("physics: mass must not be negative")
	ErrInvalidRadius    = errors.New("physics: disc radius must be positive")
	ErrInvalidIteration = errors.New("physics: solver iterations must be positive")
)

// Settings tunes a World. Start from DefaultSettings and override fields.
type Settings struct {
	Gravity          cp.Vector `yaml:"gravity"`
	FixedTimestep    float64   `yaml:"fixed_timestep"`
	SolverIterations int       `yaml:"solver_iterations"`

	// Baumgarte is the fraction of the leftover penetration corrected per step.
	Baumgarte             float64 `yaml:"baumgarte"`
	Slop                  float64 `yaml:"slop"`
	MaxCorrectionVelocity float64 `yaml:"max_correction_velocity"`
	BiasDeadband          float64 `yaml:"bias_deadband"`

	// RestitutionThreshold is the approach speed below which contacts do not bounce.
	RestitutionThreshold float64 `yaml:"restitution_threshold"`
	WarmStartFactor      float64 `yaml:"warm_start_factor"`

	MaxStepsPerUpdate int     `yaml:"max_steps_per_update"`
	TimeScale         float64 `yaml:"time_scale"`
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:               cp.Vector{X: 0, Y: -9.8},
		FixedTimestep:         1.0 / 60.0,
		SolverIterations:      10,
		Baumgarte:             0.2,
		Slop:                  0.01,
		MaxCorrectionVelocity: 4,
		BiasDeadband:          1e-3,
		RestitutionThreshold:  0.5,
		WarmStartFactor:       1,
		MaxStepsPerUpdate:     8,
		TimeScale:             1,
	}
}

func (s Settings) Validate() error {
	if !(s.FixedTimestep > 0) || math.IsInf(s.FixedTimestep, 0) {
		return ErrInvalidTimestep
	}
	if s.SolverIterations <= 0 {
		return ErrInvalidIteration
	}
	if s.Baumgarte < 0 || s.Baumgarte > 1 {
		return fmt.Errorf("physics: baumgarte %v outside [0,1]", s.Baumgarte)
	}
	if s.Slop < 0 || s.MaxCorrectionVelocity < 0 || s.BiasDeadband < 0 || s.RestitutionThreshold < 0 {
		return errors.New("physics: slop, correction and threshold settings must not be negative")
	}
	if s.WarmStartFactor < 0 || s.WarmStartFactor > 1 {
		return fmt.Errorf("physics: warm start factor %v outside [0,1]", s.WarmStartFactor)
	}
	if s.TimeScale < 0 {
		return fmt.Errorf("physics: time scale %v is negative", s.TimeScale)
	}
	return nil
}
