package scene

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/geom"
	"github.com/milk9111/physics2d/physics"
	"github.com/pmezard/go-difflib/difflib"
)

func TestEmbeddedScenesBuildAndRun(t *testing.T) {
	names := List()
	if len(names) < 3 {
		t.Fatalf("expected the sample scenes, got %v", names)
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			s, err := Open(name)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			if got, want := len(s.World.Bodies()), len(s.Spec().Bodies); got != want {
				t.Fatalf("built %d bodies, spec has %d", got, want)
			}
			for i := 0; i < 240; i++ {
				s.World.Step()
			}
			for _, b := range s.World.Bodies() {
				p := b.Position()
				if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
					t.Fatalf("%s diverged to %v", s.NameOf(b.Handle()), p)
				}
			}
		})
	}
}

func TestParseKeepsDefaultSettings(t *testing.T) {
	spec, err := Parse([]byte("name: tiny\nsettings:\n  slop: 0.05\n  gravity: {x: 1, y: 2}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def := physics.DefaultSettings()
	if spec.Settings.Slop != 0.05 || spec.Settings.Gravity.X != 1 || spec.Settings.Gravity.Y != 2 {
		t.Fatalf("overrides lost: %+v", spec.Settings)
	}
	if spec.Settings.FixedTimestep != def.FixedTimestep || spec.Settings.SolverIterations != def.SolverIterations {
		t.Fatalf("defaults lost: %+v", spec.Settings)
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want error
	}{
		{"concave", `
bodies:
  - collider:
      shape: polygon
      points: [{x: 0, y: 0}, {x: 2, y: -1}, {x: 1, y: 0}, {x: 2, y: 1}]
`, geom.ErrNotConvex},
		{"clockwise", `
bodies:
  - collider:
      shape: polygon
      points: [{x: 0, y: 0}, {x: 0, y: 1}, {x: 1, y: 1}, {x: 1, y: 0}]
`, geom.ErrClockwise},
		{"unknown_shape", "bodies:\n  - collider: {shape: capsule}\n", ErrUnknownShape},
		{"zero_radius", "bodies:\n  - collider: {shape: disc}\n", physics.ErrInvalidRadius},
		{"duplicate_name", "bodies:\n  - name: a\n  - name: a\n", ErrDuplicateBody},
		{"bad_freeze", "bodies:\n  - freeze: [z]\n", ErrUnknownFreeze},
		{"bad_layer", "bodies:\n  - layer: 40\n", physics.ErrInvalidLayer},
		{"bad_layer_pair", "disabled_layer_pairs: [[1]]\n", ErrLayerPair},
		{"unknown_effector", "effectors:\n  - type: tornado\n", ErrUnknownEffect},
		{"bad_timestep", "settings: {fixed_timestep: 0}\n", physics.ErrInvalidTimestep},
		{"bad_mass", "bodies:\n  - mass: -2\n", physics.ErrInvalidMass},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec, err := Parse([]byte(c.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = Build(spec)
			if !errors.Is(err, c.want) {
				t.Fatalf("Build error = %v, want %v", err, c.want)
			}
		})
	}
}

func TestBuildReportsInvalidFields(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"compile", "effectors:\n  - type: script\n    params: {source: \"apply := func(\"}\n"},
		{"missing_file", "effectors:\n  - type: script\n    params: {script: nope}\n"},
		{"bad_mode", "bodies:\n  - mode: floating\n"},
		{"bad_combine", "bodies:\n  - collider: {shape: disc, radius: 1, material: {friction_combine: max}}\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec, err := Parse([]byte(c.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if _, err := Build(spec); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestBuildAppliesBodyFields(t *testing.T) {
	spec, err := Parse([]byte(`
disabled_layer_pairs: [[1, 2]]
bodies:
  - name: heavy
    mass: 4
    layer: 1
    freeze: [x, rotation]
    gravity_scale: 0.5
    disabled: true
    collider:
      shape: box
      width: 2
      height: 1
      offset: {x: 1, y: 0}
      trigger: true
      material: {bounciness: 0.3, friction: 0.7, friction_combine: multiply}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Build(spec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b := s.Body("heavy")
	if b == nil {
		t.Fatalf("body not registered by name")
	}
	if b.Mass() != 4 || b.Layer() != 1 || b.GravityScale() != 0.5 || b.Enabled() {
		t.Fatalf("fields not applied: mass=%v layer=%v gravity=%v enabled=%v", b.Mass(), b.Layer(), b.GravityScale(), b.Enabled())
	}
	if b.Constraints() != physics.FreezePositionX|physics.FreezeRotation {
		t.Fatalf("constraints = %v", b.Constraints())
	}
	c := b.Collider()
	if c == nil || !c.IsTrigger() || c.Material().FrictionCombine != physics.CombineMultiply {
		t.Fatalf("collider fields not applied")
	}
	if !c.Contains(b.LocalToWorld(cp.Vector{X: 1.9, Y: 0.4})) || c.Contains(b.LocalToWorld(cp.Vector{X: -0.1})) {
		t.Fatalf("box offset not applied: %v", c.LocalVertices())
	}
	if s.World.LayerMask().Interacts(1, 2) {
		t.Fatalf("layer pair not disabled")
	}
	if s.NameOf(b.Handle()) != "heavy" || s.Body("missing") != nil {
		t.Fatalf("name lookup broken")
	}
}

func TestSnapshotRebuildsSameState(t *testing.T) {
	s, err := Open("stack")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 30; i++ {
		s.World.Step()
	}
	first, err := s.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	spec, err := Parse(first)
	if err != nil {
		t.Fatalf("Parse snapshot: %v", err)
	}
	rebuilt, err := Build(spec)
	if err != nil {
		t.Fatalf("Build snapshot: %v", err)
	}
	second, err := rebuilt.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if diff := unifiedDiff(first, second); diff != "" {
		t.Fatalf("rebuilt snapshot differs:\n%s", diff)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	for _, name := range []string{"stack", "billiards", "fields"} {
		t.Run(name, func(t *testing.T) {
			run := func() []byte {
				s, err := Open(name)
				if err != nil {
					t.Fatalf("Open: %v", err)
				}
				for i := 0; i < 300; i++ {
					s.World.Step()
				}
				out, err := s.Encode()
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				return out
			}
			if diff := unifiedDiff(run(), run()); diff != "" {
				t.Fatalf("two runs diverged:\n%s", diff)
			}
		})
	}
}

func TestLoadPrefersDisk(t *testing.T) {
	dir := t.TempDir()
	old := DiskRoot
	DiskRoot = dir
	defer func() { DiskRoot = old }()

	if err := os.MkdirAll(filepath.Join(dir, "scenes"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scenes", "stack.yaml"), []byte("name: from_disk\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	spec, err := LoadSpec("stack")
	if err != nil || spec.Name != "from_disk" {
		t.Fatalf("disk override not used: %v %q", err, spec.Name)
	}
	if _, ok := ModTime("stack.yaml"); !ok {
		t.Fatalf("ModTime missed the disk file")
	}
	spec, err = LoadSpec("billiards")
	if err != nil || spec.Name != "billiards" {
		t.Fatalf("embedded fallback failed: %v %q", err, spec.Name)
	}
}

func TestWatcherReportsSceneChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	target := filepath.Join(dir, "level.yaml")
	if err := os.WriteFile(target, []byte("name: level\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-w.Events:
		if got != target {
			t.Fatalf("event for %q, want %q", got, target)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("no event for %s", target)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close must close Events so this drain ends
	for range w.Events {
	}
}

func unifiedDiff(a, b []byte) string {
	if string(a) == string(b) {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "first",
		ToFile:   "second",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return strings.TrimSpace(diff)
}

func TestMeasureCountsContacts(t *testing.T) {
	spec, err := Parse([]byte(`
settings: {gravity: {x: 0, y: 0}}
bodies:
  - name: a
    velocity: {x: 2, y: 0}
    collider: {shape: disc, radius: 1}
  - name: b
    position: {x: 1.5, y: 0}
    collider: {shape: disc, radius: 1}
  - name: sensor
    mode: static
    position: {x: -1, y: 0}
    collider: {shape: disc, radius: 0.5, trigger: true}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Build(spec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	before := Measure(s.World)
	if before.Bodies != 3 || before.Dynamic != 2 || before.KineticEnergy != 2 || before.MaxSpeed != 2 {
		t.Fatalf("initial stats %+v", before)
	}
	s.World.Step()
	after := Measure(s.World)
	if after.Step != 1 || after.Contacts != 1 || after.Triggers != 1 {
		t.Fatalf("stats after one step %+v", after)
	}
	if after.MaxPenetration != 0.5 {
		t.Fatalf("max penetration = %v", after.MaxPenetration)
	}
	if after.KineticEnergy > before.KineticEnergy+1e-9 {
		t.Fatalf("inelastic contact gained energy: %v -> %v", before.KineticEnergy, after.KineticEnergy)
	}
}
