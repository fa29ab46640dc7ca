package physics

import "testing"

func TestArenaReuseAndGenerations(t *testing.T) {
	var a arena[int]
	one, two := 1, 2

	h1 := a.insert(&one)
	if h1 == 0 {
		t.Fatalf("first handle must not be zero")
	}
	if !a.remove(h1) {
		t.Fatalf("remove of live handle failed")
	}
	if a.remove(h1) {
		t.Fatalf("double remove should fail")
	}

	h2 := a.insert(&two)
	if h2.index() != h1.index() {
		t.Fatalf("expected slot %d to be reused, got %d", h1.index(), h2.index())
	}
	if h2.generation() == h1.generation() {
		t.Fatalf("reused slot kept generation %d", h2.generation())
	}
	if a.get(h1) != nil {
		t.Fatalf("stale handle resolved")
	}
	if got := a.get(h2); got == nil || *got != 2 {
		t.Fatalf("live handle resolved to %v", got)
	}
	if a.len() != 1 {
		t.Fatalf("len = %d", a.len())
	}
	if a.get(0) != nil {
		t.Fatalf("zero handle resolved")
	}
}

func TestDelegateSubscribeFire(t *testing.T) {
	var d Delegate[int]
	var got []int
	id1 := d.Subscribe(func(v int) { got = append(got, v) })
	d.Subscribe(func(v int) { got = append(got, v*10) })

	d.Fire(1)
	if len(got) != 2 || got[0] != 1 || got[1] != 10 {
		t.Fatalf("fire order: %v", got)
	}
	if !d.Unsubscribe(id1) {
		t.Fatalf("unsubscribe failed")
	}
	if d.Unsubscribe(id1) {
		t.Fatalf("unsubscribing twice should report false")
	}
	got = nil
	d.Fire(2)
	if len(got) != 1 || got[0] != 20 {
		t.Fatalf("after unsubscribe: %v", got)
	}
	if d.Subscribe(nil) != 0 || d.Len() != 1 {
		t.Fatalf("nil callbacks must not register")
	}
}

func TestMaterialCombine(t *testing.T) {
	cases := []struct {
		name string
		a, b Material
		want float64
	}{
		{"average", Material{Friction: 0.2}, Material{Friction: 0.6}, 0.4},
		{"multiply_left", Material{Friction: 0.5, FrictionCombine: CombineMultiply}, Material{Friction: 0.5}, 0.25},
		{"multiply_right", Material{Friction: 0.5}, Material{Friction: 0.4, FrictionCombine: CombineMultiply}, 0.2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CombineFriction(c.a, c.b); !near(got, c.want, 1e-12) {
				t.Fatalf("friction = %v, want %v", got, c.want)
			}
			if got := CombineFriction(c.b, c.a); !near(got, c.want, 1e-12) {
				t.Fatalf("combine is not symmetric: %v", got)
			}
		})
	}
	if r, err := ParseCombineRule("Multiply"); err != nil || r != CombineMultiply {
		t.Fatalf("ParseCombineRule = %v, %v", r, err)
	}
	if _, err := ParseCombineRule("max"); err == nil {
		t.Fatalf("expected error for unknown rule")
	}
}

func TestLayerMaskSymmetric(t *testing.T) {
	m := NewLayerMask()
	if err := m.Set(3, 7, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if m.Interacts(3, 7) || m.Interacts(7, 3) {
		t.Fatalf("disabled pair still interacts")
	}
	if !m.Interacts(3, 3) || !m.Interacts(7, 8) {
		t.Fatalf("unrelated pairs changed")
	}
	if err := m.Set(0, MaxLayers, true); err != ErrInvalidLayer {
		t.Fatalf("expected ErrInvalidLayer, got %v", err)
	}
	if err := m.SetRow(2, 1<<5); err != nil {
		t.Fatalf("SetRow: %v", err)
	}
	if !m.Interacts(5, 2) || m.Interacts(2, 4) || m.Interacts(4, 2) {
		t.Fatalf("SetRow did not mirror: row2=%b row4=%b", m.Row(2), m.Row(4))
	}
}
