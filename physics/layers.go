package physics

// MaxLayers is the number of collision layers a World distinguishes.
const MaxLayers = 32

// LayerMask records which pairs of layers may collide. Row a has bit b set when layer a
// interacts with layer b; the matrix is kept symmetric.
type LayerMask struct {
	rows [MaxLayers]uint32
}

// NewLayerMask returns a mask where every layer interacts with every other.
func NewLayerMask() LayerMask {
	var m LayerMask
	for i := range m.rows {
		m.rows[i] = ^uint32(0)
	}
	return m
}

// Set enables or disables interaction between layers a and b in both directions.
func (m *LayerMask) Set(a, b uint, enabled bool) error {
	if a >= MaxLayers || b >= MaxLayers {
		return ErrInvalidLayer
	}
	if enabled {
		m.rows[a] |= 1 << b
		m.rows[b] |= 1 << a
	} else {
		m.rows[a] &^= 1 << b
		m.rows[b] &^= 1 << a
	}
	return nil
}

// SetRow replaces the interaction set of layer a, mirroring every bit into the other rows.
func (m *LayerMask) SetRow(a uint, mask uint32) error {
	if a >= MaxLayers {
		return ErrInvalidLayer
	}
	for b := uint(0); b < MaxLayers; b++ {
		m.Set(a, b, mask&(1<<b) != 0)
	}
	return nil
}

// Interacts reports whether layers a and b collide. Out-of-range layers never collide.
func (m LayerMask) Interacts(a, b uint) bool {
	if a >= MaxLayers || b >= MaxLayers {
		return false
	}
	return m.rows[a]&(1<<b) != 0
}

func (m LayerMask) Row(a uint) uint32 {
	if a >= MaxLayers {
		return 0
	}
	return m.rows[a]
}
