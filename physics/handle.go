package physics

import "strconv"

// handle packs a slot index with the slot's generation. Generations start at 1, so the
// zero handle never resolves.
type handle uint64

const handleIndexBits = 32

func makeHandle(index, gen uint32) handle {
	return handle(uint64(gen)<<handleIndexBits | uint64(index))
}

func (h handle) index() uint32 {
	return uint32(h)
}

func (h handle) generation() uint32 {
	return uint32(uint64(h) >> handleIndexBits)
}

// BodyHandle identifies a Rigidbody owned by a World.
type BodyHandle handle

func (h BodyHandle) Valid() bool {
	return h != 0
}

func (h BodyHandle) String() string {
	return "body:" + strconv.FormatUint(uint64(handle(h).index()), 10) + "/" + strconv.FormatUint(uint64(handle(h).generation()), 10)
}

// ColliderHandle identifies a Collider owned by a World.
type ColliderHandle handle

func (h ColliderHandle) Valid() bool {
	return h != 0
}

func (h ColliderHandle) String() string {
	return "collider:" + strconv.FormatUint(uint64(handle(h).index()), 10) + "/" + strconv.FormatUint(uint64(handle(h).generation()), 10)
}

type slot[T any] struct {
	gen   uint32
	value *T
}

// arena stores values in stable slots. Removing a value bumps the slot generation and
// puts the slot on the free list; inserts reuse a free slot before growing.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) insert(v *T) handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{gen: 1})
	}
	a.slots[idx].value = v
	a.live++
	return makeHandle(idx, a.slots[idx].gen)
}

func (a *arena[T]) get(h handle) *T {
	idx := h.index()
	if h == 0 || int(idx) >= len(a.slots) {
		return nil
	}
	s := a.slots[idx]
	if s.gen != h.generation() {
		return nil
	}
	return s.value
}

func (a *arena[T]) remove(h handle) bool {
	if a.get(h) == nil {
		return false
	}
	idx := h.index()
	a.slots[idx].value = nil
	a.slots[idx].gen++
	a.free = append(a.free, idx)
	a.live--
	return true
}

// each visits occupied slots in index order.
func (a *arena[T]) each(fn func(h handle, v *T)) {
	for i, s := range a.slots {
		if s.value == nil {
			continue
		}
		fn(makeHandle(uint32(i), s.gen), s.value)
	}
}

func (a *arena[T]) len() int {
	return a.live
}
