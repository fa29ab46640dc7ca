package physics

type contactPhase uint8

const (
	phaseEnter contactPhase = iota
	phaseStay
	phaseLeave
)

func (c *Collider) OnTriggerEnter() *Delegate[*Collision] {
	return &c.onTriggerEnter
}

func (c *Collider) OnTriggerStay() *Delegate[*Collision] {
	return &c.onTriggerStay
}

func (c *Collider) OnTriggerLeave() *Delegate[*Collision] {
	return &c.onTriggerLeave
}

func (c *Collider) triggerDelegate(p contactPhase) *Delegate[*Collision] {
	switch p {
	case phaseEnter:
		return &c.onTriggerEnter
	case phaseStay:
		return &c.onTriggerStay
	default:
		return &c.onTriggerLeave
	}
}

func (b *Rigidbody) overlapDelegate(p contactPhase) *Delegate[*Collision] {
	switch p {
	case phaseEnter:
		return &b.onOverlapStart
	case phaseStay:
		return &b.onOverlapStay
	default:
		return &b.onOverlapStop
	}
}

// fireContact notifies both sides of a pair, each seeing itself as Me. Trigger pairs
// notify the colliders, physical pairs the rigidbodies.
func (w *World) fireContact(c *Collision, p contactPhase) {
	if c == nil {
		return
	}
	inv := c.Inverse()
	if c.IsTrigger() {
		c.Me.triggerDelegate(p).Fire(c)
		c.Other.triggerDelegate(p).Fire(inv)
		return
	}
	if b := c.Me.Body(); b != nil {
		b.overlapDelegate(p).Fire(c)
	}
	if b := c.Other.Body(); b != nil {
		b.overlapDelegate(p).Fire(inv)
	}
}

// dispatchContactEvents fires Enter for pairs not active last step and Stay for the rest.
func (w *World) dispatchContactEvents() {
	for _, c := range w.current {
		k := c.key()
		_, seen := w.activeByKey[k]
		w.activeByKey[k] = c
		if seen {
			w.fireContact(c, phaseStay)
			continue
		}
		w.active = append(w.active, k)
		w.fireContact(c, phaseEnter)
	}
}

func (w *World) dispatchCollisionEvents() {
	for _, c := range w.current {
		if c.IsTrigger() {
			continue
		}
		if b := c.Me.Body(); b != nil {
			b.onCollision.Fire(c)
		}
		if b := c.Other.Body(); b != nil {
			b.onCollision.Fire(c.Inverse())
		}
	}
}

// pruneStale fires Leave for active pairs missing from this step's collisions.
func (w *World) pruneStale() {
	present := make(map[pairKey]struct{}, len(w.current))
	for _, c := range w.current {
		present[c.key()] = struct{}{}
	}
	var left []*Collision
	kept := w.active[:0]
	for _, k := range w.active {
		if _, ok := present[k]; ok {
			kept = append(kept, k)
			continue
		}
		left = append(left, w.activeByKey[k])
		delete(w.activeByKey, k)
	}
	w.active = kept
	for _, c := range left {
		w.fireContact(c, phaseLeave)
	}
}
