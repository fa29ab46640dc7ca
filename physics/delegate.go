package physics

import "log"

// Subscription identifies a callback registered on a Delegate.
type Subscription uint64

type subscriber[T any] struct {
	id Subscription
	fn func(T)
}

// Delegate is a list of callbacks fired synchronously in subscription order.
type Delegate[T any] struct {
	next Subscription
	subs []subscriber[T]
}

// Subscribe registers fn and returns its id for Unsubscribe.
func (d *Delegate[T]) Subscribe(fn func(T)) Subscription {
	if fn == nil {
		return 0
	}
	d.next++
	d.subs = append(d.subs, subscriber[T]{id: d.next, fn: fn})
	return d.next
}

// Unsubscribe removes a callback. Unknown ids are logged and ignored.
func (d *Delegate[T]) Unsubscribe(id Subscription) bool {
	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
			return true
		}
	}
	log.Printf("physics: unsubscribe %d: no such subscription", id)
	return false
}

// Fire calls every subscriber with v. Subscriptions changed by a callback apply from the next Fire.
func (d *Delegate[T]) Fire(v T) {
	if len(d.subs) == 0 {
		return
	}
	subs := d.subs
	for _, s := range subs {
		s.fn(v)
	}
}

func (d *Delegate[T]) Len() int {
	return len(d.subs)
}

func (d *Delegate[T]) Clear() {
	d.subs = nil
}
