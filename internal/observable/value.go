// Package observable provides a mutex-guarded value cell whose subscribers
// are notified synchronously after each change.
package observable

import "sync"

// Value holds a T and a list of subscribers. Subscribers run after the lock
// is released, in subscription order, on the goroutine that made the change.
type Value[T any] struct {
	mu     sync.RWMutex
	val    T
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// New returns a cell holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{val: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.val
}

// Set replaces the value and notifies subscribers.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.val = val
	subs := v.snapshotSubs()
	v.mu.Unlock()

	notify(subs, val)
}

// Update applies fn to the current value under the lock. Subscribers are
// notified only when fn reports a change.
func (v *Value[T]) Update(fn func(T) (T, bool)) T {
	v.mu.Lock()
	next, changed := fn(v.val)
	if !changed {
		cur := v.val
		v.mu.Unlock()
		return cur
	}
	v.val = next
	subs := v.snapshotSubs()
	v.mu.Unlock()

	notify(subs, next)
	return next
}

// Subscribe registers fn and returns a function removing it.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			for i, s := range v.subs {
				if s.id == id {
					v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (v *Value[T]) snapshotSubs() []subscriber[T] {
	if len(v.subs) == 0 {
		return nil
	}
	out := make([]subscriber[T], len(v.subs))
	copy(out, v.subs)
	return out
}

func notify[T any](subs []subscriber[T], val T) {
	for _, s := range subs {
		s.fn(val)
	}
}
