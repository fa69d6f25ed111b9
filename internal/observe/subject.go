// Package observe provides a small push-based publish/subscribe registry.
//
// A Subject holds the latest value of one state channel and notifies every
// subscriber synchronously, in subscription order, whenever a new value is
// published. Late subscribers receive the current value immediately.
// Subjects are not safe for concurrent use; owners publish from a single goroutine.
package observe

// Observable is the read-only side of a Subject handed to renderers.
type Observable[T any] interface {
	// Value returns the latest published value.
	Value() T

	// Subscribe registers fn, calls it once with the current value and then
	// on every subsequent Publish. The returned function removes the subscription.
	Subscribe(fn func(T)) (cancel func())
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subject is a state channel with a last-known value.
type Subject[T any] struct {
	value  T
	subs   []subscriber[T]
	nextID int
}

// NewSubject creates a subject holding the initial value.
func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

// Value returns the latest published value.
func (s *Subject[T]) Value() T {
	return s.value
}

// Publish stores v and delivers it to all current subscribers.
func (s *Subject[T]) Publish(v T) {
	s.value = v
	// Copy so subscribers may cancel themselves while being notified.
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	for _, sub := range subs {
		sub.fn(v)
	}
}

// Subscribe implements Observable.
func (s *Subject[T]) Subscribe(fn func(T)) func() {
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	fn(s.value)

	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	return len(s.subs)
}

var _ Observable[int] = (*Subject[int])(nil)
