package cache

import (
	"sync/atomic"
	"time"
)

// Slot implements Cache with a single entry. It holds no lock: Set swaps the
// entry pointer atomically, so readers observe either the previous or the new
// entry and concurrent writers resolve as last-writer-wins.
type Slot[T any] struct {
	entry atomic.Pointer[Entry[T]]
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a Slot
type Option[T any] func(*Slot[T])

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL[T any](ttl time.Duration) Option[T] {
	return func(s *Slot[T]) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mostly for tests
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Slot[T]) { s.now = now }
}

// NewSlot creates an empty slot
func NewSlot[T any](opts ...Option[T]) *Slot[T] {
	s := &Slot[T]{ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get implements Reader
func (s *Slot[T]) Get() *Entry[T] {
	return s.entry.Load()
}

// IsFresh implements Reader
func (s *Slot[T]) IsFresh() bool {
	e := s.entry.Load()
	return e != nil && e.Fresh(s.now(), s.ttl)
}

// Set implements Writer. The items slice is copied so later changes by the
// caller never leak into the cached entry.
func (s *Slot[T]) Set(items []T, now time.Time) {
	cp := make([]T, len(items))
	copy(cp, items)
	s.entry.Store(&Entry[T]{FetchedAt: now, Items: cp})
}

// TTL returns the configured time-to-live
func (s *Slot[T]) TTL() time.Duration {
	return s.ttl
}

// Now returns the slot's clock reading
func (s *Slot[T]) Now() time.Time {
	return s.now()
}

var _ Cache[string] = (*Slot[string])(nil)
