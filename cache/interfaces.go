// Package cache provides the in-memory feed cache: a single slot holding the
// last successfully fetched collection and the time it was fetched.
package cache

import "time"

// DefaultTTL is how long a fetched feed is served before a refresh is needed
const DefaultTTL = 24 * time.Hour

// Entry is one cached collection with its fetch time.
// Entries are never mutated once stored; a refresh stores a new Entry.
type Entry[T any] struct {
	FetchedAt time.Time
	Items     []T
}

// Age returns how old the entry is at now
func (e *Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Fresh reports whether the entry is younger than ttl at now
func (e *Entry[T]) Fresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// Reader defines the interface for reading the cached entry
type Reader[T any] interface {
	// Get returns the current entry, stale or not, or nil if nothing was stored yet
	Get() *Entry[T]

	// IsFresh returns true if an entry exists and is younger than the TTL
	IsFresh() bool

	// Now is the clock freshness is judged against. Writers stamp entries with it.
	Now() time.Time
}

// Writer defines the interface for replacing the cached entry
type Writer[T any] interface {
	// Set replaces the entry wholesale with items fetched at now
	Set(items []T, now time.Time)
}

// Cache combines both cache operations
type Cache[T any] interface {
	Reader[T]
	Writer[T]
}
