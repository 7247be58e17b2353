// Package plugins defines the common interface for social network feed sources
package plugins

import (
	"context"
	"sort"

	"github.com/briangreenhill/socialfeed/feed"
)

// Source defines the minimal interface that all feed sources must implement
type Source interface {
	// Name returns the network tag used in routes (e.g., "instagram")
	Name() string

	// DisplayName returns the network name shown to people (e.g., "Instagram")
	DisplayName() string

	// GetFeed returns at most limit posts and whether more are available
	GetFeed(ctx context.Context, limit int) (*feed.Result, error)
}

// Registry manages available feed sources.
// It is filled at startup and only read afterwards.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates a new source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds a source to the registry, replacing any source with the same name
func (r *Registry) Register(source Source) {
	r.sources[source.Name()] = source
}

// Get retrieves a source by name
func (r *Registry) Get(name string) (Source, bool) {
	source, exists := r.sources[name]
	return source, exists
}

// List returns all registered source names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
