// Package strategy runs trading algorithms across a ticker list and keeps a
// Registry of the named algorithms the CLI can select.
package strategy

import (
	"fmt"
	"sort"
	"strings"

	"quantbench/internal/algo"
	"quantbench/internal/domain"
)

// Registry holds a named collection of algorithm factories for lookup and
// enumeration.
type Registry struct {
	factories map[string]algo.Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]algo.Factory),
	}
}

// Register adds a factory under name, replacing any previous entry.
func (r *Registry) Register(name string, f algo.Factory) {
	r.factories[name] = f
}

// Get retrieves a factory by name. The second return value indicates whether
// the name was found.
func (r *Registry) Get(name string) (algo.Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Resolve returns the factory for name or a domain.ErrConfiguration error
// listing the registered names.
func (r *Registry) Resolve(name string) (algo.Factory, error) {
	f, ok := r.Get(name)
	if !ok || f == nil {
		return nil, fmt.Errorf("unknown strategy %q (have %s): %w",
			name, strings.Join(r.List(), ", "), domain.ErrConfiguration)
	}
	return f, nil
}

// List returns a sorted slice of all registered names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
