// Package introspect provides the package-introspection boundary: a closed,
// pre-registered table of package surfaces standing in for dynamic import.
//
// A surface is a flat mapping of public names to values; callables stay
// callable (plain funcs invoked through reflection, or spec.Callable when
// keyword arguments matter). Binaries embedding packcheck register the
// surfaces of the packages they link:
//
//	introspect.Register("mathlib", map[string]any{
//		"VERSION": "1.0",
//		"add":     func(a, b int) int { return a + b },
//	})
package introspect

import (
	"sort"
	"sync"
)

// Introspector enumerates the public surface of a package. An empty mapping
// means the package could not be loaded ("package not ready"); the executor
// then forces the package-identity read to ERROR instead of crashing.
type Introspector interface {
	Introspect(pkg string) (map[string]any, error)
}

// Registry is a table of registered package surfaces. The enumerated name
// set is deterministic across runs because surfaces are registered once at
// init time and copied out on every introspection.
type Registry struct {
	mu       sync.RWMutex
	packages map[string]map[string]any
}

// DefaultRegistry is the process-wide registry used by the CLI.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{packages: make(map[string]map[string]any)}
}

// Register binds a package name to its public surface, replacing any earlier
// registration.
func (r *Registry) Register(pkg string, surface map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make(map[string]any, len(surface))
	for name, value := range surface {
		copied[name] = value
	}
	r.packages[pkg] = copied
}

// Introspect returns a copy of a registered surface. An unknown package
// yields an empty mapping, never an error: absence is "not ready", not a
// crash.
func (r *Registry) Introspect(pkg string) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	surface, ok := r.packages[pkg]
	if !ok {
		return map[string]any{}, nil
	}
	copied := make(map[string]any, len(surface))
	for name, value := range surface {
		copied[name] = value
	}
	return copied, nil
}

// Packages lists registered package names, sorted.
func (r *Registry) Packages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.packages))
	for name := range r.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a package surface to the default registry.
func Register(pkg string, surface map[string]any) {
	DefaultRegistry.Register(pkg, surface)
}
