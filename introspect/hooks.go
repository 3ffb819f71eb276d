package introspect

import (
	"sync"

	"github.com/c360studio/packcheck/spec"
)

// HookPrefix namespaces hook bindings in a document's scope, so a hook named
// "fixture" is addressed as $fixture in features.
const HookPrefix = "$"

// HookRegistry is the closed table of named host functions a specification's
// extension block may request. Hook blocks are never executed as source;
// they only select pre-registered functions by name.
type HookRegistry struct {
	mu    sync.RWMutex
	hooks map[string]spec.Callable
}

// DefaultHooks is the process-wide hook table used by the CLI.
var DefaultHooks = NewHookRegistry()

// NewHookRegistry creates an empty hook table.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{hooks: make(map[string]spec.Callable)}
}

// Register binds a hook name to a callable.
func (h *HookRegistry) Register(name string, fn spec.Callable) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks[name] = fn
}

// RegisterFunc binds a hook name to a func literal.
func (h *HookRegistry) RegisterFunc(name string, fn spec.CallableFunc) {
	h.Register(name, fn)
}

// Resolve looks up the requested hook names and returns scope bindings under
// HookPrefix plus the names that are not registered. Missing hooks are a
// host mismatch, not a fatal condition; the caller logs and continues.
func (h *HookRegistry) Resolve(names []string) (map[string]any, []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	bound := make(map[string]any, len(names))
	var missing []string
	for _, name := range names {
		fn, ok := h.hooks[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		bound[HookPrefix+name] = fn
	}
	return bound, missing
}

// RegisterHook adds a named host function to the default hook table.
func RegisterHook(name string, fn spec.CallableFunc) {
	DefaultHooks.RegisterFunc(name, fn)
}
