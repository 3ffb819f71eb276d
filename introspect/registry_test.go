package introspect

import (
	"testing"

	"github.com/c360studio/packcheck/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("mathlib", map[string]any{
		"VERSION": "1.0",
		"add":     func(a, b int) int { return a + b },
	})

	t.Run("introspect returns surface copy", func(t *testing.T) {
		surface, err := r.Introspect("mathlib")
		require.NoError(t, err)
		assert.Equal(t, "1.0", surface["VERSION"])

		// Mutating the copy must not leak into later introspections.
		surface["VERSION"] = "tampered"
		again, err := r.Introspect("mathlib")
		require.NoError(t, err)
		assert.Equal(t, "1.0", again["VERSION"])
	})

	t.Run("unknown package is empty, not an error", func(t *testing.T) {
		surface, err := r.Introspect("missing")
		require.NoError(t, err)
		assert.Empty(t, surface)
	})

	t.Run("registration replaces earlier surface", func(t *testing.T) {
		r.Register("mathlib", map[string]any{"VERSION": "2.0"})
		surface, err := r.Introspect("mathlib")
		require.NoError(t, err)
		assert.Equal(t, "2.0", surface["VERSION"])
		assert.NotContains(t, surface, "add")
	})

	t.Run("packages sorted", func(t *testing.T) {
		r.Register("alpha", nil)
		assert.Equal(t, []string{"alpha", "mathlib"}, r.Packages())
	})
}

func TestHookRegistry(t *testing.T) {
	h := NewHookRegistry()
	h.RegisterFunc("fixture", func(args []any, kwargs *spec.Map) (any, error) {
		return "ready", nil
	})

	bound, missing := h.Resolve([]string{"fixture", "teardown"})

	require.Contains(t, bound, "$fixture")
	assert.Equal(t, []string{"teardown"}, missing)

	fn := bound["$fixture"].(spec.Callable)
	got, err := fn.Call(nil, spec.NewMap())
	require.NoError(t, err)
	assert.Equal(t, "ready", got)
}
