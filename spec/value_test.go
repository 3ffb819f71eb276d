package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("integer widths", func(t *testing.T) {
		assert.Equal(t, int64(5), Normalize(5))
		assert.Equal(t, int64(5), Normalize(int32(5)))
		assert.Equal(t, int64(5), Normalize(uint8(5)))
	})

	t.Run("floats", func(t *testing.T) {
		assert.Equal(t, float64(1.5), Normalize(float32(1.5)))
	})

	t.Run("native slice", func(t *testing.T) {
		assert.Equal(t, []any{int64(1), int64(2)}, Normalize([]int{1, 2}))
	})

	t.Run("native map gets sorted keys", func(t *testing.T) {
		got, ok := Normalize(map[string]int{"b": 2, "a": 1}).(*Map)
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, got.Keys())
	})

	t.Run("nested", func(t *testing.T) {
		got := Normalize([]any{[]int{1}, map[string]any{"k": 2}})
		seq, ok := got.([]any)
		require.True(t, ok)
		assert.Equal(t, []any{int64(1)}, seq[0])
		m, ok := seq[1].(*Map)
		require.True(t, ok)
		v, _ := m.Get("k")
		assert.Equal(t, int64(2), v)
	})
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nulls", nil, nil, true},
		{"null vs value", nil, int64(0), false},
		{"exact ints", int64(3), 3, true},
		{"int vs float exact", int64(3), 3.0, true},
		{"int vs float inexact", int64(3), 3.5, false},
		{"strings", "a", "a", true},
		{"bool mismatch", true, int64(1), false},
		{"sequences", []any{int64(1), "x"}, []any{1, "x"}, true},
		{"sequence length", []any{int64(1)}, []any{int64(1), int64(2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}

	t.Run("mapping order insensitive", func(t *testing.T) {
		a := NewMap()
		a.Set("x", int64(1))
		a.Set("y", int64(2))
		b := NewMap()
		b.Set("y", int64(2))
		b.Set("x", int64(1))
		assert.True(t, Equal(a, b))
	})
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"null", nil, "null"},
		{"bool", true, "true"},
		{"int", int64(42), "42"},
		{"float", 1.5, "1.5"},
		{"string is quoted", "hi", `"hi"`},
		{"sequence", []any{int64(1), "a"}, `[1, "a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.v))
		})
	}

	t.Run("mapping keeps insertion order", func(t *testing.T) {
		m := NewMap()
		m.Set("b", int64(2))
		m.Set("a", int64(1))
		assert.Equal(t, "{b: 2, a: 1}", Render(m))
	})
}

func TestDeepCopyIsolation(t *testing.T) {
	inner := []any{int64(1)}
	m := NewMap()
	m.Set("seq", inner)
	original := []any{m}

	copied := DeepCopy(original).([]any)
	copiedMap := copied[0].(*Map)
	seq, _ := copiedMap.Get("seq")
	seq.([]any)[0] = int64(99)

	assert.Equal(t, int64(1), inner[0], "mutating the copy must not alias the original")
}
