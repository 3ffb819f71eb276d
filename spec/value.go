package spec

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Reserved literals shared between specifications and the executor.
// A feature whose expected value is Any passes on every non-error result;
// ErrorSentinel is both the expected-value form "this must raise" and the
// canonical result of a failed resolution or call.
const (
	ErrorSentinel = "ERROR"
	Any           = "ANY"
)

// Map is an insertion-ordered string-keyed mapping. Specification documents
// preserve author order, so plain Go maps cannot carry mapping values here.
type Map struct {
	keys []string
	vals map[string]any
}

// NewMap creates an empty ordered mapping.
func NewMap() *Map {
	return &Map{vals: make(map[string]any)}
}

// Set binds key to value, appending the key on first insertion.
func (m *Map) Set(key string, value any) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

// Get returns the value bound to key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Plain converts the mapping (recursively) to plain Go values, losing key
// order. Used for diff rendering, never for execution.
func (m *Map) Plain() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = Plain(m.vals[k])
	}
	return out
}

// Plain converts a specification value to plain Go containers for display.
func Plain(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Plain()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}
		return out
	default:
		return v
	}
}

// DeepCopy clones a specification value so execution can mutate nested
// structures without aliasing the parsed document.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = DeepCopy(e)
		}
		return out
	case *Map:
		out := NewMap()
		for _, k := range t.keys {
			out.Set(k, DeepCopy(t.vals[k]))
		}
		return out
	default:
		return v
	}
}

// Normalize rewrites a value into the canonical comparison domain: integers
// widen to int64, float32 to float64, native slices and arrays become []any,
// and native string-keyed maps become ordered mappings with sorted keys so
// comparison does not depend on Go map iteration order.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, bool, int64, float64, string:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case *Map:
		out := NewMap()
		for _, k := range t.keys {
			out.Set(k, Normalize(t.vals[k]))
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			keys := make([]string, 0, rv.Len())
			for _, k := range rv.MapKeys() {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			out := NewMap()
			for _, k := range keys {
				out.Set(k, Normalize(rv.MapIndex(reflect.ValueOf(k)).Interface()))
			}
			return out
		}
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}

// Equal compares two values after normalization. Mappings compare by key set,
// not insertion order; numbers compare across int64/float64 when exact.
func Equal(a, b any) bool {
	return equalNormalized(Normalize(a), Normalize(b))
}

func equalNormalized(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if na, aok := numeric(a); aok {
		nb, bok := numeric(b)
		return bok && na == nb
	}
	switch ta := a.(type) {
	case bool:
		tb, ok := b.(bool)
		return ok && ta == tb
	case string:
		tb, ok := b.(string)
		return ok && ta == tb
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !equalNormalized(ta[i], tb[i]) {
				return false
			}
		}
		return true
	case *Map:
		tb, ok := b.(*Map)
		if !ok || ta.Len() != tb.Len() {
			return false
		}
		for _, k := range ta.keys {
			bv, present := tb.Get(k)
			if !present || !equalNormalized(ta.vals[k], bv) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// Render produces the canonical single-line representation of a value, used
// in feature text and failure output. Strings are quoted so the trace stays
// unambiguous and diff-able.
func Render(v any) string {
	switch t := Normalize(v).(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return strconv.Quote(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Render(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Map:
		parts := make([]string, 0, t.Len())
		for _, k := range t.keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, Render(t.vals[k])))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", t)
	}
}
