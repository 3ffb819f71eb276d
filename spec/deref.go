package spec

import "strings"

// Dereference deep-copies a value and replaces every reference marker — a
// single-key mapping with a null value — with the value currently bound at
// that dotted scope path. Only one level of indirection is applied: the
// replacement itself is never re-dereferenced.
func (s *Scope) Dereference(v any) (any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			d, err := s.Dereference(e)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	case *Map:
		if k, val, ok := singleKey(t); ok && val == nil {
			return s.Resolve(strings.Split(k, "."))
		}
		out := NewMap()
		for _, k := range t.Keys() {
			e, _ := t.Get(k)
			d, err := s.Dereference(e)
			if err != nil {
				return nil, err
			}
			out.Set(k, d)
		}
		return out, nil
	default:
		return DeepCopy(v), nil
	}
}

// DereferenceMap applies Dereference to each value of an ordered mapping,
// preserving key order. Used for keyword arguments.
func (s *Scope) DereferenceMap(m *Map) (*Map, error) {
	out := NewMap()
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		d, err := s.Dereference(v)
		if err != nil {
			return nil, err
		}
		out.Set(k, d)
	}
	return out, nil
}
