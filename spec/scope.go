package spec

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// Scope is the mutable name-to-value environment one document's features read
// and write. It is seeded once from package introspection and mutated by
// assignment features; later features observe earlier assignments. One
// instance exists per document, its lifetime tied to that document's run.
type Scope struct {
	vars map[string]any
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]any)}
}

// Seed copies the introspected package surface into the scope.
func (s *Scope) Seed(surface map[string]any) {
	for name, value := range surface {
		s.vars[name] = value
	}
}

// Bind sets a single top-level name without constant checks. Used for
// seeding; assignment features go through Assign.
func (s *Scope) Bind(name string, value any) {
	s.vars[name] = value
}

// Lookup returns the value bound at a top-level name.
func (s *Scope) Lookup(name string) (any, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Resolve walks a dotted path against the scope and returns the bound value.
// No calls are performed; a missing segment is an ordinary error which the
// executor converts to the ERROR sentinel.
func (s *Scope) Resolve(path []string) (any, error) {
	var owner any = s.vars
	for _, seg := range path {
		next, err := getAttr(owner, seg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", strings.Join(path, "."), err)
		}
		owner = next
	}
	return owner, nil
}

// Assign binds value at a dotted path, enforcing constant protection: a path
// whose final segment is all-uppercase, once bound to a non-null value, can
// never be re-assigned.
func (s *Scope) Assign(path []string, value any) error {
	name := strings.Join(path, ".")
	if isConstantName(path[len(path)-1]) {
		if existing, err := s.Resolve(path); err == nil && existing != nil {
			return &ConstantViolationError{Path: name}
		}
	}
	var owner any = s.vars
	for _, seg := range path[:len(path)-1] {
		next, err := getAttr(owner, seg)
		if err != nil {
			return fmt.Errorf("assign %s: %w", name, err)
		}
		owner = next
	}
	if err := setAttr(owner, path[len(path)-1], value); err != nil {
		return fmt.Errorf("assign %s: %w", name, err)
	}
	return nil
}

// isConstantName reports whether a path segment names a constant: all letters
// uppercase, at least one letter.
func isConstantName(seg string) bool {
	hasLetter := false
	for _, r := range seg {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// getAttr is the single polymorphic read used for all path walking: ordered
// mappings, plain maps, sequence indexing, and reflection over opaque host
// values (struct fields and methods).
func getAttr(owner any, seg string) (any, error) {
	switch t := owner.(type) {
	case nil:
		return nil, fmt.Errorf("cannot access %q on null", seg)
	case *Map:
		if v, ok := t.Get(seg); ok {
			return v, nil
		}
		return nil, fmt.Errorf("no entry %q", seg)
	case map[string]any:
		if v, ok := t[seg]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("no binding %q", seg)
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("sequence index %q is not numeric", seg)
		}
		if idx < 0 || idx >= len(t) {
			return nil, fmt.Errorf("sequence index %d out of range", idx)
		}
		return t[idx], nil
	}
	return reflectGet(owner, seg)
}

// reflectGet resolves attribute-style access on opaque host values: bound
// methods first, then exported struct fields.
func reflectGet(owner any, seg string) (any, error) {
	rv := reflect.ValueOf(owner)
	name := exportedName(seg)

	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), nil
	}
	elem := rv
	for elem.Kind() == reflect.Ptr {
		if elem.IsNil() {
			return nil, fmt.Errorf("cannot access %q on nil pointer", seg)
		}
		elem = elem.Elem()
	}
	if elem.Kind() == reflect.Struct {
		if f := elem.FieldByName(name); f.IsValid() && f.CanInterface() {
			return f.Interface(), nil
		}
		if m := elem.MethodByName(name); m.IsValid() {
			return m.Interface(), nil
		}
	}
	return nil, fmt.Errorf("value of type %T has no attribute %q", owner, seg)
}

func setAttr(owner any, seg string, value any) error {
	switch t := owner.(type) {
	case *Map:
		t.Set(seg, value)
		return nil
	case map[string]any:
		t[seg] = value
		return nil
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil {
			return fmt.Errorf("sequence index %q is not numeric", seg)
		}
		if idx < 0 || idx >= len(t) {
			return fmt.Errorf("sequence index %d out of range", idx)
		}
		t[idx] = value
		return nil
	}

	rv := reflect.ValueOf(owner)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return fmt.Errorf("cannot assign %q on nil pointer", seg)
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		f := rv.FieldByName(exportedName(seg))
		if f.IsValid() && f.CanSet() {
			v := reflect.ValueOf(value)
			if value == nil {
				f.Set(reflect.Zero(f.Type()))
				return nil
			}
			if !v.Type().AssignableTo(f.Type()) {
				if v.Type().ConvertibleTo(f.Type()) {
					v = v.Convert(f.Type())
				} else {
					return fmt.Errorf("cannot assign %T to field %q", value, seg)
				}
			}
			f.Set(v)
			return nil
		}
	}
	return fmt.Errorf("value of type %T does not support assignment of %q", owner, seg)
}

// exportedName maps a spec-side attribute name onto Go's exported-identifier
// convention, so `version` reaches a `Version` field.
func exportedName(seg string) string {
	if seg == "" {
		return seg
	}
	r := []rune(seg)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
