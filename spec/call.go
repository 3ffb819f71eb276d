package spec

import (
	"fmt"
	"reflect"
)

// Callable is the host-side calling convention for scope values that accept
// keyword arguments (hooks and adapter surfaces). Plain Go funcs are invoked
// through reflection instead and take positional arguments only.
type Callable interface {
	Call(args []any, kwargs *Map) (any, error)
}

// CallableFunc adapts a func literal to the Callable interface.
type CallableFunc func(args []any, kwargs *Map) (any, error)

// Call implements Callable.
func (f CallableFunc) Call(args []any, kwargs *Map) (any, error) {
	return f(args, kwargs)
}

// invoke calls a resolved scope value with the feature's arguments. Panics
// inside the callee are recovered into ordinary errors so no failure escapes
// the feature boundary.
func invoke(fn any, args []any, kwargs *Map) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("call panicked: %v", r)
		}
	}()

	if c, ok := fn.(Callable); ok {
		return c.Call(args, kwargs)
	}

	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("value of type %T is not callable", fn)
	}
	if kwargs.Len() > 0 {
		return nil, fmt.Errorf("keyword arguments require a Callable, got %T", fn)
	}
	in, err := convertArgs(rv.Type(), args)
	if err != nil {
		return nil, err
	}
	return splitResults(rv.Call(in))
}

// convertArgs maps specification values onto a func's parameter types,
// honoring variadic signatures.
func convertArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("expected at least %d arguments, got %d", fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("expected %d arguments, got %d", fixed, len(args))
	}

	in := make([]reflect.Value, 0, len(args))
	for i, a := range args {
		var pt reflect.Type
		if i < fixed {
			pt = ft.In(i)
		} else {
			pt = ft.In(ft.NumIn() - 1).Elem()
		}
		v, err := convertArg(a, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in = append(in, v)
	}
	return in, nil
}

func convertArg(a any, pt reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot pass null as %s", pt)
	}
	av := reflect.ValueOf(a)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}
	switch pt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		switch av.Kind() {
		case reflect.Int64, reflect.Float64, reflect.Int, reflect.Float32:
			return av.Convert(pt), nil
		}
	case reflect.Slice:
		if seq, ok := a.([]any); ok {
			out := reflect.MakeSlice(pt, len(seq), len(seq))
			for i, e := range seq {
				ev, err := convertArg(e, pt.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out.Index(i).Set(ev)
			}
			return out, nil
		}
	case reflect.Map:
		if m, ok := a.(*Map); ok && pt.Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(pt, m.Len())
			for _, k := range m.Keys() {
				e, _ := m.Get(k)
				ev, err := convertArg(e, pt.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out.SetMapIndex(reflect.ValueOf(k), ev)
			}
			return out, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot pass %T as %s", a, pt)
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// splitResults maps a reflection call's outputs onto the value domain: a
// trailing non-nil error fails the call, multiple remaining outputs flatten
// to an ordered sequence.
func splitResults(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type().Implements(errType) {
		if e, _ := out[n-1].Interface().(error); e != nil {
			return nil, e
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	seq := make([]any, len(out))
	for i, v := range out {
		seq[i] = v.Interface()
	}
	return seq, nil
}
