package classes

import (
	"fmt"
	"reflect"
)

// Invoke calls the method on receiver with the given arguments and returns its results.
//
// Arguments must be assignable to the parameter types exactly as declared: no conversion
// is attempted and a variadic parameter expects the whole slice as the last argument.
// A nil argument stands for the zero value of a parameter that can be nil.
//
// An unexported method can only be invoked through a handle returned by MakeAccessible.
//
// Example:
//
//	type Service struct {
//	    port int
//	}
//
//	func (s *Service) configure(port int) {
//	    s.port = port
//	}
//
//	class, _ := classes.Register((*Service)(nil),
//	    classes.WithMethod("configure", (*Service).configure))
//	method, _ := class.DeclaredMethod(ctx, "configure", classes.ForType(reflect.TypeOf(0)))
//	method, _ = method.MakeAccessible(ctx)
//	_, err := method.Invoke(&Service{}, 8080)
func (m *Method) Invoke(receiver any, args ...any) ([]any, error) {
	if !m.exported && !m.accessible {
		return nil, fmt.Errorf("%w: %s is not exported", ErrIllegalAccess, m)
	}

	if len(args) != len(m.params) {
		return nil, fmt.Errorf(
			"%w: found %d but expected %d: call %s",
			ErrIncorrectArgumentCount,
			len(args),
			len(m.params),
			m,
		)
	}

	if receiver == nil {
		return nil, fmt.Errorf("%w: nil receiver: call %s", ErrInvalidArgumentValue, m)
	}

	in := make([]reflect.Value, len(args)+1)

	var err error
	if in[0], err = valueOf(receiver, m.fn.Type().In(0)); err != nil {
		return nil, fmt.Errorf("%w: call %s, receiver", err, m)
	}
	for i, arg := range args {
		if in[i+1], err = valueOf(arg, m.params[i]); err != nil {
			return nil, fmt.Errorf("%w: call %s, argument %d", err, m, i)
		}
	}

	var results []reflect.Value
	if m.fn.Type().IsVariadic() {
		results = m.fn.CallSlice(in)
	} else {
		results = m.fn.Call(in)
	}

	output := make([]any, len(results))
	for i, res := range results {
		output[i] = res.Interface()
	}

	return output, nil
}

func valueOf(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: nil for type %s", ErrInvalidArgumentValue, t)
		}
	}

	val := reflect.ValueOf(v)
	if !val.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s", ErrInvalidArgumentValue, val.Type(), t)
	}

	return val, nil
}
