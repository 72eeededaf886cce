package value

import (
	"context"
	"reflect"
)

// Value produces a T on demand. Value may be called any number of times, concurrently,
// and returns an error when the result cannot be produced. ctx carries the ambient
// environment of the evaluation: the active security manager, the caller's access
// control context and the current trace span.
type Value[T any] interface {
	Value(ctx context.Context) (T, error)
}

// Func adapts a function to the Value interface.
type Func[T any] func(ctx context.Context) (T, error)

// Value calls f.
func (f Func[T]) Value(ctx context.Context) (T, error) {
	return f(ctx)
}

// ImmediateValue always returns the value it was created with.
type ImmediateValue[T any] struct {
	value T
}

// NewImmediateValue creates a constant value.
func NewImmediateValue[T any](v T) *ImmediateValue[T] {
	return &ImmediateValue[T]{value: v}
}

func (v *ImmediateValue[T]) Value(context.Context) (T, error) {
	return v.value, nil
}

// isNil reports whether v is nil or an interface holding a nil pointer, map, slice,
// func or channel.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
