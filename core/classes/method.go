package classes

import (
	"context"
	"fmt"
	"go/token"
	"reflect"

	"github.com/anoideaopen/msc/core/security"
)

// Method is a handle to a method declared on a Class. The function behind it takes
// the receiver as its first argument.
//
// Handles are values: MakeAccessible returns a new handle and never changes the one
// held in the class metadata.
type Method struct {
	name       string
	class      *Class
	fn         reflect.Value
	params     []reflect.Type
	exported   bool
	accessible bool
}

func newMethod(class *Class, name string, fn reflect.Value) *Method {
	ft := fn.Type()
	params := make([]reflect.Type, 0, ft.NumIn()-1)
	for i := 1; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}

	return &Method{
		name:     name,
		class:    class,
		fn:       fn,
		params:   params,
		exported: token.IsExported(name),
	}
}

// Name returns the method name.
func (m *Method) Name() string {
	return m.name
}

// DeclaringClass returns the class the method was looked up on.
func (m *Method) DeclaringClass() *Class {
	return m.class
}

// ParameterTypes returns the formal parameter types, receiver excluded.
func (m *Method) ParameterTypes() []reflect.Type {
	return append([]reflect.Type(nil), m.params...)
}

// ReturnTypes returns the result types.
func (m *Method) ReturnTypes() []reflect.Type {
	ft := m.fn.Type()
	out := make([]reflect.Type, ft.NumOut())
	for i := range out {
		out[i] = ft.Out(i)
	}
	return out
}

// IsExported reports whether the method name is exported.
func (m *Method) IsExported() bool {
	return m.exported
}

// IsAccessible reports whether the access check of the handle is disabled.
func (m *Method) IsAccessible() bool {
	return m.accessible
}

// MakeAccessible returns a copy of the handle with its access check disabled, so that
// an unexported method can be invoked through it. Under an active security manager the
// current context must grant security.SuppressAccessChecks. Calling it on an accessible
// handle yields an equivalent handle.
func (m *Method) MakeAccessible(ctx context.Context) (*Method, error) {
	if err := security.CheckPermission(ctx, security.SuppressAccessChecks); err != nil {
		return nil, fmt.Errorf("making %s accessible: %w", m, err)
	}

	accessible := *m
	accessible.accessible = true

	return &accessible, nil
}

func (m *Method) matches(types []reflect.Type) bool {
	if len(types) != len(m.params) {
		return false
	}
	for i, t := range types {
		if t != m.params[i] {
			return false
		}
	}
	return true
}

// String returns the method in the form "<class name>.<method>(<parameter types>)".
func (m *Method) String() string {
	return fmt.Sprintf("%s.%s(%s)", m.class.name, m.name, typeList(m.params))
}
