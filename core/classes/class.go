package classes

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/anoideaopen/msc/core/security"
)

// Class describes a Go type registered in a Registry: its name, its reflect.Type and
// the table of methods declared on it. A Class is immutable once built.
type Class struct {
	name     string
	typ      reflect.Type
	registry *Registry
	declared []*Method
	public   []*Method
}

// Name returns the fully-qualified name of the class.
func (c *Class) Name() string {
	return c.name
}

// Type returns the Go type the class describes.
func (c *Class) Type() reflect.Type {
	return c.typ
}

// Super returns the class of the first embedded field, or nil if the type embeds nothing.
func (c *Class) Super() *Class {
	st := c.typ
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < st.NumField(); i++ {
		if field := st.Field(i); field.Anonymous {
			return c.registry.ForType(field.Type)
		}
	}

	return nil
}

// DeclaredMethods returns the methods declared directly on the class, exported or not.
func (c *Class) DeclaredMethods() []*Method {
	return append([]*Method(nil), c.declared...)
}

// DeclaredMethod returns the method declared directly on the class with the given
// name and exactly the given parameter types, in order. Methods promoted from embedded
// fields are not considered. Under an active security manager the current context
// must grant security.AccessDeclaredMembers.
func (c *Class) DeclaredMethod(ctx context.Context, name string, parameterTypes ...*Class) (*Method, error) {
	if err := security.CheckPermission(ctx, security.AccessDeclaredMembers); err != nil {
		return nil, fmt.Errorf("declared method %s of %s: %w", name, c, err)
	}

	return c.find(c.declared, name, parameterTypes)
}

// Method returns the exported method with the given name and exactly the given
// parameter types, declared on the class or promoted from an embedded field.
func (c *Class) Method(_ context.Context, name string, parameterTypes ...*Class) (*Method, error) {
	return c.find(c.public, name, parameterTypes)
}

func (c *Class) find(methods []*Method, name string, parameterTypes []*Class) (*Method, error) {
	types := make([]reflect.Type, len(parameterTypes))
	for i, pt := range parameterTypes {
		if pt == nil {
			return nil, fmt.Errorf("%w: parameter %d of %s is nil", ErrInvalidClass, i, name)
		}
		types[i] = pt.typ
	}

	for _, m := range methods {
		if m.name == name && m.matches(types) {
			return m, nil
		}
	}

	return nil, fmt.Errorf("%w: %s(%s) on %s", ErrNoSuchMethod, name, typeList(types), c)
}

// String returns "class <name>".
func (c *Class) String() string {
	if c == nil {
		return "<nil>"
	}
	return "class " + c.name
}

func typeList(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
