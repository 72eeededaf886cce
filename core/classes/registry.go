package classes

import (
	"fmt"
	"go/token"
	"reflect"
	"sync"
)

// Loader resolves classes by fully-qualified name.
type Loader interface {
	ForName(name string) (*Class, error)
}

// Option configures a class being registered.
type Option func(*classSpec)

type methodSpec struct {
	name string
	fn   any
}

type classSpec struct {
	name    string
	methods []methodSpec
}

// WithName sets the name the class is registered under.
func WithName(name string) Option {
	return func(s *classSpec) {
		s.name = name
	}
}

// WithMethod declares a method on the class. fn is a function whose first parameter is
// the class type, usually a method expression such as (*Service).configure. This is the
// only way to declare unexported methods, and to declare several methods sharing a name
// with different parameter types.
func WithMethod(name string, fn any) Option {
	return func(s *classSpec) {
		s.methods = append(s.methods, methodSpec{name: name, fn: fn})
	}
}

// Registry holds the class metadata tables. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Class
	byType map[reflect.Type]*Class
}

// NewRegistry creates a Registry with the predeclared Go types registered under their
// own names ("bool", "string", "int", "error", "any", ...).
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]*Class),
		byType: make(map[reflect.Type]*Class),
	}

	for _, t := range []reflect.Type{
		reflect.TypeOf(false),
		reflect.TypeOf(""),
		reflect.TypeOf(int(0)),
		reflect.TypeOf(int8(0)),
		reflect.TypeOf(int16(0)),
		reflect.TypeOf(int32(0)),
		reflect.TypeOf(int64(0)),
		reflect.TypeOf(uint(0)),
		reflect.TypeOf(uint8(0)),
		reflect.TypeOf(uint16(0)),
		reflect.TypeOf(uint32(0)),
		reflect.TypeOf(uint64(0)),
		reflect.TypeOf(uintptr(0)),
		reflect.TypeOf(float32(0)),
		reflect.TypeOf(float64(0)),
		reflect.TypeOf(complex64(0)),
		reflect.TypeOf(complex128(0)),
		reflect.TypeOf((*error)(nil)).Elem(),
	} {
		r.store(r.newClass(t.String(), t))
	}
	r.store(r.newClass("any", reflect.TypeOf((*any)(nil)).Elem()))

	return r
}

// Register builds the class of v and registers it. v is a value of the type, a typed nil
// pointer such as (*Service)(nil), or a reflect.Type. Exported methods declared on the
// type are discovered; WithMethod adds more. Registering a name again redefines the class.
func (r *Registry) Register(v any, opts ...Option) (*Class, error) {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: untyped nil", ErrInvalidClass)
	}

	spec := &classSpec{name: qualifiedName(t)}
	for _, opt := range opts {
		opt(spec)
	}
	if spec.name == "" {
		return nil, fmt.Errorf("%w: empty name for %s", ErrInvalidClass, t)
	}

	c := r.newClass(spec.name, t)
	for _, ms := range spec.methods {
		m, err := declareMethod(c, ms)
		if err != nil {
			return nil, err
		}
		for _, existing := range c.declared {
			if existing.name == m.name && existing.matches(m.params) {
				return nil, fmt.Errorf("%w, method: '%s'", ErrMethodAlreadyDefined, m)
			}
		}
		c.declared = append(c.declared, m)
		if m.exported {
			c.public = append(c.public, m)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.byName[c.name]; ok && r.byType[previous.typ] == previous {
		delete(r.byType, previous.typ)
	}
	r.store(c)

	return c, nil
}

// ForName returns the class registered under name.
func (r *Registry) ForName(name string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}

	return c, nil
}

// ForType returns the class describing t. Types that were never registered get a class
// built on first use with discovered methods only; it is not reachable through ForName.
func (r *Registry) ForType(t reflect.Type) *Class {
	if t == nil {
		return nil
	}

	r.mu.RLock()
	c, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok = r.byType[t]; ok {
		return c
	}
	c = r.newClass(qualifiedName(t), t)
	r.byType[t] = c

	return c
}

func (r *Registry) newClass(name string, t reflect.Type) *Class {
	c := &Class{
		name:     name,
		typ:      t,
		registry: r,
	}
	c.declared = discoverMethods(c)
	c.public = publicMethods(c)

	return c
}

// store must be called with the write lock held, or during construction.
func (r *Registry) store(c *Class) {
	r.byName[c.name] = c
	r.byType[c.typ] = c
}

func declareMethod(c *Class, ms methodSpec) (*Method, error) {
	if !token.IsIdentifier(ms.name) {
		return nil, fmt.Errorf("%w: invalid name '%s' on %s", ErrInvalidMethod, ms.name, c)
	}

	fn := reflect.ValueOf(ms.fn)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("%w: %s on %s is not a function", ErrInvalidMethod, ms.name, c)
	}

	ft := fn.Type()
	if ft.NumIn() == 0 || ft.In(0) != c.typ {
		return nil, fmt.Errorf(
			"%w: %s on %s must take %s as its first parameter",
			ErrInvalidMethod,
			ms.name,
			c,
			c.typ,
		)
	}

	return newMethod(c, ms.name, fn), nil
}

func qualifiedName(t reflect.Type) string {
	switch {
	case t.Kind() == reflect.Pointer:
		return "*" + qualifiedName(t.Elem())
	case t.Name() != "" && t.PkgPath() != "":
		return t.PkgPath() + "." + t.Name()
	default:
		return t.String()
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package level functions.
func Default() *Registry {
	return defaultRegistry
}

// Register registers a class in the default registry.
func Register(v any, opts ...Option) (*Class, error) {
	return defaultRegistry.Register(v, opts...)
}

// ForName returns a class registered in the default registry.
func ForName(name string) (*Class, error) {
	return defaultRegistry.ForName(name)
}

// ForType returns the class describing t in the default registry.
func ForType(t reflect.Type) *Class {
	return defaultRegistry.ForType(t)
}
