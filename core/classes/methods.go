package classes

import (
	"reflect"
	"runtime"
	"sort"
)

// autogeneratedFile is the file the runtime reports for compiler generated wrappers,
// which is what promoted methods of embedded fields compile to.
const autogeneratedFile = "<autogenerated>"

// Methods inspects the type of the given value 'v' using reflection and returns the sorted
// names of the exported methods declared directly on its type. Methods promoted from
// embedded fields are not included unless the type redeclares them.
func Methods(v any) []string {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}

	methodNames := make([]string, 0)
	if t == nil || t.Kind() == reflect.Interface {
		return methodNames
	}

	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if isPromoted(t, method.Name) {
			continue
		}
		methodNames = append(methodNames, method.Name)
	}

	sort.Strings(methodNames)

	return methodNames
}

// discoverMethods returns the declared exported methods of the class type, sorted by name.
func discoverMethods(c *Class) []*Method {
	methods := make([]*Method, 0)
	if c.typ.Kind() == reflect.Interface {
		return methods
	}

	for _, name := range Methods(c.typ) {
		m, _ := c.typ.MethodByName(name)
		methods = append(methods, newMethod(c, name, m.Func))
	}

	return methods
}

// publicMethods returns every exported method in the method set of the class type,
// including the ones promoted from embedded fields.
func publicMethods(c *Class) []*Method {
	methods := make([]*Method, 0)
	if c.typ.Kind() == reflect.Interface {
		return methods
	}

	for i := 0; i < c.typ.NumMethod(); i++ {
		m := c.typ.Method(i)
		methods = append(methods, newMethod(c, m.Name, m.Func))
	}

	return methods
}

// isPromoted reports whether the method called name in the method set of t comes
// from an embedded field rather than from t itself.
func isPromoted(t reflect.Type, name string) bool {
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return false
	}

	embedded := false
	for i := 0; i < st.NumField() && !embedded; i++ {
		field := st.Field(i)
		if field.Anonymous {
			embedded = hasMethod(field.Type, name)
		}
	}
	if !embedded {
		return false
	}

	// A type can redeclare a method it would otherwise inherit. Only the
	// compiler generated wrapper marks the promoted one.
	m, ok := st.MethodByName(name)
	if !ok {
		if m, ok = reflect.PointerTo(st).MethodByName(name); !ok {
			return false
		}
	}

	fn := runtime.FuncForPC(m.Func.Pointer())
	if fn == nil {
		return false
	}
	file, _ := fn.FileLine(fn.Entry())

	return file == autogeneratedFile
}

func hasMethod(t reflect.Type, name string) bool {
	if _, ok := t.MethodByName(name); ok {
		return true
	}
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return false
	}
	_, ok := reflect.PointerTo(t).MethodByName(name)
	return ok
}
