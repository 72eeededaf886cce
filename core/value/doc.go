// Package value provides lazily evaluated values for building dependency graphs.
//
// A [Value] produces its result on demand, every time it is asked, possibly by
// evaluating other values first. Nodes hold no state beyond what they capture at
// construction, so a graph can be evaluated any number of times and from several
// goroutines at once. Nothing is cached: a node that looks up a class or a method
// repeats the lookup on each evaluation.
//
// Nodes:
//
//   - [ImmediateValue] and [Func]: a constant and a function adapter.
//   - [LookupClassValue]: a class resolved by name from a [classes.Loader].
//   - [LookupMethodValue]: an exported method resolved by name and parameter types.
//   - [LookupDeclaredMethodValue]: a method declared directly on a class, exported or
//     not, resolved under a caller supplied [security.AccessControlContext] and
//     optionally made accessible.
//
// Example:
//
//	type Service struct{ name string }
//
//	func (s *Service) configure(name string, port int) { ... }
//
//	registry := classes.NewRegistry()
//	_, _ = registry.Register((*Service)(nil),
//	    classes.WithName("example.Service"),
//	    classes.WithMethod("configure", (*Service).configure))
//
//	service, _ := value.NewLookupClassValue(registry, "example.Service")
//	str, _ := value.NewLookupClassValue(registry, "string")
//	num, _ := value.NewLookupClassValue(registry, "int")
//
//	configure, err := value.NewLookupDeclaredMethodValue(
//	    service,
//	    "configure",
//	    []value.Value[*classes.Class]{str, num},
//	    security.NewAccessControlContext("injector", security.AllPermission),
//	    true,
//	)
//	if err != nil {
//	    return err
//	}
//
//	method, err := configure.Value(ctx)
//
// Failures of nested values are returned unchanged. A method that cannot be found is
// reported with [ErrNoSuchMethod]. Both mean the graph is wired incorrectly; retrying
// the same evaluation cannot succeed.
package value
