package security

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownContext is returned when a policy has no grant with the requested name.
var ErrUnknownContext = errors.New("unknown access control context")

// Policy maps grant names to access control contexts.
type Policy struct {
	contexts map[string]*AccessControlContext
}

// NewPolicy builds a Policy from named permission grants.
func NewPolicy(grants map[string][]Permission) *Policy {
	p := &Policy{contexts: make(map[string]*AccessControlContext, len(grants))}
	for name, perms := range grants {
		p.contexts[name] = NewAccessControlContext(name, perms...)
	}
	return p
}

// Context returns the access control context granted under name.
func (p *Policy) Context(name string) (*AccessControlContext, error) {
	acc, ok := p.contexts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContext, name)
	}
	return acc, nil
}

// Names returns the sorted grant names.
func (p *Policy) Names() []string {
	names := make([]string, 0, len(p.contexts))
	for name := range p.contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
