package security

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Permission is a named right checked before a privileged operation.
type Permission string

// String returns the string representation of the permission
func (p Permission) String() string {
	return string(p)
}

const (
	// AccessDeclaredMembers allows looking up non-promoted and unexported members of a class.
	AccessDeclaredMembers Permission = "accessDeclaredMembers"
	// SuppressAccessChecks allows disabling the access check of a method handle.
	SuppressAccessChecks Permission = "suppressAccessChecks"
	// AllPermission implies every other permission.
	AllPermission Permission = "*"
)

// AccessControlContext is an immutable set of permissions under which
// privileged operations run. It is safe for concurrent use.
type AccessControlContext struct {
	id          uuid.UUID
	name        string
	permissions []Permission
}

// NewAccessControlContext creates a context granting the given permissions.
func NewAccessControlContext(name string, permissions ...Permission) *AccessControlContext {
	perms := slices.Clone(permissions)
	slices.Sort(perms)

	return &AccessControlContext{
		id:          uuid.New(),
		name:        name,
		permissions: slices.Compact(perms),
	}
}

// ID returns the unique identifier of the context.
func (acc *AccessControlContext) ID() uuid.UUID {
	return acc.id
}

// Name returns the name the context was created with.
func (acc *AccessControlContext) Name() string {
	return acc.name
}

// Permissions returns a copy of the granted permissions, sorted.
func (acc *AccessControlContext) Permissions() []Permission {
	return slices.Clone(acc.permissions)
}

// Implies reports whether the context grants p.
func (acc *AccessControlContext) Implies(p Permission) bool {
	if acc == nil {
		return false
	}
	for _, granted := range acc.permissions {
		if granted == AllPermission || granted == p {
			return true
		}
	}
	return false
}

func (acc *AccessControlContext) String() string {
	names := make([]string, len(acc.permissions))
	for i, p := range acc.permissions {
		names[i] = p.String()
	}
	return acc.name + "[" + strings.Join(names, ",") + "]"
}
