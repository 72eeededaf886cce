package security

import (
	"context"
	"errors"
	"fmt"
)

// ErrAccessDenied is returned when the current access control context does not grant a permission.
var ErrAccessDenied = errors.New("access denied")

type (
	managerKey struct{}
	contextKey struct{}
)

// Manager is a restrictive permission policy. While a Manager is installed in a
// context.Context, every permission check performed with that context is enforced
// against the current AccessControlContext.
type Manager struct {
	defaultContext *AccessControlContext
}

// NewManager creates a Manager. The default context is used for callers that did not
// set their own context with WithContext; a nil default denies everything.
func NewManager(defaultContext *AccessControlContext) *Manager {
	return &Manager{defaultContext: defaultContext}
}

// DefaultContext returns the context applied to callers without their own.
func (m *Manager) DefaultContext() *AccessControlContext {
	return m.defaultContext
}

// WithManager returns a copy of ctx in which m is the active policy.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// ManagerFrom returns the active policy, or nil.
func ManagerFrom(ctx context.Context) *Manager {
	m, _ := ctx.Value(managerKey{}).(*Manager)
	return m
}

// IsEnabled reports whether a restrictive policy is active in ctx.
func IsEnabled(ctx context.Context) bool {
	return ManagerFrom(ctx) != nil
}

// WithContext returns a copy of ctx carrying acc as the caller's permissions.
func WithContext(ctx context.Context, acc *AccessControlContext) context.Context {
	return context.WithValue(ctx, contextKey{}, acc)
}

// Current returns the access control context in effect for ctx: the one set by
// WithContext or DoPrivileged, otherwise the default context of the active manager.
func Current(ctx context.Context) *AccessControlContext {
	if acc, ok := ctx.Value(contextKey{}).(*AccessControlContext); ok && acc != nil {
		return acc
	}
	if m := ManagerFrom(ctx); m != nil {
		return m.defaultContext
	}
	return nil
}

// CheckPermission returns nil when no manager is active in ctx or the current
// context implies p, and an error wrapping ErrAccessDenied otherwise.
func CheckPermission(ctx context.Context, p Permission) error {
	if !IsEnabled(ctx) {
		return nil
	}

	acc := Current(ctx)
	if !acc.Implies(p) {
		if acc == nil {
			return fmt.Errorf("%w: %s: no access control context", ErrAccessDenied, p)
		}
		return fmt.Errorf("%w: %s: context %s", ErrAccessDenied, p, acc)
	}

	return nil
}

// DoPrivileged runs action with acc as the current access control context, replacing
// the caller's permissions for the duration of the call.
func DoPrivileged[T any](
	ctx context.Context,
	acc *AccessControlContext,
	action func(ctx context.Context) (T, error),
) (T, error) {
	return action(WithContext(ctx, acc))
}
