package value

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoideaopen/msc/core/classes"
	"github.com/anoideaopen/msc/core/logger"
	"github.com/anoideaopen/msc/core/security"
	"github.com/anoideaopen/msc/core/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LookupDeclaredMethodValue looks up a possibly unexported method by name and parameter
// types from a class. Only methods declared on the class itself are searched, methods
// promoted from embedded fields are not. This may be considerably slower than
// LookupMethodValue, which should be used whenever the method is exported.
type LookupDeclaredMethodValue struct {
	target         Value[*classes.Class]
	methodName     string
	parameterTypes []Value[*classes.Class]
	accessContext  *security.AccessControlContext
	makeAccessible bool
}

// NewLookupDeclaredMethodValue creates a LookupDeclaredMethodValue.
//
// Parameters:
//   - target: the class in which to look for the method.
//   - methodName: the name of the method.
//   - parameterTypes: the method parameter types, in order. Use an empty slice for a
//     method without parameters; nil is rejected.
//   - accessContext: the access control context the lookup runs under when a security
//     manager is active.
//   - makeAccessible: true to return a handle with the access check disabled.
func NewLookupDeclaredMethodValue(
	target Value[*classes.Class],
	methodName string,
	parameterTypes []Value[*classes.Class],
	accessContext *security.AccessControlContext,
	makeAccessible bool,
) (*LookupDeclaredMethodValue, error) {
	if isNil(target) {
		return nil, ErrNilTarget
	}
	if methodName == "" {
		return nil, ErrEmptyMethodName
	}
	if parameterTypes == nil {
		return nil, ErrNilParameterTypes
	}
	for i, pt := range parameterTypes {
		if isNil(pt) {
			return nil, fmt.Errorf("%w: index %d", ErrNilParameterType, i)
		}
	}
	if accessContext == nil {
		return nil, ErrNilContext
	}

	return &LookupDeclaredMethodValue{
		target:         target,
		methodName:     methodName,
		parameterTypes: append(make([]Value[*classes.Class], 0, len(parameterTypes)), parameterTypes...),
		accessContext:  accessContext,
		makeAccessible: makeAccessible,
	}, nil
}

// Value resolves the parameter types in order, then the target class, and looks the
// method up. When a security manager is active in ctx the lookup, and making the
// method accessible, run with exactly the permissions of the captured context.
func (v *LookupDeclaredMethodValue) Value(ctx context.Context) (*classes.Method, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "LookupDeclaredMethodValue",
		trace.WithAttributes(
			telemetry.MethodName(v.methodName),
			telemetry.ParameterCount(len(v.parameterTypes)),
			telemetry.MakeAccessible(v.makeAccessible),
		),
	)
	defer span.End()

	method, err := v.resolve(ctx, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return method, nil
}

func (v *LookupDeclaredMethodValue) resolve(ctx context.Context, span trace.Span) (*classes.Method, error) {
	types, err := resolveClasses(ctx, v.parameterTypes)
	if err != nil {
		return nil, err
	}

	targetClass, err := v.target.Value(ctx)
	if err != nil {
		return nil, err
	}
	if targetClass == nil {
		return nil, fmt.Errorf("%w: target of method '%s'", ErrNilClass, v.methodName)
	}
	span.SetAttributes(telemetry.ClassName(targetClass.Name()))

	if security.IsEnabled(ctx) {
		span.SetAttributes(
			telemetry.Privileged(true),
			telemetry.ContextID(v.accessContext.ID().String()),
		)
		return security.DoPrivileged(ctx, v.accessContext, func(ctx context.Context) (*classes.Method, error) {
			return v.lookup(ctx, targetClass, types)
		})
	}

	return v.lookup(ctx, targetClass, types)
}

func (v *LookupDeclaredMethodValue) lookup(
	ctx context.Context,
	targetClass *classes.Class,
	types []*classes.Class,
) (*classes.Method, error) {
	method, err := targetClass.DeclaredMethod(ctx, v.methodName, types...)
	if err != nil {
		if errors.Is(err, classes.ErrNoSuchMethod) {
			return nil, fmt.Errorf("%w '%s' found on %s", ErrNoSuchMethod, v.methodName, targetClass)
		}
		return nil, err
	}

	if v.makeAccessible {
		if method, err = method.MakeAccessible(ctx); err != nil {
			return nil, err
		}
	}

	logger.Logger().WithFields(logrus.Fields{
		"method":     method.String(),
		"accessible": method.IsAccessible(),
		"context":    v.accessContext.Name(),
	}).Debug("declared method resolved")

	return method, nil
}

// resolveClasses evaluates the values in order and stops at the first failure.
func resolveClasses(ctx context.Context, values []Value[*classes.Class]) ([]*classes.Class, error) {
	types := make([]*classes.Class, len(values))
	for i, v := range values {
		t, err := v.Value(ctx)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("%w: parameter type %d", ErrNilClass, i)
		}
		types[i] = t
	}
	return types, nil
}
