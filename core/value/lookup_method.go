package value

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoideaopen/msc/core/classes"
	"github.com/anoideaopen/msc/core/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LookupMethodValue looks up an exported method by name and parameter types from a
// class. Methods promoted from embedded fields are found as well.
type LookupMethodValue struct {
	target         Value[*classes.Class]
	methodName     string
	parameterTypes []Value[*classes.Class]
}

// NewLookupMethodValue creates a LookupMethodValue.
func NewLookupMethodValue(
	target Value[*classes.Class],
	methodName string,
	parameterTypes []Value[*classes.Class],
) (*LookupMethodValue, error) {
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

	return &LookupMethodValue{
		target:         target,
		methodName:     methodName,
		parameterTypes: append(make([]Value[*classes.Class], 0, len(parameterTypes)), parameterTypes...),
	}, nil
}

func (v *LookupMethodValue) Value(ctx context.Context) (*classes.Method, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "LookupMethodValue",
		trace.WithAttributes(
			telemetry.MethodName(v.methodName),
			telemetry.ParameterCount(len(v.parameterTypes)),
		),
	)
	defer span.End()

	method, err := v.resolve(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return method, nil
}

func (v *LookupMethodValue) resolve(ctx context.Context) (*classes.Method, error) {
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

	method, err := targetClass.Method(ctx, v.methodName, types...)
	if err != nil {
		if errors.Is(err, classes.ErrNoSuchMethod) {
			return nil, fmt.Errorf("%w '%s' found on %s", ErrNoSuchMethod, v.methodName, targetClass)
		}
		return nil, err
	}

	return method, nil
}
