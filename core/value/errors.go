package value

import (
	"errors"

	"github.com/anoideaopen/msc/core/classes"
)

// Construction errors.
var (
	ErrNilTarget         = errors.New("target is nil")
	ErrEmptyMethodName   = errors.New("methodName is empty")
	ErrNilParameterTypes = errors.New("parameterTypes is nil")
	ErrNilParameterType  = errors.New("parameter type is nil")
	ErrNilContext        = errors.New("context is nil")
	ErrNilLoader         = errors.New("loader is nil")
	ErrEmptyClassName    = errors.New("className is empty")
)

// Evaluation errors.
var (
	// ErrNoSuchMethod is returned when the target class has no method with the requested
	// name and parameter types. It is the same error as classes.ErrNoSuchMethod.
	ErrNoSuchMethod = classes.ErrNoSuchMethod

	// ErrNilClass is returned when a nested value produced a nil class without an error.
	ErrNilClass = errors.New("class is nil")
)
