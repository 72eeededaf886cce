package value

import (
	"context"

	"github.com/anoideaopen/msc/core/classes"
)

// LookupClassValue resolves a class by name from a loader. The loader is queried on
// every evaluation, so a class redefined between two evaluations is observed.
type LookupClassValue struct {
	loader    classes.Loader
	className string
}

// NewLookupClassValue creates a LookupClassValue.
func NewLookupClassValue(loader classes.Loader, className string) (*LookupClassValue, error) {
	if isNil(loader) {
		return nil, ErrNilLoader
	}
	if className == "" {
		return nil, ErrEmptyClassName
	}

	return &LookupClassValue{
		loader:    loader,
		className: className,
	}, nil
}

func (v *LookupClassValue) Value(context.Context) (*classes.Class, error) {
	return v.loader.ForName(v.className)
}
