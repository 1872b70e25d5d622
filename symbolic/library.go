package symbolic

import (
	"context"
	"maps"
	"slices"

	"github.com/reusee/symbook/interp"
)

// Library is the symbolic math library, installed into every namespace.
type Library struct{}

var _ interp.Library = Library{}

func (Library) Name() string {
	return "symbolic"
}

func (Library) Provides() []string {
	return slices.Sorted(maps.Keys(Members()))
}

func (Library) Load(ctx context.Context) (interp.Package, error) {
	return interp.StaticPackage{
		Values:        Members(),
		Documentation: docs,
	}, nil
}
