package interp

import (
	"context"

	"go.starlark.net/starlark"
)

// Library is a set of names installed into every evaluation context.
type Library interface {
	Name() string
	// Provides lists the names the library will define, known before it is loaded.
	Provides() []string
	Load(ctx context.Context) (Package, error)
}

// Package is a loaded library.
type Package interface {
	Members() starlark.StringDict
	Docs() []Doc
}

// Graphics is implemented by packages that collect figures while a cell runs.
type Graphics interface {
	ClearFigures()
	HasFigures() bool
	RenderPNG() ([]byte, error)
	CloseFigures()
}

// Renderer produces display forms of a result value.
type Renderer interface {
	MathMarkup(v starlark.Value) (string, bool)
	Tabular(v starlark.Value) (string, bool)
}

// StaticPackage is a Package backed by fixed values.
type StaticPackage struct {
	Values        starlark.StringDict
	Documentation []Doc
}

var _ Package = StaticPackage{}

func (s StaticPackage) Members() starlark.StringDict {
	return s.Values
}

func (s StaticPackage) Docs() []Doc {
	return s.Documentation
}
