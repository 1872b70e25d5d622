package interp

import (
	"context"

	starlarkjson "go.starlark.net/lib/json"
	starlarkmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
)

// StdLibrary installs the math and json modules shipped with the interpreter.
type StdLibrary struct{}

var _ Library = StdLibrary{}

func (StdLibrary) Name() string {
	return "std"
}

func (StdLibrary) Provides() []string {
	return []string{"math", "json"}
}

func (StdLibrary) Load(ctx context.Context) (Package, error) {
	return StaticPackage{
		Values: starlark.StringDict{
			"math": starlarkmath.Module,
			"json": starlarkjson.Module,
		},
		Documentation: []Doc{
			{
				Name:    "math",
				Kind:    "module",
				Summary: "Floating point functions: math.sqrt, math.sin, math.floor, math.pi and friends.",
			},
			{
				Name:      "json",
				Kind:      "module",
				Summary:   "JSON encoding: json.encode(value), json.decode(text), json.indent(text).",
				Signature: "json.encode(x)",
			},
		},
	}, nil
}
