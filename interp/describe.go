package interp

import (
	"unicode/utf8"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

type Description struct {
	TypeName   string
	IsCallable bool
	Preview    string
}

// Describer inspects values for the variable list and documentation.
type Describer interface {
	Describe(v starlark.Value) Description
}

type Variable struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	Preview string `json:"value" yaml:"value"`
}

// StarlarkDescriber describes values through the starlark.Value interface.
type StarlarkDescriber struct {
	PreviewLimit int
}

var _ Describer = StarlarkDescriber{}

func (d StarlarkDescriber) Describe(v starlark.Value) Description {
	_, callable := v.(starlark.Callable)
	typeName := v.Type()
	if m, ok := v.(*starlarkstruct.Module); ok {
		typeName = "module " + m.Name
	}
	return Description{
		TypeName:   typeName,
		IsCallable: callable,
		Preview:    Truncate(displayString(v), d.PreviewLimit),
	}
}

// Truncate cuts s to at most limit runes, marking the cut with "...".
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 3 {
		return string([]rune(s)[:limit])
	}
	return string([]rune(s)[:limit-3]) + "..."
}

func displayString(v starlark.Value) string {
	if s, ok := v.(starlark.String); ok {
		return string(s)
	}
	return v.String()
}
