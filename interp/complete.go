package interp

import (
	"slices"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

type Completion struct {
	Label  string `json:"label"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

const maxCompletions = 50

var keywords = []string{
	"and", "break", "continue", "def", "elif", "else", "for", "if",
	"in", "lambda", "load", "not", "or", "pass", "return", "while",
}

// Complete lists candidates for the identifier or attribute path ending at offset.
func (rt *Runtime) Complete(code string, offset int) []Completion {
	offset = max(0, min(offset, len(code)))
	prefix := code[:offset]
	start := len(prefix)
	for start > 0 {
		r := rune(prefix[start-1])
		if r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			start--
			continue
		}
		break
	}
	token := prefix[start:]

	var ret []Completion
	if dot := strings.LastIndexByte(token, '.'); dot >= 0 {
		ret = rt.completeAttr(token[:dot], token[dot+1:])
	} else {
		ret = rt.completeName(token)
	}

	slices.SortFunc(ret, func(a, b Completion) int {
		return strings.Compare(a.Label, b.Label)
	})
	ret = slices.CompactFunc(ret, func(a, b Completion) bool {
		return a.Label == b.Label
	})
	if len(ret) > maxCompletions {
		ret = ret[:maxCompletions]
	}
	return ret
}

func (rt *Runtime) completeName(partial string) []Completion {
	var ret []Completion
	for _, name := range rt.namespace.Names() {
		if strings.HasPrefix(name, partial) {
			value, _ := rt.namespace.Get(name)
			ret = append(ret, rt.completion(name, value))
		}
	}
	for name, value := range starlark.Universe {
		if strings.HasPrefix(name, partial) && !rt.namespace.Has(name) {
			ret = append(ret, rt.completion(name, value))
		}
	}
	if partial != "" {
		for _, kw := range keywords {
			if strings.HasPrefix(kw, partial) {
				ret = append(ret, Completion{
					Label: kw,
					Kind:  "keyword",
				})
			}
		}
	}
	return ret
}

func (rt *Runtime) completeAttr(path string, partial string) []Completion {
	value, ok := rt.lookup(path)
	if !ok {
		return nil
	}
	attrs, ok := value.(starlark.HasAttrs)
	if !ok {
		return nil
	}
	var ret []Completion
	for _, name := range attrs.AttrNames() {
		if !strings.HasPrefix(name, partial) {
			continue
		}
		member, err := attrs.Attr(name)
		if err != nil || member == nil {
			continue
		}
		ret = append(ret, rt.completion(name, member))
	}
	return ret
}

// lookup resolves a dotted path against the namespace.
func (rt *Runtime) lookup(path string) (starlark.Value, bool) {
	parts := strings.Split(path, ".")
	value, ok := rt.namespace.Get(parts[0])
	if !ok {
		value, ok = starlark.Universe[parts[0]]
		if !ok {
			return nil, false
		}
	}
	for _, part := range parts[1:] {
		attrs, ok := value.(starlark.HasAttrs)
		if !ok {
			return nil, false
		}
		next, err := attrs.Attr(part)
		if err != nil || next == nil {
			return nil, false
		}
		value = next
	}
	return value, true
}

func (rt *Runtime) completion(name string, value starlark.Value) Completion {
	desc := rt.config.Describer.Describe(value)
	kind := "variable"
	switch {
	case isModule(value):
		kind = "module"
	case desc.IsCallable:
		kind = "function"
	case rt.namespace.IsAmbient(name):
		kind = "constant"
	}
	return Completion{
		Label:  name,
		Kind:   kind,
		Detail: desc.TypeName,
	}
}

func isModule(v starlark.Value) bool {
	_, ok := v.(*starlarkstruct.Module)
	return ok
}
