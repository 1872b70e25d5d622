package symbolic

import (
	"strings"

	"github.com/reusee/symbook/interp"
	"go.starlark.net/starlark"
)

// Renderer renders results as LaTeX and tab separated tables.
type Renderer struct{}

var _ interp.Renderer = Renderer{}

func (Renderer) MathMarkup(v starlark.Value) (string, bool) {
	return Latex(v)
}

func (Renderer) Tabular(v starlark.Value) (string, bool) {
	return Tabular(v)
}

// Latex renders expressions, matrices and plain Starlark values.
func Latex(v starlark.Value) (string, bool) {
	switch v := v.(type) {
	case interface{ Latex() string }:
		return v.Latex(), true
	case starlark.Int:
		return v.String(), true
	case starlark.Float:
		return NumberExpr(Float(float64(v))).Latex(), true
	case starlark.Bool:
		if v {
			return `\text{True}`, true
		}
		return `\text{False}`, true
	case starlark.String:
		return `\mathtt{\text{` + escapeLatex(string(v)) + `}}`, true
	case *starlark.List:
		return latexItems(v, `\left[ `, `\right]`)
	case starlark.Tuple:
		return latexItems(v, `\left( `, `\right)`)
	case *starlark.Dict:
		parts := make([]string, 0, v.Len())
		for _, item := range v.Items() {
			k, ok := Latex(item[0])
			if !ok {
				return "", false
			}
			val, ok := Latex(item[1])
			if !ok {
				return "", false
			}
			parts = append(parts, k+" : "+val)
		}
		return `\left\{ ` + strings.Join(parts, `, \  `) + `\right\}`, true
	}
	return "", false
}

func latexItems(seq starlark.Indexable, open, close string) (string, bool) {
	parts := make([]string, 0, seq.Len())
	for i := range seq.Len() {
		s, ok := Latex(seq.Index(i))
		if !ok {
			return "", false
		}
		parts = append(parts, s)
	}
	return open + strings.Join(parts, `, \  `) + close, true
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`#`, `\#`,
	`$`, `\$`,
	`%`, `\%`,
	`&`, `\&`,
	`~`, `\textasciitilde{}`,
)

func escapeLatex(s string) string {
	return latexEscaper.Replace(s)
}

// Tabular renders matrices and lists as tab separated rows.
// A list of rows becomes a table, a flat list a single column.
func Tabular(v starlark.Value) (string, bool) {
	if m, ok := v.(*Matrix); ok {
		return m.Tabular(), true
	}
	seq, ok := v.(starlark.Indexable)
	if !ok || seq.Len() == 0 {
		return "", false
	}
	if _, isString := v.(starlark.String); isString {
		return "", false
	}
	lines := make([]string, 0, seq.Len())
	for i := range seq.Len() {
		item := seq.Index(i)
		row, isRow := item.(starlark.Indexable)
		if _, isString := item.(starlark.String); !isRow || isString {
			lines = append(lines, cellText(item))
			continue
		}
		cells := make([]string, 0, row.Len())
		for j := range row.Len() {
			cells = append(cells, cellText(row.Index(j)))
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n"), true
}

func cellText(v starlark.Value) string {
	if s, ok := v.(starlark.String); ok {
		return string(s)
	}
	return v.String()
}
