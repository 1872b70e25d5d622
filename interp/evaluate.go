package interp

import (
	"context"
	"encoding/base64"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Result is the raw outcome of one cell evaluation.
type Result struct {
	Stdout string
	// HasValue is set when the cell ended with an expression that evaluated without error.
	HasValue    bool
	ResultText  string
	MathMarkup  string
	ImageBase64 string
	Tabular     string
	Error       *ErrorRecord
}

// Evaluate runs code in the persistent namespace.
// A trailing expression statement provides the cell's value.
func (rt *Runtime) Evaluate(ctx context.Context, code string) *Result {
	result := new(Result)

	for _, g := range rt.graphics {
		g.ClearFigures()
	}

	stdout := new(strings.Builder)
	thread := rt.newThread("cell", stdout)
	rt.thread.Store(thread)
	defer rt.thread.Store(nil)
	if reason := rt.cancelReason.Load(); reason != nil {
		thread.Cancel(*reason)
	}
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	defer stop()

	filename := rt.origins.newCell()
	value, hasValue, err := rt.run(thread, filename, code)
	result.Stdout = stdout.String()

	if err != nil {
		result.Error = rt.errorRecord(err, filename)
	} else if hasValue {
		result.HasValue = true
		result.ResultText = displayString(value)
		if rt.config.Renderer != nil && value != starlark.None {
			if markup, ok := rt.config.Renderer.MathMarkup(value); ok {
				result.MathMarkup = markup
			}
			if tabular, ok := rt.config.Renderer.Tabular(value); ok {
				result.Tabular = tabular
			}
		}
	}

	for _, g := range rt.graphics {
		if !g.HasFigures() {
			continue
		}
		png, err := g.RenderPNG()
		g.CloseFigures()
		if err != nil {
			rt.config.Logger.Warn("render figures", "error", err)
			continue
		}
		if result.ImageBase64 == "" {
			result.ImageBase64 = base64.StdEncoding.EncodeToString(png)
		}
	}

	return result
}

func (rt *Runtime) run(thread *starlark.Thread, filename string, code string) (starlark.Value, bool, error) {
	f, err := rt.options.Parse(filename, code, 0)
	if err != nil {
		return nil, false, err
	}
	if len(f.Stmts) == 0 {
		return nil, false, nil
	}

	// undefined names are reported before any statement runs
	check, err := rt.options.Parse(filename, code, 0)
	if err != nil {
		return nil, false, err
	}
	if err := resolve.File(check, rt.namespace.globals.Has, starlark.Universe.Has); err != nil {
		return nil, false, err
	}

	last, isExpr := f.Stmts[len(f.Stmts)-1].(*syntax.ExprStmt)
	if isExpr {
		f.Stmts = f.Stmts[:len(f.Stmts)-1]
	}

	if len(f.Stmts) > 0 {
		if err := rt.execChunk(thread, f); err != nil {
			return nil, false, err
		}
	}
	if !isExpr {
		return nil, false, nil
	}

	value, err := starlark.EvalExprOptions(rt.options, thread, last.X, rt.namespace.globals)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}
