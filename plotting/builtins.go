package plotting

import (
	"fmt"
	"math"

	"github.com/reusee/symbook/symbolic"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

const (
	defaultPoints = 200
	maxPoints     = 100000
)

func floats(fn *starlark.Builtin, v starlark.Value) ([]float64, error) {
	iter := starlark.Iterate(v)
	if iter == nil {
		return nil, fmt.Errorf("%s: got %s, want sequence of numbers", fn.Name(), v.Type())
	}
	defer iter.Done()
	var ret []float64
	var elem starlark.Value
	for iter.Next(&elem) {
		f, ok := symbolic.AsFloat(elem)
		if !ok {
			return nil, fmt.Errorf("%s: got %s, want number", fn.Name(), elem.Type())
		}
		ret = append(ret, f)
	}
	return ret, nil
}

// sampler returns a float function of one variable from an expression or a callable.
func sampler(thread *starlark.Thread, fn *starlark.Builtin, target starlark.Value, variable starlark.Value) (func(float64) (float64, error), error) {
	if callable, ok := target.(starlark.Callable); ok {
		return func(x float64) (float64, error) {
			ret, err := starlark.Call(thread, callable, starlark.Tuple{starlark.Float(x)}, nil)
			if err != nil {
				return 0, err
			}
			f, ok := symbolic.AsFloat(ret)
			if !ok {
				// values outside the domain are skipped
				return math.NaN(), nil
			}
			return f, nil
		}, nil
	}

	e, ok := symbolic.ToExpr(target)
	if !ok {
		return nil, fmt.Errorf("%s: got %s, want expression or callable", fn.Name(), target.Type())
	}
	name := ""
	if variable != nil && variable != starlark.None {
		sym, ok := variable.(*symbolic.Expr)
		if !ok || sym.Kind() != symbolic.KindSymbol {
			return nil, fmt.Errorf("%s: got %s, want Symbol", fn.Name(), variable.Type())
		}
		name = sym.Name()
	} else {
		free := e.Symbols()
		switch len(free) {
		case 0:
		case 1:
			name = free[0]
		default:
			return nil, fmt.Errorf("%s: expression has several symbols %v, pass the variable", fn.Name(), free)
		}
	}
	for _, free := range e.Symbols() {
		if free != name {
			return nil, fmt.Errorf("%s: symbol %s has no value", fn.Name(), free)
		}
	}
	f := symbolic.Lambdify(e, name)
	return func(x float64) (float64, error) {
		y, err := f(x)
		if err != nil {
			return math.NaN(), nil
		}
		return y, nil
	}, nil
}

func sample(f func(float64) (float64, error), lo, hi float64, points int) ([]float64, []float64, error) {
	if points < 2 || points > maxPoints {
		return nil, nil, fmt.Errorf("points must be between 2 and %d", maxPoints)
	}
	if !(hi > lo) {
		return nil, nil, fmt.Errorf("empty range [%v, %v]", lo, hi)
	}
	xs := make([]float64, points)
	ys := make([]float64, points)
	step := (hi - lo) / float64(points-1)
	for i := range xs {
		x := lo + step*float64(i)
		y, err := f(x)
		if err != nil {
			return nil, nil, err
		}
		xs[i] = x
		ys[i] = y
	}
	return xs, ys, nil
}

func (f *Figures) module() *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "plt",
		Members: starlark.StringDict{
			"figure":    starlark.NewBuiltin("figure", f.figureBuiltin),
			"plot":      starlark.NewBuiltin("plot", f.seriesBuiltin(seriesLine)),
			"scatter":   starlark.NewBuiltin("scatter", f.seriesBuiltin(seriesScatter)),
			"plot_expr": starlark.NewBuiltin("plot_expr", f.plotExprBuiltin),
			"title":     starlark.NewBuiltin("title", f.labelBuiltin(func(fig *figure, s string) { fig.title = s })),
			"xlabel":    starlark.NewBuiltin("xlabel", f.labelBuiltin(func(fig *figure, s string) { fig.xlabel = s })),
			"ylabel":    starlark.NewBuiltin("ylabel", f.labelBuiltin(func(fig *figure, s string) { fig.ylabel = s })),
			"grid":      starlark.NewBuiltin("grid", f.gridBuiltin),
			"legend":    starlark.NewBuiltin("legend", f.legendBuiltin),
			"clf":       starlark.NewBuiltin("clf", f.clfBuiltin),
			"close":     starlark.NewBuiltin("close", f.closeBuiltin),
			"show":      starlark.NewBuiltin("show", f.showBuiltin),
		},
	}
}

func (f *Figures) figureBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var title string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "title?", &title); err != nil {
		return nil, err
	}
	f.newFigure(title)
	return starlark.None, nil
}

func (f *Figures) seriesBuiltin(kind seriesKind) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var xsValue, ysValue starlark.Value
		var label string
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "xs", &xsValue, "ys?", &ysValue, "label?", &label); err != nil {
			return nil, err
		}
		xs, err := floats(fn, xsValue)
		if err != nil {
			return nil, err
		}
		var ys []float64
		if ysValue == nil || ysValue == starlark.None {
			// single sequence is plotted against its indices
			ys = xs
			xs = make([]float64, len(ys))
			for i := range xs {
				xs[i] = float64(i)
			}
		} else {
			ys, err = floats(fn, ysValue)
			if err != nil {
				return nil, err
			}
		}
		if len(xs) != len(ys) {
			return nil, fmt.Errorf("%s: xs has %d values, ys has %d", fn.Name(), len(xs), len(ys))
		}
		fig := f.currentFigure()
		fig.series = append(fig.series, series{
			kind:  kind,
			xs:    xs,
			ys:    ys,
			label: label,
		})
		return starlark.None, nil
	}
}

func (f *Figures) plotExprBuiltin(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var target, variable starlark.Value
	lo, hi := starlark.Value(starlark.MakeInt(-10)), starlark.Value(starlark.MakeInt(10))
	points := defaultPoints
	var label string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"f", &target,
		"var?", &variable,
		"lo?", &lo,
		"hi?", &hi,
		"points?", &points,
		"label?", &label,
	); err != nil {
		return nil, err
	}
	return f.addExpr(thread, fn, target, variable, lo, hi, points, label)
}

func (f *Figures) addExpr(thread *starlark.Thread, fn *starlark.Builtin, target, variable, loValue, hiValue starlark.Value, points int, label string) (starlark.Value, error) {
	lo, ok := symbolic.AsFloat(loValue)
	if !ok {
		return nil, fmt.Errorf("%s: got %s for lo, want number", fn.Name(), loValue.Type())
	}
	hi, ok := symbolic.AsFloat(hiValue)
	if !ok {
		return nil, fmt.Errorf("%s: got %s for hi, want number", fn.Name(), hiValue.Type())
	}
	eval, err := sampler(thread, fn, target, variable)
	if err != nil {
		return nil, err
	}
	xs, ys, err := sample(eval, lo, hi, points)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	if label == "" {
		if e, ok := target.(*symbolic.Expr); ok {
			label = e.String()
		}
	}
	fig := f.currentFigure()
	fig.series = append(fig.series, series{
		kind:  seriesLine,
		xs:    xs,
		ys:    ys,
		label: label,
	})
	return starlark.None, nil
}

// plotBuiltin is plot(expr, (x, lo, hi)), drawing into a new figure.
func (f *Figures) plotBuiltin(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var target starlark.Value
	var bounds starlark.Tuple
	points := defaultPoints
	var title string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"f", &target,
		"bounds?", &bounds,
		"points?", &points,
		"title?", &title,
	); err != nil {
		return nil, err
	}
	var variable starlark.Value = starlark.None
	var lo, hi starlark.Value = starlark.MakeInt(-10), starlark.MakeInt(10)
	switch len(bounds) {
	case 0:
	case 3:
		variable, lo, hi = bounds[0], bounds[1], bounds[2]
	default:
		return nil, fmt.Errorf("%s: bounds must be (var, lo, hi)", fn.Name())
	}
	f.newFigure(title)
	return f.addExpr(thread, fn, target, variable, lo, hi, points, "")
}

func (f *Figures) labelBuiltin(set func(*figure, string)) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var text string
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &text); err != nil {
			return nil, err
		}
		set(f.currentFigure(), text)
		return starlark.None, nil
	}
}

func (f *Figures) gridBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	on := true
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "on?", &on); err != nil {
		return nil, err
	}
	f.currentFigure().grid = on
	return starlark.None, nil
}

func (f *Figures) legendBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	f.currentFigure().legend = true
	return starlark.None, nil
}

func (f *Figures) clfBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	if f.current != nil {
		*f.current = figure{}
	}
	return starlark.None, nil
}

func (f *Figures) closeBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	f.CloseFigures()
	return starlark.None, nil
}

// figures are rendered after the cell finishes, show only exists for familiarity
func (f *Figures) showBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return starlark.None, nil
}
