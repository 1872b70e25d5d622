package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"unicode"

	"github.com/reusee/starlarkutil"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// receiverAndArgs serves builtins used both as functions and as bound methods.
func receiverAndArgs(fn *starlark.Builtin, args starlark.Tuple) (starlark.Value, starlark.Tuple, error) {
	if recv := fn.Receiver(); recv != nil {
		return recv, args, nil
	}
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("%s: missing argument for expr", fn.Name())
	}
	return args[0], args[1:], nil
}

func argExpr(fn *starlark.Builtin, v starlark.Value) (*Expr, error) {
	e, ok := ToExpr(v)
	if !ok {
		return nil, typeError(fmt.Sprintf("%s: got %s, want number or expression", fn.Name(), v.Type()))
	}
	return e, nil
}

func argSymbol(fn *starlark.Builtin, v starlark.Value) (*Expr, error) {
	e, ok := v.(*Expr)
	if !ok || e.kind != KindSymbol {
		return nil, typeError(fmt.Sprintf("%s: got %s, want Symbol", fn.Name(), v.Type()))
	}
	return e, nil
}

// elementwise applies f to an expression or to every entry of a matrix.
func elementwise(fn *starlark.Builtin, v starlark.Value, f func(*Expr) (*Expr, error)) (starlark.Value, error) {
	if m, ok := v.(*Matrix); ok {
		return m.Map(f)
	}
	e, err := argExpr(fn, v)
	if err != nil {
		return nil, err
	}
	return f(e)
}

func diffBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", fn.Name())
	}
	target, rest, err := receiverAndArgs(fn, args)
	if err != nil {
		return nil, err
	}

	// variables, an integer repeats the previous one
	var vars []string
	for _, arg := range rest {
		if n, ok := arg.(starlark.Int); ok {
			count, ok := n.Int64()
			if !ok || count < 0 || len(vars) == 0 {
				return nil, valueError(fmt.Sprintf("%s: bad derivative order %s", fn.Name(), n))
			}
			last := vars[len(vars)-1]
			for i := int64(1); i < count; i++ {
				vars = append(vars, last)
			}
			if count == 0 {
				vars = vars[:len(vars)-1]
			}
			continue
		}
		sym, err := argSymbol(fn, arg)
		if err != nil {
			return nil, err
		}
		vars = append(vars, sym.name)
	}
	if len(rest) == 0 {
		var free []string
		switch target := target.(type) {
		case *Expr:
			free = target.Symbols()
		case *Matrix:
			free = target.Symbols()
		}
		if len(free) != 1 {
			return nil, valueError(fmt.Sprintf("%s: specify the variable, the expression has %d free symbols", fn.Name(), len(free)))
		}
		vars = free
	}

	return elementwise(fn, target, func(e *Expr) (*Expr, error) {
		for _, name := range vars {
			var err error
			e, err = Diff(e, name)
			if err != nil {
				return nil, err
			}
		}
		return e, nil
	})
}

func subsBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	target, rest, err := receiverAndArgs(fn, args)
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]*Expr)
	bind := func(k, v starlark.Value) error {
		sym, err := argSymbol(fn, k)
		if err != nil {
			return err
		}
		value, err := argExpr(fn, v)
		if err != nil {
			return err
		}
		mapping[sym.name] = value
		return nil
	}
	switch len(rest) {
	case 1:
		switch pairs := rest[0].(type) {
		case *starlark.Dict:
			for _, item := range pairs.Items() {
				if err := bind(item[0], item[1]); err != nil {
					return nil, err
				}
			}
		default:
			iter := starlark.Iterate(pairs)
			if iter == nil {
				return nil, typeError(fmt.Sprintf("%s: got %s, want dict or list of pairs", fn.Name(), pairs.Type()))
			}
			defer iter.Done()
			var pair starlark.Value
			for iter.Next(&pair) {
				tuple, ok := pair.(starlark.Indexable)
				if !ok || tuple.Len() != 2 {
					return nil, typeError(fmt.Sprintf("%s: want (symbol, value) pairs", fn.Name()))
				}
				if err := bind(tuple.Index(0), tuple.Index(1)); err != nil {
					return nil, err
				}
			}
		}
	case 2:
		if err := bind(rest[0], rest[1]); err != nil {
			return nil, err
		}
	default:
		return nil, typeError(fmt.Sprintf("%s: want subs(old, new) or subs(mapping)", fn.Name()))
	}
	for _, kv := range kwargs {
		name, _ := starlark.AsString(kv[0])
		if err := bind(NewSymbol(name), kv[1]); err != nil {
			return nil, err
		}
	}
	return elementwise(fn, target, func(e *Expr) (*Expr, error) {
		return Subs(e, mapping)
	})
}

func evalfBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	target, rest, err := receiverAndArgs(fn, args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 || len(kwargs) > 0 {
		return nil, typeError(fmt.Sprintf("%s: takes only the expression", fn.Name()))
	}
	return elementwise(fn, target, Evalf)
}

func expandBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	target, _, err := receiverAndArgs(fn, args)
	if err != nil {
		return nil, err
	}
	return elementwise(fn, target, Expand)
}

func simplifyBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	target, _, err := receiverAndArgs(fn, args)
	if err != nil {
		return nil, err
	}
	return elementwise(fn, target, Simplify)
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func symbolBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	if !isIdentifier(name) {
		return nil, valueError(fmt.Sprintf("%s: invalid symbol name %q", fn.Name(), name))
	}
	return NewSymbol(name), nil
}

func symbolsBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var list string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &list); err != nil {
		return nil, err
	}
	names := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(names) == 0 {
		return nil, valueError(fmt.Sprintf("%s: no symbol names in %q", fn.Name(), list))
	}
	tuple := make(starlark.Tuple, 0, len(names))
	for _, name := range names {
		if !isIdentifier(name) {
			return nil, valueError(fmt.Sprintf("%s: invalid symbol name %q", fn.Name(), name))
		}
		tuple = append(tuple, NewSymbol(name))
	}
	if len(tuple) == 1 {
		return tuple[0], nil
	}
	return tuple, nil
}

func rationalBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var p, q starlark.Int
	q = starlark.MakeInt(1)
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &p, &q); err != nil {
		return nil, err
	}
	if q.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	return NumberExpr(Number{rat: new(big.Rat).SetFrac(p.BigInt(), q.BigInt())}), nil
}

// sympifyBuiltin turns numbers and numeric strings into exact expressions.
func sympifyBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	if s, ok := starlark.AsString(v); ok {
		s = strings.TrimSpace(s)
		if r, ok := new(big.Rat).SetString(s); ok {
			if strings.ContainsAny(s, ".eE") {
				f, _ := r.Float64()
				return NumberExpr(Float(f)), nil
			}
			return NumberExpr(Number{rat: r}), nil
		}
		if isIdentifier(s) {
			return NewSymbol(s), nil
		}
		return nil, valueError(fmt.Sprintf("%s: cannot convert %q", fn.Name(), s))
	}
	if m, ok := v.(*Matrix); ok {
		return m, nil
	}
	return argExpr(fn, v)
}

func functionBuiltin(name string) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var v starlark.Value
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &v); err != nil {
			return nil, err
		}
		return elementwise(fn, v, func(e *Expr) (*Expr, error) {
			return Apply(name, e)
		})
	})
}

func powBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var a, b starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &a, &b); err != nil {
		return nil, err
	}
	exp, err := argExpr(fn, b)
	if err != nil {
		return nil, err
	}
	if m, ok := a.(*Matrix); ok {
		return m.Power(exp)
	}
	base, err := argExpr(fn, a)
	if err != nil {
		return nil, err
	}
	ret, err := Pow(base, exp)
	if err != nil {
		return nil, err
	}
	// plain numbers in, plain number out
	_, aExpr := a.(*Expr)
	_, bExpr := b.(*Expr)
	if !aExpr && !bExpr {
		return FromExpr(ret), nil
	}
	return ret, nil
}

func latexBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	markup, ok := Latex(v)
	if !ok {
		return nil, typeError(fmt.Sprintf("%s: cannot render %s", fn.Name(), v.Type()))
	}
	return starlark.String(markup), nil
}

func lambdifyBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var params, body starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &params, &body); err != nil {
		return nil, err
	}
	var names []string
	if sym, ok := params.(*Expr); ok {
		s, err := argSymbol(fn, sym)
		if err != nil {
			return nil, err
		}
		names = append(names, s.name)
	} else {
		iter := starlark.Iterate(params)
		if iter == nil {
			return nil, typeError(fmt.Sprintf("%s: got %s, want Symbol or list of symbols", fn.Name(), params.Type()))
		}
		defer iter.Done()
		var v starlark.Value
		for iter.Next(&v) {
			s, err := argSymbol(fn, v)
			if err != nil {
				return nil, err
			}
			names = append(names, s.name)
		}
	}
	e, err := argExpr(fn, body)
	if err != nil {
		return nil, err
	}
	f := Lambdify(e, names...)
	return starlark.NewBuiltin("lambda", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) != len(names) {
			return nil, typeError(fmt.Sprintf("%s: got %d arguments, want %d", b.Name(), len(args), len(names)))
		}
		xs := make([]float64, 0, len(args))
		for _, arg := range args {
			x, ok := AsFloat(arg)
			if !ok {
				return nil, typeError(fmt.Sprintf("%s: got %s, want number", b.Name(), arg.Type()))
			}
			xs = append(xs, x)
		}
		y, err := f(xs...)
		if err != nil {
			return nil, err
		}
		return starlark.Float(y), nil
	}), nil
}

// Lambdify compiles e into a numeric function of the named symbols.
func Lambdify(e *Expr, names ...string) func(xs ...float64) (float64, error) {
	return func(xs ...float64) (float64, error) {
		env := make(map[string]float64, len(names))
		for i, name := range names {
			if i < len(xs) {
				env[name] = xs[i]
			}
		}
		return EvalFloat(e, env)
	}
}

func solveBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v, s starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &v, &s); err != nil {
		return nil, err
	}
	e, err := argExpr(fn, v)
	if err != nil {
		return nil, err
	}
	var name string
	if s != nil {
		sym, err := argSymbol(fn, s)
		if err != nil {
			return nil, err
		}
		name = sym.name
	} else {
		free := e.Symbols()
		if len(free) != 1 {
			return nil, valueError(fmt.Sprintf("%s: specify the variable, the expression has %d free symbols", fn.Name(), len(free)))
		}
		name = free[0]
	}
	roots, err := Solve(e, name)
	if err != nil {
		return nil, err
	}
	values := make([]starlark.Value, 0, len(roots))
	for _, root := range roots {
		values = append(values, root)
	}
	return starlark.NewList(values), nil
}

func factorialBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n int
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &n); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, valueError(fmt.Sprintf("%s: negative argument %d", fn.Name(), n))
	}
	if n > 10000 {
		return nil, valueError(fmt.Sprintf("%s: argument %d is too large", fn.Name(), n))
	}
	if n == 0 {
		return starlark.MakeInt(1), nil
	}
	return starlark.MakeBigInt(new(big.Int).MulRange(1, int64(n))), nil
}

func matrixBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var rows starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &rows); err != nil {
		return nil, err
	}
	return MatrixFromValue(rows)
}

func eyeBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n int
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &n); err != nil {
		return nil, err
	}
	if n < 1 || n > maxMatrixSide {
		return nil, valueError(fmt.Sprintf("%s: bad size %d", fn.Name(), n))
	}
	return Identity(n), nil
}

func numericModule() *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "numeric",
		Members: starlark.StringDict{
			"floor": starlarkutil.MakeFunc("floor", math.Floor),
			"ceil":  starlarkutil.MakeFunc("ceil", math.Ceil),
			"round": starlarkutil.MakeFunc("round", math.Round),
			"hypot": starlarkutil.MakeFunc("hypot", math.Hypot),
			"gcd": starlarkutil.MakeFunc("gcd", func(a, b int64) int64 {
				for b != 0 {
					a, b = b, a%b
				}
				if a < 0 {
					return -a
				}
				return a
			}),
		},
	}
}

// Members is the surface installed into every namespace.
func Members() starlark.StringDict {
	members := starlark.StringDict{
		"Symbol":    starlark.NewBuiltin("Symbol", symbolBuiltin),
		"symbols":   starlark.NewBuiltin("symbols", symbolsBuiltin),
		"Rational":  starlark.NewBuiltin("Rational", rationalBuiltin),
		"S":         starlark.NewBuiltin("S", sympifyBuiltin),
		"pi":        Pi,
		"E":         E,
		"sqrt":      functionBuiltin("sqrt"),
		"pow":       starlark.NewBuiltin("pow", powBuiltin),
		"diff":      starlark.NewBuiltin("diff", diffBuiltin),
		"subs":      starlark.NewBuiltin("subs", subsBuiltin),
		"evalf":     starlark.NewBuiltin("evalf", evalfBuiltin),
		"N":         starlark.NewBuiltin("N", evalfBuiltin),
		"expand":    starlark.NewBuiltin("expand", expandBuiltin),
		"simplify":  starlark.NewBuiltin("simplify", simplifyBuiltin),
		"solve":     starlark.NewBuiltin("solve", solveBuiltin),
		"latex":     starlark.NewBuiltin("latex", latexBuiltin),
		"lambdify":  starlark.NewBuiltin("lambdify", lambdifyBuiltin),
		"factorial": starlark.NewBuiltin("factorial", factorialBuiltin),
		"Matrix":    starlark.NewBuiltin("Matrix", matrixBuiltin),
		"eye":       starlark.NewBuiltin("eye", eyeBuiltin),
		"numeric":   numericModule(),
	}
	for _, name := range FunctionNames() {
		members[name] = functionBuiltin(name)
	}
	return members
}
