package symbolic

import (
	"math"
)

// rebuild reconstructs e from new children through the canonical constructors.
func rebuild(e *Expr, args []*Expr) (*Expr, error) {
	switch e.kind {
	case KindAdd:
		return Add(args...), nil
	case KindMul:
		return Mul(args...), nil
	case KindPow:
		return Pow(args[0], args[1])
	case KindFunc:
		return Apply(e.name, args[0])
	}
	return e, nil
}

func mapArgs(e *Expr, fn func(*Expr) (*Expr, error)) (*Expr, error) {
	if len(e.args) == 0 {
		return e, nil
	}
	args := make([]*Expr, 0, len(e.args))
	for _, arg := range e.args {
		a, err := fn(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return rebuild(e, args)
}

// Subs replaces symbols by expressions.
func Subs(e *Expr, mapping map[string]*Expr) (*Expr, error) {
	if e.kind == KindSymbol {
		if r, ok := mapping[e.name]; ok {
			return r, nil
		}
		return e, nil
	}
	return mapArgs(e, func(arg *Expr) (*Expr, error) {
		return Subs(arg, mapping)
	})
}

// Evalf replaces exact numbers and constants by floats and folds what becomes numeric.
func Evalf(e *Expr) (*Expr, error) {
	switch e.kind {
	case KindNumber:
		return NumberExpr(Float(e.num.Float64())), nil
	case KindConstant:
		return NumberExpr(e.num), nil
	}
	return mapArgs(e, Evalf)
}

// EvalFloat evaluates e numerically with symbols bound by env.
func EvalFloat(e *Expr, env map[string]float64) (float64, error) {
	switch e.kind {
	case KindNumber, KindConstant:
		return e.num.Float64(), nil
	case KindSymbol:
		v, ok := env[e.name]
		if !ok {
			return 0, typeError("symbol " + e.name + " has no numeric value")
		}
		return v, nil
	case KindAdd:
		var sum float64
		for _, arg := range e.args {
			v, err := EvalFloat(arg, env)
			if err != nil {
				return 0, err
			}
			sum += v
		}
		return sum, nil
	case KindMul:
		prod := 1.0
		for _, arg := range e.args {
			v, err := EvalFloat(arg, env)
			if err != nil {
				return 0, err
			}
			prod *= v
		}
		return prod, nil
	case KindPow:
		b, err := EvalFloat(e.args[0], env)
		if err != nil {
			return 0, err
		}
		x, err := EvalFloat(e.args[1], env)
		if err != nil {
			return 0, err
		}
		return math.Pow(b, x), nil
	case KindFunc:
		v, err := EvalFloat(e.args[0], env)
		if err != nil {
			return 0, err
		}
		return functions[e.name].eval(v), nil
	}
	return 0, ErrNotNumeric
}

// Diff differentiates e with respect to the symbol name.
func Diff(e *Expr, name string) (*Expr, error) {
	if !e.dependsOn(name) {
		return zero, nil
	}
	switch e.kind {

	case KindSymbol:
		return one, nil

	case KindAdd:
		terms := make([]*Expr, 0, len(e.args))
		for _, arg := range e.args {
			d, err := Diff(arg, name)
			if err != nil {
				return nil, err
			}
			terms = append(terms, d)
		}
		return Add(terms...), nil

	case KindMul:
		terms := make([]*Expr, 0, len(e.args))
		for i, arg := range e.args {
			d, err := Diff(arg, name)
			if err != nil {
				return nil, err
			}
			if d.isZero() {
				continue
			}
			factors := make([]*Expr, 0, len(e.args))
			factors = append(factors, e.args[:i]...)
			factors = append(factors, d)
			factors = append(factors, e.args[i+1:]...)
			terms = append(terms, Mul(factors...))
		}
		return Add(terms...), nil

	case KindPow:
		base, exp := e.args[0], e.args[1]
		db, err := Diff(base, name)
		if err != nil {
			return nil, err
		}
		if !exp.dependsOn(name) {
			reduced, err := Pow(base, Sub(exp, one))
			if err != nil {
				return nil, err
			}
			return Mul(exp, reduced, db), nil
		}
		dx, err := Diff(exp, name)
		if err != nil {
			return nil, err
		}
		logBase, err := Apply("log", base)
		if err != nil {
			return nil, err
		}
		inv, err := Pow(base, minusOne)
		if err != nil {
			return nil, err
		}
		return Mul(e, Add(Mul(dx, logBase), Mul(exp, db, inv))), nil

	case KindFunc:
		arg := e.args[0]
		du, err := Diff(arg, name)
		if err != nil {
			return nil, err
		}
		d, err := functions[e.name].deriv(arg)
		if err != nil {
			return nil, err
		}
		return Mul(d, du), nil

	}
	return zero, nil
}

// maxExpandPower bounds the exponent of a sum expanded by multiplication.
const maxExpandPower = 64

// Expand distributes products and integer powers over sums.
func Expand(e *Expr) (*Expr, error) {
	switch e.kind {

	case KindAdd:
		return mapArgs(e, Expand)

	case KindMul:
		product := one
		for _, arg := range e.args {
			f, err := Expand(arg)
			if err != nil {
				return nil, err
			}
			product = expandProduct(product, f)
		}
		return product, nil

	case KindPow:
		base, err := Expand(e.args[0])
		if err != nil {
			return nil, err
		}
		exp := e.args[1]
		if base.kind == KindAdd && exp.isInteger() && exp.num.Sign() > 0 &&
			exp.num.Num().IsInt64() && exp.num.Num().Int64() <= maxExpandPower {
			n := exp.num.Num().Int64()
			ret := one
			for range n {
				ret = expandProduct(ret, base)
			}
			return ret, nil
		}
		return Pow(base, exp)

	case KindFunc:
		return mapArgs(e, Expand)

	}
	return e, nil
}

func terms(e *Expr) []*Expr {
	if e.kind == KindAdd {
		return e.args
	}
	return []*Expr{e}
}

func expandProduct(a, b *Expr) *Expr {
	ta, tb := terms(a), terms(b)
	products := make([]*Expr, 0, len(ta)*len(tb))
	for _, x := range ta {
		for _, y := range tb {
			products = append(products, Mul(x, y))
		}
	}
	return Add(products...)
}
