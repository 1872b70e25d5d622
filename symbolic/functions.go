package symbolic

import (
	"math"
)

type function struct {
	eval func(float64) float64
	// latex command, \operatorname is used when empty
	latex string
	// deriv returns d/du f(u)
	deriv func(u *Expr) (*Expr, error)
	exact func(u *Expr) (*Expr, bool)
}

var functions map[string]function

func init() {
	apply := func(name string, u *Expr) *Expr {
		ret, err := Apply(name, u)
		if err != nil {
			return newExpr(KindFunc, name, []*Expr{u})
		}
		return ret
	}
	at := func(pairs ...*Expr) func(u *Expr) (*Expr, bool) {
		return func(u *Expr) (*Expr, bool) {
			for i := 0; i+1 < len(pairs); i += 2 {
				if u.Equal(pairs[i]) {
					return pairs[i+1], true
				}
			}
			return nil, false
		}
	}

	functions = map[string]function{
		"sin": {
			eval:  math.Sin,
			latex: `\sin`,
			deriv: func(u *Expr) (*Expr, error) {
				return apply("cos", u), nil
			},
			exact: at(zero, zero, Pi, zero),
		},
		"cos": {
			eval:  math.Cos,
			latex: `\cos`,
			deriv: func(u *Expr) (*Expr, error) {
				return Neg(apply("sin", u)), nil
			},
			exact: at(zero, one, Pi, minusOne),
		},
		"tan": {
			eval:  math.Tan,
			latex: `\tan`,
			deriv: func(u *Expr) (*Expr, error) {
				return Add(one, power(apply("tan", u), IntExpr(2))), nil
			},
			exact: at(zero, zero, Pi, zero),
		},
		"exp": {
			eval: math.Exp,
			deriv: func(u *Expr) (*Expr, error) {
				return apply("exp", u), nil
			},
			exact: func(u *Expr) (*Expr, bool) {
				if u.isZero() {
					return one, true
				}
				if u.kind == KindFunc && u.name == "log" {
					return u.args[0], true
				}
				return nil, false
			},
		},
		"log": {
			eval:  math.Log,
			latex: `\log`,
			deriv: func(u *Expr) (*Expr, error) {
				return Pow(u, minusOne)
			},
			exact: func(u *Expr) (*Expr, bool) {
				if u.isExactOne() {
					return zero, true
				}
				if u.Equal(E) {
					return one, true
				}
				if u.kind == KindFunc && u.name == "exp" {
					return u.args[0], true
				}
				return nil, false
			},
		},
		"asin": {
			eval: math.Asin,
			deriv: func(u *Expr) (*Expr, error) {
				return power(Sub(one, power(u, IntExpr(2))), NumberExpr(Rat(-1, 2))), nil
			},
			exact: at(zero, zero),
		},
		"acos": {
			eval: math.Acos,
			deriv: func(u *Expr) (*Expr, error) {
				return Neg(power(Sub(one, power(u, IntExpr(2))), NumberExpr(Rat(-1, 2)))), nil
			},
			exact: at(one, zero),
		},
		"atan": {
			eval: math.Atan,
			deriv: func(u *Expr) (*Expr, error) {
				return power(Add(one, power(u, IntExpr(2))), minusOne), nil
			},
			exact: at(zero, zero),
		},
		"sinh": {
			eval:  math.Sinh,
			latex: `\sinh`,
			deriv: func(u *Expr) (*Expr, error) {
				return apply("cosh", u), nil
			},
			exact: at(zero, zero),
		},
		"cosh": {
			eval:  math.Cosh,
			latex: `\cosh`,
			deriv: func(u *Expr) (*Expr, error) {
				return apply("sinh", u), nil
			},
			exact: at(zero, one),
		},
		"tanh": {
			eval:  math.Tanh,
			latex: `\tanh`,
			deriv: func(u *Expr) (*Expr, error) {
				return Sub(one, power(apply("tanh", u), IntExpr(2))), nil
			},
			exact: at(zero, zero),
		},
		"abs": {
			eval: math.Abs,
			deriv: func(u *Expr) (*Expr, error) {
				return nil, valueError("abs is not differentiable everywhere")
			},
			exact: func(u *Expr) (*Expr, bool) {
				if u.kind == KindNumber {
					return NumberExpr(u.num.Abs()), true
				}
				return nil, false
			},
		},
	}
}

// FunctionNames lists the elementary functions, without sqrt.
func FunctionNames() []string {
	return []string{
		"sin", "cos", "tan", "exp", "log",
		"asin", "acos", "atan", "sinh", "cosh", "tanh", "abs",
	}
}
