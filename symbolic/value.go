package symbolic

import (
	"fmt"
	"hash/fnv"
	"math/big"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var (
	_ starlark.Value      = new(Expr)
	_ starlark.HasBinary  = new(Expr)
	_ starlark.HasUnary   = new(Expr)
	_ starlark.Comparable = new(Expr)
	_ starlark.HasAttrs   = new(Expr)
)

func (e *Expr) String() string {
	return e.str
}

func (e *Expr) Type() string {
	switch e.kind {
	case KindNumber:
		switch {
		case !e.num.Exact():
			return "Float"
		case e.num.IsInteger():
			return "Integer"
		}
		return "Rational"
	case KindSymbol:
		return "Symbol"
	case KindConstant:
		return "Constant"
	case KindAdd:
		return "Add"
	case KindMul:
		return "Mul"
	case KindPow:
		return "Pow"
	case KindFunc:
		return e.name
	}
	return "Expr"
}

func (e *Expr) Freeze() {}

func (e *Expr) Truth() starlark.Bool {
	if e.kind == KindNumber {
		return !starlark.Bool(e.num.IsZero())
	}
	return true
}

func (e *Expr) Hash() (uint32, error) {
	h := fnv.New32a()
	h.Write([]byte(e.str))
	return h.Sum32(), nil
}

// ToExpr converts numbers and expressions.
func ToExpr(v starlark.Value) (*Expr, bool) {
	switch v := v.(type) {
	case *Expr:
		return v, true
	case starlark.Int:
		return NumberExpr(BigInt(v.BigInt())), true
	case starlark.Float:
		return NumberExpr(Float(float64(v))), true
	case starlark.Bool:
		if v {
			return one, true
		}
		return zero, true
	}
	return nil, false
}

// FromExpr converts e back to a plain Starlark number when it is an integer or float.
func FromExpr(e *Expr) starlark.Value {
	if e.kind != KindNumber {
		return e
	}
	if !e.num.Exact() {
		return starlark.Float(e.num.f)
	}
	if e.num.IsInteger() {
		return starlark.MakeBigInt(new(big.Int).Set(e.num.Num()))
	}
	return e
}

func (e *Expr) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	other, ok := ToExpr(y)
	if !ok {
		return nil, nil
	}
	l, r := e, other
	if side == starlark.Right {
		l, r = other, e
	}
	switch op {
	case syntax.PLUS:
		return Add(l, r), nil
	case syntax.MINUS:
		return Sub(l, r), nil
	case syntax.STAR:
		return Mul(l, r), nil
	case syntax.SLASH:
		return Div(l, r)
	case syntax.CIRCUMFLEX:
		return Pow(l, r)
	}
	return nil, nil
}

func (e *Expr) Unary(op syntax.Token) (starlark.Value, error) {
	switch op {
	case syntax.MINUS:
		return Neg(e), nil
	case syntax.PLUS:
		return e, nil
	}
	return nil, nil
}

func (e *Expr) CompareSameType(op syntax.Token, y starlark.Value, depth int) (bool, error) {
	other := y.(*Expr)
	switch op {
	case syntax.EQL:
		return e.Equal(other), nil
	case syntax.NEQ:
		return !e.Equal(other), nil
	}
	a, ok := numericValue(e)
	b, ok2 := numericValue(other)
	if !ok || !ok2 {
		return false, typeError(fmt.Sprintf("cannot order %s and %s, they are not numbers", e, other))
	}
	c := a.Cmp(b)
	switch op {
	case syntax.LT:
		return c < 0, nil
	case syntax.LE:
		return c <= 0, nil
	case syntax.GT:
		return c > 0, nil
	case syntax.GE:
		return c >= 0, nil
	}
	return false, fmt.Errorf("unsupported comparison %s", op)
}

// numericValue folds constants and numbers to a Number.
func numericValue(e *Expr) (Number, bool) {
	switch e.kind {
	case KindNumber:
		return e.num, true
	case KindConstant:
		return e.num, true
	}
	if len(e.Symbols()) > 0 {
		return Number{}, false
	}
	v, err := EvalFloat(e, nil)
	if err != nil {
		return Number{}, false
	}
	return Float(v), true
}

// AsFloat converts Starlark numbers and numeric expressions to float64.
func AsFloat(v starlark.Value) (float64, bool) {
	if e, ok := v.(*Expr); ok {
		n, ok := numericValue(e)
		if !ok {
			return 0, false
		}
		return n.Float64(), true
	}
	return starlark.AsFloat(v)
}

var exprAttrs = []string{
	"args", "diff", "evalf", "expand", "free_symbols", "is_number", "name", "simplify", "subs",
}

func (e *Expr) AttrNames() []string {
	return slices.Clone(exprAttrs)
}

func (e *Expr) Attr(name string) (starlark.Value, error) {
	switch name {
	case "args":
		tuple := make(starlark.Tuple, 0, len(e.args))
		for _, arg := range e.args {
			tuple = append(tuple, arg)
		}
		return tuple, nil
	case "free_symbols":
		names := e.Symbols()
		list := make([]starlark.Value, 0, len(names))
		for _, name := range names {
			list = append(list, NewSymbol(name))
		}
		return starlark.NewList(list), nil
	case "is_number":
		_, ok := numericValue(e)
		return starlark.Bool(ok), nil
	case "name":
		if e.kind == KindSymbol || e.kind == KindConstant || e.kind == KindFunc {
			return starlark.String(e.name), nil
		}
		return starlark.None, nil
	case "diff":
		return starlark.NewBuiltin("diff", diffBuiltin).BindReceiver(e), nil
	case "subs":
		return starlark.NewBuiltin("subs", subsBuiltin).BindReceiver(e), nil
	case "evalf":
		return starlark.NewBuiltin("evalf", evalfBuiltin).BindReceiver(e), nil
	case "expand":
		return starlark.NewBuiltin("expand", expandBuiltin).BindReceiver(e), nil
	case "simplify":
		return starlark.NewBuiltin("simplify", simplifyBuiltin).BindReceiver(e), nil
	}
	return nil, nil
}
