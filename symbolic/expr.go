package symbolic

import (
	"cmp"
	"math"
	"slices"
)

type Kind uint8

const (
	KindNumber Kind = iota
	KindSymbol
	KindConstant
	KindAdd
	KindMul
	KindPow
	KindFunc
)

// Expr is an immutable expression tree in canonical form.
// Two expressions are equal when their canonical strings are equal.
type Expr struct {
	kind Kind
	num  Number
	name string
	args []*Expr
	str  string
}

func newExpr(kind Kind, name string, args []*Expr) *Expr {
	e := &Expr{
		kind: kind,
		name: name,
		args: args,
	}
	e.str = e.format()
	return e
}

func NumberExpr(n Number) *Expr {
	return &Expr{
		kind: KindNumber,
		num:  n,
		str:  n.String(),
	}
}

func IntExpr(i int64) *Expr {
	return NumberExpr(Int(i))
}

func NewSymbol(name string) *Expr {
	return &Expr{
		kind: KindSymbol,
		name: name,
		str:  name,
	}
}

var (
	Pi = &Expr{kind: KindConstant, name: "pi", num: Float(math.Pi), str: "pi"}
	E  = &Expr{kind: KindConstant, name: "E", num: Float(math.E), str: "E"}

	zero     = IntExpr(0)
	one      = IntExpr(1)
	minusOne = IntExpr(-1)
	half     = NumberExpr(Rat(1, 2))
)

func (e *Expr) Kind() Kind {
	return e.kind
}

func (e *Expr) Args() []*Expr {
	return slices.Clone(e.args)
}

// Name is the symbol, constant or function name.
func (e *Expr) Name() string {
	return e.name
}

func (e *Expr) IsNumber() bool {
	return e.kind == KindNumber
}

func (e *Expr) Number() (Number, bool) {
	return e.num, e.kind == KindNumber
}

func (e *Expr) Equal(other *Expr) bool {
	return e.str == other.str
}

func (e *Expr) isInteger() bool {
	return e.kind == KindNumber && e.num.IsInteger()
}

func (e *Expr) isExactOne() bool {
	return e.kind == KindNumber && e.num.Exact() && e.num.IsOne()
}

func (e *Expr) isZero() bool {
	return e.kind == KindNumber && e.num.IsZero()
}

func Add(terms ...*Expr) *Expr {
	type term struct {
		coeff Number
		rest  *Expr
	}
	constant := Int(0)
	var order []string
	collected := make(map[string]*term)
	var visit func(*Expr)
	visit = func(e *Expr) {
		switch e.kind {
		case KindAdd:
			for _, arg := range e.args {
				visit(arg)
			}
		case KindNumber:
			constant = constant.Add(e.num)
		default:
			c, rest := splitCoeff(e)
			t, ok := collected[rest.str]
			if !ok {
				collected[rest.str] = &term{coeff: c, rest: rest}
				order = append(order, rest.str)
				return
			}
			t.coeff = t.coeff.Add(c)
		}
	}
	for _, t := range terms {
		visit(t)
	}

	var out []*Expr
	for _, key := range order {
		t := collected[key]
		if t.coeff.IsZero() {
			continue
		}
		out = append(out, scale(t.coeff, t.rest))
	}
	if !constant.IsZero() {
		out = append(out, NumberExpr(constant))
	}
	switch len(out) {
	case 0:
		return NumberExpr(constant)
	case 1:
		return out[0]
	}
	sortTerms(out)
	return newExpr(KindAdd, "", out)
}

func Sub(a, b *Expr) *Expr {
	return Add(a, Neg(b))
}

func Neg(e *Expr) *Expr {
	return Mul(minusOne, e)
}

// splitCoeff separates the numeric coefficient of a product.
func splitCoeff(e *Expr) (Number, *Expr) {
	if e.kind == KindMul && e.args[0].kind == KindNumber {
		rest := e.args[1:]
		if len(rest) == 1 {
			return e.args[0].num, rest[0]
		}
		return e.args[0].num, newExpr(KindMul, "", slices.Clone(rest))
	}
	return Int(1), e
}

func scale(c Number, e *Expr) *Expr {
	if c.Exact() && c.IsOne() {
		return e
	}
	return Mul(NumberExpr(c), e)
}

func degree(e *Expr) float64 {
	switch e.kind {
	case KindSymbol:
		return 1
	case KindPow:
		if exp, ok := e.args[1].Number(); ok {
			return degree(e.args[0]) * exp.Float64()
		}
	case KindMul:
		var d float64
		for _, arg := range e.args {
			d += degree(arg)
		}
		return d
	case KindAdd:
		d := math.Inf(-1)
		for _, arg := range e.args {
			d = max(d, degree(arg))
		}
		return d
	}
	return 0
}

func sortTerms(terms []*Expr) {
	slices.SortStableFunc(terms, func(a, b *Expr) int {
		if c := cmp.Compare(degree(b), degree(a)); c != 0 {
			return c
		}
		// numbers last among equal degrees
		if a.kind == KindNumber || b.kind == KindNumber {
			return cmp.Compare(boolRank(a.kind == KindNumber), boolRank(b.kind == KindNumber))
		}
		_, ra := splitCoeff(a)
		_, rb := splitCoeff(b)
		return cmp.Compare(ra.str, rb.str)
	})
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func Mul(factors ...*Expr) *Expr {
	type powerTerm struct {
		base *Expr
		exps []*Expr
	}
	coeff := Int(1)
	var order []string
	collected := make(map[string]*powerTerm)
	add := func(base, exp *Expr) {
		p, ok := collected[base.str]
		if !ok {
			collected[base.str] = &powerTerm{base: base, exps: []*Expr{exp}}
			order = append(order, base.str)
			return
		}
		p.exps = append(p.exps, exp)
	}
	var visit func(*Expr)
	visit = func(e *Expr) {
		switch e.kind {
		case KindMul:
			for _, arg := range e.args {
				visit(arg)
			}
		case KindNumber:
			coeff = coeff.Mul(e.num)
		case KindPow:
			add(e.args[0], e.args[1])
		default:
			add(e, one)
		}
	}
	for _, f := range factors {
		visit(f)
	}
	if coeff.IsZero() {
		return NumberExpr(coeff)
	}

	var out []*Expr
	var regroup []*Expr
	for _, key := range order {
		p := collected[key]
		f := power(p.base, Add(p.exps...))
		switch f.kind {
		case KindNumber:
			coeff = coeff.Mul(f.num)
		case KindMul:
			regroup = append(regroup, f)
		default:
			out = append(out, f)
		}
	}
	if len(regroup) > 0 {
		return Mul(append(append(regroup, out...), NumberExpr(coeff))...)
	}
	if coeff.IsZero() {
		return NumberExpr(coeff)
	}

	switch {
	case len(out) == 0:
		return NumberExpr(coeff)
	case len(out) == 1 && coeff.Exact() && coeff.IsOne():
		return out[0]
	case len(out) == 1 && out[0].kind == KindAdd && coeff.Exact():
		terms := make([]*Expr, 0, len(out[0].args))
		for _, t := range out[0].args {
			terms = append(terms, Mul(NumberExpr(coeff), t))
		}
		return Add(terms...)
	}

	sortFactors(out)
	if !(coeff.Exact() && coeff.IsOne()) {
		out = append([]*Expr{NumberExpr(coeff)}, out...)
	}
	return newExpr(KindMul, "", out)
}

func sortFactors(factors []*Expr) {
	rank := func(e *Expr) int {
		base := e
		if e.kind == KindPow {
			base = e.args[0]
		}
		switch base.kind {
		case KindNumber, KindConstant:
			return 0
		case KindSymbol:
			return 1
		}
		return 2
	}
	slices.SortStableFunc(factors, func(a, b *Expr) int {
		if c := cmp.Compare(rank(a), rank(b)); c != 0 {
			return c
		}
		return cmp.Compare(baseOf(a).str, baseOf(b).str)
	})
}

func baseOf(e *Expr) *Expr {
	if e.kind == KindPow {
		return e.args[0]
	}
	return e
}

func Div(a, b *Expr) (*Expr, error) {
	inv, err := Pow(b, minusOne)
	if err != nil {
		return nil, err
	}
	return Mul(a, inv), nil
}

func Pow(base, exp *Expr) (*Expr, error) {
	if base.kind == KindNumber && exp.kind == KindNumber {
		n, ok, err := base.num.Pow(exp.num)
		if err != nil {
			return nil, err
		}
		if ok {
			return NumberExpr(n), nil
		}
	}
	if base.isZero() && exp.kind == KindNumber && exp.num.Sign() < 0 {
		return nil, ErrDivisionByZero
	}
	return power(base, exp), nil
}

// power builds base**exp for a base that is not zero.
func power(base, exp *Expr) *Expr {
	if exp.kind == KindNumber && exp.num.Exact() {
		if exp.num.IsZero() {
			return one
		}
		if exp.num.IsOne() {
			return base
		}
	}
	if base.kind == KindNumber {
		if exp.kind == KindNumber {
			if n, ok, err := base.num.Pow(exp.num); err == nil && ok {
				return NumberExpr(n)
			}
		}
		if base.num.Exact() && base.num.IsOne() {
			return base
		}
		if exp.Equal(half) {
			if outside, inside, ok := squareFactor(base.num); ok {
				return Mul(IntExpr(outside), newExpr(KindPow, "", []*Expr{IntExpr(inside), half}))
			}
		}
	}
	if base == E || base.str == E.str {
		return newExpr(KindFunc, "exp", []*Expr{exp})
	}
	if exp.isInteger() {
		switch base.kind {
		case KindPow:
			return power(base.args[0], Mul(base.args[1], exp))
		case KindMul:
			factors := make([]*Expr, 0, len(base.args))
			for _, f := range base.args {
				if f.kind == KindNumber {
					n, ok, err := f.num.Pow(exp.num)
					if err == nil && ok {
						factors = append(factors, NumberExpr(n))
						continue
					}
				}
				factors = append(factors, power(f, exp))
			}
			return Mul(factors...)
		}
	}
	return newExpr(KindPow, "", []*Expr{base, exp})
}

// squareFactor splits a positive integer n into outside**2 * inside.
func squareFactor(n Number) (outside, inside int64, ok bool) {
	if !n.IsInteger() || n.Sign() <= 0 || !n.Num().IsInt64() || n.Num().Int64() > 1e12 {
		return 0, 0, false
	}
	inside = n.Num().Int64()
	outside = 1
	for p := int64(2); p*p <= inside; p++ {
		for inside%(p*p) == 0 {
			inside /= p * p
			outside *= p
		}
	}
	return outside, inside, outside > 1
}

func Sqrt(e *Expr) (*Expr, error) {
	return Pow(e, half)
}

// Apply builds a function application, evaluating it when the argument is inexact or the value is known.
func Apply(name string, arg *Expr) (*Expr, error) {
	if name == "sqrt" {
		return Sqrt(arg)
	}
	fn, ok := functions[name]
	if !ok {
		return nil, valueError("unknown function " + name)
	}
	if arg.kind == KindNumber && !arg.num.Exact() {
		v := fn.eval(arg.num.f)
		if math.IsNaN(v) {
			return nil, valueError("math domain error in " + name)
		}
		return NumberExpr(Float(v)), nil
	}
	if fn.exact != nil {
		if v, ok := fn.exact(arg); ok {
			return v, nil
		}
	}
	return newExpr(KindFunc, name, []*Expr{arg}), nil
}

// Symbols returns the sorted names of free symbols.
func (e *Expr) Symbols() []string {
	set := make(map[string]bool)
	var walk func(*Expr)
	walk = func(e *Expr) {
		if e.kind == KindSymbol {
			set[e.name] = true
		}
		for _, arg := range e.args {
			walk(arg)
		}
	}
	walk(e)
	ret := make([]string, 0, len(set))
	for name := range set {
		ret = append(ret, name)
	}
	slices.Sort(ret)
	return ret
}

func (e *Expr) dependsOn(name string) bool {
	if e.kind == KindSymbol {
		return e.name == name
	}
	for _, arg := range e.args {
		if arg.dependsOn(name) {
			return true
		}
	}
	return false
}
