package symbolic

import "fmt"

// Solve finds the roots of a polynomial of degree at most two in the named symbol.
func Solve(e *Expr, name string) ([]*Expr, error) {
	target := e
	if c, ok := cancel(e); ok {
		// roots of a rational function are roots of its numerator
		target = c
	}
	if target.kind == KindMul {
		var num []*Expr
		for _, f := range target.args {
			if f.kind == KindPow && isNegativeTerm(f.args[1]) {
				continue
			}
			num = append(num, f)
		}
		target = Mul(num...)
	}
	p, ok := toPoly(target, name)
	if !ok {
		return nil, valueError(fmt.Sprintf("cannot solve %s for %s, only polynomials of degree two or less are supported", e, name))
	}
	switch p.degree() {
	case -1:
		return nil, valueError("every value is a solution of 0 = 0")
	case 0:
		return nil, nil
	case 1:
		// a*x + b = 0
		inv, err := p[1].Inv()
		if err != nil {
			return nil, err
		}
		return []*Expr{NumberExpr(p[0].Neg().Mul(inv))}, nil
	case 2:
		a, b, c := NumberExpr(p[2]), NumberExpr(p[1]), NumberExpr(p[0])
		// b**2 - 4*a*c
		disc := Sub(Mul(b, b), Mul(IntExpr(4), a, c))
		twoA := Mul(IntExpr(2), a)
		if disc.isZero() {
			root, err := Div(Neg(b), twoA)
			if err != nil {
				return nil, err
			}
			return []*Expr{root}, nil
		}
		if disc.num.Sign() < 0 {
			return nil, nil
		}
		root, err := Sqrt(disc)
		if err != nil {
			return nil, err
		}
		lo, err := Div(Sub(Neg(b), root), twoA)
		if err != nil {
			return nil, err
		}
		hi, err := Div(Add(Neg(b), root), twoA)
		if err != nil {
			return nil, err
		}
		if a.num.Sign() < 0 {
			lo, hi = hi, lo
		}
		return []*Expr{lo, hi}, nil
	}
	return nil, valueError(fmt.Sprintf("cannot solve %s for %s, degree %d is above two", e, name, p.degree()))
}
