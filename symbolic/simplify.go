package symbolic

// Simplify returns the shortest of a few rewritings of e: expansion,
// the Pythagorean identity and cancellation of univariate rational functions.
func Simplify(e *Expr) (*Expr, error) {
	best := e
	consider := func(c *Expr) {
		if c != nil && len(c.str) < len(best.str) {
			best = c
		}
	}
	expanded, err := Expand(e)
	if err != nil {
		return nil, err
	}
	consider(expanded)
	consider(pythagorean(expanded))
	if c, ok := cancel(e); ok {
		consider(c)
	}
	return best, nil
}

// pythagorean rewrites c*sin(u)**2 + c*cos(u)**2 to c.
func pythagorean(e *Expr) *Expr {
	if e.kind != KindAdd {
		return e
	}
	type square struct {
		index int
		coeff Number
	}
	sines := make(map[string]square)
	cosines := make(map[string]square)
	for i, term := range e.args {
		c, rest := splitCoeff(term)
		if rest.kind != KindPow || !rest.args[1].Equal(IntExpr(2)) {
			continue
		}
		fn := rest.args[0]
		if fn.kind != KindFunc {
			continue
		}
		switch fn.name {
		case "sin":
			sines[fn.args[0].str] = square{i, c}
		case "cos":
			cosines[fn.args[0].str] = square{i, c}
		}
	}
	drop := make(map[int]bool)
	var extra []*Expr
	for arg, s := range sines {
		c, ok := cosines[arg]
		if !ok || s.coeff.Cmp(c.coeff) != 0 {
			continue
		}
		drop[s.index] = true
		drop[c.index] = true
		extra = append(extra, NumberExpr(s.coeff))
	}
	if len(drop) == 0 {
		return e
	}
	var rest []*Expr
	for i, term := range e.args {
		if !drop[i] {
			rest = append(rest, term)
		}
	}
	return Add(append(rest, extra...)...)
}

// poly is a dense univariate polynomial with exact coefficients, index is the degree.
type poly []Number

func (p poly) trim() poly {
	for len(p) > 0 && p[len(p)-1].IsZero() {
		p = p[:len(p)-1]
	}
	return p
}

func (p poly) degree() int {
	return len(p) - 1
}

func toPoly(e *Expr, x string) (poly, bool) {
	expanded, err := Expand(e)
	if err != nil {
		return nil, false
	}
	var p poly
	set := func(deg int, c Number) {
		for len(p) <= deg {
			p = append(p, Int(0))
		}
		p[deg] = p[deg].Add(c)
	}
	for _, term := range terms(expanded) {
		c, rest := splitCoeff(term)
		if !c.Exact() {
			return nil, false
		}
		switch {
		case rest.kind == KindNumber:
			if !rest.num.Exact() {
				return nil, false
			}
			set(0, c.Mul(rest.num))
		case rest.kind == KindSymbol && rest.name == x:
			set(1, c)
		case rest.kind == KindPow && rest.args[0].kind == KindSymbol && rest.args[0].name == x &&
			rest.args[1].isInteger() && rest.args[1].num.Sign() > 0 && rest.args[1].num.Num().IsInt64():
			deg := rest.args[1].num.Num().Int64()
			if deg > maxExpandPower {
				return nil, false
			}
			set(int(deg), c)
		default:
			return nil, false
		}
	}
	return p.trim(), true
}

func (p poly) expr(x string) *Expr {
	sym := NewSymbol(x)
	terms := make([]*Expr, 0, len(p))
	for deg, c := range p {
		if c.IsZero() {
			continue
		}
		terms = append(terms, Mul(NumberExpr(c), power(sym, IntExpr(int64(deg)))))
	}
	return Add(terms...)
}

// divmod divides p by a non-zero q.
func (p poly) divmod(q poly) (quo poly, rem poly) {
	rem = append(poly(nil), p...)
	if q.degree() > p.degree() {
		return nil, rem
	}
	quo = make(poly, p.degree()-q.degree()+1)
	for i := range quo {
		quo[i] = Int(0)
	}
	lead, _ := q[q.degree()].Inv()
	for rem = rem.trim(); len(rem) > 0 && rem.degree() >= q.degree(); rem = rem.trim() {
		shift := rem.degree() - q.degree()
		c := rem[rem.degree()].Mul(lead)
		quo[shift] = c
		for i, qc := range q {
			rem[i+shift] = rem[i+shift].Add(qc.Mul(c).Neg())
		}
	}
	return quo.trim(), rem
}

func polyGCD(a, b poly) poly {
	for len(b.trim()) > 0 {
		_, r := a.divmod(b.trim())
		a, b = b.trim(), r
	}
	return a
}

// cancel removes the common factors of a univariate rational function.
func cancel(e *Expr) (*Expr, bool) {
	if e.kind != KindMul && e.kind != KindPow {
		return nil, false
	}
	symbols := e.Symbols()
	if len(symbols) != 1 {
		return nil, false
	}
	x := symbols[0]
	factors := []*Expr{e}
	if e.kind == KindMul {
		factors = e.args
	}
	var nums, dens []*Expr
	for _, f := range factors {
		if f.kind == KindPow && f.args[1].isInteger() && f.args[1].num.Sign() < 0 {
			dens = append(dens, power(f.args[0], Neg(f.args[1])))
			continue
		}
		nums = append(nums, f)
	}
	if len(dens) == 0 {
		return nil, false
	}
	p, ok := toPoly(Mul(nums...), x)
	if !ok {
		return nil, false
	}
	q, ok := toPoly(Mul(dens...), x)
	if !ok || len(q) == 0 {
		return nil, false
	}
	g := polyGCD(p, q)
	if g.degree() < 1 {
		return nil, false
	}
	p, _ = p.divmod(g)
	q, _ = q.divmod(g)
	// make the denominator monic
	lead, err := q[q.degree()].Inv()
	if err != nil {
		return nil, false
	}
	for i := range p {
		p[i] = p[i].Mul(lead)
	}
	for i := range q {
		q[i] = q[i].Mul(lead)
	}
	num := p.expr(x)
	if q.degree() == 0 {
		return num, true
	}
	den, err := Pow(q.expr(x), minusOne)
	if err != nil {
		return nil, false
	}
	return Mul(num, den), true
}
