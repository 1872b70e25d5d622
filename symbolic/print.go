package symbolic

import (
	"strings"
	"unicode"
)

// isNegativeTerm reports whether e prints with a leading minus sign.
func isNegativeTerm(e *Expr) bool {
	switch e.kind {
	case KindNumber:
		return e.num.Sign() < 0
	case KindMul:
		return e.args[0].kind == KindNumber && e.args[0].num.Sign() < 0
	}
	return false
}

// fraction splits a product into sign, numerator and denominator factors.
func fraction(e *Expr) (negative bool, num []*Expr, den []*Expr) {
	factors := []*Expr{e}
	if e.kind == KindMul {
		factors = e.args
	}
	for _, f := range factors {
		switch {
		case f.kind == KindNumber:
			n := f.num
			if n.Sign() < 0 {
				negative = true
				n = n.Neg()
			}
			if !n.Exact() {
				if !n.IsOne() || len(factors) == 1 {
					num = append(num, NumberExpr(n))
				}
				continue
			}
			if n.IsInteger() {
				if !n.IsOne() || len(factors) == 1 {
					num = append(num, NumberExpr(n))
				}
				continue
			}
			if p := n.Num(); !(p.IsInt64() && p.Int64() == 1) {
				num = append(num, NumberExpr(BigInt(p)))
			}
			den = append(den, NumberExpr(BigInt(n.Denom())))
		case f.kind == KindPow && isNegativeTerm(f.args[1]):
			den = append(den, power(f.args[0], Neg(f.args[1])))
		default:
			num = append(num, f)
		}
	}
	return
}

func (e *Expr) format() string {
	switch e.kind {

	case KindNumber:
		return e.num.String()

	case KindSymbol, KindConstant:
		return e.name

	case KindAdd:
		buf := new(strings.Builder)
		for i, term := range e.args {
			if i == 0 {
				buf.WriteString(term.str)
				continue
			}
			if isNegativeTerm(term) {
				buf.WriteString(" - ")
				buf.WriteString(Neg(term).str)
			} else {
				buf.WriteString(" + ")
				buf.WriteString(term.str)
			}
		}
		return buf.String()

	case KindMul:
		negative, num, den := fraction(e)
		buf := new(strings.Builder)
		if negative {
			buf.WriteString("-")
		}
		if len(num) == 0 {
			buf.WriteString("1")
		}
		for i, f := range num {
			if i > 0 {
				buf.WriteString("*")
			}
			buf.WriteString(parenthesize(f, precMul))
		}
		if len(den) > 0 {
			buf.WriteString("/")
			if len(den) == 1 {
				buf.WriteString(parenthesize(den[0], precPow))
			} else {
				parts := make([]string, 0, len(den))
				for _, f := range den {
					parts = append(parts, parenthesize(f, precMul))
				}
				buf.WriteString("(" + strings.Join(parts, "*") + ")")
			}
		}
		return buf.String()

	case KindPow:
		base, exp := e.args[0], e.args[1]
		if exp.Equal(half) {
			return "sqrt(" + base.str + ")"
		}
		if isNegativeTerm(exp) {
			inv := power(base, Neg(exp))
			return "1/" + parenthesize(inv, precPow)
		}
		return parenthesize(base, precPow+1) + "**" + parenthesize(exp, precPow)

	case KindFunc:
		return e.name + "(" + e.args[0].str + ")"

	}
	return "?"
}

const (
	precAdd = iota + 1
	precMul
	precPow
	precAtom
)

func precedence(e *Expr) int {
	switch e.kind {
	case KindAdd:
		return precAdd
	case KindMul:
		return precMul
	case KindPow:
		if e.args[1].Equal(half) {
			return precAtom
		}
		if isNegativeTerm(e.args[1]) {
			return precMul
		}
		return precPow
	case KindNumber:
		if e.num.Sign() < 0 {
			return precAdd
		}
		if e.num.Exact() && !e.num.IsInteger() {
			return precMul
		}
	}
	return precAtom
}

func parenthesize(e *Expr, prec int) string {
	if precedence(e) < prec {
		return "(" + e.str + ")"
	}
	return e.str
}

// Latex renders e as LaTeX math markup.
func (e *Expr) Latex() string {
	switch e.kind {

	case KindNumber:
		n := e.num
		if n.Exact() && !n.IsInteger() {
			sign := ""
			if n.Sign() < 0 {
				sign = "-"
				n = n.Neg()
			}
			return sign + `\frac{` + n.Num().String() + `}{` + n.Denom().String() + `}`
		}
		if !n.Exact() && (strings.Contains(e.str, "e") || e.str == "oo" || e.str == "-oo") {
			switch e.str {
			case "oo":
				return `\infty`
			case "-oo":
				return `-\infty`
			}
			mantissa, exponent, _ := strings.Cut(e.str, "e")
			return mantissa + ` \cdot 10^{` + strings.TrimPrefix(exponent, "+") + `}`
		}
		return e.str

	case KindSymbol:
		return latexSymbol(e.name)

	case KindConstant:
		if e.name == "pi" {
			return `\pi`
		}
		return "e"

	case KindAdd:
		buf := new(strings.Builder)
		for i, term := range e.args {
			if i == 0 {
				buf.WriteString(term.Latex())
				continue
			}
			if isNegativeTerm(term) {
				buf.WriteString(" - ")
				buf.WriteString(Neg(term).Latex())
			} else {
				buf.WriteString(" + ")
				buf.WriteString(term.Latex())
			}
		}
		return buf.String()

	case KindMul:
		negative, num, den := fraction(e)
		sign := ""
		if negative {
			sign = "-"
		}
		if len(den) == 0 {
			return sign + latexProduct(num)
		}
		numerator := "1"
		if len(num) > 0 {
			numerator = latexProduct(num)
		}
		return sign + `\frac{` + numerator + `}{` + latexProduct(den) + `}`

	case KindPow:
		base, exp := e.args[0], e.args[1]
		if exp.Equal(half) {
			return `\sqrt{` + base.Latex() + `}`
		}
		if isNegativeTerm(exp) {
			return `\frac{1}{` + power(base, Neg(exp)).Latex() + `}`
		}
		if n, ok := exp.Number(); ok && n.Exact() && !n.IsInteger() && n.Num().IsInt64() && n.Num().Int64() == 1 {
			return `\sqrt[` + n.Denom().String() + `]{` + base.Latex() + `}`
		}
		if base.kind == KindFunc && base.name != "exp" && base.name != "abs" {
			fn := functions[base.name]
			return latexFuncName(base.name, fn) + `^{` + exp.Latex() + `}{\left(` + base.args[0].Latex() + ` \right)}`
		}
		b := base.Latex()
		if precedence(base) <= precPow || base.kind == KindFunc {
			b = `\left(` + b + `\right)`
		}
		return b + `^{` + exp.Latex() + `}`

	case KindFunc:
		arg := e.args[0].Latex()
		switch e.name {
		case "exp":
			return `e^{` + arg + `}`
		case "abs":
			return `\left|{` + arg + `}\right|`
		}
		return latexFuncName(e.name, functions[e.name]) + `{\left(` + arg + ` \right)}`

	}
	return e.str
}

func latexFuncName(name string, fn function) string {
	if fn.latex != "" {
		return fn.latex
	}
	return `\operatorname{` + name + `}`
}

func latexProduct(factors []*Expr) string {
	parts := make([]string, 0, len(factors))
	for i, f := range factors {
		s := f.Latex()
		if precedence(f) < precMul {
			s = `\left(` + s + `\right)`
		}
		if i > 0 && f.kind == KindNumber {
			parts = append(parts, `\cdot`)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

var greek = map[string]string{
	"alpha": `\alpha`, "beta": `\beta`, "gamma": `\gamma`, "delta": `\delta`,
	"epsilon": `\epsilon`, "zeta": `\zeta`, "eta": `\eta`, "theta": `\theta`,
	"iota": `\iota`, "kappa": `\kappa`, "lambda": `\lambda`, "mu": `\mu`,
	"nu": `\nu`, "xi": `\xi`, "rho": `\rho`, "sigma": `\sigma`, "tau": `\tau`,
	"upsilon": `\upsilon`, "phi": `\phi`, "chi": `\chi`, "psi": `\psi`,
	"omega": `\omega`, "Gamma": `\Gamma`, "Delta": `\Delta`, "Theta": `\Theta`,
	"Lambda": `\Lambda`, "Xi": `\Xi`, "Pi": `\Pi`, "Sigma": `\Sigma`,
	"Phi": `\Phi`, "Psi": `\Psi`, "Omega": `\Omega`,
}

// latexSymbol renders greek names and subscripts: alpha_1 and x1 become \alpha_{1} and x_{1}.
func latexSymbol(name string) string {
	if base, sub, ok := strings.Cut(name, "_"); ok && base != "" && sub != "" {
		return latexSymbol(base) + "_{" + latexSymbol(sub) + "}"
	}
	if g, ok := greek[name]; ok {
		return g
	}
	i := len(name)
	for i > 0 && unicode.IsDigit(rune(name[i-1])) {
		i--
	}
	if i > 0 && i < len(name) {
		return latexSymbol(name[:i]) + "_{" + name[i:] + "}"
	}
	return name
}
