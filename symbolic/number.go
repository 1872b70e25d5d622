package symbolic

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Number is an exact rational, or an inexact float when rat is nil.
type Number struct {
	rat *big.Rat
	f   float64
}

func Int(i int64) Number {
	return Number{rat: new(big.Rat).SetInt64(i)}
}

func BigInt(i *big.Int) Number {
	return Number{rat: new(big.Rat).SetInt(i)}
}

func Rat(p, q int64) Number {
	return Number{rat: big.NewRat(p, q)}
}

func Float(f float64) Number {
	return Number{f: f}
}

func (n Number) Exact() bool {
	return n.rat != nil
}

func (n Number) Float64() float64 {
	if n.rat != nil {
		f, _ := n.rat.Float64()
		return f
	}
	return n.f
}

func (n Number) Sign() int {
	if n.rat != nil {
		return n.rat.Sign()
	}
	switch {
	case n.f < 0:
		return -1
	case n.f > 0:
		return 1
	}
	return 0
}

func (n Number) IsZero() bool {
	return n.Sign() == 0
}

func (n Number) IsOne() bool {
	if n.rat != nil {
		return n.rat.IsInt() && n.rat.Num().IsInt64() && n.rat.Num().Int64() == 1
	}
	return n.f == 1
}

func (n Number) IsInteger() bool {
	return n.rat != nil && n.rat.IsInt()
}

func (n Number) Add(m Number) Number {
	if n.rat != nil && m.rat != nil {
		return Number{rat: new(big.Rat).Add(n.rat, m.rat)}
	}
	return Float(n.Float64() + m.Float64())
}

func (n Number) Mul(m Number) Number {
	if n.rat != nil && m.rat != nil {
		return Number{rat: new(big.Rat).Mul(n.rat, m.rat)}
	}
	return Float(n.Float64() * m.Float64())
}

func (n Number) Neg() Number {
	if n.rat != nil {
		return Number{rat: new(big.Rat).Neg(n.rat)}
	}
	return Float(-n.f)
}

func (n Number) Abs() Number {
	if n.Sign() < 0 {
		return n.Neg()
	}
	return n
}

func (n Number) Inv() (Number, error) {
	if n.IsZero() {
		return Number{}, ErrDivisionByZero
	}
	if n.rat != nil {
		return Number{rat: new(big.Rat).Inv(n.rat)}, nil
	}
	return Float(1 / n.f), nil
}

// maxExactExponent bounds exact integer powers.
const maxExactExponent = 4096

// Pow computes n**m. ok is false when the result is not representable
// as a Number, such as an exact irrational root.
func (n Number) Pow(m Number) (ret Number, ok bool, err error) {
	if n.IsZero() && m.Sign() < 0 {
		return Number{}, false, ErrDivisionByZero
	}
	if n.rat != nil && m.IsInteger() {
		e := m.rat.Num()
		if e.CmpAbs(big.NewInt(maxExactExponent)) > 0 {
			return Number{}, false, nil
		}
		exp := new(big.Int).Abs(e)
		num := new(big.Int).Exp(n.rat.Num(), exp, nil)
		den := new(big.Int).Exp(n.rat.Denom(), exp, nil)
		r := new(big.Rat).SetFrac(num, den)
		if e.Sign() < 0 {
			r.Inv(r)
		}
		return Number{rat: r}, true, nil
	}
	if n.rat != nil && m.rat != nil {
		// exact rational exponent: only perfect square roots stay exact
		if m.rat.Denom().Cmp(big.NewInt(2)) == 0 && n.rat.Sign() > 0 {
			num, okNum := exactSqrt(n.rat.Num())
			den, okDen := exactSqrt(n.rat.Denom())
			if okNum && okDen {
				root := Number{rat: new(big.Rat).SetFrac(num, den)}
				return root.Pow(Number{rat: new(big.Rat).SetInt(m.rat.Num())})
			}
		}
		return Number{}, false, nil
	}
	base := n.Float64()
	exp := m.Float64()
	if base < 0 && exp != math.Trunc(exp) {
		return Number{}, false, nil
	}
	return Float(math.Pow(base, exp)), true, nil
}

func exactSqrt(i *big.Int) (*big.Int, bool) {
	if i.Sign() < 0 {
		return nil, false
	}
	root := new(big.Int).Sqrt(i)
	if new(big.Int).Mul(root, root).Cmp(i) != 0 {
		return nil, false
	}
	return root, true
}

func (n Number) Cmp(m Number) int {
	if n.rat != nil && m.rat != nil {
		return n.rat.Cmp(m.rat)
	}
	a, b := n.Float64(), m.Float64()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Num and Denom are the parts of an exact number.
func (n Number) Num() *big.Int {
	return n.rat.Num()
}

func (n Number) Denom() *big.Int {
	return n.rat.Denom()
}

func (n Number) String() string {
	if n.rat == nil {
		return formatFloat(n.f)
	}
	if n.rat.IsInt() {
		return n.rat.Num().String()
	}
	return n.rat.Num().String() + "/" + n.rat.Denom().String()
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "oo"
	case math.IsInf(f, -1):
		return "-oo"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', 15, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
