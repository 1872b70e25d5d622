package symbolic

import (
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const maxMatrixSide = 64

// Matrix is an immutable dense matrix of expressions.
type Matrix struct {
	rows, cols int
	data       []*Expr
}

var (
	_ starlark.Value      = new(Matrix)
	_ starlark.HasBinary  = new(Matrix)
	_ starlark.HasUnary   = new(Matrix)
	_ starlark.HasAttrs   = new(Matrix)
	_ starlark.Mapping    = new(Matrix)
	_ starlark.Sequence   = new(Matrix)
	_ starlark.Comparable = new(Matrix)
)

func NewMatrix(rows [][]*Expr) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, valueError("matrix must have at least one row")
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, valueError("matrix must have at least one column")
	}
	if len(rows) > maxMatrixSide || cols > maxMatrixSide {
		return nil, valueError(fmt.Sprintf("matrix is larger than %dx%d", maxMatrixSide, maxMatrixSide))
	}
	m := &Matrix{
		rows: len(rows),
		cols: cols,
		data: make([]*Expr, 0, len(rows)*cols),
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, valueError(fmt.Sprintf("row %d has %d entries, want %d", i, len(row), cols))
		}
		m.data = append(m.data, row...)
	}
	return m, nil
}

func Identity(n int) *Matrix {
	m := &Matrix{rows: n, cols: n, data: make([]*Expr, n*n)}
	for i := range n {
		for j := range n {
			if i == j {
				m.data[i*n+j] = one
			} else {
				m.data[i*n+j] = zero
			}
		}
	}
	return m
}

// MatrixFromValue builds a matrix from a list of rows, or a flat list as a column vector.
func MatrixFromValue(v starlark.Value) (*Matrix, error) {
	outer, err := valueList(v)
	if err != nil {
		return nil, err
	}
	if len(outer) == 0 {
		return nil, valueError("matrix must have at least one row")
	}
	var rows [][]*Expr
	for _, item := range outer {
		if e, ok := ToExpr(item); ok {
			rows = append(rows, []*Expr{e})
			continue
		}
		cells, err := valueList(item)
		if err != nil {
			return nil, err
		}
		row := make([]*Expr, 0, len(cells))
		for _, cell := range cells {
			e, ok := ToExpr(cell)
			if !ok {
				return nil, typeError(fmt.Sprintf("matrix entry: got %s, want number or expression", cell.Type()))
			}
			row = append(row, e)
		}
		rows = append(rows, row)
	}
	return NewMatrix(rows)
}

func valueList(v starlark.Value) ([]starlark.Value, error) {
	iter := starlark.Iterate(v)
	if iter == nil {
		return nil, typeError(fmt.Sprintf("got %s, want list", v.Type()))
	}
	defer iter.Done()
	var ret []starlark.Value
	var item starlark.Value
	for iter.Next(&item) {
		ret = append(ret, item)
	}
	return ret, nil
}

func (m *Matrix) At(i, j int) *Expr {
	return m.data[i*m.cols+j]
}

func (m *Matrix) Shape() (int, int) {
	return m.rows, m.cols
}

func (m *Matrix) Map(f func(*Expr) (*Expr, error)) (*Matrix, error) {
	ret := &Matrix{rows: m.rows, cols: m.cols, data: make([]*Expr, len(m.data))}
	for i, e := range m.data {
		v, err := f(e)
		if err != nil {
			return nil, err
		}
		ret.data[i] = v
	}
	return ret, nil
}

func (m *Matrix) Symbols() []string {
	var ret []string
	for _, e := range m.data {
		ret = append(ret, e.Symbols()...)
	}
	slices.Sort(ret)
	return slices.Compact(ret)
}

func (m *Matrix) Transpose() *Matrix {
	ret := &Matrix{rows: m.cols, cols: m.rows, data: make([]*Expr, len(m.data))}
	for i := range m.rows {
		for j := range m.cols {
			ret.data[j*m.rows+i] = m.At(i, j)
		}
	}
	return ret
}

func (m *Matrix) Plus(o *Matrix, sign int64) (*Matrix, error) {
	if m.rows != o.rows || m.cols != o.cols {
		return nil, ErrShape
	}
	ret := &Matrix{rows: m.rows, cols: m.cols, data: make([]*Expr, len(m.data))}
	for i := range m.data {
		ret.data[i] = Add(m.data[i], Mul(IntExpr(sign), o.data[i]))
	}
	return ret, nil
}

func (m *Matrix) Times(o *Matrix) (*Matrix, error) {
	if m.cols != o.rows {
		return nil, ErrShape
	}
	ret := &Matrix{rows: m.rows, cols: o.cols, data: make([]*Expr, m.rows*o.cols)}
	for i := range m.rows {
		for j := range o.cols {
			products := make([]*Expr, 0, m.cols)
			for k := range m.cols {
				products = append(products, Mul(m.At(i, k), o.At(k, j)))
			}
			ret.data[i*o.cols+j] = Add(products...)
		}
	}
	return ret, nil
}

func (m *Matrix) Scale(c *Expr) *Matrix {
	ret, _ := m.Map(func(e *Expr) (*Expr, error) {
		return Mul(c, e), nil
	})
	return ret
}

// Power raises a square matrix to a non-negative integer power.
func (m *Matrix) Power(exp *Expr) (*Matrix, error) {
	if m.rows != m.cols {
		return nil, ErrNotSquare
	}
	if !exp.isInteger() || exp.num.Sign() < 0 || !exp.num.Num().IsInt64() || exp.num.Num().Int64() > 1024 {
		return nil, valueError("matrix power must be a small non-negative integer")
	}
	n := exp.num.Num().Int64()
	ret := Identity(m.rows)
	base := m
	for n > 0 {
		var err error
		if n&1 == 1 {
			ret, err = ret.Times(base)
			if err != nil {
				return nil, err
			}
		}
		n >>= 1
		if n > 0 {
			base, err = base.Times(base)
			if err != nil {
				return nil, err
			}
		}
	}
	return ret, nil
}

const maxDetSide = 8

// Det computes the determinant by cofactor expansion.
func (m *Matrix) Det() (*Expr, error) {
	if m.rows != m.cols {
		return nil, ErrNotSquare
	}
	if m.rows > maxDetSide {
		return nil, valueError(fmt.Sprintf("determinant of a matrix larger than %dx%d is not supported", maxDetSide, maxDetSide))
	}
	return det(m.rows, m.data), nil
}

func det(n int, a []*Expr) *Expr {
	if n == 1 {
		return a[0]
	}
	if n == 2 {
		return Sub(Mul(a[0], a[3]), Mul(a[1], a[2]))
	}
	// cofactor expansion along the first row
	terms := make([]*Expr, 0, n)
	for j := range n {
		if a[j].isZero() {
			continue
		}
		minor := make([]*Expr, 0, (n-1)*(n-1))
		for i := 1; i < n; i++ {
			for k := range n {
				if k != j {
					minor = append(minor, a[i*n+k])
				}
			}
		}
		term := Mul(a[j], det(n-1, minor))
		if j%2 == 1 {
			term = Neg(term)
		}
		terms = append(terms, term)
	}
	ret := Add(terms...)
	if expanded, err := Expand(ret); err == nil {
		return expanded
	}
	return ret
}

func (m *Matrix) String() string {
	buf := new(strings.Builder)
	buf.WriteString("Matrix([")
	for i := range m.rows {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("[")
		for j := range m.cols {
			if j > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(m.At(i, j).str)
		}
		buf.WriteString("]")
	}
	buf.WriteString("])")
	return buf.String()
}

func (m *Matrix) Latex() string {
	buf := new(strings.Builder)
	buf.WriteString(`\left[\begin{matrix}`)
	for i := range m.rows {
		if i > 0 {
			buf.WriteString(`\\`)
		}
		for j := range m.cols {
			if j > 0 {
				buf.WriteString(" & ")
			}
			buf.WriteString(m.At(i, j).Latex())
		}
	}
	buf.WriteString(`\end{matrix}\right]`)
	return buf.String()
}

// Tabular renders rows as lines of tab separated cells.
func (m *Matrix) Tabular() string {
	lines := make([]string, 0, m.rows)
	for i := range m.rows {
		cells := make([]string, 0, m.cols)
		for j := range m.cols {
			cells = append(cells, m.At(i, j).str)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}

func (m *Matrix) Type() string {
	return "Matrix"
}

func (m *Matrix) Freeze() {}

func (m *Matrix) Truth() starlark.Bool {
	return true
}

func (m *Matrix) Hash() (uint32, error) {
	h := fnv.New32a()
	h.Write([]byte(m.String()))
	return h.Sum32(), nil
}

func (m *Matrix) Len() int {
	return len(m.data)
}

func (m *Matrix) Iterate() starlark.Iterator {
	return &matrixIterator{m: m}
}

type matrixIterator struct {
	m *Matrix
	i int
}

func (it *matrixIterator) Next(p *starlark.Value) bool {
	if it.i >= len(it.m.data) {
		return false
	}
	*p = it.m.data[it.i]
	it.i++
	return true
}

func (it *matrixIterator) Done() {}

// Get supports m[i, j] and flat m[k] indexing.
func (m *Matrix) Get(k starlark.Value) (starlark.Value, bool, error) {
	index := func(v starlark.Value, n int) (int, error) {
		i, err := starlark.AsInt32(v)
		if err != nil {
			return 0, typeError(fmt.Sprintf("matrix index: got %s, want int", v.Type()))
		}
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return 0, &kindError{kind: "IndexError", msg: fmt.Sprintf("matrix index %d out of range", i)}
		}
		return i, nil
	}
	if tuple, ok := k.(starlark.Tuple); ok {
		if len(tuple) != 2 {
			return nil, false, typeError("matrix index: want (row, column)")
		}
		i, err := index(tuple[0], m.rows)
		if err != nil {
			return nil, false, err
		}
		j, err := index(tuple[1], m.cols)
		if err != nil {
			return nil, false, err
		}
		return m.At(i, j), true, nil
	}
	i, err := index(k, len(m.data))
	if err != nil {
		return nil, false, err
	}
	return m.data[i], true, nil
}

func (m *Matrix) CompareSameType(op syntax.Token, y starlark.Value, depth int) (bool, error) {
	equal := m.String() == y.(*Matrix).String()
	switch op {
	case syntax.EQL:
		return equal, nil
	case syntax.NEQ:
		return !equal, nil
	}
	return false, typeError("matrices are not ordered")
}

func (m *Matrix) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	if other, ok := y.(*Matrix); ok {
		l, r := m, other
		if side == starlark.Right {
			l, r = other, m
		}
		switch op {
		case syntax.PLUS:
			return l.Plus(r, 1)
		case syntax.MINUS:
			return l.Plus(r, -1)
		case syntax.STAR:
			return l.Times(r)
		}
		return nil, nil
	}
	c, ok := ToExpr(y)
	if !ok {
		return nil, nil
	}
	switch op {
	case syntax.STAR:
		return m.Scale(c), nil
	case syntax.SLASH:
		if side == starlark.Right {
			return nil, nil
		}
		inv, err := Pow(c, minusOne)
		if err != nil {
			return nil, err
		}
		return m.Scale(inv), nil
	case syntax.CIRCUMFLEX:
		if side == starlark.Right {
			return nil, nil
		}
		return m.Power(c)
	}
	return nil, nil
}

func (m *Matrix) Unary(op syntax.Token) (starlark.Value, error) {
	switch op {
	case syntax.MINUS:
		return m.Scale(minusOne), nil
	case syntax.PLUS:
		return m, nil
	}
	return nil, nil
}

var matrixAttrs = []string{"T", "cols", "det", "rows", "shape", "tolist"}

func (m *Matrix) AttrNames() []string {
	return slices.Clone(matrixAttrs)
}

func (m *Matrix) Attr(name string) (starlark.Value, error) {
	switch name {
	case "T":
		return m.Transpose(), nil
	case "rows":
		return starlark.MakeInt(m.rows), nil
	case "cols":
		return starlark.MakeInt(m.cols), nil
	case "shape":
		return starlark.Tuple{starlark.MakeInt(m.rows), starlark.MakeInt(m.cols)}, nil
	case "det":
		return starlark.NewBuiltin("det", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			return fn.Receiver().(*Matrix).Det()
		}).BindReceiver(m), nil
	case "tolist":
		return starlark.NewBuiltin("tolist", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			mat := fn.Receiver().(*Matrix)
			rows := make([]starlark.Value, 0, mat.rows)
			for i := range mat.rows {
				row := make([]starlark.Value, 0, mat.cols)
				for j := range mat.cols {
					row = append(row, mat.At(i, j))
				}
				rows = append(rows, starlark.NewList(row))
			}
			return starlark.NewList(rows), nil
		}).BindReceiver(m), nil
	}
	return nil, nil
}
