package symbolic

import "github.com/reusee/symbook/interp"

var docs = []interp.Doc{
	{
		Name:      "Symbol",
		Kind:      "function",
		Signature: "Symbol(name)",
		Summary:   "Create a symbol named name.",
		Body:      "a = Symbol(\"a\")\nThe name must be an identifier. x, y, z and t are bound at startup.",
	},
	{
		Name:      "symbols",
		Kind:      "function",
		Signature: "symbols(names)",
		Summary:   "Create several symbols from a space or comma separated string.",
		Body:      "a, b = symbols(\"a b\")\nA single name returns a single symbol.",
	},
	{
		Name:      "Rational",
		Kind:      "function",
		Signature: "Rational(p, q=1)",
		Summary:   "Exact fraction p/q.",
	},
	{
		Name:      "S",
		Kind:      "function",
		Signature: "S(value)",
		Summary:   "Convert a number or numeric string to an exact expression, S(\"1/3\").",
	},
	{
		Name:    "pi",
		Kind:    "constant",
		Summary: "The ratio of a circle's circumference to its diameter, kept exact.",
	},
	{
		Name:    "E",
		Kind:    "constant",
		Summary: "Euler's number, the base of the natural logarithm.",
	},
	{
		Name:      "sqrt",
		Kind:      "function",
		Signature: "sqrt(x)",
		Summary:   "Principal square root, exact for perfect squares.",
	},
	{
		Name:      "pow",
		Kind:      "function",
		Signature: "pow(base, exp)",
		Summary:   "base raised to exp. Works for numbers, expressions and square matrices.",
		Body:      "With symbols, base ^ exp is the same.",
	},
	{
		Name:      "diff",
		Kind:      "function",
		Signature: "diff(expr, *symbols)",
		Summary:   "Derivative of expr. An integer after a symbol repeats it: diff(f, x, 2).",
	},
	{
		Name:      "subs",
		Kind:      "function",
		Signature: "subs(expr, old, new)",
		Summary:   "Substitute values for symbols. Also subs(expr, {x: 1}) and subs(expr, x=1).",
	},
	{
		Name:      "evalf",
		Kind:      "function",
		Signature: "evalf(expr)",
		Summary:   "Numerical value of expr as a float expression.",
	},
	{
		Name:      "N",
		Kind:      "function",
		Signature: "N(expr)",
		Summary:   "Same as evalf.",
	},
	{
		Name:      "expand",
		Kind:      "function",
		Signature: "expand(expr)",
		Summary:   "Multiply out products and integer powers of sums.",
	},
	{
		Name:      "simplify",
		Kind:      "function",
		Signature: "simplify(expr)",
		Summary:   "Try a few rewritings and keep the shortest.",
		Body:      "Expands, applies sin(u)**2 + cos(u)**2 = 1 and cancels common factors of rational functions in one variable.",
	},
	{
		Name:      "solve",
		Kind:      "function",
		Signature: "solve(expr, x)",
		Summary:   "Real roots of expr = 0 for polynomials of degree at most two.",
	},
	{
		Name:      "latex",
		Kind:      "function",
		Signature: "latex(value)",
		Summary:   "LaTeX markup of a value.",
	},
	{
		Name:      "lambdify",
		Kind:      "function",
		Signature: "lambdify(symbols, expr)",
		Summary:   "Numeric function of the given symbols: f = lambdify(x, sin(x)); f(1.0).",
	},
	{
		Name:      "factorial",
		Kind:      "function",
		Signature: "factorial(n)",
		Summary:   "n! as an exact integer.",
	},
	{
		Name:      "Matrix",
		Kind:      "function",
		Signature: "Matrix(rows)",
		Summary:   "Matrix from a list of rows. A flat list makes a column vector.",
		Body:      "Supports +, -, *, m.T, m.det(), m.shape, m[i, j] and pow(m, n).",
	},
	{
		Name:      "eye",
		Kind:      "function",
		Signature: "eye(n)",
		Summary:   "n by n identity matrix.",
	},
	{
		Name:    "numeric",
		Kind:    "module",
		Summary: "Float helpers: numeric.floor, numeric.ceil, numeric.round, numeric.hypot, numeric.gcd.",
	},
	{Name: "sin", Kind: "function", Signature: "sin(x)", Summary: "Sine."},
	{Name: "cos", Kind: "function", Signature: "cos(x)", Summary: "Cosine."},
	{Name: "tan", Kind: "function", Signature: "tan(x)", Summary: "Tangent."},
	{Name: "exp", Kind: "function", Signature: "exp(x)", Summary: "Exponential function."},
	{Name: "log", Kind: "function", Signature: "log(x)", Summary: "Natural logarithm."},
	{Name: "asin", Kind: "function", Signature: "asin(x)", Summary: "Inverse sine."},
	{Name: "acos", Kind: "function", Signature: "acos(x)", Summary: "Inverse cosine."},
	{Name: "atan", Kind: "function", Signature: "atan(x)", Summary: "Inverse tangent."},
	{Name: "sinh", Kind: "function", Signature: "sinh(x)", Summary: "Hyperbolic sine."},
	{Name: "cosh", Kind: "function", Signature: "cosh(x)", Summary: "Hyperbolic cosine."},
	{Name: "tanh", Kind: "function", Signature: "tanh(x)", Summary: "Hyperbolic tangent."},
	{Name: "abs", Kind: "function", Signature: "abs(x)", Summary: "Absolute value."},
}
