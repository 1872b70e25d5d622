package interp_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/reusee/symbook/interp"
	"github.com/reusee/symbook/symbolic"
	"go.starlark.net/starlark"
)

func newRuntime(t *testing.T, modify ...func(*interp.Config)) *interp.Runtime {
	t.Helper()
	config := interp.Config{
		Core: []interp.Library{
			symbolic.Library{},
			interp.StdLibrary{},
		},
		Renderer: symbolic.Renderer{},
		Describer: interp.StarlarkDescriber{
			PreviewLimit: 20,
		},
		DefaultSymbols: []string{"x", "y", "z", "t"},
		Constants: map[string]float64{
			"g": 9.8,
		},
	}
	for _, fn := range modify {
		fn(&config)
	}
	rt, err := interp.NewRuntime(context.Background(), config)
	if err != nil {
		t.Fatal(err)
	}
	return rt
}

func evaluate(t *testing.T, rt *interp.Runtime, code string) *interp.Result {
	t.Helper()
	return rt.Evaluate(context.Background(), code)
}

func TestPersistentState(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "a = 1")
	if res.Error != nil || res.HasValue {
		t.Fatalf("got %+v", res)
	}
	res = evaluate(t, rt, "a + 1")
	if res.Error != nil {
		t.Fatal(res.Error)
	}
	if !res.HasValue || res.ResultText != "2" {
		t.Fatalf("got %+v", res)
	}
}

func TestTrailingExpression(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "b = pow(x, 2)\nb + 1")
	if res.Error != nil {
		t.Fatal(res.Error)
	}
	if res.ResultText != "x**2 + 1" {
		t.Fatalf("got %q", res.ResultText)
	}
	if res.MathMarkup != "x^{2} + 1" {
		t.Fatalf("got %q", res.MathMarkup)
	}

	res = evaluate(t, rt, "")
	if res.HasValue || res.Error != nil {
		t.Fatalf("got %+v", res)
	}
}

func TestStdout(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "print('hello')\nprint(1, 2)")
	if res.Stdout != "hello\n1 2\n" {
		t.Fatalf("got %q", res.Stdout)
	}
	// a trailing call is an expression, its value is None
	if !res.HasValue || res.ResultText != "None" || res.MathMarkup != "" {
		t.Fatalf("got %+v", res)
	}
}

func TestDefaultSymbols(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "x")
	if res.Error != nil || res.ResultText != "x" {
		t.Fatalf("got %+v", res)
	}
	res = evaluate(t, rt, "a")
	if res.Error == nil || res.Error.Kind != interp.KindName {
		t.Fatalf("got %+v", res)
	}
}

func TestConstants(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "g * 2")
	if res.Error != nil || res.ResultText != "19.6" {
		t.Fatalf("got %+v", res)
	}
}

func TestSyntaxError(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "a = 1\nb = )\nc = 2")
	if res.Error == nil {
		t.Fatal("expected error")
	}
	if res.Error.Kind != interp.KindSyntax {
		t.Fatalf("got %s", res.Error.Kind)
	}
	if res.Error.Line != 2 {
		t.Fatalf("got line %d", res.Error.Line)
	}
	if res.HasValue {
		t.Fatal("error and value are exclusive")
	}
}

func TestNameError(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "q = 1\nr = w + 1")
	if res.Error == nil || res.Error.Kind != interp.KindName {
		t.Fatalf("got %+v", res.Error)
	}
	if res.Error.Line != 2 {
		t.Fatalf("got line %d", res.Error.Line)
	}
	if !strings.Contains(res.Error.Message, "undefined: w") {
		t.Fatalf("got %q", res.Error.Message)
	}
}

func TestFunctionsSeeLaterAssignments(t *testing.T) {
	rt := newRuntime(t)
	for _, code := range []string{
		"k = 1",
		"def f():\n    return k",
		"k = 2",
	} {
		if res := evaluate(t, rt, code); res.Error != nil {
			t.Fatalf("%s: %+v", code, res.Error)
		}
	}
	res := evaluate(t, rt, "f()")
	if res.Error != nil {
		t.Fatal(res.Error)
	}
	if res.ResultText != "2" {
		t.Fatalf("got %q", res.ResultText)
	}

	// rebinding reads the current value
	evaluate(t, rt, "k = k + 1\nk += 1")
	res = evaluate(t, rt, "f()")
	if res.Error != nil || res.ResultText != "4" {
		t.Fatalf("got %+v", res)
	}

	// a function defined later replaces the one seen by callers
	evaluate(t, rt, "def g():\n    return f() * 10")
	evaluate(t, rt, "def f():\n    return -1")
	res = evaluate(t, rt, "g()")
	if res.Error != nil || res.ResultText != "-10" {
		t.Fatalf("got %+v", res)
	}
}

func TestForwardReferenceInCell(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "def f(n):\n    return helper(n) + 1\ndef helper(n):\n    return n * 2\nf(3)")
	if res.Error != nil {
		t.Fatal(res.Error)
	}
	if res.ResultText != "7" {
		t.Fatalf("got %q", res.ResultText)
	}
}

func TestDeletedNameInFunction(t *testing.T) {
	rt := newRuntime(t)
	evaluate(t, rt, "m = 3\ndef f():\n    return m")
	if _, err := rt.DeleteVariable("m"); err != nil {
		t.Fatal(err)
	}
	res := evaluate(t, rt, "f()")
	if res.Error == nil || res.Error.Kind != interp.KindName {
		t.Fatalf("got %+v", res)
	}
	if res.Error.Message != "name 'm' is not defined" {
		t.Fatalf("got %q", res.Error.Message)
	}
}

func TestUndefinedNameRunsNothing(t *testing.T) {
	rt := newRuntime(t)
	evaluate(t, rt, "n = 1")
	res := evaluate(t, rt, "n = n + 1\nprint('side effect')\nn * missing")
	if res.Error == nil || res.Error.Kind != interp.KindName {
		t.Fatalf("got %+v", res)
	}
	if res.Stdout != "" {
		t.Fatalf("got stdout %q", res.Stdout)
	}
	res = evaluate(t, rt, "n")
	if res.ResultText != "1" {
		t.Fatalf("got %q", res.ResultText)
	}
}

func TestRuntimeErrorLineAndTrace(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "def f(n):\n    return 1 / n\n")
	if res.Error != nil {
		t.Fatal(res.Error)
	}
	res = evaluate(t, rt, "a = 1\nf(0)")
	if res.Error == nil {
		t.Fatal("expected error")
	}
	if res.Error.Kind != interp.KindZeroDivision {
		t.Fatalf("got %s: %s", res.Error.Kind, res.Error.Message)
	}
	// the line of the current cell, not of the defining cell
	if res.Error.Line != 2 {
		t.Fatalf("got line %d", res.Error.Line)
	}
	if !strings.HasPrefix(res.Error.Trace, "Traceback") {
		t.Fatalf("got %q", res.Error.Trace)
	}
	if !strings.Contains(res.Error.Trace, "in f") {
		t.Fatalf("got %q", res.Error.Trace)
	}
	if strings.Contains(res.Error.Trace, "<builtin>") || strings.Contains(res.Error.Trace, "<prelude>") {
		t.Fatalf("internal frames in trace: %q", res.Error.Trace)
	}
}

func TestErrorKinds(t *testing.T) {
	rt := newRuntime(t)
	cases := map[string]string{
		"[1, 2][5]":         interp.KindIndex,
		"{'a': 1}['b']":     interp.KindKey,
		"(1).foo":           interp.KindAttribute,
		"1 + 'a'":           interp.KindType,
		"fail('boom')":      interp.KindFailure,
		"Rational(1, 0)":    interp.KindZeroDivision,
		"Symbol('1x')":      interp.KindValue,
		"diff(abs(x), x)":   interp.KindValue,
		"pow(0, -1)":        interp.KindZeroDivision,
		"linspace(0, 1, 0)": interp.KindFailure,
	}
	for code, want := range cases {
		res := evaluate(t, rt, code)
		if res.Error == nil {
			t.Fatalf("%s: expected error", code)
		}
		if res.Error.Kind != want {
			t.Fatalf("%s: got %s (%s), want %s", code, res.Error.Kind, res.Error.Message, want)
		}
	}
}

func TestVariables(t *testing.T) {
	rt := newRuntime(t)
	evaluate(t, rt, "b = 2\na = 'a long string value that is cut'\ndef f():\n    pass\n")
	vars := rt.Variables()
	if len(vars) != 3 {
		t.Fatalf("got %+v", vars)
	}
	if vars[0].Name != "a" || vars[1].Name != "b" || vars[2].Name != "f" {
		t.Fatalf("got %+v", vars)
	}
	if vars[0].Preview != "a long string val..." {
		t.Fatalf("got %q", vars[0].Preview)
	}
	if vars[1].Type != "int" || vars[2].Type != "function" {
		t.Fatalf("got %+v", vars)
	}
}

func TestVariablesExcludeAmbient(t *testing.T) {
	rt := newRuntime(t)
	if vars := rt.Variables(); len(vars) != 0 {
		t.Fatalf("got %+v", vars)
	}
	// rebinding an ambient name is still not a user variable
	evaluate(t, rt, "x = 1")
	if vars := rt.Variables(); len(vars) != 0 {
		t.Fatalf("got %+v", vars)
	}
}

func TestDeleteVariable(t *testing.T) {
	rt := newRuntime(t)
	evaluate(t, rt, "a = 1\nb = 2")
	vars, err := rt.DeleteVariable("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != 1 || vars[0].Name != "b" {
		t.Fatalf("got %+v", vars)
	}
	res := evaluate(t, rt, "a")
	if res.Error == nil || res.Error.Kind != interp.KindName {
		t.Fatalf("got %+v", res)
	}

	if _, err := rt.DeleteVariable("diff"); err == nil {
		t.Fatal("expected error deleting built-in")
	}
	if _, err := rt.DeleteVariable("nope"); err == nil {
		t.Fatal("expected error deleting missing name")
	}
}

func TestComplete(t *testing.T) {
	rt := newRuntime(t)
	evaluate(t, rt, "symmetric = 1")
	labels := func(cs []interp.Completion) []string {
		var ret []string
		for _, c := range cs {
			ret = append(ret, c.Label)
		}
		return ret
	}

	got := labels(rt.Complete("sym", 3))
	if strings.Join(got, ",") != "symbols,symmetric" {
		t.Fatalf("got %v", got)
	}

	got = labels(rt.Complete("a = x.di", 8))
	if strings.Join(got, ",") != "diff" {
		t.Fatalf("got %v", got)
	}

	got = labels(rt.Complete("math.sq", 7))
	if strings.Join(got, ",") != "sqrt" {
		t.Fatalf("got %v", got)
	}

	got = labels(rt.Complete("whi", 3))
	if strings.Join(got, ",") != "while" {
		t.Fatalf("got %v", got)
	}

	// offset past the end is clamped
	if cs := rt.Complete("Symb", 100); len(cs) != 1 || cs[0].Kind != "function" {
		t.Fatalf("got %+v", cs)
	}
}

func TestDocumentation(t *testing.T) {
	rt := newRuntime(t)
	doc := rt.Documentation("diff")
	if !doc.Found || doc.Signature == "" {
		t.Fatalf("got %+v", doc)
	}
	doc = rt.Documentation("linspace")
	if !doc.Found || doc.Signature != "linspace(start, stop, num)" {
		t.Fatalf("got %+v", doc)
	}
	evaluate(t, rt, "q = 42")
	doc = rt.Documentation("q")
	if !doc.Found || doc.Summary != "42" {
		t.Fatalf("got %+v", doc)
	}
	doc = rt.Documentation("nothing_here")
	if doc.Found {
		t.Fatalf("got %+v", doc)
	}

	hits := rt.SearchDocs("deriv", 10)
	if len(hits) == 0 || hits[0].Name != "diff" {
		t.Fatalf("got %+v", hits)
	}
}

func TestPrelude(t *testing.T) {
	rt := newRuntime(t)
	res := evaluate(t, rt, "linspace(0, 1, 5)")
	if res.Error != nil || res.ResultText != "[0.0, 0.25, 0.5, 0.75, 1.0]" {
		t.Fatalf("got %+v", res)
	}
	if res.Tabular != "0.0\n0.25\n0.5\n0.75\n1.0" {
		t.Fatalf("got %q", res.Tabular)
	}
	res = evaluate(t, rt, "table(lambda v: v * v, [1, 2])")
	if res.Error != nil || res.Tabular != "1\t1\n2\t4" {
		t.Fatalf("got %+v", res)
	}
}

func TestCancel(t *testing.T) {
	rt := newRuntime(t)
	done := make(chan *interp.Result)
	go func() {
		done <- rt.Evaluate(context.Background(), "while True:\n    pass")
	}()
	time.Sleep(50 * time.Millisecond)
	rt.Cancel("interrupted")
	select {
	case res := <-done:
		if res.Error == nil || res.Error.Kind != interp.KindInterrupted {
			t.Fatalf("got %+v", res.Error)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("evaluation not cancelled")
	}

	// a cancelled runtime stays cancelled
	res := rt.Evaluate(context.Background(), "1")
	if res.Error == nil || res.Error.Kind != interp.KindInterrupted {
		t.Fatalf("got %+v", res)
	}
}

func TestContextCancel(t *testing.T) {
	rt := newRuntime(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := rt.Evaluate(ctx, "while True:\n    pass")
	if res.Error == nil || res.Error.Kind != interp.KindInterrupted {
		t.Fatalf("got %+v", res.Error)
	}
}

type testFigures struct {
	figures int
	closed  int
}

func (f *testFigures) Members() starlark.StringDict {
	return starlark.StringDict{
		"figure": starlark.NewBuiltin("figure", func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
			f.figures++
			return starlark.None, nil
		}),
	}
}

func (f *testFigures) Docs() []interp.Doc {
	return nil
}

func (f *testFigures) ClearFigures() {
	f.figures = 0
}

func (f *testFigures) HasFigures() bool {
	return f.figures > 0
}

func (f *testFigures) RenderPNG() ([]byte, error) {
	return []byte("png"), nil
}

func (f *testFigures) CloseFigures() {
	f.figures = 0
	f.closed++
}

type testExtended struct {
	pkg *testFigures
}

func (t testExtended) Name() string {
	return "figures"
}

func (t testExtended) Provides() []string {
	return []string{"figure"}
}

func (t testExtended) Load(ctx context.Context) (interp.Package, error) {
	return t.pkg, nil
}

func TestExtended(t *testing.T) {
	figures := new(testFigures)
	lib := testExtended{pkg: figures}
	rt := newRuntime(t, func(config *interp.Config) {
		config.Extended = []interp.Library{lib}
	})

	if !rt.NeedsExtended("figure()") {
		t.Fatal("expected figure to need the extended library")
	}
	if rt.NeedsExtended("x + 1") {
		t.Fatal("plain code does not need the extended library")
	}

	pkg, err := lib.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	rt.InstallExtended(pkg)
	if rt.NeedsExtended("figure()") {
		t.Fatal("installed")
	}

	res := evaluate(t, rt, "figure()\n1")
	if res.Error != nil {
		t.Fatal(res.Error)
	}
	if res.ImageBase64 != base64.StdEncoding.EncodeToString([]byte("png")) {
		t.Fatalf("got %q", res.ImageBase64)
	}
	if figures.closed != 1 {
		t.Fatalf("got %d", figures.closed)
	}
	// extended names are ambient
	if vars := rt.Variables(); len(vars) != 0 {
		t.Fatalf("got %+v", vars)
	}

	res = evaluate(t, rt, "2")
	if res.ImageBase64 != "" {
		t.Fatal("figures are cleared per evaluation")
	}
}
