package outputs

import (
	"slices"
	"testing"
	"time"

	"github.com/reusee/symbook/interp"
)

var now = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func types(outs []Output) []Type {
	var ret []Type
	for _, o := range outs {
		ret = append(ret, o.Type)
	}
	return ret
}

func TestClassifyOrder(t *testing.T) {
	outs := Classify(&interp.Result{
		Stdout:      "printed\n",
		HasValue:    true,
		ResultText:  "x**2",
		MathMarkup:  "x^{2}",
		ImageBase64: "aW1n",
	}, now)
	if !slices.Equal(types(outs), []Type{TypeText, TypeMath, TypeImage}) {
		t.Fatalf("got %v", types(outs))
	}
	res := outs[1]
	if !res.IsResult || res.Raw != "x**2" || res.Value != "x^{2}" {
		t.Fatalf("got %+v", res)
	}
	if outs[0].IsResult {
		t.Fatal("printed text is not the result")
	}
	for _, o := range outs {
		if !o.Timestamp.Equal(now) {
			t.Fatalf("got %v", o.Timestamp)
		}
	}
}

func TestClassifyError(t *testing.T) {
	outs := Classify(&interp.Result{
		Stdout: "before\n",
		Error: &interp.ErrorRecord{
			Kind:    "NameError",
			Message: "undefined: a\nundefined: b",
			Line:    3,
			Trace:   "Traceback",
		},
		ImageBase64: "aW1n",
	}, now)
	if !slices.Equal(types(outs), []Type{TypeText, TypeError, TypeImage}) {
		t.Fatalf("got %v", types(outs))
	}
	e := outs[1]
	if e.ErrorName != "NameError" || e.Line != 3 || e.Traceback != "Traceback" {
		t.Fatalf("got %+v", e)
	}
	if !slices.Equal(e.MissingNames, []string{"a", "b"}) {
		t.Fatalf("got %v", e.MissingNames)
	}
}

func TestClassifyPlainResult(t *testing.T) {
	outs := Classify(&interp.Result{
		HasValue:   true,
		ResultText: "[1, 2]",
		Tabular:    "1\n2",
	}, now)
	if len(outs) != 1 || outs[0].Type != TypeText || !outs[0].IsResult || outs[0].Tabular != "1\n2" {
		t.Fatalf("got %+v", outs)
	}
}

func TestClassifyTrivial(t *testing.T) {
	for _, text := range []string{"None", "", "  "} {
		outs := Classify(&interp.Result{
			HasValue:   true,
			ResultText: text,
		}, now)
		if len(outs) != 0 {
			t.Fatalf("%q: got %+v", text, outs)
		}
	}
	if outs := Classify(&interp.Result{}, now); outs == nil || len(outs) != 0 {
		t.Fatalf("got %#v", outs)
	}
}

func TestClassifyBlankStdout(t *testing.T) {
	for _, stdout := range []string{"\n", " \n\t\n"} {
		outs := Classify(&interp.Result{
			Stdout:     stdout,
			HasValue:   true,
			ResultText: "1",
		}, now)
		if !slices.Equal(types(outs), []Type{TypeText}) || !outs[0].IsResult {
			t.Fatalf("%q: got %+v", stdout, outs)
		}
	}

	// kept as printed
	outs := Classify(&interp.Result{
		Stdout: "\n  a\n",
	}, now)
	if len(outs) != 1 || outs[0].Value != "\n  a\n" {
		t.Fatalf("got %+v", outs)
	}
}

func TestMissingNames(t *testing.T) {
	cases := []struct {
		msg  string
		want []string
	}{
		{"undefined: a", []string{"a"}},
		{"undefined: b\nundefined: a\nundefined: b", []string{"b", "a"}},
		{"name 'q' is not defined", []string{"q"}},
		{"global variable n referenced before assignment", []string{"n"}},
		{"division by zero", nil},
	}
	for _, c := range cases {
		if got := MissingNames(c.msg); !slices.Equal(got, c.want) {
			t.Fatalf("%q: got %v, want %v", c.msg, got, c.want)
		}
	}
}
