package interp

import (
	"testing"

	"go.starlark.net/starlark"
)

func TestToValue(t *testing.T) {
	type testStruct struct {
		Exported   string
		unexported int
	}

	ptrStruct := &testStruct{
		Exported:   "hello",
		unexported: 42,
	}

	testCases := []struct {
		name     string
		input    any
		expected starlark.Value
	}{
		{"nil", nil, starlark.None},
		{"bool", true, starlark.True},
		{"bytes", []byte("abc"), starlark.Bytes("abc")},
		{"string", "hello", starlark.String("hello")},
		{"int", int(42), starlark.MakeInt(42)},
		{"int8", int8(42), starlark.MakeInt(42)},
		{"uint16", uint16(42), starlark.MakeInt(42)},
		{"uint64", uint64(42), starlark.MakeUint64(42)},
		{"float32", float32(0.5), starlark.Float(0.5)},
		{"float64", 9.8, starlark.Float(9.8)},
		{"starlark value", starlark.String("v"), starlark.String("v")},
		{"[]any", []any{1, "a", true}, starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a"), starlark.True})},
		{"[]float64", []float64{1, 2}, starlark.NewList([]starlark.Value{starlark.Float(1), starlark.Float(2)})},
		{"map[string]any", map[string]any{"b": 2, "a": 1}, func() starlark.Value {
			d := starlark.NewDict(2)
			d.SetKey(starlark.String("a"), starlark.MakeInt(1))
			d.SetKey(starlark.String("b"), starlark.MakeInt(2))
			return d
		}()},
		{"pointer to struct", ptrStruct, func() starlark.Value {
			d := starlark.NewDict(1)
			d.SetKey(starlark.String("Exported"), starlark.String("hello"))
			return d
		}()},
		{"nil pointer", (*testStruct)(nil), starlark.None},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ToValue(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			equal, err := starlark.Equal(actual, tc.expected)
			if err != nil {
				t.Fatalf("comparison failed: %v", err)
			}
			if !equal {
				t.Errorf("ToValue(%#v) = %v, want %v", tc.input, actual, tc.expected)
			}
		})
	}

	t.Run("unsupported type", func(t *testing.T) {
		if _, err := ToValue(make(chan bool)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestNamespace(t *testing.T) {
	ns := newNamespace()
	ns.Set("a", starlark.MakeInt(1))
	ns.markAmbient()
	ns.Set("c", starlark.MakeInt(3))
	ns.Set("b", starlark.MakeInt(2))

	if got := ns.UserNames(); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("got %v", got)
	}
	if err := ns.Delete("a"); err == nil {
		t.Fatal("ambient names are not deletable")
	}
	if err := ns.Delete("b"); err != nil {
		t.Fatal(err)
	}
	if ns.Has("b") {
		t.Fatal("not deleted")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 0, "abc"},
		{"abcdef", 2, "ab"},
	}
	for _, c := range cases {
		if got := Truncate(c.in, c.limit); got != c.want {
			t.Fatalf("got %q, want %q", got, c.want)
		}
	}
}
