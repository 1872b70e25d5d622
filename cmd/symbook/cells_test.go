package main

import (
	"slices"
	"testing"
)

func TestSplitCells(t *testing.T) {
	cases := []struct {
		source string
		cells  []string
	}{
		{"", nil},
		{"\n\n", nil},
		{"a = 1\nb = 2", []string{"a = 1\nb = 2"}},
		{"a = 1\n\nb = 2\n", []string{"a = 1", "b = 2"}},
		{"\n\na = 1\n\n\n\nb = 2\n\n", []string{"a = 1", "b = 2"}},
		{
			"def f(n):\n    m = n * 2\n\n    return m\n\nf(2)\n",
			[]string{"def f(n):\n    m = n * 2\n\n    return m", "f(2)"},
		},
		{"a = 1\r\n\r\nb = 2\r\n", []string{"a = 1", "b = 2"}},
	}
	for _, c := range cases {
		got := splitCells(c.source)
		if !slices.Equal(got, c.cells) {
			t.Fatalf("%q: got %q", c.source, got)
		}
	}
}
