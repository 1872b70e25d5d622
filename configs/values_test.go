package configs

import (
	"strings"
	"testing"
)

func TestFirst(t *testing.T) {
	loader := NewLoader([]string{"testdata/user.cue", "testdata/local.cue"}, testSchema)

	listen := First[string](loader, "listen")
	if listen != "127.0.0.1:9000" {
		t.Fatalf("got %v", listen)
	}

	symbols := First[[]string](loader, "default_symbols")
	if len(symbols) != 3 {
		t.Fatalf("got %v", symbols)
	}

	if v := First[string](loader, "missing"); v != "" {
		t.Fatalf("got %v", v)
	}
}

func TestLookup(t *testing.T) {
	loader := NewLoader([]string{"testdata/user.cue", "testdata/local.cue"}, testSchema)

	listen, ok, err := Lookup[string](loader, "listen")
	if err != nil || !ok || listen != "127.0.0.1:9000" {
		t.Fatalf("got %v %v %v", listen, ok, err)
	}

	_, ok, err = Lookup[string](loader, "missing")
	if err != nil || ok {
		t.Fatalf("got %v %v", ok, err)
	}

	_, _, err = Lookup[int](loader, "listen")
	if err == nil || !strings.Contains(err.Error(), "config listen") {
		t.Fatalf("got %v", err)
	}
}
