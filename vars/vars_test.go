package vars

import "testing"

func TestStrToBool(t *testing.T) {
	for str, want := range map[string]bool{
		"true": true,
		" Y ":  true,
		"on":   true,
		"1":    true,
		"off":  false,
		"no":   false,
		"":     false,
		"what": false,
	} {
		if got := StrToBool(str); got != want {
			t.Fatalf("%q: got %v", str, got)
		}
	}
}

func TestFirstNonZero(t *testing.T) {
	if got := FirstNonZero("", "symbook.cue", ".symbook.cue"); got != "symbook.cue" {
		t.Fatalf("got %q", got)
	}
	if got := FirstNonZero(0, 0); got != 0 {
		t.Fatalf("got %v", got)
	}
}
