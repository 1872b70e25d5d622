package nets

import (
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/symbook/modes"
)

func TestIsLocalAddr(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		isLocalAddr IsLocalAddr,
	) {
		for addr, want := range map[string]bool{
			"127.0.0.1:10000":        true,
			"localhost":              true,
			"http://localhost:8765":  true,
			"[::1]:80":               true,
			"192.168.1.20":           true,
			"8.8.8.8:53":             false,
			"https://203.0.113.9:80": false,
		} {
			got, err := isLocalAddr(addr)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Fatalf("%s: got %v", addr, got)
			}
		}
	})
}
