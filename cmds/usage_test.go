package cmds

import (
	"bytes"
	"strings"
	"testing"
)

func TestUsage(t *testing.T) {
	executor := NewExecutor()
	executor.Define("notebook", Sub(map[string]*Command{
		"list": Func(func() {
		}).Desc("LIST"),
		"cell": Sub(map[string]*Command{
			"run": Func(func(id string) {}).Args("<id>").Desc("RUN"),
		}).Desc("CELL"),
	}).Desc("NOTEBOOK"))

	buf := new(bytes.Buffer)
	executor.WriteUsage(buf)
	out := buf.String()
	for _, want := range []string{"notebook\tNOTEBOOK", "  cell\tCELL", "    run <id>\tRUN", "  list\tLIST", "-h (help, -help, --help)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestFuncValidation(t *testing.T) {
	for _, fn := range []any{
		42,
		func(...string) {},
		func() int { return 0 },
		func() (error, error) { return nil, nil },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("%T: expected panic", fn)
				}
			}()
			Func(fn)
		}()
	}
}
