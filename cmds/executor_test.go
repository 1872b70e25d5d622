package cmds

import (
	"strings"
	"testing"
)

func TestExecutor(t *testing.T) {
	executor := NewExecutor()

	var retries int
	executor.Define("+retries", Func(func() {
		retries = 3
	}))
	executor.Define("retries", Func(func(i int) {
		retries = i
	}))

	if err := executor.Execute([]string{
		"+retries",
	}); err != nil {
		t.Fatal(err)
	}
	if retries != 3 {
		t.Fatalf("got %v", retries)
	}

	if err := executor.Execute([]string{
		"retries", "1",
	}); err != nil {
		t.Fatal(err)
	}
	if retries != 1 {
		t.Fatalf("got %v", retries)
	}

	err := executor.Execute([]string{
		"serve-forever",
	})
	if err == nil || !strings.Contains(err.Error(), "unknown command: serve-forever") {
		t.Fatalf("got %v", err)
	}
}

func TestSubCommands(t *testing.T) {
	executor := NewExecutor()
	var listed bool
	var exported string
	executor.Define("notebook", Sub(map[string]*Command{
		"list": Func(func() {
			listed = true
		}),
		"export": Func(func(id string) {
			exported = id
		}),
	}))

	if err := executor.Execute([]string{
		"notebook",
		"list",
		"export", "nb-1",
	}); err != nil {
		t.Fatal(err)
	}
	if !listed {
		t.Fatal("list not called")
	}
	if exported != "nb-1" {
		t.Fatalf("got %q", exported)
	}
}

func TestDuplicatedSubCommand(t *testing.T) {
	executor := NewExecutor()
	executor.Define("serve", Sub(map[string]*Command{
		"port": nil,
	}))
	executor.Define("repl", Sub(map[string]*Command{
		"port": nil,
	}))
	err := executor.Execute([]string{"serve", "repl"})
	if err == nil || !strings.Contains(err.Error(), "duplicated sub command: repl port") {
		t.Fatalf("got %v", err)
	}
}

func TestOptionalArgument(t *testing.T) {
	executor := NewExecutor()
	var width float64
	var name string
	executor.Define("plot", Func(func(w *float64, n *string) {
		width = *w
		name = *n
	}))

	if err := executor.Execute([]string{"plot", "4.5", "sine"}); err != nil {
		t.Fatal(err)
	}
	if width != 4.5 || name != "sine" {
		t.Fatalf("got %v %q", width, name)
	}

	if err := executor.Execute([]string{"plot", "6"}); err != nil {
		t.Fatal(err)
	}
	if width != 6 || name != "" {
		t.Fatalf("got %v %q", width, name)
	}

	if err := executor.Execute([]string{"plot"}); err != nil {
		t.Fatal(err)
	}
	if width != 0 || name != "" {
		t.Fatalf("got %v %q", width, name)
	}
}

func TestBadArgument(t *testing.T) {
	executor := NewExecutor()
	executor.Define("retries", Func(func(i int) {}))
	err := executor.Execute([]string{"retries", "many"})
	if err == nil || !strings.Contains(err.Error(), "convert many to int") {
		t.Fatalf("got %v", err)
	}
}

func TestAssignmentWord(t *testing.T) {
	executor := NewExecutor()
	var addr string
	executor.Define("-listen", Func(func(s string) {
		addr = s
	}))
	if err := executor.Execute([]string{"-listen=127.0.0.1:9000"}); err != nil {
		t.Fatal(err)
	}
	if addr != "127.0.0.1:9000" {
		t.Fatalf("got %q", addr)
	}
	// only the first = splits
	if err := executor.Execute([]string{"-listen=a=b"}); err != nil {
		t.Fatal(err)
	}
	if addr != "a=b" {
		t.Fatalf("got %q", addr)
	}
}

func TestSuggestion(t *testing.T) {
	executor := NewExecutor()
	executor.Define("serve", Func(func() {}))
	executor.Define("search", Func(func(q string) {}))

	err := executor.Execute([]string{"server"})
	if err == nil || !strings.Contains(err.Error(), "did you mean serve") {
		t.Fatalf("got %v", err)
	}

	err = executor.Execute([]string{"zzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("got %v", err)
	}

	err = executor.Execute([]string{"search"})
	if err == nil || !strings.Contains(err.Error(), "search: argument 1") {
		t.Fatalf("got %v", err)
	}
}
