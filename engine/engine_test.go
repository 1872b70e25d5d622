package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/reusee/symbook/interp"
	"github.com/reusee/symbook/outputs"
	"github.com/reusee/symbook/plotting"
	"github.com/reusee/symbook/symbolic"
	"go.starlark.net/starlark"
	"go.uber.org/goleak"
	"gonum.org/v1/plot/vg"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gateLibrary blocks in Load until release is closed.
type gateLibrary struct {
	name     string
	members  starlark.StringDict
	release  chan struct{}
	err      error
	provides []string
}

func (g gateLibrary) Name() string {
	return g.name
}

func (g gateLibrary) Provides() []string {
	return g.provides
}

func (g gateLibrary) Load(ctx context.Context) (interp.Package, error) {
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return interp.StaticPackage{
		Values: g.members,
	}, nil
}

func newEngine(t *testing.T, modify ...func(*interp.Config)) *Engine {
	t.Helper()
	config := interp.Config{
		Core: []interp.Library{
			symbolic.Library{},
			interp.StdLibrary{},
		},
		Renderer:       symbolic.Renderer{},
		DefaultSymbols: []string{"x", "y"},
	}
	for _, fn := range modify {
		fn(&config)
	}
	e := New(Options{
		Runtime: config,
	})
	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Fatal(err)
		}
	})
	return e
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timeout")
		}
		time.Sleep(time.Millisecond)
	}
}

func (e *Engine) queueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) pendingLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func execute(t *testing.T, e *Engine, code string) *Response {
	t.Helper()
	resp, err := e.Execute(context.Background(), code, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func resultOf(t *testing.T, resp *Response) outputs.Output {
	t.Helper()
	for _, output := range resp.Results {
		if output.IsResult || output.Type == outputs.TypeError {
			return output
		}
	}
	t.Fatalf("no result in %+v", resp.Results)
	panic("unreachable")
}

func TestExecute(t *testing.T) {
	e := newEngine(t)
	resp := execute(t, e, "q = 5")
	if resp.Status != StatusSuccess {
		t.Fatalf("got %+v", resp)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("got %+v", resp.Results)
	}
	if len(resp.Variables) != 1 || resp.Variables[0].Name != "q" {
		t.Fatalf("got %+v", resp.Variables)
	}

	resp = execute(t, e, "q * x")
	output := resultOf(t, resp)
	if output.Type != outputs.TypeMath || output.Raw != "5*x" || output.Value != "5 x" {
		t.Fatalf("got %+v", output)
	}

	// idempotent
	again := resultOf(t, execute(t, e, "q * x"))
	if again.Raw != output.Raw {
		t.Fatalf("got %q", again.Raw)
	}
}

func TestSequencing(t *testing.T) {
	e := newEngine(t)
	output := resultOf(t, execute(t, e, "a"))
	if output.ErrorName != interp.KindName {
		t.Fatalf("got %+v", output)
	}
	if len(output.MissingNames) != 1 || output.MissingNames[0] != "a" {
		t.Fatalf("got %+v", output.MissingNames)
	}
	execute(t, e, "a = 1")
	output = resultOf(t, execute(t, e, "a"))
	if output.Raw != "1" {
		t.Fatalf("got %+v", output)
	}
}

func TestQueueBeforeReady(t *testing.T) {
	release := make(chan struct{})
	e := newEngine(t, func(config *interp.Config) {
		config.Core = append(config.Core, gateLibrary{
			name:    "gate",
			release: release,
		})
	})
	if e.Ready() {
		t.Fatal("should not be ready")
	}

	codes := []string{
		"a = 1",
		"a = a * 10",
		"a + 1",
	}
	responses := make([]chan *Response, len(codes))
	for i, code := range codes {
		ch := make(chan *Response, 1)
		responses[i] = ch
		go func() {
			resp, err := e.Execute(context.Background(), code, "", i+1)
			if err != nil {
				t.Error(err)
			}
			ch <- resp
		}()
		waitFor(t, func() bool {
			return e.queueLen() == i+1
		})
	}

	// other actions do not wait
	resp, err := e.Complete(context.Background(), "x", 1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != StatusSuccess || len(resp.Completions) != 0 {
		t.Fatalf("got %+v", resp)
	}

	signals, stop := e.Subscribe()
	defer stop()

	close(release)
	var last *Response
	for i, ch := range responses {
		last = <-ch
		if last == nil {
			t.Fatal("no response")
		}
		if last.Sequence != i+1 {
			t.Fatalf("got %d", last.Sequence)
		}
	}
	if output := resultOf(t, last); output.Raw != "11" {
		t.Fatalf("got %+v", output)
	}
	if !e.Ready() {
		t.Fatal("should be ready")
	}
	if sig := <-signals; sig.Type != SignalReady {
		t.Fatalf("got %+v", sig)
	}
}

func TestQueuedResultsInOrder(t *testing.T) {
	release := make(chan struct{})
	e := newEngine(t, func(config *interp.Config) {
		config.Core = append(config.Core, gateLibrary{
			name:    "gate",
			release: release,
		})
	})
	first := make(chan *Response, 1)
	go func() {
		resp, _ := e.Execute(context.Background(), "a = 2", "", 1)
		first <- resp
	}()
	waitFor(t, func() bool {
		return e.queueLen() == 1
	})
	second := make(chan *Response, 1)
	go func() {
		resp, _ := e.Execute(context.Background(), "a * 21", "", 2)
		second <- resp
	}()
	waitFor(t, func() bool {
		return e.queueLen() == 2
	})
	close(release)
	<-first
	output := resultOf(t, <-second)
	if output.Raw != "42" {
		t.Fatalf("got %+v", output)
	}
}

func TestCallerCancelWhileQueued(t *testing.T) {
	release := make(chan struct{})
	e := newEngine(t, func(config *interp.Config) {
		config.Core = append(config.Core, gateLibrary{
			name:    "gate",
			release: release,
		})
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := e.Execute(ctx, "1", "", 0)
		done <- err
	}()
	waitFor(t, func() bool {
		return e.queueLen() == 1
	})
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
	if e.queueLen() != 0 || e.pendingLen() != 0 {
		t.Fatal("expected empty queue")
	}
	close(release)
	if err := e.WaitReady(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestInterrupt(t *testing.T) {
	e := newEngine(t)
	execute(t, e, "a = 1")

	done := make(chan *Response, 1)
	go func() {
		resp, err := e.Execute(context.Background(), "while True:\n  pass", "", 7)
		if err != nil {
			t.Error(err)
		}
		done <- resp
	}()
	waitFor(t, func() bool {
		return e.pendingLen() == 1
	})

	if err := e.Interrupt(); err != nil {
		t.Fatal(err)
	}
	if e.Ready() {
		t.Fatal("not ready until the new worker starts")
	}
	resp := <-done
	if !resp.Interrupted() || resp.Status != StatusError || resp.Sequence != 7 {
		t.Fatalf("got %+v", resp)
	}
	if len(resp.Results) != 1 || resp.Results[0].Value != interruptedMessage {
		t.Fatalf("got %+v", resp.Results)
	}

	// state is gone
	if err := e.WaitReady(context.Background()); err != nil {
		t.Fatal(err)
	}
	output := resultOf(t, execute(t, e, "a"))
	if output.ErrorName != interp.KindName {
		t.Fatalf("got %+v", output)
	}
}

func TestInterruptAction(t *testing.T) {
	e := newEngine(t)
	execute(t, e, "a = 1")
	resp, err := e.Do(context.Background(), Request{
		Action: ActionInterrupt,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != StatusSuccess {
		t.Fatalf("got %+v", resp)
	}
	if output := resultOf(t, execute(t, e, "a")); output.ErrorName != interp.KindName {
		t.Fatalf("got %+v", output)
	}
}

func TestNotebookSwitch(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	if _, err := e.Execute(ctx, "a = 1", "one", 1); err != nil {
		t.Fatal(err)
	}
	resp, err := e.Execute(ctx, "a", "one", 2)
	if err != nil {
		t.Fatal(err)
	}
	if output := resultOf(t, resp); output.Raw != "1" {
		t.Fatalf("got %+v", output)
	}
	resp, err = e.Execute(ctx, "a", "two", 1)
	if err != nil {
		t.Fatal(err)
	}
	if output := resultOf(t, resp); output.ErrorName != interp.KindName {
		t.Fatalf("got %+v", output)
	}
}

func TestDocumentationLookup(t *testing.T) {
	e := newEngine(t)
	resp := execute(t, e, "  ?diff")
	if resp.Documentation == nil || !resp.Documentation.Found || resp.Documentation.Name != "diff" {
		t.Fatalf("got %+v", resp.Documentation)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("got %+v", resp.Results)
	}

	resp = execute(t, e, "?nope")
	if resp.Documentation == nil || resp.Documentation.Found {
		t.Fatalf("got %+v", resp.Documentation)
	}
}

func TestCompleteAndSearch(t *testing.T) {
	e := newEngine(t)
	if err := e.WaitReady(context.Background()); err != nil {
		t.Fatal(err)
	}
	resp, err := e.Complete(context.Background(), "simp", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Completions) == 0 || resp.Completions[0].Label != "simplify" {
		t.Fatalf("got %+v", resp.Completions)
	}

	resp, err = e.SearchDocs(context.Background(), "deriv")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.SearchResults) == 0 || resp.SearchResults[0].Name != "diff" {
		t.Fatalf("got %+v", resp.SearchResults)
	}
}

func TestDeleteVariable(t *testing.T) {
	e := newEngine(t)
	execute(t, e, "a = 1\nb = 2")
	resp, err := e.DeleteVariable(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != StatusSuccess || len(resp.Variables) != 1 || resp.Variables[0].Name != "b" {
		t.Fatalf("got %+v", resp)
	}

	resp, err = e.DeleteVariable(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != StatusError || resp.Results[0].ErrorName != interp.KindDeleteVariable {
		t.Fatalf("got %+v", resp)
	}
}

func TestPanicBecomesErrorResponse(t *testing.T) {
	e := newEngine(t, func(config *interp.Config) {
		config.Core = append(config.Core, gateLibrary{
			name: "boom",
			members: starlark.StringDict{
				"boom": starlark.NewBuiltin("boom", func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
					panic("boom")
				}),
			},
		})
	})
	resp := execute(t, e, "boom()")
	if resp.Status != StatusError {
		t.Fatalf("got %+v", resp)
	}
	if output := resultOf(t, resp); output.ErrorName != interp.KindInternal || output.Value != "boom" {
		t.Fatalf("got %+v", output)
	}
	// still usable
	if output := resultOf(t, execute(t, e, "1 + 1")); output.Raw != "2" {
		t.Fatalf("got %+v", output)
	}
}

func TestLoadError(t *testing.T) {
	e := newEngine(t, func(config *interp.Config) {
		config.Core = append(config.Core, gateLibrary{
			name: "broken",
			err:  errors.New("no such file"),
		})
	})
	err := e.WaitReady(context.Background())
	if !errors.Is(err, ErrNotStarted) {
		t.Fatalf("got %v", err)
	}
	_, err = e.Execute(context.Background(), "1", "", 0)
	if !errors.Is(err, ErrNotStarted) || !strings.Contains(err.Error(), "no such file") {
		t.Fatalf("got %v", err)
	}
	// non-execute requests stay neutral
	resp, err := e.SearchDocs(context.Background(), "diff")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.SearchResults) != 0 {
		t.Fatalf("got %+v", resp)
	}
	signals, stop := e.Subscribe()
	defer stop()
	if sig := <-signals; sig.Type != SignalLoadError {
		t.Fatalf("got %+v", sig)
	}
}

func TestExtendedGating(t *testing.T) {
	release := make(chan struct{})
	e := newEngine(t, func(config *interp.Config) {
		config.Extended = []interp.Library{
			gateLibrary{
				name:     "figures",
				provides: []string{"figure"},
				release:  release,
				members: starlark.StringDict{
					"figure": starlark.NewBuiltin("figure", func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
						return starlark.String("drawn"), nil
					}),
				},
			},
		}
	})
	signals, stop := e.Subscribe()
	defer stop()

	// unrelated code runs before the extended library is loaded
	if output := resultOf(t, execute(t, e, "1 + 2")); output.Raw != "3" {
		t.Fatalf("got %+v", output)
	}
	if e.GraphicsReady() {
		t.Fatal("should not be ready")
	}

	done := make(chan *Response, 1)
	go func() {
		resp, err := e.Execute(context.Background(), "figure()", "", 0)
		if err != nil {
			t.Error(err)
		}
		done <- resp
	}()
	select {
	case <-done:
		t.Fatal("should wait for the extended library")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if output := resultOf(t, <-done); output.Raw != "drawn" {
		t.Fatalf("got %+v", output)
	}
	if !e.GraphicsReady() {
		t.Fatal("should be ready")
	}
	var types []SignalType
	for len(types) < 2 {
		types = append(types, (<-signals).Type)
	}
	if types[0] != SignalReady || types[1] != SignalGraphicsReady {
		t.Fatalf("got %v", types)
	}
	// extended names are not user variables
	resp := execute(t, e, "a = 1")
	if len(resp.Variables) != 1 {
		t.Fatalf("got %+v", resp.Variables)
	}
}

func TestExtendedFailure(t *testing.T) {
	e := newEngine(t, func(config *interp.Config) {
		config.Extended = []interp.Library{
			gateLibrary{
				name:     "figures",
				provides: []string{"figure"},
				err:      errors.New("no fonts"),
			},
		}
	})
	output := resultOf(t, execute(t, e, "figure()"))
	if output.ErrorName != interp.KindName {
		t.Fatalf("got %+v", output)
	}
	if e.GraphicsReady() {
		t.Fatal("should not be ready")
	}
	if output := resultOf(t, execute(t, e, "2 * 3")); output.Raw != "6" {
		t.Fatalf("got %+v", output)
	}
}

func TestOutputOrdering(t *testing.T) {
	e := newEngine(t, func(config *interp.Config) {
		config.Extended = []interp.Library{
			plotting.Library{
				Width:  2 * vg.Inch,
				Height: 2 * vg.Inch,
			},
		}
	})
	resp := execute(t, e, "print(\"hello\")\nplot(x * x, (x, 0, 1))\nx + 1")
	if len(resp.Results) != 3 {
		t.Fatalf("got %+v", resp.Results)
	}
	want := []outputs.Type{outputs.TypeText, outputs.TypeMath, outputs.TypeImage}
	for i, output := range resp.Results {
		if output.Type != want[i] {
			t.Fatalf("got %v at %d", output.Type, i)
		}
	}
	if !resp.Results[1].IsResult || resp.Results[0].IsResult {
		t.Fatal("only the expression value is the primary result")
	}
}

func TestClose(t *testing.T) {
	e := New(Options{
		Runtime: interp.Config{
			Core: []interp.Library{
				symbolic.Library{},
			},
		},
	})
	done := make(chan *Response, 1)
	go func() {
		resp, _ := e.Execute(context.Background(), "while True:\n  pass", "", 0)
		done <- resp
	}()
	waitFor(t, func() bool {
		return e.pendingLen() == 1
	})
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if resp := <-done; resp == nil || resp.Status != StatusError {
		t.Fatalf("got %+v", resp)
	}
	if _, err := e.Execute(context.Background(), "1", "", 0); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v", err)
	}
	if err := e.Interrupt(); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v", err)
	}
	// idempotent
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
}
