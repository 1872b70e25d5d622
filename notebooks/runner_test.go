package notebooks

import (
	"context"
	"errors"
	"testing"

	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/interp"
	"github.com/reusee/symbook/outputs"
	"github.com/reusee/symbook/symbolic"
)

type fakeExecutor struct {
	codes      []string
	sequences  []int
	respond    func(code string) *engine.Response
	interrupts int
}

func (f *fakeExecutor) Execute(ctx context.Context, code string, notebookID string, sequence int) (*engine.Response, error) {
	f.codes = append(f.codes, code)
	f.sequences = append(f.sequences, sequence)
	resp := f.respond(code)
	resp.Sequence = sequence
	return resp, nil
}

func (f *fakeExecutor) Interrupt() error {
	f.interrupts++
	return nil
}

func nameError(names ...string) *engine.Response {
	return &engine.Response{
		Status: engine.StatusSuccess,
		Results: []outputs.Output{
			{
				Type:         outputs.TypeError,
				ErrorName:    interp.KindName,
				MissingNames: names,
			},
		},
	}
}

func ok() *engine.Response {
	return &engine.Response{
		Status:  engine.StatusSuccess,
		Results: []outputs.Output{},
	}
}

func TestRunCellRetryBound(t *testing.T) {
	executor := &fakeExecutor{
		respond: func(code string) *engine.Response {
			if code == DefineSymbols([]string{"q"}) {
				return ok()
			}
			return nameError("q")
		},
	}
	runner := NewRunner(executor, 3, nil)
	nb := NewNotebook("nb", testNow)
	nb.Cells[0].Source = "q + 1"
	resp, err := runner.RunCell(context.Background(), nb, nb.Cells[0])
	if err != nil {
		t.Fatal(err)
	}
	// run, define, run again, then give up as defining did not help
	if len(executor.codes) != 3 {
		t.Fatalf("got %q", executor.codes)
	}
	if resp.Results[0].ErrorName != interp.KindName {
		t.Fatalf("got %+v", resp.Results)
	}
	if nb.Cells[0].Executing {
		t.Fatal("executing flag is cleared")
	}
	if nb.Cells[0].ExecutionCount == nil || *nb.Cells[0].ExecutionCount != 1 {
		t.Fatalf("got %v", nb.Cells[0].ExecutionCount)
	}
}

func TestRunCellAutoDefineDisabled(t *testing.T) {
	executor := &fakeExecutor{
		respond: func(code string) *engine.Response {
			return nameError("q")
		},
	}
	runner := NewRunner(executor, 0, nil)
	nb := NewNotebook("nb", testNow)
	if _, err := runner.RunCell(context.Background(), nb, nb.Cells[0]); err != nil {
		t.Fatal(err)
	}
	if len(executor.codes) != 1 {
		t.Fatalf("got %q", executor.codes)
	}
}

func TestRunAllSequential(t *testing.T) {
	executor := &fakeExecutor{
		respond: func(code string) *engine.Response {
			return ok()
		},
	}
	runner := NewRunner(executor, 3, nil)
	nb := NewNotebook("nb", testNow)
	nb.Cells[0].Source = "a = 1"
	nb.InsertCell(1, NewCell(CellMarkdown, "skip"))
	nb.InsertCell(2, NewCell(CellCode, "b = a"))
	if err := runner.RunAll(context.Background(), nb); err != nil {
		t.Fatal(err)
	}
	if len(executor.codes) != 2 || executor.codes[0] != "a = 1" || executor.codes[1] != "b = a" {
		t.Fatalf("got %q", executor.codes)
	}
	if executor.sequences[0] != 1 || executor.sequences[1] != 2 {
		t.Fatalf("got %v", executor.sequences)
	}
	if nb.Cells[1].ExecutionCount != nil {
		t.Fatal("markdown cells are skipped")
	}

	if err := runner.Interrupt(); err != nil {
		t.Fatal(err)
	}
	if executor.interrupts != 1 {
		t.Fatal("expected interrupt")
	}
	// counter restarts with the engine
	if _, err := runner.RunCell(context.Background(), nb, nb.Cells[0]); err != nil {
		t.Fatal(err)
	}
	if *nb.Cells[0].ExecutionCount != 1 {
		t.Fatalf("got %d", *nb.Cells[0].ExecutionCount)
	}
}

func TestRunAllStopsAtInterrupt(t *testing.T) {
	executor := &fakeExecutor{
		respond: func(code string) *engine.Response {
			return &engine.Response{
				Status: engine.StatusError,
				Results: []outputs.Output{
					outputs.ErrorOutput(interp.KindInterrupted, "reset", testNow),
				},
			}
		},
	}
	runner := NewRunner(executor, 3, nil)
	nb := NewNotebook("nb", testNow)
	nb.InsertCell(1, NewCell(CellCode, "2"))
	err := runner.RunAll(context.Background(), nb)
	if !errors.Is(err, engine.ErrInterrupted) {
		t.Fatalf("got %v", err)
	}
	if len(executor.codes) != 1 {
		t.Fatalf("got %q", executor.codes)
	}
	if nb.Cells[0].ExecutionCount != nil {
		t.Fatal("interrupted cells have no execution count")
	}
}

func TestAutoDefineWithEngine(t *testing.T) {
	e := engine.New(engine.Options{
		Runtime: interp.Config{
			Core: []interp.Library{
				symbolic.Library{},
			},
			Renderer: symbolic.Renderer{},
		},
	})
	defer e.Close()

	runner := NewRunner(e, 3, nil)
	nb := NewNotebook("nb", testNow)
	nb.Cells[0].Source = "a + b"
	resp, err := runner.RunCell(context.Background(), nb, nb.Cells[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Raw != "a + b" {
		t.Fatalf("got %+v", resp.Results)
	}
	if len(resp.Variables) != 2 {
		t.Fatalf("got %+v", resp.Variables)
	}
}

func TestAutoDefineRetryKeepsLastAttempt(t *testing.T) {
	e := engine.New(engine.Options{
		Runtime: interp.Config{
			Core: []interp.Library{
				symbolic.Library{},
			},
			Renderer: symbolic.Renderer{},
		},
	})
	defer e.Close()

	runner := NewRunner(e, 3, nil)
	nb := NewNotebook("nb", testNow)
	nb.Cells[0].Source = "print('once')\nc * 2"
	resp, err := runner.RunCell(context.Background(), nb, nb.Cells[0])
	if err != nil {
		t.Fatal(err)
	}
	var printed []string
	for _, output := range resp.Results {
		if output.Type == outputs.TypeText && !output.IsResult {
			printed = append(printed, output.Value)
		}
	}
	if len(printed) != 1 || printed[0] != "once\n" {
		t.Fatalf("got %+v", resp.Results)
	}
	last := resp.Results[len(resp.Results)-1]
	if last.Raw != "2*c" {
		t.Fatalf("got %+v", resp.Results)
	}
}
