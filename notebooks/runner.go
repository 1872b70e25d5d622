package notebooks

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/outputs"
)

// Executor runs code in an evaluation context. *engine.Engine implements it.
type Executor interface {
	Execute(ctx context.Context, code string, notebookID string, sequence int) (*engine.Response, error)
	Interrupt() error
}

var _ Executor = new(engine.Engine)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Runner executes notebook cells one at a time and records their outputs.
type Runner struct {
	executor Executor
	// retries bounds how many times a cell is re-run after defining its missing names
	retries int
	logger  *slog.Logger

	mu      sync.Mutex
	counter int
}

func NewRunner(executor Executor, retries int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		executor: executor,
		retries:  max(retries, 0),
		logger:   logger,
	}
}

func (r *Runner) nextSequence() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return r.counter
}

// RunCell executes a code cell and replaces its outputs. Markdown cells are left as is and give a nil response.
//
// When the cell fails on undefined names, each is defined as a symbol and the whole cell runs again.
// The response of the last attempt is kept, so output printed by an earlier attempt is dropped.
// Names unknown when the cell is submitted are reported before any of its statements run, so such an
// attempt printed nothing. A function reading a name deleted since it was defined fails only when
// called, after the statements before the call ran.
func (r *Runner) RunCell(ctx context.Context, nb *Notebook, cell *Cell) (*engine.Response, error) {
	if cell.Kind != CellCode {
		cell.Editing = false
		return nil, nil
	}

	cell.Executing = true
	defer func() {
		cell.Executing = false
	}()
	sequence := r.nextSequence()
	started := time.Now()

	resp, err := r.executor.Execute(ctx, cell.Source, nb.ID, sequence)
	if err != nil {
		return nil, err
	}

	// define missing names as symbols and run again
	var defined []string
	for attempt := 0; attempt < r.retries; attempt++ {
		missing := missingNames(resp)
		if len(missing) == 0 {
			break
		}
		if slices.ContainsFunc(missing, func(name string) bool {
			return slices.Contains(defined, name)
		}) {
			// defining did not help
			break
		}
		r.logger.InfoContext(ctx, "auto define",
			"cell", cell.ID,
			"names", missing,
			"attempt", attempt+1,
		)
		defineResp, err := r.executor.Execute(ctx, DefineSymbols(missing), nb.ID, sequence)
		if err != nil {
			return nil, err
		}
		if defineResp.Interrupted() || hasError(defineResp) {
			break
		}
		defined = append(defined, missing...)
		resp, err = r.executor.Execute(ctx, cell.Source, nb.ID, sequence)
		if err != nil {
			return nil, err
		}
	}

	cell.Outputs = resp.Results
	if cell.Outputs == nil {
		cell.Outputs = []outputs.Output{}
	}
	cell.Elapsed = time.Since(started)
	if resp.Interrupted() {
		cell.ExecutionCount = nil
	} else {
		cell.ExecutionCount = &sequence
	}
	return resp, nil
}

// RunAll runs the code cells in order, each one after the previous finished.
// It stops at an interrupt but not at evaluation errors.
func (r *Runner) RunAll(ctx context.Context, nb *Notebook) error {
	for _, cell := range nb.Cells {
		resp, err := r.RunCell(ctx, nb, cell)
		if err != nil {
			return err
		}
		if resp != nil && resp.Interrupted() {
			return fmt.Errorf("cell %s: %w", cell.ID, engine.ErrInterrupted)
		}
	}
	return nil
}

// Interrupt resets the engine. A running RunCell then returns the interrupted
// response and clears its cell's executing flag.
func (r *Runner) Interrupt() error {
	r.mu.Lock()
	r.counter = 0
	r.mu.Unlock()
	return r.executor.Interrupt()
}

// DefineSymbols returns code binding every name to a symbol of the same name.
func DefineSymbols(names []string) string {
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s = Symbol(%q)\n", name, name)
	}
	return b.String()
}

func missingNames(resp *engine.Response) []string {
	for _, output := range resp.Results {
		if output.Type != outputs.TypeError {
			continue
		}
		var ret []string
		for _, name := range output.MissingNames {
			if identifierPattern.MatchString(name) {
				ret = append(ret, name)
			}
		}
		return ret
	}
	return nil
}

func hasError(resp *engine.Response) bool {
	return resp.Status == engine.StatusError || slices.ContainsFunc(resp.Results, func(output outputs.Output) bool {
		return output.Type == outputs.TypeError
	})
}
