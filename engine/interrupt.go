package engine

import (
	"errors"

	"github.com/reusee/symbook/interp"
)

const interruptedMessage = "Execution interrupted; the engine was reset"

var ErrInterrupted = errors.New("interrupted")

// Interrupt resolves every pending request as interrupted, discards the
// evaluation context and starts a new worker. It does not wait for the new
// worker to become ready.
func (e *Engine) Interrupt() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.logger.Info("interrupt", "session", e.session.serial, "pending", len(e.pending))
	e.resetLocked()
	return nil
}

func (e *Engine) resetLocked() {
	e.failPendingLocked(interp.KindInterrupted, interruptedMessage)
	// cancelling the context also cancels the running starlark thread
	e.session.cancel(ErrInterrupted)
	e.startLocked()
}
