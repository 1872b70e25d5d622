package engine

import "context"

// session is one worker lifetime. Interrupt discards it and starts another.
type session struct {
	serial     uint64
	notebookID string
	ctx        context.Context
	cancel     context.CancelCauseFunc
	mailbox    *mailbox
}

func (e *Engine) startLocked() *session {
	e.serial++
	ctx, cancel := context.WithCancelCause(context.Background())
	s := &session{
		serial:  e.serial,
		ctx:     ctx,
		cancel:  cancel,
		mailbox: newMailbox(),
	}
	e.session = s
	e.ready = false
	e.graphicsReady = false
	e.loadErr = nil
	e.settled = make(chan struct{})
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.runWorker(s)
	}()
	return s
}
