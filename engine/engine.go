package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/symbook/interp"
	"github.com/reusee/symbook/logs"
	"github.com/reusee/symbook/outputs"
)

var (
	ErrClosed     = errors.New("engine closed")
	ErrNotStarted = errors.New("engine failed to start")
)

const subscriberBuffer = 16

type Options struct {
	Runtime interp.Config
	Logger  logs.Logger
	// NewSpan is optional. When set, every request gets its own span.
	NewSpan logs.NewSpan
}

// Engine correlates requests with the responses of a single worker.
// All methods are safe for concurrent use.
type Engine struct {
	options Options
	logger  *slog.Logger
	wg      sync.WaitGroup

	mu            sync.Mutex
	serial        uint64
	session       *session
	pending       map[string]*call
	queue         []*Request
	ready         bool
	graphicsReady bool
	loadErr       error
	// closed when the current session becomes ready or fails to load
	settled     chan struct{}
	closed      bool
	subscribers map[chan Signal]struct{}
}

type call struct {
	req *Request
	ch  chan *Response
}

func New(options Options) *Engine {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		options:     options,
		logger:      logger,
		pending:     make(map[string]*call),
		subscribers: make(map[chan Signal]struct{}),
	}
	e.mu.Lock()
	e.startLocked()
	e.mu.Unlock()
	return e
}

func (e *Engine) Execute(ctx context.Context, code string, notebookID string, sequence int) (*Response, error) {
	return e.Do(ctx, Request{
		Action:     ActionExecute,
		Code:       code,
		NotebookID: notebookID,
		Sequence:   sequence,
	})
}

func (e *Engine) Complete(ctx context.Context, code string, offset int) (*Response, error) {
	return e.Do(ctx, Request{
		Action:   ActionComplete,
		Code:     code,
		Position: offset,
	})
}

func (e *Engine) DeleteVariable(ctx context.Context, name string) (*Response, error) {
	return e.Do(ctx, Request{
		Action: ActionDeleteVariable,
		Name:   name,
	})
}

func (e *Engine) SearchDocs(ctx context.Context, query string) (*Response, error) {
	return e.Do(ctx, Request{
		Action: ActionSearchDocs,
		Query:  query,
	})
}

// Do sends one request and waits for its response.
// The request id is always replaced by a fresh one.
// An error is returned only if the engine is closed, its worker failed to start, or ctx is done.
func (e *Engine) Do(ctx context.Context, req Request) (*Response, error) {
	req.ID = uuid.NewString()
	if e.options.NewSpan != nil {
		ctx, _ = e.options.NewSpan(ctx, "", "action", req.Action)
	}
	e.logger.DebugContext(ctx, "request",
		"id", req.ID,
		"action", req.Action,
		"sequence", req.Sequence,
	)

	if req.Action == ActionInterrupt {
		if err := e.Interrupt(); err != nil {
			return nil, err
		}
		return emptyResponse(&req), nil
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}

	if req.Action == ActionExecute && req.NotebookID != "" {
		if current := e.session.notebookID; current != "" && current != req.NotebookID {
			e.logger.InfoContext(ctx, "notebook switched",
				"from", current,
				"to", req.NotebookID,
			)
			e.resetLocked()
		}
		e.session.notebookID = req.NotebookID
	}

	if !e.ready {
		if req.Action != ActionExecute {
			// nothing to ask before the runtime exists
			e.mu.Unlock()
			return emptyResponse(&req), nil
		}
		if e.loadErr != nil {
			err := e.loadErr
			e.mu.Unlock()
			return nil, logs.WrapSpan(ctx, fmt.Errorf("%w: %w", ErrNotStarted, err))
		}
	}

	c := &call{
		req: &req,
		ch:  make(chan *Response, 1),
	}
	e.pending[req.ID] = c
	if e.ready {
		e.session.mailbox.push(&req)
	} else {
		e.queue = append(e.queue, &req)
	}
	e.mu.Unlock()

	select {
	case resp := <-c.ch:
		return resp, nil
	case <-ctx.Done():
		e.mu.Lock()
		delete(e.pending, req.ID)
		e.queue = slices.DeleteFunc(e.queue, func(r *Request) bool {
			return r.ID == req.ID
		})
		e.mu.Unlock()
		return nil, logs.WrapSpan(ctx, context.Cause(ctx))
	}
}

// resolve delivers a worker response. Responses of discarded sessions are dropped.
func (e *Engine) resolve(s *session, resp *Response) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != s {
		return
	}
	c, ok := e.pending[resp.ID]
	if !ok {
		return
	}
	delete(e.pending, resp.ID)
	c.ch <- resp
}

func (e *Engine) signal(s *session, sig Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != s || e.closed {
		return
	}

	switch sig.Type {

	case SignalReady:
		e.ready = true
		close(e.settled)
		// release queued executions in submission order
		queue := e.queue
		e.queue = nil
		s.mailbox.push(queue...)

	case SignalGraphicsReady:
		e.graphicsReady = true

	case SignalLoadError:
		e.loadErr = errors.New(sig.Error)
		close(e.settled)
		now := time.Now()
		for _, req := range e.queue {
			c, ok := e.pending[req.ID]
			if !ok {
				continue
			}
			delete(e.pending, req.ID)
			resp := emptyResponse(req)
			resp.Status = StatusError
			resp.Results = []outputs.Output{
				outputs.ErrorOutput("LoadError", sig.Error, now),
			}
			c.ch <- resp
		}
		e.queue = nil
	}

	e.logger.Info("signal", "type", sig.Type, "session", s.serial)
	e.broadcastLocked(sig)
}

func (e *Engine) broadcastLocked(sig Signal) {
	for ch := range e.subscribers {
		select {
		case ch <- sig:
		default:
			e.logger.Warn("drop signal for slow subscriber", "type", sig.Type)
		}
	}
}

// Subscribe returns a channel of readiness signals and a function to stop receiving them.
// Signals already raised by the current session are delivered first.
func (e *Engine) Subscribe() (<-chan Signal, func()) {
	ch := make(chan Signal, subscriberBuffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	if e.ready {
		ch <- Signal{Type: SignalReady}
	}
	if e.graphicsReady {
		ch <- Signal{Type: SignalGraphicsReady}
	}
	if e.loadErr != nil {
		ch <- Signal{Type: SignalLoadError, Error: e.loadErr.Error()}
	}
	e.subscribers[ch] = struct{}{}
	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
	}
}

func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

func (e *Engine) GraphicsReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graphicsReady
}

// WaitReady blocks until the current session is ready.
func (e *Engine) WaitReady(ctx context.Context) error {
	for {
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return ErrClosed
		}
		if e.ready {
			e.mu.Unlock()
			return nil
		}
		if e.loadErr != nil {
			err := e.loadErr
			e.mu.Unlock()
			return fmt.Errorf("%w: %w", ErrNotStarted, err)
		}
		settled := e.settled
		e.mu.Unlock()

		select {
		case <-settled:
			// a reset may have replaced the session meanwhile, check again
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}

// Close resolves every pending request, stops the worker and waits for it to exit.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.failPendingLocked(interp.KindInterrupted, "Engine closed")
	e.session.cancel(ErrClosed)
	for ch := range e.subscribers {
		close(ch)
	}
	clear(e.subscribers)
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}

func (e *Engine) failPendingLocked(name string, message string) {
	now := time.Now()
	for id, c := range e.pending {
		resp := emptyResponse(c.req)
		resp.Status = StatusError
		resp.Results = []outputs.Output{
			outputs.ErrorOutput(name, message, now),
		}
		c.ch <- resp
		delete(e.pending, id)
	}
	e.queue = nil
}
