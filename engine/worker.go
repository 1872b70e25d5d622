package engine

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/reusee/symbook/interp"
	"github.com/reusee/symbook/outputs"
)

const searchLimit = 20

type extendedLoad struct {
	lib interp.Library
	pkg interp.Package
	err error
}

// worker is the only goroutine touching the runtime of its session.
type worker struct {
	engine  *Engine
	session *session
	runtime *interp.Runtime
	logger  *slog.Logger
	loads   chan extendedLoad
	loading int
	failed  bool
}

func (e *Engine) runWorker(s *session) {
	logger := e.logger.With("session", s.serial)
	config := e.options.Runtime
	config.Logger = logger

	started := time.Now()
	rt, err := interp.NewRuntime(s.ctx, config)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		logger.Error("load runtime", "error", err)
		e.signal(s, Signal{
			Type:  SignalLoadError,
			Error: err.Error(),
		})
		return
	}
	logger.Debug("runtime ready", "elapsed", time.Since(started))

	w := &worker{
		engine:  e,
		session: s,
		runtime: rt,
		logger:  logger,
		loads:   make(chan extendedLoad, len(config.Extended)),
	}
	for _, lib := range config.Extended {
		w.loading++
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			pkg, err := lib.Load(s.ctx)
			w.loads <- extendedLoad{
				lib: lib,
				pkg: pkg,
				err: err,
			}
		}()
	}

	e.signal(s, Signal{
		Type: SignalReady,
	})

	for {
		select {
		case <-s.ctx.Done():
			return
		case load := <-w.loads:
			w.install(load)
		case <-s.mailbox.notify:
			for {
				if s.ctx.Err() != nil {
					return
				}
				req, ok := s.mailbox.pop()
				if !ok {
					break
				}
				e.resolve(s, w.handle(req))
			}
		}
	}
}

func (w *worker) install(load extendedLoad) {
	w.loading--
	if load.err != nil {
		w.failed = true
		w.runtime.AbandonExtended(load.lib)
		if w.session.ctx.Err() == nil {
			w.logger.Warn("load extended library",
				"library", load.lib.Name(),
				"error", load.err,
			)
		}
	} else {
		w.runtime.InstallExtended(load.pkg)
		w.logger.Debug("extended library ready", "library", load.lib.Name())
	}
	if w.loading == 0 && !w.failed {
		w.engine.signal(w.session, Signal{
			Type: SignalGraphicsReady,
		})
	}
}

// awaitExtended blocks until the libraries code depends on are installed or abandoned.
func (w *worker) awaitExtended(code string) {
	for w.loading > 0 && w.runtime.NeedsExtended(code) {
		select {
		case <-w.session.ctx.Done():
			return
		case load := <-w.loads:
			w.install(load)
		}
	}
}

func (w *worker) handle(req *Request) (resp *Response) {
	defer func() {
		if p := recover(); p != nil {
			w.logger.Error("handle request",
				"id", req.ID,
				"action", req.Action,
				"panic", p,
				"stack", string(debug.Stack()),
			)
			resp = emptyResponse(req)
			resp.Status = StatusError
			resp.Results = []outputs.Output{
				outputs.ErrorOutput(interp.KindInternal, fmt.Sprint(p), time.Now()),
			}
		}
	}()

	switch req.Action {
	case ActionExecute:
		return w.execute(req)
	case ActionComplete:
		resp = emptyResponse(req)
		resp.Completions = w.runtime.Complete(req.Code, req.Position)
		return resp
	case ActionDeleteVariable:
		resp = emptyResponse(req)
		variables, err := w.runtime.DeleteVariable(req.Name)
		resp.Variables = variables
		if err != nil {
			resp.Status = StatusError
			resp.Results = []outputs.Output{
				outputs.ErrorOutput(interp.KindDeleteVariable, err.Error(), time.Now()),
			}
		}
		return resp
	case ActionSearchDocs:
		resp = emptyResponse(req)
		resp.SearchResults = w.runtime.SearchDocs(req.Query, searchLimit)
		return resp
	}

	resp = emptyResponse(req)
	resp.Status = StatusError
	resp.Results = []outputs.Output{
		outputs.ErrorOutput(interp.KindInternal, fmt.Sprintf("unknown action %q", req.Action), time.Now()),
	}
	return resp
}

func (w *worker) execute(req *Request) *Response {
	resp := emptyResponse(req)

	// documentation lookup
	if code := strings.TrimSpace(req.Code); strings.HasPrefix(code, "?") {
		doc := w.runtime.Documentation(strings.TrimSpace(code[1:]))
		resp.Documentation = &doc
		return resp
	}

	w.awaitExtended(req.Code)

	started := time.Now()
	result := w.runtime.Evaluate(w.session.ctx, req.Code)
	resp.Results = outputs.Classify(result, time.Now())
	resp.Variables = w.runtime.Variables()
	w.logger.Debug("executed",
		"id", req.ID,
		"sequence", req.Sequence,
		"outputs", len(resp.Results),
		"elapsed", time.Since(started),
	)
	return resp
}
