package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/logs"
	"github.com/reusee/symbook/nets"
	"github.com/reusee/symbook/notebooks"
)

const defaultMaxInFlight = 8

type Options struct {
	Engine *engine.Engine
	// Store is optional, notebook routes answer 404 without it.
	Store       *notebooks.Store
	Runner      *notebooks.Runner
	Logger      logs.Logger
	NewSpan     logs.NewSpan
	IsLocalAddr nets.IsLocalAddr
	AllowRemote bool
	// MaxInFlight bounds concurrent requests per websocket connection.
	MaxInFlight int
}

type Server struct {
	options Options
	logger  *slog.Logger
	handler http.Handler
	// notebook runs modify stored notebooks, one at a time
	runMu sync.Mutex
}

var _ http.Handler = new(Server)

func New(options Options) *Server {
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	if options.MaxInFlight <= 0 {
		options.MaxInFlight = defaultMaxInFlight
	}
	if options.Runner == nil {
		options.Runner = notebooks.NewRunner(options.Engine, 0, options.Logger)
	}
	s := &Server{
		options: options,
		logger:  options.Logger,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recovery)
	r.Use(s.logRequests)

	r.Get("/ws", s.serveWebsocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Post("/execute", s.execute)
		r.Post("/complete", s.complete)
		r.Delete("/variables/{name}", s.deleteVariable)
		r.Get("/docs", s.searchDocs)
		r.Get("/docs/{name}", s.documentation)
		r.Post("/interrupt", s.interrupt)

		r.Route("/notebooks", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.listNotebooks)
			r.Post("/", s.createNotebook)
			r.Post("/import", s.importNotebook)
			r.Get("/{id}", s.getNotebook)
			r.Put("/{id}", s.saveNotebook)
			r.Patch("/{id}", s.renameNotebook)
			r.Delete("/{id}", s.deleteNotebook)
			r.Get("/{id}/export", s.exportNotebook)
			r.Post("/{id}/run", s.runNotebook)
			r.Post("/{id}/cells/{cell}/run", s.runCell)
		})
	})

	return r
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.logger.ErrorContext(r.Context(), "panic in handler",
					"panic", p,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, errors.New("internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.options.NewSpan != nil {
			ctx, _ = s.options.NewSpan(ctx, "", "method", r.Method, "path", r.URL.Path)
			r = r.WithContext(ctx)
		}
		started := time.Now()
		sw := &statusWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}
		if r.URL.Path == "/ws" {
			// the websocket handler hijacks the connection, it needs the original writer
			next.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(sw, r)
		}
		s.logger.DebugContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"elapsed", time.Since(started),
		)
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.options.Store == nil {
			writeError(w, http.StatusNotFound, errors.New("notebook storage is disabled"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
	})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 8<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// engineError maps engine rejections to http statuses.
func engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, engine.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
