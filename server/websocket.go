package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/outputs"
	"github.com/reusee/symbook/syncs"
	"golang.org/x/net/websocket"
)

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	server := websocket.Server{
		Handshake: s.checkOrigin,
		Handler:   s.handleConn,
	}
	server.ServeHTTP(w, r)
}

// checkOrigin rejects browser pages served from remote hosts unless remote access is allowed.
func (s *Server) checkOrigin(config *websocket.Config, r *http.Request) error {
	if s.options.AllowRemote {
		return nil
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// not a browser
		return nil
	}
	if s.options.IsLocalAddr == nil {
		return errors.New("origin check is not configured")
	}
	local, err := s.options.IsLocalAddr(origin)
	if err != nil {
		return err
	}
	if !local {
		s.logger.Warn("reject websocket origin", "origin", origin)
		return fmt.Errorf("origin %s is not allowed", origin)
	}
	return nil
}

type connWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *connWriter) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.JSON.Send(c.conn, v)
}

func (s *Server) handleConn(conn *websocket.Conn) {
	defer conn.Close()
	logger := s.logger.With("remote", conn.Request().RemoteAddr)
	logger.Debug("websocket connected")
	defer logger.Debug("websocket closed")

	// in-flight requests are abandoned before waiting for their goroutines
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(conn.Request().Context())
	defer cancel()

	writer := &connWriter{
		conn: conn,
	}

	// readiness signals
	signals, stop := s.options.Engine.Subscribe()
	defer stop()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if err := writer.send(sig); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	sem := syncs.NewSemaphore(s.options.MaxInFlight)
	for {
		var req engine.Request
		if err := websocket.JSON.Receive(conn, &req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				// the bad frame is consumed, keep the connection
				if err := writer.send(&engine.Response{
					Status:  engine.StatusError,
					Results: errorResults(fmt.Errorf("bad request: %w", err)),
				}); err != nil {
					return
				}
				continue
			}
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				logger.Debug("receive", "error", err)
			}
			return
		}
		if err := sem.AcquireContext(ctx); err != nil {
			return
		}
		clientID := req.ID
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release()
			resp, err := s.options.Engine.Do(ctx, req)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				resp = &engine.Response{
					ID:     clientID,
					Status: engine.StatusError,
				}
				resp.Results = errorResults(err)
			}
			// answer with the id the client chose
			resp.ID = clientID
			if err := writer.send(resp); err != nil {
				cancel()
			}
		}()
	}
}

func errorResults(err error) []outputs.Output {
	return []outputs.Output{
		outputs.ErrorOutput("EngineError", err.Error(), time.Now()),
	}
}
