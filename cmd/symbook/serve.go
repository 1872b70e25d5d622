package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/symbook/bookconfigs"
	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/logs"
	"github.com/reusee/symbook/notebooks"
	"github.com/reusee/symbook/server"
	"golang.org/x/sync/errgroup"
)

func serve(scope dscope.Scope) {
	scope.Call(func(
		logger logs.Logger,
		addr bookconfigs.ListenAddr,
		newEngine engine.NewEngine,
		openStore notebooks.OpenDefaultStore,
		newServer server.NewServer,
	) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e := newEngine()
		defer e.Close()
		store, err := openStore(ctx)
		ce(err)
		defer store.Close()

		httpServer := &http.Server{
			Addr:              string(addr),
			Handler:           newServer(e, store),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		}

		group, ctx := errgroup.WithContext(ctx)
		group.Go(func() error {
			logger.Info("listening", "addr", addr)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
		ce(group.Wait())
	})
}
