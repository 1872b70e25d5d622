package server

import (
	"github.com/reusee/dscope"
	"github.com/reusee/symbook/bookconfigs"
	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/logs"
	"github.com/reusee/symbook/nets"
	"github.com/reusee/symbook/notebooks"
)

type Module struct {
	dscope.Module
	Notebooks notebooks.Module
	Nets      nets.Module
}

type NewServer func(e *engine.Engine, store *notebooks.Store) *Server

func (Module) NewServer(
	logger logs.Logger,
	newSpan logs.NewSpan,
	isLocalAddr nets.IsLocalAddr,
	allowRemote bookconfigs.AllowRemote,
	newRunner notebooks.NewDefaultRunner,
) NewServer {
	return func(e *engine.Engine, store *notebooks.Store) *Server {
		return New(Options{
			Engine:      e,
			Store:       store,
			Runner:      newRunner(e),
			Logger:      logger,
			NewSpan:     newSpan,
			IsLocalAddr: isLocalAddr,
			AllowRemote: bool(allowRemote),
		})
	}
}
