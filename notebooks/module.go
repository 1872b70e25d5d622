package notebooks

import (
	"context"

	"github.com/reusee/dscope"
	"github.com/reusee/symbook/bookconfigs"
	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/logs"
)

type Module struct {
	dscope.Module
	Engine engine.Module
}

type OpenDefaultStore func(ctx context.Context) (*Store, error)

func (Module) OpenDefaultStore(
	path bookconfigs.DBPath,
	logger logs.Logger,
) OpenDefaultStore {
	return func(ctx context.Context) (*Store, error) {
		logger.Debug("open notebook store", "path", path)
		return OpenStore(ctx, string(path))
	}
}

type NewDefaultRunner func(executor Executor) *Runner

func (Module) NewDefaultRunner(
	retries bookconfigs.AutoDefineRetries,
	logger logs.Logger,
) NewDefaultRunner {
	return func(executor Executor) *Runner {
		return NewRunner(executor, int(retries), logger)
	}
}
