package engine

import (
	"github.com/reusee/dscope"
	"github.com/reusee/symbook/bookconfigs"
	"github.com/reusee/symbook/interp"
	"github.com/reusee/symbook/logs"
	"github.com/reusee/symbook/plotting"
	"github.com/reusee/symbook/symbolic"
	"gonum.org/v1/plot/vg"
)

type Module struct {
	dscope.Module
	BookConfigs bookconfigs.Module
	Logs        logs.Module
}

func (Module) RuntimeConfig(
	symbols bookconfigs.DefaultSymbols,
	constants bookconfigs.Constants,
	previewLimit bookconfigs.PreviewLimit,
	plotSize bookconfigs.PlotSize,
	logger logs.Logger,
) interp.Config {
	return interp.Config{
		Core: []interp.Library{
			symbolic.Library{},
			interp.StdLibrary{},
		},
		Extended: []interp.Library{
			plotting.Library{
				Width:  vg.Length(plotSize.Width),
				Height: vg.Length(plotSize.Height),
			},
		},
		Renderer: symbolic.Renderer{},
		Describer: interp.StarlarkDescriber{
			PreviewLimit: int(previewLimit),
		},
		DefaultSymbols: symbols,
		Constants:      constants,
		Logger:         logger,
	}
}

// NewEngine starts an engine. The caller must Close it.
type NewEngine func() *Engine

func (Module) NewEngine(
	config interp.Config,
	logger logs.Logger,
	newSpan logs.NewSpan,
) NewEngine {
	return func() *Engine {
		return New(Options{
			Runtime: config,
			Logger:  logger,
			NewSpan: newSpan,
		})
	}
}
