package bookconfigs

import (
	"github.com/reusee/symbook/cmds"
	"github.com/reusee/symbook/configs"
	"github.com/reusee/symbook/vars"
)

type ListenAddr string

var listenFlag = cmds.Var[string]("-listen", "http listen address")

func (Module) ListenAddr(
	loader configs.Loader,
) ListenAddr {
	return ListenAddr(vars.FirstNonZero(
		*listenFlag,
		configs.First[string](loader, "listen"),
		"127.0.0.1:8765",
	))
}

type AllowRemote bool

var allowRemoteFlag = cmds.Switch("-allow-remote", "accept websocket connections from non-local origins")

func (Module) AllowRemote(
	loader configs.Loader,
) AllowRemote {
	return AllowRemote(*allowRemoteFlag || configs.First[bool](loader, "allow_remote"))
}

type DBPath string

var dbPathFlag = cmds.Var[string]("-db", "notebook database path")

func (Module) DBPath(
	loader configs.Loader,
) DBPath {
	return DBPath(vars.FirstNonZero(
		*dbPathFlag,
		configs.First[string](loader, "db_path"),
		"symbook.db",
	))
}

// PreviewLimit bounds the rune length of variable previews sent to front-ends.
type PreviewLimit int

func (Module) PreviewLimit(
	loader configs.Loader,
) PreviewLimit {
	return PreviewLimit(vars.FirstNonZero(
		configs.First[int](loader, "preview_limit"),
		100,
	))
}

// AutoDefineRetries is how many times a cell is re-run after defining its missing names as symbols.
type AutoDefineRetries int

var autoDefineFlag = cmds.Var[int]("-auto-define", "auto define retries, negative to disable")

func (Module) AutoDefineRetries(
	loader configs.Loader,
) AutoDefineRetries {
	if n := *autoDefineFlag; n != 0 {
		return AutoDefineRetries(max(n, 0))
	}
	n, ok, err := configs.Lookup[int](loader, "auto_define_retries")
	if err != nil {
		panic(err)
	}
	if ok {
		return AutoDefineRetries(max(n, 0))
	}
	return 3
}

type DefaultSymbols []string

func (Module) DefaultSymbols(
	loader configs.Loader,
) DefaultSymbols {
	if symbols := configs.First[[]string](loader, "default_symbols"); len(symbols) > 0 {
		return symbols
	}
	return DefaultSymbols{"x", "y", "z", "t"}
}

// Constants are numeric names seeded into every evaluation context.
type Constants map[string]float64

func (Module) Constants(
	loader configs.Loader,
) Constants {
	ret := make(Constants)
	// later documents are less specific, so they must not override earlier ones
	for m := range configs.All[map[string]float64](loader, "constants") {
		for k, v := range m {
			if _, ok := ret[k]; !ok {
				ret[k] = v
			}
		}
	}
	return ret
}

// PlotSize is the rendered figure size in points.
type PlotSize struct {
	Width  float64
	Height float64
}

func (Module) PlotSize(
	loader configs.Loader,
) PlotSize {
	return PlotSize{
		Width: vars.FirstNonZero(
			configs.First[float64](loader, "plot_width"),
			432,
		),
		Height: vars.FirstNonZero(
			configs.First[float64](loader, "plot_height"),
			288,
		),
	}
}
