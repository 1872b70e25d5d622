package interp

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync/atomic"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

//go:embed prelude.star
var preludeSource string

type Config struct {
	// Core libraries must all load before the runtime is usable.
	Core []Library
	// Extended libraries are loaded in the background after the core is ready.
	Extended  []Library
	Renderer  Renderer
	Describer Describer
	// DefaultSymbols are bound through SymbolConstructor at startup.
	DefaultSymbols    []string
	SymbolConstructor string
	Constants         map[string]float64
	Logger            *slog.Logger
}

// Runtime owns one evaluation context. It is not safe for concurrent use,
// except Cancel.
type Runtime struct {
	config    Config
	options   *syntax.FileOptions
	namespace *Namespace
	origins   *origins
	docs      *DocIndex
	graphics  []Graphics
	// names provided by not yet installed extended libraries
	pendingNames map[string]bool

	thread       atomic.Pointer[starlark.Thread]
	cancelReason atomic.Pointer[string]
}

func fileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}
}

func NewRuntime(ctx context.Context, config Config) (*Runtime, error) {
	if config.Describer == nil {
		config.Describer = StarlarkDescriber{
			PreviewLimit: 100,
		}
	}
	if config.SymbolConstructor == "" {
		config.SymbolConstructor = "Symbol"
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	rt := &Runtime{
		config:       config,
		options:      fileOptions(),
		namespace:    newNamespace(),
		origins:      newOrigins(),
		docs:         NewDocIndex(),
		pendingNames: make(map[string]bool),
	}

	// core libraries
	surface := make(starlark.StringDict)
	for _, lib := range config.Core {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pkg, err := lib.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", lib.Name(), err)
		}
		maps.Copy(surface, pkg.Members())
		rt.docs.Add(pkg.Docs()...)
		if g, ok := pkg.(Graphics); ok {
			rt.graphics = append(rt.graphics, g)
		}
	}

	// prelude
	thread := rt.newThread("prelude", io.Discard)
	helpers, err := starlark.ExecFileOptions(rt.options, thread, preludeFile, preludeSource, surface)
	if err != nil {
		return nil, fmt.Errorf("prelude: %w", err)
	}
	for name, value := range surface {
		rt.namespace.Set(name, value)
	}
	for name, value := range helpers {
		if strings.HasPrefix(name, "_") {
			continue
		}
		rt.namespace.Set(name, value)
		if fn, ok := value.(*starlark.Function); ok {
			rt.docs.Add(functionDoc(fn))
		}
	}

	// default symbols
	if constructor, ok := surface[rt.config.SymbolConstructor]; ok && len(config.DefaultSymbols) > 0 {
		names := make([]starlark.Value, 0, len(config.DefaultSymbols))
		for _, name := range config.DefaultSymbols {
			names = append(names, starlark.String(name))
		}
		seeded, err := starlark.Call(thread, helpers["_setup"], starlark.Tuple{
			starlark.NewList(names),
			constructor,
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("seed symbols: %w", err)
		}
		dict, ok := seeded.(*starlark.Dict)
		if !ok {
			return nil, fmt.Errorf("seed symbols: got %s, want dict", seeded.Type())
		}
		for _, item := range dict.Items() {
			name, ok := starlark.AsString(item[0])
			if !ok {
				continue
			}
			rt.namespace.Set(name, item[1])
		}
	}

	// constants
	for _, name := range slices.Sorted(maps.Keys(config.Constants)) {
		value, err := ToValue(config.Constants[name])
		if err != nil {
			return nil, fmt.Errorf("constant %s: %w", name, err)
		}
		rt.namespace.Set(name, value)
		rt.docs.Add(Doc{
			Name:    name,
			Kind:    "constant",
			Summary: fmt.Sprintf("Configured constant, %s.", value.String()),
		})
	}

	rt.namespace.markAmbient()

	for _, lib := range config.Extended {
		for _, name := range lib.Provides() {
			if !rt.namespace.Has(name) {
				rt.pendingNames[name] = true
			}
		}
	}

	return rt, nil
}

// InstallExtended merges a background-loaded package into the namespace.
// Its names become ambient.
func (rt *Runtime) InstallExtended(pkg Package) {
	members := pkg.Members()
	for _, name := range slices.Sorted(maps.Keys(members)) {
		rt.namespace.Set(name, members[name])
		rt.namespace.markAmbient(name)
		delete(rt.pendingNames, name)
	}
	rt.docs.Add(pkg.Docs()...)
	if g, ok := pkg.(Graphics); ok {
		rt.graphics = append(rt.graphics, g)
	}
}

// AbandonExtended forgets the names of an extended library that failed to load.
func (rt *Runtime) AbandonExtended(lib Library) {
	for _, name := range lib.Provides() {
		delete(rt.pendingNames, name)
	}
}

// NeedsExtended reports whether code references a name that only a not yet installed extended library provides.
func (rt *Runtime) NeedsExtended(code string) bool {
	if len(rt.pendingNames) == 0 {
		return false
	}
	f, err := rt.options.Parse("<scan>", code, 0)
	if err != nil {
		return false
	}
	found := false
	syntax.Walk(f, func(n syntax.Node) bool {
		if found {
			return false
		}
		if ident, ok := n.(*syntax.Ident); ok && rt.pendingNames[ident.Name] {
			found = true
		}
		return true
	})
	return found
}

func (rt *Runtime) Namespace() *Namespace {
	return rt.namespace
}

func (rt *Runtime) newThread(name string, stdout io.Writer) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			io.WriteString(stdout, msg)
			io.WriteString(stdout, "\n")
		},
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("load(%q): modules are not supported, every library is already in scope", module)
		},
	}
}

// Cancel stops the running evaluation, if any, and every later one.
// It is safe to call from any goroutine.
func (rt *Runtime) Cancel(reason string) {
	rt.cancelReason.Store(&reason)
	if thread := rt.thread.Load(); thread != nil {
		thread.Cancel(reason)
	}
}

func (rt *Runtime) Variables() []Variable {
	names := rt.namespace.UserNames()
	ret := make([]Variable, 0, len(names))
	for _, name := range names {
		value, _ := rt.namespace.Get(name)
		desc := rt.config.Describer.Describe(value)
		ret = append(ret, Variable{
			Name:    name,
			Type:    desc.TypeName,
			Preview: desc.Preview,
		})
	}
	return ret
}

func (rt *Runtime) DeleteVariable(name string) ([]Variable, error) {
	if err := rt.namespace.Delete(name); err != nil {
		return rt.Variables(), err
	}
	return rt.Variables(), nil
}
