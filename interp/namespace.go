package interp

import (
	"fmt"
	"maps"
	"slices"

	"go.starlark.net/starlark"
)

// Namespace is the evaluation context shared by all cells of one session.
// Ambient names are the ones present before any user code ran.
type Namespace struct {
	globals starlark.StringDict
	ambient map[string]bool
}

func newNamespace() *Namespace {
	return &Namespace{
		globals: make(starlark.StringDict),
		ambient: make(map[string]bool),
	}
}

func (n *Namespace) Get(name string) (starlark.Value, bool) {
	v, ok := n.globals[name]
	return v, ok
}

func (n *Namespace) Set(name string, value starlark.Value) {
	n.globals[name] = value
}

func (n *Namespace) Has(name string) bool {
	return n.globals.Has(name)
}

func (n *Namespace) IsAmbient(name string) bool {
	return n.ambient[name]
}

// Delete removes a user defined name.
func (n *Namespace) Delete(name string) error {
	if n.ambient[name] {
		return fmt.Errorf("cannot delete built-in name %q", name)
	}
	if _, ok := n.globals[name]; !ok {
		return fmt.Errorf("name %q is not defined", name)
	}
	delete(n.globals, name)
	return nil
}

func (n *Namespace) markAmbient(names ...string) {
	if len(names) == 0 {
		for name := range n.globals {
			n.ambient[name] = true
		}
		return
	}
	for _, name := range names {
		n.ambient[name] = true
	}
}

// Names returns all names, sorted.
func (n *Namespace) Names() []string {
	return slices.Sorted(maps.Keys(n.globals))
}

// UserNames returns the names defined by user code, sorted.
func (n *Namespace) UserNames() []string {
	var ret []string
	for name := range n.globals {
		if !n.ambient[name] {
			ret = append(ret, name)
		}
	}
	slices.Sort(ret)
	return ret
}
