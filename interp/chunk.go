package interp

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// execChunk runs the statements of a cell one by one against the namespace.
//
// Each statement is compiled as its own program. Names it binds at top level are
// its globals, seeded from the namespace and written back after it ran, even on error.
// Every other name resolves to the namespace map itself as a predeclared, so
// functions look it up when they run and see assignments made by later cells.
func (rt *Runtime) execChunk(thread *starlark.Thread, f *syntax.File) error {
	globals := rt.namespace.globals
	// a function may refer to a name bound by a later statement of the same cell
	cellBound := make(map[string]bool)
	for _, stmt := range f.Stmts {
		for _, name := range boundNames(stmt) {
			cellBound[name] = true
		}
	}
	isPredeclared := func(name string) bool {
		return globals.Has(name) || cellBound[name]
	}
	for _, stmt := range f.Stmts {
		if err := rt.execStatement(thread, f, stmt, globals, isPredeclared); err != nil {
			return err
		}
	}
	return nil
}

// seedPrefix marks the temporary predeclared names carrying the current values of rebound names.
// It cannot start a Starlark identifier, so user code never sees them.
const seedPrefix = "$"

func (rt *Runtime) execStatement(
	thread *starlark.Thread,
	f *syntax.File,
	stmt syntax.Stmt,
	globals starlark.StringDict,
	isPredeclared func(string) bool,
) error {
	pos := syntax.Start(stmt)

	var stmts []syntax.Stmt
	var seeded []string
	for _, name := range boundNames(stmt) {
		value, ok := globals[name]
		if !ok {
			continue
		}
		seed := seedPrefix + name
		globals[seed] = value
		seeded = append(seeded, seed)
		stmts = append(stmts, &syntax.AssignStmt{
			OpPos: pos,
			Op:    syntax.EQ,
			LHS: &syntax.Ident{
				NamePos: pos,
				Name:    name,
			},
			RHS: &syntax.Ident{
				NamePos: pos,
				Name:    seed,
			},
		})
	}
	defer func() {
		for _, seed := range seeded {
			delete(globals, seed)
		}
	}()
	stmts = append(stmts, stmt)

	program, err := starlark.FileProgram(&syntax.File{
		Path:    f.Path,
		Stmts:   stmts,
		Options: f.Options,
	}, isPredeclared)
	if err != nil {
		return err
	}
	bound, err := program.Init(thread, globals)
	for name, value := range bound {
		globals[name] = value
	}
	return err
}

// boundNames returns the names a top level statement binds, in order of first binding.
func boundNames(stmt syntax.Stmt) []string {
	var names []string
	seen := make(map[string]bool)
	bind := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	var target func(syntax.Expr)
	target = func(e syntax.Expr) {
		switch e := e.(type) {
		case *syntax.Ident:
			bind(e.Name)
		case *syntax.ParenExpr:
			target(e.X)
		case *syntax.TupleExpr:
			for _, x := range e.List {
				target(x)
			}
		case *syntax.ListExpr:
			for _, x := range e.List {
				target(x)
			}
		}
	}

	var visit func(syntax.Stmt)
	visit = func(stmt syntax.Stmt) {
		switch stmt := stmt.(type) {
		case *syntax.AssignStmt:
			target(stmt.LHS)
		case *syntax.DefStmt:
			bind(stmt.Name.Name)
		case *syntax.ForStmt:
			target(stmt.Vars)
			for _, s := range stmt.Body {
				visit(s)
			}
		case *syntax.WhileStmt:
			for _, s := range stmt.Body {
				visit(s)
			}
		case *syntax.IfStmt:
			for _, s := range stmt.True {
				visit(s)
			}
			for _, s := range stmt.False {
				visit(s)
			}
		case *syntax.LoadStmt:
			for _, to := range stmt.To {
				bind(to.Name)
			}
		}
	}
	visit(stmt)

	return names
}
