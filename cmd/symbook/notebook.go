package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/logs"
	"github.com/reusee/symbook/notebooks"
)

func runFile(scope dscope.Scope, path string) {
	scope.Call(func(
		logger logs.Logger,
		newEngine engine.NewEngine,
		newRunner notebooks.NewDefaultRunner,
	) {
		content, err := os.ReadFile(path)
		ce(err)

		e := newEngine()
		defer e.Close()
		runner := newRunner(e)

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		nb := notebooks.NewNotebook(name, time.Now())
		nb.Cells = nil
		for _, source := range splitCells(string(content)) {
			nb.Cells = append(nb.Cells, notebooks.NewCell(notebooks.CellCode, source))
		}
		logger.Debug("run file", "path", path, "cells", len(nb.Cells))

		runErr := runner.RunAll(context.Background(), nb)

		failed := runErr != nil
		for _, cell := range nb.Cells {
			if cell.ExecutionCount == nil && len(cell.Outputs) == 0 {
				continue
			}
			count := " "
			if cell.ExecutionCount != nil {
				count = fmt.Sprint(*cell.ExecutionCount)
			}
			fmt.Printf("[%s]: %s\n", count, firstLine(cell.Source))
			resp := &engine.Response{
				Results: cell.Outputs,
			}
			if printResponse(os.Stdout, resp) {
				failed = true
			}
		}
		if runErr != nil {
			fmt.Fprintln(os.Stderr, runErr)
		}
		if failed {
			os.Exit(1)
		}
	})
}

func firstLine(source string) string {
	line, rest, _ := strings.Cut(source, "\n")
	if rest != "" {
		return line + " ..."
	}
	return line
}

func exportNotebook(scope dscope.Scope, id string, path string) {
	scope.Call(func(
		openStore notebooks.OpenDefaultStore,
	) {
		ctx := context.Background()
		store, err := openStore(ctx)
		ce(err)
		defer store.Close()

		nb, err := store.Get(ctx, id)
		ce(err)

		f, err := os.Create(path)
		ce(err)
		defer f.Close()
		ce(notebooks.Export(f, nb))
	})
}

func importNotebook(scope dscope.Scope, path string) {
	scope.Call(func(
		openStore notebooks.OpenDefaultStore,
	) {
		ctx := context.Background()
		store, err := openStore(ctx)
		ce(err)
		defer store.Close()

		f, err := os.Open(path)
		ce(err)
		defer f.Close()
		nb, err := notebooks.Import(f)
		ce(err)
		ce(store.Save(ctx, nb))
		fmt.Println(nb.ID)
	})
}

func listNotebooks(scope dscope.Scope) {
	scope.Call(func(
		openStore notebooks.OpenDefaultStore,
	) {
		ctx := context.Background()
		store, err := openStore(ctx)
		ce(err)
		defer store.Close()

		summaries, err := store.List(ctx)
		ce(err)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCELLS\tUPDATED")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Cells, s.Updated.Format(time.DateTime))
		}
		ce(w.Flush())
	})
}
