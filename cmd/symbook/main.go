package main

import (
	"fmt"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/symbook/cmds"
	"github.com/reusee/symbook/modes"
)

var action func(dscope.Scope)

func init() {
	cmds.Define("serve", cmds.Func(func() {
		action = serve
	}).Desc("serve the notebook api and websocket"))

	cmds.Define("repl", cmds.Func(func() {
		action = repl
	}).Desc("interactive prompt, or evaluate stdin as one cell"))

	cmds.Define("run", cmds.Func(func(path string) {
		action = func(scope dscope.Scope) {
			runFile(scope, path)
		}
	}).Args("<file>").Desc("run a file, blank line separated blocks are cells"))

	cmds.Define("export", cmds.Func(func(id string, path string) {
		action = func(scope dscope.Scope) {
			exportNotebook(scope, id, path)
		}
	}).Args("<id>", "<file>").Desc("export a stored notebook to a yaml file"))

	cmds.Define("import", cmds.Func(func(path string) {
		action = func(scope dscope.Scope) {
			importNotebook(scope, path)
		}
	}).Args("<file>").Desc("import a yaml notebook into the store"))

	cmds.Define("list", cmds.Func(func() {
		action = listNotebooks
	}).Desc("list stored notebooks"))
}

func main() {
	if err := cmds.GlobalExecutor.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cmds.GlobalExecutor.WriteUsage(os.Stderr)
		os.Exit(2)
	}
	if action == nil {
		action = repl
	}

	scope := dscope.New(
		new(Module),
		modes.FromEnv(),
	)
	action(scope)
}
