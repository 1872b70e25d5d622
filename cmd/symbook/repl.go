package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chzyer/readline"
	"github.com/reusee/dscope"
	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/interp"
	"github.com/reusee/symbook/logs"
	"github.com/reusee/symbook/notebooks"
	"golang.org/x/term"
)

func repl(scope dscope.Scope) {
	scope.Call(func(
		logger logs.Logger,
		newEngine engine.NewEngine,
		newRunner notebooks.NewDefaultRunner,
	) {
		e := newEngine()
		defer e.Close()
		runner := newRunner(e)
		nb := notebooks.NewNotebook("repl", time.Now())
		nb.Cells = nil

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			// piped input is one cell
			content, err := io.ReadAll(os.Stdin)
			ce(err)
			if printCell(runner, nb, string(content)) {
				os.Exit(1)
			}
			return
		}

		var historyFile string
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".symbook_history")
		}
		rl, err := readline.NewEx(&readline.Config{
			HistoryFile: historyFile,
		})
		ce(err)
		defer rl.Close()

		var lastVariables []interp.Variable
		for {
			code, err := readCell(rl, fmt.Sprintf("[%d]: ", len(nb.Cells)+1))
			if err == readline.ErrInterrupt {
				continue
			} else if err != nil { // Ctrl-D
				break
			}
			if strings.TrimSpace(code) == "" {
				continue
			}

			if strings.HasPrefix(code, ":") {
				fields := strings.Fields(code)
				switch fields[0] {
				case ":quit", ":q":
					return
				case ":reset":
					ce(runner.Interrupt())
					nb.Cells = nil
					lastVariables = nil
					fmt.Println("reset")
				case ":vars":
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					for _, v := range lastVariables {
						fmt.Fprintf(w, "%s\t%s\t%s\n", v.Name, v.Type, v.Preview)
					}
					w.Flush()
				case ":del":
					for _, name := range fields[1:] {
						resp, err := e.DeleteVariable(context.Background(), name)
						if err != nil {
							fmt.Fprintln(os.Stderr, err)
							break
						}
						printResponse(os.Stdout, resp)
						lastVariables = resp.Variables
					}
				case ":search":
					resp, err := e.SearchDocs(context.Background(), strings.Join(fields[1:], " "))
					if err != nil {
						fmt.Fprintln(os.Stderr, err)
						break
					}
					for _, hit := range resp.SearchResults {
						fmt.Printf("%s\t%s\n", hit.Name, hit.Summary)
					}
				default:
					fmt.Println(":quit  :reset  :vars  :del <name>...  :search <query>  ?<name>")
				}
				continue
			}

			if resp := runCell(runner, nb, code, logger); resp != nil {
				printResponse(os.Stdout, resp)
				if resp.Variables != nil {
					lastVariables = resp.Variables
				}
			}
		}
	})
}

// readCell reads one line, or a block when the line ends with a colon. A block ends at an empty line.
func readCell(rl *readline.Instance, prompt string) (string, error) {
	rl.SetPrompt(prompt)
	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(strings.TrimSpace(line), ":") {
		return line, nil
	}
	lines := []string{line}
	rl.SetPrompt(strings.Repeat(" ", max(len(prompt)-5, 0)) + "...: ")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			return "", nil
		} else if err != nil {
			break
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// runCell appends code to nb as a cell and runs it. Ctrl-C while running resets the engine.
func runCell(runner *notebooks.Runner, nb *notebooks.Notebook, code string, logger logs.Logger) *engine.Response {
	cell := notebooks.NewCell(notebooks.CellCode, code)
	nb.Cells = append(nb.Cells, cell)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			if err := runner.Interrupt(); err != nil {
				logger.Warn("interrupt", "error", err)
			}
		case <-done:
		}
	}()
	defer func() {
		signal.Stop(sigs)
		close(done)
	}()

	resp, err := runner.RunCell(context.Background(), nb, cell)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil
	}
	return resp
}

func printCell(runner *notebooks.Runner, nb *notebooks.Notebook, code string) (hasError bool) {
	resp, err := runner.RunCell(context.Background(), nb, notebooks.NewCell(notebooks.CellCode, code))
	ce(err)
	return printResponse(os.Stdout, resp)
}
