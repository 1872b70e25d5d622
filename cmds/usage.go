package cmds

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

func (p *Executor) PrintUsage() {
	p.WriteUsage(os.Stderr)
}

func (p *Executor) WriteUsage(w io.Writer) {
	seen := make(map[*Command]bool)
	var names []string
	for name, cmd := range p.commands {
		if seen[cmd] || slices.Contains(cmd.Aliases, name) {
			continue
		}
		seen[cmd] = true
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		writeCommand(w, name, p.commands[name], 0)
	}
}

func writeCommand(w io.Writer, name string, cmd *Command, depth int) {
	indent := strings.Repeat("  ", depth)
	line := indent + name
	if len(cmd.ArgNames) > 0 {
		line += " " + strings.Join(cmd.ArgNames, " ")
	}
	if len(cmd.Aliases) > 0 {
		line += " (" + strings.Join(cmd.Aliases, ", ") + ")"
	}
	if cmd.Description != "" {
		line += "\t" + cmd.Description
	}
	fmt.Fprintln(w, line)

	subNames := make([]string, 0, len(cmd.Subs))
	for sub := range cmd.Subs {
		subNames = append(subNames, sub)
	}
	slices.Sort(subNames)
	for _, sub := range subNames {
		writeCommand(w, sub, cmd.Subs[sub], depth+1)
	}
}
