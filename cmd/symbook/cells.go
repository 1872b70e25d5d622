package main

import (
	"strings"
)

// splitCells splits source into cells at blank lines. Indented lines after a blank line continue the previous cell.
func splitCells(source string) []string {
	var cells []string
	var current []string
	var pendingBlanks int

	flush := func() {
		if len(current) > 0 {
			cells = append(cells, strings.Join(current, "\n"))
		}
		current = nil
		pendingBlanks = 0
	}

	for line := range strings.Lines(source) {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				pendingBlanks++
			}
			continue
		}
		if pendingBlanks > 0 {
			if line[0] == ' ' || line[0] == '\t' {
				for range pendingBlanks {
					current = append(current, "")
				}
				pendingBlanks = 0
			} else {
				flush()
			}
		}
		current = append(current, line)
	}
	flush()

	return cells
}
