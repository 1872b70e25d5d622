package notebooks

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/symbook/outputs"
)

type CellKind string

const (
	CellCode     CellKind = "code"
	CellMarkdown CellKind = "markdown"
)

type Cell struct {
	ID             string           `json:"id" yaml:"id"`
	Kind           CellKind         `json:"kind" yaml:"kind"`
	Source         string           `json:"source" yaml:"source"`
	Outputs        []outputs.Output `json:"outputs" yaml:"outputs,omitempty"`
	ExecutionCount *int             `json:"executionCount,omitempty" yaml:"execution_count,omitempty"`
	Elapsed        time.Duration    `json:"elapsed,omitempty" yaml:"elapsed,omitempty"`

	// transient
	Executing bool `json:"executing,omitempty" yaml:"-"`
	Editing   bool `json:"editing,omitempty" yaml:"-"`
}

func NewCell(kind CellKind, source string) *Cell {
	return &Cell{
		ID:      uuid.NewString(),
		Kind:    kind,
		Source:  source,
		Outputs: []outputs.Output{},
	}
}

type Notebook struct {
	ID      string    `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	Cells   []*Cell   `json:"cells" yaml:"cells"`
	Created time.Time `json:"created" yaml:"created"`
	Updated time.Time `json:"updated" yaml:"updated"`
}

// NewNotebook returns a notebook with one empty code cell.
func NewNotebook(name string, now time.Time) *Notebook {
	return &Notebook{
		ID:   uuid.NewString(),
		Name: name,
		Cells: []*Cell{
			NewCell(CellCode, ""),
		},
		Created: now,
		Updated: now,
	}
}

func (n *Notebook) Cell(id string) (*Cell, bool) {
	i := slices.IndexFunc(n.Cells, func(c *Cell) bool {
		return c.ID == id
	})
	if i < 0 {
		return nil, false
	}
	return n.Cells[i], true
}

// InsertCell inserts cell at index, clamped to the cell list.
func (n *Notebook) InsertCell(index int, cell *Cell) {
	index = max(0, min(index, len(n.Cells)))
	n.Cells = slices.Insert(n.Cells, index, cell)
}

func (n *Notebook) RemoveCell(id string) bool {
	before := len(n.Cells)
	n.Cells = slices.DeleteFunc(n.Cells, func(c *Cell) bool {
		return c.ID == id
	})
	return len(n.Cells) != before
}

// ClearTransient resets per-session cell state, as after an engine reset.
func (n *Notebook) ClearTransient() {
	for _, cell := range n.Cells {
		cell.Executing = false
		cell.Editing = false
	}
}
