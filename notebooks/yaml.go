package notebooks

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/symbook/outputs"
	"gopkg.in/yaml.v3"
)

const formatVersion = 1

type document struct {
	Version int       `yaml:"symbook"`
	Name    string    `yaml:"name"`
	Created time.Time `yaml:"created,omitempty"`
	Cells   []*Cell   `yaml:"cells"`
}

func Export(w io.Writer, nb *Notebook) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{
		Version: formatVersion,
		Name:    nb.Name,
		Created: nb.Created,
		Cells:   nb.Cells,
	}); err != nil {
		return err
	}
	return enc.Close()
}

// Import reads an exported notebook. The result gets a new id so it never replaces a stored notebook.
func Import(r io.Reader) (*Notebook, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("unsupported notebook version %d", doc.Version)
	}

	now := time.Now()
	nb := NewNotebook(doc.Name, now)
	if !doc.Created.IsZero() {
		nb.Created = doc.Created
	}
	if len(doc.Cells) > 0 {
		nb.Cells = nb.Cells[:0]
	}
	seen := make(map[string]bool)
	for i, cell := range doc.Cells {
		if cell == nil {
			return nil, fmt.Errorf("cell %d is empty", i)
		}
		switch cell.Kind {
		case "":
			cell.Kind = CellCode
		case CellCode, CellMarkdown:
		default:
			return nil, fmt.Errorf("cell %d: unknown kind %q", i, cell.Kind)
		}
		if cell.ID == "" || seen[cell.ID] {
			cell.ID = uuid.NewString()
		}
		seen[cell.ID] = true
		if cell.Outputs == nil {
			cell.Outputs = []outputs.Output{}
		}
		nb.Cells = append(nb.Cells, cell)
	}
	return nb, nil
}
