package interp

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"go.starlark.net/starlark"
)

type Doc struct {
	Name      string `json:"name"`
	Kind      string `json:"kind,omitempty"`
	Signature string `json:"signature,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Body      string `json:"body,omitempty"`
	Found     bool   `json:"found"`
}

type DocHit struct {
	Doc
	Score int `json:"score"`
}

// DocIndex is the documentation dataset of the installed libraries.
type DocIndex struct {
	docs  map[string]Doc
	names []string
}

func NewDocIndex() *DocIndex {
	return &DocIndex{
		docs: make(map[string]Doc),
	}
}

func (d *DocIndex) Add(docs ...Doc) {
	for _, doc := range docs {
		doc.Found = true
		if _, ok := d.docs[doc.Name]; !ok {
			d.names = append(d.names, doc.Name)
		}
		d.docs[doc.Name] = doc
	}
}

func (d *DocIndex) Get(name string) (Doc, bool) {
	doc, ok := d.docs[name]
	return doc, ok
}

// Search ranks entries by where the query matches: name prefix, name, summary, body.
func (d *DocIndex) Search(query string, limit int) []DocHit {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var hits []DocHit
	for _, name := range d.names {
		doc := d.docs[name]
		lower := strings.ToLower(doc.Name)
		score := 0
		switch {
		case lower == query:
			score = 100
		case strings.HasPrefix(lower, query):
			score = 80
		case strings.Contains(lower, query):
			score = 60
		case strings.Contains(strings.ToLower(doc.Summary), query):
			score = 40
		case strings.Contains(strings.ToLower(doc.Body), query):
			score = 20
		}
		if score > 0 {
			hits = append(hits, DocHit{
				Doc:   doc,
				Score: score,
			})
		}
	}
	slices.SortStableFunc(hits, func(a, b DocHit) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			cmp.Compare(a.Name, b.Name),
		)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Documentation looks up name in the dataset, falling back to describing the value bound to it.
func (rt *Runtime) Documentation(name string) Doc {
	name = strings.TrimSpace(name)
	if doc, ok := rt.docs.Get(name); ok {
		return doc
	}
	value, ok := rt.lookup(name)
	if !ok {
		return Doc{
			Name: name,
		}
	}
	if fn, ok := value.(*starlark.Function); ok {
		return functionDoc(fn)
	}
	desc := rt.config.Describer.Describe(value)
	kind := "variable"
	if desc.IsCallable {
		kind = "function"
	}
	return Doc{
		Name:      name,
		Kind:      kind,
		Signature: desc.TypeName,
		Summary:   desc.Preview,
		Found:     true,
	}
}

func (rt *Runtime) SearchDocs(query string, limit int) []DocHit {
	return rt.docs.Search(query, limit)
}

func functionDoc(fn *starlark.Function) Doc {
	params := make([]string, 0, fn.NumParams())
	for i := range fn.NumParams() {
		name, _ := fn.Param(i)
		switch {
		case fn.HasVarargs() && i == fn.NumParams()-1-boolInt(fn.HasKwargs()):
			name = "*" + name
		case fn.HasKwargs() && i == fn.NumParams()-1:
			name = "**" + name
		}
		params = append(params, name)
	}
	summary, body, _ := strings.Cut(strings.TrimSpace(fn.Doc()), "\n")
	return Doc{
		Name:      fn.Name(),
		Kind:      "function",
		Signature: fmt.Sprintf("%s(%s)", fn.Name(), strings.Join(params, ", ")),
		Summary:   strings.TrimSpace(summary),
		Body:      strings.TrimSpace(body),
		Found:     true,
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
