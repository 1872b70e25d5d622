package engine

import (
	"github.com/reusee/symbook/interp"
	"github.com/reusee/symbook/outputs"
)

type Action string

const (
	ActionExecute        Action = "EXECUTE"
	ActionComplete       Action = "COMPLETE"
	ActionDeleteVariable Action = "DELETE_VARIABLE"
	ActionSearchDocs     Action = "SEARCH_DOCS"
	// ActionInterrupt is only carried by transports; it resets the engine.
	ActionInterrupt Action = "INTERRUPT"
)

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

type Request struct {
	ID       string `json:"id"`
	Action   Action `json:"action"`
	Code     string `json:"code,omitempty"`
	Position int    `json:"position,omitempty"`
	Name     string `json:"name,omitempty"`
	Query    string `json:"query,omitempty"`
	// NotebookID identifies the evaluation context owner; switching notebooks resets the engine.
	NotebookID string `json:"notebookId,omitempty"`
	// Sequence is supplied by the caller and echoed for display numbering.
	Sequence int `json:"sequence,omitempty"`
}

type Response struct {
	ID            string              `json:"id"`
	Status        Status              `json:"status"`
	Results       []outputs.Output    `json:"results"`
	Variables     []interp.Variable   `json:"variables,omitempty"`
	Documentation *interp.Doc         `json:"documentation,omitempty"`
	SearchResults []interp.DocHit     `json:"searchResults,omitempty"`
	Completions   []interp.Completion `json:"completions,omitempty"`
	Sequence      int                 `json:"sequence,omitempty"`
}

// Interrupted reports whether the response was produced by an engine reset.
func (r *Response) Interrupted() bool {
	for _, output := range r.Results {
		if output.Type == outputs.TypeError && output.ErrorName == interp.KindInterrupted {
			return true
		}
	}
	return false
}

type SignalType string

const (
	SignalReady         SignalType = "READY"
	SignalGraphicsReady SignalType = "GRAPHICS_READY"
	SignalLoadError     SignalType = "LOAD_ERROR"
)

type Signal struct {
	Type  SignalType `json:"type"`
	Error string     `json:"error,omitempty"`
}

func emptyResponse(req *Request) *Response {
	return &Response{
		ID:       req.ID,
		Status:   StatusSuccess,
		Results:  []outputs.Output{},
		Sequence: req.Sequence,
	}
}
