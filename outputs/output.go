package outputs

import "time"

type Type string

const (
	TypeText  Type = "text"
	TypeMath  Type = "math"
	TypeImage Type = "image"
	TypeError Type = "error"
)

// Output is one displayable piece of a cell's result.
type Output struct {
	Type      Type      `json:"type" yaml:"type"`
	Value     string    `json:"value" yaml:"value"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	// Raw is the copyable plain text of a math result.
	Raw string `json:"raw,omitempty" yaml:"raw,omitempty"`
	// Tabular is tab separated text of matrix and list results.
	Tabular  string `json:"tabular,omitempty" yaml:"tabular,omitempty"`
	IsResult bool   `json:"isResult,omitempty" yaml:"is_result,omitempty"`

	ErrorName    string   `json:"errorName,omitempty" yaml:"error_name,omitempty"`
	Line         int      `json:"line,omitempty" yaml:"line,omitempty"`
	Traceback    string   `json:"traceback,omitempty" yaml:"traceback,omitempty"`
	MissingNames []string `json:"missingNames,omitempty" yaml:"missing_names,omitempty"`
}

// ErrorOutput builds an error output outside of an evaluation.
func ErrorOutput(name string, message string, now time.Time) Output {
	return Output{
		Type:      TypeError,
		Value:     message,
		Timestamp: now,
		ErrorName: name,
	}
}
