package interp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// ErrorRecord describes a failed evaluation.
type ErrorRecord struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// Line is the 1-based line in the failing cell, 0 when unknown.
	Line  int    `json:"line,omitempty"`
	Trace string `json:"trace,omitempty"`
}

func (e *ErrorRecord) Error() string {
	return e.Kind + ": " + e.Message
}

// Kinded is implemented by errors that know their error kind.
type Kinded interface {
	Kind() string
}

const (
	KindSyntax         = "SyntaxError"
	KindName           = "NameError"
	KindZeroDivision   = "ZeroDivisionError"
	KindType           = "TypeError"
	KindIndex          = "IndexError"
	KindKey            = "KeyError"
	KindAttribute      = "AttributeError"
	KindValue          = "ValueError"
	KindInterrupted    = "Interrupted"
	KindFailure        = "Failure"
	KindRuntime        = "RuntimeError"
	KindInternal       = "InternalError"
	KindDeleteVariable = "DeleteError"
)

var uninitializedPattern = regexp.MustCompile(`predeclared variable (\w+) is uninitialized`)

func (rt *Runtime) errorRecord(err error, cellFile string) *ErrorRecord {

	var syntaxErr syntax.Error
	if errors.As(err, &syntaxErr) {
		return &ErrorRecord{
			Kind:    KindSyntax,
			Message: syntaxErr.Msg,
			Line:    int(syntaxErr.Pos.Line),
		}
	}

	var resolveErrs resolve.ErrorList
	if errors.As(err, &resolveErrs) && len(resolveErrs) > 0 {
		kind := KindSyntax
		msgs := make([]string, 0, len(resolveErrs))
		for _, e := range resolveErrs {
			if strings.HasPrefix(e.Msg, "undefined:") {
				kind = KindName
			}
			msgs = append(msgs, e.Msg)
		}
		return &ErrorRecord{
			Kind:    kind,
			Message: strings.Join(msgs, "\n"),
			Line:    int(resolveErrs[0].Pos.Line),
		}
	}

	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		// a name looked up through the namespace was deleted, or its cell has not bound it yet
		if m := uninitializedPattern.FindStringSubmatch(evalErr.Msg); m != nil {
			evalErr.Msg = fmt.Sprintf("name '%s' is not defined", m[1])
		}
		record := &ErrorRecord{
			Kind:    classifyMessage(evalErr.Msg, evalErr.Unwrap()),
			Message: evalErr.Msg,
		}
		// innermost frame is last
		for i := len(evalErr.CallStack) - 1; i >= 0; i-- {
			pos := evalErr.CallStack[i].Pos
			if pos.Filename() == cellFile {
				record.Line = int(pos.Line)
				break
			}
		}
		record.Trace = rt.formatTrace(evalErr.CallStack, record)
		return record
	}

	return &ErrorRecord{
		Kind:    classifyMessage(err.Error(), errors.Unwrap(err)),
		Message: err.Error(),
	}
}

func (rt *Runtime) formatTrace(stack starlark.CallStack, record *ErrorRecord) string {
	buf := new(strings.Builder)
	n := 0
	for _, frame := range stack {
		if rt.origins.of(frame.Pos.Filename()) != OriginUser {
			continue
		}
		if n == 0 {
			buf.WriteString("Traceback (most recent call last):\n")
		}
		n++
		fmt.Fprintf(buf, "  File \"%s\", line %d, in %s\n", frame.Pos.Filename(), frame.Pos.Line, frame.Name)
	}
	if n == 0 {
		return ""
	}
	fmt.Fprintf(buf, "%s: %s", record.Kind, record.Message)
	return buf.String()
}

func classifyMessage(msg string, cause error) string {
	var kinded Kinded
	if cause != nil && errors.As(cause, &kinded) {
		return kinded.Kind()
	}
	switch {
	case strings.Contains(msg, "cancelled"):
		return KindInterrupted
	case strings.HasPrefix(msg, "fail: "):
		return KindFailure
	case strings.Contains(msg, "division by zero"),
		strings.Contains(msg, "modulo by zero"):
		return KindZeroDivision
	case strings.Contains(msg, "referenced before assignment"),
		strings.Contains(msg, "is not defined"),
		strings.HasPrefix(msg, "undefined:"):
		return KindName
	case strings.Contains(msg, "out of range"):
		return KindIndex
	case strings.Contains(msg, "not in dict"):
		return KindKey
	case strings.Contains(msg, "has no .") && strings.Contains(msg, "field or method"):
		return KindAttribute
	case strings.Contains(msg, "unsupported"),
		strings.Contains(msg, "unknown binary op"),
		strings.Contains(msg, "not callable"),
		strings.Contains(msg, "missing argument"),
		strings.Contains(msg, "unexpected keyword"),
		strings.Contains(msg, "got ") && strings.Contains(msg, "want "),
		strings.Contains(msg, "not iterable"),
		strings.Contains(msg, "unhashable"):
		return KindType
	case strings.Contains(msg, "invalid"):
		return KindValue
	}
	return KindRuntime
}
