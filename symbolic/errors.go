package symbolic

// kindError carries the error kind reported to notebook users.
type kindError struct {
	kind string
	msg  string
}

func (k *kindError) Error() string {
	return k.msg
}

func (k *kindError) Kind() string {
	return k.kind
}

var (
	ErrDivisionByZero = &kindError{kind: "ZeroDivisionError", msg: "division by zero"}
	ErrNotNumeric     = &kindError{kind: "TypeError", msg: "expression has free symbols"}
	ErrShape          = &kindError{kind: "ValueError", msg: "matrix shapes do not match"}
	ErrNotSquare      = &kindError{kind: "ValueError", msg: "matrix is not square"}
)

func typeError(msg string) error {
	return &kindError{kind: "TypeError", msg: msg}
}

func valueError(msg string) error {
	return &kindError{kind: "ValueError", msg: msg}
}
