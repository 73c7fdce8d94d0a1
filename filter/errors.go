package filter

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/file"
)

// CompilationError reports an expression rejected by the compiler.
// Line and Column are 1-based and 0 when expr gave no location.
type CompilationError struct {
	Expression string
	Line       int
	Column     int
	Reason     string
	Err        error
}

func newCompilationError(expression string, err error) *CompilationError {
	ce := &CompilationError{
		Expression: expression,
		Reason:     "failed to compile expression",
		Err:        err,
	}

	var fileErr *file.Error
	if errors.As(err, &fileErr) {
		ce.Reason = fileErr.Message
		ce.Line = fileErr.Line
		ce.Column = fileErr.Column + 1
	}
	return ce
}

func (e *CompilationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("filter %q: %s (line %d, column %d)", e.Expression, e.Reason, e.Line, e.Column)
	}
	return fmt.Sprintf("filter %q: %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// EvaluationError reports a runtime failure against one search result
type EvaluationError struct {
	Expression string
	EntityID   int64
	EntityName string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("filter %q failed on %s (id %d): %v", e.Expression, e.EntityName, e.EntityID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
