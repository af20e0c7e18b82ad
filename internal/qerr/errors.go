// Package qerr defines the error taxonomy shared by every stage of the query
// pipeline: parsing, plan building, lowering, and execution.
package qerr

import (
	"errors"
	"fmt"
)

// Code categorizes query errors.
type Code string

const (
	// CodeParse indicates malformed query text.
	CodeParse Code = "PARSE_ERROR"

	// CodeUnsupported indicates a construct the planner or assembler cannot
	// handle yet.
	CodeUnsupported Code = "UNSUPPORTED"

	// CodeStore indicates a backing store connect or read failure.
	CodeStore Code = "STORE_ERROR"

	// CodeExecution indicates a failure while evaluating rows, such as a
	// predicate producing a non-boolean value.
	CodeExecution Code = "EXECUTION_ERROR"

	// CodeUnknown is the catch-all.
	CodeUnknown Code = "UNKNOWN"
)

// Error is the structured error returned by the query pipeline.
//
// Parse errors fill Rule, Fragment, Offset, Line, and Column. Store errors
// carry the driver error in Err.
type Error struct {
	Code    Code
	Message string

	// Rule names the grammar rule that failed to match.
	Rule string

	// Fragment is the input text starting at the failure offset.
	Fragment string

	// Offset is a byte offset into the query text; Line and Column are
	// 1-based, Column counted in runes.
	Offset int
	Line   int
	Column int

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Code == CodeParse:
		return fmt.Sprintf("%s: line %d column %d: expected %s, got %q", e.Code, e.Line, e.Column, e.Rule, e.Fragment)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewParseError creates an error for query text that does not match the grammar.
func NewParseError(rule, fragment string, offset, line, column int) *Error {
	return &Error{
		Code:     CodeParse,
		Message:  "unable to parse query",
		Rule:     rule,
		Fragment: fragment,
		Offset:   offset,
		Line:     line,
		Column:   column,
	}
}

// NewUnsupported creates an error for a construct that cannot be planned or lowered.
func NewUnsupported(format string, args ...any) *Error {
	return &Error{Code: CodeUnsupported, Message: fmt.Sprintf(format, args...)}
}

// NewStoreError wraps a backing store failure.
func NewStoreError(message string, err error) *Error {
	return &Error{Code: CodeStore, Message: message, Err: err}
}

// NewExecutionError creates an error raised while processing rows.
func NewExecutionError(format string, args ...any) *Error {
	return &Error{Code: CodeExecution, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns err unchanged if it is already an *Error, otherwise it wraps
// it as CodeUnknown.
func Wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	var qe *Error
	if errors.As(err, &qe) {
		return err
	}
	return &Error{Code: CodeUnknown, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return CodeUnknown
}

// IsParseError reports whether err is a parse failure.
func IsParseError(err error) bool {
	return err != nil && CodeOf(err) == CodeParse
}

// IsUnsupported reports whether err is an unsupported construct.
func IsUnsupported(err error) bool {
	return err != nil && CodeOf(err) == CodeUnsupported
}

// IsStoreError reports whether err is a backing store failure.
func IsStoreError(err error) bool {
	return err != nil && CodeOf(err) == CodeStore
}
