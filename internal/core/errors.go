package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies grouping failures.
type ErrorKind string

const (
	// KindValidation is an input shape problem detected before any row is read.
	KindValidation ErrorKind = "validation"
	// KindRuntime is a fault hit while processing a row, such as an unparseable date.
	KindRuntime ErrorKind = "runtime"
)

var (
	ErrLengthMismatch = errors.New("Length of group_by_range and group_by_values arguments do not match.")
	ErrRangeTooLong   = errors.New("range has more rows than group_by_range")
	ErrInvalidDate    = errors.New("invalid date")
)

// GroupError is returned by GroupByMonthYear. Error() yields the bare message
// so callers that only look at the text see the same string as before.
type GroupError struct {
	Kind ErrorKind
	Row  int // 0-based row index, -1 for validation errors
	Msg  string
	Err  error
}

func (e *GroupError) Error() string {
	return e.Msg
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

func validationError(err error) *GroupError {
	return &GroupError{Kind: KindValidation, Row: -1, Msg: err.Error(), Err: err}
}

func runtimeError(row int, err error) *GroupError {
	return &GroupError{Kind: KindRuntime, Row: row, Msg: err.Error(), Err: err}
}

// KindOf returns the kind of a grouping error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var ge *GroupError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// Message renders any error as its bare message string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ge *GroupError
	if errors.As(err, &ge) {
		return ge.Msg
	}
	return err.Error()
}

func invalidDate(v any) error {
	return fmt.Errorf("%w: %v", ErrInvalidDate, v)
}
