package archive

import (
	"errors"
	"fmt"
)

// Kind classifies a report failure. Every kind is fatal for the run.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindInvalidParameter    Kind = "invalid_parameter"
	KindInvalidReportType   Kind = "invalid_report_type"
	KindInvalidReportFormat Kind = "invalid_report_format"
	KindIO                  Kind = "io"
	KindCorruptTree         Kind = "corrupt_tree"
)

// Error is the single error type surfaced by the report pipeline.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == ""
}

// Sentinels for errors.Is.
var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrInvalidParameter    = &Error{Kind: KindInvalidParameter}
	ErrInvalidReportType   = &Error{Kind: KindInvalidReportType}
	ErrInvalidReportFormat = &Error{Kind: KindInvalidReportFormat}
	ErrIO                  = &Error{Kind: KindIO}
	ErrCorruptTree         = &Error{Kind: KindCorruptTree}
)

// E builds an *Error. Format args follow fmt.Sprintf.
func E(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around a cause.
func Wrap(kind Kind, op string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
