package services

import (
	"context"
	"errors"
	"strings"
)

// Error kinds. Every error produced by Wrap matches exactly one of them
// under errors.Is.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Error records where a failure happened. It unwraps to both its kind and
// the underlying cause.
type Error struct {
	Kind  error
	Stage string
	Op    string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	b.WriteString(": ")
	b.WriteString(e.detail())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func (e *Error) detail() string {
	var parts []string
	for _, part := range []string{e.Stage, e.Op, e.Msg} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// Wrap tags err with kind and the stage/operation it came from. A nil kind
// means ErrTransient; a nil err yields an error carrying only the message.
func Wrap(kind error, stage, operation, message string, err error) error {
	if kind == nil {
		kind = ErrTransient
	}
	return &Error{Kind: kind, Stage: stage, Op: operation, Msg: message, Err: err}
}

var categories = []struct {
	match error
	label string
}{
	{context.DeadlineExceeded, "timeout"},
	{context.Canceled, "canceled"},
	{ErrValidation, "validation"},
	{ErrConfiguration, "configuration"},
	{ErrNotFound, "not_found"},
	{ErrExternalTool, "external_tool"},
}

// Category is the short label used in metrics and status payloads.
func Category(err error) string {
	if err == nil {
		return "ok"
	}
	for _, c := range categories {
		if errors.Is(err, c.match) {
			return c.label
		}
	}
	return "transient"
}
