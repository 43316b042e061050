// Package errorkind defines the closed error taxonomy shared by the
// inspector endpoint and the controller bridge.
package errorkind

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of error categories a handler, the
// marshaler, or the bridge can report.
type Kind string

const (
	InvalidRequest       Kind = "InvalidRequest"
	MissingField         Kind = "MissingField"
	NotFound             Kind = "NotFound"
	NotRenderable        Kind = "NotRenderable"
	PropertyNotFound     Kind = "PropertyNotFound"
	Timeout              Kind = "Timeout"
	HandlerError         Kind = "HandlerError"
	ProcessGone          Kind = "ProcessGone"
	InspectorUnreachable Kind = "InspectorUnreachable"
	ConnectionTimeout    Kind = "ConnectionTimeout"
	RequestTimeout       Kind = "RequestTimeout"
	ProtocolError        Kind = "ProtocolError"
)

// Error is a classified error that crosses a component boundary.
type Error struct {
	Kind    Kind
	Message string
	Data    map[string]any
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}

// As extracts an *Error from err, if present in its chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Remediation returns a human-readable recovery sentence for the error
// kinds the controller bridge surfaces to its caller. Other kinds have no
// standard remediation and return an empty string.
func Remediation(kind Kind) string {
	switch kind {
	case ProcessGone:
		return "the target process has exited; re-discover candidates and re-attach to the replacement PID"
	case InspectorUnreachable:
		return "no inspector endpoint responded for this process; re-discover candidates and re-attach once the target registers one"
	default:
		return ""
	}
}

// WithRemediation appends a remediation sentence (if one exists for the
// error's kind) to its message, returning a new *Error.
func WithRemediation(e *Error) *Error {
	if e == nil {
		return nil
	}
	sentence := Remediation(e.Kind)
	if sentence == "" {
		return e
	}
	return &Error{Kind: e.Kind, Message: e.Message + ": " + sentence, Data: e.Data}
}
