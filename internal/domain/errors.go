package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so the transport layer can map them to
// status codes without inspecting message text.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindInvalidRole        ErrorKind = "invalid_role"
	KindConflict           ErrorKind = "conflict"
	KindDependencyExists   ErrorKind = "dependency_exists"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindExternal           ErrorKind = "external_collaborator"
)

// Error carries an ErrorKind alongside a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// NewError builds a domain error of the given kind.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapExternal marks a collaborator failure without losing the cause.
func WrapExternal(message string, cause error) *Error {
	return &Error{Kind: KindExternal, Message: message, cause: cause}
}

// KindOf extracts the ErrorKind from err, or an empty kind for plain errors.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// ErrActivityNotFound is returned when an activity id does not resolve.
var ErrActivityNotFound = NewError(KindNotFound, "activity not found")

// ErrVersionConflict signals a lost optimistic-concurrency race; the service
// reloads and retries before surfacing anything to the caller.
var ErrVersionConflict = errors.New("activity version conflict")
