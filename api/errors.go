// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy shared by the listener, the poller and the reactor.
// Callers match on Kind, never on dynamic type.

package api

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used across the module.
var (
	// ErrWouldBlock reports that a non-blocking operation has nothing to do.
	// It is a condition, not a failure.
	ErrWouldBlock = errors.New("operation would block")
	// ErrClosed is returned by operations on a released descriptor.
	ErrClosed = errors.New("descriptor closed")
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindSocket covers socket creation, bind, listen and accept failures.
	KindSocket
	// KindIO covers per-connection I/O failures. Never propagated out of the loop.
	KindIO
	// KindConfig covers invalid or unreadable configuration.
	KindConfig
	// KindPoll marks a readiness-wait failure that terminates the loop.
	KindPoll
)

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindSocket:  "socket",
	KindIO:      "io",
	KindConfig:  "config",
	KindPoll:    "poll",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error lets a Kind be used as an errors.Is target.
func (k Kind) Error() string { return k.String() + " error" }

// Error is the tagged error value: kind, failing operation, message and cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// NewError creates a new Error of the given kind.
func NewError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Op != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Op)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause, usually a syscall errno.
func (e *Error) Unwrap() error { return e.Err }

// Is matches a Kind target against e.Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
