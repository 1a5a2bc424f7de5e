package types

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable category of a domain error
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindAlreadySettled    ErrorKind = "ALREADY_SETTLED"
	KindAlreadyProcessed  ErrorKind = "ALREADY_PROCESSED"
	KindStorageFailure    ErrorKind = "STORAGE_FAILURE"
)

// Error is a failure of a single wallet operation
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error // Underlying error, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a new Error with a formatted message
func Newf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error in an Error
func Wrap(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...any) *Error {
	return Newf(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return Newf(KindNotFound, format, args...)
}

func InsufficientFunds(have, need int64) *Error {
	return Newf(KindInsufficientFunds, "insufficient balance: have %d, need %d", have, need)
}

func Forbidden(format string, args ...any) *Error {
	return Newf(KindForbidden, format, args...)
}

func AlreadySettled(betID int64) *Error {
	return Newf(KindAlreadySettled, "bet %d is already settled", betID)
}

func AlreadyProcessed(format string, args ...any) *Error {
	return Newf(KindAlreadyProcessed, format, args...)
}

func StorageFailure(message string, err error) *Error {
	return Wrap(KindStorageFailure, message, err)
}

// KindOf returns the kind of the first Error in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether the caller may retry the operation.
// Only transient storage failures qualify; precondition failures are terminal.
func IsRetryable(err error) bool {
	return IsKind(err, KindStorageFailure)
}
