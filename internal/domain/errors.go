package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so callers can branch on it without string matching.
type ErrorKind string

const (
	KindTokenNotFound          ErrorKind = "token_not_found"
	KindTokenExpired           ErrorKind = "token_expired"
	KindUserNotFound           ErrorKind = "user_not_found"
	KindPersistence            ErrorKind = "persistence_error"
	KindUnexpected             ErrorKind = "unexpected_error"
	KindInvalidField           ErrorKind = "invalid_field"
	KindUnauthorized           ErrorKind = "unauthorized"
	KindAlreadyVerified        ErrorKind = "already_verified"
	KindMailDelivery           ErrorKind = "mail_delivery"
	KindVerificationInProgress ErrorKind = "verification_in_progress"
	KindRateLimited            ErrorKind = "rate_limited"
)

// Error is the contract every domain failure satisfies.
type Error interface {
	error
	Kind() ErrorKind
	GetCode() string
	GetMessage() string
}

// AppError is a tagged failure with an optional underlying cause.
// Two AppErrors match under errors.Is when their kinds are equal.
type AppError struct {
	kind    ErrorKind
	code    string
	message string
	cause   error
}

var (
	ErrTokenNotFound          = NewError(KindTokenNotFound, "V0001", "Verification token not found")
	ErrTokenExpired           = NewError(KindTokenExpired, "V0002", "Verification token expired")
	ErrUserNotFound           = NewError(KindUserNotFound, "V0003", "User not found")
	ErrPersistence            = NewError(KindPersistence, "V0004", "Failed to persist data")
	ErrUnexpected             = NewError(KindUnexpected, "V0005", "Unexpected error")
	ErrInvalidField           = NewError(KindInvalidField, "V0006", "Invalid field")
	ErrTokenRequired          = NewError(KindInvalidField, "V0006", "Verification token is required")
	ErrUnauthorized           = NewError(KindUnauthorized, "V0007", "Unauthorized")
	ErrAlreadyVerified        = NewError(KindAlreadyVerified, "V0008", "Email already verified")
	ErrMailDelivery           = NewError(KindMailDelivery, "V0009", "Failed to deliver email")
	ErrVerificationInProgress = NewError(KindVerificationInProgress, "V0010", "Verification already in progress")
	ErrRateLimited            = NewError(KindRateLimited, "V0011", "Rate limit exceeded")
)

// NewError creates an AppError without a cause.
func NewError(kind ErrorKind, code, message string) *AppError {
	return &AppError{kind: kind, code: code, message: message}
}

// NewPersistenceError wraps a storage failure.
func NewPersistenceError(cause error) *AppError {
	return ErrPersistence.WithCause(cause)
}

// NewUnexpectedError wraps any failure that has no domain meaning.
func NewUnexpectedError(cause error) *AppError {
	return ErrUnexpected.WithCause(cause)
}

// NewMailDeliveryError wraps a mail transport failure.
func NewMailDeliveryError(cause error) *AppError {
	return ErrMailDelivery.WithCause(cause)
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *AppError) Kind() ErrorKind    { return e.kind }
func (e *AppError) GetCode() string    { return e.code }
func (e *AppError) GetMessage() string { return e.message }

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an AppError of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.kind == e.kind
}

// WithCause returns a copy of e carrying cause.
func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{kind: e.kind, code: e.code, message: e.message, cause: cause}
}

// WithMessage returns a copy of e with a different message.
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{kind: e.kind, code: e.code, message: message, cause: e.cause}
}

// AsError extracts the domain Error from err's chain.
func AsError(err error) (Error, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnexpected for foreign errors.
func KindOf(err error) ErrorKind {
	if appErr, ok := AsError(err); ok {
		return appErr.Kind()
	}
	return KindUnexpected
}
