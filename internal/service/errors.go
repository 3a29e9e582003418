package service

import (
	"errors"

	"blood-request-coordinator/internal/logging"
	"blood-request-coordinator/internal/store"
	"blood-request-coordinator/internal/validation"
)

type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindNotFound         ErrorKind = "not_found"
	KindConflict         ErrorKind = "conflict"
	KindStoreUnavailable ErrorKind = "store_unavailable"
	KindTransient        ErrorKind = "transient"
)

const (
	msgNotInitialized = "Database not initialized."
	msgIndexRequired  = "The query is not supported by the database. This usually means an index is required or access rules deny it; a newly created index may need a moment to build."
)

// Error is the only error type services return. Message is safe to show to
// end users.
type Error struct {
	Kind    ErrorKind
	Message string
	// Fields holds per-field messages for validation failures
	Fields map[string]string
	// IndexRequired marks transient failures caused by a missing index or
	// denied access rather than the network
	IndexRequired bool

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ErrStoreUnavailable is returned by every operation when no store is configured
var ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable, Message: msgNotInitialized}

func invalid(message string, err error) error {
	out := &Error{Kind: KindValidation, Message: message, cause: err}
	var verr *validation.Error
	if errors.As(err, &verr) {
		out.Fields = verr.Fields
	}
	return out
}

func notFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// translate logs a caught failure and converts it to an *Error. Errors that
// already are an *Error pass through untouched.
func translate(op string, err error, fallback string) error {
	if err == nil {
		return nil
	}

	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	logging.API.WithError(err).WithField("op", op).Error("Operation failed")

	switch {
	case errors.Is(err, store.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: fallback, cause: err}
	case errors.Is(err, store.ErrIndexRequired), errors.Is(err, store.ErrPermissionDenied):
		return &Error{Kind: KindTransient, Message: msgIndexRequired, IndexRequired: true, cause: err}
	default:
		return &Error{Kind: KindTransient, Message: fallback, cause: err}
	}
}

// KindOf reports the kind of err, or KindTransient for foreign errors
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindTransient
}
