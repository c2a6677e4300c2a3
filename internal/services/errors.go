package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error a service returns to the presentation layer either is one of these
// or wraps one; anything else is an internal failure.
var (
	ErrDuplicateIdentity = errors.New("duplicate identity")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrRateLimited       = errors.New("rate limited")
)

type ErrorKind string

const (
	KindDuplicateIdentity ErrorKind = "duplicate_identity"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindNotFound          ErrorKind = "not_found"
	KindValidation        ErrorKind = "validation"
	KindRateLimited       ErrorKind = "rate_limited"
	KindInternal          ErrorKind = "internal"
)

func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateIdentity):
		return KindDuplicateIdentity
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	default:
		return KindInternal
	}
}

func validationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

func notFoundError(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func duplicateIdentityError(field string) error {
	return fmt.Errorf("%w: %s already registered", ErrDuplicateIdentity, field)
}

var ErrAlreadyReviewed = validationError("submission already reviewed")

// ErrorReason returns the specific reason carried by err without its kind prefix.
func ErrorReason(err error) string {
	if err == nil {
		return ""
	}
	message := err.Error()
	for _, kind := range []error{ErrDuplicateIdentity, ErrUnauthorized, ErrNotFound, ErrValidation, ErrRateLimited} {
		if reason, found := strings.CutPrefix(message, kind.Error()+": "); found {
			return reason
		}
	}
	return message
}
