// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/ballot-box/models"
)

// ErrNotFound is the internal empty-result sentinel. Callers that treat
// absence as a normal case (the registrar's first read, current-election on
// a fresh store) check it with errors.Is; it is not part of the error-code
// taxonomy and handlers translate it to NOT_FOUND where it leaks through.
var ErrNotFound = errors.New("not found")

// Error is a typed store failure carrying one of the models.Code* values.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a typed store error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Conflict builds the uniqueness-violation error (code ALREADY_VOTED).
func Conflict(message string) *Error {
	return NewError(models.CodeAlreadyVoted, message)
}

// Invalid builds a validation error (code INVALID_DATA).
func Invalid(message string) *Error {
	return NewError(models.CodeInvalidData, message)
}

// CodeOf extracts the error code from err, unwrapping as needed. Untyped
// failures default to SERVER_ERROR so callers can always build an envelope.
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return models.CodeServerError
}

// IsConflict reports whether err is a uniqueness violation.
func IsConflict(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == models.CodeAlreadyVoted
}
