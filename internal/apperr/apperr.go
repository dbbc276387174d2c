// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error taxonomy shared by the catalog, the
// submission gate, the stores and the HTTP layer. Errors carry a string code
// so they serialize naturally and can be matched with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	// Validation means a required field is missing or malformed.
	Validation Code = "validation"

	// AlreadyExists means a poster with the requested id is already stored.
	AlreadyExists Code = "already-exists"

	// NotFound means the referenced poster (or order) does not exist.
	NotFound Code = "not-found"

	// Unauthenticated means the caller presented no valid identity.
	Unauthenticated Code = "unauthenticated"

	// PermissionDenied means the caller is known but not allowed.
	PermissionDenied Code = "permission-denied"

	// TransactionConflict means the store aborted the transaction because a
	// concurrent transaction touched the same records.
	TransactionConflict Code = "transaction-conflict"

	// Internal covers everything else.
	Internal Code = "internal"
)

// Error is a classified error with a human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error with the given code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under code. A nil err yields nil.
func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or Internal
// when err is unclassified. A nil err has no code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// Is reports whether err is classified under code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Message returns the message a client should see. Unclassified errors are
// reduced to a generic message so internal details do not leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Code == Internal {
			return "internal error"
		}
		return e.Message
	}
	return "internal error"
}
