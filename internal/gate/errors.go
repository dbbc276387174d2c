// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package gate

import (
	"errors"
	"fmt"
	"net/http"

	"postershop/internal/apperr"
)

// Status is the callable error vocabulary seen by clients.
type Status string

const (
	Unauthenticated  Status = "UNAUTHENTICATED"
	InvalidArgument  Status = "INVALID_ARGUMENT"
	PermissionDenied Status = "PERMISSION_DENIED"
	NotFound         Status = "NOT_FOUND"
	AlreadyExists    Status = "ALREADY_EXISTS"
	Aborted          Status = "ABORTED"
	Internal         Status = "INTERNAL"

	// ResourceExhausted is produced by the transport's rate limiter, never
	// by the gate itself.
	ResourceExhausted Status = "RESOURCE_EXHAUSTED"
)

// Error is a callable failure.
type Error struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

// HTTPStatus returns the HTTP status code used to transport e.
func (e *Error) HTTPStatus() int {
	switch e.Status {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case PermissionDenied:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case AlreadyExists, Aborted:
		return http.StatusConflict
	case ResourceExhausted:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func errorf(status Status, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// FromError converts any error into a callable Error, translating catalog
// error codes.
func FromError(err error) *Error {
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	status := Internal
	switch apperr.CodeOf(err) {
	case apperr.Validation:
		status = InvalidArgument
	case apperr.NotFound:
		status = NotFound
	case apperr.AlreadyExists:
		status = AlreadyExists
	case apperr.TransactionConflict:
		status = Aborted
	case apperr.Unauthenticated:
		status = Unauthenticated
	case apperr.PermissionDenied:
		status = PermissionDenied
	}
	return &Error{Status: status, Message: apperr.Message(err)}
}
