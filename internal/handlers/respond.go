// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the poster shop API.
// Handlers are grouped by audience (public, seller, admin, rpc) and receive
// their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"postershop/internal/apperr"
)

// maxJSONBody caps request bodies on JSON endpoints.
const maxJSONBody = 1 << 20

// mutationResult is the response of every mutating admin endpoint.
type mutationResult struct {
	Success  bool   `json:"success"`
	PosterID string `json:"posterId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// writeJSON sends v with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// writeSuccess reports a successful poster mutation.
func writeSuccess(w http.ResponseWriter, r *http.Request, status int, posterID string) {
	writeJSON(w, r, status, mutationResult{Success: true, PosterID: posterID})
}

// writeFailure sends the failure envelope with a message.
func writeFailure(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, mutationResult{Success: false, Error: msg})
}

// writeError maps a classified error to its HTTP status and sends the
// failure envelope. Internal errors are logged; their details stay out of
// the response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(apperr.CodeOf(err))
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeFailure(w, r, status, apperr.Message(err))
}

func httpStatus(code apperr.Code) int {
	switch code {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.AlreadyExists, apperr.TransactionConflict:
		return http.StatusConflict
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.PermissionDenied:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a size-limited JSON body into v. Malformed bodies are
// reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := render.DecodeJSON(r.Body, v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.New(apperr.Validation, "request body too large")
		case errors.Is(err, io.EOF):
			return apperr.New(apperr.Validation, "request body is empty")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return apperr.New(apperr.Validation, "malformed JSON: unexpected end of input")
		}
		var syntax *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntax):
			return apperr.New(apperr.Validation, "malformed JSON at offset %d", syntax.Offset)
		case errors.As(err, &typeErr):
			return apperr.New(apperr.Validation, "field %q has the wrong type", typeErr.Field)
		}
		return apperr.Wrap(apperr.Validation, err, "invalid request body")
	}
	return nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.New(apperr.Validation, "%s must be a non-negative integer", name)
	}
	return n, nil
}

// paging reads limit and offset query parameters.
func paging(r *http.Request) (limit, offset int, err error) {
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(r, "offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
