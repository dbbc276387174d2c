// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"postershop/internal/apperr"
	"postershop/internal/auth"
	"postershop/internal/cache"
	"postershop/internal/gate"
)

// RPC exposes the callable functions. Requests carry {"data": {...}};
// responses are {"result": ...} or {"error": {"status", "message"}}.
type RPC struct {
	gate  *gate.Gate
	cache *cache.BrowseCache
}

// NewRPC creates the callable handler group. browse may be nil.
func NewRPC(g *gate.Gate, browse *cache.BrowseCache) *RPC {
	return &RPC{gate: g, cache: browse}
}

type rpcRequest struct {
	Data json.RawMessage `json:"data"`
}

type rpcResponse struct {
	Result any         `json:"result,omitempty"`
	Error  *gate.Error `json:"error,omitempty"`
}

// SubmitPoster handles POST /rpc/submitPoster.
func (h *RPC) SubmitPoster(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, "submitPoster", func(ctx context.Context, caller *auth.Caller, data json.RawMessage) (any, string, error) {
		res, err := h.gate.SubmitPoster(ctx, caller, data)
		if err != nil {
			return nil, "", err
		}
		return res, res.PosterID, nil
	})
}

// ReviewPosterStatus handles POST /rpc/reviewPosterStatus.
func (h *RPC) ReviewPosterStatus(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, "reviewPosterStatus", func(ctx context.Context, caller *auth.Caller, data json.RawMessage) (any, string, error) {
		res, err := h.gate.ReviewPosterStatus(ctx, caller, data)
		if err != nil {
			return nil, "", err
		}
		return res, res.PosterID, nil
	})
}

// call decodes the envelope, runs fn with the authenticated caller, and
// writes the envelope back. A successful call clears the browse cache.
func (h *RPC) call(w http.ResponseWriter, r *http.Request, name string, fn func(context.Context, *auth.Caller, json.RawMessage) (any, string, error)) {
	ctx := r.Context()

	var req rpcRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeRPCError(w, r, &gate.Error{Status: gate.InvalidArgument, Message: apperr.Message(err)})
		return
	}
	if len(req.Data) == 0 {
		writeRPCError(w, r, &gate.Error{Status: gate.InvalidArgument, Message: "request must carry a data field"})
		return
	}

	result, posterID, err := fn(ctx, auth.CallerFrom(ctx), req.Data)
	if err != nil {
		ge := gate.FromError(err)
		if ge.Status == gate.Internal {
			slog.Error("callable failed", "function", name, "error", err)
		}
		writeRPCError(w, r, ge)
		return
	}

	h.cache.InvalidateAll(ctx, "poster", posterID, name)
	writeJSON(w, r, http.StatusOK, rpcResponse{Result: result})
}

func writeRPCError(w http.ResponseWriter, r *http.Request, e *gate.Error) {
	writeJSON(w, r, e.HTTPStatus(), rpcResponse{Error: e})
}

// RPCRateLimited writes the callable envelope for requests rejected by the
// rate limiter.
func RPCRateLimited(w http.ResponseWriter, r *http.Request) {
	writeRPCError(w, r, &gate.Error{Status: gate.ResourceExhausted, Message: "too many requests"})
}
