// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gate implements the two callable entry points used by the
// storefront clients: seller poster submission and admin review. Each call
// is stateless; the caller identity is resolved by the transport.
package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"postershop/internal/auth"
	"postershop/internal/catalog"
	"postershop/internal/models"
)

// DefaultSize labels the size option derived for submissions without sizes.
const DefaultSize = "standard"

// submitRequired lists the submission fields that must be present and
// non-null, in the order they are checked.
var submitRequired = []string{"title", "imageUrl", "price", "category", "tags", "stock"}

// Lifecycle is the part of the catalog the gate writes through.
type Lifecycle interface {
	Create(ctx context.Context, in catalog.PosterInput, id string) (string, error)
	SetStatus(ctx context.Context, id string, status models.Status) error
}

// Gate serves the callable entry points.
type Gate struct {
	posters Lifecycle
}

// New creates a Gate writing through posters.
func New(posters Lifecycle) *Gate {
	return &Gate{posters: posters}
}

// SubmitResult is returned by SubmitPoster.
type SubmitResult struct {
	Success  bool   `json:"success"`
	PosterID string `json:"posterId"`
}

// ReviewResult is returned by ReviewPosterStatus.
type ReviewResult struct {
	Success     bool          `json:"success"`
	PosterID    string        `json:"posterId"`
	Status      models.Status `json:"status"`
	IsPublished bool          `json:"isPublished"`
}

// submission is the typed form of a submitPoster payload.
type submission struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ImageURL    string              `json:"imageUrl"`
	Price       decimal.Decimal     `json:"price"`
	Category    string              `json:"category"`
	Collections []string            `json:"collections"`
	Tags        []string            `json:"tags"`
	Stock       int                 `json:"stock"`
	Sizes       []models.SizeOption `json:"sizes"`
}

// SubmitPoster creates a pending poster owned by the caller.
func (g *Gate) SubmitPoster(ctx context.Context, caller *auth.Caller, payload json.RawMessage) (*SubmitResult, error) {
	if caller == nil {
		return nil, errorf(Unauthenticated, "you must be signed in to submit a poster")
	}

	fields, err := decodeObject(payload)
	if err != nil {
		return nil, err
	}
	for _, name := range submitRequired {
		if isNull(fields[name]) {
			return nil, errorf(InvalidArgument, "missing required field: %s", name)
		}
	}
	if !bytes.HasPrefix(bytes.TrimSpace(fields["tags"]), []byte("[")) {
		return nil, errorf(InvalidArgument, "tags must be a list")
	}

	var sub submission
	if err := json.Unmarshal(payload, &sub); err != nil {
		return nil, errorf(InvalidArgument, "malformed poster payload: %v", err)
	}

	sizes := sub.Sizes
	if len(sizes) == 0 {
		sizes = []models.SizeOption{{Size: DefaultSize, Price: sub.Price, FinalPrice: sub.Price}}
	}

	id, err := g.posters.Create(ctx, catalog.PosterInput{
		Title:       sub.Title,
		Description: sub.Description,
		Price:       sub.Price,
		Sizes:       sizes,
		Category:    sub.Category,
		Collections: sub.Collections,
		Tags:        sub.Tags,
		ImageURL:    sub.ImageURL,
		SellerID:    caller.UID,
		Stock:       sub.Stock,
		Status:      models.StatusPending,
	}, "")
	if err != nil {
		return nil, FromError(err)
	}

	slog.Info("poster submitted", "poster_id", id, "seller_id", caller.UID)
	return &SubmitResult{Success: true, PosterID: id}, nil
}

// ReviewPosterStatus approves or rejects a poster. Only admins may call it.
func (g *Gate) ReviewPosterStatus(ctx context.Context, caller *auth.Caller, payload json.RawMessage) (*ReviewResult, error) {
	if !caller.IsAdmin() {
		return nil, errorf(PermissionDenied, "only admins can review posters")
	}

	var req struct {
		PosterID string        `json:"posterId"`
		Status   models.Status `json:"status"`
	}
	if _, err := decodeObject(payload); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, errorf(InvalidArgument, "malformed review payload: %v", err)
	}
	if req.Status != models.StatusApproved && req.Status != models.StatusRejected {
		return nil, errorf(InvalidArgument, "status must be %q or %q", models.StatusApproved, models.StatusRejected)
	}
	req.PosterID = strings.TrimSpace(req.PosterID)
	if req.PosterID == "" {
		return nil, errorf(InvalidArgument, "missing required field: posterId")
	}

	if err := g.posters.SetStatus(ctx, req.PosterID, req.Status); err != nil {
		return nil, FromError(err)
	}

	slog.Info("poster reviewed", "poster_id", req.PosterID, "status", req.Status, "reviewer", caller.UID)
	return &ReviewResult{
		Success:     true,
		PosterID:    req.PosterID,
		Status:      req.Status,
		IsPublished: req.Status == models.StatusApproved,
	}, nil
}

// decodeObject splits a JSON object payload into its raw fields.
func decodeObject(payload json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return nil, errorf(InvalidArgument, "payload must be a JSON object")
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
