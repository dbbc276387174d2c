// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"postershop/internal/apperr"
	"postershop/internal/cache"
	"postershop/internal/catalog"
	"postershop/internal/models"
	"postershop/internal/storage"
)

// Admin groups the back-office handlers. Every handler expects
// middleware.RequireAdmin to run first.
type Admin struct {
	posters *catalog.Manager
	orders  *catalog.OrderBook
	images  *storage.Images
	cache   *cache.BrowseCache
}

// NewAdmin creates a new Admin handler group. images and browse may be nil.
func NewAdmin(posters *catalog.Manager, orders *catalog.OrderBook, images *storage.Images, browse *cache.BrowseCache) *Admin {
	return &Admin{posters: posters, orders: orders, images: images, cache: browse}
}

// createPosterRequest is a PosterInput with an optional explicit id.
type createPosterRequest struct {
	ID string `json:"id"`
	catalog.PosterInput
}

// --- Posters ---

// ListPosters lists posters in any status, optionally filtered by status,
// seller, category, collection and keyword query.
func (a *Admin) ListPosters(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paging(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	posters, err := a.posters.List(r.Context(), catalog.ListOptions{
		Status:     models.Status(q.Get("status")),
		SellerID:   q.Get("sellerId"),
		Category:   q.Get("category"),
		Collection: q.Get("collection"),
		Query:      q.Get("q"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if posters == nil {
		posters = []models.Poster{}
	}
	writeJSON(w, r, http.StatusOK, posters)
}

// GetPoster returns one poster in any status.
func (a *Admin) GetPoster(w http.ResponseWriter, r *http.Request) {
	p, err := a.posters.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// CreatePoster creates a poster and its category and collection memberships.
func (a *Admin) CreatePoster(w http.ResponseWriter, r *http.Request) {
	var req createPosterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := a.posters.Create(r.Context(), req.PosterInput, req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.cache.InvalidateAll(r.Context(), "poster", id, "create")
	writeSuccess(w, r, http.StatusCreated, id)
}

// UpdatePoster replaces a poster's editable fields and moves its
// memberships.
func (a *Admin) UpdatePoster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in catalog.PosterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.posters.Update(r.Context(), id, in); err != nil {
		writeError(w, r, err)
		return
	}
	a.cache.InvalidateAll(r.Context(), "poster", id, "update")
	writeSuccess(w, r, http.StatusOK, id)
}

// DeletePoster removes a poster, its memberships, and its uploaded image.
func (a *Admin) DeletePoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	p, err := a.posters.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.posters.Delete(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	a.cache.InvalidateAll(ctx, "poster", id, "delete")

	if a.images != nil && p.ImageURL != "" {
		if err := a.images.Remove(ctx, p.ImageURL); err != nil {
			slog.Warn("poster image cleanup failed", "poster_id", id, "error", err)
		}
	}
	writeSuccess(w, r, http.StatusOK, id)
}

// statusActions maps the {action} path segment to a target status.
var statusActions = map[string]models.Status{
	"approve": models.StatusApproved,
	"reject":  models.StatusRejected,
	"submit":  models.StatusPending,
}

// SetPosterStatus handles POST /api/admin/posters/{id}/{action}.
func (a *Admin) SetPosterStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action := chi.URLParam(r, "action")
	status, ok := statusActions[action]
	if !ok {
		writeFailure(w, r, http.StatusNotFound, "unknown action "+action)
		return
	}

	if err := a.posters.SetStatus(r.Context(), id, status); err != nil {
		writeError(w, r, err)
		return
	}
	a.cache.InvalidateAll(r.Context(), "poster", id, action)
	writeSuccess(w, r, http.StatusOK, id)
}

// Reconcile rebuilds every membership ledger from the posters.
func (a *Admin) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := a.posters.Reconcile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if report.Updated > 0 {
		a.cache.InvalidateAll(r.Context(), "catalog", "*", "reconcile")
	}
	writeJSON(w, r, http.StatusOK, report)
}

// --- Orders ---

// ListOrders lists orders, optionally filtered by seller and status.
func (a *Admin) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paging(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	orders, err := a.orders.List(r.Context(), catalog.OrderFilter{
		SellerID: q.Get("sellerId"),
		Status:   models.OrderStatus(q.Get("status")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, r, http.StatusOK, orders)
}

// CreateOrder records a purchase confirmed by the payment gateway.
func (a *Admin) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in catalog.OrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := a.orders.Record(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, o)
}

// SetOrderStatus handles PUT /api/admin/orders/{id}/status.
func (a *Admin) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, apperr.New(apperr.Validation, "invalid order id"))
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.orders.SetStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "orderId": id})
}
