// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"postershop/internal/apperr"
	"postershop/internal/auth"
	"postershop/internal/cache"
	"postershop/internal/catalog"
	"postershop/internal/models"
	"postershop/internal/storage"
)

// Seller groups handlers for authenticated sellers. Every handler expects
// middleware.RequireCaller to run first.
type Seller struct {
	posters *catalog.Manager
	orders  *catalog.OrderBook
	images  *storage.Images
	cache   *cache.BrowseCache
}

// NewSeller creates a Seller handler group. images and browse may be nil.
func NewSeller(posters *catalog.Manager, orders *catalog.OrderBook, images *storage.Images, browse *cache.BrowseCache) *Seller {
	return &Seller{posters: posters, orders: orders, images: images, cache: browse}
}

// MyPosters lists the caller's posters in every status.
func (s *Seller) MyPosters(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFrom(r.Context())
	limit, offset, err := paging(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	posters, err := s.posters.List(r.Context(), catalog.ListOptions{
		SellerID: caller.UID,
		Status:   models.Status(r.URL.Query().Get("status")),
		Limit:    limit,
		Offset:   offset,
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

// Resubmit moves one of the caller's draft or rejected posters back into
// the review queue.
func (s *Seller) Resubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := auth.CallerFrom(ctx)
	id := chi.URLParam(r, "id")

	p, err := s.posters.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p.SellerID != caller.UID && !caller.IsAdmin() {
		writeError(w, r, apperr.New(apperr.PermissionDenied, "poster %q belongs to another seller", id))
		return
	}
	if p.Status == models.StatusApproved {
		writeError(w, r, apperr.New(apperr.Validation, "poster %q is already approved", id))
		return
	}

	if err := s.posters.Submit(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.cache.InvalidateAll(ctx, "poster", id, "submit")
	writeSuccess(w, r, http.StatusOK, id)
}

// MyOrders lists orders placed for the caller's posters.
func (s *Seller) MyOrders(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFrom(r.Context())
	limit, offset, err := paging(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orders, err := s.orders.List(r.Context(), catalog.OrderFilter{
		SellerID: caller.UID,
		Status:   models.OrderStatus(r.URL.Query().Get("status")),
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

// Upload stores a poster image from the multipart field "file" and returns
// its public URL.
func (s *Seller) Upload(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		writeFailure(w, r, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+1<<16)
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		writeFailure(w, r, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeFailure(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeFailure(w, r, http.StatusBadRequest, "failed to read file")
		return
	}

	imageURL, err := s.images.Upload(r.Context(), header.Filename, data)
	switch {
	case errors.Is(err, storage.ErrEmptyFile), errors.Is(err, storage.ErrUnsupportedType):
		writeFailure(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, storage.ErrFileTooLarge):
		writeFailure(w, r, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]string{"imageUrl": imageURL})
}
