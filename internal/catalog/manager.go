// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog implements the poster lifecycle: creating, editing,
// deleting and moderating posters while keeping the category and collection
// membership records consistent with them.
//
// Every mutation runs inside a single store transaction that performs all of
// its reads before its first write. Membership records are loaded, changed
// in memory through a ledger batch and flushed together with the poster
// write, so either both are committed or neither is.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"postershop/internal/apperr"
	"postershop/internal/keywords"
	"postershop/internal/ledger"
	"postershop/internal/models"
	"postershop/internal/slug"
)

// Manager orchestrates poster mutations against a Store.
type Manager struct {
	store Store
	now   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager backed by store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// inTx runs fn in one transaction guarded against reads after writes.
// Errors that carry no code are reported as Internal.
func (m *Manager) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx *phasedTx) error) error {
	err := m.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		return fn(ctx, &phasedTx{tx: tx})
	})
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Code == apperr.Internal || appErr.Code == apperr.TransactionConflict {
			slog.Warn("catalog transaction failed", "op", op, "code", appErr.Code, "error", err)
		}
		return err
	}
	slog.Error("catalog transaction failed", "op", op, "error", err)
	return apperr.Wrap(apperr.Internal, err, "%s", op)
}

// Create validates in, derives the poster id and keywords, and writes the
// poster together with its category and collection memberships. A non-empty
// id overrides the derived one. The default status is pending. New posters
// need an image.
func (m *Manager) Create(ctx context.Context, in PosterInput, id string) (string, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return "", err
	}
	if in.ImageURL == "" {
		return "", apperr.New(apperr.Validation, "image is required")
	}

	now := m.now().UTC()
	id = strings.TrimSpace(id)
	if id == "" {
		id = slug.PosterID(in.Title, now)
	}
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}

	p := &models.Poster{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Sizes:       in.Sizes,
		Category:    in.Category,
		Collections: in.Collections,
		Tags:        in.Tags,
		ImageURL:    in.ImageURL,
		SellerID:    in.SellerID,
		Stock:       in.Stock,
		Status:      status,
		Keywords:    keywords.Extract(in.Title, in.Description, in.Tags, in.Collections),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := m.inTx(ctx, "create poster", func(ctx context.Context, tx *phasedTx) error {
		existing, err := tx.Poster(ctx, id)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.New(apperr.AlreadyExists, "poster %q already exists", id)
		}

		b := ledger.NewBatch()
		if err := b.Load(ctx, tx, models.KindCategory, p.Category); err != nil {
			return err
		}
		for _, c := range p.Collections {
			if err := b.Load(ctx, tx, models.KindCollection, c); err != nil {
				return err
			}
		}

		if err := b.Add(models.KindCategory, p.Category, id, now); err != nil {
			return err
		}
		for _, c := range p.Collections {
			if err := b.Add(models.KindCollection, c, id, now); err != nil {
				return err
			}
		}

		if err := tx.InsertPoster(ctx, p); err != nil {
			return err
		}
		if err := b.Flush(ctx, tx); err != nil {
			return err
		}
		return tx.UpsertTags(ctx, p.Tags, now)
	})
	if err != nil {
		return "", err
	}

	slog.Info("poster created", "poster_id", id, "category", p.Category, "status", p.Status)
	return id, nil
}

// Update replaces the editable fields of poster id and moves its memberships
// to match. Category membership is only touched when the category key
// changes. An empty Status, SellerID or ImageURL keeps the stored value.
func (m *Manager) Update(ctx context.Context, id string, in PosterInput) error {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return err
	}
	now := m.now().UTC()

	err := m.inTx(ctx, "update poster", func(ctx context.Context, tx *phasedTx) error {
		old, err := tx.Poster(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return apperr.New(apperr.NotFound, "poster %q not found", id)
		}

		categoryChanged := slug.Key(old.Category) != slug.Key(in.Category)
		added, removed := collectionDiff(old.Collections, in.Collections)

		b := ledger.NewBatch()
		if categoryChanged && slug.Key(old.Category) != "" {
			if err := b.Load(ctx, tx, models.KindCategory, old.Category); err != nil {
				return err
			}
		}
		if err := b.Load(ctx, tx, models.KindCategory, in.Category); err != nil {
			return err
		}
		for _, c := range append(append([]string(nil), added...), removed...) {
			if err := b.Load(ctx, tx, models.KindCollection, c); err != nil {
				return err
			}
		}

		if categoryChanged {
			if slug.Key(old.Category) != "" {
				if err := b.Remove(models.KindCategory, old.Category, id, now); err != nil {
					return err
				}
			}
			if err := b.Add(models.KindCategory, in.Category, id, now); err != nil {
				return err
			}
		}
		for _, c := range added {
			if err := b.Add(models.KindCollection, c, id, now); err != nil {
				return err
			}
		}
		for _, c := range removed {
			if err := b.Remove(models.KindCollection, c, id, now); err != nil {
				return err
			}
		}

		p := old.Clone()
		p.Title = in.Title
		p.Description = in.Description
		p.Price = in.Price
		p.Sizes = in.Sizes
		p.Category = in.Category
		p.Collections = in.Collections
		p.Tags = in.Tags
		p.Stock = in.Stock
		if in.ImageURL != "" {
			p.ImageURL = in.ImageURL
		}
		if in.SellerID != "" {
			p.SellerID = in.SellerID
		}
		if in.Status != "" {
			p.Status = in.Status
		}
		p.Keywords = keywords.Extract(p.Title, p.Description, p.Tags, p.Collections)
		p.UpdatedAt = now

		if err := tx.UpdatePoster(ctx, p); err != nil {
			return err
		}
		if err := b.Flush(ctx, tx); err != nil {
			return err
		}
		return tx.UpsertTags(ctx, p.Tags, now)
	})
	if err != nil {
		return err
	}

	slog.Info("poster updated", "poster_id", id, "category", in.Category)
	return nil
}

// Delete removes poster id from its category and collections, then deletes
// the poster itself.
func (m *Manager) Delete(ctx context.Context, id string) error {
	now := m.now().UTC()

	err := m.inTx(ctx, "delete poster", func(ctx context.Context, tx *phasedTx) error {
		p, err := tx.Poster(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.New(apperr.NotFound, "poster %q not found", id)
		}

		b := ledger.NewBatch()
		hasCategory := slug.Key(p.Category) != ""
		if hasCategory {
			if err := b.Load(ctx, tx, models.KindCategory, p.Category); err != nil {
				return err
			}
		}
		var cols []string
		for _, c := range p.Collections {
			if slug.Key(c) == "" {
				continue
			}
			if err := b.Load(ctx, tx, models.KindCollection, c); err != nil {
				return err
			}
			cols = append(cols, c)
		}

		if hasCategory {
			if err := b.Remove(models.KindCategory, p.Category, id, now); err != nil {
				return err
			}
		}
		for _, c := range cols {
			if err := b.Remove(models.KindCollection, c, id, now); err != nil {
				return err
			}
		}

		if err := b.Flush(ctx, tx); err != nil {
			return err
		}
		return tx.DeletePoster(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("poster deleted", "poster_id", id)
	return nil
}

// Approve publishes poster id.
func (m *Manager) Approve(ctx context.Context, id string) error {
	return m.SetStatus(ctx, id, models.StatusApproved)
}

// Reject marks poster id as rejected, hiding it from the storefront.
func (m *Manager) Reject(ctx context.Context, id string) error {
	return m.SetStatus(ctx, id, models.StatusRejected)
}

// Submit moves poster id back into the review queue.
func (m *Manager) Submit(ctx context.Context, id string) error {
	return m.SetStatus(ctx, id, models.StatusPending)
}

// SetStatus changes only the status and update time of poster id.
// Memberships are left untouched.
func (m *Manager) SetStatus(ctx context.Context, id string, status models.Status) error {
	if !status.Valid() {
		return apperr.New(apperr.Validation, "unknown status %q", status)
	}
	now := m.now().UTC()

	err := m.inTx(ctx, "set poster status", func(ctx context.Context, tx *phasedTx) error {
		p, err := tx.Poster(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.New(apperr.NotFound, "poster %q not found", id)
		}
		return tx.SetPosterStatus(ctx, id, status, now)
	})
	if err != nil {
		return err
	}

	slog.Info("poster status changed", "poster_id", id, "status", status)
	return nil
}
