// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"time"

	"postershop/internal/models"
)

// Tx is the transactional view of the catalog. Lookups return (nil, nil)
// when a record does not exist. Implementations need not allow reads after
// writes; the Manager never issues them.
type Tx interface {
	Poster(ctx context.Context, id string) (*models.Poster, error)
	Group(ctx context.Context, kind models.GroupKind, key string) (*models.Group, error)
	Posters(ctx context.Context) ([]models.Poster, error)
	Groups(ctx context.Context, kind models.GroupKind) ([]models.Group, error)

	InsertPoster(ctx context.Context, p *models.Poster) error
	UpdatePoster(ctx context.Context, p *models.Poster) error
	SetPosterStatus(ctx context.Context, id string, status models.Status, at time.Time) error
	DeletePoster(ctx context.Context, id string) error
	PutGroup(ctx context.Context, g *models.Group) error
	UpsertTags(ctx context.Context, names []string, at time.Time) error
}

// PosterFilter narrows a poster listing. Zero values mean "no restriction",
// except IDs: a non-nil empty slice matches nothing.
type PosterFilter struct {
	IDs      []string
	Status   models.Status
	SellerID string
	Query    string
	Limit    int
	Offset   int
}

// Store is a catalog backend. InTx runs fn inside one atomic transaction:
// fn's writes are committed together when it returns nil and discarded
// otherwise. A commit rejected because of concurrent writes must surface as
// an apperr.TransactionConflict error. InTx never retries.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	FindPoster(ctx context.Context, id string) (*models.Poster, error)
	ListPosters(ctx context.Context, f PosterFilter) ([]models.Poster, error)
	FindGroup(ctx context.Context, kind models.GroupKind, key string) (*models.Group, error)
	ListGroups(ctx context.Context, kind models.GroupKind) ([]models.Group, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}
