// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"postershop/internal/models"
)

// ErrReadAfterWrite is returned when a read is issued after the first write
// of a transaction.
var ErrReadAfterWrite = errors.New("read issued after write in transaction")

// phasedTx enforces read-then-write ordering on top of any backend so the
// lifecycle algorithms stay portable to stores that require it.
type phasedTx struct {
	tx     Tx
	writes int
}

func (p *phasedTx) read() error {
	if p.writes > 0 {
		return ErrReadAfterWrite
	}
	return nil
}

func (p *phasedTx) Poster(ctx context.Context, id string) (*models.Poster, error) {
	if err := p.read(); err != nil {
		return nil, err
	}
	return p.tx.Poster(ctx, id)
}

func (p *phasedTx) Group(ctx context.Context, kind models.GroupKind, key string) (*models.Group, error) {
	if err := p.read(); err != nil {
		return nil, err
	}
	return p.tx.Group(ctx, kind, key)
}

func (p *phasedTx) Posters(ctx context.Context) ([]models.Poster, error) {
	if err := p.read(); err != nil {
		return nil, err
	}
	return p.tx.Posters(ctx)
}

func (p *phasedTx) Groups(ctx context.Context, kind models.GroupKind) ([]models.Group, error) {
	if err := p.read(); err != nil {
		return nil, err
	}
	return p.tx.Groups(ctx, kind)
}

func (p *phasedTx) InsertPoster(ctx context.Context, poster *models.Poster) error {
	p.writes++
	return p.tx.InsertPoster(ctx, poster)
}

func (p *phasedTx) UpdatePoster(ctx context.Context, poster *models.Poster) error {
	p.writes++
	return p.tx.UpdatePoster(ctx, poster)
}

func (p *phasedTx) SetPosterStatus(ctx context.Context, id string, status models.Status, at time.Time) error {
	p.writes++
	return p.tx.SetPosterStatus(ctx, id, status, at)
}

func (p *phasedTx) DeletePoster(ctx context.Context, id string) error {
	p.writes++
	return p.tx.DeletePoster(ctx, id)
}

func (p *phasedTx) PutGroup(ctx context.Context, g *models.Group) error {
	p.writes++
	return p.tx.PutGroup(ctx, g)
}

// UpsertTags lowercases and dedupes names before they reach the backend.
func (p *phasedTx) UpsertTags(ctx context.Context, names []string, at time.Time) error {
	names = tagNames(names)
	if len(names) == 0 {
		return nil
	}
	p.writes++
	return p.tx.UpsertTags(ctx, names, at)
}

func tagNames(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
