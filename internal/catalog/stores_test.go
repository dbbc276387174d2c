// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog_test

import (
	"context"
	"time"

	"postershop/internal/catalog"
	"postershop/internal/models"
	"postershop/internal/store/memory"
)

// recordingStore counts membership writes per kind.
type recordingStore struct {
	*memory.Store
	groupWrites map[models.GroupKind]int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: memory.New(), groupWrites: map[models.GroupKind]int{}}
}

func (s *recordingStore) reset() { s.groupWrites = map[models.GroupKind]int{} }

func (s *recordingStore) InTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Tx) error) error {
	return s.Store.InTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
		return fn(ctx, &recordingTx{Tx: tx, store: s})
	})
}

type recordingTx struct {
	catalog.Tx
	store *recordingStore
}

func (t *recordingTx) PutGroup(ctx context.Context, g *models.Group) error {
	t.store.groupWrites[g.Kind]++
	return t.Tx.PutGroup(ctx, g)
}

// racingStore commits a rival category write between the caller's reads
// and its commit, forcing every transaction to conflict.
type racingStore struct {
	*memory.Store
}

func newRacingStore() *racingStore {
	return &racingStore{Store: memory.New()}
}

func (s *racingStore) InTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Tx) error) error {
	return s.Store.InTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return s.Store.InTx(ctx, func(ctx context.Context, rival catalog.Tx) error {
			return rival.PutGroup(ctx, &models.Group{
				Kind:      models.KindCategory,
				Key:       "anime",
				Name:      "Anime",
				PosterIDs: []string{"rival"},
				CreatedAt: time.Now(),
			})
		})
	})
}
