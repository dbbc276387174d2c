// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"fmt"
	"log/slog"

	"postershop/internal/catalog"
	"postershop/internal/models"
)

// Collections is the static storefront collection catalog. The records are
// created empty; posters join them through the lifecycle manager.
var Collections = []catalog.GroupSeed{
	{Name: "Best Sellers", Description: "Our most loved prints"},
	{Name: "New Arrivals", Description: "Fresh from the studio"},
	{Name: "Anime Legends", Description: "Iconic characters and scenes"},
	{Name: "Movie Classics", Description: "Posters from the silver screen"},
	{Name: "Minimalist", Description: "Clean lines and quiet colour"},
	{Name: "Vintage", Description: "Retro designs and travel posters"},
	{Name: "Space", Description: "Planets, nebulae and missions"},
	{Name: "Nature", Description: "Landscapes, flora and fauna"},
	{Name: "Typography", Description: "Words worth hanging"},
	{Name: "Gaming", Description: "Worlds from your favourite games"},
}

// GroupSeeder creates missing membership records.
type GroupSeeder interface {
	EnsureGroups(ctx context.Context, kind models.GroupKind, seeds []catalog.GroupSeed) (int, error)
}

// SeedCollections makes sure every collection of the static catalog exists.
// Running it again is a no-op.
func SeedCollections(ctx context.Context, s GroupSeeder) (int, error) {
	created, err := s.EnsureGroups(ctx, models.KindCollection, Collections)
	if err != nil {
		return 0, fmt.Errorf("seed collections: %w", err)
	}

	if created == 0 {
		slog.Info("collection catalog already seeded, skipping")
		return 0, nil
	}
	slog.Info("collection catalog seeded", "created", created)
	return created, nil
}
