// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"postershop/internal/models"
)

const groupColumns = `key, name, description, poster_ids, created_at, updated_at`

func scanGroup(row pgx.Row, kind models.GroupKind) (*models.Group, error) {
	g := models.Group{Kind: kind}
	if err := row.Scan(&g.Key, &g.Name, &g.Description, &g.PosterIDs, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func findGroup(ctx context.Context, q querier, kind models.GroupKind, key string) (*models.Group, error) {
	table, err := groupTable(kind)
	if err != nil {
		return nil, err
	}
	row := q.QueryRow(ctx, `SELECT `+groupColumns+` FROM `+table+` WHERE key = $1`, key)
	g, err := scanGroup(row, kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return g, nil
}

func listGroups(ctx context.Context, q querier, kind models.GroupKind) ([]models.Group, error) {
	table, err := groupTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `SELECT `+groupColumns+` FROM `+table+` ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", kind, err)
	}
	defer rows.Close()

	items := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}

// FindGroup retrieves a membership record by key. Returns nil if not found.
func (s *Store) FindGroup(ctx context.Context, kind models.GroupKind, key string) (*models.Group, error) {
	return findGroup(ctx, s.pool, kind, key)
}

// ListGroups returns every record of kind ordered by key.
func (s *Store) ListGroups(ctx context.Context, kind models.GroupKind) ([]models.Group, error) {
	return listGroups(ctx, s.pool, kind)
}

// ListTags returns every tag ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	items := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (t *pgTx) Group(ctx context.Context, kind models.GroupKind, key string) (*models.Group, error) {
	return findGroup(ctx, t.q, kind, key)
}

func (t *pgTx) Groups(ctx context.Context, kind models.GroupKind) ([]models.Group, error) {
	return listGroups(ctx, t.q, kind)
}

// PutGroup writes the whole record, creating it when absent.
func (t *pgTx) PutGroup(ctx context.Context, g *models.Group) error {
	table, err := groupTable(g.Kind)
	if err != nil {
		return err
	}
	_, err = t.q.Exec(ctx, `
		INSERT INTO `+table+` (key, name, description, poster_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			poster_ids = EXCLUDED.poster_ids, updated_at = EXCLUDED.updated_at
	`, g.Key, g.Name, g.Description, nonNil(g.PosterIDs), g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put %s %q: %w", g.Kind, g.Key, err)
	}
	return nil
}

func (t *pgTx) UpsertTags(ctx context.Context, names []string, at time.Time) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO tags (name, created_at)
		SELECT DISTINCT n, $2::timestamptz FROM unnest($1::text[]) AS n WHERE btrim(n) <> ''
		ON CONFLICT (name) DO NOTHING
	`, names, at)
	if err != nil {
		return fmt.Errorf("upsert tags: %w", err)
	}
	return nil
}
