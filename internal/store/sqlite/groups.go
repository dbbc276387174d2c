// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"postershop/internal/models"
)

const groupColumns = `kind, key, name, description, poster_ids, created_at, updated_at`

func scanGroup(row scanner) (*models.Group, error) {
	var (
		g                    models.Group
		kind, ids            string
		createdAt, updatedAt string
	)
	if err := row.Scan(&kind, &g.Key, &g.Name, &g.Description, &ids, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	g.Kind = models.GroupKind(kind)
	if err := json.Unmarshal([]byte(ids), &g.PosterIDs); err != nil {
		return nil, fmt.Errorf("decode %s %q members: %w", kind, g.Key, err)
	}
	var err error
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func findGroup(ctx context.Context, q querier, kind models.GroupKind, key string) (*models.Group, error) {
	row := q.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE kind = ? AND key = ?`, string(kind), key)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return g, nil
}

func listGroups(ctx context.Context, q querier, kind models.GroupKind) ([]models.Group, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE kind = ? ORDER BY key`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", kind, err)
	}
	defer rows.Close()

	items := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}

// FindGroup retrieves a membership record by key. Returns nil if not found.
func (s *Store) FindGroup(ctx context.Context, kind models.GroupKind, key string) (*models.Group, error) {
	return findGroup(ctx, s.db, kind, key)
}

// ListGroups returns every record of kind ordered by key.
func (s *Store) ListGroups(ctx context.Context, kind models.GroupKind) ([]models.Group, error) {
	return listGroups(ctx, s.db, kind)
}

// ListTags returns every tag ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	items := []models.Tag{}
	for rows.Next() {
		var (
			t  models.Tag
			at string
		)
		if err := rows.Scan(&t.Name, &at); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		if t.CreatedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (t *liteTx) Group(ctx context.Context, kind models.GroupKind, key string) (*models.Group, error) {
	return findGroup(ctx, t.q, kind, key)
}

func (t *liteTx) Groups(ctx context.Context, kind models.GroupKind) ([]models.Group, error) {
	return listGroups(ctx, t.q, kind)
}

func (t *liteTx) PutGroup(ctx context.Context, g *models.Group) error {
	ids, err := jsonList(g.PosterIDs)
	if err != nil {
		return fmt.Errorf("encode %s members: %w", g.Kind, err)
	}
	_, err = t.q.ExecContext(ctx, `
		INSERT INTO groups (`+groupColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, key) DO UPDATE SET
			name = excluded.name, description = excluded.description,
			poster_ids = excluded.poster_ids, updated_at = excluded.updated_at
	`, string(g.Kind), g.Key, g.Name, g.Description, ids, formatTime(g.CreatedAt), formatTime(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put %s %q: %w", g.Kind, g.Key, err)
	}
	return nil
}

func (t *liteTx) UpsertTags(ctx context.Context, names []string, at time.Time) error {
	for _, n := range names {
		_, err := t.q.ExecContext(ctx,
			`INSERT INTO tags (name, created_at) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
			n, formatTime(at))
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", n, err)
		}
	}
	return nil
}
