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
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"postershop/internal/catalog"
	"postershop/internal/keywords"
	"postershop/internal/models"
)

const posterColumns = `id, title, description, price, sizes, category, collections, tags,
	image_url, seller_id, stock, status, keywords, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPoster(row scanner) (*models.Poster, error) {
	var (
		p                                 models.Poster
		price, sizes, cols, tags, kw      string
		createdAt, updatedAt, statusValue string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &price, &sizes, &p.Category,
		&cols, &tags, &p.ImageURL, &p.SellerID, &p.Stock, &statusValue, &kw,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = models.Status(statusValue)
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	for _, f := range []struct {
		raw  string
		dest any
	}{
		{sizes, &p.Sizes}, {cols, &p.Collections}, {tags, &p.Tags}, {kw, &p.Keywords},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dest); err != nil {
			return nil, fmt.Errorf("decode poster %s: %w", p.ID, err)
		}
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosters(rows *sql.Rows) ([]models.Poster, error) {
	defer rows.Close()
	items := []models.Poster{}
	for rows.Next() {
		p, err := scanPoster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan poster: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func findPoster(ctx context.Context, q querier, id string) (*models.Poster, error) {
	row := q.QueryRowContext(ctx, `SELECT `+posterColumns+` FROM posters WHERE id = ?`, id)
	p, err := scanPoster(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find poster by id: %w", err)
	}
	return p, nil
}

func jsonList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// posterArgs encodes the columns after id, in posterColumns order.
func posterArgs(p *models.Poster) ([]any, error) {
	sizes, err := jsonList(p.Sizes)
	if err != nil {
		return nil, fmt.Errorf("encode sizes: %w", err)
	}
	cols, err := jsonList(p.Collections)
	if err != nil {
		return nil, fmt.Errorf("encode collections: %w", err)
	}
	tags, err := jsonList(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	kw, err := jsonList(p.Keywords)
	if err != nil {
		return nil, fmt.Errorf("encode keywords: %w", err)
	}
	return []any{
		p.Title, p.Description, p.Price.String(), sizes, p.Category, cols, tags,
		p.ImageURL, p.SellerID, p.Stock, string(p.Status), kw,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	}, nil
}

// FindPoster retrieves a poster by id. Returns nil if not found.
func (s *Store) FindPoster(ctx context.Context, id string) (*models.Poster, error) {
	return findPoster(ctx, s.db, id)
}

// ListPosters returns posters matching f, newest first. Status and seller
// are filtered in SQL; ids and keyword prefixes in Go.
func (s *Store) ListPosters(ctx context.Context, f catalog.PosterFilter) ([]models.Poster, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return []models.Poster{}, nil
	}

	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.SellerID != "" {
		where = append(where, "seller_id = ?")
		args = append(args, f.SellerID)
	}
	query := `SELECT ` + posterColumns + ` FROM posters`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posters: %w", err)
	}
	all, err := collectPosters(rows)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, p := range all {
		if f.IDs != nil && !slices.Contains(f.IDs, p.ID) {
			continue
		}
		if f.Query != "" && !keywords.Match(p.Keywords, f.Query) {
			continue
		}
		out = append(out, p)
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Poster{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (t *liteTx) Poster(ctx context.Context, id string) (*models.Poster, error) {
	return findPoster(ctx, t.q, id)
}

func (t *liteTx) Posters(ctx context.Context) ([]models.Poster, error) {
	rows, err := t.q.QueryContext(ctx, `SELECT `+posterColumns+` FROM posters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("scan posters: %w", err)
	}
	return collectPosters(rows)
}

func (t *liteTx) InsertPoster(ctx context.Context, p *models.Poster) error {
	args, err := posterArgs(p)
	if err != nil {
		return err
	}
	_, err = t.q.ExecContext(ctx, `
		INSERT INTO posters (`+posterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, append([]any{p.ID}, args...)...)
	if err != nil {
		return fmt.Errorf("insert poster: %w", err)
	}
	return nil
}

func (t *liteTx) UpdatePoster(ctx context.Context, p *models.Poster) error {
	args, err := posterArgs(p)
	if err != nil {
		return err
	}
	_, err = t.q.ExecContext(ctx, `
		UPDATE posters SET
			title = ?, description = ?, price = ?, sizes = ?, category = ?,
			collections = ?, tags = ?, image_url = ?, seller_id = ?, stock = ?,
			status = ?, keywords = ?, created_at = ?, updated_at = ?
		WHERE id = ?
	`, append(args, p.ID)...)
	if err != nil {
		return fmt.Errorf("update poster: %w", err)
	}
	return nil
}

func (t *liteTx) SetPosterStatus(ctx context.Context, id string, status models.Status, at time.Time) error {
	_, err := t.q.ExecContext(ctx, `UPDATE posters SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(at), id)
	if err != nil {
		return fmt.Errorf("update poster status: %w", err)
	}
	return nil
}

func (t *liteTx) DeletePoster(ctx context.Context, id string) error {
	if _, err := t.q.ExecContext(ctx, `DELETE FROM posters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete poster: %w", err)
	}
	return nil
}
