// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"postershop/internal/catalog"
	"postershop/internal/models"
)

// Money travels as text so NUMERIC values keep their exact decimal form.
const posterColumns = `id, title, description, price::text, sizes, category, collections, tags,
	image_url, seller_id, stock, status, keywords, created_at, updated_at`

// scanPoster scans a row into a Poster struct.
func scanPoster(row pgx.Row) (*models.Poster, error) {
	var (
		p     models.Poster
		price string
		sizes []byte
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &price, &sizes, &p.Category,
		&p.Collections, &p.Tags, &p.ImageURL, &p.SellerID, &p.Stock,
		&p.Status, &p.Keywords, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
		return nil, fmt.Errorf("decode sizes: %w", err)
	}
	return &p, nil
}

func collectPosters(rows pgx.Rows) ([]models.Poster, error) {
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
	row := q.QueryRow(ctx, `SELECT `+posterColumns+` FROM posters WHERE id = $1`, id)
	p, err := scanPoster(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find poster by id: %w", err)
	}
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// FindPoster retrieves a poster by id. Returns nil if not found.
func (s *Store) FindPoster(ctx context.Context, id string) (*models.Poster, error) {
	return findPoster(ctx, s.pool, id)
}

// ListPosters returns posters matching f, newest first. Query terms must
// each prefix at least one stored keyword.
func (s *Store) ListPosters(ctx context.Context, f catalog.PosterFilter) ([]models.Poster, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return []models.Poster{}, nil
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.IDs != nil {
		where = append(where, "id = ANY("+arg(f.IDs)+")")
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	if f.SellerID != "" {
		where = append(where, "seller_id = "+arg(f.SellerID))
	}
	for _, term := range strings.Fields(strings.ToLower(f.Query)) {
		where = append(where, "EXISTS (SELECT 1 FROM unnest(keywords) k WHERE k LIKE "+arg(escapeLike(term)+"%")+")")
	}

	query := `SELECT ` + posterColumns + ` FROM posters`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += ` OFFSET ` + arg(f.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posters: %w", err)
	}
	return collectPosters(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (t *pgTx) Poster(ctx context.Context, id string) (*models.Poster, error) {
	return findPoster(ctx, t.q, id)
}

func (t *pgTx) Posters(ctx context.Context) ([]models.Poster, error) {
	rows, err := t.q.Query(ctx, `SELECT `+posterColumns+` FROM posters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("scan posters: %w", err)
	}
	return collectPosters(rows)
}

func (t *pgTx) InsertPoster(ctx context.Context, p *models.Poster) error {
	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return fmt.Errorf("encode sizes: %w", err)
	}
	_, err = t.q.Exec(ctx, `
		INSERT INTO posters (id, title, description, price, sizes, category, collections,
		                     tags, image_url, seller_id, stock, status, keywords,
		                     created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, p.ID, p.Title, p.Description, p.Price.String(), sizes, p.Category,
		nonNil(p.Collections), nonNil(p.Tags), p.ImageURL, p.SellerID, p.Stock,
		string(p.Status), nonNil(p.Keywords), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert poster: %w", err)
	}
	return nil
}

func (t *pgTx) UpdatePoster(ctx context.Context, p *models.Poster) error {
	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return fmt.Errorf("encode sizes: %w", err)
	}
	_, err = t.q.Exec(ctx, `
		UPDATE posters SET
			title = $1, description = $2, price = $3::numeric, sizes = $4,
			category = $5, collections = $6, tags = $7, image_url = $8,
			seller_id = $9, stock = $10, status = $11, keywords = $12,
			updated_at = $13
		WHERE id = $14
	`, p.Title, p.Description, p.Price.String(), sizes, p.Category,
		nonNil(p.Collections), nonNil(p.Tags), p.ImageURL, p.SellerID, p.Stock,
		string(p.Status), nonNil(p.Keywords), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update poster: %w", err)
	}
	return nil
}

func (t *pgTx) SetPosterStatus(ctx context.Context, id string, status models.Status, at time.Time) error {
	_, err := t.q.Exec(ctx, `UPDATE posters SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), at, id)
	if err != nil {
		return fmt.Errorf("update poster status: %w", err)
	}
	return nil
}

func (t *pgTx) DeletePoster(ctx context.Context, id string) error {
	_, err := t.q.Exec(ctx, `DELETE FROM posters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete poster: %w", err)
	}
	return nil
}
