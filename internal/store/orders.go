// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"postershop/internal/catalog"
	"postershop/internal/models"
)

// InsertOrder stores a new order.
func (s *Store) InsertOrder(ctx context.Context, o *models.Order) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO orders (id, seller_id, poster_id, poster_title, quantity, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8)
	`, o.ID, o.SellerID, o.PosterID, o.PosterTitle, o.Quantity,
		o.TotalPrice.String(), string(o.Status), o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", classify(err))
	}
	return nil
}

// ListOrders returns orders matching f, newest first.
func (s *Store) ListOrders(ctx context.Context, f catalog.OrderFilter) ([]models.Order, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.SellerID != "" {
		where = append(where, "seller_id = "+arg(f.SellerID))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}

	query := `SELECT id, seller_id, poster_id, poster_title, quantity, total_price::text, status, created_at FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += ` OFFSET ` + arg(f.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	items := []models.Order{}
	for rows.Next() {
		var (
			o     models.Order
			total string
		)
		if err := rows.Scan(&o.ID, &o.SellerID, &o.PosterID, &o.PosterTitle,
			&o.Quantity, &total, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse order total %q: %w", total, err)
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// SetOrderStatus updates the status of order id.
func (s *Store) SetOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (bool, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
