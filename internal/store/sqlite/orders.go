// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"postershop/internal/catalog"
	"postershop/internal/models"
)

// InsertOrder stores a new order.
func (s *Store) InsertOrder(ctx context.Context, o *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, seller_id, poster_id, poster_title, quantity, total_price, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID.String(), o.SellerID, o.PosterID, o.PosterTitle, o.Quantity,
		o.TotalPrice.String(), string(o.Status), formatTime(o.CreatedAt))
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
	if f.SellerID != "" {
		where = append(where, "seller_id = ?")
		args = append(args, f.SellerID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	query := `SELECT id, seller_id, poster_id, poster_title, quantity, total_price, status, created_at FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, max(f.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	items := []models.Order{}
	for rows.Next() {
		var (
			o                     models.Order
			id, total, status, at string
		)
		if err := rows.Scan(&id, &o.SellerID, &o.PosterID, &o.PosterTitle, &o.Quantity, &total, &status, &at); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse order id %q: %w", id, err)
		}
		if o.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse order total %q: %w", total, err)
		}
		if o.CreatedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		o.Status = models.OrderStatus(status)
		items = append(items, o)
	}
	return items, rows.Err()
}

// SetOrderStatus updates the status of order id.
func (s *Store) SetOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), id.String())
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return n > 0, nil
}
