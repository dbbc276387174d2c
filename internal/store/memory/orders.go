// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"postershop/internal/catalog"
	"postershop/internal/models"
)

var _ catalog.OrderStore = (*Store)(nil)

// InsertOrder stores a copy of o.
func (s *Store) InsertOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, *o)
	return nil
}

// ListOrders returns orders matching f, newest first.
func (s *Store) ListOrders(_ context.Context, f catalog.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	out := []models.Order{}
	for _, o := range s.orders {
		if f.SellerID != "" && o.SellerID != f.SellerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Order{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// SetOrderStatus updates the status of order id.
func (s *Store) SetOrderStatus(_ context.Context, id uuid.UUID, status models.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			return true, nil
		}
	}
	return false, nil
}
