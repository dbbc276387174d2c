// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"postershop/internal/apperr"
	"postershop/internal/models"
)

// OrderFilter narrows an order listing.
type OrderFilter struct {
	SellerID string
	Status   models.OrderStatus
	Limit    int
	Offset   int
}

// OrderStore persists orders. SetOrderStatus reports false when the order
// does not exist.
type OrderStore interface {
	InsertOrder(ctx context.Context, o *models.Order) error
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	SetOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (bool, error)
}

// OrderInput records a purchase made through the payment gateway.
type OrderInput struct {
	PosterID string `json:"posterId"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// OrderBook records orders against catalog posters.
type OrderBook struct {
	orders  OrderStore
	posters Store
	now     func() time.Time
}

// NewOrderBook creates an OrderBook.
func NewOrderBook(orders OrderStore, posters Store) *OrderBook {
	return &OrderBook{orders: orders, posters: posters, now: time.Now}
}

// Record prices and stores a new pending order. The total is the size's
// final price (or its list price when no discount is set) times quantity.
func (b *OrderBook) Record(ctx context.Context, in OrderInput) (*models.Order, error) {
	in.PosterID = strings.TrimSpace(in.PosterID)
	if in.PosterID == "" {
		return nil, apperr.New(apperr.Validation, "posterId is required")
	}
	if in.Quantity < 1 {
		return nil, apperr.New(apperr.Validation, "quantity must be at least 1")
	}

	p, err := b.posters.FindPoster(ctx, in.PosterID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "find poster")
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "poster %q not found", in.PosterID)
	}

	unit, err := unitPrice(p, strings.TrimSpace(in.Size))
	if err != nil {
		return nil, err
	}

	o := &models.Order{
		ID:          uuid.New(),
		SellerID:    p.SellerID,
		PosterID:    p.ID,
		PosterTitle: p.Title,
		Quantity:    in.Quantity,
		TotalPrice:  unit.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Status:      models.OrderPending,
		CreatedAt:   b.now().UTC(),
	}
	if err := b.orders.InsertOrder(ctx, o); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "insert order")
	}

	slog.Info("order recorded", "order_id", o.ID, "poster_id", o.PosterID, "total", o.TotalPrice.StringFixed(2))
	return o, nil
}

func unitPrice(p *models.Poster, size string) (decimal.Decimal, error) {
	if len(p.Sizes) == 0 {
		return p.Price, nil
	}
	opt := p.Sizes[0]
	if size != "" {
		found := false
		for _, s := range p.Sizes {
			if strings.EqualFold(s.Size, size) {
				opt, found = s, true
				break
			}
		}
		if !found {
			return decimal.Zero, apperr.New(apperr.Validation, "poster %q has no size %q", p.ID, size)
		}
	}
	if opt.FinalPrice.IsPositive() {
		return opt.FinalPrice, nil
	}
	return opt.Price, nil
}

// List returns orders matching f, newest first.
func (b *OrderBook) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.New(apperr.Validation, "unknown order status %q", f.Status)
	}
	if f.Limit <= 0 || f.Limit > DefaultListLimit {
		f.Limit = DefaultListLimit
	}
	orders, err := b.orders.ListOrders(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list orders")
	}
	return orders, nil
}

// SetStatus moves order id to status.
func (b *OrderBook) SetStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	if !status.Valid() {
		return apperr.New(apperr.Validation, "unknown order status %q", status)
	}
	ok, err := b.orders.SetOrderStatus(ctx, id, status)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "set order status")
	}
	if !ok {
		return apperr.New(apperr.NotFound, "order %s not found", id)
	}
	slog.Info("order status changed", "order_id", id, "status", status)
	return nil
}
