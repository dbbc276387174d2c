// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the catalog entities persisted by the stores and
// exchanged over the HTTP API.
package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the approval/publication state of a poster.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// SizeOption is one purchasable size of a poster.
type SizeOption struct {
	Size       string          `json:"size"`
	Price      decimal.Decimal `json:"price"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
}

// Poster is the sellable catalog item. Category and Collections hold display
// names; membership ledgers are keyed by their normalized form.
type Poster struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Sizes       []SizeOption    `json:"sizes"`
	Category    string          `json:"category"`
	Collections []string        `json:"collections"`
	Tags        []string        `json:"tags"`
	ImageURL    string          `json:"imageUrl"`
	SellerID    string          `json:"sellerId,omitempty"`
	Stock       int             `json:"stock"`
	Status      Status          `json:"status"`
	Keywords    []string        `json:"keywords"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsPublished returns true if the poster is visible to shoppers. Visibility
// is derived from the status and never stored on its own.
func (p *Poster) IsPublished() bool {
	return p.Status == StatusApproved
}

// MarshalJSON adds the derived isPublished flag to the serialized poster.
func (p Poster) MarshalJSON() ([]byte, error) {
	type plain Poster
	return json.Marshal(struct {
		plain
		IsPublished bool `json:"isPublished"`
	}{plain: plain(p), IsPublished: p.IsPublished()})
}

// Clone returns a deep copy so callers can mutate slices freely.
func (p *Poster) Clone() *Poster {
	c := *p
	c.Sizes = append([]SizeOption(nil), p.Sizes...)
	c.Collections = append([]string(nil), p.Collections...)
	c.Tags = append([]string(nil), p.Tags...)
	c.Keywords = append([]string(nil), p.Keywords...)
	return &c
}
