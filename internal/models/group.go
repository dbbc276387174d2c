// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"slices"
	"time"
)

// GroupKind distinguishes categories from collections. Both share the same
// record shape and membership rules.
type GroupKind string

const (
	KindCategory   GroupKind = "category"
	KindCollection GroupKind = "collection"
)

// Group is a category or collection record. PosterIDs is the denormalized
// membership ledger; only the catalog lifecycle manager writes it.
type Group struct {
	Kind        GroupKind `json:"kind"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PosterIDs   []string  `json:"posterIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Contains reports whether posterID is a member.
func (g *Group) Contains(posterID string) bool {
	return slices.Contains(g.PosterIDs, posterID)
}

// Clone returns a deep copy of the record.
func (g *Group) Clone() *Group {
	c := *g
	c.PosterIDs = append([]string(nil), g.PosterIDs...)
	return &c
}

// Tag is a tag name in use by at least one poster at some point.
type Tag struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
