// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ledger maintains category and collection membership: the set of
// poster ids recorded on each Group. A Batch works in three phases so it fits
// stores that forbid reads after writes inside one transaction:
//
//  1. Load every record the operation will touch.
//  2. Add / Remove poster ids in memory.
//  3. Flush the records that changed.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"postershop/internal/models"
	"postershop/internal/slug"
)

// ErrNotLoaded is returned when Add or Remove targets a record that was not
// loaded during the read phase.
var ErrNotLoaded = errors.New("ledger record not loaded")

// ErrEmptyName is returned when a group name normalizes to an empty key.
var ErrEmptyName = errors.New("ledger group name is empty")

// Reader reads a single Group. It returns (nil, nil) when the record does
// not exist.
type Reader interface {
	Group(ctx context.Context, kind models.GroupKind, key string) (*models.Group, error)
}

// Writer stores a Group, creating or replacing it.
type Writer interface {
	PutGroup(ctx context.Context, g *models.Group) error
}

type ref struct {
	kind models.GroupKind
	key  string
}

type entry struct {
	group *models.Group // nil while the record does not exist
	dirty bool
}

// Batch accumulates membership changes for one transaction.
type Batch struct {
	entries map[ref]*entry
	order   []ref
}

// NewBatch returns an empty Batch.
func NewBatch() *Batch {
	return &Batch{entries: make(map[ref]*entry)}
}

// Load reads the record for name unless it is already loaded.
func (b *Batch) Load(ctx context.Context, r Reader, kind models.GroupKind, name string) error {
	key := slug.Key(name)
	if key == "" {
		return fmt.Errorf("load %s: %w", kind, ErrEmptyName)
	}
	k := ref{kind: kind, key: key}
	if _, ok := b.entries[k]; ok {
		return nil
	}

	g, err := r.Group(ctx, kind, key)
	if err != nil {
		return fmt.Errorf("load %s %q: %w", kind, key, err)
	}
	if g != nil {
		g = g.Clone()
	}
	b.track(k, g)
	return nil
}

// Preload registers records that were read by the caller, for example by a
// full scan. Records already loaded are left untouched.
func (b *Batch) Preload(groups ...models.Group) {
	for i := range groups {
		k := ref{kind: groups[i].Kind, key: groups[i].Key}
		if _, ok := b.entries[k]; ok {
			continue
		}
		b.track(k, groups[i].Clone())
	}
}

func (b *Batch) track(k ref, g *models.Group) {
	b.entries[k] = &entry{group: g}
	b.order = append(b.order, k)
}

// Add makes posterID a member of the named group, creating the record when
// it does not exist yet. Adding an existing member is a no-op.
func (b *Batch) Add(kind models.GroupKind, name, posterID string, now time.Time) error {
	e, err := b.lookup(kind, name)
	if err != nil {
		return err
	}

	if e.group == nil {
		e.group = &models.Group{
			Kind:      kind,
			Key:       slug.Key(name),
			Name:      strings.TrimSpace(name),
			PosterIDs: []string{posterID},
			CreatedAt: now,
			UpdatedAt: now,
		}
		e.dirty = true
		return nil
	}
	if e.group.Contains(posterID) {
		return nil
	}
	e.group.PosterIDs = append(e.group.PosterIDs, posterID)
	e.group.UpdatedAt = now
	e.dirty = true
	return nil
}

// Remove drops posterID from the named group. Removing from a missing record
// or removing a non-member is a no-op.
func (b *Batch) Remove(kind models.GroupKind, name, posterID string, now time.Time) error {
	e, err := b.lookup(kind, name)
	if err != nil {
		return err
	}
	if e.group == nil || !e.group.Contains(posterID) {
		return nil
	}
	e.group.PosterIDs = slices.DeleteFunc(e.group.PosterIDs, func(id string) bool { return id == posterID })
	e.group.UpdatedAt = now
	e.dirty = true
	return nil
}

func (b *Batch) lookup(kind models.GroupKind, name string) (*entry, error) {
	key := slug.Key(name)
	e, ok := b.entries[ref{kind: kind, key: key}]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", kind, key, ErrNotLoaded)
	}
	return e, nil
}

// Group returns the current in-memory state of a loaded record, or nil when
// it is not loaded or does not exist.
func (b *Batch) Group(kind models.GroupKind, name string) *models.Group {
	e, ok := b.entries[ref{kind: kind, key: slug.Key(name)}]
	if !ok || e.group == nil {
		return nil
	}
	return e.group
}

// Pending returns the number of records that Flush would write.
func (b *Batch) Pending() int {
	n := 0
	for _, e := range b.entries {
		if e.dirty {
			n++
		}
	}
	return n
}

// Flush writes every changed record in load order.
func (b *Batch) Flush(ctx context.Context, w Writer) error {
	for _, k := range b.order {
		e := b.entries[k]
		if !e.dirty {
			continue
		}
		if err := w.PutGroup(ctx, e.group); err != nil {
			return fmt.Errorf("write %s %q: %w", k.kind, k.key, err)
		}
		e.dirty = false
	}
	return nil
}
