// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"slices"
	"strings"

	"postershop/internal/apperr"
	"postershop/internal/models"
	"postershop/internal/slug"
)

// DefaultListLimit caps listings when the caller gives no limit.
const DefaultListLimit = 100

// ListOptions describes a poster listing. Category and Collection are
// matched through the membership records, so they accept display names or
// keys.
type ListOptions struct {
	Category   string
	Collection string
	Status     models.Status
	SellerID   string
	Query      string
	Limit      int
	Offset     int
}

// Get returns poster id or a NotFound error.
func (m *Manager) Get(ctx context.Context, id string) (*models.Poster, error) {
	p, err := m.store.FindPoster(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "get poster")
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "poster %q not found", id)
	}
	return p, nil
}

// List returns posters matching opts, newest first.
func (m *Manager) List(ctx context.Context, opts ListOptions) ([]models.Poster, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, apperr.New(apperr.Validation, "unknown status %q", opts.Status)
	}
	if opts.Limit <= 0 || opts.Limit > DefaultListLimit {
		opts.Limit = DefaultListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	f := PosterFilter{
		Status:   opts.Status,
		SellerID: strings.TrimSpace(opts.SellerID),
		Query:    strings.TrimSpace(opts.Query),
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	}

	ids, err := m.memberIDs(ctx, opts.Category, opts.Collection)
	if err != nil {
		return nil, err
	}
	f.IDs = ids

	posters, err := m.store.ListPosters(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list posters")
	}
	return posters, nil
}

// memberIDs resolves category and collection filters to the poster ids that
// satisfy both. It returns nil when neither filter is set.
func (m *Manager) memberIDs(ctx context.Context, category, collection string) ([]string, error) {
	var ids []string
	restricted := false

	for _, f := range []struct {
		kind models.GroupKind
		name string
	}{
		{models.KindCategory, category},
		{models.KindCollection, collection},
	} {
		key := slug.Key(f.name)
		if key == "" {
			continue
		}
		g, err := m.store.FindGroup(ctx, f.kind, key)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "find %s", f.kind)
		}
		members := []string{}
		if g != nil {
			members = g.PosterIDs
		}
		if !restricted {
			ids = append([]string{}, members...)
			restricted = true
			continue
		}
		ids = slices.DeleteFunc(ids, func(id string) bool { return !slices.Contains(members, id) })
	}

	if !restricted {
		return nil, nil
	}
	return ids, nil
}

// Group returns the membership record for name or a NotFound error.
func (m *Manager) Group(ctx context.Context, kind models.GroupKind, name string) (*models.Group, error) {
	key := slug.Key(name)
	if key == "" {
		return nil, apperr.New(apperr.Validation, "%s name is required", kind)
	}
	g, err := m.store.FindGroup(ctx, kind, key)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "find %s", kind)
	}
	if g == nil {
		return nil, apperr.New(apperr.NotFound, "%s %q not found", kind, key)
	}
	return g, nil
}

// Groups lists every membership record of kind ordered by key.
func (m *Manager) Groups(ctx context.Context, kind models.GroupKind) ([]models.Group, error) {
	groups, err := m.store.ListGroups(ctx, kind)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list %s records", kind)
	}
	return groups, nil
}

// Tags lists every tag seen on a poster.
func (m *Manager) Tags(ctx context.Context) ([]models.Tag, error) {
	tags, err := m.store.ListTags(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list tags")
	}
	return tags, nil
}
