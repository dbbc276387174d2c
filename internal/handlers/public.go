// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"postershop/internal/apperr"
	"postershop/internal/cache"
	"postershop/internal/catalog"
	"postershop/internal/models"
)

// publicCacheControl lets browsers and CDNs hold storefront responses briefly.
const publicCacheControl = "public, max-age=60"

// Public groups handlers for the shopper-facing storefront. Only approved
// posters are visible. Responses are served from the Valkey browse cache
// when possible and stored there on miss.
type Public struct {
	posters *catalog.Manager
	cache   *cache.BrowseCache
}

// NewPublic creates a new Public handler group. browse may be nil.
func NewPublic(posters *catalog.Manager, browse *cache.BrowseCache) *Public {
	return &Public{posters: posters, cache: browse}
}

// groupView is the storefront view of a category or collection. Membership
// ledgers include unpublished posters, so they are not exposed.
type groupView struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type groupPage struct {
	groupView
	Posters []models.Poster `json:"posters"`
}

func newGroupView(g models.Group) groupView {
	return groupView{Key: g.Key, Name: g.Name, Description: g.Description}
}

// serveCached writes the cached body for key, or builds it with load,
// caches it, and writes it.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request, key string, load func() (any, error)) {
	ctx := r.Context()
	if body, ok := p.cache.Get(ctx, key); ok {
		writeRaw(w, body)
		return
	}

	v, err := load()
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode browse response failed", "key", key, "error", err)
		writeFailure(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	p.cache.Set(ctx, key, body)
	writeRaw(w, body)
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", publicCacheControl)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// ListPosters returns approved posters, optionally filtered by category,
// collection and keyword query.
func (p *Public) ListPosters(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paging(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	key := url.Values{}
	for _, name := range []string{"category", "collection", "q", "limit", "offset"} {
		if v := q.Get(name); v != "" {
			key.Set(name, v)
		}
	}

	p.serveCached(w, r, cache.ListKey(key), func() (any, error) {
		posters, err := p.posters.List(r.Context(), catalog.ListOptions{
			Category:   q.Get("category"),
			Collection: q.Get("collection"),
			Query:      q.Get("q"),
			Status:     models.StatusApproved,
			Limit:      limit,
			Offset:     offset,
		})
		if posters == nil {
			posters = []models.Poster{}
		}
		return posters, err
	})
}

// GetPoster returns one approved poster.
func (p *Public) GetPoster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.serveCached(w, r, cache.PosterKey(id), func() (any, error) {
		poster, err := p.posters.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		if !poster.IsPublished() {
			return nil, apperr.New(apperr.NotFound, "poster %q not found", id)
		}
		return poster, nil
	})
}

// ListCategories returns all categories.
func (p *Public) ListCategories(w http.ResponseWriter, r *http.Request) {
	p.listGroups(w, r, models.KindCategory, "categories")
}

// ListCollections returns all collections.
func (p *Public) ListCollections(w http.ResponseWriter, r *http.Request) {
	p.listGroups(w, r, models.KindCollection, "collections")
}

// GetCategory returns a category and its approved posters.
func (p *Public) GetCategory(w http.ResponseWriter, r *http.Request) {
	p.groupPage(w, r, models.KindCategory, "categories")
}

// GetCollection returns a collection and its approved posters.
func (p *Public) GetCollection(w http.ResponseWriter, r *http.Request) {
	p.groupPage(w, r, models.KindCollection, "collections")
}

func (p *Public) listGroups(w http.ResponseWriter, r *http.Request, kind models.GroupKind, cacheName string) {
	p.serveCached(w, r, cache.GroupsKey(cacheName), func() (any, error) {
		groups, err := p.posters.Groups(r.Context(), kind)
		if err != nil {
			return nil, err
		}
		views := make([]groupView, 0, len(groups))
		for _, g := range groups {
			views = append(views, newGroupView(g))
		}
		return views, nil
	})
}

func (p *Public) groupPage(w http.ResponseWriter, r *http.Request, kind models.GroupKind, cacheName string) {
	key := chi.URLParam(r, "key")
	p.serveCached(w, r, cache.GroupKey(cacheName, key), func() (any, error) {
		ctx := r.Context()
		g, err := p.posters.Group(ctx, kind, key)
		if err != nil {
			return nil, err
		}
		opts := catalog.ListOptions{Status: models.StatusApproved}
		if kind == models.KindCategory {
			opts.Category = g.Key
		} else {
			opts.Collection = g.Key
		}
		posters, err := p.posters.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		if posters == nil {
			posters = []models.Poster{}
		}
		return groupPage{groupView: newGroupView(*g), Posters: posters}, nil
	})
}

// ListTags returns every tag in use.
func (p *Public) ListTags(w http.ResponseWriter, r *http.Request) {
	p.serveCached(w, r, cache.TagsKey(), func() (any, error) {
		tags, err := p.posters.Tags(r.Context())
		if tags == nil {
			tags = []models.Tag{}
		}
		return tags, err
	})
}
