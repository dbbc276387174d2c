// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memory is an in-process catalog store with optimistic
// transactions. Each transaction records the version of everything it reads
// and stages its writes; commit fails with a transaction conflict when any
// of those versions moved in the meantime.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"postershop/internal/apperr"
	"postershop/internal/catalog"
	"postershop/internal/keywords"
	"postershop/internal/models"
)

type groupRef struct {
	kind models.GroupKind
	key  string
}

type posterRec struct {
	poster  *models.Poster
	version uint64
}

type groupRec struct {
	group   *models.Group
	version uint64
}

// Store implements catalog.Store in memory. The zero value is not usable;
// call New.
type Store struct {
	mu sync.RWMutex

	posters map[string]*posterRec
	groups  map[groupRef]*groupRec
	tags    map[string]models.Tag
	orders  []models.Order

	// Versions of absent keys and of whole tables, so that reads of missing
	// records and full scans are validated too.
	tombstones  map[string]uint64
	groupGone   map[groupRef]uint64
	posterTable uint64
	groupTable  map[models.GroupKind]uint64
	clock       uint64
}

var _ catalog.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		posters:    make(map[string]*posterRec),
		groups:     make(map[groupRef]*groupRec),
		tags:       make(map[string]models.Tag),
		tombstones: make(map[string]uint64),
		groupGone:  make(map[groupRef]uint64),
		groupTable: make(map[models.GroupKind]uint64),
	}
}

// InTx runs fn against a private view and commits its staged writes
// atomically.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Tx) error) error {
	tx := &memTx{
		store:        s,
		posterReads:  make(map[string]uint64),
		groupReads:   make(map[groupRef]uint64),
		groupScans:   make(map[models.GroupKind]uint64),
		posterWrites: make(map[string]*models.Poster),
		groupWrites:  make(map[groupRef]*models.Group),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

func (s *Store) posterVersion(id string) uint64 {
	if r, ok := s.posters[id]; ok {
		return r.version
	}
	return s.tombstones[id]
}

func (s *Store) groupVersion(k groupRef) uint64 {
	if r, ok := s.groups[k]; ok {
		return r.version
	}
	return s.groupGone[k]
}

// FindPoster returns a copy of poster id, or nil when absent.
func (s *Store) FindPoster(_ context.Context, id string) (*models.Poster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.posters[id]
	if !ok {
		return nil, nil
	}
	return r.poster.Clone(), nil
}

// ListPosters returns posters matching f, newest first.
func (s *Store) ListPosters(_ context.Context, f catalog.PosterFilter) ([]models.Poster, error) {
	s.mu.RLock()
	var out []models.Poster
	for _, r := range s.posters {
		p := r.poster
		if f.IDs != nil && !slices.Contains(f.IDs, p.ID) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.SellerID != "" && p.SellerID != f.SellerID {
			continue
		}
		if f.Query != "" && !keywords.Match(p.Keywords, f.Query) {
			continue
		}
		out = append(out, *p.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Poster{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	if out == nil {
		out = []models.Poster{}
	}
	return out, nil
}

// FindGroup returns a copy of the record, or nil when absent.
func (s *Store) FindGroup(_ context.Context, kind models.GroupKind, key string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.groups[groupRef{kind, key}]
	if !ok {
		return nil, nil
	}
	return r.group.Clone(), nil
}

// ListGroups returns every record of kind ordered by key.
func (s *Store) ListGroups(_ context.Context, kind models.GroupKind) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listGroups(kind), nil
}

func (s *Store) listGroups(kind models.GroupKind) []models.Group {
	out := []models.Group{}
	for k, r := range s.groups {
		if k.kind == kind {
			out = append(out, *r.group.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ListTags returns every tag ordered by name.
func (s *Store) ListTags(_ context.Context) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type statusChange struct {
	status models.Status
	at     time.Time
}

type memTx struct {
	store *Store

	posterReads    map[string]uint64
	groupReads     map[groupRef]uint64
	groupScans     map[models.GroupKind]uint64
	posterScanned  bool
	posterScanSeen uint64

	posterWrites map[string]*models.Poster // nil value means delete
	inserts      []string
	statuses     map[string]statusChange
	groupWrites  map[groupRef]*models.Group
	groupOrder   []groupRef
	tagWrites    []models.Tag
}

func (t *memTx) Poster(_ context.Context, id string) (*models.Poster, error) {
	if p, ok := t.posterWrites[id]; ok {
		if p == nil {
			return nil, nil
		}
		return p.Clone(), nil
	}
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, seen := t.posterReads[id]; !seen {
		t.posterReads[id] = s.posterVersion(id)
	}
	r, ok := s.posters[id]
	if !ok {
		return nil, nil
	}
	return r.poster.Clone(), nil
}

func (t *memTx) Group(_ context.Context, kind models.GroupKind, key string) (*models.Group, error) {
	k := groupRef{kind, key}
	if g, ok := t.groupWrites[k]; ok {
		return g.Clone(), nil
	}
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, seen := t.groupReads[k]; !seen {
		t.groupReads[k] = s.groupVersion(k)
	}
	r, ok := s.groups[k]
	if !ok {
		return nil, nil
	}
	return r.group.Clone(), nil
}

func (t *memTx) Posters(_ context.Context) ([]models.Poster, error) {
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !t.posterScanned {
		t.posterScanned = true
		t.posterScanSeen = s.posterTable
	}
	out := make([]models.Poster, 0, len(s.posters))
	for _, r := range s.posters {
		out = append(out, *r.poster.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) Groups(_ context.Context, kind models.GroupKind) ([]models.Group, error) {
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, seen := t.groupScans[kind]; !seen {
		t.groupScans[kind] = s.groupTable[kind]
	}
	return s.listGroups(kind), nil
}

func (t *memTx) InsertPoster(_ context.Context, p *models.Poster) error {
	t.posterWrites[p.ID] = p.Clone()
	t.inserts = append(t.inserts, p.ID)
	return nil
}

func (t *memTx) UpdatePoster(_ context.Context, p *models.Poster) error {
	t.posterWrites[p.ID] = p.Clone()
	return nil
}

func (t *memTx) SetPosterStatus(_ context.Context, id string, status models.Status, at time.Time) error {
	if t.statuses == nil {
		t.statuses = make(map[string]statusChange)
	}
	t.statuses[id] = statusChange{status: status, at: at}
	return nil
}

func (t *memTx) DeletePoster(_ context.Context, id string) error {
	t.posterWrites[id] = nil
	return nil
}

func (t *memTx) PutGroup(_ context.Context, g *models.Group) error {
	k := groupRef{g.Kind, g.Key}
	if _, ok := t.groupWrites[k]; !ok {
		t.groupOrder = append(t.groupOrder, k)
	}
	t.groupWrites[k] = g.Clone()
	return nil
}

func (t *memTx) UpsertTags(_ context.Context, names []string, at time.Time) error {
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			t.tagWrites = append(t.tagWrites, models.Tag{Name: n, CreatedAt: at})
		}
	}
	return nil
}

func (t *memTx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, v := range t.posterReads {
		if s.posterVersion(id) != v {
			return apperr.New(apperr.TransactionConflict, "poster %q changed during transaction", id)
		}
	}
	for k, v := range t.groupReads {
		if s.groupVersion(k) != v {
			return apperr.New(apperr.TransactionConflict, "%s %q changed during transaction", k.kind, k.key)
		}
	}
	if t.posterScanned && s.posterTable != t.posterScanSeen {
		return apperr.New(apperr.TransactionConflict, "posters changed during transaction")
	}
	for kind, v := range t.groupScans {
		if s.groupTable[kind] != v {
			return apperr.New(apperr.TransactionConflict, "%s records changed during transaction", kind)
		}
	}
	for _, id := range t.inserts {
		if _, exists := s.posters[id]; exists {
			return apperr.New(apperr.AlreadyExists, "poster %q already exists", id)
		}
	}
	for id := range t.statuses {
		if _, exists := s.posters[id]; !exists && t.posterWrites[id] == nil {
			return apperr.New(apperr.NotFound, "poster %q not found", id)
		}
	}

	s.clock++
	v := s.clock
	for id, p := range t.posterWrites {
		if p == nil {
			delete(s.posters, id)
			s.tombstones[id] = v
			continue
		}
		s.posters[id] = &posterRec{poster: p, version: v}
	}
	for id, c := range t.statuses {
		r, ok := s.posters[id]
		if !ok {
			continue
		}
		p := r.poster.Clone()
		p.Status = c.status
		p.UpdatedAt = c.at
		s.posters[id] = &posterRec{poster: p, version: v}
	}
	if len(t.posterWrites) > 0 || len(t.statuses) > 0 {
		s.posterTable = v
	}
	for _, k := range t.groupOrder {
		s.groups[k] = &groupRec{group: t.groupWrites[k], version: v}
		s.groupTable[k.kind] = v
	}
	for _, tag := range t.tagWrites {
		if _, ok := s.tags[tag.Name]; !ok {
			s.tags[tag.Name] = tag
		}
	}
	return nil
}
