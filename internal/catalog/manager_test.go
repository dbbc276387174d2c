// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postershop/internal/apperr"
	"postershop/internal/catalog"
	"postershop/internal/models"
	"postershop/internal/slug"
	"postershop/internal/store/memory"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := t0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur := now
		now = now.Add(time.Second)
		return cur
	}
}

func newManager(t *testing.T) (*catalog.Manager, *memory.Store) {
	t.Helper()
	s := memory.New()
	return catalog.NewManager(s, catalog.WithClock(tickingClock())), s
}

func input(title, category string, collections ...string) catalog.PosterInput {
	return catalog.PosterInput{
		Title:       title,
		Description: "A print for your wall",
		Price:       decimal.RequireFromString("19.99"),
		Sizes: []models.SizeOption{
			{Size: "A3", Price: decimal.RequireFromString("19.99"), FinalPrice: decimal.RequireFromString("17.99")},
		},
		Category:    category,
		Collections: collections,
		Tags:        []string{"wall art"},
		ImageURL:    "https://cdn.example.com/posters/1_" + slug.Generate(title) + ".jpg",
		SellerID:    "seller-1",
		Stock:       5,
	}
}

func members(t *testing.T, s *memory.Store, kind models.GroupKind, name string) []string {
	t.Helper()
	g, err := s.FindGroup(context.Background(), kind, slug.Key(name))
	require.NoError(t, err)
	if g == nil {
		return nil
	}
	return g.PosterIDs
}

// assertConsistent checks that every poster is listed by exactly its own
// category and collections, and that no record lists a missing poster.
func assertConsistent(t *testing.T, s *memory.Store) {
	t.Helper()
	ctx := context.Background()

	posters, err := s.ListPosters(ctx, catalog.PosterFilter{})
	require.NoError(t, err)
	byID := map[string]models.Poster{}
	for _, p := range posters {
		byID[p.ID] = p
	}

	for _, kind := range []models.GroupKind{models.KindCategory, models.KindCollection} {
		groups, err := s.ListGroups(ctx, kind)
		require.NoError(t, err)
		for _, g := range groups {
			for _, id := range g.PosterIDs {
				p, ok := byID[id]
				require.Truef(t, ok, "%s %q lists missing poster %q", kind, g.Key, id)
				if kind == models.KindCategory {
					assert.Equalf(t, g.Key, slug.Key(p.Category), "poster %q listed under wrong category", id)
				} else {
					var keys []string
					for _, c := range p.Collections {
						keys = append(keys, slug.Key(c))
					}
					assert.Containsf(t, keys, g.Key, "poster %q listed under foreign collection", id)
				}
			}
		}
	}
	for _, p := range posters {
		assert.Contains(t, members(t, s, models.KindCategory, p.Category), p.ID)
		for _, c := range p.Collections {
			assert.Contains(t, members(t, s, models.KindCollection, c), p.ID)
		}
	}
}

func TestCreate(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, input("Starry Night", "Fine Art", "Van Gogh", "Night Sky"), "")
	require.NoError(t, err)
	assert.Equal(t, "starry-night-1767323045678", id)

	p, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, p.Status)
	assert.False(t, p.IsPublished())
	assert.Equal(t, t0, p.CreatedAt)
	assert.Equal(t, t0, p.UpdatedAt)
	assert.Subset(t, p.Keywords, []string{"starry", "night", "print", "wall", "wall art", "van gogh", "night sky"})

	assert.Equal(t, []string{id}, members(t, s, models.KindCategory, "Fine Art"))
	assert.Equal(t, []string{id}, members(t, s, models.KindCollection, "Van Gogh"))
	assert.Equal(t, []string{id}, members(t, s, models.KindCollection, "night sky"))

	g, err := m.Group(ctx, models.KindCategory, "fine art")
	require.NoError(t, err)
	assert.Equal(t, "Fine Art", g.Name)

	tags, err := m.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "wall art", tags[0].Name)

	assertConsistent(t, s)
}

func TestCreateAppendsToExistingGroup(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()

	first, err := m.Create(ctx, input("One", "Anime", "Marvel"), "")
	require.NoError(t, err)
	second, err := m.Create(ctx, input("Two", "anime", "MARVEL"), "")
	require.NoError(t, err)

	assert.Equal(t, []string{first, second}, members(t, s, models.KindCategory, "Anime"))
	assert.Equal(t, []string{first, second}, members(t, s, models.KindCollection, "marvel"))
	assertConsistent(t, s)
}

func TestCreateExplicitStatusAndID(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	in := input("Draft Poster", "Anime")
	in.Status = models.StatusDraft
	id, err := m.Create(ctx, in, "custom-id")
	require.NoError(t, err)
	assert.Equal(t, "custom-id", id)

	p, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, p.Status)

	_, err = m.Create(ctx, in, "custom-id")
	assert.True(t, apperr.Is(err, apperr.AlreadyExists), "got %v", err)
}

func TestCreateDeduplicatesCollections(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, input("Dupes", "Anime", "Marvel", "marvel", " ", "MARVEL", "DC"), "")
	require.NoError(t, err)

	p, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Marvel", "DC"}, p.Collections)
	assert.Equal(t, []string{id}, members(t, s, models.KindCollection, "marvel"))
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*catalog.PosterInput)
	}{
		{"missing title", func(in *catalog.PosterInput) { in.Title = "  " }},
		{"no sizes", func(in *catalog.PosterInput) { in.Sizes = nil }},
		{"unlabelled size", func(in *catalog.PosterInput) { in.Sizes[0].Size = "" }},
		{"negative size price", func(in *catalog.PosterInput) { in.Sizes[0].Price = decimal.NewFromInt(-1) }},
		{"negative price", func(in *catalog.PosterInput) { in.Price = decimal.NewFromInt(-5) }},
		{"missing category", func(in *catalog.PosterInput) { in.Category = "" }},
		{"negative stock", func(in *catalog.PosterInput) { in.Stock = -1 }},
		{"unknown status", func(in *catalog.PosterInput) { in.Status = "published" }},
		{"missing image", func(in *catalog.PosterInput) { in.ImageURL = "" }},
		{"blank image", func(in *catalog.PosterInput) { in.ImageURL = "   " }},
		{"sub-cent price", func(in *catalog.PosterInput) { in.Price = decimal.RequireFromString("19.999") }},
		{"sub-cent size price", func(in *catalog.PosterInput) { in.Sizes[0].FinalPrice = decimal.RequireFromString("0.005") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := newManager(t)
			in := input("Valid", "Anime", "Marvel")
			tt.mutate(&in)

			_, err := m.Create(context.Background(), in, "")
			require.Error(t, err)
			assert.Equal(t, apperr.Validation, apperr.CodeOf(err))

			groups, _ := s.ListGroups(context.Background(), models.KindCategory)
			assert.Empty(t, groups, "nothing may be written on validation failure")
		})
	}
}

func TestCategoryMoveAndDelete(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, input("Hero", "Anime", "Best Sellers"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, members(t, s, models.KindCategory, "anime"))
	assert.Equal(t, []string{id}, members(t, s, models.KindCollection, "best-sellers"))

	require.NoError(t, m.Update(ctx, id, input("Hero", "Marvel", "Best Sellers")))
	assert.Empty(t, members(t, s, models.KindCategory, "anime"))
	assert.Equal(t, []string{id}, members(t, s, models.KindCategory, "marvel"))
	assert.Equal(t, []string{id}, members(t, s, models.KindCollection, "best-sellers"))
	assertConsistent(t, s)

	require.NoError(t, m.Delete(ctx, id))
	assert.Empty(t, members(t, s, models.KindCategory, "marvel"))
	assert.Empty(t, members(t, s, models.KindCollection, "best-sellers"))

	_, err = m.Get(ctx, id)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assertConsistent(t, s)
}

func TestUpdateWithoutImageKeepsStoredImage(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, input("Hero", "Anime"), "")
	require.NoError(t, err)

	in := input("Hero Returns", "Anime")
	in.ImageURL = ""
	require.NoError(t, m.Update(ctx, id, in))

	p, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hero Returns", p.Title)
	assert.Equal(t, "https://cdn.example.com/posters/1_hero.jpg", p.ImageURL)

	in.ImageURL = "https://cdn.example.com/posters/2_hero-returns.jpg"
	require.NoError(t, m.Update(ctx, id, in))
	p, err = m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, in.ImageURL, p.ImageURL)
}

func TestTagsAreNormalized(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	first := input("One", "Anime")
	first.Tags = []string{"Wall Art", "NEON"}
	_, err := m.Create(ctx, first, "")
	require.NoError(t, err)

	second := input("Two", "Anime")
	second.Tags = []string{"wall art", " Neon "}
	id, err := m.Create(ctx, second, "")
	require.NoError(t, err)

	third := input("Three", "Anime")
	third.Tags = []string{"WALL ART", "Retro"}
	require.NoError(t, m.Update(ctx, id, third))

	tags, err := m.Tags(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(tags))
	for _, tg := range tags {
		names = append(names, tg.Name)
	}
	assert.ElementsMatch(t, []string{"wall art", "neon", "retro"}, names)
}

func TestUpdateCollections(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, input("Hero", "Anime", "Marvel", "DC"), "")
	require.NoError(t, err)

	in := input("Hero Reborn", "Anime", "dc", "Retro")
	in.Status = models.StatusApproved
	require.NoError(t, m.Update(ctx, id, in))

	assert.Empty(t, members(t, s, models.KindCollection, "marvel"))
	assert.Equal(t, []string{id}, members(t, s, models.KindCollection, "dc"))
	assert.Equal(t, []string{id}, members(t, s, models.KindCollection, "retro"))

	p, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hero Reborn", p.Title)
	assert.Equal(t, models.StatusApproved, p.Status)
	assert.Contains(t, p.Keywords, "reborn")
	assert.NotContains(t, p.Keywords, "marvel")
	assert.True(t, p.UpdatedAt.After(p.CreatedAt))
	assertConsistent(t, s)
}

func TestUpdateKeepsUnsetStatusAndSeller(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, input("Hero", "Anime"), "")
	require.NoError(t, err)
	require.NoError(t, m.Approve(ctx, id))

	in := input("Hero", "Anime")
	in.SellerID = ""
	require.NoError(t, m.Update(ctx, id, in))

	p, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, p.Status)
	assert.Equal(t, "seller-1", p.SellerID)
}

func TestUpdateSameCategorySkipsCategoryWrites(t *testing.T) {
	s := newRecordingStore()
	m := catalog.NewManager(s, catalog.WithClock(tickingClock()))
	ctx := context.Background()

	id, err := m.Create(ctx, input("Hero", "Anime"), "")
	require.NoError(t, err)
	s.reset()

	require.NoError(t, m.Update(ctx, id, input("Hero II", "  ANIME ")))
	assert.Zero(t, s.groupWrites[models.KindCategory])

	p, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ANIME", p.Category)
}

func TestMissingPoster(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	tests := []struct {
		name string
		op   func() error
	}{
		{"update", func() error { return m.Update(ctx, "ghost", input("X", "Anime")) }},
		{"delete", func() error { return m.Delete(ctx, "ghost") }},
		{"approve", func() error { return m.Approve(ctx, "ghost") }},
		{"reject", func() error { return m.Reject(ctx, "ghost") }},
		{"submit", func() error { return m.Submit(ctx, "ghost") }},
		{"get", func() error { _, err := m.Get(ctx, "ghost"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			assert.Equal(t, apperr.NotFound, apperr.CodeOf(err), "got %v", err)
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, input("Hero", "Anime", "Marvel"), "")
	require.NoError(t, err)

	steps := []struct {
		op        func(context.Context, string) error
		want      models.Status
		published bool
	}{
		{m.Approve, models.StatusApproved, true},
		{m.Reject, models.StatusRejected, false},
		{m.Submit, models.StatusPending, false},
		{m.Approve, models.StatusApproved, true},
	}
	for _, step := range steps {
		require.NoError(t, step.op(ctx, id))
		p, err := m.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, step.want, p.Status)
		assert.Equal(t, step.published, p.IsPublished())
		assert.Equal(t, []string{id}, members(t, s, models.KindCategory, "anime"))
		assert.Equal(t, []string{id}, members(t, s, models.KindCollection, "marvel"))
	}

	err = m.SetStatus(ctx, id, "archived")
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestList(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	a, err := m.Create(ctx, input("Starry Night", "Fine Art", "Classics"), "")
	require.NoError(t, err)
	b, err := m.Create(ctx, input("Iron Hero", "Comics", "Marvel", "Classics"), "")
	require.NoError(t, err)
	c, err := m.Create(ctx, input("Spider Hero", "Comics", "Marvel"), "")
	require.NoError(t, err)
	require.NoError(t, m.Approve(ctx, a))
	require.NoError(t, m.Approve(ctx, b))

	tests := []struct {
		name string
		opts catalog.ListOptions
		want []string
	}{
		{"everything newest first", catalog.ListOptions{}, []string{c, b, a}},
		{"approved", catalog.ListOptions{Status: models.StatusApproved}, []string{b, a}},
		{"category by name", catalog.ListOptions{Category: "Comics"}, []string{c, b}},
		{"collection by key", catalog.ListOptions{Collection: "classics"}, []string{b, a}},
		{"category and collection", catalog.ListOptions{Category: "comics", Collection: "Classics"}, []string{b}},
		{"unknown category", catalog.ListOptions{Category: "Nope"}, []string{}},
		{"keyword query", catalog.ListOptions{Query: "hero"}, []string{c, b}},
		{"keyword prefixes", catalog.ListOptions{Query: "spi her"}, []string{c}},
		{"limit", catalog.ListOptions{Limit: 1}, []string{c}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.List(ctx, tt.opts)
			require.NoError(t, err)
			ids := []string{}
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err = m.List(ctx, catalog.ListOptions{Status: "bogus"})
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestGroupLookups(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, err := m.Create(ctx, input("One", "Anime", "Studio Ghibli"), "")
	require.NoError(t, err)
	_, err = m.Create(ctx, input("Two", "Abstract"), "")
	require.NoError(t, err)

	cats, err := m.Groups(ctx, models.KindCategory)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "abstract", cats[0].Key)
	assert.Equal(t, "anime", cats[1].Key)

	g, err := m.Group(ctx, models.KindCollection, "studio ghibli")
	require.NoError(t, err)
	assert.Equal(t, "studio-ghibli", g.Key)

	_, err = m.Group(ctx, models.KindCollection, "missing")
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
	_, err = m.Group(ctx, models.KindCollection, "   ")
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestEnsureGroups(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, input("One", "Anime", "Marvel"), "")
	require.NoError(t, err)

	seeds := []catalog.GroupSeed{
		{Name: "Marvel", Description: "Heroes"},
		{Name: "Studio Ghibli", Description: "Animation"},
		{Name: "studio ghibli"},
		{Name: " "},
	}
	n, err := m.EnsureGroups(ctx, models.KindCollection, seeds)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []string{id}, members(t, s, models.KindCollection, "marvel"))
	g, err := m.Group(ctx, models.KindCollection, "Studio Ghibli")
	require.NoError(t, err)
	assert.Equal(t, "Animation", g.Description)
	assert.Empty(t, g.PosterIDs)

	n, err = m.EnsureGroups(ctx, models.KindCollection, seeds)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = m.EnsureGroups(ctx, "shelf", seeds)
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestReconcileRepairsDrift(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()

	a, err := m.Create(ctx, input("One", "Anime", "Marvel"), "")
	require.NoError(t, err)
	b, err := m.Create(ctx, input("Two", "Anime"), "")
	require.NoError(t, err)

	// Drift: poster a dropped from its category, a ghost id in marvel and
	// poster b wrongly listed under abstract.
	err = s.InTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
		if err := tx.PutGroup(ctx, &models.Group{Kind: models.KindCategory, Key: "anime", Name: "Anime", PosterIDs: []string{b}}); err != nil {
			return err
		}
		if err := tx.PutGroup(ctx, &models.Group{Kind: models.KindCollection, Key: "marvel", Name: "Marvel", PosterIDs: []string{a, "ghost"}}); err != nil {
			return err
		}
		return tx.PutGroup(ctx, &models.Group{Kind: models.KindCategory, Key: "abstract", Name: "Abstract", PosterIDs: []string{b}})
	})
	require.NoError(t, err)

	report, err := m.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Posters)
	assert.Equal(t, 3, report.Groups)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 2, report.Removed)
	assert.Equal(t, 3, report.Updated)

	assert.ElementsMatch(t, []string{a, b}, members(t, s, models.KindCategory, "anime"))
	assert.Equal(t, []string{a}, members(t, s, models.KindCollection, "marvel"))
	assert.Empty(t, members(t, s, models.KindCategory, "abstract"))
	assertConsistent(t, s)

	report, err = m.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Added+report.Removed+report.Updated)
}

func TestConflictLeavesNoPartialWrites(t *testing.T) {
	s := newRacingStore()
	m := catalog.NewManager(s, catalog.WithClock(tickingClock()))
	ctx := context.Background()

	_, err := m.Create(ctx, input("Hero", "Anime", "Marvel"), "hero")
	require.Error(t, err)
	assert.Equal(t, apperr.TransactionConflict, apperr.CodeOf(err))

	p, err := s.FindPoster(ctx, "hero")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Empty(t, members(t, s.Store, models.KindCollection, "marvel"))
	assert.Equal(t, []string{"rival"}, members(t, s.Store, models.KindCategory, "anime"))
}

func TestConcurrentCreatesKeepEveryMember(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()

	// Retry on conflict the way a caller would; every poster must end up in
	// the shared category exactly once.
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	errs := make(chan error, len(ids))
	for _, id := range ids {
		go func() {
			for {
				_, err := m.Create(ctx, input("Poster "+id, "Anime", "Marvel"), id)
				if apperr.Is(err, apperr.TransactionConflict) {
					continue
				}
				errs <- err
				return
			}
		}()
	}
	for range ids {
		require.NoError(t, <-errs)
	}

	got := slices.Clone(members(t, s, models.KindCategory, "anime"))
	slices.Sort(got)
	assert.Equal(t, ids, got)
	assertConsistent(t, s)
}
