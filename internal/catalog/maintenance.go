// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"postershop/internal/apperr"
	"postershop/internal/ledger"
	"postershop/internal/models"
	"postershop/internal/slug"
)

// GroupSeed names a membership record that should exist even when empty.
type GroupSeed struct {
	Name        string
	Description string
}

// EnsureGroups creates the records in seeds that do not exist yet and
// returns how many were created. Existing records are left alone.
func (m *Manager) EnsureGroups(ctx context.Context, kind models.GroupKind, seeds []GroupSeed) (int, error) {
	if kind != models.KindCategory && kind != models.KindCollection {
		return 0, apperr.New(apperr.Validation, "unknown group kind %q", kind)
	}
	now := m.now().UTC()
	created := 0

	err := m.inTx(ctx, "ensure groups", func(ctx context.Context, tx *phasedTx) error {
		created = 0
		seen := map[string]bool{}
		var missing []*models.Group
		for _, s := range seeds {
			key := slug.Key(s.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			g, err := tx.Group(ctx, kind, key)
			if err != nil {
				return err
			}
			if g != nil {
				continue
			}
			missing = append(missing, &models.Group{
				Kind:        kind,
				Key:         key,
				Name:        strings.TrimSpace(s.Name),
				Description: strings.TrimSpace(s.Description),
				PosterIDs:   []string{},
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		for _, g := range missing {
			if err := tx.PutGroup(ctx, g); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("membership records ensured", "kind", kind, "created", created)
	return created, nil
}

// ReconcileReport summarizes a Reconcile run.
type ReconcileReport struct {
	Posters int `json:"posters"`
	Groups  int `json:"groups"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Updated int `json:"updated"`
}

// Reconcile rebuilds membership records from the posters themselves. Every
// poster is added to its category and collections, and ids that no longer
// belong to a record (including ids of deleted posters) are removed.
func (m *Manager) Reconcile(ctx context.Context) (ReconcileReport, error) {
	now := m.now().UTC()
	var report ReconcileReport

	err := m.inTx(ctx, "reconcile", func(ctx context.Context, tx *phasedTx) error {
		report = ReconcileReport{}

		posters, err := tx.Posters(ctx)
		if err != nil {
			return err
		}
		b := ledger.NewBatch()
		var existing []models.Group
		for _, kind := range []models.GroupKind{models.KindCategory, models.KindCollection} {
			groups, err := tx.Groups(ctx, kind)
			if err != nil {
				return err
			}
			existing = append(existing, groups...)
		}
		b.Preload(existing...)

		type membership struct {
			kind models.GroupKind
			name string
		}
		expected := map[models.GroupKind]map[string][]string{
			models.KindCategory:   {},
			models.KindCollection: {},
		}
		var wanted []struct {
			membership
			posterID string
		}
		for _, p := range posters {
			names := []membership{{models.KindCategory, p.Category}}
			for _, c := range p.Collections {
				names = append(names, membership{models.KindCollection, c})
			}
			for _, n := range names {
				key := slug.Key(n.name)
				if key == "" {
					continue
				}
				if err := b.Load(ctx, tx, n.kind, n.name); err != nil {
					return err
				}
				expected[n.kind][key] = append(expected[n.kind][key], p.ID)
				wanted = append(wanted, struct {
					membership
					posterID string
				}{n, p.ID})
			}
		}

		for _, w := range wanted {
			g := b.Group(w.kind, w.name)
			if g != nil && g.Contains(w.posterID) {
				continue
			}
			if err := b.Add(w.kind, w.name, w.posterID, now); err != nil {
				return err
			}
			report.Added++
		}
		for _, g := range existing {
			current := b.Group(g.Kind, g.Key)
			if current == nil {
				continue
			}
			for _, id := range slices.Clone(current.PosterIDs) {
				if slices.Contains(expected[g.Kind][g.Key], id) {
					continue
				}
				if err := b.Remove(g.Kind, g.Key, id, now); err != nil {
					return err
				}
				report.Removed++
			}
		}

		report.Posters = len(posters)
		report.Groups = len(existing)
		report.Updated = b.Pending()
		return b.Flush(ctx, tx)
	})
	if err != nil {
		return ReconcileReport{}, err
	}

	slog.Info("membership reconciled",
		"posters", report.Posters, "groups", report.Groups,
		"added", report.Added, "removed", report.Removed, "updated", report.Updated)
	return report, nil
}
