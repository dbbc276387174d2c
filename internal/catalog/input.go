// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"postershop/internal/apperr"
	"postershop/internal/models"
	"postershop/internal/slug"
)

// Validation limits for poster fields.
const (
	maxTitleLen       = 300
	maxDescriptionLen = 5_000
	maxTags           = 30
	maxCollections    = 20

	// priceScale is the number of decimal places prices are stored with.
	priceScale = 2
)

// PosterInput is the caller-supplied part of a poster. Everything else
// (id, keywords, timestamps) is derived by the Manager.
type PosterInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Sizes       []models.SizeOption `json:"sizes"`
	Category    string              `json:"category"`
	Collections []string            `json:"collections"`
	Tags        []string            `json:"tags"`
	ImageURL    string              `json:"imageUrl"`
	SellerID    string              `json:"sellerId"`
	Stock       int                 `json:"stock"`
	Status      models.Status       `json:"status"`
}

// normalized trims text fields and removes empty or duplicate collections
// and tags. Collections are compared by ledger key, first spelling wins.
func (in PosterInput) normalized() PosterInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.SellerID = strings.TrimSpace(in.SellerID)

	var cols []string
	seen := map[string]bool{}
	for _, c := range in.Collections {
		c = strings.TrimSpace(c)
		k := slug.Key(c)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		cols = append(cols, c)
	}
	in.Collections = cols

	var tags []string
	seenTags := map[string]bool{}
	for _, t := range in.Tags {
		t = strings.TrimSpace(t)
		if t == "" || seenTags[strings.ToLower(t)] {
			continue
		}
		seenTags[strings.ToLower(t)] = true
		tags = append(tags, t)
	}
	in.Tags = tags

	in.Sizes = append([]models.SizeOption(nil), in.Sizes...)
	for i := range in.Sizes {
		in.Sizes[i].Size = strings.TrimSpace(in.Sizes[i].Size)
	}
	return in
}

// validate returns a Validation error describing the first problem found.
func (in PosterInput) validate() error {
	if in.Title == "" {
		return apperr.New(apperr.Validation, "title is required")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return apperr.New(apperr.Validation, "title is too long (max %d characters)", maxTitleLen)
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return apperr.New(apperr.Validation, "description is too long (max %d characters)", maxDescriptionLen)
	}
	if len(in.Sizes) == 0 {
		return apperr.New(apperr.Validation, "at least one size is required")
	}
	for i, s := range in.Sizes {
		if s.Size == "" {
			return apperr.New(apperr.Validation, "size %d has no label", i+1)
		}
		if s.Price.IsNegative() || s.FinalPrice.IsNegative() {
			return apperr.New(apperr.Validation, "size %q has a negative price", s.Size)
		}
		if !isCents(s.Price) || !isCents(s.FinalPrice) {
			return apperr.New(apperr.Validation, "size %q price has more than %d decimal places", s.Size, priceScale)
		}
	}
	if in.Price.IsNegative() {
		return apperr.New(apperr.Validation, "price must not be negative")
	}
	if !isCents(in.Price) {
		return apperr.New(apperr.Validation, "price has more than %d decimal places", priceScale)
	}
	if slug.Key(in.Category) == "" {
		return apperr.New(apperr.Validation, "category is required")
	}
	if len(in.Collections) > maxCollections {
		return apperr.New(apperr.Validation, "too many collections (max %d)", maxCollections)
	}
	if len(in.Tags) > maxTags {
		return apperr.New(apperr.Validation, "too many tags (max %d)", maxTags)
	}
	if in.Stock < 0 {
		return apperr.New(apperr.Validation, "stock must not be negative")
	}
	if in.Status != "" && !in.Status.Valid() {
		return apperr.New(apperr.Validation, "unknown status %q", in.Status)
	}
	return nil
}

// isCents reports whether d fits the stored money scale.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(priceScale))
}

// collectionDiff returns the collections present only in next (added) and
// only in prev (removed), compared by ledger key.
func collectionDiff(prev, next []string) (added, removed []string) {
	prevKeys := make(map[string]bool, len(prev))
	for _, c := range prev {
		prevKeys[slug.Key(c)] = true
	}
	nextKeys := make(map[string]bool, len(next))
	for _, c := range next {
		nextKeys[slug.Key(c)] = true
		if !prevKeys[slug.Key(c)] {
			added = append(added, c)
		}
	}
	for _, c := range prev {
		if !nextKeys[slug.Key(c)] {
			removed = append(removed, c)
		}
	}
	return added, removed
}
