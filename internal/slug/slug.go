// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly identifiers: poster ids derived from
// titles and the normalized keys category and collection ledgers are stored
// under.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// whitespaceRun matches one or more whitespace characters.
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespaceRun.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Key normalizes a category or collection name into its ledger key:
// lowercase, trimmed, whitespace runs collapsed to a single hyphen.
// Punctuation is kept so distinct names stay distinct.
// Example: "Best  Sellers" → "best-sellers"
func Key(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// PosterID derives a poster id from its title and creation time.
// Example: ("Starry Night", 2026-01-02T03:04:05.678Z) → "starry-night-1767323045678"
func PosterID(title string, created time.Time) string {
	base := Generate(title)
	stamp := strconv.FormatInt(created.UnixMilli(), 10)
	if base == "" {
		return "poster-" + stamp
	}
	return base + "-" + stamp
}
