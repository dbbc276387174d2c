// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package keywords derives the bounded search-keyword set stored on every
// poster.
package keywords

import (
	"strings"
	"unicode/utf8"
)

// MaxKeywords caps the number of keywords kept per poster.
const MaxKeywords = 50

// minTokenLen is the shortest token kept; anything of length <= 2 is dropped.
const minTokenLen = 3

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
}

// Extract returns the de-duplicated keywords for a poster. Title and
// description are split on whitespace; tags and collection names are kept
// as whole tokens. Order is first occurrence across title, description,
// tags, then collections.
func Extract(title, description string, tags, collections []string) []string {
	var tokens []string
	tokens = append(tokens, strings.Fields(strings.ToLower(title))...)
	tokens = append(tokens, strings.Fields(strings.ToLower(description))...)
	for _, tag := range tags {
		tokens = append(tokens, strings.ToLower(tag))
	}
	for _, c := range collections {
		tokens = append(tokens, strings.ToLower(c))
	}

	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, min(len(tokens), MaxKeywords))
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if stopWords[tok] || utf8.RuneCountInString(tok) < minTokenLen {
			continue
		}
		out = append(out, tok)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// Match reports whether every whitespace-separated term of query prefixes
// some keyword. An empty query matches everything.
func Match(kw []string, query string) bool {
	for _, term := range strings.Fields(strings.ToLower(query)) {
		found := false
		for _, k := range kw {
			if strings.HasPrefix(k, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
