// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package stringutils deduplicates and normalizes the small set of strings
// that repeat across every torrent and scan snapshot: tracker hosts,
// categories, torrent states, and info hashes. Interning uses Go's unique
// package, so identical values share one allocation and compare fast.
package stringutils

import (
	"strings"
	"unique"
)

// Intern returns the canonical representation of s. Use it for values that
// recur across many torrents, like tracker hosts and category names.
func Intern(s string) string {
	if s == "" {
		return ""
	}
	return unique.Make(s).Value()
}

// InternNormalized trims, lowercases, and interns s. This is the canonical
// form for info hashes and other case-insensitive identifiers.
func InternNormalized(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return ""
	}
	return unique.Make(normalized).Value()
}
