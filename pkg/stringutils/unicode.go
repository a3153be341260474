// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Distinct letters in Nordic and Germanic alphabets. NFKD leaves them
	// alone, so they need explicit ASCII fallbacks.
	ligatures = strings.NewReplacer(
		"æ", "ae",
		"Æ", "AE",
		"œ", "oe",
		"Œ", "OE",
		"ø", "o",
		"Ø", "O",
		"ß", "ss",
		"ð", "d",
		"Ð", "D",
		"þ", "th",
		"Þ", "TH",
	)

	// Punctuation that release names and library titles disagree on.
	// Apostrophes (ASCII, U+2019, U+2018, backtick) and colons vanish,
	// ampersands become "and", hyphens become spaces.
	matchPunct = strings.NewReplacer(
		"'", "",
		"’", "",
		"‘", "",
		"`", "",
		":", "",
		"&", " and ",
		"-", " ",
	)

	unicodeNormalizer  = NewNormalizer(defaultNormalizerTTL, stripMarks)
	matchingNormalizer = NewNormalizer(defaultNormalizerTTL, matchKey)
)

// stripMarks is the transform behind unicodeNormalizer.
func stripMarks(s string) string {
	s = ligatures.Replace(s)

	// transform.Chain carries state, so build it per call. The normalizer
	// cache in front keeps that off the hot path.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	result, _, err := transform.String(t, s)
	if err != nil {
		return Intern(s)
	}
	return Intern(result)
}

// matchKey is the transform behind matchingNormalizer.
func matchKey(s string) string {
	s = unicodeNormalizer.Normalize(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = matchPunct.Replace(s)
	return Intern(strings.Join(strings.Fields(s), " "))
}

// NormalizeUnicode removes diacritics and decomposes ligatures while keeping
// case and punctuation. Results are interned and cached per input string.
//
// Examples:
//   - "Shōgun" → "Shogun"
//   - "Amélie" → "Amelie"
//   - "Björk" → "Bjork"
//   - "æ" → "ae"
//   - "ﬁ" → "fi"
func NormalizeUnicode(s string) string {
	return unicodeNormalizer.Normalize(s)
}

// NormalizeForMatching reduces a title or release name to a canonical match
// key: diacritics stripped, lowercased, apostrophes and colons removed,
// "&" spelled out, hyphens and runs of whitespace collapsed to single
// spaces. Cross-seed search compares these keys, so "shogun" finds a Shōgun
// group. Results are interned and cached per input string.
//
// Examples:
//   - "Shōgun S01" → "shogun s01"
//   - "Bob's Burgers" → "bobs burgers"
//   - "CSI: Miami" → "csi miami"
//   - "Spider-Man" → "spider man"
//   - "His & Hers" → "his and hers"
func NormalizeForMatching(s string) string {
	return matchingNormalizer.Normalize(s)
}
