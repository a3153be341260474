// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hashutil provides utility functions for normalizing torrent info
// hashes consistently across the codebase.
package hashutil

import (
	"github.com/autobrr/linkarr/pkg/stringutils"
)

// Normalize canonicalizes a torrent hash by trimming whitespace and converting
// to lowercase. Returns an empty string if the input is blank.
// The returned string is interned, as hashes are frequently compared and stored.
func Normalize(hash string) string {
	return stringutils.InternNormalized(hash)
}
