// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Remapper translates collaborator-reported paths into host path space.
// A download client running in a container reports /downloads/... while the
// host sees /mnt/storage/downloads/...; the remapper bridges that by
// replacing one configured prefix with another. It is a pure, total function:
// paths outside the remote base pass through unchanged.
type Remapper struct {
	from string
	to   string
}

// NewRemapper builds a remapper; empty bases yield the identity mapping.
func NewRemapper(remoteBase, localBase string) *Remapper {
	r := &Remapper{}
	if remoteBase != "" && localBase != "" {
		r.from = filepath.Clean(remoteBase)
		r.to = filepath.Clean(localBase)
	}
	return r
}

// Remap replaces the remote base prefix with the local base, once, and only
// when the prefix matches at a path boundary (so /data does not rewrite
// /database). The result is cleaned.
func (r *Remapper) Remap(path string) string {
	if r.from == "" || path == "" {
		return path
	}
	cleaned := filepath.Clean(path)
	if cleaned == r.from {
		return r.to
	}
	if strings.HasPrefix(cleaned, r.from) && len(cleaned) > len(r.from) && cleaned[len(r.from)] == filepath.Separator {
		return filepath.Join(r.to, cleaned[len(r.from)+1:])
	}
	return cleaned
}

// normalizePath cleans a path for consistent map keys. On Windows the
// comparison also case-folds, matching filesystem semantics.
func normalizePath(path string) string {
	p := filepath.Clean(path)
	if runtime.GOOS == "windows" {
		p = strings.ToLower(p)
	}
	return p
}
