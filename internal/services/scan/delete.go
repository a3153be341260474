// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/pkg/hardlink"
)

// DeleteResult reports the disposition of every requested path.
type DeleteResult struct {
	Deleted        []string          `json:"deleted"`
	SkippedInUse   []string          `json:"skippedInUse"`
	SkippedMissing []string          `json:"skippedMissing"`
	Failed         map[string]string `json:"failed,omitempty"`
}

// Deleter removes orphaned files. The scan core itself never deletes
// anything; deletion is a caller-side operation with containment checks
// against the configured roots and an in-use re-check against the latest
// snapshot, since a torrent added after the scan must protect its files.
type Deleter struct {
	roots []Root
}

func NewDeleter(roots []Root) *Deleter {
	return &Deleter{roots: roots}
}

// Delete processes each path independently and never aborts the batch over
// one bad entry. A canceled context stops processing; untouched paths get no
// disposition.
func (d *Deleter) Delete(ctx context.Context, paths []string, snapshot *Snapshot) *DeleteResult {
	result := &DeleteResult{
		Deleted:        []string{},
		SkippedInUse:   []string{},
		SkippedMissing: []string{},
	}

	for _, raw := range paths {
		if ctx.Err() != nil {
			break
		}

		target, err := d.validateTarget(raw)
		if err != nil {
			result.fail(raw, err)
			continue
		}

		fi, err := os.Lstat(target)
		if err != nil {
			if os.IsNotExist(err) {
				result.SkippedMissing = append(result.SkippedMissing, target)
				continue
			}
			result.fail(target, err)
			continue
		}

		if snapshot != nil && snapshot.Tracked(target) {
			result.SkippedInUse = append(result.SkippedInUse, target)
			continue
		}

		if fi.IsDir() {
			inUse, err := containsTrackedFile(ctx, target, snapshot)
			if err != nil {
				result.fail(target, err)
				continue
			}
			if inUse {
				result.SkippedInUse = append(result.SkippedInUse, target)
				continue
			}
			if err := os.RemoveAll(target); err != nil {
				result.fail(target, err)
				continue
			}
		} else {
			// Regular file or symlink. Symlinks are removed, never followed.
			if err := os.Remove(target); err != nil {
				result.fail(target, err)
				continue
			}
		}

		log.Info().Str("path", target).Msg("scan: deleted orphan")
		result.Deleted = append(result.Deleted, target)
	}

	return result
}

func (r *DeleteResult) fail(path string, err error) {
	if r.Failed == nil {
		r.Failed = make(map[string]string)
	}
	r.Failed[path] = err.Error()
}

// validateTarget enforces the containment rules: absolute paths only, no
// traversal components, inside a configured root, and never a root itself.
func (d *Deleter) validateTarget(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("path must be absolute: %s", path)
	}
	for _, seg := range strings.Split(path, string(filepath.Separator)) {
		if seg == ".." {
			return "", fmt.Errorf("path traversal not allowed: %s", path)
		}
	}

	cleaned := filepath.Clean(path)
	for _, root := range d.roots {
		if cleaned == root.Path {
			return "", fmt.Errorf("refusing to delete scan root: %s", cleaned)
		}
		if strings.HasPrefix(cleaned, root.Path+string(filepath.Separator)) {
			return cleaned, nil
		}
	}
	return "", fmt.Errorf("path outside configured roots: %s", cleaned)
}

// containsTrackedFile walks a directory looking for any file the latest
// snapshot still claims. Walk errors fail closed; an unreadable directory is
// not deleted.
func containsTrackedFile(ctx context.Context, dir string, snapshot *Snapshot) (bool, error) {
	if snapshot == nil {
		return false, nil
	}

	found := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if snapshot.Tracked(path) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check directory contents: %w", err)
	}
	return found, nil
}

// SameFilesystem reports whether two paths live on the same device, which is
// a precondition for hardlinking between them. Used by connectivity checks.
func SameFilesystem(a, b string) (bool, error) {
	idA, _, err := hardlink.FromPath(a)
	if err != nil {
		return false, err
	}
	idB, _, err := hardlink.FromPath(b)
	if err != nil {
		return false, err
	}
	return hardlink.SameDevice(idA, idB), nil
}
