// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/pkg/hardlink"
)

// Walker enumerates regular files under scan roots and classifies them as it
// goes. Symlinks are never followed: a symlinked directory is not descended
// into and a symlinked file is not reported. Unreadable subdirectories and
// files that fail to stat are logged and skipped so one bad permission does
// not abort the scan.
type Walker struct {
	classifier *Classifier
}

func NewWalker(classifier *Classifier) *Walker {
	return &Walker{classifier: classifier}
}

// Walk traverses a single root and returns one record per regular file.
// A root that does not exist yields zero files and no error since remote
// mounts come and go. A root that exists but cannot be read at the top
// level is a real configuration problem and fails the scan.
func (w *Walker) Walk(ctx context.Context, root Root) ([]models.FileRecord, error) {
	if _, err := os.Lstat(root.Path); err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("root", root.Path).Msg("scan: root does not exist, skipping")
			return nil, nil
		}
		return nil, &RootError{Root: root.Path, Err: err}
	}

	var files []models.FileRecord

	walkErr := filepath.WalkDir(root.Path, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			if path == root.Path {
				return &RootError{Root: root.Path, Err: err}
			}
			if os.IsPermission(err) {
				log.Debug().Str("path", path).Msg("scan: permission denied, skipping")
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			log.Warn().Err(err).Str("path", path).Msg("scan: error accessing path, skipping")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		// WalkDir does not follow symlinks, so skipping the entry here is
		// enough to keep symlinked directories out of the walk too.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("scan: failed to stat file, skipping")
			return nil
		}

		record := models.FileRecord{
			Path:       path,
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
			Location:   root.Location,
			Class:      w.classifier.Classify(path, info.Size(), root.Location),
		}

		id, nlink, err := hardlink.GetFileID(info, path)
		if err != nil {
			// Still report the file, just without a link identity. It will
			// not join any hardlink group but remains visible everywhere else.
			log.Warn().Err(err).Str("path", path).Msg("scan: failed to resolve file identity")
		} else {
			record.Identity = id
			record.LinkCount = nlink
		}

		files = append(files, record)
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	log.Debug().
		Str("root", root.Path).
		Str("location", string(root.Location)).
		Int("files", len(files)).
		Msg("scan: walked root")

	return files, nil
}

// WalkAll traverses every root of a category sequentially and concatenates
// the results. Roots within one category share a location so ordering does
// not matter downstream.
func (w *Walker) WalkAll(ctx context.Context, roots []Root) ([]models.FileRecord, error) {
	var files []models.FileRecord
	for _, root := range roots {
		found, err := w.Walk(ctx, root)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
