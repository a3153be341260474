// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package testdb hands tests fresh migrated database files. Migrations run
// once into a template; each test gets a cheap file clone of it.
package testdb

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/autobrr/linkarr/internal/database"
)

var (
	templateOnce sync.Once
	templatePath string
	templateErr  error
)

// Path returns a fresh database file path for a test by cloning the migrated
// template. The clone lives in the test's temp dir, so isolation and cleanup
// come for free.
func Path(t *testing.T, filename string) string {
	t.Helper()

	templateOnce.Do(func() {
		templatePath, templateErr = createTemplate()
	})
	if templateErr != nil {
		t.Fatalf("prepare test DB template: %v", templateErr)
	}

	dbPath := filepath.Join(t.TempDir(), filename)
	if err := cloneDatabaseFiles(templatePath, dbPath); err != nil {
		t.Fatalf("clone test DB template to %s: %v", dbPath, err)
	}

	return dbPath
}

func createTemplate() (string, error) {
	templateDir, err := os.MkdirTemp("", "linkarr-testdb-template-")
	if err != nil {
		return "", err
	}

	path := filepath.Join(templateDir, "template.db")
	db, err := database.New(path)
	if err != nil {
		return "", err
	}

	if err := db.Close(); err != nil {
		return "", err
	}

	return path, nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}

	return dstFile.Close()
}

func cloneDatabaseFiles(srcMain, dstMain string) error {
	if err := copyFile(srcMain, dstMain); err != nil {
		return err
	}

	// Sidecar files exist when the template was not checkpointed on close.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := copyOptionalFile(srcMain+suffix, dstMain+suffix); err != nil {
			return err
		}
	}

	return nil
}

func copyOptionalFile(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return copyFile(src, dst)
}
