// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrScanActive is returned when a scan is triggered while one is running.
	ErrScanActive = errors.New("a scan is already running")

	// ErrAborted is returned when the scan context is canceled between stages.
	// An aborted scan produces no result, partial or otherwise.
	ErrAborted = errors.New("scan aborted")
)

// ConnectionError distinguishes "collaborator unreachable" from a valid empty
// result. It is fatal to the scan; an empty torrent or media list is not.
type ConnectionError struct {
	Service string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Service, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RootError reports a configured root that exists but could not be read at
// the top level. A missing root is not an error; an unreadable one is fatal.
type RootError struct {
	Root string
	Err  error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("scan root unreadable: %s: %v", e.Root, e.Err)
}

func (e *RootError) Unwrap() error {
	return e.Err
}
