// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package dbinterface provides database interfaces to avoid import cycles.
// It has no dependencies and can be imported by both the database layer and
// the stores.
package dbinterface

import (
	"context"
	"database/sql"
)

// Querier is the interface stores run their queries against. It is satisfied
// by *sql.DB, *sql.Tx, and *database.DB, so stores work the same inside and
// outside transactions.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TxQuerier is a transaction-scoped Querier.
type TxQuerier interface {
	Querier
	Commit() error
	Rollback() error
}
