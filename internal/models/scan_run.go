// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/autobrr/linkarr/internal/dbinterface"
)

var (
	ErrScanRunNotFound = errors.New("scan run not found")
	ErrScanRunActive   = errors.New("a scan is already active")
)

// Scan run lifecycle. A run is active while pending or running; the store
// refuses to create a second active run.
const (
	ScanStatusPending   = "pending"
	ScanStatusRunning   = "running"
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
	ScanStatusCanceled  = "canceled"
)

// ScanRun is one recorded scan. Result is only populated by GetRun and
// LatestCompleted; list queries skip the snapshot column.
type ScanRun struct {
	ID            int64          `json:"id"`
	TriggerSource string         `json:"triggerSource"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	StartedAt     *time.Time     `json:"startedAt,omitempty"`
	FinishedAt    *time.Time     `json:"finishedAt,omitempty"`
	Error         string         `json:"error,omitempty"`
	Statistics    ScanStatistics `json:"statistics"`
	Result        *ScanResult    `json:"result,omitempty"`
}

func (r *ScanRun) Active() bool {
	return r.Status == ScanStatusPending || r.Status == ScanStatusRunning
}

type ScanRunStore struct {
	db dbinterface.Querier
}

func NewScanRunStore(db dbinterface.Querier) *ScanRunStore {
	return &ScanRunStore{db: db}
}

// CreateRunIfNoActive inserts a pending run unless one is already active.
// The existence check and the insert are a single statement, so two
// concurrent triggers cannot both win.
func (s *ScanRunStore) CreateRunIfNoActive(ctx context.Context, triggerSource string) (*ScanRun, error) {
	query := `
		INSERT INTO scan_runs (trigger_source, status)
		SELECT ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM scan_runs WHERE status IN (?, ?))
		RETURNING id, trigger_source, status, created_at
	`

	run := &ScanRun{}
	err := s.db.QueryRowContext(ctx, query,
		triggerSource, ScanStatusPending, ScanStatusPending, ScanStatusRunning,
	).Scan(&run.ID, &run.TriggerSource, &run.Status, &run.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScanRunActive
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create scan run: %w", err)
	}

	return run, nil
}

func (s *ScanRunStore) SetRunning(ctx context.Context, id int64) error {
	query := `
		UPDATE scan_runs
		SET status = ?, started_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := s.db.ExecContext(ctx, query, ScanStatusRunning, id, ScanStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark scan run running: %w", err)
	}

	return requireRowChanged(result)
}

// SetCompleted records the statistics columns and the full result snapshot.
func (s *ScanRunStore) SetCompleted(ctx context.Context, id int64, result *ScanResult) error {
	snapshot, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal scan result: %w", err)
	}

	stats := result.Statistics
	query := `
		UPDATE scan_runs
		SET status = ?, finished_at = CURRENT_TIMESTAMP,
			total_files = ?, total_size = ?, torrent_files = ?, library_files = ?,
			sample_files = ?, extra_files = ?, skipped_files = ?,
			orphaned_files = ?, orphaned_size = ?, hardlink_groups = ?,
			cross_seed_groups = ?, torrents = ?, radarr_items = ?, sonarr_items = ?,
			duration_seconds = ?, result_json = ?
		WHERE id = ? AND status IN (?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		ScanStatusCompleted,
		stats.TotalFiles, stats.TotalSize, stats.TorrentFiles, stats.LibraryFiles,
		stats.SampleFiles, stats.ExtraFiles, stats.SkippedFiles,
		stats.OrphanedFiles, stats.OrphanedSize, stats.HardlinkGroups,
		stats.CrossSeedGroups, stats.Torrents, stats.RadarrItems, stats.SonarrItems,
		stats.Duration,
		string(snapshot),
		id, ScanStatusPending, ScanStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to mark scan run completed: %w", err)
	}

	return requireRowChanged(res)
}

func (s *ScanRunStore) SetFailed(ctx context.Context, id int64, cause string) error {
	return s.finishWithoutResult(ctx, id, ScanStatusFailed, cause)
}

func (s *ScanRunStore) SetCanceled(ctx context.Context, id int64) error {
	return s.finishWithoutResult(ctx, id, ScanStatusCanceled, "")
}

func (s *ScanRunStore) finishWithoutResult(ctx context.Context, id int64, status, cause string) error {
	query := `
		UPDATE scan_runs
		SET status = ?, finished_at = CURRENT_TIMESTAMP, error = ?
		WHERE id = ? AND status IN (?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		status, nullableString(cause), id, ScanStatusPending, ScanStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to mark scan run %s: %w", status, err)
	}

	return requireRowChanged(result)
}

func (s *ScanRunStore) GetRun(ctx context.Context, id int64) (*ScanRun, error) {
	query := `
		SELECT id, trigger_source, status, created_at, started_at, finished_at, error,
			total_files, total_size, torrent_files, library_files,
			sample_files, extra_files, skipped_files,
			orphaned_files, orphaned_size, hardlink_groups, cross_seed_groups,
			torrents, radarr_items, sonarr_items, duration_seconds, result_json
		FROM scan_runs
		WHERE id = ?
	`

	run, err := scanRunRow(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScanRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan run: %w", err)
	}

	return run, nil
}

// ListRuns returns runs newest first, without result snapshots.
func (s *ScanRunStore) ListRuns(ctx context.Context, limit int) ([]*ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, trigger_source, status, created_at, started_at, finished_at, error,
			total_files, total_size, torrent_files, library_files,
			sample_files, extra_files, skipped_files,
			orphaned_files, orphaned_size, hardlink_groups, cross_seed_groups,
			torrents, radarr_items, sonarr_items, duration_seconds
		FROM scan_runs
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []*ScanRun
	for rows.Next() {
		run := &ScanRun{}
		var startedAt, finishedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(
			&run.ID, &run.TriggerSource, &run.Status, &run.CreatedAt,
			&startedAt, &finishedAt, &errMsg,
			&run.Statistics.TotalFiles, &run.Statistics.TotalSize,
			&run.Statistics.TorrentFiles, &run.Statistics.LibraryFiles,
			&run.Statistics.SampleFiles, &run.Statistics.ExtraFiles,
			&run.Statistics.SkippedFiles,
			&run.Statistics.OrphanedFiles, &run.Statistics.OrphanedSize,
			&run.Statistics.HardlinkGroups, &run.Statistics.CrossSeedGroups,
			&run.Statistics.Torrents, &run.Statistics.RadarrItems,
			&run.Statistics.SonarrItems, &run.Statistics.Duration,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scan run: %w", err)
		}
		applyNullableRunFields(run, startedAt, finishedAt, errMsg)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan runs: %w", err)
	}

	return runs, nil
}

// LatestCompleted returns the newest completed run including its snapshot,
// so results survive a restart.
func (s *ScanRunStore) LatestCompleted(ctx context.Context) (*ScanRun, error) {
	query := `
		SELECT id, trigger_source, status, created_at, started_at, finished_at, error,
			total_files, total_size, torrent_files, library_files,
			sample_files, extra_files, skipped_files,
			orphaned_files, orphaned_size, hardlink_groups, cross_seed_groups,
			torrents, radarr_items, sonarr_items, duration_seconds, result_json
		FROM scan_runs
		WHERE status = ?
		ORDER BY id DESC
		LIMIT 1
	`

	run, err := scanRunRow(s.db.QueryRowContext(ctx, query, ScanStatusCompleted))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScanRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest completed scan run: %w", err)
	}

	return run, nil
}

// LatestCompletedSummary is LatestCompleted without the result snapshot,
// cheap enough for metrics scrapes.
func (s *ScanRunStore) LatestCompletedSummary(ctx context.Context) (*ScanRun, error) {
	query := `
		SELECT id, trigger_source, status, created_at, started_at, finished_at, error,
			total_files, total_size, torrent_files, library_files,
			sample_files, extra_files, skipped_files,
			orphaned_files, orphaned_size, hardlink_groups, cross_seed_groups,
			torrents, radarr_items, sonarr_items, duration_seconds
		FROM scan_runs
		WHERE status = ?
		ORDER BY id DESC
		LIMIT 1
	`

	run := &ScanRun{}
	var startedAt, finishedAt sql.NullTime
	var errMsg sql.NullString
	err := s.db.QueryRowContext(ctx, query, ScanStatusCompleted).Scan(
		&run.ID, &run.TriggerSource, &run.Status, &run.CreatedAt,
		&startedAt, &finishedAt, &errMsg,
		&run.Statistics.TotalFiles, &run.Statistics.TotalSize,
		&run.Statistics.TorrentFiles, &run.Statistics.LibraryFiles,
		&run.Statistics.SampleFiles, &run.Statistics.ExtraFiles,
		&run.Statistics.SkippedFiles,
		&run.Statistics.OrphanedFiles, &run.Statistics.OrphanedSize,
		&run.Statistics.HardlinkGroups, &run.Statistics.CrossSeedGroups,
		&run.Statistics.Torrents, &run.Statistics.RadarrItems,
		&run.Statistics.SonarrItems, &run.Statistics.Duration,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScanRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest completed scan run: %w", err)
	}

	applyNullableRunFields(run, startedAt, finishedAt, errMsg)
	return run, nil
}

// CountRunsByStatus returns how many runs exist per status.
func (s *ScanRunStore) CountRunsByStatus(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM scan_runs
		GROUP BY status
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count scan runs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan run count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run counts: %w", err)
	}

	return counts, nil
}

// FailActiveRuns marks runs left pending or running by a previous process as
// failed. Called once at startup.
func (s *ScanRunStore) FailActiveRuns(ctx context.Context, cause string) (int64, error) {
	query := `
		UPDATE scan_runs
		SET status = ?, finished_at = CURRENT_TIMESTAMP, error = ?
		WHERE status IN (?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		ScanStatusFailed, cause, ScanStatusPending, ScanStatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to fail active scan runs: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected, nil
}

func scanRunRow(row *sql.Row) (*ScanRun, error) {
	run := &ScanRun{}
	var startedAt, finishedAt sql.NullTime
	var errMsg, resultJSON sql.NullString

	if err := row.Scan(
		&run.ID, &run.TriggerSource, &run.Status, &run.CreatedAt,
		&startedAt, &finishedAt, &errMsg,
		&run.Statistics.TotalFiles, &run.Statistics.TotalSize,
		&run.Statistics.TorrentFiles, &run.Statistics.LibraryFiles,
		&run.Statistics.SampleFiles, &run.Statistics.ExtraFiles,
		&run.Statistics.SkippedFiles,
		&run.Statistics.OrphanedFiles, &run.Statistics.OrphanedSize,
		&run.Statistics.HardlinkGroups, &run.Statistics.CrossSeedGroups,
		&run.Statistics.Torrents, &run.Statistics.RadarrItems,
		&run.Statistics.SonarrItems, &run.Statistics.Duration,
		&resultJSON,
	); err != nil {
		return nil, err
	}

	applyNullableRunFields(run, startedAt, finishedAt, errMsg)

	if resultJSON.Valid && resultJSON.String != "" {
		result := &ScanResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scan result snapshot: %w", err)
		}
		run.Result = result
	}

	return run, nil
}

func applyNullableRunFields(run *ScanRun, startedAt, finishedAt sql.NullTime, errMsg sql.NullString) {
	if startedAt.Valid {
		t := startedAt.Time
		run.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRowChanged(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrScanRunNotFound
	}
	return nil
}
