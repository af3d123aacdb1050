// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package legacydriver

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// CheckpointStore persists the Legacy Snapshot Driver's per-stage resume
// position in legacy_import_checkpoints, created on demand. It supports two
// conventions over the same table: a numeric cursor (the highest legacy id
// processed so far, read by [CheckpointStore.Cursor]/written by
// [CheckpointStore.SaveCursor]) and a "done" sentinel (last_legacy_id=1,
// checked by [CheckpointStore.IsStageDone]/set by
// [CheckpointStore.MarkStageDone]) for stages that run to completion in one
// pass rather than resuming by id.
type CheckpointStore struct {
	pool *pgxpool.Pool
}

// NewCheckpointStore constructs a [CheckpointStore].
func NewCheckpointStore(pool *pgxpool.Pool) *CheckpointStore {
	return &CheckpointStore{pool: pool}
}

// EnsureTable creates legacy_import_checkpoints if it does not already
// exist.
func (s *CheckpointStore) EnsureTable(ctx context.Context) error {
	t := dbschema.ImportCheckpointTable
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			%s text PRIMARY KEY,
			%s bigint NOT NULL,
			%s timestamptz NOT NULL DEFAULT now()
		)`,
		t.Table, t.Source, t.LastLegacyID, t.UpdatedAt,
	))
	return err
}

// doneKey is the source key a "done" sentinel is stored under.
func doneKey(stage string) string { return stage + ":done" }

// IsStageDone reports whether stage's done sentinel is set, honoring
// resetStages (the parsed IMPORT_RESET csv) by always returning false for a
// listed stage regardless of what is stored.
func (s *CheckpointStore) IsStageDone(ctx context.Context, stage string, resetStages []string) (bool, error) {
	for _, reset := range resetStages {
		if strings.TrimSpace(reset) == stage {
			return false, nil
		}
	}

	t := dbschema.ImportCheckpointTable
	var v int64
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, t.LastLegacyID, t.Table, t.Source),
		doneKey(stage),
	).Scan(&v)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// MarkStageDone sets stage's done sentinel.
func (s *CheckpointStore) MarkStageDone(ctx context.Context, stage string) error {
	t := dbschema.ImportCheckpointTable
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES ($1, 1)
		 ON CONFLICT (%s) DO UPDATE SET %s = 1, %s = now()`,
		t.Table, t.Source, t.LastLegacyID, t.Source, t.LastLegacyID, t.UpdatedAt,
	), doneKey(stage))
	return err
}

// Cursor returns the highest legacy id processed so far for source, or 0 if
// none is recorded yet. resume=false (IMPORT_RESUME=0) always returns 0,
// ignoring any durable checkpoint.
func (s *CheckpointStore) Cursor(ctx context.Context, source string, resume bool) (int64, error) {
	if !resume {
		return 0, nil
	}

	t := dbschema.ImportCheckpointTable
	var v int64
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, t.LastLegacyID, t.Table, t.Source),
		source,
	).Scan(&v)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return v, err
}

// SaveCursor records lastID as the furthest legacy id processed for source.
func (s *CheckpointStore) SaveCursor(ctx context.Context, source string, lastID int64) error {
	t := dbschema.ImportCheckpointTable
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES ($1, $2)
		 ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = now()`,
		t.Table, t.Source, t.LastLegacyID, t.Source, t.LastLegacyID, t.LastLegacyID, t.UpdatedAt,
	), source, lastID)
	return err
}
