// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upsert

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// EnsureProvider resolves a Provider by slug then name; if absent and a
// legacy video_game_sources table exists, migrates it in by copying
// display_name/kind; otherwise inserts fresh. Returns 0 if providers itself
// does not exist.
func (e *Engine) EnsureProvider(ctx context.Context, slug, name, kind string) (int64, error) {
	hasTable, err := e.cache.HasTable(ctx, dbschema.ProviderTable.Table)
	if err != nil {
		return 0, err
	}
	if !hasTable {
		return 0, nil
	}

	if id, ok := e.entities.ProviderID(slug); ok {
		return id, nil
	}

	var id int64
	err = e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
			dbschema.ProviderTable.ID, dbschema.ProviderTable.Table, dbschema.ProviderTable.Slug),
		slug,
	).Scan(&id)
	if err == nil {
		e.entities.PutProviderID(slug, id)
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}

	err = e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
			dbschema.ProviderTable.ID, dbschema.ProviderTable.Table, dbschema.ProviderTable.Name),
		name,
	).Scan(&id)
	if err == nil {
		e.entities.PutProviderID(slug, id)
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}

	// Migrate in from the legacy sources table when it exists and carries a
	// matching display name, so a pre-existing legacy provider keeps its
	// original kind instead of being re-classified.
	hasLegacy, err := e.cache.HasTable(ctx, dbschema.LegacySourceTable.Table)
	if err != nil {
		return 0, err
	}
	migratedKind := kind
	if hasLegacy {
		var legacyKind string
		legacyErr := e.pool.QueryRow(ctx,
			fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
				dbschema.LegacySourceTable.Kind, dbschema.LegacySourceTable.Table, dbschema.LegacySourceTable.DisplayName),
			name,
		).Scan(&legacyKind)
		if legacyErr == nil && legacyKind != "" {
			migratedKind = legacyKind
		} else if legacyErr != nil && legacyErr != pgx.ErrNoRows {
			return 0, legacyErr
		}
	}

	id, err = e.withPKRescue(ctx, dbschema.ProviderTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		insertErr := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s)
				VALUES ($1, $2, $3)
				ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s
				RETURNING %s`,
				dbschema.ProviderTable.Table, dbschema.ProviderTable.Slug, dbschema.ProviderTable.Name, dbschema.ProviderTable.Kind,
				dbschema.ProviderTable.Slug, dbschema.ProviderTable.Name, dbschema.ProviderTable.Name,
				dbschema.ProviderTable.ID,
			),
			slug, name, migratedKind,
		).Scan(&insertedID)
		return insertedID, insertErr
	})
	if err != nil {
		return 0, err
	}

	e.entities.PutProviderID(slug, id)
	return id, nil
}
