// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upsert

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/gamecatalog/internal/catalog/slugkit"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// EnsureRetailer canonicalizes name (and optional slug) via alias collapsing,
// then looks up by slug before inserting. Insert uses
// ON CONFLICT (slug) DO UPDATE SET name so a later, more-authoritative name
// observation overwrites an earlier placeholder.
func (e *Engine) EnsureRetailer(ctx context.Context, name string, providedSlug *string) (int64, error) {
	canonicalName, canonicalSlug := slugkit.CanonicalizeRetailer(name, providedSlug)

	if id, ok := e.entities.RetailerID(canonicalSlug); ok {
		return id, nil
	}

	id, err := e.withPKRescue(ctx, dbschema.RetailerTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		insertErr := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s)
				VALUES ($1, $2)
				ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s
				RETURNING %s`,
				dbschema.RetailerTable.Table, dbschema.RetailerTable.Slug, dbschema.RetailerTable.Name,
				dbschema.RetailerTable.Slug, dbschema.RetailerTable.Name, dbschema.RetailerTable.Name,
				dbschema.RetailerTable.ID,
			),
			canonicalSlug, canonicalName,
		).Scan(&insertedID)
		return insertedID, insertErr
	})
	if err != nil {
		return 0, err
	}

	e.entities.PutRetailerID(canonicalSlug, id)
	return id, nil
}

// EnsureProductNamed looks up a Product by slug, then inserts with
// ON CONFLICT (slug) DO UPDATE SET name, category. PK violations are
// rescued via the standard sequence-resync retry.
func (e *Engine) EnsureProductNamed(ctx context.Context, slug, name, category string) (int64, error) {
	if id, ok := e.entities.ProductID(slug); ok {
		return id, nil
	}

	id, err := e.withPKRescue(ctx, dbschema.ProductTable.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		insertErr := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s)
				VALUES ($1, $2, $3)
				ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s
				RETURNING %s`,
				dbschema.ProductTable.Table, dbschema.ProductTable.Slug, dbschema.ProductTable.Name, dbschema.ProductTable.Category,
				dbschema.ProductTable.Slug,
				dbschema.ProductTable.Name, dbschema.ProductTable.Name,
				dbschema.ProductTable.Category, dbschema.ProductTable.Category,
				dbschema.ProductTable.ID,
			),
			slug, name, category,
		).Scan(&insertedID)
		return insertedID, insertErr
	})
	if err != nil {
		return 0, err
	}

	e.entities.PutProductID(slug, id)
	return id, nil
}

// lookupByColumn is a small helper shared by several Ensure* paths: SELECT id
// FROM table WHERE column = value, returning (0, false, nil) on no match.
func (e *Engine) lookupByColumn(ctx context.Context, table, idColumn, column string, value any) (int64, bool, error) {
	var id int64
	err := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, idColumn, table, column),
		value,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	return 0, false, err
}
