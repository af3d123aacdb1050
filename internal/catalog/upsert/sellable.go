// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upsert

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// EnsureSellable resolves or creates a Sellable for kind, choosing the
// (product_id)/(software_title_id)/(console_id) column based on what the
// schema actually carries. For kind == "software" with a software_title_id
// column, the resulting sellable_id is also propagated back onto
// video_games when that column exists.
func (e *Engine) EnsureSellable(ctx context.Context, kind string, refID int64) (int64, error) {
	if id, ok := e.entities.SellableID(kind, refID); ok {
		return id, nil
	}

	column, err := e.sellableColumnFor(ctx, kind)
	if err != nil {
		return 0, err
	}
	if column == "" {
		return 0, fmt.Errorf("upsert: ensure_sellable: no column available for kind %q", kind)
	}

	var id int64
	lookupErr := e.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
			dbschema.SellableTable.ID, dbschema.SellableTable.Table, dbschema.SellableTable.Kind, column),
		kind, refID,
	).Scan(&id)

	if lookupErr != nil && lookupErr != pgx.ErrNoRows {
		return 0, lookupErr
	}

	if lookupErr == pgx.ErrNoRows {
		id, err = e.withPKRescue(ctx, dbschema.SellableTable.Table, func(ctx context.Context) (int64, error) {
			var insertedID int64
			insertErr := e.pool.QueryRow(ctx,
				fmt.Sprintf(`
					INSERT INTO %s (%s, %s)
					VALUES ($1, $2)
					RETURNING %s`,
					dbschema.SellableTable.Table, dbschema.SellableTable.Kind, column, dbschema.SellableTable.ID,
				),
				kind, refID,
			).Scan(&insertedID)
			return insertedID, insertErr
		})
		if err != nil {
			return 0, err
		}
	}

	if kind == "software" && column == dbschema.SellableTable.SoftwareTitleID {
		if hasSellableCol, colErr := e.cache.HasColumn(ctx, dbschema.VideoGameTable.Table, dbschema.VideoGameTable.SellableID); colErr != nil {
			return 0, colErr
		} else if hasSellableCol {
			if _, execErr := e.pool.Exec(ctx,
				fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2 AND %s IS DISTINCT FROM $1`,
					dbschema.VideoGameTable.Table, dbschema.VideoGameTable.SellableID,
					dbschema.VideoGameTable.TitleID, dbschema.VideoGameTable.SellableID),
				id, refID,
			); execErr != nil {
				return 0, execErr
			}
		}
	}

	e.entities.PutSellableID(kind, refID, id)
	return id, nil
}

func (e *Engine) sellableColumnFor(ctx context.Context, kind string) (string, error) {
	candidates := map[string]string{
		"software":  dbschema.SellableTable.SoftwareTitleID,
		"console":   dbschema.SellableTable.ConsoleID,
		"product":   dbschema.SellableTable.ProductID,
	}
	column, known := candidates[kind]
	if !known {
		column = dbschema.SellableTable.ProductID
	}

	hasColumn, err := e.cache.HasColumn(ctx, dbschema.SellableTable.Table, column)
	if err != nil {
		return "", err
	}
	if hasColumn {
		return column, nil
	}

	hasProductID, err := e.cache.HasColumn(ctx, dbschema.SellableTable.Table, dbschema.SellableTable.ProductID)
	if err != nil {
		return "", err
	}
	if hasProductID {
		return dbschema.SellableTable.ProductID, nil
	}
	return "", nil
}
