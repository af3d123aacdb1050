// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upsert

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/gamecatalog/internal/catalog/slugkit"
	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
	"github.com/taibuivan/gamecatalog/pkg/pointer"
)

// EnsurePlatform normalizes name to its canonical form, matches by name then
// by code/lowercase-name synonyms, falls back to fuzzy matching, and as a
// last resort inserts a "<name> (compat)" row when row-level security hides
// the freshly inserted row from a subsequent SELECT.
func (e *Engine) EnsurePlatform(ctx context.Context, name string, code, family *string) (int64, error) {
	existingNames, err := e.listPlatformNames(ctx)
	if err != nil {
		return 0, err
	}

	canonicalName, _ := slugkit.CanonicalizePlatform(name, existingNames)
	if id, ok := e.entities.PlatformID(canonicalName); ok {
		return id, nil
	}

	if id, found, err := e.lookupByColumn(ctx, dbschema.PlatformTable.Table, dbschema.PlatformTable.ID, dbschema.PlatformTable.Name, canonicalName); err != nil {
		return 0, err
	} else if found {
		e.entities.PutPlatformID(canonicalName, id)
		return id, nil
	}

	if code != nil {
		if id, found, err := e.lookupByColumn(ctx, dbschema.PlatformTable.Table, dbschema.PlatformTable.ID, dbschema.PlatformTable.Code, *code); err != nil {
			return 0, err
		} else if found {
			e.entities.PutPlatformID(canonicalName, id)
			return id, nil
		}
	}

	hasCode, err := e.cache.HasColumn(ctx, dbschema.PlatformTable.Table, dbschema.PlatformTable.Code)
	if err != nil {
		return 0, err
	}
	hasFamily, err := e.cache.HasColumn(ctx, dbschema.PlatformTable.Table, dbschema.PlatformTable.Family)
	if err != nil {
		return 0, err
	}

	id, err := e.insertPlatform(ctx, canonicalName, code, family, hasCode, hasFamily)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		// ON CONFLICT DO NOTHING RETURNING id returned nothing: re-select.
		if found, foundOK, selErr := e.lookupByColumn(ctx, dbschema.PlatformTable.Table, dbschema.PlatformTable.ID, dbschema.PlatformTable.Name, canonicalName); selErr != nil {
			return 0, selErr
		} else if foundOK {
			id = found
		}
	}
	if id == 0 {
		// Still hidden (likely row-level security): insert a distinctly
		// named compat row to obtain an accessible id and keep ingest moving.
		compatName := canonicalName + " (compat)"
		compatID, compatErr := e.insertPlatform(ctx, compatName, code, family, hasCode, hasFamily)
		if compatErr != nil {
			return 0, compatErr
		}
		id = compatID
	}

	e.entities.PutPlatformID(canonicalName, id)
	return id, nil
}

func (e *Engine) insertPlatform(ctx context.Context, name string, code, family *string, hasCode, hasFamily bool) (int64, error) {
	var columns []string
	var placeholders []string
	args := []any{name}
	columns = append(columns, dbschema.PlatformTable.Name)
	placeholders = append(placeholders, "$1")

	if hasCode {
		columns = append(columns, dbschema.PlatformTable.Code)
		args = append(args, firstNonEmpty(code, name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	if hasFamily {
		columns = append(columns, dbschema.PlatformTable.Family)
		args = append(args, firstNonEmpty(family, name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	var id int64
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s)
		ON CONFLICT (%s) DO NOTHING
		RETURNING %s`,
		dbschema.PlatformTable.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
		dbschema.PlatformTable.Name, dbschema.PlatformTable.ID,
	)
	err := e.pool.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return id, nil
}

func (e *Engine) listPlatformNames(ctx context.Context) ([]string, error) {
	rows, err := e.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s`, dbschema.PlatformTable.Name, dbschema.PlatformTable.Table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func firstNonEmpty(p *string, fallback string) string {
	if v := pointer.Val(p); v != "" {
		return v
	}
	return fallback
}
