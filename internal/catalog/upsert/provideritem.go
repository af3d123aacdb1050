// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upsert

import (
	"context"
	"fmt"

	dbschema "github.com/taibuivan/gamecatalog/internal/platform/database/schema"
)

// EnsureProviderItem resolves a provider_items row by (provider_id,
// external_id), inserting it with metadata if absent or refreshing metadata
// if present. This is the linkage row the API Driver writes for every
// PlayStation Store product it observes, consumed downstream by the
// Verifier's title-linkage check (I2).
func (e *Engine) EnsureProviderItem(ctx context.Context, providerID int64, externalID string, metadata []byte) (int64, error) {
	t := dbschema.ProviderItemTable

	id, err := e.withPKRescue(ctx, t.Table, func(ctx context.Context) (int64, error) {
		var insertedID int64
		insertErr := e.pool.QueryRow(ctx,
			fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s)
				VALUES ($1, $2, $3)
				ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s
				RETURNING %s`,
				t.Table, t.ProviderID, t.ExternalID, t.Metadata,
				t.ProviderID, t.ExternalID, t.Metadata, t.Metadata,
				t.ID,
			),
			providerID, externalID, metadata,
		).Scan(&insertedID)
		return insertedID, insertErr
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}
