// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/gamecatalog/internal/platform/sqlite"
)

/*
TestOpen_MissingFile verifies a snapshot path that does not exist on disk
fails fast instead of sqlite3 silently creating an empty database — the
legacy driver's whole point is reading an existing export, never writing
one.
*/
func TestOpen_MissingFile(t *testing.T) {
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "does-not-exist.sqlite3"))
	assert.Error(t, err)
	assert.Nil(t, db)
}
