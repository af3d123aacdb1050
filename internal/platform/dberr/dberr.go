// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level Postgres errors and
// higher-level application errors, and classifies the sqlstates the Upsert
// Engine's sequence-desync rescue depends on.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/gamecatalog/internal/platform/apperr"
)

// Postgres sqlstate codes the Upsert Engine classifies explicitly.
const (
	// SQLStateUniqueViolation is raised on an `<table>_pkey` (or any unique
	// index) conflict — the trigger for the PK-sequence desync rescue.
	SQLStateUniqueViolation = "23505"

	// SQLStateUndefinedFunction is raised when a probed function (e.g. a
	// legacy enum helper) doesn't exist on this schema shape.
	SQLStateUndefinedFunction = "42883"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	if pgErr := AsPgError(err); pgErr != nil {
		switch pgErr.Code {
		case SQLStateUniqueViolation:
			return apperr.Conflict(action + ": unique constraint " + pgErr.ConstraintName + " violated")
		case SQLStateUndefinedFunction:
			return apperr.Other("UNDEFINED_FUNCTION", action+": function not defined on this schema shape", err)
		}
	}

	return apperr.Internal(err)
}

// AsPgError extracts the underlying [*pgconn.PgError] from err's chain, or
// nil if err doesn't wrap one.
func AsPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique-violation
// (sqlstate 23505), the signal that triggers the PK-sequence desync rescue.
func IsUniqueViolation(err error) bool {
	pgErr := AsPgError(err)
	return pgErr != nil && pgErr.Code == SQLStateUniqueViolation
}

// ConstraintName returns the violated constraint's name, or "" if err isn't
// a [*pgconn.PgError].
func ConstraintName(err error) string {
	if pgErr := AsPgError(err); pgErr != nil {
		return pgErr.ConstraintName
	}
	return ""
}

// IsUndefinedFunction reports whether err is a Postgres undefined-function
// error (sqlstate 42883), raised when a probed helper function is absent.
func IsUndefinedFunction(err error) bool {
	pgErr := AsPgError(err)
	return pgErr != nil && pgErr.Code == SQLStateUndefinedFunction
}
