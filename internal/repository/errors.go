package repository

import (
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Postgres SQLSTATE codes translated into domain errors.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err)
}

// mapError translates driver errors for resource into domain errors. Unknown errors pass through.
func mapError(err error, resource string, details map[string]any) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return errorutil.NewNotFound(resource, details)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgInvalidText:
			// A malformed UUID cannot name an existing row.
			return errorutil.NewNotFound(resource, details)
		case pgForeignKeyViolation:
			return errorutil.NewInvalidReference(resource+" references a missing row",
				map[string]any{"constraint": pgErr.ConstraintName})
		case pgCheckViolation:
			return errorutil.NewValidationError(resource+" violates a check constraint",
				map[string]any{"constraint": pgErr.ConstraintName})
		case pgUniqueViolation:
			return errorutil.NewConflict(resource+" already exists",
				map[string]any{"constraint": pgErr.ConstraintName})
		}
	}
	return err
}
