package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolationCode is the Postgres error code for unique constraint hits.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err comes from a unique constraint.
// Lookup-or-create paths treat it as "lost the insert race, re-read";
// everything else is a real persistence failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsNoRows reports the pgx no-rows sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
