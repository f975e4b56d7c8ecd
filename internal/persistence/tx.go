package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code runs against the pool or inside a request
// transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type querierKey struct{}

// WithQuerier returns a context carrying a request-scoped querier,
// typically an open transaction.
func WithQuerier(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, querierKey{}, q)
}

// QuerierFrom resolves the effective querier: the context-carried
// transaction when a request scope is open, the fallback otherwise.
func QuerierFrom(ctx context.Context, fallback Querier) Querier {
	if q, ok := ctx.Value(querierKey{}).(Querier); ok && q != nil {
		return q
	}
	return fallback
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on every other exit path. When the context already carries a
// transaction, a nested one (savepoint) is opened on it; when no store is
// available at all, fn runs as-is so in-memory setups keep working.
func WithTx(ctx context.Context, db Querier, fn func(ctx context.Context) error) error {
	b, ok := QuerierFrom(ctx, db).(beginner)
	if !ok {
		return fn(ctx)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(WithQuerier(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
