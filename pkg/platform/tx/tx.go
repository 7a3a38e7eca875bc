// Package tx lets SQL stores join a transaction owned by a caller further up
// the stack. The transaction rides on the context; a store asks Executor for
// something to run statements against and gets the transaction when one is
// attached, the pooled *sql.DB otherwise.
package tx

import (
	"context"
	"database/sql"
)

type txKey struct{}

// Runner is the subset of *sql.DB and *sql.Tx the stores run statements with.
type Runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Attach binds tx to the context so downstream stores enlist in it.
func Attach(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// From reports the transaction attached to ctx, if any.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// Executor returns the attached transaction or falls back to db.
func Executor(ctx context.Context, db *sql.DB) Runner {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}
