// Package tx carries an open *sql.Tx through the context. The transaction
// runner opens it and every store's execer joins it, so a routing or signing
// operation writes all of its rows inside one transaction without stores
// taking a transaction parameter.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx returns a context whose stores will write through tx.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From reports the open transaction, if the context carries one.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}
