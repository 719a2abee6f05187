// Package database owns the SQL connection, the transaction runner shared by
// all services, and the reference schema used by integration tests.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"

	dErrors "tramita/pkg/domain-errors"
	txcontext "tramita/pkg/platform/tx"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Tx provides a transactional boundary for mutating operations. Services run
// every multi-write operation through RunInTx so partial application is never
// observable.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLTx runs the callback inside a database transaction. The open *sql.Tx
// travels through the context (pkg/platform/tx) so stores join it instead of
// writing against the pool.
type SQLTx struct {
	db *sql.DB
}

func NewSQLTx(db *sql.DB) *SQLTx {
	return &SQLTx{db: db}
}

func (t *SQLTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	if err := fn(txcontext.WithTx(ctx, sqlTx)); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "rollback failed: "+rbErr.Error())
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}

// InMemoryTx serializes callbacks with a single mutex. It gives the memory
// stores the same "one routing at a time per store" guarantee the database
// provides with row locks; good enough for tests and single-node use.
type InMemoryTx struct {
	mu sync.Mutex
}

func NewInMemoryTx() *InMemoryTx {
	return &InMemoryTx{}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transaction aborted: context cancelled")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
