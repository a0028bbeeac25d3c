package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs fn atomically. Nested calls join the outer transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

// ProjectLocker serializes mutations of one project's tree.
type ProjectLocker interface {
	// LockProject must be called inside ExecTx; the lock is released when the
	// transaction ends.
	LockProject(ctx context.Context, projectID string) error
}

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...interface{}) pgx.Row
}

type txKey struct{}

// WithTx returns a context carrying tx for repositories to pick up
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction opened by ExecTx, or nil outside one
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}
