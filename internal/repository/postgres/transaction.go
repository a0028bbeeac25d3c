package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"lumina/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager and ProjectLocker interfaces
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) *TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx executes a function within a transaction
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	// Nested calls join the outer transaction
	if repositories.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return WrapError("begin transaction", err)
	}

	// Safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(repositories.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return WrapError("commit transaction", err)
	}

	return nil
}

// LockProject takes a transaction-scoped advisory lock keyed by the project id, so
// tree mutations of one project run one at a time across all server instances.
func (tm *TransactionManager) LockProject(ctx context.Context, projectID string) error {
	tx := repositories.TxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("lock project %s: no transaction in context", projectID)
	}
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", projectID); err != nil {
		return WrapError("lock project", err)
	}
	return nil
}
