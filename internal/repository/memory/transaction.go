package memory

import (
	"context"

	"lumina/internal/domain/repositories"
)

type txKey struct{}

// TransactionManager runs one transaction at a time and restores the pre-transaction
// state when fn fails. Writes made outside a transaction wait for it to finish.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager over store
func NewTransactionManager(store *Store) *TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx executes fn atomically with respect to other transactions
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	tm.store.mu.RLock()
	saved := tm.store.snapshot()
	tm.store.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		tm.store.mu.Lock()
		tm.store.data = saved
		tm.store.mu.Unlock()
		return err
	}
	return nil
}

// LockProject is satisfied by ExecTx, which already admits one transaction at a time
func (tm *TransactionManager) LockProject(ctx context.Context, projectID string) error {
	return nil
}
