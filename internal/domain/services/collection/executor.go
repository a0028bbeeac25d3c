package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// Executor sends a fully-resolved request. Network failures and timeouts are
// returned as TransportError.
type Executor interface {
	Execute(ctx context.Context, req *collection.Request) (*collection.ResponseSnapshot, error)
}

// ExecutionService sends a persisted request and records the result in history
type ExecutionService interface {
	ExecuteRequest(ctx context.Context, requestID string) (*collection.HistoryEntry, error)
}
