package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// HistoryRepository stores execution history
type HistoryRepository interface {
	// Append stores a new entry and fills in its ID
	Append(ctx context.Context, entry *collection.HistoryEntry) error

	// ListByRequest returns up to limit entries, newest first
	ListByRequest(ctx context.Context, requestID string, limit int) ([]collection.HistoryEntry, error)

	// Prune keeps only the newest keep entries of a request
	Prune(ctx context.Context, requestID string, keep int) error
}
