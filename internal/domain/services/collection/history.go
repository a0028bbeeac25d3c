package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// HistoryService records and lists request executions
type HistoryService interface {
	// AppendHistory stores one execution. Retention is applied here.
	AppendHistory(ctx context.Context, entry *collection.HistoryEntry) error

	// ListHistory returns up to limit entries, newest first
	ListHistory(ctx context.Context, requestID string, limit int) ([]collection.HistoryEntry, error)
}
