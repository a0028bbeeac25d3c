package memory

import (
	"context"
	"sort"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
)

// HistoryRepository implements the HistoryRepository interface
type HistoryRepository struct {
	store *Store
}

// NewHistoryRepository creates a history repository over store
func NewHistoryRepository(store *Store) collectionRepo.HistoryRepository {
	return &HistoryRepository{store: store}
}

func (r *HistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.requests[entry.RequestID]; !ok {
		return domain.NewNotFound("request", entry.RequestID)
	}
	entry.ID = newID()
	r.store.data.history[entry.RequestID] = append(r.store.data.history[entry.RequestID],
		historyRecord{HistoryEntry: *entry, seq: r.store.nextSeq()})
	return nil
}

// newestFirst orders records by timestamp, then insertion order, descending
func newestFirst(records []historyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].seq > records[j].seq
	})
}

func (r *HistoryRepository) ListByRequest(ctx context.Context, requestID string, limit int) ([]models.HistoryEntry, error) {
	r.store.mu.RLock()
	records := append([]historyRecord(nil), r.store.data.history[requestID]...)
	r.store.mu.RUnlock()

	newestFirst(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	entries := make([]models.HistoryEntry, len(records))
	for i, rec := range records {
		entries[i] = rec.HistoryEntry
	}
	return entries, nil
}

func (r *HistoryRepository) Prune(ctx context.Context, requestID string, keep int) error {
	defer r.store.lock(ctx)()

	records := r.store.data.history[requestID]
	if len(records) <= keep {
		return nil
	}
	newestFirst(records)
	r.store.data.history[requestID] = append([]historyRecord(nil), records[:keep]...)
	return nil
}
