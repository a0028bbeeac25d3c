package workspace

import (
	"context"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

type historyStore interface {
	ListHistory(ctx context.Context, requestID string, limit int) ([]models.HistoryEntry, error)
}

// HistoryLog is the read side of a request's execution history.
type HistoryLog struct {
	store   historyStore
	editor  *EditorSync
	timeout time.Duration
}

func NewHistoryLog(store historyStore, editor *EditorSync, timeout time.Duration) *HistoryLog {
	return &HistoryLog{store: store, editor: editor, timeout: timeout}
}

// List returns up to limit entries for requestID, newest first
func (h *HistoryLog) List(ctx context.Context, requestID string, limit int) ([]models.HistoryEntry, error) {
	return call(ctx, h.timeout, "list history", func(ctx context.Context) ([]models.HistoryEntry, error) {
		return h.store.ListHistory(ctx, requestID, limit)
	})
}

// Detail finds one entry. It changes nothing.
func (h *HistoryLog) Detail(ctx context.Context, requestID, entryID string, limit int) (*models.HistoryEntry, error) {
	entries, err := h.List(ctx, requestID, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == entryID {
			return &entries[i], nil
		}
	}
	return nil, domain.NewNotFound("history entry", entryID)
}

// Load copies the entry's request fields into the editor once confirm agrees.
// It returns false when the user declined. The editor is not saved here.
func (h *HistoryLog) Load(entry *models.HistoryEntry, confirm func(*models.HistoryEntry) bool) (bool, error) {
	if open := h.editor.RequestID(); open != entry.RequestID {
		return false, &domain.ValidationError{Message: "history entry belongs to a request that is not open"}
	}
	if confirm == nil || !confirm(entry) {
		return false, nil
	}
	if err := h.editor.LoadSnapshot(entry.Request); err != nil {
		return false, err
	}
	return true, nil
}
