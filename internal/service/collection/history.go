package collection

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"lumina/internal/config"
	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	"lumina/internal/domain/repositories"
	collectionRepo "lumina/internal/domain/repositories/collection"
	collectionSvc "lumina/internal/domain/services/collection"
)

type historyService struct {
	historyRepo  collectionRepo.HistoryRepository
	requestRepo  collectionRepo.RequestRepository
	txManager    repositories.TransactionManager
	maxEntries   int
	maxBodyBytes int
	logger       *slog.Logger
}

// NewHistoryService creates a history service keeping maxEntries per request
// and at most maxBodyBytes of each response body.
func NewHistoryService(
	historyRepo collectionRepo.HistoryRepository,
	requestRepo collectionRepo.RequestRepository,
	txManager repositories.TransactionManager,
	maxEntries, maxBodyBytes int,
	logger *slog.Logger,
) collectionSvc.HistoryService {
	if maxEntries <= 0 {
		maxEntries = config.DefaultHistoryMaxEntries
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = config.DefaultHistoryMaxBodyBytes
	}
	return &historyService{
		historyRepo:  historyRepo,
		requestRepo:  requestRepo,
		txManager:    txManager,
		maxEntries:   maxEntries,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// AppendHistory stores one execution, then drops entries beyond retention
func (s *historyService) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	if entry == nil || entry.RequestID == "" {
		return &domain.ValidationError{Message: "history entry needs a request_id"}
	}
	if entry.Response.ElapsedMS < 0 || entry.Response.SizeBytes < 0 {
		return &domain.ValidationError{Message: "elapsed_ms and size_bytes must not be negative"}
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Response.Body = truncateBody(entry.Response.Body, s.maxBodyBytes)

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.requestRepo.GetByIDOnly(txCtx, entry.RequestID); err != nil {
			return err
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return err
		}
		return s.historyRepo.Prune(txCtx, entry.RequestID, s.maxEntries)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("history appended",
		"id", entry.ID,
		"request_id", entry.RequestID,
		"status", entry.Response.StatusCode,
		"elapsed_ms", entry.Response.ElapsedMS,
	)

	return nil
}

// ListHistory returns up to limit entries, newest first
func (s *historyService) ListHistory(ctx context.Context, requestID string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = config.DefaultHistoryLimit
	}
	if limit > s.maxEntries {
		limit = s.maxEntries
	}
	if _, err := s.requestRepo.GetByIDOnly(ctx, requestID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByRequest(ctx, requestID, limit)
}

// truncateBody cuts body to at most max bytes without splitting a UTF-8 sequence
func truncateBody(body string, max int) string {
	if len(body) <= max {
		return body
	}
	return strings.ToValidUTF8(body[:max], "")
}
