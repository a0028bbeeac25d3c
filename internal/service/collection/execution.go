package collection

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
	collectionSvc "lumina/internal/domain/services/collection"
)

type executionService struct {
	requestRepo    collectionRepo.RequestRepository
	envService     collectionSvc.EnvironmentService
	executor       collectionSvc.Executor
	historyService collectionSvc.HistoryService
	logger         *slog.Logger
}

// NewExecutionService creates a service that sends persisted requests
func NewExecutionService(
	requestRepo collectionRepo.RequestRepository,
	envService collectionSvc.EnvironmentService,
	executor collectionSvc.Executor,
	historyService collectionSvc.HistoryService,
	logger *slog.Logger,
) collectionSvc.ExecutionService {
	return &executionService{
		requestRepo:    requestRepo,
		envService:     envService,
		executor:       executor,
		historyService: historyService,
		logger:         logger,
	}
}

// ExecuteRequest sends the request as currently persisted, with the project's
// environment variables substituted, and appends the result to its history. A transport failure is still recorded: the entry
// carries the error text and is returned together with the TransportError.
func (s *executionService) ExecuteRequest(ctx context.Context, requestID string) (*models.HistoryEntry, error) {
	req, err := s.requestRepo.GetByIDOnly(ctx, requestID)
	if err != nil {
		return nil, err
	}
	vars, err := s.envService.Variables(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	return RecordExecution(ctx, s.executor, s.historyService, req, vars, s.logger)
}

// RecordExecution resolves vars in req, runs it through executor and appends
// one history entry for it. The snapshot keeps the unresolved {{name}} references.
func RecordExecution(
	ctx context.Context,
	executor collectionSvc.Executor,
	history interface {
		AppendHistory(ctx context.Context, entry *models.HistoryEntry) error
	},
	req *models.Request,
	vars map[string]string,
	logger *slog.Logger,
) (*models.HistoryEntry, error) {
	entry := &models.HistoryEntry{
		RequestID: req.ID,
		Timestamp: time.Now(),
		Request:   req.Snapshot(),
	}

	resp, sendErr := executor.Execute(ctx, req.Resolve(vars))
	if sendErr != nil {
		var transportErr *domain.TransportError
		if !errors.As(sendErr, &transportErr) {
			return nil, sendErr
		}
		entry.Response = models.ResponseSnapshot{Headers: models.KeyValues{}, Error: sendErr.Error()}
	} else {
		entry.Response = *resp
	}

	// The send already happened; a cancelled caller must not lose its history row.
	if err := history.AppendHistory(context.WithoutCancel(ctx), entry); err != nil {
		return nil, err
	}

	logger.Info("request executed",
		"request_id", req.ID,
		"method", req.Method,
		"status", entry.Response.StatusCode,
		"elapsed_ms", entry.Response.ElapsedMS,
		"error", entry.Response.Error,
	)

	return entry, sendErr
}
