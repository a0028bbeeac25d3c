package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/httputil"
)

// RequestHandler handles saved request, execution and history HTTP requests
type RequestHandler struct {
	requestService   collectionSvc.RequestService
	historyService   collectionSvc.HistoryService
	executionService collectionSvc.ExecutionService
	logger           *slog.Logger
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(
	requestService collectionSvc.RequestService,
	historyService collectionSvc.HistoryService,
	executionService collectionSvc.ExecutionService,
	logger *slog.Logger,
) *RequestHandler {
	return &RequestHandler{
		requestService:   requestService,
		historyService:   historyService,
		executionService: executionService,
		logger:           logger,
	}
}

// CreateRequest creates a request at the end of a folder
// POST /api/folders/{id}/requests
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	folderID, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	var req collectionSvc.CreateRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.FolderID = folderID

	created, err := h.requestService.CreateRequest(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, created)
}

// GetRequest retrieves a request by ID
// GET /api/requests/{id}
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Request")
	if !ok {
		return
	}

	req, err := h.requestService.GetRequest(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}

// UpdateRequest overwrites every editable field. Concurrent writers overwrite each other.
// PUT /api/requests/{id}
func (h *RequestHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Request")
	if !ok {
		return
	}

	var fields models.RequestFields
	if !decodeBody(w, r, &fields) {
		return
	}

	req, err := h.requestService.UpdateRequest(r.Context(), id, &fields)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}

// MoveRequest moves a request to the end of another folder
// POST /api/requests/{id}/move
func (h *RequestHandler) MoveRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Request")
	if !ok {
		return
	}

	var body collectionSvc.MoveRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := h.requestService.MoveRequest(r.Context(), id, body.TargetFolderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}

// DeleteRequest deletes a request and its history
// DELETE /api/requests/{id}
func (h *RequestHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Request")
	if !ok {
		return
	}

	if err := h.requestService.DeleteRequest(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExecuteRequest sends the stored request and returns the new history entry.
// A transport failure is still recorded; the 503 body carries the entry.
// POST /api/requests/{id}/execute
func (h *RequestHandler) ExecuteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Request")
	if !ok {
		return
	}

	entry, err := h.executionService.ExecuteRequest(r.Context(), id)
	if err != nil {
		var transportErr *domain.TransportError
		if entry != nil && errors.As(err, &transportErr) {
			httputil.RequestLogger(r, h.logger).Warn("execution failed", "request_id", id, "error", err)
			httputil.RespondErrorWithExtras(w, http.StatusServiceUnavailable, err.Error(), map[string]interface{}{
				"retryable": transportErr.Retryable(),
				"entry":     entry,
			})
			return
		}
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entry)
}

// ListHistory returns the newest entries first
// GET /api/requests/{id}/history?limit=
func (h *RequestHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Request")
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	entries, err := h.historyService.ListHistory(r.Context(), id, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entries)
}

// AppendHistory records an execution performed by a client
// POST /api/requests/{id}/history
func (h *RequestHandler) AppendHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Request")
	if !ok {
		return
	}

	var entry models.HistoryEntry
	if !decodeBody(w, r, &entry) {
		return
	}
	entry.RequestID = id

	if err := h.historyService.AppendHistory(r.Context(), &entry); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, entry)
}
