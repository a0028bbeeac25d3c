package handler

import (
	"log/slog"
	"net/http"

	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/httputil"
)

// ShareHandler handles share token HTTP requests
type ShareHandler struct {
	shareService collectionSvc.ShareService
	logger       *slog.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(shareService collectionSvc.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		logger:       logger,
	}
}

// CreateShare snapshots a project under a new token
// POST /api/projects/{id}/shares
func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "Project")
	if !ok {
		return
	}

	var req collectionSvc.CreateShareRequest
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}
	req.ProjectID = projectID

	share, err := h.shareService.CreateShare(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, share)
}

// ImportShare copies a shared snapshot into a new project
// POST /api/shares/{token}/import
func (h *ShareHandler) ImportShare(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Share token is required")
		return
	}

	project, err := h.shareService.ImportShare(r.Context(), token)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, project)
}
