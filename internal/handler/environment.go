package handler

import (
	"log/slog"
	"net/http"

	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/httputil"
)

// EnvironmentHandler handles environment HTTP requests
type EnvironmentHandler struct {
	envService collectionSvc.EnvironmentService
	logger     *slog.Logger
}

// NewEnvironmentHandler creates a new environment handler
func NewEnvironmentHandler(envService collectionSvc.EnvironmentService, logger *slog.Logger) *EnvironmentHandler {
	return &EnvironmentHandler{
		envService: envService,
		logger:     logger,
	}
}

// setActiveEnvironmentRequest selects an environment; an empty id clears the selection
type setActiveEnvironmentRequest struct {
	EnvironmentID string `json:"environment_id"`
}

// ListEnvironments lists a project's environments, base first
// GET /api/projects/{id}/environments
func (h *EnvironmentHandler) ListEnvironments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "Project")
	if !ok {
		return
	}

	envs, err := h.envService.ListEnvironments(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, envs)
}

// CreateEnvironment adds an environment to a project
// POST /api/projects/{id}/environments
func (h *EnvironmentHandler) CreateEnvironment(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "Project")
	if !ok {
		return
	}

	var req collectionSvc.CreateEnvironmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ProjectID = projectID

	env, err := h.envService.CreateEnvironment(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, env)
}

// GetBaseEnvironment returns the base environment, creating an empty one on first use
// GET /api/projects/{id}/environments/base
func (h *EnvironmentHandler) GetBaseEnvironment(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "Project")
	if !ok {
		return
	}

	env, err := h.envService.BaseEnvironment(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, env)
}

// GetActiveEnvironment returns the active environment, or null
// GET /api/projects/{id}/environments/active
func (h *EnvironmentHandler) GetActiveEnvironment(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "Project")
	if !ok {
		return
	}

	env, err := h.envService.GetActiveEnvironment(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, env)
}

// SetActiveEnvironment selects or clears the active environment
// POST /api/projects/{id}/environments/active
func (h *EnvironmentHandler) SetActiveEnvironment(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "Project")
	if !ok {
		return
	}

	var req setActiveEnvironmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.envService.SetActiveEnvironment(r.Context(), projectID, req.EnvironmentID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateEnvironment renames an environment or replaces its variables
// PATCH /api/environments/{id}
func (h *EnvironmentHandler) UpdateEnvironment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Environment")
	if !ok {
		return
	}

	var req collectionSvc.UpdateEnvironmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	env, err := h.envService.UpdateEnvironment(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, env)
}

// DeleteEnvironment removes an environment. The base environment cannot be deleted.
// DELETE /api/environments/{id}
func (h *EnvironmentHandler) DeleteEnvironment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Environment")
	if !ok {
		return
	}

	if err := h.envService.DeleteEnvironment(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
