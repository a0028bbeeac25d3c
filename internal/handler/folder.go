package handler

import (
	"log/slog"
	"net/http"

	"lumina/internal/domain"
	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService  collectionSvc.FolderService
	projectService collectionSvc.ProjectService
	logger         *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService collectionSvc.FolderService, projectService collectionSvc.ProjectService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService:  folderService,
		projectService: projectService,
		logger:         logger,
	}
}

// CreateFolder creates a folder inside a project. parent_id defaults to the root.
// POST /api/projects/{id}/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "Project")
	if !ok {
		return
	}

	var req collectionSvc.CreateFolderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.ParentID == "" {
		project, err := h.projectService.GetProject(r.Context(), projectID)
		if err != nil {
			handleError(w, err)
			return
		}
		req.ParentID = project.RootFolderID
	} else {
		parent, err := h.folderService.GetFolder(r.Context(), req.ParentID)
		if err != nil {
			handleError(w, err)
			return
		}
		if parent.ProjectID != projectID {
			handleError(w, domain.NewNotFound("folder", req.ParentID))
			return
		}
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// updateFolderBody distinguishes an absent name from an explicit null
type updateFolderBody struct {
	Name httputil.Optional[string] `json:"name"`
}

// UpdateFolder renames a folder. An absent name leaves it unchanged.
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	var body updateFolderBody
	if !decodeBody(w, r, &body) {
		return
	}

	if !body.Name.Present {
		folder, err := h.folderService.GetFolder(r.Context(), id)
		if err != nil {
			handleError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, folder)
		return
	}
	if body.Name.IsNull() {
		httputil.RespondError(w, http.StatusBadRequest, "name cannot be null")
		return
	}

	folder, err := h.folderService.RenameFolder(r.Context(), id, &collectionSvc.UpdateFolderRequest{Name: *body.Name.Value})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// MoveFolder reparents a folder, appending it to the target's children
// POST /api/folders/{id}/move
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	var req collectionSvc.MoveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	folder, err := h.folderService.MoveFolder(r.Context(), id, req.TargetFolderID)
	if err != nil {
		httputil.RequestLogger(r, h.logger).Debug("folder move rejected", "folder_id", id, "target_folder_id", req.TargetFolderID, "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with everything below it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
