package handler

import (
	"log/slog"
	"net/http"

	"lumina/internal/service/collection"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Projects     *ProjectHandler
	Tree         *TreeHandler
	Folders      *FolderHandler
	Requests     *RequestHandler
	Transfers    *TransferHandler
	Shares       *ShareHandler
	Environments *EnvironmentHandler
}

// NewHandlers builds every handler over the collection services
func NewHandlers(svc *collection.Services, logger *slog.Logger) *Handlers {
	return &Handlers{
		Projects:     NewProjectHandler(svc.Projects, logger),
		Tree:         NewTreeHandler(svc.Tree, logger),
		Folders:      NewFolderHandler(svc.Folders, svc.Projects, logger),
		Requests:     NewRequestHandler(svc.Requests, svc.History, svc.Execution, logger),
		Transfers:    NewTransferHandler(svc.Transfer, logger),
		Shares:       NewShareHandler(svc.Shares, logger),
		Environments: NewEnvironmentHandler(svc.Environments, logger),
	}
}

// RegisterRoutes registers the API on mux (Go 1.22+ method patterns)
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Projects
	mux.HandleFunc("GET /api/projects", h.Projects.ListProjects)
	mux.HandleFunc("POST /api/projects", h.Projects.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", h.Projects.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", h.Projects.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.Projects.DeleteProject)
	mux.HandleFunc("POST /api/projects/{id}/activate", h.Projects.ActivateProject)
	mux.HandleFunc("GET /api/projects/{id}/tree", h.Tree.GetTree)

	// Folders
	mux.HandleFunc("POST /api/projects/{id}/folders", h.Folders.CreateFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)
	mux.HandleFunc("POST /api/folders/{id}/move", h.Folders.MoveFolder)

	// Requests
	mux.HandleFunc("POST /api/folders/{id}/requests", h.Requests.CreateRequest)
	mux.HandleFunc("GET /api/requests/{id}", h.Requests.GetRequest)
	mux.HandleFunc("PUT /api/requests/{id}", h.Requests.UpdateRequest)
	mux.HandleFunc("DELETE /api/requests/{id}", h.Requests.DeleteRequest)
	mux.HandleFunc("POST /api/requests/{id}/move", h.Requests.MoveRequest)
	mux.HandleFunc("POST /api/requests/{id}/execute", h.Requests.ExecuteRequest)
	mux.HandleFunc("GET /api/requests/{id}/history", h.Requests.ListHistory)
	mux.HandleFunc("POST /api/requests/{id}/history", h.Requests.AppendHistory)

	// Environments
	mux.HandleFunc("GET /api/projects/{id}/environments", h.Environments.ListEnvironments)
	mux.HandleFunc("POST /api/projects/{id}/environments", h.Environments.CreateEnvironment)
	mux.HandleFunc("GET /api/projects/{id}/environments/base", h.Environments.GetBaseEnvironment)
	mux.HandleFunc("GET /api/projects/{id}/environments/active", h.Environments.GetActiveEnvironment)
	mux.HandleFunc("POST /api/projects/{id}/environments/active", h.Environments.SetActiveEnvironment)
	mux.HandleFunc("PATCH /api/environments/{id}", h.Environments.UpdateEnvironment)
	mux.HandleFunc("DELETE /api/environments/{id}", h.Environments.DeleteEnvironment)

	// Import / export
	mux.HandleFunc("POST /api/projects/{id}/import/{format}", h.Transfers.Import)
	mux.HandleFunc("GET /api/projects/{id}/export/{format}", h.Transfers.Export)

	// Shares
	mux.HandleFunc("POST /api/projects/{id}/shares", h.Shares.CreateShare)
	mux.HandleFunc("POST /api/shares/{token}/import", h.Shares.ImportShare)
}
