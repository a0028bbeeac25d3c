package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"lumina/internal/config"
	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/httputil"
)

// TransferHandler handles collection import and export.
//
// Import accepts the document either as the raw request body or as a
// multipart upload in the "file" field.
type TransferHandler struct {
	transferService collectionSvc.TransferService
	logger          *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transferService collectionSvc.TransferService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		logger:          logger,
	}
}

// Import converts a collection document into folders and requests.
// POST /api/projects/{id}/import/{format}
//
// Query parameters:
//   - folder_id: optional, target folder (empty = project root)
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "Project")
	if !ok {
		return
	}

	data, err := readDocument(w, r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.RequestLogger(r, h.logger).Info("starting import",
		"project_id", projectID,
		"format", r.PathValue("format"),
		"bytes", len(data),
	)

	summary, err := h.transferService.ImportCollection(r.Context(), &collectionSvc.ImportCollectionRequest{
		ProjectID: projectID,
		FolderID:  r.URL.Query().Get("folder_id"),
		Format:    r.PathValue("format"),
		Data:      data,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, summary)
}

// readDocument returns the uploaded document, bounded by the import size limit
func readDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxImportDocumentBytes+1<<20)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body")
		}
		return data, nil
	}

	if err := r.ParseMultipartForm(config.MaxImportDocumentBytes); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("no file provided")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file")
	}
	return data, nil
}

// Export converts the project's tree into a collection document
// GET /api/projects/{id}/export/{format}
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "Project")
	if !ok {
		return
	}
	formatName := r.PathValue("format")

	data, err := h.transferService.ExportCollection(r.Context(), projectID, formatName)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s.json"`, projectID, strings.ToLower(formatName)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
