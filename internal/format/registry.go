package format

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

// Format names a third-party collection document format.
type Format string

const (
	Postman  Format = "postman"
	Insomnia Format = "insomnia"
	OpenAPI  Format = "openapi"
)

// Importer converts an external document into a detached folder tree.
// The returned nodes carry no ids; the caller mints them when persisting.
type Importer interface {
	Format() Format
	Import(data []byte) (*models.FolderNode, error)
}

// EnvironmentImporter is implemented by importers whose documents also carry
// environments. The returned environments have no ids or project.
type EnvironmentImporter interface {
	ImportEnvironments(data []byte) ([]models.Environment, error)
}

// Exporter converts a folder tree into an external document.
// name is the collection name written into the document.
type Exporter interface {
	Format() Format
	Export(name string, root *models.FolderNode) ([]byte, error)
}

// Registry routes documents to converters by format.
//
// Thread-safe for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	importers map[Format]Importer
	exporters map[Format]Exporter
}

// NewRegistry creates a registry with the standard converters pre-registered.
// OpenAPI is import-only.
func NewRegistry() *Registry {
	r := &Registry{
		importers: make(map[Format]Importer),
		exporters: make(map[Format]Exporter),
	}

	postman := NewPostmanConverter()
	insomnia := NewInsomniaConverter()
	r.RegisterImporter(postman)
	r.RegisterExporter(postman)
	r.RegisterImporter(insomnia)
	r.RegisterExporter(insomnia)
	r.RegisterImporter(NewOpenAPIConverter())

	return r
}

// RegisterImporter adds or replaces the importer for its format.
func (r *Registry) RegisterImporter(imp Importer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.importers[imp.Format()] = imp
}

// RegisterExporter adds or replaces the exporter for its format.
func (r *Registry) RegisterExporter(exp Exporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exporters[exp.Format()] = exp
}

// Import parses data with the importer registered for f.
func (r *Registry) Import(f Format, data []byte) (*models.FolderNode, error) {
	r.mu.RLock()
	imp, ok := r.importers[f]
	r.mu.RUnlock()
	if !ok {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("import from %q is not supported", f)}
	}
	return imp.Import(data)
}

// ImportEnvironments returns the environments in data, or nil when the
// importer for f does not read environments.
func (r *Registry) ImportEnvironments(f Format, data []byte) ([]models.Environment, error) {
	r.mu.RLock()
	imp, ok := r.importers[f]
	r.mu.RUnlock()
	if !ok {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("import from %q is not supported", f)}
	}
	envImp, ok := imp.(EnvironmentImporter)
	if !ok {
		return nil, nil
	}
	return envImp.ImportEnvironments(data)
}

// Export renders root with the exporter registered for f.
func (r *Registry) Export(f Format, name string, root *models.FolderNode) ([]byte, error) {
	r.mu.RLock()
	exp, ok := r.exporters[f]
	r.mu.RUnlock()
	if !ok {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("export to %q is not supported", f)}
	}
	return exp.Export(name, root)
}

// ImportFormats lists the formats that can be imported, sorted.
func (r *Registry) ImportFormats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.importers)
}

// ExportFormats lists the formats that can be exported, sorted.
func (r *Registry) ExportFormats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.exporters)
}

func sortedKeys[V any](m map[Format]V) []Format {
	out := make([]Format, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseFormat maps a user-supplied name onto a Format. Matching is case-insensitive
// and accepts "swagger" for OpenAPI.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postman":
		return Postman, nil
	case "insomnia":
		return Insomnia, nil
	case "openapi", "swagger":
		return OpenAPI, nil
	}
	return "", &domain.ValidationError{Message: fmt.Sprintf("unknown collection format %q", s)}
}

var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// normalizeMethod upper-cases m and falls back to GET for anything unrecognized.
func normalizeMethod(m string) string {
	m = strings.ToUpper(strings.TrimSpace(m))
	if knownMethods[m] {
		return m
	}
	return "GET"
}

func newImportedRequest(name string) *models.Request {
	return &models.Request{
		Name:    name,
		Method:  "GET",
		Headers: models.KeyValues{},
		Params:  models.KeyValues{},
		Body:    models.Body{Type: models.BodyTypeNone},
		Auth:    models.NoAuth{},
	}
}

func newImportedFolder(name string) *models.FolderNode {
	return &models.FolderNode{
		Name:     name,
		Folders:  []*models.FolderNode{},
		Requests: []*models.Request{},
	}
}

// appendFolder and appendRequest keep sibling positions dense as the tree is built.
func appendFolder(parent, child *models.FolderNode) {
	child.Position = len(parent.Folders)
	parent.Folders = append(parent.Folders, child)
}

func appendRequest(parent *models.FolderNode, req *models.Request) {
	req.Position = len(parent.Requests)
	parent.Requests = append(parent.Requests, req)
}

// encodePairs joins pairs as k=v separated by '&' without escaping, the way
// collection tools write raw URLs and form bodies.
func encodePairs(kv models.KeyValues) string {
	parts := make([]string, 0, len(kv))
	for _, e := range kv {
		parts = append(parts, e.Key+"="+e.Value)
	}
	return strings.Join(parts, "&")
}
