package format

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

const (
	insomniaWorkspace    = "workspace"
	insomniaRequestGroup = "request_group"
	insomniaRequest      = "request"
	insomniaEnvironment  = "environment"

	insomniaExportSource = "lumina"
)

type insomniaExport struct {
	Type         string             `json:"_type"`
	ExportFormat int                `json:"__export_format"`
	ExportDate   string             `json:"__export_date,omitempty"`
	ExportSource string             `json:"__export_source,omitempty"`
	Resources    []insomniaResource `json:"resources"`
}

// insomniaResource covers the resource types the tree and environments use.
// Request-only fields are empty on workspaces and groups.
type insomniaResource struct {
	ID             string         `json:"_id"`
	Type           string         `json:"_type"`
	ParentID       *string        `json:"parentId"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	MetaSortKey    *float64       `json:"metaSortKey,omitempty"`
	Method         string         `json:"method,omitempty"`
	URL            string         `json:"url,omitempty"`
	Headers        []insomniaPair `json:"headers,omitempty"`
	Parameters     []insomniaPair `json:"parameters,omitempty"`
	Body           *insomniaBody  `json:"body,omitempty"`
	Authentication map[string]any `json:"authentication,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

type insomniaPair struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

type insomniaBody struct {
	MimeType string         `json:"mimeType,omitempty"`
	Text     string         `json:"text,omitempty"`
	Params   []insomniaPair `json:"params,omitempty"`
}

// InsomniaConverter reads and writes Insomnia v4 exports.
type InsomniaConverter struct {
	schema *documentSchema
	now    func() time.Time
}

// NewInsomniaConverter creates a converter with its document schema compiled.
func NewInsomniaConverter() *InsomniaConverter {
	return &InsomniaConverter{schema: mustCompile(Insomnia, insomniaSchema), now: time.Now}
}

func (c *InsomniaConverter) Format() Format { return Insomnia }

// Import attaches every request_group and request by repeatedly resolving
// parentId until nothing changes. A missing parentId or one naming a workspace
// means the collection root. Anything left unresolved is a DanglingReferenceError.
func (c *InsomniaConverter) Import(data []byte) (*models.FolderNode, error) {
	if err := c.schema.Validate(data); err != nil {
		return nil, err
	}
	var doc insomniaExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &domain.ParseError{Format: string(Insomnia), Detail: err.Error()}
	}

	workspaces := make(map[string]string)
	var pending []insomniaResource
	seen := make(map[string]bool)
	for _, r := range doc.Resources {
		switch r.Type {
		case insomniaWorkspace:
			workspaces[r.ID] = r.Name
		case insomniaRequestGroup, insomniaRequest:
			if seen[r.ID] {
				return nil, &domain.ParseError{Format: string(Insomnia), Detail: "duplicate resource id " + r.ID}
			}
			seen[r.ID] = true
			pending = append(pending, r)
		}
	}

	// placed maps each attached group id to true; children keys by parent ("" is root).
	placed := make(map[string]bool)
	children := make(map[string][]insomniaResource)
	parentKey := func(r insomniaResource) (string, bool) {
		if r.ParentID == nil || *r.ParentID == "" {
			return "", true
		}
		p := *r.ParentID
		if _, ok := workspaces[p]; ok {
			return "", true
		}
		if placed[p] {
			return p, true
		}
		return "", false
	}

	for len(pending) > 0 {
		var next []insomniaResource
		for _, r := range pending {
			key, ok := parentKey(r)
			if !ok {
				next = append(next, r)
				continue
			}
			children[key] = append(children[key], r)
			if r.Type == insomniaRequestGroup {
				placed[r.ID] = true
			}
		}
		if len(next) == len(pending) {
			r := next[0]
			return nil, &domain.DanglingReferenceError{ResourceID: r.ID, ParentID: *r.ParentID}
		}
		pending = next
	}

	root := newImportedFolder(insomniaRootName(workspaces))
	c.build(root, "", children)
	return root, nil
}

// ImportEnvironments reads the environment resources of an export. The base
// environment, and any environment parented directly on the workspace, fold
// into a single base entry. The rest come back in sort order with the first
// one marked active.
func (c *InsomniaConverter) ImportEnvironments(data []byte) ([]models.Environment, error) {
	if err := c.schema.Validate(data); err != nil {
		return nil, err
	}
	var doc insomniaExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &domain.ParseError{Format: string(Insomnia), Detail: err.Error()}
	}

	workspaces := make(map[string]bool)
	var envs []insomniaResource
	for _, r := range doc.Resources {
		switch r.Type {
		case insomniaWorkspace:
			workspaces[r.ID] = true
		case insomniaEnvironment:
			envs = append(envs, r)
		}
	}
	sort.SliceStable(envs, func(i, j int) bool { return sortKey(envs[i]) < sortKey(envs[j]) })

	var base *models.Environment
	var out []models.Environment
	for _, r := range envs {
		name := nameOr(r.Name, "Imported Environment")
		if name == models.BaseEnvironmentName || (r.ParentID != nil && workspaces[*r.ParentID]) {
			if base == nil {
				base = &models.Environment{Name: models.BaseEnvironmentName, IsBase: true, Variables: models.KeyValues{}}
			}
			base.Variables = mergeInsomniaData(base.Variables, r.Data)
			continue
		}
		out = append(out, models.Environment{
			Name:      name,
			IsActive:  len(out) == 0,
			Variables: mergeInsomniaData(models.KeyValues{}, r.Data),
		})
	}
	if base != nil {
		out = append([]models.Environment{*base}, out...)
	}
	return out, nil
}

// mergeInsomniaData sets every entry of data on kv in key order. Non-string
// values are kept as their JSON text.
func mergeInsomniaData(kv models.KeyValues, data map[string]any) models.KeyValues {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = kv.Set(k, stringifyValue(data[k]))
	}
	return kv
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func insomniaRootName(workspaces map[string]string) string {
	if len(workspaces) == 1 {
		for _, name := range workspaces {
			if strings.TrimSpace(name) != "" {
				return name
			}
		}
	}
	return "Imported from Insomnia"
}

func (c *InsomniaConverter) build(folder *models.FolderNode, key string, children map[string][]insomniaResource) {
	kids := children[key]
	sort.SliceStable(kids, func(i, j int) bool { return sortKey(kids[i]) < sortKey(kids[j]) })
	for _, r := range kids {
		if r.Type == insomniaRequestGroup {
			sub := newImportedFolder(nameOr(r.Name, "Unnamed Folder"))
			c.build(sub, r.ID, children)
			appendFolder(folder, sub)
			continue
		}
		appendRequest(folder, importInsomniaRequest(r))
	}
}

func sortKey(r insomniaResource) float64 {
	if r.MetaSortKey == nil {
		return 0
	}
	return *r.MetaSortKey
}

func importInsomniaRequest(r insomniaResource) *models.Request {
	req := newImportedRequest(nameOr(r.Name, "Unnamed Request"))
	req.Method = normalizeMethod(r.Method)
	req.URL = r.URL
	req.Headers = insomniaPairs(r.Headers)
	req.Params = insomniaPairs(r.Parameters)
	req.Documentation = r.Description

	if b := r.Body; b != nil {
		switch {
		case len(b.Params) > 0:
			req.Body = models.RawBody(encodePairs(insomniaPairs(b.Params)))
		case b.MimeType != "" || b.Text != "":
			req.Body = models.Body{Type: models.BodyTypeRaw, Raw: b.Text}
		}
	}
	req.Auth = importInsomniaAuth(r.Authentication)
	return req
}

func importInsomniaAuth(a map[string]any) models.Auth {
	if len(a) == 0 {
		return models.NoAuth{}
	}
	if disabled, _ := a["disabled"].(bool); disabled {
		return models.NoAuth{}
	}
	str := func(k string) string {
		s, _ := a[k].(string)
		return s
	}
	switch strings.ToLower(str("type")) {
	case "basic":
		return models.BasicAuth{Username: str("username"), Password: str("password")}
	case "bearer":
		return models.BearerAuth{Token: str("token")}
	case "apikey":
		loc := models.APIKeyInHeader
		if str("addTo") == "queryParams" {
			loc = models.APIKeyInQuery
		}
		return models.APIKeyAuth{Name: str("key"), Value: str("value"), Location: loc}
	}
	return models.NoAuth{}
}

func insomniaPairs(pairs []insomniaPair) models.KeyValues {
	out := models.KeyValues{}
	for _, p := range pairs {
		if p.Disabled || p.Name == "" {
			continue
		}
		out = out.Set(p.Name, p.Value)
	}
	return out
}

// Export emits a workspace for root, a request_group per folder and a request per
// request. Resource ids are derived from the stored ids so repeated exports of the
// same tree agree.
func (c *InsomniaConverter) Export(name string, root *models.FolderNode) ([]byte, error) {
	wsID := insomniaID("wrk", root.ID)
	resources := []insomniaResource{{
		ID:   wsID,
		Type: insomniaWorkspace,
		Name: name,
	}}
	resources = c.exportFolder(resources, root, wsID)

	doc := insomniaExport{
		Type:         "export",
		ExportFormat: 4,
		ExportDate:   c.now().UTC().Format(time.RFC3339),
		ExportSource: insomniaExportSource,
		Resources:    resources,
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (c *InsomniaConverter) exportFolder(out []insomniaResource, folder *models.FolderNode, parentID string) []insomniaResource {
	for i, req := range folder.Requests {
		out = append(out, exportInsomniaRequest(req, parentID, i))
	}
	for i, sub := range folder.Folders {
		id := insomniaID("fld", sub.ID)
		out = append(out, insomniaResource{
			ID:          id,
			Type:        insomniaRequestGroup,
			ParentID:    &parentID,
			Name:        sub.Name,
			MetaSortKey: sortKeyOf(i),
		})
		out = c.exportFolder(out, sub, id)
	}
	return out
}

func exportInsomniaRequest(req *models.Request, parentID string, index int) insomniaResource {
	r := insomniaResource{
		ID:          insomniaID("req", req.ID),
		Type:        insomniaRequest,
		ParentID:    &parentID,
		Name:        req.Name,
		Description: req.Documentation,
		MetaSortKey: sortKeyOf(index),
		Method:      req.Method,
		URL:         req.URL,
		Headers:     toInsomniaPairs(req.Headers),
		Parameters:  toInsomniaPairs(req.Params),
	}
	if req.Body.Type == models.BodyTypeRaw {
		mime := "text/plain"
		if json.Valid([]byte(req.Body.Raw)) {
			mime = "application/json"
		}
		r.Body = &insomniaBody{MimeType: mime, Text: req.Body.Raw}
	}

	switch a := req.Auth.(type) {
	case models.BasicAuth:
		r.Authentication = map[string]any{"type": "basic", "username": a.Username, "password": a.Password}
	case models.BearerAuth:
		r.Authentication = map[string]any{"type": "bearer", "token": a.Token, "prefix": ""}
	case models.APIKeyAuth:
		addTo := "header"
		if a.Location == models.APIKeyInQuery {
			addTo = "queryParams"
		}
		r.Authentication = map[string]any{"type": "apikey", "key": a.Name, "value": a.Value, "addTo": addTo}
	}
	return r
}

func toInsomniaPairs(kv models.KeyValues) []insomniaPair {
	out := make([]insomniaPair, 0, len(kv))
	for _, e := range kv {
		out = append(out, insomniaPair{Name: e.Key, Value: e.Value})
	}
	return out
}

// insomniaID prefixes the dashless stored id. Unsaved nodes get a random one.
func insomniaID(prefix, id string) string {
	if id == "" {
		id = uuid.NewString()
	}
	return prefix + "_" + strings.ReplaceAll(id, "-", "")
}

func sortKeyOf(i int) *float64 {
	k := float64(i)
	return &k
}
