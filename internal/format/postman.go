package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

// PostmanSchemaURL identifies Postman Collection v2.1 documents.
const PostmanSchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

type postmanCollection struct {
	Info postmanInfo   `json:"info"`
	Item []postmanItem `json:"item"`
}

type postmanInfo struct {
	PostmanID   string `json:"_postman_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Schema      string `json:"schema"`
}

// postmanItem is either a folder (Item set) or a request (Request set).
type postmanItem struct {
	Name     string          `json:"name"`
	Item     *[]postmanItem  `json:"item,omitempty"`
	Request  json.RawMessage `json:"request,omitempty"`
	Response []any           `json:"response,omitempty"`
}

type postmanRequest struct {
	Method      string          `json:"method"`
	Header      []postmanKV     `json:"header"`
	URL         json.RawMessage `json:"url"`
	Body        *postmanBody    `json:"body,omitempty"`
	Auth        *postmanAuth    `json:"auth,omitempty"`
	Description json.RawMessage `json:"description,omitempty"`
}

type postmanKV struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

type postmanURL struct {
	Raw      string      `json:"raw"`
	Protocol string      `json:"protocol,omitempty"`
	Host     []string    `json:"host,omitempty"`
	Path     []string    `json:"path,omitempty"`
	Query    []postmanKV `json:"query,omitempty"`
}

type postmanBody struct {
	Mode       string      `json:"mode"`
	Raw        string      `json:"raw,omitempty"`
	URLEncoded []postmanKV `json:"urlencoded,omitempty"`
	FormData   []postmanKV `json:"formdata,omitempty"`
}

type postmanAuth struct {
	Type   string      `json:"type"`
	Basic  []postmanKV `json:"basic,omitempty"`
	Bearer []postmanKV `json:"bearer,omitempty"`
	APIKey []postmanKV `json:"apikey,omitempty"`
}

// PostmanConverter reads and writes Postman Collection v2.1 documents.
type PostmanConverter struct {
	schema *documentSchema
}

// NewPostmanConverter creates a converter with its document schema compiled.
func NewPostmanConverter() *PostmanConverter {
	return &PostmanConverter{schema: mustCompile(Postman, postmanSchema)}
}

func (c *PostmanConverter) Format() Format { return Postman }

// Import builds a tree whose root is named after the collection. Folder items
// become folders, leaf items become requests, nesting is preserved.
func (c *PostmanConverter) Import(data []byte) (*models.FolderNode, error) {
	if err := c.schema.Validate(data); err != nil {
		return nil, err
	}
	var doc postmanCollection
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &domain.ParseError{Format: string(Postman), Detail: err.Error()}
	}

	root := newImportedFolder(doc.Info.Name)
	if err := c.importItems(root, doc.Item); err != nil {
		return nil, err
	}
	return root, nil
}

func (c *PostmanConverter) importItems(parent *models.FolderNode, items []postmanItem) error {
	for _, item := range items {
		switch {
		case item.Item != nil:
			folder := newImportedFolder(nameOr(item.Name, "Unnamed Folder"))
			if err := c.importItems(folder, *item.Item); err != nil {
				return err
			}
			appendFolder(parent, folder)
		case len(item.Request) > 0:
			req, err := c.importRequest(item)
			if err != nil {
				return err
			}
			appendRequest(parent, req)
		}
	}
	return nil
}

func (c *PostmanConverter) importRequest(item postmanItem) (*models.Request, error) {
	req := newImportedRequest(nameOr(item.Name, "Unnamed Request"))

	// A request may be given as a bare URL string.
	if bytes.HasPrefix(bytes.TrimSpace(item.Request), []byte(`"`)) {
		var raw string
		if err := json.Unmarshal(item.Request, &raw); err != nil {
			return nil, c.parseError("request %q: %v", item.Name, err)
		}
		req.URL = raw
		return req, nil
	}

	var pr postmanRequest
	if err := json.Unmarshal(item.Request, &pr); err != nil {
		return nil, c.parseError("request %q: %v", item.Name, err)
	}

	req.Method = normalizeMethod(pr.Method)
	req.Headers = enabledPairs(pr.Header)

	url, params, err := c.importURL(pr.URL)
	if err != nil {
		return nil, c.parseError("request %q url: %v", item.Name, err)
	}
	req.URL = url
	req.Params = params

	if pr.Body != nil {
		req.Body = importPostmanBody(pr.Body)
	}
	if pr.Auth != nil {
		req.Auth = importPostmanAuth(pr.Auth)
	}
	req.Documentation = postmanDescription(pr.Description)
	return req, nil
}

// importURL splits a Postman url into the base URL and its query params. When the
// raw form ends with exactly the query list, that suffix is trimmed so the raw
// URL is not double counted.
func (c *PostmanConverter) importURL(data json.RawMessage) (string, models.KeyValues, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", models.KeyValues{}, nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return "", nil, err
		}
		return raw, models.KeyValues{}, nil
	}

	var u postmanURL
	if err := json.Unmarshal(trimmed, &u); err != nil {
		return "", nil, err
	}
	raw := u.Raw
	if raw == "" && len(u.Host) > 0 {
		raw = strings.Join(u.Host, ".")
		if len(u.Path) > 0 {
			raw += "/" + strings.Join(u.Path, "/")
		}
		if u.Protocol != "" {
			raw = u.Protocol + "://" + raw
		}
	}

	params := enabledPairs(u.Query)
	if len(params) == 0 {
		return raw, params, nil
	}
	suffix := encodePairs(params)
	for _, sep := range []string{"?", "&"} {
		if strings.HasSuffix(raw, sep+suffix) {
			return strings.TrimSuffix(raw, sep+suffix), params, nil
		}
	}
	// The query list is authoritative when raw disagrees with it.
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[:i]
	}
	return raw, params, nil
}

func importPostmanBody(b *postmanBody) models.Body {
	switch b.Mode {
	case "raw":
		return models.Body{Type: models.BodyTypeRaw, Raw: b.Raw}
	case "urlencoded":
		return models.RawBody(encodePairs(textPairs(b.URLEncoded)))
	case "formdata":
		return models.RawBody(encodePairs(textPairs(b.FormData)))
	}
	return models.Body{Type: models.BodyTypeNone}
}

func importPostmanAuth(a *postmanAuth) models.Auth {
	switch a.Type {
	case "basic":
		return models.BasicAuth{
			Username: postmanAuthValue(a.Basic, "username"),
			Password: postmanAuthValue(a.Basic, "password"),
		}
	case "bearer":
		return models.BearerAuth{Token: postmanAuthValue(a.Bearer, "token")}
	case "apikey":
		loc := models.APIKeyInHeader
		if postmanAuthValue(a.APIKey, "in") == "query" {
			loc = models.APIKeyInQuery
		}
		return models.APIKeyAuth{
			Name:     postmanAuthValue(a.APIKey, "key"),
			Value:    postmanAuthValue(a.APIKey, "value"),
			Location: loc,
		}
	}
	return models.NoAuth{}
}

func postmanAuthValue(entries []postmanKV, key string) string {
	for _, e := range entries {
		if e.Key == key {
			return e.Value
		}
	}
	return ""
}

// postmanDescription accepts both the string form and the {content} object form.
func postmanDescription(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return obj.Content
	}
	return ""
}

// Export writes the children of root as the collection's items. Within a folder,
// requests are listed before subfolders.
func (c *PostmanConverter) Export(name string, root *models.FolderNode) ([]byte, error) {
	doc := postmanCollection{
		Info: postmanInfo{
			PostmanID:   uuid.NewString(),
			Name:        name,
			Description: fmt.Sprintf("Exported from Lumina: %s", name),
			Schema:      PostmanSchemaURL,
		},
		Item: c.exportItems(root),
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (c *PostmanConverter) exportItems(folder *models.FolderNode) []postmanItem {
	items := make([]postmanItem, 0, len(folder.Requests)+len(folder.Folders))
	for _, req := range folder.Requests {
		items = append(items, exportPostmanRequest(req))
	}
	for _, sub := range folder.Folders {
		children := c.exportItems(sub)
		items = append(items, postmanItem{Name: sub.Name, Item: &children})
	}
	return items
}

func exportPostmanRequest(req *models.Request) postmanItem {
	raw := req.URL
	if len(req.Params) > 0 {
		sep := "?"
		if strings.Contains(raw, "?") {
			sep = "&"
		}
		raw += sep + encodePairs(req.Params)
	}
	url, _ := json.Marshal(postmanURL{Raw: raw, Query: kvToPostman(req.Params)})

	pr := postmanRequest{
		Method: req.Method,
		Header: kvToPostman(req.Headers),
		URL:    url,
		Auth:   exportPostmanAuth(req.Auth),
	}
	if req.Body.Type == models.BodyTypeRaw {
		pr.Body = &postmanBody{Mode: "raw", Raw: req.Body.Raw}
	}
	if req.Documentation != "" {
		pr.Description, _ = json.Marshal(req.Documentation)
	}

	body, _ := json.Marshal(pr)
	return postmanItem{Name: req.Name, Request: body, Response: []any{}}
}

func exportPostmanAuth(a models.Auth) *postmanAuth {
	str := func(k, v string) postmanKV { return postmanKV{Key: k, Value: v, Type: "string"} }
	switch v := a.(type) {
	case models.BasicAuth:
		return &postmanAuth{Type: "basic", Basic: []postmanKV{str("username", v.Username), str("password", v.Password)}}
	case models.BearerAuth:
		return &postmanAuth{Type: "bearer", Bearer: []postmanKV{str("token", v.Token)}}
	case models.APIKeyAuth:
		return &postmanAuth{Type: "apikey", APIKey: []postmanKV{
			str("key", v.Name), str("value", v.Value), str("in", string(v.Location)),
		}}
	}
	return nil
}

func (c *PostmanConverter) parseError(format string, args ...any) error {
	return &domain.ParseError{Format: string(Postman), Detail: fmt.Sprintf(format, args...)}
}

// enabledPairs keeps rows that are not disabled and have a key.
func enabledPairs(rows []postmanKV) models.KeyValues {
	out := models.KeyValues{}
	for _, r := range rows {
		if r.Disabled || r.Key == "" {
			continue
		}
		out = out.Set(r.Key, r.Value)
	}
	return out
}

// textPairs is enabledPairs minus file parts of a form body.
func textPairs(rows []postmanKV) models.KeyValues {
	out := models.KeyValues{}
	for _, r := range rows {
		if r.Disabled || r.Key == "" || r.Type == "file" {
			continue
		}
		out = out.Set(r.Key, r.Value)
	}
	return out
}

func kvToPostman(kv models.KeyValues) []postmanKV {
	out := make([]postmanKV, 0, len(kv))
	for _, e := range kv {
		out = append(out, postmanKV{Key: e.Key, Value: e.Value})
	}
	return out
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
