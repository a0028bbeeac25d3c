package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

// maxRefDepth bounds $ref chains and schema recursion.
const maxRefDepth = 16

type openAPIDocument struct {
	OpenAPI    string                     `yaml:"openapi"`
	Info       openAPIInfo                `yaml:"info"`
	Servers    []openAPIServer            `yaml:"servers"`
	Paths      map[string]openAPIPathItem `yaml:"paths"`
	Components openAPIComponents          `yaml:"components"`
}

type openAPIInfo struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type openAPIServer struct {
	URL string `yaml:"url"`
}

type openAPIComponents struct {
	Schemas       map[string]map[string]any     `yaml:"schemas"`
	Parameters    map[string]openAPIParameter   `yaml:"parameters"`
	RequestBodies map[string]openAPIRequestBody `yaml:"requestBodies"`
}

type openAPIPathItem struct {
	Parameters []openAPIParameter `yaml:"parameters"`
	Get        *openAPIOperation  `yaml:"get"`
	Post       *openAPIOperation  `yaml:"post"`
	Put        *openAPIOperation  `yaml:"put"`
	Patch      *openAPIOperation  `yaml:"patch"`
	Delete     *openAPIOperation  `yaml:"delete"`
	Options    *openAPIOperation  `yaml:"options"`
	Head       *openAPIOperation  `yaml:"head"`
}

// operations returns the defined operations in a fixed method order.
func (p openAPIPathItem) operations() []struct {
	method string
	op     *openAPIOperation
} {
	all := []struct {
		method string
		op     *openAPIOperation
	}{
		{"GET", p.Get}, {"POST", p.Post}, {"PUT", p.Put}, {"PATCH", p.Patch},
		{"DELETE", p.Delete}, {"OPTIONS", p.Options}, {"HEAD", p.Head},
	}
	out := all[:0]
	for _, e := range all {
		if e.op != nil {
			out = append(out, e)
		}
	}
	return out
}

type openAPIOperation struct {
	OperationID string              `yaml:"operationId"`
	Summary     string              `yaml:"summary"`
	Description string              `yaml:"description"`
	Tags        []string            `yaml:"tags"`
	Parameters  []openAPIParameter  `yaml:"parameters"`
	RequestBody *openAPIRequestBody `yaml:"requestBody"`
}

type openAPIParameter struct {
	Ref     string         `yaml:"$ref"`
	Name    string         `yaml:"name"`
	In      string         `yaml:"in"`
	Example any            `yaml:"example"`
	Schema  map[string]any `yaml:"schema"`
}

type openAPIRequestBody struct {
	Ref     string                      `yaml:"$ref"`
	Content map[string]openAPIMediaType `yaml:"content"`
}

type openAPIMediaType struct {
	Schema  map[string]any `yaml:"schema"`
	Example any            `yaml:"example"`
}

// OpenAPIConverter imports OpenAPI 3.x documents in YAML or JSON.
type OpenAPIConverter struct{}

// NewOpenAPIConverter creates an OpenAPI importer.
func NewOpenAPIConverter() *OpenAPIConverter {
	return &OpenAPIConverter{}
}

func (c *OpenAPIConverter) Format() Format { return OpenAPI }

// Import turns every (path, operation) pair into a request. Requests are grouped
// into folders by their first tag, or by the first path segment when untagged.
func (c *OpenAPIConverter) Import(data []byte) (*models.FolderNode, error) {
	var doc openAPIDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, c.parseError("%v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		return nil, c.parseError("unsupported openapi version %q", doc.OpenAPI)
	}

	baseURL := ""
	if len(doc.Servers) > 0 {
		baseURL = strings.TrimRight(doc.Servers[0].URL, "/")
	}

	root := newImportedFolder(nameOr(doc.Info.Title, "Imported API"))
	folders := make(map[string]*models.FolderNode)

	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := doc.Paths[path]
		for _, e := range item.operations() {
			req, err := c.buildRequest(&doc, baseURL, path, e.method, item.Parameters, e.op)
			if err != nil {
				return nil, err
			}

			group := groupName(path, e.op)
			if group == "" {
				appendRequest(root, req)
				continue
			}
			folder, ok := folders[group]
			if !ok {
				folder = newImportedFolder(group)
				folders[group] = folder
				appendFolder(root, folder)
			}
			appendRequest(folder, req)
		}
	}
	return root, nil
}

func groupName(path string, op *openAPIOperation) string {
	if len(op.Tags) > 0 && strings.TrimSpace(op.Tags[0]) != "" {
		return op.Tags[0]
	}
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}

func (c *OpenAPIConverter) buildRequest(doc *openAPIDocument, baseURL, path, method string, shared []openAPIParameter, op *openAPIOperation) (*models.Request, error) {
	name := op.Summary
	if name == "" {
		name = op.OperationID
	}
	if name == "" {
		name = method + " " + path
	}

	req := newImportedRequest(name)
	req.Method = method
	req.URL = baseURL + "/" + strings.TrimLeft(path, "/")
	req.Documentation = op.Description

	params, err := c.mergeParameters(doc, shared, op.Parameters)
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		switch p.In {
		case "query":
			req.Params = req.Params.Set(p.Name, parameterValue(doc, p))
		case "header":
			req.Headers = req.Headers.Set(p.Name, parameterValue(doc, p))
		}
	}

	if op.RequestBody != nil {
		body, err := c.resolveRequestBody(doc, op.RequestBody)
		if err != nil {
			return nil, err
		}
		contentType, raw := requestBodyExample(doc, body)
		if contentType != "" {
			req.Body = models.RawBody(raw)
			if contentType != "multipart/form-data" {
				req.Headers = req.Headers.Set("Content-Type", contentType)
			}
		}
	}
	return req, nil
}

// mergeParameters resolves $refs and lets operation parameters override path-level
// parameters with the same name and location.
func (c *OpenAPIConverter) mergeParameters(doc *openAPIDocument, shared, own []openAPIParameter) ([]openAPIParameter, error) {
	var out []openAPIParameter
	index := make(map[string]int)
	for _, list := range [][]openAPIParameter{shared, own} {
		for _, p := range list {
			resolved, err := c.resolveParameter(doc, p)
			if err != nil {
				return nil, err
			}
			key := resolved.In + ":" + resolved.Name
			if i, ok := index[key]; ok {
				out[i] = resolved
				continue
			}
			index[key] = len(out)
			out = append(out, resolved)
		}
	}
	return out, nil
}

func (c *OpenAPIConverter) resolveParameter(doc *openAPIDocument, p openAPIParameter) (openAPIParameter, error) {
	for depth := 0; p.Ref != ""; depth++ {
		if depth >= maxRefDepth {
			return p, c.parseError("parameter $ref chain too deep at %s", p.Ref)
		}
		name, ok := componentName(p.Ref, "parameters")
		if !ok {
			return p, c.parseError("unsupported parameter $ref %q", p.Ref)
		}
		next, ok := doc.Components.Parameters[name]
		if !ok {
			return p, c.parseError("unresolved parameter $ref %q", p.Ref)
		}
		p = next
	}
	return p, nil
}

func (c *OpenAPIConverter) resolveRequestBody(doc *openAPIDocument, b *openAPIRequestBody) (*openAPIRequestBody, error) {
	for depth := 0; b.Ref != ""; depth++ {
		if depth >= maxRefDepth {
			return nil, c.parseError("requestBody $ref chain too deep at %s", b.Ref)
		}
		name, ok := componentName(b.Ref, "requestBodies")
		if !ok {
			return nil, c.parseError("unsupported requestBody $ref %q", b.Ref)
		}
		next, ok := doc.Components.RequestBodies[name]
		if !ok {
			return nil, c.parseError("unresolved requestBody $ref %q", b.Ref)
		}
		b = &next
	}
	return b, nil
}

// componentName extracts NAME from "#/components/<kind>/NAME".
func componentName(ref, kind string) (string, bool) {
	prefix := "#/components/" + kind + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, prefix), true
}

func parameterValue(doc *openAPIDocument, p openAPIParameter) string {
	if p.Example != nil {
		return scalarString(p.Example)
	}
	schema := resolveSchema(doc, p.Schema, 0)
	if v, ok := schema["example"]; ok && v != nil {
		return scalarString(v)
	}
	if v, ok := schema["default"]; ok && v != nil {
		return scalarString(v)
	}
	return ""
}

// requestBodyExample picks JSON content first, then form content, then whatever
// media type sorts first, and renders an example body for it.
func requestBodyExample(doc *openAPIDocument, body *openAPIRequestBody) (string, string) {
	if len(body.Content) == 0 {
		return "", ""
	}
	contentType := ""
	for _, preferred := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if _, ok := body.Content[preferred]; ok {
			contentType = preferred
			break
		}
	}
	if contentType == "" {
		types := make([]string, 0, len(body.Content))
		for t := range body.Content {
			types = append(types, t)
		}
		sort.Strings(types)
		contentType = types[0]
	}

	media := body.Content[contentType]
	schema := resolveSchema(doc, media.Schema, 0)

	switch contentType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		props, _ := schema["properties"].(map[string]any)
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		form := models.KeyValues{}
		for _, k := range keys {
			prop, _ := props[k].(map[string]any)
			prop = resolveSchema(doc, prop, 0)
			v := prop["example"]
			if v == nil {
				v = prop["default"]
			}
			form = form.Set(k, scalarString(v))
		}
		return contentType, encodePairs(form)
	}

	example := media.Example
	if example == nil {
		example = exampleFromSchema(doc, schema)
	}
	if s, ok := example.(string); ok && !strings.Contains(contentType, "json") {
		return contentType, s
	}
	out, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return contentType, ""
	}
	return contentType, string(out)
}

// resolveSchema follows a schema $ref into components.schemas.
func resolveSchema(doc *openAPIDocument, schema map[string]any, depth int) map[string]any {
	for ; depth < maxRefDepth; depth++ {
		ref, ok := schema["$ref"].(string)
		if !ok {
			return schema
		}
		name, ok := componentName(ref, "schemas")
		if !ok {
			return map[string]any{}
		}
		next, ok := doc.Components.Schemas[name]
		if !ok {
			return map[string]any{}
		}
		schema = next
	}
	return map[string]any{}
}

// exampleFromSchema synthesizes a value shaped like the schema, preferring
// declared examples.
func exampleFromSchema(doc *openAPIDocument, schema map[string]any) any {
	b := &exampleBuilder{doc: doc, expanding: make(map[string]bool), budget: maxExampleNodes}
	return b.build(schema, 0)
}

// maxExampleNodes caps how many values one synthesized example may contain.
const maxExampleNodes = 1000

// exampleBuilder tracks the component schemas on the current path so a
// self-referencing model stops at its first repeat.
type exampleBuilder struct {
	doc       *openAPIDocument
	expanding map[string]bool
	budget    int
}

func (b *exampleBuilder) build(schema map[string]any, depth int) any {
	if depth >= maxRefDepth || b.budget <= 0 {
		return nil
	}
	b.budget--

	var entered []string
	defer func() {
		for _, name := range entered {
			delete(b.expanding, name)
		}
	}()
	for hops := 0; hops < maxRefDepth; hops++ {
		ref, ok := schema["$ref"].(string)
		if !ok {
			break
		}
		name, ok := componentName(ref, "schemas")
		if !ok {
			return nil
		}
		if b.expanding[name] {
			return nil
		}
		next, ok := b.doc.Components.Schemas[name]
		if !ok {
			return nil
		}
		b.expanding[name] = true
		entered = append(entered, name)
		schema = next
	}
	if _, ok := schema["$ref"]; ok {
		return nil
	}
	if v, ok := schema["example"]; ok {
		return v
	}

	switch schemaType(schema) {
	case "object":
		result := make(map[string]any)
		props, _ := schema["properties"].(map[string]any)
		for key, prop := range props {
			if m, ok := prop.(map[string]any); ok {
				result[key] = b.build(m, depth+1)
			}
		}
		return result
	case "array":
		items, _ := schema["items"].(map[string]any)
		if items == nil {
			return []any{}
		}
		return []any{b.build(items, depth+1)}
	case "string":
		return "string"
	case "integer", "number":
		return 0
	case "boolean":
		return false
	}
	return nil
}

func schemaType(schema map[string]any) string {
	switch t := schema["type"].(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s != "null" {
				return s
			}
		}
	}
	if _, ok := schema["properties"]; ok {
		return "object"
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		out, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(out)
	}
	return fmt.Sprint(v)
}

func (c *OpenAPIConverter) parseError(format string, args ...any) error {
	return &domain.ParseError{Format: string(OpenAPI), Detail: fmt.Sprintf(format, args...)}
}
