package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

const petstoreYAML = `
openapi: 3.0.3
info:
  title: Petstore
servers:
  - url: https://pets.test/v1/
paths:
  /pets:
    parameters:
      - name: X-Trace
        in: header
        schema:
          type: string
          default: none
    get:
      summary: List pets
      tags: [pets]
      parameters:
        - $ref: '#/components/parameters/Limit'
        - name: X-Trace
          in: header
          example: abc
    post:
      operationId: createPet
      tags: [pets]
      requestBody:
        $ref: '#/components/requestBodies/NewPet'
  /health:
    get:
      description: Liveness check.
  /stores/{id}:
    delete:
      parameters:
        - name: id
          in: path
          schema: {type: string}
components:
  parameters:
    Limit:
      name: limit
      in: query
      schema:
        type: integer
        example: 20
  requestBodies:
    NewPet:
      content:
        application/json:
          schema:
            $ref: '#/components/schemas/Pet'
  schemas:
    Pet:
      type: object
      properties:
        name: {type: string}
        age: {type: integer}
        tags:
          type: array
          items: {type: string}
`

func TestOpenAPIImport(t *testing.T) {
	root, err := NewOpenAPIConverter().Import([]byte(petstoreYAML))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if root.Name != "Petstore" {
		t.Errorf("root name = %q", root.Name)
	}

	folders := map[string]int{}
	for _, f := range root.Folders {
		folders[f.Name] = len(f.Requests)
	}
	want := map[string]int{"health": 1, "pets": 2, "stores": 1}
	for name, n := range want {
		if folders[name] != n {
			t.Errorf("folder %q: expected %d requests, got %d (folders: %v)", name, n, folders[name], folders)
		}
	}

	list := findByName(t, root.Folders, "pets", "List pets")
	create := findByName(t, root.Folders, "pets", "createPet")

	if list.URL != "https://pets.test/v1/pets" {
		t.Errorf("url = %q", list.URL)
	}
	if v, _ := list.Params.Get("limit"); v != "20" {
		t.Errorf("expected limit from referenced parameter example, got %v", list.Params)
	}
	if v, _ := list.Headers.Get("X-Trace"); v != "abc" {
		t.Errorf("expected operation header to override path header, got %v", list.Headers)
	}

	if create.Method != "POST" {
		t.Errorf("method = %q", create.Method)
	}
	if v, _ := create.Headers.Get("Content-Type"); v != "application/json" {
		t.Errorf("expected json content type, got %v", create.Headers)
	}
	if v, _ := create.Headers.Get("X-Trace"); v != "none" {
		t.Errorf("expected path-level header default, got %v", create.Headers)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(create.Body.Raw), &body); err != nil {
		t.Fatalf("body is not JSON: %v (%q)", err, create.Body.Raw)
	}
	if body["name"] != "string" || body["age"] != float64(0) {
		t.Errorf("unexpected synthesized body %v", body)
	}

	health := findByName(t, root.Folders, "health", "GET /health")
	if health.Documentation != "Liveness check." {
		t.Errorf("documentation = %q", health.Documentation)
	}
}

func findByName(t *testing.T, folders []*models.FolderNode, folder, name string) *models.Request {
	t.Helper()
	for _, f := range folders {
		if f.Name != folder {
			continue
		}
		for _, r := range f.Requests {
			if r.Name == name {
				return r
			}
		}
	}
	t.Fatalf("request %q not found in folder %q", name, folder)
	return nil
}

func TestOpenAPIImportJSON(t *testing.T) {
	doc := `{"openapi":"3.1.0","info":{"title":"J"},"paths":{"/":{"get":{"summary":"Index"}}}}`
	root, err := NewOpenAPIConverter().Import([]byte(doc))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(root.Requests) != 1 || root.Requests[0].URL != "/" {
		t.Fatalf("expected a single root-level request, got %+v", root.Requests)
	}
}

func TestOpenAPIImportErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"swagger 2", "swagger: '2.0'\npaths: {}\n"},
		{"not yaml", "openapi: [3.0\n"},
		{"unresolved ref", "openapi: 3.0.0\npaths:\n  /a:\n    get:\n      parameters:\n        - $ref: '#/components/parameters/Nope'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOpenAPIConverter().Import([]byte(tt.doc))
			if !errors.Is(err, domain.ErrInvalidDocument) {
				t.Fatalf("expected invalid document error, got %v", err)
			}
		})
	}
}

const recursiveYAML = `
openapi: 3.0.3
info:
  title: Graph
paths:
  /nodes:
    post:
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Node'
components:
  schemas:
    Node:
      type: object
      properties:
        a: {$ref: '#/components/schemas/Node'}
        b: {$ref: '#/components/schemas/Node'}
        c: {$ref: '#/components/schemas/Node'}
        d: {$ref: '#/components/schemas/Node'}
        children:
          type: array
          items: {$ref: '#/components/schemas/Node'}
        label: {type: string}
`

func TestOpenAPIImportRecursiveSchema(t *testing.T) {
	done := make(chan *models.FolderNode, 1)
	errc := make(chan error, 1)
	go func() {
		root, err := NewOpenAPIConverter().Import([]byte(recursiveYAML))
		if err != nil {
			errc <- err
			return
		}
		done <- root
	}()

	var root *models.FolderNode
	select {
	case root = <-done:
	case err := <-errc:
		t.Fatalf("Import failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("import of a self-referencing schema did not finish")
	}

	req := findByName(t, root.Folders, "nodes", "POST /nodes")
	var body map[string]any
	if err := json.Unmarshal([]byte(req.Body.Raw), &body); err != nil {
		t.Fatalf("body is not JSON: %v (%q)", err, req.Body.Raw)
	}
	for _, key := range []string{"a", "b", "c", "d"} {
		if v, ok := body[key]; !ok || v != nil {
			t.Errorf("expected %s to stop at the repeated reference, got %v", key, v)
		}
	}
	if body["label"] != "string" {
		t.Errorf("expected label example, got %v", body["label"])
	}
	if kids, ok := body["children"].([]any); !ok || len(kids) != 1 || kids[0] != nil {
		t.Errorf("expected children to hold one cut-off item, got %v", body["children"])
	}
}

func TestExampleFromSchemaBudget(t *testing.T) {
	doc := &openAPIDocument{}
	doc.Components.Schemas = map[string]map[string]any{}
	// L0..L15 each fan out to the next level, fifty times over.
	for level := 0; level < maxRefDepth; level++ {
		fan := make(map[string]any)
		for i := 0; i < 50; i++ {
			fan[fmt.Sprintf("p%d", i)] = map[string]any{"$ref": fmt.Sprintf("#/components/schemas/L%d", level+1)}
		}
		doc.Components.Schemas[fmt.Sprintf("L%d", level)] = map[string]any{"type": "object", "properties": fan}
	}

	out := exampleFromSchema(doc, map[string]any{"$ref": "#/components/schemas/L0"})
	if n := countValues(out); n > maxExampleNodes {
		t.Fatalf("expected at most %d values, got %d", maxExampleNodes, n)
	}
}

func countValues(v any) int {
	if v == nil {
		return 0
	}
	n := 1
	switch t := v.(type) {
	case map[string]any:
		for _, child := range t {
			n += countValues(child)
		}
	case []any:
		for _, child := range t {
			n += countValues(child)
		}
	}
	return n
}
