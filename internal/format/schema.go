package format

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"lumina/internal/domain"
)

// Structural schemas for inbound documents. They check only the shape the
// converters rely on; semantic checks happen during conversion.
const postmanSchema = `{
  "type": "object",
  "required": ["info", "item"],
  "properties": {
    "info": {
      "type": "object",
      "required": ["name"],
      "properties": {"name": {"type": "string"}}
    },
    "item": {"type": "array", "items": {"$ref": "#/definitions/item"}}
  },
  "definitions": {
    "item": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "item": {"type": "array", "items": {"$ref": "#/definitions/item"}},
        "request": {"type": ["object", "string"]}
      }
    }
  }
}`

const insomniaSchema = `{
  "type": "object",
  "required": ["resources"],
  "properties": {
    "resources": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["_id", "_type"],
        "properties": {
          "_id": {"type": "string", "minLength": 1},
          "_type": {"type": "string"},
          "parentId": {"type": ["string", "null"]},
          "name": {"type": "string"}
        }
      }
    }
  }
}`

// documentSchema is a compiled schema bound to the format it validates.
type documentSchema struct {
	format Format
	schema *gojsonschema.Schema
}

func mustCompile(f Format, src string) *documentSchema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", f, err))
	}
	return &documentSchema{format: f, schema: s}
}

// Validate returns a ParseError listing every violation, or nil.
func (d *documentSchema) Validate(data []byte) error {
	result, err := d.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &domain.ParseError{Format: string(d.format), Detail: err.Error()}
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return &domain.ParseError{Format: string(d.format), Detail: strings.Join(msgs, "; ")}
}
