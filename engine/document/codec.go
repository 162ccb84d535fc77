package document

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/goccy/go-yaml"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Schema returns the JSON schema documents are validated against.
func Schema() []byte { return schemaJSON }

// Validate checks YAML (or JSON) document bytes against the document schema.
//
// Parameters:
//   - data: the document bytes
//
// Returns:
//   - error: ErrInvalidDocument listing every violation, or a parse error
func Validate(data []byte) error {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(js))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}

// Marshal encodes a document as YAML.
func Marshal(doc *Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// Unmarshal validates and parses YAML document bytes.
//
// Parameters:
//   - data: the document bytes
//
// Returns:
//   - *Document: the parsed document
//   - error: a validation or parse error
func Unmarshal(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// ReadFile reads and validates a document file.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteFile writes a document file as YAML.
func WriteFile(path string, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads a document file and rebuilds its graph.
//
// Parameters:
//   - path: the document file
//   - registry: the node factories
//   - options: options applied to the top-level graph
//
// Returns:
//   - graph.Graph: the reconstructed graph
//   - *graph.Parameters: the reconstructed blackboard
//   - error: a read, validation or decode error
func Load(path string, registry *graph.Registry, options ...graph.GraphBuilderOption) (graph.Graph, *graph.Parameters, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	g, params, err := Decode(doc, registry, options...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, params, nil
}

// Save encodes a graph and writes it to a document file.
func Save(path string, g graph.Graph, params *graph.Parameters) error {
	doc, err := Encode(g, params)
	if err != nil {
		return err
	}
	return WriteFile(path, doc)
}
