// Package manifest imports batches of composition edges from YAML.
//
// A manifest lists sets and their components:
//
//	tenant: acme
//	sets:
//	  - product: Kit
//	    components:
//	      - product: Widget
//	        quantity: 2
//	      - product: Gadget
//
// Documents are checked against an embedded CUE schema (schema.cue) before
// anything is written; unknown keys, empty product names and quantities
// below one are rejected there. Quantity defaults to 1.
package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Manifest is a decoded, schema-checked import document.
type Manifest struct {
	Tenant string `json:"tenant,omitempty"`
	Sets   []Set  `json:"sets"`
}

// Set is one parent product and its direct components, in display order.
type Set struct {
	Product    string      `json:"product"`
	Components []Component `json:"components"`
}

// Component is one edge to create under a Set.
type Component struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// Edges returns the number of edges the manifest describes.
func (m *Manifest) Edges() int {
	n := 0
	for _, s := range m.Sets {
		n += len(s.Components)
	}
	return n
}

// SchemaError lists every schema violation in a manifest.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	if len(e.Problems) == 1 {
		return "manifest does not match schema: " + e.Problems[0]
	}
	return fmt.Sprintf("manifest does not match schema (%d problems): %s", len(e.Problems), e.Problems[0])
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML manifest and validates it against the schema.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("manifest is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(doc)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaError(err)
	}

	var m Manifest
	if err := value.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

func schemaError(err error) *SchemaError {
	se := &SchemaError{}
	for _, e := range cueerrors.Errors(err) {
		se.Problems = append(se.Problems, e.Error())
	}
	if len(se.Problems) == 0 {
		se.Problems = []string{err.Error()}
	}
	return se
}
