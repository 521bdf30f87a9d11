// Package codec handles import and export of material documents.
// Import reads hand-authored material files (symbol, value, units per
// quantity); export writes the full storage records including
// provenance, in either JSON or YAML.
package codec

import (
	"fmt"
	"io"

	"propgraph/internal/storage"
)

// MaterialInput is the parsed form of a material input file.
type MaterialInput struct {
	Materials []InputMaterial `json:"materials" yaml:"materials"`
}

// InputMaterial is one material's worth of authored quantities.
type InputMaterial struct {
	ID         string          `json:"id,omitempty" yaml:"id,omitempty"`
	Quantities []InputQuantity `json:"quantities" yaml:"quantities"`
}

// InputQuantity is a single authored property value.
type InputQuantity struct {
	Symbol      string   `json:"symbol" yaml:"symbol"`
	Value       any      `json:"value" yaml:"value"`
	Units       string   `json:"units,omitempty" yaml:"units,omitempty"`
	Uncertainty any      `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// MaterialOutput is the exported form: full storage records grouped by
// material.
type MaterialOutput struct {
	Materials []OutputMaterial `json:"materials" yaml:"materials"`
}

// OutputMaterial pairs a material id with its quantity records.
type OutputMaterial struct {
	ID         string                     `json:"id" yaml:"id"`
	Quantities []*storage.StorageQuantity `json:"quantities" yaml:"quantities"`
}

// Importer parses material input documents.
type Importer interface {
	Parse(r io.Reader) (*MaterialInput, error)
	Format() string
}

// Exporter writes material record documents.
type Exporter interface {
	Export(doc *MaterialOutput, w io.Writer) error
	Format() string
}

// ForFormat returns the codec for a format identifier.
func ForFormat(format string) (Importer, Exporter, error) {
	switch format {
	case "json":
		c := NewJSONCodec()
		return c, c, nil
	case "yaml", "yml":
		c := NewYAMLCodec()
		return c, c, nil
	}
	return nil, nil, fmt.Errorf("unknown format %q", format)
}
