package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier.
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a material document from YAML.
func (c *YAMLCodec) Parse(r io.Reader) (*MaterialInput, error) {
	var doc MaterialInput
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &doc, nil
}

// Export writes material records to YAML. Records go through their JSON
// form first so the storage marshalers (symbol references, stripped
// provenance inputs) apply to both formats identically.
func (c *YAMLCodec) Export(doc *MaterialOutput, w io.Writer) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to normalize records: %w", err)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
