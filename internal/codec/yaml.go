package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse reads a document from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := decodeYAML(r, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Export writes a document as YAML
func (c *YAMLCodec) Export(doc *Document, w io.Writer) error {
	return encodeYAML(w, doc)
}

func decodeYAML(r io.Reader, v any) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
