// Package codec converts forests, languages, notifications and scenarios
// to and from their file formats.
package codec

import (
	"fmt"
	"io"
	"strings"

	"modelsync/internal/domain"
	"modelsync/internal/graph"
	"modelsync/internal/schema"
)

// Document is a serialized dump of the registered partitions of a forest
type Document struct {
	Language   string            `json:"language,omitempty" yaml:"language,omitempty"`
	Partitions []*domain.Subtree `json:"partitions" yaml:"partitions"`
}

// Importer interface for reading documents from various formats
type Importer interface {
	Parse(r io.Reader) (*Document, error)
	Format() string
}

// Exporter interface for writing documents to various formats
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Format() string
}

// Codec reads and writes one format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered for format
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// LanguageRef names a language as key@version
func LanguageRef(l *schema.Language) string {
	return l.Key + "@" + l.Version
}

// Dump snapshots every registered partition of f in registration order
func Dump(f *graph.Forest) (*Document, error) {
	doc := &Document{Language: LanguageRef(f.Language()), Partitions: []*domain.Subtree{}}
	for _, p := range f.Partitions() {
		s, err := f.Snapshot(p.ID())
		if err != nil {
			return nil, fmt.Errorf("dump partition %s: %w", p.ID(), err)
		}
		doc.Partitions = append(doc.Partitions, s)
	}
	return doc, nil
}

// Load materializes every partition of doc into f and registers it. Each
// registration reaches the receivers of f as a PartitionAdded.
func Load(f *graph.Forest, doc *Document) error {
	if doc.Language != "" && doc.Language != LanguageRef(f.Language()) {
		return fmt.Errorf("document is %s, forest speaks %s", doc.Language, LanguageRef(f.Language()))
	}
	for _, p := range doc.Partitions {
		if p == nil {
			return fmt.Errorf("load: empty partition entry")
		}
		if _, err := f.Materialize(p, nil); err != nil {
			return fmt.Errorf("load partition %s: %w", p.ID, err)
		}
		if err := f.AddPartition(p.ID); err != nil {
			return fmt.Errorf("register partition %s: %w", p.ID, err)
		}
	}
	return nil
}
