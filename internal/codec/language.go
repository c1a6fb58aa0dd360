package codec

import (
	"fmt"
	"io"

	"modelsync/internal/schema"
)

// LanguageFile is the serialized form of a schema.Language
type LanguageFile struct {
	Key         string               `yaml:"key" json:"key"`
	Version     string               `yaml:"version" json:"version"`
	Classifiers []*schema.Classifier `yaml:"classifiers" json:"classifiers"`
}

// Build checks the file and returns the language it describes
func (lf *LanguageFile) Build() (*schema.Language, error) {
	if lf.Key == "" {
		return nil, fmt.Errorf("language key required")
	}
	l, err := schema.NewLanguage(lf.Key, lf.Version, lf.Classifiers...)
	if err != nil {
		return nil, fmt.Errorf("language %s: %w", lf.Key, err)
	}
	return l, nil
}

// LanguageFileOf describes l for export
func LanguageFileOf(l *schema.Language) *LanguageFile {
	return &LanguageFile{Key: l.Key, Version: l.Version, Classifiers: l.Classifiers()}
}

// ParseLanguage reads a YAML language file
func ParseLanguage(r io.Reader) (*schema.Language, error) {
	var lf LanguageFile
	if err := decodeYAML(r, &lf); err != nil {
		return nil, err
	}
	return lf.Build()
}

// ExportLanguage writes l as YAML
func ExportLanguage(l *schema.Language, w io.Writer) error {
	return encodeYAML(w, LanguageFileOf(l))
}
