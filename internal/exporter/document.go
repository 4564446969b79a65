package exporter

import (
	"fmt"
	"os"
)

// YAMLExporter writes the document as YAML.
type YAMLExporter struct{}

// NewYAMLExporter creates a YAMLExporter
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

func (e *YAMLExporter) Extension() string { return "yaml" }

// Export writes the YAML form to path
func (e *YAMLExporter) Export(a *Artifact, path string) error {
	data, err := a.Document.YAML()
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// JSONExporter writes the document as indented JSON.
type JSONExporter struct{}

// NewJSONExporter creates a JSONExporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Extension() string { return "json" }

// Export writes the JSON form to path
func (e *JSONExporter) Export(a *Artifact, path string) error {
	data, err := a.Document.JSON()
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
