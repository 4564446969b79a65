package exporter

import (
	"spec-synth/internal/model"
	"spec-synth/internal/openapi"
)

// Artifact is everything a run hands to the writers.
type Artifact struct {
	Document *openapi.Document
	Security model.SecurityModel
	Enriched int
}

// Exporter is the unified interface for all output formats
type Exporter interface {
	// Extension is the file extension written, without the dot.
	Extension() string
	Export(a *Artifact, path string) error
}
