// Package pipeline runs a full generation pass: scan, extract, assemble,
// enrich. The CLI, the HTTP server and the MCP tools all go through it.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"spec-synth/internal/analyzer"
	"spec-synth/internal/assembler"
	"spec-synth/internal/config"
	"spec-synth/internal/logger"
	"spec-synth/internal/model"
	"spec-synth/internal/nlp"
	"spec-synth/internal/openapi"
	"spec-synth/internal/security"
	"spec-synth/internal/ui"
)

// ErrNoEndpoints is returned when the tree yields no endpoint and no
// existing specification file was found to fall back on.
var ErrNoEndpoints = errors.New("no endpoints found")

// specFileNames are checked in order at the project root.
var specFileNames = []string{
	"openapi.yaml", "openapi.yml", "openapi.json",
	"swagger.yaml", "swagger.yml", "swagger.json",
}

// Options tune one run on top of the configuration.
type Options struct {
	// Describer generates descriptions. Nil disables enrichment.
	Describer nlp.Describer
	// Progress draws phase bars. Nil runs silently.
	Progress *ui.Pipeline
	// NoSpecFallback disables the existing-specification fallback.
	NoSpecFallback bool
}

// Analysis is the extractor output for one source tree.
type Analysis struct {
	Input       assembler.Input
	Files       int
	Diagnostics logger.Diagnostics
}

// Empty reports a tree without endpoints.
func (a *Analysis) Empty() bool {
	return a == nil || len(a.Input.Endpoints) == 0
}

// Outcome is the result of Generate. Exactly one of Document and SpecYAML
// is set.
type Outcome struct {
	Document         *openapi.Document
	Security         model.SecurityModel
	Endpoints        int
	Files            int
	Enriched         int
	SpecFile         string
	SpecYAML         []byte
	ValidationErrors []string
	Diagnostics      logger.Diagnostics
}

// FromSpecFile reports whether the run enriched an existing specification
// instead of generating one.
func (o *Outcome) FromSpecFile() bool {
	return o.SpecFile != ""
}

// YAML returns the resulting document as YAML.
func (o *Outcome) YAML() ([]byte, error) {
	if o.Document != nil {
		return o.Document.YAML()
	}
	return o.SpecYAML, nil
}

// JSON returns the resulting document as indented JSON.
func (o *Outcome) JSON() ([]byte, error) {
	if o.Document != nil {
		return o.Document.JSON()
	}
	var v map[string]interface{}
	if err := yaml.Unmarshal(o.SpecYAML, &v); err != nil {
		return nil, fmt.Errorf("decoding enriched specification: %w", err)
	}
	return json.MarshalIndent(v, "", "  ")
}

// Render returns the document in the named format (yaml or json).
func (o *Outcome) Render(format string) ([]byte, error) {
	switch format {
	case "", "yaml", "yml":
		return o.YAML()
	case "json":
		return o.JSON()
	}
	return nil, fmt.Errorf("unsupported format %q (want yaml or json)", format)
}

// NewDescriber returns the configured description client, or nil when
// enrichment is disabled.
func NewDescriber(cfg *config.Config) nlp.Describer {
	if !cfg.NLP.Enabled || cfg.NLP.BaseURL == "" {
		return nil
	}
	return nlp.NewClient(cfg.NLP.BaseURL)
}

// SourceOptions maps the configuration onto analyzer options.
func SourceOptions(cfg *config.Config) analyzer.Options {
	return analyzer.Options{
		ExcludeDirs: cfg.Analysis.ExcludeDirs,
		Encodings:   cfg.Project.Encoding,
		Ext:         cfg.Analysis.SourceExt,
	}
}

// Analyze parses the project once and runs the endpoint extractor, the
// schema collector and the security extractor over the same units.
func Analyze(cfg *config.Config, progress *ui.Pipeline) (*Analysis, error) {
	if progress == nil {
		progress = ui.NewPipelineWithOutput(ui.GeneratePhases, nil)
	}

	// --- Phase 1: Scanning & Parsing ---
	scanBar := progress.NextPhase(-1)
	opts := SourceOptions(cfg)
	opts.OnFile = func(path string) {
		scanBar.Describe(filepath.Base(path))
		scanBar.Increment()
	}
	tree, err := analyzer.ParseTree(cfg.Project.RootDir, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("Parsed %d of %d source files", len(tree.Units), tree.Files)

	// --- Phase 2: Extraction ---
	extractBar := progress.NextPhase(3)
	a := &Analysis{Files: tree.Files}
	a.Diagnostics.Append(tree.Diagnostics)

	eps := analyzer.NewEndpointExtractor(cfg.Heuristics).Extract(tree.Units)
	a.Input.Endpoints = eps.Endpoints
	a.Diagnostics.Append(eps.Diagnostics)
	extractBar.Increment()

	schemas := analyzer.CollectSchemas(tree.Units)
	a.Input.Schemas = schemas.Schemas
	a.Diagnostics.Append(schemas.Diagnostics)
	extractBar.Increment()

	sec := security.Extract(tree.Units)
	a.Input.Security = sec.Model
	a.Diagnostics.Append(sec.Diagnostics)
	extractBar.Increment()

	logger.Info("Extracted %d endpoints, %d schemas, %d security rules (%s)",
		len(a.Input.Endpoints), a.Input.Schemas.Len(), len(a.Input.Security.Rules), a.Input.Security.Mechanism)
	return a, nil
}

// Generate runs the whole pass for cfg.Project.RootDir. When the tree has no
// endpoints an existing specification at the root is enriched instead;
// without one ErrNoEndpoints is returned.
func Generate(ctx context.Context, cfg *config.Config, opts Options) (*Outcome, error) {
	level, err := cfg.DetailLevel()
	if err != nil {
		return nil, err
	}
	progress := opts.Progress
	if progress == nil {
		progress = ui.NewPipelineWithOutput(ui.GeneratePhases, nil)
	}

	analysis, err := Analyze(cfg, progress)
	if err != nil {
		return nil, err
	}

	if analysis.Empty() {
		progress.Finish()
		if opts.NoSpecFallback {
			return nil, ErrNoEndpoints
		}
		path, ok := FindSpecFile(cfg.Project.RootDir)
		if !ok {
			return nil, ErrNoEndpoints
		}
		logger.Info("No endpoints found; enriching existing specification %s", path)
		return enrichExisting(ctx, cfg, path, level, opts.Describer, analysis)
	}

	// --- Phase 3: Enrichment ---
	enrichBar := progress.NextPhase(len(analysis.Input.Endpoints))
	asm, err := assembler.New(opts.Describer, assembler.Options{
		Level:       level,
		Title:       cfg.Generation.Title,
		Version:     cfg.Generation.Version,
		ProjectName: cfg.Project.Name,
		Timeout:     cfg.NLP.CodeTimeout,
		Heuristics:  cfg.Heuristics,
		OnEndpoint: func(ep model.Endpoint) {
			enrichBar.Describe(ep.Signature())
			enrichBar.Increment()
		},
	})
	if err != nil {
		return nil, err
	}

	res, err := asm.Assemble(ctx, analysis.Input)
	if err != nil {
		return nil, err
	}
	enrichBar.Finish()

	out := &Outcome{
		Document:  res.Document,
		Security:  analysis.Input.Security,
		Endpoints: len(analysis.Input.Endpoints),
		Files:     analysis.Files,
		Enriched:  res.Enriched,
	}
	out.Diagnostics.Append(analysis.Diagnostics)
	out.Diagnostics.Append(res.Diagnostics)

	if cfg.Generation.Validate {
		out.ValidationErrors = res.Document.Validate(ctx)
		for _, msg := range out.ValidationErrors {
			out.Diagnostics.Add(logger.LevelWarn, "", "generated document: %s", msg)
		}
	}
	return out, nil
}

func enrichExisting(ctx context.Context, cfg *config.Config, path string, level model.DetailLevel, describer nlp.Describer, analysis *Analysis) (*Outcome, error) {
	res, err := assembler.EnrichSpecFile(ctx, path, describer, assembler.SpecOptions{
		Level:   level,
		Timeout: cfg.NLP.SpecTimeout,
	})
	if err != nil {
		return nil, err
	}
	out := &Outcome{
		Security: analysis.Input.Security,
		Files:    analysis.Files,
		Enriched: res.Enriched,
		SpecFile: path,
		SpecYAML: res.YAML,
	}
	out.Diagnostics.Append(analysis.Diagnostics)
	out.Diagnostics.Append(res.Diagnostics)
	return out, nil
}

// FindSpecFile looks for an existing OpenAPI or Swagger document directly
// under root.
func FindSpecFile(root string) (string, bool) {
	for _, name := range specFileNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Requests returns the describe requests a run over cfg would send, without
// sending them.
func Requests(cfg *config.Config) ([]nlp.Request, error) {
	analysis, err := Analyze(cfg, nil)
	if err != nil {
		return nil, err
	}
	return assembler.BuildRequests(analysis.Input.Endpoints), nil
}
