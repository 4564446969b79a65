// Package assembler merges extracted endpoints, schemas and security rules
// into an OpenAPI document and enriches it with generated descriptions.
package assembler

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"spec-synth/internal/config"
	"spec-synth/internal/logger"
	"spec-synth/internal/model"
	"spec-synth/internal/nlp"
	"spec-synth/internal/openapi"
	"spec-synth/internal/schema"
)

// DefaultTimeout bounds one describe round trip for code-derived documents.
const DefaultTimeout = 15 * time.Second

// maxImplNotes caps the x-impl-notes extension.
const maxImplNotes = 8

// Input is what the extractors produced for one source tree.
type Input struct {
	Endpoints []model.Endpoint
	Schemas   *model.SchemaSet
	Security  model.SecurityModel
}

// Options configures an Assembler.
type Options struct {
	Level       model.DetailLevel
	Title       string
	Version     string
	ProjectName string
	Timeout     time.Duration
	Heuristics  config.Heuristics
	// OnEndpoint is called after each endpoint is assembled.
	OnEndpoint func(ep model.Endpoint)
}

// Result is the assembled document plus run statistics.
type Result struct {
	Document    *openapi.Document
	Enriched    int
	Diagnostics logger.Diagnostics
}

// Assembler builds documents. It holds no per-run state.
type Assembler struct {
	describer    nlp.Describer
	opts         Options
	placeholders []*regexp.Regexp
}

// New returns an assembler. A nil describer disables enrichment.
func New(describer nlp.Describer, opts Options) (*Assembler, error) {
	if opts.Level == "" {
		opts.Level = model.LevelMedium
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Title == "" {
		opts.Title = "Generated API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	placeholders, err := opts.Heuristics.Compile()
	if err != nil {
		return nil, err
	}
	return &Assembler{describer: describer, opts: opts, placeholders: placeholders}, nil
}

// Assemble builds the document. Enrichment failures never fail the run; they
// are reported as debug diagnostics and the endpoint keeps its own text.
func (a *Assembler) Assemble(ctx context.Context, in Input) (*Result, error) {
	res := &Result{Document: openapi.New(a.opts.Title, a.opts.Version)}
	doc := res.Document
	doc.Info.SetExtension("x-detail-level", string(a.opts.Level))
	if a.opts.ProjectName != "" {
		doc.Info.SetExtension("x-project-name", a.opts.ProjectName)
	}

	schemas := in.Schemas
	if schemas == nil {
		schemas = model.NewSchemaSet()
	}
	for _, name := range schemas.Names() {
		node, _ := schemas.Get(name)
		resolved, fell := schema.Resolve(node, schemas)
		if fell {
			res.Diagnostics.Add(logger.LevelDebug, "",
				"schema %s references types that are not collected schemas, using object", name)
		}
		doc.Components.Schemas.Set(name, openapi.FromNode(resolved))
	}

	for _, ep := range in.Endpoints {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assembling %s: %w", ep.Signature(), err)
		}

		op := a.operation(ep, schemas, &res.Diagnostics)
		if a.enrich(ctx, ep, op, &res.Diagnostics) {
			res.Enriched++
		}

		item := doc.PathItem(ep.Path)
		if prev := item.Get(ep.Method); prev != nil {
			res.Diagnostics.Add(logger.LevelWarn, ep.File,
				"duplicate operation %s: %s replaces %s", ep.Signature(), op.OperationID, prev.OperationID)
		}
		item.Set(ep.Method, op)

		if a.opts.OnEndpoint != nil {
			a.opts.OnEndpoint(ep)
		}
	}

	applySecurity(doc, in.Security, &res.Diagnostics)
	a.postProcess(doc)
	return res, nil
}

// operation converts one endpoint without enrichment.
func (a *Assembler) operation(ep model.Endpoint, schemas *model.SchemaSet, diags *logger.Diagnostics) *openapi.Operation {
	op := &openapi.Operation{
		OperationID: ep.OperationID,
		Summary:     ep.Summary,
		Description: ep.Description,
		Responses:   openapi.NewOrderedMap[*openapi.Response](),
	}
	if ep.Controller != "" {
		op.Tags = []string{ep.Controller}
	}

	for _, p := range ep.Params {
		if p.In == model.InBody {
			op.RequestBody = &openapi.RequestBody{
				Description: p.Description,
				Required:    p.Required,
				Content:     openapi.JSONContent(openapi.ObjectSchema()),
			}
			continue
		}
		node, fell := schema.Resolve(schema.Map(p.Type), schemas)
		if fell {
			diags.Add(logger.LevelDebug, ep.File, "%s: type %s of parameter %s is not a collected schema, using object",
				ep.Signature(), p.Type, p.Name)
		}
		s := openapi.FromNode(node)
		if p.HasDefault {
			if v, ok := typedDefault(s, p.DefaultValue); ok {
				s.Default = v
			} else {
				diags.Add(logger.LevelDebug, ep.File, "%s: default %q of parameter %s does not fit type %s, dropped",
					ep.Signature(), p.DefaultValue, p.Name, s.Type)
			}
		}
		op.Parameters = append(op.Parameters, &openapi.Parameter{
			Name:        p.Name,
			In:          string(p.In),
			Description: p.Description,
			Required:    p.Required,
			Schema:      s,
		})
	}

	op.Responses.Set("200", &openapi.Response{
		Description: "OK",
		Content:     openapi.JSONContent(openapi.ObjectSchema()),
	})
	return op
}

// typedDefault converts a declared default to the schema's JSON type.
// References and objects never carry a default.
func typedDefault(s *openapi.Schema, raw string) (any, bool) {
	switch s.Type {
	case "string":
		return raw, true
	case "integer":
		v, err := strconv.ParseInt(raw, 10, 64)
		return v, err == nil
	case "number":
		v, err := strconv.ParseFloat(raw, 64)
		return v, err == nil
	case "boolean":
		v, err := strconv.ParseBool(raw)
		return v, err == nil
	}
	return nil, false
}
