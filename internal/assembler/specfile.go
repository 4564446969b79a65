package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"spec-synth/internal/logger"
	"spec-synth/internal/model"
	"spec-synth/internal/nlp"
	"spec-synth/internal/openapi"
)

// DefaultSpecTimeout bounds one describe round trip during spec-file
// enrichment.
const DefaultSpecTimeout = 10 * time.Second

// SpecParseError reports an input specification that failed to parse or
// validate.
type SpecParseError struct {
	Source   string
	Messages []string
}

func (e *SpecParseError) Error() string {
	return fmt.Sprintf("invalid specification %s: %s", e.Source, strings.Join(e.Messages, "; "))
}

// SpecOptions configures spec-file enrichment.
type SpecOptions struct {
	Level   model.DetailLevel
	Timeout time.Duration
}

// SpecResult is the enriched document in YAML form.
type SpecResult struct {
	YAML        []byte
	Operations  int
	Enriched    int
	Diagnostics logger.Diagnostics
}

// EnrichSpecFile reads, validates and enriches an existing specification.
func EnrichSpecFile(ctx context.Context, path string, describer nlp.Describer, opts SpecOptions) (*SpecResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading specification: %w", err)
	}
	return EnrichSpec(ctx, data, path, describer, opts)
}

// EnrichSpec enriches a specification held in memory. Invalid input fails
// before any describe call is made.
func EnrichSpec(ctx context.Context, data []byte, source string, describer nlp.Describer, opts SpecOptions) (*SpecResult, error) {
	if opts.Level == "" {
		opts.Level = model.LevelMedium
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSpecTimeout
	}

	doc, msgs := openapi.Load(ctx, data)
	if len(msgs) > 0 {
		return nil, &SpecParseError{Source: source, Messages: msgs}
	}

	res := &SpecResult{}
	items := doc.Paths.Map()
	for _, path := range sortedPaths(doc) {
		ops := items[path].Operations()
		for _, m := range model.HTTPMethods {
			op := ops[string(m)]
			if op == nil {
				continue
			}
			res.Operations++
			if describer == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("enriching %s %s: %w", m, path, err)
			}
			if enrichSpecOperation(ctx, describer, opts, m, path, op, &res.Diagnostics) {
				res.Enriched++
			}
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding specification: %w", err)
	}
	out, err := openapi.JSONToYAML(raw)
	if err != nil {
		return nil, err
	}
	res.YAML = out
	return res, nil
}

func sortedPaths(doc *openapi3.T) []string {
	if doc.Paths == nil {
		return nil
	}
	items := doc.Paths.Map()
	paths := make([]string, 0, len(items))
	for p := range items {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SpecRequest builds the describe request for an operation of an existing
// specification.
func SpecRequest(method model.HTTPMethod, path string, op *openapi3.Operation) nlp.Request {
	symbol := op.OperationID
	if symbol == "" {
		symbol = string(method) + " " + path
	}
	comment := op.Description
	if strings.TrimSpace(comment) == "" {
		comment = op.Summary
	}
	params := make([]nlp.Param, 0, len(op.Parameters))
	for _, ref := range op.Parameters {
		if ref == nil || ref.Value == nil {
			continue
		}
		p := ref.Value
		params = append(params, nlp.Param{
			Name:        p.Name,
			In:          p.In,
			Type:        parameterType(p),
			Required:    p.Required,
			Description: p.Description,
		})
	}
	return nlp.Request{
		Symbol:    symbol,
		Kind:      nlp.KindEndpoint,
		Signature: string(method) + " " + path,
		Comment:   comment,
		Params:    params,
		Returns:   nlp.Returns{Type: "object"},
	}
}

func parameterType(p *openapi3.Parameter) string {
	if p.Schema == nil || p.Schema.Value == nil || p.Schema.Value.Type == nil {
		return "string"
	}
	if types := p.Schema.Value.Type.Slice(); len(types) > 0 {
		return types[0]
	}
	return "string"
}

func enrichSpecOperation(ctx context.Context, describer nlp.Describer, opts SpecOptions, method model.HTTPMethod, path string, op *openapi3.Operation, diags *logger.Diagnostics) bool {
	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	resp, err := describer.Describe(callCtx, opts.Level, SpecRequest(method, path, op))
	if err != nil || resp.IsEmpty() {
		if err == nil {
			err = nlp.ErrEmptyResponse
		}
		diags.Add(logger.LevelDebug, "", "%s %s: no enrichment: %v", method, path, err)
		return false
	}

	if d := nlp.PickDescription(resp, opts.Level); d != "" {
		op.Description = d
	}
	for _, ref := range op.Parameters {
		if ref == nil || ref.Value == nil {
			continue
		}
		if doc := resp.ParamDoc(ref.Value.Name); doc != "" {
			ref.Value.Description = doc
		}
	}
	if rd := strings.TrimSpace(resp.ReturnDoc); rd != "" && op.Responses != nil {
		if ok := op.Responses.Map()["200"]; ok != nil && ok.Value != nil {
			ok.Value.Description = &rd
		}
	}
	return true
}
