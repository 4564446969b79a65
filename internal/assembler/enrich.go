package assembler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"spec-synth/internal/logger"
	"spec-synth/internal/model"
	"spec-synth/internal/nlp"
	"spec-synth/internal/openapi"
)

// BuildRequest returns the describe request sent for ep.
func BuildRequest(ep model.Endpoint) nlp.Request {
	comment := ep.Description
	if strings.TrimSpace(comment) == "" {
		comment = ep.Summary
	}
	params := make([]nlp.Param, 0, len(ep.Params))
	for _, p := range ep.Params {
		params = append(params, nlp.Param{
			Name:        p.Name,
			In:          string(p.In),
			Type:        p.Type,
			Required:    p.Required,
			Description: p.Description,
		})
	}
	return nlp.Request{
		Symbol:    ep.OperationID,
		Kind:      nlp.KindEndpoint,
		Signature: ep.Signature(),
		Comment:   comment,
		Params:    params,
		Returns:   nlp.Returns{Type: ep.Returns.Type, Description: ep.Returns.Description},
		Notes:     ep.Notes,
		Todos:     ep.Todos,
	}
}

// BuildRequests previews every describe request a run would send.
func BuildRequests(endpoints []model.Endpoint) []nlp.Request {
	out := make([]nlp.Request, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, BuildRequest(ep))
	}
	return out
}

// enrich performs one bounded describe round trip and applies the answer.
// It reports whether anything was applied.
func (a *Assembler) enrich(ctx context.Context, ep model.Endpoint, op *openapi.Operation, diags *logger.Diagnostics) bool {
	if a.describer == nil {
		return false
	}
	callCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	resp, err := a.describer.Describe(callCtx, a.opts.Level, BuildRequest(ep))
	if err != nil {
		diags.Add(logger.LevelDebug, ep.File, "%s: no enrichment: %v", ep.Signature(), err)
		return false
	}
	if resp.IsEmpty() {
		diags.Add(logger.LevelDebug, ep.File, "%s: no enrichment: %v", ep.Signature(), nlp.ErrEmptyResponse)
		return false
	}
	applyResponse(op, resp, a.opts.Level, ep.BodyParam())
	return true
}

// applyResponse copies generated text onto op. Absent fields leave the
// existing text alone.
func applyResponse(op *openapi.Operation, resp *nlp.Response, level model.DetailLevel, body *model.Param) {
	if d := nlp.PickDescription(resp, level); d != "" {
		op.Description = d
	}
	for _, p := range op.Parameters {
		if doc := resp.ParamDoc(p.Name); doc != "" {
			p.Description = doc
		}
	}
	if body != nil && op.RequestBody != nil {
		if doc := resp.ParamDoc(body.Name); doc != "" {
			op.RequestBody.Description = doc
		}
	}
	var example *nlp.ResponseExample
	if resp.Examples != nil {
		example = resp.Examples.Response
		applyResponseExample(op, example)
	}
	if rd := strings.TrimSpace(resp.ReturnDoc); rd != "" {
		target := op.Response("200")
		if target == nil && example != nil && example.StatusCode() != http.StatusNoContent {
			target = op.Response(strconv.Itoa(example.StatusCode()))
		}
		if target != nil {
			target.Description = rd
		}
	}
	if notes := implNotes(resp.Notes); len(notes) > 0 {
		op.SetExtension("x-impl-notes", notes)
	}
	if curls := resp.Examples.Curls(); len(curls) > 0 {
		op.SetExtension(requestExamplesKey, curls)
	}
}

// applyResponseExample puts the sample answer on its status. A sample on
// another 2xx replaces an untouched 200; a 204 sample only declares the
// status.
func applyResponseExample(op *openapi.Operation, ex *nlp.ResponseExample) {
	if ex == nil {
		return
	}
	status := ex.StatusCode()
	if ex.Body == nil && status != http.StatusNoContent {
		return
	}
	code := strconv.Itoa(status)

	if status != http.StatusOK && status/100 == 2 {
		if ok := op.Response("200"); ok != nil && emptyLooking(ok) && ok.Description == defaultOKDescription {
			op.Responses.Delete("200")
		}
	}

	r := op.Response(code)
	if r == nil {
		r = &openapi.Response{Description: http.StatusText(status)}
		op.Responses.Set(code, r)
	}
	if status == http.StatusNoContent {
		r.Content = nil
		return
	}
	if r.Content == nil {
		r.Content = openapi.JSONContent(openapi.ObjectSchema())
	}
	mt, ok := r.Content.Get(openapi.ContentJSON)
	if !ok || mt == nil {
		mt = &openapi.MediaType{Schema: openapi.ObjectSchema()}
		r.Content.Set(openapi.ContentJSON, mt)
	}
	mt.Example = ex.Body
}

func implNotes(notes []string) []string {
	var out []string
	for _, n := range notes {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, n)
		if len(out) == maxImplNotes {
			break
		}
	}
	return out
}
