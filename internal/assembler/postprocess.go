package assembler

import (
	"fmt"
	"regexp"
	"strings"

	"spec-synth/internal/model"
	"spec-synth/internal/openapi"
)

// defaultOKDescription is what the assembler writes on every 200 before
// enrichment. It does not count as an authored description.
const defaultOKDescription = "OK"

// requestExamplesKey holds sample curl calls on an operation.
const requestExamplesKey = "x-request-examples"

// curlBreaks are the options that start a new line in a sample call.
var curlBreaks = map[string]bool{"-X": true, "-H": true, "-d": true, "--data": true, "--data-raw": true}

var sentenceSplit = regexp.MustCompile(`\.\s+|\.$`)

// postProcess runs the per-operation clean-up passes in order.
func (a *Assembler) postProcess(doc *openapi.Document) {
	for _, path := range doc.Paths.Keys() {
		item, _ := doc.Paths.Get(path)
		for _, mo := range item.Operations() {
			a.scrubPlaceholders(mo.Method, path, mo.Operation)
			dedupeSummary(mo.Operation)
			a.reconcileQueryAndBody(mo.Method, mo.Operation)
			normalizeCurlExamples(mo.Operation)
			inferStatus(mo.Method, mo.Operation)
		}
	}
}

// PostProcess applies the clean-up passes to an already assembled document.
func (a *Assembler) PostProcess(doc *openapi.Document) {
	a.postProcess(doc)
}

func (a *Assembler) isPlaceholder(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	for _, re := range a.placeholders {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

func (a *Assembler) scrubPlaceholders(method model.HTTPMethod, path string, op *openapi.Operation) {
	s := strings.TrimSpace(op.Summary)
	d := strings.TrimSpace(op.Description)
	if a.isPlaceholder(s) {
		s = ""
	}
	if a.isPlaceholder(d) {
		d = ""
	}
	if s == "" && d == "" {
		s = a.opts.Heuristics.Summary(method, path)
	}
	op.Summary, op.Description = s, d
}

// sentences splits on ". " and a trailing "."; trailing empty parts are
// dropped.
func sentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	parts := sentenceSplit.Split(text, -1)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func firstSentence(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0] + ".")
}

func dedupeSummary(op *openapi.Operation) {
	summary := strings.TrimSpace(op.Summary)
	desc := strings.TrimSpace(op.Description)

	switch {
	case summary == "" && desc == "":
		return
	case summary == "":
		if parts := sentences(desc); len(parts) > 1 {
			op.Summary = firstSentence(parts)
		}
		return
	case desc == "":
		op.Description = ""
		return
	}

	parts := sentences(desc)
	first := firstSentence(parts)
	if summary != desc && summary != first && !strings.HasPrefix(desc, summary) {
		return
	}
	if len(parts) <= 1 {
		op.Description = ""
		return
	}
	op.Summary = first
}

func (a *Assembler) reconcileQueryAndBody(method model.HTTPMethod, op *openapi.Operation) {
	if op.JSONBody() != nil {
		kept := op.Parameters[:0:0]
		for _, p := range op.Parameters {
			if p.In == string(model.InQuery) && a.opts.Heuristics.IsBodyish(p.Name) {
				continue
			}
			kept = append(kept, p)
		}
		op.Parameters = kept
		return
	}
	if !method.IsWrite() || op.RequestBody != nil {
		return
	}
	for _, p := range op.Parameters {
		if p.In == string(model.InQuery) && a.opts.Heuristics.IsBodyish(p.Name) {
			op.RequestBody = &openapi.RequestBody{Content: openapi.JSONContent(openapi.ObjectSchema())}
			op.AddWarning(fmt.Sprintf("query parameter %q looks like request content; an empty JSON body was added", p.Name))
			return
		}
	}
}

// emptyLooking reports a response without a typed JSON body.
func emptyLooking(r *openapi.Response) bool {
	if r == nil || r.Content.Len() == 0 {
		return true
	}
	mt, ok := r.Content.Get(openapi.ContentJSON)
	if !ok || mt == nil {
		return true
	}
	if mt.Example != nil {
		return false
	}
	return mt.Schema == nil || mt.Schema.IsUntypedObject()
}

func inferStatus(method model.HTTPMethod, op *openapi.Operation) {
	if method != model.MethodPost && method != model.MethodDelete {
		return
	}
	if ok := op.Response("200"); op.Responses.Len() == 1 && ok != nil && emptyLooking(ok) {
		op.Responses.Delete("200")
		if method == model.MethodDelete {
			op.Responses.Set("204", &openapi.Response{Description: "No Content"})
			return
		}
		created := &openapi.Response{Description: "Created", Content: ok.Content}
		if d := strings.TrimSpace(ok.Description); d != "" && d != defaultOKDescription {
			created.Description = d
		}
		op.Responses.Set("201", created)
	}
	if created := op.Response("201"); method == model.MethodPost && created != nil {
		ensureLocationHeader(created)
	}
}

func ensureLocationHeader(r *openapi.Response) {
	if r.Headers == nil {
		r.Headers = openapi.NewOrderedMap[*openapi.Header]()
	}
	if _, ok := r.Headers.Get("Location"); ok {
		return
	}
	r.Headers.Set("Location", &openapi.Header{
		Description: "URI of the created resource.",
		Schema:      &openapi.Schema{Type: "string", Format: "uri"},
	})
}

// normalizeCurlExamples unescapes sample calls and lays single-line ones out
// one option per line. Blank samples are dropped.
func normalizeCurlExamples(op *openapi.Operation) {
	raw, ok := op.Extension(requestExamplesKey)
	if !ok {
		return
	}
	list, ok := raw.([]string)
	if !ok {
		return
	}
	var out []string
	for _, c := range list {
		if n := normalizeCurl(c); n != "" {
			out = append(out, n)
		}
	}
	if len(out) > 0 {
		op.SetExtension(requestExamplesKey, out)
	}
}

func normalizeCurl(s string) string {
	t := strings.TrimSpace(strings.NewReplacer(`\n`, "\n", `\"`, `"`).Replace(s))
	if t == "" {
		return ""
	}
	if t != "curl" && !strings.HasPrefix(t, "curl ") {
		t = "curl " + t
	}
	if strings.Contains(t, "\n") {
		return t
	}

	var parts []string
	var cur []string
	for _, tok := range strings.Fields(t) {
		if len(cur) > 0 && (curlBreaks[tok] || strings.HasPrefix(tok, "http") || strings.HasPrefix(tok, `"http`)) {
			parts = append(parts, strings.Join(cur, " "))
			cur = nil
		}
		cur = append(cur, tok)
	}
	parts = append(parts, strings.Join(cur, " "))
	return strings.Join(parts, " \\\n  ")
}
