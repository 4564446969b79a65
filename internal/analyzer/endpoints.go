package analyzer

import (
	"strings"

	"spec-synth/internal/config"
	"spec-synth/internal/javaparser"
	"spec-synth/internal/logger"
	"spec-synth/internal/model"
	"spec-synth/internal/schema"
)

var verbMappings = map[string]model.HTTPMethod{
	"GetMapping":    model.MethodGet,
	"PostMapping":   model.MethodPost,
	"PutMapping":    model.MethodPut,
	"DeleteMapping": model.MethodDelete,
	"PatchMapping":  model.MethodPatch,
}

// verbMappingOrder fixes which annotation wins when a method carries more
// than one specific mapping.
var verbMappingOrder = []string{"GetMapping", "PostMapping", "PutMapping", "DeleteMapping", "PatchMapping"}

// returnWrappers are peeled from handler return types.
var returnWrappers = map[string]bool{
	"ResponseEntity":    true,
	"HttpEntity":        true,
	"Optional":          true,
	"CompletableFuture": true,
	"Mono":              true,
	"Flux":              true,
	"Callable":          true,
	"DeferredResult":    true,
}

// injectedTypes are handler arguments supplied by the framework rather
// than by the HTTP client.
var injectedTypes = map[string]bool{
	"HttpServletRequest":   true,
	"HttpServletResponse":  true,
	"HttpSession":          true,
	"ServerHttpRequest":    true,
	"ServerHttpResponse":   true,
	"ServerWebExchange":    true,
	"WebRequest":           true,
	"Principal":            true,
	"Authentication":       true,
	"BindingResult":        true,
	"Errors":               true,
	"Model":                true,
	"ModelMap":             true,
	"Locale":               true,
	"UriComponentsBuilder": true,
}

// EndpointResult is the outcome of one extraction pass. Endpoints are in
// discovery order; a tree yielding none is reported through Empty rather
// than as an error.
type EndpointResult struct {
	Endpoints   []model.Endpoint
	Diagnostics logger.Diagnostics
}

// Empty reports the zero-endpoint terminal condition.
func (r *EndpointResult) Empty() bool {
	return r == nil || len(r.Endpoints) == 0
}

// EndpointExtractor turns routing-annotated controller classes into
// endpoint records.
type EndpointExtractor struct {
	heuristics config.Heuristics
}

// NewEndpointExtractor returns an extractor using the given tables for
// canned parameter docs.
func NewEndpointExtractor(h config.Heuristics) *EndpointExtractor {
	return &EndpointExtractor{heuristics: h}
}

// ExtractEndpoints parses root and extracts its endpoints.
func ExtractEndpoints(root string, opts Options, h config.Heuristics) (*EndpointResult, error) {
	tree, err := ParseTree(root, opts)
	if err != nil {
		return nil, err
	}
	res := NewEndpointExtractor(h).Extract(tree.Units)
	diags := append(logger.Diagnostics{}, tree.Diagnostics...)
	diags.Append(res.Diagnostics)
	res.Diagnostics = diags
	return res, nil
}

// Extract walks parsed units in order and returns every HTTP-exposed method
// of every controller class.
func (x *EndpointExtractor) Extract(units []*javaparser.CompilationUnit) *EndpointResult {
	res := &EndpointResult{}
	for _, cu := range units {
		for _, td := range cu.AllTypes() {
			if !isController(td) {
				continue
			}
			base := ""
			if rm := td.Annotation("RequestMapping"); rm != nil {
				base = mappingPath(rm)
			}
			for i := range td.Methods {
				eps := x.extractMethod(cu.Path, td, &td.Methods[i], base, &res.Diagnostics)
				res.Endpoints = append(res.Endpoints, eps...)
			}
		}
	}
	return res
}

func isController(td *javaparser.TypeDecl) bool {
	if td.IsInterface() {
		return false
	}
	return td.HasAnnotation("RestController", "Controller")
}

func (x *EndpointExtractor) extractMethod(file string, td *javaparser.TypeDecl, m *javaparser.Method, base string, diags *logger.Diagnostics) []model.Endpoint {
	if m.IsConstructor() {
		return nil
	}
	methods, sub, ok := routing(m)
	if !ok {
		return nil
	}
	if len(methods) == 0 {
		diags.Add(logger.LevelDebug, file, "%s.%s: no request method declared, defaulting to GET", td.Name, m.Name)
		methods = []model.HTTPMethod{model.MethodGet}
	}

	path := JoinPaths(base, sub)
	var desc string
	if m.Javadoc != nil {
		desc = m.Javadoc.Description
	} else {
		desc = leadingDescription(m.Leading)
	}

	var noteSrc []javaparser.Comment
	if m.Javadoc != nil {
		noteSrc = append(noteSrc, m.Leading...)
	}
	noteSrc = append(noteSrc, m.BodyComment...)
	notes, todos := bodyNotes(noteSrc)

	params := x.params(file, td, m, diags)
	ret := returnOf(m)

	out := make([]model.Endpoint, 0, len(methods))
	for _, verb := range methods {
		out = append(out, model.Endpoint{
			Method:      verb,
			Path:        path,
			OperationID: td.Name + "_" + m.Name,
			Description: desc,
			Params:      append([]model.Param(nil), params...),
			Returns:     ret,
			Controller:  td.Name,
			Handler:     m.Name,
			File:        file,
			Notes:       notes,
			Todos:       todos,
		})
	}
	return out
}

// routing reports the verbs and sub-path declared on a handler method.
// ok is false when the method carries no mapping annotation at all.
func routing(m *javaparser.Method) (methods []model.HTTPMethod, sub string, ok bool) {
	for _, name := range verbMappingOrder {
		if a := m.Annotation(name); a != nil {
			return []model.HTTPMethod{verbMappings[name]}, mappingPath(a), true
		}
	}
	a := m.Annotation("RequestMapping")
	if a == nil {
		return nil, "", false
	}
	if v, found := a.Attr("method"); found {
		seen := make(map[model.HTTPMethod]bool)
		for _, sym := range v.Symbols() {
			if verb, ok := model.ParseHTTPMethod(sym); ok && !seen[verb] {
				seen[verb] = true
				methods = append(methods, verb)
			}
		}
	}
	return methods, mappingPath(a), true
}

// mappingPath returns the first literal of the value or path element.
func mappingPath(a *javaparser.Annotation) string {
	s, _ := a.StringAttr("value", "path")
	return s
}

func (x *EndpointExtractor) params(file string, td *javaparser.TypeDecl, m *javaparser.Method, diags *logger.Diagnostics) []model.Param {
	var out []model.Param
	for _, p := range m.Params {
		simple := schema.SimpleName(p.Type)
		bound := p.HasAnnotation("PathVariable", "RequestParam", "RequestBody", "RequestHeader")
		if !bound && injectedTypes[simple] {
			diags.Add(logger.LevelDebug, file, "%s.%s: skipping framework argument %s", td.Name, m.Name, p.Name)
			continue
		}
		if !bound && simple == "Pageable" {
			out = append(out, x.pageableParams(m)...)
			continue
		}

		param := model.Param{Name: p.Name, In: model.InQuery, Type: p.Type}
		switch {
		case p.HasAnnotation("PathVariable"):
			param.In = model.InPath
			param.Required = true
			param.Name = boundName(p.Annotation("PathVariable"), p.Name)
		case p.HasAnnotation("RequestBody"):
			param.In = model.InBody
			param.Required = true
		case p.HasAnnotation("RequestParam"):
			applyValueBinding(&param, p.Annotation("RequestParam"))
		case p.HasAnnotation("RequestHeader"):
			param.In = model.InHeader
			applyValueBinding(&param, p.Annotation("RequestHeader"))
		default:
			param.Required = false
		}

		x.describeParam(&param, m.Javadoc, p.Name)
		out = append(out, param)
	}
	return out
}

// applyValueBinding handles the query and header bindings: required
// defaults to true and a declared default value makes it optional.
func applyValueBinding(param *model.Param, a *javaparser.Annotation) {
	param.Name = boundName(a, param.Name)
	param.Required = true
	if req, ok := a.Bool("required"); ok {
		param.Required = req
	}
	if def, ok := a.StringAttr("defaultValue"); ok {
		param.DefaultValue = def
		param.HasDefault = true
		param.Required = false
	}
}

func boundName(a *javaparser.Annotation, fallback string) string {
	if a == nil {
		return fallback
	}
	if n, ok := a.StringAttr("value", "name"); ok && strings.TrimSpace(n) != "" {
		return n
	}
	return fallback
}

func (x *EndpointExtractor) describeParam(param *model.Param, doc *javaparser.Javadoc, javaName string) {
	if text := doc.Param(javaName); text != "" {
		param.Description = text
		param.DescriptionFromDoc = true
		return
	}
	param.Description = x.heuristics.ParamDoc(param.Name)
}

func (x *EndpointExtractor) pageableParams(m *javaparser.Method) []model.Param {
	out := []model.Param{
		{Name: "page", In: model.InQuery, Type: "int"},
		{Name: "size", In: model.InQuery, Type: "int"},
		{Name: "sort", In: model.InQuery, Type: "String"},
	}
	for i := range out {
		x.describeParam(&out[i], m.Javadoc, out[i].Name)
	}
	return out
}

func returnOf(m *javaparser.Method) model.Return {
	core := NormalizeReturnType(m.ReturnType)
	desc := ""
	if m.Javadoc != nil {
		desc = m.Javadoc.Return
	}
	if strings.TrimSpace(desc) == "" {
		if core == "void" {
			desc = "No Content."
		} else {
			desc = "Returns the response."
		}
	}
	return model.Return{Type: core, Description: desc}
}

// NormalizeReturnType peels response and async wrappers from a handler
// return type. ResponseEntity<Void> and friends collapse to "void".
func NormalizeReturnType(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return "void"
	}
	for {
		args := schema.TypeArgs(t)
		if !returnWrappers[schema.SimpleName(t)] || len(args) != 1 {
			break
		}
		t = strings.TrimSpace(args[0])
	}
	switch t {
	case "void", "Void":
		return "void"
	case "?":
		return "Object"
	}
	return t
}
