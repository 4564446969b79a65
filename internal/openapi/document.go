// Package openapi holds the generated OpenAPI 3.0 document. Every map in
// the model keeps insertion order so the serialized form follows discovery
// order instead of Go map order.
package openapi

import (
	"spec-synth/internal/model"
)

// Version is the OpenAPI version written to generated documents.
const Version = "3.0.3"

// ContentJSON is the only media type the assembler emits.
const ContentJSON = "application/json"

// Document is the root of a generated specification.
type Document struct {
	OpenAPI    string
	Info       Info
	Paths      *OrderedMap[*PathItem]
	Components Components
}

// Info carries the document title, version and vendor extensions.
type Info struct {
	Title       string
	Version     string
	Description string
	Extensions
}

// Components holds reusable schemas and security schemes.
type Components struct {
	Schemas         *OrderedMap[*Schema]
	SecuritySchemes *OrderedMap[*SecurityScheme]
}

// PathItem groups the operations registered under one path template.
type PathItem struct {
	ops map[model.HTTPMethod]*Operation
}

// MethodOperation pairs an operation with its verb.
type MethodOperation struct {
	Method    model.HTTPMethod
	Operation *Operation
}

// Operation is one verb on one path.
type Operation struct {
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Parameters  []*Parameter
	RequestBody *RequestBody
	Responses   *OrderedMap[*Response]
	// Security is nil when the document-wide default applies. An empty,
	// non-nil slice marks the operation as public.
	Security []SecurityRequirement
	Extensions
}

// SecurityRequirement maps a scheme name to its scopes.
type SecurityRequirement map[string][]string

// Parameter is a non-body operation input.
type Parameter struct {
	Name        string
	In          string
	Description string
	Required    bool
	Schema      *Schema
	Example     any
}

// RequestBody describes the operation payload.
type RequestBody struct {
	Description string
	Required    bool
	Content     *OrderedMap[*MediaType]
}

// MediaType binds a schema (and optional example) to a content type.
type MediaType struct {
	Schema  *Schema
	Example any
}

// Response is one status entry of an operation.
type Response struct {
	Description string
	Headers     *OrderedMap[*Header]
	Content     *OrderedMap[*MediaType]
}

// Header is a response header.
type Header struct {
	Description string
	Schema      *Schema
}

// Schema is the subset of the OpenAPI schema object the generator needs.
type Schema struct {
	Ref                  string
	Title                string
	Type                 string
	Format               string
	Description          string
	Properties           *OrderedMap[*Schema]
	Required             []string
	Items                *Schema
	AdditionalProperties *Schema
	Enum                 []string
	Default              any
	Example              any
}

// SecurityScheme is a components.securitySchemes entry.
type SecurityScheme struct {
	Type         string
	Scheme       string
	BearerFormat string
	In           string
	Name         string
	Description  string
}

// Extensions stores x- prefixed vendor keys in insertion order.
type Extensions struct {
	ext *OrderedMap[any]
}

// SetExtension stores value under key. The key must carry the x- prefix.
func (e *Extensions) SetExtension(key string, value any) {
	if e.ext == nil {
		e.ext = NewOrderedMap[any]()
	}
	e.ext.Set(key, value)
}

// Extension returns the value stored under key.
func (e *Extensions) Extension(key string) (any, bool) {
	return e.ext.Get(key)
}

// New returns an empty document.
func New(title, version string) *Document {
	return &Document{
		OpenAPI: Version,
		Info:    Info{Title: title, Version: version},
		Paths:   NewOrderedMap[*PathItem](),
		Components: Components{
			Schemas:         NewOrderedMap[*Schema](),
			SecuritySchemes: NewOrderedMap[*SecurityScheme](),
		},
	}
}

// PathItem returns the item for path, creating it on first use. Creation
// order defines the serialized path order.
func (d *Document) PathItem(path string) *PathItem {
	if item, ok := d.Paths.Get(path); ok {
		return item
	}
	item := &PathItem{}
	d.Paths.Set(path, item)
	return item
}

// Operation looks up an operation by verb and path.
func (d *Document) Operation(method model.HTTPMethod, path string) *Operation {
	item, ok := d.Paths.Get(path)
	if !ok {
		return nil
	}
	return item.Get(method)
}

// OperationCount returns the number of operations across all paths.
func (d *Document) OperationCount() int {
	n := 0
	for _, p := range d.Paths.Keys() {
		item, _ := d.Paths.Get(p)
		n += len(item.ops)
	}
	return n
}

// Get returns the operation registered for method, or nil.
func (p *PathItem) Get(method model.HTTPMethod) *Operation {
	if p == nil {
		return nil
	}
	return p.ops[method]
}

// Set registers op under method, replacing any previous operation.
func (p *PathItem) Set(method model.HTTPMethod, op *Operation) {
	if p.ops == nil {
		p.ops = make(map[model.HTTPMethod]*Operation)
	}
	p.ops[method] = op
}

// Operations returns the registered operations in GET, POST, PUT, DELETE,
// PATCH order.
func (p *PathItem) Operations() []MethodOperation {
	if p == nil {
		return nil
	}
	out := make([]MethodOperation, 0, len(p.ops))
	for _, m := range model.HTTPMethods {
		if op, ok := p.ops[m]; ok {
			out = append(out, MethodOperation{Method: m, Operation: op})
		}
	}
	return out
}

// JSONContent returns a content map holding one application/json entry.
func JSONContent(s *Schema) *OrderedMap[*MediaType] {
	c := NewOrderedMap[*MediaType]()
	c.Set(ContentJSON, &MediaType{Schema: s})
	return c
}

// Response returns the response stored under status.
func (op *Operation) Response(status string) *Response {
	r, _ := op.Responses.Get(status)
	return r
}

// Parameter returns the first parameter named name in location in.
func (op *Operation) Parameter(name, in string) *Parameter {
	for _, p := range op.Parameters {
		if p.Name == name && p.In == in {
			return p
		}
	}
	return nil
}

// AddWarning appends a message to the x-warnings extension.
func (op *Operation) AddWarning(msg string) {
	var warns []string
	if v, ok := op.Extension("x-warnings"); ok {
		if existing, ok := v.([]string); ok {
			warns = append(warns, existing...)
		}
	}
	op.SetExtension("x-warnings", append(warns, msg))
}

// JSONBody returns the application/json media type of the request body.
func (op *Operation) JSONBody() *MediaType {
	if op.RequestBody == nil {
		return nil
	}
	mt, _ := op.RequestBody.Content.Get(ContentJSON)
	return mt
}

// IsUntypedObject reports a bare "type: object" schema with no shape and no
// example.
func (s *Schema) IsUntypedObject() bool {
	return s != nil && s.Ref == "" && s.Type == "object" &&
		s.Properties.Len() == 0 && s.AdditionalProperties == nil && s.Example == nil && s.Default == nil
}

// ObjectSchema returns a generic object schema.
func ObjectSchema() *Schema {
	return &Schema{Type: "object"}
}
