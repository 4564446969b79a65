package model

import "strings"

// HTTPMethod is one of the five routed verbs the analyzer understands.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
)

// HTTPMethods lists the verbs in document order.
var HTTPMethods = []HTTPMethod{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

// ParseHTTPMethod maps a verb name (any case, optionally qualified as
// RequestMethod.POST) onto the closed set. Unknown names report false.
func ParseHTTPMethod(s string) (HTTPMethod, bool) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	switch strings.ToUpper(s) {
	case "GET":
		return MethodGet, true
	case "POST":
		return MethodPost, true
	case "PUT":
		return MethodPut, true
	case "DELETE":
		return MethodDelete, true
	case "PATCH":
		return MethodPatch, true
	}
	return "", false
}

// Lower returns the lowercase verb used as an OpenAPI path item key.
func (m HTTPMethod) Lower() string {
	return strings.ToLower(string(m))
}

// IsWrite reports whether the verb normally carries a request body.
func (m HTTPMethod) IsWrite() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// ParamLocation says where a handler argument is bound from.
type ParamLocation string

const (
	InPath   ParamLocation = "path"
	InQuery  ParamLocation = "query"
	InHeader ParamLocation = "header"
	InBody   ParamLocation = "body"
)

// Param is one handler argument exposed on the HTTP surface.
type Param struct {
	Name     string
	In       ParamLocation
	Type     string // lexical Java type, e.g. "List<String>"
	Required bool

	Description string
	// DescriptionFromDoc is true when Description came from a @param tag
	// rather than a canned phrase.
	DescriptionFromDoc bool
	DefaultValue       string
	HasDefault         bool
}

// Return describes the handler's normalized return value.
type Return struct {
	Type        string
	Description string
}

// Endpoint is one discovered HTTP operation. Values are not mutated after
// extraction.
type Endpoint struct {
	Method      HTTPMethod
	Path        string
	OperationID string
	Summary     string
	Description string
	Params      []Param
	Returns     Return

	Controller string // simple class name
	Handler    string // method name
	File       string
	Notes      []string
	Todos      []string
}

// Signature is the "<METHOD> <path>" form sent to the description service.
func (e *Endpoint) Signature() string {
	return string(e.Method) + " " + e.Path
}

// BodyParam returns the request-body argument, or nil.
func (e *Endpoint) BodyParam() *Param {
	for i := range e.Params {
		if e.Params[i].In == InBody {
			return &e.Params[i]
		}
	}
	return nil
}

// Key identifies the (method, path) pair.
func (e *Endpoint) Key() string {
	return e.Signature()
}
