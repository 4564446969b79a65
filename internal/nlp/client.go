// Package nlp talks to the external description generator.
package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"spec-synth/internal/logger"
	"spec-synth/internal/model"
)

// ErrEmptyResponse is returned when the generator answers without any
// usable text.
var ErrEmptyResponse = errors.New("nlp: empty response")

// KindEndpoint is the only symbol kind sent today.
const KindEndpoint = "endpoint"

// Param is a parameter as described to the generator.
type Param struct {
	Name        string `json:"name"`
	In          string `json:"in,omitempty"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Returns is the return value as described to the generator.
type Returns struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Request is one describe call.
type Request struct {
	Symbol    string   `json:"symbol"`
	Kind      string   `json:"kind"`
	Signature string   `json:"signature"`
	Comment   string   `json:"comment"`
	Params    []Param  `json:"params"`
	Returns   Returns  `json:"returns"`
	Notes     []string `json:"notes,omitempty"`
	Todos     []string `json:"todos,omitempty"`
}

// ParamDoc is a generated parameter description.
type ParamDoc struct {
	Name string `json:"name"`
	Doc  string `json:"doc"`
}

// Response holds the generated text. Every field is optional.
type Response struct {
	ShortDescription  string     `json:"shortDescription,omitempty"`
	MediumDescription string     `json:"mediumDescription,omitempty"`
	LongDescription   string     `json:"longDescription,omitempty"`
	ParamDocs         []ParamDoc `json:"paramDocs,omitempty"`
	ReturnDoc         string     `json:"returnDoc,omitempty"`
	Notes             []string   `json:"notes,omitempty"`
	Examples          *Examples  `json:"examples,omitempty"`
}

// Examples are generated sample calls and a sample answer.
type Examples struct {
	Requests []RequestExample `json:"requests,omitempty"`
	Response *ResponseExample `json:"response,omitempty"`
}

// RequestExample is one sample call as a curl command line.
type RequestExample struct {
	Curl string `json:"curl"`
}

// UnmarshalJSON accepts both {"curl": "..."} and a bare string.
func (r *RequestExample) UnmarshalJSON(data []byte) error {
	var curl string
	if err := json.Unmarshal(data, &curl); err == nil {
		r.Curl = curl
		return nil
	}
	type plain RequestExample
	return json.Unmarshal(data, (*plain)(r))
}

// ResponseExample is a sample answer. A zero Status means 200.
type ResponseExample struct {
	Status int `json:"status,omitempty"`
	Body   any `json:"body,omitempty"`
}

// Curls returns the non-blank sample calls.
func (e *Examples) Curls() []string {
	if e == nil {
		return nil
	}
	var out []string
	for _, r := range e.Requests {
		if c := strings.TrimSpace(r.Curl); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// StatusCode returns the sample answer's status, defaulting to 200.
func (r *ResponseExample) StatusCode() int {
	if r == nil || r.Status == 0 {
		return 200
	}
	return r.Status
}

// IsEmpty reports a response carrying no usable text.
func (r *Response) IsEmpty() bool {
	if r == nil {
		return true
	}
	if strings.TrimSpace(r.ShortDescription+r.MediumDescription+r.LongDescription+r.ReturnDoc) != "" {
		return false
	}
	for _, p := range r.ParamDocs {
		if strings.TrimSpace(p.Doc) != "" {
			return false
		}
	}
	if len(r.Examples.Curls()) > 0 {
		return false
	}
	return r.Examples == nil || r.Examples.Response == nil || r.Examples.Response.Body == nil
}

// ParamDoc returns the generated description for a parameter name.
func (r *Response) ParamDoc(name string) string {
	if r == nil {
		return ""
	}
	for _, p := range r.ParamDocs {
		if p.Name == name {
			return strings.TrimSpace(p.Doc)
		}
	}
	return ""
}

// Describer produces descriptions for one symbol per call.
type Describer interface {
	Describe(ctx context.Context, level model.DetailLevel, req Request) (*Response, error)
}

// Client is the HTTP implementation of Describer. It POSTs JSON to
// <base>/describe?level=<level>. Deadlines come from the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// NewClient returns a client for the generator at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Describe performs exactly one round trip.
func (c *Client) Describe(ctx context.Context, level model.DetailLevel, req Request) (*Response, error) {
	if req.Kind == "" {
		req.Kind = KindEndpoint
	}
	if req.Params == nil {
		req.Params = []Param{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	endpoint := c.baseURL + "/describe?level=" + url.QueryEscape(string(level))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("describe %s: status %d", req.Symbol, resp.StatusCode)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyResponse
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if out.IsEmpty() {
		return nil, ErrEmptyResponse
	}
	logger.Debug("[NLP] %s described (%d param docs)", req.Symbol, len(out.ParamDocs))
	return &out, nil
}
