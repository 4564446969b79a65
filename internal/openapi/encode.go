package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// kv is one key of an ordered mapping.
type kv struct {
	Key   string
	Value any
}

// ordered is a mapping whose keys serialize in slice order in both JSON and
// YAML.
type ordered []kv

type orderable interface {
	toOrdered() ordered
}

func (o *ordered) add(key string, v any) {
	*o = append(*o, kv{Key: key, Value: v})
}

func (o *ordered) str(key, v string) {
	if v != "" {
		o.add(key, v)
	}
}

func (o *ordered) extensions(e Extensions) {
	for _, k := range e.ext.Keys() {
		v, _ := e.ext.Get(k)
		o.add(k, v)
	}
}

// MarshalJSON writes the keys in slice order.
func (o ordered) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := jsonValue(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := jsonValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", e.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML returns a mapping node with keys in slice order.
func (o ordered) MarshalYAML() (interface{}, error) {
	return o.node()
}

func (o ordered) node() (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range o {
		var v yaml.Node
		if err := v.Encode(e.Value); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", e.Key, err)
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
		n.Content = append(n.Content, key, &v)
	}
	return n, nil
}

func jsonValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (m *OrderedMap[V]) toOrdered() ordered {
	out := make(ordered, 0, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		var val any = v
		if o, ok := val.(orderable); ok {
			val = o.toOrdered()
		}
		out.add(k, val)
	}
	return out
}

// MarshalJSON keeps insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	return m.toOrdered().MarshalJSON()
}

// MarshalYAML keeps insertion order.
func (m *OrderedMap[V]) MarshalYAML() (interface{}, error) {
	return m.toOrdered().node()
}

func (d *Document) toOrdered() ordered {
	var o ordered
	o.add("openapi", d.OpenAPI)
	o.add("info", d.Info.toOrdered())
	o.add("paths", d.Paths.toOrdered())
	if c := d.Components.toOrdered(); len(c) > 0 {
		o.add("components", c)
	}
	return o
}

func (i Info) toOrdered() ordered {
	var o ordered
	o.add("title", i.Title)
	o.add("version", i.Version)
	o.str("description", i.Description)
	o.extensions(i.Extensions)
	return o
}

func (c Components) toOrdered() ordered {
	var o ordered
	if c.Schemas.Len() > 0 {
		o.add("schemas", c.Schemas.toOrdered())
	}
	if c.SecuritySchemes.Len() > 0 {
		o.add("securitySchemes", c.SecuritySchemes.toOrdered())
	}
	return o
}

func (p *PathItem) toOrdered() ordered {
	var o ordered
	for _, mo := range p.Operations() {
		o.add(mo.Method.Lower(), mo.Operation.toOrdered())
	}
	return o
}

func (op *Operation) toOrdered() ordered {
	var o ordered
	if len(op.Tags) > 0 {
		o.add("tags", op.Tags)
	}
	o.str("summary", op.Summary)
	o.str("description", op.Description)
	o.str("operationId", op.OperationID)
	if len(op.Parameters) > 0 {
		params := make([]ordered, len(op.Parameters))
		for i, p := range op.Parameters {
			params[i] = p.toOrdered()
		}
		o.add("parameters", params)
	}
	if op.RequestBody != nil {
		o.add("requestBody", op.RequestBody.toOrdered())
	}
	o.add("responses", op.Responses.toOrdered())
	if op.Security != nil {
		reqs := make([]SecurityRequirement, len(op.Security))
		for i, r := range op.Security {
			reqs[i] = r.normalized()
		}
		o.add("security", reqs)
	}
	o.extensions(op.Extensions)
	return o
}

// normalized replaces nil scope lists so they serialize as [].
func (r SecurityRequirement) normalized() SecurityRequirement {
	out := make(SecurityRequirement, len(r))
	for k, v := range r {
		if v == nil {
			v = []string{}
		}
		out[k] = v
	}
	return out
}

func (p *Parameter) toOrdered() ordered {
	var o ordered
	o.add("name", p.Name)
	o.add("in", p.In)
	o.str("description", p.Description)
	o.add("required", p.Required)
	if p.Schema != nil {
		o.add("schema", p.Schema.toOrdered())
	}
	if p.Example != nil {
		o.add("example", p.Example)
	}
	return o
}

func (b *RequestBody) toOrdered() ordered {
	var o ordered
	o.str("description", b.Description)
	o.add("content", b.Content.toOrdered())
	o.add("required", b.Required)
	return o
}

func (m *MediaType) toOrdered() ordered {
	var o ordered
	if m.Schema != nil {
		o.add("schema", m.Schema.toOrdered())
	}
	if m.Example != nil {
		o.add("example", m.Example)
	}
	return o
}

func (r *Response) toOrdered() ordered {
	var o ordered
	o.add("description", r.Description)
	if r.Headers.Len() > 0 {
		o.add("headers", r.Headers.toOrdered())
	}
	if r.Content.Len() > 0 {
		o.add("content", r.Content.toOrdered())
	}
	return o
}

func (h *Header) toOrdered() ordered {
	var o ordered
	o.str("description", h.Description)
	if h.Schema != nil {
		o.add("schema", h.Schema.toOrdered())
	}
	return o
}

func (s *Schema) toOrdered() ordered {
	var o ordered
	if s.Ref != "" {
		o.add("$ref", s.Ref)
		return o
	}
	o.str("title", s.Title)
	o.str("type", s.Type)
	o.str("format", s.Format)
	o.str("description", s.Description)
	if s.Properties.Len() > 0 {
		o.add("properties", s.Properties.toOrdered())
	}
	if len(s.Required) > 0 {
		o.add("required", s.Required)
	}
	if s.Items != nil {
		o.add("items", s.Items.toOrdered())
	}
	if s.AdditionalProperties != nil {
		o.add("additionalProperties", s.AdditionalProperties.toOrdered())
	}
	if len(s.Enum) > 0 {
		o.add("enum", s.Enum)
	}
	if s.Default != nil {
		o.add("default", s.Default)
	}
	if s.Example != nil {
		o.add("example", s.Example)
	}
	return o
}

func (s *SecurityScheme) toOrdered() ordered {
	var o ordered
	o.add("type", s.Type)
	o.str("description", s.Description)
	o.str("scheme", s.Scheme)
	o.str("bearerFormat", s.BearerFormat)
	o.str("name", s.Name)
	o.str("in", s.In)
	return o
}

// MarshalJSON writes the document with ordered keys.
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.toOrdered().MarshalJSON()
}

// MarshalYAML returns the document as an ordered node tree.
func (d *Document) MarshalYAML() (interface{}, error) {
	return d.toOrdered().node()
}

// JSON returns the indented JSON form.
func (d *Document) JSON() ([]byte, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// YAML returns the YAML form with two-space indentation.
func (d *Document) YAML() ([]byte, error) {
	n, err := d.toOrdered().node()
	if err != nil {
		return nil, err
	}
	return encodeYAML(n)
}

// ToMap returns the structural form of the document. Key order is not
// preserved.
func (d *Document) ToMap() (map[string]any, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return out, nil
}

// JSONToYAML converts a JSON document to block-style YAML, keeping key
// order.
func JSONToYAML(data []byte) ([]byte, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	clearStyle(&n)
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return encodeYAML(n.Content[0])
	}
	return encodeYAML(&n)
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

func encodeYAML(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}
