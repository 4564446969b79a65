package model

// SchemaKind tags the variant held by a SchemaNode.
type SchemaKind string

const (
	KindString    SchemaKind = "string"
	KindInteger   SchemaKind = "integer"
	KindNumber    SchemaKind = "number"
	KindBoolean   SchemaKind = "boolean"
	KindObject    SchemaKind = "object"
	KindArray     SchemaKind = "array"
	KindMap       SchemaKind = "map"
	KindReference SchemaKind = "reference"
	KindEnum      SchemaKind = "enum"
)

// Property is a named member of an object schema.
type Property struct {
	Name   string
	Schema *SchemaNode
}

// SchemaNode is the data-model schema produced by the type mapper and the
// DTO collector.
type SchemaNode struct {
	Kind        SchemaKind
	Format      string
	Description string

	Properties []Property  // object
	Required   []string    // object
	Items      *SchemaNode // array
	Values     *SchemaNode // map
	Ref        string      // reference: simple type name
	Enum       []string    // enum
	Name       string      // synthesized name, e.g. Page«User»
}

func Scalar(kind SchemaKind, format string) *SchemaNode {
	return &SchemaNode{Kind: kind, Format: format}
}

func Object(props ...Property) *SchemaNode {
	return &SchemaNode{Kind: KindObject, Properties: props}
}

func ArrayOf(items *SchemaNode) *SchemaNode {
	return &SchemaNode{Kind: KindArray, Items: items}
}

func MapOf(values *SchemaNode) *SchemaNode {
	return &SchemaNode{Kind: KindMap, Values: values}
}

func Reference(name string) *SchemaNode {
	return &SchemaNode{Kind: KindReference, Ref: name}
}

func EnumOf(members ...string) *SchemaNode {
	return &SchemaNode{Kind: KindEnum, Enum: members}
}

// Property returns the named property schema, or nil.
func (n *SchemaNode) Property(name string) *SchemaNode {
	if n == nil {
		return nil
	}
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// IsEmptyObject reports an object node with no declared properties.
func (n *SchemaNode) IsEmptyObject() bool {
	return n != nil && n.Kind == KindObject && len(n.Properties) == 0
}

// SchemaSet is an insertion-ordered name to schema map.
type SchemaSet struct {
	names []string
	nodes map[string]*SchemaNode
}

func NewSchemaSet() *SchemaSet {
	return &SchemaSet{nodes: make(map[string]*SchemaNode)}
}

// Add stores node under name unless the name is taken. It reports whether
// the node was stored.
func (s *SchemaSet) Add(name string, node *SchemaNode) bool {
	if _, ok := s.nodes[name]; ok {
		return false
	}
	s.names = append(s.names, name)
	s.nodes[name] = node
	return true
}

func (s *SchemaSet) Get(name string) (*SchemaNode, bool) {
	if s == nil {
		return nil, false
	}
	n, ok := s.nodes[name]
	return n, ok
}

// Names returns schema names in insertion order.
func (s *SchemaSet) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

func (s *SchemaSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}
