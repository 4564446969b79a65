package openapi

import (
	"spec-synth/internal/model"
)

// RefPrefix is where named schemas live.
const RefPrefix = "#/components/schemas/"

// FromNode converts a data-model schema node. References become $ref
// pointers into components; maps become objects with additionalProperties.
func FromNode(n *model.SchemaNode) *Schema {
	if n == nil {
		return ObjectSchema()
	}
	switch n.Kind {
	case model.KindReference:
		return &Schema{Ref: RefPrefix + n.Ref}
	case model.KindArray:
		return &Schema{Type: "array", Items: FromNode(n.Items), Description: n.Description}
	case model.KindMap:
		return &Schema{Type: "object", AdditionalProperties: FromNode(n.Values), Description: n.Description}
	case model.KindEnum:
		return &Schema{
			Type:        "string",
			Enum:        append([]string(nil), n.Enum...),
			Description: n.Description,
		}
	case model.KindObject:
		s := &Schema{Type: "object", Title: n.Name, Description: n.Description}
		if len(n.Properties) > 0 {
			s.Properties = NewOrderedMap[*Schema]()
			for _, p := range n.Properties {
				s.Properties.Set(p.Name, FromNode(p.Schema))
			}
		}
		if len(n.Required) > 0 {
			s.Required = append([]string(nil), n.Required...)
		}
		return s
	}
	return &Schema{Type: string(n.Kind), Format: n.Format, Description: n.Description}
}

// RefName returns the component name a $ref points at, or "".
func (s *Schema) RefName() string {
	if s == nil || len(s.Ref) <= len(RefPrefix) || s.Ref[:len(RefPrefix)] != RefPrefix {
		return ""
	}
	return s.Ref[len(RefPrefix):]
}
