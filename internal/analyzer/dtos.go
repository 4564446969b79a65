package analyzer

import (
	"spec-synth/internal/javaparser"
	"spec-synth/internal/logger"
	"spec-synth/internal/model"
	"spec-synth/internal/schema"
)

var requiredMarkers = []string{"NotNull", "NonNull", "NotBlank", "NotEmpty"}

// beanMarkers identify managed components, which hold collaborators rather
// than data.
var beanMarkers = []string{
	"Service", "Component", "Repository", "Configuration", "ControllerAdvice",
	"RestControllerAdvice", "SpringBootApplication", "EnableWebSecurity",
}

// SchemaResult is the collector output: named schemas in discovery order.
type SchemaResult struct {
	Schemas     *model.SchemaSet
	Diagnostics logger.Diagnostics
}

// CollectSchemas emits one named schema per data-holder declaration: every
// enum, every record and every non-controller class with at least one
// instance field. The first declaration of a simple name wins.
func CollectSchemas(units []*javaparser.CompilationUnit) *SchemaResult {
	res := &SchemaResult{Schemas: model.NewSchemaSet()}
	for _, cu := range units {
		for _, td := range cu.AllTypes() {
			node := dataSchema(td)
			if node == nil {
				continue
			}
			if !res.Schemas.Add(td.Name, node) {
				res.Diagnostics.Add(logger.LevelWarn, cu.Path, "duplicate type %s ignored, keeping first declaration", td.Name)
			}
		}
	}
	return res
}

// CollectSchemasFrom parses root and collects its schemas.
func CollectSchemasFrom(root string, opts Options) (*SchemaResult, error) {
	tree, err := ParseTree(root, opts)
	if err != nil {
		return nil, err
	}
	res := CollectSchemas(tree.Units)
	diags := append(logger.Diagnostics{}, tree.Diagnostics...)
	diags.Append(res.Diagnostics)
	res.Diagnostics = diags
	return res, nil
}

func dataSchema(td *javaparser.TypeDecl) *model.SchemaNode {
	var node *model.SchemaNode
	switch td.Kind {
	case javaparser.KindEnum:
		node = model.EnumOf(td.Constants...)
	case javaparser.KindRecord:
		node = model.Object()
		for i := range td.Components {
			c := &td.Components[i]
			addProperty(node, &c.Annotated, c.Name, schema.Map(c.Type))
		}
	case javaparser.KindClass:
		if isController(td) || td.HasAnnotation(beanMarkers...) {
			return nil
		}
		node = model.Object()
		for i := range td.Fields {
			f := &td.Fields[i]
			if f.Modifiers.Has("static") || f.Modifiers.Has("transient") {
				continue
			}
			mapped := schema.Map(f.Type)
			if f.Javadoc != nil && f.Javadoc.Description != "" {
				withDesc := *mapped
				withDesc.Description = f.Javadoc.Description
				mapped = &withDesc
			}
			for _, name := range f.Names {
				addProperty(node, &f.Annotated, name, mapped)
			}
		}
		if len(node.Properties) == 0 {
			return nil
		}
	default:
		return nil
	}
	if td.Javadoc != nil {
		node.Description = td.Javadoc.Description
	}
	return node
}

// addProperty appends one property. Variables declared together share the
// same mapped schema value.
func addProperty(node *model.SchemaNode, ann *javaparser.Annotated, name string, s *model.SchemaNode) {
	propName := name
	required := ann.HasAnnotation(requiredMarkers...)
	if jp := ann.Annotation("JsonProperty"); jp != nil {
		if n, ok := jp.StringAttr("value"); ok && n != "" {
			propName = n
		}
		if req, ok := jp.Bool("required"); ok && req {
			required = true
		}
	}

	node.Properties = append(node.Properties, model.Property{Name: propName, Schema: s})
	if required {
		node.Required = append(node.Required, propName)
	}
}
