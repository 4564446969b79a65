package openapi

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"spec-synth/internal/model"
)

func sampleDocument() *Document {
	d := New("Shop", "1.0.0")
	d.Info.SetExtension("x-detail-level", "medium")

	users := d.PathItem("/users")
	users.Set(model.MethodPost, &Operation{
		OperationID: "UserController_create",
		Summary:     "Create a user.",
		RequestBody: &RequestBody{Required: true, Content: JSONContent(ObjectSchema())},
		Responses:   responses("200", &Response{Description: "OK", Content: JSONContent(ObjectSchema())}),
	})
	users.Set(model.MethodGet, &Operation{
		OperationID: "UserController_list",
		Parameters: []*Parameter{
			{Name: "page", In: "query", Schema: &Schema{Type: "integer", Format: "int32"}},
		},
		Responses: responses("200", &Response{Description: "OK"}),
		Security:  []SecurityRequirement{},
	})

	orders := d.PathItem("/orders/{id}")
	orders.Set(model.MethodDelete, &Operation{
		OperationID: "OrderController_delete",
		Parameters:  []*Parameter{{Name: "id", In: "path", Required: true, Schema: &Schema{Type: "integer", Format: "int64"}}},
		Responses:   responses("200", &Response{Description: "OK"}),
		Security:    []SecurityRequirement{{"bearerAuth": nil}},
	})

	d.Components.Schemas.Set("UserDto", FromNode(model.Object(
		model.Property{Name: "name", Schema: model.Scalar(model.KindString, "")},
	)))
	d.Components.SecuritySchemes.Set("bearerAuth", &SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: "JWT"})
	return d
}

func responses(status string, r *Response) *OrderedMap[*Response] {
	m := NewOrderedMap[*Response]()
	m.Set(status, r)
	return m
}

func mappingKeys(t *testing.T, n *yaml.Node) []string {
	t.Helper()
	require.Equal(t, yaml.MappingNode, n.Kind)
	var keys []string
	for i := 0; i < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

func child(t *testing.T, n *yaml.Node, key string) *yaml.Node {
	t.Helper()
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	t.Fatalf("key %q not found", key)
	return nil
}

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("c", 3)
	m.Set("b", 4)

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	m.Delete("a")
	m.Delete("missing")
	assert.Equal(t, []string{"b", "c"}, m.Keys())
	assert.Equal(t, 2, m.Len())

	var nilMap *OrderedMap[int]
	assert.Zero(t, nilMap.Len())
	assert.Nil(t, nilMap.Keys())
}

func TestYAMLKeepsDiscoveryAndMethodOrder(t *testing.T) {
	out, err := sampleDocument().YAML()
	require.NoError(t, err)

	var root yaml.Node
	require.NoError(t, yaml.Unmarshal(out, &root))
	doc := root.Content[0]

	assert.Equal(t, []string{"openapi", "info", "paths", "components"}, mappingKeys(t, doc))
	paths := child(t, doc, "paths")
	assert.Equal(t, []string{"/users", "/orders/{id}"}, mappingKeys(t, paths))
	assert.Equal(t, []string{"get", "post"}, mappingKeys(t, child(t, paths, "/users")))

	assert.Equal(t, "3.0.3", child(t, doc, "openapi").Value)
	assert.Equal(t, "medium", child(t, child(t, doc, "info"), "x-detail-level").Value)
}

func TestJSONAndYAMLAreEquivalent(t *testing.T) {
	d := sampleDocument()

	fromMap, err := d.ToMap()
	require.NoError(t, err)

	yml, err := d.YAML()
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(yml, &fromYAML))

	// Normalize YAML scalars through JSON so numbers compare equal.
	raw, err := json.Marshal(fromYAML)
	require.NoError(t, err)
	var normalized map[string]any
	require.NoError(t, json.Unmarshal(raw, &normalized))

	assert.Equal(t, fromMap, normalized)
}

func TestJSONShape(t *testing.T) {
	raw, err := sampleDocument().JSON()
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	paths := m["paths"].(map[string]any)
	get := paths["/users"].(map[string]any)["get"].(map[string]any)
	assert.Equal(t, []any{}, get["security"], "public operations carry an empty security list")

	del := paths["/orders/{id}"].(map[string]any)["delete"].(map[string]any)
	assert.Equal(t, []any{map[string]any{"bearerAuth": []any{}}}, del["security"])

	post := paths["/users"].(map[string]any)["post"].(map[string]any)
	_, hasSecurity := post["security"]
	assert.False(t, hasSecurity)
	assert.Equal(t, true, post["requestBody"].(map[string]any)["required"])

	// Keys keep insertion order in the raw text.
	text := string(raw)
	assert.Less(t, strings.Index(text, `"/users"`), strings.Index(text, `"/orders/{id}"`))
	assert.Less(t, strings.Index(text, `"openapi"`), strings.Index(text, `"info"`))
}

func TestFromNode(t *testing.T) {
	tests := []struct {
		name string
		node *model.SchemaNode
		want *Schema
	}{
		{"nil", nil, &Schema{Type: "object"}},
		{"scalar", model.Scalar(model.KindInteger, "int64"), &Schema{Type: "integer", Format: "int64"}},
		{"reference", model.Reference("UserDto"), &Schema{Ref: "#/components/schemas/UserDto"}},
		{"array", model.ArrayOf(model.Scalar(model.KindString, "")), &Schema{Type: "array", Items: &Schema{Type: "string"}}},
		{"map", model.MapOf(model.Scalar(model.KindInteger, "int32")), &Schema{Type: "object", AdditionalProperties: &Schema{Type: "integer", Format: "int32"}}},
		{"enum", model.EnumOf("NEW", "PAID"), &Schema{Type: "string", Enum: []string{"NEW", "PAID"}}},
		{"empty object", model.Object(), &Schema{Type: "object"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromNode(tt.node))
		})
	}

	obj := model.Object(
		model.Property{Name: "id", Schema: model.Scalar(model.KindInteger, "int64")},
		model.Property{Name: "owner", Schema: model.Reference("UserDto")},
	)
	obj.Required = []string{"id"}
	obj.Name = "Page«Order»"
	s := FromNode(obj)
	assert.Equal(t, []string{"id", "owner"}, s.Properties.Keys())
	assert.Equal(t, []string{"id"}, s.Required)
	assert.Equal(t, "Page«Order»", s.Title)
	owner, _ := s.Properties.Get("owner")
	assert.Equal(t, "UserDto", owner.RefName())
}

func TestIsUntypedObject(t *testing.T) {
	assert.True(t, ObjectSchema().IsUntypedObject())
	assert.False(t, (&Schema{Type: "object", Example: map[string]any{"id": 1}}).IsUntypedObject())
	assert.False(t, (&Schema{Ref: RefPrefix + "X"}).IsUntypedObject())
	assert.False(t, FromNode(model.MapOf(model.Object())).IsUntypedObject())
	var nilSchema *Schema
	assert.False(t, nilSchema.IsUntypedObject())
}

func TestAddWarningAppends(t *testing.T) {
	op := &Operation{}
	op.AddWarning("first")
	op.AddWarning("second")
	v, ok := op.Extension("x-warnings")
	require.True(t, ok)
	assert.Equal(t, []string{"first", "second"}, v)
}

func TestGeneratedDocumentValidates(t *testing.T) {
	assert.Empty(t, sampleDocument().Validate(context.Background()))
}

func TestLoadRejectsMalformedInput(t *testing.T) {
	doc, msgs := Load(context.Background(), []byte("openapi: [unterminated"))
	assert.Nil(t, doc)
	require.NotEmpty(t, msgs)

	doc, msgs = Load(context.Background(), []byte(`{"openapi":"3.0.3","info":{"title":"x"},"paths":{}}`))
	assert.Nil(t, doc)
	require.NotEmpty(t, msgs, "missing info.version must fail validation")
}

func TestJSONToYAML(t *testing.T) {
	out, err := JSONToYAML([]byte(`{"openapi":"3.0.3","paths":{"/b":{},"/a":{}},"responses":{"200":{"description":"OK"}}}`))
	require.NoError(t, err)

	text := string(out)
	assert.NotContains(t, text, "{\"")
	assert.Less(t, strings.Index(text, "/b"), strings.Index(text, "/a"))

	var m map[string]any
	require.NoError(t, yaml.Unmarshal(out, &m))
	resp := m["responses"].(map[string]any)
	_, ok := resp["200"]
	assert.True(t, ok, "status keys stay strings")
}
