// Package schema maps lexical Java type expressions onto schema nodes.
// Mapping is pure: the same input always yields a structurally equal node.
package schema

import (
	"strings"

	"spec-synth/internal/model"
)

// wrappers are peeled before any other rule applies.
var wrappers = map[string]bool{
	"ResponseEntity":    true,
	"HttpEntity":        true,
	"Optional":          true,
	"CompletableFuture": true,
	"CompletionStage":   true,
	"Future":            true,
	"Mono":              true,
	"Flux":              true,
	"Callable":          true,
	"DeferredResult":    true,
}

var collections = map[string]bool{
	"List":       true,
	"ArrayList":  true,
	"LinkedList": true,
	"Set":        true,
	"HashSet":    true,
	"TreeSet":    true,
	"SortedSet":  true,
	"Collection": true,
	"Iterable":   true,
	"Stream":     true,
}

var maps = map[string]bool{
	"Map":           true,
	"HashMap":       true,
	"LinkedHashMap": true,
	"TreeMap":       true,
	"SortedMap":     true,
}

var pages = map[string]bool{
	"Page":  true,
	"Slice": true,
}

type scalar struct {
	kind   model.SchemaKind
	format string
}

var scalars = map[string]scalar{
	"byte":           {model.KindInteger, "int32"},
	"short":          {model.KindInteger, "int32"},
	"int":            {model.KindInteger, "int32"},
	"long":           {model.KindInteger, "int64"},
	"float":          {model.KindNumber, "float"},
	"double":         {model.KindNumber, "double"},
	"boolean":        {model.KindBoolean, ""},
	"char":           {model.KindString, ""},
	"Byte":           {model.KindInteger, "int32"},
	"Short":          {model.KindInteger, "int32"},
	"Integer":        {model.KindInteger, "int32"},
	"Long":           {model.KindInteger, "int64"},
	"BigInteger":     {model.KindInteger, ""},
	"Float":          {model.KindNumber, "float"},
	"Double":         {model.KindNumber, "double"},
	"BigDecimal":     {model.KindNumber, ""},
	"Number":         {model.KindNumber, ""},
	"Boolean":        {model.KindBoolean, ""},
	"Character":      {model.KindString, ""},
	"String":         {model.KindString, ""},
	"CharSequence":   {model.KindString, ""},
	"UUID":           {model.KindString, "uuid"},
	"LocalDate":      {model.KindString, "date"},
	"LocalDateTime":  {model.KindString, "date-time"},
	"OffsetDateTime": {model.KindString, "date-time"},
	"ZonedDateTime":  {model.KindString, "date-time"},
	"Instant":        {model.KindString, "date-time"},
	"Date":           {model.KindString, "date-time"},
	"Timestamp":      {model.KindString, "date-time"},
	"LocalTime":      {model.KindString, "time"},
	"Duration":       {model.KindString, "duration"},
	"URI":            {model.KindString, "uri"},
	"URL":            {model.KindString, "uri"},
	"MultipartFile":  {model.KindString, "binary"},
	"byte[]":         {model.KindString, "byte"},
}

// untyped names map to a free-form object.
var untyped = map[string]bool{
	"Object":   true,
	"JsonNode": true,
	"?":        true,
	"void":     true,
	"Void":     true,
}

// Map returns the schema node for a type expression such as
// "ResponseEntity<List<UserDto>>" or "Map<String, Integer>".
func Map(typeExpr string) *model.SchemaNode {
	t := normalize(typeExpr)
	if t == "" {
		return model.Object()
	}

	if s, ok := scalars[t]; ok {
		return model.Scalar(s.kind, s.format)
	}

	if strings.HasSuffix(t, "[]") {
		return model.ArrayOf(Map(strings.TrimSuffix(t, "[]")))
	}

	raw := SimpleName(StripGenerics(t))
	args := TypeArgs(t)

	switch {
	case wrappers[raw] && len(args) == 1:
		return Map(args[0])
	case pages[raw] && len(args) == 1:
		return pageOf(args[0])
	case collections[raw]:
		return model.ArrayOf(Map(argOr(args, 0, "Object")))
	case maps[raw]:
		return model.MapOf(Map(argOr(args, 1, "Object")))
	}

	if s, ok := scalars[raw]; ok {
		return model.Scalar(s.kind, s.format)
	}
	if untyped[raw] || wrappers[raw] {
		return model.Object()
	}
	return model.Reference(raw)
}

func pageOf(inner string) *model.SchemaNode {
	content := Map(inner)
	node := model.Object(
		model.Property{Name: "content", Schema: model.ArrayOf(content)},
		model.Property{Name: "page", Schema: model.Scalar(model.KindInteger, "int32")},
		model.Property{Name: "size", Schema: model.Scalar(model.KindInteger, "int32")},
		model.Property{Name: "totalElements", Schema: model.Scalar(model.KindInteger, "int64")},
		model.Property{Name: "totalPages", Schema: model.Scalar(model.KindInteger, "int32")},
		model.Property{Name: "last", Schema: model.Scalar(model.KindBoolean, "")},
	)
	node.Name = "Page«" + SimpleName(StripGenerics(normalize(inner))) + "»"
	return node
}

func argOr(args []string, i int, def string) string {
	if i < len(args) && args[i] != "" {
		return args[i]
	}
	return def
}

// Resolve returns node unchanged unless it is a reference to a name that is
// not in known; such references degrade to an empty object. The second
// result reports whether a fallback happened.
func Resolve(node *model.SchemaNode, known *model.SchemaSet) (*model.SchemaNode, bool) {
	if node == nil {
		return model.Object(), true
	}
	switch node.Kind {
	case model.KindReference:
		if _, ok := known.Get(node.Ref); ok {
			return node, false
		}
		obj := model.Object()
		obj.Description = node.Description
		return obj, true
	case model.KindArray:
		items, fell := Resolve(node.Items, known)
		if !fell {
			return node, false
		}
		out := *node
		out.Items = items
		return &out, true
	case model.KindMap:
		values, fell := Resolve(node.Values, known)
		if !fell {
			return node, false
		}
		out := *node
		out.Values = values
		return &out, true
	case model.KindObject:
		var fell bool
		props := make([]model.Property, len(node.Properties))
		for i, p := range node.Properties {
			s, f := Resolve(p.Schema, known)
			fell = fell || f
			props[i] = model.Property{Name: p.Name, Schema: s}
		}
		if !fell {
			return node, false
		}
		out := *node
		out.Properties = props
		return &out, true
	}
	return node, false
}

// normalize trims whitespace, varargs and wildcard bounds.
func normalize(t string) string {
	t = strings.TrimSpace(t)
	t = strings.ReplaceAll(t, "...", "[]")
	if strings.HasPrefix(t, "?") {
		rest := strings.TrimSpace(t[1:])
		switch {
		case strings.HasPrefix(rest, "extends "):
			t = strings.TrimSpace(strings.TrimPrefix(rest, "extends "))
		case strings.HasPrefix(rest, "super "):
			t = strings.TrimSpace(strings.TrimPrefix(rest, "super "))
		}
	}
	return t
}

// StripGenerics removes a trailing type-argument list: "List<Foo>" -> "List".
func StripGenerics(t string) string {
	if i := strings.IndexByte(t, '<'); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	return strings.TrimSpace(t)
}

// SimpleName strips a package qualifier: "com.acme.UserDto" -> "UserDto".
// Nested names keep their last segment only.
func SimpleName(t string) string {
	t = StripGenerics(t)
	if i := strings.LastIndexByte(t, '.'); i >= 0 {
		return t[i+1:]
	}
	return t
}

// TypeArgs splits the top-level type arguments of t at depth-zero commas:
// "Map<String, List<Integer>>" -> ["String", "List<Integer>"].
func TypeArgs(t string) []string {
	open := strings.IndexByte(t, '<')
	close := strings.LastIndexByte(t, '>')
	if open < 0 || close < open {
		return nil
	}
	inner := t[open+1 : close]
	var out []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(inner[start:]); last != "" || len(out) > 0 {
		out = append(out, last)
	}
	return out
}
