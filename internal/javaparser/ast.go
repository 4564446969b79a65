package javaparser

import "strings"

// TypeKind is the kind of a type declaration.
type TypeKind string

const (
	KindClass          TypeKind = "class"
	KindInterface      TypeKind = "interface"
	KindEnum           TypeKind = "enum"
	KindRecord         TypeKind = "record"
	KindAnnotationType TypeKind = "@interface"
)

// ValueKind classifies an annotation element value.
type ValueKind int

const (
	ValueOther ValueKind = iota
	ValueString
	ValueName  // bare identifier
	ValueField // qualified access such as RequestMethod.GET
	ValueBool
	ValueNumber
	ValueArray
	ValueAnnotation
)

// Value is an annotation element value.
type Value struct {
	Kind  ValueKind
	Text  string // literal content for strings, source text otherwise
	Elems []Value
}

// Strings returns every string literal in the value, flattening arrays.
func (v Value) Strings() []string {
	switch v.Kind {
	case ValueString:
		return []string{v.Text}
	case ValueArray:
		var out []string
		for _, e := range v.Elems {
			out = append(out, e.Strings()...)
		}
		return out
	}
	return nil
}

// FirstString returns the first string literal in the value.
func (v Value) FirstString() (string, bool) {
	s := v.Strings()
	if len(s) == 0 {
		return "", false
	}
	return s[0], true
}

// Symbols returns field-access and name values, flattening arrays.
func (v Value) Symbols() []string {
	switch v.Kind {
	case ValueName, ValueField:
		return []string{v.Text}
	case ValueArray:
		var out []string
		for _, e := range v.Elems {
			out = append(out, e.Symbols()...)
		}
		return out
	}
	return nil
}

// AnnotationAttr is one name = value pair.
type AnnotationAttr struct {
	Name  string
	Value Value
}

// Annotation is a parsed annotation use. A single unnamed element is stored
// under the name "value".
type Annotation struct {
	Name      string // simple name, e.g. "GetMapping"
	Qualified string // as written, e.g. "org.springframework.web.bind.annotation.GetMapping"
	Attrs     []AnnotationAttr
	Line      int
}

// Attr looks up an element by name.
func (a *Annotation) Attr(name string) (Value, bool) {
	for _, at := range a.Attrs {
		if at.Name == name {
			return at.Value, true
		}
	}
	return Value{}, false
}

// StringAttr returns the first string literal of the first present element.
func (a *Annotation) StringAttr(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := a.Attr(n); ok {
			if s, ok := v.FirstString(); ok {
				return s, true
			}
		}
	}
	return "", false
}

// Bool returns a boolean element value.
func (a *Annotation) Bool(name string) (value, ok bool) {
	v, found := a.Attr(name)
	if !found || v.Kind != ValueBool {
		return false, false
	}
	return v.Text == "true", true
}

// Annotated is embedded by every declaration carrying annotations.
type Annotated struct {
	Annotations []Annotation
}

// Annotation returns the first annotation with the given simple name.
func (a *Annotated) Annotation(name string) *Annotation {
	for i := range a.Annotations {
		if a.Annotations[i].Name == name {
			return &a.Annotations[i]
		}
	}
	return nil
}

// HasAnnotation reports whether any of the names is present.
func (a *Annotated) HasAnnotation(names ...string) bool {
	for _, n := range names {
		if a.Annotation(n) != nil {
			return true
		}
	}
	return false
}

// Modifiers is the set of declaration modifiers.
type Modifiers []string

func (m Modifiers) Has(name string) bool {
	for _, x := range m {
		if x == name {
			return true
		}
	}
	return false
}

// Param is a method or record component parameter.
type Param struct {
	Annotated
	Name    string
	Type    string
	VarArgs bool
}

// Field is a field declaration. Names holds every declarator
// (private int x, y; yields two names sharing one type).
type Field struct {
	Annotated
	Modifiers Modifiers
	Type      string
	Names     []string
	Javadoc   *Javadoc
	Line      int
}

// Method is a method or constructor declaration.
type Method struct {
	Annotated
	Modifiers   Modifiers
	Name        string
	ReturnType  string // empty for constructors
	Params      []Param
	Javadoc     *Javadoc
	Leading     []Comment // non-Javadoc comments directly above the declaration
	Body        string    // source text between the braces, empty when abstract
	BodyLine    int
	BodyComment []Comment // comments inside the body, in order
	Line        int
}

// IsConstructor reports a constructor declaration.
func (m *Method) IsConstructor() bool {
	return m.ReturnType == ""
}

// TypeDecl is a class, interface, enum, record or annotation type.
type TypeDecl struct {
	Annotated
	Kind       TypeKind
	Modifiers  Modifiers
	Name       string
	Javadoc    *Javadoc
	Leading    []Comment
	Extends    []string
	Implements []string
	Fields     []Field
	Methods    []Method
	Components []Param  // record header
	Constants  []string // enum constants
	Nested     []*TypeDecl
	Line       int
}

// IsInterface reports interfaces and annotation types.
func (t *TypeDecl) IsInterface() bool {
	return t.Kind == KindInterface || t.Kind == KindAnnotationType
}

// CompilationUnit is one parsed source file.
type CompilationUnit struct {
	Path    string
	Package string
	Imports []string
	Types   []*TypeDecl
}

// AllTypes returns top-level and nested types in declaration order.
func (cu *CompilationUnit) AllTypes() []*TypeDecl {
	var out []*TypeDecl
	var walk func(ts []*TypeDecl)
	walk = func(ts []*TypeDecl) {
		for _, t := range ts {
			out = append(out, t)
			walk(t.Nested)
		}
	}
	walk(cu.Types)
	return out
}

// SimpleName strips a package qualifier from a type name.
func SimpleName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
