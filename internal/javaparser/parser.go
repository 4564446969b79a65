package javaparser

import (
	"fmt"
	"strings"
)

var modifierWords = map[string]bool{
	"public": true, "private": true, "protected": true, "static": true,
	"final": true, "abstract": true, "sealed": true, "transient": true,
	"volatile": true, "synchronized": true, "native": true, "strictfp": true,
	"default": true,
}

type parser struct {
	src  string
	toks []Token
	pos  int
}

// ParseFile parses one Java compilation unit. path is recorded on the
// result and used in error messages only.
func ParseFile(path, src string) (*CompilationUnit, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p := &parser{src: src, toks: toks}
	cu, err := p.compilationUnit()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cu.Path = path
	return cu, nil
}

// ParseJavaFile parses source without a path.
func ParseJavaFile(content string) (*CompilationUnit, error) {
	return ParseFile("<source>", content)
}

func (p *parser) peek() Token { return p.peekN(0) }

func (p *parser) peekN(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	t := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) eof() bool { return p.peek().Kind == TokEOF }

func (p *parser) accept(text string) bool {
	if p.peek().is(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Line: p.peek().Line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(text string) (Token, error) {
	if !p.peek().is(text) {
		return Token{}, p.unexpected(fmt.Sprintf("%q", text))
	}
	return p.next(), nil
}

func (p *parser) ident() (Token, error) {
	if p.peek().Kind != TokIdent {
		return Token{}, p.unexpected("identifier")
	}
	return p.next(), nil
}

func (p *parser) unexpected(want string) error {
	t := p.peek()
	if t.Kind == TokEOF {
		return p.errorf("unexpected end of file, expected %s", want)
	}
	return p.errorf("unexpected %q, expected %s", t.Text, want)
}

// prevLine is the line of the token before the current one.
func (p *parser) prevLine() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Line
}

func (p *parser) compilationUnit() (*CompilationUnit, error) {
	cu := &CompilationUnit{}
	for !p.eof() {
		if p.accept(";") {
			continue
		}
		start, prev := p.peek(), p.prevLine()
		mods, anns, err := p.modifiers()
		if err != nil {
			return nil, err
		}
		switch {
		case p.peek().is("package"):
			p.next()
			name, err := p.qualifiedName()
			if err != nil {
				return nil, err
			}
			cu.Package = name
			if _, err := p.expect(";"); err != nil {
				return nil, err
			}
		case p.peek().is("import"):
			p.next()
			var b strings.Builder
			for !p.peek().is(";") {
				if p.eof() {
					return nil, p.unexpected(`";"`)
				}
				t := p.next()
				if t.Text == "static" && b.Len() == 0 {
					continue
				}
				b.WriteString(t.Text)
			}
			p.next()
			cu.Imports = append(cu.Imports, b.String())
		default:
			td, err := p.typeDecl(mods, anns, start, prev)
			if err != nil {
				return nil, err
			}
			cu.Types = append(cu.Types, td)
		}
	}
	return cu, nil
}

func (p *parser) qualifiedName() (string, error) {
	t, err := p.ident()
	if err != nil {
		return "", err
	}
	name := t.Text
	for p.peek().is(".") && p.peekN(1).Kind == TokIdent {
		p.next()
		name += "." + p.next().Text
	}
	return name, nil
}

func (p *parser) modifiers() (Modifiers, []Annotation, error) {
	var mods Modifiers
	var anns []Annotation
	for {
		t := p.peek()
		switch {
		case t.is("@") && !p.peekN(1).is("interface"):
			a, err := p.annotation()
			if err != nil {
				return nil, nil, err
			}
			anns = append(anns, a)
		case t.Kind == TokIdent && modifierWords[t.Text]:
			mods = append(mods, p.next().Text)
		case t.is("non") && p.peekN(1).is("-") && p.peekN(2).is("sealed"):
			p.next()
			p.next()
			p.next()
			mods = append(mods, "non-sealed")
		default:
			return mods, anns, nil
		}
	}
}

// isTypeStart reports whether the current token opens a nested type.
func (p *parser) isTypeStart() bool {
	t := p.peek()
	switch {
	case t.is("class"), t.is("interface"):
		return true
	case t.is("@") && p.peekN(1).is("interface"):
		return true
	case t.is("enum"), t.is("record"):
		return p.peekN(1).Kind == TokIdent
	}
	return false
}

// docComments splits the comments attached to a declaration's first token
// into its Javadoc and the plain comments written directly above it.
// Comments that trail the previous token on the same line are ignored.
func docComments(start Token, prevLine int) (*Javadoc, []Comment) {
	var doc *Javadoc
	var leading []Comment
	for _, c := range start.Comments {
		if prevLine > 0 && c.Line == prevLine {
			continue
		}
		if c.Javadoc {
			doc = ParseJavadoc(c)
			leading = nil
			continue
		}
		leading = append(leading, c)
	}
	return doc, leading
}

func (p *parser) typeDecl(mods Modifiers, anns []Annotation, start Token, prevLine int) (*TypeDecl, error) {
	td := &TypeDecl{Annotated: Annotated{Annotations: anns}, Modifiers: mods, Line: p.peek().Line}
	td.Javadoc, td.Leading = docComments(start, prevLine)

	switch kw := p.peek(); {
	case kw.is("class"):
		td.Kind = KindClass
	case kw.is("interface"):
		td.Kind = KindInterface
	case kw.is("enum"):
		td.Kind = KindEnum
	case kw.is("record"):
		td.Kind = KindRecord
	case kw.is("@") && p.peekN(1).is("interface"):
		p.next()
		td.Kind = KindAnnotationType
	default:
		return nil, p.unexpected("type declaration")
	}
	p.next()

	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	td.Name = name.Text

	if p.peek().is("<") {
		if err := p.skipAngles(); err != nil {
			return nil, err
		}
	}
	if td.Kind == KindRecord {
		if td.Components, err = p.params(); err != nil {
			return nil, err
		}
	}

	for !p.peek().is("{") {
		switch {
		case p.accept("extends"):
			if td.Extends, err = p.typeList(); err != nil {
				return nil, err
			}
		case p.accept("implements"):
			if td.Implements, err = p.typeList(); err != nil {
				return nil, err
			}
		case p.accept("permits"):
			if _, err = p.typeList(); err != nil {
				return nil, err
			}
		default:
			return nil, p.unexpected(`"{"`)
		}
	}

	if err := p.classBody(td); err != nil {
		return nil, err
	}
	return td, nil
}

func (p *parser) typeList() ([]string, error) {
	var out []string
	for {
		t, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if !p.accept(",") {
			return out, nil
		}
	}
}

func (p *parser) classBody(td *TypeDecl) error {
	if _, err := p.expect("{"); err != nil {
		return err
	}
	if td.Kind == KindEnum {
		if err := p.enumConstants(td); err != nil {
			return err
		}
	}

	for {
		if p.accept("}") {
			return nil
		}
		if p.accept(";") {
			continue
		}
		if p.eof() {
			return p.errorf("unexpected end of file in body of %s", td.Name)
		}

		start, prev := p.peek(), p.prevLine()
		mods, anns, err := p.modifiers()
		if err != nil {
			return err
		}

		if p.peek().is("{") {
			if _, _, err := p.block(); err != nil {
				return err
			}
			continue
		}

		if p.isTypeStart() {
			nested, err := p.typeDecl(mods, anns, start, prev)
			if err != nil {
				return err
			}
			td.Nested = append(td.Nested, nested)
			continue
		}

		if err := p.member(td, mods, anns, start, prev); err != nil {
			return err
		}
	}
}

func (p *parser) enumConstants(td *TypeDecl) error {
	for {
		if _, _, err := p.modifiers(); err != nil {
			return err
		}
		if p.accept(";") || p.peek().is("}") {
			return nil
		}
		name, err := p.ident()
		if err != nil {
			return err
		}
		td.Constants = append(td.Constants, name.Text)
		if p.peek().is("(") {
			if err := p.skipParens(); err != nil {
				return err
			}
		}
		if p.peek().is("{") {
			if _, _, err := p.block(); err != nil {
				return err
			}
		}
		if p.accept(",") {
			continue
		}
		if p.accept(";") || p.peek().is("}") {
			return nil
		}
		return p.unexpected(`"," or ";"`)
	}
}

func (p *parser) member(td *TypeDecl, mods Modifiers, anns []Annotation, start Token, prev int) error {
	line := p.peek().Line
	if p.peek().is("<") {
		if err := p.skipAngles(); err != nil {
			return err
		}
	}

	// Compact canonical record constructor.
	if p.peek().Kind == TokIdent && p.peekN(1).is("{") {
		p.next()
		_, _, err := p.block()
		return err
	}

	var returnType string
	var name Token
	var err error
	if p.peek().Kind == TokIdent && p.peekN(1).is("(") {
		name = p.next()
	} else {
		if returnType, err = p.typeRef(); err != nil {
			return err
		}
		if name, err = p.ident(); err != nil {
			return err
		}
	}

	if p.peek().is("(") {
		m := Method{
			Annotated:  Annotated{Annotations: anns},
			Modifiers:  mods,
			Name:       name.Text,
			ReturnType: returnType,
			Line:       line,
		}
		m.Javadoc, m.Leading = docComments(start, prev)
		if err := p.methodRest(&m); err != nil {
			return err
		}
		td.Methods = append(td.Methods, m)
		return nil
	}

	f := Field{
		Annotated: Annotated{Annotations: anns},
		Modifiers: mods,
		Type:      returnType,
		Line:      line,
	}
	f.Javadoc, _ = docComments(start, prev)
	for {
		for p.peek().is("[") && p.peekN(1).is("]") {
			p.next()
			p.next()
			f.Type += "[]"
		}
		f.Names = append(f.Names, name.Text)
		if p.accept("=") {
			if err := p.skipInitializer(); err != nil {
				return err
			}
		}
		if p.accept(";") {
			break
		}
		if _, err := p.expect(","); err != nil {
			return err
		}
		if name, err = p.ident(); err != nil {
			return err
		}
	}
	td.Fields = append(td.Fields, f)
	return nil
}

func (p *parser) methodRest(m *Method) error {
	var err error
	if m.Params, err = p.params(); err != nil {
		return err
	}
	for p.peek().is("[") && p.peekN(1).is("]") {
		p.next()
		p.next()
		m.ReturnType += "[]"
	}
	if p.accept("throws") {
		if _, err := p.typeList(); err != nil {
			return err
		}
	}
	if p.accept("default") {
		if err := p.skipInitializer(); err != nil {
			return err
		}
	}
	if p.accept(";") {
		return nil
	}
	open, close, err := p.block()
	if err != nil {
		return err
	}
	m.Body = p.src[open.End:close.Pos]
	m.BodyLine = open.Line
	for i := p.indexOf(open) + 1; i <= p.indexOf(close); i++ {
		m.BodyComment = append(m.BodyComment, p.toks[i].Comments...)
	}
	return nil
}

func (p *parser) indexOf(t Token) int {
	for i := p.pos - 1; i >= 0; i-- {
		if p.toks[i].Pos == t.Pos {
			return i
		}
	}
	return 0
}

func (p *parser) params() ([]Param, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var out []Param
	if p.accept(")") {
		return out, nil
	}
	for {
		_, anns, err := p.modifiers()
		if err != nil {
			return nil, err
		}
		typ, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		param := Param{Annotated: Annotated{Annotations: anns}, Type: typ}
		if p.accept("...") {
			param.VarArgs = true
			param.Type += "[]"
		}
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		param.Name = name.Text
		for p.peek().is("[") && p.peekN(1).is("]") {
			p.next()
			p.next()
			param.Type += "[]"
		}
		out = append(out, param)
		if p.accept(")") {
			return out, nil
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

// typeRef reads a type reference and returns its canonical spelling,
// e.g. "Map<String, List<Integer>>" or "byte[]".
func (p *parser) typeRef() (string, error) {
	if err := p.skipTypeAnnotations(); err != nil {
		return "", err
	}
	t, err := p.ident()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(t.Text)
	for {
		if p.peek().is(".") && (p.peekN(1).Kind == TokIdent || p.peekN(1).is("@")) {
			p.next()
			if err := p.skipTypeAnnotations(); err != nil {
				return "", err
			}
			id, err := p.ident()
			if err != nil {
				return "", err
			}
			b.WriteString("." + id.Text)
			continue
		}
		if p.peek().is("<") {
			args, err := p.typeArgs()
			if err != nil {
				return "", err
			}
			b.WriteString(args)
			continue
		}
		break
	}
	for p.peek().is("[") && p.peekN(1).is("]") {
		p.next()
		p.next()
		b.WriteString("[]")
	}
	return b.String(), nil
}

func (p *parser) typeArgs() (string, error) {
	p.next() // <
	if p.accept(">") {
		return "<>", nil
	}
	var parts []string
	for {
		if err := p.skipTypeAnnotations(); err != nil {
			return "", err
		}
		var part string
		if p.accept("?") {
			part = "?"
			if p.peek().is("extends") || p.peek().is("super") {
				kw := p.next().Text
				bound, err := p.typeRef()
				if err != nil {
					return "", err
				}
				part += " " + kw + " " + bound
			}
		} else {
			t, err := p.typeRef()
			if err != nil {
				return "", err
			}
			part = t
		}
		parts = append(parts, part)
		if p.accept(",") {
			continue
		}
		if _, err := p.expect(">"); err != nil {
			return "", err
		}
		return "<" + strings.Join(parts, ", ") + ">", nil
	}
}

func (p *parser) skipTypeAnnotations() error {
	for p.peek().is("@") && !p.peekN(1).is("interface") {
		if _, err := p.annotation(); err != nil {
			return err
		}
	}
	return nil
}

// block consumes a balanced {...} and returns its delimiting tokens.
func (p *parser) block() (open, close Token, err error) {
	open, err = p.expect("{")
	if err != nil {
		return
	}
	depth := 1
	for {
		t := p.next()
		switch {
		case t.Kind == TokEOF:
			return open, t, &SyntaxError{Line: open.Line, Msg: "unbalanced braces: block never closed"}
		case t.is("{"):
			depth++
		case t.is("}"):
			depth--
			if depth == 0 {
				return open, t, nil
			}
		}
	}
}

func (p *parser) skipParens() error {
	open, err := p.expect("(")
	if err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		t := p.next()
		switch {
		case t.Kind == TokEOF:
			return &SyntaxError{Line: open.Line, Msg: "unbalanced parentheses"}
		case t.is("("):
			depth++
		case t.is(")"):
			depth--
		}
	}
	return nil
}

func (p *parser) skipAngles() error {
	depth := 0
	for {
		t := p.next()
		switch {
		case t.Kind == TokEOF:
			return p.errorf("unbalanced type parameters")
		case t.is("<"):
			depth++
		case t.is(">"):
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
}

// skipInitializer consumes an expression up to a top-level ',' or ';'.
func (p *parser) skipInitializer() error {
	depth, angle := 0, 0
	for {
		t := p.peek()
		switch {
		case t.Kind == TokEOF:
			return p.errorf("unexpected end of file in initializer")
		case t.is("(") || t.is("{") || t.is("["):
			depth++
		case t.is(")") || t.is("}") || t.is("]"):
			if depth == 0 {
				return p.unexpected(`";"`)
			}
			depth--
		case t.is("<") && p.toks[p.pos-1].Kind == TokIdent && (p.peekN(1).Kind == TokIdent || p.peekN(1).is(">") || p.peekN(1).is("?")):
			angle++
		case t.is(">") && angle > 0:
			angle--
		case (t.is(",") || t.is(";")) && depth == 0 && angle == 0:
			return nil
		}
		p.next()
	}
}

func (p *parser) annotation() (Annotation, error) {
	at, err := p.expect("@")
	if err != nil {
		return Annotation{}, err
	}
	name, err := p.qualifiedName()
	if err != nil {
		return Annotation{}, err
	}
	a := Annotation{Name: SimpleName(name), Qualified: name, Line: at.Line}
	if !p.accept("(") {
		return a, nil
	}
	if p.accept(")") {
		return a, nil
	}
	if p.peek().Kind == TokIdent && p.peekN(1).is("=") {
		for {
			key, err := p.ident()
			if err != nil {
				return a, err
			}
			if _, err := p.expect("="); err != nil {
				return a, err
			}
			v, err := p.elementValue()
			if err != nil {
				return a, err
			}
			a.Attrs = append(a.Attrs, AnnotationAttr{Name: key.Text, Value: v})
			if p.accept(")") {
				return a, nil
			}
			if _, err := p.expect(","); err != nil {
				return a, err
			}
		}
	}
	v, err := p.elementValue()
	if err != nil {
		return a, err
	}
	a.Attrs = append(a.Attrs, AnnotationAttr{Name: "value", Value: v})
	if _, err := p.expect(")"); err != nil {
		return a, err
	}
	return a, nil
}

func (p *parser) elementValue() (Value, error) {
	switch {
	case p.peek().is("{"):
		p.next()
		arr := Value{Kind: ValueArray}
		for !p.accept("}") {
			if p.eof() {
				return arr, p.unexpected(`"}"`)
			}
			v, err := p.elementValue()
			if err != nil {
				return arr, err
			}
			arr.Elems = append(arr.Elems, v)
			if !p.accept(",") && !p.peek().is("}") {
				return arr, p.unexpected(`"," or "}"`)
			}
		}
		return arr, nil
	case p.peek().is("@"):
		a, err := p.annotation()
		return Value{Kind: ValueAnnotation, Text: a.Name}, err
	}

	var toks []Token
	depth := 0
	for {
		t := p.peek()
		if t.Kind == TokEOF {
			return Value{}, p.unexpected(`")"`)
		}
		if depth == 0 && (t.is(",") || t.is(")") || t.is("}")) {
			break
		}
		switch {
		case t.is("(") || t.is("[") || t.is("{"):
			depth++
		case t.is(")") || t.is("]") || t.is("}"):
			depth--
		}
		toks = append(toks, p.next())
	}
	if len(toks) == 0 {
		return Value{}, p.unexpected("annotation value")
	}
	return classifyValue(p.src, toks), nil
}

func classifyValue(src string, toks []Token) Value {
	raw := src[toks[0].Pos:toks[len(toks)-1].End]

	// "a" + "b" folds into one literal.
	concat, allStrings := "", true
	for i, t := range toks {
		if i%2 == 0 && t.Kind != TokString || i%2 == 1 && !t.is("+") {
			allStrings = false
			break
		}
		if t.Kind == TokString {
			concat += unquote(t.Text)
		}
	}
	if allStrings && len(toks)%2 == 1 {
		return Value{Kind: ValueString, Text: concat}
	}

	if len(toks) == 1 {
		t := toks[0]
		switch {
		case t.Kind == TokNumber:
			return Value{Kind: ValueNumber, Text: t.Text}
		case t.is("true") || t.is("false"):
			return Value{Kind: ValueBool, Text: t.Text}
		case t.Kind == TokIdent:
			return Value{Kind: ValueName, Text: t.Text}
		}
	}

	dotted := len(toks)%2 == 1
	for i, t := range toks {
		if i%2 == 0 && t.Kind != TokIdent || i%2 == 1 && !t.is(".") {
			dotted = false
			break
		}
	}
	if dotted {
		return Value{Kind: ValueField, Text: raw}
	}
	return Value{Kind: ValueOther, Text: raw}
}
