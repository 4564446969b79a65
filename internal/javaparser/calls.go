package javaparser

import "strings"

// ExprKind classifies a call argument.
type ExprKind int

const (
	ExprOther  ExprKind = iota
	ExprString          // string literal or a concatenation of literals
	ExprField           // qualified access such as HttpMethod.GET
	ExprName            // bare identifier
	ExprCall            // method invocation
	ExprLambda
)

// Expr is a call argument.
type Expr struct {
	Kind ExprKind
	Text string // literal content for strings, source text otherwise
	Call *Call  // set for ExprCall
}

// Call is one method invocation in a chain. Receiver is the invocation the
// call was made on (a.b().c() gives c a receiver b); ReceiverText is the
// source of a non-call receiver such as "http" or "this.http".
type Call struct {
	Name         string
	Receiver     *Call
	ReceiverText string
	Args         []Expr
	Line         int
}

// Body is the call-chain view of a method body.
type Body struct {
	Calls  []*Call         // every invocation in source order
	Idents map[string]bool // every identifier token
}

// HasCall reports whether any invocation has the given name.
func (b *Body) HasCall(name string) bool {
	for _, c := range b.Calls {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ParseBody builds the call-chain view of a statement block. Lambdas,
// nested arguments and anonymous classes are traversed; everything that is
// not an invocation is kept only as argument text.
func ParseBody(src string) (*Body, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	w := &chainWalker{src: src, toks: toks, body: &Body{Idents: make(map[string]bool)}}
	for _, t := range toks {
		if t.Kind == TokIdent {
			w.body.Idents[t.Text] = true
		}
	}
	w.statements(func() bool { return w.peek().Kind == TokEOF })
	return w.body, nil
}

type chainWalker struct {
	src  string
	toks []Token
	pos  int
	body *Body
}

func (w *chainWalker) peek() Token { return w.peekN(0) }

func (w *chainWalker) peekN(n int) Token {
	if w.pos+n >= len(w.toks) {
		return w.toks[len(w.toks)-1]
	}
	return w.toks[w.pos+n]
}

func (w *chainWalker) next() Token {
	t := w.peek()
	if w.pos < len(w.toks)-1 {
		w.pos++
	}
	return t
}

var statementKeywords = map[string]bool{
	"return": true, "throw": true, "else": true, "do": true, "try": true,
	"finally": true, "break": true, "continue": true, "case": true,
	"default": true, "yield": true, "final": true, "var": true, "assert": true,
}

var headedKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true, "synchronized": true,
}

// statements walks until done reports true or the input ends.
func (w *chainWalker) statements(done func() bool) {
	for !done() && w.peek().Kind != TokEOF {
		t := w.peek()
		switch {
		case t.is(";") || t.is(":") || t.is("->") || t.is(","):
			w.next()
		case t.is("{"):
			w.next()
			w.statements(func() bool { return w.peek().is("}") })
			w.next()
		case t.is("}") || t.is(")") || t.is("]"):
			// stray closer from malformed input
			w.next()
		case t.Kind == TokIdent && statementKeywords[t.Text]:
			w.next()
		case t.Kind == TokIdent && headedKeywords[t.Text] && w.peekN(1).is("("):
			w.next()
			w.next()
			w.statements(func() bool { return w.peek().is(")") })
			w.next()
		case t.is("@"):
			w.next()
			w.next()
			if w.peek().is("(") {
				w.skipGroup("(", ")")
			}
		default:
			before := w.pos
			w.expression()
			if w.pos == before {
				w.next()
			}
		}
	}
}

// expression walks one expression and stops before a top-level
// ',', ';', ')', '}', ']' or ':'.
func (w *chainWalker) expression() Expr {
	var parts []Expr
	var ops []string
	start := w.peek()
	last := start
	for {
		t := w.peek()
		if t.Kind == TokEOF || t.is(",") || t.is(";") || t.is(")") || t.is("}") || t.is("]") || t.is(":") {
			break
		}
		if t.Kind == TokPunct && !t.is("(") && !t.is("{") && !t.is("[") && !t.is("@") && !t.is("-") && !t.is("!") && !t.is("~") && !t.is("++") && !t.is("--") {
			ops = append(ops, t.Text)
			last = w.next()
			continue
		}
		if t.is("-") || t.is("!") || t.is("~") || t.is("++") || t.is("--") {
			ops = append(ops, t.Text)
			last = w.next()
			continue
		}
		parts = append(parts, w.operand())
		last = w.toks[w.pos-1]
	}

	if len(parts) == 0 {
		return Expr{Kind: ExprOther}
	}
	if len(parts) == 1 && len(ops) == 0 {
		return parts[0]
	}
	allStrings := len(ops) == len(parts)-1
	for _, op := range ops {
		if op != "+" {
			allStrings = false
		}
	}
	var concat strings.Builder
	for _, p := range parts {
		if p.Kind != ExprString {
			allStrings = false
			break
		}
		concat.WriteString(p.Text)
	}
	if allStrings {
		return Expr{Kind: ExprString, Text: concat.String()}
	}
	return Expr{Kind: ExprOther, Text: w.text(start, last)}
}

func (w *chainWalker) text(from, to Token) string {
	if to.End < from.Pos {
		return ""
	}
	return w.src[from.Pos:to.End]
}

// operand walks a primary expression and its postfix chain.
func (w *chainWalker) operand() Expr {
	t := w.peek()
	switch {
	case t.Kind == TokString:
		w.next()
		return Expr{Kind: ExprString, Text: unquote(t.Text)}
	case t.Kind == TokNumber || t.Kind == TokChar:
		w.next()
		return Expr{Kind: ExprOther, Text: t.Text}
	case t.Kind == TokIdent && w.peekN(1).is("->"):
		w.next()
		w.next()
		w.lambdaBody()
		return Expr{Kind: ExprLambda, Text: t.Text + " -> ..."}
	case t.is("(") && w.isLambdaHead():
		w.skipGroup("(", ")")
		w.next() // ->
		w.lambdaBody()
		return Expr{Kind: ExprLambda, Text: "(...) -> ..."}
	case t.is("("):
		w.next()
		inner := w.expression()
		for w.peek().is(",") {
			w.next()
			w.expression()
		}
		if w.peek().is(")") {
			w.next()
		}
		return w.postfix(inner, nil, t)
	case t.is("{"):
		w.next()
		for !w.peek().is("}") && w.peek().Kind != TokEOF {
			before := w.pos
			w.expression()
			if w.pos == before {
				w.next()
			}
		}
		w.next()
		return Expr{Kind: ExprOther, Text: "{...}"}
	case t.is("["):
		w.skipGroup("[", "]")
		return Expr{Kind: ExprOther}
	case t.is("new"):
		return w.creation()
	case t.Kind == TokIdent:
		return w.nameChain()
	}
	w.next()
	return Expr{Kind: ExprOther, Text: t.Text}
}

// isLambdaHead reports whether the parenthesized group at the cursor is
// followed by an arrow.
func (w *chainWalker) isLambdaHead() bool {
	depth := 0
	for i := w.pos; i < len(w.toks); i++ {
		t := w.toks[i]
		switch {
		case t.is("("):
			depth++
		case t.is(")"):
			depth--
			if depth == 0 {
				return i+1 < len(w.toks) && w.toks[i+1].is("->")
			}
		case t.Kind == TokEOF:
			return false
		}
	}
	return false
}

func (w *chainWalker) lambdaBody() {
	if w.peek().is("{") {
		w.next()
		w.statements(func() bool { return w.peek().is("}") })
		w.next()
		return
	}
	w.expression()
}

func (w *chainWalker) creation() Expr {
	start := w.next() // new
	for w.peek().Kind == TokIdent || w.peek().is(".") || w.peek().is("@") {
		w.next()
	}
	if w.peek().is("<") {
		w.skipGroup("<", ">")
	}
	last := w.toks[w.pos-1]
	switch {
	case w.peek().is("("):
		w.args()
		last = w.toks[w.pos-1]
		if w.peek().is("{") {
			// anonymous class body: walk member bodies for calls
			w.next()
			w.statements(func() bool { return w.peek().is("}") })
			last = w.next()
		}
	case w.peek().is("["):
		for w.peek().is("[") {
			w.skipGroup("[", "]")
		}
		if w.peek().is("{") {
			w.operand()
		}
		last = w.toks[w.pos-1]
	}
	return w.postfix(Expr{Kind: ExprOther, Text: w.text(start, last)}, nil, start)
}

// nameChain walks ident(.ident)* with invocations along the way.
func (w *chainWalker) nameChain() Expr {
	start := w.peek()
	var receiver *Call
	var path []string
	for {
		t := w.peek()
		if t.Kind != TokIdent {
			break
		}
		w.next()
		if w.peek().is("(") {
			call := &Call{Name: t.Text, Receiver: receiver, ReceiverText: strings.Join(path, "."), Line: t.Line}
			w.body.Calls = append(w.body.Calls, call)
			call.Args = w.args()
			return w.postfix(Expr{Kind: ExprCall, Text: t.Text, Call: call}, call, start)
		}
		path = append(path, t.Text)
		if w.peek().is(".") && (w.peekN(1).Kind == TokIdent || w.peekN(1).is("<")) {
			w.next()
			if w.peek().is("<") {
				w.skipGroup("<", ">")
			}
			continue
		}
		break
	}
	if w.peek().is("::") {
		w.next()
		w.next()
		return Expr{Kind: ExprOther, Text: w.text(start, w.toks[w.pos-1])}
	}
	text := strings.Join(path, ".")
	if len(path) == 1 {
		return w.postfix(Expr{Kind: ExprName, Text: text}, nil, start)
	}
	return w.postfix(Expr{Kind: ExprField, Text: text}, nil, start)
}

// postfix continues a chain after a primary: .call(), .field, [index], ::ref.
func (w *chainWalker) postfix(e Expr, receiver *Call, start Token) Expr {
	for {
		switch {
		case w.peek().is(".") && w.peekN(1).is("<"):
			w.next()
			w.skipGroup("<", ">")
		case w.peek().is(".") && w.peekN(1).Kind == TokIdent:
			w.next()
			name := w.next()
			if w.peek().is("(") {
				call := &Call{Name: name.Text, Receiver: receiver, Line: name.Line}
				if receiver == nil {
					call.ReceiverText = e.Text
				}
				w.body.Calls = append(w.body.Calls, call)
				call.Args = w.args()
				receiver = call
				e = Expr{Kind: ExprCall, Text: name.Text, Call: call}
				continue
			}
			if e.Kind == ExprName || e.Kind == ExprField {
				e = Expr{Kind: ExprField, Text: e.Text + "." + name.Text}
			} else {
				e = Expr{Kind: ExprOther, Text: w.text(start, name)}
			}
			receiver = nil
		case w.peek().is("["):
			w.skipGroup("[", "]")
			e = Expr{Kind: ExprOther, Text: w.text(start, w.toks[w.pos-1])}
			receiver = nil
		case w.peek().is("::"):
			w.next()
			w.next()
			return Expr{Kind: ExprOther, Text: w.text(start, w.toks[w.pos-1])}
		default:
			return e
		}
	}
}

func (w *chainWalker) args() []Expr {
	w.next() // (
	var out []Expr
	if w.peek().is(")") {
		w.next()
		return out
	}
	for {
		out = append(out, w.expression())
		switch {
		case w.peek().is(","):
			w.next()
		case w.peek().is(")"):
			w.next()
			return out
		default:
			// unbalanced input: give up on this argument list
			if w.peek().Kind == TokEOF {
				return out
			}
			w.next()
		}
	}
}

func (w *chainWalker) skipGroup(open, close string) {
	depth := 0
	for {
		t := w.next()
		switch {
		case t.Kind == TokEOF:
			return
		case t.is(open):
			depth++
		case t.is(close):
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}
