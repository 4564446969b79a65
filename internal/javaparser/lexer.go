package javaparser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokString
	TokChar
	TokNumber
	TokPunct
)

// Comment is a source comment kept alongside the token stream.
type Comment struct {
	Text    string // raw text including delimiters
	Line    int
	Javadoc bool
	Block   bool
}

// Body returns the comment text without delimiters or leading asterisks.
func (c Comment) Body() string {
	t := c.Text
	switch {
	case strings.HasPrefix(t, "/**"):
		t = strings.TrimSuffix(strings.TrimPrefix(t, "/**"), "*/")
	case strings.HasPrefix(t, "/*"):
		t = strings.TrimSuffix(strings.TrimPrefix(t, "/*"), "*/")
	case strings.HasPrefix(t, "//"):
		t = strings.TrimPrefix(t, "//")
	}
	lines := strings.Split(t, "\n")
	for i, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Token is a lexical unit. Comments holds every comment seen since the
// previous token.
type Token struct {
	Kind     TokenKind
	Text     string
	Pos      int
	End      int
	Line     int
	Comments []Comment
}

func (t Token) is(text string) bool {
	return (t.Kind == TokPunct || t.Kind == TokIdent) && t.Text == text
}

// SyntaxError reports malformed source.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

var multiPunct = []string{"...", "->", "::", "&&", "||", "==", "!=", "<=", ">=", "++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^="}

// Tokenize splits Java source into tokens. The final token is always TokEOF
// and carries any trailing comments.
func Tokenize(src string) ([]Token, error) {
	var (
		toks    []Token
		pending []Comment
		line    = 1
		i       = 0
	)
	emit := func(kind TokenKind, start, end, startLine int) {
		toks = append(toks, Token{Kind: kind, Text: src[start:end], Pos: start, End: end, Line: startLine, Comments: pending})
		pending = nil
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			i++
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			pending = append(pending, Comment{Text: src[i : i+end], Line: line})
			i += end
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, &SyntaxError{Line: line, Msg: "unterminated comment"}
			}
			text := src[i : i+2+end+2]
			javadoc := strings.HasPrefix(text, "/**") && text != "/**/"
			pending = append(pending, Comment{Text: text, Line: line, Javadoc: javadoc, Block: true})
			line += strings.Count(text, "\n")
			i += len(text)
		case strings.HasPrefix(src[i:], `"""`):
			end := strings.Index(src[i+3:], `"""`)
			if end < 0 {
				return nil, &SyntaxError{Line: line, Msg: "unterminated text block"}
			}
			start, startLine := i, line
			i += 3 + end + 3
			line += strings.Count(src[start:i], "\n")
			emit(TokString, start, i, startLine)
		case c == '"' || c == '\'':
			start := i
			i++
			for {
				if i >= len(src) || src[i] == '\n' {
					return nil, &SyntaxError{Line: line, Msg: "unterminated literal"}
				}
				if src[i] == '\\' {
					i += 2
					continue
				}
				if src[i] == c {
					i++
					break
				}
				i++
			}
			kind := TokString
			if c == '\'' {
				kind = TokChar
			}
			emit(kind, start, i, line)
		case c >= '0' && c <= '9' || (c == '.' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9'):
			start := i
			for i < len(src) {
				ch := src[i]
				if isIdentByte(ch) || ch == '.' {
					i++
					continue
				}
				if (ch == '+' || ch == '-') && (src[i-1] == 'e' || src[i-1] == 'E') && !strings.HasPrefix(strings.ToLower(src[start:]), "0x") {
					i++
					continue
				}
				break
			}
			emit(TokNumber, start, i, line)
		case isIdentStart(src[i:]):
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
					i += size
					continue
				}
				break
			}
			emit(TokIdent, start, i, line)
		default:
			start := i
			n := 1
			for _, p := range multiPunct {
				if strings.HasPrefix(src[i:], p) {
					n = len(p)
					break
				}
			}
			if c >= utf8.RuneSelf {
				_, n = utf8.DecodeRuneInString(src[i:])
			}
			i += n
			emit(TokPunct, start, i, line)
		}
	}
	toks = append(toks, Token{Kind: TokEOF, Pos: len(src), End: len(src), Line: line, Comments: pending})
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

// unquote strips delimiters and resolves the common escapes of a string
// or text-block literal.
func unquote(lit string) string {
	if strings.HasPrefix(lit, `"""`) {
		body := strings.TrimSuffix(strings.TrimPrefix(lit, `"""`), `"""`)
		return strings.TrimSpace(body)
	}
	if len(lit) >= 2 {
		lit = lit[1 : len(lit)-1]
	}
	if !strings.Contains(lit, `\`) {
		return lit
	}
	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		if lit[i] != '\\' || i+1 >= len(lit) {
			b.WriteByte(lit[i])
			continue
		}
		i++
		switch lit[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(lit[i])
		}
	}
	return b.String()
}
