package declaration

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/griffnb/tsschema/internal/domain"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokTemplate
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  domain.Position

	// nl is set when a line break separates this token from the previous one.
	nl bool

	// docs are the /** */ blocks found between the previous token and this one.
	docs []string

	// template literal pieces
	parts   []string
	exprs   []string
	exprPos []domain.Position
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) punct(text string) bool {
	return t.is(tokPunct, text)
}

func (t token) ident(text string) bool {
	return t.is(tokIdent, text)
}

// SyntaxError is returned for malformed sources.
type SyntaxError struct {
	Pos domain.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

type lexer struct {
	src  string
	file string
	off  int
	line int
	col  int

	nl   bool
	docs []string
	toks []token
}

func tokenize(file, src string, line, col int) ([]token, error) {
	l := &lexer{src: src, file: file, line: line, col: col}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.toks, nil
}

func (l *lexer) position() domain.Position {
	return domain.Position{File: l.file, Line: l.line, Column: l.col}
}

func (l *lexer) errorf(pos domain.Position, format string, args ...interface{}) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peekRune(ahead int) rune {
	off := l.off
	for i := 0; i < ahead; i++ {
		if off >= len(l.src) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.src[off:])
		off += size
	}
	if off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *lexer) next() rune {
	if l.off >= len(l.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) emit(t token) {
	t.nl = l.nl
	t.docs = l.docs
	l.nl = false
	l.docs = nil
	l.toks = append(l.toks, t)
}

func (l *lexer) run() error {
	for {
		if l.off >= len(l.src) {
			l.emit(token{kind: tokEOF, pos: l.position()})
			return nil
		}

		r := l.peekRune(0)
		pos := l.position()

		switch {
		case r == '\n':
			l.nl = true
			l.next()
		case unicode.IsSpace(r) || r == '\uFEFF':
			l.next()
		case r == '/' && l.peekRune(1) == '/':
			for l.off < len(l.src) && l.peekRune(0) != '\n' {
				l.next()
			}
		case r == '/' && l.peekRune(1) == '*':
			if err := l.blockComment(pos); err != nil {
				return err
			}
		case r == '"' || r == '\'':
			text, err := l.quoted(pos)
			if err != nil {
				return err
			}
			l.emit(token{kind: tokString, text: text, pos: pos})
		case r == '`':
			t, err := l.template(pos)
			if err != nil {
				return err
			}
			l.emit(t)
		case isDigit(r) || (r == '.' && isDigit(l.peekRune(1))):
			l.emit(token{kind: tokNumber, text: l.number(), pos: pos})
		case isIdentStart(r):
			start := l.off
			for isIdentPart(l.peekRune(0)) {
				l.next()
			}
			l.emit(token{kind: tokIdent, text: l.src[start:l.off], pos: pos})
		default:
			l.emit(token{kind: tokPunct, text: l.punct(), pos: pos})
		}
	}
}

func (l *lexer) blockComment(pos domain.Position) error {
	start := l.off
	l.next()
	l.next()
	for {
		if l.off >= len(l.src) {
			return l.errorf(pos, "unterminated comment")
		}
		if l.peekRune(0) == '*' && l.peekRune(1) == '/' {
			l.next()
			l.next()
			break
		}
		if l.next() == '\n' {
			l.nl = true
		}
	}
	text := l.src[start:l.off]
	if strings.HasPrefix(text, "/**") && text != "/**/" {
		l.docs = append(l.docs, text)
	}
	return nil
}

func (l *lexer) quoted(pos domain.Position) (string, error) {
	quote := l.next()
	var b strings.Builder
	for {
		if l.off >= len(l.src) {
			return "", l.errorf(pos, "unterminated string")
		}
		r := l.next()
		switch r {
		case quote:
			return b.String(), nil
		case '\n':
			return "", l.errorf(pos, "unterminated string")
		case '\\':
			l.escape(&b)
		default:
			b.WriteRune(r)
		}
	}
}

func (l *lexer) escape(b *strings.Builder) {
	r := l.next()
	switch r {
	case 'n':
		b.WriteRune('\n')
	case 't':
		b.WriteRune('\t')
	case 'r':
		b.WriteRune('\r')
	case 'b':
		b.WriteRune('\b')
	case 'f':
		b.WriteRune('\f')
	case 'v':
		b.WriteRune('\v')
	case '0':
		b.WriteRune(0)
	case 'u':
		if l.peekRune(0) == '{' {
			l.next()
			var hex strings.Builder
			for l.off < len(l.src) && l.peekRune(0) != '}' {
				hex.WriteRune(l.next())
			}
			l.next()
			if v, err := strconv.ParseUint(hex.String(), 16, 32); err == nil {
				b.WriteRune(rune(v))
			}
			return
		}
		hex := make([]rune, 0, 4)
		for i := 0; i < 4 && l.off < len(l.src); i++ {
			hex = append(hex, l.next())
		}
		if v, err := strconv.ParseUint(string(hex), 16, 32); err == nil {
			b.WriteRune(rune(v))
		}
	case '\n':
		// line continuation
	default:
		b.WriteRune(r)
	}
}

func (l *lexer) template(pos domain.Position) (token, error) {
	t := token{kind: tokTemplate, pos: pos}
	l.next()
	var b strings.Builder
	for {
		if l.off >= len(l.src) {
			return t, l.errorf(pos, "unterminated template literal")
		}
		r := l.peekRune(0)
		switch {
		case r == '`':
			l.next()
			t.parts = append(t.parts, b.String())
			return t, nil
		case r == '\\':
			l.next()
			l.escape(&b)
		case r == '$' && l.peekRune(1) == '{':
			l.next()
			l.next()
			t.parts = append(t.parts, b.String())
			b.Reset()
			exprPos := l.position()
			expr, err := l.balanced(exprPos)
			if err != nil {
				return t, err
			}
			t.exprs = append(t.exprs, expr)
			t.exprPos = append(t.exprPos, exprPos)
		default:
			b.WriteRune(l.next())
		}
	}
}

// balanced consumes up to the closing brace of a template span and returns its source.
func (l *lexer) balanced(pos domain.Position) (string, error) {
	start := l.off
	depth := 0
	for {
		if l.off >= len(l.src) {
			return "", l.errorf(pos, "unterminated template span")
		}
		r := l.peekRune(0)
		switch r {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				expr := l.src[start:l.off]
				l.next()
				return expr, nil
			}
			depth--
		case '\'', '"':
			if _, err := l.quoted(l.position()); err != nil {
				return "", err
			}
			continue
		}
		l.next()
	}
}

func (l *lexer) number() string {
	start := l.off
	if l.peekRune(0) == '0' && strings.ContainsRune("xXoObB", l.peekRune(1)) {
		l.next()
		l.next()
	}
	for {
		r := l.peekRune(0)
		if isIdentPart(r) || r == '.' {
			l.next()
			continue
		}
		if (r == '+' || r == '-') && strings.ContainsRune("eE", rune(l.src[l.off-1])) {
			l.next()
			continue
		}
		break
	}
	return l.src[start:l.off]
}

var multiPunct = []string{"...", "=>", "?.", "??"}

func (l *lexer) punct() string {
	for _, p := range multiPunct {
		if strings.HasPrefix(l.src[l.off:], p) {
			for range p {
				l.next()
			}
			return p
		}
	}
	return string(l.next())
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func parseNumber(text string) (float64, error) {
	text = strings.ReplaceAll(text, "_", "")
	if len(text) > 2 && text[0] == '0' {
		var base int
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			v, err := strconv.ParseInt(text[2:], base, 64)
			return float64(v), err
		}
	}
	return strconv.ParseFloat(text, 64)
}
