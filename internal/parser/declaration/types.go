package declaration

import (
	"github.com/griffnb/tsschema/internal/domain"
)

var keywords = map[string]bool{
	"string":    true,
	"number":    true,
	"boolean":   true,
	"object":    true,
	"any":       true,
	"unknown":   true,
	"never":     true,
	"void":      true,
	"undefined": true,
	"bigint":    true,
	"symbol":    true,
}

// parseType parses a full type, including conditional types.
func (p *parser) parseType() (*domain.TypeNode, error) {
	start := p.peek()
	if isFunctionTypeStart(p) {
		return p.functionType()
	}

	typ, err := p.unionType()
	if err != nil {
		return nil, err
	}

	if p.peek().ident("extends") && !p.peek().nl {
		p.advance()
		if _, err := p.unionType(); err != nil {
			return nil, err
		}
		if err := p.expect("?"); err != nil {
			return nil, err
		}
		if _, err := p.parseType(); err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		if _, err := p.parseType(); err != nil {
			return nil, err
		}
		return unsupported("conditional", start.pos), nil
	}
	return typ, nil
}

func (p *parser) unionType() (*domain.TypeNode, error) {
	start := p.peek()
	p.accept("|")
	first, err := p.intersectionType()
	if err != nil {
		return nil, err
	}
	if !p.peek().punct("|") {
		return first, nil
	}

	node := &domain.TypeNode{Kind: domain.KindUnion, Pos: start.pos, Types: []*domain.TypeNode{first}}
	for p.accept("|") {
		member, err := p.intersectionType()
		if err != nil {
			return nil, err
		}
		node.Types = append(node.Types, member)
	}
	return node, nil
}

func (p *parser) intersectionType() (*domain.TypeNode, error) {
	start := p.peek()
	p.accept("&")
	first, err := p.operatorType()
	if err != nil {
		return nil, err
	}
	if !p.peek().punct("&") {
		return first, nil
	}

	node := &domain.TypeNode{Kind: domain.KindIntersection, Pos: start.pos, Types: []*domain.TypeNode{first}}
	for p.accept("&") {
		member, err := p.operatorType()
		if err != nil {
			return nil, err
		}
		node.Types = append(node.Types, member)
	}
	return node, nil
}

func (p *parser) operatorType() (*domain.TypeNode, error) {
	t := p.peek()
	if t.kind == tokIdent && !p.peekAt(1).punct(".") {
		switch t.text {
		case "readonly":
			p.advance()
			return p.operatorType()
		case "keyof", "unique":
			p.advance()
			if _, err := p.operatorType(); err != nil {
				return nil, err
			}
			return unsupported(t.text, t.pos), nil
		case "infer":
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			return unsupported("infer "+name.text, t.pos), nil
		}
	}
	return p.postfixType()
}

func (p *parser) postfixType() (*domain.TypeNode, error) {
	typ, err := p.primaryType()
	if err != nil {
		return nil, err
	}

	for p.peek().punct("[") && !p.peek().nl {
		open := p.advance()
		if p.accept("]") {
			typ = &domain.TypeNode{Kind: domain.KindArray, Pos: open.pos, Elem: typ}
			continue
		}
		index, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		typ = &domain.TypeNode{Kind: domain.KindIndexedAccess, Pos: typ.Pos, Elem: typ, Index: index}
	}
	return typ, nil
}

func (p *parser) primaryType() (*domain.TypeNode, error) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.advance()
		return literal(t.text, t.pos), nil
	case tokNumber:
		p.advance()
		v, err := parseNumber(t.text)
		if err != nil {
			return nil, p.errorf(t, "invalid number %q", t.text)
		}
		return literal(v, t.pos), nil
	case tokTemplate:
		p.advance()
		return p.templateType(t)
	case tokPunct:
		return p.punctType(t)
	case tokIdent:
		return p.identType(t)
	}
	return nil, p.errorf(t, "expected type")
}

func (p *parser) punctType(t token) (*domain.TypeNode, error) {
	switch t.text {
	case "-":
		p.advance()
		num := p.advance()
		if num.kind != tokNumber {
			return nil, p.errorf(num, "expected number after \"-\"")
		}
		v, err := parseNumber(num.text)
		if err != nil {
			return nil, p.errorf(num, "invalid number %q", num.text)
		}
		return literal(-v, t.pos), nil
	case "(":
		p.advance()
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return typ, nil
	case "{":
		if p.mappedTypeAhead() {
			p.skipBalanced("{", "}")
			return unsupported("mapped", t.pos), nil
		}
		p.advance()
		props, err := p.members()
		if err != nil {
			return nil, err
		}
		return &domain.TypeNode{Kind: domain.KindObjectLiteral, Pos: t.pos, Properties: props}, nil
	case "[":
		p.advance()
		return p.tupleType(t)
	}
	return nil, p.errorf(t, "unexpected %q in type", t.text)
}

func (p *parser) identType(t token) (*domain.TypeNode, error) {
	if !p.peekAt(1).punct(".") {
		switch t.text {
		case "true", "false":
			p.advance()
			return literal(t.text == "true", t.pos), nil
		case "null":
			p.advance()
			return literal(nil, t.pos), nil
		case "typeof":
			p.advance()
			if _, err := p.typeReference(); err != nil {
				return nil, err
			}
			return unsupported("typeof", t.pos), nil
		case "import":
			p.advance()
			p.skipBalanced("(", ")")
			for p.accept(".") {
				p.advance()
			}
			if p.peek().punct("<") {
				p.skipBalanced("<", ">")
			}
			return unsupported("import", t.pos), nil
		case "new", "abstract":
			return p.functionType()
		}
		if keywords[t.text] {
			p.advance()
			return &domain.TypeNode{Kind: domain.KindKeyword, Pos: t.pos, Name: t.text}, nil
		}
	}

	// type predicate `x is T`
	if p.peekAt(1).ident("is") {
		p.advance()
		p.advance()
		if _, err := p.parseType(); err != nil {
			return nil, err
		}
		return unsupported("predicate", t.pos), nil
	}
	return p.typeReference()
}

// typeReference parses a dotted name with optional type arguments.
func (p *parser) typeReference() (*domain.TypeNode, error) {
	first, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	node := &domain.TypeNode{Kind: domain.KindReference, Pos: first.pos, Name: first.text}
	for p.peek().punct(".") && p.peekAt(1).kind == tokIdent {
		p.advance()
		node.Name += "." + p.advance().text
	}

	if p.peek().punct("<") && !p.peek().nl {
		p.advance()
		for !p.accept(">") {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			node.Args = append(node.Args, arg)
			if !p.accept(",") && !p.peek().punct(">") {
				t := p.peek()
				return nil, p.errorf(t, "expected \",\" or \">\" in type arguments, found %q", t.text)
			}
		}
	}
	return node, nil
}

func (p *parser) tupleType(open token) (*domain.TypeNode, error) {
	node := &domain.TypeNode{Kind: domain.KindTuple, Pos: open.pos}
	for !p.accept("]") {
		p.accept("...")
		if p.peek().kind == tokIdent && (p.peekAt(1).punct(":") || (p.peekAt(1).punct("?") && p.peekAt(2).punct(":"))) {
			p.advance()
			p.accept("?")
			p.advance()
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.accept("?")
		node.Types = append(node.Types, elem)
		if !p.accept(",") && !p.peek().punct("]") {
			t := p.peek()
			return nil, p.errorf(t, "expected \",\" in tuple, found %q", t.text)
		}
	}
	return node, nil
}

func (p *parser) templateType(t token) (*domain.TypeNode, error) {
	node := &domain.TypeNode{Kind: domain.KindTemplate, Pos: t.pos, Parts: t.parts}
	for i, expr := range t.exprs {
		toks, err := tokenize(p.file, expr, t.exprPos[i].Line, t.exprPos[i].Column)
		if err != nil {
			return nil, err
		}
		sub := &parser{toks: toks, file: p.file, doc: p.doc}
		span, err := sub.parseType()
		if err != nil {
			return nil, err
		}
		if end := sub.peek(); end.kind != tokEOF {
			return nil, sub.errorf(end, "unexpected %q in template span", end.text)
		}
		node.Types = append(node.Types, span)
	}
	return node, nil
}

func (p *parser) functionType() (*domain.TypeNode, error) {
	start := p.peek()
	p.acceptIdent("abstract")
	p.acceptIdent("new")
	if p.peek().punct("<") {
		p.skipBalanced("<", ">")
	}
	p.skipBalanced("(", ")")
	if err := p.expect("=>"); err != nil {
		return nil, err
	}
	if _, err := p.parseType(); err != nil {
		return nil, err
	}
	return unsupported("function", start.pos), nil
}

// members parses object members up to and including the closing brace.
func (p *parser) members() ([]*domain.Property, error) {
	var props []*domain.Property
	for {
		t := p.peek()
		if t.kind == tokEOF {
			return nil, p.errorf(t, "expected \"}\"")
		}
		if p.accept("}") {
			return props, nil
		}
		if p.accept(";") || p.accept(",") {
			continue
		}

		prop, err := p.member()
		if err != nil {
			return nil, err
		}
		if prop != nil {
			props = append(props, prop)
		}
	}
}

func (p *parser) member() (*domain.Property, error) {
	first := p.peek()
	description, tags := parseDocs(first.docs)

	readonly := false
	if first.ident("readonly") && isMemberName(p.peekAt(1)) {
		p.advance()
		readonly = true
	}
	if p.peek().punct("-") || p.peek().punct("+") {
		p.advance()
		p.acceptIdent("readonly")
	}

	t := p.peek()
	switch {
	case t.punct("["):
		// index signature
		p.skipBalanced("[", "]")
		p.accept("?")
		if p.accept(":") {
			if _, err := p.parseType(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	case t.punct("("), t.punct("<"), t.ident("new") && (p.peekAt(1).punct("(") || p.peekAt(1).punct("<")):
		p.acceptIdent("new")
		return nil, p.signature()
	case (t.ident("get") || t.ident("set")) && isMemberName(p.peekAt(1)):
		p.advance()
		p.advance()
		return nil, p.signature()
	case !isMemberName(t):
		return nil, p.errorf(t, "unexpected %q in type members", t.text)
	}

	name := p.advance()
	prop := &domain.Property{
		Name:        name.text,
		Readonly:    readonly,
		Description: description,
		Tags:        tags,
		Pos:         name.pos,
	}
	if p.accept("?") {
		prop.Optional = true
	}

	switch {
	case p.peek().punct("("), p.peek().punct("<"):
		return nil, p.signature()
	case p.accept(":"):
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		prop.Type = typ
	default:
		prop.Type = &domain.TypeNode{Kind: domain.KindKeyword, Pos: name.pos, Name: "any"}
	}
	return prop, nil
}

// signature skips a call or method signature.
func (p *parser) signature() error {
	if p.peek().punct("<") {
		p.skipBalanced("<", ">")
	}
	if !p.peek().punct("(") {
		return p.errorf(p.peek(), "expected \"(\" in signature")
	}
	p.skipBalanced("(", ")")
	if p.accept(":") {
		if _, err := p.parseType(); err != nil {
			return err
		}
	}
	return nil
}

// mappedTypeAhead reports whether the object type at the cursor starts with `{ [K in`.
func (p *parser) mappedTypeAhead() bool {
	i := 1
	if p.peekAt(i).punct("+") || p.peekAt(i).punct("-") {
		i++
	}
	if p.peekAt(i).ident("readonly") {
		i++
	}
	return p.peekAt(i).punct("[") && p.peekAt(i+1).kind == tokIdent && p.peekAt(i+2).ident("in")
}

// skipBalanced skips from the opening token to its matching close token.
// It is a no-op when the next token is not open.
func (p *parser) skipBalanced(open, close string) {
	if !p.peek().punct(open) {
		return
	}
	depth := 0
	for {
		t := p.advance()
		if t.kind == tokEOF {
			return
		}
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func isFunctionTypeStart(p *parser) bool {
	t := p.peek()
	if t.ident("new") || (t.ident("abstract") && p.peekAt(1).ident("new")) {
		return true
	}
	if t.punct("<") {
		return true
	}
	if !t.punct("(") {
		return false
	}

	depth := 0
	for i := 0; ; i++ {
		tok := p.peekAt(i)
		if tok.kind == tokEOF {
			return false
		}
		if tok.kind != tokPunct {
			continue
		}
		switch tok.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				return p.peekAt(i + 1).punct("=>")
			}
		}
	}
}

func isMemberName(t token) bool {
	return t.kind == tokIdent || t.kind == tokString || t.kind == tokNumber
}

func literal(value interface{}, pos domain.Position) *domain.TypeNode {
	return &domain.TypeNode{Kind: domain.KindLiteral, Pos: pos, Value: value}
}

func unsupported(name string, pos domain.Position) *domain.TypeNode {
	return &domain.TypeNode{Kind: domain.KindUnsupported, Pos: pos, Name: name}
}
