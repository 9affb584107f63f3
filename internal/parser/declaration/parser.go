// Package declaration parses the declaration subset of TypeScript sources into
// the domain model: interfaces, type aliases, enums, namespaces, imports and
// re-exports, with their documentation comments and source positions.
package declaration

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/griffnb/tsschema/internal/domain"
)

// ParseFile reads and parses a source file.
func ParseFile(path string) (*domain.Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(path, src)
}

// ParseSource parses source text attributed to path.
func ParseSource(path string, src []byte) (*domain.Document, error) {
	toks, err := tokenize(path, string(src), 1, 1)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, file: path}
	doc := &domain.Document{
		Path:   path,
		Digest: xxhash.Sum64(src),
	}
	p.doc = doc

	decls, err := p.statements(false)
	if err != nil {
		return nil, err
	}
	doc.Declarations = mergeDeclarations(append(decls, p.globals...))
	return doc, nil
}

type parser struct {
	toks []token
	i    int
	file string
	doc  *domain.Document

	// globals collects declarations of `declare global` blocks.
	globals []*domain.Declaration
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) peekAt(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) advance() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) accept(text string) bool {
	if t := p.peek(); t.kind == tokPunct && t.text == text {
		p.i++
		return true
	}
	return false
}

func (p *parser) acceptIdent(text string) bool {
	if p.peek().ident(text) {
		p.i++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if p.accept(text) {
		return nil
	}
	t := p.peek()
	return p.errorf(t, "expected %q, found %q", text, t.text)
}

func (p *parser) expectIdent() (token, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return t, p.errorf(t, "expected identifier, found %q", t.text)
	}
	p.i++
	return t, nil
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	if t.kind == tokEOF {
		return &SyntaxError{Pos: t.pos, Msg: "unexpected end of file: " + fmt.Sprintf(format, args...)}
	}
	return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// statements parses a statement list up to EOF or, when nested, the closing brace.
func (p *parser) statements(nested bool) ([]*domain.Declaration, error) {
	var decls []*domain.Declaration
	for {
		t := p.peek()
		if t.kind == tokEOF {
			if nested {
				return nil, p.errorf(t, "expected \"}\"")
			}
			return decls, nil
		}
		if nested && t.punct("}") {
			return decls, nil
		}

		decl, err := p.statement()
		if err != nil {
			return nil, err
		}
		if decl != nil {
			decls = append(decls, decl)
		}
	}
}

func (p *parser) statement() (*domain.Declaration, error) {
	first := p.peek()
	description, tags := parseDocs(first.docs)

	var exported, isDefault bool
	for {
		t := p.peek()
		switch {
		case t.ident("export"):
			p.advance()
			exported = true
			if p.peek().ident("type") && (p.peekAt(1).punct("{") || p.peekAt(1).punct("*")) {
				p.advance()
			}
			next := p.peek()
			switch {
			case next.punct("{"), next.punct("*"):
				return nil, p.exportClause()
			case next.punct("="), next.ident("as"), next.ident("import"):
				p.skipStatement()
				return nil, nil
			}
			continue
		case t.ident("default") && exported:
			p.advance()
			isDefault = true
			if next := p.peek(); next.kind == tokIdent && isStatementEnd(p.peekAt(1)) && !isDeclarationKeyword(next.text) {
				p.advance()
				p.accept(";")
				p.doc.Exports = append(p.doc.Exports, domain.Import{Local: "default", Imported: next.text, Pos: next.pos})
				return nil, nil
			}
			continue
		case t.ident("declare"), t.ident("abstract"), t.ident("async"):
			p.advance()
			continue
		}
		break
	}

	t := p.peek()
	var (
		decl *domain.Declaration
		err  error
	)
	switch {
	case t.punct(";"):
		p.advance()
		return nil, nil
	case t.ident("import") && !p.peekAt(1).punct("("):
		return nil, p.importClause()
	case t.ident("interface") && p.peekAt(1).kind == tokIdent:
		decl, err = p.interfaceDecl()
	case t.ident("type") && p.peekAt(1).kind == tokIdent && (p.peekAt(2).punct("=") || p.peekAt(2).punct("<")):
		decl, err = p.aliasDecl()
	case t.ident("enum") || (t.ident("const") && p.peekAt(1).ident("enum")):
		decl, err = p.enumDecl()
	case (t.ident("namespace") || t.ident("module")) && p.peekAt(1).kind == tokIdent:
		decl, err = p.namespaceDecl()
	case t.ident("global") && p.peekAt(1).punct("{"):
		p.advance()
		p.advance()
		children, err := p.statements(true)
		if err != nil {
			return nil, err
		}
		p.advance()
		p.globals = append(p.globals, children...)
		return nil, nil
	default:
		p.skipStatement()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	decl.Exported = exported
	decl.Default = isDefault
	decl.Description = description
	decl.Tags = tags
	return decl, nil
}

func (p *parser) interfaceDecl() (*domain.Declaration, error) {
	p.advance()
	name := p.advance()
	decl := &domain.Declaration{Kind: domain.DeclInterface, Name: name.text, Pos: name.pos}

	params, err := p.typeParams()
	if err != nil {
		return nil, err
	}
	decl.TypeParams = params

	if p.acceptIdent("extends") {
		for {
			ext, err := p.typeReference()
			if err != nil {
				return nil, err
			}
			decl.Extends = append(decl.Extends, ext)
			if !p.accept(",") {
				break
			}
		}
	}

	if err := p.expect("{"); err != nil {
		return nil, err
	}
	props, err := p.members()
	if err != nil {
		return nil, err
	}
	decl.Properties = props
	return decl, nil
}

func (p *parser) aliasDecl() (*domain.Declaration, error) {
	p.advance()
	name := p.advance()
	decl := &domain.Declaration{Kind: domain.DeclAlias, Name: name.text, Pos: name.pos}

	params, err := p.typeParams()
	if err != nil {
		return nil, err
	}
	decl.TypeParams = params

	if err := p.expect("="); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	decl.Type = typ
	p.accept(";")
	return decl, nil
}

func (p *parser) enumDecl() (*domain.Declaration, error) {
	p.acceptIdent("const")
	p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	decl := &domain.Declaration{Kind: domain.DeclEnum, Name: name.text, Pos: name.pos}
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	var next interface{} = float64(0)
	for !p.accept("}") {
		t := p.advance()
		if t.kind != tokIdent && t.kind != tokString && t.kind != tokNumber {
			return nil, p.errorf(t, "unexpected %q in enum %s", t.text, decl.Name)
		}
		member := domain.EnumMember{Name: t.text, Pos: t.pos}

		if p.accept("=") {
			member.Value = p.enumInitializer()
		} else {
			member.Value = next
		}

		if v, ok := member.Value.(float64); ok {
			next = v + 1
		} else {
			next = nil
		}
		decl.Members = append(decl.Members, member)

		if !p.accept(",") && !p.peek().punct("}") {
			t := p.peek()
			return nil, p.errorf(t, "expected \",\" in enum %s, found %q", decl.Name, t.text)
		}
	}
	return decl, nil
}

// enumInitializer returns the literal value of a member initializer, or nil for
// computed initializers which are skipped.
func (p *parser) enumInitializer() interface{} {
	negative := p.accept("-")
	t := p.peek()
	end := p.peekAt(1)
	if end.punct(",") || end.punct("}") {
		switch t.kind {
		case tokString:
			p.advance()
			return t.text
		case tokNumber:
			p.advance()
			if v, err := parseNumber(t.text); err == nil {
				if negative {
					return -v
				}
				return v
			}
			return nil
		}
	}

	depth := 0
	for {
		t := p.peek()
		if t.kind == tokEOF {
			return nil
		}
		if depth == 0 && (t.punct(",") || t.punct("}")) {
			return nil
		}
		switch t.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		}
		p.advance()
	}
}

func (p *parser) namespaceDecl() (*domain.Declaration, error) {
	p.advance()
	name := p.advance()
	root := &domain.Declaration{Kind: domain.DeclNamespace, Name: name.text, Pos: name.pos}

	inner := root
	for p.accept(".") {
		part, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		child := &domain.Declaration{Kind: domain.DeclNamespace, Name: part.text, Pos: part.pos, Exported: true}
		inner.Children = []*domain.Declaration{child}
		inner = child
	}

	if err := p.expect("{"); err != nil {
		return nil, err
	}
	children, err := p.statements(true)
	if err != nil {
		return nil, err
	}
	p.advance()
	inner.Children = mergeDeclarations(children)
	return root, nil
}

func (p *parser) typeParams() ([]domain.TypeParam, error) {
	if !p.accept("<") {
		return nil, nil
	}
	var params []domain.TypeParam
	for !p.accept(">") {
		p.acceptIdent("const")
		p.acceptIdent("in")
		p.acceptIdent("out")
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		param := domain.TypeParam{Name: name.text}
		if p.acceptIdent("extends") {
			if _, err := p.parseType(); err != nil {
				return nil, err
			}
		}
		if p.accept("=") {
			def, err := p.parseType()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)
		if !p.accept(",") && !p.peek().punct(">") {
			t := p.peek()
			return nil, p.errorf(t, "expected \",\" or \">\" in type parameters, found %q", t.text)
		}
	}
	return params, nil
}

func (p *parser) importClause() error {
	start := p.advance()
	p.acceptIdent("type")

	// import 'side-effect'
	if t := p.peek(); t.kind == tokString {
		p.advance()
		p.accept(";")
		return nil
	}

	var bindings []domain.Import
	if t := p.peek(); t.kind == tokIdent && !t.ident("from") {
		if p.peekAt(1).punct("=") {
			p.skipStatement()
			return nil
		}
		p.advance()
		bindings = append(bindings, domain.Import{Local: t.text, Imported: "default", Pos: t.pos})
		p.accept(",")
	}
	if p.accept("*") {
		if !p.acceptIdent("as") {
			return p.errorf(p.peek(), "expected \"as\" in namespace import")
		}
		local, err := p.expectIdent()
		if err != nil {
			return err
		}
		bindings = append(bindings, domain.Import{Local: local.text, Imported: "*", Pos: local.pos})
	}
	if p.accept("{") {
		specs, err := p.specifiers()
		if err != nil {
			return err
		}
		for _, spec := range specs {
			bindings = append(bindings, domain.Import{Local: spec.Local, Imported: spec.Imported, Pos: spec.Pos})
		}
	}

	if !p.acceptIdent("from") {
		return p.errorf(p.peek(), "expected \"from\" in import at %s", start.pos)
	}
	from := p.advance()
	if from.kind != tokString {
		return p.errorf(from, "expected module specifier")
	}
	p.accept(";")

	for _, b := range bindings {
		b.From = from.text
		p.doc.Imports = append(p.doc.Imports, b)
	}
	return nil
}

// specifiers parses `a, b as c, type d }` after the opening brace.
// Local is the name on the right of `as`.
func (p *parser) specifiers() ([]domain.Import, error) {
	var specs []domain.Import
	for !p.accept("}") {
		if p.peek().ident("type") && p.peekAt(1).kind != tokPunct {
			p.advance()
		}
		t := p.advance()
		if t.kind != tokIdent && t.kind != tokString {
			return nil, p.errorf(t, "unexpected %q in specifier list", t.text)
		}
		spec := domain.Import{Local: t.text, Imported: t.text, Pos: t.pos}
		if p.acceptIdent("as") {
			alias := p.advance()
			spec.Local = alias.text
		}
		specs = append(specs, spec)
		if !p.accept(",") && !p.peek().punct("}") {
			t := p.peek()
			return nil, p.errorf(t, "expected \",\" in specifier list, found %q", t.text)
		}
	}
	return specs, nil
}

func (p *parser) exportClause() error {
	var specs []domain.Import
	if p.accept("*") {
		spec := domain.Import{Local: "*", Imported: "*", Pos: p.peek().pos}
		if p.acceptIdent("as") {
			alias := p.advance()
			spec.Local = alias.text
		}
		specs = append(specs, spec)
	} else {
		p.advance()
		var err error
		if specs, err = p.specifiers(); err != nil {
			return err
		}
	}

	from := ""
	if p.acceptIdent("from") {
		t := p.advance()
		if t.kind != tokString {
			return p.errorf(t, "expected module specifier")
		}
		from = t.text
	}
	p.accept(";")

	for _, spec := range specs {
		spec.From = from
		p.doc.Exports = append(p.doc.Exports, spec)
	}
	return nil
}

// skipStatement skips a value statement such as const, function or class.
func (p *parser) skipStatement() {
	first := p.advance()
	block := first.ident("function") || first.ident("class")
	depth := 0
	for {
		t := p.peek()
		if t.kind == tokEOF {
			return
		}
		if depth == 0 {
			if t.punct(";") {
				p.advance()
				return
			}
			if t.punct("}") {
				return
			}
			if t.nl && startsStatement(t) {
				return
			}
		}
		switch t.text {
		case "(", "[", "{":
			if t.kind == tokPunct {
				depth++
			}
		case ")", "]", "}":
			if t.kind == tokPunct {
				depth--
				if depth == 0 && block && t.text == "}" {
					p.advance()
					return
				}
			}
		}
		p.advance()
	}
}

func startsStatement(t token) bool {
	if t.kind != tokIdent {
		return false
	}
	switch t.text {
	case "export", "import", "interface", "type", "enum", "namespace", "module",
		"declare", "const", "let", "var", "function", "class", "abstract":
		return true
	}
	return false
}

func isDeclarationKeyword(text string) bool {
	switch text {
	case "interface", "type", "enum", "namespace", "module", "function", "class", "abstract", "async", "const":
		return true
	}
	return false
}

func isStatementEnd(t token) bool {
	return t.kind == tokEOF || t.punct(";") || t.punct("}") || t.nl
}

// mergeDeclarations merges same-named interfaces and namespaces in one scope.
func mergeDeclarations(decls []*domain.Declaration) []*domain.Declaration {
	seen := make(map[string]*domain.Declaration, len(decls))
	out := decls[:0]
	for _, decl := range decls {
		prev, ok := seen[decl.Name]
		if ok && prev.Kind == decl.Kind && (decl.Kind == domain.DeclInterface || decl.Kind == domain.DeclNamespace) {
			prev.Extends = append(prev.Extends, decl.Extends...)
			prev.Properties = append(prev.Properties, decl.Properties...)
			prev.Children = mergeDeclarations(append(prev.Children, decl.Children...))
			prev.Exported = prev.Exported || decl.Exported
			continue
		}
		if !ok {
			seen[decl.Name] = decl
		}
		out = append(out, decl)
	}
	return out
}
