package definition

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/parser/tags"
	"github.com/griffnb/tsschema/internal/schema"
)

// Resolver synthesizes declarations against one symbol table.
type Resolver struct {
	symbols   Symbols
	opts      Options
	logger    domain.Logger
	annotator *tags.Annotator
}

// NewResolver creates a resolver, applying option defaults.
func NewResolver(symbols Symbols, opts Options) *Resolver {
	if opts.IDFunc == nil {
		opts.IDFunc = DefaultID
	}
	if opts.FileKey == nil {
		opts.FileKey = FileKey
	}
	if opts.Logger == nil {
		opts.Logger = domain.NopLogger{}
	}
	return &Resolver{
		symbols:   symbols,
		opts:      opts,
		logger:    opts.Logger,
		annotator: tags.NewAnnotator(opts.Logger),
	}
}

// DefaultID names a document after its file stem.
func DefaultID(path string) string {
	return domain.FileStem(path) + ".json"
}

// FileKey returns the md5 hex digest of a file path.
func FileKey(path string) string {
	sum := md5.Sum([]byte(path))
	return hex.EncodeToString(sum[:])
}

// Mode returns the reference mode.
func (r *Resolver) Mode() Mode {
	return r.opts.Mode
}

// DocumentID returns the id of the document declared by path.
func (r *Resolver) DocumentID(path string) string {
	return r.opts.IDFunc(path)
}

// Ref returns the reference to a declaration written in the document at from.
func (r *Resolver) Ref(id domain.DeclID, from string) string {
	names := domain.LowerNames(id.Names)
	if r.opts.Mode == ModeEntry {
		return schema.JoinRef("", append([]string{r.opts.FileKey(id.Path)}, names...)...)
	}
	docID := ""
	if id.Path != from {
		docID = r.opts.IDFunc(id.Path)
	}
	return schema.JoinRef(docID, names...)
}

// Generate synthesizes the declaration with identity id. A namespace yields an
// empty namespace node whose children are returned as dependencies. Generic
// declarations are synthesized with their parameter defaults.
func (r *Resolver) Generate(id domain.DeclID) (Result, error) {
	decl, ok := r.symbols.Declaration(id)
	if !ok {
		return Result{}, domain.NewFailure(domain.FailureDeclaration, domain.Position{File: id.Path}, id.String(), domain.ErrNotFound)
	}

	var res Result
	if decl.Kind == domain.DeclNamespace {
		res.Schema = schema.NamespaceSchema()
		for _, child := range decl.Children {
			if child.Generic() {
				continue
			}
			childID := id.Child(child.Name)
			res.Deps = append(res.Deps, Pending{ID: childID, Ref: r.Ref(childID, id.Path)})
		}
		return res, nil
	}

	f := &frame{origin: id.Path, res: &res}
	var (
		s   *spec.Schema
		err error
	)
	if decl.Generic() {
		s, err = r.instantiate(domain.Symbol{ID: id, Declaration: decl}, nil, f)
	} else {
		s, err = r.declaration(decl, f.enter(id, decl))
	}
	if err != nil {
		return Result{}, domain.NewFailure(domain.FailureDeclaration, decl.Pos, id.String(), err)
	}
	if s != nil {
		res.Schema = *s
	}
	return res, nil
}

// Synthesize builds the schema of a type expression read in scope. A nil
// schema means the expression has no representation.
func (r *Resolver) Synthesize(node *domain.TypeNode, scope domain.Scope) (*spec.Schema, []Pending, error) {
	var res Result
	f := &frame{origin: scope.Path, scope: scope, res: &res}
	s, err := r.synthesize(node, f)
	return s, res.Deps, err
}

// declaration synthesizes decl in a frame already entered for it.
func (r *Resolver) declaration(decl *domain.Declaration, f *frame) (*spec.Schema, error) {
	switch decl.Kind {
	case domain.DeclInterface:
		return r.interfaceSchema(decl, f)
	case domain.DeclAlias:
		s, err := r.synthesize(decl.Type, f)
		if err != nil || s == nil {
			return s, err
		}
		out := r.describe(*s, decl.Description, decl.Tags, decl.Pos)
		return &out, nil
	case domain.DeclEnum:
		values := make([]interface{}, len(decl.Members))
		for i, member := range decl.Members {
			values[i] = member.Value
		}
		out := r.describe(schema.EnumSchema(values), decl.Description, decl.Tags, decl.Pos)
		return &out, nil
	case domain.DeclNamespace:
		out := schema.NamespaceSchema()
		return &out, nil
	}
	return nil, nil
}

// interfaceSchema builds the object of an interface. Extended declarations
// precede the own object in an anyOf.
func (r *Resolver) interfaceSchema(decl *domain.Declaration, f *frame) (*spec.Schema, error) {
	var members []spec.Schema
	for _, ext := range decl.Extends {
		var (
			s   *spec.Schema
			err error
		)
		if f.expand {
			s, err = r.expand(ext, f)
		} else {
			s, err = r.extends(ext, f)
		}
		if err != nil {
			return nil, err
		}
		if s != nil {
			members = append(members, *s)
		}
	}

	base := r.describe(r.object(decl.Properties, f), decl.Description, decl.Tags, decl.Pos)
	if len(members) == 0 {
		return &base, nil
	}
	return &spec.Schema{SchemaProps: spec.SchemaProps{AnyOf: append(members, base)}}, nil
}

// describe applies documentation tags and the leading description.
func (r *Resolver) describe(s spec.Schema, description string, docTags domain.Tags, pos domain.Position) spec.Schema {
	s = r.annotator.Annotate(s, docTags, pos)
	if description != "" {
		s.Description = description
	}
	return s
}

// frame is the state of one synthesis pass.
type frame struct {
	// origin is the document the result is written to.
	origin string
	scope  domain.Scope
	owner  domain.DeclID
	params map[string]struct{}
	// stack holds the declarations being expanded, outermost first.
	stack []string
	// expand inlines extended declarations instead of referencing them.
	expand bool
	res    *Result
}

// enter returns the frame for synthesizing decl inline.
func (f *frame) enter(id domain.DeclID, decl *domain.Declaration) *frame {
	params := make(map[string]struct{}, len(decl.TypeParams))
	for _, param := range decl.TypeParams {
		params[param.Name] = struct{}{}
	}
	stack := make([]string, 0, len(f.stack)+1)
	stack = append(append(stack, f.stack...), id.Key())

	var namespace []string
	if len(id.Names) > 1 {
		namespace = id.Names[:len(id.Names)-1]
	}
	return &frame{
		origin: f.origin,
		scope:  domain.Scope{Path: id.Path, Namespace: namespace},
		owner:  id,
		params: params,
		stack:  stack,
		res:    f.res,
	}
}

func (f *frame) visiting(id domain.DeclID) bool {
	key := id.Key()
	for _, item := range f.stack {
		if item == key {
			return true
		}
	}
	return false
}

func (f *frame) fail(failure *domain.Failure) {
	f.res.Failures = append(f.res.Failures, failure)
}
