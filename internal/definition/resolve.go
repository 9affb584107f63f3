package definition

import (
	"errors"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/schema"
)

// Built-in nominal names, checked before any user declaration.
const (
	builtinArray    = "Array"
	builtinRecord   = "Record"
	builtinPick     = "Pick"
	builtinOmit     = "Omit"
	builtinInteger  = "integer"
	builtinNumberic = "numberic"
	builtinString   = "String"
	builtinObject   = "Object"
)

// reference synthesizes a nominal reference: a built-in, a generic parameter,
// an instantiated generic or a reference to a declaration.
func (r *Resolver) reference(node *domain.TypeNode, f *frame) (*spec.Schema, error) {
	if s, ok, err := r.builtin(node, f); ok || err != nil {
		return s, err
	}

	names := node.NamePath()
	if len(names) == 1 {
		if _, ok := f.params[names[0]]; ok {
			s := schema.TypeParameterSchema(schema.DefinitionsPrefix + domain.LowerName(names[0]))
			return &s, nil
		}
	}

	sym, ok, err := r.lookup(names, f)
	if err != nil || !ok {
		return nil, err
	}
	return r.nominal(sym, node, f, false)
}

// builtin handles the nominal names that have no user declaration.
func (r *Resolver) builtin(node *domain.TypeNode, f *frame) (*spec.Schema, bool, error) {
	var s spec.Schema
	switch node.Name {
	case builtinInteger:
		s = schema.PrimitiveSchema(domain.INTEGER)
	case builtinNumberic:
		s = schema.PrimitiveSchema(domain.STRING)
		s.Format = domain.FormatNumberic
	case builtinString:
		s = schema.PrimitiveSchema(domain.STRING)
	case builtinObject:
		s = schema.PrimitiveSchema(domain.OBJECT)
	case builtinArray:
		var items *spec.Schema
		if len(node.Args) > 0 {
			var err error
			if items, err = r.synthesize(node.Args[0], f); err != nil {
				return nil, true, err
			}
		}
		s = schema.ArraySchema(items)
	case builtinRecord:
		record, err := r.record(node, f)
		return record, true, err
	case builtinPick, builtinOmit:
		selected, err := r.selectProperties(node, f, node.Name == builtinPick)
		return selected, true, err
	default:
		return nil, false, nil
	}
	return &s, true, nil
}

// lookup resolves names from the frame's scope, then in the global documents,
// the last registered first. Names provided by the built-in library resolve
// to nothing.
func (r *Resolver) lookup(names []string, f *frame) (domain.Symbol, bool, error) {
	sym, err := r.symbols.Resolve(f.scope, names)
	if err == nil {
		return sym, !sym.Library, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Symbol{}, false, err
	}

	for i := len(r.opts.Globals) - 1; i >= 0; i-- {
		if sym, ok := r.symbols.Lookup(r.opts.Globals[i], names); ok {
			return sym, !sym.Library, nil
		}
	}

	if r.symbols.LibraryName(names[0]) {
		return domain.Symbol{}, false, nil
	}
	return domain.Symbol{}, false, err
}

// nominal references a resolved declaration. Generic declarations are
// instantiated in place. Other declarations become a reference and a pending
// expansion, unless they live in another document in document mode.
func (r *Resolver) nominal(sym domain.Symbol, node *domain.TypeNode, f *frame, inline bool) (*spec.Schema, error) {
	switch {
	case sym.Declaration.Kind == domain.DeclNamespace:
		r.logger.Debugf("%s: namespace %s used as a type", node.Pos, node.Name)
		return nil, nil
	case f.visiting(sym.ID):
		r.logger.Debugf("%s: recursive reference to %s omitted", node.Pos, node.Name)
		return nil, nil
	case sym.Declaration.Generic():
		return r.instantiate(sym, node.Args, f)
	}

	ref := r.Ref(sym.ID, f.origin)
	if r.opts.Mode == ModeDocument && sym.ID.Path != f.origin {
		s := schema.RefSchema(ref)
		return &s, nil
	}

	f.res.Deps = append(f.res.Deps, Pending{ID: sym.ID, Ref: ref, Inline: inline})
	var s spec.Schema
	if inline {
		s = schema.InlinePlaceholder(ref)
	} else {
		s = schema.RefSchema(ref)
	}
	return &s, nil
}

// extends synthesizes one extended declaration of an interface. In entry mode
// it is spliced inline.
func (r *Resolver) extends(node *domain.TypeNode, f *frame) (*spec.Schema, error) {
	if node.Kind != domain.KindReference {
		return r.synthesize(node, f)
	}
	if s, ok, err := r.builtin(node, f); ok || err != nil {
		return s, err
	}
	sym, ok, err := r.lookup(node.NamePath(), f)
	if err != nil || !ok {
		return nil, err
	}
	return r.nominal(sym, node, f, r.opts.Mode == ModeEntry)
}
