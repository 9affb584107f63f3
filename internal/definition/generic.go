package definition

import (
	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/schema"
)

// instantiate synthesizes a generic declaration once and binds its parameters.
// Arguments are read in the caller's scope, defaults in the declaration's.
// A parameter without argument or default is bound to nothing.
func (r *Resolver) instantiate(sym domain.Symbol, args []*domain.TypeNode, f *frame) (*spec.Schema, error) {
	decl := sym.Declaration
	inner := f.enter(sym.ID, decl)

	bindings := make(map[string]*spec.Schema, len(decl.TypeParams))
	for i, param := range decl.TypeParams {
		var (
			bound *spec.Schema
			err   error
		)
		switch {
		case i < len(args):
			bound, err = r.synthesize(args[i], f)
		case param.Default != nil:
			bound, err = r.synthesize(param.Default, inner)
		}
		if err != nil {
			return nil, err
		}
		bindings[ParameterRef(param.Name)] = bound
	}

	body, err := r.declaration(decl, inner)
	if err != nil || body == nil {
		return body, err
	}
	out := Instantiate(*body, bindings)
	return &out, nil
}

// ParameterRef is the placeholder reference of a generic parameter.
func ParameterRef(name string) string {
	return schema.DefinitionsPrefix + domain.LowerName(name)
}

// Instantiate replaces the generic parameter placeholders of s by their bound
// schemas. Keys set on a placeholder override the bound schema. Properties,
// items and composition members bound to nil are removed. Placeholders of
// parameters missing from bindings are left for an enclosing instantiation.
func Instantiate(s spec.Schema, bindings map[string]*spec.Schema) spec.Schema {
	if bound, ok := lookupBinding(s, bindings); ok && bound == nil {
		return spec.Schema{}
	}
	return schema.Transform(s, func(node spec.Schema) (spec.Schema, bool) {
		if bound, ok := lookupBinding(node, bindings); ok {
			return schema.Override(schema.Clone(*bound), siblings(node)), true
		}
		return prune(node, bindings), false
	})
}

func lookupBinding(s spec.Schema, bindings map[string]*spec.Schema) (*spec.Schema, bool) {
	if !schema.IsTypeParameter(s) {
		return nil, false
	}
	bound, ok := bindings[schema.RefOf(s)]
	return bound, ok
}

func unbound(s spec.Schema, bindings map[string]*spec.Schema) bool {
	bound, ok := lookupBinding(s, bindings)
	return ok && bound == nil
}

// siblings returns the keys of a placeholder other than its reference.
func siblings(s spec.Schema) spec.Schema {
	s = schema.DropRef(s)
	ext := make(spec.Extensions, len(s.Extensions))
	for k, v := range s.Extensions {
		if k != schema.KeywordTypeParameter {
			ext[k] = v
		}
	}
	if len(ext) == 0 {
		ext = nil
	}
	s.Extensions = ext
	return s
}

// prune removes the direct children of s that are placeholders bound to nil.
func prune(s spec.Schema, bindings map[string]*spec.Schema) spec.Schema {
	if len(s.Properties) > 0 {
		var dropped map[string]struct{}
		props := make(spec.SchemaProperties, len(s.Properties))
		for name, prop := range s.Properties {
			if unbound(prop, bindings) {
				if dropped == nil {
					dropped = make(map[string]struct{})
				}
				dropped[name] = struct{}{}
				continue
			}
			props[name] = prop
		}
		if dropped != nil {
			s.Properties = props
			var required []string
			for _, name := range s.Required {
				if _, ok := dropped[name]; !ok {
					required = append(required, name)
				}
			}
			s.Required = required
		}
	}

	if s.Items != nil && s.Items.Schema != nil && unbound(*s.Items.Schema, bindings) {
		s.Items = nil
	}
	if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil && unbound(*s.AdditionalProperties.Schema, bindings) {
		s.AdditionalProperties = &spec.SchemaOrBool{Allows: true, Schema: &spec.Schema{}}
	}

	s.AllOf = pruneList(s.AllOf, bindings)
	s.AnyOf = pruneList(s.AnyOf, bindings)
	s.OneOf = pruneList(s.OneOf, bindings)
	return s
}

func pruneList(list []spec.Schema, bindings map[string]*spec.Schema) []spec.Schema {
	if len(list) == 0 {
		return list
	}
	var out []spec.Schema
	for _, item := range list {
		if !unbound(item, bindings) {
			out = append(out, item)
		}
	}
	return out
}
