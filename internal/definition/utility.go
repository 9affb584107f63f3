package definition

import (
	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/schema"
)

// record builds the keyed map of Record<K, V>. A value without a schema
// allows anything.
func (r *Resolver) record(node *domain.TypeNode, f *frame) (*spec.Schema, error) {
	s := schema.PrimitiveSchema(domain.OBJECT)

	if len(node.Args) > 0 {
		keys, err := r.synthesize(node.Args[0], f)
		if err != nil {
			return nil, err
		}
		if keys != nil {
			s = schema.SetPropertyNames(s, *keys)
		}
	}

	value := &spec.Schema{}
	if len(node.Args) > 1 {
		v, err := r.synthesize(node.Args[1], f)
		if err != nil {
			return nil, err
		}
		if v != nil {
			value = v
		}
	}
	s.AdditionalProperties = &spec.SchemaOrBool{Allows: true, Schema: value}
	return &s, nil
}

// selectProperties implements Pick<T, K> and Omit<T, K>. The names come from
// the const or enum of K's schema.
func (r *Resolver) selectProperties(node *domain.TypeNode, f *frame, pick bool) (*spec.Schema, error) {
	if len(node.Args) < 2 {
		r.logger.Debugf("%s: %s needs two type arguments", node.Pos, node.Name)
		return nil, nil
	}

	base, err := r.expand(node.Args[0], f)
	if err != nil || base == nil {
		return nil, err
	}
	keys, err := r.synthesize(node.Args[1], f)
	if err != nil || keys == nil {
		return nil, err
	}

	names := keyNames(*keys)
	if pick {
		s := Pick(*base, names)
		return &s, nil
	}
	s := Omit(*base, names)
	return &s, nil
}

// expand synthesizes the declaration referenced by node in place, extended
// declarations included.
func (r *Resolver) expand(node *domain.TypeNode, f *frame) (*spec.Schema, error) {
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
	if f.visiting(sym.ID) {
		r.logger.Debugf("%s: recursive reference to %s omitted", node.Pos, node.Name)
		return nil, nil
	}
	if sym.Declaration.Generic() {
		return r.instantiate(sym, node.Args, f)
	}
	inner := f.enter(sym.ID, sym.Declaration)
	inner.expand = true
	return r.declaration(sym.Declaration, inner)
}

// keyNames reads property names from a const or enum schema.
func keyNames(s spec.Schema) []string {
	if value, ok := schema.Const(s); ok {
		if name, ok := keyText(value); ok {
			return []string{name}
		}
		return nil
	}
	names := make([]string, 0, len(s.Enum))
	for _, value := range s.Enum {
		if name, ok := keyText(value); ok {
			names = append(names, name)
		}
	}
	return names
}

// Pick keeps the named properties of an object schema and the required
// names among them.
func Pick(s spec.Schema, names []string) spec.Schema {
	return selectNames(s, names, true)
}

// Omit removes the named properties of an object schema from properties and required.
func Omit(s spec.Schema, names []string) spec.Schema {
	return selectNames(s, names, false)
}

func selectNames(s spec.Schema, names []string, keep bool) spec.Schema {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	props, required := objectParts(s)
	selected := make(map[string]spec.Schema, len(props))
	for name, prop := range props {
		if _, ok := set[name]; ok == keep {
			selected[name] = prop
		}
	}
	var req []string
	for _, name := range required {
		if _, ok := set[name]; ok == keep {
			req = append(req, name)
		}
	}
	return schema.ObjectSchema(selected, req)
}

// objectParts returns the properties and required names of an object schema.
// Members of an extension anyOf contribute in order, later ones winning.
func objectParts(s spec.Schema) (map[string]spec.Schema, []string) {
	if len(s.AnyOf) == 0 {
		return s.Properties, s.Required
	}
	props := make(map[string]spec.Schema)
	var required []string
	seen := make(map[string]struct{})
	for _, member := range append(append([]spec.Schema(nil), s.AnyOf...), s) {
		for name, prop := range member.Properties {
			props[name] = prop
		}
		for _, name := range member.Required {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				required = append(required, name)
			}
		}
	}
	return props, required
}
