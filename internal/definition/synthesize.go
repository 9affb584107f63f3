package definition

import (
	"fmt"
	"strconv"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/schema"
)

const ignoreTag = "ignore"

// synthesize maps a type expression to its schema. A nil schema without an
// error marks an unsupported construct; the caller drops it.
func (r *Resolver) synthesize(node *domain.TypeNode, f *frame) (*spec.Schema, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case domain.KindKeyword:
		return keyword(node.Name), nil
	case domain.KindLiteral:
		s := schema.ConstSchema(node.Value)
		return &s, nil
	case domain.KindTemplate:
		value, ok := r.symbols.EvaluateLiteral(f.scope, node)
		if !ok {
			r.logger.Debugf("%s: template literal does not reduce to a literal", node.Pos)
			return nil, nil
		}
		s := schema.ConstSchema(value)
		return &s, nil
	case domain.KindUnion:
		if values, ok := literals(node.Types); ok {
			s := schema.EnumSchema(values)
			return &s, nil
		}
		members, err := r.members(node.Types, f)
		if err != nil || len(members) == 0 {
			return nil, err
		}
		return &spec.Schema{SchemaProps: spec.SchemaProps{OneOf: members}}, nil
	case domain.KindIntersection:
		members, err := r.members(node.Types, f)
		if err != nil || len(members) == 0 {
			return nil, err
		}
		return &spec.Schema{SchemaProps: spec.SchemaProps{AllOf: members}}, nil
	case domain.KindArray:
		items, err := r.synthesize(node.Elem, f)
		if err != nil {
			return nil, err
		}
		s := schema.ArraySchema(items)
		return &s, nil
	case domain.KindObjectLiteral:
		s := r.object(node.Properties, f)
		return &s, nil
	case domain.KindIndexedAccess:
		return r.indexedAccess(node, f)
	case domain.KindReference:
		return r.reference(node, f)
	}

	r.logger.Debugf("%s: unsupported %s type", node.Pos, node.Name)
	return nil, nil
}

func keyword(name string) *spec.Schema {
	switch name {
	case domain.STRING, domain.NUMBER, domain.BOOLEAN, domain.OBJECT, domain.NULL:
		s := schema.PrimitiveSchema(name)
		return &s
	}
	return nil
}

// literals returns the values of a list made only of literals.
func literals(nodes []*domain.TypeNode) ([]interface{}, bool) {
	values := make([]interface{}, 0, len(nodes))
	for _, node := range nodes {
		if node.Kind != domain.KindLiteral {
			return nil, false
		}
		values = append(values, node.Value)
	}
	return values, len(values) > 0
}

// members synthesizes every member of a composition, dropping the absent ones.
func (r *Resolver) members(nodes []*domain.TypeNode, f *frame) ([]spec.Schema, error) {
	out := make([]spec.Schema, 0, len(nodes))
	for _, node := range nodes {
		s, err := r.synthesize(node, f)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

// object builds the schema of a property list.
func (r *Resolver) object(props []*domain.Property, f *frame) spec.Schema {
	properties := make(map[string]spec.Schema, len(props))
	var required []string
	for _, prop := range props {
		s, ok := r.property(prop, f)
		if !ok {
			continue
		}
		if _, seen := properties[prop.Name]; !seen && !prop.Optional {
			required = append(required, prop.Name)
		}
		properties[prop.Name] = s
	}
	return schema.ObjectSchema(properties, required)
}

// property runs the per-property pipeline: synthesis, tags, description, hooks.
// Failures are logged and the property is left out.
func (r *Resolver) property(prop *domain.Property, f *frame) (spec.Schema, bool) {
	if prop.Tags.Has(ignoreTag) {
		return spec.Schema{}, false
	}

	s, err := r.synthesize(prop.Type, f)
	if err != nil {
		f.fail(domain.NewFailure(domain.FailureProperty, prop.Pos, prop.Name, err))
		r.logger.Warn("get schema failed, property ignored",
			"file", prop.Pos.File, "line", prop.Pos.Line, "column", prop.Pos.Column,
			"property", prop.Name, "err", err)
		return spec.Schema{}, false
	}
	if s == nil {
		r.logger.Debugf("%s: property %s has no schema", prop.Pos, prop.Name)
		return spec.Schema{}, false
	}

	out := r.describe(*s, prop.Description, prop.Tags, prop.Pos)

	ctx := domain.PropertyContext{Owner: f.owner, Property: prop}
	for _, hook := range r.opts.Hooks {
		if hook.BeforeMount(ctx, out) {
			return spec.Schema{}, false
		}
	}
	for _, hook := range r.opts.Hooks {
		hook.AfterMount(ctx, out)
	}
	return out, true
}

// indexedAccess turns T['a']['b'] into a reference to T's nested property.
func (r *Resolver) indexedAccess(node *domain.TypeNode, f *frame) (*spec.Schema, error) {
	var segments []string
	base := node
	for base.Kind == domain.KindIndexedAccess {
		key, ok := r.literalKey(base.Index, f)
		if !ok {
			r.logger.Debugf("%s: indexed access needs a literal key", base.Pos)
			return nil, nil
		}
		segments = append([]string{"properties", key}, segments...)
		base = base.Elem
	}

	target, err := r.synthesize(base, f)
	if err != nil || target == nil {
		return nil, err
	}
	if !schema.IsRefSchema(*target) || schema.IsTypeParameter(*target) {
		r.logger.Debugf("%s: indexed access on a type without a definition", node.Pos)
		return nil, nil
	}
	s := schema.RefSchema(schema.AppendRef(schema.RefOf(*target), segments...))
	return &s, nil
}

// literalKey reduces an index or key type to a property name.
func (r *Resolver) literalKey(node *domain.TypeNode, f *frame) (string, bool) {
	if node == nil {
		return "", false
	}
	value, ok := r.symbols.EvaluateLiteral(f.scope, node)
	if !ok {
		return "", false
	}
	return keyText(value)
}

func keyText(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return fmt.Sprint(value), value != nil
}
