package schema

import (
	"github.com/go-openapi/spec"
)

// Transform rebuilds a schema tree, calling fn on every node before its children.
// When fn reports done the returned node replaces the subtree as is; otherwise
// its children are transformed in turn. Containers are always copied, the
// input tree is never modified.
func Transform(s spec.Schema, fn func(spec.Schema) (spec.Schema, bool)) spec.Schema {
	if fn != nil {
		var done bool
		if s, done = fn(s); done {
			return s
		}
	}
	return MapChildren(s, func(child spec.Schema) spec.Schema {
		return Transform(child, fn)
	})
}

// MapChildren returns a copy of s with fn applied to each direct child schema.
func MapChildren(s spec.Schema, fn func(spec.Schema) spec.Schema) spec.Schema {
	if s.Required != nil {
		s.Required = append([]string(nil), s.Required...)
	}
	if s.Enum != nil {
		s.Enum = append([]interface{}(nil), s.Enum...)
	}
	if s.Type != nil {
		s.Type = append(spec.StringOrArray(nil), s.Type...)
	}

	if s.Properties != nil {
		props := make(spec.SchemaProperties, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = fn(prop)
		}
		s.Properties = props
	}

	if s.Items != nil {
		items := &spec.SchemaOrArray{}
		if s.Items.Schema != nil {
			item := fn(*s.Items.Schema)
			items.Schema = &item
		}
		if s.Items.Schemas != nil {
			items.Schemas = mapList(s.Items.Schemas, fn)
		}
		s.Items = items
	}

	if s.AdditionalProperties != nil {
		additional := &spec.SchemaOrBool{Allows: s.AdditionalProperties.Allows}
		if s.AdditionalProperties.Schema != nil {
			value := fn(*s.AdditionalProperties.Schema)
			additional.Schema = &value
		}
		s.AdditionalProperties = additional
	}

	s.AllOf = mapList(s.AllOf, fn)
	s.AnyOf = mapList(s.AnyOf, fn)
	s.OneOf = mapList(s.OneOf, fn)

	if s.Not != nil {
		not := fn(*s.Not)
		s.Not = &not
	}

	if s.Definitions != nil {
		defs := make(spec.Definitions, len(s.Definitions))
		for name, def := range s.Definitions {
			defs[name] = fn(def)
		}
		s.Definitions = defs
	}

	if s.Extensions != nil {
		ext := make(spec.Extensions, len(s.Extensions))
		for k, v := range s.Extensions {
			ext[k] = v
		}
		s.Extensions = ext
	}

	if s.ExtraProps != nil {
		namespace := IsNamespace(s)
		extra := make(map[string]interface{}, len(s.ExtraProps))
		for k, v := range s.ExtraProps {
			_, keyword := schemaKeywords[k]
			if keyword || namespace {
				if child, ok := ValueSchema(v); ok {
					extra[k] = fn(child)
					continue
				}
			}
			extra[k] = v
		}
		s.ExtraProps = extra
	}

	return s
}

func mapList(list []spec.Schema, fn func(spec.Schema) spec.Schema) []spec.Schema {
	if list == nil {
		return nil
	}
	out := make([]spec.Schema, 0, len(list))
	for _, item := range list {
		out = append(out, fn(item))
	}
	return out
}

// Clone returns a deep copy of s.
func Clone(s spec.Schema) spec.Schema {
	return Transform(s, nil)
}

// Walk calls fn for every node of the tree, parents first.
func Walk(s spec.Schema, fn func(spec.Schema)) {
	Transform(s, func(node spec.Schema) (spec.Schema, bool) {
		fn(node)
		return node, false
	})
}
