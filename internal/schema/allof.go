package schema

import (
	"github.com/go-openapi/spec"
)

// Combine merges b over a. When either side is an object the properties are
// merged key by key, shared keys combined recursively, and required is the
// union of both lists. Any other keyword set on b overrides a. allOf lists are
// concatenated.
func Combine(a, b spec.Schema) spec.Schema {
	ret := Override(Clone(a), b)
	if IsObject(a) || IsObject(b) {
		var props spec.SchemaProperties
		if len(a.Properties) > 0 || len(b.Properties) > 0 {
			props = make(spec.SchemaProperties, len(a.Properties)+len(b.Properties))
			for name, prop := range a.Properties {
				props[name] = prop
			}
			for name, prop := range b.Properties {
				if prev, ok := a.Properties[name]; ok {
					props[name] = Combine(prev, prop)
					continue
				}
				props[name] = prop
			}
		}
		ret.Properties = props
		ret.Required = unionRequired(a.Required, b.Required)
	}
	if len(a.AllOf) > 0 && len(b.AllOf) > 0 {
		ret.AllOf = append(append([]spec.Schema(nil), a.AllOf...), b.AllOf...)
	}
	return ret
}

// Override copies every keyword set on src onto dst.
func Override(dst spec.Schema, src spec.Schema) spec.Schema {
	if src.Ref.String() != "" {
		dst.Ref = src.Ref
	}
	if len(src.Type) > 0 {
		dst.Type = src.Type
	}
	if len(src.Properties) > 0 {
		dst.Properties = src.Properties
	}
	if len(src.Required) > 0 {
		dst.Required = src.Required
	}
	if src.Items != nil {
		dst.Items = src.Items
	}
	if src.AdditionalProperties != nil {
		dst.AdditionalProperties = src.AdditionalProperties
	}
	if len(src.AllOf) > 0 {
		dst.AllOf = src.AllOf
	}
	if len(src.AnyOf) > 0 {
		dst.AnyOf = src.AnyOf
	}
	if len(src.OneOf) > 0 {
		dst.OneOf = src.OneOf
	}
	if src.Not != nil {
		dst.Not = src.Not
	}
	if len(src.Definitions) > 0 {
		dst.Definitions = src.Definitions
	}
	if src.Schema != "" {
		dst.Schema = src.Schema
	}
	if len(src.Title) > 0 {
		dst.Title = src.Title
	}
	if len(src.Description) > 0 {
		dst.Description = src.Description
	}
	if src.Nullable {
		dst.Nullable = src.Nullable
	}
	if len(src.Format) > 0 {
		dst.Format = src.Format
	}
	if src.Default != nil {
		dst.Default = src.Default
	}
	if src.Example != nil {
		dst.Example = src.Example
	}
	if src.ReadOnly {
		dst.ReadOnly = src.ReadOnly
	}
	if src.Maximum != nil {
		dst.Maximum = src.Maximum
	}
	if src.Minimum != nil {
		dst.Minimum = src.Minimum
	}
	if src.ExclusiveMaximum {
		dst.ExclusiveMaximum = src.ExclusiveMaximum
	}
	if src.ExclusiveMinimum {
		dst.ExclusiveMinimum = src.ExclusiveMinimum
	}
	if src.MaxLength != nil {
		dst.MaxLength = src.MaxLength
	}
	if src.MinLength != nil {
		dst.MinLength = src.MinLength
	}
	if len(src.Pattern) > 0 {
		dst.Pattern = src.Pattern
	}
	if src.MaxItems != nil {
		dst.MaxItems = src.MaxItems
	}
	if src.MinItems != nil {
		dst.MinItems = src.MinItems
	}
	if src.UniqueItems {
		dst.UniqueItems = src.UniqueItems
	}
	if src.MultipleOf != nil {
		dst.MultipleOf = src.MultipleOf
	}
	if src.MaxProperties != nil {
		dst.MaxProperties = src.MaxProperties
	}
	if src.MinProperties != nil {
		dst.MinProperties = src.MinProperties
	}
	if len(src.Enum) > 0 {
		dst.Enum = src.Enum
	}
	if len(src.Extensions) > 0 {
		ext := make(spec.Extensions, len(dst.Extensions)+len(src.Extensions))
		for k, v := range dst.Extensions {
			ext[k] = v
		}
		for k, v := range src.Extensions {
			ext[k] = v
		}
		dst.Extensions = ext
	}
	for k, v := range src.ExtraProps {
		dst = SetExtra(dst, k, v)
	}
	return dst
}

func unionRequired(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
