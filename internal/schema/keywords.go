package schema

import (
	"github.com/go-openapi/spec"
)

// Keywords without a typed field on spec.Schema.
const (
	KeywordConst         = "const"
	KeywordPropertyNames = "propertyNames"
	KeywordData          = "$data"
	KeywordID            = "$id"
	KeywordIf            = "if"
	KeywordThen          = "then"
	KeywordElse          = "else"
	KeywordInline        = "$inline"
	KeywordTypeParameter = "x-type-parameter"
)

// schemaKeywords hold schemas inside ExtraProps.
var schemaKeywords = map[string]struct{}{
	KeywordPropertyNames: {},
	KeywordIf:            {},
	KeywordThen:          {},
	KeywordElse:          {},
	"contains":           {},
}

// Extra returns an ExtraProps value.
func Extra(s spec.Schema, key string) (interface{}, bool) {
	if s.ExtraProps == nil {
		return nil, false
	}
	v, ok := s.ExtraProps[key]
	return v, ok
}

// SetExtra returns s with an ExtraProps value set. The map is copied.
func SetExtra(s spec.Schema, key string, value interface{}) spec.Schema {
	extra := make(map[string]interface{}, len(s.ExtraProps)+1)
	for k, v := range s.ExtraProps {
		extra[k] = v
	}
	extra[key] = value
	s.ExtraProps = extra
	return s
}

// DeleteExtra returns s without an ExtraProps key.
func DeleteExtra(s spec.Schema, key string) spec.Schema {
	if _, ok := s.ExtraProps[key]; !ok {
		return s
	}
	extra := make(map[string]interface{}, len(s.ExtraProps))
	for k, v := range s.ExtraProps {
		if k != key {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		extra = nil
	}
	s.ExtraProps = extra
	return s
}

// ConstSchema builds {const: value}.
func ConstSchema(value interface{}) spec.Schema {
	return SetExtra(spec.Schema{}, KeywordConst, value)
}

// Const returns the const value of a schema.
func Const(s spec.Schema) (interface{}, bool) {
	return Extra(s, KeywordConst)
}

// PropertyNames returns the propertyNames schema.
func PropertyNames(s spec.Schema) (spec.Schema, bool) {
	v, ok := Extra(s, KeywordPropertyNames)
	if !ok {
		return spec.Schema{}, false
	}
	return ValueSchema(v)
}

// SetPropertyNames returns s with a propertyNames schema.
func SetPropertyNames(s spec.Schema, names spec.Schema) spec.Schema {
	return SetExtra(s, KeywordPropertyNames, names)
}

// DataRef builds the {$data: expr} relative reference marker.
func DataRef(expr string) map[string]interface{} {
	return map[string]interface{}{KeywordData: expr}
}

// IsConditional reports whether s is an if/then pair.
func IsConditional(s spec.Schema) bool {
	_, hasIf := Extra(s, KeywordIf)
	_, hasThen := Extra(s, KeywordThen)
	return hasIf && hasThen
}

// IsTypeParameter reports whether s is a generic parameter placeholder.
func IsTypeParameter(s spec.Schema) bool {
	v, ok := s.Extensions[KeywordTypeParameter]
	if !ok {
		return false
	}
	flag, _ := v.(bool)
	return flag
}

// TypeParameterSchema builds the placeholder for a generic parameter.
func TypeParameterSchema(ref string) spec.Schema {
	s := RefSchema(ref)
	s.Extensions = spec.Extensions{KeywordTypeParameter: true}
	return s
}

// InlinePlaceholder builds a reference to be replaced by its target's content.
func InlinePlaceholder(ref string) spec.Schema {
	return SetExtra(RefSchema(ref), KeywordInline, true)
}

// IsInlinePlaceholder reports whether s was built by InlinePlaceholder.
func IsInlinePlaceholder(s spec.Schema) bool {
	v, ok := Extra(s, KeywordInline)
	flag, _ := v.(bool)
	return ok && flag && IsRefSchema(s)
}
