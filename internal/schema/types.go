package schema

import (
	"encoding/json"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
)

// DraftURL is the meta schema every generated document declares.
const DraftURL = "http://json-schema.org/draft-07/schema#"

// PrimitiveSchema builds a schema of a single type.
func PrimitiveSchema(typeName string) spec.Schema {
	return spec.Schema{SchemaProps: spec.SchemaProps{Type: []string{typeName}}}
}

// ObjectSchema builds an object schema. An empty required list is omitted.
func ObjectSchema(properties map[string]spec.Schema, required []string) spec.Schema {
	s := PrimitiveSchema(domain.OBJECT)
	s.Properties = properties
	if len(required) > 0 {
		s.Required = required
	}
	return s
}

// ArraySchema builds an array schema.
func ArraySchema(items *spec.Schema) spec.Schema {
	s := PrimitiveSchema(domain.ARRAY)
	if items != nil {
		item := *items
		s.Items = &spec.SchemaOrArray{Schema: &item}
	}
	return s
}

// EnumSchema builds a schema allowing only the given values.
func EnumSchema(values []interface{}) spec.Schema {
	return spec.Schema{SchemaProps: spec.SchemaProps{Enum: values}}
}

// TypeName returns the first type of a schema or "".
func TypeName(s spec.Schema) string {
	if len(s.Type) == 0 {
		return ""
	}
	return s.Type[0]
}

// IsObject determines whether a schema is an object schema.
func IsObject(s spec.Schema) bool {
	return s.Type.Contains(domain.OBJECT)
}

// IsEmpty reports whether a schema has no keyword at all.
func IsEmpty(s spec.Schema) bool {
	b, err := json.Marshal(s)
	return err == nil && string(b) == "{}"
}

// ValueSchema converts a keyword value holding a schema into a spec.Schema.
// Values decoded from JSON arrive as generic maps.
func ValueSchema(v interface{}) (spec.Schema, bool) {
	switch value := v.(type) {
	case spec.Schema:
		return value, true
	case *spec.Schema:
		if value == nil {
			return spec.Schema{}, false
		}
		return *value, true
	case map[string]interface{}:
		b, err := json.Marshal(value)
		if err != nil {
			return spec.Schema{}, false
		}
		s, err := Decode(b)
		if err != nil {
			return spec.Schema{}, false
		}
		return s, true
	}
	return spec.Schema{}, false
}
