package schema

import (
	"encoding/json"

	"github.com/go-openapi/spec"
)

// IsNamespace reports whether s is a namespace node of a definitions tree:
// a schema whose only keys are child schemas.
func IsNamespace(s spec.Schema) bool {
	rest := s
	rest.ExtraProps = nil
	if !IsEmpty(rest) {
		return false
	}
	for key, v := range s.ExtraProps {
		if isReservedKey(key) {
			return false
		}
		switch v.(type) {
		case spec.Schema, *spec.Schema, map[string]interface{}:
		default:
			return false
		}
	}
	return true
}

// NamespaceSchema builds an empty namespace node.
func NamespaceSchema() spec.Schema {
	return spec.Schema{}
}

func isReservedKey(key string) bool {
	switch key {
	case KeywordConst, KeywordData, KeywordID, KeywordInline, "exclusiveMinimum", "exclusiveMaximum":
		return true
	}
	_, ok := schemaKeywords[key]
	return ok
}

// SetDefinition stores s in a definitions tree at path, creating namespace
// nodes on the way. A namespace written over an existing namespace keeps the
// existing children. The returned map is the one passed in, or a new one when nil.
func SetDefinition(defs spec.Definitions, path []string, s spec.Schema) spec.Definitions {
	if defs == nil {
		defs = spec.Definitions{}
	}
	if len(path) == 0 {
		return defs
	}
	existing, ok := defs[path[0]]
	if !ok {
		existing = NamespaceSchema()
	}
	defs[path[0]] = setChild(existing, ok, path[1:], s)
	return defs
}

func setChild(node spec.Schema, exists bool, path []string, s spec.Schema) spec.Schema {
	if len(path) == 0 {
		if exists && IsNamespace(node) && IsNamespace(s) {
			for key, child := range node.ExtraProps {
				if _, ok := s.ExtraProps[key]; !ok {
					s = SetExtra(s, key, child)
				}
			}
		}
		return s
	}

	var child spec.Schema
	raw, found := Extra(node, path[0])
	if found {
		child, found = ValueSchema(raw)
	}
	if !found {
		child = NamespaceSchema()
	}
	return SetExtra(node, path[0], setChild(child, found, path[1:], s))
}

// LookupDefinition returns the schema stored in a definitions tree at path.
func LookupDefinition(defs spec.Definitions, path []string) (spec.Schema, bool) {
	if len(path) == 0 {
		return spec.Schema{}, false
	}
	node, ok := defs[path[0]]
	if !ok {
		return spec.Schema{}, false
	}
	return Lookup(node, path[1:])
}

// Lookup follows decoded pointer tokens from s. Namespace nodes are entered by
// child name; other nodes by schema keyword.
func Lookup(s spec.Schema, tokens []string) (spec.Schema, bool) {
	for len(tokens) > 0 {
		token := tokens[0]
		tokens = tokens[1:]

		if IsNamespace(s) {
			raw, ok := Extra(s, token)
			if !ok {
				return spec.Schema{}, false
			}
			if s, ok = ValueSchema(raw); !ok {
				return spec.Schema{}, false
			}
			continue
		}

		var ok bool
		switch token {
		case "definitions", "properties":
			if len(tokens) == 0 {
				return spec.Schema{}, false
			}
			key := tokens[0]
			tokens = tokens[1:]
			if token == "definitions" {
				s, ok = s.Definitions[key]
			} else {
				s, ok = s.Properties[key]
			}
		case "items":
			if s.Items == nil {
				return spec.Schema{}, false
			}
			if s.Items.Schema != nil {
				s, ok = *s.Items.Schema, true
			} else if len(tokens) > 0 {
				s, ok = index(s.Items.Schemas, tokens[0])
				tokens = tokens[1:]
			}
		case "additionalProperties":
			if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
				s, ok = *s.AdditionalProperties.Schema, true
			}
		case "not":
			if s.Not != nil {
				s, ok = *s.Not, true
			}
		case "allOf", "anyOf", "oneOf":
			if len(tokens) == 0 {
				return spec.Schema{}, false
			}
			list := map[string][]spec.Schema{"allOf": s.AllOf, "anyOf": s.AnyOf, "oneOf": s.OneOf}[token]
			s, ok = index(list, tokens[0])
			tokens = tokens[1:]
		default:
			var raw interface{}
			if raw, ok = Extra(s, token); ok {
				s, ok = ValueSchema(raw)
			}
		}
		if !ok {
			return spec.Schema{}, false
		}
	}
	return s, true
}

func index(list []spec.Schema, token string) (spec.Schema, bool) {
	var i int
	if err := json.Unmarshal([]byte(token), &i); err != nil || i < 0 || i >= len(list) {
		return spec.Schema{}, false
	}
	return list[i], true
}
