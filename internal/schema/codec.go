package schema

import (
	"encoding/json"
	"fmt"

	"github.com/go-openapi/spec"
)

// draft-07 writes exclusive bounds as numbers; spec.Schema models them as booleans.
var exclusiveBounds = map[string]string{
	"exclusiveMinimum": "x-tsschema-exclusive-minimum",
	"exclusiveMaximum": "x-tsschema-exclusive-maximum",
}

// Decode parses a JSON schema document. Numeric exclusiveMinimum and
// exclusiveMaximum are kept as numbers in ExtraProps and $schema is kept
// verbatim.
func Decode(data []byte) (spec.Schema, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return spec.Schema{}, fmt.Errorf("decode schema: %w", err)
	}
	buf, err := json.Marshal(stashBounds(raw))
	if err != nil {
		return spec.Schema{}, fmt.Errorf("decode schema: %w", err)
	}

	var s spec.Schema
	if err := json.Unmarshal(buf, &s); err != nil {
		return spec.Schema{}, fmt.Errorf("decode schema: %w", err)
	}
	// spec.SchemaURL drops the "#" fragment of the draft URL.
	if doc, ok := raw.(map[string]interface{}); ok {
		if url, ok := doc["$schema"].(string); ok {
			s.Schema = spec.SchemaURL(url)
		}
	}
	return Transform(s, restoreBounds), nil
}

// Encode renders s as indented JSON.
func Encode(s spec.Schema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func stashBounds(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		for key, marker := range exclusiveBounds {
			if n, ok := value[key].(float64); ok {
				delete(value, key)
				value[marker] = n
			}
		}
		for key, child := range value {
			value[key] = stashBounds(child)
		}
	case []interface{}:
		for i, child := range value {
			value[i] = stashBounds(child)
		}
	}
	return v
}

func unstashBounds(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		for key, marker := range exclusiveBounds {
			if n, ok := value[marker]; ok {
				delete(value, marker)
				value[key] = n
			}
		}
		for key, child := range value {
			value[key] = unstashBounds(child)
		}
	case []interface{}:
		for i, child := range value {
			value[i] = unstashBounds(child)
		}
	}
	return v
}

func restoreBounds(s spec.Schema) (spec.Schema, bool) {
	for key, marker := range exclusiveBounds {
		if n, ok := s.Extensions[marker]; ok {
			ext := make(spec.Extensions, len(s.Extensions))
			for k, v := range s.Extensions {
				if k != marker {
					ext[k] = v
				}
			}
			if len(ext) == 0 {
				ext = nil
			}
			s.Extensions = ext
			s = SetExtra(s, key, n)
		}
	}
	for key, v := range s.ExtraProps {
		if _, keyword := schemaKeywords[key]; !keyword {
			s.ExtraProps[key] = unstashBounds(v)
		}
	}
	return s, false
}
