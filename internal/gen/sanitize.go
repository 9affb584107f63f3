package gen

import (
	"math"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/schema"
)

// Infinity and NaN have no JSON encoding.
var numericExtras = []string{"exclusiveMinimum", "exclusiveMaximum", schema.KeywordConst}

// sanitizeSchema removes non-finite numeric values from every node.
func sanitizeSchema(s spec.Schema) spec.Schema {
	return schema.Transform(s, func(node spec.Schema) (spec.Schema, bool) {
		node.Minimum = finitePtr(node.Minimum)
		node.Maximum = finitePtr(node.Maximum)
		node.MultipleOf = finitePtr(node.MultipleOf)

		if !finiteValue(node.Default) {
			node.Default = nil
		}
		if !finiteValue(node.Example) {
			node.Example = nil
		}

		if len(node.Enum) > 0 {
			enum := make([]interface{}, 0, len(node.Enum))
			for _, v := range node.Enum {
				if finiteValue(v) {
					enum = append(enum, v)
				}
			}
			node.Enum = enum
		}

		for _, key := range numericExtras {
			if v, ok := schema.Extra(node, key); ok && !finiteValue(v) {
				node = schema.DeleteExtra(node, key)
			}
		}
		return node, false
	})
}

func finitePtr(f *float64) *float64 {
	if f != nil && !isFinite(*f) {
		return nil
	}
	return f
}

func finiteValue(v interface{}) bool {
	f, ok := v.(float64)
	return !ok || isFinite(f)
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
