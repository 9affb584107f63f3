package merger

import (
	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/schema"
)

// foldAnyOf combines the anyOf branches over s left to right. Later branches
// win on collisions.
func foldAnyOf(s spec.Schema) spec.Schema {
	branches := s.AnyOf
	s.AnyOf = nil
	return fold(s, branches)
}

func foldAllOf(s spec.Schema) spec.Schema {
	members := s.AllOf
	s.AllOf = nil
	return fold(s, members)
}

func fold(acc spec.Schema, list []spec.Schema) spec.Schema {
	for _, item := range list {
		acc = schema.Combine(acc, item)
	}
	return acc
}
