package schema

import (
	"testing"

	"github.com/go-openapi/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefinition(t *testing.T) {
	t.Run("nested path creates namespace nodes", func(t *testing.T) {
		// Act
		defs := SetDefinition(nil, []string{"ns", "inner", "leaf"}, PrimitiveSchema("string"))

		// Assert
		doc := spec.Schema{SchemaProps: spec.SchemaProps{Definitions: defs}}
		assert.JSONEq(t, `{"definitions":{"ns":{"inner":{"leaf":{"type":"string"}}}}}`, toJSON(t, doc))
		assert.True(t, IsNamespace(defs["ns"]))
	})

	t.Run("namespace written after its children keeps them", func(t *testing.T) {
		// Arrange
		defs := SetDefinition(nil, []string{"ns", "a"}, PrimitiveSchema("string"))

		// Act
		defs = SetDefinition(defs, []string{"ns"}, NamespaceSchema())
		defs = SetDefinition(defs, []string{"ns", "b"}, PrimitiveSchema("number"))

		// Assert
		doc := spec.Schema{SchemaProps: spec.SchemaProps{Definitions: defs}}
		assert.JSONEq(t, `{"definitions":{"ns":{"a":{"type":"string"},"b":{"type":"number"}}}}`, toJSON(t, doc))
	})

	t.Run("empty namespace", func(t *testing.T) {
		defs := SetDefinition(nil, []string{"empty"}, NamespaceSchema())
		doc := spec.Schema{SchemaProps: spec.SchemaProps{Definitions: defs}}
		assert.JSONEq(t, `{"definitions":{"empty":{}}}`, toJSON(t, doc))
	})
}

func TestLookup(t *testing.T) {
	doc := mustDecode(t, `{
		"definitions": {
			"person": {"type":"object","properties":{"age":{"type":"string"},"tags":{"type":"array","items":{"type":"number"}}}},
			"ns": {"leaf": {"anyOf":[{"type":"string"},{"const":1}]}}
		}
	}`)

	tests := []struct {
		name   string
		tokens []string
		want   string
		found  bool
	}{
		{name: "definition", tokens: []string{"definitions", "person", "properties", "age"}, want: `{"type":"string"}`, found: true},
		{name: "items", tokens: []string{"definitions", "person", "properties", "tags", "items"}, want: `{"type":"number"}`, found: true},
		{name: "namespace child", tokens: []string{"definitions", "ns", "leaf", "anyOf", "1"}, want: `{"const":1}`, found: true},
		{name: "missing", tokens: []string{"definitions", "nope"}},
		{name: "index out of range", tokens: []string{"definitions", "ns", "leaf", "anyOf", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, ok := Lookup(doc, tt.tokens)

			// Assert
			require.Equal(t, tt.found, ok)
			if ok {
				assert.JSONEq(t, tt.want, toJSON(t, got))
			}
		})
	}

	t.Run("definitions helper", func(t *testing.T) {
		got, ok := LookupDefinition(doc.Definitions, []string{"ns", "leaf"})
		require.True(t, ok)
		assert.Len(t, got.AnyOf, 2)
	})
}

func TestIsNamespace(t *testing.T) {
	assert.True(t, IsNamespace(spec.Schema{}))
	assert.True(t, IsNamespace(SetExtra(spec.Schema{}, "child", PrimitiveSchema("string"))))
	assert.False(t, IsNamespace(ConstSchema(nil)))
	assert.False(t, IsNamespace(SetPropertyNames(spec.Schema{}, PrimitiveSchema("string"))))
	assert.False(t, IsNamespace(PrimitiveSchema("object")))
}
