package schema

import (
	"testing"

	"github.com/go-openapi/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders(t *testing.T) {
	t.Run("object omits empty required", func(t *testing.T) {
		s := ObjectSchema(map[string]spec.Schema{"a": PrimitiveSchema("string")}, nil)
		assert.JSONEq(t, `{"type":"object","properties":{"a":{"type":"string"}}}`, toJSON(t, s))
	})

	t.Run("array", func(t *testing.T) {
		item := PrimitiveSchema("number")
		assert.JSONEq(t, `{"type":"array","items":{"type":"number"}}`, toJSON(t, ArraySchema(&item)))
	})

	t.Run("const null", func(t *testing.T) {
		s := ConstSchema(nil)
		value, ok := Const(s)
		assert.True(t, ok)
		assert.Nil(t, value)
		assert.JSONEq(t, `{"const":null}`, toJSON(t, s))
	})

	t.Run("type parameter placeholder", func(t *testing.T) {
		s := TypeParameterSchema("#/definitions/t")
		assert.True(t, IsTypeParameter(s))
		assert.JSONEq(t, `{"$ref":"#/definitions/t","x-type-parameter":true}`, toJSON(t, s))
	})

	t.Run("inline placeholder", func(t *testing.T) {
		s := InlinePlaceholder("#/definitions/a")
		assert.True(t, IsInlinePlaceholder(s))
		assert.False(t, IsInlinePlaceholder(RefSchema("#/definitions/a")))
	})

	t.Run("empty", func(t *testing.T) {
		assert.True(t, IsEmpty(spec.Schema{}))
		assert.False(t, IsEmpty(PrimitiveSchema("string")))
	})
}

func TestDecode(t *testing.T) {
	t.Run("keeps numeric exclusive bounds", func(t *testing.T) {
		// Arrange
		src := `{"type":"object","properties":{"n":{"type":"number","exclusiveMinimum":0,"exclusiveMaximum":100}}}`

		// Act
		s, err := Decode([]byte(src))

		// Assert
		require.NoError(t, err)
		assert.JSONEq(t, src, toJSON(t, s))
		value, ok := Extra(s.Properties["n"], "exclusiveMinimum")
		assert.True(t, ok)
		assert.Equal(t, float64(0), value)
	})

	t.Run("keeps $id and propertyNames", func(t *testing.T) {
		src := `{"$schema":"http://json-schema.org/draft-07/schema#","$id":"http://x/a.json","type":"object","propertyNames":{"enum":["a","b"]},"additionalProperties":{}}`
		s, err := Decode([]byte(src))
		require.NoError(t, err)
		assert.JSONEq(t, src, toJSON(t, s))
		names, ok := PropertyNames(s)
		require.True(t, ok)
		assert.Equal(t, []interface{}{"a", "b"}, names.Enum)
	})

	t.Run("keeps the draft url fragment", func(t *testing.T) {
		// Act
		s, err := Decode([]byte(`{"$schema":"http://json-schema.org/draft-07/schema#","type":"string"}`))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, spec.SchemaURL(DraftURL), s.Schema)
		encoded, err := Encode(s)
		require.NoError(t, err)
		assert.Contains(t, string(encoded), `"$schema": "http://json-schema.org/draft-07/schema#"`)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := Decode([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestTransform(t *testing.T) {
	t.Run("replaces matching nodes without touching the input", func(t *testing.T) {
		// Arrange
		s := mustDecode(t, `{"type":"object","properties":{"a":{"$ref":"#/definitions/t"},"b":{"type":"array","items":{"$ref":"#/definitions/t"}}}}`)
		before := toJSON(t, s)

		// Act
		got := Transform(s, func(node spec.Schema) (spec.Schema, bool) {
			if RefOf(node) == "#/definitions/t" {
				return PrimitiveSchema("string"), true
			}
			return node, false
		})

		// Assert
		assert.JSONEq(t, `{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"array","items":{"type":"string"}}}}`, toJSON(t, got))
		assert.JSONEq(t, before, toJSON(t, s))
	})

	t.Run("walk visits parents first", func(t *testing.T) {
		s := mustDecode(t, `{"oneOf":[{"type":"string"},{"propertyNames":{"type":"number"}}]}`)
		var types []string
		Walk(s, func(node spec.Schema) {
			types = append(types, TypeName(node))
		})
		assert.Equal(t, []string{"", "string", "", "number"}, types)
	})
}
