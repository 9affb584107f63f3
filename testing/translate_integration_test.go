package testing_test

import (
	"context"
	"testing"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/definition"
	"github.com/griffnb/tsschema/internal/merger"
	"github.com/griffnb/tsschema/internal/orchestrator"
	"github.com/griffnb/tsschema/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// translateEntry generates the standalone schema of one declaration of
// testdata/translate, with support.ts as global document.
func translateEntry(t *testing.T, file, name string) spec.Schema {
	t.Helper()
	service := orchestrator.New(&orchestrator.Config{
		Globals: []string{testdata(t, "translate", "support.ts")},
	})
	require.NoError(t, service.Load([]string{testdata(t, "translate")}, nil))

	s, err := service.GenerateEntry(context.Background(), testdata(t, "translate", file), name)
	require.NoError(t, err)
	return s
}

// defRef is the entry-mode reference of a declaration of a translate file.
func defRef(t *testing.T, file string, names ...string) string {
	t.Helper()
	return schema.JoinRef("", append([]string{definition.FileKey(testdata(t, "translate", file))}, names...)...)
}

func TestTranslate_BaseTypes(t *testing.T) {
	// Act
	s := translateEntry(t, "support.ts", "BaseType")

	// Assert
	assert.Equal(t, spec.SchemaURL(schema.DraftURL), s.Schema)
	assert.Equal(t, []string{"str", "num", "bool", "arr", "enum", "indexAccess"}, s.Required)

	str := s.Properties["str"]
	assert.Equal(t, "string", str.Description)
	assert.Equal(t, "uri", str.Format)
	require.NotNil(t, str.MinLength)
	assert.Equal(t, int64(1), *str.MinLength)
	require.NotNil(t, str.MaxLength)
	assert.Equal(t, int64(100), *str.MaxLength)
	assert.NotEmpty(t, str.Pattern)

	assert.JSONEq(t, `{
		"type": "number",
		"description": "number",
		"minimum": 0,
		"exclusiveMinimum": 0,
		"maximum": 100,
		"exclusiveMaximum": 100,
		"multipleOf": 10
	}`, toJSON(t, s.Properties["num"]))
	assert.JSONEq(t, `{
		"type": "array",
		"description": "array",
		"items": {"type": "string"},
		"minItems": 1,
		"maxItems": 10,
		"uniqueItems": true
	}`, toJSON(t, s.Properties["arr"]))
	assert.JSONEq(t, `{"type": "array", "description": "array: Array", "items": {"type": "string"}}`, toJSON(t, s.Properties["arrTemp"]))
	assert.JSONEq(t, `{"enum": [2, 3], "description": "enum"}`, toJSON(t, s.Properties["enumUnion"]))

	assert.Equal(t, defRef(t, "support.ts", "valenum"), schema.RefOf(s.Properties["enum"]))
	assert.Equal(t, defRef(t, "support.ts", "person", "properties", "age"), schema.RefOf(s.Properties["indexAccess"]))

	valenum, ok := schema.Lookup(s, []string{"definitions", definition.FileKey(testdata(t, "translate", "support.ts")), "valenum"})
	require.True(t, ok)
	assert.JSONEq(t, `{"enum": [2, 3]}`, toJSON(t, valenum))
	person, ok := schema.Lookup(s, []string{"definitions", definition.FileKey(testdata(t, "translate", "support.ts")), "person"})
	require.True(t, ok)
	assert.Contains(t, person.Properties, "age")
}

func TestTranslate_Declarations(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		decl     string
		expected string
	}{
		{
			name: "generic defaults",
			file: "support.ts",
			decl: "GenericDefaultTest",
			expected: `{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type": "object",
				"properties": {
					"a": {"type": "object", "properties": {"value": {"type": "string"}}, "required": ["value"]},
					"b": {"type": "object", "properties": {"value": {"type": "number"}}, "required": ["value"]}
				},
				"required": ["a", "b"]
			}`,
		},
		{
			name: "recursive reference omitted",
			file: "support.ts",
			decl: "Tree",
			expected: `{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type": "object",
				"properties": {"name": {"type": "string"}, "children": {"type": "array"}},
				"required": ["name"]
			}`,
		},
		{
			name: "ignored property",
			file: "support.ts",
			decl: "IgnoreSupport",
			expected: `{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type": "object",
				"properties": {"kept": {"type": "string"}},
				"required": ["kept"]
			}`,
		},
		{
			name: "built-in names",
			file: "support.ts",
			decl: "BuiltinSupport",
			expected: `{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type": "object",
				"properties": {
					"count": {"type": "integer"},
					"amount": {"type": "string", "format": "numberic"},
					"label": {"type": "string"},
					"bag": {"type": "object"}
				},
				"required": ["count", "amount", "label", "bag"]
			}`,
		},
		{
			name: "unsupported members dropped",
			file: "global.ts",
			decl: "UnSupportType",
			expected: `{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type": "object",
				"properties": {"e": {"type": "string"}},
				"required": ["e"]
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			s := translateEntry(t, tt.file, tt.decl)

			// Assert
			assert.JSONEq(t, tt.expected, toJSON(t, s))
		})
	}
}

func TestTranslate_TemplateLiteral(t *testing.T) {
	// Act
	s := translateEntry(t, "support.ts", "CompositionType")

	// Assert
	assert.JSONEq(t, `{
		"$ref": "`+defRef(t, "support.ts", "foo")+`",
		"description": "template literal"
	}`, toJSON(t, s.Properties["tplLiteral"]))
	foo, ok := schema.Lookup(s, []string{"definitions", definition.FileKey(testdata(t, "translate", "support.ts")), "foo"})
	require.True(t, ok)
	assert.JSONEq(t, `{"const": "Hello World!"}`, toJSON(t, foo))
}

func TestTranslate_Generics(t *testing.T) {
	// Act
	s := translateEntry(t, "support.ts", "GenericTest")

	// Assert
	simple := defRef(t, "support.ts", "simple")
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {"data": {"$ref": "`+simple+`"}, "type": {"type": "string"}},
		"required": ["data", "type"]
	}`, toJSON(t, s.Properties["a"]))
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {"data": {"$ref": "`+simple+`"}, "type": {"enum": ["0", "1"]}},
		"required": ["data", "type"]
	}`, toJSON(t, s.Properties["b"]))
}

func TestTranslate_Extends(t *testing.T) {
	t.Run("extended declarations are folded into the entry", func(t *testing.T) {
		// Act
		s := translateEntry(t, "support.ts", "ExtendSupport")

		// Assert
		assert.Empty(t, s.AnyOf)
		for _, name := range []string{"str", "num", "tplLiteral", "custom"} {
			assert.Contains(t, s.Properties, name)
			assert.Contains(t, s.Required, name)
		}
	})

	t.Run("referenced extending declaration", func(t *testing.T) {
		// Act
		s := translateEntry(t, "support.ts", "RefExtendSupprt")

		// Assert
		ref := defRef(t, "support.ts", "extendsupport")
		assert.Equal(t, ref, schema.RefOf(s.Properties["a"]))
		target, ok := schema.Lookup(s, []string{"definitions", definition.FileKey(testdata(t, "translate", "support.ts")), "extendsupport"})
		require.True(t, ok)
		assert.Empty(t, target.AnyOf)
		assert.Contains(t, target.Properties, "custom")
		assert.Contains(t, target.Properties, "str")
	})

	t.Run("union of a declaration and its array", func(t *testing.T) {
		// Act
		s := translateEntry(t, "support.ts", "OneOfSupport")

		// Assert
		ref := defRef(t, "support.ts", "basetype")
		assert.JSONEq(t, `{"oneOf": [{"$ref": "`+ref+`"}, {"type": "array", "items": {"$ref": "`+ref+`"}}]}`, toJSON(t, s.Properties["anyof"]))
	})
}

func TestTranslate_Namespaces(t *testing.T) {
	// Act
	s := translateEntry(t, "support.ts", "NameSpaceSupport")

	// Assert
	assert.Equal(t, defRef(t, "support.ts", "testnamespace", "fooz"), schema.RefOf(s.Properties["a"]))
	assert.Equal(t, defRef(t, "support.ts", "testnamespace", "innerspace", "innerfooz"), schema.RefOf(s.Properties["b"]))

	inner, ok := schema.Lookup(s, []string{"definitions", definition.FileKey(testdata(t, "translate", "support.ts")), "testnamespace", "innerspace", "innerfooz"})
	require.True(t, ok)
	assert.JSONEq(t, `{"type": "object", "properties": {"bar": {"type": "string"}}, "required": ["bar"]}`, toJSON(t, inner))
}

func TestTranslate_Imports(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		decl     string
		expected map[string]string
	}{
		{
			name: "named and aliased imports",
			file: "import.ts",
			decl: "ImportSupport",
			expected: map[string]string{
				"a": "valenum",
				"b": "foo",
				"c": "simple",
			},
		},
		{
			name: "default and namespace imports",
			file: "import.ts",
			decl: "DefaultImportSupport",
			expected: map[string]string{
				"d": "defaultexport",
				"e": "simple",
			},
		},
		{
			name: "globals",
			file: "global.ts",
			decl: "GlobalSupport",
			expected: map[string]string{
				"a": "valenum",
				"b": "foo",
				"c": "simple",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			s := translateEntry(t, tt.file, tt.decl)

			// Assert
			for prop, decl := range tt.expected {
				assert.Equal(t, defRef(t, "support.ts", decl), schema.RefOf(s.Properties[prop]), prop)
			}
		})
	}

	t.Run("re-exports", func(t *testing.T) {
		// Act
		s := translateEntry(t, "via_reexport.ts", "ViaReexport")

		// Assert
		assert.Equal(t, defRef(t, "support.ts", "simple"), schema.RefOf(s.Properties["a"]))
		assert.Equal(t, defRef(t, "import.ts", "importsupport"), schema.RefOf(s.Properties["b"]))
	})
}

func TestTranslate_MergeDefinitions(t *testing.T) {
	// Arrange
	s := translateEntry(t, "import.ts", "ImportSupport")

	// Act
	merged, err := merger.MergeDefinitions(s)

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"properties": {
			"a": {"enum": [2, 3]},
			"b": {"const": "Hello World!"},
			"c": {"type": "object", "properties": {"arr": {"type": "array", "items": {"type": "number"}}}, "required": ["arr"]}
		},
		"required": ["a", "b", "c"]
	}`, toJSON(t, merged))
}
