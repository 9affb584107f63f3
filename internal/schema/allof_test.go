package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want string
	}{
		{
			name: "objects merge properties and union required",
			a:    `{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"number"}},"required":["a"]}`,
			b:    `{"type":"object","properties":{"b":{"minimum":1},"c":{"type":"boolean"}},"required":["c","a"]}`,
			want: `{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"number","minimum":1},"c":{"type":"boolean"}},"required":["a","c"]}`,
		},
		{
			name: "later keyword wins outside objects",
			a:    `{"type":"string","description":"first","format":"uri"}`,
			b:    `{"description":"second"}`,
			want: `{"type":"string","description":"second","format":"uri"}`,
		},
		{
			name: "const added to typed schema",
			a:    `{"type":"boolean"}`,
			b:    `{"const":true}`,
			want: `{"type":"boolean","const":true}`,
		},
		{
			name: "allOf lists are concatenated",
			a:    `{"allOf":[{"if":{"type":"string"},"then":{"minLength":1}}]}`,
			b:    `{"allOf":[{"type":"object"}]}`,
			want: `{"allOf":[{"if":{"type":"string"},"then":{"minLength":1}},{"type":"object"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			a := mustDecode(t, tt.a)
			b := mustDecode(t, tt.b)

			// Act
			got := Combine(a, b)

			// Assert
			assert.JSONEq(t, tt.want, toJSON(t, got))
		})
	}

	t.Run("inputs are not modified", func(t *testing.T) {
		// Arrange
		a := mustDecode(t, `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`)
		b := mustDecode(t, `{"type":"object","properties":{"a":{"minLength":2}},"required":["b"],"x-flag":true}`)
		before := toJSON(t, a)

		// Act
		_ = Combine(a, b)

		// Assert
		assert.JSONEq(t, before, toJSON(t, a))
	})
}

func TestOverride(t *testing.T) {
	// Arrange
	dst := mustDecode(t, `{"type":"number","minimum":1,"x-a":1}`)
	src := mustDecode(t, `{"maximum":5,"x-b":2,"$data":"x"}`)

	// Act
	got := Override(dst, src)

	// Assert
	assert.JSONEq(t, `{"type":"number","minimum":1,"maximum":5,"x-a":1,"x-b":2,"$data":"x"}`, toJSON(t, got))
	assert.JSONEq(t, `{"type":"number","minimum":1,"x-a":1}`, toJSON(t, dst))
}
