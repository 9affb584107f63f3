package schema

import (
	"encoding/json"
	"testing"

	"github.com/go-openapi/spec"
	"github.com/stretchr/testify/require"
)

func toJSON(t *testing.T, s spec.Schema) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func mustDecode(t *testing.T, src string) spec.Schema {
	t.Helper()
	s, err := Decode([]byte(src))
	require.NoError(t, err)
	return s
}
