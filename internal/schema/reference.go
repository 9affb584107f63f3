package schema

import (
	"fmt"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/go-openapi/spec"
)

// DefinitionsPrefix starts every local definition pointer.
const DefinitionsPrefix = "#/definitions/"

// RefSchema builds a reference schema.
func RefSchema(ref string) spec.Schema {
	return spec.Schema{SchemaProps: spec.SchemaProps{Ref: spec.MustCreateRef(ref)}}
}

// IsRefSchema determines whether a schema is a reference schema.
func IsRefSchema(s spec.Schema) bool {
	return s.Ref.String() != ""
}

// RefOf returns the $ref of a schema or "".
func RefOf(s spec.Schema) string {
	return s.Ref.String()
}

// DropRef returns s without its $ref.
func DropRef(s spec.Schema) spec.Schema {
	s.Ref = spec.Ref{}
	return s
}

// JoinRef builds "<docID>#/definitions/<segments...>" with each segment escaped.
func JoinRef(docID string, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = jsonpointer.Escape(segment)
	}
	return docID + DefinitionsPrefix + strings.Join(escaped, "/")
}

// AppendRef appends raw pointer segments to an existing reference.
func AppendRef(ref string, segments ...string) string {
	for _, segment := range segments {
		ref += "/" + jsonpointer.Escape(segment)
	}
	return ref
}

// SplitRef splits a reference into its document id and decoded pointer tokens.
func SplitRef(ref string) (string, []string, error) {
	docID, fragment, found := strings.Cut(ref, "#")
	if !found {
		return ref, nil, nil
	}
	if fragment == "" {
		return docID, nil, nil
	}
	pointer, err := jsonpointer.New(fragment)
	if err != nil {
		return "", nil, fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return docID, pointer.DecodedTokens(), nil
}

// DefinitionPath returns the document id and the path below definitions of a reference.
func DefinitionPath(ref string) (string, []string, error) {
	docID, tokens, err := SplitRef(ref)
	if err != nil {
		return "", nil, err
	}
	if len(tokens) < 2 || tokens[0] != "definitions" {
		return "", nil, fmt.Errorf("reference %q does not point into definitions", ref)
	}
	return docID, tokens[1:], nil
}
