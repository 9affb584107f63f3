package domain

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// ARRAY represent a array value.
	ARRAY = "array"
	// OBJECT represent a object value.
	OBJECT = "object"
	// BOOLEAN represent a boolean value.
	BOOLEAN = "boolean"
	// INTEGER represent a integer value.
	INTEGER = "integer"
	// NUMBER represent a number value.
	NUMBER = "number"
	// STRING represent a string value.
	STRING = "string"
	// NULL represent a null value.
	NULL = "null"
)

// Formats understood by the tag annotator.
const (
	// FormatNumberic is a numeric value carried in a string.
	FormatNumberic = "numberic"
)

// LowerName lowercases a declaration name for use in a definitions path.
func LowerName(name string) string {
	return cases.Lower(language.Und).String(name)
}

// LowerNames lowercases every segment of a name path.
func LowerNames(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = LowerName(name)
	}
	return out
}

// FileStem returns the file name without directory and extensions (.ts, .d.ts).
func FileStem(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{".d.ts", ".tsx", ".ts"} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
