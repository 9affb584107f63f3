// Package registry - helper functions for names and the built-in library.
package registry

import "strings"

// libraryNames are declared by the host language library and have no user declaration.
var libraryNames = []string{
	"Date", "Promise", "PromiseLike", "Map", "Set", "WeakMap", "WeakSet", "ReadonlyMap", "ReadonlySet",
	"Partial", "Required", "Readonly", "ReadonlyArray", "Exclude", "Extract", "NonNullable",
	"ReturnType", "Parameters", "InstanceType", "Awaited", "Uppercase", "Lowercase", "Capitalize",
	"Uncapitalize", "Function", "RegExp", "Error", "Symbol", "Number", "Boolean", "BigInt",
	"ArrayBuffer", "Uint8Array", "Buffer", "Blob", "File", "Iterable", "Iterator",
}

func fullTypeName(parts ...string) string {
	return strings.Join(parts, ".")
}

func scopeOf(id []string) []string {
	if len(id) == 0 {
		return nil
	}
	return id[:len(id)-1]
}
