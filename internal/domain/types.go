// Package domain contains core domain types shared across the tsschema application.
// These types represent the parsed declaration graph: documents, declarations,
// properties and the closed set of type expression kinds the engine understands.
package domain

import (
	"fmt"
	"strings"
)

// Kind is the syntactic kind of a type expression.
type Kind int

const (
	// KindUnsupported is any construct the engine does not model.
	KindUnsupported Kind = iota
	// KindKeyword is a primitive keyword such as string or number.
	KindKeyword
	// KindLiteral is a string, number, boolean or null literal.
	KindLiteral
	// KindTemplate is a template literal type.
	KindTemplate
	// KindUnion is A | B.
	KindUnion
	// KindIntersection is A & B.
	KindIntersection
	// KindArray is T[].
	KindArray
	// KindTuple is [A, B].
	KindTuple
	// KindObjectLiteral is an inline { ... } type.
	KindObjectLiteral
	// KindIndexedAccess is T['k'].
	KindIndexedAccess
	// KindReference is a nominal reference, optionally with type arguments.
	KindReference
)

var kindNames = map[Kind]string{
	KindUnsupported:   "unsupported",
	KindKeyword:       "keyword",
	KindLiteral:       "literal",
	KindTemplate:      "template",
	KindUnion:         "union",
	KindIntersection:  "intersection",
	KindArray:         "array",
	KindTuple:         "tuple",
	KindObjectLiteral: "object",
	KindIndexedAccess: "indexed-access",
	KindReference:     "reference",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Position locates a node in its source file.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// TypeNode is an immutable type expression.
type TypeNode struct {
	Kind Kind
	Pos  Position

	// Name is the keyword for KindKeyword, the dotted name for KindReference
	// and the construct name for KindUnsupported.
	Name string

	// Value holds a literal value: string, float64, bool or nil.
	Value interface{}

	// Types holds union/intersection members, tuple elements and template spans.
	Types []*TypeNode

	// Args are the type arguments of a reference.
	Args []*TypeNode

	// Elem is the element of an array or the object of an indexed access.
	Elem *TypeNode

	// Index is the index type of an indexed access.
	Index *TypeNode

	// Properties are the members of an object literal.
	Properties []*Property

	// Parts are the text chunks of a template literal, len(Parts) == len(Types)+1.
	Parts []string
}

// NamePath splits a reference name into its dotted segments.
func (n *TypeNode) NamePath() []string {
	if n == nil || n.Name == "" {
		return nil
	}
	return strings.Split(n.Name, ".")
}

// DeclKind is the kind of a declaration.
type DeclKind int

const (
	// DeclInterface is a structural record type.
	DeclInterface DeclKind = iota
	// DeclAlias is a type alias.
	DeclAlias
	// DeclEnum is an enumeration.
	DeclEnum
	// DeclNamespace is a nested scope.
	DeclNamespace
)

func (k DeclKind) String() string {
	switch k {
	case DeclInterface:
		return "interface"
	case DeclAlias:
		return "type"
	case DeclEnum:
		return "enum"
	case DeclNamespace:
		return "namespace"
	}
	return "unknown"
}

// TypeParam is a generic parameter with an optional default.
type TypeParam struct {
	Name    string
	Default *TypeNode
}

// Property is a named member of an interface or object literal.
type Property struct {
	Name        string
	Optional    bool
	Readonly    bool
	Type        *TypeNode
	Description string
	Tags        Tags
	Pos         Position
}

// EnumMember is one member of an enumeration.
type EnumMember struct {
	Name  string
	Value interface{}
	Pos   Position
}

// Declaration is a named type definition.
type Declaration struct {
	Kind        DeclKind
	Name        string
	TypeParams  []TypeParam
	Extends     []*TypeNode
	Properties  []*Property
	Type        *TypeNode
	Members     []EnumMember
	Children    []*Declaration
	Exported    bool
	Default     bool
	Description string
	Tags        Tags
	Pos         Position
}

// Generic reports whether the declaration declares type parameters.
func (d *Declaration) Generic() bool {
	return len(d.TypeParams) > 0
}

// Child returns the direct child declaration with the given name.
func (d *Declaration) Child(name string) *Declaration {
	for _, child := range d.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Import is one binding of an import clause or a re-export.
//
// For imports Local is the name bound in the importing document and Imported is
// the exported name, "default" or "*". For re-exports Local is the exported name.
type Import struct {
	Local    string
	Imported string
	From     string
	Pos      Position
}

// Document is one parsed source file.
type Document struct {
	Path         string
	Declarations []*Declaration
	Imports      []Import
	Exports      []Import
	Library      bool
	Digest       uint64
}

// Declaration returns the top-level declaration with the given name.
func (d *Document) Declaration(name string) *Declaration {
	for _, decl := range d.Declarations {
		if decl.Name == name {
			return decl
		}
	}
	return nil
}

// DefaultExport returns the declaration exported as default, if any.
func (d *Document) DefaultExport() *Declaration {
	for _, decl := range d.Declarations {
		if decl.Default {
			return decl
		}
	}
	return nil
}

// DeclID is the stable identity of a declaration: its document and name path.
type DeclID struct {
	Path  string   `json:"path"`
	Names []string `json:"names"`
}

// Key returns the identity as a comparable string.
func (id DeclID) Key() string {
	return id.Path + "#" + strings.Join(id.Names, ".")
}

func (id DeclID) String() string {
	return id.Key()
}

// Name returns the innermost declaration name.
func (id DeclID) Name() string {
	if len(id.Names) == 0 {
		return ""
	}
	return id.Names[len(id.Names)-1]
}

// Child returns the identity of a declaration nested under id.
func (id DeclID) Child(name string) DeclID {
	names := make([]string, 0, len(id.Names)+1)
	names = append(names, id.Names...)
	return DeclID{Path: id.Path, Names: append(names, name)}
}

// Scope is the lexical position a name is resolved from.
type Scope struct {
	Path      string
	Namespace []string
}

// Symbol is the result of resolving a name.
type Symbol struct {
	ID          DeclID
	Declaration *Declaration
	Library     bool
}
