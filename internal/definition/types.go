// Package definition synthesizes schemas for declarations. It maps type
// expressions to schema fragments, resolves nominal references across
// documents and globals, applies the structural utilities and instantiates
// generic declarations.
package definition

import (
	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
)

// Mode selects how references between declarations are written.
type Mode int

const (
	// ModeDocument writes one definitions map per document. References into
	// another document carry that document's id and are not expanded.
	ModeDocument Mode = iota
	// ModeEntry materializes every reachable declaration in the entry's own
	// definitions, keyed by file.
	ModeEntry
)

func (m Mode) String() string {
	if m == ModeEntry {
		return "entry"
	}
	return "document"
}

// Pending is a reference found during synthesis that still has to be expanded.
// Inline targets are spliced into the referring node instead of being stored
// under definitions.
type Pending struct {
	ID     domain.DeclID `json:"id"`
	Ref    string        `json:"ref"`
	Inline bool          `json:"inline,omitempty"`
}

// Result is the synthesis of one declaration.
type Result struct {
	Schema   spec.Schema
	Deps     []Pending
	Failures []*domain.Failure
}

// Symbols is the symbol table read by the resolver.
type Symbols interface {
	domain.SymbolTable

	// Lookup finds a declaration declared directly in a document.
	Lookup(path string, names []string) (domain.Symbol, bool)

	// EvaluateLiteral reduces a literal, template or alias expression to its value.
	EvaluateLiteral(scope domain.Scope, node *domain.TypeNode) (interface{}, bool)
}

// Options configures a Resolver.
type Options struct {
	// Mode selects document or entry references.
	Mode Mode

	// IDFunc names the document declared by a file. Defaults to DefaultID.
	IDFunc func(path string) string

	// FileKey names the definitions group of a file in entry mode. Defaults to FileKey.
	FileKey func(path string) string

	// Globals are documents searched, last first, for names without a local declaration.
	Globals []string

	// Hooks observe and may veto every mounted property.
	Hooks []domain.PropertyHook

	// Logger receives dropped properties and unsupported constructs.
	Logger domain.Logger
}
