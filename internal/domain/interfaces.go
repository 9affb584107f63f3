package domain

import (
	"github.com/go-openapi/spec"
)

// SymbolTable resolves names against the loaded documents.
// This interface lets the engine resolve declarations without depending on the registry.
type SymbolTable interface {
	// Document returns a loaded document by path
	Document(path string) (*Document, bool)

	// Declaration returns the declaration with the given identity
	Declaration(id DeclID) (*Declaration, bool)

	// Resolve resolves a dotted name as seen from scope, following imports
	Resolve(scope Scope, name []string) (Symbol, error)

	// LibraryName reports whether name is provided by the built-in library
	LibraryName(name string) bool
}

// Logger is the structured logger used by the engine packages.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// PropertyContext describes the property being mounted.
type PropertyContext struct {
	Owner    DeclID
	Property *Property
}

// PropertyHook observes and may veto property mounting.
type PropertyHook interface {
	// BeforeMount returns true to drop the property.
	BeforeMount(ctx PropertyContext, schema spec.Schema) (ignore bool)

	// AfterMount receives the final property schema.
	AfterMount(ctx PropertyContext, schema spec.Schema)
}

// HookFuncs adapts optional functions to PropertyHook.
type HookFuncs struct {
	Before func(ctx PropertyContext, schema spec.Schema) bool
	After  func(ctx PropertyContext, schema spec.Schema)
}

// BeforeMount implements PropertyHook.
func (h HookFuncs) BeforeMount(ctx PropertyContext, schema spec.Schema) bool {
	if h.Before == nil {
		return false
	}
	return h.Before(ctx, schema)
}

// AfterMount implements PropertyHook.
func (h HookFuncs) AfterMount(ctx PropertyContext, schema spec.Schema) {
	if h.After != nil {
		h.After(ctx, schema)
	}
}

// NopLogger discards every message.
type NopLogger struct{}

// Debugf implements Logger.
func (NopLogger) Debugf(string, ...interface{}) {}

// Warn implements Logger.
func (NopLogger) Warn(interface{}, ...interface{}) {}

// Error implements Logger.
func (NopLogger) Error(interface{}, ...interface{}) {}
