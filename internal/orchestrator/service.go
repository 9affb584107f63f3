// Package orchestrator coordinates all services to generate JSON schemas.
// It loads the declaration documents, builds the symbol table and drains the
// definition worklist for a single entry or for every document.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/definition"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/loader"
	"github.com/griffnb/tsschema/internal/merger"
	"github.com/griffnb/tsschema/internal/registry"
	"github.com/griffnb/tsschema/internal/schema"
	"github.com/griffnb/tsschema/internal/store"
)

// Service coordinates loading, resolution and the definition worklist.
type Service struct {
	loader   *loader.Service
	registry *registry.Service
	config   *Config

	// ids digests the document id of every loaded file.
	ids uint64
}

// Config holds orchestrator configuration options.
type Config struct {
	// Excludes are directories and files skipped while searching.
	Excludes []string

	// ParseNodeModules descends into node_modules while searching.
	ParseNodeModules bool

	// ParseExtensions are the file suffixes loaded from search directories.
	ParseExtensions []string

	// SkipImports disables loading imported files outside the search directories.
	SkipImports bool

	// MaxDepth limits how many import hops are followed.
	MaxDepth int

	// LibraryPaths mark files holding the host language's built-in declarations.
	LibraryPaths []string

	// Globals are documents searched, last first, for names without a local declaration.
	Globals []string

	// IDFunc names the document of a file. Defaults to the file stem plus ".json".
	IDFunc func(path string) string

	// RootName names the declaration a document's $ref points at.
	// Defaults to the lowercase file stem.
	RootName func(path string) string

	// BaseURL prefixes every document id in $id.
	BaseURL string

	// Hooks observe and may veto every mounted property.
	Hooks []domain.PropertyHook

	// Strict aborts document generation on the first failing document.
	Strict bool

	// NewStore creates the definition cache of one generation run.
	// Defaults to an in-memory store.
	NewStore func() store.Store

	// Logger receives warnings about dropped properties and failed documents.
	Logger domain.Logger

	Debug Debugger
}

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// New creates a new orchestrator service with the given configuration.
func New(config *Config) *Service {
	if config == nil {
		config = &Config{}
	}

	// Apply defaults for zero values
	if config.IDFunc == nil {
		config.IDFunc = definition.DefaultID
	}
	if config.RootName == nil {
		config.RootName = domain.FileStem
	}
	if config.NewStore == nil {
		config.NewStore = func() store.Store { return store.NewMemory() }
	}
	if config.Logger == nil {
		config.Logger = domain.NopLogger{}
	}
	if config.Debug == nil {
		config.Debug = noOpDebugger{}
	}
	if config.MaxDepth == 0 {
		config.MaxDepth = 100
	}

	globals := make([]string, 0, len(config.Globals))
	for _, global := range config.Globals {
		if abs, err := filepath.Abs(global); err == nil {
			global = abs
		}
		globals = append(globals, global)
	}
	config.Globals = globals

	loaderService := loader.NewService(
		loader.WithParseNodeModules(config.ParseNodeModules),
		loader.WithExcludes(config.Excludes),
		loader.WithParseExtensions(config.ParseExtensions),
		loader.WithLibraryPaths(config.LibraryPaths),
		loader.WithFollowImports(!config.SkipImports),
		loader.WithMaxDepth(config.MaxDepth),
		loader.WithDebugger(config.Debug),
	)

	registryService := registry.NewService()
	registryService.SetDebugger(config.Debug)

	return &Service{
		loader:   loaderService,
		registry: registryService,
		config:   config,
	}
}

// Load parses the documents under searchDirs, the listed files and the
// configured globals into the symbol table.
func (s *Service) Load(searchDirs []string, files []string) error {
	s.config.Debug.Printf("Orchestrator: Loading %d search dirs, %d files", len(searchDirs), len(files))

	if len(searchDirs) > 0 {
		result, err := s.loader.LoadSearchDirs(searchDirs)
		if err != nil {
			return fmt.Errorf("failed to load search directories: %w", err)
		}
		s.registry.AddDocuments(result.Documents)
	}

	files = append(append([]string(nil), files...), s.config.Globals...)
	if len(files) > 0 {
		result, err := s.loader.LoadFiles(files)
		if err != nil {
			return fmt.Errorf("failed to load files: %w", err)
		}
		s.registry.AddDocuments(result.Documents)
	}

	s.ids = s.idDigest()
	s.config.Debug.Printf("Orchestrator: Registry has %d documents", s.registry.Documents())
	return nil
}

// idDigest hashes the id given to every loaded document. Cached entries hold
// cross-document refs built from those ids, so the digest is part of the key.
func (s *Service) idDigest() uint64 {
	h := xxhash.New()
	_ = s.registry.RangeDocuments(func(doc *domain.Document) error {
		_, _ = h.WriteString(doc.Path)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(s.config.IDFunc(doc.Path))
		_, _ = h.WriteString("\x00")
		return nil
	})
	return h.Sum64()
}

// Registry returns the registry service for external access.
func (s *Service) Registry() *registry.Service {
	return s.registry
}

// GenerateEntry builds a standalone schema for the declaration name of the
// document at path. Every reachable declaration is materialized in the
// result's own definitions and extended declarations are folded into the
// declarations extending them.
func (s *Service) GenerateEntry(ctx context.Context, path string, name string) (spec.Schema, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	id := domain.DeclID{Path: path, Names: strings.Split(name, ".")}
	if _, ok := s.registry.Declaration(id); !ok {
		return spec.Schema{}, domain.NewFailure(domain.FailureDeclaration, domain.Position{File: path}, name, domain.ErrNotFound)
	}

	resolver := s.resolver(definition.ModeEntry)
	w := s.newWorklist(resolver)
	rootRef := resolver.Ref(id, path)
	w.push(definition.Pending{ID: id, Ref: rootRef, Inline: true})
	if err := w.drain(ctx); err != nil {
		return spec.Schema{}, err
	}

	s.config.Debug.Printf("Orchestrator: Entry %s expanded %d declarations", id, len(w.seen))

	out := w.splice(schema.InlinePlaceholder(rootRef))
	if defs := w.definitions(); len(defs) > 0 {
		out.Definitions = defs
	}
	out = merger.FoldAnyOf(out)
	out.Schema = spec.SchemaURL(schema.DraftURL)
	return out, nil
}

// resolver builds a resolver for one generation run.
func (s *Service) resolver(mode definition.Mode) *definition.Resolver {
	return definition.NewResolver(s.registry, definition.Options{
		Mode:    mode,
		IDFunc:  s.config.IDFunc,
		Globals: s.config.Globals,
		Hooks:   s.config.Hooks,
		Logger:  s.config.Logger,
	})
}

// documentURL builds the $id of a document.
func (s *Service) documentURL(id string) string {
	base := s.config.BaseURL
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + id
}
