// Package registry - name lookup and import resolution functionality.
package registry

import (
	"fmt"

	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/loader"
)

// Resolve resolves a dotted name as seen from scope. Enclosing namespaces are
// searched innermost first, then the document's top level, then its imports.
func (s *Service) Resolve(scope domain.Scope, name []string) (domain.Symbol, error) {
	if len(name) == 0 {
		return domain.Symbol{}, fmt.Errorf("empty name: %w", domain.ErrNotFound)
	}
	doc, ok := s.documents[scope.Path]
	if !ok {
		return domain.Symbol{}, fmt.Errorf("document %s: %w", scope.Path, domain.ErrNotFound)
	}

	if sym, ok := s.lexical(doc, scope.Namespace, name); ok {
		return sym, nil
	}

	if sym, ok := s.imported(doc, name, make(map[string]struct{})); ok {
		return sym, nil
	}

	return domain.Symbol{}, fmt.Errorf("%s in %s: %w", fullTypeName(name...), scope.Path, domain.ErrNotFound)
}

// lexical searches the namespace chain from the innermost scope outwards.
func (s *Service) lexical(doc *domain.Document, namespace []string, name []string) (domain.Symbol, bool) {
	for depth := len(namespace); depth >= 0; depth-- {
		prefix := namespace[:depth]
		var decl *domain.Declaration
		if depth == 0 {
			decl = doc.Declaration(name[0])
		} else {
			decl = descend(doc.Declaration(prefix[0]), append(append([]string{}, prefix[1:]...), name[0]))
		}
		if decl == nil {
			continue
		}
		decl = descend(decl, name[1:])
		if decl == nil {
			return domain.Symbol{}, false
		}
		names := make([]string, 0, depth+len(name))
		names = append(names, prefix...)
		names = append(names, name...)
		id := domain.DeclID{Path: doc.Path, Names: names}
		return s.symbol(id, decl), true
	}
	return domain.Symbol{}, false
}

// imported follows the import bindings of doc for the head of name.
func (s *Service) imported(doc *domain.Document, name []string, visited map[string]struct{}) (domain.Symbol, bool) {
	for _, imp := range doc.Imports {
		if imp.Local != name[0] {
			continue
		}
		target, ok := s.module(doc.Path, imp.From)
		if !ok {
			s.debug.Printf("import %s from %q in %s: module not loaded", imp.Local, imp.From, doc.Path)
			return domain.Symbol{}, false
		}

		switch imp.Imported {
		case "*":
			if len(name) < 2 {
				return domain.Symbol{}, false
			}
			return s.exported(target, name[1], name[2:], visited)
		default:
			return s.exported(target, imp.Imported, name[1:], visited)
		}
	}
	return domain.Symbol{}, false
}

// exported finds the declaration exported as exportName from doc, following
// local export clauses, re-exports and star re-exports.
func (s *Service) exported(doc *domain.Document, exportName string, rest []string, visited map[string]struct{}) (domain.Symbol, bool) {
	key := doc.Path + "#" + exportName
	if _, ok := visited[key]; ok {
		return domain.Symbol{}, false
	}
	visited[key] = struct{}{}

	if exportName == "default" {
		if decl := doc.DefaultExport(); decl != nil {
			return s.within(doc, []string{decl.Name}, rest)
		}
	} else if decl := doc.Declaration(exportName); decl != nil {
		return s.within(doc, []string{exportName}, rest)
	}

	for _, exp := range doc.Exports {
		if exp.Local != exportName {
			continue
		}
		if exp.From == "" {
			name := append([]string{exp.Imported}, rest...)
			if sym, ok := s.lexical(doc, nil, name); ok {
				return sym, true
			}
			return s.imported(doc, name, visited)
		}
		target, ok := s.module(doc.Path, exp.From)
		if !ok {
			return domain.Symbol{}, false
		}
		if exp.Imported == "*" {
			// export * as ns from '...'
			if len(rest) == 0 {
				return domain.Symbol{}, false
			}
			return s.exported(target, rest[0], rest[1:], visited)
		}
		return s.exported(target, exp.Imported, rest, visited)
	}

	if exportName == "default" {
		return domain.Symbol{}, false
	}
	for _, exp := range doc.Exports {
		if exp.Local != "*" || exp.From == "" {
			continue
		}
		target, ok := s.module(doc.Path, exp.From)
		if !ok {
			continue
		}
		if sym, ok := s.exported(target, exportName, rest, visited); ok {
			return sym, true
		}
	}
	return domain.Symbol{}, false
}

func (s *Service) within(doc *domain.Document, head, rest []string) (domain.Symbol, bool) {
	names := append(append([]string{}, head...), rest...)
	decl := descend(doc.Declaration(names[0]), names[1:])
	if decl == nil {
		return domain.Symbol{}, false
	}
	return s.symbol(domain.DeclID{Path: doc.Path, Names: names}, decl), true
}

// module resolves an import specifier against the loaded documents.
func (s *Service) module(from, specifier string) (*domain.Document, bool) {
	path, ok := loader.ResolveModule(from, specifier, func(candidate string) bool {
		_, loaded := s.documents[candidate]
		return loaded
	})
	if !ok {
		return nil, false
	}
	return s.documents[path], true
}
