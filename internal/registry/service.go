// Package registry provides centralized management of the loaded declaration documents.
// It handles name lookup, import and re-export resolution and built-in library detection.
package registry

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/griffnb/tsschema/internal/domain"
)

// Service manages the documents of one program and resolves names across them.
type Service struct {
	documents map[string]*domain.Document
	library   map[string]struct{}
	debug     Debugger
}

// NewService creates a new registry service.
func NewService() *Service {
	library := make(map[string]struct{}, len(libraryNames))
	for _, name := range libraryNames {
		library[name] = struct{}{}
	}
	return &Service{
		documents: make(map[string]*domain.Document),
		library:   library,
		debug:     noOpDebugger{},
	}
}

// SetDebugger sets the debugger.
func (s *Service) SetDebugger(debug Debugger) {
	if debug == nil {
		debug = noOpDebugger{}
	}
	s.debug = debug
}

// AddDocument stores a parsed document. A document already registered under
// the same path is replaced.
func (s *Service) AddDocument(doc *domain.Document) {
	if doc == nil || doc.Path == "" {
		return
	}
	s.documents[doc.Path] = doc
	if doc.Library {
		for _, decl := range doc.Declarations {
			s.library[decl.Name] = struct{}{}
		}
	}
}

// AddDocuments stores every document of a load result.
func (s *Service) AddDocuments(docs map[string]*domain.Document) {
	for _, path := range sortedPaths(docs) {
		s.AddDocument(docs[path])
	}
}

// Document returns a loaded document by path.
func (s *Service) Document(path string) (*domain.Document, bool) {
	doc, ok := s.documents[path]
	return doc, ok
}

// Declaration returns the declaration with the given identity.
func (s *Service) Declaration(id domain.DeclID) (*domain.Declaration, bool) {
	doc, ok := s.documents[id.Path]
	if !ok || len(id.Names) == 0 {
		return nil, false
	}
	decl := descend(doc.Declaration(id.Names[0]), id.Names[1:])
	return decl, decl != nil
}

// Lookup finds a declaration declared directly in the document at path,
// descending namespaces for dotted names. Imports are not followed.
func (s *Service) Lookup(path string, names []string) (domain.Symbol, bool) {
	id := domain.DeclID{Path: path, Names: names}
	decl, ok := s.Declaration(id)
	if !ok {
		return domain.Symbol{}, false
	}
	return s.symbol(id, decl), true
}

// LibraryName reports whether name is provided by the built-in library.
func (s *Service) LibraryName(name string) bool {
	_, ok := s.library[name]
	return ok
}

// RangeDocuments iterates over the non-library documents in path order.
func (s *Service) RangeDocuments(handle func(doc *domain.Document) error) error {
	for _, path := range sortedPaths(s.documents) {
		doc := s.documents[path]
		if doc.Library {
			continue
		}
		if err := handle(doc); err != nil {
			return err
		}
	}
	return nil
}

// Documents returns the number of registered documents.
func (s *Service) Documents() int {
	return len(s.documents)
}

// Digest returns a hash of every document digest. Any source change yields a new digest.
func (s *Service) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, path := range sortedPaths(s.documents) {
		_, _ = h.WriteString(path)
		binary.LittleEndian.PutUint64(buf[:], s.documents[path].Digest)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

func (s *Service) symbol(id domain.DeclID, decl *domain.Declaration) domain.Symbol {
	doc := s.documents[id.Path]
	return domain.Symbol{
		ID:          id,
		Declaration: decl,
		Library:     doc != nil && doc.Library,
	}
}

func descend(decl *domain.Declaration, names []string) *domain.Declaration {
	for _, name := range names {
		if decl == nil {
			return nil
		}
		decl = decl.Child(name)
	}
	return decl
}

func sortedPaths(docs map[string]*domain.Document) []string {
	paths := make([]string, 0, len(docs))
	for path := range docs {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		return strings.Compare(paths[i], paths[j]) < 0
	})
	return paths
}
