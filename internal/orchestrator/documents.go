package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/definition"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/schema"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// GenerateDocuments builds one schema per loaded document, keyed by document
// id. Documents are generated concurrently, each with its own store, bounded
// by the number of CPUs.
//
// In strict mode the first failing document aborts the run. Otherwise failing
// documents are logged and left out, and their failures are returned next to
// the documents that succeeded. Two documents with the same id fail the later
// one in path order.
func (s *Service) GenerateDocuments(ctx context.Context) (map[string]spec.Schema, error) {
	var docs []*domain.Document
	_ = s.registry.RangeDocuments(func(doc *domain.Document) error {
		docs = append(docs, doc)
		return nil
	})

	s.config.Debug.Printf("Orchestrator: Generating %d documents (parallel, limit=%d)", len(docs), runtime.NumCPU())

	var (
		mu       sync.Mutex
		out      = make(map[string]spec.Schema, len(docs))
		failures *multierror.Error
	)

	skip := func(failure *domain.Failure) {
		s.config.Logger.Error("document skipped", "file", failure.Pos.File, "err", failure.Err)
		mu.Lock()
		failures = multierror.Append(failures, failure)
		mu.Unlock()
	}

	ids := make(map[*domain.Document]string, len(docs))
	claimed := make(map[string]string, len(docs))
	for _, doc := range docs {
		id := s.config.IDFunc(doc.Path)
		if first, ok := claimed[id]; ok {
			failure := domain.NewFailure(domain.FailureDocument, domain.Position{File: doc.Path}, id,
				fmt.Errorf("%w: already used by %s", domain.ErrDuplicateID, first))
			if s.config.Strict {
				return nil, failure
			}
			skip(failure)
			continue
		}
		claimed[id] = doc.Path
		ids[doc] = id
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, doc := range docs {
		doc := doc
		id, ok := ids[doc]
		if !ok {
			continue
		}
		g.Go(func() error {
			generated, err := s.generateDocument(gctx, doc, id)
			if err != nil {
				failure := domain.NewFailure(domain.FailureDocument, domain.Position{File: doc.Path}, id, err)
				if s.config.Strict {
					return failure
				}
				skip(failure)
				return nil
			}

			mu.Lock()
			out[id] = generated
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.config.Debug.Printf("Orchestrator: Generated %d documents", len(out))
	return out, failures.ErrorOrNil()
}

// generateDocument expands every non-generic top-level declaration of doc.
func (s *Service) generateDocument(ctx context.Context, doc *domain.Document, id string) (spec.Schema, error) {
	resolver := s.resolver(definition.ModeDocument)
	w := s.newWorklist(resolver)
	for _, decl := range doc.Declarations {
		if decl.Generic() {
			continue
		}
		declID := domain.DeclID{Path: doc.Path, Names: []string{decl.Name}}
		w.push(definition.Pending{ID: declID, Ref: resolver.Ref(declID, doc.Path)})
	}
	if err := w.drain(ctx); err != nil {
		return spec.Schema{}, err
	}
	for _, failure := range w.failures {
		s.config.Debug.Printf("Orchestrator: %s: %v", id, failure)
	}

	out := spec.Schema{}
	out.Schema = spec.SchemaURL(schema.DraftURL)
	out = schema.SetExtra(out, schema.KeywordID, s.documentURL(id))
	out.Definitions = w.definitions()

	root := domain.LowerName(s.config.RootName(doc.Path))
	if _, ok := out.Definitions[root]; ok {
		out.Ref = spec.MustCreateRef(schema.JoinRef("", root))
	}
	return out, nil
}
