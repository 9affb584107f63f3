// Package merger flattens generated documents: references are replaced by
// their targets and unions or intersections of object schemas are folded into
// single schemas.
package merger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/schema"
	"github.com/hashicorp/go-multierror"
)

// Options configures a merge.
type Options struct {
	// CollapseUnions folds every anyOf into its parent.
	CollapseUnions bool

	// CollapseIntersections folds every allOf into its parent unless all of
	// its members are if/then pairs.
	CollapseIntersections bool

	Logger domain.Logger
}

// Merge flattens every document of docs, keyed by document id. References
// are resolved in the referring document or, when prefixed by an id, in that
// document. A document that fails is kept partially merged and its failures
// are returned next to the result.
func Merge(docs map[string]spec.Schema, opts Options) (map[string]spec.Schema, error) {
	if opts.Logger == nil {
		opts.Logger = domain.NopLogger{}
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result *multierror.Error
	out := make(map[string]spec.Schema, len(docs))
	for _, id := range ids {
		doc, err := mergeDocument(docs, id, opts)
		if err != nil {
			opts.Logger.Error("merge failed, document left partial", "document", id, "err", err)
			result = multierror.Append(result, domain.NewFailure(domain.FailureMerge, domain.Position{}, id, err))
		}
		out[id] = doc
	}
	return out, result.ErrorOrNil()
}

// MergeDefinitions inlines every local reference of s from its own
// definitions and drops them.
func MergeDefinitions(s spec.Schema) (spec.Schema, error) {
	m := &merger{docs: map[string]spec.Schema{"": s}, opts: Options{Logger: domain.NopLogger{}}}
	out := m.walk(s, "", nil)
	out.Definitions = nil
	return out, m.errs.ErrorOrNil()
}

// FoldAnyOf folds every anyOf of the tree into its parent, innermost first.
func FoldAnyOf(s spec.Schema) spec.Schema {
	s = schema.MapChildren(s, FoldAnyOf)
	if len(s.AnyOf) > 0 {
		s = foldAnyOf(s)
	}
	return s
}

func mergeDocument(docs map[string]spec.Schema, id string, opts Options) (spec.Schema, error) {
	doc := docs[id]
	m := &merger{docs: docs, opts: opts}
	out := m.walk(doc, id, nil)
	if schema.IsRefSchema(doc) {
		out.Definitions = nil
	}
	return out, m.errs.ErrorOrNil()
}

type merger struct {
	docs map[string]spec.Schema
	opts Options
	errs *multierror.Error
}

// walk merges one node read in document docID. stack holds the references
// being resolved, outermost first.
func (m *merger) walk(s spec.Schema, docID string, stack []string) spec.Schema {
	var target *spec.Schema
	if ref := schema.RefOf(s); ref != "" && !schema.IsTypeParameter(s) {
		s = schema.DropRef(s)
		if resolved, ok := m.resolve(ref, docID, stack); ok {
			target = &resolved
		}
	}

	s = schema.MapChildren(s, func(child spec.Schema) spec.Schema {
		return m.walk(child, docID, stack)
	})

	if target != nil {
		s = schema.Combine(*target, s)
	}
	if m.opts.CollapseUnions && len(s.AnyOf) > 0 {
		s = foldAnyOf(s)
	}
	if m.opts.CollapseIntersections && len(s.AllOf) > 0 && !allConditional(s.AllOf) {
		s = foldAllOf(s)
	}
	return s
}

// resolve returns the merged target of ref.
func (m *merger) resolve(ref, docID string, stack []string) (spec.Schema, bool) {
	refDoc, tokens, err := schema.SplitRef(ref)
	if err != nil {
		m.errs = multierror.Append(m.errs, err)
		return spec.Schema{}, false
	}
	if refDoc == "" {
		refDoc = docID
	}

	key := refDoc + "#/" + strings.Join(tokens, "/")
	for _, item := range stack {
		if item == key {
			m.opts.Logger.Warn("cyclic reference dropped", "ref", ref, "document", docID)
			return spec.Schema{}, false
		}
	}

	doc, ok := m.docs[refDoc]
	if !ok {
		m.errs = multierror.Append(m.errs, fmt.Errorf("reference %q: unknown document %q", ref, refDoc))
		return spec.Schema{}, false
	}
	target, ok := schema.Lookup(doc, tokens)
	if !ok {
		m.errs = multierror.Append(m.errs, fmt.Errorf("reference %q: %w", ref, domain.ErrNotFound))
		return spec.Schema{}, false
	}

	next := make([]string, 0, len(stack)+1)
	next = append(append(next, stack...), key)
	return m.walk(target, refDoc, next), true
}

func allConditional(list []spec.Schema) bool {
	for _, item := range list {
		if !schema.IsConditional(item) {
			return false
		}
	}
	return true
}
