package orchestrator

import (
	"context"
	"fmt"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/definition"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/schema"
	"github.com/griffnb/tsschema/internal/store"
)

// worklist expands pending references breadth first. Each declaration is
// synthesized at most once per store; later requests are served from it.
type worklist struct {
	resolver *definition.Resolver
	store    store.Store
	prefix   string
	logger   domain.Logger
	debug    Debugger

	queue  []definition.Pending
	seen   map[string]struct{}
	defs   spec.Definitions
	inline map[string]spec.Schema

	// failures are the properties dropped while expanding.
	failures []*domain.Failure
}

func (s *Service) newWorklist(resolver *definition.Resolver) *worklist {
	return &worklist{
		resolver: resolver,
		store:    s.config.NewStore(),
		prefix:   fmt.Sprintf("%s:%016x:%016x:", resolver.Mode(), s.registry.Digest(), s.ids),
		logger:   s.config.Logger,
		debug:    s.config.Debug,
		seen:     make(map[string]struct{}),
		inline:   make(map[string]spec.Schema),
	}
}

// push enqueues every pending reference not queued before.
func (w *worklist) push(items ...definition.Pending) {
	for _, item := range items {
		key := item.ID.Key()
		if item.Inline {
			key += "|inline"
		}
		if _, ok := w.seen[key]; ok {
			continue
		}
		w.seen[key] = struct{}{}
		w.queue = append(w.queue, item)
	}
}

// drain expands the queue until it is empty.
func (w *worklist) drain(ctx context.Context) error {
	for len(w.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := w.queue[0]
		w.queue = w.queue[1:]

		entry, err := w.expand(ctx, item)
		if err != nil {
			return err
		}

		if item.Inline {
			w.inline[item.Ref] = entry.Schema
		} else {
			_, path, err := schema.DefinitionPath(item.Ref)
			if err != nil {
				return err
			}
			w.defs = schema.SetDefinition(w.defs, path, entry.Schema)
		}
		w.push(entry.Deps...)
	}
	return nil
}

// expand returns the cached synthesis of a declaration or synthesizes it.
// A failing cache is logged and bypassed.
func (w *worklist) expand(ctx context.Context, item definition.Pending) (store.Entry, error) {
	key := w.prefix + item.ID.Key()

	entry, ok, err := w.store.Get(ctx, key)
	if err != nil {
		w.logger.Warn("definition cache read failed", "key", key, "err", err)
	}
	if ok {
		w.debug.Printf("Orchestrator: Cache hit %s", item.ID)
		return entry, nil
	}

	res, err := w.resolver.Generate(item.ID)
	if err != nil {
		return store.Entry{}, err
	}
	w.failures = append(w.failures, res.Failures...)

	entry = store.Entry{Ref: item.Ref, Schema: res.Schema, Deps: res.Deps}
	if err := w.store.Put(ctx, key, entry); err != nil {
		w.logger.Warn("definition cache write failed", "key", key, "err", err)
	}
	return entry, nil
}

// definitions returns the expanded definitions with inline placeholders spliced.
func (w *worklist) definitions() spec.Definitions {
	if len(w.defs) == 0 {
		return nil
	}
	out := make(spec.Definitions, len(w.defs))
	for name, def := range w.defs {
		out[name] = w.splice(def)
	}
	return out
}

// splice replaces every inline placeholder of s with the content expanded
// for its reference. Content wins over the placeholder's own keywords.
func (w *worklist) splice(s spec.Schema) spec.Schema {
	return w.spliceWith(s, nil)
}

func (w *worklist) spliceWith(s spec.Schema, stack []string) spec.Schema {
	return schema.Transform(s, func(node spec.Schema) (spec.Schema, bool) {
		if !schema.IsInlinePlaceholder(node) {
			return node, false
		}

		ref := schema.RefOf(node)
		for _, item := range stack {
			if item == ref {
				w.logger.Debugf("cyclic inline reference %s dropped", ref)
				return spec.Schema{}, true
			}
		}

		node = schema.DeleteExtra(schema.DropRef(node), schema.KeywordInline)
		content, ok := w.inline[ref]
		if !ok {
			return node, false
		}

		next := make([]string, 0, len(stack)+1)
		next = append(append(next, stack...), ref)
		return w.spliceWith(schema.Override(node, content), next), true
	})
}
