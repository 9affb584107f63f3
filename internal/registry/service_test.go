package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/loader"
	"github.com/griffnb/tsschema/internal/parser/declaration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, sources map[string]string) *Service {
	t.Helper()
	svc := NewService()
	for path, src := range sources {
		doc, err := declaration.ParseSource(path, []byte(src))
		require.NoError(t, err)
		svc.AddDocument(doc)
	}
	return svc
}

func TestNewService(t *testing.T) {
	t.Run("creates new service with empty documents", func(t *testing.T) {
		// Act
		svc := NewService()

		// Assert
		require.NotNil(t, svc)
		assert.Equal(t, 0, svc.Documents())
		assert.True(t, svc.LibraryName("Date"))
		assert.False(t, svc.LibraryName("Person"))
	})
}

func TestService_AddDocument(t *testing.T) {
	t.Run("library documents contribute library names", func(t *testing.T) {
		// Arrange
		svc := NewService()
		doc, err := declaration.ParseSource("/lib/lib.d.ts", []byte("interface HTMLElement { id: string }"))
		require.NoError(t, err)
		doc.Library = true

		// Act
		svc.AddDocument(doc)

		// Assert
		assert.True(t, svc.LibraryName("HTMLElement"))
		sym, ok := svc.Lookup("/lib/lib.d.ts", []string{"HTMLElement"})
		require.True(t, ok)
		assert.True(t, sym.Library)
	})

	t.Run("ignores documents without a path", func(t *testing.T) {
		// Arrange
		svc := NewService()

		// Act
		svc.AddDocument(&domain.Document{})
		svc.AddDocument(nil)

		// Assert
		assert.Equal(t, 0, svc.Documents())
	})
}

func TestService_Resolve(t *testing.T) {
	svc := newRegistry(t, map[string]string{
		"/p/a.ts": `
import { B as Bee, Shared } from './b';
import Def from './b';
import * as bns from './b';
import { Missing } from 'some-package';

interface A { x: string }
namespace Outer {
	interface A { y: number }
	namespace Inner {
		type Leaf = A;
	}
}
`,
		"/p/b.ts": `
export interface B { b: string }
export default interface D { d: number }
export { C as Shared } from './c';
export * from './c';
namespace N { interface Deep {} }
export { N };
`,
		"/p/c.ts": `
export interface C { c: boolean }
export interface Star { s: string }
export { Star as Loop } from './c';
export { Cyc } from './c';
`,
	})

	tests := []struct {
		name     string
		scope    domain.Scope
		lookup   []string
		wantPath string
		wantName []string
	}{
		{
			name:     "top level declaration",
			scope:    domain.Scope{Path: "/p/a.ts"},
			lookup:   []string{"A"},
			wantPath: "/p/a.ts",
			wantName: []string{"A"},
		},
		{
			name:     "innermost namespace wins",
			scope:    domain.Scope{Path: "/p/a.ts", Namespace: []string{"Outer", "Inner"}},
			lookup:   []string{"A"},
			wantPath: "/p/a.ts",
			wantName: []string{"Outer", "A"},
		},
		{
			name:     "dotted name descends namespaces",
			scope:    domain.Scope{Path: "/p/a.ts"},
			lookup:   []string{"Outer", "Inner", "Leaf"},
			wantPath: "/p/a.ts",
			wantName: []string{"Outer", "Inner", "Leaf"},
		},
		{
			name:     "aliased named import",
			scope:    domain.Scope{Path: "/p/a.ts"},
			lookup:   []string{"Bee"},
			wantPath: "/p/b.ts",
			wantName: []string{"B"},
		},
		{
			name:     "default import",
			scope:    domain.Scope{Path: "/p/a.ts"},
			lookup:   []string{"Def"},
			wantPath: "/p/b.ts",
			wantName: []string{"D"},
		},
		{
			name:     "namespace import",
			scope:    domain.Scope{Path: "/p/a.ts"},
			lookup:   []string{"bns", "B"},
			wantPath: "/p/b.ts",
			wantName: []string{"B"},
		},
		{
			name:     "re-export with alias",
			scope:    domain.Scope{Path: "/p/a.ts"},
			lookup:   []string{"Shared"},
			wantPath: "/p/c.ts",
			wantName: []string{"C"},
		},
		{
			name:     "star re-export through namespace import",
			scope:    domain.Scope{Path: "/p/a.ts"},
			lookup:   []string{"bns", "Star"},
			wantPath: "/p/c.ts",
			wantName: []string{"Star"},
		},
		{
			name:     "re-export of the same document",
			scope:    domain.Scope{Path: "/p/a.ts"},
			lookup:   []string{"bns", "Loop"},
			wantPath: "/p/c.ts",
			wantName: []string{"Star"},
		},
		{
			name:     "local export clause of a namespace",
			scope:    domain.Scope{Path: "/p/a.ts"},
			lookup:   []string{"bns", "N", "Deep"},
			wantPath: "/p/b.ts",
			wantName: []string{"N", "Deep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			sym, err := svc.Resolve(tt.scope, tt.lookup)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, sym.ID.Path)
			assert.Equal(t, tt.wantName, sym.ID.Names)
			require.NotNil(t, sym.Declaration)
			assert.Equal(t, tt.wantName[len(tt.wantName)-1], sym.Declaration.Name)
		})
	}

	t.Run("unknown names are not found", func(t *testing.T) {
		for _, name := range [][]string{{"Nope"}, {"Missing"}, {"Outer", "Nope"}, {"bns", "Cyc"}} {
			_, err := svc.Resolve(domain.Scope{Path: "/p/a.ts"}, name)
			assert.True(t, errors.Is(err, domain.ErrNotFound), "%v", name)
		}
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := svc.Resolve(domain.Scope{Path: "/p/none.ts"}, []string{"A"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestService_EvaluateLiteral(t *testing.T) {
	svc := newRegistry(t, map[string]string{
		"/p/a.ts": "type Hello = 'Hello';\ntype Num = 2;\ntype Greeting = `${Hello} ${Num}!`;\ntype Loop = Loop;\ntype Str = string;",
	})
	doc, _ := svc.Document("/p/a.ts")
	scope := domain.Scope{Path: "/p/a.ts"}

	t.Run("template literal follows aliases", func(t *testing.T) {
		value, ok := svc.EvaluateLiteral(scope, doc.Declaration("Greeting").Type)
		assert.True(t, ok)
		assert.Equal(t, "Hello 2!", value)
	})

	t.Run("self referencing alias", func(t *testing.T) {
		_, ok := svc.EvaluateLiteral(scope, doc.Declaration("Loop").Type)
		assert.False(t, ok)
	})

	t.Run("non literal alias", func(t *testing.T) {
		_, ok := svc.EvaluateLiteral(scope, &domain.TypeNode{Kind: domain.KindReference, Name: "Str"})
		assert.False(t, ok)
	})
}

func TestService_Digest(t *testing.T) {
	t.Run("changes when a document changes", func(t *testing.T) {
		// Arrange
		a := newRegistry(t, map[string]string{"/p/a.ts": "interface A {}"})
		b := newRegistry(t, map[string]string{"/p/a.ts": "interface A { x: string }"})
		same := newRegistry(t, map[string]string{"/p/a.ts": "interface A {}"})

		// Assert
		assert.NotEqual(t, a.Digest(), b.Digest())
		assert.Equal(t, a.Digest(), same.Digest())
	})
}

func TestService_RangeDocuments(t *testing.T) {
	t.Run("iterates loaded fixtures in path order", func(t *testing.T) {
		// Arrange
		result, err := loader.NewService().LoadSearchDirs([]string{"../../testing/testdata/translate"})
		require.NoError(t, err)
		svc := NewService()
		svc.AddDocuments(result.Documents)

		// Act
		var names []string
		err = svc.RangeDocuments(func(doc *domain.Document) error {
			names = append(names, filepath.Base(doc.Path))
			return nil
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"global.ts", "import.ts", "reexport.ts", "support.ts", "via_reexport.ts"}, names)

		sym, err := svc.Resolve(domain.Scope{Path: result.Paths()[4]}, []string{"Reexported"})
		require.NoError(t, err)
		assert.Equal(t, "Simple", sym.Declaration.Name)
	})
}
