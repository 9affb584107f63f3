package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/definition"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/schema"
	"github.com/griffnb/tsschema/internal/store"
	"github.com/griffnb/tsschema/internal/store/redisstore"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerSource = `export interface Owner {
  email: string;
}
`
	userSource = `import { Owner } from './owner';

export interface Base {
  id: string;
}

export interface User extends Base {
  /** the name */
  name: string;
  age?: number;
  owner: Owner;
  friend?: User;
}

export type Status = 'on' | 'off';

export interface Box<T> {
  value: T;
}

export namespace Api {
  export interface Req {
    id: number;
  }
}
`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func toJSON(t *testing.T, s spec.Schema) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

// newProject writes the user and owner sources and loads them.
func newProject(t *testing.T, config *Config) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "owner.ts", ownerSource)
	writeFile(t, dir, "user.ts", userSource)

	service := New(config)
	require.NoError(t, service.Load([]string{dir}, nil))
	return service, dir
}

func TestNew(t *testing.T) {
	t.Run("creates orchestrator with default config", func(t *testing.T) {
		// Act
		service := New(nil)

		// Assert
		require.NotNil(t, service)
		assert.NotNil(t, service.loader)
		assert.NotNil(t, service.registry)
		require.NotNil(t, service.config)
		assert.Equal(t, "user.json", service.config.IDFunc("/src/user.ts"))
		assert.Equal(t, "user", service.config.RootName("/src/user.ts"))
		assert.IsType(t, &store.Memory{}, service.config.NewStore())
		assert.Equal(t, 100, service.config.MaxDepth)
	})

	t.Run("globals are made absolute", func(t *testing.T) {
		// Act
		service := New(&Config{Globals: []string{"types/global.d.ts"}})

		// Assert
		require.Len(t, service.config.Globals, 1)
		assert.True(t, filepath.IsAbs(service.config.Globals[0]))
	})
}

func TestService_Load(t *testing.T) {
	t.Run("loads search dirs and globals", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		writeFile(t, dir, "src/a.ts", "export interface A { a: string }")
		global := writeFile(t, dir, "global/g.ts", "interface G { g: number }")
		service := New(&Config{Globals: []string{global}})

		// Act
		err := service.Load([]string{filepath.Join(dir, "src")}, nil)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, service.Registry().Documents())
		_, ok := service.Registry().Document(global)
		assert.True(t, ok)
	})

	t.Run("missing search dir fails", func(t *testing.T) {
		// Arrange
		service := New(nil)

		// Act
		err := service.Load([]string{filepath.Join(t.TempDir(), "missing")}, nil)

		// Assert
		assert.Error(t, err)
	})
}

func TestService_GenerateEntry(t *testing.T) {
	t.Run("materializes references and folds extended declarations", func(t *testing.T) {
		// Arrange
		service, dir := newProject(t, nil)
		ownerKey := definition.FileKey(filepath.Join(dir, "owner.ts"))

		// Act
		got, err := service.GenerateEntry(context.Background(), filepath.Join(dir, "user.ts"), "User")

		// Assert
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"type": "object",
			"properties": {
				"id": {"type": "string"},
				"name": {"type": "string", "description": "the name"},
				"age": {"type": "number"},
				"owner": {"$ref": "#/definitions/`+ownerKey+`/owner"}
			},
			"required": ["id", "name", "owner"],
			"definitions": {
				"`+ownerKey+`": {
					"owner": {"type": "object", "properties": {"email": {"type": "string"}}, "required": ["email"]}
				}
			}
		}`, toJSON(t, got))
	})

	t.Run("namespaced entry", func(t *testing.T) {
		// Arrange
		service, dir := newProject(t, nil)

		// Act
		got, err := service.GenerateEntry(context.Background(), filepath.Join(dir, "user.ts"), "Api.Req")

		// Assert
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"type": "object",
			"properties": {"id": {"type": "number"}},
			"required": ["id"]
		}`, toJSON(t, got))
	})

	t.Run("unknown declaration", func(t *testing.T) {
		// Arrange
		service, dir := newProject(t, nil)

		// Act
		_, err := service.GenerateEntry(context.Background(), filepath.Join(dir, "user.ts"), "Nope")

		// Assert
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("cancelled context", func(t *testing.T) {
		// Arrange
		service, dir := newProject(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Act
		_, err := service.GenerateEntry(ctx, filepath.Join(dir, "user.ts"), "User")

		// Assert
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestService_GenerateDocuments(t *testing.T) {
	t.Run("one document per file", func(t *testing.T) {
		// Arrange
		service, _ := newProject(t, &Config{BaseURL: "https://example.com/schemas"})

		// Act
		got, err := service.GenerateDocuments(context.Background())

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.JSONEq(t, `{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"$id": "https://example.com/schemas/user.json",
			"$ref": "#/definitions/user",
			"definitions": {
				"base": {"type": "object", "properties": {"id": {"type": "string"}}, "required": ["id"]},
				"user": {"anyOf": [
					{"$ref": "#/definitions/base"},
					{
						"type": "object",
						"properties": {
							"name": {"type": "string", "description": "the name"},
							"age": {"type": "number"},
							"owner": {"$ref": "owner.json#/definitions/owner"}
						},
						"required": ["name", "owner"]
					}
				]},
				"status": {"enum": ["on", "off"]},
				"api": {"req": {"type": "object", "properties": {"id": {"type": "number"}}, "required": ["id"]}}
			}
		}`, toJSON(t, got["user.json"]))
		assert.JSONEq(t, `{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"$id": "https://example.com/schemas/owner.json",
			"$ref": "#/definitions/owner",
			"definitions": {
				"owner": {"type": "object", "properties": {"email": {"type": "string"}}, "required": ["email"]}
			}
		}`, toJSON(t, got["owner.json"]))
	})

	t.Run("root reference omitted without a matching declaration", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		writeFile(t, dir, "shapes.ts", "export interface Circle { r: number }")
		service := New(nil)
		require.NoError(t, service.Load([]string{dir}, nil))

		// Act
		got, err := service.GenerateDocuments(context.Background())

		// Assert
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"$id": "shapes.json",
			"definitions": {"circle": {"type": "object", "properties": {"r": {"type": "number"}}, "required": ["r"]}}
		}`, toJSON(t, got["shapes.json"]))
	})

	t.Run("custom root name", func(t *testing.T) {
		// Arrange
		service, _ := newProject(t, &Config{
			RootName: func(path string) string {
				return "Status"
			},
		})

		// Act
		got, err := service.GenerateDocuments(context.Background())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "#/definitions/status", schema.RefOf(got["user.json"]))
		assert.Empty(t, schema.RefOf(got["owner.json"]))
	})
}

func TestService_GenerateDocumentsFailures(t *testing.T) {
	setup := func(t *testing.T, strict bool) *Service {
		t.Helper()
		dir := t.TempDir()
		writeFile(t, dir, "good.ts", "export interface Good { g: string }")
		writeFile(t, dir, "bad.ts", "export interface Bad extends Missing { b: string }")
		service := New(&Config{Strict: strict})
		require.NoError(t, service.Load([]string{dir}, nil))
		return service
	}

	t.Run("lenient skips the failing document", func(t *testing.T) {
		// Arrange
		service := setup(t, false)

		// Act
		got, err := service.GenerateDocuments(context.Background())

		// Assert
		require.Error(t, err)
		var merr *multierror.Error
		require.True(t, errors.As(err, &merr))
		require.Len(t, merr.Errors, 1)
		var failure *domain.Failure
		require.True(t, errors.As(merr.Errors[0], &failure))
		assert.Equal(t, domain.FailureDocument, failure.Kind)
		assert.Equal(t, "bad.json", failure.Subject)

		assert.Contains(t, got, "good.json")
		assert.NotContains(t, got, "bad.json")
	})

	t.Run("strict aborts", func(t *testing.T) {
		// Arrange
		service := setup(t, true)

		// Act
		got, err := service.GenerateDocuments(context.Background())

		// Assert
		require.Error(t, err)
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestService_GenerateDocumentsDuplicateIDs(t *testing.T) {
	setup := func(t *testing.T, strict bool) (*Service, string) {
		t.Helper()
		dir := t.TempDir()
		writeFile(t, dir, "a/user.ts", "export interface User { a: string }")
		writeFile(t, dir, "b/user.ts", "export interface User { b: number }")
		service := New(&Config{Strict: strict})
		require.NoError(t, service.Load([]string{dir}, nil))
		return service, dir
	}

	t.Run("lenient keeps the first document in path order", func(t *testing.T) {
		// Arrange
		service, dir := setup(t, false)

		// Act
		got, err := service.GenerateDocuments(context.Background())

		// Assert
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDuplicateID))
		var merr *multierror.Error
		require.True(t, errors.As(err, &merr))
		require.Len(t, merr.Errors, 1)
		var failure *domain.Failure
		require.True(t, errors.As(merr.Errors[0], &failure))
		assert.Equal(t, domain.FailureDocument, failure.Kind)
		assert.Equal(t, "user.json", failure.Subject)
		assert.Equal(t, filepath.Join(dir, "b", "user.ts"), failure.Pos.File)

		require.Len(t, got, 1)
		assert.Contains(t, got["user.json"].Definitions["user"].Properties, "a")
	})

	t.Run("strict aborts", func(t *testing.T) {
		// Arrange
		service, _ := setup(t, true)

		// Act
		got, err := service.GenerateDocuments(context.Background())

		// Assert
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, domain.ErrDuplicateID))
	})

	t.Run("distinct ids keep both documents", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		writeFile(t, dir, "a/user.ts", "export interface User { a: string }")
		writeFile(t, dir, "b/user.ts", "export interface User { b: number }")
		service := New(&Config{IDFunc: func(path string) string {
			return filepath.Base(filepath.Dir(path)) + "/user.json"
		}})
		require.NoError(t, service.Load([]string{dir}, nil))

		// Act
		got, err := service.GenerateDocuments(context.Background())

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Contains(t, got["a/user.json"].Definitions["user"].Properties, "a")
		assert.Contains(t, got["b/user.json"].Definitions["user"].Properties, "b")
	})
}

func TestService_DefinitionCache(t *testing.T) {
	t.Run("shared memory store serves repeated runs", func(t *testing.T) {
		// Arrange
		shared := store.NewMemory()
		service, dir := newProject(t, &Config{NewStore: func() store.Store { return shared }})
		first, err := service.GenerateEntry(context.Background(), filepath.Join(dir, "user.ts"), "User")
		require.NoError(t, err)
		cached := shared.Len()

		// Act
		second, err := service.GenerateEntry(context.Background(), filepath.Join(dir, "user.ts"), "User")

		// Assert
		require.NoError(t, err)
		assert.Positive(t, cached)
		assert.Equal(t, cached, shared.Len())
		assert.JSONEq(t, toJSON(t, first), toJSON(t, second))
	})

	t.Run("redis store", func(t *testing.T) {
		// Arrange
		mr := miniredis.RunT(t)
		cache, err := redisstore.New(redisstore.Config{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})})
		require.NoError(t, err)
		t.Cleanup(func() { _ = cache.Close() })
		service, _ := newProject(t, &Config{NewStore: func() store.Store { return cache }})

		// Act
		first, err := service.GenerateDocuments(context.Background())
		require.NoError(t, err)
		keys := len(mr.Keys())
		second, err := service.GenerateDocuments(context.Background())

		// Assert
		require.NoError(t, err)
		assert.Positive(t, keys)
		assert.Equal(t, keys, len(mr.Keys()))
		for id := range first {
			assert.JSONEq(t, toJSON(t, first[id]), toJSON(t, second[id]), id)
		}
	})

	t.Run("document ids are part of the key", func(t *testing.T) {
		// Arrange
		shared := store.NewMemory()
		dir := t.TempDir()
		writeFile(t, dir, "owner.ts", ownerSource)
		writeFile(t, dir, "user.ts", userSource)
		generate := func(idFunc func(string) string) map[string]spec.Schema {
			service := New(&Config{IDFunc: idFunc, NewStore: func() store.Store { return shared }})
			require.NoError(t, service.Load([]string{dir}, nil))
			docs, err := service.GenerateDocuments(context.Background())
			require.NoError(t, err)
			return docs
		}
		generate(nil)

		// Act
		got := generate(func(path string) string { return "v2/" + domain.FileStem(path) + ".json" })

		// Assert
		user := got["v2/user.json"].Definitions["user"]
		require.Len(t, user.AnyOf, 2)
		assert.Equal(t, "v2/owner.json#/definitions/owner", schema.RefOf(user.AnyOf[1].Properties["owner"]))
	})

	t.Run("failing store is bypassed", func(t *testing.T) {
		// Arrange
		mr := miniredis.RunT(t)
		cache, err := redisstore.New(redisstore.Config{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})})
		require.NoError(t, err)
		mr.Close()
		service, dir := newProject(t, &Config{NewStore: func() store.Store { return cache }})

		// Act
		got, err := service.GenerateEntry(context.Background(), filepath.Join(dir, "owner.ts"), "Owner")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"email"}, got.Required)
	})
}

func TestService_Hooks(t *testing.T) {
	// Arrange
	var seen []string
	hook := domain.HookFuncs{
		Before: func(ctx domain.PropertyContext, s spec.Schema) bool {
			return ctx.Property.Name == "age"
		},
		After: func(ctx domain.PropertyContext, s spec.Schema) {
			seen = append(seen, ctx.Owner.Name()+"."+ctx.Property.Name)
		},
	}
	service, dir := newProject(t, &Config{Hooks: []domain.PropertyHook{hook}})

	// Act
	got, err := service.GenerateEntry(context.Background(), filepath.Join(dir, "user.ts"), "User")

	// Assert
	require.NoError(t, err)
	assert.NotContains(t, got.Properties, "age")
	assert.Contains(t, seen, "User.name")
	assert.Contains(t, seen, "Base.id")
	assert.NotContains(t, seen, "User.age")
}

func TestWorklistSplice(t *testing.T) {
	// Arrange
	w := &worklist{
		logger: domain.NopLogger{},
		inline: map[string]spec.Schema{
			"#/definitions/k/a": {SchemaProps: spec.SchemaProps{
				Type:  []string{"object"},
				AnyOf: []spec.Schema{schema.InlinePlaceholder("#/definitions/k/b")},
			}},
			"#/definitions/k/b": {SchemaProps: spec.SchemaProps{
				AnyOf: []spec.Schema{schema.InlinePlaceholder("#/definitions/k/a")},
			}},
		},
	}
	root := schema.InlinePlaceholder("#/definitions/k/a")
	root.Description = "kept"

	// Act
	got := w.splice(root)

	// Assert
	assert.JSONEq(t, `{"type": "object", "description": "kept", "anyOf": [{"anyOf": [{}]}]}`, toJSON(t, got))
}
