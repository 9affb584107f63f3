// Package gen writes the schemas generated from declaration files: one
// document per source file, a single entry, or a merged copy of existing
// documents.
package gen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/console"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/merger"
	"github.com/griffnb/tsschema/internal/orchestrator"
	"github.com/griffnb/tsschema/internal/store"
	"github.com/griffnb/tsschema/internal/store/redisstore"
	"github.com/hashicorp/go-multierror"
	"sigs.k8s.io/yaml"
)

type genTypeWriter func(s spec.Schema) ([]byte, error)

type outputType struct {
	ext   string
	write genTypeWriter
}

// Gen presents a generate tool for tsschema.
type Gen struct {
	json          func(data interface{}) ([]byte, error)
	jsonIndent    func(data interface{}) ([]byte, error)
	jsonToYAML    func(data []byte) ([]byte, error)
	outputTypeMap map[string]outputType
	debug         Debugger
	logger        domain.Logger
}

// Debugger is the interface that wraps the basic Printf method.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// New creates a new Gen.
func New() *Gen {
	gen := Gen{
		json: json.Marshal,
		jsonIndent: func(data interface{}) ([]byte, error) {
			return json.MarshalIndent(data, "", "  ")
		},
		jsonToYAML: yaml.JSONToYAML,
		debug:      console.Debugger(console.Logger),
		logger:     console.Logger,
	}

	gen.outputTypeMap = map[string]outputType{
		"json": {ext: ".json", write: gen.writeJSON},
		"yaml": {ext: ".yaml", write: gen.writeYAML},
		"yml":  {ext: ".yml", write: gen.writeYAML},
	}

	return &gen
}

func (g *Gen) configure(debugger Debugger, logger domain.Logger) {
	if debugger != nil {
		g.debug = debugger
	}
	if logger != nil {
		g.logger = logger
	}
}

// Build generates one schema per declaration file found under the search
// directories and writes it to OutputDir once per output type.
func (g *Gen) Build(ctx context.Context, config *Config) error {
	g.configure(config.Debugger, config.Logger)

	for _, searchDir := range config.SearchDirs {
		if _, err := os.Stat(searchDir); os.IsNotExist(err) {
			return fmt.Errorf("dir: %s does not exist", searchDir)
		}
	}

	outputTypes := config.OutputTypes
	if len(outputTypes) == 0 {
		outputTypes = []string{"json"}
	}

	newStore, closeStore, err := g.definitionStore(ctx, config)
	if err != nil {
		return err
	}
	defer closeStore()

	g.debug.Printf("Generate schemas....")

	orc := orchestrator.New(&orchestrator.Config{
		Excludes:         config.Excludes,
		ParseNodeModules: config.ParseNodeModules,
		ParseExtensions:  config.ParseExtensions,
		SkipImports:      config.SkipImports,
		MaxDepth:         config.MaxDepth,
		LibraryPaths:     config.LibraryPaths,
		Globals:          config.Globals,
		IDFunc:           documentID(config.SearchDirs),
		RootName:         rootName(config.Roots),
		BaseURL:          config.BaseURL,
		Strict:           config.Strict,
		NewStore:         newStore,
		Logger:           g.logger,
		Debug:            g.debug,
	})

	if err := orc.Load(config.SearchDirs, config.Files); err != nil {
		return err
	}

	docs, err := orc.GenerateDocuments(ctx)
	if err != nil {
		if docs == nil {
			return err
		}
		g.logger.Warn("documents skipped", "count", failureCount(err))
	}

	if config.Merge {
		merged, err := merger.Merge(docs, merger.Options{
			CollapseUnions:        config.CollapseUnions,
			CollapseIntersections: config.CollapseIntersections,
			Logger:                g.logger,
		})
		if err != nil && config.Strict {
			return err
		}
		docs = merged
	}

	return g.writeDocuments(config.OutputDir, outputTypes, docs)
}

// writeDocuments writes every document under dir, named after its id.
func (g *Gen) writeDocuments(dir string, outputTypes []string, docs map[string]spec.Schema) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, ot := range outputTypes {
		ot = strings.ToLower(strings.TrimSpace(ot))
		typeWriter, ok := g.outputTypeMap[ot]
		if !ok {
			g.logger.Warn(fmt.Sprintf("output type '%s' not supported", ot))
			continue
		}

		for _, id := range ids {
			b, err := typeWriter.write(sanitizeSchema(docs[id]))
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}

			name := filepath.Join(dir, filepath.FromSlash(id))
			name = strings.TrimSuffix(name, filepath.Ext(name)) + typeWriter.ext
			if err := g.writeFile(b, name); err != nil {
				return err
			}

			g.debug.Printf("create %s at %+v", id, name)
		}
	}

	return nil
}

// Encode renders s in the given output type.
func (g *Gen) Encode(s spec.Schema, outputType string) ([]byte, error) {
	typeWriter, ok := g.outputTypeMap[strings.ToLower(strings.TrimSpace(outputType))]
	if !ok {
		return nil, fmt.Errorf("output type '%s' not supported", outputType)
	}
	return typeWriter.write(sanitizeSchema(s))
}

func (g *Gen) writeJSON(s spec.Schema) ([]byte, error) {
	b, err := g.jsonIndent(s)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func (g *Gen) writeYAML(s spec.Schema) ([]byte, error) {
	b, err := g.json(s)
	if err != nil {
		return nil, err
	}

	y, err := g.jsonToYAML(b)
	if err != nil {
		return nil, fmt.Errorf("cannot covert json to yaml error: %s", err)
	}
	return y, nil
}

func (g *Gen) writeFile(b []byte, file string) error {
	if err := os.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}

	defer f.Close()

	_, err = f.Write(b)

	return err
}

// definitionStore returns the store factory of the run. A Redis URL shares
// one store between every document and every run.
func (g *Gen) definitionStore(ctx context.Context, config *Config) (func() store.Store, func(), error) {
	if config.RedisURL == "" {
		return nil, func() {}, nil
	}

	var ttl time.Duration
	if config.RedisTTL != "" {
		d, err := time.ParseDuration(config.RedisTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis ttl: %w", err)
		}
		ttl = d
	}

	shared, err := redisstore.Dial(ctx, config.RedisURL, redisstore.Config{
		KeyPrefix: config.RedisKeyPrefix,
		TTL:       ttl,
	})
	if err != nil {
		return nil, nil, err
	}

	g.debug.Printf("Using definition cache at %s", config.RedisURL)
	closeStore := func() {
		if err := shared.Close(); err != nil {
			g.logger.Warn("closing definition cache failed", "err", err)
		}
	}
	return func() store.Store { return shared }, closeStore, nil
}

// rootName names the root declaration of a file from its stem.
// documentID names a document after its path relative to the first search
// dir holding it, so equal file names in different directories stay apart.
// Files outside every search dir fall back to the file stem.
func documentID(searchDirs []string) func(path string) string {
	dirs := make([]string, 0, len(searchDirs))
	for _, dir := range searchDirs {
		if abs, err := filepath.Abs(dir); err == nil {
			dirs = append(dirs, abs)
		}
	}
	return func(path string) string {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		for _, dir := range dirs {
			rel, err := filepath.Rel(dir, path)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				continue
			}
			id := domain.FileStem(path) + ".json"
			if sub := filepath.ToSlash(filepath.Dir(rel)); sub != "." {
				id = sub + "/" + id
			}
			return id
		}
		return domain.FileStem(path) + ".json"
	}
}

func rootName(roots map[string]string) func(path string) string {
	return func(path string) string {
		stem := domain.FileStem(path)
		if name, ok := roots[stem]; ok {
			return name
		}
		return stem
	}
}

func failureCount(err error) int {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return len(merr.Errors)
	}
	return 1
}
