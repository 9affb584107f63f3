package gen

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/merger"
	"github.com/griffnb/tsschema/internal/orchestrator"
	"github.com/griffnb/tsschema/internal/schema"
)

// EntryConfig presents the options of a single entry schema.
type EntryConfig struct {
	Debugger Debugger
	Logger   domain.Logger

	// File declares the entry.
	File string

	// Name is the declaration name, dotted for namespace members.
	Name string

	Globals      []string
	LibraryPaths []string

	// Merge inlines every definition into the entry.
	Merge bool

	// OutputType is json or yaml. Default: json
	OutputType string
}

// BuildEntry writes the standalone schema of one declaration to w.
func (g *Gen) BuildEntry(ctx context.Context, config *EntryConfig, w io.Writer) error {
	g.configure(config.Debugger, config.Logger)

	if _, err := os.Stat(config.File); err != nil {
		return fmt.Errorf("file: %s does not exist", config.File)
	}
	if config.Name == "" {
		return fmt.Errorf("declaration name is required")
	}

	orc := orchestrator.New(&orchestrator.Config{
		Globals:      config.Globals,
		LibraryPaths: config.LibraryPaths,
		Logger:       g.logger,
		Debug:        g.debug,
	})
	if err := orc.Load(nil, []string{config.File}); err != nil {
		return err
	}

	s, err := orc.GenerateEntry(ctx, config.File, config.Name)
	if err != nil {
		return err
	}

	if config.Merge {
		if s, err = merger.MergeDefinitions(s); err != nil {
			return err
		}
	}

	outputType := config.OutputType
	if outputType == "" {
		outputType = "json"
	}
	b, err := g.Encode(s, outputType)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// MergeConfig presents the options of merging existing documents.
type MergeConfig struct {
	Debugger Debugger
	Logger   domain.Logger

	// InputDir holds the documents, named after their ids.
	InputDir string

	// OutputDir receives the merged documents under the same names.
	OutputDir string

	CollapseUnions        bool
	CollapseIntersections bool

	// Strict fails when a reference cannot be resolved.
	Strict bool
}

// Merge flattens every JSON document under InputDir into OutputDir.
// Documents reference each other by their path relative to InputDir.
func (g *Gen) Merge(config *MergeConfig) error {
	g.configure(config.Debugger, config.Logger)

	docs, err := readDocuments(config.InputDir)
	if err != nil {
		return err
	}
	g.debug.Printf("Merging %d documents from %s", len(docs), config.InputDir)

	merged, err := merger.Merge(docs, merger.Options{
		CollapseUnions:        config.CollapseUnions,
		CollapseIntersections: config.CollapseIntersections,
		Logger:                g.logger,
	})
	if err != nil && config.Strict {
		return err
	}

	return g.writeDocuments(config.OutputDir, []string{"json"}, merged)
}

func readDocuments(dir string) (map[string]spec.Schema, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("dir: %s does not exist", dir)
	}

	docs := make(map[string]spec.Schema)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		s, err := schema.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		docs[filepath.ToSlash(rel)] = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
