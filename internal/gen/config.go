package gen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/griffnb/tsschema/internal/domain"
	"github.com/invopop/jsonschema"
	"sigs.k8s.io/yaml"
)

// Config presents Gen configurations.
type Config struct {
	Debugger Debugger      `json:"-"`
	Logger   domain.Logger `json:"-"`

	// SearchDirs are the directories searched for declaration files.
	SearchDirs []string `json:"searchDirs,omitempty" jsonschema:"description=Directories searched for declaration files."`

	// Files are loaded next to the search directories.
	Files []string `json:"files,omitempty" jsonschema:"description=Declaration files loaded next to the search directories."`

	// Excludes dirs and files in SearchDirs
	Excludes []string `json:"excludes,omitempty" jsonschema:"description=Directories and files skipped while searching."`

	// ParseExtensions are the file suffixes loaded from search directories.
	ParseExtensions []string `json:"parseExtensions,omitempty" jsonschema:"description=File suffixes loaded from search directories."`

	ParseNodeModules bool `json:"parseNodeModules,omitempty" jsonschema:"description=Descend into node_modules while searching."`

	// SkipImports disables loading imported files outside SearchDirs.
	SkipImports bool `json:"skipImports,omitempty" jsonschema:"description=Do not load imported files outside the search directories."`

	// MaxDepth limits how many import hops are followed.
	MaxDepth int `json:"maxDepth,omitempty" jsonschema:"description=Maximum number of import hops followed.,minimum=0"`

	// LibraryPaths mark files holding built-in declarations.
	LibraryPaths []string `json:"libraryPaths,omitempty" jsonschema:"description=Files holding built-in library declarations."`

	// Globals are searched, last first, for names without a local declaration.
	Globals []string `json:"globals,omitempty" jsonschema:"description=Fallback documents searched last first for unresolved names."`

	// Roots maps a file stem to the declaration its document's $ref points at.
	// Files without an entry use the lowercase file stem.
	Roots map[string]string `json:"roots,omitempty" jsonschema:"description=Root declaration per file stem."`

	// BaseURL prefixes every document id in $id.
	BaseURL string `json:"baseUrl,omitempty" jsonschema:"description=Prefix of every document $id."`

	// OutputDir represents the output directory for all the generated files
	OutputDir string `json:"outputDir,omitempty" jsonschema:"description=Directory receiving the generated documents."`

	// OutputTypes define types of files which should be generated
	OutputTypes []string `json:"outputTypes,omitempty" jsonschema:"description=Output formats: json or yaml."`

	// Strict aborts on the first failing document.
	Strict bool `json:"strict,omitempty" jsonschema:"description=Abort on the first failing document."`

	// Merge flattens the generated documents before writing them.
	Merge bool `json:"merge,omitempty" jsonschema:"description=Flatten references before writing."`

	CollapseUnions        bool `json:"collapseUnions,omitempty" jsonschema:"description=Fold anyOf branches while merging."`
	CollapseIntersections bool `json:"collapseIntersections,omitempty" jsonschema:"description=Fold allOf members while merging."`

	// RedisURL enables the shared definition cache (redis://host:port/db).
	RedisURL string `json:"redisUrl,omitempty" jsonschema:"description=Redis URL of the shared definition cache."`

	// RedisKeyPrefix prefixes every cache key. Default: "tsschema:def:"
	RedisKeyPrefix string `json:"redisKeyPrefix,omitempty" jsonschema:"description=Prefix of every cache key."`

	// RedisTTL expires cache entries, as a duration string like "1h".
	RedisTTL string `json:"redisTtl,omitempty" jsonschema:"description=Expiry of cache entries as a duration like 1h."`
}

// LoadConfig reads a YAML or JSON config file. Relative paths are resolved
// against the directory of the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var config Config
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	base := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	resolveAll := func(paths []string) []string {
		for i := range paths {
			paths[i] = resolve(paths[i])
		}
		return paths
	}

	config.SearchDirs = resolveAll(config.SearchDirs)
	config.Files = resolveAll(config.Files)
	config.LibraryPaths = resolveAll(config.LibraryPaths)
	config.Globals = resolveAll(config.Globals)
	config.OutputDir = resolve(config.OutputDir)

	return &config, nil
}

// ConfigSchema returns the JSON Schema of the config file.
func ConfigSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}
	js := r.Reflect(&Config{})
	js.Title = "tsschema configuration"
	js.Description = "Configuration file of tsschema generate."

	b, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json schema: %w", err)
	}
	return b, nil
}
