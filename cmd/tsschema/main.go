package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/griffnb/tsschema/internal/console"
	"github.com/griffnb/tsschema/internal/gen"
)

// Version of the tsschema binary.
const Version = "v0.1.0"

const (
	configFlag                = "config"
	searchDirFlag             = "dir"
	fileFlag                  = "file"
	excludeFlag               = "exclude"
	parseExtensionFlag        = "parseExtension"
	parseNodeModulesFlag      = "parseNodeModules"
	skipImportsFlag           = "skipImports"
	parseDepthFlag            = "parseDepth"
	libraryFlag               = "library"
	globalFlag                = "global"
	rootFlag                  = "root"
	baseURLFlag               = "baseUrl"
	outputFlag                = "output"
	outputTypesFlag           = "outputTypes"
	strictFlag                = "strict"
	watchFlag                 = "watch"
	mergeFlag                 = "merge"
	collapseUnionsFlag        = "collapseUnions"
	collapseIntersectionsFlag = "collapseIntersections"
	redisFlag                 = "redis"
	redisPrefixFlag           = "redisPrefix"
	redisTTLFlag              = "redisTTL"
	nameFlag                  = "name"
	inputFlag                 = "input"
	quietFlag                 = "quiet"
	debugFlag                 = "debug"
	logFormatFlag             = "logFormat"
)

var globalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    quietFlag,
		Aliases: []string{"q"},
		Usage:   "Make the logger quiet.",
		EnvVars: []string{"TSSCHEMA_QUIET"},
	},
	&cli.BoolFlag{
		Name:    debugFlag,
		Usage:   "Enable debug mode, disabled by default",
		EnvVars: []string{"TSSCHEMA_DEBUG"},
	},
	&cli.StringFlag{
		Name:    logFormatFlag,
		Value:   console.FormatText,
		Usage:   "Log format: " + console.FormatText + ", " + console.FormatJSON + " or " + console.FormatLogfmt,
		EnvVars: []string{"TSSCHEMA_LOG_FORMAT"},
	},
}

var collapseFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    collapseUnionsFlag,
		Usage:   "Fold anyOf branches into their parent while merging",
		EnvVars: []string{"TSSCHEMA_COLLAPSE_UNIONS"},
	},
	&cli.BoolFlag{
		Name:    collapseIntersectionsFlag,
		Usage:   "Fold allOf members into their parent while merging",
		EnvVars: []string{"TSSCHEMA_COLLAPSE_INTERSECTIONS"},
	},
}

var generateFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:    configFlag,
		Aliases: []string{"c"},
		Usage:   "YAML or JSON config file, flags override its values",
		EnvVars: []string{"TSSCHEMA_CONFIG"},
	},
	&cli.StringFlag{
		Name:    searchDirFlag,
		Aliases: []string{"d"},
		Value:   "./",
		Usage:   "Directories you want to parse, comma separated",
		EnvVars: []string{"TSSCHEMA_DIR"},
	},
	&cli.StringFlag{
		Name:  fileFlag,
		Usage: "Declaration files loaded next to the directories, comma separated",
	},
	&cli.StringFlag{
		Name:    excludeFlag,
		Usage:   "Exclude directories and files when searching, comma separated",
		EnvVars: []string{"TSSCHEMA_EXCLUDE"},
	},
	&cli.StringFlag{
		Name:  parseExtensionFlag,
		Value: ".ts",
		Usage: "File suffixes loaded from the directories, comma separated",
	},
	&cli.BoolFlag{
		Name:  parseNodeModulesFlag,
		Usage: "Parse files in 'node_modules' folders, disabled by default",
	},
	&cli.BoolFlag{
		Name:  skipImportsFlag,
		Usage: "Do not load imported files outside the directories",
	},
	&cli.IntFlag{
		Name:  parseDepthFlag,
		Value: 100,
		Usage: "Import parse depth",
	},
	&cli.StringFlag{
		Name:  libraryFlag,
		Usage: "Files holding built-in library declarations, comma separated",
	},
	&cli.StringSliceFlag{
		Name:    globalFlag,
		Aliases: []string{"g"},
		Usage:   "Global declaration file, searched last first for unresolved names (repeatable)",
		EnvVars: []string{"TSSCHEMA_GLOBALS"},
	},
	&cli.StringSliceFlag{
		Name:  rootFlag,
		Usage: "Root declaration of a file as stem=Name (repeatable)",
	},
	&cli.StringFlag{
		Name:    baseURLFlag,
		Usage:   "Prefix of every document $id",
		EnvVars: []string{"TSSCHEMA_BASE_URL"},
	},
	&cli.StringFlag{
		Name:    outputFlag,
		Aliases: []string{"o"},
		Value:   "./schemas",
		Usage:   "Output directory for all the generated files",
		EnvVars: []string{"TSSCHEMA_OUTPUT"},
	},
	&cli.StringFlag{
		Name:    outputTypesFlag,
		Aliases: []string{"ot"},
		Value:   "json",
		Usage:   "Output types of generated files like json,yaml",
		EnvVars: []string{"TSSCHEMA_OUTPUT_TYPES"},
	},
	&cli.BoolFlag{
		Name:    strictFlag,
		Usage:   "Abort on the first failing document",
		EnvVars: []string{"TSSCHEMA_STRICT"},
	},
	&cli.BoolFlag{
		Name:    watchFlag,
		Aliases: []string{"w"},
		Usage:   "Rebuild when a declaration file changes",
	},
	&cli.BoolFlag{
		Name:  mergeFlag,
		Usage: "Flatten references before writing",
	},
	&cli.StringFlag{
		Name:    redisFlag,
		Usage:   "Redis URL of the shared definition cache",
		EnvVars: []string{"TSSCHEMA_REDIS_URL"},
	},
	&cli.StringFlag{
		Name:    redisPrefixFlag,
		Usage:   "Prefix of every cache key",
		EnvVars: []string{"TSSCHEMA_REDIS_PREFIX"},
	},
	&cli.StringFlag{
		Name:    redisTTLFlag,
		Usage:   "Expiry of cache entries like 1h",
		EnvVars: []string{"TSSCHEMA_REDIS_TTL"},
	},
}, collapseFlags...)

func generateAction(c *cli.Context) error {
	config, err := generateConfig(c)
	if err != nil {
		return err
	}

	if c.Bool(watchFlag) {
		return gen.New().Watch(c.Context, config)
	}
	return gen.New().Build(c.Context, config)
}

// generateConfig reads the config file, if any, and applies the flags set
// on the command line. Without a config file every flag applies.
func generateConfig(c *cli.Context) (*gen.Config, error) {
	config := &gen.Config{}
	fromFile := c.String(configFlag) != ""
	if fromFile {
		var err error
		if config, err = gen.LoadConfig(c.String(configFlag)); err != nil {
			return nil, err
		}
	}
	apply := func(name string) bool {
		return !fromFile || c.IsSet(name)
	}

	if apply(searchDirFlag) {
		config.SearchDirs = splitList(c.String(searchDirFlag))
	}
	if apply(fileFlag) {
		config.Files = splitList(c.String(fileFlag))
	}
	if apply(excludeFlag) {
		config.Excludes = splitList(c.String(excludeFlag))
	}
	if apply(parseExtensionFlag) {
		config.ParseExtensions = splitList(c.String(parseExtensionFlag))
	}
	if apply(parseNodeModulesFlag) {
		config.ParseNodeModules = c.Bool(parseNodeModulesFlag)
	}
	if apply(skipImportsFlag) {
		config.SkipImports = c.Bool(skipImportsFlag)
	}
	if apply(parseDepthFlag) {
		config.MaxDepth = c.Int(parseDepthFlag)
	}
	if apply(libraryFlag) {
		config.LibraryPaths = splitList(c.String(libraryFlag))
	}
	if apply(globalFlag) {
		config.Globals = c.StringSlice(globalFlag)
	}
	if apply(rootFlag) {
		roots, err := parseRoots(c.StringSlice(rootFlag))
		if err != nil {
			return nil, err
		}
		config.Roots = roots
	}
	if apply(baseURLFlag) {
		config.BaseURL = c.String(baseURLFlag)
	}
	if apply(outputFlag) {
		config.OutputDir = c.String(outputFlag)
	}
	if apply(outputTypesFlag) {
		config.OutputTypes = splitList(c.String(outputTypesFlag))
	}
	if apply(strictFlag) {
		config.Strict = c.Bool(strictFlag)
	}
	if apply(mergeFlag) {
		config.Merge = c.Bool(mergeFlag)
	}
	if apply(collapseUnionsFlag) {
		config.CollapseUnions = c.Bool(collapseUnionsFlag)
	}
	if apply(collapseIntersectionsFlag) {
		config.CollapseIntersections = c.Bool(collapseIntersectionsFlag)
	}
	if apply(redisFlag) {
		config.RedisURL = c.String(redisFlag)
	}
	if apply(redisPrefixFlag) {
		config.RedisKeyPrefix = c.String(redisPrefixFlag)
	}
	if apply(redisTTLFlag) {
		config.RedisTTL = c.String(redisTTLFlag)
	}

	if len(config.OutputTypes) == 0 {
		return nil, fmt.Errorf("no output types specified")
	}
	return config, nil
}

var entryFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     fileFlag,
		Aliases:  []string{"f"},
		Usage:    "File declaring the entry",
		Required: true,
	},
	&cli.StringFlag{
		Name:     nameFlag,
		Aliases:  []string{"n"},
		Usage:    "Declaration name, dotted for namespace members",
		Required: true,
	},
	&cli.StringSliceFlag{
		Name:    globalFlag,
		Aliases: []string{"g"},
		Usage:   "Global declaration file (repeatable)",
		EnvVars: []string{"TSSCHEMA_GLOBALS"},
	},
	&cli.StringFlag{
		Name:  libraryFlag,
		Usage: "Files holding built-in library declarations, comma separated",
	},
	&cli.BoolFlag{
		Name:  mergeFlag,
		Usage: "Inline every definition",
	},
	&cli.StringFlag{
		Name:    outputTypesFlag,
		Aliases: []string{"ot"},
		Value:   "json",
		Usage:   "Output type, json or yaml",
	},
}

func entryAction(c *cli.Context) error {
	return gen.New().BuildEntry(c.Context, &gen.EntryConfig{
		File:         c.String(fileFlag),
		Name:         c.String(nameFlag),
		Globals:      c.StringSlice(globalFlag),
		LibraryPaths: splitList(c.String(libraryFlag)),
		Merge:        c.Bool(mergeFlag),
		OutputType:   c.String(outputTypesFlag),
	}, c.App.Writer)
}

var mergeFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:     inputFlag,
		Aliases:  []string{"i"},
		Usage:    "Directory holding the generated documents",
		Required: true,
	},
	&cli.StringFlag{
		Name:     outputFlag,
		Aliases:  []string{"o"},
		Usage:    "Directory receiving the merged documents",
		Required: true,
	},
	&cli.BoolFlag{
		Name:  strictFlag,
		Usage: "Fail when a reference cannot be resolved",
	},
}, collapseFlags...)

func mergeAction(c *cli.Context) error {
	return gen.New().Merge(&gen.MergeConfig{
		InputDir:              c.String(inputFlag),
		OutputDir:             c.String(outputFlag),
		CollapseUnions:        c.Bool(collapseUnionsFlag),
		CollapseIntersections: c.Bool(collapseIntersectionsFlag),
		Strict:                c.Bool(strictFlag),
	})
}

func configSchemaAction(c *cli.Context) error {
	b, err := gen.ConfigSchema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(b))
	return err
}

// configureLogger applies the global logging flags.
func configureLogger(c *cli.Context) error {
	level := "info"
	if c.Bool(debugFlag) {
		level = "debug"
	} else if c.Bool(quietFlag) {
		level = "error"
	}
	return console.Configure(console.Options{
		Level:  level,
		Format: c.String(logFormatFlag),
		Writer: c.App.ErrWriter,
	})
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseRoots(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	roots := make(map[string]string, len(values))
	for _, value := range values {
		stem, name, ok := strings.Cut(value, "=")
		stem, name = strings.TrimSpace(stem), strings.TrimSpace(name)
		if !ok || stem == "" || name == "" {
			return nil, fmt.Errorf("could not parse root: '%s'", value)
		}
		roots[stem] = name
	}
	return roots, nil
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tsschema"
	app.Version = Version
	app.Usage = "Generate JSON Schema draft-07 documents from TypeScript declarations."
	app.Flags = globalFlags
	app.Before = configureLogger
	app.ErrWriter = os.Stderr
	app.Commands = []*cli.Command{
		{
			Name:    "generate",
			Aliases: []string{"g"},
			Usage:   "Generate one schema per declaration file",
			Action:  generateAction,
			Flags:   generateFlags,
		},
		{
			Name:    "entry",
			Aliases: []string{"e"},
			Usage:   "Print the standalone schema of one declaration",
			Action:  entryAction,
			Flags:   entryFlags,
		},
		{
			Name:    "merge",
			Aliases: []string{"m"},
			Usage:   "Flatten generated schemas",
			Action:  mergeAction,
			Flags:   mergeFlags,
		},
		{
			Name:   "config-schema",
			Usage:  "Print the JSON Schema of the config file",
			Action: configSchemaAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
