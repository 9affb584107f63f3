package loader

import (
	"path/filepath"
	"strings"
)

// NewService creates a new loader service with optional configuration
func NewService(options ...Option) *Service {
	s := &Service{
		parseNodeModules: false,
		excludes:         make(map[string]struct{}),
		parseExtensions:  []string{".ts"},
		followImports:    true,
		maxDepth:         100,
		debug:            &noOpDebugger{},
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// WithParseNodeModules sets whether to parse node_modules directories
func WithParseNodeModules(parse bool) Option {
	return func(s *Service) {
		s.parseNodeModules = parse
	}
}

// WithExcludes sets directory and file exclusion paths
func WithExcludes(excludes []string) Option {
	return func(s *Service) {
		for _, exclude := range excludes {
			exclude = strings.TrimSpace(exclude)
			if exclude == "" {
				continue
			}
			if abs, err := filepath.Abs(exclude); err == nil {
				exclude = abs
			}
			s.excludes[filepath.Clean(exclude)] = struct{}{}
		}
	}
}

// WithParseExtensions sets the file extensions to parse
func WithParseExtensions(exts []string) Option {
	return func(s *Service) {
		if len(exts) > 0 {
			s.parseExtensions = exts
		}
	}
}

// WithLibraryPaths marks files under the given paths as built-in library declarations
func WithLibraryPaths(paths []string) Option {
	return func(s *Service) {
		s.libraryPaths = paths
	}
}

// WithFollowImports sets whether relative imports outside the search dirs are loaded
func WithFollowImports(follow bool) Option {
	return func(s *Service) {
		s.followImports = follow
	}
}

// WithMaxDepth limits how many import hops are followed
func WithMaxDepth(depth int) Option {
	return func(s *Service) {
		s.maxDepth = depth
	}
}

// WithDebugger sets the debugger for logging
func WithDebugger(debugger Debugger) Option {
	return func(s *Service) {
		if debugger != nil {
			s.debug = debugger
		}
	}
}
