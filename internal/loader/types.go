package loader

import (
	"github.com/griffnb/tsschema/internal/domain"
)

// Service handles discovering and parsing declaration source files
type Service struct {
	parseNodeModules bool
	excludes         map[string]struct{}
	parseExtensions  []string
	libraryPaths     []string
	followImports    bool
	maxDepth         int
	debug            Debugger
}

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

// LoadResult contains the results of loading source files
type LoadResult struct {
	Documents map[string]*domain.Document
}

// Paths returns the loaded document paths in sorted order.
func (r *LoadResult) Paths() []string {
	return sortedKeys(r.Documents)
}

// Option is a functional option for configuring Service
type Option func(*Service)

// noOpDebugger is a no-op debugger
type noOpDebugger struct{}

func (n *noOpDebugger) Printf(format string, v ...interface{}) {}
