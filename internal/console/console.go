// Package console holds the process-wide logger.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// Logger is the process-wide logger. It satisfies the engine's logging
// interface and is replaced by Configure.
var Logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})

// Options configures a logger.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// Format is one of text, json, logfmt. Defaults to text.
	Format string

	// Writer receives the log lines. Defaults to stderr.
	Writer io.Writer
}

// New creates a logger.
func New(opts Options) (*log.Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = log.ParseLevel(opts.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	var formatter log.Formatter
	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		formatter = log.TextFormatter
	case FormatJSON:
		formatter = log.JSONFormatter
	case FormatLogfmt:
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{Level: level, Formatter: formatter}), nil
}

// Configure replaces Logger.
func Configure(opts Options) error {
	l, err := New(opts)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// Printer is the Printf style debugging interface of the loader and registry.
type Printer interface {
	Printf(format string, v ...interface{})
}

type debugPrinter struct {
	logger *log.Logger
}

func (p debugPrinter) Printf(format string, v ...interface{}) {
	p.logger.Debugf(strings.TrimSuffix(format, "\n"), v...)
}

// Debugger prints Printf style messages at debug level.
func Debugger(l *log.Logger) Printer {
	return debugPrinter{logger: l}
}
