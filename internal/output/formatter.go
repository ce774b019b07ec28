package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/rshetty/sharedexec/internal/runner"
)

// Format represents the output format type
type Format string

const (
	// FormatTable outputs results in a table format (kubectl-style)
	FormatTable Format = "table"
	// FormatJSON outputs results in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs results in YAML format
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name from a flag or config value
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (supported: table, json, yaml)", s)
	}
}

// Formatter defines the interface for rendering command results
type Formatter interface {
	// Format writes the results of a batch run to the writer
	Format(w io.Writer, results []runner.CommandResult) error
}

// FormatterOption is a functional option for configuring formatters
type FormatterOption func(*Options)

// Options holds configuration for formatters
type Options struct {
	// NoColor disables color output
	NoColor bool

	// NoHeaders disables table headers
	NoHeaders bool

	// Wide enables wide output with additional columns
	Wide bool
}

// WithNoColor disables color output
func WithNoColor(noColor bool) FormatterOption {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithNoHeaders disables table headers
func WithNoHeaders(noHeaders bool) FormatterOption {
	return func(o *Options) {
		o.NoHeaders = noHeaders
	}
}

// WithWide enables wide output
func WithWide(wide bool) FormatterOption {
	return func(o *Options) {
		o.Wide = wide
	}
}

// NewFormatter creates a new formatter based on the specified format
func NewFormatter(format Format, opts ...FormatterOption) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}
