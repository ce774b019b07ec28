package output

import (
	"encoding/json"
	"io"

	"github.com/rshetty/sharedexec/internal/runner"
)

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{
		options: opts,
	}
}

// Format outputs batch results as indented JSON. The results marshal
// directly so field order stays stable across runs.
func (f *JSONFormatter) Format(w io.Writer, results []runner.CommandResult) error {
	// Keep the output a JSON array even for an empty batch
	if results == nil {
		results = []runner.CommandResult{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
