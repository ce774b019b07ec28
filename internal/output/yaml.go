package output

import (
	"io"

	"github.com/rshetty/sharedexec/internal/runner"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats results as YAML
type YAMLFormatter struct {
	options *Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(opts *Options) *YAMLFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &YAMLFormatter{
		options: opts,
	}
}

// Format outputs batch results as YAML
func (f *YAMLFormatter) Format(w io.Writer, results []runner.CommandResult) error {
	// Keep the output a YAML sequence even for an empty batch
	if results == nil {
		results = []runner.CommandResult{}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(results)
}
