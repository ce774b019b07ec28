// Package output provides formatters for displaying command batch results.
//
// The package supports multiple output formats (table, JSON, YAML) behind a
// single Formatter interface so commands can render results without caring
// which format the operator asked for.
//
// # Basic Usage
//
//	// Create a formatter for the configured format
//	format, err := output.ParseFormat("table")
//	if err != nil {
//	    return err
//	}
//	formatter := output.NewFormatter(format)
//
//	// Render batch results
//	results := []runner.CommandResult{...}
//	formatter.Format(os.Stdout, results)
//
// # Options
//
// Formatters can be configured with functional options:
//
//	formatter := output.NewFormatter(
//	    output.FormatTable,
//	    output.WithNoColor(true),
//	    output.WithWide(true),
//	)
//
// # Formatters
//
// Table Formatter (kubectl-style):
//   - Borderless tables with tab-separated columns
//   - Columns: #, COMMAND, STATUS, EXIT, DURATION (plus OUTPUT in wide mode)
//   - Optional color highlighting for status, errors, and command lines
//   - Summary line with success/failure counts and duration statistics
//
// JSON Formatter:
//   - Clean, indented JSON output
//   - Suitable for scripting and automation
//   - Stable field order via struct encoding
//
// YAML Formatter:
//   - Human-readable YAML output
//   - Proper indentation and formatting
//
// # Color Support
//
// Colors are automatically enabled for TTY outputs and can be disabled with:
//   - WithNoColor(true) option
//   - Non-TTY output (pipes, redirects)
//
// Color scheme:
//   - Command lines: Cyan, Bold
//   - Success status: Green
//   - Error messages: Red, Bold
//   - Warnings: Yellow
//   - Headers: White, Bold
//   - Durations: Blue
package output
