package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rshetty/sharedexec/internal/runner"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Format
		wantError bool
	}{
		{
			name:  "table",
			input: "table",
			want:  FormatTable,
		},
		{
			name:  "json",
			input: "json",
			want:  FormatJSON,
		},
		{
			name:  "yaml",
			input: "yaml",
			want:  FormatYAML,
		},
		{
			name:  "uppercase",
			input: "JSON",
			want:  FormatJSON,
		},
		{
			name:  "surrounding whitespace",
			input: "  table  ",
			want:  FormatTable,
		},
		{
			name:      "empty",
			input:     "",
			wantError: true,
		},
		{
			name:      "unknown",
			input:     "xml",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)

			if (err != nil) != tt.wantError {
				t.Fatalf("ParseFormat(%q) error = %v, wantError %v", tt.input, err, tt.wantError)
			}

			if tt.wantError {
				// The error should name the valid formats
				for _, valid := range []string{"table", "json", "yaml"} {
					if !strings.Contains(err.Error(), valid) {
						t.Errorf("error %q missing valid format %q", err.Error(), valid)
					}
				}
				return
			}

			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name         string
		format       Format
		opts         []FormatterOption
		expectedType string
	}{
		{
			name:         "table formatter default",
			format:       FormatTable,
			opts:         nil,
			expectedType: "*output.TableFormatter",
		},
		{
			name:         "json formatter",
			format:       FormatJSON,
			opts:         nil,
			expectedType: "*output.JSONFormatter",
		},
		{
			name:         "yaml formatter",
			format:       FormatYAML,
			opts:         nil,
			expectedType: "*output.YAMLFormatter",
		},
		{
			name:         "empty format defaults to table",
			format:       "",
			opts:         nil,
			expectedType: "*output.TableFormatter",
		},
		{
			name:         "unknown format defaults to table",
			format:       "unknown",
			opts:         nil,
			expectedType: "*output.TableFormatter",
		},
		{
			name:         "table with no color option",
			format:       FormatTable,
			opts:         []FormatterOption{WithNoColor(true)},
			expectedType: "*output.TableFormatter",
		},
		{
			name:         "table with multiple options",
			format:       FormatTable,
			opts:         []FormatterOption{WithNoColor(true), WithNoHeaders(true), WithWide(true)},
			expectedType: "*output.TableFormatter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewFormatter(tt.format, tt.opts...)

			if formatter == nil {
				t.Fatal("NewFormatter returned nil")
			}

			// Check type using type assertion
			switch tt.expectedType {
			case "*output.TableFormatter":
				if _, ok := formatter.(*TableFormatter); !ok {
					t.Errorf("expected TableFormatter, got %T", formatter)
				}
			case "*output.JSONFormatter":
				if _, ok := formatter.(*JSONFormatter); !ok {
					t.Errorf("expected JSONFormatter, got %T", formatter)
				}
			case "*output.YAMLFormatter":
				if _, ok := formatter.(*YAMLFormatter); !ok {
					t.Errorf("expected YAMLFormatter, got %T", formatter)
				}
			}
		})
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name              string
		opts              []FormatterOption
		expectedNoColor   bool
		expectedNoHeaders bool
		expectedWide      bool
	}{
		{
			name:              "default options",
			opts:              nil,
			expectedNoColor:   false,
			expectedNoHeaders: false,
			expectedWide:      false,
		},
		{
			name:              "with no color",
			opts:              []FormatterOption{WithNoColor(true)},
			expectedNoColor:   true,
			expectedNoHeaders: false,
			expectedWide:      false,
		},
		{
			name:              "with no headers",
			opts:              []FormatterOption{WithNoHeaders(true)},
			expectedNoColor:   false,
			expectedNoHeaders: true,
			expectedWide:      false,
		},
		{
			name:              "with wide",
			opts:              []FormatterOption{WithWide(true)},
			expectedNoColor:   false,
			expectedNoHeaders: false,
			expectedWide:      true,
		},
		{
			name:              "all options",
			opts:              []FormatterOption{WithNoColor(true), WithNoHeaders(true), WithWide(true)},
			expectedNoColor:   true,
			expectedNoHeaders: true,
			expectedWide:      true,
		},
		{
			name:              "override options",
			opts:              []FormatterOption{WithNoColor(true), WithNoColor(false)},
			expectedNoColor:   false,
			expectedNoHeaders: false,
			expectedWide:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := &Options{}
			for _, opt := range tt.opts {
				opt(options)
			}

			if options.NoColor != tt.expectedNoColor {
				t.Errorf("NoColor = %v, want %v", options.NoColor, tt.expectedNoColor)
			}
			if options.NoHeaders != tt.expectedNoHeaders {
				t.Errorf("NoHeaders = %v, want %v", options.NoHeaders, tt.expectedNoHeaders)
			}
			if options.Wide != tt.expectedWide {
				t.Errorf("Wide = %v, want %v", options.Wide, tt.expectedWide)
			}
		})
	}
}

func TestFormatter_AllFormats(t *testing.T) {
	results := []runner.CommandResult{
		{
			Index:    0,
			Command:  "echo hello",
			Stdout:   "hello",
			ExitCode: 0,
			Duration: 100 * time.Millisecond,
		},
		{
			Index:    1,
			Command:  "false",
			ExitCode: 1,
			Duration: 50 * time.Millisecond,
		},
	}

	formats := []Format{FormatTable, FormatJSON, FormatYAML}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			formatter := NewFormatter(format, WithNoColor(true))

			t.Run("results", func(t *testing.T) {
				var buf bytes.Buffer
				err := formatter.Format(&buf, results)
				if err != nil {
					t.Errorf("Format() error = %v", err)
				}

				if buf.Len() == 0 {
					t.Error("Format() produced no output")
				}
			})

			t.Run("empty results", func(t *testing.T) {
				var buf bytes.Buffer
				err := formatter.Format(&buf, []runner.CommandResult{})
				if err != nil {
					t.Errorf("Format() error = %v", err)
				}
			})
		})
	}
}
