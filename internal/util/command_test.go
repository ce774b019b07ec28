package util

import "testing"

func TestShortCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "short command unchanged",
			input:    "echo hello",
			max:      40,
			expected: "echo hello",
		},
		{
			name:     "long command truncated",
			input:    "grep -r needle /very/long/path/to/some/haystack/directory",
			max:      20,
			expected: "grep -r needle /v...",
		},
		{
			name:     "multi-line command collapsed",
			input:    "for f in *.log; do\n  gzip $f\ndone",
			max:      0,
			expected: "for f in *.log; do gzip $f done",
		},
		{
			name:     "whitespace runs collapsed",
			input:    "echo   hello\tworld",
			max:      40,
			expected: "echo hello world",
		},
		{
			name:     "truncation disabled",
			input:    "a very long command that would normally be cut",
			max:      0,
			expected: "a very long command that would normally be cut",
		},
		{
			name:     "empty string",
			input:    "",
			max:      10,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ShortCommand(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("ShortCommand(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}
