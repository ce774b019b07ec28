package util

import "strings"

// ShortCommand returns a display-friendly form of a command line.
// Whitespace runs (including newlines in multi-line commands) collapse to
// single spaces, and commands longer than max runes are truncated with an
// ellipsis. A max of 3 or less disables truncation.
func ShortCommand(cmd string, max int) string {
	cmd = strings.Join(strings.Fields(cmd), " ")
	if max > 3 {
		if runes := []rune(cmd); len(runes) > max {
			cmd = string(runes[:max-3]) + "..."
		}
	}
	return cmd
}
