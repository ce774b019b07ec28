package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/rshetty/sharedexec/internal/util"
)

// CountSucceeded returns the number of commands that exited zero
func CountSucceeded(results []CommandResult) int {
	count := 0
	for _, r := range results {
		if !r.Failed() {
			count++
		}
	}
	return count
}

// CountFailed returns the number of commands that failed to launch or exited nonzero
func CountFailed(results []CommandResult) int {
	count := 0
	for _, r := range results {
		if r.Failed() {
			count++
		}
	}
	return count
}

// FilterFailed returns only the failed results
func FilterFailed(results []CommandResult) []CommandResult {
	filtered := make([]CommandResult, 0, len(results))
	for _, r := range results {
		if r.Failed() {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// HasFailures returns true if any command failed
func HasFailures(results []CommandResult) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}

// Errors converts the failed results into CommandError values, one per
// failed command, suitable for aggregation into a MultiError
func Errors(results []CommandResult) []error {
	errs := make([]error, 0)
	for _, r := range results {
		if r.Failed() {
			errs = append(errs, util.WrapCommandError(r.Command, r.failure()))
		}
	}
	return errs
}

// AverageDuration calculates the average duration of all results
func AverageDuration(results []CommandResult) time.Duration {
	if len(results) == 0 {
		return 0
	}

	var total time.Duration
	for _, r := range results {
		total += r.Duration
	}

	return total / time.Duration(len(results))
}

// MaxDuration returns the maximum duration among all results
func MaxDuration(results []CommandResult) time.Duration {
	if len(results) == 0 {
		return 0
	}

	max := results[0].Duration
	for _, r := range results {
		if r.Duration > max {
			max = r.Duration
		}
	}
	return max
}

// Summary provides a summary of a batch run
type Summary struct {
	Total       int
	Succeeded   int
	Failed      int
	AvgDuration time.Duration
	MaxDuration time.Duration
}

// Summarize creates a summary of the results
func Summarize(results []CommandResult) Summary {
	return Summary{
		Total:       len(results),
		Succeeded:   CountSucceeded(results),
		Failed:      CountFailed(results),
		AvgDuration: AverageDuration(results),
		MaxDuration: MaxDuration(results),
	}
}

// String returns a human-readable string representation of the summary
func (s Summary) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total: %d, ", s.Total))
	sb.WriteString(fmt.Sprintf("Succeeded: %d, ", s.Succeeded))
	sb.WriteString(fmt.Sprintf("Failed: %d", s.Failed))

	if s.Total > 0 {
		sb.WriteString(fmt.Sprintf(", Avg: %s", s.AvgDuration.Round(time.Millisecond)))
		sb.WriteString(fmt.Sprintf(", Max: %s", s.MaxDuration.Round(time.Millisecond)))
	}

	return sb.String()
}
