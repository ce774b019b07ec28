package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rshetty/sharedexec/internal/runner"
	"github.com/rshetty/sharedexec/internal/util"
)

// Display widths for the COMMAND and OUTPUT columns. Longer values are
// collapsed to one line and truncated with an ellipsis.
const (
	commandDisplayWidth = 60
	outputDisplayWidth  = 50
)

// TableFormatter formats results as a table (kubectl-style)
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Format outputs batch results as a table, one row per command, followed by
// a summary line
func (f *TableFormatter) Format(w io.Writer, results []runner.CommandResult) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return nil
	}

	// Create color scheme
	colors := NewColorScheme(w, f.options.NoColor)

	table := f.createTable(w)

	// Set headers
	headers := []string{"#", "COMMAND", "STATUS", "EXIT", "DURATION"}
	if f.options.Wide {
		headers = append(headers, "OUTPUT")
	}

	if !f.options.NoHeaders {
		if colors.Disabled {
			table.SetHeader(headers)
		} else {
			coloredHeaders := make([]string, len(headers))
			for i, h := range headers {
				coloredHeaders[i] = colors.Header(h)
			}
			table.SetHeader(coloredHeaders)
		}
	}

	// Add rows for each result
	for _, result := range results {
		row := f.formatResultRow(result, colors)
		table.Append(row)
	}

	table.Render()

	// Print summary
	f.printSummary(w, results, colors)

	return nil
}

// formatResultRow formats a single result as a table row
func (f *TableFormatter) formatResultRow(result runner.CommandResult, colors *ColorScheme) []string {
	// Command line, collapsed and truncated for display
	command := util.ShortCommand(result.Command, commandDisplayWidth)
	if !colors.Disabled {
		command = colors.Command(command)
	}

	// Status
	status := "Success"
	if result.Failed() {
		status = "Failed"
	}
	if !colors.Disabled {
		status = colors.StatusColor(result.Failed())(status)
	}

	// Exit code (-1 when the command never launched)
	exit := strconv.Itoa(result.ExitCode)

	// Duration
	duration := result.Duration.Round(time.Millisecond).String()
	if !colors.Disabled {
		duration = colors.Duration(duration)
	}

	row := []string{strconv.Itoa(result.Index + 1), command, status, exit, duration}

	// Add output column if wide mode
	if f.options.Wide {
		out := result.Stdout
		if result.Err != "" {
			out = result.Err
		} else if result.Failed() && result.Stderr != "" {
			out = result.Stderr
		}
		row = append(row, util.ShortCommand(out, outputDisplayWidth))
	}

	return row
}

// createTable creates a new table with kubectl-style configuration
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	// kubectl-style configuration
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t") // Tab-separated like kubectl
	table.SetNoWhiteSpace(true)

	return table
}

// printSummary prints a summary of the results
func (f *TableFormatter) printSummary(w io.Writer, results []runner.CommandResult, colors *ColorScheme) {
	summary := runner.Summarize(results)

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Summary: ")

	succeededText := fmt.Sprintf("%d succeeded", summary.Succeeded)
	if !colors.Disabled {
		succeededText = colors.Success(succeededText)
	}

	failedText := fmt.Sprintf("%d failed", summary.Failed)
	if !colors.Disabled && summary.Failed > 0 {
		failedText = colors.Error(failedText)
	}

	durationText := fmt.Sprintf("avg=%s, max=%s",
		summary.AvgDuration.Round(time.Millisecond),
		summary.MaxDuration.Round(time.Millisecond))
	if !colors.Disabled {
		durationText = colors.Duration(durationText)
	}

	fmt.Fprintf(w, "%s, %s, %s\n", succeededText, failedText, durationText)
}
