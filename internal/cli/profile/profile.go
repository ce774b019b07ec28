package profile

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// NewProfileCmd creates the profile management command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage run profiles",
		Long: `Manage named run profiles in the sharedexec configuration file.

A profile bundles pool and output settings under a name that is selected
at run time with --profile. Settings a profile leaves unset fall back to
the configured defaults.`,
	}

	// Add subcommands
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRemoveCmd())

	return cmd
}

// Unset profile fields inherit the defaults; render them as "-".

func formatInt(v int) string {
	if v == 0 {
		return "-"
	}
	return strconv.Itoa(v)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.String()
}

func formatString(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
