package profile

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rshetty/sharedexec/internal/config"
	"github.com/rshetty/sharedexec/internal/util"
)

// newShowCmd creates the profile show command
func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a run profile",
		Long: `Show the settings a run profile pins.

Settings shown as "-" are not pinned by the profile and fall back to the
configured defaults at run time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}

	return cmd
}

func runShow(cmd *cobra.Command, name string) error {
	mgr := config.NewManager(viper.GetString("config"))
	if _, err := mgr.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p, ok := mgr.GetProfile(name)
	if !ok {
		return fmt.Errorf("%w: %q", util.ErrProfileNotFound, name)
	}

	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json":
		return outputJSON(cmd.OutOrStdout(), []profileEntry{{Name: name, Profile: *p}})
	case "yaml":
		return outputYAML(cmd.OutOrStdout(), []profileEntry{{Name: name, Profile: *p}})
	default:
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SETTING\tVALUE")
		fmt.Fprintf(w, "Description\t%s\n", formatString(p.Description))
		fmt.Fprintf(w, "Workers\t%s\n", formatInt(p.Workers))
		fmt.Fprintf(w, "Timeout\t%s\n", formatDuration(p.Timeout))
		fmt.Fprintf(w, "Chunk Size\t%s\n", formatInt(p.ChunkSize))
		fmt.Fprintf(w, "Shell\t%s\n", formatString(p.Shell))
		fmt.Fprintf(w, "Output Format\t%s\n", formatString(p.OutputFormat))
		fmt.Fprintf(w, "No Color\t%t\n", p.NoColor)
		return w.Flush()
	}
}
