package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshetty/sharedexec/pkg/version"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for sharedexec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd)
		},
	}

	return cmd
}

func runVersion(cmd *cobra.Command) error {
	info := version.Get()
	outputFormat, _ := cmd.Flags().GetString("output")
	w := cmd.OutOrStdout()

	switch outputFormat {
	case "json":
		return outputJSON(w, info)
	case "yaml":
		return outputYAML(w, info)
	case "table":
		return outputTable(w, info)
	default:
		// Default to human-readable format
		fmt.Fprintln(w, info.String())
		return nil
	}
}

func outputJSON(w io.Writer, info version.Info) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal version info to JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func outputYAML(w io.Writer, info version.Info) error {
	data, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal version info to YAML: %w", err)
	}
	fmt.Fprint(w, string(data))
	return nil
}

func outputTable(w io.Writer, info version.Info) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tVALUE")
	fmt.Fprintf(tw, "Version\t%s\n", info.Version)
	fmt.Fprintf(tw, "Commit\t%s\n", info.Commit)
	fmt.Fprintf(tw, "Build Time\t%s\n", info.BuildTime)
	fmt.Fprintf(tw, "Go Version\t%s\n", info.GoVersion)
	fmt.Fprintf(tw, "Platform\t%s\n", info.Platform)
	return tw.Flush()
}
