package profile

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rshetty/sharedexec/internal/config"
)

// profileEntry pairs a profile with its name for rendering.
type profileEntry struct {
	Name           string `json:"name" yaml:"name"`
	config.Profile `yaml:",inline"`
}

// newListCmd creates the profile list command
func newListCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured run profiles",
		Long: `List the run profiles defined in the sharedexec configuration file.

Each row shows the settings the profile pins; a dash means the setting is
not pinned and the configured default applies.`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (table, json, yaml)")

	return cmd
}

func runList(cmd *cobra.Command, outputFormat string) error {
	logger := slog.Default()

	cfgPath := viper.GetString("config")
	logger.Debug("loading config", "path", cfgPath)

	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	names := mgr.ListProfiles()
	if len(names) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No profiles configured")
		return nil
	}

	// ListProfiles sorts by name for consistent output
	entries := make([]profileEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, profileEntry{Name: name, Profile: cfg.Profiles[name]})
	}

	// Determine output format
	if outputFormat == "" {
		outputFormat = viper.GetString("output")
	}
	if outputFormat == "" {
		outputFormat = "table"
	}

	// Generate output based on format
	switch outputFormat {
	case "json":
		return outputJSON(cmd.OutOrStdout(), entries)
	case "yaml":
		return outputYAML(cmd.OutOrStdout(), entries)
	case "table":
		return outputTable(cmd.OutOrStdout(), entries, viper.GetBool("no-color"))
	default:
		return fmt.Errorf("unsupported output format: %s (supported: table, json, yaml)", outputFormat)
	}
}

func outputTable(w io.Writer, entries []profileEntry, noColor bool) error {
	table := tablewriter.NewWriter(w)

	table.SetHeader([]string{"Name", "Workers", "Timeout", "Chunk", "Shell", "Output", "Description"})

	// Configure table style
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	cyan := color.New(color.FgCyan)

	if noColor {
		color.NoColor = true
	}

	for _, entry := range entries {
		name := entry.Name
		if !noColor {
			name = cyan.Sprint(name)
		}

		table.Append([]string{
			name,
			formatInt(entry.Workers),
			formatDuration(entry.Timeout),
			formatInt(entry.ChunkSize),
			formatString(entry.Shell),
			formatString(entry.OutputFormat),
			entry.Description,
		})
	}

	table.Render()

	// Print summary
	fmt.Fprintf(w, "\nTotal profiles: %d\n", len(entries))

	return nil
}

func outputJSON(w io.Writer, entries []profileEntry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func outputYAML(w io.Writer, entries []profileEntry) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(entries)
}
