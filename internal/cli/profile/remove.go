package profile

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rshetty/sharedexec/internal/config"
)

// newRemoveCmd creates the profile remove command
func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a run profile",
		Long: `Remove a named run profile from the sharedexec configuration file.

Runs referring to a removed profile fail until the profile is re-added or
the --profile flag is dropped.`,
		Aliases: []string{"rm", "delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, args[0])
		},
	}

	return cmd
}

func runRemove(cmd *cobra.Command, name string) error {
	mgr := config.NewManager(viper.GetString("config"))
	if _, err := mgr.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := mgr.RemoveProfile(name); err != nil {
		return err
	}

	if err := mgr.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Profile %q removed from %s\n", name, mgr.Path())
	return nil
}
