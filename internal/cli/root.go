package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rshetty/sharedexec/internal/cli/profile"
	"github.com/rshetty/sharedexec/internal/cli/run"
	"github.com/rshetty/sharedexec/internal/config"
)

var (
	cfgFile string
)

// Execute runs the root command with the provided context
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sharedexec",
		Short: "Sharedexec - Run shell commands on a shared worker pool",
		Long: `Sharedexec runs batches of shell commands concurrently on a single
process-wide worker pool. Results come back in submission order with exit
codes, captured output and timing, rendered as a table, JSON or YAML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	// Define persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sharedexec/config.yaml)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "shared pool size (0 means one worker per CPU)")
	rootCmd.PersistentFlags().Duration("timeout", 60*time.Second, "timeout for collecting results")
	rootCmd.PersistentFlags().Int("chunk-size", 1, "result prefetch size for bulk mapping")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (table, json, yaml, wide)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output with debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("profile", "", "named settings profile from the config file")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("chunk-size", rootCmd.PersistentFlags().Lookup("chunk-size"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(run.NewRunCmd())
	rootCmd.AddCommand(profile.NewProfileCmd())

	return rootCmd
}

// initConfig initializes configuration and logging
func initConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search the default chain: SHAREDEXEC_CONFIG, then home directory
		locator := config.NewLocator("")
		if path, ok := locator.Resolve(); ok {
			viper.SetConfigFile(path)
		}
	}

	// Read environment variables
	viper.SetEnvPrefix("SHAREDEXEC")
	viper.AutomaticEnv()

	// Read config file if it exists. A missing file is fine even for an
	// explicit --config path: profile add creates it on first save.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Setup structured logging
	setupLogging(cmd)

	return nil
}

// setupLogging configures structured logging with slog
func setupLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")

	// Set log level based on verbose flag
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	// Create handler options
	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if noColor {
		// Use JSON handler for no-color mode
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		// Use text handler for colored output
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	// Tag every record of this invocation with a run id
	logger := slog.New(handler).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	if verbose {
		slog.Debug("verbose logging enabled")
		if viper.ConfigFileUsed() != "" {
			slog.Debug("loaded configuration", "file", viper.ConfigFileUsed())
		}
	}
}
