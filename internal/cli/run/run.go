package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rshetty/sharedexec"
	"github.com/rshetty/sharedexec/internal/config"
	"github.com/rshetty/sharedexec/internal/output"
	"github.com/rshetty/sharedexec/internal/runner"
	"github.com/rshetty/sharedexec/internal/util"
	obsprom "github.com/rshetty/sharedexec/observability/prometheus"
)

// settings is the fully resolved set of run parameters after merging the
// config file defaults, the selected profile and the command-line flags.
type settings struct {
	Workers      int
	Timeout      time.Duration
	ChunkSize    int
	Shell        string
	OutputFormat string
	NoColor      bool
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var file string
	var failFast bool
	var shell string
	var dir string
	var env []string
	var metricsListen string

	cmd := &cobra.Command{
		Use:   "run [command ...]",
		Short: "Run shell commands on the shared worker pool",
		Long: `Run a batch of shell commands concurrently on the process-wide worker
pool. Commands come from the arguments, from a file (-f), or from stdin
(-f -), one command per line; blank lines and #-comments are skipped.

Results keep submission order regardless of completion order and carry
each command's exit code, captured output and wall-clock duration.`,
		Example: `  # Run commands given as arguments
  sharedexec run "make build" "make lint"

  # Read commands from a file, one per line
  sharedexec run -f commands.txt

  # Read commands from stdin
  generate-commands | sharedexec run -f -

  # Stop consuming results at the first failure
  sharedexec run --fail-fast "make build" "make test"

  # Eight workers and JSON output
  sharedexec run -w 8 -o json "curl -fsS http://localhost:8080/healthz"

  # Expose Prometheus metrics for the duration of the run
  sharedexec run --metrics-listen :9091 -f commands.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kv := range env {
				if !strings.Contains(kv, "=") {
					return fmt.Errorf("invalid --env entry %q: expected KEY=VALUE", kv)
				}
			}

			commands, err := gatherCommands(args, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			return runRun(cmd, commands, failFast, shell, dir, env, metricsListen)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read commands from file, one per line (- for stdin)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop consuming results at the first failed command")
	cmd.Flags().StringVar(&shell, "shell", "", "Interpreter commands run under (default /bin/sh)")
	cmd.Flags().StringVar(&dir, "dir", "", "Working directory for every command")
	cmd.Flags().StringArrayVar(&env, "env", nil, "Extra KEY=VALUE for every command (repeatable)")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address while the run lasts")

	return cmd
}

func runRun(cmd *cobra.Command, commands []string, failFast bool, shell string, dir string, env []string, metricsListen string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if shell != "" {
		s.Shell = shell
	}

	// Resolve the output format up front so a typo fails before any
	// command runs.
	formatter, err := newFormatter(s)
	if err != nil {
		return err
	}

	logger.Debug("running commands",
		"count", len(commands),
		"workers", s.Workers,
		"timeout", s.Timeout,
		"chunk_size", s.ChunkSize,
		"fail_fast", failFast)

	opts := []sharedexec.Option{sharedexec.WithLogger(logger)}
	if s.Workers > 0 {
		opts = append(opts, sharedexec.WithWorkers(s.Workers))
	}

	var poller *obsprom.SnapshotPoller
	if metricsListen != "" {
		reg := prom.NewRegistry()

		exporter, err := obsprom.NewExporter(reg, obsprom.ExporterOptions{})
		if err != nil {
			return fmt.Errorf("failed to build metrics exporter: %w", err)
		}
		opts = append(opts, sharedexec.WithMetrics(exporter))

		poller, err = obsprom.NewSnapshotPoller(reg, time.Second)
		if err != nil {
			return fmt.Errorf("failed to build snapshot poller: %w", err)
		}

		srv := serveMetrics(metricsListen, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	// The process-wide pool; its size and options are fixed by whichever
	// call constructs it first.
	pool, err := sharedexec.Default(opts...)
	if err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	if poller != nil {
		poller.AddPool(pool.Name(), pool)
		poller.Start(ctx)
		defer poller.Stop()
	}

	spec := runner.Spec{
		Shell:     s.Shell,
		Dir:       dir,
		Env:       env,
		FailFast:  failFast,
		Timeout:   s.Timeout,
		ChunkSize: s.ChunkSize,
	}

	results, runErr := runner.Run(ctx, pool, spec, commands)

	// Render whatever completed, even when the run ended early.
	if err := formatter.Format(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}

	if failed := runner.CountFailed(results); failed > 0 {
		return fmt.Errorf("%d of %d commands failed", failed, len(results))
	}

	return nil
}

// gatherCommands merges command arguments with the optional command file.
func gatherCommands(args []string, file string, stdin io.Reader) ([]string, error) {
	commands := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			commands = append(commands, arg)
		}
	}

	if file != "" {
		r := stdin
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return nil, fmt.Errorf("failed to open command file: %w", err)
			}
			defer f.Close()
			r = f
		}

		fileCommands, err := runner.ParseCommands(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read commands: %w", err)
		}
		commands = append(commands, fileCommands...)
	}

	if len(commands) == 0 {
		return nil, util.ErrNoCommands
	}

	return commands, nil
}

// resolveSettings merges the config file, the selected profile and the
// command-line flags, in increasing order of precedence.
func resolveSettings(cmd *cobra.Command) (settings, error) {
	mgr := config.NewManager(viper.GetString("config"))
	cfg, err := mgr.Load()
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}

	s := settings{
		Workers:      cfg.Defaults.Workers,
		Timeout:      cfg.Defaults.Timeout,
		ChunkSize:    cfg.Defaults.ChunkSize,
		Shell:        cfg.Defaults.Shell,
		OutputFormat: cfg.Defaults.OutputFormat,
		NoColor:      cfg.Defaults.NoColor,
	}

	// Profile settings override the defaults; zero-valued fields keep them.
	if name := viper.GetString("profile"); name != "" {
		p, ok := cfg.Profiles[name]
		if !ok {
			return settings{}, fmt.Errorf("%w: %q", util.ErrProfileNotFound, name)
		}
		if p.Workers != 0 {
			s.Workers = p.Workers
		}
		if p.Timeout != 0 {
			s.Timeout = p.Timeout
		}
		if p.ChunkSize != 0 {
			s.ChunkSize = p.ChunkSize
		}
		if p.Shell != "" {
			s.Shell = p.Shell
		}
		if p.OutputFormat != "" {
			s.OutputFormat = p.OutputFormat
		}
		if p.NoColor {
			s.NoColor = true
		}
	}

	// Flags set on the command line trump both.
	flags := cmd.Flags()
	if flags.Changed("workers") {
		s.Workers = viper.GetInt("workers")
	}
	if flags.Changed("timeout") {
		s.Timeout = viper.GetDuration("timeout")
	}
	if flags.Changed("chunk-size") {
		s.ChunkSize = viper.GetInt("chunk-size")
	}
	if flags.Changed("output") {
		s.OutputFormat = viper.GetString("output")
	}
	if flags.Changed("no-color") || viper.GetBool("no-color") {
		s.NoColor = true
	}

	return s, nil
}

// newFormatter builds the result formatter for the resolved settings.
// "wide" is the table format with the OUTPUT column added.
func newFormatter(s settings) (output.Formatter, error) {
	name := s.OutputFormat
	wide := false
	if strings.EqualFold(strings.TrimSpace(name), "wide") {
		name = string(output.FormatTable)
		wide = true
	}

	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}

	return output.NewFormatter(format,
		output.WithNoColor(s.NoColor),
		output.WithWide(wide),
	), nil
}

// serveMetrics starts an HTTP server exposing the registry on /metrics.
func serveMetrics(addr string, reg *prom.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", obsprom.Handler(reg))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", addr, "path", "/metrics")
	return srv
}
