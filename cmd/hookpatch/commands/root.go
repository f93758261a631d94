// Package commands implements CLI command handlers for hookpatch.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/hookpatch/pkg/bulkpatch"
	"github.com/Sumatoshi-tech/hookpatch/pkg/config"
	"github.com/Sumatoshi-tech/hookpatch/pkg/observability"
	"github.com/Sumatoshi-tech/hookpatch/pkg/render"
	"github.com/Sumatoshi-tech/hookpatch/pkg/version"
)

// GlobalFlags are the persistent flags shared by every subcommand.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	LogJSON    bool
	NoColor    bool
}

// targetFlags override the configured run target.
type targetFlags struct {
	baseDir       string
	files         []string
	skipUnchanged bool
	output        string
}

// NewRootCommand builds the hookpatch command tree.
func NewRootCommand() *cobra.Command {
	globals := &GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "hookpatch",
		Short: "Insert the scroll-to-top hook into React pages",
		Long: `hookpatch adds a hook import and a hook call to a fixed list of React page
components. Files that already reference the hook are left as they are.

Commands:
  apply     Patch the configured files in place
  status    Show which files still need the patch`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globals.ConfigPath, "config", "c", "", "config file (default: ./hookpatch.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress the per-file transcript")
	rootCmd.PersistentFlags().BoolVar(&globals.LogJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&globals.NoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewApplyCommand(globals))
	rootCmd.AddCommand(NewStatusCommand(globals))

	return rootCmd
}

func (tf *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&tf.baseDir, "base-dir", "d", "", "directory holding the page files (overrides config)")
	cmd.Flags().StringSliceVarP(&tf.files, "file", "f", nil, "file name to process, repeatable (overrides config list)")
	cmd.Flags().StringVarP(&tf.output, "output", "o", render.FormatText, "report format: text, yaml, json")
}

func (tf *targetFlags) validateOutput() error {
	switch tf.output {
	case render.FormatText, render.FormatYAML, render.FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %s", render.ErrUnknownFormat, tf.output)
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command, globals *GlobalFlags, tf *targetFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(globals.ConfigPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("base-dir") {
		cfg.BaseDir = tf.baseDir
	}

	if cmd.Flags().Changed("file") {
		cfg.FileNames = tf.files
	}

	if cmd.Flags().Changed("skip-unchanged") {
		cfg.SkipUnchanged = tf.skipUnchanged
	}

	if globals.LogJSON {
		cfg.Logging.JSON = true
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}

func observabilityConfig(cfg *config.Config, globals *GlobalFlags, mode observability.AppMode) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.PushgatewayURL = cfg.Telemetry.PushgatewayURL
	obsCfg.JobName = cfg.Telemetry.Job

	level, _ := cfg.LogLevel()

	switch {
	case globals.Verbose:
		level = slog.LevelDebug
	case globals.Quiet:
		level = slog.LevelError
	}

	obsCfg.LogLevel = level

	return obsCfg
}

// metricsFactory builds the run metrics from the configured meter.
type metricsFactory func(metric.Meter) (*observability.PatchMetrics, error)

// runPatcher wires observability around one bulk patch run. Telemetry
// shutdown problems are logged, never returned: the run itself has
// already happened.
func runPatcher(
	cmd *cobra.Command,
	globals *GlobalFlags,
	cfg *config.Config,
	mode observability.AppMode,
	opts bulkpatch.Options,
	transcript io.Writer,
) (bulkpatch.Report, error) {
	return runPatcherWith(cmd, globals, cfg, mode, opts, transcript, observability.NewPatchMetrics)
}

func runPatcherWith(
	cmd *cobra.Command,
	globals *GlobalFlags,
	cfg *config.Config,
	mode observability.AppMode,
	opts bulkpatch.Options,
	transcript io.Writer,
	newMetrics metricsFactory,
) (bulkpatch.Report, error) {
	providers, err := observability.InitWithWriter(observabilityConfig(cfg, globals, mode), cmd.ErrOrStderr())
	if err != nil {
		return bulkpatch.Report{}, fmt.Errorf("init observability: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	defer shutdownTelemetry(ctx, providers)

	metrics, err := newMetrics(providers.Meter)
	if err != nil {
		return bulkpatch.Report{}, fmt.Errorf("init metrics: %w", err)
	}

	patcher := bulkpatch.New(afero.NewOsFs(), opts,
		bulkpatch.WithLogger(providers.Logger),
		bulkpatch.WithTracer(providers.Tracer),
		bulkpatch.WithMetrics(metrics),
		bulkpatch.WithReporter(bulkpatch.NewConsoleReporter(transcript, plainOutput(globals))),
	)

	return patcher.Run(ctx), nil
}

// shutdownTelemetry flushes exporters even when the run was cancelled.
func shutdownTelemetry(ctx context.Context, providers observability.Providers) {
	shutdownErr := providers.Shutdown(context.WithoutCancel(ctx))
	if shutdownErr != nil {
		providers.Logger.WarnContext(ctx, "telemetry shutdown failed", "error", shutdownErr)
	}
}

func plainOutput(globals *GlobalFlags) bool {
	return globals.NoColor || color.NoColor
}
