package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oleg578/csvmend/internal/config"
)

// app carries the state resolved by the root command for its subcommands.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd builds the csvmend command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "csvmend",
		Short: "csvmend - repair malformed CSV",
		Long: `csvmend parses CSV records, repairs stray and unbalanced quotes,
reconciles field counts against the header and writes canonical CSV.

Examples:
  csvmend repair broken.csv -o fixed.csv
  csvmend repair --delimiter tab --reconcile < export.tsv
  csvmend columns report.csv
  csvmend quarantine list --dir ./quarantine`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON instead of console text")

	rootCmd.AddCommand(newRepairCmd(a))
	rootCmd.AddCommand(newColumnsCmd(a))
	rootCmd.AddCommand(newQuarantineCmd(a))
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration file, applies the logging flags and builds
// the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Logging.JSON, _ = cmd.Flags().GetBool("log-json")
	}

	a.cfg = cfg
	a.logger = setupLogging(cfg.Logging, cmd.ErrOrStderr())
	return nil
}

// setupLogging configures structured logging
func setupLogging(cfg config.Logging, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.JSON {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

// openInput returns the named file, or the command's stdin for no name or "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}
