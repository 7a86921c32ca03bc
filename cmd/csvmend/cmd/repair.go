package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oleg578/csvmend/internal/config"
	"github.com/oleg578/csvmend/internal/pipeline"
)

func newRepairCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [file]",
		Short: "Repair a CSV file and write canonical CSV",
		Long: `Read CSV from a file (or stdin), repair damaged quoting, optionally
reconcile each record's field count with the header, and write the
canonical form to --output (or stdout).

Damaged records are still written in repaired form. When a quarantine
directory is configured, their repaired text is also stored there.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.repair(cmd, args)
		},
	}

	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().String("delimiter", ",", "input delimiter: a character or comma, tab, pipe, semicolon")
	cmd.Flags().String("out-delimiter", "", "output delimiter (default same as input)")
	cmd.Flags().Bool("no-header", false, "treat the first record as data")
	cmd.Flags().Bool("reconcile", false, "pad or merge records to the header's field count")
	cmd.Flags().Bool("always-quote", false, "quote every output field")
	cmd.Flags().Bool("crlf", false, "terminate output records with CRLF")
	cmd.Flags().String("encoding", "utf-8", "input text encoding")
	cmd.Flags().String("drop", "", "drop records whose repaired text matches this regular expression")
	cmd.Flags().String("quarantine-dir", "", "store damaged records in this directory")
	return cmd
}

func (a *app) repair(cmd *cobra.Command, args []string) error {
	applyRepairFlags(cmd, a.cfg)
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	opts, err := pipeline.FromConfig(a.cfg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out-delimiter") {
		v, _ := cmd.Flags().GetString("out-delimiter")
		if opts.OutComma, err = config.ParseDelimiter(v); err != nil {
			return fmt.Errorf("invalid output delimiter: %w", err)
		}
	}
	opts.Logger = a.logger

	store, err := pipeline.OpenQuarantine(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to open quarantine: %w", err)
	}
	if store != nil {
		defer store.Close()
		opts.Quarantine = store
	}

	src, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer src.Close()

	var dst io.Writer = cmd.OutOrStdout()
	output, _ := cmd.Flags().GetString("output")
	var out *os.File
	if output != "" {
		if out, err = os.Create(output); err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer out.Close()
		dst = out
	}

	if _, err := pipeline.Run(cmd.Context(), opts, src, dst); err != nil {
		return err
	}
	if out != nil {
		if err := out.Close(); err != nil {
			return fmt.Errorf("failed to close output: %w", err)
		}
	}
	return nil
}

// applyRepairFlags overrides configuration values with explicitly set flags.
func applyRepairFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		cfg.Delimiter, _ = flags.GetString("delimiter")
	}
	if flags.Changed("no-header") {
		noHeader, _ := flags.GetBool("no-header")
		cfg.Header = !noHeader
	}
	if flags.Changed("reconcile") {
		cfg.Reconcile, _ = flags.GetBool("reconcile")
	}
	if flags.Changed("always-quote") {
		cfg.AlwaysQuote, _ = flags.GetBool("always-quote")
	}
	if flags.Changed("crlf") {
		cfg.CRLF, _ = flags.GetBool("crlf")
	}
	if flags.Changed("encoding") {
		cfg.Encoding, _ = flags.GetString("encoding")
	}
	if flags.Changed("drop") {
		cfg.DropPattern, _ = flags.GetString("drop")
	}
	if flags.Changed("quarantine-dir") {
		cfg.QuarantineDir, _ = flags.GetString("quarantine-dir")
	}
}
