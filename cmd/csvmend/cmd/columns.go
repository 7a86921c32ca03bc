package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oleg578/csvmend"
	"github.com/oleg578/csvmend/internal/textenc"
)

func newColumnsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns [file]",
		Short: "Print the header names, one per line",
		Long: `Parse the first record of a CSV file (or stdin) and print each
column name on its own line. Damaged quotes in the header are repaired.
The first record is always taken as the header, even when the
configuration sets header: false.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.columns(cmd, args)
		},
	}
	cmd.Flags().String("delimiter", ",", "input delimiter: a character or comma, tab, pipe, semicolon")
	cmd.Flags().String("encoding", "utf-8", "input text encoding")
	return cmd
}

func (a *app) columns(cmd *cobra.Command, args []string) error {
	applyRepairFlags(cmd, a.cfg)
	comma, err := a.cfg.Comma()
	if err != nil {
		return err
	}

	src, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer src.Close()

	decoded, err := textenc.NewReader(src, a.cfg.Encoding)
	if err != nil {
		return err
	}
	reader := csvmend.NewReader(decoded)
	reader.Comma = comma
	// The first record is read as the header whatever the header setting.
	reader.Header = true
	if !a.cfg.Header {
		a.logger.Debug().Msg("header setting ignored: columns always reads the first record as the header")
	}

	_, err = reader.Read()
	switch {
	case err == io.EOF:
		return fmt.Errorf("input has no header record")
	case errors.Is(err, csvmend.ErrDamagedQuote):
		a.logger.Warn().Err(err).Msg("header repaired")
	case err != nil:
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range reader.Headers() {
		fmt.Fprintln(out, name)
	}
	return nil
}
