package cmd

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/oleg578/csvmend/internal/quarantine"
)

func newQuarantineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quarantine",
		Short: "Inspect quarantined records",
		Long:  `Inspect damaged records stored by repair runs.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List quarantined records",
		Long: `List quarantined records as run ID, line number and repaired text.

Examples:
  csvmend quarantine list --dir ./quarantine
  csvmend quarantine list --dir ./quarantine --run 2Mu1XkLKZzaNpBEJGtlAnBavmDr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listQuarantine(cmd)
		},
	}
	listCmd.Flags().String("dir", "", "quarantine directory (default from config)")
	listCmd.Flags().String("run", "", "only list records from this run ID")

	cmd.AddCommand(listCmd)
	return cmd
}

func (a *app) listQuarantine(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = a.cfg.QuarantineDir
	}
	if dir == "" {
		return fmt.Errorf("no quarantine directory: set --dir or quarantine_dir in the config")
	}

	runID := ksuid.Nil
	if run, _ := cmd.Flags().GetString("run"); run != "" {
		id, err := ksuid.Parse(run)
		if err != nil {
			return fmt.Errorf("invalid run ID %q: %w", run, err)
		}
		runID = id
	}

	store, err := quarantine.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open quarantine: %w", err)
	}
	defer store.Close()

	entries, err := store.Entries(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%d\t%s\n", e.RunID, e.Line, e.Text)
	}
	a.logger.Debug().Int("entries", len(entries)).Str("dir", dir).Msg("quarantine listed")
	return nil
}
