package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reva-ai/extract-cli/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint progress without touching the network",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := newStore(cfg.Checkpoint)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		state := store.Load()
		stats := model.ComputeStats(state.Results)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "checkpoint: %s (%s)\n", cfg.Checkpoint.Path, cfg.Checkpoint.Backend)
		fmt.Fprintf(out, "  processed:          %d\n", stats.Attempted)
		fmt.Fprintf(out, "  succeeded (page):   %d\n", stats.SucceededPrimary)
		fmt.Fprintf(out, "  succeeded (doi):    %d\n", stats.SucceededFallback)
		fmt.Fprintf(out, "  failed:             %d\n", stats.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
