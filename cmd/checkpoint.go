package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Manage the durable progress checkpoint",
}

var checkpointClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the checkpoint so the next run starts fresh",
	Long: `Deletes the durable checkpoint. The next extract run reprocesses every
record, including previous failures. This is the explicit operator action
for a full retry; failures are never retried automatically across runs.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := cfg.Checkpoint.Path
		removed := false
		// The sqlite backend runs in WAL mode, which leaves -wal/-shm
		// sidecars next to the database.
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			err := os.Remove(p)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return eris.Wrapf(err, "checkpoint: clear %s", p)
			}
			removed = true
		}
		if !removed {
			fmt.Fprintln(cmd.OutOrStdout(), "no checkpoint to clear")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", path)
		return nil
	},
}

func init() {
	checkpointCmd.AddCommand(checkpointClearCmd)
	rootCmd.AddCommand(checkpointCmd)
}
