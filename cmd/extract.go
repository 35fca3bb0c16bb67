package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reva-ai/extract-cli/internal/dataset"
	"github.com/reva-ai/extract-cli/internal/extract"
	"github.com/reva-ai/extract-cli/internal/model"
	"github.com/reva-ai/extract-cli/internal/pipeline"
)

var (
	extractInput       string
	extractOutput      string
	extractSheet       string
	extractLimit       int
	extractRetryFailed bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the extraction pipeline over the input workbook",
	Long: `Reads the input workbook, extracts an abstract and keywords for every
record not yet covered by the checkpoint, and writes the augmented output
workbook.

The run is strictly sequential and rate limited. Progress is checkpointed
every batch, so the command can be interrupted and rerun; already-attempted
records (including failures) are skipped on resume.

Examples:
  # Full run with paths from config.yaml
  extract-cli extract

  # Explicit paths, small trial batch
  extract-cli extract --input papers.xlsx --output out.xlsx --limit 10

  # Reprocess records that failed in earlier runs
  extract-cli extract --retry-failed`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		input := cfg.Dataset.Input
		if extractInput != "" {
			input = extractInput
		}
		output := cfg.Dataset.Output
		if extractOutput != "" {
			output = extractOutput
		}
		sheet := cfg.Dataset.Sheet
		if extractSheet != "" {
			sheet = extractSheet
		}

		table, err := dataset.Load(input, sheet)
		if err != nil {
			return eris.Wrap(err, "extract: read input dataset")
		}
		records := table.Records()
		zap.L().Info("extract: loaded input",
			zap.String("input", input),
			zap.String("sheet", table.SheetName),
			zap.Int("records", len(records)),
		)

		store, err := newStore(cfg.Checkpoint)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		extractor := extract.New(
			extract.NewPageSource(
				time.Duration(cfg.Extract.PageTimeoutSecs)*time.Second,
				cfg.Extract.UserAgent,
			),
			extract.NewCrossrefClient(
				cfg.Extract.CrossrefBaseURL,
				cfg.Extract.UserAgent,
				time.Duration(cfg.Extract.APITimeoutSecs)*time.Second,
			),
		)

		driver := pipeline.New(extractor, store, pipeline.Options{
			BatchSize:   cfg.Pipeline.BatchSize,
			Interval:    cfg.Pipeline.RateInterval(),
			Limit:       extractLimit,
			RetryFailed: extractRetryFailed,
		})

		results, err := driver.Run(ctx, records)
		if err != nil {
			return err
		}

		if err := dataset.Write(output, table, results); err != nil {
			return err
		}
		zap.L().Info("extract: wrote output", zap.String("output", output))

		printSummary(cmd, model.ComputeStats(results))
		return nil
	},
}

func printSummary(cmd *cobra.Command, stats model.RunStats) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Extraction complete")
	fmt.Fprintf(out, "  attempted:          %d\n", stats.Attempted)
	fmt.Fprintf(out, "  succeeded (page):   %d\n", stats.SucceededPrimary)
	fmt.Fprintf(out, "  succeeded (doi):    %d\n", stats.SucceededFallback)
	fmt.Fprintf(out, "  failed:             %d\n", stats.Failed)
	fmt.Fprintf(out, "  success rate:       %.1f%%\n", stats.SuccessRate()*100)
}

func init() {
	extractCmd.Flags().StringVar(&extractInput, "input", "", "input workbook path (default from config)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "output workbook path (default from config)")
	extractCmd.Flags().StringVar(&extractSheet, "sheet", "", "input sheet name (default first sheet)")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "process at most N pending records")
	extractCmd.Flags().BoolVar(&extractRetryFailed, "retry-failed", false, "reprocess records that failed in earlier runs")
	rootCmd.AddCommand(extractCmd)
}
