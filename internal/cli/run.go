/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full benchmark sweep, backs up the database and writes the report.

REQUIREMENTS:
  User-specified:
  - Run the benchmarks.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.
  - Hold the database lock for the whole sweep.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Runner, internal/store, internal/report
  - Uses: internal/config

ERROR HANDLING:
  - Returns error if the sweep, backup or report fails.
  - A failed sweep skips the backup; rerunning resumes from the cache.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Runner.Run -> Backup -> Report.

USAGE:
  codec-bench run --encoders Huffman,MTF

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daryltucker/codec-bench/internal/config"
	"github.com/daryltucker/codec-bench/internal/engine"
	"github.com/daryltucker/codec-bench/internal/output"
	"github.com/daryltucker/codec-bench/internal/report"
)

var (
	inputsOverride        []string
	encodersOverride      []string
	preprocessorsOverride []string
	forceRun              bool
	dryRun                bool
	noReport              bool
	timeoutOverride       time.Duration
	reportOverride        string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark sweep",
	Long: `Runs the compressor and decompressor for every input x preprocessor x encoder
combination that is not already in the database.
The process follows a strict protocol:
1. Cache: Combinations with a stored record are reused as-is.
2. Measure: The compressor and decompressor run once each; wall time is measured
   and the stage timings printed on stderr are scaled to it.
3. Persist: Each new record is saved immediately, so an aborted sweep resumes.
4. Backup: The database is copied into the backup directory.
5. Report: One chart page per configured metric is written to the report file.`,
	Example: `  # Run with defaults (uses codec_bench.yaml)
  codec-bench run

  # Only two encoders on one input
  codec-bench run --encoders Huffman,MTF --inputs DNA50M

  # Show what would be executed
  codec-bench run --dry-run

  # Re-measure everything, killing any run that takes longer than 10 minutes
  codec-bench run --force --timeout 10m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Overrides
		if err := applyRunOverrides(cmd, cfg); err != nil {
			return err
		}

		// 2. Sweep
		st := openStore()
		if err := st.Lock(); err != nil {
			return err
		}
		defer func() {
			if err := st.Unlock(); err != nil {
				output.Logger.Warn("Failed to release database lock", "error", err)
			}
		}()

		opts := []engine.Option{engine.WithForce(forceRun)}
		if dryRun {
			opts = append(opts, engine.WithDryRun(cmd.OutOrStdout()))
		} else if output.IsTerminal(os.Stderr) {
			opts = append(opts, engine.WithProgress(os.Stderr))
		}

		records, stats, err := engine.NewRunner(cfg, st, opts...).Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("sweep aborted after %d new records: %w", stats.Measured, err)
		}
		if dryRun {
			output.Logger.Info("Dry run complete", "cached", stats.CacheHits, "planned", stats.Planned)
			return nil
		}

		// 3. Backup
		if _, err := os.Stat(st.Path()); errors.Is(err, fs.ErrNotExist) {
			output.Logger.Warn("No database written, skipping backup", "path", st.Path())
		} else if _, err := st.Backup(); err != nil {
			return err
		}

		// 4. Report
		if noReport || len(records) == 0 {
			return nil
		}
		metrics, err := report.ParseMetrics(cfg.Metrics, cfg.CompressionStages, cfg.DecompressionStages)
		if err != nil {
			return err
		}
		summary, err := report.Summarize(records, metrics, output.Logger)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary)

		if err := report.WriteFile(cfg.ReportFile, records, metrics, output.Logger); err != nil {
			return err
		}
		output.Logger.Info("Report written", "path", cfg.ReportFile, "pages", len(metrics))
		return nil
	},
}

func applyRunOverrides(cmd *cobra.Command, c *config.Config) error {
	if err := c.SelectInputs(inputsOverride); err != nil {
		return err
	}
	if err := c.SelectEncoders(encodersOverride); err != nil {
		return err
	}
	if err := c.SelectPreprocessors(preprocessorsOverride); err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		c.Timeout = config.Duration(timeoutOverride)
	}
	if reportOverride != "" {
		c.ReportFile = reportOverride
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&inputsOverride, "inputs", nil, "Comma-separated list of input names to run (default: all)")
	runCmd.Flags().StringSliceVar(&encodersOverride, "encoders", nil, "Comma-separated list of encoder names to run (default: all)")
	runCmd.Flags().StringSliceVar(&preprocessorsOverride, "preprocessors", nil, "Comma-separated list of preprocessors to run (default: all)")
	runCmd.Flags().BoolVar(&forceRun, "force", false, "Re-measure combinations that are already cached")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands for uncached combinations without running them")
	runCmd.Flags().BoolVar(&noReport, "no-report", false, "Skip writing the chart report")
	runCmd.Flags().DurationVar(&timeoutOverride, "timeout", 0, "Kill a compressor/decompressor run after this long (0 = never)")
	runCmd.Flags().StringVarP(&reportOverride, "report", "r", "", "Report output file (PDF)")
}
