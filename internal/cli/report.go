/*
PURPOSE:
  Defines the 'report' subcommand.
  Renders charts from cached records without running anything.

REQUIREMENTS:
  User-specified:
  - Regenerate the report without re-running the sweep.

  Implementation-discovered:
  - By default the chart follows the configured sweep, in sweep order.

ARCHITECTURE INTEGRATION:
  - Calls: internal/store, internal/report

ERROR HANDLING:
  - Returns error for unknown metrics or an empty selection.

IMPLEMENTATION RULES:
  - Never invokes the compressor.

USAGE:
  codec-bench report --all -r all.pdf

RELATED FILES:
  - internal/cli/run.go
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/codec-bench/internal/output"
	"github.com/daryltucker/codec-bench/internal/report"
)

var (
	reportAll     bool
	reportMetrics []string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the chart report from cached records",
	Long: `Writes one chart page per metric using only records already in the database.
By default only combinations of the configured inputs, preprocessors and encoders
are charted; --all charts every stored record.
Charts hold one bar per input and encoder: when several preprocessors are stored,
the first record for each pair is charted and the rest are reported as warnings.

Metrics: ratio, compress:total, decompress:total, compress:<stage>, decompress:<stage>`,
	Example: `  codec-bench report -r results/report.pdf --metrics ratio,compress:total`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportOverride != "" {
			cfg.ReportFile = reportOverride
		}
		if len(reportMetrics) > 0 {
			cfg.Metrics = reportMetrics
		}
		metrics, err := report.ParseMetrics(cfg.Metrics, cfg.CompressionStages, cfg.DecompressionStages)
		if err != nil {
			return err
		}

		records, err := openStore().Load()
		if err != nil {
			return err
		}
		if !reportAll {
			records = sweepRecords(records, cfg)
		}

		summary, err := report.Summarize(records, metrics, output.Logger)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary)

		if err := report.WriteFile(cfg.ReportFile, records, metrics, output.Logger); err != nil {
			return err
		}
		output.Logger.Info("Report written", "path", cfg.ReportFile, "records", len(records), "pages", len(metrics))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportAll, "all", false, "Chart every stored record, not just the configured sweep")
	reportCmd.Flags().StringSliceVar(&reportMetrics, "metrics", nil, "Comma-separated metrics to chart (overrides config)")
	reportCmd.Flags().StringVarP(&reportOverride, "report", "r", "", "Report output file (PDF)")
}
