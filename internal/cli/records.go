/*
PURPOSE:
  Defines the 'records' subcommand.
  Lists what the database already holds, so a sweep can be checked before it runs.

REQUIREMENTS:
  User-specified:
  - Inspect cached results.

  Implementation-discovered:
  - Useful validation step before a full run: cached combinations are skipped.
  - Filtering by input/preprocessor/encoder uses the same matching as the cache.

ARCHITECTURE INTEGRATION:
  - Calls: internal/store.Load, internal/store.Find
  - Renders: internal/output.RenderTable

ERROR HANDLING:
  - A missing or unreadable database lists nothing.

IMPLEMENTATION RULES:
  - Table output to stdout.

USAGE:
  codec-bench records --input DNA50M

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/store/store.go

MAINTENANCE:
  - Add columns here when model.Record grows.
*/

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/daryltucker/codec-bench/internal/model"
	"github.com/daryltucker/codec-bench/internal/output"
	"github.com/daryltucker/codec-bench/internal/store"
)

var (
	recordsInput        string
	recordsPreprocessor string
	recordsEncoder      string
	recordsFirst        bool
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List cached benchmark records",
	Example: `  codec-bench records
  codec-bench records --encoder Huffman
  codec-bench records --input DNA50M --preprocessor pp --encoder MTF --first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := openStore().Load()
		if err != nil {
			return err
		}

		filter := model.Filter{}
		if recordsInput != "" {
			filter[model.FieldInput] = recordsInput
		}
		if recordsPreprocessor != "" {
			filter[model.FieldPreprocessor] = recordsPreprocessor
		}
		if recordsEncoder != "" {
			filter[model.FieldEncoder] = recordsEncoder
		}

		var matched []model.Record
		if recordsFirst {
			if r, ok := store.Find(records, filter); ok {
				matched = append(matched, r)
			}
		} else {
			for _, r := range records {
				if filter.Matches(r) {
					matched = append(matched, r)
				}
			}
		}

		if len(matched) == 0 {
			output.Logger.Info("No matching records", "database", cfg.Database, "total", len(records))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), recordsTable(matched))
		return nil
	},
}

func recordsTable(records []model.Record) string {
	headers := []string{"Input", "Preprocessor", "Encoder", "Ratio", "Compress (s)", "Decompress (s)"}
	aligns := []output.Alignment{
		output.AlignLeft, output.AlignLeft, output.AlignLeft,
		output.AlignRight, output.AlignRight, output.AlignRight,
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Input,
			r.Preprocessor,
			r.Encoder,
			strconv.FormatFloat(r.CompressionRatio, 'f', 4, 64),
			strconv.FormatFloat(r.TotalCompression(), 'f', 3, 64),
			strconv.FormatFloat(r.TotalDecompression(), 'f', 3, 64),
		})
	}
	return output.RenderTable(headers, rows, aligns)
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.Flags().StringVar(&recordsInput, "input", "", "Only records for this input")
	recordsCmd.Flags().StringVar(&recordsPreprocessor, "preprocessor", "", "Only records for this preprocessor")
	recordsCmd.Flags().StringVar(&recordsEncoder, "encoder", "", "Only records for this encoder")
	recordsCmd.Flags().BoolVar(&recordsFirst, "first", false, "Show only the first match, as the sweep cache would")
}
