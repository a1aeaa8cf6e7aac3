/*
PURPOSE:
  Defines the 'export' subcommand.
  Writes cached records as csv, jsonl or sqlite.

REQUIREMENTS:
  User-specified:
  - Results usable outside the tool.

  Implementation-discovered:
  - CSV columns follow the configured stage names.

ARCHITECTURE INTEGRATION:
  - Calls: internal/output writers

ERROR HANDLING:
  - Unknown formats are rejected before anything is written.

IMPLEMENTATION RULES:
  - The default output path is computed per invocation; the flag variable is left untouched.

USAGE:
  codec-bench export --format csv -o results.csv

RELATED FILES:
  - internal/output/csv.go, internal/output/json.go, internal/output/sqlite.go
*/

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/daryltucker/codec-bench/internal/model"
	"github.com/daryltucker/codec-bench/internal/output"
)

var (
	exportFormat string
	exportPath   string
)

// recordWriter is what the csv and jsonl writers share.
type recordWriter interface {
	Write(model.Record) error
	Close() error
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached records as csv, jsonl or sqlite",
	Example: `  codec-bench export --format csv -o results.csv
  codec-bench export --format sqlite -o results.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := openStore().Load()
		if err != nil {
			return err
		}
		format := strings.ToLower(exportFormat)
		path := exportPath
		if path == "" {
			path = "results." + format
		}

		switch format {
		case "sqlite":
			id := uuid.NewString()
			ctx := cmd.Context()
			sw, err := output.NewSQLiteWriter(ctx, path, id)
			if err != nil {
				return err
			}
			for _, r := range records {
				if err := sw.Write(ctx, r); err != nil {
					sw.Close()
					return err
				}
			}
			if err := sw.Close(); err != nil {
				return err
			}
			output.Logger.Info("Export complete", "format", format, "path", path, "records", len(records), "export_id", id)
			return nil

		case "csv", "jsonl":
			var w recordWriter
			if format == "csv" {
				w, err = output.NewCSVWriter(path, cfg.CompressionStages, cfg.DecompressionStages)
			} else {
				w, err = output.NewJSONWriter(path)
			}
			if err != nil {
				return err
			}
			for _, r := range records {
				if err := w.Write(r); err != nil {
					return errors.Join(err, w.Close())
				}
			}
			if err := w.Close(); err != nil {
				return err
			}
			output.Logger.Info("Export complete", "format", format, "path", path, "records", len(records))
			return nil
		}
		return fmt.Errorf("unknown export format %q (want csv, jsonl or sqlite)", exportFormat)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Export format: csv, jsonl, sqlite")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Output file (default results.<format>)")
}
