/*
PURPOSE:
  Prints the charted numbers as a terminal table.

REQUIREMENTS:
  Implementation-discovered:
  - The PDF is not readable in a terminal; the same values are shown after a sweep.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/run.go, internal/cli/report.go
  - Uses: internal/output.RenderTable

ERROR HANDLING:
  - ErrNoRecords for an empty record list; metric errors are returned as-is.

IMPLEMENTATION RULES:
  - Row order follows BuildChart (inputs first seen, encoders sorted).

USAGE:
  fmt.Println(report.Summarize(records, metrics, logger))

RELATED FILES:
  - internal/report/chart.go
*/

package report

import (
	"fmt"
	"log/slog"

	"github.com/daryltucker/codec-bench/internal/model"
	"github.com/daryltucker/codec-bench/internal/output"
)

// Summarize renders the charted values as a text table: one row per
// input and encoder, one column per metric.
func Summarize(records []model.Record, metrics []Metric, logger *slog.Logger) (string, error) {
	if len(records) == 0 {
		return "", ErrNoRecords
	}

	charts := make([]Chart, 0, len(metrics))
	for _, m := range metrics {
		c, err := BuildChart(records, m, logger)
		if err != nil {
			return "", err
		}
		charts = append(charts, c)
	}

	headers := []string{"Input", "Encoder"}
	aligns := []output.Alignment{output.AlignLeft, output.AlignLeft}
	for _, m := range metrics {
		headers = append(headers, m.Name)
		aligns = append(aligns, output.AlignRight)
	}
	if len(charts) == 0 {
		return output.RenderTable(headers, nil, aligns), nil
	}

	// Every chart shares the same inputs and encoders.
	base := charts[0]
	var rows [][]string
	for i, in := range base.Inputs {
		for j, s := range base.Series {
			row := []string{in, s.Encoder}
			for _, c := range charts {
				row = append(row, fmt.Sprintf("%.4f", c.Series[j].Values[i]))
			}
			rows = append(rows, row)
		}
	}
	return output.RenderTable(headers, rows, aligns), nil
}
