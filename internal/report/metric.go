/*
PURPOSE:
  Resolves metric names from config into value extractors for charts.

REQUIREMENTS:
  User-specified:
  - Chart the ratio and selected stage timings.

  Implementation-discovered:
  - Stage names are validated against the configured stage lists up front.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/run.go, internal/cli/report.go
  - Feeds: internal/report/chart.go, internal/report/summary.go

ERROR HANDLING:
  - Unknown names fail at parse time; short records fail at extract time.

IMPLEMENTATION RULES:
  - Names: ratio, compress:<stage|total>, decompress:<stage|total>.

USAGE:
  metrics, err := report.ParseMetrics(cfg.Metrics, cfg.CompressionStages, cfg.DecompressionStages)

RELATED FILES:
  - internal/config/config.go
*/

package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/daryltucker/codec-bench/internal/model"
)

// Metric derives one number from a record.
type Metric struct {
	Name    string // As written in config, e.g. "decompress:decodeBlock"
	Title   string // Page title
	Label   string // Y axis label
	Extract func(model.Record) (float64, error)
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}

// ParseMetric resolves a metric name against the configured stage names.
//
//	ratio                 compression ratio
//	compress:total        sum of compression stage times
//	compress:<stage>      one compression stage time
//	decompress:total      sum of decompression stage times
//	decompress:<stage>    one decompression stage time
func ParseMetric(name string, compStages, decompStages []string) (Metric, error) {
	name = strings.TrimSpace(name)
	if name == "ratio" {
		return Metric{
			Name:  name,
			Title: title("compression ratio"),
			Label: "Compressed / original size",
			Extract: func(r model.Record) (float64, error) {
				return r.CompressionRatio, nil
			},
		}, nil
	}

	phase, stage, ok := strings.Cut(name, ":")
	if !ok || stage == "" {
		return Metric{}, fmt.Errorf("unknown metric %q", name)
	}

	var (
		stages []string
		noun   string
		times  func(model.Record) []float64
	)
	switch phase {
	case "compress":
		stages, noun = compStages, "compression time"
		times = func(r model.Record) []float64 { return r.CompressionTimes }
	case "decompress":
		stages, noun = decompStages, "decompression time"
		times = func(r model.Record) []float64 { return r.DecompressionTimes }
	default:
		return Metric{}, fmt.Errorf("unknown metric %q: phase must be compress or decompress", name)
	}

	if stage == "total" {
		return Metric{
			Name:  name,
			Title: title("total " + noun),
			Label: "Seconds",
			Extract: func(r model.Record) (float64, error) {
				total := 0.0
				for _, v := range times(r) {
					total += v
				}
				return total, nil
			},
		}, nil
	}

	pos := -1
	for i, s := range stages {
		if s == stage {
			pos = i
			break
		}
	}
	if pos < 0 {
		return Metric{}, fmt.Errorf("unknown metric %q: no %s stage %q", name, phase, stage)
	}

	return Metric{
		Name:  name,
		Title: title(noun) + ": " + stage,
		Label: "Seconds",
		Extract: func(r model.Record) (float64, error) {
			values := times(r)
			if pos >= len(values) {
				return 0, fmt.Errorf("record %s has %d %s stages, need %d", r.Key(), len(values), phase, pos+1)
			}
			return values[pos], nil
		},
	}, nil
}

// ParseMetrics resolves every name, failing on the first unknown one.
func ParseMetrics(names, compStages, decompStages []string) ([]Metric, error) {
	metrics := make([]Metric, 0, len(names))
	for _, n := range names {
		m, err := ParseMetric(n, compStages, decompStages)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}
