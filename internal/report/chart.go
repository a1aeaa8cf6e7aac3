/*
PURPOSE:
  Renders comparative bar charts of cached records into one multi-page PDF.

REQUIREMENTS:
  User-specified:
  - One grouped bar chart per metric.
  - One bar group per input, one bar per encoder, encoders sorted by name.
  - Legend keyed by encoder name.

  Implementation-discovered:
  - Colors must be stable per encoder across pages.
  - A missing (input, encoder) pair draws as a zero bar instead of shifting bars.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (run, report)
  - Consumes: internal/model.Record

ERROR HANDLING:
  - Metric extraction failures abort the report.

IMPLEMENTATION RULES:
  - gonum.org/v1/plot for drawing, vgpdf for the multi-page document.
  - Keep data shaping (BuildChart) separate from drawing for tests.

USAGE:
  metrics, _ := report.ParseMetrics(cfg.Metrics, cfg.CompressionStages, cfg.DecompressionStages)
  err := report.WriteFile("report.pdf", records, metrics, logger)

SELF-HEALING INSTRUCTIONS:
  - If bars overlap, revisit barWidth.

RELATED FILES:
  - internal/report/metric.go
  - internal/report/palette.go

MAINTENANCE:
  - None.
*/

package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/daryltucker/codec-bench/internal/model"
)

// A4 landscape.
var (
	pageWidth  = vg.Points(842)
	pageHeight = vg.Points(595)
)

// ErrNoRecords is returned when there is nothing to chart.
var ErrNoRecords = errors.New("no records to report")

// Series is one encoder's values, one per chart input.
type Series struct {
	Encoder string
	Values  []float64
}

// Chart is the data behind one page.
type Chart struct {
	Metric Metric
	Inputs []string
	Series []Series
}

type pairKey struct {
	input   string
	encoder string
}

// BuildChart groups records by input and encoder for one metric.
// Inputs keep first-appearance order; encoders are sorted by name.
func BuildChart(records []model.Record, metric Metric, logger *slog.Logger) (Chart, error) {
	if logger == nil {
		logger = slog.Default()
	}
	chart := Chart{Metric: metric}

	seenInput := map[string]bool{}
	seenEncoder := map[string]bool{}
	values := map[pairKey]float64{}
	var encoders []string

	for _, r := range records {
		if !seenInput[r.Input] {
			seenInput[r.Input] = true
			chart.Inputs = append(chart.Inputs, r.Input)
		}
		if !seenEncoder[r.Encoder] {
			seenEncoder[r.Encoder] = true
			encoders = append(encoders, r.Encoder)
		}
		key := pairKey{input: r.Input, encoder: r.Encoder}
		if _, dup := values[key]; dup {
			logger.Warn("Duplicate input/encoder pair, keeping first", "input", r.Input, "encoder", r.Encoder, "preprocessor", r.Preprocessor)
			continue
		}
		v, err := metric.Extract(r)
		if err != nil {
			return Chart{}, fmt.Errorf("metric %s: %w", metric.Name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Chart{}, fmt.Errorf("metric %s: record %s: value %v is not finite", metric.Name, r.Key(), v)
		}
		values[key] = v
	}
	sort.Strings(encoders)

	for _, enc := range encoders {
		s := Series{Encoder: enc, Values: make([]float64, len(chart.Inputs))}
		for i, in := range chart.Inputs {
			v, ok := values[pairKey{input: in, encoder: enc}]
			if !ok {
				logger.Warn("No record for chart bar, drawing zero", "metric", metric.Name, "input", in, "encoder", enc)
			}
			s.Values[i] = v
		}
		chart.Series = append(chart.Series, s)
	}
	return chart, nil
}

// barWidth splits the plot width between groups, leaving one bar of gap per group.
func barWidth(inputs, encoders int) vg.Length {
	slots := float64(inputs * (encoders + 1))
	if slots == 0 {
		slots = 1
	}
	return vg.Points(math.Min(40, 640/slots))
}

// Plot draws the chart, taking encoder colors from pal.
func (c Chart) Plot(pal *palette) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Metric.Title
	p.Y.Label.Text = c.Metric.Label
	p.Y.Min = 0
	p.Legend.Top = true

	width := barWidth(len(c.Inputs), len(c.Series))
	n := len(c.Series)
	for i, s := range c.Series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), width)
		if err != nil {
			return nil, fmt.Errorf("bars for %s: %w", s.Encoder, err)
		}
		bars.Color = pal.colorFor(s.Encoder)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * width
		p.Add(bars)
		p.Legend.Add(s.Encoder, bars)
	}
	p.NominalX(c.Inputs...)
	return p, nil
}

// Write renders one PDF page per metric to w.
func Write(w io.Writer, records []model.Record, metrics []Metric, logger *slog.Logger) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	if len(metrics) == 0 {
		return errors.New("no metrics requested")
	}

	pal := newPalette()
	canvas := vgpdf.New(pageWidth, pageHeight)
	for i, m := range metrics {
		chart, err := BuildChart(records, m, logger)
		if err != nil {
			return err
		}
		p, err := chart.Plot(pal)
		if err != nil {
			return fmt.Errorf("metric %s: %w", m.Name, err)
		}
		if i > 0 {
			canvas.NextPage()
		}
		p.Draw(draw.New(canvas))
	}

	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WriteFile renders the report into path, creating parent directories.
func WriteFile(path string, records []model.Record, metrics []Metric, logger *slog.Logger) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := Write(f, records, metrics, logger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
