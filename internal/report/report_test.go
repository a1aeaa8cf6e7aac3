package report

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daryltucker/codec-bench/internal/model"
)

var (
	compStages   = []string{"precompress", "doTransform", "encodeData"}
	decompStages = []string{"uncompress", "doTransform", "decodeBlock"}
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(input, encoder string, ratio float64, comp, decomp []float64) model.Record {
	return model.Record{
		Input: input, Preprocessor: "pp", Encoder: encoder,
		CompressionTimes: comp, DecompressionTimes: decomp, CompressionRatio: ratio,
	}
}

func sweep() []model.Record {
	return []model.Record{
		rec("XML50M", "MTF", 0.12, []float64{1, 2, 3}, []float64{0.5, 1, 1.5}),
		rec("XML50M", "Huffman", 0.14, []float64{1, 2, 4}, []float64{0.5, 1, 2.5}),
		rec("DNA50M", "MTF", 0.26, []float64{1, 3, 3}, []float64{0.5, 2, 1}),
		rec("DNA50M", "Huffman", 0.25, []float64{2, 3, 3}, []float64{1, 2, 2}),
	}
}

func TestParseMetric(t *testing.T) {
	r := rec("DNA50M", "MTF", 0.3, []float64{1, 2, 3}, []float64{4, 5, 6})

	cases := map[string]float64{
		"ratio":                  0.3,
		"compress:precompress":   1,
		"compress:encodeData":    3,
		"compress:total":         6,
		"decompress:doTransform": 5,
		"decompress:decodeBlock": 6,
		"decompress:total":       15,
	}
	for name, want := range cases {
		m, err := ParseMetric(name, compStages, decompStages)
		require.NoError(t, err, name)
		got, err := m.Extract(r)
		require.NoError(t, err, name)
		require.InDelta(t, want, got, 1e-9, name)
	}

	for _, bad := range []string{"", "speed", "compress:", "compress:decodeBlock", "encode:total"} {
		_, err := ParseMetric(bad, compStages, decompStages)
		require.Error(t, err, bad)
	}
}

func TestParseMetricTitles(t *testing.T) {
	m, err := ParseMetric("ratio", compStages, decompStages)
	require.NoError(t, err)
	require.Equal(t, "Compression Ratio", m.Title)

	m, err = ParseMetric("decompress:decodeBlock", compStages, decompStages)
	require.NoError(t, err)
	require.Equal(t, "Decompression Time: decodeBlock", m.Title)
}

func TestMetricExtractShortRecord(t *testing.T) {
	m, err := ParseMetric("compress:encodeData", compStages, decompStages)
	require.NoError(t, err)
	_, err = m.Extract(rec("DNA50M", "MTF", 0.3, []float64{1}, nil))
	require.Error(t, err)
}

func TestBuildChartGroupsAndSorts(t *testing.T) {
	m, err := ParseMetric("ratio", compStages, decompStages)
	require.NoError(t, err)

	chart, err := BuildChart(sweep(), m, quiet())
	require.NoError(t, err)
	require.Equal(t, []string{"XML50M", "DNA50M"}, chart.Inputs)
	require.Equal(t, []Series{
		{Encoder: "Huffman", Values: []float64{0.14, 0.25}},
		{Encoder: "MTF", Values: []float64{0.12, 0.26}},
	}, chart.Series)
}

func TestBuildChartMissingPairIsZero(t *testing.T) {
	records := append(sweep(), rec("Wiki50M", "MTF", 0.3, []float64{1, 1, 1}, []float64{1, 1, 1}))
	m, err := ParseMetric("ratio", compStages, decompStages)
	require.NoError(t, err)

	chart, err := BuildChart(records, m, quiet())
	require.NoError(t, err)
	require.Equal(t, []float64{0.14, 0.25, 0}, chart.Series[0].Values)
	require.Equal(t, []float64{0.12, 0.26, 0.3}, chart.Series[1].Values)
}

func TestBuildChartWarnsOnSecondPreprocessor(t *testing.T) {
	other := rec("XML50M", "MTF", 0.5, []float64{1, 1, 1}, []float64{1, 1, 1})
	other.Preprocessor = "bwt"
	records := append(sweep(), other)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	m, err := ParseMetric("ratio", compStages, decompStages)
	require.NoError(t, err)

	chart, err := BuildChart(records, m, logger)
	require.NoError(t, err)
	require.Equal(t, []float64{0.12, 0.26}, chart.Series[1].Values, "first record per pair is charted")
	require.Contains(t, logs.String(), "level=WARN")
	require.Contains(t, logs.String(), "preprocessor=bwt")
}

func TestPaletteIsStablePerEncoder(t *testing.T) {
	pal := newPalette()
	red := pal.colorFor("Huffman")
	yellow := pal.colorFor("MTF")
	require.NotEqual(t, red, yellow)
	require.Equal(t, red, pal.colorFor("Huffman"))

	for i := 0; i < len(defaultColors)-2; i++ {
		pal.colorFor(string(rune('a' + i)))
	}
	require.Equal(t, red, pal.colorFor("wraps"), "colors cycle after the palette is exhausted")

	// A fresh pass starts over.
	require.Equal(t, red, newPalette().colorFor("MTF"))
}

func TestWriteProducesMultiPagePDF(t *testing.T) {
	metrics, err := ParseMetrics([]string{"ratio", "compress:total", "decompress:decodeBlock"}, compStages, decompStages)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sweep(), metrics, quiet()))
	require.True(t, strings.HasPrefix(buf.String(), "%PDF-"))

	var single bytes.Buffer
	require.NoError(t, Write(&single, sweep(), metrics[:1], quiet()))
	require.Greater(t, buf.Len(), single.Len(), "every metric adds a page")
}

func TestWriteFile(t *testing.T) {
	metrics, err := ParseMetrics([]string{"ratio"}, compStages, decompStages)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "report.pdf")
	require.NoError(t, WriteFile(path, sweep(), metrics, quiet()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestWriteRejectsEmptyInput(t *testing.T) {
	metrics, err := ParseMetrics([]string{"ratio"}, compStages, decompStages)
	require.NoError(t, err)
	require.ErrorIs(t, Write(io.Discard, nil, metrics, quiet()), ErrNoRecords)
	require.Error(t, Write(io.Discard, sweep(), nil, quiet()))
}

func TestSummarize(t *testing.T) {
	metrics, err := ParseMetrics([]string{"ratio", "compress:total"}, compStages, decompStages)
	require.NoError(t, err)

	out, err := Summarize(sweep(), metrics, quiet())
	require.NoError(t, err)
	require.Contains(t, out, "compress:total")
	require.Contains(t, out, "0.1400")
	require.Contains(t, out, "7.0000")
	require.Less(t, strings.Index(out, "XML50M"), strings.Index(out, "DNA50M"))
}
