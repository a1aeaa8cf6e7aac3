/*
PURPOSE:
  Writes benchmark records to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV for spreadsheets.

  Implementation-discovered:
  - Stage columns depend on the configured stage names.
  - A record with fewer stage times than columns leaves the rest empty.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/export.go
  - Consumes: internal/model.Record

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).

USAGE:
  w, err := output.NewCSVWriter("results.csv", compStages, decompStages)
  w.Write(record)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Record struct changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/daryltucker/codec-bench/internal/model"
)

// CSVWriter handles writing records to a CSV file.
type CSVWriter struct {
	closer io.Closer
	writer *csv.Writer
	mu     sync.Mutex

	compStages   int
	decompStages int
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string, compStages, decompStages []string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	cw, err := newCSVWriter(f, compStages, decompStages)
	if err != nil {
		f.Close()
		return nil, err
	}
	cw.closer = f
	return cw, nil
}

func newCSVWriter(w io.Writer, compStages, decompStages []string) (*CSVWriter, error) {
	cw := &CSVWriter{
		writer:       csv.NewWriter(w),
		compStages:   len(compStages),
		decompStages: len(decompStages),
	}

	header := []string{"input", "preprocessor", "encoder", "compression_ratio"}
	for _, s := range compStages {
		header = append(header, "compress_"+s+"_s")
	}
	header = append(header, "compress_total_s")
	for _, s := range decompStages {
		header = append(header, "decompress_"+s+"_s")
	}
	header = append(header, "decompress_total_s")

	if err := cw.writer.Write(header); err != nil {
		return nil, err
	}
	cw.writer.Flush()
	return cw, cw.writer.Error()
}

// Write writes a single record to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Record) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	row := []string{
		r.Input,
		r.Preprocessor,
		r.Encoder,
		fmt.Sprintf("%.6f", r.CompressionRatio),
	}
	row = append(row, stageColumns(r.CompressionTimes, cw.compStages)...)
	row = append(row, fmt.Sprintf("%.4f", r.TotalCompression()))
	row = append(row, stageColumns(r.DecompressionTimes, cw.decompStages)...)
	row = append(row, fmt.Sprintf("%.4f", r.TotalDecompression()))

	if err := cw.writer.Write(row); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

func stageColumns(times []float64, n int) []string {
	cols := make([]string, n)
	for i := 0; i < n && i < len(times); i++ {
		cols[i] = fmt.Sprintf("%.4f", times[i])
	}
	return cols
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	if cw.closer == nil {
		return cw.writer.Error()
	}
	return cw.closer.Close()
}
