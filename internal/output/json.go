/*
PURPOSE:
  Writes benchmark records to a JSON Lines file (NDJSON).
  Optimized for machine parsing and `jq` pipelines.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - The database itself is a single document; this is an export format only.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/export.go
  - Consumes: internal/model.Record

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter("results.jsonl")
  w.Write(record)
  w.Close()

RELATED FILES:
  - internal/model/types.go
*/

package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/daryltucker/codec-bench/internal/model"
)

// JSONWriter streams records as JSON Lines, one record object per line,
// in the same shape the database stores them.
type JSONWriter struct {
	closer io.Closer
	enc    *json.Encoder
	mu     sync.Mutex
}

// NewJSONWriter truncates path and returns a writer on it.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	jw := newJSONWriter(f)
	jw.closer = f
	return jw, nil
}

func newJSONWriter(w io.Writer) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONWriter{enc: enc}
}

// Write writes a single record as a JSON line.
func (jw *JSONWriter) Write(r model.Record) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	return jw.enc.Encode(r)
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	if jw.closer == nil {
		return nil
	}
	return jw.closer.Close()
}
