/*
PURPOSE:
  Defines the core data structures used throughout Codec Bench.
  A Record is one measured (input, preprocessor, encoder) combination.

REQUIREMENTS:
  User-specified:
  - Record per-stage compression and decompression times.
  - Record the compression ratio (compressed size / original size).
  - Identify a record by input, preprocessor and encoder.

  Implementation-discovered:
  - JSON keys must stay stable; the database file is read back across runs.
  - Filters address fields by their JSON key name.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/store, internal/report, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Times are float64 seconds, not time.Duration, to keep the document readable.

USAGE:
  rec := model.Record{Input: "DNA50M", Preprocessor: "pp", Encoder: "Huffman"}
  key := rec.Key()

SELF-HEALING INSTRUCTIONS:
  - If a new key field is added, extend Key, Field and the store index.

RELATED FILES:
  - internal/store/store.go
  - internal/output/csv.go

MAINTENANCE:
  - Update when adding new metrics to capture.
*/

package model

// Field names usable in a Filter. They match the JSON keys of Record.
const (
	FieldInput        = "input"
	FieldPreprocessor = "preprocessor"
	FieldEncoder      = "encoder"
)

// Record represents the outcome of a single compress/decompress measurement.
type Record struct {
	Input              string    `json:"input"`
	Preprocessor       string    `json:"preprocessor"`
	Encoder            string    `json:"encoder"`
	CompressionTimes   []float64 `json:"compression_times"`   // One per compression stage, seconds
	DecompressionTimes []float64 `json:"decompression_times"` // One per decompression stage, seconds
	CompressionRatio   float64   `json:"compression_ratio"`
}

// Key identifies a record within the database.
type Key struct {
	Input        string
	Preprocessor string
	Encoder      string
}

// Key returns the identifying triple of the record.
func (r Record) Key() Key {
	return Key{Input: r.Input, Preprocessor: r.Preprocessor, Encoder: r.Encoder}
}

// Field returns the value of a key field addressed by its JSON name.
func (r Record) Field(name string) (string, bool) {
	switch name {
	case FieldInput:
		return r.Input, true
	case FieldPreprocessor:
		return r.Preprocessor, true
	case FieldEncoder:
		return r.Encoder, true
	}
	return "", false
}

// Filter maps field names to the exact values a record must carry.
type Filter map[string]string

// Filter returns the filter that matches exactly this key.
func (k Key) Filter() Filter {
	return Filter{
		FieldInput:        k.Input,
		FieldPreprocessor: k.Preprocessor,
		FieldEncoder:      k.Encoder,
	}
}

func (k Key) String() string {
	return k.Preprocessor + "/" + k.Encoder + "/" + k.Input
}

// Matches reports whether every filter field equals the record's value.
// Unknown field names never match.
func (f Filter) Matches(r Record) bool {
	for name, want := range f {
		got, ok := r.Field(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// TotalCompression sums the per-stage compression times.
func (r Record) TotalCompression() float64 {
	return sum(r.CompressionTimes)
}

// TotalDecompression sums the per-stage decompression times.
func (r Record) TotalDecompression() float64 {
	return sum(r.DecompressionTimes)
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
