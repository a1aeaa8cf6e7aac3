/*
PURPOSE:
  Exports records into a SQLite database for ad-hoc SQL queries.

REQUIREMENTS:
  Implementation-discovered:
  - Several exports can share one file; each is tagged with an export id.
  - Stage times are stored as JSON arrays next to precomputed totals.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/export.go

ERROR HANDLING:
  - Returns error on open, schema or insert failure.

IMPLEMENTATION RULES:
  - Pure Go driver (modernc.org/sqlite), no cgo.

USAGE:
  w, err := output.NewSQLiteWriter(ctx, "results.db", uuid.NewString())

RELATED FILES:
  - internal/output/csv.go
*/

package output

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/daryltucker/codec-bench/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
    export_id TEXT NOT NULL,
    exported_at TEXT NOT NULL,
    input TEXT NOT NULL,
    preprocessor TEXT NOT NULL,
    encoder TEXT NOT NULL,
    compression_ratio REAL NOT NULL,
    compression_total REAL NOT NULL,
    decompression_total REAL NOT NULL,
    compression_times TEXT NOT NULL,
    decompression_times TEXT NOT NULL,
    PRIMARY KEY (export_id, input, preprocessor, encoder)
);`

// SQLiteWriter exports records into a SQLite database for ad-hoc queries.
// Each export is tagged with its own id so repeated exports can coexist.
type SQLiteWriter struct {
	db         *sql.DB
	exportID   string
	exportedAt string
}

// NewSQLiteWriter opens (or creates) the database at path.
func NewSQLiteWriter(ctx context.Context, path, exportID string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &SQLiteWriter{
		db:         db,
		exportID:   exportID,
		exportedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Write inserts one record.
func (sw *SQLiteWriter) Write(ctx context.Context, r model.Record) error {
	comp, err := json.Marshal(r.CompressionTimes)
	if err != nil {
		return err
	}
	decomp, err := json.Marshal(r.DecompressionTimes)
	if err != nil {
		return err
	}
	_, err = sw.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO records (
            export_id, exported_at, input, preprocessor, encoder,
            compression_ratio, compression_total, decompression_total,
            compression_times, decompression_times
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sw.exportID,
		sw.exportedAt,
		r.Input,
		r.Preprocessor,
		r.Encoder,
		r.CompressionRatio,
		r.TotalCompression(),
		r.TotalDecompression(),
		string(comp),
		string(decomp),
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", r.Key(), err)
	}
	return nil
}

// Close closes the database.
func (sw *SQLiteWriter) Close() error {
	return sw.db.Close()
}
