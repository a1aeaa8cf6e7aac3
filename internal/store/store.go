/*
PURPOSE:
  Flat-file result database for Codec Bench.
  Persists the list of measured records as a single JSON document.

REQUIREMENTS:
  User-specified:
  - Load the record list; a missing or corrupt document is an empty list.
  - Save overwrites the whole document.
  - Find returns the first record matching every filter field.
  - Backup copies the document into a timestamped archive file.

  Implementation-discovered:
  - Document layout is {"entries": [...]} with 4-space indentation.
  - Saves go through a temp file and rename so a crash never truncates the database.
  - Two sweeps on the same database must not interleave; an advisory lock guards it.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli
  - Consumes: internal/model.Record

ERROR HANDLING:
  - Load swallows decode errors (logged) and returns only real I/O errors.
  - Save/Backup return wrapped errors.

IMPLEMENTATION RULES:
  - Use encoding/json with MarshalIndent.
  - Never mutate records after they are saved.

USAGE:
  st := store.New("scripts/dbfile", "scripts/bkdb")
  records, err := st.Load()
  rec, ok := store.Find(records, model.Filter{"encoder": "MTF"})

SELF-HEALING INSTRUCTIONS:
  - If the document is corrupt, restore the newest file from the backup directory.

RELATED FILES:
  - internal/store/backup.go
  - internal/store/index.go

MAINTENANCE:
  - Update document layout only together with a migration of existing dbfiles.
*/

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/daryltucker/codec-bench/internal/model"
)

// ErrLocked is returned when another process holds the database lock.
var ErrLocked = errors.New("database is locked by another run")

// BackupTimeFormat names backup files (ddmmyy-HHMMSS).
const BackupTimeFormat = "020106-150405"

type document struct {
	Entries []model.Record `json:"entries"`
}

// Store manages the persisted record document and its backups.
type Store struct {
	path        string
	backupDir   string
	compression string
	logger      *slog.Logger
	lock        *flock.Flock
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for recoverable problems.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBackupCompression selects the backup codec ("" or "zstd").
func WithBackupCompression(codec string) Option {
	return func(s *Store) {
		s.compression = codec
	}
}

// WithClock overrides the time source used to name backups.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store for the document at path with backups under backupDir.
func New(path, backupDir string, opts ...Option) *Store {
	s := &Store{
		path:      path,
		backupDir: backupDir,
		logger:    slog.Default(),
		lock:      flock.New(path + ".lock"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// Load reads every record from the document.
// A missing, unparsable or wrongly shaped document yields an empty list.
func (s *Store) Load() ([]model.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Record{}, nil
		}
		return nil, fmt.Errorf("read database %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("Database unreadable, starting empty", "path", s.path, "error", err)
		return []model.Record{}, nil
	}
	if doc.Entries == nil {
		return []model.Record{}, nil
	}
	return doc.Entries, nil
}

// Save replaces the document with the given records.
func (s *Store) Save(records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.MarshalIndent(document{Entries: records}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp database: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp database: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp database: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace database %s: %w", s.path, err)
	}
	return nil
}

// Lock takes the advisory database lock without blocking.
func (s *Store) Lock() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire database lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", s.path, ErrLocked)
	}
	return nil
}

// Unlock releases the database lock.
func (s *Store) Unlock() error {
	return s.lock.Unlock()
}

// Find returns the first record, in order, whose fields equal every filter value.
func Find(records []model.Record, filter model.Filter) (model.Record, bool) {
	for _, r := range records {
		if filter.Matches(r) {
			return r, true
		}
	}
	return model.Record{}, false
}
