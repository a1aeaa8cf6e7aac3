/*
PURPOSE:
  Archives copies of the results database and lists existing archives.

REQUIREMENTS:
  User-specified:
  - Back up the database after every sweep, named by time (ddmmyy-HHMMSS).

  Implementation-discovered:
  - Optional zstd compression keeps the archive small; OpenBackup reads either form.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/run.go, internal/cli/db.go

ERROR HANDLING:
  - A partially written backup is removed.

IMPLEMENTATION RULES:
  - Never modify the live database here.

USAGE:
  path, err := st.Backup()

RELATED FILES:
  - internal/store/store.go
*/

package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// BackupInfo describes one archived copy of the database.
type BackupInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Backup copies the current document into the backup directory, named by
// the current time. The returned path is the written file.
func (s *Store) Backup() (string, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory %s: %w", s.backupDir, err)
	}

	name := s.now().Format(BackupTimeFormat)
	if strings.EqualFold(s.compression, "zstd") {
		name += ".zst"
	}
	dst := filepath.Join(s.backupDir, name)

	in, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("open database for backup: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create backup %s: %w", dst, err)
	}
	defer out.Close()

	if strings.EqualFold(s.compression, "zstd") {
		err = copyZstd(out, in)
	} else {
		_, err = io.Copy(out, in)
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("write backup %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close backup %s: %w", dst, err)
	}

	s.logger.Info("Database backed up", "path", dst)
	return dst, nil
}

func copyZstd(dst io.Writer, src io.Reader) error {
	enc, err := zstd.NewWriter(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(enc, src); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// OpenBackup returns a reader over the decompressed content of a backup.
func OpenBackup(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open zstd backup %s: %w", path, err)
	}
	return &zstdReadCloser{dec: dec, file: f}, nil
}

type zstdReadCloser struct {
	dec  *zstd.Decoder
	file *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.file.Close()
}

// ListBackups returns the archived copies, oldest first.
func (s *Store) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup directory %s: %w", s.backupDir, err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:    filepath.Join(s.backupDir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Path < backups[j].Path
		}
		return backups[i].ModTime.Before(backups[j].ModTime)
	})
	return backups, nil
}
