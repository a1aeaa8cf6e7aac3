package store

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daryltucker/codec-bench/internal/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{
			Input: "DNA50M", Preprocessor: "pp", Encoder: "Huffman",
			CompressionTimes:   []float64{1.5, 2.25, 0.75},
			DecompressionTimes: []float64{0.5, 1.0, 0.25},
			CompressionRatio:   0.27,
		},
		{
			Input: "DNA50M", Preprocessor: "pp", Encoder: "MTF",
			CompressionTimes:   []float64{1.25, 2.5, 1.0},
			DecompressionTimes: []float64{0.5, 1.25, 0.5},
			CompressionRatio:   0.25,
		},
		{
			Input: "XML50M", Preprocessor: "pp", Encoder: "Huffman",
			CompressionTimes:   []float64{0.5, 3.0, 0.5},
			DecompressionTimes: []float64{0.25, 1.75, 0.25},
			CompressionRatio:   0.11,
		},
	}
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "scripts", "dbfile"), filepath.Join(dir, "scripts", "bkdb"), opts...)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := newTestStore(t)
	records := sampleRecords()

	require.NoError(t, st.Save(records))
	loaded, err := st.Load()
	require.NoError(t, err)
	require.Equal(t, records, loaded)

	// Saving twice overwrites rather than appends.
	require.NoError(t, st.Save(records[:1]))
	loaded, err = st.Load()
	require.NoError(t, err)
	require.Equal(t, records[:1], loaded)
}

func TestSaveLoadRoundTripShapes(t *testing.T) {
	cases := map[string][]model.Record{
		"empty list": {},
		"empty stage slices": {
			{Input: "DNA50M", Preprocessor: "pp", Encoder: "MTF", CompressionTimes: []float64{}, DecompressionTimes: []float64{}},
		},
		"nil stage slices": {
			{Input: "DNA50M", Preprocessor: "pp", Encoder: "MTF", CompressionRatio: 1},
		},
		"unicode names": {
			{Input: "Wikipédia-日本語", Preprocessor: "préproc", Encoder: "Хаффман", CompressionTimes: []float64{0.1}, DecompressionTimes: []float64{2}, CompressionRatio: 0.5},
			{Input: "emoji 🗜", Preprocessor: "", Encoder: "\"quoted\"", CompressionTimes: []float64{1e-9, 1e9}, DecompressionTimes: []float64{3}},
		},
	}
	for name, records := range cases {
		t.Run(name, func(t *testing.T) {
			st := newTestStore(t)
			require.NoError(t, st.Save(records))
			loaded, err := st.Load()
			require.NoError(t, err)
			require.Equal(t, records, loaded)
		})
	}
}

func TestSaveLoadRoundTripGenerated(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	times := func() []float64 {
		n := rng.IntN(5)
		if n == 0 {
			return nil
		}
		out := make([]float64, n)
		for i := range out {
			out[i] = rng.Float64() * 100
		}
		return out
	}

	for round := 0; round < 20; round++ {
		records := make([]model.Record, rng.IntN(30))
		for i := range records {
			records[i] = model.Record{
				Input:              fmt.Sprintf("input-%d", rng.IntN(5)),
				Preprocessor:       fmt.Sprintf("pp%d", rng.IntN(2)),
				Encoder:            fmt.Sprintf("enc-%d", rng.IntN(6)),
				CompressionTimes:   times(),
				DecompressionTimes: times(),
				CompressionRatio:   rng.Float64(),
			}
		}

		st := newTestStore(t)
		require.NoError(t, st.Save(records))
		loaded, err := st.Load()
		require.NoError(t, err)
		require.Equal(t, records, loaded, "round %d", round)
	}
}

func TestSaveWritesEntriesDocument(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Save(sampleRecords()[:1]))

	data, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasPrefix(text, "{\n    \"entries\": ["), text)
	require.Contains(t, text, `"compression_times"`)
	require.Contains(t, text, `"compression_ratio": 0.27`)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(st.Path()), ".dbfile.*.tmp"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestLoadMissingIsEmpty(t *testing.T) {
	st := newTestStore(t)
	records, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestLoadCorruptIsEmpty(t *testing.T) {
	cases := map[string]string{
		"garbage":      "{not json",
		"array":        `[{"input": "x"}]`,
		"wrong type":   `{"entries": "nope"}`,
		"missing key":  `{"records": []}`,
		"null entries": `{"entries": null}`,
		"empty file":   "",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			st := newTestStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(st.Path()), 0o755))
			require.NoError(t, os.WriteFile(st.Path(), []byte(content), 0o644))

			records, err := st.Load()
			require.NoError(t, err)
			require.Empty(t, records)
		})
	}
}

func TestFind(t *testing.T) {
	records := sampleRecords()

	// Every subset of every record's key finds a record agreeing on that subset.
	fields := []string{model.FieldInput, model.FieldPreprocessor, model.FieldEncoder}
	for _, rec := range records {
		for mask := 0; mask < 1<<len(fields); mask++ {
			filter := model.Filter{}
			for i, f := range fields {
				if mask&(1<<i) != 0 {
					v, _ := rec.Field(f)
					filter[f] = v
				}
			}
			got, ok := Find(records, filter)
			require.True(t, ok, "filter %v", filter)
			for f, want := range filter {
				v, _ := got.Field(f)
				require.Equal(t, want, v)
			}
		}
	}

	got, ok := Find(records, model.Filter{model.FieldEncoder: "Huffman"})
	require.True(t, ok)
	require.Equal(t, records[0], got, "first match in iteration order")

	_, ok = Find(records, model.Filter{model.FieldEncoder: "Wavelet"})
	require.False(t, ok)
	_, ok = Find(records, model.Filter{"bogus": "DNA50M"})
	require.False(t, ok)
	_, ok = Find(nil, model.Filter{})
	require.False(t, ok)
}

func TestIndexMatchesFind(t *testing.T) {
	records := append(sampleRecords(), model.Record{
		Input: "DNA50M", Preprocessor: "pp", Encoder: "Huffman", CompressionRatio: 0.99,
	})
	idx := NewIndex(records)

	for _, rec := range records {
		want, wantOK := Find(records, rec.Key().Filter())
		got, ok := idx.Lookup(rec.Key())
		require.Equal(t, wantOK, ok)
		require.Equal(t, want, got)
	}

	_, ok := idx.Lookup(model.Key{Input: "none"})
	require.False(t, ok)

	replacement := records[1]
	replacement.CompressionRatio = 0.5
	idx.Put(replacement)
	require.Equal(t, len(records), idx.Len())
	got, _ := idx.Lookup(replacement.Key())
	require.Equal(t, 0.5, got.CompressionRatio)

	idx.Put(model.Record{Input: "Wiki50M", Preprocessor: "pp", Encoder: "MTF"})
	require.Equal(t, len(records)+1, idx.Len())
}

func TestBackup(t *testing.T) {
	stamp := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	st := newTestStore(t, WithClock(func() time.Time { return stamp }))
	require.NoError(t, st.Save(sampleRecords()))

	path, err := st.Backup()
	require.NoError(t, err)
	require.Equal(t, "050324-140709", filepath.Base(path))

	original, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	copied, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, copied)

	backups, err := st.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	require.Equal(t, path, backups[0].Path)
}

func TestBackupZstd(t *testing.T) {
	st := newTestStore(t, WithBackupCompression("zstd"))
	require.NoError(t, st.Save(sampleRecords()))

	path, err := st.Backup()
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, ".zst"))

	rc, err := OpenBackup(path)
	require.NoError(t, err)
	defer rc.Close()
	restored, err := io.ReadAll(rc)
	require.NoError(t, err)

	original, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	require.Equal(t, original, restored)
}

func TestBackupWithoutDatabaseFails(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Backup()
	require.Error(t, err)
}

func TestListBackupsMissingDir(t *testing.T) {
	st := newTestStore(t)
	backups, err := st.ListBackups()
	require.NoError(t, err)
	require.Empty(t, backups)
}

func TestLockIsExclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dbfile")
	first := New(path, filepath.Join(dir, "bk"))
	second := New(path, filepath.Join(dir, "bk"))

	require.NoError(t, first.Lock())
	err := second.Lock()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLocked))

	require.NoError(t, first.Unlock())
	require.NoError(t, second.Lock())
	require.NoError(t, second.Unlock())
}
