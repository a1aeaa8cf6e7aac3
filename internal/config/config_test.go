package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Encoders, 5)
	require.Equal(t, "::compress", cfg.CompressionTotal)
	require.Equal(t, []string{"uncompress", "doTransform", "decodeBlock"}, cfg.DecompressionStages)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	content := `
compressor: /opt/bwtc/compress
timeout: 90s
inputs:
  - name: Tiny
    path: data/tiny.txt
encoders:
  - name: Huffman
    code: H
compression_stages: [precompress]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/opt/bwtc/compress", cfg.Compressor)
	require.Equal(t, "bin/uncompress", cfg.Decompressor)
	require.Equal(t, Duration(90*time.Second), cfg.Timeout)
	require.Equal(t, []Input{{Name: "Tiny", Path: "data/tiny.txt"}}, cfg.Inputs)
	require.Equal(t, []string{"precompress"}, cfg.CompressionStages)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.toml")
	content := `
database = "results/db.json"
backup_compression = "zstd"
timeout = "2m"

[[encoders]]
name = "MTF"
code = "F"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "results/db.json", cfg.Database)
	require.Equal(t, "zstd", cfg.BackupCompression)
	require.Equal(t, Duration(2*time.Minute), cfg.Timeout)
	require.Equal(t, []Encoder{{Name: "MTF", Code: "F"}}, cfg.Encoders)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	content := `
encoders:
  - name: Huffman
    code: H
  - name: Huffman
    code: W
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), `duplicate name "Huffman"`)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvCompressor, "/usr/local/bin/compress")
	t.Setenv(EnvDatabase, "/tmp/db.json")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/usr/local/bin/compress", cfg.Compressor)
	require.Equal(t, "/tmp/db.json", cfg.Database)
}

func TestSelectSubsets(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.SelectEncoders([]string{"MTF", "Huffman"}))
	require.Equal(t, []Encoder{{Name: "Huffman", Code: "H"}, {Name: "MTF", Code: "F"}}, cfg.Encoders)

	require.NoError(t, cfg.SelectInputs([]string{"DNA50M"}))
	require.Len(t, cfg.Inputs, 1)
	require.Equal(t, "DNA50M", cfg.Inputs[0].Name)

	require.Error(t, cfg.SelectInputs([]string{"Missing"}))
	require.Error(t, cfg.SelectPreprocessors([]string{"nope"}))

	// Defaults are untouched by selection on another instance.
	require.Len(t, DefaultConfig().Encoders, 5)
}
