/*
PURPOSE:
  Defines the configuration structure and loading logic for Codec Bench.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Configure the compressor/decompressor binaries, corpus, encoders and stages.
  - Configure database, backup and report locations.

  Implementation-discovered:
  - Needs to support YAML and TOML parsing (chosen by file extension).
  - Needs to support Environment variable overrides (CODEC_BENCH_...).
  - Inputs and encoders are ordered lists; order drives sweep and chart layout.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3, github.com/pelletier/go-toml/v2

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default config files fall back to DefaultConfig().

IMPLEMENTATION RULES:
  - Config struct tags support yaml and toml.
  - Defaults reproduce the reference corpus.

USAGE:
  cfg, err := config.Load("codec_bench.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct, DefaultConfig() and Validate().

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvCompressor   = "CODEC_BENCH_COMPRESSOR"
	EnvDecompressor = "CODEC_BENCH_DECOMPRESSOR"
	EnvDatabase     = "CODEC_BENCH_DB"
)

// Input is a named corpus file.
type Input struct {
	Name string `yaml:"name" toml:"name"`
	Path string `yaml:"path" toml:"path"`
}

// Encoder maps a display name to the code passed to the compressor via --enc.
type Encoder struct {
	Name string `yaml:"name" toml:"name"`
	Code string `yaml:"code" toml:"code"`
}

// Duration accepts "90s" style strings in both YAML and TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config represents the full configuration for Codec Bench.
type Config struct {
	Compressor   string `yaml:"compressor" toml:"compressor"`
	Decompressor string `yaml:"decompressor" toml:"decompressor"`
	// TempOutput is overwritten by every compression run.
	TempOutput string `yaml:"temp_output" toml:"temp_output"`
	// Timeout bounds a single external invocation. Zero waits forever.
	Timeout Duration `yaml:"timeout" toml:"timeout"`

	Database          string `yaml:"database" toml:"database"`
	BackupDir         string `yaml:"backup_dir" toml:"backup_dir"`
	BackupCompression string `yaml:"backup_compression" toml:"backup_compression"` // "" or "zstd"

	Inputs        []Input   `yaml:"inputs" toml:"inputs"`
	Preprocessors []string  `yaml:"preprocessors" toml:"preprocessors"`
	Encoders      []Encoder `yaml:"encoders" toml:"encoders"`

	CompressionTotal    string   `yaml:"compression_total" toml:"compression_total"`
	DecompressionTotal  string   `yaml:"decompression_total" toml:"decompression_total"`
	CompressionStages   []string `yaml:"compression_stages" toml:"compression_stages"`
	DecompressionStages []string `yaml:"decompression_stages" toml:"decompression_stages"`

	ReportFile string   `yaml:"report_file" toml:"report_file"`
	Metrics    []string `yaml:"metrics" toml:"metrics"`

	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Compressor:   "bin/compress",
		Decompressor: "bin/uncompress",
		TempOutput:   "temp/output",
		Database:     "scripts/dbfile",
		BackupDir:    "scripts/bkdb",
		Inputs: []Input{
			{Name: "XML50M", Path: "inputs/dblp.xml.50MB"},
			{Name: "DNA50M", Path: "inputs/dna.50MB"},
			{Name: "English50M", Path: "inputs/english.50MB"},
			{Name: "Wiki50M", Path: "inputs/enwik8.50MB"},
			{Name: "Kernel50M", Path: "inputs/sources.50MB"},
		},
		Preprocessors: []string{"pp"},
		Encoders: []Encoder{
			{Name: "Huffman", Code: "H"},
			{Name: "Wavelet", Code: "W"},
			{Name: "MTF-RLE0", Code: "0"},
			{Name: "MTF", Code: "F"},
			{Name: "MTF-RLE", Code: "f"},
		},
		CompressionTotal:    "::compress",
		DecompressionTotal:  "::decompress",
		CompressionStages:   []string{"precompress", "doTransform", "encodeData"},
		DecompressionStages: []string{"uncompress", "doTransform", "decodeBlock"},
		ReportFile:          "report.pdf",
		Metrics:             []string{"ratio", "decompress:decodeBlock"},
		LogLevel:            "info",
		LogFormat:           "auto",
	}
}

// DefaultFiles are searched, in order, when no config path is given.
var DefaultFiles = []string{"codec_bench.yaml", "codec_bench.yml", "codec_bench.toml"}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnv()
			return cfg, cfg.Validate()
		}
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvCompressor)); v != "" {
		c.Compressor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDecompressor)); v != "" {
		c.Decompressor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabase)); v != "" {
		c.Database = v
	}
}

// Validate checks the configuration for values the sweep cannot run with.
func (c *Config) Validate() error {
	var errs []error
	required := map[string]string{
		"compressor":          c.Compressor,
		"decompressor":        c.Decompressor,
		"temp_output":         c.TempOutput,
		"database":            c.Database,
		"backup_dir":          c.BackupDir,
		"compression_total":   c.CompressionTotal,
		"decompression_total": c.DecompressionTotal,
	}
	for _, name := range []string{"compressor", "decompressor", "temp_output", "database", "backup_dir", "compression_total", "decompression_total"} {
		if strings.TrimSpace(required[name]) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}

	switch strings.ToLower(c.BackupCompression) {
	case "", "none", "zstd":
	default:
		errs = append(errs, fmt.Errorf("backup_compression: unsupported value %q", c.BackupCompression))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}

	inputNames := make([]string, 0, len(c.Inputs))
	for i, in := range c.Inputs {
		if in.Path == "" {
			errs = append(errs, fmt.Errorf("inputs[%d]: path must not be empty", i))
		}
		inputNames = append(inputNames, in.Name)
	}
	errs = append(errs, checkNames("inputs", inputNames)...)

	encoderNames := make([]string, 0, len(c.Encoders))
	for i, enc := range c.Encoders {
		if enc.Code == "" {
			errs = append(errs, fmt.Errorf("encoders[%d]: code must not be empty", i))
		}
		encoderNames = append(encoderNames, enc.Name)
	}
	errs = append(errs, checkNames("encoders", encoderNames)...)
	errs = append(errs, checkNames("preprocessors", c.Preprocessors)...)

	if len(c.CompressionStages) == 0 {
		errs = append(errs, errors.New("compression_stages must not be empty"))
	}
	if len(c.DecompressionStages) == 0 {
		errs = append(errs, errors.New("decompression_stages must not be empty"))
	}
	errs = append(errs, checkNames("compression_stages", c.CompressionStages)...)
	errs = append(errs, checkNames("decompression_stages", c.DecompressionStages)...)

	return errors.Join(errs...)
}

func checkNames(section string, names []string) []error {
	var errs []error
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: name must not be empty", section, i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate name %q", section, name))
		}
		seen[name] = struct{}{}
	}
	return errs
}

// SelectInputs restricts the inputs to the given names, keeping config order.
// An empty selection keeps every input.
func (c *Config) SelectInputs(names []string) error {
	if len(names) == 0 {
		return nil
	}
	want, err := nameSet("input", names, func(n string) bool {
		for _, in := range c.Inputs {
			if in.Name == n {
				return true
			}
		}
		return false
	})
	if err != nil {
		return err
	}
	kept := c.Inputs[:0:0]
	for _, in := range c.Inputs {
		if _, ok := want[in.Name]; ok {
			kept = append(kept, in)
		}
	}
	c.Inputs = kept
	return nil
}

// SelectEncoders restricts the encoders to the given names, keeping config order.
func (c *Config) SelectEncoders(names []string) error {
	if len(names) == 0 {
		return nil
	}
	want, err := nameSet("encoder", names, func(n string) bool {
		for _, enc := range c.Encoders {
			if enc.Name == n {
				return true
			}
		}
		return false
	})
	if err != nil {
		return err
	}
	kept := c.Encoders[:0:0]
	for _, enc := range c.Encoders {
		if _, ok := want[enc.Name]; ok {
			kept = append(kept, enc)
		}
	}
	c.Encoders = kept
	return nil
}

// SelectPreprocessors restricts the preprocessors to the given names.
func (c *Config) SelectPreprocessors(names []string) error {
	if len(names) == 0 {
		return nil
	}
	want, err := nameSet("preprocessor", names, func(n string) bool {
		for _, p := range c.Preprocessors {
			if p == n {
				return true
			}
		}
		return false
	})
	if err != nil {
		return err
	}
	kept := c.Preprocessors[:0:0]
	for _, p := range c.Preprocessors {
		if _, ok := want[p]; ok {
			kept = append(kept, p)
		}
	}
	c.Preprocessors = kept
	return nil
}

func nameSet(kind string, names []string, known func(string) bool) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !known(n) {
			return nil, fmt.Errorf("unknown %s %q", kind, n)
		}
		set[n] = struct{}{}
	}
	return set, nil
}
