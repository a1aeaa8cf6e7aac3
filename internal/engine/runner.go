/*
PURPOSE:
  High-level runner that orchestrates the benchmark sweep.
  Loops through Inputs -> Preprocessors -> Encoders and measures cache misses.

REQUIREMENTS:
  User-specified:
  - Produce one record per combination.
  - Reuse any persisted record with the same input, preprocessor and encoder.
  - Rescale reported stage times against measured wall time.

  Implementation-discovered:
  - Save after every new record so an aborted sweep resumes where it stopped.
  - Remove the temp output before compressing; a stale file must never be measured.
  - Needs to report progress to CLI.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine/client.go, internal/store, internal/output

ERROR HANDLING:
  - Fails fast: any process, parse or size error aborts the sweep.
  - Records measured before the failure are already persisted.

IMPLEMENTATION RULES:
  - Sequential; one child process at a time.
  - Iterate in configured order.

USAGE:
  r := engine.NewRunner(cfg, st)
  records, stats, err := r.Run(ctx)

SELF-HEALING INSTRUCTIONS:
  - If records look stale, run with Force or delete the database entry.

RELATED FILES:
  - internal/engine/client.go
  - internal/engine/timing.go

MAINTENANCE:
  - Update iteration logic if parallelism is introduced.
*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/daryltucker/codec-bench/internal/config"
	"github.com/daryltucker/codec-bench/internal/model"
	"github.com/daryltucker/codec-bench/internal/output"
	"github.com/daryltucker/codec-bench/internal/store"
)

// Stats summarizes one sweep.
type Stats struct {
	Combinations int
	CacheHits    int
	Measured     int
	Planned      int // Dry-run cache misses
}

// Runner executes the sweep against the store.
type Runner struct {
	cfg      *config.Config
	store    *store.Store
	client   *Client
	logger   *slog.Logger
	progress io.Writer
	dryRun   bool
	force    bool
	stdout   io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(r *Runner) {
		if executor != nil {
			r.client = NewClient(r.cfg, executor)
		}
	}
}

// WithProgress draws a progress bar on w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = w
	}
}

// WithDryRun prints the planned command lines to w instead of running them.
func WithDryRun(w io.Writer) Option {
	return func(r *Runner) {
		r.dryRun = true
		r.stdout = w
	}
}

// WithForce ignores cached records and measures every combination again.
func WithForce(force bool) Option {
	return func(r *Runner) {
		r.force = force
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner.
func NewRunner(cfg *config.Config, st *store.Store, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		store:  st,
		client: NewClient(cfg, nil),
		logger: output.Logger,
		stdout: io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the full sweep and returns one record per combination in
// sweep order.
func (r *Runner) Run(ctx context.Context) ([]model.Record, Stats, error) {
	logger := r.logger.With("session", uuid.NewString())

	cached, err := r.store.Load()
	if err != nil {
		return nil, Stats{}, err
	}
	index := store.NewIndex(cached)
	logger.Info("Loaded database", "path", r.store.Path(), "records", index.Len())

	if !r.dryRun {
		if err := os.MkdirAll(filepath.Dir(r.cfg.TempOutput), 0o755); err != nil {
			return nil, Stats{}, fmt.Errorf("failed to create temp output directory: %w", err)
		}
	}

	total := len(r.cfg.Inputs) * len(r.cfg.Preprocessors) * len(r.cfg.Encoders)
	stats := Stats{Combinations: total}

	var bar *progressbar.ProgressBar
	if r.progress != nil && !r.dryRun {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(r.progress),
			progressbar.OptionSetDescription("sweep"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
	}

	entries := make([]model.Record, 0, total)
	for _, in := range r.cfg.Inputs {
		for _, pre := range r.cfg.Preprocessors {
			for _, enc := range r.cfg.Encoders {
				if err := ctx.Err(); err != nil {
					return entries, stats, err
				}

				key := model.Key{Input: in.Name, Preprocessor: pre, Encoder: enc.Name}
				if rec, ok := index.Lookup(key); ok && !r.force {
					logger.Debug("Cache hit", "key", key.String())
					stats.CacheHits++
					entries = append(entries, rec)
					if bar != nil {
						_ = bar.Add(1)
					}
					continue
				}

				if r.dryRun {
					stats.Planned++
					fmt.Fprintln(r.stdout, CommandLine(r.cfg.Compressor, CompressArgs(pre, enc.Code, in.Path, r.cfg.TempOutput)))
					fmt.Fprintln(r.stdout, CommandLine(r.cfg.Decompressor, DecompressArgs(r.cfg.TempOutput)))
					continue
				}

				logger.Info("Measuring", "input", in.Name, "preprocessor", pre, "encoder", enc.Name)
				rec, err := r.measure(ctx, in, pre, enc)
				if err != nil {
					return entries, stats, fmt.Errorf("%s: %w", key, err)
				}

				index.Put(rec)
				if err := r.store.Save(index.Records()); err != nil {
					return entries, stats, err
				}
				stats.Measured++
				entries = append(entries, rec)

				logger.Info("Measured",
					"key", key.String(),
					"compress_s", fmt.Sprintf("%.3f", rec.TotalCompression()),
					"decompress_s", fmt.Sprintf("%.3f", rec.TotalDecompression()),
					"ratio", fmt.Sprintf("%.4f", rec.CompressionRatio),
				)
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}
	}

	logger.Info("Sweep complete",
		"combinations", stats.Combinations,
		"cache_hits", stats.CacheHits,
		"measured", stats.Measured,
	)
	return entries, stats, nil
}

func (r *Runner) measure(ctx context.Context, in config.Input, preprocessor string, enc config.Encoder) (model.Record, error) {
	originalSize, err := fileSize(in.Path)
	if err != nil {
		return model.Record{}, fmt.Errorf("stat input: %w", err)
	}
	if originalSize == 0 {
		return model.Record{}, fmt.Errorf("input %s is empty", in.Path)
	}

	if err := os.Remove(r.cfg.TempOutput); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return model.Record{}, fmt.Errorf("remove stale output: %w", err)
	}

	comp, err := r.client.Compress(ctx, in.Path, preprocessor, enc.Code)
	if err != nil {
		return model.Record{}, fmt.Errorf("compress: %w", err)
	}
	compressedSize, err := fileSize(r.cfg.TempOutput)
	if err != nil {
		return model.Record{}, fmt.Errorf("compressor produced no output: %w", err)
	}
	compTimes, err := StageTimes(comp.Stderr, r.cfg.CompressionTotal, r.cfg.CompressionStages, comp.Elapsed)
	if err != nil {
		return model.Record{}, fmt.Errorf("compression timings: %w", err)
	}

	decomp, err := r.client.Decompress(ctx)
	if err != nil {
		return model.Record{}, fmt.Errorf("decompress: %w", err)
	}
	decompTimes, err := StageTimes(decomp.Stderr, r.cfg.DecompressionTotal, r.cfg.DecompressionStages, decomp.Elapsed)
	if err != nil {
		return model.Record{}, fmt.Errorf("decompression timings: %w", err)
	}

	r.logger.Debug("Sizes",
		"input", in.Name,
		"original", humanize.Bytes(uint64(originalSize)),
		"compressed", humanize.Bytes(uint64(compressedSize)),
		"compress_wall", comp.Elapsed,
		"decompress_wall", decomp.Elapsed,
	)

	return model.Record{
		Input:              in.Name,
		Preprocessor:       preprocessor,
		Encoder:            enc.Name,
		CompressionTimes:   compTimes,
		DecompressionTimes: decompTimes,
		CompressionRatio:   float64(compressedSize) / float64(originalSize),
	}, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
