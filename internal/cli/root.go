/*
PURPOSE:
  Defines the root Cobra command for the Codec Bench CLI.
  Handles global flags, config loading and logger setup.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Every subcommand needs the loaded config and the store.
  - Ctrl-C must cancel the running child process.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/codec-bench/main.go
  - Calls: Child commands (run, report, records, db, export)
  - Modifies: output.Logger once flags are parsed.

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/codec-bench/main.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daryltucker/codec-bench/internal/config"
	"github.com/daryltucker/codec-bench/internal/model"
	"github.com/daryltucker/codec-bench/internal/output"
	"github.com/daryltucker/codec-bench/internal/store"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	logLevel  string
	logFormat string

	// cfg is loaded once flags are parsed.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "codec-bench",
		Short: "Benchmark harness for an external compressor",
		Long: `Runs an external compressor and decompressor over a corpus of inputs and
encoder settings, caches the measured timings and ratios, and charts them.
Use 'run --help' for sweep options.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

// Execute executes the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./codec_bench.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: auto, text, json (overrides config)")
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level, format := cfg.LogLevel, cfg.LogFormat
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	logger, err := output.NewLogger(level, format, os.Stderr)
	if err != nil {
		return err
	}
	output.SetLogger(logger)
	return nil
}

func openStore() *store.Store {
	return store.New(cfg.Database, cfg.BackupDir,
		store.WithLogger(output.Logger),
		store.WithBackupCompression(cfg.BackupCompression),
	)
}

// sweepRecords picks, in sweep order, the cached record for every configured
// combination. Combinations without a record are skipped.
func sweepRecords(records []model.Record, c *config.Config) []model.Record {
	var picked []model.Record
	for _, in := range c.Inputs {
		for _, pre := range c.Preprocessors {
			for _, enc := range c.Encoders {
				key := model.Key{Input: in.Name, Preprocessor: pre, Encoder: enc.Name}
				if r, ok := store.Find(records, key.Filter()); ok {
					picked = append(picked, r)
				}
			}
		}
	}
	return picked
}
