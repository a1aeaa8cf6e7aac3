/*
PURPOSE:
  Core engine for invoking the external compressor and decompressor.
  Runs one child process at a time, times it, and captures its diagnostic output.

REQUIREMENTS:
  User-specified:
  - Compressor: <compressor> --prepr <p> --enc <code> <input> <output>
  - Decompressor: <decompressor> <compressed>
  - Timing lines are printed on stderr; stdout is ignored.

  Implementation-discovered:
  - A nonzero exit must abort the sweep, not produce bogus timings.
  - A hung binary needs an optional timeout and Ctrl-C must reach the child.
  - Tests need to fake the binaries; execution sits behind an Executor.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Uses: internal/config

ERROR HANDLING:
  - Nonzero exit returns *ProcessError with the exit code and stderr tail.
  - Start failures (missing binary) are wrapped and returned.

IMPLEMENTATION RULES:
  - Use os/exec with CommandContext.
  - Measure wall time from Start to Wait.
  - Stdout goes to the null device; stderr is buffered whole.

USAGE:
  c := engine.NewClient(cfg)
  out, err := c.Compress(ctx, input, "pp", "H")

SELF-HEALING INSTRUCTIONS:
  - If the compressor CLI changes, update CompressArgs / DecompressArgs.

RELATED FILES:
  - internal/engine/timing.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update when the external binaries change their command line.
*/

package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/daryltucker/codec-bench/internal/config"
)

// Output is what a finished child process left behind.
type Output struct {
	Stderr  string
	Elapsed time.Duration
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (Output, error)
}

// ProcessError reports a child process that exited unsuccessfully.
type ProcessError struct {
	Binary   string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Binary, e.ExitCode)
	if tail := tailLines(e.Stderr, 5); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// Client builds and runs compressor and decompressor command lines.
type Client struct {
	Config *config.Config
	exec   Executor
}

// NewClient creates a Client. A nil executor runs real processes.
func NewClient(cfg *config.Config, executor Executor) *Client {
	if executor == nil {
		executor = CommandExecutor{}
	}
	return &Client{Config: cfg, exec: executor}
}

// CompressArgs returns the compressor arguments for one combination.
func CompressArgs(preprocessor, encoderCode, input, output string) []string {
	return []string{"--prepr", preprocessor, "--enc", encoderCode, input, output}
}

// DecompressArgs returns the decompressor arguments.
func DecompressArgs(compressed string) []string {
	return []string{compressed}
}

// CommandLine renders a binary and its arguments for display.
func CommandLine(binary string, args []string) string {
	return strings.Join(append([]string{binary}, args...), " ")
}

// Compress runs the compressor, writing into the configured temp output.
func (c *Client) Compress(ctx context.Context, inputPath, preprocessor, encoderCode string) (Output, error) {
	args := CompressArgs(preprocessor, encoderCode, inputPath, c.Config.TempOutput)
	return c.run(ctx, c.Config.Compressor, args)
}

// Decompress runs the decompressor on the temp output.
func (c *Client) Decompress(ctx context.Context) (Output, error) {
	return c.run(ctx, c.Config.Decompressor, DecompressArgs(c.Config.TempOutput))
}

func (c *Client) run(ctx context.Context, binary string, args []string) (Output, error) {
	if timeout := time.Duration(c.Config.Timeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := c.exec.Run(ctx, binary, args)
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		return out, fmt.Errorf("%s: %w (%v)", binary, ctx.Err(), err)
	}
	return out, err
}

const waitDelay = 2 * time.Second

// CommandExecutor runs real child processes.
type CommandExecutor struct{}

// Run starts binary, discards stdout, collects stderr and times the process.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string) (Output, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stderr = &stderr
	// Grandchildren may keep stderr open after the child is killed.
	cmd.WaitDelay = waitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Output{}, fmt.Errorf("start %s: %w", binary, err)
	}
	waitErr := cmd.Wait()
	out := Output{
		Stderr:  strings.TrimRight(strings.ReplaceAll(stderr.String(), "\r\n", "\n"), "\n"),
		Elapsed: time.Since(start),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return out, &ProcessError{
				Binary:   binary,
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   out.Stderr,
			}
		}
		return out, fmt.Errorf("wait %s: %w", binary, waitErr)
	}
	return out, nil
}

func tailLines(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
