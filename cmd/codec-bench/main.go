/*
PURPOSE:
  Entry point for the Codec Bench application.
  Initializes the CLI root command and executes it.

REQUIREMENTS:
  User-specified:
  - Must serve as the single binary entry point.
  - Must report top-level errors and exit non-zero.

  Implementation-discovered:
  - Signal handling lives in cli.Execute so a running compressor is killed on Ctrl-C.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()

ERROR HANDLING:
  - Exit code 1 on any error returned by Execute().

IMPLEMENTATION RULES:
  - Keep main() minimal. All logic belongs in internal/ packages.

USAGE:
  go build -o codec-bench ./cmd/codec-bench
  ./codec-bench run

RELATED FILES:
  - internal/cli/root.go
*/

package main

import (
	"fmt"
	"os"

	"github.com/daryltucker/codec-bench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
