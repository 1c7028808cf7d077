// Command iprefetchsim drives the RDIP and mini D-JOLT L1 instruction
// prefetchers against a branch/access trace, either read from a
// JSON-lines file or generated from the built-in synthetic scenarios.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const appName = "iprefetchsim"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "drive RDIP and mini D-JOLT over a branch/access trace",
	Long:  fmt.Sprintf("%s replays a branch/access trace against the RDIP and mini D-JOLT L1I prefetchers and reports the resulting hit/miss and prefetch counters.", appName),
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
