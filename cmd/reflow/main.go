package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reflow",
		Short: "Hook-slot scheduling engine for server-driven components",
		Long: `Reflow is an embeddable reactive runtime for UI-component hosts.

It gives a component's repeated, stateless-looking function body durable,
ordered storage across evaluations: per-slot state with queued updates,
reducer-derived values, dependency-diffed memos, and two-phase effects
flushed around a host paint barrier.

This CLI runs a demo websocket host and a render-cycle benchmark.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		benchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
