package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"codeact/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "codeact",
	Short: "Code action aggregation engine",
	Long:  `codeact collects quick fixes and refactorings from registered providers and serves them on the command line or over LSP`,
}

// main registers subcommands and persistent flags, then executes the root
// command. Any command error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to codeact.toml or codeact.yaml (default: search upwards)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().StringSlice("disallow", nil, "provider ids to disable, added to the config file list")
	rootCmd.PersistentFlags().Bool("parallel", false, "invoke providers concurrently")
	rootCmd.PersistentFlags().Int("jobs", 0, "maximum concurrent provider invocations (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum lint diagnostics per file (0 = config value)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for ring mode")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime execution trace to this file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of f, or 0 when it is not a terminal.
func terminalWidth(f *os.File) int {
	if !isTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
