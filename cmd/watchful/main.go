// Package main is the entry point for the watchful CLI.
//
// watchful can be used either as a library or from the command line with a
// YAML configuration. This CLI provides the command line approach.
//
// Usage:
//
//	watchful synth -c watchful.yaml    # Print the provisioning plan
//	watchful validate -c watchful.yaml # Validate configuration
//	watchful version                   # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "watchful",
	Short: "Compose CloudWatch dashboards and alarms for your resources",
	Long: `watchful composes a CloudWatch dashboard, the alarms that watch your
resources and an optional email topic every alarm notifies.

It never calls AWS: synth prints the requests a provisioning system would
send, with every region, account and resource name resolved.

Quick start:
  1. Create a config file (watchful.yaml)
  2. Run: watchful validate -c watchful.yaml
  3. Run: watchful synth -c watchful.yaml --region us-east-1 --account 123456789012

Example config:
  id: Shop
  alarm_email: ops@example.com
  tables:
    - name: orders
      read_capacity: 10
  functions:
    - name: checkout
      timeout: 10s`,
	SilenceUsage: true,
	// No Run/RunE means this just shows help when called without subcommands
}

// newLogger creates a JSON logger on stderr for CLI use.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this watchful binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "watchful %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log composition steps at debug level")
}
