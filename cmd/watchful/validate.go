package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/watchful/config"
)

// validateCmd validates a config file without printing a plan.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a watchful configuration file.

This command parses the YAML, expands environment variables, validates all
fields and composes the monitoring once to catch registration errors. It's
useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  watchful validate -c watchful.yaml
  watchful validate --config /etc/watchful/watchful.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// composition logs are noise here
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	wf, err := config.Build(cfg, quiet)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	email := cfg.AlarmEmail
	if email == "" {
		email = "(none)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Watchful:    %s\n", wf.ID())
	fmt.Fprintf(out, "  Alarm email: %s\n", email)
	fmt.Fprintf(out, "  Resources:   %d tables + %d functions = %d total\n",
		len(cfg.Tables), len(cfg.Functions), len(cfg.Tables)+len(cfg.Functions))
	fmt.Fprintf(out, "  Widgets:     %d\n", len(wf.Dashboard().Widgets()))
	fmt.Fprintf(out, "  Alarms:      %d\n", len(wf.Alarms()))

	return nil
}
