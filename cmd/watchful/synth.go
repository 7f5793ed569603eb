package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/watchful/config"
	"github.com/jpalmerr/watchful/deploy"
)

// synthCmd prints the provisioning plan for a config file.
var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Print the provisioning plan",
	Long: `Compose the dashboard, alarms and topic described by a config file and
print the AWS requests that would provision them.

Region and account come from the config file unless overridden by flags.
Resources are named after their logical ids.

Example:
  watchful synth -c watchful.yaml
  watchful synth -c watchful.yaml --region eu-west-1 --account 123456789012 -o yaml`,
	RunE: runSynth,
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	synthCmd.Flags().String("region", "", "deployment region (overrides config)")
	synthCmd.Flags().String("account", "", "deployment account id (overrides config)")
	synthCmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
	_ = synthCmd.MarkFlagRequired("config")
}

func runSynth(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	format, _ := cmd.Flags().GetString("output")
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown output format %q (expected json or yaml)", format)
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	env := cfg.Environment()
	if region, _ := cmd.Flags().GetString("region"); region != "" {
		env.Region = region
	}
	if account, _ := cmd.Flags().GetString("account"); account != "" {
		env.Account = account
	}

	logger.Info("config loaded",
		"sections", len(cfg.Sections),
		"tables", len(cfg.Tables),
		"functions", len(cfg.Functions),
	)

	wf, err := config.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to compose monitoring: %w", err)
	}

	plan, err := deploy.Build(wf.Synth(), env)
	if err != nil {
		return fmt.Errorf("failed to build plan: %w", err)
	}

	logger.Info("plan built",
		"region", env.Region,
		"alarms", len(plan.Alarms),
		"subscriptions", len(plan.Subscriptions),
	)

	return writePlan(cmd.OutOrStdout(), plan, format)
}

// writePlan encodes plan as indented JSON or as YAML.
//
// YAML goes through the JSON form so that SDK field names and enum values
// match the JSON output.
func writePlan(w io.Writer, plan *deploy.Plan, format string) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	if format == "json" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}
