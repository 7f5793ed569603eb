// Package config provides YAML configuration parsing for the watchful CLI.
//
// It lets a monitoring setup be described in a file instead of composed in Go
// code. [Build] turns a parsed [Config] into a composed *watchful.Watchful.
//
// Example configuration:
//
//	id: Shop
//	alarm_email: ${ALARM_EMAIL:-}
//	region: us-east-1
//	account: "123456789012"
//
//	sections:
//	  - title: Shop
//	    links:
//	      - title: Runbook
//	        url: https://wiki.example.com/shop
//
//	tables:
//	  - name: orders
//	    read_capacity: 10
//	    write_capacity: 5
//
//	functions:
//	  - name: checkout
//	    timeout: 10s
//	    duration_threshold_percent: 50
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/watchful/notify"
	"github.com/jpalmerr/watchful/token"
)

const (
	minFunctionTimeout = time.Second
	maxFunctionTimeout = 15 * time.Minute
)

// Config is the root configuration structure for the watchful CLI.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// ID identifies the Watchful within the monitoring graph.
	// Defaults to "Watchful" if not set.
	ID string `yaml:"id"`

	// AlarmEmail receives every alarm notification. Optional.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	AlarmEmail string `yaml:"alarm_email"`

	// DashboardName fixes the dashboard name. Optional.
	DashboardName string `yaml:"dashboard_name"`

	// Region and Account are the deployment environment used to resolve
	// deferred values. Both can be overridden on the command line.
	Region  string `yaml:"region"`
	Account string `yaml:"account"`

	// Sections are free-standing headings, added before any resource.
	Sections []SectionConfig `yaml:"sections"`

	// Tables are DynamoDB tables to monitor.
	Tables []TableConfig `yaml:"tables"`

	// Functions are Lambda functions to monitor.
	Functions []FunctionConfig `yaml:"functions"`
}

// SectionConfig defines a dashboard section heading.
type SectionConfig struct {
	Title string       `yaml:"title"`
	Links []LinkConfig `yaml:"links"`
}

// LinkConfig defines a button under a section heading.
type LinkConfig struct {
	Title string `yaml:"title"`

	// URL must be http or https. Supports environment variable substitution.
	URL string `yaml:"url"`
}

// TableConfig defines a DynamoDB table to monitor.
type TableConfig struct {
	// Name is the table name.
	Name string `yaml:"name"`

	// ID is the table's stable id. Defaults to Name.
	ID string `yaml:"id"`

	// Title is the dashboard section title. Defaults to Name.
	Title string `yaml:"title"`

	// ReadCapacity and WriteCapacity are provisioned units per second.
	// Zero means on-demand.
	ReadCapacity  int `yaml:"read_capacity"`
	WriteCapacity int `yaml:"write_capacity"`

	// ReadThresholdPercent and WriteThresholdPercent set the alarm
	// thresholds. Zero keeps the monitor default.
	ReadThresholdPercent  float64 `yaml:"read_threshold_percent"`
	WriteThresholdPercent float64 `yaml:"write_threshold_percent"`
}

// FunctionConfig defines a Lambda function to monitor.
type FunctionConfig struct {
	// Name is the function name.
	Name string `yaml:"name"`

	// ID is the function's stable id. Defaults to Name.
	ID string `yaml:"id"`

	// Title is the dashboard section title. Defaults to Name.
	Title string `yaml:"title"`

	// Timeout is the function timeout. Defaults to 3s.
	// Must be between 1s and 15m.
	Timeout Duration `yaml:"timeout"`

	// ErrorsPerMinute and ThrottlesPerMinute are the alarm thresholds.
	ErrorsPerMinute    float64 `yaml:"errors_per_minute"`
	ThrottlesPerMinute float64 `yaml:"throttles_per_minute"`

	// DurationThresholdPercent is the share of Timeout p99 duration may
	// reach. Zero keeps the monitor default.
	DurationThresholdPercent float64 `yaml:"duration_threshold_percent"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
//
// Deferred placeholders such as ${AWS::Region} do not match and are kept.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in alarm_email, dashboard_name, region,
// account and link URLs. Table and function ids and titles default to their
// names.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Environment returns the deploy environment described by the file.
// PhysicalIDs is left empty so that logical ids are used as names.
func (c *Config) Environment() token.Environment {
	return token.Environment{Region: c.Region, Account: c.Account}
}

// expandAndValidate expands environment variables, applies defaults and
// validates the config.
func (c *Config) expandAndValidate() error {
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"alarm_email", &c.AlarmEmail},
		{"dashboard_name", &c.DashboardName},
		{"region", &c.Region},
		{"account", &c.Account},
	} {
		expanded, err := expandEnvVars(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}

	if c.AlarmEmail != "" {
		if err := notify.ValidateEmail(c.AlarmEmail); err != nil {
			return fmt.Errorf("alarm_email: %w", err)
		}
	}

	for i := range c.Sections {
		s := &c.Sections[i]
		if s.Title == "" {
			return fmt.Errorf("sections[%d]: title is required", i)
		}
		for j := range s.Links {
			if err := s.Links[j].expandAndValidate(); err != nil {
				return fmt.Errorf("sections[%d] (%s): links[%d]: %w", i, s.Title, j, err)
			}
		}
	}

	seen := make(map[string]string)
	claim := func(id, context string) error {
		if prev, exists := seen[id]; exists {
			return fmt.Errorf("%s: id %q is already used by %s", context, id, prev)
		}
		seen[id] = context
		return nil
	}

	for i := range c.Tables {
		t := &c.Tables[i]

		if t.Name == "" {
			return fmt.Errorf("tables[%d]: name is required", i)
		}
		context := fmt.Sprintf("tables[%d] (%s)", i, t.Name)
		if t.ID == "" {
			t.ID = t.Name
		}
		if t.Title == "" {
			t.Title = t.Name
		}
		if err := claim(t.ID, context); err != nil {
			return err
		}

		if t.ReadCapacity < 0 || t.WriteCapacity < 0 {
			return fmt.Errorf("%s: capacity cannot be negative", context)
		}
		if err := validatePercent(t.ReadThresholdPercent); err != nil {
			return fmt.Errorf("%s: read_threshold_percent: %w", context, err)
		}
		if err := validatePercent(t.WriteThresholdPercent); err != nil {
			return fmt.Errorf("%s: write_threshold_percent: %w", context, err)
		}
	}

	for i := range c.Functions {
		f := &c.Functions[i]

		if f.Name == "" {
			return fmt.Errorf("functions[%d]: name is required", i)
		}
		context := fmt.Sprintf("functions[%d] (%s)", i, f.Name)
		if f.ID == "" {
			f.ID = f.Name
		}
		if f.Title == "" {
			f.Title = f.Name
		}
		if err := claim(f.ID, context); err != nil {
			return err
		}

		if f.Timeout != 0 {
			if f.Timeout.Duration() < minFunctionTimeout {
				return fmt.Errorf("%s: timeout must be at least %s, got %s",
					context, minFunctionTimeout, f.Timeout.Duration())
			}
			if f.Timeout.Duration() > maxFunctionTimeout {
				return fmt.Errorf("%s: timeout must not exceed %s, got %s",
					context, maxFunctionTimeout, f.Timeout.Duration())
			}
		}
		if f.ErrorsPerMinute < 0 {
			return fmt.Errorf("%s: errors_per_minute cannot be negative", context)
		}
		if f.ThrottlesPerMinute < 0 {
			return fmt.Errorf("%s: throttles_per_minute cannot be negative", context)
		}
		if err := validatePercent(f.DurationThresholdPercent); err != nil {
			return fmt.Errorf("%s: duration_threshold_percent: %w", context, err)
		}
	}

	if len(c.Sections) == 0 && len(c.Tables) == 0 && len(c.Functions) == 0 {
		return errors.New("at least one section, table or function must be defined")
	}

	return nil
}

func (l *LinkConfig) expandAndValidate() error {
	if l.Title == "" {
		return errors.New("title is required")
	}
	if l.URL == "" {
		return errors.New("url is required")
	}

	expanded, err := expandEnvVars(l.URL)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	l.URL = expanded

	parsedURL, err := url.Parse(l.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	return nil
}

// validatePercent accepts zero (monitor default) or a value in (0, 100].
func validatePercent(p float64) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("must be between 0 and 100, got %v", p)
	}
	return nil
}
