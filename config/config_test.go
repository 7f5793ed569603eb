package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	yaml := `
tables:
  - name: orders
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(cfg.Tables) != 1 {
		t.Fatalf("len(Tables) = %d, want 1", len(cfg.Tables))
	}
	tbl := cfg.Tables[0]
	if tbl.ID != "orders" {
		t.Errorf("ID = %q, want name as default", tbl.ID)
	}
	if tbl.Title != "orders" {
		t.Errorf("Title = %q, want name as default", tbl.Title)
	}
	if cfg.ID != "" || cfg.AlarmEmail != "" {
		t.Errorf("unexpected defaults: id=%q alarm_email=%q", cfg.ID, cfg.AlarmEmail)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
id: Shop
alarm_email: ops@example.com
dashboard_name: shop-ops
region: eu-west-1
account: "123456789012"

sections:
  - title: Shop
    links:
      - title: Runbook
        url: https://wiki.example.com/shop

tables:
  - name: orders
    id: orders-table
    title: Orders
    read_capacity: 10
    write_capacity: 5
    read_threshold_percent: 50
    write_threshold_percent: 90

functions:
  - name: checkout
    timeout: 10s
    errors_per_minute: 2
    throttles_per_minute: 1
    duration_threshold_percent: 60
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.ID != "Shop" {
		t.Errorf("ID = %q, want Shop", cfg.ID)
	}
	if cfg.AlarmEmail != "ops@example.com" {
		t.Errorf("AlarmEmail = %q", cfg.AlarmEmail)
	}
	if cfg.DashboardName != "shop-ops" {
		t.Errorf("DashboardName = %q", cfg.DashboardName)
	}

	env := cfg.Environment()
	if env.Region != "eu-west-1" || env.Account != "123456789012" {
		t.Errorf("Environment() = %+v", env)
	}

	if len(cfg.Sections) != 1 || len(cfg.Sections[0].Links) != 1 {
		t.Fatalf("Sections = %+v", cfg.Sections)
	}
	if cfg.Sections[0].Links[0].URL != "https://wiki.example.com/shop" {
		t.Errorf("link URL = %q", cfg.Sections[0].Links[0].URL)
	}

	tbl := cfg.Tables[0]
	if tbl.ID != "orders-table" || tbl.Title != "Orders" {
		t.Errorf("table id/title = %q/%q", tbl.ID, tbl.Title)
	}
	if tbl.ReadCapacity != 10 || tbl.WriteCapacity != 5 {
		t.Errorf("capacity = %d/%d, want 10/5", tbl.ReadCapacity, tbl.WriteCapacity)
	}
	if tbl.ReadThresholdPercent != 50 || tbl.WriteThresholdPercent != 90 {
		t.Errorf("thresholds = %v/%v", tbl.ReadThresholdPercent, tbl.WriteThresholdPercent)
	}

	fn := cfg.Functions[0]
	if fn.Timeout.Duration() != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", fn.Timeout.Duration())
	}
	if fn.ErrorsPerMinute != 2 || fn.ThrottlesPerMinute != 1 || fn.DurationThresholdPercent != 60 {
		t.Errorf("function thresholds = %+v", fn)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_ALARM_EMAIL", "oncall@example.com")
	t.Setenv("TEST_WIKI_HOST", "wiki.test.com")

	yaml := `
alarm_email: ${TEST_ALARM_EMAIL}
region: ${TEST_REGION_UNSET:-us-east-2}
sections:
  - title: Docs
    links:
      - title: Wiki
        url: https://${TEST_WIKI_HOST}/docs
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.AlarmEmail != "oncall@example.com" {
		t.Errorf("AlarmEmail = %q, want oncall@example.com", cfg.AlarmEmail)
	}
	if cfg.Region != "us-east-2" {
		t.Errorf("Region = %q, want us-east-2", cfg.Region)
	}
	if got := cfg.Sections[0].Links[0].URL; got != "https://wiki.test.com/docs" {
		t.Errorf("URL = %q, want https://wiki.test.com/docs", got)
	}
}

func TestParse_EnvVarEmptyDefaultMeansNoEmail(t *testing.T) {
	yaml := `
alarm_email: ${TEST_ALARM_EMAIL_UNSET:-}
tables:
  - name: orders
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.AlarmEmail != "" {
		t.Errorf("AlarmEmail = %q, want empty", cfg.AlarmEmail)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	// MISSING_ALARM_VAR is expected to not exist in the environment
	yaml := `
alarm_email: ${MISSING_ALARM_VAR}
tables:
  - name: orders
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "MISSING_ALARM_VAR") {
		t.Errorf("error should mention MISSING_ALARM_VAR: %v", err)
	}
	if !strings.Contains(err.Error(), "alarm_email") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestParse_DeferredPlaceholderKept(t *testing.T) {
	yaml := `
sections:
  - title: Console
    links:
      - title: Alarms
        url: https://console.aws.amazon.com/cloudwatch/home?region=${AWS::Region}#alarmsV2
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := cfg.Sections[0].Links[0].URL; !strings.Contains(got, "${AWS::Region}") {
		t.Errorf("URL = %q, want region placeholder kept", got)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErrLike string
	}{
		{
			name:        "nothing to watch",
			yaml:        `id: Empty`,
			wantErrLike: "at least one section, table or function",
		},
		{
			name: "invalid alarm email",
			yaml: `
alarm_email: not an email
tables:
  - name: orders
`,
			wantErrLike: "alarm_email: invalid email address",
		},
		{
			name: "alarm email with display name",
			yaml: `
alarm_email: Ops <ops@example.com>
tables:
  - name: orders
`,
			wantErrLike: "must be a bare address",
		},
		{
			name: "section missing title",
			yaml: `
sections:
  - links: []
`,
			wantErrLike: "sections[0]: title is required",
		},
		{
			name: "link missing url",
			yaml: `
sections:
  - title: Shop
    links:
      - title: Runbook
`,
			wantErrLike: "sections[0] (Shop): links[0]: url is required",
		},
		{
			name: "link bad scheme",
			yaml: `
sections:
  - title: Shop
    links:
      - title: Runbook
        url: ftp://example.com
`,
			wantErrLike: "url scheme must be http or https",
		},
		{
			name: "table missing name",
			yaml: `
tables:
  - read_capacity: 5
`,
			wantErrLike: "tables[0]: name is required",
		},
		{
			name: "table negative capacity",
			yaml: `
tables:
  - name: orders
    read_capacity: -1
`,
			wantErrLike: "tables[0] (orders): capacity cannot be negative",
		},
		{
			name: "table threshold too high",
			yaml: `
tables:
  - name: orders
    read_threshold_percent: 120
`,
			wantErrLike: "read_threshold_percent: must be between 0 and 100",
		},
		{
			name: "duplicate table id",
			yaml: `
tables:
  - name: orders
  - name: orders
`,
			wantErrLike: `tables[1] (orders): id "orders" is already used by tables[0] (orders)`,
		},
		{
			name: "function id collides with table",
			yaml: `
tables:
  - name: orders
functions:
  - name: checkout
    id: orders
`,
			wantErrLike: `functions[0] (checkout): id "orders" is already used`,
		},
		{
			name: "function missing name",
			yaml: `
functions:
  - timeout: 5s
`,
			wantErrLike: "functions[0]: name is required",
		},
		{
			name: "function timeout too short",
			yaml: `
functions:
  - name: checkout
    timeout: 500ms
`,
			wantErrLike: "timeout must be at least 1s",
		},
		{
			name: "function timeout too long",
			yaml: `
functions:
  - name: checkout
    timeout: 1h
`,
			wantErrLike: "timeout must not exceed 15m0s",
		},
		{
			name: "function negative errors",
			yaml: `
functions:
  - name: checkout
    errors_per_minute: -1
`,
			wantErrLike: "errors_per_minute cannot be negative",
		},
		{
			name: "function negative throttles",
			yaml: `
functions:
  - name: checkout
    throttles_per_minute: -3
`,
			wantErrLike: "throttles_per_minute cannot be negative",
		},
		{
			name: "function duration percent negative",
			yaml: `
functions:
  - name: checkout
    duration_threshold_percent: -5
`,
			wantErrLike: "duration_threshold_percent: must be between 0 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.wantErrLike)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("tables: [unclosed"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	yaml := `
functions:
  - name: checkout
    timeout: soon
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error should mention invalid duration: %v", err)
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	got, err := Duration(90 * time.Second).MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error = %v", err)
	}
	if got != "1m30s" {
		t.Errorf("MarshalYAML() = %v, want 1m30s", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchful.yaml")
	if err := os.WriteFile(path, []byte("tables:\n  - name: orders\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tables[0].Name != "orders" {
		t.Errorf("Tables[0].Name = %q", cfg.Tables[0].Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Load() error = %v, want read failure", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
		{"region placeholder", "${AWS::Region}", "${AWS::Region}", false},
		{"account placeholder", "arn:${AWS::AccountId}", "arn:${AWS::AccountId}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// UNSET and MISSING are expected to not exist in environment
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}
