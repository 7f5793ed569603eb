package watchful

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
)

// dashboardNamePattern is what CloudWatch accepts as a dashboard name.
var dashboardNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

// idPattern leaves room for the suffixes of the derived dashboard and topic
// names.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// watchfulConfig holds mutable state during Watchful construction.
type watchfulConfig struct {
	alarmEmail    string
	dashboardName string
	logger        *slog.Logger
}

// Option is a function that configures a [Watchful] during construction.
//
// Options return a *[ConfigurationError] if validation fails.
//
// Built-in options: [WithAlarmEmail], [WithDashboardName], [WithLogger].
type Option func(*watchfulConfig) error

// WithAlarmEmail creates a notification topic subscribed to addr, and routes
// every alarm passed to [Watchful.AddAlarm] to it.
//
// An empty addr is the same as not passing the option: alarms are created but
// notify no one. The address itself is validated by [New].
//
// Example:
//
//	wf, err := watchful.New("Shop",
//	    watchful.WithAlarmEmail("ops@example.com"),
//	)
func WithAlarmEmail(addr string) Option {
	return func(cfg *watchfulConfig) error {
		cfg.alarmEmail = addr
		return nil
	}
}

// WithDashboardName requests a fixed dashboard name instead of one chosen by
// the provisioning system.
//
// Returns an error unless name is 1-255 characters of letters, digits,
// dashes and underscores.
func WithDashboardName(name string) Option {
	return func(cfg *watchfulConfig) error {
		if !dashboardNamePattern.MatchString(name) {
			return &ConfigurationError{
				Field: "dashboardName",
				Err:   fmt.Errorf("%q must be 1-255 letters, digits, '-' or '_'", name),
			}
		}
		cfg.dashboardName = name
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used. Composition steps are logged at debug level.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *watchfulConfig) error {
		if logger == nil {
			return &ConfigurationError{Field: "logger", Err: errors.New("logger cannot be nil")}
		}
		cfg.logger = logger
		return nil
	}
}
