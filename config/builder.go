package config

import (
	"log/slog"

	"github.com/jpalmerr/watchful"
	"github.com/jpalmerr/watchful/dynamodb"
	"github.com/jpalmerr/watchful/lambda"
)

// Build composes a [watchful.Watchful] from parsed configuration.
//
// Sections are added first, in file order, followed by tables and then
// functions. A nil logger falls back to slog.Default.
func Build(cfg *Config, logger *slog.Logger) (*watchful.Watchful, error) {
	opts := []watchful.Option{watchful.WithAlarmEmail(cfg.AlarmEmail)}
	if cfg.DashboardName != "" {
		opts = append(opts, watchful.WithDashboardName(cfg.DashboardName))
	}
	if logger != nil {
		opts = append(opts, watchful.WithLogger(logger))
	}

	wf, err := watchful.New(cfg.ID, opts...)
	if err != nil {
		return nil, err
	}

	for _, sc := range cfg.Sections {
		wf.AddSection(sc.Title, buildSectionOptions(sc))
	}

	for _, tc := range cfg.Tables {
		table, err := dynamodb.NewTable(dynamodb.TableProps{
			Name:          tc.Name,
			ID:            tc.ID,
			ReadCapacity:  tc.ReadCapacity,
			WriteCapacity: tc.WriteCapacity,
		})
		if err != nil {
			return nil, err
		}
		if _, err := wf.WatchTable(tc.Title, table, buildTableOptions(tc)...); err != nil {
			return nil, err
		}
	}

	for _, fc := range cfg.Functions {
		fn, err := lambda.NewFunction(lambda.FunctionProps{
			Name:    fc.Name,
			ID:      fc.ID,
			Timeout: fc.Timeout.Duration(),
		})
		if err != nil {
			return nil, err
		}
		if _, err := wf.WatchFunction(fc.Title, fn, buildFunctionOptions(fc)...); err != nil {
			return nil, err
		}
	}

	return wf, nil
}

func buildSectionOptions(sc SectionConfig) watchful.SectionOptions {
	links := make([]watchful.Link, 0, len(sc.Links))
	for _, l := range sc.Links {
		links = append(links, watchful.Link{Title: l.Title, URL: l.URL})
	}
	return watchful.SectionOptions{Links: links}
}

// buildTableOptions converts non-zero thresholds into monitor options.
// Zero values are left out so the monitor applies its own defaults.
func buildTableOptions(tc TableConfig) []dynamodb.Option {
	var opts []dynamodb.Option
	if tc.ReadThresholdPercent != 0 {
		opts = append(opts, dynamodb.WithReadCapacityThresholdPercent(tc.ReadThresholdPercent))
	}
	if tc.WriteThresholdPercent != 0 {
		opts = append(opts, dynamodb.WithWriteCapacityThresholdPercent(tc.WriteThresholdPercent))
	}
	return opts
}

func buildFunctionOptions(fc FunctionConfig) []lambda.Option {
	opts := []lambda.Option{
		lambda.WithErrorsPerMinuteThreshold(fc.ErrorsPerMinute),
		lambda.WithThrottlesPerMinuteThreshold(fc.ThrottlesPerMinute),
	}
	if fc.DurationThresholdPercent != 0 {
		opts = append(opts, lambda.WithDurationThresholdPercent(fc.DurationThresholdPercent))
	}
	return opts
}
