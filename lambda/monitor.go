package lambda

import (
	"fmt"
	"time"

	"github.com/jpalmerr/watchful/api"
	"github.com/jpalmerr/watchful/cloudwatch"
)

const (
	namespace = "AWS/Lambda"

	metricPeriod      = time.Minute
	evaluationPeriods = 3

	defaultDurationThresholdPercent = 80

	alarmColor   = "#FF3333"
	timeoutColor = "#999999"
)

// monitorConfig holds mutable state during monitor construction.
type monitorConfig struct {
	errorsPerMinute    float64
	throttlesPerMinute float64
	durationPercent    float64
}

// Option configures a [FunctionMonitor].
type Option func(*monitorConfig) error

// WithErrorsPerMinuteThreshold sets the number of errors per minute above
// which the errors alarm fires. Defaults to 0.
func WithErrorsPerMinuteThreshold(n float64) Option {
	return func(cfg *monitorConfig) error {
		if n < 0 {
			return fmt.Errorf("errors threshold cannot be negative, got %v", n)
		}
		cfg.errorsPerMinute = n
		return nil
	}
}

// WithThrottlesPerMinuteThreshold sets the number of throttled invocations
// per minute above which the throttles alarm fires. Defaults to 0.
func WithThrottlesPerMinuteThreshold(n float64) Option {
	return func(cfg *monitorConfig) error {
		if n < 0 {
			return fmt.Errorf("throttles threshold cannot be negative, got %v", n)
		}
		cfg.throttlesPerMinute = n
		return nil
	}
}

// WithDurationThresholdPercent sets the share of the function timeout that
// p99 duration may reach before the duration alarm fires. Defaults to 80.
func WithDurationThresholdPercent(p float64) Option {
	return func(cfg *monitorConfig) error {
		if p <= 0 || p > 100 {
			return fmt.Errorf("duration threshold must be in (0, 100], got %v", p)
		}
		cfg.durationPercent = p
		return nil
	}
}

// FunctionMonitor is the handle for a function registered for monitoring.
type FunctionMonitor struct {
	fn *Function

	invocationsMetric cloudwatch.Metric
	errorsMetric      cloudwatch.Metric
	throttlesMetric   cloudwatch.Metric
	durationMetric    cloudwatch.Metric

	errorsAlarm    *cloudwatch.Alarm
	throttlesAlarm *cloudwatch.Alarm
	durationAlarm  *cloudwatch.Alarm

	widgets []cloudwatch.Widget
}

// NewFunctionMonitor builds the section, graphs and alarms for fn and
// registers them with w. An invalid option leaves w unchanged.
func NewFunctionMonitor(w api.Watchful, title string, fn *Function, opts ...Option) (*FunctionMonitor, error) {
	if fn == nil {
		return nil, fmt.Errorf("watch function %q: function is nil", title)
	}

	cfg := &monitorConfig{durationPercent: defaultDurationThresholdPercent}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("watch function %s: %w", fn.name, err)
		}
	}

	m := &FunctionMonitor{fn: fn}
	if err := m.build(cfg); err != nil {
		return nil, fmt.Errorf("watch function %s: %w", fn.name, err)
	}

	w.AddSection(title, api.SectionOptions{
		Links: []api.Link{
			{Title: "AWS Lambda Console", URL: fn.ConsoleLink()},
			{Title: "CloudWatch Logs", URL: fn.LogsLink()},
		},
	})
	w.AddAlarm(m.errorsAlarm)
	w.AddAlarm(m.throttlesAlarm)
	w.AddAlarm(m.durationAlarm)
	w.AddWidgets(m.widgets...)

	return m, nil
}

func (m *FunctionMonitor) metric(name, stat, label string) (cloudwatch.Metric, error) {
	return cloudwatch.NewMetric(namespace, name,
		cloudwatch.WithDimension("FunctionName", m.fn.name),
		cloudwatch.WithStatistic(stat),
		cloudwatch.WithPeriod(metricPeriod),
		cloudwatch.WithLabel(label),
	)
}

func (m *FunctionMonitor) build(cfg *monitorConfig) error {
	var err error

	if m.invocationsMetric, err = m.metric("Invocations", "Sum", "Invocations"); err != nil {
		return err
	}
	if m.errorsMetric, err = m.metric("Errors", "Sum", "Errors"); err != nil {
		return err
	}
	if m.throttlesMetric, err = m.metric("Throttles", "Sum", "Throttles"); err != nil {
		return err
	}
	if m.durationMetric, err = m.metric("Duration", "p99", "p99"); err != nil {
		return err
	}

	m.errorsAlarm, err = m.errorsMetric.CreateAlarm(m.fn.id+"/ErrorsAlarm", cloudwatch.AlarmProps{
		Threshold:          cfg.errorsPerMinute,
		EvaluationPeriods:  evaluationPeriods,
		ComparisonOperator: cloudwatch.GreaterThanThreshold,
		AlarmDescription:   fmt.Sprintf("Over %v errors per minute", cfg.errorsPerMinute),
	})
	if err != nil {
		return err
	}

	m.throttlesAlarm, err = m.throttlesMetric.CreateAlarm(m.fn.id+"/ThrottlesAlarm", cloudwatch.AlarmProps{
		Threshold:          cfg.throttlesPerMinute,
		EvaluationPeriods:  evaluationPeriods,
		ComparisonOperator: cloudwatch.GreaterThanThreshold,
		AlarmDescription:   fmt.Sprintf("Over %v throttles per minute", cfg.throttlesPerMinute),
	})
	if err != nil {
		return err
	}

	timeoutMs := float64(m.fn.timeout.Milliseconds())
	durationThresholdMs := DurationThreshold(m.fn.timeout, cfg.durationPercent)
	m.durationAlarm, err = m.durationMetric.CreateAlarm(m.fn.id+"/DurationAlarm", cloudwatch.AlarmProps{
		Threshold:          durationThresholdMs,
		EvaluationPeriods:  evaluationPeriods,
		ComparisonOperator: cloudwatch.GreaterThanThreshold,
		AlarmDescription: fmt.Sprintf("p99 latency >= %vs (%v%% of timeout)",
			durationThresholdMs/1000, cfg.durationPercent),
	})
	if err != nil {
		return err
	}

	m.widgets = []cloudwatch.Widget{
		cloudwatch.NewGraphWidget(cloudwatch.GraphWidgetProps{
			Title: "Invocations/min",
			Left:  []cloudwatch.Metric{m.invocationsMetric},
		}),
		cloudwatch.NewGraphWidget(cloudwatch.GraphWidgetProps{
			Title: "Errors/min",
			Left:  []cloudwatch.Metric{m.errorsMetric},
			LeftAnnotations: []cloudwatch.HorizontalAnnotation{
				{Label: fmt.Sprintf("> %v errors", cfg.errorsPerMinute), Value: cfg.errorsPerMinute, Color: alarmColor},
			},
		}),
		cloudwatch.NewGraphWidget(cloudwatch.GraphWidgetProps{
			Title: "Throttles/min",
			Left:  []cloudwatch.Metric{m.throttlesMetric},
			LeftAnnotations: []cloudwatch.HorizontalAnnotation{
				{Label: fmt.Sprintf("> %v throttles", cfg.throttlesPerMinute), Value: cfg.throttlesPerMinute, Color: alarmColor},
			},
		}),
		cloudwatch.NewGraphWidget(cloudwatch.GraphWidgetProps{
			Title: "Duration/min",
			Left:  []cloudwatch.Metric{m.durationMetric},
			LeftAnnotations: []cloudwatch.HorizontalAnnotation{
				{Label: "Timeout", Value: timeoutMs, Color: timeoutColor},
				{Label: fmt.Sprintf("Alarm on %v%%", cfg.durationPercent), Value: durationThresholdMs, Color: alarmColor},
			},
		}),
	}
	return nil
}

// DurationThreshold returns the p99 duration in milliseconds at which a
// function with the given timeout reaches percent of it.
func DurationThreshold(timeout time.Duration, percent float64) float64 {
	return float64(timeout.Milliseconds()) * percent / 100
}

// Function returns the monitored function.
func (m *FunctionMonitor) Function() *Function { return m.fn }

// ErrorsAlarm returns the errors alarm.
func (m *FunctionMonitor) ErrorsAlarm() *cloudwatch.Alarm { return m.errorsAlarm }

// ThrottlesAlarm returns the throttles alarm.
func (m *FunctionMonitor) ThrottlesAlarm() *cloudwatch.Alarm { return m.throttlesAlarm }

// DurationAlarm returns the p99 duration alarm.
func (m *FunctionMonitor) DurationAlarm() *cloudwatch.Alarm { return m.durationAlarm }

// InvocationsMetric returns the invocations metric.
func (m *FunctionMonitor) InvocationsMetric() cloudwatch.Metric { return m.invocationsMetric }

// Widgets returns the graphs added to the dashboard, excluding the section.
func (m *FunctionMonitor) Widgets() []cloudwatch.Widget {
	return append([]cloudwatch.Widget(nil), m.widgets...)
}
