package cloudwatch

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	defaultStatistic = string(types.StatisticAverage)
	defaultPeriod    = 5 * time.Minute
)

// percentilePattern matches extended statistics such as p99 or p99.9.
var percentilePattern = regexp.MustCompile(`^p(\d{1,2}(\.\d+)?|100)$`)

// Dimension is a name/value pair that narrows a metric to one resource.
type Dimension struct {
	Name  string
	Value string
}

// metricConfig holds mutable state during metric construction.
type metricConfig struct {
	dimensions []Dimension
	statistic  string
	period     time.Duration
	label      string
	color      string
}

// MetricOption configures a [Metric] during construction.
type MetricOption func(*metricConfig) error

// Metric identifies a CloudWatch metric together with how it is aggregated.
//
// Metric is immutable. Use [Metric.With] to derive a variant.
type Metric struct {
	namespace  string
	name       string
	dimensions []Dimension
	statistic  string
	period     time.Duration
	label      string
	color      string
}

// NewMetric creates a [Metric] in the given namespace.
//
// The statistic defaults to Average and the period to five minutes.
//
// Example:
//
//	m, err := cloudwatch.NewMetric("AWS/Lambda", "Errors",
//	    cloudwatch.WithDimension("FunctionName", "checkout"),
//	    cloudwatch.WithStatistic("Sum"),
//	)
func NewMetric(namespace, name string, opts ...MetricOption) (Metric, error) {
	if namespace == "" {
		return Metric{}, errors.New("metric namespace cannot be empty")
	}
	if name == "" {
		return Metric{}, errors.New("metric name cannot be empty")
	}

	cfg := &metricConfig{
		statistic: defaultStatistic,
		period:    defaultPeriod,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Metric{}, fmt.Errorf("metric %s/%s: %w", namespace, name, err)
		}
	}

	return Metric{
		namespace:  namespace,
		name:       name,
		dimensions: cfg.dimensions,
		statistic:  cfg.statistic,
		period:     cfg.period,
		label:      cfg.label,
		color:      cfg.color,
	}, nil
}

// WithDimension adds a dimension. Dimensions keep the order they are added in.
func WithDimension(name, value string) MetricOption {
	return func(cfg *metricConfig) error {
		if name == "" {
			return errors.New("dimension name cannot be empty")
		}
		cfg.dimensions = append(cfg.dimensions, Dimension{Name: name, Value: value})
		return nil
	}
}

// WithStatistic sets the aggregation. Accepts SampleCount, Average, Sum,
// Minimum, Maximum, or a percentile such as "p99".
func WithStatistic(stat string) MetricOption {
	return func(cfg *metricConfig) error {
		if !validStatistic(stat) {
			return fmt.Errorf("invalid statistic %q", stat)
		}
		cfg.statistic = stat
		return nil
	}
}

// WithPeriod sets the aggregation period.
//
// CloudWatch accepts 1, 5, 10 and 30 seconds for high-resolution metrics,
// otherwise any positive multiple of one minute.
func WithPeriod(d time.Duration) MetricOption {
	return func(cfg *metricConfig) error {
		if !validPeriod(d) {
			return fmt.Errorf("invalid period %s: must be 1s, 5s, 10s, 30s or a multiple of 60s", d)
		}
		cfg.period = d
		return nil
	}
}

// WithLabel sets the legend label shown on graphs.
func WithLabel(label string) MetricOption {
	return func(cfg *metricConfig) error {
		cfg.label = label
		return nil
	}
}

// WithColor sets the line color as a hex string, e.g. "#1f77b4".
func WithColor(color string) MetricOption {
	return func(cfg *metricConfig) error {
		cfg.color = color
		return nil
	}
}

func validStatistic(stat string) bool {
	for _, s := range types.Statistic("").Values() {
		if string(s) == stat {
			return true
		}
	}
	return percentilePattern.MatchString(stat)
}

func validPeriod(d time.Duration) bool {
	switch d {
	case time.Second, 5 * time.Second, 10 * time.Second, 30 * time.Second:
		return true
	}
	return d > 0 && d%time.Minute == 0
}

// Namespace returns the metric namespace, e.g. "AWS/DynamoDB".
func (m Metric) Namespace() string {
	return m.namespace
}

// Name returns the metric name.
func (m Metric) Name() string {
	return m.name
}

// Dimensions returns a copy of the metric's dimensions.
func (m Metric) Dimensions() []Dimension {
	if m.dimensions == nil {
		return nil
	}
	return append([]Dimension(nil), m.dimensions...)
}

// Statistic returns the aggregation statistic.
func (m Metric) Statistic() string {
	return m.statistic
}

// IsPercentile reports whether the statistic is an extended (percentile) one.
func (m Metric) IsPercentile() bool {
	return percentilePattern.MatchString(m.statistic)
}

// Period returns the aggregation period.
func (m Metric) Period() time.Duration {
	return m.period
}

// Label returns the legend label, or "" if none was set.
func (m Metric) Label() string {
	return m.label
}

// Color returns the line color, or "" if none was set.
func (m Metric) Color() string {
	return m.color
}

// IsZero reports whether m is the zero Metric.
func (m Metric) IsZero() bool {
	return m.namespace == "" && m.name == ""
}

// With returns a copy of m with the options applied on top.
func (m Metric) With(opts ...MetricOption) (Metric, error) {
	cfg := &metricConfig{
		dimensions: m.Dimensions(),
		statistic:  m.statistic,
		period:     m.period,
		label:      m.label,
		color:      m.color,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Metric{}, fmt.Errorf("metric %s/%s: %w", m.namespace, m.name, err)
		}
	}

	return Metric{
		namespace:  m.namespace,
		name:       m.name,
		dimensions: cfg.dimensions,
		statistic:  cfg.statistic,
		period:     cfg.period,
		label:      cfg.label,
		color:      cfg.color,
	}, nil
}

// CreateAlarm creates an [Alarm] watching m. Any Metric set in props is
// replaced by m.
func (m Metric) CreateAlarm(logicalID string, props AlarmProps) (*Alarm, error) {
	props.Metric = m
	return NewAlarm(logicalID, props)
}

// graphEntry renders m in the dashboard "metrics" array format:
// [namespace, name, dimName, dimValue, ..., {rendering options}].
func (m Metric) graphEntry(yAxis string) []any {
	entry := []any{m.namespace, m.name}
	for _, d := range m.dimensions {
		entry = append(entry, d.Name, d.Value)
	}

	opts := map[string]any{
		"stat":   m.statistic,
		"period": int(m.period / time.Second),
	}
	if m.label != "" {
		opts["label"] = m.label
	}
	if m.color != "" {
		opts["color"] = m.color
	}
	if yAxis != "" {
		opts["yAxis"] = yAxis
	}
	return append(entry, opts)
}
