package dynamodb

import (
	"fmt"
	"time"

	"github.com/jpalmerr/watchful/api"
	"github.com/jpalmerr/watchful/cloudwatch"
)

const (
	namespace = "AWS/DynamoDB"

	defaultCapacityThresholdPercent = 80

	capacityPeriod = time.Minute

	provisionedColor = "#58D68D"
	alarmColor       = "#FF3333"
)

// monitorConfig holds mutable state during monitor construction.
type monitorConfig struct {
	readPercent  float64
	writePercent float64
}

// Option configures a [TableMonitor].
type Option func(*monitorConfig) error

// WithReadCapacityThresholdPercent sets the share of provisioned read
// capacity that triggers the read alarm. Defaults to 80.
func WithReadCapacityThresholdPercent(p float64) Option {
	return func(cfg *monitorConfig) error {
		if p <= 0 || p > 100 {
			return fmt.Errorf("read capacity threshold must be in (0, 100], got %v", p)
		}
		cfg.readPercent = p
		return nil
	}
}

// WithWriteCapacityThresholdPercent sets the share of provisioned write
// capacity that triggers the write alarm. Defaults to 80.
func WithWriteCapacityThresholdPercent(p float64) Option {
	return func(cfg *monitorConfig) error {
		if p <= 0 || p > 100 {
			return fmt.Errorf("write capacity threshold must be in (0, 100], got %v", p)
		}
		cfg.writePercent = p
		return nil
	}
}

// TableMonitor is the handle for a table registered for monitoring.
type TableMonitor struct {
	table       *Table
	readMetric  cloudwatch.Metric
	writeMetric cloudwatch.Metric
	readAlarm   *cloudwatch.Alarm
	writeAlarm  *cloudwatch.Alarm
	widgets     []cloudwatch.Widget
}

// NewTableMonitor builds the section, capacity graphs and capacity alarms for
// table and registers them with w.
//
// Everything is built before w is touched, so an invalid option leaves w
// unchanged. Tables on on-demand billing get graphs without alarms.
func NewTableMonitor(w api.Watchful, title string, table *Table, opts ...Option) (*TableMonitor, error) {
	if table == nil {
		return nil, fmt.Errorf("watch table %q: table is nil", title)
	}

	cfg := &monitorConfig{
		readPercent:  defaultCapacityThresholdPercent,
		writePercent: defaultCapacityThresholdPercent,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("watch table %s: %w", table.name, err)
		}
	}

	m := &TableMonitor{table: table}

	read, err := buildCapacity(table, "read", table.readCapacity, cfg.readPercent)
	if err != nil {
		return nil, err
	}
	write, err := buildCapacity(table, "write", table.writeCapacity, cfg.writePercent)
	if err != nil {
		return nil, err
	}

	m.readMetric, m.readAlarm = read.metric, read.alarm
	m.writeMetric, m.writeAlarm = write.metric, write.alarm
	m.widgets = []cloudwatch.Widget{read.widget, write.widget}

	w.AddSection(title, api.SectionOptions{
		Links: []api.Link{{Title: "Amazon DynamoDB Console", URL: table.ConsoleLink()}},
	})
	for _, a := range []*cloudwatch.Alarm{m.readAlarm, m.writeAlarm} {
		if a != nil {
			w.AddAlarm(a)
		}
	}
	w.AddWidgets(m.widgets...)

	return m, nil
}

type capacity struct {
	metric cloudwatch.Metric
	alarm  *cloudwatch.Alarm
	widget cloudwatch.GraphWidget
}

// buildCapacity creates the metric, alarm and graph for one capacity kind.
// kind is "read" or "write".
func buildCapacity(table *Table, kind string, provisioned int, percent float64) (capacity, error) {
	label := "Read"
	if kind == "write" {
		label = "Write"
	}

	metric, err := cloudwatch.NewMetric(namespace, "Consumed"+label+"CapacityUnits",
		cloudwatch.WithDimension("TableName", table.name),
		cloudwatch.WithStatistic("Sum"),
		cloudwatch.WithPeriod(capacityPeriod),
		cloudwatch.WithLabel("Consumed"),
	)
	if err != nil {
		return capacity{}, err
	}

	var c capacity
	c.metric = metric

	var annotations []cloudwatch.HorizontalAnnotation
	if provisioned > 0 {
		threshold := CapacityThreshold(provisioned, percent, capacityPeriod)
		c.alarm, err = metric.CreateAlarm(fmt.Sprintf("%s/CapacityAlarm:%s", table.id, kind), cloudwatch.AlarmProps{
			Threshold:          threshold,
			EvaluationPeriods:  1,
			ComparisonOperator: cloudwatch.GreaterThanOrEqualToThreshold,
			AlarmDescription:   fmt.Sprintf("at %v%% of %s capacity", percent, kind),
		})
		if err != nil {
			return capacity{}, err
		}

		annotations = []cloudwatch.HorizontalAnnotation{
			{Label: "Provisioned", Value: float64(provisioned) * capacityPeriod.Seconds(), Color: provisionedColor},
			{Label: fmt.Sprintf("Alarm on %v%%", percent), Value: threshold, Color: alarmColor},
		}
	}

	c.widget = cloudwatch.NewGraphWidget(cloudwatch.GraphWidgetProps{
		Title:           fmt.Sprintf("%s Capacity Units/%dmin", label, int(capacityPeriod.Minutes())),
		Width:           12,
		Stacked:         true,
		Left:            []cloudwatch.Metric{metric},
		LeftAnnotations: annotations,
	})
	return c, nil
}

// CapacityThreshold returns the consumed units per period at which a table
// with the given provisioned units per second reaches percent of capacity.
func CapacityThreshold(provisioned int, percent float64, period time.Duration) float64 {
	return float64(provisioned) * (percent / 100) * period.Seconds()
}

// Table returns the monitored table.
func (m *TableMonitor) Table() *Table { return m.table }

// ReadCapacityMetric returns the consumed read capacity metric.
func (m *TableMonitor) ReadCapacityMetric() cloudwatch.Metric { return m.readMetric }

// WriteCapacityMetric returns the consumed write capacity metric.
func (m *TableMonitor) WriteCapacityMetric() cloudwatch.Metric { return m.writeMetric }

// ReadCapacityAlarm returns the read alarm, or nil for on-demand reads.
func (m *TableMonitor) ReadCapacityAlarm() *cloudwatch.Alarm { return m.readAlarm }

// WriteCapacityAlarm returns the write alarm, or nil for on-demand writes.
func (m *TableMonitor) WriteCapacityAlarm() *cloudwatch.Alarm { return m.writeAlarm }

// Widgets returns the graphs added to the dashboard, excluding the section.
func (m *TableMonitor) Widgets() []cloudwatch.Widget {
	return append([]cloudwatch.Widget(nil), m.widgets...)
}
