package lambda

import (
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/watchful/api"
	"github.com/jpalmerr/watchful/cloudwatch"
)

type recorder struct {
	sections []string
	links    [][]api.Link
	alarms   []*cloudwatch.Alarm
	widgets  [][]cloudwatch.Widget
}

func (r *recorder) AddWidgets(ws ...cloudwatch.Widget) { r.widgets = append(r.widgets, ws) }
func (r *recorder) AddAlarm(a *cloudwatch.Alarm)       { r.alarms = append(r.alarms, a) }
func (r *recorder) AddSection(title string, opts api.SectionOptions) {
	r.sections = append(r.sections, title)
	r.links = append(r.links, opts.Links)
}

func TestNewFunction(t *testing.T) {
	fn, err := NewFunction(FunctionProps{Name: "checkout"})
	if err != nil {
		t.Fatalf("NewFunction() error = %v", err)
	}
	if fn.Timeout() != 3*time.Second {
		t.Errorf("Timeout() = %v, want 3s", fn.Timeout())
	}
	if fn.UniqueID() == "" {
		t.Error("UniqueID() is empty")
	}
}

func TestNewFunction_Validation(t *testing.T) {
	tests := []struct {
		name  string
		props FunctionProps
	}{
		{"empty name", FunctionProps{}},
		{"sub-second timeout", FunctionProps{Name: "fn", Timeout: 500 * time.Millisecond}},
		{"timeout too long", FunctionProps{Name: "fn", Timeout: 16 * time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFunction(tt.props); err == nil {
				t.Error("NewFunction() expected error")
			}
		})
	}
}

func TestDurationThreshold(t *testing.T) {
	if got := DurationThreshold(10*time.Second, 80); got != 8000 {
		t.Errorf("DurationThreshold(10s, 80) = %v, want 8000", got)
	}
}

func TestNewFunctionMonitor(t *testing.T) {
	fn, _ := NewFunction(FunctionProps{Name: "checkout", ID: "fn", Timeout: 10 * time.Second})
	rec := &recorder{}

	m, err := NewFunctionMonitor(rec, "Checkout", fn,
		WithErrorsPerMinuteThreshold(2),
		WithDurationThresholdPercent(50),
	)
	if err != nil {
		t.Fatalf("NewFunctionMonitor() error = %v", err)
	}

	if len(rec.sections) != 1 || rec.sections[0] != "Checkout" {
		t.Errorf("sections = %v", rec.sections)
	}
	links := rec.links[0]
	if len(links) != 2 {
		t.Fatalf("links = %d, want 2", len(links))
	}
	if !strings.Contains(links[0].URL, "#/functions/checkout") {
		t.Errorf("console link = %q", links[0].URL)
	}
	if !strings.Contains(links[1].URL, "group=/aws/lambda/checkout") {
		t.Errorf("logs link = %q", links[1].URL)
	}

	if len(rec.alarms) != 3 {
		t.Fatalf("alarms = %d, want 3", len(rec.alarms))
	}
	if m.ErrorsAlarm().Threshold() != 2 {
		t.Errorf("errors threshold = %v, want 2", m.ErrorsAlarm().Threshold())
	}
	if m.ThrottlesAlarm().Threshold() != 0 {
		t.Errorf("throttles threshold = %v, want 0", m.ThrottlesAlarm().Threshold())
	}
	if m.DurationAlarm().Threshold() != 5000 {
		t.Errorf("duration threshold = %v, want 5000", m.DurationAlarm().Threshold())
	}
	if !m.DurationAlarm().Metric().IsPercentile() {
		t.Error("duration alarm does not use a percentile statistic")
	}
	for _, a := range rec.alarms {
		if a.ComparisonOperator() != cloudwatch.GreaterThanThreshold {
			t.Errorf("alarm %s operator = %q", a.LogicalID(), a.ComparisonOperator())
		}
		if a.EvaluationPeriods() != 3 {
			t.Errorf("alarm %s periods = %d, want 3", a.LogicalID(), a.EvaluationPeriods())
		}
	}

	// all four graphs land in one row
	if len(rec.widgets) != 1 || len(rec.widgets[0]) != 4 {
		t.Fatalf("widget rows = %v, want one row of 4", len(rec.widgets))
	}
	for _, w := range rec.widgets[0] {
		if w.Width() != 6 {
			t.Errorf("widget width = %d, want 6", w.Width())
		}
	}
}

func TestNewFunctionMonitor_InvalidOption(t *testing.T) {
	fn, _ := NewFunction(FunctionProps{Name: "checkout"})
	rec := &recorder{}

	if _, err := NewFunctionMonitor(rec, "Checkout", fn, WithThrottlesPerMinuteThreshold(-1)); err == nil {
		t.Fatal("NewFunctionMonitor() expected error")
	}
	if len(rec.sections)+len(rec.alarms)+len(rec.widgets) != 0 {
		t.Error("failed monitor modified the context")
	}
}

func TestFunction_AddToWatchful(t *testing.T) {
	fn, _ := NewFunction(FunctionProps{Name: "checkout"})
	rec := &recorder{}

	if err := fn.AddToWatchful(rec, "Checkout"); err != nil {
		t.Fatalf("AddToWatchful() error = %v", err)
	}
	if len(rec.alarms) != 3 {
		t.Errorf("alarms = %d, want 3", len(rec.alarms))
	}
}
