package dynamodb

import (
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/watchful/api"
	"github.com/jpalmerr/watchful/cloudwatch"
)

// recorder is an api.Watchful that records every call.
type recorder struct {
	sections []string
	links    [][]api.Link
	alarms   []*cloudwatch.Alarm
	widgets  []cloudwatch.Widget
}

func (r *recorder) AddWidgets(ws ...cloudwatch.Widget) { r.widgets = append(r.widgets, ws...) }
func (r *recorder) AddAlarm(a *cloudwatch.Alarm)       { r.alarms = append(r.alarms, a) }
func (r *recorder) AddSection(title string, opts api.SectionOptions) {
	r.sections = append(r.sections, title)
	r.links = append(r.links, opts.Links)
}

func newTable(t *testing.T, props TableProps) *Table {
	t.Helper()
	tbl, err := NewTable(props)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return tbl
}

func TestNewTable(t *testing.T) {
	tbl := newTable(t, TableProps{Name: "orders", ReadCapacity: 10})
	if tbl.UniqueID() == "" {
		t.Error("UniqueID() is empty, want generated id")
	}

	other := newTable(t, TableProps{Name: "orders"})
	if other.UniqueID() == tbl.UniqueID() {
		t.Error("generated ids are not unique")
	}

	fixed := newTable(t, TableProps{Name: "orders", ID: "orders-table"})
	if fixed.UniqueID() != "orders-table" {
		t.Errorf("UniqueID() = %q, want %q", fixed.UniqueID(), "orders-table")
	}
}

func TestNewTable_Validation(t *testing.T) {
	if _, err := NewTable(TableProps{}); err == nil {
		t.Error("NewTable() expected error for empty name")
	}
	if _, err := NewTable(TableProps{Name: "x", ReadCapacity: -1}); err == nil {
		t.Error("NewTable() expected error for negative capacity")
	}
}

func TestCapacityThreshold(t *testing.T) {
	got := CapacityThreshold(10, 80, time.Minute)
	if got != 480 {
		t.Errorf("CapacityThreshold(10, 80, 1m) = %v, want 480", got)
	}
}

func TestNewTableMonitor_Provisioned(t *testing.T) {
	tbl := newTable(t, TableProps{Name: "orders", ID: "tbl", ReadCapacity: 10, WriteCapacity: 5})
	rec := &recorder{}

	m, err := NewTableMonitor(rec, "Orders Table", tbl, WithWriteCapacityThresholdPercent(50))
	if err != nil {
		t.Fatalf("NewTableMonitor() error = %v", err)
	}

	if len(rec.sections) != 1 || rec.sections[0] != "Orders Table" {
		t.Errorf("sections = %v, want [Orders Table]", rec.sections)
	}
	if link := rec.links[0][0]; !strings.Contains(link.URL, "tables:selected=orders") {
		t.Errorf("console link = %q", link.URL)
	}

	if len(rec.alarms) != 2 {
		t.Fatalf("alarms = %d, want 2", len(rec.alarms))
	}
	if got := m.ReadCapacityAlarm().Threshold(); got != 480 {
		t.Errorf("read threshold = %v, want 480", got)
	}
	if got := m.WriteCapacityAlarm().Threshold(); got != 150 {
		t.Errorf("write threshold = %v, want 150", got)
	}
	if m.ReadCapacityAlarm().LogicalID() == m.WriteCapacityAlarm().LogicalID() {
		t.Error("read and write alarms share a logical id")
	}

	if len(rec.widgets) != 2 {
		t.Fatalf("widgets = %d, want 2", len(rec.widgets))
	}
	graph, ok := rec.widgets[0].(cloudwatch.GraphWidget)
	if !ok {
		t.Fatalf("widget type = %T, want GraphWidget", rec.widgets[0])
	}
	if graph.Title() != "Read Capacity Units/1min" || graph.Width() != 12 {
		t.Errorf("read graph = %q width %d", graph.Title(), graph.Width())
	}
	if len(graph.LeftAnnotations()) != 2 {
		t.Errorf("annotations = %d, want 2", len(graph.LeftAnnotations()))
	}
	if metric := m.ReadCapacityMetric(); metric.Name() != "ConsumedReadCapacityUnits" || metric.Statistic() != "Sum" {
		t.Errorf("read metric = %s/%s", metric.Name(), metric.Statistic())
	}
}

func TestNewTableMonitor_OnDemand(t *testing.T) {
	tbl := newTable(t, TableProps{Name: "events"})
	rec := &recorder{}

	m, err := NewTableMonitor(rec, "Events", tbl)
	if err != nil {
		t.Fatalf("NewTableMonitor() error = %v", err)
	}

	if len(rec.alarms) != 0 {
		t.Errorf("alarms = %d, want 0 for on-demand table", len(rec.alarms))
	}
	if m.ReadCapacityAlarm() != nil || m.WriteCapacityAlarm() != nil {
		t.Error("on-demand table has alarms")
	}
	if len(rec.widgets) != 2 {
		t.Errorf("widgets = %d, want 2", len(rec.widgets))
	}
}

func TestNewTableMonitor_InvalidOptionLeavesContextUntouched(t *testing.T) {
	tbl := newTable(t, TableProps{Name: "orders", ReadCapacity: 1})
	rec := &recorder{}

	if _, err := NewTableMonitor(rec, "Orders", tbl, WithReadCapacityThresholdPercent(150)); err == nil {
		t.Fatal("NewTableMonitor() expected error")
	}
	if len(rec.sections)+len(rec.alarms)+len(rec.widgets) != 0 {
		t.Error("failed monitor modified the context")
	}
}

func TestTable_AddToWatchful(t *testing.T) {
	tbl := newTable(t, TableProps{Name: "orders", ReadCapacity: 1, WriteCapacity: 1})
	rec := &recorder{}

	var w api.Watchable = tbl
	if err := w.AddToWatchful(rec, "Orders"); err != nil {
		t.Fatalf("AddToWatchful() error = %v", err)
	}
	if len(rec.sections) != 1 || len(rec.alarms) != 2 {
		t.Errorf("AddToWatchful() registered %d sections, %d alarms", len(rec.sections), len(rec.alarms))
	}
}
