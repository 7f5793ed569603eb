package watchful

import (
	"testing"

	"github.com/jpalmerr/watchful/api"
	"github.com/jpalmerr/watchful/dynamodb"
)

func TestDashboardLink(t *testing.T) {
	got := DashboardLink("us-east-1", "ops")
	want := "https://console.aws.amazon.com/cloudwatch/home?region=us-east-1#dashboards:name=ops"
	if got != want {
		t.Errorf("DashboardLink() = %q, want %q", got, want)
	}

	if again := DashboardLink("us-east-1", "ops"); again != got {
		t.Errorf("DashboardLink() not deterministic: %q != %q", again, got)
	}
}

type valueWatchable struct{}

func (valueWatchable) AddToWatchful(api.Watchful, string) error { return nil }

type notWatchable struct{ name string }

func TestIsWatchable(t *testing.T) {
	tbl, _ := dynamodb.NewTable(dynamodb.TableProps{Name: "orders"})
	var nilTable *dynamodb.Table

	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{"nil", nil, false},
		{"int", 42, false},
		{"string", "table", false},
		{"struct lacking method", notWatchable{name: "x"}, false},
		{"map", map[string]any{"addToWatchful": true}, false},
		{"table", tbl, true},
		{"value receiver", valueWatchable{}, true},
		{"spy", &spyWatchable{}, true},
		{"typed nil pointer", nilTable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWatchable(tt.input); got != tt.want {
				t.Errorf("IsWatchable(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
