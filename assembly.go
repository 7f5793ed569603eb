package watchful

import (
	"github.com/jpalmerr/watchful/cloudwatch"
	"github.com/jpalmerr/watchful/notify"
)

// Assembly is the composed monitoring graph handed to the provisioning
// system. Deferred values inside it are resolved at deploy time, for
// example by package deploy.
type Assembly struct {
	// ID is the id of the Watchful that produced the assembly.
	ID string

	// Dashboard holds every widget in layout order.
	Dashboard *cloudwatch.Dashboard

	// Topic is nil when no alarm email was configured.
	Topic *notify.Topic

	// Alarms lists every alarm passed to AddAlarm, in order.
	Alarms []*cloudwatch.Alarm

	// Outputs holds exactly one entry, named [DashboardOutput].
	Outputs []Output
}

// Synth returns a snapshot of the composed graph.
//
// The alarm and output slices are copies; the dashboard, topic and alarms
// themselves are shared with w.
func (w *Watchful) Synth() *Assembly {
	w.logger.Debug("assembly synthesized",
		"widgets", len(w.dashboard.Widgets()),
		"alarms", len(w.alarms),
	)
	return &Assembly{
		ID:        w.id,
		Dashboard: w.dashboard,
		Topic:     w.topic,
		Alarms:    w.Alarms(),
		Outputs:   w.Outputs(),
	}
}

// Output returns the value of the named output.
func (a *Assembly) Output(name string) (string, bool) {
	for _, o := range a.Outputs {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}
