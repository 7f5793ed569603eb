package watchful

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jpalmerr/watchful/api"
	"github.com/jpalmerr/watchful/cloudwatch"
	"github.com/jpalmerr/watchful/dynamodb"
	"github.com/jpalmerr/watchful/internal/registry"
	"github.com/jpalmerr/watchful/lambda"
	"github.com/jpalmerr/watchful/notify"
	"github.com/jpalmerr/watchful/token"
)

const (
	// DashboardOutput is the name of the output carrying the dashboard URL.
	DashboardOutput = "WatchfulDashboard"

	defaultID             = "Watchful"
	alarmTopicDisplayName = "Watchful Alarms"
)

// Watchable is implemented by resources that register their own monitoring.
type Watchable = api.Watchable

// SectionOptions configures [Watchful.AddSection].
type SectionOptions = api.SectionOptions

// Link is a titled URL shown in a section heading.
type Link = api.Link

// Output is a named value published once the graph is deployed. Value may
// contain deferred placeholders (see package token).
type Output struct {
	Name  string
	Value string
}

// Watchful aggregates the widgets and alarms of one monitoring session.
//
// It owns exactly one dashboard and at most one notification topic. Resource
// monitors contribute to it through [Watchful.AddWidgets], [Watchful.AddAlarm]
// and [Watchful.AddSection]; it knows nothing about the resources themselves.
//
// The typical lifecycle is:
//
//	wf, err := watchful.New("Shop", watchful.WithAlarmEmail("ops@example.com"))
//	if err != nil {
//	    return err
//	}
//
//	wf.AddSection("Shop", watchful.SectionOptions{})
//	if _, err := wf.WatchTable("Orders", orders); err != nil {
//	    return err
//	}
//
//	asm := wf.Synth() // hand over to the provisioning system
//
// Watchful is not safe for concurrent use. Composition is expected to run
// once, linearly; callers registering from several goroutines must guard
// every method with a single mutex.
type Watchful struct {
	id        string
	dashboard *cloudwatch.Dashboard
	topic     *notify.Topic
	alarms    []*cloudwatch.Alarm
	outputs   []Output
	watched   *registry.Registry
	logger    *slog.Logger
}

var _ api.Watchful = (*Watchful)(nil)

// New creates a [Watchful] identified by id within the monitoring graph.
// An empty id defaults to "Watchful". The id prefixes the default dashboard
// and topic names, so it is limited to letters, digits, '-' and '_'.
//
// The dashboard is always created. A notification topic is created only
// when [WithAlarmEmail] is given a non-empty address. Returns a
// *[ConfigurationError] if the id or any option is invalid.
func New(id string, opts ...Option) (*Watchful, error) {
	if id == "" {
		id = defaultID
	}
	if !idPattern.MatchString(id) {
		return nil, &ConfigurationError{
			Field: "id",
			Err:   fmt.Errorf("%q must match %s", id, idPattern),
		}
	}

	cfg := &watchfulConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watchful{
		id:      id,
		watched: registry.New(),
		logger:  logger.With("watchful", id),
	}

	if cfg.alarmEmail != "" {
		topic := notify.NewTopic(id+"AlarmTopic", alarmTopicDisplayName)
		if err := topic.AddEmailSubscription(cfg.alarmEmail); err != nil {
			return nil, &ConfigurationError{Field: "alarmEmail", Err: err}
		}
		w.topic = topic
	}

	w.dashboard = cloudwatch.NewDashboard(id+"Dashboard", cfg.dashboardName)
	w.outputs = append(w.outputs, Output{
		Name:  DashboardOutput,
		Value: DashboardLink(token.Region, token.Ref(w.dashboard.LogicalID())),
	})

	w.logger.Debug("watchful created",
		"dashboard", w.dashboard.LogicalID(),
		"alarm_topic", w.topic != nil,
	)
	return w, nil
}

// AddWidgets appends widgets to the dashboard in argument order.
func (w *Watchful) AddWidgets(widgets ...cloudwatch.Widget) {
	w.dashboard.AddWidgets(widgets...)
	w.logger.Debug("widgets added", "count", len(widgets))
}

// AddAlarm routes alarm to the notification topic, if one exists.
//
// Without a topic the alarm is left untouched. Calling AddAlarm twice with
// the same alarm adds the notify action twice. The alarm is recorded either
// way so that [Watchful.Synth] can hand it to the provisioning system.
func (w *Watchful) AddAlarm(alarm *cloudwatch.Alarm) {
	if alarm == nil {
		return
	}
	if w.topic != nil {
		alarm.AddAlarmAction(notify.NewAction(w.topic))
	}
	w.alarms = append(w.alarms, alarm)
	w.logger.Debug("alarm added", "alarm", alarm.LogicalID(), "routed", w.topic != nil)
}

// AddSection appends a full-width text widget with title as a heading and
// opts.Links rendered as buttons on the line below.
func (w *Watchful) AddSection(title string, opts SectionOptions) {
	w.AddWidgets(cloudwatch.NewTextWidget(cloudwatch.TextWidgetProps{
		Markdown: SectionMarkdown(title, opts.Links),
		Width:    cloudwatch.GridWidth,
	}))
}

// SectionMarkdown renders a section heading:
//
//	# <title>
//	[button:<title>](<url>) | [button:<title>](<url>)
//
// With no links the second line is empty. Titles are literal text; link URLs
// may carry deferred values.
func SectionMarkdown(title string, links []Link) string {
	buttons := make([]string, 0, len(links))
	for _, l := range links {
		buttons = append(buttons, fmt.Sprintf("[button:%s](%s)", token.Escape(l.Title), l.URL))
	}
	return "# " + token.Escape(title) + "\n" + strings.Join(buttons, " | ")
}

// Watch asks resource to register itself under title.
//
// Watch does no work of its own: it calls resource.AddToWatchful with w
// exactly once and returns its error unchanged. Widgets added before a
// failure stay on the dashboard.
func (w *Watchful) Watch(title string, resource Watchable) error {
	if resource == nil {
		return fmt.Errorf("watch %q: resource is nil", title)
	}
	w.logger.Debug("watching resource", "title", title, "type", fmt.Sprintf("%T", resource))
	return resource.AddToWatchful(w, title)
}

// WatchTable registers a DynamoDB table and returns its monitor.
//
// The table's UniqueID is the registration key; watching the same table a
// second time returns a *[RegistrationError] wrapping [ErrAlreadyWatched].
func (w *Watchful) WatchTable(title string, table *dynamodb.Table, opts ...dynamodb.Option) (*dynamodb.TableMonitor, error) {
	if table == nil {
		return nil, &RegistrationError{Title: title, Err: errors.New("table is nil")}
	}
	id := table.UniqueID()
	if err := w.reserve(id, "dynamodb.Table", title); err != nil {
		return nil, err
	}

	m, err := dynamodb.NewTableMonitor(w, title, table, opts...)
	if err != nil {
		w.watched.Release(id)
		return nil, err
	}
	w.watched.Attach(id, m)
	return m, nil
}

// WatchFunction registers a Lambda function and returns its monitor.
//
// The function's UniqueID is the registration key; watching the same function
// a second time returns a *[RegistrationError] wrapping [ErrAlreadyWatched].
func (w *Watchful) WatchFunction(title string, fn *lambda.Function, opts ...lambda.Option) (*lambda.FunctionMonitor, error) {
	if fn == nil {
		return nil, &RegistrationError{Title: title, Err: errors.New("function is nil")}
	}
	id := fn.UniqueID()
	if err := w.reserve(id, "lambda.Function", title); err != nil {
		return nil, err
	}

	m, err := lambda.NewFunctionMonitor(w, title, fn, opts...)
	if err != nil {
		w.watched.Release(id)
		return nil, err
	}
	w.watched.Attach(id, m)
	return m, nil
}

func (w *Watchful) reserve(id, kind, title string) error {
	if err := w.watched.Reserve(id, kind, title); err != nil {
		if errors.Is(err, registry.ErrDuplicate) {
			err = ErrAlreadyWatched
		}
		return &RegistrationError{Title: title, ResourceID: id, Err: err}
	}
	w.logger.Debug("resource registered", "kind", kind, "id", id, "title", title)
	return nil
}

// ID returns the id given to [New].
func (w *Watchful) ID() string {
	return w.id
}

// Dashboard returns the dashboard being composed.
func (w *Watchful) Dashboard() *cloudwatch.Dashboard {
	return w.dashboard
}

// Topic returns the notification topic, or nil when no alarm email was set.
func (w *Watchful) Topic() *notify.Topic {
	return w.topic
}

// Alarms returns a copy of the alarms passed to [Watchful.AddAlarm], in order.
func (w *Watchful) Alarms() []*cloudwatch.Alarm {
	return append([]*cloudwatch.Alarm(nil), w.alarms...)
}

// Outputs returns a copy of the published outputs.
func (w *Watchful) Outputs() []Output {
	return append([]Output(nil), w.outputs...)
}

// WatchedIDs returns the unique ids of resources registered through
// [Watchful.WatchTable] and [Watchful.WatchFunction], in registration order.
func (w *Watchful) WatchedIDs() []string {
	entries := w.watched.All()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}
