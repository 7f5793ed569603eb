package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jpalmerr/watchful"
	"github.com/jpalmerr/watchful/api"
	"github.com/jpalmerr/watchful/cloudwatch"
	"github.com/jpalmerr/watchful/deploy"
	"github.com/jpalmerr/watchful/dynamodb"
	"github.com/jpalmerr/watchful/lambda"
	"github.com/jpalmerr/watchful/token"
)

// queue is a resource kind watchful knows nothing about. It registers its own
// section, graph and alarm through the api.Watchful contract.
type queue struct {
	name   string
	maxAge time.Duration
}

func (q queue) AddToWatchful(w api.Watchful, title string) error {
	age, err := cloudwatch.NewMetric("AWS/SQS", "ApproximateAgeOfOldestMessage",
		cloudwatch.WithDimension("QueueName", q.name),
		cloudwatch.WithStatistic("Maximum"),
		cloudwatch.WithPeriod(time.Minute),
		cloudwatch.WithLabel("Oldest message"),
	)
	if err != nil {
		return err
	}

	alarm, err := age.CreateAlarm(q.name+"/AgeAlarm", cloudwatch.AlarmProps{
		Threshold:         q.maxAge.Seconds(),
		EvaluationPeriods: 5,
		AlarmDescription:  fmt.Sprintf("messages older than %s", q.maxAge),
	})
	if err != nil {
		return err
	}

	w.AddSection(title, api.SectionOptions{Links: []api.Link{{
		Title: "Amazon SQS Console",
		URL:   "https://console.aws.amazon.com/sqs/v2/home?region=" + token.Region,
	}}})
	w.AddAlarm(alarm)
	w.AddWidgets(cloudwatch.NewGraphWidget(cloudwatch.GraphWidgetProps{
		Title: "Age of oldest message",
		Width: 24,
		Left:  []cloudwatch.Metric{age},
		LeftAnnotations: []cloudwatch.HorizontalAnnotation{
			{Label: "Alarm", Value: q.maxAge.Seconds()},
		},
	}))
	return nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	wf, err := watchful.New("Shop",
		watchful.WithAlarmEmail("ops@example.com"),
		watchful.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create watchful", "error", err)
		os.Exit(1)
	}

	wf.AddSection("Shop", watchful.SectionOptions{
		Links: []watchful.Link{{Title: "Runbook", URL: "https://wiki.example.com/shop"}},
	})

	orders, _ := dynamodb.NewTable(dynamodb.TableProps{Name: "orders", ID: "orders", ReadCapacity: 10, WriteCapacity: 5})
	if _, err := wf.WatchTable("Orders", orders); err != nil {
		slog.Error("failed to watch table", "error", err)
		os.Exit(1)
	}

	checkout, _ := lambda.NewFunction(lambda.FunctionProps{Name: "checkout", ID: "checkout", Timeout: 10 * time.Second})
	if _, err := wf.WatchFunction("Checkout", checkout, lambda.WithErrorsPerMinuteThreshold(1)); err != nil {
		slog.Error("failed to watch function", "error", err)
		os.Exit(1)
	}

	// anything implementing api.Watchable can register itself
	resources := map[string]any{
		"Fulfilment queue": queue{name: "fulfilment", maxAge: 15 * time.Minute},
		"Not a resource":   42,
	}
	for title, r := range resources {
		if !watchful.IsWatchable(r) {
			continue
		}
		if err := wf.Watch(title, r.(watchful.Watchable)); err != nil {
			slog.Error("failed to watch resource", "title", title, "error", err)
			os.Exit(1)
		}
	}

	plan, err := deploy.Build(wf.Synth(), token.Environment{Region: "us-east-1", Account: "123456789012"})
	if err != nil {
		slog.Error("failed to build plan", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plan); err != nil {
		slog.Error("failed to encode plan", "error", err)
		os.Exit(1)
	}
}
