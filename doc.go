// Package watchful composes CloudWatch monitoring for a set of cloud
// resources: one dashboard, the alarms that watch the resources, and an
// optional email topic every alarm notifies.
//
// watchful is a build-time library. It produces a declarative graph (an
// [Assembly]) for a provisioning system to deploy; it never calls AWS and
// never reads metrics.
//
// # Quick Start
//
//	wf, err := watchful.New("Shop", watchful.WithAlarmEmail("ops@example.com"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	orders, _ := dynamodb.NewTable(dynamodb.TableProps{Name: "orders", ReadCapacity: 10, WriteCapacity: 5})
//	checkout, _ := lambda.NewFunction(lambda.FunctionProps{Name: "checkout", Timeout: 10 * time.Second})
//
//	wf.AddSection("Shop", watchful.SectionOptions{
//	    Links: []watchful.Link{{Title: "Runbook", URL: "https://wiki.example.com/shop"}},
//	})
//	wf.WatchTable("Orders", orders)
//	wf.WatchFunction("Checkout", checkout, lambda.WithDurationThresholdPercent(50))
//
//	plan, err := deploy.Build(wf.Synth(), token.Environment{Region: "us-east-1", Account: "123456789012"})
//
// # Extending
//
// Support for a new kind of resource needs no change here. Write a monitor
// that takes an [api.Watchful] and calls AddSection, AddWidgets and AddAlarm,
// and optionally implement [Watchable] on the resource wrapper so callers can
// use [Watchful.Watch]. [IsWatchable] tells which values of a mixed
// collection can register themselves.
//
// # Deferred values
//
// The region, account and physical names of deployed resources are not known
// while composing. They appear as placeholders (see package token) inside
// widget properties, ARNs and the dashboard URL output, and are resolved
// by the provisioning side.
//
// # Architecture
//
//   - api: the contract between the aggregator and resource monitors
//   - cloudwatch: metrics, alarms, widgets and the dashboard layout
//   - notify: the alarm topic and its email subscriptions
//   - dynamodb, lambda: monitors for those resource kinds
//   - deploy: renders an Assembly into AWS SDK request values
//   - config: YAML file format used by the watchful CLI
package watchful
