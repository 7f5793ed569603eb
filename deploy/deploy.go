// Package deploy renders a composed [watchful.Assembly] into the AWS SDK
// request values a provisioning system would send.
//
// Build resolves every deferred value against a [token.Environment]. It makes
// no network calls; sending the requests is left to the caller.
package deploy

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/jpalmerr/watchful"
	cw "github.com/jpalmerr/watchful/cloudwatch"
	"github.com/jpalmerr/watchful/notify"
	"github.com/jpalmerr/watchful/token"
)

// ErrDuplicateAlarm is returned by [Build] when two distinct alarms would be
// provisioned under the same name.
var ErrDuplicateAlarm = errors.New("duplicate alarm name")

// Plan is the set of requests that provisions one assembly.
type Plan struct {
	Dashboard     *cloudwatch.PutDashboardInput     `json:"dashboard"`
	Alarms        []*cloudwatch.PutMetricAlarmInput `json:"alarms"`
	Topic         *sns.CreateTopicInput             `json:"topic,omitempty"`
	Subscriptions []*sns.SubscribeInput             `json:"subscriptions,omitempty"`

	// Outputs maps output names to their resolved values.
	Outputs map[string]string `json:"outputs"`
}

// Build resolves asm against env and returns the resulting [Plan].
//
// Resources missing from env.PhysicalIDs are named after their logical id,
// or after the fixed dashboard name when one was configured. Any deferred
// value that still cannot be resolved is an error. An alarm added more than
// once is provisioned once; distinct alarms sharing a name are rejected with
// [ErrDuplicateAlarm].
func Build(asm *watchful.Assembly, env token.Environment) (*Plan, error) {
	if asm == nil {
		return nil, errors.New("assembly is nil")
	}
	if asm.Dashboard == nil {
		return nil, errors.New("assembly has no dashboard")
	}

	env = namedEnvironment(asm, env)
	plan := &Plan{Outputs: make(map[string]string, len(asm.Outputs))}

	body, err := asm.Dashboard.Body(env)
	if err != nil {
		return nil, err
	}
	plan.Dashboard = &cloudwatch.PutDashboardInput{
		DashboardName: aws.String(env.PhysicalIDs[asm.Dashboard.LogicalID()]),
		DashboardBody: aws.String(body),
	}

	if asm.Topic != nil {
		topic, subs, err := buildTopic(asm.Topic, env)
		if err != nil {
			return nil, err
		}
		plan.Topic = topic
		plan.Subscriptions = subs
	}

	built := make(map[*cw.Alarm]bool, len(asm.Alarms))
	names := make(map[string]string, len(asm.Alarms))
	for _, a := range asm.Alarms {
		if built[a] {
			continue
		}
		built[a] = true

		in, err := buildAlarm(a, env)
		if err != nil {
			return nil, err
		}
		name := aws.ToString(in.AlarmName)
		if prev, ok := names[name]; ok {
			return nil, fmt.Errorf("alarm %s: %w %q, already used by %s", a.LogicalID(), ErrDuplicateAlarm, name, prev)
		}
		names[name] = a.LogicalID()
		plan.Alarms = append(plan.Alarms, in)
	}

	for _, o := range asm.Outputs {
		value, err := token.Resolve(o.Value, env)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", o.Name, err)
		}
		plan.Outputs[o.Name] = value
	}

	return plan, nil
}

// namedEnvironment returns a copy of env with a physical name for every
// resource in asm.
func namedEnvironment(asm *watchful.Assembly, env token.Environment) token.Environment {
	ids := make(map[string]string, len(env.PhysicalIDs)+len(asm.Alarms)+2)
	maps.Copy(ids, env.PhysicalIDs)

	name := func(logicalID, fallback string) {
		if _, ok := ids[logicalID]; !ok {
			ids[logicalID] = fallback
		}
	}

	d := asm.Dashboard
	if d.Name() != "" {
		name(d.LogicalID(), d.Name())
	} else {
		name(d.LogicalID(), d.LogicalID())
	}
	if asm.Topic != nil {
		name(asm.Topic.LogicalID(), asm.Topic.LogicalID())
	}
	for _, a := range asm.Alarms {
		if a.AlarmName() != "" {
			name(a.LogicalID(), a.AlarmName())
		} else {
			name(a.LogicalID(), a.LogicalID())
		}
	}

	env.PhysicalIDs = ids
	return env
}

func buildTopic(t *notify.Topic, env token.Environment) (*sns.CreateTopicInput, []*sns.SubscribeInput, error) {
	arn, err := token.Resolve(t.ARN(), env)
	if err != nil {
		return nil, nil, fmt.Errorf("topic %s: %w", t.LogicalID(), err)
	}

	topic := &sns.CreateTopicInput{
		Name:       aws.String(env.PhysicalIDs[t.LogicalID()]),
		Attributes: map[string]string{"DisplayName": t.DisplayName()},
	}

	var subs []*sns.SubscribeInput
	for _, s := range t.Subscriptions() {
		subs = append(subs, &sns.SubscribeInput{
			TopicArn: aws.String(arn),
			Protocol: aws.String(string(s.Protocol)),
			Endpoint: aws.String(s.Endpoint),
		})
	}
	return topic, subs, nil
}

func buildAlarm(a *cw.Alarm, env token.Environment) (*cloudwatch.PutMetricAlarmInput, error) {
	m := a.Metric()

	in := &cloudwatch.PutMetricAlarmInput{
		AlarmName:          aws.String(env.PhysicalIDs[a.LogicalID()]),
		ComparisonOperator: a.ComparisonOperator(),
		EvaluationPeriods:  aws.Int32(int32(a.EvaluationPeriods())),
		Threshold:          aws.Float64(a.Threshold()),
		Namespace:          aws.String(m.Namespace()),
		MetricName:         aws.String(m.Name()),
		Period:             aws.Int32(int32(m.Period() / time.Second)),
	}

	if m.IsPercentile() {
		in.ExtendedStatistic = aws.String(m.Statistic())
	} else {
		in.Statistic = types.Statistic(m.Statistic())
	}

	if desc := a.AlarmDescription(); desc != "" {
		in.AlarmDescription = aws.String(desc)
	}
	if tmd := a.TreatMissingData(); tmd != "" {
		in.TreatMissingData = aws.String(string(tmd))
	}

	for _, d := range m.Dimensions() {
		value, err := token.Resolve(d.Value, env)
		if err != nil {
			return nil, fmt.Errorf("alarm %s: dimension %s: %w", a.LogicalID(), d.Name, err)
		}
		in.Dimensions = append(in.Dimensions, types.Dimension{
			Name:  aws.String(d.Name),
			Value: aws.String(value),
		})
	}

	for _, action := range a.AlarmActions() {
		arn, err := token.Resolve(action.ActionARN(), env)
		if err != nil {
			return nil, fmt.Errorf("alarm %s: action: %w", a.LogicalID(), err)
		}
		if !slices.Contains(in.AlarmActions, arn) {
			in.AlarmActions = append(in.AlarmActions, arn)
		}
	}
	if len(in.AlarmActions) > 0 {
		in.ActionsEnabled = aws.Bool(true)
	}

	return in, nil
}
