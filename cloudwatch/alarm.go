package cloudwatch

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// ComparisonOperator decides how the metric is compared to the threshold.
type ComparisonOperator = types.ComparisonOperator

const (
	GreaterThanOrEqualToThreshold = types.ComparisonOperatorGreaterThanOrEqualToThreshold
	GreaterThanThreshold          = types.ComparisonOperatorGreaterThanThreshold
	LessThanThreshold             = types.ComparisonOperatorLessThanThreshold
	LessThanOrEqualToThreshold    = types.ComparisonOperatorLessThanOrEqualToThreshold
)

// AlarmState is the state an external evaluation engine puts an alarm in.
type AlarmState = types.StateValue

const (
	StateAlarm            = types.StateValueAlarm
	StateOK               = types.StateValueOk
	StateInsufficientData = types.StateValueInsufficientData
)

// TreatMissingData controls how missing data points are evaluated.
type TreatMissingData string

const (
	TreatMissingDataMissing      TreatMissingData = "missing"
	TreatMissingDataNotBreaching TreatMissingData = "notBreaching"
	TreatMissingDataBreaching    TreatMissingData = "breaching"
	TreatMissingDataIgnore       TreatMissingData = "ignore"
)

// AlarmAction is something an alarm triggers on a state change.
//
// ActionARN may return a deferred value (see package token).
type AlarmAction interface {
	ActionARN() string
}

// AlarmProps describes an alarm condition.
type AlarmProps struct {
	// Metric is the metric being watched. Required.
	Metric Metric

	// Threshold is the value the metric is compared against.
	Threshold float64

	// EvaluationPeriods is how many consecutive periods must breach. At least 1.
	EvaluationPeriods int

	// ComparisonOperator defaults to GreaterThanOrEqualToThreshold.
	ComparisonOperator ComparisonOperator

	// AlarmName is the physical name. Empty lets the provisioning system pick one.
	AlarmName string

	// AlarmDescription is free text shown with the alarm.
	AlarmDescription string

	// TreatMissingData defaults to the CloudWatch default ("missing").
	TreatMissingData TreatMissingData
}

// Alarm is a threshold condition over a [Metric].
//
// The condition is fixed at construction. Only the list of alarm actions
// changes afterwards, through [Alarm.AddAlarmAction].
type Alarm struct {
	logicalID string
	props     AlarmProps
	actions   []AlarmAction
}

// NewAlarm creates an [Alarm] identified by logicalID within its graph.
func NewAlarm(logicalID string, props AlarmProps) (*Alarm, error) {
	if logicalID == "" {
		return nil, errors.New("alarm logical id cannot be empty")
	}
	if props.Metric.IsZero() {
		return nil, fmt.Errorf("alarm %s: metric is required", logicalID)
	}
	if props.EvaluationPeriods < 1 {
		return nil, fmt.Errorf("alarm %s: evaluation periods must be at least 1, got %d", logicalID, props.EvaluationPeriods)
	}
	if props.ComparisonOperator == "" {
		props.ComparisonOperator = GreaterThanOrEqualToThreshold
	}

	switch props.TreatMissingData {
	case "", TreatMissingDataMissing, TreatMissingDataNotBreaching, TreatMissingDataBreaching, TreatMissingDataIgnore:
	default:
		return nil, fmt.Errorf("alarm %s: invalid treat missing data %q", logicalID, props.TreatMissingData)
	}

	return &Alarm{logicalID: logicalID, props: props}, nil
}

// AddAlarmAction appends actions to run when the alarm enters the ALARM state.
//
// Actions are not deduplicated: adding the same action twice lists it twice.
func (a *Alarm) AddAlarmAction(actions ...AlarmAction) {
	a.actions = append(a.actions, actions...)
}

// AlarmActions returns a copy of the alarm's actions in the order added.
func (a *Alarm) AlarmActions() []AlarmAction {
	if a.actions == nil {
		return nil
	}
	return append([]AlarmAction(nil), a.actions...)
}

// LogicalID returns the alarm's id within the monitoring graph.
func (a *Alarm) LogicalID() string {
	return a.logicalID
}

// Metric returns the watched metric.
func (a *Alarm) Metric() Metric {
	return a.props.Metric
}

// Threshold returns the comparison threshold.
func (a *Alarm) Threshold() float64 {
	return a.props.Threshold
}

// EvaluationPeriods returns the number of periods that must breach.
func (a *Alarm) EvaluationPeriods() int {
	return a.props.EvaluationPeriods
}

// ComparisonOperator returns how the metric is compared to the threshold.
func (a *Alarm) ComparisonOperator() ComparisonOperator {
	return a.props.ComparisonOperator
}

// AlarmName returns the physical name, or "" if none was requested.
func (a *Alarm) AlarmName() string {
	return a.props.AlarmName
}

// AlarmDescription returns the alarm description.
func (a *Alarm) AlarmDescription() string {
	return a.props.AlarmDescription
}

// TreatMissingData returns the missing-data policy, or "" for the default.
func (a *Alarm) TreatMissingData() TreatMissingData {
	return a.props.TreatMissingData
}
