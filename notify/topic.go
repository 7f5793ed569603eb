// Package notify provides the notification channel alarms route their state
// changes to: a topic with email subscriptions, and the alarm action that
// publishes to it.
package notify

import (
	"errors"
	"fmt"
	"net/mail"

	"github.com/jpalmerr/watchful/cloudwatch"
	"github.com/jpalmerr/watchful/token"
)

// ErrInvalidEmail is returned when a subscription address cannot be parsed.
var ErrInvalidEmail = errors.New("invalid email address")

// Protocol is the delivery protocol of a [Subscription].
type Protocol string

const ProtocolEmail Protocol = "email"

// Subscription is an endpoint that receives every message published to a topic.
type Subscription struct {
	Protocol Protocol
	Endpoint string
}

// Topic is a notification channel.
type Topic struct {
	logicalID     string
	displayName   string
	subscriptions []Subscription
}

// NewTopic creates a topic identified by logicalID within the monitoring graph.
func NewTopic(logicalID, displayName string) *Topic {
	return &Topic{logicalID: logicalID, displayName: displayName}
}

// LogicalID returns the topic's id within the monitoring graph.
func (t *Topic) LogicalID() string {
	return t.logicalID
}

// DisplayName returns the name shown as the sender of notifications.
func (t *Topic) DisplayName() string {
	return t.displayName
}

// ARN returns the topic ARN as a deferred value.
func (t *Topic) ARN() string {
	return fmt.Sprintf("arn:aws:sns:%s:%s:%s", token.Region, token.Account, token.Ref(t.logicalID))
}

// ValidateEmail checks that addr is a bare address such as
// "ops@example.com". Forms with a display name are rejected. Returns an error
// wrapping [ErrInvalidEmail].
func ValidateEmail(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidEmail, addr, err)
	}
	if parsed.Name != "" || parsed.Address != addr {
		return fmt.Errorf("%w %q: must be a bare address", ErrInvalidEmail, addr)
	}
	return nil
}

// AddEmailSubscription subscribes addr to state-change notifications.
// addr must pass [ValidateEmail].
func (t *Topic) AddEmailSubscription(addr string) error {
	if err := ValidateEmail(addr); err != nil {
		return err
	}

	t.subscriptions = append(t.subscriptions, Subscription{Protocol: ProtocolEmail, Endpoint: addr})
	return nil
}

// Subscriptions returns a copy of the topic's subscriptions.
func (t *Topic) Subscriptions() []Subscription {
	if t.subscriptions == nil {
		return nil
	}
	return append([]Subscription(nil), t.subscriptions...)
}

// Action is a [cloudwatch.AlarmAction] that publishes to a topic.
type Action struct {
	topic *Topic
}

var _ cloudwatch.AlarmAction = Action{}

// NewAction returns an alarm action that notifies topic.
func NewAction(topic *Topic) Action {
	return Action{topic: topic}
}

// Topic returns the topic the action publishes to.
func (a Action) Topic() *Topic {
	return a.topic
}

// ActionARN implements [cloudwatch.AlarmAction].
func (a Action) ActionARN() string {
	return a.topic.ARN()
}
