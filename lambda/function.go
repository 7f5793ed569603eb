// Package lambda monitors Lambda functions: invocations, errors, throttles
// and p99 duration against the function timeout.
package lambda

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/watchful/api"
	"github.com/jpalmerr/watchful/token"
)

const (
	defaultTimeout = 3 * time.Second
	maxTimeout     = 15 * time.Minute
)

// FunctionProps describes a Lambda function.
type FunctionProps struct {
	// Name is the function name. Required.
	Name string

	// ID is a stable, unique id for the function. A random id is assigned
	// when empty.
	ID string

	// Timeout is the configured function timeout. Defaults to 3 seconds.
	Timeout time.Duration
}

// Function is a Lambda function to be monitored.
type Function struct {
	id      string
	name    string
	timeout time.Duration
}

var _ api.Watchable = (*Function)(nil)

// NewFunction creates a [Function].
func NewFunction(props FunctionProps) (*Function, error) {
	if props.Name == "" {
		return nil, errors.New("function name cannot be empty")
	}

	timeout := props.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if timeout < time.Second || timeout > maxTimeout {
		return nil, fmt.Errorf("function %s: timeout must be between 1s and %s, got %s", props.Name, maxTimeout, timeout)
	}

	id := props.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &Function{id: id, name: props.Name, timeout: timeout}, nil
}

// UniqueID returns the function's stable id, used as its registration key.
func (f *Function) UniqueID() string { return f.id }

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// Timeout returns the configured timeout.
func (f *Function) Timeout() time.Duration { return f.timeout }

// AddToWatchful implements [api.Watchable] with default thresholds.
func (f *Function) AddToWatchful(w api.Watchful, title string) error {
	_, err := NewFunctionMonitor(w, title, f)
	return err
}

// ConsoleLink returns the Lambda console URL for the function.
func (f *Function) ConsoleLink() string {
	return fmt.Sprintf("https://console.aws.amazon.com/lambda/home?region=%s#/functions/%s?tab=graph",
		token.Region, f.name)
}

// LogsLink returns the CloudWatch Logs URL for the function's log group.
func (f *Function) LogsLink() string {
	return fmt.Sprintf("https://console.aws.amazon.com/cloudwatch/home?region=%s#logStream:group=/aws/lambda/%s",
		token.Region, f.name)
}
