package watchful

import (
	"errors"
	"fmt"
)

// ErrAlreadyWatched is wrapped by a [RegistrationError] when a resource is
// registered a second time.
var ErrAlreadyWatched = errors.New("resource is already watched")

// ConfigurationError reports an invalid option passed to [New]. It aborts
// construction.
type ConfigurationError struct {
	// Field names the offending option, e.g. "alarmEmail".
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// RegistrationError reports a resource that could not be registered through
// one of the Watch* registrars.
type RegistrationError struct {
	Title      string
	ResourceID string
	Err        error
}

func (e *RegistrationError) Error() string {
	if e.ResourceID == "" {
		return fmt.Sprintf("watch %q: %v", e.Title, e.Err)
	}
	return fmt.Sprintf("watch %q (%s): %v", e.Title, e.ResourceID, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
