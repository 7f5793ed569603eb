// Package api defines the extension protocol between the monitoring
// aggregator and the resource monitors that plug into it.
//
// A monitor for a new kind of resource needs nothing beyond [Watchful]: it
// builds widgets and alarms for its resource and hands them over through
// AddWidgets, AddAlarm and AddSection. Resource wrappers that know which
// monitor they need implement [Watchable].
package api

import "github.com/jpalmerr/watchful/cloudwatch"

// Watchful is the contract a resource monitor consumes.
type Watchful interface {
	// AddWidgets appends widgets to the dashboard, in argument order.
	AddWidgets(widgets ...cloudwatch.Widget)

	// AddAlarm routes the alarm to the notification channel, if any.
	AddAlarm(alarm *cloudwatch.Alarm)

	// AddSection appends a full-width heading with an inline list of links.
	AddSection(title string, opts SectionOptions)
}

// Watchable is implemented by resource wrappers that can register their own
// widgets and alarms.
type Watchable interface {
	AddToWatchful(w Watchful, title string) error
}

// Link is a titled URL rendered as a button in a section heading.
type Link struct {
	Title string
	URL   string
}

// SectionOptions configures a section heading.
type SectionOptions struct {
	Links []Link
}
