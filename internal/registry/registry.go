// Package registry tracks which resources have been registered for
// monitoring, keyed by each resource's stable unique id.
//
// Users of the watchful library should not need this package; it backs the
// resource registrars on watchful.Watchful.
package registry

import (
	"errors"
	"fmt"
)

// ErrDuplicate is returned when an id is registered twice.
var ErrDuplicate = errors.New("already registered")

// Entry is one registered resource.
type Entry struct {
	// ID is the resource's unique id.
	ID string

	// Kind names the resource type, e.g. "dynamodb.Table".
	Kind string

	// Title is the dashboard section title the resource was registered under.
	Title string

	// Monitor is the handle returned to the caller.
	Monitor any
}

// Registry is an insertion-ordered set of entries.
//
// Registry is not safe for concurrent use.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// New creates an empty [Registry].
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Reserve claims id, returning an error wrapping [ErrDuplicate] if it is taken.
//
// Reserving before building the monitor keeps a failed second registration from
// adding anything to the dashboard.
func (r *Registry) Reserve(id, kind, title string) error {
	if id == "" {
		return errors.New("resource id cannot be empty")
	}
	if existing, ok := r.entries[id]; ok {
		return fmt.Errorf("%s %q %w under %q", existing.Kind, id, ErrDuplicate, existing.Title)
	}
	r.entries[id] = Entry{ID: id, Kind: kind, Title: title}
	r.order = append(r.order, id)
	return nil
}

// Attach stores the monitor handle for a reserved id.
func (r *Registry) Attach(id string, monitor any) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.Monitor = monitor
	r.entries[id] = e
}

// Release removes id, for registrations that failed after Reserve.
func (r *Registry) Release(id string) {
	if _, ok := r.entries[id]; !ok {
		return
	}
	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// All returns a snapshot of all entries in registration order.
func (r *Registry) All() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	return len(r.order)
}
