// Package dynamodb monitors DynamoDB tables: consumed read and write capacity
// against what the table provisions.
//
// A [Table] describes the resource; [NewTableMonitor] registers its section,
// graphs and alarms with any [api.Watchful].
package dynamodb

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jpalmerr/watchful/api"
	"github.com/jpalmerr/watchful/token"
)

// TableProps describes a DynamoDB table.
type TableProps struct {
	// Name is the table name. Required.
	Name string

	// ID is a stable, unique id for the table. A random id is assigned when
	// empty; pass one when the same table may be described more than once.
	ID string

	// ReadCapacity and WriteCapacity are the provisioned units per second.
	// Zero means on-demand billing.
	ReadCapacity  int
	WriteCapacity int
}

// Table is a DynamoDB table to be monitored.
type Table struct {
	id            string
	name          string
	readCapacity  int
	writeCapacity int
}

var _ api.Watchable = (*Table)(nil)

// NewTable creates a [Table].
func NewTable(props TableProps) (*Table, error) {
	if props.Name == "" {
		return nil, errors.New("table name cannot be empty")
	}
	if props.ReadCapacity < 0 || props.WriteCapacity < 0 {
		return nil, fmt.Errorf("table %s: capacity cannot be negative", props.Name)
	}

	id := props.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &Table{
		id:            id,
		name:          props.Name,
		readCapacity:  props.ReadCapacity,
		writeCapacity: props.WriteCapacity,
	}, nil
}

// UniqueID returns the table's stable id, used as its registration key.
func (t *Table) UniqueID() string { return t.id }

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// ReadCapacity returns the provisioned read capacity units, 0 for on-demand.
func (t *Table) ReadCapacity() int { return t.readCapacity }

// WriteCapacity returns the provisioned write capacity units, 0 for on-demand.
func (t *Table) WriteCapacity() int { return t.writeCapacity }

// AddToWatchful implements [api.Watchable] with default thresholds.
func (t *Table) AddToWatchful(w api.Watchful, title string) error {
	_, err := NewTableMonitor(w, title, t)
	return err
}

// ConsoleLink returns the DynamoDB console URL for the table.
func (t *Table) ConsoleLink() string {
	return fmt.Sprintf("https://console.aws.amazon.com/dynamodb/home?region=%s#tables:selected=%s;tab=overview",
		token.Region, t.name)
}
