package cloudwatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/jpalmerr/watchful/token"
)

// GridWidth is the number of columns on a CloudWatch dashboard.
const GridWidth = 24

// Placement is a widget together with its computed grid position.
type Placement struct {
	Widget Widget
	X      int
	Y      int
}

// Dashboard is an append-only, ordered collection of widgets.
//
// Each call to [Dashboard.AddWidgets] starts a new row below the previous
// ones. Widgets in a row flow left to right and wrap when the grid is full.
// Widgets are never reordered or deduplicated.
type Dashboard struct {
	logicalID string
	name      string
	rows      [][]Widget
}

// NewDashboard creates an empty dashboard. name may be empty, in which case
// the provisioning system assigns one at deploy time.
func NewDashboard(logicalID, name string) *Dashboard {
	return &Dashboard{logicalID: logicalID, name: name}
}

// LogicalID returns the dashboard's id within the monitoring graph.
func (d *Dashboard) LogicalID() string {
	return d.logicalID
}

// Name returns the requested dashboard name, or "" if unset.
func (d *Dashboard) Name() string {
	return d.name
}

// AddWidgets appends widgets as a new row. Calling it with no widgets is a no-op.
func (d *Dashboard) AddWidgets(widgets ...Widget) {
	if len(widgets) == 0 {
		return
	}
	row := make([]Widget, len(widgets))
	copy(row, widgets)
	d.rows = append(d.rows, row)
}

// Widgets returns every widget in insertion order.
func (d *Dashboard) Widgets() []Widget {
	var out []Widget
	for _, row := range d.rows {
		out = append(out, row...)
	}
	return out
}

// Layout computes the grid position of every widget, in insertion order.
// Every widget must be non-nil; [Dashboard.Body] reports nil widgets as an
// error before laying out.
func (d *Dashboard) Layout() []Placement {
	var placements []Placement

	y := 0
	for _, row := range d.rows {
		x, lineHeight := 0, 0
		for _, w := range row {
			width := clampWidth(w.Width(), GridWidth)
			if x > 0 && x+width > GridWidth {
				// wrap onto a new line within the row
				y += lineHeight
				x, lineHeight = 0, 0
			}
			placements = append(placements, Placement{Widget: w, X: x, Y: y})
			x += width
			if h := w.Height(); h > lineHeight {
				lineHeight = h
			}
		}
		y += lineHeight
	}

	return placements
}

type widgetJSON struct {
	Type       string         `json:"type"`
	X          int            `json:"x"`
	Y          int            `json:"y"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Properties map[string]any `json:"properties"`
}

type bodyJSON struct {
	Widgets []widgetJSON `json:"widgets"`
}

// Body renders the dashboard body JSON with every deferred value resolved
// against env.
//
// Placeholders are resolved in each string property before encoding, so the
// substituted values are JSON-escaped like any other text.
func (d *Dashboard) Body(env token.Environment) (string, error) {
	for _, w := range d.Widgets() {
		if isNilWidget(w) {
			return "", errors.New("dashboard contains a nil widget")
		}
	}

	placements := d.Layout()
	body := bodyJSON{Widgets: make([]widgetJSON, 0, len(placements))}
	for _, p := range placements {
		props, err := resolveValue(p.Widget.Properties(), env)
		if err != nil {
			return "", fmt.Errorf("dashboard %s: %w", d.logicalID, err)
		}
		body.Widgets = append(body.Widgets, widgetJSON{
			Type:       p.Widget.Type(),
			X:          p.X,
			Y:          p.Y,
			Width:      clampWidth(p.Widget.Width(), GridWidth),
			Height:     p.Widget.Height(),
			Properties: props.(map[string]any),
		})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode dashboard body: %w", err)
	}
	return string(data), nil
}

// resolveValue returns a copy of v with every string leaf resolved.
// Other values are returned as they are.
func resolveValue(v any, env token.Environment) (any, error) {
	switch v := v.(type) {
	case string:
		return token.Resolve(v, env)
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			r, err := token.Resolve(s, env)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			r, err := resolveValue(elem, env)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, elem := range v {
			r, err := resolveValue(elem, env)
			if err != nil {
				return nil, err
			}
			out[i] = r.(map[string]any)
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			r, err := resolveValue(elem, env)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

// isNilWidget reports whether w is nil, including a typed nil pointer.
func isNilWidget(w Widget) bool {
	if w == nil {
		return true
	}
	rv := reflect.ValueOf(w)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
