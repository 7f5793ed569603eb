package cloudwatch

import "github.com/jpalmerr/watchful/token"

const (
	defaultTextWidth   = 6
	defaultTextHeight  = 2
	defaultGraphWidth  = 6
	defaultGraphHeight = 6
)

// Widget is a visual unit placed on a [Dashboard].
//
// Widgets are opaque values: the dashboard only needs their size and the
// properties object CloudWatch renders. Callers may supply their own types.
type Widget interface {
	// Type is the CloudWatch widget type, e.g. "text" or "metric".
	Type() string

	// Width is the number of grid columns occupied, 1 to [GridWidth].
	Width() int

	// Height is the number of grid rows occupied.
	Height() int

	// Properties is the widget's "properties" object in the dashboard body.
	Properties() map[string]any
}

// clampWidth keeps a requested width within the dashboard grid.
func clampWidth(w, def int) int {
	switch {
	case w <= 0:
		return def
	case w > GridWidth:
		return GridWidth
	default:
		return w
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// TextWidgetProps configures a [TextWidget].
type TextWidgetProps struct {
	// Markdown is the widget content.
	Markdown string

	// Width defaults to 6 columns.
	Width int

	// Height defaults to 2 rows.
	Height int
}

// TextWidget displays a block of markdown.
type TextWidget struct {
	markdown string
	width    int
	height   int
}

// NewTextWidget creates a [TextWidget].
func NewTextWidget(props TextWidgetProps) TextWidget {
	return TextWidget{
		markdown: props.Markdown,
		width:    clampWidth(props.Width, defaultTextWidth),
		height:   orDefault(props.Height, defaultTextHeight),
	}
}

// Markdown returns the widget content.
func (w TextWidget) Markdown() string { return w.markdown }

func (w TextWidget) Type() string { return "text" }
func (w TextWidget) Width() int   { return w.width }
func (w TextWidget) Height() int  { return w.height }

func (w TextWidget) Properties() map[string]any {
	return map[string]any{"markdown": w.markdown}
}

// HorizontalAnnotation draws a horizontal line on a graph, typically a
// threshold or a provisioned limit.
type HorizontalAnnotation struct {
	Value float64
	Label string
	Color string
}

// GraphWidgetProps configures a [GraphWidget].
type GraphWidgetProps struct {
	Title string

	// Left and Right are the metrics plotted on each y axis.
	Left  []Metric
	Right []Metric

	LeftAnnotations []HorizontalAnnotation

	// Stacked renders the series as a stacked area chart.
	Stacked bool

	// Width and Height default to 6.
	Width  int
	Height int

	// Region defaults to the deployment region.
	Region string
}

// GraphWidget plots one or more metrics as a time series.
type GraphWidget struct {
	props GraphWidgetProps
}

// NewGraphWidget creates a [GraphWidget]. The metric and annotation slices
// are copied.
func NewGraphWidget(props GraphWidgetProps) GraphWidget {
	props.Left = append([]Metric(nil), props.Left...)
	props.Right = append([]Metric(nil), props.Right...)
	props.LeftAnnotations = append([]HorizontalAnnotation(nil), props.LeftAnnotations...)
	props.Width = clampWidth(props.Width, defaultGraphWidth)
	props.Height = orDefault(props.Height, defaultGraphHeight)
	if props.Region == "" {
		props.Region = token.Region
	}
	return GraphWidget{props: props}
}

// Title returns the graph title.
func (w GraphWidget) Title() string { return w.props.Title }

// Left returns a copy of the metrics on the left axis.
func (w GraphWidget) Left() []Metric { return append([]Metric(nil), w.props.Left...) }

// LeftAnnotations returns a copy of the left-axis annotations.
func (w GraphWidget) LeftAnnotations() []HorizontalAnnotation {
	return append([]HorizontalAnnotation(nil), w.props.LeftAnnotations...)
}

func (w GraphWidget) Type() string { return "metric" }
func (w GraphWidget) Width() int   { return w.props.Width }
func (w GraphWidget) Height() int  { return w.props.Height }

func (w GraphWidget) Properties() map[string]any {
	metrics := make([]any, 0, len(w.props.Left)+len(w.props.Right))
	for _, m := range w.props.Left {
		metrics = append(metrics, m.graphEntry(""))
	}
	for _, m := range w.props.Right {
		metrics = append(metrics, m.graphEntry("right"))
	}

	props := map[string]any{
		"view":    "timeSeries",
		"title":   w.props.Title,
		"region":  w.props.Region,
		"stacked": w.props.Stacked,
		"metrics": metrics,
	}

	if len(w.props.LeftAnnotations) > 0 {
		horizontal := make([]map[string]any, 0, len(w.props.LeftAnnotations))
		for _, a := range w.props.LeftAnnotations {
			ann := map[string]any{"value": a.Value, "yAxis": "left"}
			if a.Label != "" {
				ann["label"] = a.Label
			}
			if a.Color != "" {
				ann["color"] = a.Color
			}
			horizontal = append(horizontal, ann)
		}
		props["annotations"] = map[string]any{"horizontal": horizontal}
	}

	return props
}
