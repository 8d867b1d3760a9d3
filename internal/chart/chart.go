// Package chart renders forecast series into cartesian figures. One frame
// (time on X, a linear measure on Y) is shared by three mark strategies: a
// temperature line, a wind vector field, and a precipitation/cloud intensity grid.
package chart

import (
	"time"

	"github.com/couchcryptid/weather-map-service/internal/colorscale"
	"github.com/couchcryptid/weather-map-service/internal/domain"
)

// Kind selects the mark strategy.
type Kind int

const (
	Line Kind = iota
	VectorField
	IntensityGrid
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case VectorField:
		return "vector-field"
	case IntensityGrid:
		return "intensity-grid"
	default:
		return "unknown"
	}
}

// Margins around the plotting area, in pixels.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// RenderContext is owned by the page that embeds the charts. IDPrefix keeps
// gradient and marker ids unique when several charts share a document.
type RenderContext struct {
	Width    float64
	Height   float64
	Margin   Margins
	Location *time.Location
	Units    domain.Units
	IDPrefix string
}

// DefaultContext returns the canvas layout used for kind.
func DefaultContext(kind Kind, units domain.Units, loc *time.Location, idPrefix string) RenderContext {
	rc := RenderContext{Location: loc, Units: units, IDPrefix: idPrefix}
	switch kind {
	case VectorField:
		rc.Width, rc.Height = 1000, 600
		rc.Margin = Margins{Top: 80, Right: 120, Bottom: 90, Left: 90}
	case IntensityGrid:
		rc.Width, rc.Height = 900, 450
		rc.Margin = Margins{Top: 50, Right: 60, Bottom: 80, Left: 80}
	default:
		rc.Width, rc.Height = 1000, 600
		rc.Margin = Margins{Top: 80, Right: 80, Bottom: 90, Left: 90}
	}
	return rc
}

func (rc RenderContext) innerSize() (float64, float64) {
	return max(rc.Width-rc.Margin.Left-rc.Margin.Right, 0), max(rc.Height-rc.Margin.Top-rc.Margin.Bottom, 0)
}

func (rc RenderContext) location() *time.Location {
	if rc.Location == nil {
		return time.UTC
	}
	return rc.Location
}

// Options carries the text around a chart.
type Options struct {
	Title       string
	XLabel      string
	YLabel      string
	LegendTitle string
}

// DefaultOptions returns the titles and labels for kind in the given units.
func DefaultOptions(kind Kind, units domain.Units) Options {
	switch kind {
	case VectorField:
		return Options{
			Title:       "Wind Speed & Direction Over Time",
			XLabel:      "Time",
			YLabel:      "Wind Speed (" + units.SpeedLabel() + ")",
			LegendTitle: "Wind Speed (" + units.SpeedLabel() + ")",
		}
	case IntensityGrid:
		return Options{
			Title:       "Rainfall & Cloud Coverage Heatmap",
			XLabel:      "Time",
			YLabel:      "Intensity",
			LegendTitle: "Intensity Scale",
		}
	default:
		return Options{
			Title:       "Temperature Trend Over Time",
			XLabel:      "Time (24-Hour Format)",
			YLabel:      "Temperature (" + units.TemperatureLabel() + ")",
			LegendTitle: "Temperature (" + units.TemperatureLabel() + ")",
		}
	}
}

// MarkType names the primary mark drawn per forecast point.
type MarkType string

const (
	Dot    MarkType = "dot"
	Vector MarkType = "vector"
	Cell   MarkType = "cell"
)

// Mark is one primary mark in plot-area coordinates (origin at the top-left
// of the inner frame).
type Mark struct {
	Type    MarkType
	Time    time.Time
	Value   float64
	X, Y    float64
	X2, Y2  float64 // vector head
	Width   float64 // cell width
	Height  float64 // cell height
	Radius  float64 // dot radius
	Color   string
	Tooltip string
}

// Tick is one axis tick in plot-area coordinates.
type Tick struct {
	Pos   float64
	Label string
}

// Axis is a positioned, labelled axis.
type Axis struct {
	Label string
	Ticks []Tick
}

// Legend is a gradient bar with its own axis, in plot-area coordinates.
type Legend struct {
	Title    string
	X, Y     float64
	Width    float64
	Height   float64
	Vertical bool
	Stops    []colorscale.Stop
	Ticks    []Tick
}

// Figure is the complete, render-ready chart.
type Figure struct {
	Kind    Kind
	Context RenderContext
	Title   string
	XAxis   Axis
	YAxis   Axis
	YDomain [2]float64
	Marks   []Mark
	// LinePath connects the marks for Line charts; empty otherwise.
	LinePath string
	Legend   *Legend
}

// Empty reports whether the figure has no data marks.
func (f Figure) Empty() bool { return len(f.Marks) == 0 }

// Chart renders one kind of figure.
type Chart struct {
	kind     Kind
	opts     Options
	strategy strategy
}

// New creates a chart of the given kind.
func New(kind Kind, opts Options) *Chart {
	var s strategy
	switch kind {
	case VectorField:
		s = vectorStrategy{}
	case IntensityGrid:
		s = intensityStrategy{}
	default:
		kind = Line
		s = lineStrategy{}
	}
	return &Chart{kind: kind, opts: opts, strategy: s}
}

// Kind reports the mark strategy.
func (c *Chart) Kind() Kind { return c.kind }

// Render lays out the figure for points. It is pure: scales are derived from
// points on every call. Empty input yields a figure with no marks.
func (c *Chart) Render(rc RenderContext, points []domain.ForecastPoint) Figure {
	fig := Figure{
		Kind:    c.kind,
		Context: rc,
		Title:   c.opts.Title,
		XAxis:   Axis{Label: c.opts.XLabel},
		YAxis:   Axis{Label: c.opts.YLabel},
	}
	if len(points) == 0 {
		return fig
	}

	points = domain.SortedForecast(points)
	lo, hi := c.strategy.yDomain(points)
	f := newFrame(rc, points, lo, hi)

	fig.YDomain = [2]float64{lo, hi}
	fig.XAxis.Ticks = f.timeTicks(c.strategy.timeTickCount(), c.strategy.timeFormat())
	fig.YAxis.Ticks = f.valueTicks(10)
	fig.Marks = c.strategy.marks(f, points)
	if c.kind == Line {
		fig.LinePath = linePath(fig.Marks)
	}
	fig.Legend = c.strategy.legend(f, points, c.opts.LegendTitle)
	return fig
}
