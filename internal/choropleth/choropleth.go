// Package choropleth turns projected regions into coloured, clickable shapes.
package choropleth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/colorscale"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/projection"
	"github.com/couchcryptid/weather-map-service/internal/scale"
)

const (
	HighlightFill   = "#003366"
	NoDataFill      = "#cccccc"
	StrokeColor     = "#ffffff"
	LabelFill       = "#002244"
	BackgroundFill  = "#f0f5fa"
	EnterTransition = 200 * time.Millisecond
	LeaveTransition = 300 * time.Millisecond

	defaultLegendTitle = "State Index"
)

// ErrUnknownRegion is returned for interactions naming a shape that was not rendered.
var ErrUnknownRegion = errors.New("unknown region")

// SelectionHandler receives region clicks. The map never routes on its own.
type SelectionHandler interface {
	HandleSelection(ctx context.Context, sel domain.Selection) error
}

// SelectionHandlerFunc adapts a function to SelectionHandler.
type SelectionHandlerFunc func(ctx context.Context, sel domain.Selection) error

func (f SelectionHandlerFunc) HandleSelection(ctx context.Context, sel domain.Selection) error {
	return f(ctx, sel)
}

// Shape is one drawn region.
type Shape struct {
	Region       string
	Index        int
	Path         string // SVG path data in canvas pixels
	OriginalFill string // colour assigned at render time, restored on pointer leave
	Fill         string // colour currently shown
	Transition   time.Duration
	Hovered      bool
}

// Label marks a region at its projected centroid. Regions without a projectable
// centroid are labelled at the canvas origin.
type Label struct {
	Region string
	X, Y   float64
	Placed bool
}

// Legend describes the gradient bar and its axis.
type Legend struct {
	Title  string
	X, Y   float64
	Width  float64
	Height float64
	Min    float64
	Max    float64
	Stops  []colorscale.Stop
	Ticks  []float64
	Scale  scale.Linear
}

// Options tunes a render.
type Options struct {
	// Values switches colouring from iteration index to a per-region value.
	// Regions missing from the map are drawn with NoDataFill.
	Values      map[string]float64
	LegendTitle string
	Handler     SelectionHandler
}

// Map is the rendered choropleth and its pointer state. Shapes are rebuilt
// from scratch by Render; only hover state changes afterwards.
type Map struct {
	width, height float64

	mu      sync.RWMutex
	shapes  []Shape
	index   map[string]int
	labels  []Label
	legend  Legend
	handler SelectionHandler
}

// Render draws every region under proj. Fill is a function of the region's
// position in regions, or of its value when Options.Values is set.
func Render(proj *projection.Projection, regions []domain.Region, opts Options) (*Map, error) {
	if proj == nil {
		return nil, errors.New("choropleth: nil projection")
	}
	width, height := proj.Size()

	lo, hi := 0.0, float64(max(len(regions)-1, 0))
	valueMode := opts.Values != nil
	if valueMode {
		lo, hi = valueDomain(opts.Values)
	}
	colors := colorscale.NewSequential(colorscale.Blues, lo, hi)

	m := &Map{
		width:   width,
		height:  height,
		shapes:  make([]Shape, 0, len(regions)),
		index:   make(map[string]int, len(regions)),
		labels:  make([]Label, 0, len(regions)),
		handler: opts.Handler,
	}

	for i, r := range regions {
		if _, dup := m.index[r.Name]; dup {
			return nil, fmt.Errorf("choropleth: duplicate region %q", r.Name)
		}

		fill := colors.Color(float64(i))
		if valueMode {
			if v, ok := opts.Values[r.Name]; ok {
				fill = colors.Color(v)
			} else {
				fill = NoDataFill
			}
		}

		m.index[r.Name] = len(m.shapes)
		m.shapes = append(m.shapes, Shape{
			Region:       r.Name,
			Index:        i,
			Path:         pathData(proj, r.Geometry),
			OriginalFill: fill,
			Fill:         fill,
		})
		m.labels = append(m.labels, label(proj, r))
	}

	title := opts.LegendTitle
	if title == "" {
		title = defaultLegendTitle
	}
	m.legend = newLegend(title, width, height, colors)
	return m, nil
}

func valueDomain(values map[string]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func label(proj *projection.Projection, r domain.Region) Label {
	if r.HasCentroid {
		if pt, ok := proj.Project(r.Centroid); ok {
			return Label{Region: r.Name, X: pt.X, Y: pt.Y, Placed: true}
		}
	}
	return Label{Region: r.Name}
}

func newLegend(title string, width, height float64, colors colorscale.Sequential) Legend {
	const barHeight, barWidth = 200.0, 20.0
	lo, hi := colors.Domain()
	x, y := width-60, height/3
	axis := scale.NewLinear(lo, hi, barHeight, 0)
	return Legend{
		Title:  title,
		X:      x,
		Y:      y,
		Width:  barWidth,
		Height: barHeight,
		Min:    lo,
		Max:    hi,
		Stops:  colors.Stops(9),
		Ticks:  axis.Ticks(6),
		Scale:  axis,
	}
}

// pathData renders polygons as absolute SVG path commands. Unprojectable
// vertices are dropped; rings left with fewer than two points are skipped.
func pathData(proj *projection.Projection, g domain.Geometry) string {
	var b strings.Builder
	for _, poly := range g.Polygons {
		for _, ring := range poly {
			pts := proj.ProjectRing(ring)
			if len(pts) < 2 {
				continue
			}
			for i, p := range pts {
				if i == 0 {
					b.WriteByte('M')
				} else {
					b.WriteByte('L')
				}
				b.WriteString(strconv.FormatFloat(p.X, 'f', 2, 64))
				b.WriteByte(',')
				b.WriteString(strconv.FormatFloat(p.Y, 'f', 2, 64))
			}
			b.WriteByte('Z')
		}
	}
	return b.String()
}

// PointerEnter highlights a shape.
func (m *Map) PointerEnter(region string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[region]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	s := &m.shapes[i]
	s.Fill = HighlightFill
	s.Transition = EnterTransition
	s.Hovered = true
	return nil
}

// PointerLeave restores the fill recorded at render time.
func (m *Map) PointerLeave(region string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[region]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	s := &m.shapes[i]
	s.Fill = s.OriginalFill
	s.Transition = LeaveTransition
	s.Hovered = false
	return nil
}

// Click forwards a selection for the named shape to the handler.
func (m *Map) Click(ctx context.Context, region string) error {
	m.mu.RLock()
	_, ok := m.index[region]
	handler := m.handler
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	if handler == nil {
		return nil
	}
	return handler.HandleSelection(ctx, domain.Selection{Region: region})
}

// Shape returns a copy of the named shape.
func (m *Map) Shape(region string) (Shape, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[region]
	if !ok {
		return Shape{}, false
	}
	return m.shapes[i], true
}

// Shapes returns a copy of every shape in render order.
func (m *Map) Shapes() []Shape {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Shape(nil), m.shapes...)
}

// Labels returns one label per region in render order.
func (m *Map) Labels() []Label {
	return append([]Label(nil), m.labels...)
}

// Legend returns the legend layout.
func (m *Map) Legend() Legend { return m.legend }

// Size is the canvas size.
func (m *Map) Size() (width, height float64) { return m.width, m.height }
