package choropleth

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

// SVGOptions controls the document written by WriteSVG.
type SVGOptions struct {
	// Href returns the link target for a region; nil disables links.
	Href func(region string) string
	// ID prefixes element ids so several maps can share a page.
	ID string
}

const mapCSS = `
.region path { cursor: pointer; stroke: ` + StrokeColor + `; stroke-width: 1; transition: fill 300ms ease; }
.region:hover path, .region path:hover { fill: ` + HighlightFill + `; transition: fill 200ms ease; }
.label { pointer-events: none; font-size: 10px; fill: ` + LabelFill + `; text-anchor: middle; }
.legend-title { font-size: 14px; font-weight: bold; fill: black; }
.legend-tick { font-size: 10px; fill: #333333; }
`

// WriteSVG renders the map as a standalone SVG document.
func (m *Map) WriteSVG(w io.Writer, opts SVGOptions) error {
	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)

	m.mu.RLock()
	shapes := append([]Shape(nil), m.shapes...)
	m.mu.RUnlock()

	width, height := int(math.Ceil(m.width)), int(math.Ceil(m.height))
	canvas.Start(width, height,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height),
		`role="img"`,
		`aria-label="Map of regions"`)
	canvas.Style("text/css", mapCSS)
	canvas.Rect(0, 0, width, height, "fill:"+BackgroundFill)

	gradientID := opts.ID + "legendGradient"
	canvas.Def()
	canvas.LinearGradient(gradientID, 0, 100, 0, 0, m.gradientStops())
	canvas.DefEnd()

	canvas.Group(`class="regions"`)
	for _, s := range shapes {
		attrs := []string{
			`fill="` + s.Fill + `"`,
			`data-region="` + html.EscapeString(s.Region) + `"`,
			`data-original-fill="` + s.OriginalFill + `"`,
			`data-index="` + strconv.Itoa(s.Index) + `"`,
		}
		if opts.Href != nil {
			canvas.Link(html.EscapeString(opts.Href(s.Region)), html.EscapeString(s.Region))
		}
		canvas.Group(`class="region"`)
		canvas.Title(s.Region)
		canvas.Path(s.Path, attrs...)
		canvas.Gend()
		if opts.Href != nil {
			canvas.LinkEnd()
		}
	}
	canvas.Gend()

	canvas.Group(`class="labels"`)
	for _, l := range m.labels {
		canvas.Text(round(l.X), round(l.Y), l.Region, `class="label"`)
	}
	canvas.Gend()

	m.writeLegend(canvas, gradientID)

	canvas.End()
	return bw.Flush()
}

func (m *Map) gradientStops() []svg.Offcolor {
	stops := make([]svg.Offcolor, len(m.legend.Stops))
	for i, s := range m.legend.Stops {
		stops[i] = svg.Offcolor{Offset: uint8(math.Round(s.Offset * 100)), Color: s.Color, Opacity: 1}
	}
	return stops
}

func (m *Map) writeLegend(canvas *svg.SVG, gradientID string) {
	lg := m.legend
	x, y := round(lg.X), round(lg.Y)

	canvas.Group(`class="legend"`)
	canvas.Rect(x-25, y, round(lg.Width), round(lg.Height), "fill:url(#"+gradientID+")")
	canvas.Line(x, y, x, y+round(lg.Height), "stroke:#333333")
	for _, tk := range lg.Ticks {
		ty := y + round(lg.Scale.Map(tk))
		canvas.Line(x, ty, x+6, ty, "stroke:#333333")
		canvas.Text(x+9, ty+3, strconv.FormatFloat(tk, 'f', -1, 64), `class="legend-tick"`)
	}
	canvas.Text(x-30, y-10, lg.Title, `class="legend-title"`)
	canvas.Gend()
}

func round(v float64) int {
	return int(math.Round(v))
}
