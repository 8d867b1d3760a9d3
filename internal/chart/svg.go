package chart

import (
	"bufio"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

const (
	backgroundFill = "#1e293b"
	textFill       = "#f8fafc"
	axisStroke     = "#cbd5e1"
)

const chartCSS = `
text { font-family: sans-serif; fill: ` + textFill + `; }
.chart-title { font-size: 16px; font-weight: bold; text-anchor: middle; }
.axis-label { font-size: 14px; text-anchor: middle; }
.tick { font-size: 12px; }
.tick-x { text-anchor: middle; }
.tick-y { text-anchor: end; }
.legend-title { font-size: 14px; font-weight: bold; }
.empty { font-size: 16px; text-anchor: middle; }
.mark:hover { opacity: 0.7; }
`

// WriteSVG renders the figure as a standalone SVG document.
func (f Figure) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)

	rc := f.Context
	width, height := px(rc.Width), px(rc.Height)
	innerW, innerH := rc.innerSize()

	canvas.Start(width, height,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height),
		`role="img"`,
		fmt.Sprintf(`data-kind="%s"`, f.Kind))
	canvas.Style("text/css", chartCSS)
	canvas.Rect(0, 0, width, height, "fill:"+backgroundFill)

	gradientID := rc.IDPrefix + "legendGradient"
	arrowID := rc.IDPrefix + "arrowhead"
	canvas.Def()
	if f.Kind == VectorField {
		canvas.Marker(arrowID, 5, 5, 6, 6, `viewBox="0 0 10 10"`, `orient="auto-start-reverse"`)
		canvas.Path("M 0 0 L 10 5 L 0 10 L 3 5 Z", "fill:red")
		canvas.MarkerEnd()
	}
	if f.Legend != nil {
		x2, y1 := uint8(100), uint8(0)
		if f.Legend.Vertical {
			x2, y1 = 0, 100
		}
		canvas.LinearGradient(gradientID, 0, y1, x2, 0, gradientStops(f.Legend))
	}
	canvas.DefEnd()

	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", px(rc.Margin.Left), px(rc.Margin.Top)))
	canvas.Text(px(innerW/2), -20, f.Title, `class="chart-title"`)

	if f.Empty() {
		canvas.Text(px(innerW/2), px(innerH/2), "No forecast data available", `class="empty"`)
		canvas.Gend()
		canvas.End()
		return bw.Flush()
	}

	f.writeMarks(canvas, arrowID)
	f.writeAxes(canvas, innerW, innerH)
	if f.Legend != nil {
		writeLegend(canvas, f.Legend, gradientID)
	}

	canvas.Gend()
	canvas.End()
	return bw.Flush()
}

func (f Figure) writeMarks(canvas *svg.SVG, arrowID string) {
	canvas.Group(`class="marks"`)
	if f.LinePath != "" {
		canvas.Path(f.LinePath, fmt.Sprintf("fill:none;stroke:%s;stroke-width:3", lineColor))
	}
	for _, m := range f.Marks {
		canvas.Group(`class="mark"`, fmt.Sprintf(`data-time="%d"`, m.Time.Unix()))
		canvas.Title(m.Tooltip)
		switch m.Type {
		case Dot:
			canvas.Circle(px(m.X), px(m.Y), px(m.Radius), "fill:"+m.Color)
		case Vector:
			canvas.Line(px(m.X), px(m.Y), px(m.X2), px(m.Y2),
				fmt.Sprintf("stroke:%s;stroke-width:2", m.Color),
				fmt.Sprintf(`marker-end="url(#%s)"`, arrowID))
		case Cell:
			canvas.Rect(px(m.X), px(m.Y), px(math.Ceil(m.Width)), px(m.Height),
				fmt.Sprintf("fill:%s;opacity:%g;stroke:#1e3a8a", m.Color, cellOpacity))
		}
		canvas.Gend()
	}
	canvas.Gend()
}

func (f Figure) writeAxes(canvas *svg.SVG, innerW, innerH float64) {
	w, h := px(innerW), px(innerH)
	stroke := "stroke:" + axisStroke

	canvas.Group(`class="axis axis-x"`)
	canvas.Line(0, h, w, h, stroke)
	for _, t := range f.XAxis.Ticks {
		x := px(t.Pos)
		canvas.Line(x, h, x, h+6, stroke)
		canvas.Text(x, h+22, t.Label, `class="tick tick-x"`)
	}
	canvas.Text(w/2, h+60, f.XAxis.Label, `class="axis-label"`)
	canvas.Gend()

	canvas.Group(`class="axis axis-y"`)
	canvas.Line(0, 0, 0, h, stroke)
	for _, t := range f.YAxis.Ticks {
		y := px(t.Pos)
		canvas.Line(-6, y, 0, y, stroke)
		canvas.Text(-9, y+4, t.Label, `class="tick tick-y"`)
	}
	canvas.Text(-h/2, -60, f.YAxis.Label, `class="axis-label"`, `transform="rotate(-90)"`)
	canvas.Gend()
}

func writeLegend(canvas *svg.SVG, lg *Legend, gradientID string) {
	x, y := px(lg.X), px(lg.Y)
	w, h := px(lg.Width), px(lg.Height)
	stroke := "stroke:" + axisStroke

	canvas.Group(`class="legend"`)
	canvas.Rect(x, y, w, h, "fill:url(#"+gradientID+")")
	for _, t := range lg.Ticks {
		if lg.Vertical {
			ty := y + px(t.Pos)
			canvas.Line(x+w, ty, x+w+6, ty, stroke)
			canvas.Text(x+w+9, ty+4, t.Label, `class="tick"`)
			continue
		}
		tx := x + px(t.Pos)
		canvas.Line(tx, y+h, tx, y+h+6, stroke)
		canvas.Text(tx, y+h+20, t.Label, `class="tick tick-x"`)
	}
	canvas.Text(x, y-8, lg.Title, `class="legend-title"`)
	canvas.Gend()
}

func gradientStops(lg *Legend) []svg.Offcolor {
	out := make([]svg.Offcolor, len(lg.Stops))
	for i, s := range lg.Stops {
		out[i] = svg.Offcolor{Offset: uint8(math.Round(s.Offset * 100)), Color: s.Color, Opacity: 1}
	}
	return out
}

func px(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
