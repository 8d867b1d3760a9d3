package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/colorscale"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/scale"
)

const (
	dotRadius   = 6
	dotColor    = "red"
	lineColor   = "#60a5fa"
	arrowScale  = 8 // pixels per unit of wind speed
	cellOpacity = 0.9
)

// strategy supplies everything that differs between chart kinds.
type strategy interface {
	yDomain(points []domain.ForecastPoint) (lo, hi float64)
	marks(f frame, points []domain.ForecastPoint) []Mark
	legend(f frame, points []domain.ForecastPoint, title string) *Legend
	timeTickCount() int
	timeFormat() func(time.Time) string
}

func extent(points []domain.ForecastPoint, value func(domain.ForecastPoint) float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		v := value(p)
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

func temperature(p domain.ForecastPoint) float64 { return p.Temperature }
func windSpeed(p domain.ForecastPoint) float64   { return p.WindSpeed }
func intensity(p domain.ForecastPoint) float64   { return p.Intensity() }

// lineStrategy draws the temperature trend as a line with one dot per point.
type lineStrategy struct{}

func (lineStrategy) yDomain(points []domain.ForecastPoint) (float64, float64) {
	lo, hi := extent(points, temperature)
	return lo - 2, hi + 2
}

func (lineStrategy) marks(f frame, points []domain.ForecastPoint) []Mark {
	loc := f.rc.location()
	unit := f.rc.Units.TemperatureLabel()
	out := make([]Mark, len(points))
	for i, p := range points {
		out[i] = Mark{
			Type:    Dot,
			Time:    p.Time,
			Value:   p.Temperature,
			X:       f.x.Map(p.Time),
			Y:       f.y.Map(p.Temperature),
			Radius:  dotRadius,
			Color:   dotColor,
			Tooltip: fmt.Sprintf("Time: %s\nTemp: %s%s", p.Time.In(loc).Format("15:04"), formatNumber(p.Temperature), unit),
		}
	}
	return out
}

func (lineStrategy) legend(f frame, points []domain.ForecastPoint, title string) *Legend {
	lo, hi := extent(points, temperature)
	const width = 250.0
	stops := []colorscale.Stop{
		{Offset: 0, Color: "#1e40af"},
		{Offset: 0.5, Color: "#3b82f6"},
		{Offset: 1, Color: "#60a5fa"},
	}
	return &Legend{
		Title:  title,
		X:      f.width - width,
		Y:      f.height + 40,
		Width:  width,
		Height: 12,
		Stops:  stops,
		Ticks:  legendTicks(lo, hi, 0, width, 5),
	}
}

func (lineStrategy) timeTickCount() int { return 8 }

func (lineStrategy) timeFormat() func(time.Time) string { return clock24 }

// vectorStrategy draws one arrow per point: the tail sits at (time, speed) and
// the head points along the reported bearing, eight pixels per unit of speed.
type vectorStrategy struct{}

func (vectorStrategy) yDomain(points []domain.ForecastPoint) (float64, float64) {
	_, hi := extent(points, windSpeed)
	return 0, hi + 2
}

func (vectorStrategy) marks(f frame, points []domain.ForecastPoint) []Mark {
	loc := f.rc.location()
	unit := f.rc.Units.SpeedLabel()
	_, maxSpeed := extent(points, windSpeed)
	colors := colorscale.NewSequential(colorscale.Turbo, 0, maxSpeed)

	out := make([]Mark, len(points))
	for i, p := range points {
		x, y := f.x.Map(p.Time), f.y.Map(p.WindSpeed)
		dx, dy := WindVector(p.WindSpeed, p.WindDirection)
		out[i] = Mark{
			Type:  Vector,
			Time:  p.Time,
			Value: p.WindSpeed,
			X:     x,
			Y:     y,
			X2:    x + dx,
			Y2:    y + dy,
			Color: colors.Color(p.WindSpeed),
			Tooltip: fmt.Sprintf("Time: %s\nSpeed: %s %s\nDirection: %s°",
				p.Time.In(loc).Format("15:04"), formatNumber(p.WindSpeed), unit, formatNumber(p.WindDirection)),
		}
	}
	return out
}

// WindVector returns the screen offset of an arrow for a wind speed and a
// direction in degrees clockwise from north. Zero speed yields a zero vector.
func WindVector(speed, directionDeg float64) (dx, dy float64) {
	if speed == 0 || math.IsNaN(speed) || math.IsNaN(directionDeg) {
		return 0, 0
	}
	theta := directionDeg * math.Pi / 180
	length := arrowScale * speed
	return length * math.Sin(theta), -length * math.Cos(theta)
}

func (vectorStrategy) legend(f frame, points []domain.ForecastPoint, title string) *Legend {
	_, hi := extent(points, windSpeed)
	top, bottom := 50.0, f.height-10
	if bottom < top {
		bottom = top
	}
	return &Legend{
		Title:    title,
		X:        f.width + 40,
		Y:        top,
		Width:    20,
		Height:   bottom - top,
		Vertical: true,
		Stops:    colorscale.NewSequential(colorscale.Turbo, 0, 1).Stops(11),
		Ticks:    legendTicks(0, hi, bottom-top, 0, 5),
	}
}

func (vectorStrategy) timeTickCount() int { return 6 }

func (vectorStrategy) timeFormat() func(time.Time) string { return multiScale }

// intensityStrategy draws one full-height cell per point coloured by
// precipitation, or by cloud coverage when precipitation is not reported.
type intensityStrategy struct{}

func (intensityStrategy) yDomain(points []domain.ForecastPoint) (float64, float64) {
	_, hi := extent(points, intensity)
	return 0, max(hi, 0)
}

func (intensityStrategy) marks(f frame, points []domain.ForecastPoint) []Mark {
	loc := f.rc.location()
	_, hi := extent(points, intensity)
	colors := colorscale.NewSequential(colorscale.Blues, 0, hi)
	cellWidth := f.width / float64(len(points))

	out := make([]Mark, len(points))
	for i, p := range points {
		v := p.Intensity()
		x := f.x.Map(p.Time)
		if f.single() {
			x = 0
		}
		source := "Cloud coverage: " + formatNumber(v) + "%"
		if p.Precipitation != nil {
			source = "Precipitation: " + formatNumber(v) + " mm"
		}
		out[i] = Mark{
			Type:    Cell,
			Time:    p.Time,
			Value:   v,
			X:       x,
			Y:       0,
			Width:   cellWidth,
			Height:  f.height,
			Color:   colors.Color(v),
			Tooltip: "Time: " + p.Time.In(loc).Format("Mon 15:04") + "\n" + source,
		}
	}
	return out
}

func (intensityStrategy) legend(f frame, points []domain.ForecastPoint, title string) *Legend {
	_, hi := extent(points, intensity)
	const width = 300.0
	return &Legend{
		Title:  title,
		X:      f.width/2 - width/2,
		Y:      f.height + 50,
		Width:  width,
		Height: 15,
		Stops:  colorscale.NewSequential(colorscale.Blues, 0, 1).Stops(9),
		Ticks:  legendTicks(0, hi, 0, width, 5),
	}
}

func (intensityStrategy) timeTickCount() int { return 6 }

func (intensityStrategy) timeFormat() func(time.Time) string { return multiScale }

func legendTicks(lo, hi, r0, r1 float64, count int) []Tick {
	frameScale := scale.NewLinear(lo, hi, r0, r1)
	vals := frameScale.Ticks(count)
	out := make([]Tick, 0, len(vals))
	for _, v := range vals {
		out = append(out, Tick{Pos: frameScale.Map(v), Label: formatNumber(v)})
	}
	return out
}

// linePath joins dot centres with straight segments.
func linePath(marks []Mark) string {
	var b strings.Builder
	for i, m := range marks {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(strconv.FormatFloat(m.X, 'f', 2, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(m.Y, 'f', 2, 64))
	}
	return b.String()
}
