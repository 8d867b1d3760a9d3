package chart

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func forecast(n int) []domain.ForecastPoint {
	out := make([]domain.ForecastPoint, n)
	for i := range out {
		out[i] = domain.ForecastPoint{
			Time:          base.Add(time.Duration(i*3) * time.Hour),
			Temperature:   15 + float64(i%5),
			Humidity:      60,
			WindSpeed:     float64(i % 7),
			WindDirection: float64(i * 45 % 360),
			CloudCoverage: float64(i * 10 % 100),
		}
	}
	return out
}

var kinds = []Kind{Line, VectorField, IntensityGrid}

func render(kind Kind, points []domain.ForecastPoint) Figure {
	rc := DefaultContext(kind, domain.UnitsMetric, time.UTC, "t-")
	return New(kind, DefaultOptions(kind, domain.UnitsMetric)).Render(rc, points)
}

func TestRender_EmptyInput(t *testing.T) {
	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			for _, pts := range [][]domain.ForecastPoint{nil, {}} {
				var fig Figure
				require.NotPanics(t, func() { fig = render(k, pts) })
				assert.True(t, fig.Empty())
				assert.Empty(t, fig.Marks)
				assert.Nil(t, fig.Legend)

				var buf bytes.Buffer
				require.NoError(t, fig.WriteSVG(&buf))
				assert.Contains(t, buf.String(), "No forecast data available")
			}
		})
	}
}

func TestRender_OneMarkPerPoint(t *testing.T) {
	want := map[Kind]MarkType{Line: Dot, VectorField: Vector, IntensityGrid: Cell}
	pts := forecast(40)

	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			fig := render(k, pts)
			require.Len(t, fig.Marks, 40)

			innerW, _ := fig.Context.innerSize()
			for i, m := range fig.Marks {
				assert.Equal(t, want[k], m.Type)
				assert.Equal(t, pts[i].Time, m.Time)
				assert.InDelta(t, float64(i)/39*innerW, m.X, 1e-9, "x follows the point's own timestamp")
				assert.NotEmpty(t, m.Tooltip)
			}
		})
	}
}

func TestRender_UnorderedInputIsSorted(t *testing.T) {
	pts := forecast(5)
	shuffled := []domain.ForecastPoint{pts[3], pts[0], pts[4], pts[1], pts[2]}

	fig := render(Line, shuffled)
	require.Len(t, fig.Marks, 5)
	for i := 1; i < len(fig.Marks); i++ {
		assert.True(t, fig.Marks[i-1].Time.Before(fig.Marks[i].Time))
		assert.Less(t, fig.Marks[i-1].X, fig.Marks[i].X)
	}
	assert.Equal(t, pts[3].Time, shuffled[0].Time, "input is not reordered")
}

func TestRender_SingleTimestampUsesMidpoint(t *testing.T) {
	pts := forecast(1)
	for _, k := range []Kind{Line, VectorField} {
		fig := render(k, pts)
		innerW, _ := fig.Context.innerSize()
		require.Len(t, fig.Marks, 1)
		assert.InDelta(t, innerW/2, fig.Marks[0].X, 1e-9)
	}
}

func TestRender_YDomains(t *testing.T) {
	pts := []domain.ForecastPoint{
		{Time: base, Temperature: 10, WindSpeed: 3, CloudCoverage: 40},
		{Time: base.Add(3 * time.Hour), Temperature: 20, WindSpeed: 7, Precipitation: ptr(2.5), CloudCoverage: 90},
	}

	assert.Equal(t, [2]float64{8, 22}, render(Line, pts).YDomain)
	assert.Equal(t, [2]float64{0, 9}, render(VectorField, pts).YDomain)
	assert.Equal(t, [2]float64{0, 40}, render(IntensityGrid, pts).YDomain)
}

func TestWindVector(t *testing.T) {
	for _, dir := range []float64{0, 45, 90, 180, 270, 359} {
		dx, dy := WindVector(0, dir)
		assert.Zero(t, dx)
		assert.Zero(t, dy)
	}

	dx, dy := WindVector(2, 0)
	assert.InDelta(t, 0, dx, 1e-9)
	assert.InDelta(t, -16, dy, 1e-9, "north points up the screen")

	dx, dy = WindVector(1, 90)
	assert.InDelta(t, 8, dx, 1e-9)
	assert.InDelta(t, 0, dy, 1e-9)

	dx, dy = WindVector(3, 225)
	assert.InDelta(t, 24, math.Hypot(dx, dy), 1e-9)
}

func TestRender_ZeroSpeedVectorHasZeroLength(t *testing.T) {
	pts := []domain.ForecastPoint{
		{Time: base, WindSpeed: 0, WindDirection: 135},
		{Time: base.Add(3 * time.Hour), WindSpeed: 4, WindDirection: 90},
	}
	fig := render(VectorField, pts)

	assert.Equal(t, fig.Marks[0].X, fig.Marks[0].X2)
	assert.Equal(t, fig.Marks[0].Y, fig.Marks[0].Y2)
	assert.InDelta(t, 32, fig.Marks[1].X2-fig.Marks[1].X, 1e-9)
}

func TestRender_IntensityCells(t *testing.T) {
	pts := []domain.ForecastPoint{
		{Time: base, CloudCoverage: 80},
		{Time: base.Add(3 * time.Hour), Precipitation: ptr(0), CloudCoverage: 100},
		{Time: base.Add(6 * time.Hour), Precipitation: ptr(4), CloudCoverage: 10},
	}
	fig := render(IntensityGrid, pts)

	innerW, innerH := fig.Context.innerSize()
	require.Len(t, fig.Marks, 3)
	for _, m := range fig.Marks {
		assert.InDelta(t, innerW/3, m.Width, 1e-9)
		assert.Equal(t, innerH, m.Height)
	}
	assert.Equal(t, 80.0, fig.Marks[0].Value, "cloud coverage when precipitation is absent")
	assert.Equal(t, 0.0, fig.Marks[1].Value, "reported zero precipitation wins over clouds")
	assert.Equal(t, "#08306b", fig.Marks[0].Color)
	assert.Contains(t, fig.Marks[0].Tooltip, "Cloud coverage: 80%")
	assert.Contains(t, fig.Marks[2].Tooltip, "Precipitation: 4 mm")
}

func TestRender_TooltipMatchesMark(t *testing.T) {
	pts := []domain.ForecastPoint{
		{Time: base.Add(15 * time.Hour), Temperature: 21.5},
		{Time: base.Add(18 * time.Hour), Temperature: 19},
	}
	fig := render(Line, pts)

	assert.Equal(t, "Time: 15:00\nTemp: 21.5°C", fig.Marks[0].Tooltip)
	assert.Equal(t, 21.5, fig.Marks[0].Value)
	assert.Equal(t, "Time: 18:00\nTemp: 19°C", fig.Marks[1].Tooltip)
}

func TestRender_TimeTicksUse24HourLabels(t *testing.T) {
	fig := render(Line, forecast(8))
	require.NotEmpty(t, fig.XAxis.Ticks)
	for _, tk := range fig.XAxis.Ticks {
		_, err := time.Parse("15:04", tk.Label)
		assert.NoError(t, err, tk.Label)
	}
	assert.Equal(t, "Time (24-Hour Format)", fig.XAxis.Label)
	assert.Equal(t, "Temperature (°C)", fig.YAxis.Label)
}

func TestRender_IsPure(t *testing.T) {
	c := New(VectorField, DefaultOptions(VectorField, domain.UnitsMetric))
	rc := DefaultContext(VectorField, domain.UnitsMetric, time.UTC, "")

	small := c.Render(rc, forecast(3))
	large := c.Render(rc, forecast(20))
	again := c.Render(rc, forecast(3))

	assert.Equal(t, small, again)
	assert.NotEqual(t, small.YDomain, large.YDomain)
}

func TestWriteSVG(t *testing.T) {
	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, render(k, forecast(10)).WriteSVG(&buf))
			out := buf.String()

			assert.Contains(t, out, `id="t-legendGradient"`)
			assert.Equal(t, 10, strings.Count(out, `class="mark"`))

			dec := xml.NewDecoder(strings.NewReader(out))
			for {
				_, err := dec.Token()
				if errors.Is(err, io.EOF) {
					break
				}
				require.NoError(t, err)
			}
		})
	}
}

func TestWriteSVG_VectorFieldArrowheads(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(VectorField, forecast(4)).WriteSVG(&buf))

	assert.Contains(t, buf.String(), `id="t-arrowhead"`)
	assert.Contains(t, buf.String(), `marker-end="url(#t-arrowhead)"`)
	assert.Contains(t, buf.String(), "Wind Speed &amp; Direction Over Time")
}

func TestRender_TimeTicksOnWholeHoursInHalfHourZone(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	rc := DefaultContext(Line, domain.UnitsMetric, kolkata, "")
	fig := New(Line, DefaultOptions(Line, domain.UnitsMetric)).Render(rc, forecast(8))

	require.NotEmpty(t, fig.XAxis.Ticks)
	for _, tk := range fig.XAxis.Ticks {
		assert.True(t, strings.HasSuffix(tk.Label, ":00"), tk.Label)
	}
}
