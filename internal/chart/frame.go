package chart

import (
	"strconv"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/scale"
)

// frame holds the scales shared by every mark strategy.
type frame struct {
	rc     RenderContext
	width  float64
	height float64
	x      scale.Time
	y      scale.Linear
}

func newFrame(rc RenderContext, points []domain.ForecastPoint, lo, hi float64) frame {
	w, h := rc.innerSize()
	first, last := points[0].Time, points[len(points)-1].Time
	return frame{
		rc:     rc,
		width:  w,
		height: h,
		x:      scale.NewTime(first, last, 0, w),
		y:      scale.NewLinear(lo, hi, h, 0),
	}
}

func (f frame) single() bool { return f.x.T0.Equal(f.x.T1) }

func (f frame) timeTicks(count int, format func(time.Time) string) []Tick {
	loc := f.rc.location()
	ticks := f.x.Ticks(count, loc)
	out := make([]Tick, 0, len(ticks))
	for _, t := range ticks {
		out = append(out, Tick{Pos: f.x.Map(t), Label: format(t.In(loc))})
	}
	return out
}

func (f frame) valueTicks(count int) []Tick {
	vals := f.y.Ticks(count)
	out := make([]Tick, 0, len(vals))
	for _, v := range vals {
		out = append(out, Tick{Pos: f.y.Map(v), Label: formatNumber(v)})
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clock24(t time.Time) string { return t.Format("15:04") }

// multiScale labels midnights with the day and other ticks with the hour.
func multiScale(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("Mon 02")
	}
	return t.Format("15:04")
}
