package scale

import (
	"time"
)

// Time maps an instant range onto pixels.
type Time struct {
	T0, T1 time.Time
	R0, R1 float64
}

// NewTime builds a time scale.
func NewTime(t0, t1 time.Time, r0, r1 float64) Time {
	return Time{T0: t0, T1: t1, R0: r0, R1: r1}
}

// Map projects t into the range. A single-instant domain maps to the range midpoint.
func (s Time) Map(t time.Time) float64 {
	span := s.T1.Sub(s.T0)
	if span == 0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + float64(t.Sub(s.T0))/float64(span)*(s.R1-s.R0)
}

var hourSteps = []int{1, 2, 3, 6, 12, 24, 48, 72, 168}

// Ticks returns at most count instants aligned to whole-hour multiples in loc.
func (s Time) Ticks(count int, loc *time.Location) []time.Time {
	if count <= 0 || s.T1.Before(s.T0) {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if s.T0.Equal(s.T1) {
		return []time.Time{s.T0}
	}

	span := s.T1.Sub(s.T0)
	step := hourSteps[len(hourSteps)-1]
	for _, h := range hourSteps {
		if span/(time.Duration(h)*time.Hour) < time.Duration(count) {
			step = h
			break
		}
	}

	// Align on the wall clock in loc; Truncate works on absolute time and
	// lands on :30 in half-hour zones.
	lt := s.T0.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), 0, 0, 0, loc)
	if start.Before(s.T0) {
		start = hourAfter(start, 1)
	}
	for start.Hour()%min(step, 24) != 0 {
		start = hourAfter(start, 1)
	}

	var out []time.Time
	for t := start; !t.After(s.T1); t = hourAfter(t, step) {
		out = append(out, t)
	}
	return out
}

func hourAfter(t time.Time, hours int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+hours, 0, 0, 0, t.Location())
}
