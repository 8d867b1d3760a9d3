// Package colorscale maps numbers onto sequential colour ramps.
package colorscale

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Scheme is an ordered list of colour stops sampled uniformly over [0, 1].
type Scheme struct {
	Name  string
	stops []colorful.Color
}

// NewScheme parses hex stops. At least two are required.
func NewScheme(name string, hexStops ...string) (Scheme, error) {
	if len(hexStops) < 2 {
		return Scheme{}, fmt.Errorf("scheme %s: need at least two stops", name)
	}
	stops := make([]colorful.Color, len(hexStops))
	for i, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			return Scheme{}, fmt.Errorf("scheme %s: stop %d: %w", name, i, err)
		}
		stops[i] = c
	}
	return Scheme{Name: name, stops: stops}, nil
}

func mustScheme(name string, hexStops ...string) Scheme {
	s, err := NewScheme(name, hexStops...)
	if err != nil {
		panic(err)
	}
	return s
}

var (
	// Blues runs from near-white to dark blue.
	Blues = mustScheme("blues",
		"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6",
		"#4292c6", "#2171b5", "#08519c", "#08306b")

	// Turbo runs from dark blue through green and yellow to dark red.
	Turbo = mustScheme("turbo",
		"#23171b", "#4a58dd", "#2f9df5", "#27d7c4", "#4df884", "#95fb51",
		"#dedd32", "#ffa423", "#f65f18", "#ba2208", "#900c00")
)

// At interpolates the scheme at t, clamped to [0, 1].
func (s Scheme) At(t float64) string {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	seg := t * float64(len(s.stops)-1)
	i := int(math.Floor(seg))
	if i >= len(s.stops)-1 {
		return s.stops[len(s.stops)-1].Hex()
	}
	return s.stops[i].BlendRgb(s.stops[i+1], seg-float64(i)).Hex()
}

// Sequential maps a numeric domain onto a scheme.
type Sequential struct {
	scheme   Scheme
	min, max float64
}

// NewSequential builds a scale over [min, max]. A degenerate domain maps every
// value to the start of the scheme.
func NewSequential(s Scheme, min, max float64) Sequential {
	return Sequential{scheme: s, min: min, max: max}
}

// Domain reports the input bounds.
func (q Sequential) Domain() (float64, float64) { return q.min, q.max }

// Color returns the hex colour for v.
func (q Sequential) Color(v float64) string {
	return q.scheme.At(q.normalize(v))
}

func (q Sequential) normalize(v float64) float64 {
	span := q.max - q.min
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 0
	}
	return (v - q.min) / span
}

// Stop is a gradient stop for legends.
type Stop struct {
	Offset float64 // 0..1
	Color  string
}

// Stops samples the scheme at n evenly spaced offsets for gradient legends.
func (q Sequential) Stops(n int) []Stop {
	if n < 2 {
		n = 2
	}
	out := make([]Stop, n)
	for i := range out {
		t := float64(i) / float64(n-1)
		out[i] = Stop{Offset: t, Color: q.scheme.At(t)}
	}
	return out
}
