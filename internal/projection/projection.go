// Package projection maps WGS-84 coordinates onto a pixel canvas.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/weather-map-service/internal/domain"
)

var (
	// ErrEmptyGeometry means there was nothing to fit: no regions, or no vertex
	// the projection can place.
	ErrEmptyGeometry = errors.New("no projectable geometry")

	// ErrInvalidCanvas rejects non-positive canvas sizes.
	ErrInvalidCanvas = errors.New("canvas size must be positive")

	// ErrUnknownProjection is returned by New for unrecognised names.
	ErrUnknownProjection = errors.New("unknown projection")
)

// New returns the raw projection registered under name.
func New(name string) (Raw, error) {
	switch name {
	case "albers":
		return Albers(), nil
	case "albers-usa", "":
		return AlbersUSA(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProjection, name)
	}
}

// Projection is a raw projection bound to a canvas by a uniform scale and a
// translation. It is immutable and safe for concurrent use.
type Projection struct {
	raw    Raw
	k      float64
	tx, ty float64
	width  float64
	height float64
}

// Fit scales and centres raw so that the projected bounds of every region fill
// a width×height canvas while preserving aspect ratio.
func Fit(raw Raw, regions []domain.Region, width, height float64) (*Projection, error) {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return nil, fmt.Errorf("%w: %gx%g", ErrInvalidCanvas, width, height)
	}
	if len(regions) == 0 {
		return nil, ErrEmptyGeometry
	}

	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, r := range regions {
		if err := r.Geometry.Validate(); err != nil {
			return nil, fmt.Errorf("region %q: %w", r.Name, err)
		}
		for _, poly := range r.Geometry.Polygons {
			for _, ring := range poly {
				for _, c := range ring {
					x, y, ok := raw.Forward(c)
					if !ok {
						continue
					}
					// Screen space is Y-down.
					y = -y
					x0, x1 = math.Min(x0, x), math.Max(x1, x)
					y0, y1 = math.Min(y0, y), math.Max(y1, y)
				}
			}
		}
	}
	if math.IsInf(x0, 1) {
		return nil, ErrEmptyGeometry
	}

	dx, dy := x1-x0, y1-y0
	k := math.Inf(1)
	if dx > 0 {
		k = width / dx
	}
	if dy > 0 {
		k = math.Min(k, height/dy)
	}
	if math.IsInf(k, 1) {
		k = 1
	}

	return &Projection{
		raw:    raw,
		k:      k,
		tx:     -k*x0 + (width-k*dx)/2,
		ty:     -k*y0 + (height-k*dy)/2,
		width:  width,
		height: height,
	}, nil
}

// Project maps c to canvas pixels. The second result is false when c has no image.
func (p *Projection) Project(c domain.Coord) (Point, bool) {
	x, y, ok := p.raw.Forward(c)
	if !ok {
		return Point{}, false
	}
	return Point{X: snap(p.tx+p.k*x, p.width), Y: snap(p.ty-p.k*y, p.height)}, true
}

// snap pulls values within rounding error of the canvas edge back onto it.
// Points genuinely outside the fitted bounds are left alone.
func snap(v, limit float64) float64 {
	eps := 1e-9 * math.Max(limit, 1)
	switch {
	case v < 0 && v > -eps:
		return 0
	case v > limit && v < limit+eps:
		return limit
	}
	return v
}

// ProjectRing maps every projectable vertex of a ring, dropping the rest.
func (p *Projection) ProjectRing(r domain.Ring) []Point {
	out := make([]Point, 0, len(r))
	for _, c := range r {
		if pt, ok := p.Project(c); ok {
			out = append(out, pt)
		}
	}
	return out
}

// Scale is the fitted pixels-per-unit factor.
func (p *Projection) Scale() float64 { return p.k }

// Size is the canvas the projection was fitted to.
func (p *Projection) Size() (width, height float64) { return p.width, p.height }
