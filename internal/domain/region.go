package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrMalformedGeometry reports a region whose geometry is missing coordinate arrays.
	ErrMalformedGeometry = errors.New("malformed geometry")

	// ErrEmptyRegionName reports a region without a usable name.
	ErrEmptyRegionName = errors.New("region name is empty")
)

// Coord is a WGS-84 longitude/latitude pair in degrees.
type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid reports whether both components are finite and inside the WGS-84 range.
func (c Coord) Valid() bool {
	if math.IsNaN(c.Lon) || math.IsNaN(c.Lat) || math.IsInf(c.Lon, 0) || math.IsInf(c.Lat, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Ring is a closed sequence of coordinates. The closing coordinate is optional.
type Ring []Coord

// Polygon is an exterior ring followed by zero or more holes.
type Polygon []Ring

// Geometry is a multi-polygon; a single polygon is a Geometry of length one.
type Geometry struct {
	Polygons []Polygon `json:"polygons"`
}

// Bounds is a lon/lat bounding box.
type Bounds struct {
	Min Coord `json:"min"`
	Max Coord `json:"max"`
}

// Validate checks that every polygon carries at least one non-empty ring and that
// all coordinates are finite.
func (g Geometry) Validate() error {
	if len(g.Polygons) == 0 {
		return fmt.Errorf("%w: no polygons", ErrMalformedGeometry)
	}
	for i, poly := range g.Polygons {
		if len(poly) == 0 {
			return fmt.Errorf("%w: polygon %d has no rings", ErrMalformedGeometry, i)
		}
		for j, ring := range poly {
			if len(ring) == 0 {
				return fmt.Errorf("%w: polygon %d ring %d has no coordinates", ErrMalformedGeometry, i, j)
			}
			for _, c := range ring {
				if !c.Valid() {
					return fmt.Errorf("%w: polygon %d ring %d has invalid coordinate %v", ErrMalformedGeometry, i, j, c)
				}
			}
		}
	}
	return nil
}

// Bounds returns the lon/lat bounding box of all exterior rings.
func (g Geometry) Bounds() Bounds {
	b := Bounds{
		Min: Coord{Lon: math.Inf(1), Lat: math.Inf(1)},
		Max: Coord{Lon: math.Inf(-1), Lat: math.Inf(-1)},
	}
	for _, poly := range g.Polygons {
		if len(poly) == 0 {
			continue
		}
		for _, c := range poly[0] {
			b.Min.Lon = math.Min(b.Min.Lon, c.Lon)
			b.Min.Lat = math.Min(b.Min.Lat, c.Lat)
			b.Max.Lon = math.Max(b.Max.Lon, c.Lon)
			b.Max.Lat = math.Max(b.Max.Lat, c.Lat)
		}
	}
	return b
}

// Region is one named area of the map, e.g. a US state. Regions are built once
// when the dataset loads and are never modified afterwards.
type Region struct {
	Name        string   `json:"name"`
	Geometry    Geometry `json:"-"`
	Centroid    Coord    `json:"centroid"`
	HasCentroid bool     `json:"has_centroid"`
}

// NewRegion validates the geometry and derives the spherical centroid.
func NewRegion(name string, geometry Geometry) (Region, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Region{}, ErrEmptyRegionName
	}
	if err := geometry.Validate(); err != nil {
		return Region{}, fmt.Errorf("region %q: %w", name, err)
	}
	centroid, ok := SphericalCentroid(geometry)
	return Region{
		Name:        name,
		Geometry:    geometry,
		Centroid:    centroid,
		HasCentroid: ok,
	}, nil
}
