package geodata

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/jonas-p/go-shp"
)

// ErrMissingAttributes reports a shapefile whose .dbf attribute table is
// missing or unreadable.
var ErrMissingAttributes = errors.New("shapefile attribute table missing or unreadable")

// readShapefile reads polygon records and their name attribute from a .shp/.dbf pair.
func readShapefile(path, nameProperty string, skip func(name, reason string)) ([]namedGeometry, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile: %w", err)
	}
	defer r.Close()

	fields := r.Fields()
	if len(fields) == 0 {
		return nil, ErrMissingAttributes
	}
	nameField := -1
	for i, f := range fields {
		if strings.EqualFold(cleanAttribute(f.String()), nameProperty) {
			nameField = i
			break
		}
	}
	if nameField < 0 {
		return nil, fmt.Errorf("shapefile has no %q attribute", nameProperty)
	}

	var out []namedGeometry
	for r.Next() {
		n, s := r.Shape()
		name := cleanAttribute(r.ReadAttribute(n, nameField))
		if name == "" {
			return nil, fmt.Errorf("record %d: missing %q attribute: %w", n, nameProperty, domain.ErrEmptyRegionName)
		}

		polygon, ok := s.(*shp.Polygon)
		if !ok {
			skip(name, fmt.Sprintf("unsupported shape %T", s))
			continue
		}
		g, err := polygonGeometry(polygon)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", name, err)
		}
		out = append(out, namedGeometry{Name: name, Geometry: g})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading shapefile: %w", err)
	}
	return out, nil
}

// polygonGeometry splits shapefile parts into polygons. A clockwise part starts a
// new polygon; a counter-clockwise part is a hole of the polygon before it.
func polygonGeometry(p *shp.Polygon) (domain.Geometry, error) {
	if len(p.Parts) == 0 || len(p.Points) == 0 {
		return domain.Geometry{}, fmt.Errorf("%w: polygon has no parts", domain.ErrMalformedGeometry)
	}

	var g domain.Geometry
	for i := range p.Parts {
		start := int(p.Parts[i])
		end := len(p.Points)
		if i+1 < len(p.Parts) {
			end = int(p.Parts[i+1])
		}
		if start < 0 || start >= end || end > len(p.Points) {
			return domain.Geometry{}, fmt.Errorf("%w: part %d has invalid bounds", domain.ErrMalformedGeometry, i)
		}

		ring := make(domain.Ring, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, domain.Coord{Lon: pt.X, Lat: pt.Y})
		}

		if signedArea(ring) <= 0 || len(g.Polygons) == 0 {
			g.Polygons = append(g.Polygons, domain.Polygon{ring})
			continue
		}
		last := len(g.Polygons) - 1
		g.Polygons[last] = append(g.Polygons[last], ring)
	}
	return g, nil
}

// signedArea is the planar shoelace area; negative means clockwise.
func signedArea(r domain.Ring) float64 {
	var a float64
	for i := range r {
		j := (i + 1) % len(r)
		a += r[i].Lon*r[j].Lat - r[j].Lon*r[i].Lat
	}
	return a / 2
}

// cleanAttribute strips the NUL and space padding DBF writers leave in
// fixed-width string fields.
func cleanAttribute(v string) string {
	return strings.TrimFunc(v, func(r rune) bool {
		return r == 0 || unicode.IsSpace(r)
	})
}
