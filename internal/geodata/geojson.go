package geodata

import (
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/weather-map-service/internal/domain"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   *geometry      `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// position is a GeoJSON [lon, lat] pair; extra elements such as altitude are ignored.
type position []float64

// parseGeoJSON decodes a FeatureCollection into named geometries. Features that
// are not polygonal are reported through skip and left out.
func parseGeoJSON(data []byte, nameProperty string, skip func(name, reason string)) ([]namedGeometry, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("decode geojson: expected FeatureCollection, got %q", fc.Type)
	}

	out := make([]namedGeometry, 0, len(fc.Features))
	for i, f := range fc.Features {
		name := propertyString(f.Properties, nameProperty)
		if name == "" {
			return nil, fmt.Errorf("feature %d: missing %q property: %w", i, nameProperty, domain.ErrEmptyRegionName)
		}
		if f.Geometry == nil {
			return nil, fmt.Errorf("feature %q: %w: null geometry", name, domain.ErrMalformedGeometry)
		}

		var g domain.Geometry
		switch f.Geometry.Type {
		case "Polygon":
			var coords [][]position
			if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
				return nil, fmt.Errorf("feature %q: %w: %v", name, domain.ErrMalformedGeometry, err)
			}
			poly, err := toPolygon(coords)
			if err != nil {
				return nil, fmt.Errorf("feature %q: %w", name, err)
			}
			g.Polygons = []domain.Polygon{poly}
		case "MultiPolygon":
			var coords [][][]position
			if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
				return nil, fmt.Errorf("feature %q: %w: %v", name, domain.ErrMalformedGeometry, err)
			}
			for _, c := range coords {
				poly, err := toPolygon(c)
				if err != nil {
					return nil, fmt.Errorf("feature %q: %w", name, err)
				}
				g.Polygons = append(g.Polygons, poly)
			}
		default:
			skip(name, "unsupported geometry type "+f.Geometry.Type)
			continue
		}

		out = append(out, namedGeometry{Name: name, Geometry: g})
	}
	return out, nil
}

func toPolygon(rings [][]position) (domain.Polygon, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", domain.ErrMalformedGeometry)
	}
	poly := make(domain.Polygon, 0, len(rings))
	for _, r := range rings {
		ring := make(domain.Ring, 0, len(r))
		for _, p := range r {
			if len(p) < 2 {
				return nil, fmt.Errorf("%w: position with %d elements", domain.ErrMalformedGeometry, len(p))
			}
			ring = append(ring, domain.Coord{Lon: p[0], Lat: p[1]})
		}
		poly = append(poly, ring)
	}
	return poly, nil
}

func propertyString(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
