package projection

import (
	"math"

	"github.com/couchcryptid/weather-map-service/internal/domain"
)

const radians = math.Pi / 180

// Point is a projected screen coordinate in pixels; Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Raw projects a coordinate into unscaled, untranslated plane units with Y
// growing upward. A false return means the coordinate has no image.
type Raw interface {
	Forward(c domain.Coord) (x, y float64, ok bool)
}

// conicEqualArea is the Albers equal-area conic on a sphere, rotated so the
// central meridian sits at lon=-rotate.
type conicEqualArea struct {
	rotate float64 // degrees added to longitude
	n      float64
	c      float64
	r0     float64
}

func newConicEqualArea(rotate, phi1, phi2 float64) conicEqualArea {
	sy0 := math.Sin(phi1 * radians)
	n := (sy0 + math.Sin(phi2*radians)) / 2
	c := 1 + sy0*(2*n-sy0)
	return conicEqualArea{
		rotate: rotate,
		n:      n,
		c:      c,
		r0:     math.Sqrt(c) / n,
	}
}

func (p conicEqualArea) Forward(coord domain.Coord) (float64, float64, bool) {
	if !coord.Valid() {
		return 0, 0, false
	}
	lambda := wrapLongitude(coord.Lon+p.rotate) * radians
	phi := coord.Lat * radians

	v := p.c - 2*p.n*math.Sin(phi)
	if v < 0 {
		v = 0
	}
	r := math.Sqrt(v) / p.n
	x := r * math.Sin(lambda*p.n)
	y := p.r0 - r*math.Cos(lambda*p.n)
	return x, y, true
}

// wrapLongitude folds degrees into [-180, 180).
func wrapLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// centered shifts a raw projection so that the given centre coordinate maps to
// the origin.
type centered struct {
	raw    Raw
	cx, cy float64
}

func newCentered(raw Raw, center domain.Coord) centered {
	x, y, _ := raw.Forward(center)
	return centered{raw: raw, cx: x, cy: y}
}

func (c centered) Forward(coord domain.Coord) (float64, float64, bool) {
	x, y, ok := c.raw.Forward(coord)
	if !ok {
		return 0, 0, false
	}
	return x - c.cx, y - c.cy, true
}

// Albers returns the conterminous-US Albers equal-area conic: standard parallels
// 29.5°N and 45.5°N, central meridian 96°W, centred on 38.7°N.
func Albers() Raw {
	return newCentered(newConicEqualArea(96, 29.5, 45.5), domain.Coord{Lon: -96.6, Lat: 38.7})
}
