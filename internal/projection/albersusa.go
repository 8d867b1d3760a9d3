package projection

import (
	"github.com/couchcryptid/weather-map-service/internal/domain"
)

// extent is an axis-aligned clip box in composite units (Y up).
type extent struct {
	x0, y0, x1, y1 float64
}

func (e extent) contains(x, y float64) bool {
	return x >= e.x0 && x <= e.x1 && y >= e.y0 && y <= e.y1
}

// inset is one panel of the composite: a raw projection scaled and offset
// relative to the lower-48 panel, clipped to its box.
type inset struct {
	raw    Raw
	scale  float64
	dx, dy float64
	clip   extent
}

func (in inset) forward(c domain.Coord) (float64, float64, bool) {
	x, y, ok := in.raw.Forward(c)
	if !ok {
		return 0, 0, false
	}
	x = in.dx + in.scale*x
	y = in.dy + in.scale*y
	if !in.clip.contains(x, y) {
		return 0, 0, false
	}
	return x, y, true
}

type albersUSA struct {
	insets []inset
}

// AlbersUSA returns the composite conterminous-US projection with Alaska and
// Hawaii drawn as insets below the lower 48. Coordinates outside all three
// panels, such as Puerto Rico, are not projectable.
func AlbersUSA() Raw {
	lower48 := Albers()
	alaska := newCentered(newConicEqualArea(154, 55, 65), domain.Coord{Lon: -156, Lat: 58.5})
	hawaii := newCentered(newConicEqualArea(157, 8, 18), domain.Coord{Lon: -160, Lat: 19.9})

	return albersUSA{insets: []inset{
		{raw: lower48, scale: 1, clip: extent{-0.455, -0.238, 0.455, 0.238}},
		{raw: alaska, scale: 0.35, dx: -0.307, dy: -0.201, clip: extent{-0.425, -0.234, -0.214, -0.120}},
		{raw: hawaii, scale: 1, dx: -0.205, dy: -0.212, clip: extent{-0.214, -0.234, -0.115, -0.166}},
	}}
}

func (p albersUSA) Forward(c domain.Coord) (float64, float64, bool) {
	for _, in := range p.insets {
		if x, y, ok := in.forward(c); ok {
			return x, y, true
		}
	}
	return 0, 0, false
}
