// Package domain models the weather map: named map regions with their
// geographic geometry, the static table that binds regions to weather-queryable
// localities, and the current-conditions and forecast records returned by the
// upstream weather service.
//
// # Geometry Conventions
//
// Coordinates follow GeoJSON order, longitude first:
//
//	Coord{Lon: -97.74, Lat: 30.27}
//
// A Polygon is a list of rings. The first ring is the exterior boundary and any
// further rings are holes. Rings may or may not repeat their first coordinate at
// the end; both forms are accepted. A Geometry holds one or more polygons so
// that states made of islands (Hawaii, Michigan) are a single Region.
//
// Region centroids are spherical (area-weighted on the unit sphere), matching
// what a web map would compute for label placement. A Region whose rings are
// all degenerate has no centroid; callers must handle HasCentroid == false.
//
// # Forecast Conventions
//
// Forecast samples arrive from OpenWeatherMap in 3-hour steps, ascending by
// timestamp. Wind direction is meteorological: degrees clockwise from north,
// naming the direction the wind blows FROM. Precipitation is optional; when a
// sample has none, cloud coverage (0-100%) stands in as the intensity value
// (see [ForecastPoint.Intensity]).
//
// # Errors
//
// Lookups distinguish a locality the upstream service does not know
// ([ErrLocalityNotFound]) from every other failure ([ErrUpstream]). The two are
// shown to users with different messages and neither is retried.
package domain
