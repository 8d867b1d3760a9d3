package domain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	// ErrLocalityNotFound means the provider does not know the requested locality.
	// It is a recoverable user error, distinct from transport failures.
	ErrLocalityNotFound = errors.New("locality not found")

	// ErrUpstream wraps every request, transport, decoding, or unexpected status failure.
	ErrUpstream = errors.New("weather provider unavailable")
)

// Units is the measurement system requested from the provider.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
	UnitsStandard Units = "standard"
)

// ParseUnits validates a configured unit system.
func ParseUnits(s string) (Units, error) {
	switch u := Units(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitsMetric, UnitsImperial, UnitsStandard:
		return u, nil
	default:
		return "", fmt.Errorf("unknown unit system %q", s)
	}
}

// TemperatureLabel is the unit suffix for temperatures.
func (u Units) TemperatureLabel() string {
	switch u {
	case UnitsImperial:
		return "°F"
	case UnitsStandard:
		return "K"
	default:
		return "°C"
	}
}

// SpeedLabel is the unit suffix for wind speeds.
func (u Units) SpeedLabel() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// ForecastPoint is one forecast step.
type ForecastPoint struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection float64   `json:"wind_direction"` // degrees clockwise from north
	Precipitation *float64  `json:"precipitation,omitempty"`
	CloudCoverage float64   `json:"cloud_coverage"` // percent
}

// Intensity is the precipitation amount when reported, otherwise cloud coverage.
func (p ForecastPoint) Intensity() float64 {
	if p.Precipitation != nil {
		return *p.Precipitation
	}
	return p.CloudCoverage
}

// CurrentConditions is the observation shown on the locality view.
type CurrentConditions struct {
	Locality      string    `json:"locality"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection float64   `json:"wind_direction"`
	Description   string    `json:"description,omitempty"`
	ObservedAt    time.Time `json:"observed_at"`
	Coord         Coord     `json:"coord"`
}

// Weather bundles current conditions with the forecast series.
type Weather struct {
	Current  CurrentConditions `json:"current"`
	Forecast []ForecastPoint   `json:"forecast"`
	Units    Units             `json:"units"`
}

// WeatherFetcher retrieves weather for a locality name.
type WeatherFetcher interface {
	Fetch(ctx context.Context, locality string) (Weather, error)
}

// SortedForecast returns the points in ascending time order. The input is
// returned as-is when already ordered; otherwise a sorted copy is returned.
func SortedForecast(points []ForecastPoint) []ForecastPoint {
	ordered := slices.IsSortedFunc(points, func(a, b ForecastPoint) int {
		return a.Time.Compare(b.Time)
	})
	if ordered {
		return points
	}
	out := slices.Clone(points)
	slices.SortStableFunc(out, func(a, b ForecastPoint) int {
		return a.Time.Compare(b.Time)
	})
	return out
}
