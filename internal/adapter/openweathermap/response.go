package openweathermap

import (
	"bytes"
	"strings"
)

// OpenWeatherMap API response types.

// apiCode is the "cod" field, which the API sends as either a string or a number.
type apiCode string

func (c *apiCode) UnmarshalJSON(b []byte) error {
	*c = apiCode(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	return nil
}

type errorResponse struct {
	Cod     apiCode `json:"cod"`
	Message string  `json:"message"`
}

type coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type mainBlock struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

type windBlock struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type cloudsBlock struct {
	All float64 `json:"all"`
}

type condition struct {
	Description string `json:"description"`
}

type currentResponse struct {
	Cod     apiCode     `json:"cod"`
	Name    string      `json:"name"`
	Dt      int64       `json:"dt"`
	Coord   coord       `json:"coord"`
	Main    mainBlock   `json:"main"`
	Wind    windBlock   `json:"wind"`
	Weather []condition `json:"weather"`
}

type forecastResponse struct {
	Cod  apiCode        `json:"cod"`
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	Dt     int64              `json:"dt"`
	Main   mainBlock          `json:"main"`
	Wind   windBlock          `json:"wind"`
	Clouds cloudsBlock        `json:"clouds"`
	Rain   map[string]float64 `json:"rain,omitempty"`
}

// precipitation prefers the 3-hour accumulation and falls back to 1-hour.
func (f forecastItem) precipitation() *float64 {
	if v, ok := f.Rain["3h"]; ok {
		return &v
	}
	if v, ok := f.Rain["1h"]; ok {
		return &v
	}
	return nil
}
