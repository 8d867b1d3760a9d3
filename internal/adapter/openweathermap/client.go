// Package openweathermap implements domain.WeatherFetcher against the
// OpenWeatherMap 2.5 current-weather and 5-day forecast endpoints.
package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/observability"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

const maxBodyBytes = 4 << 20

// UpstreamError describes a failed provider call. It matches domain.ErrUpstream.
type UpstreamError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", domain.ErrUpstream, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", domain.ErrUpstream, e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == domain.ErrUpstream }

// Client fetches current conditions and the forecast for a locality name.
type Client struct {
	apiKey     string
	units      domain.Units
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey, baseURL string, units domain.Units, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if units == "" {
		units = domain.UnitsMetric
	}
	return &Client{
		apiKey: apiKey,
		units:  units,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch performs one current-weather and one forecast request. There are no
// retries; a blank locality fails with domain.ErrLocalityNotFound without a request.
func (c *Client) Fetch(ctx context.Context, locality string) (domain.Weather, error) {
	locality = strings.TrimSpace(locality)
	if locality == "" {
		return domain.Weather{}, fmt.Errorf("%w: empty name", domain.ErrLocalityNotFound)
	}

	var cur currentResponse
	if err := c.get(ctx, "weather", locality, &cur); err != nil {
		return domain.Weather{}, err
	}
	var fc forecastResponse
	if err := c.get(ctx, "forecast", locality, &fc); err != nil {
		return domain.Weather{}, err
	}

	return domain.Weather{
		Current:  currentConditions(locality, cur),
		Forecast: forecastPoints(fc),
		Units:    c.units,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint, locality string, out any) error {
	params := url.Values{
		"q":     {locality},
		"units": {string(c.units)},
		"appid": {c.apiKey},
	}
	fullURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	outcome := "error"
	start := time.Now()
	defer func() {
		c.metrics.WeatherAPIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		c.metrics.WeatherRequests.WithLabelValues(endpoint, outcome).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("weather request failed", "endpoint", endpoint, "locality", locality, "error", redact(err, c.apiKey))
		return &UpstreamError{Endpoint: endpoint, Err: errors.New(redact(err, c.apiKey))}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode == http.StatusNotFound || bodyCode(body) == "404" {
		outcome = "not_found"
		return fmt.Errorf("%w: %q", domain.ErrLocalityNotFound, locality)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("weather provider error", "endpoint", endpoint, "status", resp.StatusCode)
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errors.New(errorMessage(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	outcome = "success"
	return nil
}

func bodyCode(body []byte) apiCode {
	var e errorResponse
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Cod
}

func errorMessage(body []byte) string {
	var e errorResponse
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return http.StatusText(http.StatusBadGateway)
}

// redact keeps the API key out of logged transport errors, which embed the URL.
func redact(err error, key string) string {
	msg := err.Error()
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, key, "REDACTED")
}

func currentConditions(locality string, r currentResponse) domain.CurrentConditions {
	name := r.Name
	if name == "" {
		name = locality
	}
	cc := domain.CurrentConditions{
		Locality:      name,
		Temperature:   r.Main.Temp,
		Humidity:      r.Main.Humidity,
		WindSpeed:     r.Wind.Speed,
		WindDirection: r.Wind.Deg,
		ObservedAt:    time.Unix(r.Dt, 0).UTC(),
		Coord:         domain.Coord{Lon: r.Coord.Lon, Lat: r.Coord.Lat},
	}
	if len(r.Weather) > 0 {
		cc.Description = r.Weather[0].Description
	}
	return cc
}

func forecastPoints(r forecastResponse) []domain.ForecastPoint {
	out := make([]domain.ForecastPoint, 0, len(r.List))
	for _, item := range r.List {
		out = append(out, domain.ForecastPoint{
			Time:          time.Unix(item.Dt, 0).UTC(),
			Temperature:   item.Main.Temp,
			Humidity:      item.Main.Humidity,
			WindSpeed:     item.Wind.Speed,
			WindDirection: item.Wind.Deg,
			Precipitation: item.precipitation(),
			CloudCoverage: item.Clouds.All,
		})
	}
	return out
}
