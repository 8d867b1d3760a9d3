//go:build owm

package openweathermap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real OpenWeatherMap API and require WEATHER_API_KEY.
// Run with: go test -tags=owm ./internal/adapter/openweathermap/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("WEATHER_API_KEY")
	if key == "" {
		t.Fatal("WEATHER_API_KEY must be set to run smoke tests")
	}
	return &Client{
		apiKey:     key,
		units:      domain.UnitsMetric,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_Fetch(t *testing.T) {
	c := smokeClient(t)

	wx, err := c.Fetch(context.Background(), "Denver")
	require.NoError(t, err)

	assert.Equal(t, "Denver", wx.Current.Locality)
	assert.InDelta(t, 39.74, wx.Current.Coord.Lat, 0.5)
	assert.InDelta(t, -104.99, wx.Current.Coord.Lon, 0.5)
	assert.NotEmpty(t, wx.Forecast)
}

func TestSmoke_Fetch_UnknownLocality(t *testing.T) {
	c := smokeClient(t)

	_, err := c.Fetch(context.Background(), "Xyznonexistentville99")
	assert.ErrorIs(t, err, domain.ErrLocalityNotFound)
}
