package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/weather-map-service/internal/adapter/http"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/mapview"
	"github.com/couchcryptid/weather-map-service/internal/navigation"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type stubLoader struct {
	regions []domain.Region
	err     error
}

func (s stubLoader) Load(context.Context, string) ([]domain.Region, error) { return s.regions, s.err }

type stubFetcher struct {
	mu    sync.Mutex
	calls []string
	wx    domain.Weather
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, locality string) (domain.Weather, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, locality)
	if f.err != nil {
		return domain.Weather{}, f.err
	}
	wx := f.wx
	wx.Current.Locality = locality
	return wx, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.MapEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.MapEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func box(t *testing.T, name string, lon0, lat0, lon1, lat1 float64) domain.Region {
	t.Helper()
	r, err := domain.NewRegion(name, domain.Geometry{Polygons: []domain.Polygon{{{
		{Lon: lon0, Lat: lat0},
		{Lon: lon1, Lat: lat0},
		{Lon: lon1, Lat: lat1},
		{Lon: lon0, Lat: lat1},
	}}}})
	require.NoError(t, err)
	return r
}

func sampleWeather() domain.Weather {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rain := 1.5
	return domain.Weather{
		Units: domain.UnitsMetric,
		Current: domain.CurrentConditions{
			Temperature: 31.2, Humidity: 58, WindSpeed: 4.1, WindDirection: 170,
			Description: "clear sky", ObservedAt: base,
		},
		Forecast: []domain.ForecastPoint{
			{Time: base.Add(6 * time.Hour), Temperature: 27, WindSpeed: 2, CloudCoverage: 40, Precipitation: &rain},
			{Time: base.Add(3 * time.Hour), Temperature: 29, WindSpeed: 3, CloudCoverage: 20},
		},
	}
}

type fixture struct {
	srv     *httpadapter.Server
	fetcher *stubFetcher
	events  *recordingPublisher
	metrics *observability.Metrics
}

func newFixture(t *testing.T, loadErr error) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	maps, err := mapview.NewService("albers-usa", metrics, logger)
	require.NoError(t, err)
	loader := stubLoader{err: loadErr}
	if loadErr == nil {
		loader.regions = []domain.Region{
			box(t, "Colorado", -109.05, 36.99, -102.04, 41.0),
			box(t, "New Mexico", -109.05, 31.33, -103.0, 37.0),
			box(t, "Puerto Rico", -67.3, 17.9, -65.2, 18.5),
		}
	}
	_ = maps.Load(context.Background(), loader, "test.geojson")

	events := &recordingPublisher{}
	bindings := domain.LocalityBindings{"Colorado": "Denver", "New Mexico": "Santa Fe"}
	fetcher := &stubFetcher{wx: sampleWeather()}

	srv, err := httpadapter.NewServer(":0", httpadapter.Deps{
		Maps:       maps,
		Weather:    fetcher,
		Navigation: navigation.NewController(bindings, events, metrics, logger),
		Events:     events,
		Ready:      maps,
		MapWidth:   800,
		MapHeight:  500,
		Units:      domain.UnitsMetric,
	}, metrics, logger)
	require.NoError(t, err)

	return &fixture{srv: srv, fetcher: fetcher, events: events, metrics: metrics}
}

func (f *fixture) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// --- health ---

func TestHealthzReturns200(t *testing.T) {
	rec := newFixture(t, nil).get("/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := newFixture(t, nil).get("/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenDatasetFailed(t *testing.T) {
	rec := newFixture(t, fmt.Errorf("open states.geojson: no such file")).get("/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Contains(t, body["error"], "map unavailable")
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newFixture(t, nil).get("/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- pages ---

func TestHome_RendersMapAndSearch(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/search"`)
	assert.Contains(t, body, "<svg")
	assert.NotContains(t, body, "<?xml")
	assert.Equal(t, 3, strings.Count(body, `class="region"`))
	assert.Contains(t, body, `/regions/New%20Mexico/select`)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HTTPRequests.WithLabelValues("/", "200")))
}

func TestHome_MapUnavailableKeepsSearch(t *testing.T) {
	rec := newFixture(t, errors.New("dial tcp: connection refused")).get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Map unavailable")
	assert.Contains(t, rec.Body.String(), `action="/search"`)
	assert.NotContains(t, rec.Body.String(), "<svg")
}

func TestHome_ShowsNotice(t *testing.T) {
	rec := newFixture(t, nil).get("/?notice=No+data+available+for+Puerto+Rico")
	assert.Contains(t, rec.Body.String(), "No data available for Puerto Rico")
}

func TestSearch_Redirects(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get("/search?city=++New+York++")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/weather/New%20York", rec.Header().Get("Location"))

	rec = f.get("/search?city=+++")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, f.fetcher.calls)
}

func TestWeather_Success(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get("/weather/Denver")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Back to Search")
	assert.Contains(t, body, "31.2°C")
	assert.Contains(t, body, "58%")
	assert.Contains(t, body, "4.1 m/s")
	assert.Contains(t, body, "Temperature Trend Over Time")
	assert.Contains(t, body, "Wind Speed &amp; Direction Over Time")
	assert.Contains(t, body, "Rainfall &amp; Cloud Coverage Heatmap")
	assert.Contains(t, body, `id="temperature-legendGradient"`)
	assert.Contains(t, body, `id="wind-arrowhead"`)
	assert.Contains(t, body, `id="intensity-legendGradient"`)
	assert.Equal(t, []string{"Denver"}, f.fetcher.calls)
	assert.Equal(t, []domain.EventType{domain.EventWeatherViewed}, f.events.types())
}

func TestWeather_NotFoundAndUpstreamAreDistinct(t *testing.T) {
	f := newFixture(t, nil)

	f.fetcher.err = fmt.Errorf("%w: %q", domain.ErrLocalityNotFound, "Atlantis")
	notFound := f.get("/weather/Atlantis")
	assert.Equal(t, http.StatusNotFound, notFound.Code)
	assert.Contains(t, notFound.Body.String(), "City not found")

	f.fetcher.err = fmt.Errorf("%w: timeout", domain.ErrUpstream)
	failed := f.get("/weather/Denver")
	assert.Equal(t, http.StatusBadGateway, failed.Code)
	assert.Contains(t, failed.Body.String(), "temporarily unavailable")
	assert.NotContains(t, failed.Body.String(), "City not found")

	assert.Equal(t, []domain.EventType{domain.EventWeatherNotFound, domain.EventWeatherFailed}, f.events.types())
}

func TestSelect_BoundRegionNavigates(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get("/regions/New%20Mexico/select")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/weather/Santa%20Fe", rec.Header().Get("Location"))
	assert.Equal(t, []domain.EventType{domain.EventRegionSelected}, f.events.types())
	assert.Empty(t, f.fetcher.calls, "navigation alone does not fetch")
}

func TestSelect_UnboundRegionShowsNotice(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get("/regions/Puerto%20Rico/select")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/?notice="), loc)

	home := f.get(loc)
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), "No data available for Puerto Rico")
	assert.Equal(t, []domain.EventType{domain.EventRegionUnsupported}, f.events.types())
}

func TestSelect_UnknownRegion(t *testing.T) {
	rec := newFixture(t, nil).get("/regions/Atlantis/select")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMapSVG(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get("/map.svg?width=400&height=300")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `viewBox="0 0 400 300"`)

	for _, q := range []string{"width=0", "width=abc", "height=-5", "height=20000"} {
		assert.Equal(t, http.StatusBadRequest, f.get("/map.svg?"+q).Code, q)
	}
}

func TestMapSVG_Unavailable(t *testing.T) {
	rec := newFixture(t, errors.New("boom")).get("/map.svg")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// --- api ---

func TestAPIRegions(t *testing.T) {
	rec := newFixture(t, nil).get("/api/regions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []struct {
		Name      string `json:"name"`
		Locality  string `json:"locality"`
		Supported bool   `json:"supported"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 3)
	assert.Equal(t, "Colorado", body[0].Name)
	assert.Equal(t, "Denver", body[0].Locality)
	assert.True(t, body[0].Supported)
	assert.Equal(t, "Puerto Rico", body[2].Name)
	assert.False(t, body[2].Supported)
}

func TestAPIWeather(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get("/api/weather/Denver")
	require.Equal(t, http.StatusOK, rec.Code)

	var wx domain.Weather
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wx))
	assert.Equal(t, "Denver", wx.Current.Locality)
	require.Len(t, wx.Forecast, 2)
	assert.True(t, wx.Forecast[0].Time.Before(wx.Forecast[1].Time), "forecast is sorted")

	f.fetcher.err = domain.ErrLocalityNotFound
	assert.Equal(t, http.StatusNotFound, f.get("/api/weather/Atlantis").Code)
}

func TestAPIWeather_DefaultsUnits(t *testing.T) {
	f := newFixture(t, nil)
	f.fetcher.wx.Units = ""

	rec := f.get("/api/weather/Denver")
	require.Equal(t, http.StatusOK, rec.Code)

	var wx domain.Weather
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wx))
	assert.Equal(t, domain.UnitsMetric, wx.Units)
}
