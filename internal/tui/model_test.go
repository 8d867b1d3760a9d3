package tui

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/events"
	"github.com/couchcryptid/weather-map-service/internal/navigation"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, locality string) (domain.Weather, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, locality)
	if f.err != nil {
		return domain.Weather{}, f.err
	}
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Weather{
		Units:   domain.UnitsMetric,
		Current: domain.CurrentConditions{Locality: locality, Temperature: 21.5, Humidity: 40, WindSpeed: 3, WindDirection: 90},
		Forecast: []domain.ForecastPoint{
			{Time: base.Add(3 * time.Hour), Temperature: 19},
			{Time: base, Temperature: 22},
		},
	}, nil
}

func newTestModel(t *testing.T, fetcher *stubFetcher) Model {
	t.Helper()
	ctrl := navigation.NewController(
		domain.LocalityBindings{"Colorado": "Denver", "Texas": "Houston"},
		events.Discard,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return NewModel(Deps{
		Fetcher:    fetcher,
		Navigation: ctrl,
		Regions:    []string{"Colorado", "Puerto Rico", "Texas"},
		Location:   time.UTC,
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// fetched runs cmd (flattening batches) and returns the fetch result it produces.
func fetched(t *testing.T, cmd tea.Cmd) weatherFetchedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	switch msg := cmd().(type) {
	case weatherFetchedMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if r, ok := c().(weatherFetchedMsg); ok {
				return r
			}
		}
	}
	t.Fatal("command did not fetch weather")
	return weatherFetchedMsg{}
}

func search(t *testing.T, m Model, query string) (Model, tea.Cmd) {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(query)})
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t, &stubFetcher{})
	assert.Equal(t, StateSearch, m.state)
	assert.Len(t, m.regions.Items(), 3)
}

func TestModel_WindowSize(t *testing.T) {
	m, _ := update(t, newTestModel(t, &stubFetcher{}), tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}

func TestModel_SearchFetchesAndDisplays(t *testing.T) {
	f := &stubFetcher{}
	m, cmd := search(t, newTestModel(t, f), "  Denver ")
	assert.Equal(t, StateLoading, m.state)
	assert.Equal(t, "Denver", m.locality)

	m, _ = update(t, m, fetched(t, cmd))
	assert.Equal(t, StateDisplay, m.state)
	require.NotNil(t, m.weather)
	assert.True(t, m.weather.Forecast[0].Time.Before(m.weather.Forecast[1].Time))
	assert.Equal(t, []string{"Denver"}, f.calls)

	view := m.View()
	assert.Contains(t, view, "21.5°C")
	assert.Contains(t, view, "3.0 m/s →")
}

func TestModel_BlankSearchIgnored(t *testing.T) {
	m, cmd := search(t, newTestModel(t, &stubFetcher{}), "   ")
	assert.Equal(t, StateSearch, m.state)
	assert.Nil(t, cmd)
}

func TestModel_StaleResponseDropped(t *testing.T) {
	f := &stubFetcher{}
	m, first := search(t, newTestModel(t, f), "Denver")
	staleMsg := fetched(t, first)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, StateSearch, m.state)
	m, second := search(t, m, "Houston")

	m, _ = update(t, m, staleMsg)
	assert.Equal(t, StateLoading, m.state, "superseded result is ignored")
	assert.Nil(t, m.weather)

	m, _ = update(t, m, fetched(t, second))
	assert.Equal(t, StateDisplay, m.state)
	assert.Equal(t, "Houston", m.weather.Current.Locality)
}

func TestModel_CancelledFetchDropped(t *testing.T) {
	m, cmd := search(t, newTestModel(t, &stubFetcher{}), "Denver")
	msg := fetched(t, cmd)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, msg)
	assert.Equal(t, StateSearch, m.state)
	assert.Nil(t, m.weather)
}

func TestModel_NotFoundAndUpstreamMessagesDiffer(t *testing.T) {
	f := &stubFetcher{err: domain.ErrLocalityNotFound}
	m, cmd := search(t, newTestModel(t, f), "Atlantis")
	m, _ = update(t, m, fetched(t, cmd))
	assert.Equal(t, StateDisplay, m.state)
	assert.Contains(t, m.View(), "City not found")

	f.err = domain.ErrUpstream
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, cmd = search(t, m, "Denver")
	m, _ = update(t, m, fetched(t, cmd))
	assert.Contains(t, m.View(), "temporarily unavailable")
	assert.NotContains(t, m.View(), "City not found")
}

func TestModel_BoundRegionNavigates(t *testing.T) {
	f := &stubFetcher{}
	m, _ := update(t, newTestModel(t, f), tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, StateRegions, m.state)

	// First item is Colorado.
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateLoading, m.state)
	assert.Equal(t, "Denver", m.locality)

	m, _ = update(t, m, fetched(t, cmd))
	assert.Equal(t, StateDisplay, m.state)
	assert.Equal(t, []string{"Denver"}, f.calls)
}

func TestModel_UnboundRegionShowsNotice(t *testing.T) {
	f := &stubFetcher{}
	m, _ := update(t, newTestModel(t, f), tea.KeyMsg{Type: tea.KeyTab})
	m.regions.Select(1) // Puerto Rico

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateSearch, m.state)
	assert.Equal(t, "No data available for Puerto Rico", m.notice)
	assert.Contains(t, m.View(), "No data available for Puerto Rico")
	assert.Empty(t, f.calls)
}

func TestModel_CtrlCQuits(t *testing.T) {
	_, cmd := update(t, newTestModel(t, &stubFetcher{}), tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestArrow(t *testing.T) {
	assert.Equal(t, "↑", arrow(0))
	assert.Equal(t, "→", arrow(90))
	assert.Equal(t, "↓", arrow(180))
	assert.Equal(t, "←", arrow(270))
	assert.Equal(t, "↑", arrow(350))
}
