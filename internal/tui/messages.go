package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/weather"
)

// weatherFetchedMsg carries a fetch result tagged with the ticket it was issued under.
type weatherFetchedMsg struct {
	ticket weather.Ticket
	wx     domain.Weather
	err    error
}

func fetchWeather(fetcher domain.WeatherFetcher, ticket weather.Ticket, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		wx, err := fetcher.Fetch(ctx, ticket.Locality)
		return weatherFetchedMsg{ticket: ticket, wx: wx, err: err}
	}
}
