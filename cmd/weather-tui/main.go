// Command weather-tui is a terminal front end for the same weather lookups
// the web app serves.
//
// Usage:
//
//	go run ./cmd/weather-tui -log weather-tui.log
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchcryptid/weather-map-service/internal/adapter/openweathermap"
	"github.com/couchcryptid/weather-map-service/internal/config"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/events"
	"github.com/couchcryptid/weather-map-service/internal/geodata"
	"github.com/couchcryptid/weather-map-service/internal/navigation"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/couchcryptid/weather-map-service/internal/tui"
	"github.com/couchcryptid/weather-map-service/internal/weather"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "weather-tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logPath := flag.String("log", "", "write logs to this file (default: discard)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := observability.NewLoggerTo(logOut, cfg)
	metrics := observability.NewMetrics()

	bindings := domain.DefaultLocalityBindings()
	regions := bindings.Regions()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	loaded, err := geodata.NewLoader(cfg.GeodataNameProperty, 30*time.Second, logger).Load(ctx, cfg.GeodataSource)
	cancel()
	if err != nil {
		logger.Warn("geodata unavailable, listing bound regions only", "error", err)
	} else {
		regions = make([]string, len(loaded))
		for i, r := range loaded {
			regions[i] = r.Name
		}
	}

	client := openweathermap.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.WeatherUnits, cfg.WeatherTimeout, metrics, logger)
	model := tui.NewModel(tui.Deps{
		Fetcher:    weather.NewRateLimited(client, cfg.WeatherRateLimit, cfg.WeatherRateBurst, metrics),
		Navigation: navigation.NewController(bindings, events.Discard, metrics, logger),
		Regions:    regions,
		Location:   time.Local,
		Timeout:    cfg.WeatherTimeout * 2,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
