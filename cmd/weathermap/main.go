// Command weathermap serves the choropleth map, locality weather pages, and
// the JSON API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/weather-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-map-service/internal/adapter/openweathermap"
	"github.com/couchcryptid/weather-map-service/internal/config"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/events"
	"github.com/couchcryptid/weather-map-service/internal/geodata"
	"github.com/couchcryptid/weather-map-service/internal/mapview"
	"github.com/couchcryptid/weather-map-service/internal/navigation"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/couchcryptid/weather-map-service/internal/weather"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A failed load leaves the map unavailable; search keeps working.
	maps, err := mapview.NewService(cfg.MapProjection, metrics, logger)
	if err != nil {
		logger.Error("invalid map projection", "error", err)
		os.Exit(1)
	}
	loader := geodata.NewLoader(cfg.GeodataNameProperty, 30*time.Second, logger)
	_ = maps.Load(ctx, loader, cfg.GeodataSource)

	// Event publishing (enabled via EVENTS_ENABLED / KAFKA_BROKERS).
	var publisher domain.EventPublisher = events.Discard
	var writer *kafkaadapter.Writer
	var dispatcher *events.Dispatcher
	if cfg.EventsEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		dispatcher = events.NewDispatcher(writer, cfg.EventsBatchSize, cfg.EventsFlushInterval, clockwork.NewRealClock(), logger, metrics)
		publisher = dispatcher
		logger.Info("event publishing enabled", "topic", cfg.KafkaEventsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("event publishing disabled")
	}

	client := openweathermap.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.WeatherUnits, cfg.WeatherTimeout, metrics, logger)
	fetcher := weather.NewRateLimited(client, cfg.WeatherRateLimit, cfg.WeatherRateBurst, metrics)

	srv, err := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Maps:       maps,
		Weather:    fetcher,
		Navigation: navigation.NewController(domain.DefaultLocalityBindings(), publisher, metrics, logger),
		Events:     publisher,
		Ready:      maps,
		MapWidth:   float64(cfg.MapWidth),
		MapHeight:  float64(cfg.MapHeight),
		Units:      cfg.WeatherUnits,
		Location:   time.Local,
	}, metrics, logger)
	if err != nil {
		logger.Error("failed to build http server", "error", err)
		os.Exit(1)
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start event dispatcher. It outlives the signal so in-flight requests can
	// still publish while HTTP drains.
	dispatchCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		if dispatcher == nil {
			return
		}
		if err := dispatcher.Run(dispatchCtx); err != nil {
			logger.Error("event dispatcher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	shutdown(shutdownCtx, srv, stopDispatcher, dispatcherDone, logger)
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
