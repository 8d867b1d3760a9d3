package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Geographic dataset and map canvas.
	GeodataSource       string
	GeodataNameProperty string
	MapProjection       string
	MapWidth            int
	MapHeight           int

	// OpenWeatherMap configuration.
	WeatherAPIKey    string
	WeatherBaseURL   string
	WeatherUnits     domain.Units
	WeatherTimeout   time.Duration
	WeatherRateLimit float64
	WeatherRateBurst int

	// Map event publishing.
	KafkaBrokers        []string
	KafkaEventsTopic    string
	EventsEnabled       bool
	EventsBatchSize     int
	EventsFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	mapWidth, err := parseIntInRange("MAP_WIDTH", 1000, 1, 10000)
	if err != nil {
		return nil, err
	}
	mapHeight, err := parseIntInRange("MAP_HEIGHT", 700, 1, 10000)
	if err != nil {
		return nil, err
	}

	units, err := domain.ParseUnits(envOrDefault("WEATHER_UNITS", string(domain.UnitsMetric)))
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_UNITS: %w", err)
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	rateLimit, err := parsePositiveFloat("WEATHER_RATE_LIMIT", 1)
	if err != nil {
		return nil, err
	}
	rateBurst, err := parseIntInRange("WEATHER_RATE_BURST", 5, 1, 1000)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseIntInRange("EVENTS_BATCH_SIZE", 50, 1, 1000)
	if err != nil {
		return nil, err
	}
	flushInterval, err := parsePositiveDuration("EVENTS_FLUSH_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	eventsEnabled := len(brokers) > 0
	if v := os.Getenv("EVENTS_ENABLED"); v != "" {
		eventsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GeodataSource:       envOrDefault("GEODATA_SOURCE", "data/us-states.geojson"),
		GeodataNameProperty: envOrDefault("GEODATA_NAME_PROPERTY", "NAME"),
		MapProjection:       envOrDefault("MAP_PROJECTION", "albers-usa"),
		MapWidth:            mapWidth,
		MapHeight:           mapHeight,

		WeatherAPIKey:    os.Getenv("WEATHER_API_KEY"),
		WeatherBaseURL:   strings.TrimRight(envOrDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"), "/"),
		WeatherUnits:     units,
		WeatherTimeout:   weatherTimeout,
		WeatherRateLimit: rateLimit,
		WeatherRateBurst: rateBurst,

		KafkaBrokers:        brokers,
		KafkaEventsTopic:    envOrDefault("KAFKA_EVENTS_TOPIC", "weather-map-events"),
		EventsEnabled:       eventsEnabled,
		EventsBatchSize:     batchSize,
		EventsFlushInterval: flushInterval,
	}

	if cfg.WeatherAPIKey == "" {
		return nil, errors.New("WEATHER_API_KEY is required")
	}
	if cfg.GeodataSource == "" {
		return nil, errors.New("GEODATA_SOURCE is required")
	}
	switch cfg.MapProjection {
	case "albers", "albers-usa":
	default:
		return nil, fmt.Errorf("invalid MAP_PROJECTION %q: want albers or albers-usa", cfg.MapProjection)
	}
	if cfg.EventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.EventsEnabled && cfg.KafkaEventsTopic == "" {
		return nil, errors.New("KAFKA_EVENTS_TOPIC is required when events are enabled")
	}

	return cfg, nil
}
