// Package http serves the map and locality pages, a small JSON API, and the
// health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/choropleth"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/navigation"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// MapRenderer builds a fresh choropleth for a canvas size.
type MapRenderer interface {
	Render(width, height float64, handler choropleth.SelectionHandler) (*choropleth.Map, error)
	Regions() []domain.Region
	Err() error
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Maps       MapRenderer
	Weather    domain.WeatherFetcher
	Navigation *navigation.Controller
	Events     domain.EventPublisher
	Ready      ReadinessChecker

	MapWidth  float64
	MapHeight float64
	// Units labels weather from fetchers that do not report their own.
	Units domain.Units
	// Location is the time zone for chart tick labels; nil means UTC.
	Location *time.Location
}

// Server exposes the application routes plus /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	deps       Deps
	views      *views
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with every route registered.
func NewServer(addr string, deps Deps, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	v, err := parseViews()
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:    deps,
		views:   v,
		metrics: metrics,
		logger:  logger,
	}

	router.Use(s.instrument)

	router.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	router.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/weather/{locality}", s.handleWeather).Methods(http.MethodGet)
	router.HandleFunc("/regions/{region}/select", s.handleSelect).Methods(http.MethodGet)
	router.HandleFunc("/map.svg", s.handleMapSVG).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/regions", s.handleAPIRegions).Methods(http.MethodGet)
	api.HandleFunc("/weather/{locality}", s.handleAPIWeather).Methods(http.MethodGet)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", handleReady(deps.Ready)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return s, nil
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
