// Package mapview owns the loaded region dataset and rebuilds the
// choropleth for each requested canvas size.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/weather-map-service/internal/choropleth"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/couchcryptid/weather-map-service/internal/projection"
)

// ErrMapUnavailable is returned by Render when the dataset failed to load.
var ErrMapUnavailable = errors.New("map unavailable")

// RegionLoader reads the geographic dataset.
type RegionLoader interface {
	Load(ctx context.Context, source string) ([]domain.Region, error)
}

// Service holds the immutable region set shared by all requests.
type Service struct {
	raw     projection.Raw
	metrics *observability.Metrics
	logger  *slog.Logger

	mu      sync.RWMutex
	regions []domain.Region
	loadErr error
	loaded  bool
}

// NewService creates a service drawing with the named projection.
func NewService(projectionName string, metrics *observability.Metrics, logger *slog.Logger) (*Service, error) {
	raw, err := projection.New(projectionName)
	if err != nil {
		return nil, err
	}
	return &Service{raw: raw, metrics: metrics, logger: logger}, nil
}

// Load reads the dataset once. A failure is kept and reported by Render and
// CheckReadiness; callers may continue serving everything except the map.
func (s *Service) Load(ctx context.Context, loader RegionLoader, source string) error {
	regions, err := loader.Load(ctx, source)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	if err != nil {
		s.loadErr = err
		s.regions = nil
		s.metrics.GeodataLoaded.Set(0)
		s.metrics.GeodataRegions.Set(0)
		s.logger.Error("geodata load failed", "source", source, "error", err)
		return err
	}
	if len(regions) == 0 {
		s.loadErr = fmt.Errorf("%s: no regions", source)
		s.regions = nil
		s.metrics.GeodataLoaded.Set(0)
		s.metrics.GeodataRegions.Set(0)
		s.logger.Error("geodata has no regions", "source", source)
		return s.loadErr
	}

	s.loadErr = nil
	s.regions = regions
	s.metrics.GeodataLoaded.Set(1)
	s.metrics.GeodataRegions.Set(float64(len(regions)))
	s.logger.Info("geodata loaded", "source", source, "regions", len(regions))
	return nil
}

// Regions returns the loaded regions, or nil when loading failed.
func (s *Service) Regions() []domain.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.regions
}

// Err returns the stored load failure.
func (s *Service) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return errors.New("geodata not loaded yet")
	}
	return s.loadErr
}

// CheckReadiness returns nil once the dataset has loaded successfully.
func (s *Service) CheckReadiness(_ context.Context) error {
	if err := s.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrMapUnavailable, err)
	}
	return nil
}

// Render fits the projection to width×height and builds a fresh choropleth.
// Nothing is reused from previous renders.
func (s *Service) Render(width, height float64, handler choropleth.SelectionHandler) (*choropleth.Map, error) {
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMapUnavailable, err)
	}
	regions := s.Regions()

	proj, err := projection.Fit(s.raw, regions, width, height)
	if err != nil {
		return nil, fmt.Errorf("fit projection: %w", err)
	}
	m, err := choropleth.Render(proj, regions, choropleth.Options{Handler: handler})
	if err != nil {
		return nil, err
	}
	s.metrics.MapRenders.Inc()
	return m, nil
}
