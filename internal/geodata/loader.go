// Package geodata loads named region geometries from GeoJSON or ESRI shapefiles.
package geodata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
)

// ErrDuplicateRegion reports two features sharing a name.
var ErrDuplicateRegion = errors.New("duplicate region name")

// maxDownloadBytes bounds remote GeoJSON downloads.
const maxDownloadBytes = 64 << 20

type namedGeometry struct {
	Name     string
	Geometry domain.Geometry
}

// Loader reads a dataset from a local path or an http(s) URL.
type Loader struct {
	httpClient   *http.Client
	nameProperty string
	logger       *slog.Logger
}

// NewLoader creates a loader reading region names from nameProperty.
func NewLoader(nameProperty string, timeout time.Duration, logger *slog.Logger) *Loader {
	if nameProperty == "" {
		nameProperty = "NAME"
	}
	return &Loader{
		httpClient:   &http.Client{Timeout: timeout},
		nameProperty: nameProperty,
		logger:       logger,
	}
}

// Load reads and validates every region in source. Regions keep dataset order.
func (l *Loader) Load(ctx context.Context, source string) ([]domain.Region, error) {
	skip := func(name, reason string) {
		l.logger.Warn("skipping feature", "region", name, "reason", reason)
	}

	var (
		geoms []namedGeometry
		err   error
	)
	switch {
	case strings.EqualFold(filepath.Ext(source), ".shp"):
		geoms, err = readShapefile(source, l.nameProperty, skip)
	default:
		var data []byte
		data, err = l.read(ctx, source)
		if err != nil {
			return nil, err
		}
		geoms, err = parseGeoJSON(data, l.nameProperty, skip)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	regions, err := buildRegions(geoms)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	l.logger.Info("geodata loaded", "source", source, "regions", len(regions))
	return regions, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read geodata: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build geodata request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch geodata: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch geodata: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read geodata body: %w", err)
	}
	return data, nil
}

func buildRegions(geoms []namedGeometry) ([]domain.Region, error) {
	seen := make(map[string]struct{}, len(geoms))
	regions := make([]domain.Region, 0, len(geoms))
	for _, g := range geoms {
		r, err := domain.NewRegion(g.Name, g.Geometry)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRegion, r.Name)
		}
		seen[r.Name] = struct{}{}
		regions = append(regions, r)
	}
	return regions, nil
}
