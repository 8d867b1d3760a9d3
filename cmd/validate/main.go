// Command validate checks a region dataset before it is deployed: every
// region loads with a valid geometry and centroid, every locality binding
// names a region in the dataset, and the map projects inside the canvas.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -source data/us-states.geojson \
//	  -name-property NAME \
//	  -projection albers-usa \
//	  -width 1000 -height 700
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/choropleth"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/geodata"
	"github.com/couchcryptid/weather-map-service/internal/projection"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	source := flag.String("source", "data/us-states.geojson", "GeoJSON path/URL or .shp path")
	nameProp := flag.String("name-property", "NAME", "feature property holding the region name")
	projName := flag.String("projection", "albers-usa", "albers or albers-usa")
	width := flag.Int("width", 1000, "canvas width in pixels")
	height := flag.Int("height", 700, "canvas height in pixels")
	flag.Parse()

	if *width < 1 || *height < 1 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*source, *nameProp, *projName, float64(*width), float64(*height)))
}

func run(source, nameProp, projName string, width, height float64) int {
	fmt.Println("=== Region Dataset Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	regions, err := geodata.NewLoader(nameProp, time.Minute, logger).Load(ctx, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", source, err)
		return 1
	}
	raw, err := projection.New(projName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRegions(regions),
		validateBindings(regions, domain.DefaultLocalityBindings()),
		validateProjection(raw, regions, width, height),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Regions: %d from %s\n", len(regions), source)

	for _, p := range phases {
		if len(p.notes) == 0 && p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Printf("  note: %s\n", n)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateRegions checks centroids and bounding boxes.
func validateRegions(regions []domain.Region) *phase {
	p := &phase{name: "Region geometry"}
	if len(regions) == 0 {
		p.errorf("dataset has no regions")
	}
	for _, r := range regions {
		if !r.HasCentroid {
			p.notef("%s: centroid undefined, label placed at the canvas origin", r.Name)
			continue
		}
		b := r.Geometry.Bounds()
		// Antimeridian-crossing regions have bounds spanning the globe.
		if b.Max.Lon-b.Min.Lon > 180 {
			p.notef("%s: crosses the antimeridian", r.Name)
			continue
		}
		c := r.Centroid
		if c.Lat < b.Min.Lat-1e-6 || c.Lat > b.Max.Lat+1e-6 {
			p.errorf("%s: centroid latitude %.4f outside bounds [%.4f, %.4f]", r.Name, c.Lat, b.Min.Lat, b.Max.Lat)
		}
	}
	return p
}

// validateBindings checks the locality table against the dataset.
func validateBindings(regions []domain.Region, bindings domain.LocalityBindings) *phase {
	p := &phase{name: "Locality bindings"}
	names := make(map[string]bool, len(regions))
	for _, r := range regions {
		names[r.Name] = true
		if _, ok := bindings.Resolve(r.Name); !ok {
			p.notef("%s: no locality, clicks show %q", r.Name, domain.UnsupportedNotice(r.Name))
		}
	}
	for _, name := range bindings.Regions() {
		if !names[name] {
			p.errorf("binding %q -> %q names a region missing from the dataset", name, bindings[name])
		}
	}
	return p
}

// validateProjection fits the map and checks every vertex lands on the canvas.
func validateProjection(raw projection.Raw, regions []domain.Region, width, height float64) *phase {
	p := &phase{name: fmt.Sprintf("Projection fit (%gx%g)", width, height)}
	proj, err := projection.Fit(raw, regions, width, height)
	if err != nil {
		p.errorf("fit: %v", err)
		return p
	}

	const eps = 1e-6
	for _, r := range regions {
		outside := 0
		for _, poly := range r.Geometry.Polygons {
			for _, ring := range poly {
				for _, pt := range proj.ProjectRing(ring) {
					if pt.X < -eps || pt.X > width+eps || pt.Y < -eps || pt.Y > height+eps {
						outside++
					}
				}
			}
		}
		if outside > 0 {
			p.errorf("%s: %d vertices outside the canvas", r.Name, outside)
		}
	}

	m, err := choropleth.Render(proj, regions, choropleth.Options{})
	if err != nil {
		p.errorf("render: %v", err)
		return p
	}
	if err := m.WriteSVG(io.Discard, choropleth.SVGOptions{}); err != nil {
		p.errorf("write svg: %v", err)
	}
	return p
}
