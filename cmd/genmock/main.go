// Command genmock writes deterministic OpenWeatherMap 2.5 responses for local
// development and, with -serve, answers /weather and /forecast from them so the
// service can run against WEATHER_BASE_URL=http://localhost:8090 without a key.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -localities Denver,Houston,Anchorage
//	go run ./cmd/genmock -out data/mock -serve :8090
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

const forecastSteps = 40 // 5 days at 3-hour intervals

type coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type mainBlock struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

type wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type current struct {
	Coord   coord       `json:"coord"`
	Weather []condition `json:"weather"`
	Main    mainBlock   `json:"main"`
	Wind    wind        `json:"wind"`
	Dt      int64       `json:"dt"`
	Name    string      `json:"name"`
	Cod     int         `json:"cod"`
}

type clouds struct {
	All float64 `json:"all"`
}

type item struct {
	Dt     int64              `json:"dt"`
	Main   mainBlock          `json:"main"`
	Wind   wind               `json:"wind"`
	Clouds clouds             `json:"clouds"`
	Rain   map[string]float64 `json:"rain,omitempty"`
}

type forecast struct {
	Cod  string `json:"cod"`
	Cnt  int    `json:"cnt"`
	List []item `json:"list"`
}

// seeds gives each known locality a plausible climate.
var seeds = map[string]struct {
	coord   coord
	meanC   float64
	swingC  float64
	windMPS float64
}{
	"Denver":    {coord{-104.99, 39.74}, 22, 9, 4},
	"Houston":   {coord{-95.37, 29.76}, 30, 5, 3},
	"Anchorage": {coord{-149.90, 61.22}, 14, 5, 5},
	"Honolulu":  {coord{-157.86, 21.31}, 27, 3, 6},
	"Boston":    {coord{-71.06, 42.36}, 21, 6, 5},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "directory for the generated fixtures")
	localities := flag.String("localities", "Denver,Houston,Anchorage,Honolulu,Boston", "comma-separated localities")
	serve := flag.String("serve", "", "serve the fixtures as a mock API on this address")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return errors.New("missing required flag: -out")
	}

	// Fixed clock so regenerated fixtures are byte-identical.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate))
	defer domain.SetClock(nil)

	for _, name := range strings.Split(*localities, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cur, fc := generate(name)
		if err := writeJSON(fixturePath(*outDir, "weather", name), cur); err != nil {
			return err
		}
		if err := writeJSON(fixturePath(*outDir, "forecast", name), fc); err != nil {
			return err
		}
		log.Printf("%s: current + %d forecast points", name, len(fc.List))
	}

	if *serve == "" {
		return nil
	}
	log.Printf("serving mock OpenWeatherMap API on %s", *serve)
	srv := &http.Server{
		Addr:              *serve,
		Handler:           mockHandler(*outDir),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func generate(name string) (current, forecast) {
	seed, ok := seeds[name]
	if !ok {
		seed = seeds["Denver"]
	}
	now := domain.Now()

	cur := current{
		Coord:   seed.coord,
		Weather: []condition{{Main: "Clear", Description: "clear sky"}},
		Main:    mainBlock{Temp: round1(seed.meanC), Humidity: 55},
		Wind:    wind{Speed: seed.windMPS, Deg: 200},
		Dt:      now.Unix(),
		Name:    name,
		Cod:     200,
	}

	fc := forecast{Cod: "200", Cnt: forecastSteps}
	for i := range forecastSteps {
		t := now.Add(time.Duration(i*3) * time.Hour)
		phase := 2 * math.Pi * float64(t.Hour()-15) / 24
		it := item{
			Dt:     t.Unix(),
			Main:   mainBlock{Temp: round1(seed.meanC + seed.swingC*math.Cos(phase)), Humidity: round1(55 - 15*math.Cos(phase))},
			Wind:   wind{Speed: round1(seed.windMPS * (1 + 0.5*math.Sin(float64(i)/3))), Deg: math.Mod(float64(180+i*23), 360)},
			Clouds: clouds{All: math.Mod(float64(i*17), 100)},
		}
		// Afternoon showers every other day.
		if (i/8)%2 == 1 && t.Hour() >= 15 && t.Hour() <= 18 {
			it.Rain = map[string]float64{"3h": round1(0.4 + float64(i%5)*0.3)}
		}
		fc.List = append(fc.List, it)
	}
	return cur, fc
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func fixturePath(dir, endpoint, locality string) string {
	slug := strings.ToLower(strings.ReplaceAll(locality, " ", "_"))
	return filepath.Join(dir, endpoint+"_"+slug+".json")
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// mockHandler answers like the real API, including the 404 body for
// unknown localities.
func mockHandler(dir string) http.Handler {
	mux := http.NewServeMux()
	for _, endpoint := range []string{"weather", "forecast"} {
		mux.HandleFunc("GET /"+endpoint, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			data, err := os.ReadFile(fixturePath(dir, endpoint, r.URL.Query().Get("q")))
			if err != nil {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"cod":"404","message":"city not found"}`)
				return
			}
			w.Write(data) //nolint:errcheck // mock server
		})
	}
	return mux
}
