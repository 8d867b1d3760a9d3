package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/chart"
	"github.com/couchcryptid/weather-map-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

type views struct {
	home    *template.Template
	weather *template.Template
}

func parseViews() (*views, error) {
	home, err := template.ParseFS(templateFS, "templates/base.html", "templates/home.html")
	if err != nil {
		return nil, fmt.Errorf("parse home template: %w", err)
	}
	weather, err := template.ParseFS(templateFS, "templates/base.html", "templates/weather.html")
	if err != nil {
		return nil, fmt.Errorf("parse weather template: %w", err)
	}
	return &views{home: home, weather: weather}, nil
}

type homePage struct {
	Title    string
	Notice   string
	Map      template.HTML
	MapError string
}

type weatherPage struct {
	Title    string
	Locality string
	Notice   string
	Current  *currentView
	Charts   []template.HTML
}

type currentView struct {
	Locality    string
	Description string
	Temperature string
	Humidity    string
	WindSpeed   string
	ObservedAt  string
}

func newCurrentView(wx domain.Weather, loc *time.Location) *currentView {
	c := wx.Current
	return &currentView{
		Locality:    c.Locality,
		Description: c.Description,
		Temperature: fmt.Sprintf("%.1f%s", c.Temperature, wx.Units.TemperatureLabel()),
		Humidity:    fmt.Sprintf("%.0f%%", c.Humidity),
		WindSpeed:   fmt.Sprintf("%.1f %s", c.WindSpeed, wx.Units.SpeedLabel()),
		ObservedAt:  c.ObservedAt.In(loc).Format("Mon 2 Jan 15:04"),
	}
}

var chartPrefixes = map[chart.Kind]string{
	chart.Line:          "temperature-",
	chart.VectorField:   "wind-",
	chart.IntensityGrid: "intensity-",
}

// renderCharts draws the three forecast charts for inline embedding. Each gets
// its own id prefix so gradients and markers do not collide in one document.
func renderCharts(wx domain.Weather, loc *time.Location) ([]template.HTML, error) {
	kinds := []chart.Kind{chart.Line, chart.VectorField, chart.IntensityGrid}
	out := make([]template.HTML, 0, len(kinds))
	for _, k := range kinds {
		rc := chart.DefaultContext(k, wx.Units, loc, chartPrefixes[k])
		fig := chart.New(k, chart.DefaultOptions(k, wx.Units)).Render(rc, wx.Forecast)

		var buf bytes.Buffer
		if err := fig.WriteSVG(&buf); err != nil {
			return nil, fmt.Errorf("render %s chart: %w", k, err)
		}
		out = append(out, inlineSVG(buf.Bytes()))
	}
	return out, nil
}

// inlineSVG drops the XML prolog so the document can sit inside HTML.
func inlineSVG(doc []byte) template.HTML {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		doc = doc[i:]
	}
	return template.HTML(doc) //nolint:gosec // generated by svgo with escaped text
}

func weatherPath(locality string) string {
	return "/weather/" + url.PathEscape(locality)
}

func selectPath(region string) string {
	return "/regions/" + url.PathEscape(region) + "/select"
}

func homeWithNotice(msg string) string {
	return "/?" + url.Values{"notice": {msg}}.Encode()
}

// renderPage executes tmpl into a buffer first so a template failure never
// leaves a half-written page behind.
func (s *Server) renderPage(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error("render page failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck // client went away
}
