package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/choropleth"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/gorilla/mux"
)

const (
	notFoundNotice    = "City not found. Please check the spelling and try again."
	unavailableNotice = "Weather data is temporarily unavailable. Please try again later."
	maxCanvasSize     = 10000
)

func (s *Server) location() *time.Location {
	if s.deps.Location == nil {
		return time.UTC
	}
	return s.deps.Location
}

// mapSVG renders the default-size map with region links.
func (s *Server) mapSVG(width, height float64) ([]byte, error) {
	m, err := s.deps.Maps.Render(width, height, nil)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := m.WriteSVG(&buf, choropleth.SVGOptions{Href: selectPath, ID: "map-"}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page := homePage{
		Title:  "Weather Map",
		Notice: strings.TrimSpace(r.URL.Query().Get("notice")),
	}

	doc, err := s.mapSVG(s.deps.MapWidth, s.deps.MapHeight)
	if err != nil {
		s.logger.Warn("map render failed", "error", err)
		page.MapError = "the region dataset could not be loaded"
	} else {
		page.Map = inlineSVG(doc)
	}
	s.renderPage(w, http.StatusOK, s.views.home, page)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, weatherPath(city), http.StatusSeeOther)
}

// fetchWeather fetches and records the outcome as a MapEvent.
func (s *Server) fetchWeather(ctx context.Context, locality string) (domain.Weather, int, error) {
	wx, err := s.deps.Weather.Fetch(ctx, locality)
	switch {
	case err == nil:
		if wx.Units == "" {
			wx.Units = s.deps.Units
		}
		s.deps.Events.Publish(ctx, domain.NewMapEvent(domain.EventWeatherViewed, "", locality))
		return wx, http.StatusOK, nil
	case errors.Is(err, domain.ErrLocalityNotFound):
		s.logger.Info("locality not found", "locality", locality)
		s.deps.Events.Publish(ctx, domain.NewMapEvent(domain.EventWeatherNotFound, "", locality))
		return domain.Weather{}, http.StatusNotFound, err
	default:
		s.logger.Error("weather fetch failed", "locality", locality, "error", err)
		s.deps.Events.Publish(ctx, domain.NewMapEvent(domain.EventWeatherFailed, "", locality))
		return domain.Weather{}, http.StatusBadGateway, err
	}
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	locality := strings.TrimSpace(mux.Vars(r)["locality"])
	page := weatherPage{Title: locality + " | Weather", Locality: locality}

	wx, status, err := s.fetchWeather(r.Context(), locality)
	if err != nil {
		page.Notice = unavailableNotice
		if status == http.StatusNotFound {
			page.Notice = notFoundNotice
		}
		s.renderPage(w, status, s.views.weather, page)
		return
	}

	charts, err := renderCharts(wx, s.location())
	if err != nil {
		s.logger.Error("chart render failed", "locality", locality, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	page.Current = newCurrentView(wx, s.location())
	page.Charts = charts
	s.renderPage(w, http.StatusOK, s.views.weather, page)
}

// redirect is a request-scoped navigator and notifier: whichever the
// selection controller calls decides where the browser goes next.
type redirect struct {
	location string
}

func (d *redirect) Navigate(_ context.Context, locality string) error {
	d.location = weatherPath(locality)
	return nil
}

func (d *redirect) Notice(_ context.Context, msg string) error {
	d.location = homeWithNotice(msg)
	return nil
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	region := mux.Vars(r)["region"]
	dest := &redirect{}
	session := s.deps.Navigation.Session(dest, dest)

	m, err := s.deps.Maps.Render(s.deps.MapWidth, s.deps.MapHeight, session)
	if err != nil {
		s.logger.Warn("map render failed", "error", err)
		http.Error(w, "map unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := m.Click(r.Context(), region); err != nil {
		if errors.Is(err, choropleth.ErrUnknownRegion) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("region selection failed", "region", region, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, dest.location, http.StatusSeeOther)
}

func (s *Server) handleMapSVG(w http.ResponseWriter, r *http.Request) {
	width, err := canvasParam(r, "width", s.deps.MapWidth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := canvasParam(r, "height", s.deps.MapHeight)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.mapSVG(width, height)
	if err != nil {
		s.logger.Warn("map render failed", "error", err)
		http.Error(w, "map unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(doc) //nolint:errcheck // client went away
}

func canvasParam(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxCanvasSize {
		return 0, errors.New(key + " must be an integer between 1 and 10000")
	}
	return float64(n), nil
}
