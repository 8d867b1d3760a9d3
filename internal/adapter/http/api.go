package http

import (
	"net/http"
	"strings"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/gorilla/mux"
)

type regionResponse struct {
	domain.Region
	Locality  string `json:"locality,omitempty"`
	Supported bool   `json:"supported"`
}

func (s *Server) handleAPIRegions(w http.ResponseWriter, _ *http.Request) {
	if err := s.deps.Maps.Err(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "map unavailable"})
		return
	}

	bindings := s.deps.Navigation.Bindings()
	regions := s.deps.Maps.Regions()
	out := make([]regionResponse, 0, len(regions))
	for _, r := range regions {
		loc, ok := bindings.Resolve(r.Name)
		out = append(out, regionResponse{Region: r, Locality: loc, Supported: ok})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIWeather(w http.ResponseWriter, r *http.Request) {
	locality := strings.TrimSpace(mux.Vars(r)["locality"])

	wx, status, err := s.fetchWeather(r.Context(), locality)
	if err != nil {
		msg := unavailableNotice
		if status == http.StatusNotFound {
			msg = notFoundNotice
		}
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	wx.Forecast = domain.SortedForecast(wx.Forecast)
	writeJSON(w, http.StatusOK, wx)
}
