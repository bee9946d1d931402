package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nearmark/nearmark/internal/domain"
)

func (s *Server) handlePublishPosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.feed.Publish(domain.Position{Latitude: req.Latitude, Longitude: req.Longitude})
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleCurrentPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := s.feed.Current(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{
		"latitude":  pos.Latitude,
		"longitude": pos.Longitude,
	})
}

func (s *Server) handleStartTracking(w http.ResponseWriter, r *http.Request) {
	radius := s.defaultRadius

	var req struct {
		RadiusMeters float64 `json:"radiusMeters"`
	}
	// The body is optional; an empty body starts with the configured default.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RadiusMeters > 0 {
		radius = req.RadiusMeters
	}

	if err := s.service.StartTracking(r.Context(), radius); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStopTracking(w http.ResponseWriter, _ *http.Request) {
	s.service.StopTracking()
	w.WriteHeader(http.StatusNoContent)
}
