package web

import (
	"encoding/json"
	"net/http"

	"github.com/nearmark/nearmark/internal/domain"
)

type markerResponse struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type photoResponse struct {
	ID       string `json:"id"`
	URI      string `json:"uri"`
	MarkerID string `json:"markerId"`
}

func toMarkerResponse(m *domain.Marker) markerResponse {
	return markerResponse{ID: m.ID, Latitude: m.Latitude, Longitude: m.Longitude}
}

func (s *Server) handleAddMarker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	marker, err := s.service.AddMarker(r.Context(), req.Latitude, req.Longitude)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toMarkerResponse(marker))
}

func (s *Server) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := s.service.ListMarkers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]markerResponse, 0, len(markers))
	for _, m := range markers {
		resp = append(resp, toMarkerResponse(m))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteMarker(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteMarker(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAllMarkers(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteAllMarkers(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := s.service.ListPhotos(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		resp = append(resp, photoResponse{ID: p.ID, URI: p.URI, MarkerID: p.MarkerID})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddPhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.URI == "" {
		http.Error(w, "photo uri required", http.StatusBadRequest)
		return
	}

	photo, err := s.service.AddPhoto(r.Context(), r.PathValue("id"), req.URI)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, photoResponse{ID: photo.ID, URI: photo.URI, MarkerID: photo.MarkerID})
}
