package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nearmark/nearmark/internal/db"
	"github.com/nearmark/nearmark/internal/photofile"
	"github.com/nearmark/nearmark/internal/position"
	"github.com/nearmark/nearmark/internal/service"
	"github.com/nearmark/nearmark/internal/store"
	"github.com/nearmark/nearmark/internal/watch"
)

// Server exposes the marker service and the position ingest endpoint as a
// JSON API. It stands in for the mobile presentation layer.
type Server struct {
	service       *service.MarkerService
	feed          *position.Feed
	photoFiles    *photofile.FileStore
	defaultRadius float64
	mux           *http.ServeMux
	logger        *slog.Logger
}

func NewServer(svc *service.MarkerService, feed *position.Feed, photoFiles *photofile.FileStore, defaultRadius float64, logger *slog.Logger) *Server {
	s := &Server{
		service:       svc,
		feed:          feed,
		photoFiles:    photoFiles,
		defaultRadius: defaultRadius,
		mux:           http.NewServeMux(),
		logger:        logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /markers", s.handleAddMarker)
	s.mux.HandleFunc("GET /markers", s.handleListMarkers)
	s.mux.HandleFunc("DELETE /markers", s.handleDeleteAllMarkers)
	s.mux.HandleFunc("DELETE /markers/{id}", s.handleDeleteMarker)
	s.mux.HandleFunc("GET /markers/{id}/photos", s.handleListPhotos)
	s.mux.HandleFunc("POST /markers/{id}/photos", s.handleAddPhoto)
	s.mux.HandleFunc("POST /markers/{id}/photos/upload", s.handleUploadPhoto)
	s.mux.HandleFunc("GET /photos/{key}", s.handleGetPhotoFile)
	s.mux.HandleFunc("POST /position", s.handlePublishPosition)
	s.mux.HandleFunc("GET /position", s.handleCurrentPosition)
	s.mux.HandleFunc("POST /tracking/start", s.handleStartTracking)
	s.mux.HandleFunc("POST /tracking/stop", s.handleStopTracking)
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, s.mux).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps engine errors to HTTP statuses and emits a single
// human-readable message.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrInvalidCoordinate):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrForeignKeyViolation):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateKey), errors.Is(err, watch.ErrAlreadyTracking):
		status = http.StatusConflict
	case errors.Is(err, position.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrNotInitialized),
		errors.Is(err, db.ErrStorageUnavailable),
		errors.Is(err, position.ErrProviderUnavailable):
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
