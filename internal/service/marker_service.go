package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nearmark/nearmark/internal/domain"
)

// markerRepository is the subset of store.MarkerStore that MarkerService requires.
type markerRepository interface {
	Create(ctx context.Context, id string, latitude, longitude float64) (*domain.Marker, error)
	List(ctx context.Context) ([]*domain.Marker, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// photoRepository is the subset of store.PhotoStore that MarkerService requires.
type photoRepository interface {
	Create(ctx context.Context, markerID, uri string) (*domain.Photo, error)
	ListByMarker(ctx context.Context, markerID string) ([]*domain.Photo, error)
}

// tracker is the subset of watch.Watcher that MarkerService requires.
type tracker interface {
	Start(ctx context.Context, radiusMeters float64) error
	Stop()
	Refresh(ctx context.Context) error
}

// MarkerService is the API the presentation layer consumes. Mutations go
// through the store first, then the watcher's marker snapshot is refreshed.
type MarkerService struct {
	markers markerRepository
	photos  photoRepository
	tracker tracker
	logger  *slog.Logger
}

func NewMarkerService(markers markerRepository, photos photoRepository, tracker tracker, logger *slog.Logger) *MarkerService {
	return &MarkerService{
		markers: markers,
		photos:  photos,
		tracker: tracker,
		logger:  logger,
	}
}

// AddMarker places a new marker at the given coordinates under a fresh
// random id.
func (s *MarkerService) AddMarker(ctx context.Context, latitude, longitude float64) (*domain.Marker, error) {
	marker, err := s.markers.Create(ctx, uuid.NewString(), latitude, longitude)
	if err != nil {
		return nil, err
	}
	s.refreshTracker(ctx)
	return marker, nil
}

func (s *MarkerService) ListMarkers(ctx context.Context) ([]*domain.Marker, error) {
	return s.markers.List(ctx)
}

func (s *MarkerService) ListPhotos(ctx context.Context, markerID string) ([]*domain.Photo, error) {
	return s.photos.ListByMarker(ctx, markerID)
}

func (s *MarkerService) AddPhoto(ctx context.Context, markerID, uri string) (*domain.Photo, error) {
	return s.photos.Create(ctx, markerID, uri)
}

func (s *MarkerService) DeleteMarker(ctx context.Context, id string) error {
	if err := s.markers.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshTracker(ctx)
	return nil
}

func (s *MarkerService) DeleteAllMarkers(ctx context.Context) error {
	if err := s.markers.DeleteAll(ctx); err != nil {
		return err
	}
	s.refreshTracker(ctx)
	return nil
}

func (s *MarkerService) StartTracking(ctx context.Context, radiusMeters float64) error {
	return s.tracker.Start(ctx, radiusMeters)
}

func (s *MarkerService) StopTracking() {
	s.tracker.Stop()
}

// refreshTracker keeps the watcher's snapshot in step with the store. The
// mutation has already committed, so a failed refresh is logged rather than
// surfaced; the snapshot catches up on the next mutation or tracking start.
func (s *MarkerService) refreshTracker(ctx context.Context) {
	if err := s.tracker.Refresh(ctx); err != nil {
		s.logger.Error("failed to refresh marker snapshot", "error", err)
	}
}
