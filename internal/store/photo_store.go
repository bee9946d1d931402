package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/nearmark/nearmark/internal/domain"
)

type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

// Create generates a fresh photo id and attaches the photo to markerID. The
// marker must exist at call time; the existence check and the insert run in
// one transaction, so the photo can never be created against a marker deleted
// in between.
func (s *PhotoStore) Create(ctx context.Context, markerID, uri string) (*domain.Photo, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM markers WHERE id = ?)
	`, markerID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check marker id: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: marker %q", ErrForeignKeyViolation, markerID)
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO photos (id, uri, markerId) VALUES (?, ?, ?)
	`, id, uri, markerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit photo: %w", err)
	}

	return &domain.Photo{ID: id, URI: uri, MarkerID: markerID}, nil
}

// ListByMarker returns all photos attached to markerID. Unknown or photo-less
// markers yield an empty slice, never an error.
func (s *PhotoStore) ListByMarker(ctx context.Context, markerID string) ([]*domain.Photo, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uri, markerId FROM photos WHERE markerId = ?
	`, markerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	photos := []*domain.Photo{}
	for rows.Next() {
		photo := &domain.Photo{}
		if err := rows.Scan(&photo.ID, &photo.URI, &photo.MarkerID); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// GetByID returns the photo with the given id, or nil if it does not exist.
func (s *PhotoStore) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	photo := &domain.Photo{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, uri, markerId FROM photos WHERE id = ?
	`, id).Scan(&photo.ID, &photo.URI, &photo.MarkerID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}
