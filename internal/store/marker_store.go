package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/nearmark/nearmark/internal/domain"
)

type MarkerStore struct {
	db *sql.DB
}

func NewMarkerStore(db *sql.DB) *MarkerStore {
	return &MarkerStore{db: db}
}

// Create inserts a new marker. The id must be unique; coordinates must be
// finite and within valid range.
func (s *MarkerStore) Create(ctx context.Context, id string, latitude, longitude float64) (*domain.Marker, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	if err := validateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM markers WHERE id = ?)
	`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check marker id: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: marker %q", ErrDuplicateKey, id)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO markers (id, latitude, longitude) VALUES (?, ?, ?)
	`, id, latitude, longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to create marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit marker: %w", err)
	}

	return &domain.Marker{ID: id, Latitude: latitude, Longitude: longitude}, nil
}

// GetByID returns the marker with the given id, or nil if it does not exist.
func (s *MarkerStore) GetByID(ctx context.Context, id string) (*domain.Marker, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	marker := &domain.Marker{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, latitude, longitude FROM markers WHERE id = ?
	`, id).Scan(&marker.ID, &marker.Latitude, &marker.Longitude)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get marker: %w", err)
	}

	return marker, nil
}

// List returns all markers, photos not populated. An empty store yields an
// empty slice, never an error.
func (s *MarkerStore) List(ctx context.Context) ([]*domain.Marker, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, latitude, longitude FROM markers
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	defer rows.Close()

	markers := []*domain.Marker{}
	for rows.Next() {
		marker := &domain.Marker{}
		if err := rows.Scan(&marker.ID, &marker.Latitude, &marker.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		markers = append(markers, marker)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating markers: %w", err)
	}

	return markers, nil
}

// Delete removes the marker and every photo it owns in one transaction.
// Deleting an unknown id is a no-op.
func (s *MarkerStore) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return ErrNotInitialized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE markerId = ?`, id); err != nil {
		return fmt.Errorf("failed to delete photos for marker: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM markers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit marker delete: %w", err)
	}

	return nil
}

// DeleteAll removes every marker and, by the same cascade rule, every photo.
func (s *MarkerStore) DeleteAll(ctx context.Context) error {
	if s.db == nil {
		return ErrNotInitialized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM photos`); err != nil {
		return fmt.Errorf("failed to delete photos: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM markers`); err != nil {
		return fmt.Errorf("failed to delete markers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bulk delete: %w", err)
	}

	return nil
}

func validateCoordinates(latitude, longitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) || latitude < -90 || latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, latitude)
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) || longitude < -180 || longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, longitude)
	}
	return nil
}
