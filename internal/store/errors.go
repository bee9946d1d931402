package store

import "errors"

var (
	// ErrNotInitialized is returned by every operation on a store that was
	// constructed without an opened database handle.
	ErrNotInitialized = errors.New("store not initialized")

	// ErrDuplicateKey is returned when creating a marker whose id already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrForeignKeyViolation is returned when attaching a photo to a marker id
	// that does not exist at call time.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidCoordinate is returned when a latitude or longitude is not a
	// finite number within -90..90 / -180..180.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)
