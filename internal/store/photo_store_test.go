package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoStoreCreate(t *testing.T) {
	d := openTestDB(t)
	markers := NewMarkerStore(d)
	photos := NewPhotoStore(d)
	ctx := context.Background()

	_, err := markers.Create(ctx, "m1", 10.0, 20.0)
	require.NoError(t, err)

	photo, err := photos.Create(ctx, "m1", "file:///photo.jpg")
	require.NoError(t, err)
	assert.NotEmpty(t, photo.ID)
	assert.Equal(t, "m1", photo.MarkerID)
	assert.Equal(t, "file:///photo.jpg", photo.URI)
}

func TestPhotoStoreCreateGeneratesUniqueIDs(t *testing.T) {
	d := openTestDB(t)
	markers := NewMarkerStore(d)
	photos := NewPhotoStore(d)
	ctx := context.Background()

	_, err := markers.Create(ctx, "m1", 10.0, 20.0)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		photo, err := photos.Create(ctx, "m1", "file:///photo.jpg")
		require.NoError(t, err)
		assert.False(t, seen[photo.ID], "id %q issued twice", photo.ID)
		seen[photo.ID] = true
	}
}

func TestPhotoStoreForeignKeyEnforced(t *testing.T) {
	d := openTestDB(t)
	photos := NewPhotoStore(d)

	_, err := photos.Create(context.Background(), "nonexistent", "file:///photo.jpg")
	assert.ErrorIs(t, err, ErrForeignKeyViolation)
}

func TestPhotoStoreListByMarker(t *testing.T) {
	d := openTestDB(t)
	markers := NewMarkerStore(d)
	photos := NewPhotoStore(d)
	ctx := context.Background()

	_, err := markers.Create(ctx, "m1", 10.0, 20.0)
	require.NoError(t, err)
	_, err = markers.Create(ctx, "m2", 30.0, 40.0)
	require.NoError(t, err)

	_, err = photos.Create(ctx, "m1", "file:///a.jpg")
	require.NoError(t, err)
	_, err = photos.Create(ctx, "m1", "file:///b.jpg")
	require.NoError(t, err)

	got, err := photos.ListByMarker(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	other, err := photos.ListByMarker(ctx, "m2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPhotoStoreListUnknownMarker(t *testing.T) {
	d := openTestDB(t)
	photos := NewPhotoStore(d)

	got, err := photos.ListByMarker(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPhotoStoreNotInitialized(t *testing.T) {
	photos := NewPhotoStore(nil)
	ctx := context.Background()

	_, err := photos.Create(ctx, "m1", "file:///photo.jpg")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = photos.ListByMarker(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotInitialized)
}
