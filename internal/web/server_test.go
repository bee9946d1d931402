package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearmark/nearmark/internal/db"
	"github.com/nearmark/nearmark/internal/photofile"
	"github.com/nearmark/nearmark/internal/position"
	"github.com/nearmark/nearmark/internal/service"
	"github.com/nearmark/nearmark/internal/store"
	"github.com/nearmark/nearmark/internal/watch"
)

type recordingNotifier struct {
	ch chan string
}

func (r *recordingNotifier) Notify(_ context.Context, _, body string) error {
	r.ch <- body
	return nil
}

func newTestServer(t *testing.T) (*Server, *recordingNotifier) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	markers := store.NewMarkerStore(d)
	photos := store.NewPhotoStore(d)
	feed := position.NewFeed()
	notifier := &recordingNotifier{ch: make(chan string, 16)}
	watcher := watch.New(feed, markers, notifier, watch.Config{}, logger)
	svc := service.NewMarkerService(markers, photos, watcher, logger)
	t.Cleanup(svc.StopTracking)

	files, err := photofile.NewFileStore(t.TempDir())
	require.NoError(t, err)

	return NewServer(svc, feed, files, 100, logger), notifier
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func createMarker(t *testing.T, srv *Server, lat, lon float64) string {
	t.Helper()
	rec := doJSON(t, srv, "POST", "/markers", map[string]float64{"latitude": lat, "longitude": lon})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestCreateAndListMarkers(t *testing.T) {
	srv, _ := newTestServer(t)

	id := createMarker(t, srv, 10.0, 20.0)

	rec := doJSON(t, srv, "GET", "/markers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var markers []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&markers))
	require.Len(t, markers, 1)
	assert.Equal(t, id, markers[0]["id"])
	assert.Equal(t, 10.0, markers[0]["latitude"])
	assert.Equal(t, 20.0, markers[0]["longitude"])
}

func TestCreateMarkerInvalidCoordinates(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, "POST", "/markers", map[string]float64{"latitude": 99, "longitude": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddPhotoAndList(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createMarker(t, srv, 10.0, 20.0)

	rec := doJSON(t, srv, "POST", fmt.Sprintf("/markers/%s/photos", id), map[string]string{"uri": "file:///p.jpg"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, "GET", fmt.Sprintf("/markers/%s/photos", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var photos []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&photos))
	require.Len(t, photos, 1)
	assert.Equal(t, "file:///p.jpg", photos[0]["uri"])
	assert.Equal(t, id, photos[0]["markerId"])
}

func TestAddPhotoUnknownMarker(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, "POST", "/markers/nonexistent/photos", map[string]string{"uri": "file:///p.jpg"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMarkerCascades(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createMarker(t, srv, 10.0, 20.0)

	rec := doJSON(t, srv, "POST", fmt.Sprintf("/markers/%s/photos", id), map[string]string{"uri": "file:///p.jpg"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, "DELETE", "/markers/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, "GET", fmt.Sprintf("/markers/%s/photos", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var photos []any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&photos))
	assert.Empty(t, photos)
}

func TestDeleteAllMarkers(t *testing.T) {
	srv, _ := newTestServer(t)
	createMarker(t, srv, 10.0, 20.0)
	createMarker(t, srv, 30.0, 40.0)

	rec := doJSON(t, srv, "DELETE", "/markers", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, "GET", "/markers", nil)
	var markers []any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&markers))
	assert.Empty(t, markers)
}

func TestUploadPhotoRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createMarker(t, srv, 10.0, 20.0)

	// Minimal valid PNG signature so magic-byte sniffing accepts it.
	pngData := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, []byte("pixels")...)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photo", "shot.png")
	require.NoError(t, err)
	_, err = fw.Write(pngData)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", fmt.Sprintf("/markers/%s/photos/upload", id), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var photo struct {
		URI string `json:"uri"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&photo))
	require.NotEmpty(t, photo.URI)

	rec = doJSON(t, srv, "GET", photo.URI, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngData, rec.Body.Bytes())
}

func TestUploadPhotoRejectsNonImage(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createMarker(t, srv, 10.0, 20.0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photo", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text, not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", fmt.Sprintf("/markers/%s/photos/upload", id), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentPosition(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, "GET", "/position", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, srv, "POST", "/position", map[string]float64{"latitude": 1.5, "longitude": 2.5})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, srv, "GET", "/position", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pos map[string]float64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pos))
	assert.Equal(t, 1.5, pos["latitude"])
	assert.Equal(t, 2.5, pos["longitude"])
}

func TestTrackingOverHTTP(t *testing.T) {
	srv, notifier := newTestServer(t)
	id := createMarker(t, srv, 10.0, 20.0)

	// No fix yet: tracking cannot start.
	rec := doJSON(t, srv, "POST", "/tracking/start", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, srv, "POST", "/position", map[string]float64{"latitude": 0, "longitude": 0})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, srv, "POST", "/tracking/start", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Starting again while live conflicts.
	rec = doJSON(t, srv, "POST", "/tracking/start", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, "POST", "/position", map[string]float64{"latitude": 10.0, "longitude": 20.0})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, srv, "POST", "/tracking/stop", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	select {
	case body := <-notifier.ch:
		assert.Contains(t, body, id)
	default:
		t.Fatal("expected a notification for the nearby marker")
	}
}
