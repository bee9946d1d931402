package web

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG and PNG via magic-byte sniffing;
// WebP is detected separately because the stdlib sniffer has no WebP
// signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// handleUploadPhoto accepts multipart photo bytes for a marker, stores them
// on disk, and attaches the resulting URI through the regular photo path.
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	markerID := r.PathValue("id")

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "photo file required", http.StatusBadRequest)
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		s.logger.Error("read upload failed", "marker_id", markerID, "error", err)
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		http.Error(w, "unsupported image format", http.StatusBadRequest)
		return
	}

	key, err := s.photoFiles.Put(markerID, mimeType, bytes.NewReader(imageData))
	if err != nil {
		http.Error(w, "failed to store photo", http.StatusInternalServerError)
		s.logger.Error("store upload failed", "marker_id", markerID, "error", err)
		return
	}

	photo, err := s.service.AddPhoto(r.Context(), markerID, "/photos/"+key)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, photoResponse{ID: photo.ID, URI: photo.URI, MarkerID: photo.MarkerID})
}

// handleGetPhotoFile serves previously uploaded photo bytes by storage key.
func (s *Server) handleGetPhotoFile(w http.ResponseWriter, r *http.Request) {
	reader, mimeType, err := s.photoFiles.Open(r.PathValue("key"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
