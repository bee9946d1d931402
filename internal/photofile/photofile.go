package photofile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore keeps uploaded photo bytes on local disk. The engine itself only
// persists opaque URIs; this store is where those URIs resolve to when the
// client uploads bytes instead of referencing its own storage.
type FileStore struct {
	basePath string
}

func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Put writes the photo bytes for a marker and returns the storage key. Keys
// are random, so concurrent uploads for the same marker never collide.
func (s *FileStore) Put(markerID, mimeType string, r io.Reader) (string, error) {
	key := fmt.Sprintf("%s_%s%s", markerID, uuid.NewString(), extForMimeType(mimeType))
	path := filepath.Join(s.basePath, key)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write photo file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close photo file: %w", err)
	}
	return key, nil
}

// Open returns the photo bytes and mime type for a previously issued key.
func (s *FileStore) Open(key string) (io.ReadCloser, string, error) {
	path, err := s.safeJoin(key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("photo %q not found", key)
		}
		return nil, "", fmt.Errorf("failed to open photo file: %w", err)
	}
	return f, mimeTypeForExt(path), nil
}

// safeJoin resolves key relative to basePath and rejects directory traversal.
func (s *FileStore) safeJoin(key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}

func extForMimeType(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func mimeTypeForExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
