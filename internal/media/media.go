// Package media manages locally persisted product images. An image file is
// owned by the submission that references it until the submission is synced
// and purged, so files must survive any number of failed sync attempts.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/swipeapp/catalog/internal/uuid"
)

// Store persists image files under a base directory.
type Store struct {
	baseDir string
}

// NewStore creates a media store rooted at baseDir/images.
func NewStore(baseDir string) (*Store, error) {
	dir := filepath.Join(baseDir, "images")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{baseDir: dir}, nil
}

// Save writes the image data to a new file and returns its absolute path.
// The file is named by a fresh UUID, keeping the original extension so the
// upload path can name the multipart file part sensibly.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))

	// Write through a temp file so a crash mid-copy never leaves a partial
	// image behind a submission reference.
	tmpFile, err := os.CreateTemp(s.baseDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	size, err := io.Copy(tmpFile, r)
	if err != nil {
		return "", fmt.Errorf("failed to write image data: %w", err)
	}
	if size == 0 {
		return "", fmt.Errorf("invalid image: empty file (0 bytes)")
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to flush image data: %w", err)
	}

	path := filepath.Join(s.baseDir, uuid.New()+ext)
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move image into store: %w", err)
	}
	return path, nil
}

// Exists reports whether the file at path is still present.
func (s *Store) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes an image file. A missing file is not an error: the sweep
// after purge may run more than once for the same submission.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}
