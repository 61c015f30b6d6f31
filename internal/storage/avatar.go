// Package storage implements the file store consumed by customer
// onboarding: store(path, file) -> filename, rooted at the public dir.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// allowedExtensions gates avatar uploads to the image formats the workflow
// accepts.
var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// AllowedImage reports whether the filename carries an accepted image
// extension.
func AllowedImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := allowedExtensions[ext]
	return ok
}

// Store writes files under a base directory and reports the stored name.
type Store interface {
	Store(dir, filename string, r io.Reader) (string, error)
}

// DiskStore writes uploads to the local filesystem.
type DiskStore struct {
	base string
}

// NewDiskStore roots a store at basePath.
func NewDiskStore(basePath string) *DiskStore {
	return &DiskStore{base: basePath}
}

// Store writes the reader's content to base/dir/filename, creating the
// directory as needed, and returns the original filename.
func (s *DiskStore) Store(dir, filename string, r io.Reader) (string, error) {
	target := filepath.Join(s.base, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(filepath.Join(target, filepath.Base(filename)))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return filename, nil
}
