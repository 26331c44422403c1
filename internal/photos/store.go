// Package photos stores user profile photos on local disk under the public
// directory, where they are served as static files.
package photos

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// URLPrefix is the route under which the public directory is served.
const URLPrefix = "/public"

// sniffLen is how many leading bytes mimetype needs for image formats.
const sniffLen = 3072

var (
	ErrEmpty    = errors.New("uploaded file is empty")
	ErrNotImage = errors.New("uploaded file is not an image")
	ErrTooLarge = errors.New("uploaded file is too large")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Store writes photos to <publicDir>/usuarios/fotos/<userID>.jpg.
type Store struct {
	publicDir string
	photoDir  string
	maxBytes  int64
}

// NewStore creates the photo directory if needed. maxBytes <= 0 disables the size limit.
func NewStore(publicDir string, maxBytes int64) (*Store, error) {
	photoDir := filepath.Join(publicDir, "usuarios", "fotos")
	if err := os.MkdirAll(photoDir, 0755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &Store{publicDir: publicDir, photoDir: photoDir, maxBytes: maxBytes}, nil
}

// PublicDir is the directory served under URLPrefix.
func (s *Store) PublicDir() string {
	return s.publicDir
}

// Path returns the file path of a user's photo.
func (s *Store) Path(userID uint) string {
	return filepath.Join(s.photoDir, fmt.Sprintf("%d.jpg", userID))
}

// URL returns the public URL path of a user's photo.
func (s *Store) URL(userID uint) string {
	return fmt.Sprintf("%s/usuarios/fotos/%d.jpg", URLPrefix, userID)
}

// Save validates that r holds an image within the size limit and atomically
// replaces the user's photo. Returns the number of bytes written.
func (s *Store) Save(userID uint, r io.Reader) (int64, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return 0, ErrEmpty
	}

	if detected := mimetype.Detect(head); !mimetype.EqualsAny(detected.String(), allowedTypes...) {
		return 0, fmt.Errorf("%w: %s", ErrNotImage, detected.String())
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes+1)
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(s.photoDir, "photo_tmp_")
	if err != nil {
		return 0, err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	written, err := io.Copy(tmpFile, body)
	if err != nil {
		return 0, err
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		return 0, ErrTooLarge
	}
	if err := tmpFile.Close(); err != nil {
		return 0, err
	}

	if err := os.Rename(tmpPath, s.Path(userID)); err != nil {
		return 0, err
	}
	return written, nil
}
