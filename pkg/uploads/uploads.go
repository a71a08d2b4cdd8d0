package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"sparkchat/pkg/logger"
)

// Store writes uploaded files under a single directory and hands back the
// public path clients fetch them from. Stored names are random; the
// original filename only contributes its extension. The rest of the system
// treats the returned path as an opaque string.
type Store struct {
	dir     string
	maxSize int64
}

// New ensures the upload directory exists. maxSize <= 0 disables the size
// check.
func New(dir string, maxSize int64) (*Store, error) {
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the directory files are stored in.
func (s *Store) Dir() string { return s.dir }

// Save persists one multipart file and returns its public /uploads/ path.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", fmt.Errorf("file too large: %d bytes", fh.Size)
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(fh.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	limit := io.Reader(src)
	if s.maxSize > 0 {
		limit = io.LimitReader(src, s.maxSize)
	}
	if _, err := io.Copy(dst, limit); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	logger.Info("upload_saved", "name", name, "size", fh.Size)
	return "/uploads/" + name, nil
}
