package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore keeps uploaded images (payment slips, customer photos) on local
// disk and hands back a path that can be stored on the order row.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

// Save writes the upload under a fresh uuid name, keeping the original
// extension, and returns the stored path.
func (s *FileStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(fh.Filename)
	path := filepath.Join(s.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return path, nil
}
