package objstore

import (
	"context"
	"os"
	"path/filepath"
)

// FileArchive stores receipt images under a directory on local disk.
type FileArchive struct {
	Dir string
}

func NewFileArchive(dir string) *FileArchive {
	return &FileArchive{Dir: dir}
}

func (f *FileArchive) Put(ctx context.Context, key, mimeType string, data []byte) error {
	path := filepath.Join(f.Dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (f *FileArchive) Get(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.Dir, key))
}
