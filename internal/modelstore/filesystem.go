package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	modelFilePrefix = "prophet_"
	modelFileSuffix = ".model"
)

// FilesystemStore keeps one file per key. The file mtime is the storage time.
type FilesystemStore struct {
	dir string
}

// NewFilesystemStore creates dir if needed
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &FilesystemStore{dir: dir}, nil
}

func (s *FilesystemStore) path(key string) string {
	return filepath.Join(s.dir, modelFilePrefix+key+modelFileSuffix)
}

func (s *FilesystemStore) Location(key string) string {
	return s.path(key)
}

func (s *FilesystemStore) Root() string {
	return s.dir
}

func (s *FilesystemStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	path := s.path(key)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, &CacheMissError{Key: key}
		}
		return nil, time.Time{}, fmt.Errorf("failed to stat model: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, &CacheMissError{Key: key}
		}
		return nil, time.Time{}, fmt.Errorf("failed to read model: %w", err)
	}
	return data, info.ModTime(), nil
}

// Put writes to a unique temp file in the same directory and renames it
// over the target
func (s *FilesystemStore) Put(ctx context.Context, key string, blob []byte) (time.Time, error) {
	tmp, err := os.CreateTemp(s.dir, "."+modelFilePrefix+key+"-*.tmp")
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to create temp model file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return time.Time{}, fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return time.Time{}, fmt.Errorf("failed to sync model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return time.Time{}, fmt.Errorf("failed to close model: %w", err)
	}

	path := s.path(key)
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return time.Time{}, fmt.Errorf("failed to rename model: %w", err)
	}

	return s.StoredAt(ctx, key)
}

func (s *FilesystemStore) StoredAt(ctx context.Context, key string) (time.Time, error) {
	info, err := os.Stat(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, &CacheMissError{Key: key}
		}
		return time.Time{}, fmt.Errorf("failed to stat model: %w", err)
	}
	return info.ModTime(), nil
}

func (s *FilesystemStore) Close() error {
	return nil
}
