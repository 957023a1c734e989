package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalFileStorage keeps exported files under a directory on disk
type LocalFileStorage struct {
	basePath string
}

// NewLocalFileStorage creates a storage rooted at basePath
func NewLocalFileStorage(basePath string) *LocalFileStorage {
	return &LocalFileStorage{basePath: basePath}
}

// BasePath returns the storage directory
func (s *LocalFileStorage) BasePath() string {
	return s.basePath
}

// Store writes payload to the storage directory. Exports from the same second
// get a short random suffix instead of overwriting each other.
func (s *LocalFileStorage) Store(ctx context.Context, filename string, payload []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	name := filepath.Base(filename)
	filePath := filepath.Join(s.basePath, name)
	if _, err := os.Stat(filePath); err == nil {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		filePath = filepath.Join(s.basePath, fmt.Sprintf("%s_%s%s", base, uuid.New().String()[:8], ext))
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	return filePath, nil
}
