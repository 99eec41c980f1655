// Package imagestore provides local persistence for generated images.
package imagestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sproutlab/sprout-api/internal/generation"
)

// FilesystemStore writes images under a base directory and returns
// references relative to it.
type FilesystemStore struct {
	baseDir string
	logger  *slog.Logger
}

// NewFilesystemStore creates the base directory if needed.
func NewFilesystemStore(baseDir string, log *slog.Logger) (*FilesystemStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("image store base directory cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", baseDir, err)
	}
	return &FilesystemStore{
		baseDir: baseDir,
		logger:  log.With("component", "image_store"),
	}, nil
}

var _ generation.ImageStore = (*FilesystemStore)(nil)

// SaveImage implements generation.ImageStore. The name is sanitized to
// its base element so references never escape the base directory.
func (s *FilesystemStore) SaveImage(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}

	filename := filepath.Base(name) + extensionFor(mimeType)
	path := filepath.Join(s.baseDir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", filename, err)
	}

	s.logger.Debug("image saved", "file", filename, "bytes", len(data))
	return filename, nil
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
