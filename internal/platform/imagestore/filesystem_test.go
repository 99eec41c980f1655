package imagestore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFilesystemStore_SaveImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewFilesystemStore(dir, testLogger())
	require.NoError(t, err)

	ref, err := s.SaveImage(context.Background(), "character-abc", "image/png", []byte("png bytes"))
	require.NoError(t, err)
	assert.Equal(t, "character-abc.png", ref)

	data, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
}

func TestFilesystemStore_SaveImage_SanitizesName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewFilesystemStore(dir, testLogger())
	require.NoError(t, err)

	ref, err := s.SaveImage(context.Background(), "../../etc/diary", "image/jpeg", []byte("jpg"))
	require.NoError(t, err)
	assert.Equal(t, "diary.jpg", ref)

	_, err = os.Stat(filepath.Join(dir, "diary.jpg"))
	assert.NoError(t, err)
}

func TestFilesystemStore_SaveImage_EmptyData(t *testing.T) {
	t.Parallel()

	s, err := NewFilesystemStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	_, err = s.SaveImage(context.Background(), "x", "image/png", nil)
	assert.Error(t, err)
}

func TestNewFilesystemStore_EmptyDir(t *testing.T) {
	t.Parallel()

	_, err := NewFilesystemStore("", testLogger())
	assert.Error(t, err)
}

func TestExtensionFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".png", extensionFor("image/png"))
	assert.Equal(t, ".jpg", extensionFor("IMAGE/JPEG"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Equal(t, ".bin", extensionFor("application/octet-stream"))
}
