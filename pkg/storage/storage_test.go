package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sphinx_backend/pkg/config"
)

func TestFileName(t *testing.T) {
	now := time.UnixMilli(1714550400123)
	name := FileName("mainImage", "Back Yard.JPG", now)
	assert.Regexp(t, regexp.MustCompile(`^mainImage-1714550400123-[0-9a-f]{8}\.jpg$`), name)

	assert.NotEqual(t, name, FileName("mainImage", "Back Yard.JPG", now))
	assert.Regexp(t, regexp.MustCompile(`^images-1714550400123-[0-9a-f]{8}$`), FileName("images", "noext", now))
	assert.NotContains(t, FileName("images", "evil.j/pg", now), "/")
}

func TestLocalSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := New(context.Background(), config.StorageConfig{Driver: "local", UploadDir: dir})
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "image-1-abcd1234.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/image-1-abcd1234.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "image-1-abcd1234.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, err = store.Save(context.Background(), "image-1-abcd1234.png", "image/png", strings.NewReader("again"))
	assert.Error(t, err, "existing files are never overwritten")

	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "image-1-abcd1234.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), url), "deleting twice is fine")
	assert.NoError(t, store.Delete(context.Background(), "/uploads/../secret"))
	assert.NoError(t, store.Delete(context.Background(), "https://elsewhere.example.com/x.png"))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
