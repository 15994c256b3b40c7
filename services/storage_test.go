package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoKey(t *testing.T) {
	assert.Equal(t, "photos/a.jpg", PhotoKey("a.jpg", false))
	assert.Equal(t, ".photos/a.jpg", PhotoKey("a.jpg", true))
}

func TestLocalStorageSaveDelete(t *testing.T) {
	t.Cleanup(func() { os.RemoveAll("test-uploads") })
	st := NewLocalStorage("test-uploads")
	assert.True(t, st.IsLocal())

	data := []byte("jpeg bytes")
	url, err := st.Save(context.Background(), "photos/foo.jpg", bytes.NewReader(data), "image/jpeg")
	assert.NoError(t, err)
	assert.Equal(t, "/uploads/photos/foo.jpg", url)

	b, err := os.ReadFile(filepath.Join("test-uploads", "photos", "foo.jpg"))
	assert.NoError(t, err)
	assert.Equal(t, data, b)

	b, err = st.Read("photos/foo.jpg")
	assert.NoError(t, err)
	assert.Equal(t, data, b)

	assert.Equal(t, "/uploads/photos/foo.jpg", st.PublicURL("photos/foo.jpg"))

	err = st.Delete(context.Background(), "photos/foo.jpg")
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join("test-uploads", "photos", "foo.jpg"))
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing object is not an error.
	assert.NoError(t, st.Delete(context.Background(), "photos/foo.jpg"))
}

func TestNewStorageFromEnvDefaultsToLocal(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "")
	t.Setenv("UPLOADS_DIR", "test-env-uploads")
	t.Cleanup(func() { os.RemoveAll("test-env-uploads") })

	st, err := NewStorageFromEnv()
	assert.NoError(t, err)
	assert.True(t, st.IsLocal())
}

func TestNewStorageFromEnvIncompleteS3FallsBack(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "s3")
	t.Setenv("S3_ENDPOINT", "")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	t.Setenv("S3_SECRET_ACCESS_KEY", "")
	t.Setenv("S3_BUCKET", "")

	st, err := NewStorageFromEnv()
	assert.NoError(t, err)
	assert.True(t, st.IsLocal())
}
