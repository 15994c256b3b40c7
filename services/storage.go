package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage is the capability interface photos are saved through. Callers never
// branch on backend or platform; placement policy (visible vs hidden) is
// expressed in the object key.
type Storage interface {
	// Save stores the content under key (relative path, e.g. "photos/file.jpg").
	// Returns a public URL for accessing the content.
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete removes the object at key. Should not error if the object does not exist.
	Delete(ctx context.Context, key string) error
	// PublicURL builds a public URL for a given key.
	PublicURL(key string) string
	// IsLocal indicates whether this storage writes to local filesystem.
	IsLocal() bool
}

// PhotoKey builds the object key for a stored photo. Hidden photos go under a
// dot-prefixed directory that gallery scanners skip.
func PhotoKey(filename string, hidden bool) string {
	if hidden {
		return ".photos/" + filename
	}
	return "photos/" + filename
}

// ----- Local storage implementation -----

type LocalStorage struct {
	baseDir    string // e.g. "uploads"
	publicBase string // e.g. "/uploads"
}

func NewLocalStorage(baseDir string) *LocalStorage {
	if baseDir == "" {
		baseDir = "uploads"
	}
	return &LocalStorage{baseDir: baseDir, publicBase: "/uploads"}
}

func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key = filepath.ToSlash(key)
	dstPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

// Read returns the stored bytes for key. Only the local backend supports
// server-side reads; remote objects are fetched by clients via PublicURL.
func (s *LocalStorage) Read(key string) ([]byte, error) {
	key = filepath.ToSlash(key)
	return os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(key)))
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	key = filepath.ToSlash(key)
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func (s *LocalStorage) PublicURL(key string) string {
	key = strings.TrimPrefix(filepath.ToSlash(key), "/")
	return s.publicBase + "/" + key
}

func (s *LocalStorage) IsLocal() bool { return true }

// NewStorageFromEnv builds a Storage from environment variables. With
// STORAGE_PROVIDER=s3 (or r2) and complete S3 credentials an object-store
// backend is used; anything else falls back to the local uploads directory.
func NewStorageFromEnv() (Storage, error) {
	provider := os.Getenv("STORAGE_PROVIDER")
	if strings.EqualFold(provider, "s3") || strings.EqualFold(provider, "r2") {
		cfg := S3Config{
			Endpoint:      firstNonEmpty(os.Getenv("S3_ENDPOINT"), os.Getenv("R2_ENDPOINT")),
			AccessKey:     firstNonEmpty(os.Getenv("S3_ACCESS_KEY_ID"), os.Getenv("R2_ACCESS_KEY_ID")),
			SecretKey:     firstNonEmpty(os.Getenv("S3_SECRET_ACCESS_KEY"), os.Getenv("R2_SECRET_ACCESS_KEY")),
			UseSSL:        true,
			Bucket:        firstNonEmpty(os.Getenv("S3_BUCKET"), os.Getenv("R2_BUCKET")),
			PublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		}
		st, err := newS3Storage(cfg)
		if err == nil {
			return st, nil
		}
	}
	baseDir := os.Getenv("UPLOADS_DIR")
	if baseDir == "" {
		baseDir = "uploads"
	}
	return NewLocalStorage(baseDir), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
