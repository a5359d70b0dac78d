package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"vision-chat/server/internal/config"
)

// LocalStorage keeps blobs on the local filesystem. URLs resolve against the
// configured base URL when set, otherwise to the server's own download
// endpoint so generated images stay reachable without extra setup.
type LocalStorage struct {
	basePath  string
	baseURL   string
	serverURL string
	log       zerolog.Logger
}

// NewLocalStorage creates a local filesystem storage backend.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		return nil, fmt.Errorf("FILE_LOCAL_STORAGE_PATH must be set for the local storage backend")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath:  basePath,
		baseURL:   strings.TrimSuffix(strings.TrimSpace(cfg.LocalStorageBaseURL), "/"),
		serverURL: fmt.Sprintf("http://localhost:%d", cfg.HTTPPort),
		log:       logger,
	}

	logger.Info().
		Str("path", basePath).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")
	return storage, nil
}

// Upload stores a blob on the filesystem.
func (l *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, body)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	l.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Msg("blob stored on local filesystem")
	return nil
}

// Download reads a blob from the filesystem.
func (l *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("blob not found: %s", key)
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, "", nil
}

// Delete removes a blob from the filesystem. A blob that is already gone is
// an error, the caller relies on delete being observable.
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("blob not found: %s", key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	l.log.Debug().Str("key", key).Msg("blob deleted from local filesystem")
	return nil
}

// ResolveURL returns a stable URL for a stored blob. Without a configured
// base URL it points at the server's own download endpoint, the only URL
// that is guaranteed reachable for both the UI and the vision model.
func (l *LocalStorage) ResolveURL(ctx context.Context, key string) (string, error) {
	if l.baseURL != "" {
		return fmt.Sprintf("%s/%s", l.baseURL, filepath.ToSlash(key)), nil
	}
	return fmt.Sprintf("%s/v1/files/%s/download", l.serverURL, fileIDFromKey(key)), nil
}

// fileIDFromKey recovers the public file ID embedded in a storage key of the
// form "files/<id>" or "files/<id>.<ext>".
func fileIDFromKey(key string) string {
	base := path.Base(filepath.ToSlash(key))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// Health checks that the storage directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}
