package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"vision-chat/server/internal/config"
	"vision-chat/server/internal/domain/file"
)

// Backend is a blob store the file service can use, plus a health probe for
// the readiness endpoint.
type Backend interface {
	file.Storage
	Health(ctx context.Context) error
}

// New selects and constructs the storage backend named by configuration.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, error) {
	switch {
	case cfg.IsS3Storage():
		return NewS3Storage(ctx, cfg, log)
	case cfg.IsLocalStorage():
		return NewLocalStorage(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
