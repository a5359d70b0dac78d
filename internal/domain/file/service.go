package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"vision-chat/server/internal/config"
	"vision-chat/server/internal/utils/platformerrors"
	"vision-chat/server/internal/utils/publicid"
)

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, f *File) error
	FindByPublicID(ctx context.Context, publicID string) (*File, error)
	FindByPublicIDs(ctx context.Context, publicIDs []string) ([]File, error)
	List(ctx context.Context) ([]File, error)
	Update(ctx context.Context, f *File) error
	Delete(ctx context.Context, id uint) error
}

// Storage defines blob storage operations.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	ResolveURL(ctx context.Context, key string) (string, error)
}

var extByMime = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
}

// Service orchestrates file upload, retrieval and deletion.
type Service struct {
	cfg     *config.Config
	repo    Repository
	storage Storage
	log     zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, storage Storage, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		storage: storage,
		log:     log.With().Str("component", "file-service").Logger(),
	}
}

// Upload stores the blob and its metadata record. The MIME type and kind are
// detected server side from the content, never trusted from the client.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*File, error) {
	if len(req.Data) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "file is empty", nil,
			"b2f41c07-6a4f-4a54-9184-3f1f8f3c6d01")
	}
	if int64(len(req.Data)) > s.cfg.MaxUploadBytes {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file exceeds max size of %d bytes", s.cfg.MaxUploadBytes), nil,
			"0d9dcb7e-37e4-49e8-9f51-6a7f3dbb0a44")
	}

	mime := mimetype.Detect(req.Data).String()
	kind := KindFromMime(mime)

	id := publicid.New(publicid.PrefixFile)
	key := storageKey(id, mime)

	if err := s.storage.Upload(ctx, key, bytes.NewReader(req.Data), int64(len(req.Data)), mime); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeStorage, "failed to upload file blob", err,
			"53b9e0b3-4df4-4e47-9a5a-2b6e86f8b24a")
	}

	url, err := s.storage.ResolveURL(ctx, key)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeStorage, "failed to resolve file URL", err,
			"8a2a2c8a-0f1e-4a0b-9e2d-7a1f5f0cbe93")
	}

	now := time.Now()
	f := &File{
		PublicID:    id,
		Name:        req.Name,
		Description: req.Description,
		MimeType:    mime,
		Kind:        kind,
		SizeBytes:   int64(len(req.Data)),
		StorageKey:  key,
		URL:         url,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("file_id", f.PublicID).
		Str("mime_type", mime).
		Str("kind", string(kind)).
		Int64("size_bytes", f.SizeBytes).
		Msg("file stored")
	return f, nil
}

// Get returns file metadata by public ID.
func (s *Service) Get(ctx context.Context, publicID string) (*File, error) {
	f, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, fmt.Sprintf("file %s not found", publicID), nil,
			"4e1f4272-5b3d-4e2f-8a4f-09f2c5a1de66")
	}
	return f, nil
}

// GetByPublicIDs returns the files matching the given IDs. Missing IDs are
// simply absent from the result, callers decide how to treat them.
func (s *Service) GetByPublicIDs(ctx context.Context, publicIDs []string) ([]File, error) {
	if len(publicIDs) == 0 {
		return nil, nil
	}
	return s.repo.FindByPublicIDs(ctx, publicIDs)
}

// List returns all stored files, newest first.
func (s *Service) List(ctx context.Context) ([]File, error) {
	return s.repo.List(ctx)
}

// Update patches the mutable metadata of a file.
func (s *Service) Update(ctx context.Context, publicID string, req UpdateRequest) (*File, error) {
	f, err := s.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.Description != nil {
		f.Description = req.Description
	}
	f.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes the blob first and then the metadata record. A failed blob
// delete aborts the operation so the record keeps pointing at a real object.
func (s *Service) Delete(ctx context.Context, publicID string) error {
	f, err := s.Get(ctx, publicID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, f.StorageKey); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeStorage,
			fmt.Sprintf("failed to delete blob for file %s", publicID), err,
			"c5b3f64e-2f0a-47d4-9f3a-6d8e0a7b1f2c")
	}

	if err := s.repo.Delete(ctx, f.ID); err != nil {
		return err
	}

	s.log.Info().Str("file_id", publicID).Msg("file deleted")
	return nil
}

// Download streams the blob content for a file.
func (s *Service) Download(ctx context.Context, publicID string) (io.ReadCloser, *File, error) {
	f, err := s.Get(ctx, publicID)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.storage.Download(ctx, f.StorageKey)
	if err != nil {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeStorage,
			fmt.Sprintf("failed to download blob for file %s", publicID), err,
			"1f7a9c3d-8e4b-4f6a-b2c1-d5e6f7a8b9c0")
	}
	return rc, f, nil
}

func storageKey(id, mime string) string {
	if ext, ok := extByMime[mime]; ok {
		return fmt.Sprintf("files/%s.%s", id, ext)
	}
	return fmt.Sprintf("files/%s", id)
}
