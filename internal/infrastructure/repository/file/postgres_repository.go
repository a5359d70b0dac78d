package file

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "vision-chat/server/internal/domain/file"
	"vision-chat/server/internal/infrastructure/database/entities"
	"vision-chat/server/internal/utils/platformerrors"
)

// Repository persists file metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a file repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the file record.
func (r *Repository) Create(ctx context.Context, f *domain.File) error {
	entity := entities.NewSchemaFile(f)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create file",
			err,
			"6a7b8c9d-0e1f-4a2b-3c4d-5e6f7a8b9c0d",
		)
	}

	f.ID = entity.ID
	f.CreatedAt = entity.CreatedAt
	f.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches a file by its public ID, nil when missing.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.File, error) {
	var entity entities.File
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch file",
			err,
			"7b8c9d0e-1f2a-4b3c-4d5e-6f7a8b9c0d1e",
		)
	}
	return entity.EtoD(), nil
}

// FindByPublicIDs fetches the files matching the given public IDs. IDs with
// no record are simply absent from the result.
func (r *Repository) FindByPublicIDs(ctx context.Context, publicIDs []string) ([]domain.File, error) {
	if len(publicIDs) == 0 {
		return nil, nil
	}

	var rows []entities.File
	if err := r.db.WithContext(ctx).
		Where("public_id IN ?", publicIDs).
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch files",
			err,
			"8c9d0e1f-2a3b-4c4d-5e6f-7a8b9c0d1e2f",
		)
	}

	files := make([]domain.File, 0, len(rows))
	for i := range rows {
		files = append(files, *rows[i].EtoD())
	}
	return files, nil
}

// List returns all files, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.File, error) {
	var rows []entities.File
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list files",
			err,
			"9d0e1f2a-3b4c-4d5e-6f7a-8b9c0d1e2f3a",
		)
	}

	files := make([]domain.File, 0, len(rows))
	for i := range rows {
		files = append(files, *rows[i].EtoD())
	}
	return files, nil
}

// Update persists the mutable metadata fields of a file.
func (r *Repository) Update(ctx context.Context, f *domain.File) error {
	entity := entities.NewSchemaFile(f)
	if err := r.db.WithContext(ctx).
		Model(&entities.File{}).
		Where("id = ?", f.ID).
		Updates(map[string]any{
			"name":        entity.Name,
			"description": entity.Description,
		}).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update file",
			err,
			"0e1f2a3b-4c5d-4e6f-7a8b-9c0d1e2f3a4b",
		)
	}
	return nil
}

// Delete removes a file record.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Delete(&entities.File{}, id).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete file",
			err,
			"1f2a3b4c-5d6e-4f7a-8b9c-0d1e2f3a4b5c",
		)
	}
	return nil
}
