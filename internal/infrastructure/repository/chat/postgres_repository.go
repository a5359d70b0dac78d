package chat

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "vision-chat/server/internal/domain/chat"
	"vision-chat/server/internal/infrastructure/database/entities"
	"vision-chat/server/internal/utils/platformerrors"
)

// Repository persists chat metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a chat repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the chat record.
func (r *Repository) Create(ctx context.Context, c *domain.Chat) error {
	entity := entities.NewSchemaChat(c)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create chat",
			err,
			"a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d",
		)
	}

	c.ID = entity.ID
	c.CreatedAt = entity.CreatedAt
	c.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches a chat by its public ID. A missing row yields nil,
// the domain layer decides what that means.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Chat, error) {
	var entity entities.Chat
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
			"failed to fetch chat",
			err,
			"b2c3d4e5-f6a7-4b8c-9d0e-1f2a3b4c5d6e",
		)
	}
	return entity.EtoD(), nil
}

// List returns all chats ordered by most recent update.
func (r *Repository) List(ctx context.Context) ([]domain.Chat, error) {
	var rows []entities.Chat
	if err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list chats",
			err,
			"c3d4e5f6-a7b8-4c9d-0e1f-2a3b4c5d6e7f",
		)
	}

	chats := make([]domain.Chat, 0, len(rows))
	for i := range rows {
		chats = append(chats, *rows[i].EtoD())
	}
	return chats, nil
}

// Update persists the mutable fields of a chat.
func (r *Repository) Update(ctx context.Context, c *domain.Chat) error {
	entity := entities.NewSchemaChat(c)
	if err := r.db.WithContext(ctx).
		Model(&entities.Chat{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"title":       entity.Title,
			"description": entity.Description,
		}).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update chat",
			err,
			"d4e5f6a7-b8c9-4d0e-1f2a-3b4c5d6e7f8a",
		)
	}
	return nil
}

// Delete removes a chat record.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Delete(&entities.Chat{}, id).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete chat",
			err,
			"e5f6a7b8-c9d0-4e1f-2a3b-4c5d6e7f8a9b",
		)
	}
	return nil
}

// IncrementMessageCount bumps the denormalized message counter atomically.
func (r *Repository) IncrementMessageCount(ctx context.Context, id uint, delta int) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Chat{}).
		Where("id = ?", id).
		UpdateColumn("message_count", gorm.Expr("message_count + ?", delta)).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to increment message count",
			err,
			"f6a7b8c9-d0e1-4f2a-3b4c-5d6e7f8a9b0c",
		)
	}
	return nil
}
