package chat

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "vision-chat/server/internal/domain/chat"
	"vision-chat/server/internal/infrastructure/database/entities"
	"vision-chat/server/internal/utils/platformerrors"
)

// MessageRepository persists individual chat messages.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message record.
func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	entity, err := entities.NewSchemaMessage(m)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode message attachments",
			err,
			"0a1b2c3d-4e5f-4a6b-7c8d-9e0f1a2b3c4d",
		)
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create message",
			err,
			"1b2c3d4e-5f6a-4b7c-8d9e-0f1a2b3c4d5e",
		)
	}

	m.ID = entity.ID
	m.CreatedAt = entity.CreatedAt
	m.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches a message by its public ID, nil when missing.
func (r *MessageRepository) FindByPublicID(ctx context.Context, publicID string) (*domain.Message, error) {
	var entity entities.Message
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
			"failed to fetch message",
			err,
			"2c3d4e5f-6a7b-4c8d-9e0f-1a2b3c4d5e6f",
		)
	}
	return entity.EtoD(), nil
}

// ListByChatID returns a chat's messages ordered by creation, oldest first.
func (r *MessageRepository) ListByChatID(ctx context.Context, chatID uint) ([]domain.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list messages",
			err,
			"3d4e5f6a-7b8c-4d9e-0f1a-2b3c4d5e6f7a",
		)
	}

	messages := make([]domain.Message, 0, len(rows))
	for i := range rows {
		messages = append(messages, *rows[i].EtoD())
	}
	return messages, nil
}

// UpdateContent overwrites a message's content.
func (r *MessageRepository) UpdateContent(ctx context.Context, publicID string, content string) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("public_id = ?", publicID).
		Update("content", content).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update message content",
			err,
			"4e5f6a7b-8c9d-4e0f-1a2b-3c4d5e6f7a8b",
		)
	}
	return nil
}

// UpdateMessageContent adapts UpdateContent to the completion writer contract.
func (r *MessageRepository) UpdateMessageContent(ctx context.Context, messagePublicID string, content string) error {
	return r.UpdateContent(ctx, messagePublicID, content)
}

// DeleteByChatID removes all messages of a chat.
func (r *MessageRepository) DeleteByChatID(ctx context.Context, chatID uint) error {
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&entities.Message{}).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete chat messages",
			err,
			"5f6a7b8c-9d0e-4f1a-2b3c-4d5e6f7a8b9c",
		)
	}
	return nil
}
