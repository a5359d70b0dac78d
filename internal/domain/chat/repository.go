package chat

import "context"

// Repository exposes persistence operations for chats.
type Repository interface {
	Create(ctx context.Context, c *Chat) error
	FindByPublicID(ctx context.Context, publicID string) (*Chat, error)
	List(ctx context.Context) ([]Chat, error)
	Update(ctx context.Context, c *Chat) error
	Delete(ctx context.Context, id uint) error
	IncrementMessageCount(ctx context.Context, id uint, delta int) error
}

// MessageRepository persists individual chat messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	FindByPublicID(ctx context.Context, publicID string) (*Message, error)
	ListByChatID(ctx context.Context, chatID uint) ([]Message, error)
	UpdateContent(ctx context.Context, publicID string, content string) error
	DeleteByChatID(ctx context.Context, chatID uint) error
}
