package entities

import (
	"time"

	"vision-chat/server/internal/domain/chat"
)

// Chat represents the database schema for chats.
type Chat struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID     string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Title        string  `gorm:"type:varchar(256);not null"`
	Description  *string `gorm:"type:text"`
	MessageCount int     `gorm:"not null;default:0"`

	Messages []Message `gorm:"foreignKey:ChatID"`
}

// TableName specifies the table name for Chat.
func (Chat) TableName() string {
	return "chats"
}

// NewSchemaChat maps a domain chat onto its database schema.
func NewSchemaChat(c *chat.Chat) *Chat {
	return &Chat{
		ID:           c.ID,
		PublicID:     c.PublicID,
		Title:        c.Title,
		Description:  c.Description,
		MessageCount: c.MessageCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// EtoD converts the entity to its domain representation.
func (e *Chat) EtoD() *chat.Chat {
	return &chat.Chat{
		ID:           e.ID,
		PublicID:     e.PublicID,
		Title:        e.Title,
		Description:  e.Description,
		MessageCount: e.MessageCount,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
