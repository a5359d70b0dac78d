package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"vision-chat/server/internal/domain/chat"
)

// Message represents the database schema for chat messages. Attachments is an
// ordered jsonb array of file public IDs.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_message_chat_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID    string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	ChatID      uint           `gorm:"index:idx_message_chat_created;not null"`
	Role        string         `gorm:"type:varchar(20);not null"`
	Content     string         `gorm:"type:text;not null"`
	Attachments datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// NewSchemaMessage maps a domain message onto its database schema.
func NewSchemaMessage(m *chat.Message) (*Message, error) {
	entity := &Message{
		ID:        m.ID,
		PublicID:  m.PublicID,
		ChatID:    m.ChatID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if len(m.Attachments) > 0 {
		raw, err := json.Marshal(m.Attachments)
		if err != nil {
			return nil, err
		}
		entity.Attachments = datatypes.JSON(raw)
	}
	return entity, nil
}

// EtoD converts the entity to its domain representation. A malformed
// attachment payload degrades to no attachments rather than failing reads.
func (e *Message) EtoD() *chat.Message {
	m := &chat.Message{
		ID:        e.ID,
		ChatID:    e.ChatID,
		PublicID:  e.PublicID,
		Role:      chat.Role(e.Role),
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if len(e.Attachments) > 0 {
		var attachments []string
		if err := json.Unmarshal(e.Attachments, &attachments); err == nil {
			m.Attachments = attachments
		}
	}
	return m
}
