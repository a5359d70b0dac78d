package chat

import (
	"time"

	"vision-chat/server/internal/domain/file"
	"vision-chat/server/internal/utils/publicid"
)

// Role indicates who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PlaceholderContent is the sentinel an assistant message is born with while
// its completion streams in.
const PlaceholderContent = "..."

// Chat represents one conversation thread.
type Chat struct {
	ID           uint      `json:"-"`
	PublicID     string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message is one entry of a chat. Attachments holds file public IDs in the
// order the sender listed them; the files themselves are not owned by the
// message.
type Message struct {
	ID          uint      `json:"-"`
	ChatID      uint      `json:"-"`
	PublicID    string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MessageWithFiles is a message expanded with the file records its
// attachments still resolve to, used by the read surface.
type MessageWithFiles struct {
	Message
	Files []file.File `json:"files,omitempty"`
}

// NewChat creates a chat with a fresh public ID.
func NewChat(title string, description *string) *Chat {
	now := time.Now()
	return &Chat{
		PublicID:    publicid.New(publicid.PrefixChat),
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewMessage creates a message with a fresh public ID.
func NewMessage(chatID uint, role Role, content string, attachments []string) *Message {
	now := time.Now()
	return &Message{
		ChatID:      chatID,
		PublicID:    publicid.New(publicid.PrefixMessage),
		Role:        role,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateChatRequest carries the mutable fields of a chat.
type UpdateChatRequest struct {
	Title       *string
	Description *string
}
