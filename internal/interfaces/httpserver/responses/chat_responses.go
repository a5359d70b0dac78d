package responses

import (
	"time"

	"vision-chat/server/internal/domain/chat"
)

// ChatResponse is the wire shape of a chat.
type ChatResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MessageResponse is the wire shape of a message, attachments expanded.
type MessageResponse struct {
	ID          string         `json:"id"`
	ChatID      string         `json:"chat_id,omitempty"`
	Role        string         `json:"role"`
	Content     string         `json:"content"`
	Attachments []string       `json:"attachments,omitempty"`
	Files       []FileResponse `json:"files,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SendMessageResponse returns both messages a send produces.
type SendMessageResponse struct {
	Message     MessageResponse `json:"message"`
	Placeholder MessageResponse `json:"placeholder"`
	TaskID      string          `json:"task_id,omitempty"`
}

// ChatListResponse wraps a chat listing.
type ChatListResponse struct {
	Object string         `json:"object"`
	Data   []ChatResponse `json:"data"`
}

// MessageListResponse wraps a message listing.
type MessageListResponse struct {
	Object string            `json:"object"`
	Data   []MessageResponse `json:"data"`
}

// MapChatToResponse converts a domain chat.
func MapChatToResponse(c *chat.Chat) ChatResponse {
	return ChatResponse{
		ID:           c.PublicID,
		Title:        c.Title,
		Description:  c.Description,
		MessageCount: c.MessageCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// MapChatsToListResponse converts a chat slice.
func MapChatsToListResponse(chats []chat.Chat) ChatListResponse {
	out := ChatListResponse{Object: "list", Data: make([]ChatResponse, 0, len(chats))}
	for i := range chats {
		out.Data = append(out.Data, MapChatToResponse(&chats[i]))
	}
	return out
}

// MapMessageToResponse converts a domain message.
func MapMessageToResponse(m *chat.Message) MessageResponse {
	return MessageResponse{
		ID:          m.PublicID,
		Role:        string(m.Role),
		Content:     m.Content,
		Attachments: m.Attachments,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// MapMessageWithFilesToResponse converts a message with expanded attachments.
func MapMessageWithFilesToResponse(m *chat.MessageWithFiles) MessageResponse {
	resp := MapMessageToResponse(&m.Message)
	for i := range m.Files {
		resp.Files = append(resp.Files, MapFileToResponse(&m.Files[i]))
	}
	return resp
}

// MapMessagesToListResponse converts a message listing.
func MapMessagesToListResponse(messages []chat.MessageWithFiles) MessageListResponse {
	out := MessageListResponse{Object: "list", Data: make([]MessageResponse, 0, len(messages))}
	for i := range messages {
		out.Data = append(out.Data, MapMessageWithFilesToResponse(&messages[i]))
	}
	return out
}
