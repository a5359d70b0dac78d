package requests

// CreateChatRequest creates a new chat thread.
type CreateChatRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// UpdateChatRequest patches chat metadata.
type UpdateChatRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SendMessageRequest appends a user message to a chat. Content may be empty
// only when at least one attachment is present.
type SendMessageRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
}

// Valid reports whether the send carries anything at all.
func (r SendMessageRequest) Valid() bool {
	return r.Content != "" || len(r.Attachments) > 0
}

// EditMessageRequest replaces a message's content.
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
