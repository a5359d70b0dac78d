package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vision-chat/server/internal/domain/chat"
	"vision-chat/server/internal/interfaces/httpserver/requests"
	"vision-chat/server/internal/interfaces/httpserver/responses"
	"vision-chat/server/internal/utils/platformerrors"
)

// ChatService is the surface of the chat domain the handler needs.
type ChatService interface {
	CreateChat(ctx context.Context, title string, description *string) (*chat.Chat, error)
	GetChat(ctx context.Context, publicID string) (*chat.Chat, error)
	ListChats(ctx context.Context) ([]chat.Chat, error)
	UpdateChat(ctx context.Context, publicID string, req chat.UpdateChatRequest) (*chat.Chat, error)
	DeleteChat(ctx context.Context, publicID string) error
	SendMessage(ctx context.Context, chatPublicID, content string, attachmentIDs []string) (*chat.SendResult, error)
	GetMessage(ctx context.Context, publicID string) (*chat.MessageWithFiles, error)
	EditMessage(ctx context.Context, publicID, content string) (*chat.Message, error)
	ListMessages(ctx context.Context, chatPublicID string) ([]chat.MessageWithFiles, error)
}

// ChatHandler exposes HTTP entrypoints for chats and messages.
type ChatHandler struct {
	service ChatService
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service ChatService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// Create handles POST /v1/chats
func (h *ChatHandler) Create(c *gin.Context) {
	var req requests.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid chat payload", "2a4c6e8a-0b1d-4f3e-5a7c-9e0b2d4f6a8c")
		return
	}

	created, err := h.service.CreateChat(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		responses.HandleError(c, err, "failed to create chat")
		return
	}
	c.JSON(http.StatusCreated, responses.MapChatToResponse(created))
}

// List handles GET /v1/chats
func (h *ChatHandler) List(c *gin.Context) {
	chats, err := h.service.ListChats(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list chats")
		return
	}
	c.JSON(http.StatusOK, responses.MapChatsToListResponse(chats))
}

// Get handles GET /v1/chats/:chat_id
func (h *ChatHandler) Get(c *gin.Context) {
	found, err := h.service.GetChat(c.Request.Context(), c.Param("chat_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get chat")
		return
	}
	c.JSON(http.StatusOK, responses.MapChatToResponse(found))
}

// Update handles PATCH /v1/chats/:chat_id
func (h *ChatHandler) Update(c *gin.Context) {
	var req requests.UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid chat payload", "4c6e8a0b-2d3f-4a5c-7e9a-1b3d5f7a9c0e")
		return
	}

	updated, err := h.service.UpdateChat(c.Request.Context(), c.Param("chat_id"), chat.UpdateChatRequest{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update chat")
		return
	}
	c.JSON(http.StatusOK, responses.MapChatToResponse(updated))
}

// Delete handles DELETE /v1/chats/:chat_id
func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteChat(c.Request.Context(), c.Param("chat_id")); err != nil {
		responses.HandleError(c, err, "failed to delete chat")
		return
	}
	c.Status(http.StatusNoContent)
}

// SendMessage handles POST /v1/chats/:chat_id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req requests.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid message payload", "6e8a0b2d-4f5a-4c7e-9a1b-3d5f7a9c0e2a")
		return
	}
	if !req.Valid() {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"message needs content or at least one attachment", "8a0b2d4f-6a7c-4e9a-1b3d-5f7a9c0e2a4c")
		return
	}

	result, err := h.service.SendMessage(c.Request.Context(), c.Param("chat_id"), req.Content, req.Attachments)
	if err != nil {
		responses.HandleError(c, err, "failed to send message")
		return
	}

	c.JSON(http.StatusCreated, responses.SendMessageResponse{
		Message:     responses.MapMessageToResponse(result.UserMessage),
		Placeholder: responses.MapMessageToResponse(result.Placeholder),
		TaskID:      result.Task.ID,
	})
}

// ListMessages handles GET /v1/chats/:chat_id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := h.service.ListMessages(c.Request.Context(), c.Param("chat_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}
	c.JSON(http.StatusOK, responses.MapMessagesToListResponse(messages))
}

// GetMessage handles GET /v1/messages/:message_id
func (h *ChatHandler) GetMessage(c *gin.Context) {
	found, err := h.service.GetMessage(c.Request.Context(), c.Param("message_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get message")
		return
	}
	c.JSON(http.StatusOK, responses.MapMessageWithFilesToResponse(found))
}

// EditMessage handles PATCH /v1/messages/:message_id
func (h *ChatHandler) EditMessage(c *gin.Context) {
	var req requests.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid message payload", "0b2d4f6a-8c9e-4a1b-3d5f-7a9c0e2a4c6e")
		return
	}

	updated, err := h.service.EditMessage(c.Request.Context(), c.Param("message_id"), req.Content)
	if err != nil {
		responses.HandleError(c, err, "failed to edit message")
		return
	}
	c.JSON(http.StatusOK, responses.MapMessageToResponse(updated))
}
