package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vision-chat/server/internal/domain/chat"
	"vision-chat/server/internal/domain/completion"
	"vision-chat/server/internal/interfaces/httpserver/handlers"
	"vision-chat/server/internal/utils/platformerrors"
)

type MockChatService struct {
	CreateChatFunc   func(ctx context.Context, title string, description *string) (*chat.Chat, error)
	GetChatFunc      func(ctx context.Context, publicID string) (*chat.Chat, error)
	ListChatsFunc    func(ctx context.Context) ([]chat.Chat, error)
	UpdateChatFunc   func(ctx context.Context, publicID string, req chat.UpdateChatRequest) (*chat.Chat, error)
	DeleteChatFunc   func(ctx context.Context, publicID string) error
	SendMessageFunc  func(ctx context.Context, chatPublicID, content string, attachmentIDs []string) (*chat.SendResult, error)
	GetMessageFunc   func(ctx context.Context, publicID string) (*chat.MessageWithFiles, error)
	EditMessageFunc  func(ctx context.Context, publicID, content string) (*chat.Message, error)
	ListMessagesFunc func(ctx context.Context, chatPublicID string) ([]chat.MessageWithFiles, error)
}

func (m *MockChatService) CreateChat(ctx context.Context, title string, description *string) (*chat.Chat, error) {
	if m.CreateChatFunc != nil {
		return m.CreateChatFunc(ctx, title, description)
	}
	return &chat.Chat{}, nil
}

func (m *MockChatService) GetChat(ctx context.Context, publicID string) (*chat.Chat, error) {
	if m.GetChatFunc != nil {
		return m.GetChatFunc(ctx, publicID)
	}
	return &chat.Chat{}, nil
}

func (m *MockChatService) ListChats(ctx context.Context) ([]chat.Chat, error) {
	if m.ListChatsFunc != nil {
		return m.ListChatsFunc(ctx)
	}
	return nil, nil
}

func (m *MockChatService) UpdateChat(ctx context.Context, publicID string, req chat.UpdateChatRequest) (*chat.Chat, error) {
	if m.UpdateChatFunc != nil {
		return m.UpdateChatFunc(ctx, publicID, req)
	}
	return &chat.Chat{}, nil
}

func (m *MockChatService) DeleteChat(ctx context.Context, publicID string) error {
	if m.DeleteChatFunc != nil {
		return m.DeleteChatFunc(ctx, publicID)
	}
	return nil
}

func (m *MockChatService) SendMessage(ctx context.Context, chatPublicID, content string, attachmentIDs []string) (*chat.SendResult, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatPublicID, content, attachmentIDs)
	}
	return &chat.SendResult{UserMessage: &chat.Message{}, Placeholder: &chat.Message{}, Task: &completion.Handle{}}, nil
}

func (m *MockChatService) GetMessage(ctx context.Context, publicID string) (*chat.MessageWithFiles, error) {
	if m.GetMessageFunc != nil {
		return m.GetMessageFunc(ctx, publicID)
	}
	return &chat.MessageWithFiles{}, nil
}

func (m *MockChatService) EditMessage(ctx context.Context, publicID, content string) (*chat.Message, error) {
	if m.EditMessageFunc != nil {
		return m.EditMessageFunc(ctx, publicID, content)
	}
	return &chat.Message{}, nil
}

func (m *MockChatService) ListMessages(ctx context.Context, chatPublicID string) ([]chat.MessageWithFiles, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, chatPublicID)
	}
	return nil, nil
}

func setupChatTestRouter(handler *handlers.ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	chats := r.Group("/v1/chats")
	{
		chats.POST("", handler.Create)
		chats.GET("", handler.List)
		chats.GET("/:chat_id", handler.Get)
		chats.PATCH("/:chat_id", handler.Update)
		chats.DELETE("/:chat_id", handler.Delete)
		chats.POST("/:chat_id/messages", handler.SendMessage)
		chats.GET("/:chat_id/messages", handler.ListMessages)
	}
	messages := r.Group("/v1/messages")
	{
		messages.GET("/:message_id", handler.GetMessage)
		messages.PATCH("/:message_id", handler.EditMessage)
	}

	return r
}

func TestChatHandler_Create(t *testing.T) {
	mockService := &MockChatService{
		CreateChatFunc: func(ctx context.Context, title string, description *string) (*chat.Chat, error) {
			return &chat.Chat{
				PublicID:  "chat_123",
				Title:     title,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		},
	}
	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"title":"Cats"}`)
	req, _ := http.NewRequest("POST", "/v1/chats", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["id"] != "chat_123" {
		t.Errorf("Expected chat id 'chat_123', got %v", response["id"])
	}
	if response["title"] != "Cats" {
		t.Errorf("Expected title 'Cats', got %v", response["title"])
	}
}

func TestChatHandler_Create_MissingTitle(t *testing.T) {
	handler := handlers.NewChatHandler(&MockChatService{}, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req, _ := http.NewRequest("POST", "/v1/chats", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestChatHandler_Get_NotFound(t *testing.T) {
	mockService := &MockChatService{
		GetChatFunc: func(ctx context.Context, publicID string) (*chat.Chat, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "chat not found", nil, "")
		},
	}
	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/chats/chat_missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestChatHandler_List(t *testing.T) {
	mockService := &MockChatService{
		ListChatsFunc: func(ctx context.Context) ([]chat.Chat, error) {
			return []chat.Chat{
				{PublicID: "chat_1", Title: "First"},
				{PublicID: "chat_2", Title: "Second"},
			}, nil
		},
	}
	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/chats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Object string                   `json:"object"`
		Data   []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Object != "list" {
		t.Errorf("Expected object 'list', got %v", response.Object)
	}
	if len(response.Data) != 2 {
		t.Errorf("Expected 2 chats, got %d", len(response.Data))
	}
}

func TestChatHandler_SendMessage(t *testing.T) {
	var gotContent string
	var gotAttachments []string
	mockService := &MockChatService{
		SendMessageFunc: func(ctx context.Context, chatPublicID, content string, attachmentIDs []string) (*chat.SendResult, error) {
			gotContent = content
			gotAttachments = attachmentIDs
			return &chat.SendResult{
				UserMessage: &chat.Message{PublicID: "msg_user", Role: chat.RoleUser, Content: content, Attachments: attachmentIDs},
				Placeholder: &chat.Message{PublicID: "msg_ph", Role: chat.RoleAssistant, Content: chat.PlaceholderContent},
				Task:        &completion.Handle{ID: "task-1"},
			}, nil
		},
	}
	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"content":"what is this?","attachments":["file_abc"]}`)
	req, _ := http.NewRequest("POST", "/v1/chats/chat_123/messages", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotContent != "what is this?" {
		t.Errorf("Expected content to pass through, got %q", gotContent)
	}
	if len(gotAttachments) != 1 || gotAttachments[0] != "file_abc" {
		t.Errorf("Expected attachments to pass through, got %v", gotAttachments)
	}

	var response struct {
		Message     map[string]interface{} `json:"message"`
		Placeholder map[string]interface{} `json:"placeholder"`
		TaskID      string                 `json:"task_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Message["id"] != "msg_user" {
		t.Errorf("Expected user message id 'msg_user', got %v", response.Message["id"])
	}
	if response.Placeholder["content"] != chat.PlaceholderContent {
		t.Errorf("Expected placeholder content %q, got %v", chat.PlaceholderContent, response.Placeholder["content"])
	}
	if response.TaskID != "task-1" {
		t.Errorf("Expected task id 'task-1', got %v", response.TaskID)
	}
}

func TestChatHandler_SendMessage_EmptyWithoutAttachments(t *testing.T) {
	called := false
	mockService := &MockChatService{
		SendMessageFunc: func(ctx context.Context, chatPublicID, content string, attachmentIDs []string) (*chat.SendResult, error) {
			called = true
			return nil, nil
		},
	}
	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req, _ := http.NewRequest("POST", "/v1/chats/chat_123/messages", bytes.NewBufferString(`{"content":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if called {
		t.Error("Service must not be called for an empty send")
	}
}

func TestChatHandler_SendMessage_AttachmentOnly(t *testing.T) {
	mockService := &MockChatService{}
	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"content":"","attachments":["file_abc"]}`)
	req, _ := http.NewRequest("POST", "/v1/chats/chat_123/messages", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201 for attachment-only send, got %d", w.Code)
	}
}

func TestChatHandler_Delete(t *testing.T) {
	deleted := ""
	mockService := &MockChatService{
		DeleteChatFunc: func(ctx context.Context, publicID string) error {
			deleted = publicID
			return nil
		},
	}
	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req, _ := http.NewRequest("DELETE", "/v1/chats/chat_123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if deleted != "chat_123" {
		t.Errorf("Expected delete of 'chat_123', got %q", deleted)
	}
}

func TestChatHandler_EditMessage(t *testing.T) {
	mockService := &MockChatService{
		EditMessageFunc: func(ctx context.Context, publicID, content string) (*chat.Message, error) {
			return &chat.Message{PublicID: publicID, Role: chat.RoleUser, Content: content}, nil
		},
	}
	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"content":"edited"}`)
	req, _ := http.NewRequest("PATCH", "/v1/messages/msg_123", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["content"] != "edited" {
		t.Errorf("Expected content 'edited', got %v", response["content"])
	}
}

func TestChatHandler_ListMessages(t *testing.T) {
	mockService := &MockChatService{
		ListMessagesFunc: func(ctx context.Context, chatPublicID string) ([]chat.MessageWithFiles, error) {
			return []chat.MessageWithFiles{
				{Message: chat.Message{PublicID: "msg_1", Role: chat.RoleUser, Content: "hi"}},
				{Message: chat.Message{PublicID: "msg_2", Role: chat.RoleAssistant, Content: "hello"}},
			}, nil
		},
	}
	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/chats/chat_123/messages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(response.Data) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(response.Data))
	}
}
