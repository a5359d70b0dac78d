package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vision-chat/server/internal/domain/completion"
	"vision-chat/server/internal/domain/file"
	"vision-chat/server/internal/utils/platformerrors"
)

// FileReader resolves attachment public IDs to file records.
type FileReader interface {
	GetByPublicIDs(ctx context.Context, publicIDs []string) ([]file.File, error)
}

// CompletionDispatcher schedules assistant completions in the background.
type CompletionDispatcher interface {
	Dispatch(task completion.Task) *completion.Handle
}

// Service is the mutation and read surface for chats and messages.
type Service struct {
	chats       Repository
	messages    MessageRepository
	files       FileReader
	completions CompletionDispatcher
	log         zerolog.Logger
}

func NewService(
	chats Repository,
	messages MessageRepository,
	files FileReader,
	completions CompletionDispatcher,
	log zerolog.Logger,
) *Service {
	return &Service{
		chats:       chats,
		messages:    messages,
		files:       files,
		completions: completions,
		log:         log.With().Str("component", "chat-service").Logger(),
	}
}

// SendResult carries everything a send produced: the stored user message, the
// assistant placeholder already streaming in the background and the task
// handle, which callers are free to ignore.
type SendResult struct {
	UserMessage *Message
	Placeholder *Message
	Task        *completion.Handle
}

// CreateChat stores a new empty chat.
func (s *Service) CreateChat(ctx context.Context, title string, description *string) (*Chat, error) {
	c := NewChat(title, description)
	if err := s.chats.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Str("chat_id", c.PublicID).Msg("chat created")
	return c, nil
}

// GetChat returns a chat by public ID.
func (s *Service) GetChat(ctx context.Context, publicID string) (*Chat, error) {
	c, err := s.chats.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, fmt.Sprintf("chat %s not found", publicID), nil,
			"3a7c5e9b-1d2f-4a6b-8c0d-e2f4a6b8c0d2")
	}
	return c, nil
}

// ListChats returns all chats, newest first.
func (s *Service) ListChats(ctx context.Context) ([]Chat, error) {
	return s.chats.List(ctx)
}

// UpdateChat patches the mutable fields of a chat.
func (s *Service) UpdateChat(ctx context.Context, publicID string, req UpdateChatRequest) (*Chat, error) {
	c, err := s.GetChat(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	c.UpdatedAt = time.Now()
	if err := s.chats.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteChat removes a chat and its messages. Referenced files stay; an
// in-flight completion for the chat is left to finish on its own.
func (s *Service) DeleteChat(ctx context.Context, publicID string) error {
	c, err := s.GetChat(ctx, publicID)
	if err != nil {
		return err
	}
	if err := s.messages.DeleteByChatID(ctx, c.ID); err != nil {
		return err
	}
	if err := s.chats.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.log.Info().Str("chat_id", publicID).Msg("chat deleted")
	return nil
}

// SendMessage appends a user message to a chat, inserts the assistant
// placeholder and schedules the completion that will fill it. The chat must
// exist before anything is written.
func (s *Service) SendMessage(ctx context.Context, chatPublicID, content string, attachmentIDs []string) (*SendResult, error) {
	c, err := s.GetChat(ctx, chatPublicID)
	if err != nil {
		return nil, err
	}

	userMsg := NewMessage(c.ID, RoleUser, content, attachmentIDs)
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return nil, err
	}

	history, err := s.messages.ListByChatID(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	files, err := s.resolveFiles(ctx, history)
	if err != nil {
		return nil, err
	}
	projected := ProjectHistory(history, files)

	placeholder := NewMessage(c.ID, RoleAssistant, PlaceholderContent, nil)
	if err := s.messages.Create(ctx, placeholder); err != nil {
		return nil, err
	}

	if err := s.chats.IncrementMessageCount(ctx, c.ID, 2); err != nil {
		return nil, err
	}

	handle := s.completions.Dispatch(completion.Task{
		ChatPublicID:  c.PublicID,
		PlaceholderID: placeholder.PublicID,
		History:       projected,
	})

	s.log.Info().
		Str("chat_id", c.PublicID).
		Str("message_id", userMsg.PublicID).
		Str("placeholder_id", placeholder.PublicID).
		Str("task_id", handle.ID).
		Int("attachments", len(attachmentIDs)).
		Msg("message sent, completion scheduled")

	return &SendResult{
		UserMessage: userMsg,
		Placeholder: placeholder,
		Task:        handle,
	}, nil
}

// GetMessage returns a message with its attachments expanded to file records.
func (s *Service) GetMessage(ctx context.Context, publicID string) (*MessageWithFiles, error) {
	m, err := s.findMessage(ctx, publicID)
	if err != nil {
		return nil, err
	}
	files, err := s.resolveFiles(ctx, []Message{*m})
	if err != nil {
		return nil, err
	}
	expanded := expandMessage(*m, files)
	return &expanded, nil
}

// EditMessage replaces a message's content unconditionally, any role.
func (s *Service) EditMessage(ctx context.Context, publicID, content string) (*Message, error) {
	m, err := s.findMessage(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.messages.UpdateContent(ctx, publicID, content); err != nil {
		return nil, err
	}
	m.Content = content
	m.UpdatedAt = time.Now()
	return m, nil
}

// ListMessages returns a chat's messages in creation order, attachments
// expanded. Attachments whose file no longer exists are kept in the ID list
// but have no matching record.
func (s *Service) ListMessages(ctx context.Context, chatPublicID string) ([]MessageWithFiles, error) {
	c, err := s.GetChat(ctx, chatPublicID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByChatID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	files, err := s.resolveFiles(ctx, messages)
	if err != nil {
		return nil, err
	}

	expanded := make([]MessageWithFiles, 0, len(messages))
	for _, m := range messages {
		expanded = append(expanded, expandMessage(m, files))
	}
	return expanded, nil
}

func (s *Service) findMessage(ctx context.Context, publicID string) (*Message, error) {
	m, err := s.messages.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, fmt.Sprintf("message %s not found", publicID), nil,
			"b9d7f5e3-c1a8-4b6d-9e2f-0a3c5e7b9d1f")
	}
	return m, nil
}

// resolveFiles loads the file records for every attachment referenced by the
// given messages, deduplicated, keyed by public ID.
func (s *Service) resolveFiles(ctx context.Context, messages []Message) (map[string]file.File, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, m := range messages {
		for _, id := range m.Attachments {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[string]file.File{}, nil
	}

	records, err := s.files.GetByPublicIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]file.File, len(records))
	for _, f := range records {
		byID[f.PublicID] = f
	}
	return byID, nil
}

func expandMessage(m Message, files map[string]file.File) MessageWithFiles {
	out := MessageWithFiles{Message: m}
	for _, id := range m.Attachments {
		if f, ok := files[id]; ok {
			out.Files = append(out.Files, f)
		}
	}
	return out
}
